package ast

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/marcuscaisey/hackro/hack/token"
)

// Print prints an AST Node to stdout as an indented s-expression.
func Print(node Node) {
	fmt.Println(Sprint(node))
}

// Sprint formats an AST Node as an indented s-expression. Only fields with a print struct tag are included:
//   - print:"named" fields are printed as (Field value). Slices are printed as (Field [ ... ]) with one element per
//     line.
//   - print:"unnamed" must be the only tagged field of a node. A single value is printed inline as (Node value) and a
//     slice with one element per line.
//
// Nodes which are a single token, such as variables and literals, are printed as that token. A readonly expression
// which has no readonly keyword, because the checker inserted it, is printed as (ReadonlyExpr inserted value).
func Sprint(node Node) string {
	var p printer
	p.node(node, 0)
	return p.b.String()
}

type printer struct {
	b strings.Builder
}

func (p *printer) node(node Node, depth int) {
	switch node := node.(type) {
	case *LiteralExpr:
		p.b.WriteString(node.Value.Lexeme)
		return
	case *VarExpr:
		p.b.WriteString(node.Name.Lexeme)
		return
	case *IdentExpr:
		p.b.WriteString(node.Name.Lexeme)
		return
	case *PlaceholderExpr:
		p.b.WriteString(node.Placeholder.Lexeme)
		return
	case *DollarDollarExpr:
		p.b.WriteString(node.DollarDollar.Lexeme)
		return
	case *ThisExpr:
		p.b.WriteString(node.This.Lexeme)
		return
	case *TypeHint:
		p.b.WriteString(node.Text)
		return
	case *ReadonlyExpr:
		if node.Readonly.IsZero() {
			p.b.WriteString("(ReadonlyExpr inserted ")
			p.value(reflect.ValueOf(node.Expr), depth+1)
			p.b.WriteString(")")
			return
		}
	}

	v := reflect.ValueOf(node)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	name := v.Type().Name()
	fields := printFieldsOf(v.Type())

	if len(fields) == 1 && fields[0].unnamed && v.Field(fields[0].index).Kind() != reflect.Slice {
		fmt.Fprintf(&p.b, "(%s ", name)
		p.value(v.Field(fields[0].index), depth+1)
		p.b.WriteString(")")
		return
	}

	fmt.Fprintf(&p.b, "(%s", name)
	for _, field := range fields {
		fv := v.Field(field.index)
		switch {
		case field.unnamed:
			for i := range fv.Len() {
				p.newline(depth + 1)
				p.value(fv.Index(i), depth+1)
			}
		case fv.Kind() == reflect.Slice:
			p.newline(depth + 1)
			fmt.Fprintf(&p.b, "(%s [", field.name)
			if fv.Len() == 0 {
				p.b.WriteString("])")
				continue
			}
			for i := range fv.Len() {
				p.newline(depth + 2)
				p.value(fv.Index(i), depth+2)
			}
			p.newline(depth + 1)
			p.b.WriteString("])")
		default:
			p.newline(depth + 1)
			fmt.Fprintf(&p.b, "(%s ", field.name)
			p.value(fv, depth+1)
			p.b.WriteString(")")
		}
	}
	p.b.WriteString(")")
}

func (p *printer) value(v reflect.Value, depth int) {
	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
		p.b.WriteString("nil")
		return
	}
	switch v := v.Interface().(type) {
	case token.Token:
		if v.IsZero() {
			p.b.WriteString("nil")
			return
		}
		p.b.WriteString(v.Lexeme)
	case Node:
		p.node(v, depth)
	case bool:
		fmt.Fprint(&p.b, v)
	case string:
		p.b.WriteString(v)
	default:
		panic(fmt.Sprintf("unsupported type in printed field: %T", v))
	}
}

func (p *printer) newline(depth int) {
	p.b.WriteString("\n")
	p.b.WriteString(strings.Repeat("  ", depth))
}

type printField struct {
	name    string
	index   int
	unnamed bool
}

// printFieldsCache maps a node's struct type to its []printField.
var printFieldsCache sync.Map

func printFieldsOf(nodeType reflect.Type) []printField {
	if fields, ok := printFieldsCache.Load(nodeType); ok {
		return fields.([]printField)
	}
	var fields []printField
	unnamedCount := 0
	for i := range nodeType.NumField() {
		field := nodeType.Field(i)
		tag, ok := field.Tag.Lookup("print")
		if !ok {
			continue
		}
		switch tag {
		case "named":
		case "unnamed":
			unnamedCount++
		default:
			panic(fmt.Sprintf("%s field %s has invalid print tag: %q", nodeType.Name(), field.Name, tag))
		}
		fields = append(fields, printField{name: field.Name, index: i, unnamed: tag == "unnamed"})
	}
	if unnamedCount > 0 && len(fields) > 1 {
		panic(fmt.Sprintf(`%s has %d print tagged fields, but an "unnamed" print tag must be the only one`, nodeType.Name(), len(fields)))
	}
	printFieldsCache.Store(nodeType, fields)
	return fields
}
