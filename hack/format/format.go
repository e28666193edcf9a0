// Package format implements canonical formatting of Hack code.
package format

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/marcuscaisey/hackro/hack/ast"
	"github.com/marcuscaisey/hackro/hack/token"
)

const (
	indentSize = 4
	openTag    = "<?hh"
)

// Node formats node in canonical Hack style and returns the result. node is expected to be syntactically correct.
func Node(node ast.Node) string {
	switch node := node.(type) {
	case *ast.Program:
		return formatProgram(node)
	case ast.Stmt:
		return formatStmt(node)
	case ast.Expr:
		return formatExpr(node)
	case *ast.Function:
		return formatFun(node)
	case *ast.ParamDecl:
		return formatParamDecl(node)
	case *ast.TypeHint:
		return node.Text
	case *ast.Field:
		return formatField(node)
	case *ast.CatchClause:
		return formatCatchClause(node)
	case *ast.CaseClause:
		return formatCaseClause(node)
	default:
		panic(fmt.Sprintf("unexpected ast.Node: %T", node))
	}
}

func formatProgram(program *ast.Program) string {
	var b strings.Builder
	if program.File != nil && bytes.HasPrefix(program.File.Contents, []byte(openTag)) {
		fmt.Fprint(&b, openTag, "\n")
		if len(program.Stmts) > 0 {
			fmt.Fprint(&b, "\n")
		}
	}
	if len(program.Stmts) > 0 {
		fmt.Fprint(&b, formatStmts(program.Stmts), "\n")
	}
	return b.String()
}

func formatStmts[T ast.Stmt](stmts []T) string {
	var b strings.Builder
	for i, stmt := range stmts {
		fmt.Fprint(&b, Node(stmt))
		if i < len(stmts)-1 {
			fmt.Fprintln(&b)
			if stmts[i+1].Start().Line-stmts[i].End().Line > 1 {
				fmt.Fprintln(&b)
			}
		}
	}
	return b.String()
}

func formatStmt(stmt ast.Stmt) string {
	switch stmt := stmt.(type) {
	case *ast.FunDecl:
		return fmt.Sprintf("%sfunction %s%s", prefix(stmt.Async), stmt.Name.Lexeme, formatFun(stmt.Function))
	case *ast.ClassDecl:
		return formatClassDecl(stmt)
	case *ast.MethodDecl:
		return formatMethodDecl(stmt)
	case *ast.PropertyDecl:
		return formatPropertyDecl(stmt)
	case *ast.ConstDecl:
		return formatConstDecl(stmt)
	case *ast.ExprStmt:
		return fmt.Sprintf("%s;", formatExpr(stmt.Expr))
	case *ast.EchoStmt:
		return fmt.Sprintf("echo %s;", formatExprs(stmt.Exprs))
	case *ast.Block:
		return formatBlock(stmt.Stmts)
	case *ast.IfStmt:
		return formatIfStmt(stmt)
	case *ast.WhileStmt:
		return fmt.Sprintf("while (%s)%s", formatExpr(stmt.Condition), formatBody(stmt.Body))
	case *ast.DoStmt:
		return formatDoStmt(stmt)
	case *ast.ForStmt:
		return formatForStmt(stmt)
	case *ast.ForeachStmt:
		return formatForeachStmt(stmt)
	case *ast.TryStmt:
		return formatTryStmt(stmt)
	case *ast.SwitchStmt:
		return formatSwitchStmt(stmt)
	case *ast.BreakStmt:
		return "break;"
	case *ast.ContinueStmt:
		return "continue;"
	case *ast.ReturnStmt:
		if stmt.Value != nil {
			return fmt.Sprintf("return %s;", formatExpr(stmt.Value))
		}
		return "return;"
	case *ast.ThrowStmt:
		return fmt.Sprintf("throw %s;", formatExpr(stmt.Value))
	case *ast.EmptyStmt:
		return ";"
	case *ast.IllegalStmt:
		panic("IllegalStmt cannot be formatted")
	default:
		panic(fmt.Sprintf("unexpected ast.Stmt: %T", stmt))
	}
}

func formatFun(fun *ast.Function) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(%s)", formatParams(fun.Params))
	fmt.Fprint(&b, formatReturnType(fun))
	if fun.Body != nil {
		fmt.Fprint(&b, " ", formatBlock(fun.Body.Stmts))
	}
	return b.String()
}

func formatParams(params []*ast.ParamDecl) string {
	strs := make([]string, len(params))
	for i, param := range params {
		strs[i] = formatParamDecl(param)
	}
	return strings.Join(strs, ", ")
}

func formatReturnType(fun *ast.Function) string {
	if fun.ReturnType == nil {
		return ""
	}
	return fmt.Sprintf(": %s%s", prefix(fun.ReadonlyReturn), fun.ReturnType.Text)
}

func formatParamDecl(decl *ast.ParamDecl) string {
	var b strings.Builder
	fmt.Fprint(&b, prefix(decl.Inout), prefix(decl.Readonly))
	if decl.Type != nil {
		fmt.Fprint(&b, decl.Type.Text, " ")
	}
	if !decl.Variadic.IsZero() {
		fmt.Fprint(&b, "...")
	}
	fmt.Fprint(&b, decl.Name.Lexeme)
	if decl.Default != nil {
		fmt.Fprint(&b, " = ", formatExpr(decl.Default))
	}
	return b.String()
}

func formatClassDecl(decl *ast.ClassDecl) string {
	var b strings.Builder
	fmt.Fprint(&b, formatModifiers(decl.Modifiers), decl.Keyword.Lexeme, " ", decl.Name.Lexeme)
	if len(decl.Extends) > 0 {
		fmt.Fprint(&b, " extends ", formatTypeHints(decl.Extends))
	}
	if len(decl.Implements) > 0 {
		fmt.Fprint(&b, " implements ", formatTypeHints(decl.Implements))
	}
	fmt.Fprint(&b, " ", formatBlock(decl.Body))
	return b.String()
}

func formatTypeHints(hints []*ast.TypeHint) string {
	strs := make([]string, len(hints))
	for i, hint := range hints {
		strs[i] = hint.Text
	}
	return strings.Join(strs, ", ")
}

func formatMethodDecl(decl *ast.MethodDecl) string {
	s := fmt.Sprintf("%s%sfunction %s%s", formatModifiers(decl.Modifiers), prefix(decl.Function.ReadonlyThis),
		decl.Name.Lexeme, formatFun(decl.Function))
	if decl.Function.Body == nil {
		s += ";"
	}
	return s
}

func formatPropertyDecl(decl *ast.PropertyDecl) string {
	var b strings.Builder
	fmt.Fprint(&b, formatModifiers(decl.Modifiers))
	if decl.Type != nil {
		fmt.Fprint(&b, decl.Type.Text, " ")
	}
	fmt.Fprint(&b, decl.Name.Lexeme)
	if decl.Initialiser != nil {
		fmt.Fprint(&b, " = ", formatExpr(decl.Initialiser))
	}
	fmt.Fprint(&b, ";")
	return b.String()
}

func formatConstDecl(decl *ast.ConstDecl) string {
	var b strings.Builder
	fmt.Fprint(&b, formatModifiers(decl.Modifiers), "const ")
	if decl.Type != nil {
		fmt.Fprint(&b, decl.Type.Text, " ")
	}
	fmt.Fprint(&b, decl.Name.Lexeme)
	if decl.Value != nil {
		fmt.Fprint(&b, " = ", formatExpr(decl.Value))
	}
	fmt.Fprint(&b, ";")
	return b.String()
}

func formatModifiers(modifiers []token.Token) string {
	var b strings.Builder
	for _, modifier := range modifiers {
		fmt.Fprint(&b, modifier.Lexeme, " ")
	}
	return b.String()
}

func formatBlock[T ast.Stmt](stmts []T) string {
	if len(stmts) > 0 {
		return fmt.Sprintf("{\n%s\n}", indent(formatStmts(stmts)))
	} else {
		return "{}"
	}
}

// formatBody formats the body of a compound statement, including the separator which goes before it.
func formatBody(body ast.Stmt) string {
	if _, ok := body.(*ast.Block); ok {
		return " " + formatStmt(body)
	}
	return "\n" + indent(formatStmt(body))
}

func formatIfStmt(stmt *ast.IfStmt) string {
	var b strings.Builder
	keyword := "if"
	if stmt.If.Type == token.Elseif {
		keyword = "elseif"
	}
	fmt.Fprintf(&b, "%s (%s)%s", keyword, formatExpr(stmt.Condition), formatBody(stmt.Then))
	if stmt.Else != nil {
		if _, thenIsBlock := stmt.Then.(*ast.Block); thenIsBlock {
			fmt.Fprint(&b, " ")
		} else {
			fmt.Fprint(&b, "\n")
		}
		switch elseStmt := stmt.Else.(type) {
		case *ast.IfStmt:
			if elseStmt.If.Type == token.Elseif {
				fmt.Fprint(&b, formatStmt(elseStmt))
			} else {
				fmt.Fprint(&b, "else ", formatStmt(elseStmt))
			}
		case *ast.Block:
			fmt.Fprint(&b, "else ", formatStmt(elseStmt))
		default:
			fmt.Fprint(&b, "else\n", indent(formatStmt(elseStmt)))
		}
	}
	return b.String()
}

func formatDoStmt(stmt *ast.DoStmt) string {
	if _, ok := stmt.Body.(*ast.Block); ok {
		return fmt.Sprintf("do %s while (%s);", formatStmt(stmt.Body), formatExpr(stmt.Condition))
	}
	return fmt.Sprintf("do\n%s\nwhile (%s);", indent(formatStmt(stmt.Body)), formatExpr(stmt.Condition))
}

func formatForStmt(stmt *ast.ForStmt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "for (%s;", formatExprs(stmt.Initialise))
	if len(stmt.Condition) > 0 {
		fmt.Fprintf(&b, " %s", formatExprs(stmt.Condition))
	}
	fmt.Fprint(&b, ";")
	if len(stmt.Update) > 0 {
		fmt.Fprintf(&b, " %s", formatExprs(stmt.Update))
	}
	fmt.Fprint(&b, ")", formatBody(stmt.Body))
	return b.String()
}

func formatForeachStmt(stmt *ast.ForeachStmt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "foreach (%s as ", formatExpr(stmt.Collection))
	if stmt.Key != nil {
		fmt.Fprintf(&b, "%s => ", formatExpr(stmt.Key))
	}
	fmt.Fprintf(&b, "%s)%s", formatExpr(stmt.Value), formatBody(stmt.Body))
	return b.String()
}

func formatTryStmt(stmt *ast.TryStmt) string {
	var b strings.Builder
	fmt.Fprint(&b, "try ", formatStmt(stmt.Body))
	for _, catch := range stmt.Catches {
		fmt.Fprint(&b, " ", formatCatchClause(catch))
	}
	if stmt.Finally != nil {
		fmt.Fprint(&b, " finally ", formatStmt(stmt.Finally))
	}
	return b.String()
}

func formatCatchClause(clause *ast.CatchClause) string {
	return fmt.Sprintf("catch (%s %s) %s", clause.Type.Text, clause.Var.Lexeme, formatStmt(clause.Body))
}

func formatSwitchStmt(stmt *ast.SwitchStmt) string {
	if len(stmt.Cases) == 0 {
		return fmt.Sprintf("switch (%s) {}", formatExpr(stmt.Subject))
	}
	clauses := make([]string, len(stmt.Cases))
	for i, clause := range stmt.Cases {
		clauses[i] = formatCaseClause(clause)
	}
	return fmt.Sprintf("switch (%s) {\n%s\n}", formatExpr(stmt.Subject), indent(strings.Join(clauses, "\n")))
}

func formatCaseClause(clause *ast.CaseClause) string {
	label := "default:"
	if !clause.IsDefault() {
		label = fmt.Sprintf("case %s:", formatExpr(clause.Value))
	}
	if len(clause.Body) == 0 {
		return label
	}
	return fmt.Sprintf("%s\n%s", label, indent(formatStmts(clause.Body)))
}

func formatExprs(exprs []ast.Expr) string {
	strs := make([]string, len(exprs))
	for i, expr := range exprs {
		strs[i] = formatExpr(expr)
	}
	return strings.Join(strs, ", ")
}

func formatFields(fields []*ast.Field) string {
	strs := make([]string, len(fields))
	for i, field := range fields {
		strs[i] = formatField(field)
	}
	return strings.Join(strs, ", ")
}

func formatField(field *ast.Field) string {
	if field.Key == nil {
		return formatExpr(field.Value)
	}
	return fmt.Sprintf("%s => %s", formatExpr(field.Key), formatExpr(field.Value))
}

func formatExpr(expr ast.Expr) string {
	switch expr := expr.(type) {
	case *ast.ReadonlyExpr:
		return "readonly " + formatExpr(expr.Expr)
	case *ast.VarExpr:
		return expr.Name.Lexeme
	case *ast.ThisExpr:
		return "$this"
	case *ast.ObjGetExpr:
		return fmt.Sprintf("%s%s%s", formatExpr(expr.Object), expr.Arrow.Lexeme, formatExpr(expr.Member))
	case *ast.ArrayGetExpr:
		index := ""
		if expr.Index != nil {
			index = formatExpr(expr.Index)
		}
		return fmt.Sprintf("%s[%s]", formatExpr(expr.Array), index)
	case *ast.CallconvExpr:
		return "inout " + formatExpr(expr.Expr)
	case *ast.AsExpr:
		op := "as"
		if expr.Nullable {
			op = "?as"
		}
		return fmt.Sprintf("%s %s %s", formatExpr(expr.Expr), op, expr.Type.Text)
	case *ast.IsExpr:
		return fmt.Sprintf("%s is %s", formatExpr(expr.Expr), expr.Type.Text)
	case *ast.HoleExpr:
		return formatExpr(expr.Expr)
	case *ast.AwaitExpr:
		return "await " + formatExpr(expr.Expr)
	case *ast.GroupExpr:
		return fmt.Sprintf("(%s)", formatExpr(expr.Expr))
	case *ast.DarrayExpr:
		return fmt.Sprintf("darray[%s]", formatFields(expr.Fields))
	case *ast.VarrayExpr:
		return fmt.Sprintf("varray[%s]", formatExprs(expr.Elems))
	case *ast.ShapeExpr:
		return fmt.Sprintf("shape(%s)", formatFields(expr.Fields))
	case *ast.ValCollectionExpr:
		return formatCollection(expr.Kind, expr.Close, formatExprs(expr.Elems))
	case *ast.KeyValCollectionExpr:
		return formatCollection(expr.Kind, expr.Close, formatFields(expr.Fields))
	case *ast.CollectionExpr:
		return fmt.Sprintf("%s {%s}", expr.Name.Lexeme, formatFields(expr.Fields))
	case *ast.RecordExpr:
		return fmt.Sprintf("%s[%s]", expr.Name.Lexeme, formatFields(expr.Fields))
	case *ast.TupleExpr:
		return fmt.Sprintf("tuple(%s)", formatExprs(expr.Elems))
	case *ast.ListExpr:
		return fmt.Sprintf("list(%s)", formatExprs(expr.Elems))
	case *ast.TernaryExpr:
		if expr.Then == nil {
			return fmt.Sprintf("%s ?: %s", formatExpr(expr.Condition), formatExpr(expr.Else))
		}
		return fmt.Sprint(formatExpr(expr.Condition), " ? ", formatExpr(expr.Then), " : ", formatExpr(expr.Else))
	case *ast.PairExpr:
		return fmt.Sprintf("Pair {%s, %s}", formatExpr(expr.First), formatExpr(expr.Second))
	case *ast.LiteralExpr:
		return expr.Value.Lexeme
	case *ast.InterpolatedStringExpr:
		return expr.Value.Lexeme
	case *ast.PrefixedStringExpr:
		return expr.Value.Lexeme
	case *ast.OmittedExpr:
		return ""
	case *ast.IdentExpr:
		return expr.Name.Lexeme
	case *ast.FunExpr:
		return formatFunExpr(expr)
	case *ast.LambdaExpr:
		return formatLambdaExpr(expr)
	case *ast.XmlExpr:
		return fmt.Sprintf("<%s>%s</%s>", expr.Name, formatExprs(expr.Children), expr.Name)
	case *ast.CastExpr:
		return fmt.Sprintf("(%s)%s", expr.Type.Lexeme, formatExpr(expr.Expr))
	case *ast.NewExpr:
		return fmt.Sprintf("new %s(%s)", formatExpr(expr.Class), formatExprs(expr.Args))
	case *ast.UnaryExpr:
		if expr.Postfix {
			return formatExpr(expr.Expr) + expr.Op.Lexeme
		}
		return expr.Op.Lexeme + formatExpr(expr.Expr)
	case *ast.BinaryExpr:
		return fmt.Sprintf("%s %s %s", formatExpr(expr.Left), expr.Op.Lexeme, formatExpr(expr.Right))
	case *ast.AssignExpr:
		return fmt.Sprintf("%s %s %s", formatExpr(expr.Left), expr.Op.Lexeme, formatExpr(expr.Right))
	case *ast.CloneExpr:
		return "clone " + formatExpr(expr.Expr)
	case *ast.FunctionPointerExpr:
		return formatExpr(expr.Target) + "<>"
	case *ast.FunIdExpr:
		return fmt.Sprintf("%s(%s)", expr.Fun.Lexeme, formatExpr(expr.Name))
	case *ast.MethodIdExpr:
		return fmt.Sprintf("%s(%s, %s)", expr.InstMeth.Lexeme, formatExpr(expr.Object), formatExpr(expr.Method))
	case *ast.SmethodIdExpr:
		return fmt.Sprintf("%s(%s, %s)", expr.ClassMeth.Lexeme, formatExpr(expr.Class), formatExpr(expr.Method))
	case *ast.MethodCallerExpr:
		return fmt.Sprintf("%s(%s, %s)", expr.MethCaller.Lexeme, formatExpr(expr.Class), formatExpr(expr.Method))
	case *ast.YieldExpr:
		return formatYieldExpr(expr)
	case *ast.PipeExpr:
		return fmt.Sprintf("%s |> %s", formatExpr(expr.Left), formatExpr(expr.Right))
	case *ast.DollarDollarExpr:
		return "$$"
	case *ast.ExpressionTreeExpr:
		return fmt.Sprintf("%s`%s`", expr.Visitor.Lexeme, formatExpr(expr.Body))
	case *ast.ETSpliceExpr:
		return fmt.Sprintf("${%s}", formatExpr(expr.Expr))
	case *ast.EnumClassLabelExpr:
		return fmt.Sprintf("%s#%s", expr.Class.Lexeme, expr.Label.Lexeme)
	case *ast.ImportExpr:
		return fmt.Sprintf("%s %s", expr.Kind.Lexeme, formatExpr(expr.Expr))
	case *ast.PlaceholderExpr:
		return "$_"
	case *ast.CallExpr:
		return formatCallExpr(expr)
	case *ast.ClassGetExpr:
		return fmt.Sprintf("%s::%s", formatExpr(expr.Class), expr.Prop.Lexeme)
	case *ast.ClassConstExpr:
		return fmt.Sprintf("%s::%s", formatExpr(expr.Class), expr.Name.Lexeme)
	default:
		panic(fmt.Sprintf("unexpected ast.Expr: %T", expr))
	}
}

// formatCollection formats a collection literal which is either written with brackets, such as vec[1, 2], or with
// braces, such as Vector {1, 2}.
func formatCollection(kind, closeTok token.Token, elems string) string {
	if closeTok.Type == token.RightBrace {
		return fmt.Sprintf("%s {%s}", kind.Lexeme, elems)
	}
	return fmt.Sprintf("%s[%s]", kind.Lexeme, elems)
}

func formatFunExpr(expr *ast.FunExpr) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%sfunction(%s)", prefix(expr.Async), formatParams(expr.Function.Params))
	if len(expr.Use) > 0 {
		vars := make([]string, len(expr.Use))
		for i, v := range expr.Use {
			vars[i] = v.Lexeme
		}
		fmt.Fprintf(&b, " use (%s)", strings.Join(vars, ", "))
	}
	fmt.Fprint(&b, formatReturnType(expr.Function), " ", formatBlock(expr.Function.Body.Stmts))
	return b.String()
}

func formatLambdaExpr(expr *ast.LambdaExpr) string {
	var b strings.Builder
	fmt.Fprint(&b, prefix(expr.Async))
	fn := expr.Function
	if fn.LeftParen.IsZero() {
		fmt.Fprint(&b, formatParams(fn.Params))
	} else {
		fmt.Fprintf(&b, "(%s)%s", formatParams(fn.Params), formatReturnType(fn))
	}
	fmt.Fprint(&b, " ==> ")
	if expr.Expr != nil {
		fmt.Fprint(&b, formatExpr(expr.Expr))
	} else {
		fmt.Fprint(&b, formatBlock(fn.Body.Stmts))
	}
	return b.String()
}

func formatYieldExpr(expr *ast.YieldExpr) string {
	switch {
	case expr.Value == nil:
		return "yield"
	case expr.Key != nil:
		return fmt.Sprintf("yield %s => %s", formatExpr(expr.Key), formatExpr(expr.Value))
	default:
		return "yield " + formatExpr(expr.Value)
	}
}

func formatCallExpr(expr *ast.CallExpr) string {
	args := formatExprs(expr.Args)
	if expr.Unpack != nil {
		if args != "" {
			args += ", "
		}
		args += "..." + formatExpr(expr.Unpack)
	}
	return fmt.Sprintf("%s(%s)", formatExpr(expr.Callee), args)
}

// prefix returns the lexeme of tok followed by a space, or the empty string if tok is the zero token.
func prefix(tok token.Token) string {
	if tok.IsZero() {
		return ""
	}
	return tok.Lexeme + " "
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = strings.Repeat(" ", indentSize) + line
		}
	}
	return strings.Join(lines, "\n")
}
