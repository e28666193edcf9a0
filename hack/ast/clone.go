package ast

import (
	"reflect"

	"github.com/marcuscaisey/hackro/hack/token"
)

var (
	tokenType    = reflect.TypeFor[token.Token]()
	positionType = reflect.TypeFor[token.Position]()
	fileType     = reflect.TypeFor[*token.File]()
)

// Clone returns a deep copy of the AST rooted at node. Tokens and the *token.File that positions refer to are shared
// with the original.
func Clone[T Node](node T) T {
	if isNil(node) {
		return node
	}
	return cloneValue(reflect.ValueOf(node)).Interface().(T)
}

func cloneValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() || v.Type() == fileType {
			return v
		}
		c := reflect.New(v.Type().Elem())
		c.Elem().Set(cloneValue(v.Elem()))
		return c
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		c := reflect.New(v.Type()).Elem()
		c.Set(cloneValue(v.Elem()))
		return c
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		c := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := range v.Len() {
			c.Index(i).Set(cloneValue(v.Index(i)))
		}
		return c
	case reflect.Struct:
		if v.Type() == tokenType || v.Type() == positionType {
			return v
		}
		c := reflect.New(v.Type()).Elem()
		c.Set(v)
		for i := range v.NumField() {
			if !c.Field(i).CanSet() {
				continue
			}
			c.Field(i).Set(cloneValue(v.Field(i)))
		}
		return c
	default:
		return v
	}
}
