package ast

import "reflect"

// Walk traverses an AST in depth-first order: It starts by calling f(node); node must not be nil. If f returns true,
// Walk invokes f recursively for each of the non-nil children of node.
func Walk(node Node, f func(Node) bool) {
	if isNil(node) || !f(node) {
		return
	}
	switch node := node.(type) {
	case *Program:
		walkSlice(node.Stmts, f)
	case *TypeHint:
	case *Function:
		walkSlice(node.Params, f)
		Walk(node.ReturnType, f)
		Walk(node.Body, f)
	case *ParamDecl:
		Walk(node.Type, f)
		Walk(node.Default, f)
	case *FunDecl:
		Walk(node.Function, f)
	case *ClassDecl:
		walkSlice(node.Extends, f)
		walkSlice(node.Implements, f)
		walkSlice(node.Body, f)
	case *MethodDecl:
		Walk(node.Function, f)
	case *PropertyDecl:
		Walk(node.Type, f)
		Walk(node.Initialiser, f)
	case *ConstDecl:
		Walk(node.Type, f)
		Walk(node.Value, f)
	case *ExprStmt:
		Walk(node.Expr, f)
	case *EchoStmt:
		walkSlice(node.Exprs, f)
	case *Block:
		walkSlice(node.Stmts, f)
	case *IfStmt:
		Walk(node.Condition, f)
		Walk(node.Then, f)
		Walk(node.Else, f)
	case *WhileStmt:
		Walk(node.Condition, f)
		Walk(node.Body, f)
	case *DoStmt:
		Walk(node.Body, f)
		Walk(node.Condition, f)
	case *ForStmt:
		walkSlice(node.Initialise, f)
		walkSlice(node.Condition, f)
		walkSlice(node.Update, f)
		Walk(node.Body, f)
	case *ForeachStmt:
		Walk(node.Collection, f)
		Walk(node.Key, f)
		Walk(node.Value, f)
		Walk(node.Body, f)
	case *TryStmt:
		Walk(node.Body, f)
		walkSlice(node.Catches, f)
		Walk(node.Finally, f)
	case *CatchClause:
		Walk(node.Type, f)
		Walk(node.Body, f)
	case *SwitchStmt:
		Walk(node.Subject, f)
		walkSlice(node.Cases, f)
	case *CaseClause:
		Walk(node.Value, f)
		walkSlice(node.Body, f)
	case *BreakStmt:
	case *ContinueStmt:
	case *ReturnStmt:
		Walk(node.Value, f)
	case *ThrowStmt:
		Walk(node.Value, f)
	case *EmptyStmt:
	case *IllegalStmt:
	case *Field:
		Walk(node.Key, f)
		Walk(node.Value, f)
	case *ReadonlyExpr:
		Walk(node.Expr, f)
	case *VarExpr:
	case *ThisExpr:
	case *ObjGetExpr:
		Walk(node.Object, f)
		Walk(node.Member, f)
	case *ArrayGetExpr:
		Walk(node.Array, f)
		Walk(node.Index, f)
	case *CallconvExpr:
		Walk(node.Expr, f)
	case *AsExpr:
		Walk(node.Expr, f)
		Walk(node.Type, f)
	case *IsExpr:
		Walk(node.Expr, f)
		Walk(node.Type, f)
	case *HoleExpr:
		Walk(node.Expr, f)
	case *AwaitExpr:
		Walk(node.Expr, f)
	case *GroupExpr:
		Walk(node.Expr, f)
	case *DarrayExpr:
		walkSlice(node.Fields, f)
	case *VarrayExpr:
		walkSlice(node.Elems, f)
	case *ShapeExpr:
		walkSlice(node.Fields, f)
	case *ValCollectionExpr:
		walkSlice(node.Elems, f)
	case *KeyValCollectionExpr:
		walkSlice(node.Fields, f)
	case *CollectionExpr:
		walkSlice(node.Fields, f)
	case *RecordExpr:
		walkSlice(node.Fields, f)
	case *TupleExpr:
		walkSlice(node.Elems, f)
	case *ListExpr:
		walkSlice(node.Elems, f)
	case *TernaryExpr:
		Walk(node.Condition, f)
		Walk(node.Then, f)
		Walk(node.Else, f)
	case *PairExpr:
		Walk(node.First, f)
		Walk(node.Second, f)
	case *LiteralExpr:
	case *InterpolatedStringExpr:
		walkSlice(node.Parts, f)
	case *PrefixedStringExpr:
	case *OmittedExpr:
	case *IdentExpr:
	case *FunExpr:
		Walk(node.Function, f)
	case *LambdaExpr:
		Walk(node.Function, f)
		Walk(node.Expr, f)
	case *XmlExpr:
		walkSlice(node.Children, f)
	case *CastExpr:
		Walk(node.Expr, f)
	case *NewExpr:
		Walk(node.Class, f)
		walkSlice(node.Args, f)
	case *UnaryExpr:
		Walk(node.Expr, f)
	case *BinaryExpr:
		Walk(node.Left, f)
		Walk(node.Right, f)
	case *AssignExpr:
		Walk(node.Left, f)
		Walk(node.Right, f)
	case *CloneExpr:
		Walk(node.Expr, f)
	case *FunctionPointerExpr:
		Walk(node.Target, f)
	case *FunIdExpr:
		Walk(node.Name, f)
	case *MethodIdExpr:
		Walk(node.Object, f)
		Walk(node.Method, f)
	case *SmethodIdExpr:
		Walk(node.Class, f)
		Walk(node.Method, f)
	case *MethodCallerExpr:
		Walk(node.Class, f)
		Walk(node.Method, f)
	case *YieldExpr:
		Walk(node.Key, f)
		Walk(node.Value, f)
	case *PipeExpr:
		Walk(node.Left, f)
		Walk(node.Right, f)
	case *DollarDollarExpr:
	case *ExpressionTreeExpr:
		Walk(node.Body, f)
	case *ETSpliceExpr:
		Walk(node.Expr, f)
	case *EnumClassLabelExpr:
	case *ImportExpr:
		Walk(node.Expr, f)
	case *PlaceholderExpr:
	case *CallExpr:
		Walk(node.Callee, f)
		walkSlice(node.Args, f)
		Walk(node.Unpack, f)
	case *ClassGetExpr:
		Walk(node.Class, f)
	case *ClassConstExpr:
		Walk(node.Class, f)
	}
}

func walkSlice[T Node](nodes []T, f func(Node) bool) {
	for _, node := range nodes {
		Walk(node, f)
	}
}

// isNil reports whether node is nil or a nil pointer wrapped in a Node.
func isNil(node Node) bool {
	if node == nil {
		return true
	}
	v := reflect.ValueOf(node)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Find returns the first node in the AST rooted at root, in depth-first order, for which f returns true.
func Find[T Node](root Node, f func(T) bool) (T, bool) {
	var result T
	found := false
	Walk(root, func(n Node) bool {
		if found {
			return false
		}
		if n, ok := n.(T); ok && f(n) {
			result = n
			found = true
			return false
		}
		return true
	})
	return result, found
}
