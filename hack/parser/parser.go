// Package parser implements a parser for a subset of Hack source code.
package parser

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/marcuscaisey/hackro/hack/ast"
	"github.com/marcuscaisey/hackro/hack/diag"
	"github.com/marcuscaisey/hackro/hack/token"
)

// Parse parses the source code read from r. filename is the name of the file being parsed.
// If an error is returned then an incomplete AST will still be returned along with it.
func Parse(r io.Reader, filename string) (*ast.Program, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	return ParseFile(token.NewFile(filename, src))
}

// ParseFile parses the contents of file.
// If an error is returned then an incomplete AST will still be returned along with it.
func ParseFile(file *token.File) (*ast.Program, error) {
	p := &parser{file: file}
	lexer := newLexer(file)
	lexer.SetErrorHandler(func(tok token.Token, format string, args ...any) {
		p.addErrorf(tok, format, args...)
	})
	p.toks = lexer.All()
	p.tok = p.toks[0]
	return p.parseProgram(), p.errs.Err()
}

type parser struct {
	file *token.File
	toks []token.Token
	idx  int         // index of tok in toks
	tok  token.Token // token currently being considered

	errs       diag.Errors
	lastErrPos token.Position

	noAs bool // whether as and ?as end the expression, as they do in a foreach header
}

func (p *parser) parseProgram() *ast.Program {
	p.match(token.OpenTag)
	return &ast.Program{
		File:  p.file,
		Stmts: p.parseDeclsUntil(token.EOF),
	}
}

func (p *parser) parseDeclsUntil(types ...token.Type) []ast.Stmt {
	var stmts []ast.Stmt
	for !slices.Contains(types, p.tok.Type) {
		stmts = append(stmts, p.safelyParseDecl())
	}
	return stmts
}

func (p *parser) safelyParseDecl() (stmt ast.Stmt) {
	from := p.idx
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(unwind); !ok {
				panic(r)
			}
			if p.idx == from {
				p.next()
			}
			to := p.sync()
			stmt = &ast.IllegalStmt{From: p.toks[from], To: to}
		}
	}()
	return p.parseDecl()
}

// sync synchronises the parser with the next statement. This is used to recover from a parsing error.
// The final token before the next statement is returned.
func (p *parser) sync() token.Token {
	finalTok := p.prev()
	for {
		switch p.tok.Type {
		case token.Semicolon:
			finalTok := p.tok
			p.next()
			return finalTok
		case token.If, token.While, token.Do, token.For, token.Foreach, token.Switch, token.Try, token.Return,
			token.Break, token.Continue, token.Throw, token.Echo, token.Function, token.Class, token.LeftBrace,
			token.RightBrace, token.EOF:
			return finalTok
		}
		finalTok = p.tok
		p.next()
	}
}

func (p *parser) parseDecl() ast.Stmt {
	switch {
	case p.tok.Type == token.Function && p.peek(1).Type == token.Ident,
		p.tok.Type == token.Async && p.peek(1).Type == token.Function && p.peek(2).Type == token.Ident:
		return p.parseFunDecl()
	case p.isClassStart():
		return p.parseClassDecl()
	case p.tok.Type == token.Const:
		return p.parseConstDecl(nil)
	default:
		return p.parseStmt()
	}
}

func (p *parser) isClassStart() bool {
	i := 0
	for p.peek(i).Type == token.Abstract || p.peek(i).Type == token.Final {
		i++
	}
	switch p.peek(i).Type {
	case token.Class, token.Interface, token.Trait:
		return true
	default:
		return false
	}
}

func (p *parser) parseFunDecl() *ast.FunDecl {
	async := p.optional(token.Async)
	fun := p.expect(token.Function)
	name := p.expectf(token.Ident, "expected function name")
	return &ast.FunDecl{
		Async:    async,
		Fun:      fun,
		Name:     name,
		Function: p.parseFun(true),
	}
}

func (p *parser) parseClassDecl() *ast.ClassDecl {
	decl := &ast.ClassDecl{}
	for p.tok.Type == token.Abstract || p.tok.Type == token.Final {
		decl.Modifiers = append(decl.Modifiers, p.tok)
		p.next()
	}
	decl.Keyword = p.tok
	p.next()
	decl.Name = p.expectf(token.Ident, "expected %s name", decl.Keyword.Lexeme)
	if p.match(token.Less) {
		p.skipTypeList(token.Greater)
		p.expect(token.Greater)
	}
	if p.match(token.Extends) {
		decl.Extends = p.parseTypeList()
	}
	if p.match(token.Implements) {
		decl.Implements = p.parseTypeList()
	}
	p.expect(token.LeftBrace)
	for p.tok.Type != token.RightBrace && p.tok.Type != token.EOF {
		decl.Body = append(decl.Body, p.parseClassMember())
	}
	decl.RightBrace = p.expect(token.RightBrace)
	return decl
}

func (p *parser) parseClassMember() ast.Stmt {
	var modifiers []token.Token
	for isModifier(p.tok.Type) || (p.tok.Type == token.Readonly && p.peek(1).Type != token.Function) {
		modifiers = append(modifiers, p.tok)
		p.next()
	}
	switch {
	case p.tok.Type == token.Function, p.tok.Type == token.Readonly:
		return p.parseMethodDecl(modifiers)
	case p.tok.Type == token.Const:
		return p.parseConstDecl(modifiers)
	default:
		return p.parsePropertyDecl(modifiers)
	}
}

func isModifier(t token.Type) bool {
	switch t {
	case token.Public, token.Private, token.Protected, token.Static, token.Abstract, token.Final, token.Async:
		return true
	default:
		return false
	}
}

func (p *parser) parseMethodDecl(modifiers []token.Token) *ast.MethodDecl {
	readonlyThis := p.optional(token.Readonly)
	fun := p.expect(token.Function)
	name := p.expectName("expected method name")
	fn := p.parseFun(false)
	fn.ReadonlyThis = readonlyThis
	decl := &ast.MethodDecl{
		Modifiers: modifiers,
		Fun:       fun,
		Name:      name,
		Function:  fn,
	}
	if fn.Body == nil {
		decl.Semicolon = p.expect(token.Semicolon)
	}
	return decl
}

func (p *parser) parsePropertyDecl(modifiers []token.Token) *ast.PropertyDecl {
	decl := &ast.PropertyDecl{Modifiers: modifiers}
	if p.tok.Type != token.Variable {
		decl.Type = p.parseType()
	}
	decl.Name = p.expectf(token.Variable, "expected property name")
	if p.match(token.Equal) {
		decl.Initialiser = p.parseExpr()
	}
	decl.Semicolon = p.expect(token.Semicolon)
	return decl
}

func (p *parser) parseConstDecl(modifiers []token.Token) *ast.ConstDecl {
	decl := &ast.ConstDecl{Modifiers: modifiers, Const: p.expect(token.Const)}
	if !(p.tok.Type == token.Ident && (p.peek(1).Type == token.Equal || p.peek(1).Type == token.Semicolon)) {
		decl.Type = p.parseType()
	}
	decl.Name = p.expectf(token.Ident, "expected constant name")
	if p.match(token.Equal) {
		decl.Value = p.parseExpr()
	}
	decl.Semicolon = p.expect(token.Semicolon)
	return decl
}

// parseFun parses a function's signature followed by its body. If bodyRequired is false, the body can be omitted.
func (p *parser) parseFun(bodyRequired bool) *ast.Function {
	fn := p.parseSignature()
	p.parseReturnType(fn)
	if leftBrace, ok := p.match2(token.LeftBrace); ok {
		fn.Body = p.parseBlock(leftBrace)
	} else if bodyRequired {
		p.expectf(token.LeftBrace, "expected function body")
	}
	return fn
}

func (p *parser) parseSignature() *ast.Function {
	leftParen := p.expect(token.LeftParen)
	params := p.parseParams()
	rightParen := p.expect(token.RightParen)
	return &ast.Function{
		LeftParen:  leftParen,
		Params:     params,
		RightParen: rightParen,
	}
}

func (p *parser) parseReturnType(fn *ast.Function) {
	if !p.match(token.Colon) {
		return
	}
	fn.ReadonlyReturn = p.optional(token.Readonly)
	fn.ReturnType = p.parseType()
}

func (p *parser) parseParams() []*ast.ParamDecl {
	var params []*ast.ParamDecl
	for p.tok.Type != token.RightParen {
		params = append(params, p.parseParam())
		if !p.match(token.Comma) {
			break
		}
	}
	return params
}

func (p *parser) parseParam() *ast.ParamDecl {
	param := &ast.ParamDecl{
		Inout:    p.optional(token.Inout),
		Readonly: p.optional(token.Readonly),
	}
	if p.tok.Type != token.Variable && p.tok.Type != token.Ellipsis {
		param.Type = p.parseType()
	}
	param.Variadic = p.optional(token.Ellipsis)
	param.Name = p.expectf(token.Variable, "expected parameter name")
	if p.match(token.Equal) {
		param.Default = p.parseExpr()
	}
	return param
}

// parseType parses a type annotation. Its structure is checked but only its source text is kept.
func (p *parser) parseType() *ast.TypeHint {
	start := p.tok.StartPos
	p.skipType()
	end := p.prev().EndPos
	return &ast.TypeHint{
		StartPos: start,
		EndPos:   end,
		Text:     string(p.file.Contents[start.Offset:end.Offset]),
	}
}

func (p *parser) parseTypeList() []*ast.TypeHint {
	var types []*ast.TypeHint
	for {
		types = append(types, p.parseType())
		if !p.match(token.Comma) {
			return types
		}
	}
}

func (p *parser) skipType() {
	switch {
	case p.match(token.Question), p.match(token.At):
		p.skipType()
	case p.match(token.LeftParen):
		if p.match(token.Function) {
			p.expect(token.LeftParen)
			p.skipTypeList(token.RightParen)
			p.expect(token.RightParen)
			p.expect(token.Colon)
			p.optional(token.Readonly)
			p.skipType()
		} else {
			p.skipTypeList(token.RightParen)
		}
		p.expect(token.RightParen)
	case p.match(token.Shape):
		p.expect(token.LeftParen)
		for p.tok.Type != token.RightParen {
			if !p.match(token.Ellipsis) {
				p.match(token.Question)
				if !p.match(token.String) {
					p.expectName("expected shape field name")
					p.expect(token.ColonColon)
					p.expectName("expected class constant name")
				}
				p.expect(token.DoubleArrow)
				p.skipType()
			}
			if !p.match(token.Comma) {
				break
			}
		}
		p.expect(token.RightParen)
	case isName(p.tok):
		p.next()
		for p.match(token.ColonColon) {
			p.expectName("expected type constant name")
		}
		if p.match(token.Less) {
			p.skipTypeList(token.Greater)
			p.expect(token.Greater)
		}
	default:
		p.addErrorf(p.tok, "expected type")
		panic(unwind{})
	}
}

func (p *parser) skipTypeList(closing token.Type) {
	for p.tok.Type != closing {
		p.optional(token.Inout)
		p.optional(token.Readonly)
		p.skipType()
		p.match(token.Ellipsis)
		if !p.match(token.Comma) {
			return
		}
	}
}

func (p *parser) parseStmt() ast.Stmt {
	switch tok := p.tok; {
	case p.match(token.LeftBrace):
		return p.parseBlock(tok)
	case p.match(token.If):
		return p.parseIfStmt(tok)
	case p.match(token.While):
		return p.parseWhileStmt(tok)
	case p.match(token.Do):
		return p.parseDoStmt(tok)
	case p.match(token.For):
		return p.parseForStmt(tok)
	case p.match(token.Foreach):
		return p.parseForeachStmt(tok)
	case p.match(token.Try):
		return p.parseTryStmt(tok)
	case p.match(token.Switch):
		return p.parseSwitchStmt(tok)
	case p.match(token.Break):
		return &ast.BreakStmt{Break: tok, Semicolon: p.expect(token.Semicolon)}
	case p.match(token.Continue):
		return &ast.ContinueStmt{Continue: tok, Semicolon: p.expect(token.Semicolon)}
	case p.match(token.Return):
		return p.parseReturnStmt(tok)
	case p.match(token.Throw):
		value := p.parseExpr()
		return &ast.ThrowStmt{Throw: tok, Value: value, Semicolon: p.expect(token.Semicolon)}
	case p.match(token.Echo):
		exprs := p.parseExprList(token.Semicolon)
		return &ast.EchoStmt{Echo: tok, Exprs: exprs, Semicolon: p.expect(token.Semicolon)}
	case p.match(token.Semicolon):
		return &ast.EmptyStmt{Semicolon: tok}
	default:
		return p.parseExprStmt()
	}
}

func (p *parser) parseExprStmt() *ast.ExprStmt {
	expr := p.parseExpr()
	semicolon := p.expect(token.Semicolon)
	return &ast.ExprStmt{Expr: expr, Semicolon: semicolon}
}

func (p *parser) parseBlock(leftBrace token.Token) *ast.Block {
	stmts := p.parseDeclsUntil(token.RightBrace, token.EOF)
	rightBrace := p.expect(token.RightBrace)
	return &ast.Block{LeftBrace: leftBrace, Stmts: stmts, RightBrace: rightBrace}
}

func (p *parser) parseIfStmt(ifTok token.Token) *ast.IfStmt {
	condition := p.parseParenExpr()
	stmt := &ast.IfStmt{If: ifTok, Condition: condition, Then: p.parseStmt()}
	if elseifTok, ok := p.match2(token.Elseif); ok {
		stmt.Else = p.parseIfStmt(elseifTok)
	} else if p.match(token.Else) {
		stmt.Else = p.parseStmt()
	}
	return stmt
}

func (p *parser) parseWhileStmt(whileTok token.Token) *ast.WhileStmt {
	condition := p.parseParenExpr()
	body := p.parseStmt()
	return &ast.WhileStmt{While: whileTok, Condition: condition, Body: body}
}

func (p *parser) parseDoStmt(doTok token.Token) *ast.DoStmt {
	body := p.parseStmt()
	p.expect(token.While)
	condition := p.parseParenExpr()
	semicolon := p.expect(token.Semicolon)
	return &ast.DoStmt{Do: doTok, Body: body, Condition: condition, Semicolon: semicolon}
}

func (p *parser) parseForStmt(forTok token.Token) *ast.ForStmt {
	p.expect(token.LeftParen)
	initialise := p.parseExprList(token.Semicolon)
	p.expect(token.Semicolon)
	condition := p.parseExprList(token.Semicolon)
	p.expect(token.Semicolon)
	update := p.parseExprList(token.RightParen)
	p.expect(token.RightParen)
	body := p.parseStmt()
	return &ast.ForStmt{For: forTok, Initialise: initialise, Condition: condition, Update: update, Body: body}
}

func (p *parser) parseForeachStmt(foreachTok token.Token) *ast.ForeachStmt {
	p.expect(token.LeftParen)
	stmt := &ast.ForeachStmt{Foreach: foreachTok, Collection: p.parseExprNoAs()}
	p.expect(token.As)
	stmt.Value = p.parseExpr()
	if p.match(token.DoubleArrow) {
		stmt.Key = stmt.Value
		stmt.Value = p.parseExpr()
	}
	p.expect(token.RightParen)
	stmt.Body = p.parseStmt()
	return stmt
}

func (p *parser) parseTryStmt(tryTok token.Token) *ast.TryStmt {
	stmt := &ast.TryStmt{Try: tryTok, Body: p.parseBlock(p.expect(token.LeftBrace))}
	for {
		catchTok, ok := p.match2(token.Catch)
		if !ok {
			break
		}
		p.expect(token.LeftParen)
		clause := &ast.CatchClause{Catch: catchTok, Type: p.parseType()}
		clause.Var = p.expectf(token.Variable, "expected exception variable")
		p.expect(token.RightParen)
		clause.Body = p.parseBlock(p.expect(token.LeftBrace))
		stmt.Catches = append(stmt.Catches, clause)
	}
	if p.match(token.Finally) {
		stmt.Finally = p.parseBlock(p.expect(token.LeftBrace))
	}
	if len(stmt.Catches) == 0 && stmt.Finally == nil {
		p.addErrorf(p.tok, "expected %m or %m", token.Catch, token.Finally)
	}
	return stmt
}

func (p *parser) parseSwitchStmt(switchTok token.Token) *ast.SwitchStmt {
	stmt := &ast.SwitchStmt{Switch: switchTok, Subject: p.parseParenExpr()}
	p.expect(token.LeftBrace)
	for p.tok.Type != token.RightBrace && p.tok.Type != token.EOF {
		clause := &ast.CaseClause{Case: p.tok}
		switch {
		case p.match(token.Case):
			clause.Value = p.parseExpr()
		case p.match(token.Default):
		default:
			p.addErrorf(p.tok, "expected %m or %m", token.Case, token.Default)
			panic(unwind{})
		}
		if semicolon, ok := p.match2(token.Semicolon); ok {
			clause.Colon = semicolon
		} else {
			clause.Colon = p.expect(token.Colon)
		}
		clause.Body = p.parseDeclsUntil(token.Case, token.Default, token.RightBrace, token.EOF)
		stmt.Cases = append(stmt.Cases, clause)
	}
	stmt.RightBrace = p.expect(token.RightBrace)
	return stmt
}

func (p *parser) parseReturnStmt(returnTok token.Token) *ast.ReturnStmt {
	semicolon, ok := p.match2(token.Semicolon)
	var value ast.Expr
	if !ok {
		value = p.parseExpr()
		semicolon = p.expect(token.Semicolon)
	}
	return &ast.ReturnStmt{Return: returnTok, Value: value, Semicolon: semicolon}
}

func (p *parser) parseParenExpr() ast.Expr {
	p.expect(token.LeftParen)
	expr := p.parseExpr()
	p.expect(token.RightParen)
	return expr
}

// parseExprList parses a comma separated list of expressions which ends before a token of type end.
func (p *parser) parseExprList(end token.Type) []ast.Expr {
	var exprs []ast.Expr
	for p.tok.Type != end {
		exprs = append(exprs, p.parseExpr())
		if !p.match(token.Comma) {
			break
		}
	}
	return exprs
}

func (p *parser) parseExpr() ast.Expr {
	return p.parseAssignExpr()
}

// parseExprNoAs parses an expression which stops before an as or ?as that isn't inside a parenthesised expression or
// argument list.
func (p *parser) parseExprNoAs() ast.Expr {
	prev := p.noAs
	p.noAs = true
	defer func() { p.noAs = prev }()
	return p.parseExpr()
}

// parseNestedExpr parses an expression between delimiters, where as and ?as are always type operators.
func (p *parser) parseNestedExpr() ast.Expr {
	prev := p.noAs
	p.noAs = false
	defer func() { p.noAs = prev }()
	return p.parseExpr()
}

var assignOps = []token.Type{
	token.Equal, token.PlusEqual, token.MinusEqual, token.AsteriskEqual, token.SlashEqual, token.DotEqual,
	token.PercentEqual, token.QuestionQuestionEq,
}

func (p *parser) parseAssignExpr() ast.Expr {
	if p.isLambdaStart() {
		return p.parseLambdaExpr()
	}
	if yieldTok, ok := p.match2(token.Yield); ok {
		return p.parseYieldExpr(yieldTok)
	}
	left := p.parseTernaryExpr()
	if op, ok := p.match2(assignOps...); ok {
		right := p.parseAssignExpr()
		return &ast.AssignExpr{Left: left, Op: op, Right: right}
	}
	return left
}

// isLambdaStart reports whether the upcoming tokens start a lambda, such as $x ==> or (int $x): int ==>.
func (p *parser) isLambdaStart() bool {
	i := 0
	if p.peek(i).Type == token.Async {
		i++
	}
	switch p.peek(i).Type {
	case token.Variable:
		return p.peek(i+1).Type == token.LongArrow
	case token.LeftParen:
		closing, ok := p.matchingParen(i)
		if !ok {
			return false
		}
		switch p.peek(closing + 1).Type {
		case token.LongArrow:
			return true
		case token.Colon:
			return p.longArrowFollows(closing + 2)
		}
	}
	return false
}

// matchingParen returns the offset from the current token of the parenthesis which closes the one at offset i.
func (p *parser) matchingParen(i int) (int, bool) {
	depth := 0
	for ; ; i++ {
		switch p.peek(i).Type {
		case token.LeftParen:
			depth++
		case token.RightParen:
			depth--
			if depth == 0 {
				return i, true
			}
		case token.EOF:
			return 0, false
		}
	}
}

// longArrowFollows reports whether a ==> appears at offset i or later before the end of the enclosing expression.
func (p *parser) longArrowFollows(i int) bool {
	depth := 0
	for ; ; i++ {
		switch p.peek(i).Type {
		case token.LongArrow:
			if depth == 0 {
				return true
			}
		case token.LeftParen, token.LeftBrack, token.LeftBrace:
			depth++
		case token.RightParen, token.RightBrack, token.RightBrace:
			if depth == 0 {
				return false
			}
			depth--
		case token.Semicolon, token.EOF:
			return false
		case token.Comma:
			if depth == 0 {
				return false
			}
		}
	}
}

func (p *parser) parseLambdaExpr() *ast.LambdaExpr {
	lambda := &ast.LambdaExpr{Async: p.optional(token.Async)}
	if name, ok := p.match2(token.Variable); ok {
		lambda.Function = &ast.Function{Params: []*ast.ParamDecl{{Name: name}}}
	} else {
		lambda.Function = p.parseSignature()
		p.parseReturnType(lambda.Function)
	}
	lambda.Arrow = p.expect(token.LongArrow)
	if leftBrace, ok := p.match2(token.LeftBrace); ok {
		lambda.Function.Body = p.parseBlock(leftBrace)
	} else {
		lambda.Expr = p.parseAssignExpr()
	}
	return lambda
}

func (p *parser) parseYieldExpr(yieldTok token.Token) *ast.YieldExpr {
	expr := &ast.YieldExpr{Yield: yieldTok}
	switch p.tok.Type {
	case token.Semicolon, token.RightParen, token.RightBrack, token.Comma:
		return expr
	}
	expr.Value = p.parseTernaryExpr()
	if p.match(token.DoubleArrow) {
		expr.Key = expr.Value
		expr.Value = p.parseTernaryExpr()
	}
	return expr
}

func (p *parser) parseTernaryExpr() ast.Expr {
	expr := p.parseCoalesceExpr()
	if p.tok.Type != token.Question {
		return expr
	}
	p.next()
	var then ast.Expr
	if !p.match(token.Colon) {
		then = p.parseAssignExpr()
		p.expect(token.Colon)
	}
	elseExpr := p.parseTernaryExpr()
	return &ast.TernaryExpr{Condition: expr, Then: then, Else: elseExpr}
}

func (p *parser) parseCoalesceExpr() ast.Expr {
	expr := p.parseLogicalOrExpr()
	if op, ok := p.match2(token.QuestionQuestion); ok {
		right := p.parseCoalesceExpr()
		return &ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) parseLogicalOrExpr() ast.Expr {
	return p.parseBinaryExpr(p.parseLogicalAndExpr, token.BarBar)
}

func (p *parser) parseLogicalAndExpr() ast.Expr {
	return p.parseBinaryExpr(p.parseBitwiseOrExpr, token.AmpAmp)
}

func (p *parser) parseBitwiseOrExpr() ast.Expr {
	return p.parseBinaryExpr(p.parseBitwiseXorExpr, token.Bar)
}

func (p *parser) parseBitwiseXorExpr() ast.Expr {
	return p.parseBinaryExpr(p.parseBitwiseAndExpr, token.Caret)
}

func (p *parser) parseBitwiseAndExpr() ast.Expr {
	return p.parseBinaryExpr(p.parseEqualityExpr, token.Amp)
}

func (p *parser) parseEqualityExpr() ast.Expr {
	return p.parseBinaryExpr(p.parseRelationalExpr, token.EqualEqual, token.BangEqual, token.EqualEqualEqual, token.BangEqualEqual)
}

func (p *parser) parseRelationalExpr() ast.Expr {
	return p.parseBinaryExpr(p.parsePipeExpr, token.Less, token.LessEqual, token.Greater, token.GreaterEqual)
}

func (p *parser) parsePipeExpr() ast.Expr {
	expr := p.parseAdditiveExpr()
	for {
		pipe, ok := p.match2(token.Pipe)
		if !ok {
			return expr
		}
		right := p.parseAdditiveExpr()
		expr = &ast.PipeExpr{Left: expr, Pipe: pipe, Right: right}
	}
}

func (p *parser) parseAdditiveExpr() ast.Expr {
	return p.parseBinaryExpr(p.parseMultiplicativeExpr, token.Dot, token.Plus, token.Minus)
}

func (p *parser) parseMultiplicativeExpr() ast.Expr {
	return p.parseBinaryExpr(p.parseTypeOpExpr, token.Asterisk, token.Slash, token.Percent)
}

// parseBinaryExpr parses a binary expression which uses the given operators. next is a function which parses an
// expression of next highest precedence.
func (p *parser) parseBinaryExpr(next func() ast.Expr, operators ...token.Type) ast.Expr {
	expr := next()
	for {
		op, ok := p.match2(operators...)
		if !ok {
			break
		}
		right := next()
		expr = &ast.BinaryExpr{
			Left:  expr,
			Op:    op,
			Right: right,
		}
	}
	return expr
}

func (p *parser) parseTypeOpExpr() ast.Expr {
	expr := p.parseUnaryExpr()
	for {
		switch tok := p.tok; {
		case p.match(token.Is):
			expr = &ast.IsExpr{Expr: expr, Is: tok, Type: p.parseType()}
		case p.noAs && (p.tok.Type == token.As || p.tok.Type == token.Question && p.peek(1).Type == token.As):
			return expr
		case p.match(token.As):
			expr = &ast.AsExpr{Expr: expr, As: tok, Type: p.parseType()}
		case p.tok.Type == token.Question && p.peek(1).Type == token.As:
			p.next()
			as := p.tok
			p.next()
			expr = &ast.AsExpr{Expr: expr, Nullable: true, As: as, Type: p.parseType()}
		default:
			return expr
		}
	}
}

var castTypes = []string{"int", "float", "string", "bool"}

func (p *parser) parseUnaryExpr() ast.Expr {
	switch tok := p.tok; {
	case p.match(token.Bang, token.Minus, token.Plus, token.Tilde, token.At, token.PlusPlus, token.MinusMinus):
		return &ast.UnaryExpr{Op: tok, Expr: p.parseUnaryExpr()}
	case p.match(token.Await):
		return &ast.AwaitExpr{Await: tok, Expr: p.parseUnaryExpr()}
	case p.match(token.Readonly):
		return &ast.ReadonlyExpr{Readonly: tok, Expr: p.parseUnaryExpr()}
	case p.match(token.Clone):
		return &ast.CloneExpr{Clone: tok, Expr: p.parseUnaryExpr()}
	case p.match(token.Inout):
		return &ast.CallconvExpr{Inout: tok, Expr: p.parseUnaryExpr()}
	case p.match(token.Require, token.RequireOnce, token.Include, token.IncludeOnce):
		return &ast.ImportExpr{Kind: tok, Expr: p.parseTernaryExpr()}
	case tok.Type == token.LeftParen && p.peek(1).Type == token.Ident && slices.Contains(castTypes, p.peek(1).Lexeme) &&
		p.peek(2).Type == token.RightParen:
		typ := p.peek(1)
		rightParen := p.peek(2)
		p.next()
		p.next()
		p.next()
		return &ast.CastExpr{LeftParen: tok, Type: typ, RightParen: rightParen, Expr: p.parseUnaryExpr()}
	default:
		return p.parsePostfixExpr()
	}
}

func (p *parser) parsePostfixExpr() ast.Expr {
	expr := p.parsePrimaryExpr()
	for {
		switch tok := p.tok; {
		case p.match(token.Arrow, token.QuestionArrow):
			expr = &ast.ObjGetExpr{Object: expr, Arrow: tok, Member: p.parseMember()}
		case p.match(token.LeftBrack):
			var index ast.Expr
			if p.tok.Type != token.RightBrack {
				index = p.parseExpr()
			}
			expr = &ast.ArrayGetExpr{Array: expr, Index: index, RightBrack: p.expect(token.RightBrack)}
		case p.match(token.LeftParen):
			expr = p.parseCallExpr(expr)
		case p.match(token.ColonColon):
			if prop, ok := p.match2(token.Variable); ok {
				expr = &ast.ClassGetExpr{Class: expr, ColonColon: tok, Prop: prop}
			} else {
				expr = &ast.ClassConstExpr{Class: expr, ColonColon: tok, Name: p.expectName("expected class member name")}
			}
		case p.match(token.PlusPlus, token.MinusMinus):
			expr = &ast.UnaryExpr{Op: tok, Expr: expr, Postfix: true}
		case tok.Type == token.Less && p.peek(1).Type == token.Greater && isFunctionPointerTarget(expr):
			p.next()
			expr = &ast.FunctionPointerExpr{Target: expr, Greater: p.tok}
			p.next()
		default:
			return expr
		}
	}
}

func isFunctionPointerTarget(expr ast.Expr) bool {
	switch expr.(type) {
	case *ast.IdentExpr, *ast.ClassConstExpr:
		return true
	default:
		return false
	}
}

func (p *parser) parseMember() ast.Expr {
	switch tok := p.tok; {
	case p.match(token.Variable):
		return &ast.VarExpr{Name: tok}
	case isName(tok):
		p.next()
		return &ast.IdentExpr{Name: tok}
	default:
		p.addErrorf(tok, "expected property name")
		panic(unwind{})
	}
}

func (p *parser) parseCallExpr(callee ast.Expr) *ast.CallExpr {
	call := &ast.CallExpr{Callee: callee}
	for p.tok.Type != token.RightParen {
		if p.match(token.Ellipsis) {
			call.Unpack = p.parseNestedExpr()
			p.match(token.Comma)
			break
		}
		call.Args = append(call.Args, p.parseNestedExpr())
		if !p.match(token.Comma) {
			break
		}
	}
	call.RightParen = p.expect(token.RightParen)
	return call
}

func (p *parser) parsePrimaryExpr() ast.Expr {
	switch tok := p.tok; {
	case p.match(token.Int, token.Float, token.True, token.False, token.Null):
		return &ast.LiteralExpr{Value: tok}
	case p.match(token.String):
		return p.parseStringExpr(tok)
	case p.match(token.PrefixedString):
		return &ast.PrefixedStringExpr{Value: tok}
	case p.match(token.Variable):
		if tok.Lexeme == token.IdentPlaceholder {
			return &ast.PlaceholderExpr{Placeholder: tok}
		}
		return &ast.VarExpr{Name: tok}
	case p.match(token.DollarDollar):
		return &ast.DollarDollarExpr{DollarDollar: tok}
	case p.match(token.LeftParen):
		expr := p.parseNestedExpr()
		return &ast.GroupExpr{LeftParen: tok, Expr: expr, RightParen: p.expect(token.RightParen)}
	case p.match(token.New):
		return p.parseNewExpr(tok)
	case p.match(token.Vec, token.Keyset):
		p.expect(token.LeftBrack)
		elems := p.parseExprList(token.RightBrack)
		return &ast.ValCollectionExpr{Kind: tok, Elems: elems, Close: p.expect(token.RightBrack)}
	case p.match(token.Dict):
		p.expect(token.LeftBrack)
		fields := p.parseFields(token.RightBrack, true)
		return &ast.KeyValCollectionExpr{Kind: tok, Fields: fields, Close: p.expect(token.RightBrack)}
	case p.match(token.Varray):
		p.expect(token.LeftBrack)
		elems := p.parseExprList(token.RightBrack)
		return &ast.VarrayExpr{Varray: tok, Elems: elems, RightBrack: p.expect(token.RightBrack)}
	case p.match(token.Darray):
		p.expect(token.LeftBrack)
		fields := p.parseFields(token.RightBrack, true)
		return &ast.DarrayExpr{Darray: tok, Fields: fields, RightBrack: p.expect(token.RightBrack)}
	case p.match(token.Shape):
		p.expect(token.LeftParen)
		fields := p.parseFields(token.RightParen, true)
		return &ast.ShapeExpr{Shape: tok, Fields: fields, RightParen: p.expect(token.RightParen)}
	case p.match(token.Tuple):
		p.expect(token.LeftParen)
		elems := p.parseExprList(token.RightParen)
		return &ast.TupleExpr{Tuple: tok, Elems: elems, RightParen: p.expect(token.RightParen)}
	case p.match(token.List):
		p.expect(token.LeftParen)
		elems := p.parseListElems()
		return &ast.ListExpr{List: tok, Elems: elems, RightParen: p.expect(token.RightParen)}
	case p.match(token.Function):
		return p.parseFunExpr(token.Token{}, tok)
	case tok.Type == token.Async && p.peek(1).Type == token.Function:
		p.next()
		fun := p.tok
		p.next()
		return p.parseFunExpr(tok, fun)
	case p.match(token.Hash):
		return &ast.EnumClassLabelExpr{Hash: tok, Label: p.expectf(token.Ident, "expected enum class label")}
	case p.match(token.Ident, token.Static):
		return p.parseNameExpr(tok)
	default:
		p.addErrorf(tok, "expected expression")
		panic(unwind{})
	}
}

// parseStringExpr parses a string literal. Variables interpolated into a double quoted string are parsed as
// VarExprs.
func (p *parser) parseStringExpr(tok token.Token) ast.Expr {
	s := tok.Lexeme
	if !strings.HasPrefix(s, `"`) {
		return &ast.LiteralExpr{Value: tok}
	}
	var parts []ast.Expr
	for i := 1; i < len(s)-1; i++ {
		switch {
		case s[i] == '\\':
			i++
		case s[i] == '$' && isAlpha(rune(s[i+1])):
			j := i + 1
			for j < len(s)-1 && isAlphaNumeric(rune(s[j])) {
				j++
			}
			parts = append(parts, &ast.VarExpr{Name: token.Token{
				StartPos: p.file.Position(tok.StartPos.Offset + i),
				EndPos:   p.file.Position(tok.StartPos.Offset + j),
				Type:     token.Variable,
				Lexeme:   s[i:j],
			}})
			i = j - 1
		}
	}
	if len(parts) == 0 {
		return &ast.LiteralExpr{Value: tok}
	}
	return &ast.InterpolatedStringExpr{Value: tok, Parts: parts}
}

func (p *parser) parseNewExpr(newTok token.Token) *ast.NewExpr {
	var class ast.Expr
	switch tok := p.tok; {
	case p.match(token.Variable):
		class = &ast.VarExpr{Name: tok}
	case p.match(token.Ident, token.Static):
		class = &ast.IdentExpr{Name: tok}
	default:
		p.addErrorf(tok, "expected class name")
		panic(unwind{})
	}
	p.expect(token.LeftParen)
	args := p.parseExprList(token.RightParen)
	return &ast.NewExpr{New: newTok, Class: class, Args: args, RightParen: p.expect(token.RightParen)}
}

// parseFields parses a comma separated list of fields which ends before a token of type end. If keyRequired is true
// then each field must be a key-value pair.
func (p *parser) parseFields(end token.Type, keyRequired bool) []*ast.Field {
	var fields []*ast.Field
	for p.tok.Type != end {
		field := &ast.Field{Value: p.parseExpr()}
		if p.match(token.DoubleArrow) {
			field.Key = field.Value
			field.Value = p.parseExpr()
		} else if keyRequired {
			p.expect(token.DoubleArrow)
		}
		fields = append(fields, field)
		if !p.match(token.Comma) {
			break
		}
	}
	return fields
}

func (p *parser) parseListElems() []ast.Expr {
	var elems []ast.Expr
	for p.tok.Type != token.RightParen {
		if comma, ok := p.match2(token.Comma); ok {
			elems = append(elems, &ast.OmittedExpr{Pos: comma.StartPos})
			continue
		}
		elems = append(elems, p.parseExpr())
		if !p.match(token.Comma) {
			break
		}
	}
	return elems
}

func (p *parser) parseFunExpr(async, fun token.Token) *ast.FunExpr {
	expr := &ast.FunExpr{Async: async, Fun: fun, Function: p.parseSignature()}
	expr.Use = p.parseUseClause()
	p.parseReturnType(expr.Function)
	if expr.Use == nil {
		expr.Use = p.parseUseClause()
	}
	expr.Function.Body = p.parseBlock(p.expect(token.LeftBrace))
	return expr
}

func (p *parser) parseUseClause() []token.Token {
	if !p.match(token.Use) {
		return nil
	}
	p.expect(token.LeftParen)
	var vars []token.Token
	for p.tok.Type != token.RightParen {
		vars = append(vars, p.expectf(token.Variable, "expected variable name"))
		if !p.match(token.Comma) {
			break
		}
	}
	p.expect(token.RightParen)
	return vars
}

// parseNameExpr parses an expression which starts with the name tok, such as a constant, a collection literal or an
// enum class label.
func (p *parser) parseNameExpr(name token.Token) ast.Expr {
	switch {
	case p.match(token.LeftBrace):
		return p.parseCollectionLiteral(name)
	case p.tok.Type == token.Hash:
		hash := p.tok
		p.next()
		return &ast.EnumClassLabelExpr{Class: name, Hash: hash, Label: p.expectf(token.Ident, "expected enum class label")}
	case p.tok.Type == token.LeftParen:
		switch name.Lexeme {
		case "fun":
			p.next()
			fn := p.parseExpr()
			return &ast.FunIdExpr{Fun: name, Name: fn, RightParen: p.expect(token.RightParen)}
		case "inst_meth":
			p.next()
			object, method := p.parseArgPair()
			return &ast.MethodIdExpr{InstMeth: name, Object: object, Method: method, RightParen: p.expect(token.RightParen)}
		case "class_meth":
			p.next()
			class, method := p.parseArgPair()
			return &ast.SmethodIdExpr{ClassMeth: name, Class: class, Method: method, RightParen: p.expect(token.RightParen)}
		case "meth_caller":
			p.next()
			class, method := p.parseArgPair()
			return &ast.MethodCallerExpr{MethCaller: name, Class: class, Method: method, RightParen: p.expect(token.RightParen)}
		}
	}
	return &ast.IdentExpr{Name: name}
}

func (p *parser) parseArgPair() (ast.Expr, ast.Expr) {
	first := p.parseExpr()
	p.expect(token.Comma)
	second := p.parseExpr()
	p.match(token.Comma)
	return first, second
}

func (p *parser) parseCollectionLiteral(name token.Token) ast.Expr {
	switch name.Lexeme {
	case "Vector", "ImmVector", "Set", "ImmSet":
		elems := p.parseExprList(token.RightBrace)
		return &ast.ValCollectionExpr{Kind: name, Elems: elems, Close: p.expect(token.RightBrace)}
	case "Map", "ImmMap":
		fields := p.parseFields(token.RightBrace, true)
		return &ast.KeyValCollectionExpr{Kind: name, Fields: fields, Close: p.expect(token.RightBrace)}
	case "Pair":
		first, second := p.parseArgPair()
		return &ast.PairExpr{Pair: name, First: first, Second: second, RightBrace: p.expect(token.RightBrace)}
	default:
		fields := p.parseFields(token.RightBrace, false)
		return &ast.CollectionExpr{Name: name, Fields: fields, RightBrace: p.expect(token.RightBrace)}
	}
}

func isName(tok token.Token) bool {
	return tok.Type == token.Ident || tok.Type.IsKeyword()
}

// match reports whether the current token is one of the given types and advances the parser if so.
func (p *parser) match(types ...token.Type) bool {
	if slices.Contains(types, p.tok.Type) {
		p.next()
		return true
	}
	return false
}

// match2 is like match but also returns the matched token.
func (p *parser) match2(types ...token.Type) (token.Token, bool) {
	tok := p.tok
	return tok, p.match(types...)
}

// optional returns the current token and advances the parser if it has the given type. Otherwise, the zero token is
// returned.
func (p *parser) optional(t token.Type) token.Token {
	if tok, ok := p.match2(t); ok {
		return tok
	}
	return token.Token{}
}

// expect returns the current token and advances the parser if it has the given type. Otherwise, an "expected %m" error
// is added and the method panics to unwind the stack.
func (p *parser) expect(t token.Type) token.Token {
	return p.expectf(t, "expected %m", t)
}

// expectf is like expect but accepts a format string for the error message.
func (p *parser) expectf(t token.Type, format string, a ...any) token.Token {
	if tok, ok := p.match2(t); ok {
		return tok
	}
	p.addErrorf(p.tok, format, a...)
	panic(unwind{})
}

// expectName is like expectf but accepts any identifier or keyword.
func (p *parser) expectName(message string) token.Token {
	if tok := p.tok; isName(tok) {
		p.next()
		return tok
	}
	p.addErrorf(p.tok, "%s", message)
	panic(unwind{})
}

// next advances the parser to the next token.
func (p *parser) next() {
	if p.idx < len(p.toks)-1 {
		p.idx++
	}
	p.tok = p.toks[p.idx]
}

// peek returns the token i tokens after the current one. The EOF token is returned if there are fewer than i tokens
// left.
func (p *parser) peek(i int) token.Token {
	return p.toks[min(p.idx+i, len(p.toks)-1)]
}

// prev returns the token before the current one.
func (p *parser) prev() token.Token {
	return p.toks[max(p.idx-1, 0)]
}

func (p *parser) addErrorf(rang token.Range, format string, args ...any) {
	start := rang.Start()
	if len(p.errs) > 0 && start == p.lastErrPos {
		return
	}
	p.lastErrPos = start
	p.errs.Addf(rang, format, args...)
}

// unwind is used as a panic value so that we can unwind the stack and recover from a parsing error without having to
// check for errors after every call to each parsing method.
type unwind struct{}
