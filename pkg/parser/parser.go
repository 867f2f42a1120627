// Package parser implements the Soplang recursive-descent parser.
package parser

import (
	"errors"
	"fmt"

	"github.com/soplang/soplang/pkg/ast"
	"github.com/soplang/soplang/pkg/diagnostics"
	"github.com/soplang/soplang/pkg/lexer"
)

// parser stops at the first diagnostic: every sub-parser returns nil after
// an error and callers unwind by checking for nil.
type parser struct {
	tokens []lexer.Token
	pos    int
	diags  []diagnostics.Diagnostic
}

// Parse tokenizes source and parses it into an AST.
func Parse(source, filename string) (*ast.Program, []diagnostics.Diagnostic) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		var le *lexer.LexError
		if errors.As(err, &le) {
			return nil, []diagnostics.Diagnostic{le.Diag}
		}
		return nil, []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.EUnexpectedChar, err.Error(), nil, "")}
	}
	return ParseTokens(tokens)
}

// ParseTokens parses an already tokenized program. The slice should end in
// TokEOF; one is synthesized if it does not.
func ParseTokens(tokens []lexer.Token) (*ast.Program, []diagnostics.Diagnostic) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.TokEOF {
		var span ast.Span
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1].Span
			span = ast.Span{File: last.File, StartLine: last.EndLine, StartCol: last.EndCol, EndLine: last.EndLine, EndCol: last.EndCol}
		}
		tokens = append(tokens[:len(tokens):len(tokens)], lexer.Token{Type: lexer.TokEOF, Span: span})
	}

	p := &parser{tokens: tokens, pos: 0}
	prog := p.parseProgram()
	if len(p.diags) > 0 {
		return nil, p.diags
	}
	return prog, nil
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) peekAt(offset int) lexer.TokenType {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return lexer.TokEOF
	}
	return p.tokens[idx].Type
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) previous() lexer.Token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *parser) expect(typ lexer.TokenType) (lexer.Token, bool) {
	tok := p.current()
	if tok.Type != typ {
		p.expected(tokenName(typ), tok)
		return tok, false
	}
	return p.advance(), true
}

// expectWord consumes an identifier spelled word; min, ilaa and by are
// contextual words rather than keywords.
func (p *parser) expectWord(word string) bool {
	tok := p.current()
	if tok.Type != lexer.TokIdent || tok.Value != word {
		p.expected("'"+word+"'", tok)
		return false
	}
	p.advance()
	return true
}

func (p *parser) expected(what string, found lexer.Token) {
	p.addDiag(diagnostics.New(diagnostics.EExpectedToken, spanPtr(found.Span), diagnostics.Args{
		"expected": what,
		"found":    describe(found),
	}))
}

func (p *parser) unexpected(tok lexer.Token) {
	p.addDiag(diagnostics.New(diagnostics.EUnexpectedToken, spanPtr(tok.Span), diagnostics.Args{
		"token": describe(tok),
	}))
}

func (p *parser) invalid(detail string, span ast.Span) {
	p.addDiag(diagnostics.New(diagnostics.EInvalidSyntax, spanPtr(span), diagnostics.Args{"detail": detail}))
}

func (p *parser) addDiag(d diagnostics.Diagnostic) {
	if len(p.diags) == 0 {
		p.diags = append(p.diags, d)
	}
}

func (p *parser) failed() bool {
	return len(p.diags) > 0
}

func (p *parser) spanFrom(start ast.Span) ast.Span {
	end := p.previous().Span
	return p.spanFromTo(start, end)
}

func (p *parser) spanFromTo(start, end ast.Span) ast.Span {
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

func spanPtr(s ast.Span) *ast.Span {
	return &s
}

func tokenName(t lexer.TokenType) string {
	switch t {
	case lexer.TokIdent:
		return "identifier"
	case lexer.TokString:
		return "string"
	case lexer.TokNumber:
		return "number"
	case lexer.TokEOF:
		return "end of file"
	default:
		return "'" + t.String() + "'"
	}
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.TokIdent:
		return fmt.Sprintf("identifier '%s'", tok.Value)
	case lexer.TokString:
		return fmt.Sprintf("string \"%s\"", tok.Value)
	case lexer.TokNumber:
		return "number " + tok.Value
	case lexer.TokEOF:
		return "end of file"
	}
	if tok.Type.IsKeyword() && tok.Value != "" {
		return "'" + tok.Value + "'"
	}
	return tokenName(tok.Type)
}

// isCallableKeyword reports keywords that may name a builtin in call position.
func isCallableKeyword(t lexer.TokenType) bool {
	return t.IsStaticType() || t == lexer.TokQor || t == lexer.TokAkhri
}

// isPropertyName reports tokens usable after '.'; keywords are allowed so
// that methods such as `liis.jar` or `x.shey` still parse.
func isPropertyName(t lexer.TokenType) bool {
	return t == lexer.TokIdent || t.IsKeyword()
}

// --- Program ---

func (p *parser) parseProgram() *ast.Program {
	startSpan := p.current().Span

	var stmts []ast.Stmt
	for p.peek() != lexer.TokEOF {
		if p.peek() == lexer.TokSemicolon {
			p.advance()
			continue
		}
		stmt := p.parseStmt()
		if stmt == nil {
			return nil
		}
		stmts = append(stmts, stmt)
	}

	return &ast.Program{
		Span:       p.spanFromTo(startSpan, p.current().Span),
		Statements: stmts,
	}
}

// parseBlock parses `{ stmt* }`.
func (p *parser) parseBlock() ([]ast.Stmt, bool) {
	if _, ok := p.expect(lexer.TokLBrace); !ok {
		return nil, false
	}
	stmts := []ast.Stmt{}
	for p.peek() != lexer.TokRBrace {
		if p.peek() == lexer.TokEOF {
			p.expected("'}'", p.current())
			return nil, false
		}
		if p.peek() == lexer.TokSemicolon {
			p.advance()
			continue
		}
		stmt := p.parseStmt()
		if stmt == nil {
			return nil, false
		}
		stmts = append(stmts, stmt)
	}
	p.advance() // consume '}'
	return stmts, true
}

func (p *parser) skipSemicolon() {
	if p.peek() == lexer.TokSemicolon {
		p.advance()
	}
}

// --- Statements ---

func (p *parser) parseStmt() ast.Stmt {
	var stmt ast.Stmt
	switch tt := p.peek(); {
	case tt == lexer.TokHaddii:
		stmt = p.parseIf()
	case tt == lexer.TokDoor:
		stmt = p.parseVarDecl()
	case tt.IsStaticType() && p.peekAt(1) != lexer.TokLParen:
		stmt = p.parseVarDecl()
	case tt == lexer.TokHawl:
		stmt = p.parseFuncDecl()
	case tt == lexer.TokCeli:
		stmt = p.parseReturn()
	case tt == lexer.TokQor && p.peekAt(1) != lexer.TokLParen:
		stmt = p.parsePrint()
	case tt == lexer.TokKuCeli:
		stmt = p.parseFor()
	case tt == lexer.TokIntaAy:
		stmt = p.parseWhile()
	case tt == lexer.TokJooji:
		tok := p.advance()
		stmt = &ast.BreakStmt{Span: tok.Span}
	case tt == lexer.TokSiiWad:
		tok := p.advance()
		stmt = &ast.ContinueStmt{Span: tok.Span}
	case tt == lexer.TokIskuDay:
		stmt = p.parseTry()
	case tt == lexer.TokKaKeen:
		stmt = p.parseImport()
	case tt == lexer.TokFasalka:
		stmt = p.parseClass()
	case tt == lexer.TokLBrace:
		start := p.current().Span
		body, ok := p.parseBlock()
		if !ok {
			return nil
		}
		stmt = &ast.BlockStmt{Span: p.spanFrom(start), Body: body}
	case tt == lexer.TokIdent || tt == lexer.TokNafta:
		stmt = p.parseIdentStmt()
	case tt == lexer.TokHaddiiKale, tt == lexer.TokHaddiiKalena, tt == lexer.TokQabo,
		tt == lexer.TokKaDhaxal, tt == lexer.TokRBrace:
		p.unexpected(p.current())
		return nil
	default:
		stmt = p.parseExprStmt()
	}
	if stmt == nil || p.failed() {
		return nil
	}
	p.skipSemicolon()
	return stmt
}

// parseVarDecl handles `door x = v` and `tiro|qoraal|bool|liis|shey x = v`.
func (p *parser) parseVarDecl() ast.Stmt {
	start := p.advance()
	typ := ast.TypeDynamic
	if start.Type.IsStaticType() {
		typ = ast.StaticType(start.Type.String())
	}

	name, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.TokAssign); !ok {
		return nil
	}
	value := p.parseExpr()
	if value == nil {
		return nil
	}
	return &ast.VarDecl{
		Span:  p.spanFrom(start.Span),
		Type:  typ,
		Name:  name.Value,
		Value: value,
	}
}

func (p *parser) parseFuncDecl() ast.Stmt {
	start := p.advance() // consume 'hawl'
	name, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.TokLParen); !ok {
		return nil
	}
	params := []string{}
	for p.peek() != lexer.TokRParen {
		param, ok := p.expect(lexer.TokIdent)
		if !ok {
			return nil
		}
		params = append(params, param.Value)
		if p.peek() == lexer.TokComma {
			p.advance()
			continue
		}
		if p.peek() != lexer.TokRParen {
			p.expected("',' or ')'", p.current())
			return nil
		}
	}
	p.advance() // consume ')'

	body, ok := p.parseBlock()
	if !ok {
		return nil
	}
	return &ast.FuncDecl{
		Span:   p.spanFrom(start.Span),
		Name:   name.Value,
		Params: params,
		Body:   body,
	}
}

func (p *parser) parseReturn() ast.Stmt {
	start := p.advance() // consume 'celi'
	switch p.peek() {
	case lexer.TokSemicolon, lexer.TokRBrace, lexer.TokEOF:
		return &ast.ReturnStmt{Span: start.Span}
	}
	value := p.parseExpr()
	if value == nil {
		return nil
	}
	return &ast.ReturnStmt{Span: p.spanFrom(start.Span), Value: value}
}

// parsePrint handles `qor expr`, which is sugar for the qor builtin. With a
// parenthesised argument list qor is parsed as an ordinary call.
func (p *parser) parsePrint() ast.Stmt {
	start := p.advance() // consume 'qor'
	arg := p.parseExpr()
	if arg == nil {
		return nil
	}
	span := p.spanFrom(start.Span)
	return &ast.ExprStmt{
		Span: span,
		Expr: &ast.CallExpr{Span: span, Name: "qor", Args: []ast.Expr{arg}},
	}
}

func (p *parser) parseCondition() ast.Expr {
	if _, ok := p.expect(lexer.TokLParen); !ok {
		return nil
	}
	cond := p.parseExpr()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokRParen); !ok {
		return nil
	}
	return cond
}

func (p *parser) parseIf() ast.Stmt {
	start := p.advance() // consume 'haddii'
	cond := p.parseCondition()
	if cond == nil {
		return nil
	}
	body, ok := p.parseBlock()
	if !ok {
		return nil
	}
	stmt := &ast.IfStmt{Cond: cond, Body: body}

	for p.peek() == lexer.TokHaddiiKale {
		elifStart := p.advance()
		elifCond := p.parseCondition()
		if elifCond == nil {
			return nil
		}
		elifBody, ok := p.parseBlock()
		if !ok {
			return nil
		}
		stmt.Elifs = append(stmt.Elifs, ast.ElifClause{
			Span: p.spanFrom(elifStart.Span),
			Cond: elifCond,
			Body: elifBody,
		})
	}

	if p.peek() == lexer.TokHaddiiKalena {
		elseStart := p.advance()
		elseBody, ok := p.parseBlock()
		if !ok {
			return nil
		}
		stmt.Else = &ast.BlockStmt{Span: p.spanFrom(elseStart.Span), Body: elseBody}
	}

	stmt.Span = p.spanFrom(start.Span)
	return stmt
}

// parseFor handles `ku_celi i min a ilaa b [by s] { ... }`.
func (p *parser) parseFor() ast.Stmt {
	start := p.advance() // consume 'ku_celi'
	loopVar, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	if !p.expectWord("min") {
		return nil
	}
	from := p.parseExpr()
	if from == nil {
		return nil
	}
	if !p.expectWord("ilaa") {
		return nil
	}
	to := p.parseExpr()
	if to == nil {
		return nil
	}

	var step ast.Expr
	if tok := p.current(); tok.Type == lexer.TokIdent && tok.Value == "by" {
		p.advance()
		step = p.parseExpr()
		if step == nil {
			return nil
		}
	}

	body, ok := p.parseBlock()
	if !ok {
		return nil
	}
	return &ast.ForStmt{
		Span:  p.spanFrom(start.Span),
		Var:   loopVar.Value,
		Start: from,
		End:   to,
		Step:  step,
		Body:  body,
	}
}

func (p *parser) parseWhile() ast.Stmt {
	start := p.advance() // consume 'inta_ay'
	cond := p.parseCondition()
	if cond == nil {
		return nil
	}
	body, ok := p.parseBlock()
	if !ok {
		return nil
	}
	return &ast.WhileStmt{Span: p.spanFrom(start.Span), Cond: cond, Body: body}
}

// parseTry handles `isku_day { ... } qabo (err) { ... }`; the binding is optional.
func (p *parser) parseTry() ast.Stmt {
	start := p.advance() // consume 'isku_day'
	body, ok := p.parseBlock()
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.TokQabo); !ok {
		return nil
	}
	var errName string
	if p.peek() == lexer.TokLParen {
		p.advance()
		name, ok := p.expect(lexer.TokIdent)
		if !ok {
			return nil
		}
		errName = name.Value
		if _, ok := p.expect(lexer.TokRParen); !ok {
			return nil
		}
	}
	handler, ok := p.parseBlock()
	if !ok {
		return nil
	}
	return &ast.TryStmt{
		Span:    p.spanFrom(start.Span),
		Body:    body,
		ErrName: errName,
		Handler: handler,
	}
}

func (p *parser) parseImport() ast.Stmt {
	start := p.advance() // consume 'ka_keen'
	path := p.current()
	if path.Type != lexer.TokString {
		p.expected("string for file path", path)
		return nil
	}
	p.advance()
	return &ast.ImportStmt{Span: p.spanFrom(start.Span), Path: path.Value}
}

func (p *parser) parseClass() ast.Stmt {
	start := p.advance() // consume 'fasalka'
	name, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	var parent string
	if p.peek() == lexer.TokKaDhaxal {
		p.advance()
		tok, ok := p.expect(lexer.TokIdent)
		if !ok {
			return nil
		}
		parent = tok.Value
	}
	body, ok := p.parseBlock()
	if !ok {
		return nil
	}
	return &ast.ClassDecl{
		Span:   p.spanFrom(start.Span),
		Name:   name.Value,
		Parent: parent,
		Body:   body,
	}
}

// parseIdentStmt handles statements that begin with an identifier: calls,
// `name = v`, `obj.prop = v`, `list[i] = v`, or any expression. The
// assignable chain is tried first and the parser rewinds if no '=' follows.
func (p *parser) parseIdentStmt() ast.Stmt {
	mark := p.pos
	start := p.current().Span
	target := p.parsePostfix()
	if target == nil {
		return nil
	}

	if p.peek() == lexer.TokAssign {
		eq := p.advance()
		switch target.(type) {
		case *ast.Ident, *ast.PropertyExpr, *ast.IndexExpr:
		default:
			p.invalid("cannot assign to "+target.Kind(), eq.Span)
			return nil
		}
		value := p.parseExpr()
		if value == nil {
			return nil
		}
		return &ast.AssignStmt{Span: p.spanFrom(start), Target: target, Value: value}
	}

	p.pos = mark
	return p.parseExprStmt()
}

func (p *parser) parseExprStmt() ast.Stmt {
	start := p.current().Span
	expr := p.parseExpr()
	if expr == nil {
		return nil
	}
	return &ast.ExprStmt{Span: p.spanFrom(start), Expr: expr}
}

// --- Expressions ---

func (p *parser) parseExpr() ast.Expr {
	return p.parseLogical()
}

// && and || share one precedence level and associate to the left.
func (p *parser) parseLogical() ast.Expr {
	left := p.parseComparison()
	if left == nil {
		return nil
	}
	for {
		var op ast.BinaryOp
		switch p.peek() {
		case lexer.TokAndAnd:
			op = ast.OpAnd
		case lexer.TokOrOr:
			op = ast.OpOr
		default:
			return left
		}
		p.advance()
		right := p.parseComparison()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
}

func (p *parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	if left == nil {
		return nil
	}
	for {
		var op ast.BinaryOp
		switch p.peek() {
		case lexer.TokGt:
			op = ast.OpGt
		case lexer.TokLt:
			op = ast.OpLt
		case lexer.TokGtEq:
			op = ast.OpGtEq
		case lexer.TokLtEq:
			op = ast.OpLtEq
		case lexer.TokEqEq:
			op = ast.OpEqEq
		case lexer.TokBangEq:
			op = ast.OpNeq
		default:
			return left
		}
		p.advance()
		right := p.parseAdditive()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
}

func (p *parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	if left == nil {
		return nil
	}
	for p.peek() == lexer.TokPlus || p.peek() == lexer.TokMinus {
		opTok := p.advance()
		op := ast.OpAdd
		if opTok.Type == lexer.TokMinus {
			op = ast.OpSub
		}
		right := p.parseMultiplicative()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
	return left
}

func (p *parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for p.peek() == lexer.TokStar || p.peek() == lexer.TokSlash || p.peek() == lexer.TokPercent {
		opTok := p.advance()
		var op ast.BinaryOp
		switch opTok.Type {
		case lexer.TokStar:
			op = ast.OpMul
		case lexer.TokSlash:
			op = ast.OpDiv
		case lexer.TokPercent:
			op = ast.OpMod
		}
		right := p.parseUnary()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
	return left
}

// parseUnary folds `-<number>` into a negative literal; other operands get a UnaryExpr.
func (p *parser) parseUnary() ast.Expr {
	switch p.peek() {
	case lexer.TokPlus:
		p.advance()
		return p.parseUnary()
	case lexer.TokMinus:
		start := p.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		span := p.spanFromTo(start.Span, operand.NodeSpan())
		if lit, ok := operand.(*ast.NumberLit); ok {
			return &ast.NumberLit{Span: span, Value: -lit.Value}
		}
		return &ast.UnaryExpr{Span: span, Op: ast.OpNeg, Operand: operand}
	case lexer.TokBang:
		start := p.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.UnaryExpr{
			Span:    p.spanFromTo(start.Span, operand.NodeSpan()),
			Op:      ast.OpNot,
			Operand: operand,
		}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}
	for {
		switch p.peek() {
		case lexer.TokDot:
			p.advance()
			nameTok := p.current()
			if !isPropertyName(nameTok.Type) {
				p.expected("property name", nameTok)
				return nil
			}
			p.advance()
			if p.peek() == lexer.TokLParen {
				args, ok := p.parseArgs()
				if !ok {
					return nil
				}
				expr = &ast.MethodCallExpr{
					Span:     p.spanFrom(expr.NodeSpan()),
					Receiver: expr,
					Method:   nameTok.Value,
					Args:     args,
				}
				continue
			}
			expr = &ast.PropertyExpr{
				Span:   p.spanFrom(expr.NodeSpan()),
				Object: expr,
				Name:   nameTok.Value,
			}
		case lexer.TokLBracket:
			p.advance()
			index := p.parseExpr()
			if index == nil {
				return nil
			}
			if _, ok := p.expect(lexer.TokRBracket); !ok {
				return nil
			}
			expr = &ast.IndexExpr{
				Span:   p.spanFrom(expr.NodeSpan()),
				Object: expr,
				Index:  index,
			}
		default:
			return expr
		}
	}
}

// parseArgs parses `( expr, ... )`.
func (p *parser) parseArgs() ([]ast.Expr, bool) {
	if _, ok := p.expect(lexer.TokLParen); !ok {
		return nil, false
	}
	args := []ast.Expr{}
	for p.peek() != lexer.TokRParen {
		arg := p.parseExpr()
		if arg == nil {
			return nil, false
		}
		args = append(args, arg)
		if p.peek() == lexer.TokComma {
			p.advance()
			continue
		}
		if p.peek() != lexer.TokRParen {
			p.expected("',' or ')'", p.current())
			return nil, false
		}
	}
	p.advance() // consume ')'
	return args, true
}

func (p *parser) parsePrimary() ast.Expr {
	tok := p.current()

	switch {
	case tok.Type == lexer.TokNumber:
		p.advance()
		return &ast.NumberLit{Span: tok.Span, Value: tok.Number}
	case tok.Type == lexer.TokString:
		p.advance()
		return &ast.StringLit{Span: tok.Span, Value: tok.Value}
	case tok.Type == lexer.TokTrue:
		p.advance()
		return &ast.BoolLit{Span: tok.Span, Value: true}
	case tok.Type == lexer.TokFalse:
		p.advance()
		return &ast.BoolLit{Span: tok.Span, Value: false}
	case tok.Type == lexer.TokNull:
		p.advance()
		return &ast.NullLit{Span: tok.Span}
	case tok.Type == lexer.TokIdent || tok.Type == lexer.TokNafta || isCallableKeyword(tok.Type):
		p.advance()
		name := tok.Value
		if tok.Type != lexer.TokIdent {
			name = tok.Type.String()
		}
		if p.peek() == lexer.TokLParen {
			args, ok := p.parseArgs()
			if !ok {
				return nil
			}
			return &ast.CallExpr{Span: p.spanFrom(tok.Span), Name: name, Args: args}
		}
		return &ast.Ident{Span: tok.Span, Name: name}
	case tok.Type == lexer.TokCusub:
		return p.parseNew()
	case tok.Type == lexer.TokLParen:
		p.advance()
		expr := p.parseExpr()
		if expr == nil {
			return nil
		}
		if _, ok := p.expect(lexer.TokRParen); !ok {
			return nil
		}
		return expr
	case tok.Type == lexer.TokLBracket:
		return p.parseList()
	case tok.Type == lexer.TokLBrace:
		return p.parseObject()
	}

	p.unexpected(tok)
	return nil
}

// parseNew handles `cusub Name(args)`; the argument list is optional.
func (p *parser) parseNew() ast.Expr {
	start := p.advance() // consume 'cusub'
	name, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	args := []ast.Expr{}
	if p.peek() == lexer.TokLParen {
		args, ok = p.parseArgs()
		if !ok {
			return nil
		}
	}
	return &ast.NewExpr{Span: p.spanFrom(start.Span), Class: name.Value, Args: args}
}

func (p *parser) parseList() ast.Expr {
	start := p.advance() // consume '['
	elems := []ast.Expr{}
	for p.peek() != lexer.TokRBracket {
		elem := p.parseExpr()
		if elem == nil {
			return nil
		}
		elems = append(elems, elem)
		if p.peek() == lexer.TokComma {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(lexer.TokRBracket); !ok {
		return nil
	}
	return &ast.ListLit{Span: p.spanFrom(start.Span), Elements: elems}
}

// parseObject handles `{ key: value, "key": value }`.
func (p *parser) parseObject() ast.Expr {
	start := p.advance() // consume '{'
	var entries []ast.ObjectEntry
	for p.peek() != lexer.TokRBrace {
		keyTok := p.current()
		if keyTok.Type != lexer.TokIdent && keyTok.Type != lexer.TokString {
			p.expected("property name (identifier or string)", keyTok)
			return nil
		}
		p.advance()
		if _, ok := p.expect(lexer.TokColon); !ok {
			return nil
		}
		value := p.parseExpr()
		if value == nil {
			return nil
		}
		entries = append(entries, ast.ObjectEntry{
			Span:  p.spanFrom(keyTok.Span),
			Key:   keyTok.Value,
			Value: value,
		})
		if p.peek() == lexer.TokComma {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(lexer.TokRBrace); !ok {
		return nil
	}
	return &ast.ObjectLit{Span: p.spanFrom(start.Span), Entries: entries}
}
