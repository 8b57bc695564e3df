package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sambeau/quill/pkg/quill/ast"
	perrors "github.com/sambeau/quill/pkg/quill/errors"
	"github.com/sambeau/quill/pkg/quill/lexer"
)

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	ASSIGN      // = += -= *= /= %= ^=
	MEMBERSHIP  // in
	LOGIC_OR    // or, ||
	LOGIC_AND   // and, &&
	EQUALS      // ==
	LESSGREATER // > or <
	SUM         // +
	PRODUCT     // *
	POWER       // ^
	PREFIX      // -X or !X
	POSTFIX     // x++ fn(x) list[i]
)

// precedences maps tokens to their precedence
var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:          ASSIGN,
	lexer.PLUS_ASSIGN:     ASSIGN,
	lexer.MINUS_ASSIGN:    ASSIGN,
	lexer.ASTERISK_ASSIGN: ASSIGN,
	lexer.SLASH_ASSIGN:    ASSIGN,
	lexer.PERCENT_ASSIGN:  ASSIGN,
	lexer.CARET_ASSIGN:    ASSIGN,
	lexer.IN:              MEMBERSHIP,
	lexer.OR:              LOGIC_OR,
	lexer.AND:             LOGIC_AND,
	lexer.EQ:              EQUALS,
	lexer.NOT_EQ:          EQUALS,
	lexer.LT:              LESSGREATER,
	lexer.GT:              LESSGREATER,
	lexer.LTE:             LESSGREATER,
	lexer.GTE:             LESSGREATER,
	lexer.PLUS:            SUM,
	lexer.MINUS:           SUM,
	lexer.ASTERISK:        PRODUCT,
	lexer.SLASH:           PRODUCT,
	lexer.PERCENT:         PRODUCT,
	lexer.CARET:           POWER,
	lexer.PLUSPLUS:        POSTFIX,
	lexer.MINUSMINUS:      POSTFIX,
	lexer.LPAREN:          POSTFIX,
	lexer.LBRACKET:        POSTFIX,
}

// sameLineOnly lists infix tokens that only continue an expression when
// they sit on the same line as the token before them. A '(' or '[' that
// opens a line starts a new expression instead of calling or indexing the
// previous one.
var sameLineOnly = map[lexer.TokenType]bool{
	lexer.PLUSPLUS:   true,
	lexer.MINUSMINUS: true,
	lexer.LPAREN:     true,
	lexer.LBRACKET:   true,
}

// Parser represents the parser
type Parser struct {
	l *lexer.Lexer

	structuredErrors []*perrors.QuillError

	prevToken lexer.Token
	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// New creates a new parser instance
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l: l,
	}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBoolean)
	p.registerPrefix(lexer.FALSE, p.parseBoolean)
	p.registerPrefix(lexer.NIL, p.parseNil)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpression)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.PLUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.PLUSPLUS, p.parsePrefixIncrement)
	p.registerPrefix(lexer.MINUSMINUS, p.parsePrefixIncrement)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.LBRACKET, p.parseListLiteral)
	p.registerPrefix(lexer.IF, p.parseIfExpression)
	p.registerPrefix(lexer.WHILE, p.parseWhileExpression)
	p.registerPrefix(lexer.FOR, p.parseForExpression)
	p.registerPrefix(lexer.FUNCTION, p.parseFunctionLiteral)
	p.registerPrefix(lexer.RETURN, p.parseReturnExpression)
	p.registerPrefix(lexer.BREAK, p.parseBreakExpression)
	p.registerPrefix(lexer.CONTINUE, p.parseContinueExpression)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	p.registerInfix(lexer.PLUS, p.parseInfixExpression)
	p.registerInfix(lexer.MINUS, p.parseInfixExpression)
	p.registerInfix(lexer.ASTERISK, p.parseInfixExpression)
	p.registerInfix(lexer.SLASH, p.parseInfixExpression)
	p.registerInfix(lexer.PERCENT, p.parseInfixExpression)
	p.registerInfix(lexer.CARET, p.parseInfixExpression)
	p.registerInfix(lexer.EQ, p.parseInfixExpression)
	p.registerInfix(lexer.NOT_EQ, p.parseInfixExpression)
	p.registerInfix(lexer.LT, p.parseInfixExpression)
	p.registerInfix(lexer.GT, p.parseInfixExpression)
	p.registerInfix(lexer.LTE, p.parseInfixExpression)
	p.registerInfix(lexer.GTE, p.parseInfixExpression)
	p.registerInfix(lexer.AND, p.parseInfixExpression)
	p.registerInfix(lexer.OR, p.parseInfixExpression)
	p.registerInfix(lexer.IN, p.parseInExpression)
	p.registerInfix(lexer.ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.PLUS_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.MINUS_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.ASTERISK_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.SLASH_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.PERCENT_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.CARET_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.PLUSPLUS, p.parsePostfixIncrement)
	p.registerInfix(lexer.MINUSMINUS, p.parsePostfixIncrement)
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.LBRACKET, p.parseIndexOrSliceExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns parser errors as strings (convenience method for tests).
// Prefer StructuredErrors() for production code.
func (p *Parser) Errors() []string {
	result := make([]string, len(p.structuredErrors))
	for i, err := range p.structuredErrors {
		if err.Line > 0 {
			result[i] = fmt.Sprintf("line %d, column %d: %s", err.Line, err.Column, err.Message)
		} else {
			result[i] = err.Message
		}
	}
	return result
}

// StructuredErrors returns parser errors as structured QuillError objects.
func (p *Parser) StructuredErrors() []*perrors.QuillError {
	return p.structuredErrors
}

func (p *Parser) failed() bool {
	return len(p.structuredErrors) > 0
}

// addStructuredError adds a structured error from the catalog.
// Only the first error is recorded - subsequent errors are usually cascading noise.
func (p *Parser) addStructuredError(code string, line, column int, data map[string]any) {
	if p.failed() {
		return
	}
	p.structuredErrors = append(p.structuredErrors, perrors.NewWithPosition(code, line, column, data))
}

// addLexError reports an ILLEGAL token. The lexer has already rendered the
// catalog message into the token literal.
func (p *Parser) addLexError(tok lexer.Token) {
	if p.failed() {
		return
	}
	p.structuredErrors = append(p.structuredErrors, &perrors.QuillError{
		Class:   perrors.ClassLex,
		Code:    tok.Code,
		Message: tok.Literal,
		Line:    tok.Line,
		Column:  tok.Column,
	})
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// nextToken advances prevToken, curToken, and peekToken
func (p *Parser) nextToken() {
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// ParseProgram parses the program and returns the AST. Parsing stops at the
// first error; callers should check Errors() before evaluating.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(lexer.EOF) && !p.failed() {
		if p.curTokenIs(lexer.SEMICOLON) {
			p.nextToken()
			continue
		}

		stmt := p.parseStatement()
		if stmt == nil {
			break
		}
		program.Statements = append(program.Statements, stmt)
		p.nextToken()
	}

	return program
}

func (p *Parser) parseStatement() ast.Statement {
	if p.curTokenIs(lexer.FUNCTION) && p.peekTokenIs(lexer.IDENT) {
		return p.parseFunctionDefinition()
	}
	return p.parseExpressionStatement()
}

// parseFunctionDefinition parses `function name(a, b) ... end function`.
func (p *Parser) parseFunctionDefinition() ast.Statement {
	def := &ast.FunctionDefinition{Token: p.curToken}
	p.nextToken() // move to name
	name := p.curToken.Literal

	fn := p.parseFunctionRest(def.Token)
	if fn == nil {
		return nil
	}
	fn.Name = name
	def.Function = fn
	return def
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}

	return stmt
}

// parseExpression parses expressions using Pratt parsing
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError()
		return nil
	}

	leftExp := prefix()

	for leftExp != nil && !p.peekTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		if sameLineOnly[p.peekToken.Type] && p.peekToken.Line != p.curToken.Line {
			return leftExp
		}

		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		// Overflowing literals still parse to ±Inf; anything else is malformed.
		if numErr, ok := err.(*strconv.NumError); !ok || numErr.Err != strconv.ErrRange {
			p.addStructuredError("LEX-0003", p.curToken.Line, p.curToken.Column, nil)
			return nil
		}
	}
	return &ast.NumberLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNil() ast.Expression {
	return &ast.NilLiteral{Token: p.curToken}
}

// parsePrefixExpression handles -x, +x, !x and not x
func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Type.String(),
	}

	p.nextToken()

	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parsePrefixIncrement() ast.Expression {
	tok := p.curToken

	p.nextToken()

	operand := p.parseExpression(PREFIX)
	if operand == nil {
		return nil
	}

	ident, ok := operand.(*ast.Identifier)
	if !ok {
		p.addStructuredError("PARSE-0005", tok.Line, tok.Column, map[string]any{"Operator": tok.Literal})
		return nil
	}

	return &ast.IncrementExpression{Token: tok, Target: ident, Operator: tok.Literal, Prefix: true}
}

func (p *Parser) parsePostfixIncrement(left ast.Expression) ast.Expression {
	tok := p.curToken

	ident, ok := left.(*ast.Identifier)
	if !ok {
		p.addStructuredError("PARSE-0005", tok.Line, tok.Column, map[string]any{"Operator": tok.Literal})
		return nil
	}

	return &ast.IncrementExpression{Token: tok, Target: ident, Operator: tok.Literal}
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Type.String(),
	}

	precedence := p.curPrecedence()
	if p.curTokenIs(lexer.CARET) {
		// right associative: 2 ^ 3 ^ 2 == 2 ^ (3 ^ 2)
		precedence--
	}

	p.nextToken()

	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

// parseInExpression parses the substring membership test `a in b`.
func (p *Parser) parseInExpression(left ast.Expression) ast.Expression {
	expression := &ast.InExpression{Token: p.curToken, Left: left}

	p.nextToken()

	expression.Right = p.parseExpression(MEMBERSHIP)
	if expression.Right == nil {
		return nil
	}

	return expression
}

// parseAssignmentExpression handles `name = value` and the compound forms.
// The target must be a plain variable and the value must start on the same
// line as the operator.
func (p *Parser) parseAssignmentExpression(left ast.Expression) ast.Expression {
	tok := p.curToken

	ident, ok := left.(*ast.Identifier)
	if !ok {
		p.addStructuredError("PARSE-0004", tok.Line, tok.Column, nil)
		return nil
	}

	switch p.peekToken.Type {
	case lexer.EOF, lexer.RBRACKET, lexer.RPAREN, lexer.COMMA, lexer.SEMICOLON:
		p.addStructuredError("PARSE-0003", tok.Line, tok.Column+len(tok.Literal), map[string]any{"Operator": tok.Literal})
		return nil
	}
	if p.peekToken.Line > tok.Line {
		p.addStructuredError("PARSE-0003", tok.Line, tok.Column+len(tok.Literal), map[string]any{"Operator": tok.Literal})
		return nil
	}

	p.nextToken()
	value := p.parseExpression(ASSIGN - 1) // right associative
	if value == nil {
		return nil
	}

	if fn, ok := value.(*ast.FunctionLiteral); ok {
		fn.Name = ident.Value
	}

	if tok.Type == lexer.ASSIGN {
		return &ast.AssignmentExpression{Token: tok, Name: ident, Value: value}
	}

	return &ast.CompoundAssignmentExpression{
		Token:    tok,
		Name:     ident,
		Operator: strings.TrimSuffix(tok.Literal, "="),
		Value:    value,
	}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) parseListLiteral() ast.Expression {
	list := &ast.ListLiteral{Token: p.curToken}

	elements, ok := p.parseExpressionList(lexer.RBRACKET)
	if !ok {
		return nil
	}
	list.Elements = elements

	return list
}

func (p *Parser) parseCallExpression(fn ast.Expression) ast.Expression {
	exp := &ast.CallExpression{Token: p.curToken, Function: fn}

	args, ok := p.parseExpressionList(lexer.RPAREN)
	if !ok {
		return nil
	}
	exp.Arguments = args

	return exp
}

// parseExpressionList parses comma separated expressions up to end. A
// trailing comma before end is allowed.
func (p *Parser) parseExpressionList(end lexer.TokenType) ([]ast.Expression, bool) {
	args := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return args, true
	}

	p.nextToken()
	arg := p.parseExpression(LOWEST)
	if arg == nil {
		return nil, false
	}
	args = append(args, arg)

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken() // consume comma
		if p.peekTokenIs(end) {
			break
		}
		p.nextToken()
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil, false
		}
		args = append(args, arg)
	}

	if !p.expectPeek(end) {
		return nil, false
	}

	return args, true
}

func (p *Parser) parseIndexOrSliceExpression(left ast.Expression) ast.Expression {
	tok := p.curToken

	p.nextToken()

	// Slice with no start: [:end]
	if p.curTokenIs(lexer.COLON) {
		return p.parseSliceExpression(tok, left, nil)
	}

	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}

	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		return p.parseSliceExpression(tok, left, first)
	}

	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}

	return &ast.IndexExpression{Token: tok, Left: left, Index: first}
}

// parseSliceExpression is entered with curToken on the colon.
func (p *Parser) parseSliceExpression(tok lexer.Token, left, start ast.Expression) ast.Expression {
	exp := &ast.SliceExpression{Token: tok, Left: left, Start: start}

	if p.peekTokenIs(lexer.RBRACKET) {
		p.nextToken()
		return exp
	}

	p.nextToken()
	exp.End = p.parseExpression(LOWEST)
	if exp.End == nil {
		return nil
	}

	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}

	return exp
}

// parseIfExpression parses if/then/else if/else/end if. The `end if` is
// consumed once for the whole chain.
func (p *Parser) parseIfExpression() ast.Expression {
	expression := p.parseIfChain()
	if expression == nil {
		return nil
	}

	if !p.expectEnd(lexer.IF) {
		return nil
	}

	return expression
}

// parseIfChain parses one `if cond then block` and any else branches,
// leaving curToken on the closing `end`.
func (p *Parser) parseIfChain() *ast.IfExpression {
	expression := &ast.IfExpression{Token: p.curToken}

	p.nextToken()
	expression.Condition = p.parseExpression(LOWEST)
	if expression.Condition == nil {
		return nil
	}

	if !p.expectPeek(lexer.THEN) {
		return nil
	}
	p.nextToken()

	expression.Consequence = p.parseBlock(lexer.ELSE, lexer.END)
	if expression.Consequence == nil {
		return nil
	}

	if !p.curTokenIs(lexer.ELSE) {
		return expression
	}

	if p.peekTokenIs(lexer.IF) {
		p.nextToken()
		nested := p.parseIfChain()
		if nested == nil {
			return nil
		}
		expression.Alternative = nested
		return expression
	}

	p.nextToken()
	alternative := p.parseBlock(lexer.END)
	if alternative == nil {
		return nil
	}
	expression.Alternative = alternative

	return expression
}

func (p *Parser) parseWhileExpression() ast.Expression {
	expression := &ast.WhileExpression{Token: p.curToken}

	p.nextToken()
	expression.Condition = p.parseExpression(LOWEST)
	if expression.Condition == nil {
		return nil
	}
	p.nextToken()

	expression.Body = p.parseBlock(lexer.END)
	if expression.Body == nil {
		return nil
	}

	if !p.expectEnd(lexer.WHILE) {
		return nil
	}

	return expression
}

// parseForExpression parses `for name in list ... end for`. Semicolons
// between the variable and `in` are skipped.
func (p *Parser) parseForExpression() ast.Expression {
	expression := &ast.ForExpression{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	expression.Variable = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	for p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}

	if !p.expectPeek(lexer.IN) {
		return nil
	}
	p.nextToken()

	expression.Iterable = p.parseExpression(LOWEST)
	if expression.Iterable == nil {
		return nil
	}
	p.nextToken()

	expression.Body = p.parseBlock(lexer.END)
	if expression.Body == nil {
		return nil
	}

	if !p.expectEnd(lexer.FOR) {
		return nil
	}

	return expression
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	fn := p.parseFunctionRest(p.curToken)
	if fn == nil {
		return nil
	}
	return fn
}

// parseFunctionRest parses `(params) body end function` with curToken on
// the token before the opening parenthesis.
func (p *Parser) parseFunctionRest(tok lexer.Token) *ast.FunctionLiteral {
	fn := &ast.FunctionLiteral{Token: tok}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}

	params, ok := p.parseFunctionParameters()
	if !ok {
		return nil
	}
	fn.Parameters = params
	p.nextToken()

	fn.Body = p.parseBlock(lexer.END)
	if fn.Body == nil {
		return nil
	}

	if !p.expectEnd(lexer.FUNCTION) {
		return nil
	}

	return fn
}

// parseFunctionParameters parses identifiers up to ')'. A trailing comma is
// allowed.
func (p *Parser) parseFunctionParameters() ([]*ast.Identifier, bool) {
	identifiers := []*ast.Identifier{}

	for p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		identifiers = append(identifiers, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil, false
	}

	return identifiers, true
}

func (p *Parser) parseReturnExpression() ast.Expression {
	expression := &ast.ReturnExpression{Token: p.curToken}

	p.nextToken()
	expression.ReturnValue = p.parseExpression(LOWEST)
	if expression.ReturnValue == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseBreakExpression() ast.Expression {
	return &ast.BreakExpression{Token: p.curToken}
}

func (p *Parser) parseContinueExpression() ast.Expression {
	return &ast.ContinueExpression{Token: p.curToken}
}

// parseBlock parses expressions until curToken is one of stops or EOF.
// Semicolons between expressions are skipped.
func (p *Parser) parseBlock(stops ...lexer.TokenType) *ast.BlockExpression {
	block := &ast.BlockExpression{Token: p.curToken}
	block.Expressions = []ast.Expression{}

	for !p.curTokenIs(lexer.EOF) && !p.curTokenIsAny(stops...) {
		if p.curTokenIs(lexer.SEMICOLON) {
			p.nextToken()
			continue
		}

		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil
		}
		block.Expressions = append(block.Expressions, expr)
		p.nextToken()
	}

	return block
}

// expectEnd checks for `end <keyword>` starting at curToken and leaves
// curToken on the keyword.
func (p *Parser) expectEnd(keyword lexer.TokenType) bool {
	if p.curTokenIs(lexer.ILLEGAL) {
		p.addLexError(p.curToken)
		return false
	}

	if !p.curTokenIs(lexer.END) {
		p.addStructuredError("PARSE-0006", p.curToken.Line, p.curToken.Column,
			map[string]any{"Keyword": keyword.String()})
		return false
	}

	if !p.peekTokenIs(keyword) {
		if p.peekTokenIs(lexer.ILLEGAL) {
			p.addLexError(p.peekToken)
			return false
		}
		p.addStructuredError("PARSE-0007", p.peekToken.Line, p.peekToken.Column,
			map[string]any{"Keyword": keyword.String(), "Got": tokenDisplay(p.peekToken)})
		return false
	}

	p.nextToken()
	return true
}

// Helper functions
func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) curTokenIsAny(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.curToken.Type == t {
			return true
		}
	}
	return false
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t lexer.TokenType) {
	if p.peekTokenIs(lexer.ILLEGAL) {
		p.addLexError(p.peekToken)
		return
	}

	p.addStructuredError("PARSE-0001", p.peekToken.Line, p.peekToken.Column, map[string]any{
		"Expected": expectedName(t),
		"Got":      tokenDisplay(p.peekToken),
	})
}

func (p *Parser) noPrefixParseFnError() {
	if p.curTokenIs(lexer.ILLEGAL) {
		p.addLexError(p.curToken)
		return
	}

	p.addStructuredError("PARSE-0002", p.curToken.Line, p.curToken.Column,
		map[string]any{"Token": tokenDisplay(p.curToken)})
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

// expectedName describes a token type for "expected X" messages.
func expectedName(t lexer.TokenType) string {
	switch t {
	case lexer.IDENT:
		return "an identifier"
	case lexer.EOF:
		return "end of file"
	default:
		return "'" + t.String() + "'"
	}
}

func tokenDisplay(tok lexer.Token) string {
	if tok.Type == lexer.EOF {
		return "end of file"
	}
	return tok.Literal
}
