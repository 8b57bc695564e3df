package lexer

import (
	"fmt"
	"sort"

	perrors "github.com/sambeau/quill/pkg/quill/errors"
)

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Identifiers and literals
	IDENT  // add, foobar, x, y, ...
	NUMBER // 42, 3.14, 1e9
	STRING // "foobar"

	// Operators
	ASSIGN   // =
	PLUS     // +
	MINUS    // -
	ASTERISK // *
	SLASH    // /
	PERCENT  // %
	CARET    // ^
	BANG     // ! or not
	LT       // <
	GT       // >
	LTE      // <=
	GTE      // >=
	EQ       // ==
	NOT_EQ   // !=
	AND      // && or and
	OR       // || or or

	// Increment and compound assignment
	PLUSPLUS        // ++
	MINUSMINUS      // --
	PLUS_ASSIGN     // +=
	MINUS_ASSIGN    // -=
	ASTERISK_ASSIGN // *=
	SLASH_ASSIGN    // /=
	PERCENT_ASSIGN  // %=
	CARET_ASSIGN    // ^=

	// Delimiters
	COMMA     // ,
	SEMICOLON // ;
	COLON     // :
	AT        // @
	LPAREN    // (
	RPAREN    // )
	LBRACKET  // [
	RBRACKET  // ]

	// Keywords
	IF       // "if"
	THEN     // "then"
	ELSE     // "else"
	END      // "end"
	WHILE    // "while"
	FOR      // "for"
	IN       // "in"
	BREAK    // "break"
	CONTINUE // "continue"
	FUNCTION // "function"
	RETURN   // "return"
	TRUE     // "true"
	FALSE    // "false"
	NIL      // "nil"
)

// Token represents a single token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
	Code    string // error catalog code, set only on ILLEGAL tokens
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %s, Line: %d, Column: %d}",
		t.Type.String(), t.Literal, t.Line, t.Column)
}

var tokenNames = map[TokenType]string{
	ILLEGAL:         "ILLEGAL",
	EOF:             "EOF",
	IDENT:           "IDENT",
	NUMBER:          "NUMBER",
	STRING:          "STRING",
	ASSIGN:          "=",
	PLUS:            "+",
	MINUS:           "-",
	ASTERISK:        "*",
	SLASH:           "/",
	PERCENT:         "%",
	CARET:           "^",
	BANG:            "!",
	LT:              "<",
	GT:              ">",
	LTE:             "<=",
	GTE:             ">=",
	EQ:              "==",
	NOT_EQ:          "!=",
	AND:             "&&",
	OR:              "||",
	PLUSPLUS:        "++",
	MINUSMINUS:      "--",
	PLUS_ASSIGN:     "+=",
	MINUS_ASSIGN:    "-=",
	ASTERISK_ASSIGN: "*=",
	SLASH_ASSIGN:    "/=",
	PERCENT_ASSIGN:  "%=",
	CARET_ASSIGN:    "^=",
	COMMA:           ",",
	SEMICOLON:       ";",
	COLON:           ":",
	AT:              "@",
	LPAREN:          "(",
	RPAREN:          ")",
	LBRACKET:        "[",
	RBRACKET:        "]",
	IF:              "if",
	THEN:            "then",
	ELSE:            "else",
	END:             "end",
	WHILE:           "while",
	FOR:             "for",
	IN:              "in",
	BREAK:           "break",
	CONTINUE:        "continue",
	FUNCTION:        "function",
	RETURN:          "return",
	TRUE:            "true",
	FALSE:           "false",
	NIL:             "nil",
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

var keywords = map[string]TokenType{
	"if":       IF,
	"then":     THEN,
	"else":     ELSE,
	"end":      END,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"break":    BREAK,
	"continue": CONTINUE,
	"function": FUNCTION,
	"return":   RETURN,
	"true":     TRUE,
	"false":    FALSE,
	"nil":      NIL,
	"and":      AND,
	"or":       OR,
	"not":      BANG,
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether ident is reserved.
func IsKeyword(ident string) bool {
	_, ok := keywords[ident]
	return ok
}

// Keywords returns every reserved word, sorted.
func Keywords() []string {
	words := make([]string, 0, len(keywords))
	for word := range keywords {
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}

// Lexer represents the lexical analyzer
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int
	column       int
}

// New creates a new lexer instance
func New(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // ASCII NUL character represents EOF
		l.position = l.readPosition
		return
	}

	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	l.ch = l.input[l.readPosition]
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) peekCharN(n int) byte {
	pos := l.readPosition + n - 1
	if pos >= len(l.input) {
		return 0
	}
	return l.input[pos]
}

// NextToken returns the next token, or EOF once the input is exhausted.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	line, column := l.line, l.column
	tok := Token{Line: line, Column: column}

	switch l.ch {
	case 0:
		tok.Type = EOF
		tok.Literal = ""
		return tok
	case '"':
		str, terminated := l.readString()
		if !terminated {
			return l.illegal("LEX-0002", str, line, column)
		}
		tok.Type = STRING
		tok.Literal = str
		l.readChar()
		return tok
	case '+':
		tok = l.either('+', PLUSPLUS, '=', PLUS_ASSIGN, PLUS, line, column)
	case '-':
		tok = l.either('-', MINUSMINUS, '=', MINUS_ASSIGN, MINUS, line, column)
	case '*':
		tok = l.withAssign(ASTERISK_ASSIGN, ASTERISK, line, column)
	case '/':
		tok = l.withAssign(SLASH_ASSIGN, SLASH, line, column)
	case '%':
		tok = l.withAssign(PERCENT_ASSIGN, PERCENT, line, column)
	case '^':
		tok = l.withAssign(CARET_ASSIGN, CARET, line, column)
	case '=':
		tok = l.withAssign(EQ, ASSIGN, line, column)
	case '!':
		tok = l.withAssign(NOT_EQ, BANG, line, column)
	case '<':
		tok = l.withAssign(LTE, LT, line, column)
	case '>':
		tok = l.withAssign(GTE, GT, line, column)
	case '&':
		if l.peekChar() != '&' {
			return l.illegalChar(line, column)
		}
		l.readChar()
		tok = Token{Type: AND, Literal: "&&", Line: line, Column: column}
	case '|':
		if l.peekChar() != '|' {
			return l.illegalChar(line, column)
		}
		l.readChar()
		tok = Token{Type: OR, Literal: "||", Line: line, Column: column}
	case ',':
		tok = newToken(COMMA, l.ch, line, column)
	case ';':
		tok = newToken(SEMICOLON, l.ch, line, column)
	case ':':
		tok = newToken(COLON, l.ch, line, column)
	case '@':
		tok = newToken(AT, l.ch, line, column)
	case '(':
		tok = newToken(LPAREN, l.ch, line, column)
	case ')':
		tok = newToken(RPAREN, l.ch, line, column)
	case '[':
		tok = newToken(LBRACKET, l.ch, line, column)
	case ']':
		tok = newToken(RBRACKET, l.ch, line, column)
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			return tok
		}
		if isDigit(l.ch) {
			literal, ok := l.readNumber()
			if !ok {
				return l.illegal("LEX-0003", literal, line, column)
			}
			tok.Type = NUMBER
			tok.Literal = literal
			return tok
		}
		return l.illegalChar(line, column)
	}

	l.readChar()
	return tok
}

// Tokens scans the whole input. The final token is EOF or the first ILLEGAL.
func (l *Lexer) Tokens() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF || tok.Type == ILLEGAL {
			return tokens
		}
	}
}

func newToken(tokenType TokenType, ch byte, line, column int) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: line, Column: column}
}

// either handles operators like "+" that may continue as "++" or "+=".
func (l *Lexer) either(double byte, doubleType TokenType, eq byte, eqType TokenType, single TokenType, line, column int) Token {
	ch := l.ch
	switch l.peekChar() {
	case double:
		l.readChar()
		return Token{Type: doubleType, Literal: string([]byte{ch, double}), Line: line, Column: column}
	case eq:
		l.readChar()
		return Token{Type: eqType, Literal: string([]byte{ch, eq}), Line: line, Column: column}
	}
	return newToken(single, ch, line, column)
}

func (l *Lexer) withAssign(assignType, single TokenType, line, column int) Token {
	ch := l.ch
	if l.peekChar() == '=' {
		l.readChar()
		return Token{Type: assignType, Literal: string([]byte{ch, '='}), Line: line, Column: column}
	}
	return newToken(single, ch, line, column)
}

// illegal builds an ILLEGAL token whose literal is the catalog message.
func (l *Lexer) illegal(code, text string, line, column int) Token {
	err := perrors.New(code, map[string]any{"Char": text})
	return Token{Type: ILLEGAL, Literal: err.Message, Line: line, Column: column, Code: code}
}

func (l *Lexer) illegalChar(line, column int) Token {
	ch := string(l.ch)
	l.readChar()
	return l.illegal("LEX-0001", ch, line, column)
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads digits, an optional fraction and an optional exponent.
// It reports false when an exponent marker is not followed by digits.
func (l *Lexer) readNumber() (string, bool) {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if next == '+' || next == '-' {
			next = l.peekCharN(2)
			l.readChar()
		}
		l.readChar()
		if !isDigit(next) {
			return l.input[position:l.position], false
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[position:l.position], true
}

// readString reads a double-quoted string, leaving l.ch on the closing
// quote. Unknown escapes keep the escaped character.
func (l *Lexer) readString() (string, bool) {
	var result []byte
	l.readChar() // skip opening quote

	for l.ch != '"' && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				result = append(result, '\n')
			case 't':
				result = append(result, '\t')
			case 0:
				return string(result), false
			default:
				result = append(result, l.ch)
			}
		} else {
			result = append(result, l.ch)
		}
		l.readChar()
	}

	return string(result), l.ch == '"'
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

func isLetter(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
