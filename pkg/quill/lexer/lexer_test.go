package lexer

import (
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `fib = function(n)
  if n <= 1 then return n end if
  return fib(n - 1) + fib(n - 2) // recursive
end function
x += 2.5e1; y--
s = "a\tb\"c\\"
[1, 2][0:1] @ != == >= < > ^ % / * !
done and not ok or true && false || nil
`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{IDENT, "fib"},
		{ASSIGN, "="},
		{FUNCTION, "function"},
		{LPAREN, "("},
		{IDENT, "n"},
		{RPAREN, ")"},
		{IF, "if"},
		{IDENT, "n"},
		{LTE, "<="},
		{NUMBER, "1"},
		{THEN, "then"},
		{RETURN, "return"},
		{IDENT, "n"},
		{END, "end"},
		{IF, "if"},
		{RETURN, "return"},
		{IDENT, "fib"},
		{LPAREN, "("},
		{IDENT, "n"},
		{MINUS, "-"},
		{NUMBER, "1"},
		{RPAREN, ")"},
		{PLUS, "+"},
		{IDENT, "fib"},
		{LPAREN, "("},
		{IDENT, "n"},
		{MINUS, "-"},
		{NUMBER, "2"},
		{RPAREN, ")"},
		{END, "end"},
		{FUNCTION, "function"},
		{IDENT, "x"},
		{PLUS_ASSIGN, "+="},
		{NUMBER, "2.5e1"},
		{SEMICOLON, ";"},
		{IDENT, "y"},
		{MINUSMINUS, "--"},
		{IDENT, "s"},
		{ASSIGN, "="},
		{STRING, "a\tb\"c\\"},
		{LBRACKET, "["},
		{NUMBER, "1"},
		{COMMA, ","},
		{NUMBER, "2"},
		{RBRACKET, "]"},
		{LBRACKET, "["},
		{NUMBER, "0"},
		{COLON, ":"},
		{NUMBER, "1"},
		{RBRACKET, "]"},
		{AT, "@"},
		{NOT_EQ, "!="},
		{EQ, "=="},
		{GTE, ">="},
		{LT, "<"},
		{GT, ">"},
		{CARET, "^"},
		{PERCENT, "%"},
		{SLASH, "/"},
		{ASTERISK, "*"},
		{BANG, "!"},
		{IDENT, "done"},
		{AND, "and"},
		{BANG, "not"},
		{IDENT, "ok"},
		{OR, "or"},
		{TRUE, "true"},
		{AND, "&&"},
		{FALSE, "false"},
		{OR, "||"},
		{NIL, "nil"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestCompoundOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"+=", PLUS_ASSIGN},
		{"-=", MINUS_ASSIGN},
		{"*=", ASTERISK_ASSIGN},
		{"/=", SLASH_ASSIGN},
		{"%=", PERCENT_ASSIGN},
		{"^=", CARET_ASSIGN},
		{"++", PLUSPLUS},
		{"--", MINUSMINUS},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := New(tt.input).NextToken()
			if tok.Type != tt.expected {
				t.Errorf("got %s, want %s", tok.Type, tt.expected)
			}
		})
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input   string
		literal string
	}{
		{"42", "42"},
		{"3.14", "3.14"},
		{"1e3", "1e3"},
		{"6.02E+23", "6.02E+23"},
		{"5e-2", "5e-2"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := New(tt.input).NextToken()
			if tok.Type != NUMBER || tok.Literal != tt.literal {
				t.Errorf("got %s %q, want NUMBER %q", tok.Type, tok.Literal, tt.literal)
			}
		})
	}
}

func TestNumberFollowedByDot(t *testing.T) {
	l := New("1.x")
	if tok := l.NextToken(); tok.Type != NUMBER || tok.Literal != "1" {
		t.Fatalf("expected NUMBER 1, got %s %q", tok.Type, tok.Literal)
	}
	if tok := l.NextToken(); tok.Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL for '.', got %s", tok.Type)
	}
}

func TestIllegalTokens(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		code    string
		message string
	}{
		{"unclosed string", `"abc`, "LEX-0002", "unclosed string"},
		{"bad exponent", "1e+", "LEX-0003", "malformed number literal: expected digits after exponent"},
		{"unknown character", "#", "LEX-0001", "unknown character '#'"},
		{"single ampersand", "a & b", "LEX-0001", "unknown character '&'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := New(tt.input).Tokens()
			last := tokens[len(tokens)-1]
			if last.Type != ILLEGAL {
				t.Fatalf("expected ILLEGAL, got %v", tokens)
			}
			if last.Code != tt.code {
				t.Errorf("code = %q, want %q", last.Code, tt.code)
			}
			if last.Literal != tt.message {
				t.Errorf("literal = %q, want %q", last.Literal, tt.message)
			}
		})
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	input := "a = 1\n  b = 2\n\n// note\nc"
	l := New(input)

	expected := []struct {
		literal string
		line    int
		column  int
	}{
		{"a", 1, 1},
		{"=", 1, 3},
		{"1", 1, 5},
		{"b", 2, 3},
		{"=", 2, 5},
		{"2", 2, 7},
		{"c", 5, 1},
	}

	for _, want := range expected {
		tok := l.NextToken()
		if tok.Literal != want.literal || tok.Line != want.line || tok.Column != want.column {
			t.Errorf("got %q at %d:%d, want %q at %d:%d",
				tok.Literal, tok.Line, tok.Column, want.literal, want.line, want.column)
		}
	}
}

func TestUnknownEscapeKeepsCharacter(t *testing.T) {
	tok := New(`"a\qb"`).NextToken()
	if tok.Type != STRING || tok.Literal != "aqb" {
		t.Errorf("got %s %q", tok.Type, tok.Literal)
	}
}

func TestLookupIdent(t *testing.T) {
	if LookupIdent("while") != WHILE {
		t.Error("while should be a keyword")
	}
	if LookupIdent("whilst") != IDENT {
		t.Error("whilst should be an identifier")
	}
	if !IsKeyword("nil") || IsKeyword("print") {
		t.Error("IsKeyword mismatch")
	}
}

func TestKeywordsSorted(t *testing.T) {
	words := Keywords()
	if len(words) != len(keywords) {
		t.Fatalf("got %d keywords, want %d", len(words), len(keywords))
	}
	for i := 1; i < len(words); i++ {
		if words[i-1] >= words[i] {
			t.Errorf("keywords not sorted at %d: %q >= %q", i, words[i-1], words[i])
		}
	}
}
