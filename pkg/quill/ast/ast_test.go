package ast

import (
	"testing"

	"github.com/sambeau/quill/pkg/quill/lexer"
)

func ident(name string) *Identifier {
	return &Identifier{Token: lexer.Token{Type: lexer.IDENT, Literal: name}, Value: name}
}

func TestString(t *testing.T) {
	program := &Program{
		Statements: []Statement{
			&ExpressionStatement{
				Expression: &AssignmentExpression{
					Token: lexer.Token{Type: lexer.ASSIGN, Literal: "="},
					Name:  ident("myVar"),
					Value: ident("anotherVar"),
				},
			},
			&ExpressionStatement{
				Expression: &SliceExpression{
					Left:  ident("s"),
					Start: nil,
					End:   &NumberLiteral{Token: lexer.Token{Type: lexer.NUMBER, Literal: "2"}, Value: 2},
				},
			},
		},
	}

	expected := "myVar = anotherVar\n(s[:2])"
	if program.String() != expected {
		t.Errorf("program.String() wrong. got=%q, want=%q", program.String(), expected)
	}
	if program.TokenLiteral() != "" {
		t.Errorf("TokenLiteral of statement without token should be empty, got %q", program.TokenLiteral())
	}
}

func TestFunctionLiteralString(t *testing.T) {
	fn := &FunctionLiteral{
		Prototype: Prototype{Name: "add", Parameters: []*Identifier{ident("a"), ident("b")}},
		Body: &BlockExpression{Expressions: []Expression{
			&ReturnExpression{ReturnValue: &InfixExpression{Left: ident("a"), Operator: "+", Right: ident("b")}},
		}},
	}

	if got := fn.String(); got != "function add(a, b) return (a + b) end function" {
		t.Errorf("got %q", got)
	}

	fn.Name = ""
	if fn.DisplayName() != "<anonymous>" {
		t.Errorf("DisplayName = %q", fn.DisplayName())
	}
}

func TestProgramFunctions(t *testing.T) {
	def := &FunctionDefinition{Function: &FunctionLiteral{Prototype: Prototype{Name: "f"}, Body: &BlockExpression{}}}
	program := &Program{Statements: []Statement{
		&ExpressionStatement{Expression: ident("x")},
		def,
	}}

	defs := program.Functions()
	if len(defs) != 1 || defs[0] != def {
		t.Errorf("Functions() = %v", defs)
	}
}
