package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/sambeau/quill/pkg/quill/lexer"
)

// Node represents any node in the AST
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement represents top-level program items
type Statement interface {
	Node
	statementNode()
}

// Expression represents expression nodes. Every construct in a block,
// including loops and conditionals, is an expression.
type Expression interface {
	Node
	expressionNode()
}

// Program represents the root node of every AST
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer

	for i, s := range p.Statements {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(s.String())
	}

	return out.String()
}

// Functions returns the named function definitions in source order.
func (p *Program) Functions() []*FunctionDefinition {
	var defs []*FunctionDefinition
	for _, s := range p.Statements {
		if fd, ok := s.(*FunctionDefinition); ok {
			defs = append(defs, fd)
		}
	}
	return defs
}

// FunctionDefinition is a top-level `function name(args) ... end function`.
type FunctionDefinition struct {
	Token    lexer.Token // the 'function' token
	Function *FunctionLiteral
}

func (fd *FunctionDefinition) statementNode()       {}
func (fd *FunctionDefinition) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDefinition) String() string       { return fd.Function.String() }

// ExpressionStatement wraps a top-level expression.
type ExpressionStatement struct {
	Token      lexer.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

// Identifier represents a variable reference
type Identifier struct {
	Token lexer.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// NumberLiteral represents numeric literals
type NumberLiteral struct {
	Token lexer.Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NumberLiteral) String() string       { return nl.Token.Literal }

// StringLiteral represents string literals
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return strconv.Quote(sl.Value) }

// BooleanLiteral represents true and false
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) String() string       { return bl.Token.Literal }

// NilLiteral represents nil
type NilLiteral struct {
	Token lexer.Token
}

func (nl *NilLiteral) expressionNode()      {}
func (nl *NilLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NilLiteral) String() string       { return "nil" }

// ListLiteral represents [a, b, c]
type ListLiteral struct {
	Token    lexer.Token // the '[' token
	Elements []Expression
}

func (ll *ListLiteral) expressionNode()      {}
func (ll *ListLiteral) TokenLiteral() string { return ll.Token.Literal }
func (ll *ListLiteral) String() string {
	return "[" + joinExpressions(ll.Elements) + "]"
}

// PrefixExpression represents -x, +x and not x
type PrefixExpression struct {
	Token    lexer.Token
	Operator string // "-", "+" or "!"
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

// InfixExpression represents binary operators
type InfixExpression struct {
	Token    lexer.Token // the operator token
	Left     Expression
	Operator string // canonical spelling: "+", "==", "&&", "||", ...
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// InExpression represents the substring membership test `a in b`
type InExpression struct {
	Token lexer.Token // the 'in' token
	Left  Expression
	Right Expression
}

func (ie *InExpression) expressionNode()      {}
func (ie *InExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InExpression) String() string {
	return "(" + ie.Left.String() + " in " + ie.Right.String() + ")"
}

// AssignmentExpression represents name = value
type AssignmentExpression struct {
	Token lexer.Token // the '=' token
	Name  *Identifier
	Value Expression
}

func (ae *AssignmentExpression) expressionNode()      {}
func (ae *AssignmentExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignmentExpression) String() string {
	return ae.Name.String() + " = " + ae.Value.String()
}

// CompoundAssignmentExpression represents name += value and friends
type CompoundAssignmentExpression struct {
	Token    lexer.Token // the '+=' etc. token
	Name     *Identifier
	Operator string // the underlying binary operator: "+", "-", "*", "/", "%", "^"
	Value    Expression
}

func (ce *CompoundAssignmentExpression) expressionNode()      {}
func (ce *CompoundAssignmentExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CompoundAssignmentExpression) String() string {
	return ce.Name.String() + " " + ce.Operator + "= " + ce.Value.String()
}

// IncrementExpression represents ++x, --x, x++ and x--
type IncrementExpression struct {
	Token    lexer.Token // the '++' or '--' token
	Target   *Identifier
	Operator string // "++" or "--"
	Prefix   bool
}

func (ie *IncrementExpression) expressionNode()      {}
func (ie *IncrementExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IncrementExpression) String() string {
	if ie.Prefix {
		return "(" + ie.Operator + ie.Target.String() + ")"
	}
	return "(" + ie.Target.String() + ie.Operator + ")"
}

// Delta returns +1 for increments and -1 for decrements.
func (ie *IncrementExpression) Delta() float64 {
	if ie.Operator == "--" {
		return -1
	}
	return 1
}

// CallExpression represents callee(args...)
type CallExpression struct {
	Token     lexer.Token // the '(' token
	Function  Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	return ce.Function.String() + "(" + joinExpressions(ce.Arguments) + ")"
}

// IndexExpression represents value[index]
type IndexExpression struct {
	Token lexer.Token // the '[' token
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) String() string {
	return "(" + ie.Left.String() + "[" + ie.Index.String() + "])"
}

// SliceExpression represents value[start:end]; either bound may be nil
type SliceExpression struct {
	Token lexer.Token // the '[' token
	Left  Expression
	Start Expression
	End   Expression
}

func (se *SliceExpression) expressionNode()      {}
func (se *SliceExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SliceExpression) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(se.Left.String())
	out.WriteString("[")
	if se.Start != nil {
		out.WriteString(se.Start.String())
	}
	out.WriteString(":")
	if se.End != nil {
		out.WriteString(se.End.String())
	}
	out.WriteString("])")
	return out.String()
}

// Prototype is a function's name and ordered parameter names.
type Prototype struct {
	Name       string // empty for anonymous literals
	Parameters []*Identifier
}

// DisplayName is the name used in call stacks and arity errors.
func (p *Prototype) DisplayName() string {
	if p.Name == "" {
		return "<anonymous>"
	}
	return p.Name
}

// ParameterNames returns the parameter names in order.
func (p *Prototype) ParameterNames() []string {
	names := make([]string, len(p.Parameters))
	for i, param := range p.Parameters {
		names[i] = param.Value
	}
	return names
}

// FunctionLiteral represents function(a, b) ... end function
type FunctionLiteral struct {
	Token lexer.Token // the 'function' token
	Prototype
	Body *BlockExpression
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FunctionLiteral) String() string {
	var out bytes.Buffer

	out.WriteString("function")
	if fl.Name != "" {
		out.WriteString(" ")
		out.WriteString(fl.Name)
	}
	out.WriteString("(")
	out.WriteString(strings.Join(fl.ParameterNames(), ", "))
	out.WriteString(") ")
	out.WriteString(fl.Body.String())
	out.WriteString(" end function")

	return out.String()
}

// BlockExpression is a sequence of expressions; it yields the last value
type BlockExpression struct {
	Token       lexer.Token // the first token of the block
	Expressions []Expression
}

func (be *BlockExpression) expressionNode()      {}
func (be *BlockExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BlockExpression) String() string {
	parts := make([]string, len(be.Expressions))
	for i, e := range be.Expressions {
		parts[i] = e.String()
	}
	return strings.Join(parts, "; ")
}

// IfExpression represents if/then/else if/else/end if. An `else if`
// chain is stored as an Alternative holding a nested *IfExpression.
type IfExpression struct {
	Token       lexer.Token // the 'if' token
	Condition   Expression
	Consequence *BlockExpression
	Alternative Expression // nil, *BlockExpression or *IfExpression
}

func (ie *IfExpression) expressionNode()      {}
func (ie *IfExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IfExpression) String() string {
	var out bytes.Buffer
	ie.writeBranches(&out)
	out.WriteString(" end if")
	return out.String()
}

func (ie *IfExpression) writeBranches(out *bytes.Buffer) {
	out.WriteString("if ")
	out.WriteString(ie.Condition.String())
	out.WriteString(" then ")
	out.WriteString(ie.Consequence.String())

	switch alt := ie.Alternative.(type) {
	case *IfExpression:
		out.WriteString(" else ")
		alt.writeBranches(out)
	case *BlockExpression:
		out.WriteString(" else ")
		out.WriteString(alt.String())
	}
}

// WhileExpression represents while cond ... end while
type WhileExpression struct {
	Token     lexer.Token // the 'while' token
	Condition Expression
	Body      *BlockExpression
}

func (we *WhileExpression) expressionNode()      {}
func (we *WhileExpression) TokenLiteral() string { return we.Token.Literal }
func (we *WhileExpression) String() string {
	return "while " + we.Condition.String() + " " + we.Body.String() + " end while"
}

// ForExpression represents for name in list ... end for
type ForExpression struct {
	Token    lexer.Token // the 'for' token
	Variable *Identifier
	Iterable Expression
	Body     *BlockExpression
}

func (fe *ForExpression) expressionNode()      {}
func (fe *ForExpression) TokenLiteral() string { return fe.Token.Literal }
func (fe *ForExpression) String() string {
	return "for " + fe.Variable.String() + " in " + fe.Iterable.String() + " " + fe.Body.String() + " end for"
}

// BreakExpression represents break
type BreakExpression struct {
	Token lexer.Token
}

func (be *BreakExpression) expressionNode()      {}
func (be *BreakExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BreakExpression) String() string       { return "break" }

// ContinueExpression represents continue
type ContinueExpression struct {
	Token lexer.Token
}

func (ce *ContinueExpression) expressionNode()      {}
func (ce *ContinueExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *ContinueExpression) String() string       { return "continue" }

// ReturnExpression represents return value
type ReturnExpression struct {
	Token       lexer.Token // the 'return' token
	ReturnValue Expression
}

func (re *ReturnExpression) expressionNode()      {}
func (re *ReturnExpression) TokenLiteral() string { return re.Token.Literal }
func (re *ReturnExpression) String() string {
	return "return " + re.ReturnValue.String()
}

func joinExpressions(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
