package evaluator

import (
	"math"
	"strconv"
	"strings"

	"github.com/sambeau/quill/pkg/quill/ast"
	perrors "github.com/sambeau/quill/pkg/quill/errors"
	"github.com/sambeau/quill/pkg/quill/lexer"
)

// ObjectType represents the type of objects in our language
type ObjectType string

const (
	NIL_OBJ      = "NIL"
	NUMBER_OBJ   = "NUMBER"
	BOOLEAN_OBJ  = "BOOLEAN"
	STRING_OBJ   = "STRING"
	LIST_OBJ     = "LIST"
	FUNCTION_OBJ = "FUNCTION"
	BUILTIN_OBJ  = "BUILTIN"

	RETURN_OBJ   = "RETURN_VALUE"
	BREAK_OBJ    = "BREAK"
	CONTINUE_OBJ = "CONTINUE"
	ERROR_OBJ    = "ERROR"
)

// Object represents all values in our language, plus the control signals
// (return, break, continue, error) that travel through Eval in-band.
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Number represents all numeric values
type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return FormatNumber(n.Value) }

// Boolean represents true and false
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

// String represents string values
type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

// Nil represents the absence of a value
type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "nil" }

// List is a mutable sequence. Values holding the same *List share its
// elements, so in-place mutation is visible through every alias.
type List struct {
	Elements []Object
}

func (l *List) Type() ObjectType { return LIST_OBJ }

// Inspect renders a list as "[a, b, c]" with string elements quoted. A
// single-element list renders its element without brackets.
func (l *List) Inspect() string {
	var out strings.Builder

	bracketed := len(l.Elements) != 1
	if bracketed {
		out.WriteString("[")
	}
	for i, e := range l.Elements {
		if i > 0 {
			out.WriteString(", ")
		}
		if s, ok := e.(*String); ok {
			out.WriteString(`"` + s.Value + `"`)
		} else {
			out.WriteString(e.Inspect())
		}
	}
	if bracketed {
		out.WriteString("]")
	}

	return out.String()
}

// snapshot copies the current elements so iteration is unaffected by
// later mutation of the list.
func (l *List) snapshot() []Object {
	elems := make([]Object, len(l.Elements))
	copy(elems, l.Elements)
	return elems
}

// Function is a user-defined function: its literal plus the captured frame.
type Function struct {
	Literal *ast.FunctionLiteral
	Env     *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string  { return "<function>" }

// Name returns the name used in the call stack and arity errors.
func (f *Function) Name() string { return f.Literal.DisplayName() }

// ParamCount returns the number of parameters for this function
func (f *Function) ParamCount() int {
	return len(f.Literal.Parameters)
}

// BuiltinFunction represents a built-in function
type BuiltinFunction func(args ...Object) Object

// Builtin represents built-in function objects
type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "<function>" }

// ReturnValue carries the value of a `return` up to the nearest call.
type ReturnValue struct {
	Value Object
	Token lexer.Token
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// BreakSignal unwinds to the nearest enclosing loop.
type BreakSignal struct {
	Token lexer.Token
}

func (bs *BreakSignal) Type() ObjectType { return BREAK_OBJ }
func (bs *BreakSignal) Inspect() string  { return "break" }

// ContinueSignal skips to the next iteration of the nearest loop.
type ContinueSignal struct {
	Token lexer.Token
}

func (cs *ContinueSignal) Type() ObjectType { return CONTINUE_OBJ }
func (cs *ContinueSignal) Inspect() string  { return "continue" }

// Error represents a runtime error travelling in-band through Eval.
type Error struct {
	Message string
	Line    int
	Column  int
	Class   ErrorClass
	Code    string
	Hints   []string
	File    string
	Data    map[string]any
}

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass = perrors.ErrorClass

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string {
	if e.Line > 0 {
		return "line " + strconv.Itoa(e.Line) + ", column " + strconv.Itoa(e.Column) + ": " + e.Message
	}
	return "ERROR: " + e.Message
}

// ToQuillError converts this Error to a QuillError for structured error handling.
func (e *Error) ToQuillError() *perrors.QuillError {
	class := e.Class
	if class == "" {
		class = perrors.ClassType
	}
	return &perrors.QuillError{
		Class:   class,
		Code:    e.Code,
		Message: e.Message,
		Hints:   e.Hints,
		Line:    e.Line,
		Column:  e.Column,
		File:    e.File,
		Data:    e.Data,
	}
}

var (
	NIL   = &Nil{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func nativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// TypeName returns the user-facing name of a value's kind.
func TypeName(obj Object) string {
	switch obj.(type) {
	case *Nil:
		return "null"
	case *Number:
		return "number"
	case *Boolean:
		return "bool"
	case *String:
		return "string"
	case *List:
		return "list"
	case *Function, *Builtin:
		return "function"
	default:
		return strings.ToLower(string(obj.Type()))
	}
}

// ToString renders any value the way print does.
func ToString(obj Object) string {
	if obj == nil {
		return "nil"
	}
	return obj.Inspect()
}

// FormatNumber prints whole numbers in integer form and everything else
// with six significant digits.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	if v == math.Trunc(v) {
		if math.Abs(v) < 1e18 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', 0, 64)
	}

	return strconv.FormatFloat(v, 'g', 6, 64)
}

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

// isSignal reports whether obj interrupts normal evaluation: an error or
// one of the control signals.
func isSignal(obj Object) bool {
	switch obj.(type) {
	case *Error, *ReturnValue, *BreakSignal, *ContinueSignal:
		return true
	}
	return false
}

func isCallable(obj Object) bool {
	switch obj.(type) {
	case *Function, *Builtin:
		return true
	}
	return false
}
