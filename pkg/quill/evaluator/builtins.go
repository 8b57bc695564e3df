package evaluator

import (
	"errors"
	"io"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
)

// BuiltinInfo holds metadata about a builtin function
type BuiltinInfo struct {
	Name        string   `json:"name"`
	Params      []string `json:"params"`
	Arity       string   `json:"arity"` // e.g. "1", "0-2", "0+"
	Category    string   `json:"category"`
	Description string   `json:"description"`
}

// builtinCatalog lists every builtin with its help metadata. newBuiltins
// provides the implementation for each entry.
var builtinCatalog = []BuiltinInfo{
	// io
	{Name: "print", Params: []string{"...values"}, Arity: "0+", Category: "io", Description: "Write values with no separator and no newline"},
	{Name: "println", Params: []string{"...values"}, Arity: "0+", Category: "io", Description: "Write values followed by a newline"},
	{Name: "read", Params: []string{}, Arity: "0", Category: "io", Description: "Read one line of input, nil at end of input"},

	// math
	{Name: "abs", Params: []string{"x"}, Arity: "1", Category: "math", Description: "Absolute value"},
	{Name: "ceil", Params: []string{"x"}, Arity: "1", Category: "math", Description: "Round up to a whole number"},
	{Name: "floor", Params: []string{"x"}, Arity: "1", Category: "math", Description: "Round down to a whole number"},
	{Name: "round", Params: []string{"x"}, Arity: "1", Category: "math", Description: "Round half away from zero"},
	{Name: "sqrt", Params: []string{"x"}, Arity: "1", Category: "math", Description: "Square root of a non-negative number"},
	{Name: "rnd", Params: []string{"[a]", "[b]"}, Arity: "0-2", Category: "math", Description: "Random number in [0,1), integer in [0,a) or integer in [a,b)"},
	{Name: "max", Params: []string{"...values"}, Arity: "0+", Category: "math", Description: "Largest argument, or largest element of a single list"},
	{Name: "min", Params: []string{"...values"}, Arity: "0+", Category: "math", Description: "Smallest argument, or smallest element of a single list"},
	{Name: "parse_num", Params: []string{"x"}, Arity: "1", Category: "math", Description: "Convert a string to a number, nil if it is not one"},
	{Name: "range", Params: []string{"[start]", "end", "[step]"}, Arity: "1-3", Category: "math", Description: "List of numbers from start up to but not including end"},

	// strings
	{Name: "len", Params: []string{"x"}, Arity: "1", Category: "strings", Description: "Length of a string or list, nil for anything else"},
	{Name: "lower", Params: []string{"s"}, Arity: "1", Category: "strings", Description: "Convert to lowercase"},
	{Name: "upper", Params: []string{"s"}, Arity: "1", Category: "strings", Description: "Convert to uppercase"},
	{Name: "split", Params: []string{"s", "[sep]"}, Arity: "1-2", Category: "strings", Description: "Split into a list, on whitespace when sep is empty or absent"},
	{Name: "join", Params: []string{"list", "[sep]"}, Arity: "1-2", Category: "strings", Description: "Join elements into a string, separated by a space by default"},
	{Name: "replace", Params: []string{"s", "old", "new"}, Arity: "3", Category: "strings", Description: "Replace every occurrence of old with new"},
	{Name: "to_string", Params: []string{"x"}, Arity: "1", Category: "strings", Description: "Render any value as a string"},

	// lists
	{Name: "push", Params: []string{"list", "x"}, Arity: "2", Category: "lists", Description: "Append to the end of a list in place"},
	{Name: "pop", Params: []string{"list"}, Arity: "1", Category: "lists", Description: "Remove and return the last element"},
	{Name: "insert", Params: []string{"list", "i", "x"}, Arity: "3", Category: "lists", Description: "Insert x before index i in place"},
	{Name: "remove", Params: []string{"list", "i"}, Arity: "2", Category: "lists", Description: "Remove the element at index i in place"},
	{Name: "sort", Params: []string{"list"}, Arity: "1", Category: "lists", Description: "New list sorted by each element's string form"},

	// introspection
	{Name: "stacktrace", Params: []string{}, Arity: "0", Category: "introspection", Description: "Names of the active function calls, outermost first"},
	{Name: "type", Params: []string{"x"}, Arity: "1", Category: "introspection", Description: "Type name of a value"},
}

// BuiltinCatalog returns the builtin metadata sorted by name.
func BuiltinCatalog() []BuiltinInfo {
	infos := make([]BuiltinInfo, len(builtinCatalog))
	copy(infos, builtinCatalog)
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// LookupBuiltin returns the metadata for one builtin.
func LookupBuiltin(name string) (BuiltinInfo, bool) {
	for _, info := range builtinCatalog {
		if info.Name == name {
			return info, true
		}
	}
	return BuiltinInfo{}, false
}

// BuiltinNames returns every builtin name, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtinCatalog))
	for _, info := range builtinCatalog {
		names = append(names, info.Name)
	}
	sort.Strings(names)
	return names
}

// newBuiltins creates the builtin functions for one session. Builtins that
// write output, read input or inspect the call stack close over it.
func newBuiltins(session *Session) map[string]*Builtin {
	fns := map[string]BuiltinFunction{
		"print":      printBuiltin(session, false),
		"println":    printBuiltin(session, true),
		"read":       readBuiltin(session),
		"stacktrace": stacktraceBuiltin(session),

		"abs":       mathBuiltin("abs", math.Abs),
		"ceil":      mathBuiltin("ceil", math.Ceil),
		"floor":     mathBuiltin("floor", math.Floor),
		"round":     mathBuiltin("round", math.Round),
		"sqrt":      builtinSqrt,
		"rnd":       builtinRnd,
		"max":       extremumBuiltin("max", func(a, b float64) bool { return a > b }, math.Inf(-1)),
		"min":       extremumBuiltin("min", func(a, b float64) bool { return a < b }, math.Inf(1)),
		"parse_num": builtinParseNum,
		"range":     builtinRange,

		"len":       builtinLen,
		"lower":     caseBuiltin("lower", lowerCaser),
		"upper":     caseBuiltin("upper", upperCaser),
		"split":     builtinSplit,
		"join":      builtinJoin,
		"replace":   builtinReplace,
		"to_string": builtinToString,

		"push":   builtinPush,
		"pop":    builtinPop,
		"insert": builtinInsert,
		"remove": builtinRemove,
		"sort":   builtinSort,

		"type": builtinType,
	}

	builtins := make(map[string]*Builtin, len(fns))
	for name, fn := range fns {
		builtins[name] = &Builtin{Name: name, Fn: fn}
	}
	return builtins
}

// io

func printBuiltin(session *Session, newline bool) BuiltinFunction {
	return func(args ...Object) Object {
		values := make([]any, len(args))
		for i, arg := range args {
			values[i] = ToString(arg)
		}
		if newline {
			session.Logger.LogLine(values...)
		} else {
			session.Logger.Log(values...)
		}
		return NIL
	}
}

func readBuiltin(session *Session) BuiltinFunction {
	return func(args ...Object) Object {
		if len(args) != 0 {
			return arityError("read", "0", len(args))
		}
		if session.Input == nil {
			return NIL
		}

		line, err := session.Input.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return newStructuredError("IO-0001", map[string]any{
				"Function": "read",
				"Reason":   err.Error(),
			})
		}
		if err != nil && line == "" {
			return NIL
		}

		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		return &String{Value: line}
	}
}

func stacktraceBuiltin(session *Session) BuiltinFunction {
	return func(args ...Object) Object {
		if len(args) != 0 {
			return arityError("stacktrace", "0", len(args))
		}
		names := session.Stack.Names()
		elements := make([]Object, len(names))
		for i, name := range names {
			elements[i] = &String{Value: name}
		}
		return &List{Elements: elements}
	}
}

// math

func mathBuiltin(name string, fn func(float64) float64) BuiltinFunction {
	return func(args ...Object) Object {
		if len(args) != 1 {
			return arityError(name, "1", len(args))
		}
		x, err := asNumeric(args[0])
		if err != nil {
			return err
		}
		return &Number{Value: fn(x)}
	}
}

func builtinSqrt(args ...Object) Object {
	if len(args) != 1 {
		return arityError("sqrt", "1", len(args))
	}
	x, err := asNumeric(args[0])
	if err != nil {
		return err
	}
	if x < 0 {
		return operationError("sqrt", "negative argument")
	}
	return &Number{Value: math.Sqrt(x)}
}

func builtinRnd(args ...Object) Object {
	bounds := make([]float64, len(args))
	for i, arg := range args {
		n, err := asNumeric(arg)
		if err != nil {
			return err
		}
		bounds[i] = math.Trunc(n)
	}

	switch len(bounds) {
	case 0:
		return &Number{Value: rand.Float64()}
	case 1:
		if bounds[0] <= 0 {
			return &Number{Value: 0}
		}
		return &Number{Value: float64(rand.Int63n(int64(bounds[0])))}
	case 2:
		lo, hi := bounds[0], bounds[1]
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo == hi {
			return &Number{Value: lo}
		}
		return &Number{Value: lo + float64(rand.Int63n(int64(hi-lo)))}
	default:
		return arityError("rnd", "0 to 2", len(args))
	}
}

func extremumBuiltin(name string, better func(a, b float64) bool, initial float64) BuiltinFunction {
	return func(args ...Object) Object {
		values := args
		if len(args) == 1 {
			if list, ok := args[0].(*List); ok {
				values = list.Elements
			}
		}
		if len(values) == 0 {
			return NIL
		}

		best := initial
		for _, v := range values {
			n, err := asNumeric(v)
			if err != nil {
				return err
			}
			if better(n, best) {
				best = n
			}
		}
		return &Number{Value: best}
	}
}

func builtinParseNum(args ...Object) Object {
	if len(args) != 1 {
		return arityError("parse_num", "1", len(args))
	}

	switch arg := args[0].(type) {
	case *Number, *Boolean:
		n, _ := asNumeric(arg)
		return &Number{Value: n}
	case *String:
		n, err := strconv.ParseFloat(arg.Value, 64)
		if err != nil {
			return NIL
		}
		return &Number{Value: n}
	default:
		return NIL
	}
}

func builtinRange(args ...Object) Object {
	if len(args) < 1 || len(args) > 3 {
		return arityError("range", "1 to 3", len(args))
	}

	nums := make([]float64, len(args))
	for i, arg := range args {
		n, err := asNumeric(arg)
		if err != nil {
			return err
		}
		nums[i] = n
	}

	start, end, step := 0.0, nums[0], 1.0
	if len(nums) >= 2 {
		start, end = nums[0], nums[1]
	}
	if len(nums) == 3 {
		step = nums[2]
	}
	if step == 0 {
		return operationError("range", "step cannot be zero")
	}

	var elements []Object
	if step > 0 {
		for x := start; x < end; x += step {
			elements = append(elements, &Number{Value: x})
		}
	} else {
		for x := start; x > end; x += step {
			elements = append(elements, &Number{Value: x})
		}
	}
	if elements == nil {
		elements = []Object{}
	}
	return &List{Elements: elements}
}

func builtinType(args ...Object) Object {
	if len(args) != 1 {
		return arityError("type", "1", len(args))
	}
	return &String{Value: TypeName(args[0])}
}
