package evaluator

import (
	"math"
	"strings"
)

// truthy converts any value to a condition. Functions have no truthiness.
func truthy(obj Object) (bool, *Error) {
	switch obj := obj.(type) {
	case *Boolean:
		return obj.Value, nil
	case *Number:
		return obj.Value != 0, nil
	case *String:
		return obj.Value != "", nil
	case *List:
		return len(obj.Elements) > 0, nil
	case *Nil:
		return false, nil
	default:
		return false, newStructuredError("TYPE-0010", nil)
	}
}

// asNumeric coerces numbers and booleans to float64.
func asNumeric(obj Object) (float64, *Error) {
	switch obj := obj.(type) {
	case *Number:
		return obj.Value, nil
	case *Boolean:
		if obj.Value {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, notNumeric(obj)
	}
}

// evalInfixExpression applies a binary operator to two evaluated operands.
func evalInfixExpression(operator string, left, right Object) Object {
	switch operator {
	case "+":
		return addValues(left, right)
	case "-":
		return subtractValues(left, right)
	case "*":
		return multiplyValues(left, right)
	case "/", "%", "^":
		return evalArithmetic(operator, left, right)
	case "==":
		return nativeBoolToBooleanObject(valuesEqual(left, right))
	case "!=":
		return nativeBoolToBooleanObject(!valuesEqual(left, right))
	case "<", "<=", ">", ">=":
		return evalComparison(operator, left, right)
	case "&&", "||":
		return evalLogical(operator, left, right)
	default:
		return typeMismatch(operator, left, right)
	}
}

// evalPrefixExpression applies a unary operator.
func evalPrefixExpression(operator string, right Object) Object {
	switch operator {
	case "!":
		b, ok := right.(*Boolean)
		if !ok {
			return newStructuredError("TYPE-0002", map[string]any{"Operator": "!"})
		}
		return nativeBoolToBooleanObject(!b.Value)
	case "-":
		return subtractValues(&Number{Value: 0}, right)
	case "+":
		return right
	default:
		return newStructuredError("TYPE-0009", map[string]any{
			"Operator": operator,
			"Left":     "",
			"Right":    TypeName(right),
		})
	}
}

func addValues(left, right Object) Object {
	switch l := left.(type) {
	case *String:
		if r, ok := right.(*String); ok {
			return &String{Value: l.Value + r.Value}
		}
	case *List:
		if r, ok := right.(*List); ok {
			elems := make([]Object, 0, len(l.Elements)+len(r.Elements))
			elems = append(elems, l.Elements...)
			elems = append(elems, r.Elements...)
			return &List{Elements: elems}
		}
	case *Boolean:
		if r, ok := right.(*Boolean); ok {
			return nativeBoolToBooleanObject(l.Value || r.Value)
		}
	}

	return evalArithmetic("+", left, right)
}

func subtractValues(left, right Object) Object {
	if l, ok := left.(*String); ok {
		if r, ok := right.(*String); ok {
			return &String{Value: strings.TrimSuffix(l.Value, r.Value)}
		}
	}
	return evalArithmetic("-", left, right)
}

func multiplyValues(left, right Object) Object {
	switch l := left.(type) {
	case *String:
		if isNumeric(right) {
			n, _ := asNumeric(right)
			return &String{Value: repeatString(l.Value, n)}
		}
	case *List:
		if isNumeric(right) {
			n, _ := asNumeric(right)
			return &List{Elements: repeatElements(l.Elements, n)}
		}
	}

	switch r := right.(type) {
	case *String:
		if isNumeric(left) {
			n, _ := asNumeric(left)
			return &String{Value: repeatString(r.Value, n)}
		}
	case *List:
		if isNumeric(left) {
			n, _ := asNumeric(left)
			return &List{Elements: repeatElements(r.Elements, n)}
		}
	}

	return evalArithmetic("*", left, right)
}

func isNumeric(obj Object) bool {
	switch obj.(type) {
	case *Number, *Boolean:
		return true
	}
	return false
}

// repeatCounts splits a repetition factor into whole copies and the length
// of the trailing prefix.
func repeatCounts(n float64, length int) (int, int) {
	if n <= 0 || math.IsNaN(n) || length == 0 {
		return 0, 0
	}
	whole := math.Floor(n)
	prefix := int(math.Floor((n - whole) * float64(length)))
	return int(whole), prefix
}

func repeatString(s string, n float64) string {
	whole, prefix := repeatCounts(n, len(s))
	return strings.Repeat(s, whole) + s[:prefix]
}

func repeatElements(elems []Object, n float64) []Object {
	whole, prefix := repeatCounts(n, len(elems))
	result := make([]Object, 0, whole*len(elems)+prefix)
	for i := 0; i < whole; i++ {
		result = append(result, elems...)
	}
	return append(result, elems[:prefix]...)
}

func evalArithmetic(operator string, left, right Object) Object {
	l, err := asNumeric(left)
	if err != nil {
		return err
	}
	r, err := asNumeric(right)
	if err != nil {
		return err
	}

	switch operator {
	case "+":
		return &Number{Value: l + r}
	case "-":
		return &Number{Value: l - r}
	case "*":
		return &Number{Value: l * r}
	case "/":
		if r == 0 {
			return newStructuredError("OP-0001", nil)
		}
		return &Number{Value: l / r}
	case "%":
		if r == 0 {
			return newStructuredError("OP-0001", nil)
		}
		return &Number{Value: math.Mod(l, r)}
	case "^":
		return &Number{Value: math.Pow(l, r)}
	default:
		return typeMismatch(operator, left, right)
	}
}

// valuesEqual implements ==. Functions are never equal, not even to
// themselves.
func valuesEqual(left, right Object) bool {
	switch l := left.(type) {
	case *Nil:
		_, ok := right.(*Nil)
		return ok
	case *String:
		r, ok := right.(*String)
		return ok && l.Value == r.Value
	case *List:
		r, ok := right.(*List)
		if !ok || len(l.Elements) != len(r.Elements) {
			return false
		}
		for i := range l.Elements {
			if !valuesEqual(l.Elements[i], r.Elements[i]) {
				return false
			}
		}
		return true
	case *Number, *Boolean:
		if !isNumeric(right) {
			return false
		}
		a, _ := asNumeric(left)
		b, _ := asNumeric(right)
		return a == b
	default:
		return false
	}
}

// lessThan implements <. Nil and mixed kinds cannot be ordered.
func lessThan(left, right Object) (bool, *Error) {
	switch l := left.(type) {
	case *String:
		if r, ok := right.(*String); ok {
			return l.Value < r.Value, nil
		}
	case *List:
		if r, ok := right.(*List); ok {
			return listLess(l.Elements, r.Elements)
		}
	case *Number, *Boolean:
		if isNumeric(right) {
			a, _ := asNumeric(left)
			b, _ := asNumeric(right)
			return a < b, nil
		}
	}

	return false, newStructuredError("TYPE-0004", map[string]any{
		"Left":  TypeName(left),
		"Right": TypeName(right),
	})
}

func listLess(a, b []Object) (bool, *Error) {
	for i := 0; i < len(a) && i < len(b); i++ {
		less, err := lessThan(a[i], b[i])
		if err != nil {
			return false, err
		}
		if less {
			return true, nil
		}
		greater, err := lessThan(b[i], a[i])
		if err != nil {
			return false, err
		}
		if greater {
			return false, nil
		}
	}
	return len(a) < len(b), nil
}

func evalComparison(operator string, left, right Object) Object {
	less, err := lessThan(left, right)
	if err != nil {
		return err
	}

	switch operator {
	case "<":
		return nativeBoolToBooleanObject(less)
	case ">=":
		return nativeBoolToBooleanObject(!less)
	}

	lessOrEqual := less || valuesEqual(left, right)
	if operator == "<=" {
		return nativeBoolToBooleanObject(lessOrEqual)
	}
	return nativeBoolToBooleanObject(!lessOrEqual)
}

func evalLogical(operator string, left, right Object) Object {
	l, lok := left.(*Boolean)
	r, rok := right.(*Boolean)
	if !lok || !rok {
		return newStructuredError("TYPE-0002", map[string]any{"Operator": operator})
	}

	if operator == "&&" {
		return nativeBoolToBooleanObject(l.Value && r.Value)
	}
	return nativeBoolToBooleanObject(l.Value || r.Value)
}

// evalInOperator reports whether the text of right contains the text of left.
func evalInOperator(left, right Object) Object {
	return nativeBoolToBooleanObject(strings.Contains(ToString(right), ToString(left)))
}

// indexNumber converts an index operand, truncating toward zero.
func indexNumber(obj Object) (float64, *Error) {
	n, ok := obj.(*Number)
	if !ok {
		return 0, newStructuredError("TYPE-0008", map[string]any{"Got": TypeName(obj)})
	}
	return math.Trunc(n.Value), nil
}

func evalIndex(left, index Object) Object {
	var length int
	switch l := left.(type) {
	case *String:
		length = len(l.Value)
	case *List:
		length = len(l.Elements)
	default:
		return newStructuredError("TYPE-0005", map[string]any{"Got": TypeName(left)})
	}

	i, err := indexNumber(index)
	if err != nil {
		return err
	}

	pos := i
	if pos < 0 {
		pos += float64(length)
	}
	if math.IsNaN(pos) || pos < 0 || pos >= float64(length) {
		return newStructuredError("INDEX-0001", map[string]any{
			"Index":  FormatNumber(i),
			"Length": length,
		})
	}

	switch l := left.(type) {
	case *String:
		return &String{Value: l.Value[int(pos) : int(pos)+1]}
	default:
		return left.(*List).Elements[int(pos)]
	}
}

// sliceBound normalizes one slice endpoint into [0,length].
func sliceBound(obj Object, fallback, length int) (int, *Error) {
	if obj == nil {
		return fallback, nil
	}
	n, err := indexNumber(obj)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		n += float64(length)
	}
	switch {
	case math.IsNaN(n), n < 0:
		return 0, nil
	case n > float64(length):
		return length, nil
	}
	return int(n), nil
}

// evalSlice slices a string or list. start and end are nil when absent.
func evalSlice(left, start, end Object) Object {
	var length int
	switch l := left.(type) {
	case *String:
		length = len(l.Value)
	case *List:
		length = len(l.Elements)
	default:
		return newStructuredError("TYPE-0006", map[string]any{"Got": TypeName(left)})
	}

	from, err := sliceBound(start, 0, length)
	if err != nil {
		return err
	}
	to, err := sliceBound(end, length, length)
	if err != nil {
		return err
	}
	if to < from {
		to = from
	}

	switch l := left.(type) {
	case *String:
		return &String{Value: l.Value[from:to]}
	default:
		elems := make([]Object, to-from)
		copy(elems, left.(*List).Elements[from:to])
		return &List{Elements: elems}
	}
}
