package evaluator

import (
	"math"
	"sort"
)

func listArg(name string, arg Object) (*List, *Error) {
	list, ok := arg.(*List)
	if !ok {
		return nil, argTypeError(name, "a list", arg)
	}
	return list, nil
}

func positionArg(name string, arg Object) (int, *Error) {
	n, ok := arg.(*Number)
	if !ok {
		return 0, argTypeError(name, "a number", arg)
	}
	if math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return -1, nil
	}
	return int(math.Trunc(n.Value)), nil
}

func indexRangeError(name string) *Error {
	return newStructuredError("INDEX-0002", map[string]any{"Function": name})
}

// builtinPush appends in place, so every alias of the list sees the element.
func builtinPush(args ...Object) Object {
	if len(args) != 2 {
		return arityError("push", "2", len(args))
	}
	list, err := listArg("push", args[0])
	if err != nil {
		return err
	}
	list.Elements = append(list.Elements, args[1])
	return NIL
}

func builtinPop(args ...Object) Object {
	if len(args) != 1 {
		return arityError("pop", "1", len(args))
	}
	list, err := listArg("pop", args[0])
	if err != nil {
		return err
	}
	if len(list.Elements) == 0 {
		return newStructuredError("INDEX-0003", map[string]any{"Function": "pop"})
	}

	last := list.Elements[len(list.Elements)-1]
	list.Elements = list.Elements[:len(list.Elements)-1]
	return last
}

func builtinInsert(args ...Object) Object {
	if len(args) != 3 {
		return arityError("insert", "3", len(args))
	}
	list, err := listArg("insert", args[0])
	if err != nil {
		return err
	}
	i, err := positionArg("insert", args[1])
	if err != nil {
		return err
	}
	if i < 0 || i > len(list.Elements) {
		return indexRangeError("insert")
	}

	list.Elements = append(list.Elements, nil)
	copy(list.Elements[i+1:], list.Elements[i:])
	list.Elements[i] = args[2]
	return NIL
}

func builtinRemove(args ...Object) Object {
	if len(args) != 2 {
		return arityError("remove", "2", len(args))
	}
	list, err := listArg("remove", args[0])
	if err != nil {
		return err
	}
	i, err := positionArg("remove", args[1])
	if err != nil {
		return err
	}
	if i < 0 || i >= len(list.Elements) {
		return indexRangeError("remove")
	}

	list.Elements = append(list.Elements[:i], list.Elements[i+1:]...)
	return NIL
}

// builtinSort returns a new list ordered by each element's string form.
// Elements with the same string form keep their relative order.
func builtinSort(args ...Object) Object {
	if len(args) != 1 {
		return arityError("sort", "1", len(args))
	}
	list, err := listArg("sort", args[0])
	if err != nil {
		return err
	}

	keys := make([]string, len(list.Elements))
	order := make([]int, len(list.Elements))
	for i, e := range list.Elements {
		keys[i] = ToString(e)
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return keys[order[a]] < keys[order[b]] })

	sorted := make([]Object, len(order))
	for i, idx := range order {
		sorted[i] = list.Elements[idx]
	}
	return &List{Elements: sorted}
}
