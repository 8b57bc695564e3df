package evaluator

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Casers are not safe for concurrent use, so each call builds its own.
func lowerCaser() cases.Caser { return cases.Lower(language.Und) }
func upperCaser() cases.Caser { return cases.Upper(language.Und) }

func stringArg(name string, arg Object) (string, *Error) {
	s, ok := arg.(*String)
	if !ok {
		return "", argTypeError(name, "a string", arg)
	}
	return s.Value, nil
}

func caseBuiltin(name string, newCaser func() cases.Caser) BuiltinFunction {
	return func(args ...Object) Object {
		if len(args) != 1 {
			return arityError(name, "1", len(args))
		}
		s, err := stringArg(name, args[0])
		if err != nil {
			return err
		}
		return &String{Value: newCaser().String(s)}
	}
}

func builtinLen(args ...Object) Object {
	if len(args) != 1 {
		return arityError("len", "1", len(args))
	}
	switch arg := args[0].(type) {
	case *String:
		return &Number{Value: float64(len(arg.Value))}
	case *List:
		return &Number{Value: float64(len(arg.Elements))}
	default:
		return NIL
	}
}

func builtinSplit(args ...Object) Object {
	if len(args) < 1 || len(args) > 2 {
		return arityError("split", "1 or 2", len(args))
	}
	s, err := stringArg("split", args[0])
	if err != nil {
		return err
	}
	sep := ""
	if len(args) == 2 {
		if sep, err = stringArg("split", args[1]); err != nil {
			return err
		}
	}

	var parts []string
	if sep == "" {
		parts = strings.Fields(s)
	} else {
		parts = strings.Split(s, sep)
	}

	elements := make([]Object, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			elements = append(elements, &String{Value: part})
		}
	}
	return &List{Elements: elements}
}

func builtinJoin(args ...Object) Object {
	if len(args) < 1 || len(args) > 2 {
		return arityError("join", "1 or 2", len(args))
	}
	list, err := listArg("join", args[0])
	if err != nil {
		return err
	}
	sep := " "
	if len(args) == 2 {
		if sep, err = stringArg("join", args[1]); err != nil {
			return err
		}
	}

	parts := make([]string, len(list.Elements))
	for i, e := range list.Elements {
		parts[i] = ToString(e)
	}
	return &String{Value: strings.Join(parts, sep)}
}

// builtinReplace replaces every occurrence. An empty old string leaves the
// input unchanged.
func builtinReplace(args ...Object) Object {
	if len(args) != 3 {
		return arityError("replace", "3", len(args))
	}
	var strs [3]string
	for i, arg := range args {
		s, err := stringArg("replace", arg)
		if err != nil {
			return err
		}
		strs[i] = s
	}

	if strs[1] == "" {
		return &String{Value: strs[0]}
	}
	return &String{Value: strings.ReplaceAll(strs[0], strs[1], strs[2])}
}

func builtinToString(args ...Object) Object {
	if len(args) != 1 {
		return arityError("to_string", "1", len(args))
	}
	return &String{Value: ToString(args[0])}
}
