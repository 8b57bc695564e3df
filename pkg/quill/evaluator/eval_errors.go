package evaluator

import (
	"context"
	"errors"

	perrors "github.com/sambeau/quill/pkg/quill/errors"
	"github.com/sambeau/quill/pkg/quill/lexer"
)

// newStructuredError creates an Error from the catalog. Position is filled in
// later by the node that triggered it.
func newStructuredError(code string, data map[string]any) *Error {
	perr := perrors.New(code, data)
	return fromQuillError(perr)
}

func fromQuillError(perr *perrors.QuillError) *Error {
	return &Error{
		Class:   perr.Class,
		Code:    perr.Code,
		Message: perr.Message,
		Hints:   perr.Hints,
		Line:    perr.Line,
		Column:  perr.Column,
		File:    perr.File,
		Data:    perr.Data,
	}
}

// withPosition stamps tok's position on obj if it is an error that does not
// have one yet. Errors raised deeper in the tree keep their own position.
func withPosition(obj Object, tok lexer.Token, env *Environment) Object {
	err, ok := obj.(*Error)
	if !ok {
		return obj
	}
	if err.Line == 0 && tok.Line > 0 {
		err.Line = tok.Line
		err.Column = tok.Column
	}
	if err.File == "" && env != nil {
		err.File = env.Filename
	}
	return err
}

// Common errors

func typeMismatch(operator string, left, right Object) *Error {
	return newStructuredError("TYPE-0009", map[string]any{
		"Operator": operator,
		"Left":     TypeName(left),
		"Right":    TypeName(right),
	})
}

func notNumeric(obj Object) *Error {
	return newStructuredError("TYPE-0001", map[string]any{"Got": TypeName(obj)})
}

func arityError(name string, expected string, got int) *Error {
	return newStructuredError("ARITY-0002", map[string]any{
		"Function": name,
		"Expected": expected,
		"Got":      got,
	})
}

func argTypeError(name, expected string, got Object) *Error {
	return newStructuredError("TYPE-0011", map[string]any{
		"Function": name,
		"Expected": expected,
		"Got":      TypeName(got),
	})
}

func operationError(name, reason string) *Error {
	return newStructuredError("OP-0002", map[string]any{
		"Function": name,
		"Reason":   reason,
	})
}

func cancelledError(err error) *Error {
	reason := err.Error()
	switch {
	case errors.Is(err, context.Canceled):
		reason = "interrupted"
	case errors.Is(err, context.DeadlineExceeded):
		reason = "time limit exceeded"
	}
	return newStructuredError("LOOP-0003", map[string]any{"Reason": reason})
}

// strayControlError converts a signal that escaped to the top level into an
// error positioned at its keyword.
func strayControlError(obj Object) *Error {
	var err *Error
	var tok lexer.Token
	switch sig := obj.(type) {
	case *BreakSignal:
		tok = sig.Token
		err = newStructuredError("LOOP-0001", map[string]any{"Keyword": "break"})
	case *ContinueSignal:
		tok = sig.Token
		err = newStructuredError("LOOP-0001", map[string]any{"Keyword": "continue"})
	case *ReturnValue:
		tok = sig.Token
		err = newStructuredError("LOOP-0002", nil)
	default:
		return nil
	}
	err.Line = tok.Line
	err.Column = tok.Column
	return err
}
