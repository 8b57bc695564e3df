package evaluator

import (
	"github.com/sambeau/quill/pkg/quill/ast"
)

// evalIfExpression evaluates exactly one branch. An else-if chain is a
// nested IfExpression in Alternative.
func evalIfExpression(ie *ast.IfExpression, env *Environment) Object {
	condition := Eval(ie.Condition, env)
	if isSignal(condition) {
		return condition
	}

	ok, err := truthy(condition)
	if err != nil {
		return withPosition(err, ie.Token, env)
	}

	if ok {
		return Eval(ie.Consequence, env)
	} else if ie.Alternative != nil {
		return Eval(ie.Alternative, env)
	}
	return NIL
}

// evalWhileExpression yields the value of the last completed iteration, or
// nil when the body never ran.
func evalWhileExpression(we *ast.WhileExpression, env *Environment) Object {
	var result Object = NIL

	for {
		if err := env.Session.cancelled(); err != nil {
			return withPosition(cancelledError(err), we.Token, env)
		}

		condition := Eval(we.Condition, env)
		if isSignal(condition) {
			return condition
		}
		ok, err := truthy(condition)
		if err != nil {
			return withPosition(err, we.Token, env)
		}
		if !ok {
			return result
		}

		evaluated := Eval(we.Body, env)
		switch evaluated.(type) {
		case *BreakSignal:
			return result
		case *ContinueSignal:
			continue
		case *Error, *ReturnValue:
			return evaluated
		}
		result = evaluated
	}
}

// evalForExpression iterates over a snapshot of the list taken at loop
// start. The loop variable is bound with define-or-update in the current
// frame and stays visible after the loop.
func evalForExpression(fe *ast.ForExpression, env *Environment) Object {
	iterable := Eval(fe.Iterable, env)
	if isSignal(iterable) {
		return iterable
	}

	list, ok := iterable.(*List)
	if !ok {
		err := newStructuredError("TYPE-0007", map[string]any{"Got": TypeName(iterable)})
		return withPosition(err, fe.Token, env)
	}

	var result Object = NIL
	for _, element := range list.snapshot() {
		if err := env.Session.cancelled(); err != nil {
			return withPosition(cancelledError(err), fe.Token, env)
		}

		env.Update(fe.Variable.Value, element)

		evaluated := Eval(fe.Body, env)
		switch evaluated.(type) {
		case *BreakSignal:
			return result
		case *ContinueSignal:
			continue
		case *Error, *ReturnValue:
			return evaluated
		}
		result = evaluated
	}

	return result
}
