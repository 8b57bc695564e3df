package evaluator

// applyFunction invokes a builtin or user-defined function with arguments
// that have already been evaluated.
func applyFunction(fn Object, args []Object, env *Environment) Object {
	switch fn := fn.(type) {
	case *Builtin:
		return fn.Fn(args...)

	case *Function:
		return callUserFunction(fn, args, env)

	default:
		return newStructuredError("TYPE-0003", nil)
	}
}

// callUserFunction binds the parameters in a fresh frame under the closure
// frame and runs the body. Only a return signal is consumed here; break and
// continue keep unwinding to the caller.
func callUserFunction(fn *Function, args []Object, env *Environment) Object {
	if len(args) != fn.ParamCount() {
		return newStructuredError("ARITY-0001", map[string]any{
			"Function": fn.Name(),
			"Expected": fn.ParamCount(),
			"Got":      len(args),
		})
	}

	session := env.Session
	if session == nil {
		session = fn.Env.Session
	}
	if err := session.cancelled(); err != nil {
		return cancelledError(err)
	}
	if session != nil {
		session.Stack.push(fn.Name())
		defer session.Stack.pop()
	}

	extended := NewEnclosedEnvironment(fn.Env)
	extended.Session = session
	for i, param := range fn.Literal.Parameters {
		extended.Set(param.Value, args[i])
	}

	evaluated := Eval(fn.Literal.Body, extended)
	switch result := evaluated.(type) {
	case *ReturnValue:
		return result.Value
	case *Error, *BreakSignal, *ContinueSignal:
		return result
	}

	return NIL
}

// CallFunction invokes fn from Go code, for embedders and tests.
func CallFunction(fn Object, args []Object, env *Environment) Object {
	result := applyFunction(fn, args, env)
	if sig := strayControlError(result); sig != nil {
		return sig
	}
	return result
}
