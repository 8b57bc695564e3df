// Package evaluator walks a parsed Quill program and produces values.
//
// Errors and the return/break/continue signals are ordinary Objects returned
// from Eval. Every caller checks for them and hands them up unchanged until a
// loop, a call or the program boundary consumes them.
package evaluator

import (
	"github.com/sambeau/quill/pkg/quill/ast"
	perrors "github.com/sambeau/quill/pkg/quill/errors"
	"github.com/sambeau/quill/pkg/quill/lexer"
)

// Eval evaluates a node in env.
func Eval(node ast.Node, env *Environment) Object {
	switch node := node.(type) {

	// Program and statements
	case *ast.Program:
		return evalProgram(node, env)

	case *ast.ExpressionStatement:
		return Eval(node.Expression, env)

	case *ast.FunctionDefinition:
		// registered before the program runs
		return NIL

	// Literals
	case *ast.NumberLiteral:
		return &Number{Value: node.Value}

	case *ast.StringLiteral:
		return &String{Value: node.Value}

	case *ast.BooleanLiteral:
		return nativeBoolToBooleanObject(node.Value)

	case *ast.NilLiteral:
		return NIL

	case *ast.ListLiteral:
		elements := evalExpressions(node.Elements, env)
		if len(elements) == 1 && isSignal(elements[0]) {
			return elements[0]
		}
		return &List{Elements: elements}

	case *ast.Identifier:
		return evalIdentifier(node, env)

	// Operators
	case *ast.PrefixExpression:
		right := Eval(node.Right, env)
		if isSignal(right) {
			return right
		}
		return withPosition(evalPrefixExpression(node.Operator, right), node.Token, env)

	case *ast.InfixExpression:
		left := Eval(node.Left, env)
		if isSignal(left) {
			return left
		}
		right := Eval(node.Right, env)
		if isSignal(right) {
			return right
		}
		return withPosition(evalInfixExpression(node.Operator, left, right), node.Token, env)

	case *ast.InExpression:
		left := Eval(node.Left, env)
		if isSignal(left) {
			return left
		}
		right := Eval(node.Right, env)
		if isSignal(right) {
			return right
		}
		return evalInOperator(left, right)

	// Assignment
	case *ast.AssignmentExpression:
		return evalAssignment(node, env)

	case *ast.CompoundAssignmentExpression:
		return evalCompoundAssignment(node, env)

	case *ast.IncrementExpression:
		return evalIncrement(node, env)

	// Access
	case *ast.IndexExpression:
		left := Eval(node.Left, env)
		if isSignal(left) {
			return left
		}
		index := Eval(node.Index, env)
		if isSignal(index) {
			return index
		}
		return withPosition(evalIndex(left, index), node.Token, env)

	case *ast.SliceExpression:
		return evalSliceExpression(node, env)

	// Functions
	case *ast.FunctionLiteral:
		return &Function{Literal: node, Env: env.Snapshot()}

	case *ast.CallExpression:
		return evalCallExpression(node, env)

	// Control flow
	case *ast.BlockExpression:
		return evalBlockExpression(node, env)

	case *ast.IfExpression:
		return evalIfExpression(node, env)

	case *ast.WhileExpression:
		return evalWhileExpression(node, env)

	case *ast.ForExpression:
		return evalForExpression(node, env)

	case *ast.BreakExpression:
		return &BreakSignal{Token: node.Token}

	case *ast.ContinueExpression:
		return &ContinueSignal{Token: node.Token}

	case *ast.ReturnExpression:
		val := Eval(node.ReturnValue, env)
		if isSignal(val) {
			return val
		}
		return &ReturnValue{Value: val, Token: node.Token}
	}

	return NIL
}

// evalProgram registers the named functions, then runs each top-level form
// in order. The result is the value of the last form.
func evalProgram(program *ast.Program, env *Environment) Object {
	for _, def := range program.Functions() {
		env.Set(def.Function.Name, &Function{Literal: def.Function, Env: env})
	}

	var result Object = NIL
	for _, statement := range program.Statements {
		if err := env.Session.cancelled(); err != nil {
			return withPosition(cancelledError(err), statementToken(statement), env)
		}

		result = Eval(statement, env)

		switch r := result.(type) {
		case *Error:
			return r
		case *ReturnValue, *BreakSignal, *ContinueSignal:
			err := strayControlError(r)
			err.File = env.Filename
			return err
		}
	}

	return result
}

func statementToken(statement ast.Statement) lexer.Token {
	switch s := statement.(type) {
	case *ast.ExpressionStatement:
		return s.Token
	case *ast.FunctionDefinition:
		return s.Token
	}
	return lexer.Token{}
}

func evalIdentifier(node *ast.Identifier, env *Environment) Object {
	if val, ok := env.Get(node.Value); ok {
		return val
	}

	err := fromQuillError(perrors.NewUndefinedVariable(node.Value, env.Names()))
	return withPosition(err, node.Token, env)
}

func evalExpressions(exps []ast.Expression, env *Environment) []Object {
	result := make([]Object, 0, len(exps))

	for _, e := range exps {
		evaluated := Eval(e, env)
		if isSignal(evaluated) {
			return []Object{evaluated}
		}
		result = append(result, evaluated)
	}

	return result
}

// evalAssignment binds name with define-or-update. A function value also
// gets the name bound inside its own captured frame so that it can call
// itself recursively.
func evalAssignment(node *ast.AssignmentExpression, env *Environment) Object {
	val := Eval(node.Value, env)
	if isSignal(val) {
		return val
	}

	env.Update(node.Name.Value, val)
	if fn, ok := val.(*Function); ok {
		fn.Env.Update(node.Name.Value, val)
	}

	return val
}

func evalCompoundAssignment(node *ast.CompoundAssignmentExpression, env *Environment) Object {
	current := evalIdentifier(node.Name, env)
	if isSignal(current) {
		return current
	}

	val := Eval(node.Value, env)
	if isSignal(val) {
		return val
	}

	result := evalInfixExpression(node.Operator, current, val)
	if isError(result) {
		return withPosition(result, node.Token, env)
	}

	return env.Update(node.Name.Value, result)
}

func evalIncrement(node *ast.IncrementExpression, env *Environment) Object {
	current := evalIdentifier(node.Target, env)
	if isSignal(current) {
		return current
	}

	old, err := asNumeric(current)
	if err != nil {
		return withPosition(err, node.Token, env)
	}

	updated := &Number{Value: old + node.Delta()}
	env.Update(node.Target.Value, updated)

	if node.Prefix {
		return updated
	}
	return &Number{Value: old}
}

func evalSliceExpression(node *ast.SliceExpression, env *Environment) Object {
	left := Eval(node.Left, env)
	if isSignal(left) {
		return left
	}

	var start, end Object
	if node.Start != nil {
		start = Eval(node.Start, env)
		if isSignal(start) {
			return start
		}
	}
	if node.End != nil {
		end = Eval(node.End, env)
		if isSignal(end) {
			return end
		}
	}

	return withPosition(evalSlice(left, start, end), node.Token, env)
}

func evalCallExpression(node *ast.CallExpression, env *Environment) Object {
	function := Eval(node.Function, env)
	if isSignal(function) {
		return function
	}
	if !isCallable(function) {
		return withPosition(newStructuredError("TYPE-0003", nil), node.Token, env)
	}

	args := evalExpressions(node.Arguments, env)
	if len(args) == 1 && isSignal(args[0]) {
		return args[0]
	}

	return withPosition(applyFunction(function, args, env), node.Token, env)
}

func evalBlockExpression(block *ast.BlockExpression, env *Environment) Object {
	var result Object = NIL

	for _, expression := range block.Expressions {
		result = Eval(expression, env)
		if isSignal(result) {
			return result
		}
	}

	return result
}
