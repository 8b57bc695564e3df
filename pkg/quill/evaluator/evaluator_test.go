package evaluator

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sambeau/quill/pkg/quill/lexer"
	"github.com/sambeau/quill/pkg/quill/parser"
)

// captureLogger collects print output
type captureLogger struct {
	strings.Builder
}

func (l *captureLogger) Log(values ...any) {
	for _, v := range values {
		fmt.Fprint(&l.Builder, v)
	}
}

func (l *captureLogger) LogLine(values ...any) {
	l.Log(values...)
	l.WriteString("\n")
}

// Helper to parse and evaluate Quill code, returning printed output and
// the program result
func testRun(t *testing.T, input string) (string, Object) {
	t.Helper()
	return testRunSession(t, input, NewSession(&captureLogger{}, nil))
}

func testRunSession(t *testing.T, input string, session *Session) (string, Object) {
	t.Helper()
	p := parser.New(lexer.New(input))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parser errors for %q: %v", input, errs)
	}

	env := NewGlobalEnvironment(session)
	result := Eval(program, env)
	logger, _ := session.Logger.(*captureLogger)
	if logger == nil {
		return "", result
	}
	return logger.String(), result
}

func testEval(t *testing.T, input string) Object {
	t.Helper()
	_, result := testRun(t, input)
	return result
}

func TestEvalExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "7"},
		{"7 / 2", "3.5"},
		{"7 % 3", "1"},
		{"-7 % 3", "-1"},
		{"2 ^ 10", "1024"},
		{"2 ^ 3 ^ 2", "512"},
		{"1 / 3", "0.333333"},
		{"0.1 + 0.2", "0.3"},
		{"1e20", "100000000000000000000"},
		{"(0 - 8) ^ 0.5", "nan"},
		{"-(3)", "-3"},
		{"+5", "5"},
		{"true + false", "true"},
		{"false + false", "false"},
		{"true + 1", "2"},
		{"true * 3", "3"},
		{`"ab" + "cd"`, "abcd"},
		{`"hello.ql" - ".ql"`, "hello"},
		{`"hello" - "x"`, "hello"},
		{`"abab" - "ab"`, "ab"},
		{`"ab" * 3`, "ababab"},
		{`2 * "ab"`, "abab"},
		{`"abcd" * 1.5`, "abcdab"},
		{`"ab" * 0.5`, "a"},
		{`"ab" * -1`, ""},
		{"[1, 2] * 1.5", "[1, 2, 1]"},
		{"[1, 2] * 0", "[]"},
		{"[1] + [2, 3]", "[1, 2, 3]"},
		{"[] + []", "[]"},
		{`[1, "a"]`, `[1, "a"]`},
		{`["solo"]`, `"solo"`},
		{"[[1, 2], 3]", "[[1, 2], 3]"},
		{"nil", "nil"},
		{"print", "<function>"},
		{"function(x) return x end function", "<function>"},
		{`"hello"[1]`, "e"},
		{`"hello"[-1]`, "o"},
		{"[1, 2, 3][1.9]", "2"},
		{"[1, 2, 3][-1.5]", "3"},
		{`"abcdef"[-3:-1]`, "de"},
		{`"abcdef"[2:]`, "cdef"},
		{`"abcdef"[:2]`, "ab"},
		{`"abc"[-10:10]`, "abc"},
		{`"abc"[2:1]`, ""},
		{"[1, 2, 3][2:1]", "[]"},
		{"[1, 2, 3][:]", "[1, 2, 3]"},
		{`"ell" in "hello"`, "true"},
		{`"x" in "hello"`, "false"},
		{"2 in [1, 2, 3]", "true"},
		{"12 in 3125", "true"},
		{"x = if false then 1 end if", "nil"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := testEval(t, tt.input)
			if isError(result) {
				t.Fatalf("unexpected error: %s", result.Inspect())
			}
			if got := ToString(result); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestEvalComparison(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"nil == nil", true},
		{"nil == 0", false},
		{"nil == false", false},
		{"nil != nil", false},
		{"1 == true", true},
		{"0 == false", true},
		{`"1" == 1`, false},
		{`"a" == "a"`, true},
		{`[1, "a"] == [1, "a"]`, true},
		{"[1, 2] == [1, 2, 3]", false},
		{"[1, [2]] == [1, [2]]", true},
		{"f = function() return 1 end function\nf == f", false},
		{"print == print", false},
		{"1 < 2", true},
		{"2 <= 2", true},
		{"3 > 2", true},
		{"2 >= 3", false},
		{"false < true", true},
		{`"abc" < "abd"`, true},
		{`"b" > "abc"`, true},
		{"[1, 2] < [1, 3]", true},
		{"[1, 2] < [1, 2, 0]", true},
		{"[2] > [1, 9]", true},
		{"[1, 2] <= [1, 2]", true},
		{"not false", true},
		{"!true", false},
		{"true and false", false},
		{"true && true", true},
		{"false or true", true},
		{"false || false", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := testEval(t, tt.input)
			b, ok := result.(*Boolean)
			if !ok {
				t.Fatalf("expected Boolean, got %T (%s)", result, result.Inspect())
			}
			if b.Value != tt.expected {
				t.Errorf("expected %t, got %t", tt.expected, b.Value)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		input   string
		code    string
		message string
	}{
		{"nil < 1", "TYPE-0004", "can't compare 'null' and 'number'"},
		{"1 >= nil", "TYPE-0004", "can't compare 'number' and 'null'"},
		{`"a" < 1`, "TYPE-0004", "can't compare 'string' and 'number'"},
		{"print < print", "TYPE-0004", "can't compare 'function' and 'function'"},
		{"1 / 0", "OP-0001", "division by zero"},
		{"5 % 0", "OP-0001", "division by zero"},
		{"x = 1\nx %= 0", "OP-0001", "division by zero"},
		{"x = 1\nx /= false", "OP-0001", "division by zero"},
		{"1 and true", "TYPE-0002", "&& only applies to bool"},
		{"true or 0", "TYPE-0002", "|| only applies to bool"},
		{"not 1", "TYPE-0002", "! only applies to bool"},
		{`"a" + 1`, "TYPE-0001", "expected a number or bool but got 'string'"},
		{"[1] + 1", "TYPE-0001", "expected a number or bool but got 'list'"},
		{"nil - 1", "TYPE-0001", "expected a number or bool but got 'null'"},
		{`-"a"`, "TYPE-0001", "expected a number or bool but got 'string'"},
		{"y + 1", "UNDEF-0001", "undefined variable 'y'"},
		{"[1, 2][2]", "INDEX-0001", "index 2 out of range [0,2)"},
		{"[1, 2][-3]", "INDEX-0001", "index -3 out of range [0,2)"},
		{`""[0]`, "INDEX-0001", "index 0 out of range [0,0)"},
		{"5[0]", "TYPE-0005", "type 'number' is not subscriptable"},
		{"nil[0:1]", "TYPE-0006", "type 'null' is not sliceable"},
		{`[1]["a"]`, "TYPE-0008", "index must be a number, got 'string'"},
		{"3()", "TYPE-0003", "attempt to call a non-function value"},
		{"f = function(a) return a end function\nf(1, 2)", "ARITY-0001", "Function 'f' expects 1 arguments, got 2"},
		{"(function(a, b) return a end function)(1)", "ARITY-0001", "Function '<anonymous>' expects 2 arguments, got 1"},
		{`for c in "abc" print(c) end for`, "TYPE-0007", "for loop expects a list but got 'string'"},
		{"break", "LOOP-0001", "'break' outside of a loop"},
		{"continue", "LOOP-0001", "'continue' outside of a loop"},
		{"return 1", "LOOP-0002", "'return' outside of a function"},
		{"f = function() break end function\nf()", "LOOP-0001", "'break' outside of a loop"},
		{"if print then 1 end if", "TYPE-0010", "a function cannot be used as a condition"},
		{"while print end while", "TYPE-0010", "a function cannot be used as a condition"},
		{"x = \"a\"\nx++", "TYPE-0001", "expected a number or bool but got 'string'"},
		{"z++", "UNDEF-0001", "undefined variable 'z'"},
		{"function f()\n  fresh = 1\nend function\nf()\nfresh", "UNDEF-0001", "undefined variable 'fresh'"},
		{"x = [1]\nx += 1", "TYPE-0001", "expected a number or bool but got 'list'"},
		{"sqrt(-1)", "OP-0002", "sqrt: negative argument"},
		{"pop([])", "INDEX-0003", "pop: list is empty"},
		{"insert([1], 3, 0)", "INDEX-0002", "insert: index out of range"},
		{"remove([1], 1)", "INDEX-0002", "remove: index out of range"},
		{"remove([1], -1)", "INDEX-0002", "remove: index out of range"},
		{"range(1, 5, 0)", "OP-0002", "range: step cannot be zero"},
		{"range()", "ARITY-0002", "range: expected 1 to 3 arguments, got 0"},
		{"upper(1)", "TYPE-0011", "upper: expected a string, got 'number'"},
		{"push(1, 2)", "TYPE-0011", "push: expected a list, got 'number'"},
		{`insert([], "0", 1)`, "TYPE-0011", "insert: expected a number, got 'string'"},
		{"len()", "ARITY-0002", "len: expected 1 arguments, got 0"},
		{`abs("x")`, "TYPE-0001", "expected a number or bool but got 'string'"},
		{`max(1, "x")`, "TYPE-0001", "expected a number or bool but got 'string'"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := testEval(t, tt.input)
			err, ok := result.(*Error)
			if !ok {
				t.Fatalf("expected error, got %T (%s)", result, result.Inspect())
			}
			if err.Code != tt.code {
				t.Errorf("code = %q, want %q (%s)", err.Code, tt.code, err.Message)
			}
			if err.Message != tt.message {
				t.Errorf("message = %q, want %q", err.Message, tt.message)
			}
		})
	}
}

func TestErrorsCarryPosition(t *testing.T) {
	result := testEval(t, "x = 1\ny = x + nil")
	err, ok := result.(*Error)
	if !ok {
		t.Fatalf("expected error, got %s", result.Inspect())
	}
	if err.Line != 2 || err.Column != 7 {
		t.Errorf("position = %d:%d, want 2:7", err.Line, err.Column)
	}

	qerr := err.ToQuillError()
	if !strings.HasPrefix(qerr.String(), "line 2, column 7: ") {
		t.Errorf("String() = %q", qerr.String())
	}

	// errors inside a function keep the position of the failing node
	result = testEval(t, "f = function()\n  return 1 / 0\nend function\nf()")
	err = result.(*Error)
	if err.Line != 2 {
		t.Errorf("line = %d, want 2", err.Line)
	}

	result = testEval(t, "x = 1\n\nbreak")
	err = result.(*Error)
	if err.Line != 3 || err.Column != 1 {
		t.Errorf("break position = %d:%d, want 3:1", err.Line, err.Column)
	}
}

func TestUndefinedVariableHint(t *testing.T) {
	result := testEval(t, "count = 1\ncout")
	err, ok := result.(*Error)
	if !ok {
		t.Fatalf("expected error, got %s", result.Inspect())
	}
	if len(err.Hints) != 1 || err.Hints[0] != "Did you mean `count`?" {
		t.Errorf("hints = %v", err.Hints)
	}
}

func TestPrograms(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"assignment in branch mutates outer binding",
			"x=0; if true then x=5 end if; print(x)",
			"5",
		},
		{
			"recursion through assigned name",
			"fact=function(n) if n==0 then return 1 else return n*fact(n-1) end if end function; print(fact(5))",
			"120",
		},
		{
			"independent counters",
			"makeCounter=function() count=0 return function() count=count+1 return count end function end function; c1=makeCounter(); c2=makeCounter(); print(c1()); print(c1()); print(c2())",
			"121",
		},
		{
			"list rendering",
			"print([1,2,3]); print([42])",
			"[1, 2, 3]42",
		},
		{
			"nil equality",
			"print(nil==nil); print(nil==0)",
			"truefalse",
		},
		{
			"negative slice",
			`a="abcdef"; print(a[-3:-1])`,
			"de",
		},
		{
			"list aliasing",
			"a=[1]; b=a; push(a,2); print(len(b)); print(b)",
			"2[1, 2]",
		},
		{
			"concatenation allocates",
			"a=[1]; b=a+[2]; push(b, 3); print(a)",
			"1",
		},
		{
			"slice allocates",
			"a=[1, 2]; b=a[:]; push(b, 3); print(len(a))",
			"2",
		},
		{
			"concatenation length",
			"L=[1,2]; M=[3]; print(len(L+M) == len(L)+len(M)); print((L+M)[:len(L)] == L)",
			"truetrue",
		},
		{
			"negative index matches last element",
			`L=[1,2,3]; s="xyz"; print(L[-1] == L[len(L)-1]); print(s[-1] == s[len(s)-1])`,
			"truetrue",
		},
		{
			"sort is idempotent",
			`L=["b", "c", "a"]; print(sort(sort(L)) == sort(L)); print(sort(L)); print(L)`,
			`true["a", "b", "c"]["b", "c", "a"]`,
		},
		{
			"no short circuit",
			"n = 0\nfunction f()\n  n = n + 1\n  return true\nend function\nprint(false and f())\nprint(true or f())\nprint(n)",
			"falsetrue2",
		},
		{
			"while yields last iteration",
			"i = 0\nx = while i < 3 i++ end while\nprint(x)",
			"2",
		},
		{
			"while with no iterations",
			"print(while false 1 end while)",
			"nil",
		},
		{
			"break keeps previous value",
			"r = for x in [1, 2, 3] if x == 2 then break end if x * 10 end for\nprint(r)",
			"10",
		},
		{
			"continue skips",
			"s = 0\nfor x in range(5) if x % 2 == 0 then continue end if s += x end for\nprint(s)",
			"4",
		},
		{
			"loop variable survives the loop",
			"for x in [1, 2] end for\nprint(x)",
			"2",
		},
		{
			"for iterates a snapshot",
			"L = [1, 2]\nfor x in L push(L, x) end for\nprint(L)",
			"[1, 2, 1, 2]",
		},
		{
			"break unwinds through a call",
			"f = function() break end function\nwhile true f() end while\nprint(\"out\")",
			"out",
		},
		{
			"else if chain",
			"x = 5\nprint(if x < 3 then \"a\" else if x < 10 then \"b\" else \"c\" end if)",
			"b",
		},
		{
			"compound assignment",
			"x = 2\nx += 3\nx *= 2\nx -= 1\nx /= 3\nx ^= 2\nprint(x)\ny = 7\nprint(y %= 4)",
			"93",
		},
		{
			"string compound assignment",
			"s = \"a\"\ns += \"b\"\ns *= 2\nprint(s)",
			"abab",
		},
		{
			"increments",
			"i = 1\nprint(i++)\nprint(i)\nprint(++i)\nprint(--i)\nprint(i--)\nprint(i)",
			"123221",
		},
		{
			"bool increments numerically",
			"b = true\nb++\nprint(b)",
			"2",
		},
		{
			"closures capture each iteration",
			"fs = []\nfor i in range(3) push(fs, function() return i end function) end for\nprint(fs[0](), fs[2]())",
			"02",
		},
		{
			"named functions see later globals",
			"function show()\n  return later\nend function\nlater = \"yes\"\nprint(show())",
			"yes",
		},
		{
			"forward references between named functions",
			"print(a())\nfunction a()\n  return b()\nend function\nfunction b()\n  return 7\nend function",
			"7",
		},
		{
			"function without return is nil",
			"f = function() 5 end function\nprint(f())",
			"nil",
		},
		{
			"parameters shadow outer names",
			"x = 1\nfunction f(x)\n  x = 5\n  return x\nend function\nprint(f(2), x)",
			"51",
		},
		{
			"assignment mutates nearest binding",
			"total = 0\nfunction add(n)\n  total = total + n\nend function\nadd(2)\nadd(3)\nprint(total)",
			"5",
		},
		{
			"println",
			`println("a", 1)` + "\n" + `print("b")`,
			"a1\nb",
		},
		{
			"return inside loop inside function",
			"function find(xs, v)\n  for x in xs\n    if x == v then return \"found\" end if\n  end for\n  return \"missing\"\nend function\nprint(find([1, 2], 2), find([], 1))",
			"foundmissing",
		},
		{
			"nested function recursion",
			"function fib(n)\n  if n < 2 then return n end if\n  return fib(n - 1) + fib(n - 2)\nend function\nprint(fib(15))",
			"610",
		},
		{
			"stack trace",
			"function inner()\n  return stacktrace()\nend function\nfunction outer()\n  return inner()\nend function\nprint(outer())\nprint(stacktrace())",
			`["outer", "inner"][]`,
		},
		{
			"anonymous stack frame",
			"print((function() return stacktrace() end function)())",
			`"<anonymous>"`,
		},
		{
			"number formatting",
			"print(2.5, \" \", 100, \" \", -0.5, \" \", 1/3, \" \", 123456789)",
			"2.5 100 -0.5 0.333333 123456789",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, result := testRun(t, tt.input)
			if isError(result) {
				t.Fatalf("unexpected error: %s", result.Inspect())
			}
			if output != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, output)
			}
		})
	}
}

func TestOutputBeforeErrorIsKept(t *testing.T) {
	output, result := testRun(t, "print(\"before\")\nx = 1 / 0\nprint(\"after\")")
	if !isError(result) {
		t.Fatalf("expected error, got %s", result.Inspect())
	}
	if output != "before" {
		t.Errorf("output = %q", output)
	}
}

func TestCallStackUnwindsOnError(t *testing.T) {
	session := NewSession(&captureLogger{}, nil)
	_, result := testRunSession(t, "function f()\n  return 1 / 0\nend function\nfunction g()\n  return f()\nend function\ng()", session)
	if !isError(result) {
		t.Fatalf("expected error, got %s", result.Inspect())
	}
	if depth := session.Stack.Depth(); depth != 0 {
		t.Errorf("call stack depth = %d after error, want 0", depth)
	}
}

func TestCancelledRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session := NewSession(&captureLogger{}, nil)
	session.Ctx = ctx

	_, result := testRunSession(t, "while true end while", session)
	err, ok := result.(*Error)
	if !ok {
		t.Fatalf("expected error, got %s", result.Inspect())
	}
	if err.Code != "LOOP-0003" || err.Message != "execution cancelled: interrupted" {
		t.Errorf("got %s: %s", err.Code, err.Message)
	}
}

func TestCancelledInsideLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := NewSession(&captureLogger{}, nil)
	session.Ctx = ctx

	env := NewGlobalEnvironment(session)
	env.Set("stop", &Builtin{Name: "stop", Fn: func(args ...Object) Object {
		cancel()
		return NIL
	}})

	p := parser.New(lexer.New("i = 0\nwhile true\n  i++\n  if i == 3 then stop() end if\nend while"))
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}

	result := Eval(program, env)
	err, ok := result.(*Error)
	if !ok || err.Code != "LOOP-0003" {
		t.Fatalf("expected cancellation, got %s", result.Inspect())
	}
	if i, _ := env.Get("i"); ToString(i) != "3" {
		t.Errorf("i = %s, want 3", ToString(i))
	}
}

func TestCancelledInsideRecursion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := NewSession(&captureLogger{}, nil)
	session.Ctx = ctx

	env := NewGlobalEnvironment(session)
	env.Set("stop", &Builtin{Name: "stop", Fn: func(args ...Object) Object {
		cancel()
		return NIL
	}})

	p := parser.New(lexer.New("function down(n)\n  if n == 3 then stop() end if\n  return down(n + 1)\nend function\ndown(0)"))
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}

	result := Eval(program, env)
	err, ok := result.(*Error)
	if !ok || err.Code != "LOOP-0003" {
		t.Fatalf("expected cancellation, got %s", result.Inspect())
	}
	if session.Stack.Depth() != 0 {
		t.Errorf("call stack depth = %d, want 0", session.Stack.Depth())
	}
}

func TestCallFunction(t *testing.T) {
	env := NewGlobalEnvironment(NewSession(&captureLogger{}, nil))
	p := parser.New(lexer.New("function double(x)\n  return x * 2\nend function"))
	Eval(p.ParseProgram(), env)

	fn, ok := env.Get("double")
	if !ok {
		t.Fatal("double not defined")
	}
	result := CallFunction(fn, []Object{&Number{Value: 21}}, env)
	if ToString(result) != "42" {
		t.Errorf("double(21) = %s", ToString(result))
	}
}
