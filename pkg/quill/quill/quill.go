// Package quill provides a public API for embedding the Quill language interpreter.
package quill

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sambeau/quill/pkg/quill/ast"
	perrors "github.com/sambeau/quill/pkg/quill/errors"
	"github.com/sambeau/quill/pkg/quill/evaluator"
	"github.com/sambeau/quill/pkg/quill/lexer"
	"github.com/sambeau/quill/pkg/quill/parser"
)

// Options configures an interpreter.
type Options struct {
	Filename string    // shown in error messages
	Logger   Logger    // print()/println() output; stdout when nil
	Input    io.Reader // lines for read(); read() returns nil when nil
}

// Result is the outcome of a successful run.
type Result struct {
	Value evaluator.Object // value of the last top-level form
	Env   *evaluator.Environment
}

// Interpreter evaluates programs against one persistent global environment.
// Definitions from earlier calls to Eval stay visible to later ones.
type Interpreter struct {
	filename string
	session  *evaluator.Session
	env      *evaluator.Environment
}

// New creates an interpreter with the builtins installed.
func New(opts Options) *Interpreter {
	logger := opts.Logger
	if logger == nil {
		logger = evaluator.DefaultLogger
	}

	in := &Interpreter{
		filename: opts.Filename,
		session:  evaluator.NewSession(logger, opts.Input),
	}
	in.Reset()
	return in
}

// Reset discards every user definition.
func (in *Interpreter) Reset() {
	in.env = evaluator.NewGlobalEnvironment(in.session)
	in.env.Filename = in.filename
}

// Env returns the global environment.
func (in *Interpreter) Env() *evaluator.Environment {
	return in.env
}

// Names returns every name visible at the top level, builtins included.
func (in *Interpreter) Names() []string {
	return in.env.Names()
}

// Eval parses and runs src. Parse and runtime failures are returned as
// *errors.QuillError.
func (in *Interpreter) Eval(ctx context.Context, src string) (evaluator.Object, error) {
	program, err := Parse(src, in.filename)
	if err != nil {
		return nil, err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	in.session.Ctx = ctx
	defer func() { in.session.Ctx = context.Background() }()

	result := evaluator.Eval(program, in.env)
	if errObj, ok := result.(*evaluator.Error); ok {
		return nil, errObj.ToQuillError()
	}
	return result, nil
}

// Parse parses src and returns the first syntax error, if any.
func Parse(src, filename string) (*ast.Program, error) {
	p := parser.New(lexer.New(src))
	program := p.ParseProgram()

	if errs := p.StructuredErrors(); len(errs) > 0 {
		return nil, errs[0].WithFile(filename)
	}
	return program, nil
}

// Check reports whether src parses.
func Check(src, filename string) error {
	_, err := Parse(src, filename)
	return err
}

// Run evaluates src once in a fresh interpreter.
func Run(ctx context.Context, src string, opts Options) (*Result, error) {
	in := New(opts)
	value, err := in.Eval(ctx, src)
	if err != nil {
		return nil, err
	}
	return &Result{Value: value, Env: in.env}, nil
}

// Interpret runs a complete program, writing its output to out. A runtime
// error is written to out as "Error: <message>" after whatever output was
// already produced. Syntax errors go to stderr and nothing is run. It
// reports whether the program succeeded.
func Interpret(src string, out io.Writer) bool {
	return InterpretTo(src, out, os.Stderr)
}

// InterpretTo is Interpret with an explicit diagnostic writer.
func InterpretTo(src string, out, diag io.Writer) bool {
	program, err := Parse(src, "")
	if err != nil {
		fmt.Fprintf(diag, "Error: %s\n", err)
		return false
	}

	session := evaluator.NewSession(WriterLogger(out), nil)
	env := evaluator.NewGlobalEnvironment(session)

	result := evaluator.Eval(program, env)
	if errObj, ok := result.(*evaluator.Error); ok {
		fmt.Fprintf(out, "Error: %s\n", errObj.ToQuillError().Message)
		return false
	}
	return true
}

// AsQuillError extracts a *errors.QuillError from err.
func AsQuillError(err error) (*perrors.QuillError, bool) {
	qerr, ok := err.(*perrors.QuillError)
	return qerr, ok
}
