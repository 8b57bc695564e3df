package evaluator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
)

// Logger interface for print()/println() output
type Logger interface {
	Log(values ...any)
	LogLine(values ...any)
}

// defaultStdoutLogger is the default logger that writes to stdout
type defaultStdoutLogger struct{}

func (l *defaultStdoutLogger) Log(values ...any) {
	for _, v := range values {
		fmt.Print(v)
	}
}

func (l *defaultStdoutLogger) LogLine(values ...any) {
	for _, v := range values {
		fmt.Print(v)
	}
	fmt.Println()
}

// DefaultLogger is the default stdout logger
var DefaultLogger Logger = &defaultStdoutLogger{}

// Session holds the per-run state shared by every frame of one program:
// where output goes, where read() takes lines from, the active call stack
// and the context that can cancel the run.
type Session struct {
	Logger Logger
	Input  *bufio.Reader // nil means read() always returns nil
	Stack  *CallStack
	Ctx    context.Context
}

// NewSession creates a session writing to logger and reading from input.
// Either may be nil.
func NewSession(logger Logger, input io.Reader) *Session {
	if logger == nil {
		logger = DefaultLogger
	}
	s := &Session{
		Logger: logger,
		Stack:  &CallStack{},
		Ctx:    context.Background(),
	}
	if input != nil {
		s.Input = bufio.NewReader(input)
	}
	return s
}

// cancelled returns the context error once the run has been abandoned.
func (s *Session) cancelled() error {
	if s == nil || s.Ctx == nil {
		return nil
	}
	return s.Ctx.Err()
}

// Environment is one frame of the scope chain
type Environment struct {
	store    map[string]Object
	outer    *Environment
	Filename string
	Session  *Session
}

// NewEnvironment creates a new top-level frame with a default session
func NewEnvironment() *Environment {
	return &Environment{
		store:   make(map[string]Object),
		Session: NewSession(nil, nil),
	}
}

// NewEnclosedEnvironment creates a new frame whose parent is outer
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := &Environment{
		store: make(map[string]Object),
		outer: outer,
	}
	if outer != nil {
		env.Filename = outer.Filename
		env.Session = outer.Session
	}
	return env
}

// NewGlobalEnvironment creates the global frame for a run, seeded with the
// builtin catalog bound to session.
func NewGlobalEnvironment(session *Session) *Environment {
	if session == nil {
		session = NewSession(nil, nil)
	}
	env := &Environment{
		store:   make(map[string]Object),
		Session: session,
	}
	for name, builtin := range newBuiltins(session) {
		env.store[name] = builtin
	}
	return env
}

// Get looks a name up in this frame, then each parent in turn
func (e *Environment) Get(name string) (Object, bool) {
	value, ok := e.store[name]
	if !ok && e.outer != nil {
		value, ok = e.outer.Get(name)
	}
	return value, ok
}

// Set binds name in this frame only
func (e *Environment) Set(name string, val Object) Object {
	e.store[name] = val
	return val
}

// Update overwrites the nearest existing binding of name, searching this
// frame and then its parents. An unbound name is created in this frame.
func (e *Environment) Update(name string, val Object) Object {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			env.store[name] = val
			return val
		}
	}
	e.store[name] = val
	return val
}

// Snapshot returns a new frame holding a shallow copy of this frame's
// bindings with the same parent. Closures capture a snapshot, so later
// bindings added to this frame are not seen by them while bindings reached
// through the shared parent are.
func (e *Environment) Snapshot() *Environment {
	env := NewEnclosedEnvironment(e.outer)
	env.Filename = e.Filename
	env.Session = e.Session
	for name, val := range e.store {
		env.store[name] = val
	}
	return env
}

// Names returns every name visible from this frame, sorted.
func (e *Environment) Names() []string {
	seen := make(map[string]bool)
	var result []string

	for env := e; env != nil; env = env.outer {
		for name := range env.store {
			if !seen[name] {
				seen[name] = true
				result = append(result, name)
			}
		}
	}

	sort.Strings(result)
	return result
}

// Locals returns the bindings of this frame only.
func (e *Environment) Locals() map[string]Object {
	locals := make(map[string]Object, len(e.store))
	for name, val := range e.store {
		locals[name] = val
	}
	return locals
}
