// Package repl implements the interactive Quill prompt.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/sambeau/quill/pkg/quill/evaluator"
	"github.com/sambeau/quill/pkg/quill/help"
	"github.com/sambeau/quill/pkg/quill/lexer"
	"github.com/sambeau/quill/pkg/quill/quill"
)

const PROMPT = "quill> "
const CONTINUATION_PROMPT = "....> "

const QUILL_LOGO = `
█▀█ █░█ █ █░░ █░░
▀▀█ █▄█ █ █▄▄ █▄▄`

// Options configures a REPL session
type Options struct {
	Prompt       string
	Continuation string
	HistoryFile  string // empty disables history
	Version      string
}

// prompter is the part of liner.State the session loop uses
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// Start starts the REPL with line editing, history, and tab completion
func Start(out io.Writer, opts Options) error {
	line := liner.NewLiner()
	defer line.Close()

	// Enable Ctrl+C to abort current line
	line.SetCtrlCAborts(true)

	if opts.HistoryFile != "" {
		if f, err := os.Open(opts.HistoryFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}

		defer func() {
			if f, err := os.Create(opts.HistoryFile); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
		}()
	}

	s := newSession(line, out, opts)
	line.SetWordCompleter(func(text string, pos int) (string, []string, string) {
		return completeWord(text, pos, s.completionWords())
	})

	fmt.Fprintf(out, "%s\n", QUILL_LOGO)
	if opts.Version != "" {
		fmt.Fprintln(out, "v", opts.Version)
	}
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Type ':quit' or Ctrl+D to quit")
	fmt.Fprintln(out, "Use Tab for completion, ↑↓ for history")
	fmt.Fprintln(out, "Type ':help' for REPL commands")
	fmt.Fprintln(out, "")

	s.run()
	return nil
}

// session holds the state of one REPL run
type session struct {
	line   prompter
	out    *trackingWriter
	interp *quill.Interpreter
	opts   Options

	// newContext returns the context for one evaluation
	newContext func() (context.Context, context.CancelFunc)
}

func newSession(line prompter, out io.Writer, opts Options) *session {
	if opts.Prompt == "" {
		opts.Prompt = PROMPT
	}
	if opts.Continuation == "" {
		opts.Continuation = CONTINUATION_PROMPT
	}

	tw := &trackingWriter{w: out, atLineStart: true}
	s := &session{
		line: line,
		out:  tw,
		opts: opts,
		newContext: func() (context.Context, context.CancelFunc) {
			// Ctrl+C while a program runs interrupts it instead of the REPL
			return signal.NotifyContext(context.Background(), os.Interrupt)
		},
	}
	s.interp = quill.New(quill.Options{
		Filename: "<repl>",
		Logger:   quill.WriterLogger(tw),
		Input:    &promptReader{line: line},
	})
	return s
}

// run reads and evaluates input until :quit or end of input
func (s *session) run() {
	var inputBuffer strings.Builder

	for {
		s.out.endLine()

		currentPrompt := s.opts.Prompt
		if inputBuffer.Len() > 0 {
			currentPrompt = s.opts.Continuation
		}
		input, err := s.line.Prompt(currentPrompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				// Ctrl+C - clear any buffered input and return to main prompt
				if inputBuffer.Len() > 0 {
					fmt.Fprintln(s.out, "^C (cleared)")
				} else {
					fmt.Fprintln(s.out, "^C")
				}
				inputBuffer.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(s.out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(s.out, "Error reading input: %v\n", err)
			return
		}

		trimmed := strings.TrimSpace(input)

		// Handle REPL commands (start with :)
		if inputBuffer.Len() == 0 && strings.HasPrefix(trimmed, ":") {
			if quit := s.handleCommand(trimmed); quit {
				fmt.Fprintln(s.out, "Goodbye!")
				return
			}
			continue
		}

		// Skip empty lines when no input buffered
		if inputBuffer.Len() == 0 && trimmed == "" {
			continue
		}

		if inputBuffer.Len() > 0 {
			inputBuffer.WriteString("\n")
		}
		inputBuffer.WriteString(input)

		fullInput := inputBuffer.String()
		if needsMoreInput(fullInput) {
			continue
		}

		s.line.AppendHistory(fullInput)
		s.eval(fullInput)
		inputBuffer.Reset()
	}
}

// eval runs one complete input and echoes its value
func (s *session) eval(src string) {
	ctx, cancel := s.newContext()
	defer cancel()

	value, err := s.interp.Eval(ctx, src)
	s.out.endLine()
	if err != nil {
		quill.PrintError(s.out, err, src)
		return
	}
	if value != nil && value.Type() != evaluator.NIL_OBJ {
		fmt.Fprintln(s.out, evaluator.ToString(value))
	}
}

// handleCommand handles REPL meta-commands that start with ':'.
// It reports whether the REPL should exit.
func (s *session) handleCommand(cmd string) bool {
	name, arg, _ := strings.Cut(cmd, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case ":help", ":h", ":?":
		if arg != "" {
			s.describe(arg)
			return false
		}
		fmt.Fprintln(s.out, "REPL Commands:")
		fmt.Fprintln(s.out, "  :help, :h, :?    Show this help")
		fmt.Fprintln(s.out, "  :help <topic>    Describe a builtin, type, keyword or operators")
		fmt.Fprintln(s.out, "  :env             Show variables in scope")
		fmt.Fprintln(s.out, "  :clear           Clear all user variables")
		fmt.Fprintln(s.out, "  :quit, :q        Exit the REPL")
		return false

	case ":env":
		printEnvironment(s.interp.Env(), s.out)
		return false

	case ":clear":
		s.interp.Reset()
		fmt.Fprintln(s.out, "Environment cleared")
		return false

	case ":quit", ":q", ":exit":
		return true

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type :help for commands)\n", cmd)
		return false
	}
}

func (s *session) describe(topic string) {
	result, err := help.DescribeTopic(topic)
	if err != nil {
		fmt.Fprintf(s.out, "%v\n", err)
		return
	}
	io.WriteString(s.out, help.FormatText(result, 80))
}

func (s *session) completionWords() []string {
	seen := make(map[string]bool)
	var words []string
	for _, w := range append(lexer.Keywords(), s.interp.Names()...) {
		if !seen[w] {
			seen[w] = true
			words = append(words, w)
		}
	}
	sort.Strings(words)
	return words
}

// printEnvironment displays all user-defined variables in the environment
func printEnvironment(env *evaluator.Environment, out io.Writer) {
	vars := make(map[string]evaluator.Object)
	for name, obj := range env.Locals() {
		if _, builtin := obj.(*evaluator.Builtin); builtin {
			continue
		}
		vars[name] = obj
	}
	if len(vars) == 0 {
		fmt.Fprintln(out, "(no user variables)")
		return
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		obj := vars[name]
		value := evaluator.ToString(obj)

		// Truncate long values
		if len(value) > 60 {
			value = value[:57] + "..."
		}

		fmt.Fprintf(out, "  %s: %s = %s\n", name, evaluator.TypeName(obj), value)
	}
}

// completeWord completes the identifier that ends at pos
func completeWord(line string, pos int, words []string) (head string, completions []string, tail string) {
	if pos > len(line) {
		pos = len(line)
	}
	start := pos
	for start > 0 && isIdentChar(line[start-1]) {
		start--
	}
	prefix := line[start:pos]
	if prefix == "" {
		return line[:pos], nil, line[pos:]
	}

	for _, word := range words {
		if strings.HasPrefix(word, prefix) {
			completions = append(completions, word)
		}
	}
	return line[:start], completions, line[pos:]
}

func isIdentChar(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

// needsMoreInput reports whether input has an unclosed block, bracket or
// parenthesis
func needsMoreInput(input string) bool {
	l := lexer.New(input)

	blocks, brackets, parens := 0, 0, 0
	afterEnd := false
	for {
		tok := l.NextToken()
		if tok.Type == lexer.EOF || tok.Type == lexer.ILLEGAL {
			break
		}

		switch tok.Type {
		case lexer.IF, lexer.WHILE, lexer.FOR, lexer.FUNCTION:
			// "end if" closes rather than opens
			if !afterEnd {
				blocks++
			}
		case lexer.END:
			blocks--
		case lexer.LBRACKET:
			brackets++
		case lexer.RBRACKET:
			brackets--
		case lexer.LPAREN:
			parens++
		case lexer.RPAREN:
			parens--
		}
		afterEnd = tok.Type == lexer.END
	}

	return blocks > 0 || brackets > 0 || parens > 0
}

// trackingWriter remembers whether the last byte written was a newline so
// the prompt never follows print() output on the same line
type trackingWriter struct {
	w           io.Writer
	atLineStart bool
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	if len(p) > 0 {
		t.atLineStart = p[len(p)-1] == '\n'
	}
	return t.w.Write(p)
}

func (t *trackingWriter) endLine() {
	if !t.atLineStart {
		t.Write([]byte("\n"))
	}
}

// promptReader feeds read() from the line editor
type promptReader struct {
	line prompter
	buf  []byte
}

func (r *promptReader) Read(p []byte) (int, error) {
	if len(r.buf) == 0 {
		text, err := r.line.Prompt("")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return 0, io.EOF
			}
			return 0, err
		}
		r.buf = []byte(text + "\n")
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}
