package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sambeau/quill/config"
	"github.com/sambeau/quill/pkg/quill/evaluator"
	"github.com/sambeau/quill/pkg/quill/loader"
	"github.com/sambeau/quill/pkg/quill/quill"
	"github.com/sambeau/quill/pkg/quill/repl"
	"github.com/sambeau/quill/pkg/quill/runlog"
	"github.com/sambeau/quill/pkg/quill/watch"
)

// Version information, set at build time via -ldflags
var (
	Version = "dev"     // -X main.Version=$(git describe --tags --always)
	Commit  = "unknown" // -X main.Commit=$(git rev-parse --short HEAD)
)

// errScriptFailed is returned after a script error has already been reported
var errScriptFailed = errors.New("script failed")

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv); err != nil {
		if !errors.Is(err, errScriptFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// run is the main entry point, designed for testability (Mat Ryer pattern)
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) error {
	// Check for subcommands first (before flag parsing)
	if len(args) > 0 {
		switch args[0] {
		case "describe":
			return runDescribeCommand(args[1:], stdout, stderr)
		case "doc":
			return runDocCommand(args[1:], stdout, stderr)
		case "history":
			return runHistoryCommand(ctx, args[1:], stdout, stderr, getenv)
		}
	}

	flags := flag.NewFlagSet("quill", flag.ContinueOnError)
	flags.SetOutput(io.Discard) // Suppress default -h output

	var (
		configPath  = flags.String("config", "", "Path to config file")
		checkMode   = flags.Bool("check", false, "Check syntax without executing")
		watchMode   = flags.Bool("watch", false, "Re-run the file whenever it changes")
		timeout     = flags.Duration("timeout", 0, "Stop scripts that run longer than this")
		evalCode    = flags.String("eval", "", "Evaluate code string")
		showVersion = flags.Bool("version", false, "Show version")
		showHelp    = flags.Bool("help", false, "Show help")
	)
	flags.StringVar(evalCode, "e", "", "Alias for --eval")
	flags.BoolVar(showVersion, "V", false, "Alias for --version")
	flags.BoolVar(showHelp, "h", false, "Alias for --help")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(stdout)
			return nil
		}
		printUsage(stderr)
		return err
	}

	if *showHelp {
		printUsage(stdout)
		return nil
	}

	if *showVersion {
		fmt.Fprintf(stdout, "quill version %s (%s)\n", Version, Commit)
		return nil
	}

	cfg, _, err := config.LoadWithPath(*configPath, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *timeout != 0 {
		cfg.Run.Timeout = *timeout
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	r := &runner{cfg: cfg, stdin: stdin, stdout: stdout, stderr: stderr}
	files := flags.Args()

	switch {
	case *evalCode != "":
		return r.runSource(ctx, *evalCode, "<eval>", true)

	case *checkMode:
		if len(files) == 0 {
			return errors.New("--check requires at least one file")
		}
		return r.checkFiles(files)

	case *watchMode:
		if len(files) != 1 {
			return errors.New("--watch requires exactly one file")
		}
		return r.watchFile(ctx, files[0])

	case len(files) > 1:
		return fmt.Errorf("too many arguments: %s", strings.Join(files[1:], " "))

	case len(files) == 1:
		return r.runFile(ctx, files[0])

	default:
		return repl.Start(stdout, repl.Options{
			Prompt:       cfg.REPL.Prompt,
			Continuation: cfg.REPL.Continuation,
			HistoryFile:  cfg.REPL.HistoryFile,
			Version:      Version,
		})
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `quill - Quill language interpreter version %s

Usage:
  quill [options] [file]
  quill -e "code"
  quill --check <file>...
  quill --watch <file>
  quill describe [--json] <topic>
  quill doc [--html | --json] [-o file]
  quill history [--since date] [--limit n]

Commands:
  describe <topic>      Show help for a builtin, type, keyword or operators
  doc                   Print the language reference
  history               List recorded runs (needs history.enabled)

Options:
  -h, --help            Show this help message
  -V, --version         Show version information
  -e, --eval <code>     Evaluate code string and print its value
  --check               Check syntax without executing (can specify multiple files)
  --watch               Re-run the file whenever it is saved
  --timeout <duration>  Stop scripts that run longer than this (e.g. 5s)
  --config <path>       Path to config file (default: quill.yaml)

Files ending in .gz or .zst are decompressed; "-" reads the script from stdin.

Examples:
  quill                       Start interactive REPL
  quill script.ql             Execute a Quill script
  quill -e "1 + 2"            Evaluate inline code (outputs: 3)
  quill --check *.ql          Check multiple files
  quill --watch script.ql     Re-run on save
  quill describe builtins     List all builtin functions
  quill history --since 2h    Runs from the last two hours
`, Version)
}

// runner executes scripts with the loaded configuration
type runner struct {
	cfg    *config.Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// runFile loads and executes one script file
func (r *runner) runFile(ctx context.Context, path string) error {
	src, name, err := loader.LoadFrom(path, r.stdin)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return r.runSource(ctx, src, name, false)
}

// runSource evaluates src, reporting errors to stderr. With echo set, a
// non-nil result is printed the way the REPL prints it.
func (r *runner) runSource(ctx context.Context, src, name string, echo bool) error {
	if r.cfg.Run.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Run.Timeout)
		defer cancel()
	}

	var input io.Reader
	if r.cfg.Run.Stdin && name != "<stdin>" {
		input = r.stdin
	}

	out := r.stdout
	var recorded *outputRecorder
	if r.cfg.History.Enabled {
		recorded = &outputRecorder{limit: runlog.MaxOutput}
		out = io.MultiWriter(r.stdout, recorded)
	}

	started := time.Now()
	result, err := quill.Run(ctx, src, quill.Options{
		Filename: name,
		Logger:   quill.WriterLogger(out),
		Input:    input,
	})
	elapsed := time.Since(started)

	if err == nil && echo && result.Value != nil && result.Value.Type() != evaluator.NIL_OBJ {
		fmt.Fprintln(out, evaluator.ToString(result.Value))
	}

	if recorded != nil {
		r.record(src, name, started, elapsed, err, recorded.Bytes())
	}

	if err != nil {
		quill.PrintError(r.stderr, err, src)
		return errScriptFailed
	}
	return nil
}

// record stores a finished run; failures are reported but never fatal
func (r *runner) record(src, name string, started time.Time, elapsed time.Duration, runErr error, output []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := openHistory(ctx, r.cfg)
	if err != nil {
		fmt.Fprintf(r.stderr, "warning: run history: %v\n", err)
		return
	}
	defer store.Close()

	run := runlog.Run{
		File:      displayPath(name),
		Digest:    runlog.Digest(src),
		StartedAt: started,
		Duration:  elapsed,
		OK:        runErr == nil,
		Output:    output,
	}
	if qerr, ok := quill.AsQuillError(runErr); ok {
		run.Error = qerr.Message
	} else if runErr != nil {
		run.Error = runErr.Error()
	}

	if _, err := store.Record(ctx, run); err != nil {
		fmt.Fprintf(r.stderr, "warning: run history: %v\n", err)
	}
}

// checkFiles parses each file and reports every syntax error
func (r *runner) checkFiles(files []string) error {
	hasErrors := false

	for _, path := range files {
		src, name, err := loader.LoadFrom(path, r.stdin)
		if err != nil {
			fmt.Fprintf(r.stderr, "Error: %v\n", err)
			hasErrors = true
			continue
		}

		if err := quill.Check(src, name); err != nil {
			quill.PrintError(r.stderr, err, src)
			hasErrors = true
			continue
		}
		fmt.Fprintf(r.stdout, "%s: OK\n", name)
	}

	if hasErrors {
		return errScriptFailed
	}
	return nil
}

// watchFile runs path now and again on every save until interrupted
func (r *runner) watchFile(ctx context.Context, path string) error {
	_, name := loader.Detect(path)
	if ext := filepath.Ext(name); !r.cfg.Watch.Extensions.Contains(ext) {
		return fmt.Errorf("--watch: %s does not have a watched extension (%s)", path, strings.Join(r.cfg.Watch.Extensions, ", "))
	}

	w, err := watch.New(path, r.cfg.Watch.Debounce, r.stderr)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return w.Run(ctx, func(runCtx context.Context) {
		src, name, err := loader.LoadFrom(path, r.stdin)
		if err != nil {
			fmt.Fprintf(r.stderr, "Error: %v\n", err)
			return
		}
		// Errors were already printed; keep watching
		_ = r.runSource(runCtx, src, name, false)
		fmt.Fprintln(r.stdout)
	})
}

// displayPath returns an absolute path for files and leaves pseudo names alone
func displayPath(name string) string {
	if strings.HasPrefix(name, "<") {
		return name
	}
	if abs, err := filepath.Abs(name); err == nil {
		return abs
	}
	return name
}

// outputRecorder keeps the first limit bytes written to it
type outputRecorder struct {
	limit int
	buf   []byte
}

func (o *outputRecorder) Write(p []byte) (int, error) {
	if room := o.limit - len(o.buf); room > 0 {
		if len(p) < room {
			room = len(p)
		}
		o.buf = append(o.buf, p[:room]...)
	}
	return len(p), nil
}

func (o *outputRecorder) Bytes() []byte {
	return o.buf
}
