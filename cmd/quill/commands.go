package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/araddon/dateparse"
	"github.com/goodsign/monday"
	"github.com/sambeau/quill/config"
	"github.com/sambeau/quill/pkg/quill/help"
	"github.com/sambeau/quill/pkg/quill/runlog"
)

// runDescribeCommand implements 'quill describe <topic>'
func runDescribeCommand(args []string, stdout, stderr io.Writer) error {
	jsonOutput := false
	var topic string

	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		} else if !strings.HasPrefix(arg, "-") {
			topic = arg
		}
	}

	if topic == "" {
		fmt.Fprintln(stderr, `Usage: quill describe [--json] <topic>

Topics:
  builtins           List all builtin functions by category
  operators          List all operators
  types              List all value types
  keywords           List all reserved words
  <builtin>          Help for a specific builtin (print, split, range, ...)
  <type>             Help for a specific type (number, string, list, ...)
  <keyword>          Help for a specific keyword (if, while, function, ...)

Examples:
  quill describe builtins
  quill describe split
  quill describe --json range`)
		return errors.New("describe: no topic given")
	}

	result, err := help.DescribeTopic(topic)
	if err != nil {
		return err
	}

	if jsonOutput {
		data, err := help.FormatJSON(result)
		if err != nil {
			return fmt.Errorf("formatting JSON: %w", err)
		}
		fmt.Fprintln(stdout, string(data))
		return nil
	}

	fmt.Fprint(stdout, help.FormatText(result, 80))
	return nil
}

// runDocCommand implements 'quill doc', printing the whole reference
func runDocCommand(args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("quill doc", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		htmlOutput = flags.Bool("html", false, "Render the reference as an HTML page")
		jsonOutput = flags.Bool("json", false, "Emit every topic as JSON")
		outPath    = flags.String("o", "", "Write to a file instead of stdout")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *htmlOutput && *jsonOutput {
		return errors.New("doc: --html and --json cannot be combined")
	}

	var doc string
	switch {
	case *htmlOutput:
		page, err := help.ReferenceHTML()
		if err != nil {
			return err
		}
		doc = page

	case *jsonOutput:
		var results []*help.TopicResult
		for _, topic := range []string{"types", "operators", "keywords", "builtins"} {
			result, err := help.DescribeTopic(topic)
			if err != nil {
				return err
			}
			results = append(results, result)
		}
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("formatting JSON: %w", err)
		}
		doc = string(data) + "\n"

	default:
		doc = help.Reference()
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(doc), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", *outPath, err)
		}
		fmt.Fprintf(stdout, "Wrote %s\n", *outPath)
		return nil
	}

	_, err := io.WriteString(stdout, doc)
	return err
}

// runHistoryCommand implements 'quill history', listing recorded runs
func runHistoryCommand(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	flags := flag.NewFlagSet("quill history", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		configPath = flags.String("config", "", "Path to config file")
		since      = flags.String("since", "", "Only runs after this date or duration ago (e.g. 2026-01-02, 3h)")
		limit      = flags.Int("limit", 20, "Maximum number of runs (0 = all)")
		showOutput = flags.Bool("output", false, "Show each run's recorded output")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, _, err := config.LoadWithPath(*configPath, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if !cfg.History.Enabled {
		return errors.New("run history is disabled (set history.enabled: true in quill.yaml)")
	}

	filter := runlog.Filter{Limit: *limit}
	if *since != "" {
		t, err := parseSince(*since, time.Now())
		if err != nil {
			return err
		}
		filter.Since = t
	}

	store, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(ctx, filter)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "(no runs)")
		return nil
	}

	locale := monday.Locale(cfg.History.Locale)
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tDURATION\tFILE\tDIGEST")
	for _, run := range runs {
		status := "ok"
		if !run.OK {
			status = "FAIL"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			run.ID,
			monday.Format(run.StartedAt, "Mon 2 Jan 2006 15:04:05", locale),
			status,
			run.Duration.Round(time.Microsecond),
			run.File,
			shortDigest(run.Digest),
		)
		if run.Error != "" {
			fmt.Fprintf(tw, "\t\t\t\t  %s\t\n", run.Error)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if *showOutput {
		for _, run := range runs {
			fmt.Fprintf(stdout, "\n--- run %d ---\n%s", run.ID, run.Output)
			if len(run.Output) > 0 && run.Output[len(run.Output)-1] != '\n' {
				fmt.Fprintln(stdout)
			}
		}
	}
	return nil
}

// parseSince accepts a duration ("90m", meaning that long before now) or
// any date format dateparse understands
func parseSince(s string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(-d), nil
	}
	t, err := dateparse.ParseLocal(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: %w", s, err)
	}
	return t, nil
}

func openHistory(ctx context.Context, cfg *config.Config) (*runlog.Store, error) {
	return runlog.Open(ctx, runlog.Config{
		Driver:     cfg.History.Driver,
		DSN:        cfg.History.DSN,
		MaxEntries: cfg.History.MaxEntries,
	})
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
