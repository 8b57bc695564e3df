package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sambeau/quill/pkg/quill/loader"
)

func noEnv(string) string { return "" }

// runQuill runs the CLI with an empty HOME so no user config is picked up
func runQuill(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := run(context.Background(), args, strings.NewReader(stdin), stdout, stderr, noEnv)
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestRunVersion(t *testing.T) {
	stdout, _, err := runQuill(t, "", "--version")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "quill version") {
		t.Errorf("expected version output, got %q", stdout)
	}
}

func TestRunHelp(t *testing.T) {
	for _, flag := range []string{"--help", "-h"} {
		stdout, _, err := runQuill(t, "", flag)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", flag, err)
		}
		if !strings.Contains(stdout, "quill - Quill language interpreter") {
			t.Errorf("%s: expected help output, got %q", flag, stdout)
		}
		if !strings.Contains(stdout, "--watch") {
			t.Errorf("%s: expected --watch in help", flag)
		}
	}
}

func TestRunInvalidFlag(t *testing.T) {
	_, stderr, err := runQuill(t, "", "--invalid-flag")
	if err == nil {
		t.Error("expected error for invalid flag")
	}
	if !strings.Contains(stderr, "Usage:") {
		t.Errorf("expected usage on stderr, got %q", stderr)
	}
}

func TestRunEval(t *testing.T) {
	tests := []struct {
		code   string
		stdout string
	}{
		{"1 + 2", "3\n"},
		{`"a" * 3`, "aaa\n"},
		{"[1, 2] + [3]", "[1, 2, 3]\n"},
		{`print("no echo for nil")`, "no echo for nil"},
		{`println("x")` + "\n" + `"y"`, "x\ny\n"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			stdout, stderr, err := runQuill(t, "", "-e", tt.code)
			if err != nil {
				t.Fatalf("unexpected error: %v (stderr %q)", err, stderr)
			}
			if stdout != tt.stdout {
				t.Errorf("stdout = %q, want %q", stdout, tt.stdout)
			}
		})
	}
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hello.ql", "function greet(name)\n  return \"hello \" + name\nend function\nprintln(greet(\"world\"))\n")

	stdout, _, err := runQuill(t, "", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "hello world\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestRunCompressedFile(t *testing.T) {
	dir := t.TempDir()
	data, err := loader.Encode([]byte(`println(len("abc"))`), loader.Zstd)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "packed.ql.zst")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := runQuill(t, "", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "3\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestRunStdinScript(t *testing.T) {
	stdout, _, err := runQuill(t, `println(6 * 7)`, "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "42\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestRunReadsStdin(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "echo.ql", "line = read()\nwhile line != nil\n  println(upper(line))\n  line = read()\nend while\n")

	stdout, _, err := runQuill(t, "one\ntwo\n", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "ONE\nTWO\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestRunRuntimeError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.ql", "println(\"before\")\nprintln(missing)\n")

	stdout, stderr, err := runQuill(t, "", path)
	if !errors.Is(err, errScriptFailed) {
		t.Fatalf("expected errScriptFailed, got %v", err)
	}
	if stdout != "before\n" {
		t.Errorf("output before the error was lost: %q", stdout)
	}
	for _, want := range []string{"Runtime error", "bad.ql", "line 2, column 9", "undefined variable 'missing'", "println(missing)"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestRunMissingFile(t *testing.T) {
	_, _, err := runQuill(t, "", filepath.Join(t.TempDir(), "nope.ql"))
	if err == nil || errors.Is(err, errScriptFailed) {
		t.Errorf("expected a load error, got %v", err)
	}
}

func TestRunTimeoutFlag(t *testing.T) {
	_, stderr, err := runQuill(t, "", "--timeout", "50ms", "-e", "while true end while")
	if !errors.Is(err, errScriptFailed) {
		t.Fatalf("expected errScriptFailed, got %v", err)
	}
	if !strings.Contains(stderr, "time limit exceeded") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRunCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.ql", "x = 1\nprint(x)\n")
	bad := writeFile(t, dir, "bad.ql", "if x then\n")

	stdout, _, err := runQuill(t, "", "--check", good)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "good.ql: OK") {
		t.Errorf("stdout = %q", stdout)
	}

	_, stderr, err := runQuill(t, "", "--check", good, bad)
	if !errors.Is(err, errScriptFailed) {
		t.Errorf("expected errScriptFailed, got %v", err)
	}
	if !strings.Contains(stderr, "Syntax error") {
		t.Errorf("stderr = %q", stderr)
	}

	if _, _, err := runQuill(t, "", "--check"); err == nil {
		t.Error("expected error when --check has no files")
	}
}

func TestRunTooManyArguments(t *testing.T) {
	_, _, err := runQuill(t, "", "a.ql", "b.ql")
	if err == nil || !strings.Contains(err.Error(), "too many arguments") {
		t.Errorf("expected too many arguments error, got %v", err)
	}
}

func TestWatchRejectsExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "print(1)")

	_, _, err := runQuill(t, "", "--watch", path)
	if err == nil || !strings.Contains(err.Error(), "watched extension") {
		t.Errorf("expected extension error, got %v", err)
	}
}

func TestDescribeCommand(t *testing.T) {
	stdout, _, err := runQuill(t, "", "describe", "split")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "split(s, [sep])") {
		t.Errorf("stdout = %q", stdout)
	}

	stdout, _, err = runQuill(t, "", "describe", "--json", "split")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, `"kind": "builtin"`) {
		t.Errorf("stdout = %q", stdout)
	}

	if _, _, err := runQuill(t, "", "describe", "splt"); err == nil || !strings.Contains(err.Error(), "Did you mean: split") {
		t.Errorf("expected suggestion, got %v", err)
	}

	if _, stderr, err := runQuill(t, "", "describe"); err == nil || !strings.Contains(stderr, "Usage: quill describe") {
		t.Errorf("expected usage error, got %v", err)
	}
}

func TestDocCommand(t *testing.T) {
	stdout, _, err := runQuill(t, "", "doc")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout, "# Quill language reference") {
		t.Errorf("unexpected markdown output: %.60q", stdout)
	}

	out := filepath.Join(t.TempDir(), "ref.html")
	if _, _, err := runQuill(t, "", "doc", "--html", "-o", out); err != nil {
		t.Fatal(err)
	}
	page, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(page), "<!DOCTYPE html>") {
		t.Errorf("not an HTML page: %.60q", page)
	}

	stdout, _, err = runQuill(t, "", "doc", "--json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, `"kind": "builtin-list"`) {
		t.Errorf("unexpected JSON output: %.60q", stdout)
	}

	if _, _, err := runQuill(t, "", "doc", "--html", "--json"); err == nil {
		t.Error("expected error for --html with --json")
	}
}

func TestHistory(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "quill.yaml", `
history:
  enabled: true
  dsn: history.db
  max_entries: 10
  locale: fr_FR
`)
	okScript := writeFile(t, dir, "ok.ql", `println("fine")`)
	badScript := writeFile(t, dir, "bad.ql", `println(nope)`)

	if _, _, err := runQuill(t, "", "--config", configPath, okScript); err != nil {
		t.Fatalf("ok.ql failed: %v", err)
	}
	if _, _, err := runQuill(t, "", "--config", configPath, badScript); !errors.Is(err, errScriptFailed) {
		t.Fatalf("bad.ql: expected errScriptFailed, got %v", err)
	}

	stdout, stderr, err := runQuill(t, "", "history", "--config", configPath, "--output")
	if err != nil {
		t.Fatalf("history failed: %v (stderr %q)", err, stderr)
	}
	for _, want := range []string{"ok.ql", "bad.ql", "ok", "FAIL", "undefined variable 'nope'", "fine\n"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("history output missing %q:\n%s", want, stdout)
		}
	}
	// Newest first
	if strings.Index(stdout, "bad.ql") > strings.Index(stdout, "ok.ql") {
		t.Errorf("runs not listed newest first:\n%s", stdout)
	}

	stdout, _, err = runQuill(t, "", "history", "--config", configPath, "--limit", "1")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(stdout, "ok.ql") {
		t.Errorf("--limit 1 listed the older run:\n%s", stdout)
	}

	stdout, _, err = runQuill(t, "", "history", "--config", configPath, "--since", "2999-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "(no runs)") {
		t.Errorf("expected no runs, got:\n%s", stdout)
	}
}

func TestHistoryDisabled(t *testing.T) {
	_, _, err := runQuill(t, "", "history")
	if err == nil || !strings.Contains(err.Error(), "disabled") {
		t.Errorf("expected disabled error, got %v", err)
	}
}

func TestParseSince(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.Local)

	got, err := parseSince("90m", now)
	if err != nil {
		t.Fatal(err)
	}
	if want := now.Add(-90 * time.Minute); !got.Equal(want) {
		t.Errorf("parseSince(90m) = %s, want %s", got, want)
	}

	got, err = parseSince("2026-01-02", now)
	if err != nil {
		t.Fatal(err)
	}
	if got.Year() != 2026 || got.Month() != time.January || got.Day() != 2 {
		t.Errorf("parseSince(2026-01-02) = %s", got)
	}

	if _, err := parseSince("not a date", now); err == nil {
		t.Error("expected error for garbage")
	}
}

func TestOutputRecorder(t *testing.T) {
	rec := &outputRecorder{limit: 5}
	rec.Write([]byte("abc"))
	n, err := rec.Write([]byte("defgh"))
	if err != nil || n != 5 {
		t.Errorf("Write = (%d, %v)", n, err)
	}
	if string(rec.Bytes()) != "abcde" {
		t.Errorf("recorded %q", rec.Bytes())
	}
}
