package quill

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/sambeau/quill/pkg/quill/evaluator"
)

// Logger receives print() and println() output.
type Logger = evaluator.Logger

// WriterLogger sends program output to w. Values are written back to back,
// and LogLine ends the line.
func WriterLogger(w io.Writer) Logger {
	return &streamLogger{w: w}
}

// NullLogger discards program output.
func NullLogger() Logger {
	return &streamLogger{w: io.Discard}
}

type streamLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *streamLogger) Log(values ...any) {
	l.write(values, false)
}

func (l *streamLogger) LogLine(values ...any) {
	l.write(values, true)
}

func (l *streamLogger) write(values []any, newline bool) {
	var buf bytes.Buffer
	for _, v := range values {
		fmt.Fprint(&buf, v)
	}
	if newline {
		buf.WriteByte('\n')
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(buf.Bytes())
}

// BufferedLogger keeps program output in memory, for tests and embedders
// that inspect what a script printed.
type BufferedLogger struct {
	streamLogger
	out bytes.Buffer
}

// NewBufferedLogger returns an empty BufferedLogger.
func NewBufferedLogger() *BufferedLogger {
	l := &BufferedLogger{}
	l.w = &l.out
	return l
}

// String returns everything printed so far.
func (l *BufferedLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out.String()
}
