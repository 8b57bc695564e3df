package quill

import (
	"fmt"
	"io"
	"strings"

	perrors "github.com/sambeau/quill/pkg/quill/errors"
)

// PrintError writes err with the offending source line and a caret under
// the column, when the position is known.
func PrintError(w io.Writer, err error, source string) {
	qerr, ok := AsQuillError(err)
	if !ok {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}

	fmt.Fprintln(w, qerr.PrettyString())
	printSourceContext(w, strings.Split(source, "\n"), qerr)
}

// printSourceContext prints the source line and error pointer
func printSourceContext(w io.Writer, lines []string, err *perrors.QuillError) {
	if err.Line <= 0 || err.Line > len(lines) {
		return
	}

	sourceLine := lines[err.Line-1]

	// Calculate how many columns to trim from the left
	trimCount := 0
	for i := 0; i < len(sourceLine); i++ {
		if sourceLine[i] == ' ' {
			trimCount++
		} else if sourceLine[i] == '\t' {
			trimCount += 8
		} else {
			break
		}
	}

	fmt.Fprintf(w, "    %s\n", strings.TrimLeft(sourceLine, " \t"))

	if err.Column > 0 {
		// Tabs count as 8 columns up to the error position
		visualCol := 0
		for i := 0; i < err.Column-1 && i < len(sourceLine); i++ {
			if sourceLine[i] == '\t' {
				visualCol += 8
			} else {
				visualCol++
			}
		}

		adjustedCol := max(visualCol-trimCount, 0)
		fmt.Fprintf(w, "    %s^\n", strings.Repeat(" ", adjustedCol))
	}
}
