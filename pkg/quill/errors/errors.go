// Package errors provides structured error types for the Quill language.
//
// QuillError represents lexer, parser and runtime failures with enough
// metadata (class, code, position, hints) for terminal display, JSON output
// and programmatic handling by embedders.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassLex       ErrorClass = "lex"       // Scanner errors
	ClassParse     ErrorClass = "parse"     // Syntax errors
	ClassType      ErrorClass = "type"      // Operand kind mismatches
	ClassArity     ErrorClass = "arity"     // Wrong argument count
	ClassUndefined ErrorClass = "undefined" // Unbound names
	ClassIndex     ErrorClass = "index"     // Out of bounds
	ClassOperator  ErrorClass = "operator"  // Invalid arithmetic (division by zero)
	ClassControl   ErrorClass = "control"   // Stray break/continue/return
	ClassIO        ErrorClass = "io"        // Reading input
)

// QuillError represents any error from scanning, parsing or evaluation.
type QuillError struct {
	Class   ErrorClass     `json:"class"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hints   []string       `json:"hints,omitempty"`
	Line    int            `json:"line"`   // 1-based line (0 if unknown)
	Column  int            `json:"column"` // 1-based column (0 if unknown)
	File    string         `json:"file,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *QuillError) Error() string {
	return e.String()
}

// String returns the error with its location prefix and hints.
func (e *QuillError) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *QuillError) PrettyString() string {
	var sb strings.Builder

	switch e.Class {
	case ClassLex, ClassParse:
		sb.WriteString("Syntax error")
	default:
		sb.WriteString("Runtime error")
	}

	if e.File != "" {
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  at: line %d, column %d", e.Line, e.Column))
		}
		sb.WriteString("\n  ")
	} else if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(": line %d, column %d\n  ", e.Line, e.Column))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *QuillError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithFile returns a copy of the error with the file path set.
func (e *QuillError) WithFile(file string) *QuillError {
	copy := *e
	copy.File = file
	return &copy
}

// WithPosition returns a copy of the error with line and column set.
func (e *QuillError) WithPosition(line, column int) *QuillError {
	copy := *e
	copy.Line = line
	copy.Column = column
	return &copy
}

// IsSyntaxError reports whether the error was raised before evaluation.
func (e *QuillError) IsSyntaxError() bool {
	return e.Class == ClassParse || e.Class == ClassLex
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass
	Template string   // Message template with {{.placeholders}}
	Hints    []string // Hint templates (may use {{.placeholders}})
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// ========================================
	// Lexer errors (LEX-0xxx)
	// ========================================
	"LEX-0001": {
		Class:    ClassLex,
		Template: "unknown character '{{.Char}}'",
	},
	"LEX-0002": {
		Class:    ClassLex,
		Template: "unclosed string",
		Hints:    []string{"Strings end with a double quote: \"text\""},
	},
	"LEX-0003": {
		Class:    ClassLex,
		Template: "malformed number literal: expected digits after exponent",
	},

	// ========================================
	// Parse errors (PARSE-0xxx)
	// ========================================
	"PARSE-0001": {
		Class:    ClassParse,
		Template: "expected {{.Expected}}, got '{{.Got}}'",
	},
	"PARSE-0002": {
		Class:    ClassParse,
		Template: "unexpected token '{{.Token}}' when expecting an expression",
	},
	"PARSE-0003": {
		Class:    ClassParse,
		Template: "expected expression after '{{.Operator}}' on the same line",
	},
	"PARSE-0004": {
		Class:    ClassParse,
		Template: "left side of assignment must be a variable",
	},
	"PARSE-0005": {
		Class:    ClassParse,
		Template: "operand of {{.Operator}} must be a variable",
	},
	"PARSE-0006": {
		Class:    ClassParse,
		Template: "expected 'end {{.Keyword}}' to close block",
		Hints:    []string{"{{.Keyword}} ... end {{.Keyword}}"},
	},
	"PARSE-0007": {
		Class:    ClassParse,
		Template: "expected '{{.Keyword}}' after 'end', got '{{.Got}}'",
	},

	// ========================================
	// Type errors (TYPE-0xxx)
	// ========================================
	"TYPE-0001": {
		Class:    ClassType,
		Template: "expected a number or bool but got '{{.Got}}'",
	},
	"TYPE-0002": {
		Class:    ClassType,
		Template: "{{.Operator}} only applies to bool",
	},
	"TYPE-0003": {
		Class:    ClassType,
		Template: "attempt to call a non-function value",
	},
	"TYPE-0004": {
		Class:    ClassType,
		Template: "can't compare '{{.Left}}' and '{{.Right}}'",
	},
	"TYPE-0005": {
		Class:    ClassType,
		Template: "type '{{.Got}}' is not subscriptable",
	},
	"TYPE-0006": {
		Class:    ClassType,
		Template: "type '{{.Got}}' is not sliceable",
	},
	"TYPE-0007": {
		Class:    ClassType,
		Template: "for loop expects a list but got '{{.Got}}'",
		Hints:    []string{"for x in range(len(s)) ... end for"},
	},
	"TYPE-0008": {
		Class:    ClassType,
		Template: "index must be a number, got '{{.Got}}'",
	},
	"TYPE-0009": {
		Class:    ClassType,
		Template: "unsupported operand types for {{.Operator}}: '{{.Left}}' and '{{.Right}}'",
	},
	"TYPE-0010": {
		Class:    ClassType,
		Template: "a function cannot be used as a condition",
	},
	"TYPE-0011": {
		Class:    ClassType,
		Template: "{{.Function}}: expected {{.Expected}}, got '{{.Got}}'",
	},

	// ========================================
	// Arity errors (ARITY-0xxx)
	// ========================================
	"ARITY-0001": {
		Class:    ClassArity,
		Template: "Function '{{.Function}}' expects {{.Expected}} arguments, got {{.Got}}",
	},
	"ARITY-0002": {
		Class:    ClassArity,
		Template: "{{.Function}}: expected {{.Expected}} arguments, got {{.Got}}",
	},

	// ========================================
	// Undefined errors (UNDEF-0xxx)
	// ========================================
	"UNDEF-0001": {
		Class:    ClassUndefined,
		Template: "undefined variable '{{.Name}}'",
	},

	// ========================================
	// Index errors (INDEX-0xxx)
	// ========================================
	"INDEX-0001": {
		Class:    ClassIndex,
		Template: "index {{.Index}} out of range [0,{{.Length}})",
	},
	"INDEX-0002": {
		Class:    ClassIndex,
		Template: "{{.Function}}: index out of range",
	},
	"INDEX-0003": {
		Class:    ClassIndex,
		Template: "{{.Function}}: list is empty",
	},

	// ========================================
	// Operator errors (OP-0xxx)
	// ========================================
	"OP-0001": {
		Class:    ClassOperator,
		Template: "division by zero",
	},
	"OP-0002": {
		Class:    ClassOperator,
		Template: "{{.Function}}: {{.Reason}}",
	},

	// ========================================
	// Control flow errors (LOOP-0xxx)
	// ========================================
	"LOOP-0001": {
		Class:    ClassControl,
		Template: "'{{.Keyword}}' outside of a loop",
	},
	"LOOP-0002": {
		Class:    ClassControl,
		Template: "'return' outside of a function",
	},
	"LOOP-0003": {
		Class:    ClassControl,
		Template: "execution cancelled: {{.Reason}}",
	},

	// ========================================
	// IO errors (IO-0xxx)
	// ========================================
	"IO-0001": {
		Class:    ClassIO,
		Template: "{{.Function}}: {{.Reason}}",
	},
}

// New creates a QuillError from the catalog.
// If the code is not found, creates a generic error with the message.
func New(code string, data map[string]any) *QuillError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &QuillError{
			Class:   ClassType,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &QuillError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewWithPosition creates a QuillError with position information.
func NewWithPosition(code string, line, column int, data map[string]any) *QuillError {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

// NewSimple creates an error without using the catalog.
func NewSimple(class ErrorClass, message string) *QuillError {
	return &QuillError{
		Class:   class,
		Message: message,
	}
}

func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// ============================================================================
// Fuzzy Matching - "Did you mean?" suggestions
// ============================================================================

func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// matchThreshold scales the allowed edit distance with the input length:
// one edit up to 3 characters, two up to 6, three beyond.
func matchThreshold(input string) int {
	switch {
	case len(input) >= 7:
		return 3
	case len(input) >= 4:
		return 2
	default:
		return 1
	}
}

// FindClosestMatch returns the candidate closest to input, or "" when no
// candidate is within the length-scaled edit distance threshold.
func FindClosestMatch(input string, candidates []string) string {
	matches := FindTopMatches(input, candidates, 1)
	if len(matches) == 0 {
		return ""
	}
	return matches[0]
}

// FindTopMatches returns up to n candidates within the threshold, closest
// first. Ties are broken alphabetically so results are deterministic.
func FindTopMatches(input string, candidates []string, n int) []string {
	if len(input) == 0 || len(candidates) == 0 || n <= 0 {
		return nil
	}

	type fuzzyMatch struct {
		value    string
		distance int
	}

	inputLower := strings.ToLower(input)
	threshold := matchThreshold(input)

	var matches []fuzzyMatch
	for _, candidate := range candidates {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if dist > 0 && dist <= threshold {
			matches = append(matches, fuzzyMatch{value: candidate, distance: dist})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].value < matches[j].value
	})

	var result []string
	for i := 0; i < len(matches) && i < n; i++ {
		result = append(result, matches[i].value)
	}
	return result
}

// NewUndefinedVariable creates an undefined variable error with a
// "did you mean" hint drawn from the names visible at the failure point.
func NewUndefinedVariable(name string, visible []string) *QuillError {
	err := New("UNDEF-0001", map[string]any{"Name": name})

	if suggestion := FindClosestMatch(name, visible); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+suggestion+"`?")
	}

	return err
}

// Keywords lists the reserved words, for fuzzy matching against typos.
var Keywords = []string{
	"if", "then", "else", "end", "while", "for", "in", "break", "continue",
	"function", "return", "and", "or", "not", "nil", "true", "false",
}
