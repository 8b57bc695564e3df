package help

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sambeau/quill/pkg/quill/evaluator"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// FormatText formats a TopicResult for terminal output with the given width
func FormatText(result *TopicResult, width int) string {
	if width <= 0 {
		width = 80
	}

	var sb strings.Builder

	switch result.Kind {
	case "builtin":
		formatBuiltinText(&sb, result)
	case "type", "keyword":
		formatEntryText(&sb, result, width)
	case "builtin-list":
		formatBuiltinListText(&sb, result)
	case "operator-list":
		formatOperatorListText(&sb, result)
	case "type-list":
		formatTypeListText(&sb, result)
	case "keyword-list":
		formatKeywordListText(&sb, result)
	default:
		sb.WriteString(fmt.Sprintf("Unknown result kind: %s\n", result.Kind))
	}

	return sb.String()
}

// FormatJSON formats a TopicResult as JSON
func FormatJSON(result *TopicResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}

// formatBuiltinText formats a single builtin's help output
func formatBuiltinText(sb *strings.Builder, result *TopicResult) {
	fmt.Fprintf(sb, "%s(%s)\n", result.Name, strings.Join(result.Params, ", "))
	sb.WriteString("\n")

	fmt.Fprintf(sb, "%s\n", result.Description)
	sb.WriteString("\n")

	fmt.Fprintf(sb, "Arity: %s\n", result.Arity)
	fmt.Fprintf(sb, "Category: %s\n", result.Category)
}

// formatEntryText formats a type or keyword, wrapping the description
func formatEntryText(sb *strings.Builder, result *TopicResult, width int) {
	label := "Type"
	if result.Kind == "keyword" {
		label = "Keyword"
	}
	fmt.Fprintf(sb, "%s: %s\n", label, result.Name)

	if result.Description != "" {
		sb.WriteString("\n")
		for _, line := range wrap(result.Description, width) {
			fmt.Fprintf(sb, "%s\n", line)
		}
	}
	if result.Example != "" {
		fmt.Fprintf(sb, "\nExample:\n  %s\n", result.Example)
	}
}

// formatBuiltinListText formats the builtins list output
func formatBuiltinListText(sb *strings.Builder, result *TopicResult) {
	sb.WriteString("Builtin Functions\n")
	sb.WriteString("=================\n\n")

	byCategory := make(map[string][]evaluator.BuiltinInfo)
	for _, b := range result.Builtins {
		byCategory[b.Category] = append(byCategory[b.Category], b)
	}

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	categoryNames := map[string]string{
		"io":            "Input/Output",
		"math":          "Math",
		"strings":       "Strings",
		"lists":         "Lists",
		"introspection": "Introspection",
	}

	for _, cat := range categories {
		builtins := byCategory[cat]

		displayName := categoryNames[cat]
		if displayName == "" {
			displayName = strings.ToUpper(cat[:1]) + cat[1:]
		}
		fmt.Fprintf(sb, "%s:\n", displayName)

		// Find max signature length for alignment
		maxLen := 0
		for _, b := range builtins {
			if n := len(signature(b.Name, b.Params)); n > maxLen {
				maxLen = n
			}
		}

		sort.Slice(builtins, func(i, j int) bool {
			return builtins[i].Name < builtins[j].Name
		})

		for _, b := range builtins {
			display := signature(b.Name, b.Params)
			padding := strings.Repeat(" ", maxLen-len(display)+2)
			fmt.Fprintf(sb, "  %s%s%s\n", display, padding, b.Description)
		}
		sb.WriteString("\n")
	}
}

// formatOperatorListText formats the operators list output
func formatOperatorListText(sb *strings.Builder, result *TopicResult) {
	sb.WriteString("Operators\n")
	sb.WriteString("=========\n\n")

	byCategory := make(map[string][]OperatorInfo)
	for _, op := range result.Operators {
		byCategory[op.Category] = append(byCategory[op.Category], op)
	}

	for _, cat := range operatorCategories(result.Operators) {
		ops := byCategory[cat]
		fmt.Fprintf(sb, "%s:\n", strings.ToUpper(cat[:1])+cat[1:])

		maxLen := 6 // Minimum for alignment
		for _, op := range ops {
			if len(op.Symbol) > maxLen {
				maxLen = len(op.Symbol)
			}
		}

		for _, op := range ops {
			padding := strings.Repeat(" ", maxLen-len(op.Symbol)+2)
			fmt.Fprintf(sb, "  %s%s%s\n", op.Symbol, padding, op.Description)
		}
		sb.WriteString("\n")
	}
}

// formatTypeListText formats the types list output
func formatTypeListText(sb *strings.Builder, result *TopicResult) {
	sb.WriteString("Types\n")
	sb.WriteString("=====\n\n")

	maxLen := 0
	for _, t := range result.Types {
		if len(t.Name) > maxLen {
			maxLen = len(t.Name)
		}
	}
	for _, t := range result.Types {
		padding := strings.Repeat(" ", maxLen-len(t.Name)+2)
		fmt.Fprintf(sb, "  %s%s%s\n", t.Name, padding, t.Description)
	}

	sb.WriteString("\nUse 'quill describe <type>' for details on a specific type.\n")
}

func formatKeywordListText(sb *strings.Builder, result *TopicResult) {
	sb.WriteString("Keywords\n")
	sb.WriteString("========\n\n")

	maxLen := 0
	for _, k := range result.Keywords {
		if len(k.Name) > maxLen {
			maxLen = len(k.Name)
		}
	}
	for _, k := range result.Keywords {
		padding := strings.Repeat(" ", maxLen-len(k.Name)+2)
		fmt.Fprintf(sb, "  %s%s%s\n", k.Name, padding, k.Description)
	}
}

// FormatMarkdown formats a TopicResult as a Markdown section
func FormatMarkdown(result *TopicResult) string {
	var sb strings.Builder

	switch result.Kind {
	case "builtin":
		fmt.Fprintf(&sb, "## `%s`\n\n%s\n\n", signature(result.Name, result.Params), result.Description)
		fmt.Fprintf(&sb, "- Arity: %s\n- Category: %s\n", result.Arity, result.Category)

	case "type", "keyword":
		fmt.Fprintf(&sb, "## `%s`\n\n%s\n", result.Name, result.Description)
		if result.Example != "" {
			fmt.Fprintf(&sb, "\n```\n%s\n```\n", result.Example)
		}

	case "builtin-list":
		sb.WriteString("## Builtin functions\n\n| Function | Category | Description |\n|---|---|---|\n")
		for _, b := range result.Builtins {
			fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", signature(b.Name, b.Params), b.Category, escapeCell(b.Description))
		}

	case "operator-list":
		sb.WriteString("## Operators\n\n| Operator | Category | Description |\n|---|---|---|\n")
		for _, op := range result.Operators {
			fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", escapeCell(op.Symbol), op.Category, escapeCell(op.Description))
		}

	case "type-list":
		sb.WriteString("## Types\n\n| Type | Description | Example |\n|---|---|---|\n")
		for _, t := range result.Types {
			fmt.Fprintf(&sb, "| `%s` | %s | `%s` |\n", t.Name, escapeCell(t.Description), t.Example)
		}

	case "keyword-list":
		sb.WriteString("## Keywords\n\n| Keyword | Description |\n|---|---|\n")
		for _, k := range result.Keywords {
			fmt.Fprintf(&sb, "| `%s` | %s |\n", k.Name, escapeCell(k.Description))
		}
	}

	return sb.String()
}

// Reference returns the complete language reference as Markdown.
func Reference() string {
	var sb strings.Builder
	sb.WriteString("# Quill language reference\n\n")
	for i, result := range []*TopicResult{describeTypes(), describeOperators(), describeKeywords(), describeBuiltins()} {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(FormatMarkdown(result))
	}
	return sb.String()
}

// RenderHTML converts Markdown produced by this package to HTML.
func RenderHTML(markdown string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render reference: %w", err)
	}
	return buf.String(), nil
}

// ReferenceHTML returns the language reference as a standalone HTML page.
func ReferenceHTML() (string, error) {
	body, err := RenderHTML(Reference())
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>Quill language reference</title>\n</head>\n<body>\n")
	sb.WriteString(body)
	sb.WriteString("</body>\n</html>\n")
	return sb.String(), nil
}

func signature(name string, params []string) string {
	return fmt.Sprintf("%s(%s)", name, strings.Join(params, ", "))
}

// operatorCategories returns categories in first-seen order
func operatorCategories(ops []OperatorInfo) []string {
	var order []string
	seen := make(map[string]bool)
	for _, op := range ops {
		if !seen[op.Category] {
			seen[op.Category] = true
			order = append(order, op.Category)
		}
	}
	return order
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// wrap breaks s into lines of at most width bytes, on spaces
func wrap(s string, width int) []string {
	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(s) {
		if line.Len() > 0 && line.Len()+1+len(word) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteString(" ")
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
