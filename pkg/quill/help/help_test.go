package help

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDescribeTopic(t *testing.T) {
	tests := []struct {
		topic    string
		wantKind string
		wantName string
	}{
		{"builtins", "builtin-list", "builtins"},
		{"operators", "operator-list", "operators"},
		{"types", "type-list", "types"},
		{"keywords", "keyword-list", "keywords"},
		{"print", "builtin", "print"},
		{"parse_num", "builtin", "parse_num"},
		{"list", "type", "list"},
		{"Number", "type", "number"},
		{"while", "keyword", "while"},
		{"  sort  ", "builtin", "sort"},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			result, err := DescribeTopic(tt.topic)
			if err != nil {
				t.Fatalf("DescribeTopic(%q) returned error: %v", tt.topic, err)
			}
			if result.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", result.Kind, tt.wantKind)
			}
			if result.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", result.Name, tt.wantName)
			}
		})
	}
}

func TestDescribeBuiltin(t *testing.T) {
	result, err := DescribeTopic("range")
	if err != nil {
		t.Fatal(err)
	}
	if result.Arity != "1-3" {
		t.Errorf("Arity = %q, want 1-3", result.Arity)
	}
	if result.Category != "math" {
		t.Errorf("Category = %q, want math", result.Category)
	}
	if len(result.Params) != 3 {
		t.Errorf("Params = %v", result.Params)
	}
}

func TestDescribeBuiltinsGroupsByCategory(t *testing.T) {
	result, err := DescribeTopic("builtins")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Builtins) != 27 {
		t.Errorf("expected 27 builtins, got %d", len(result.Builtins))
	}
	for i := 1; i < len(result.Builtins); i++ {
		if result.Builtins[i-1].Category > result.Builtins[i].Category {
			t.Fatalf("builtins not grouped by category at %d: %s after %s",
				i, result.Builtins[i].Category, result.Builtins[i-1].Category)
		}
	}
}

func TestDescribeKeywordsCoversLexer(t *testing.T) {
	result, err := DescribeTopic("keywords")
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range result.Keywords {
		if k.Description == "" {
			t.Errorf("keyword %q has no description", k.Name)
		}
	}
}

func TestUnknownTopic(t *testing.T) {
	tests := []struct {
		topic   string
		wantErr string
	}{
		{"", "no topic specified"},
		{"prnt", "Did you mean: print"},
		{"qqqqqqqqqqqq", "Try: builtins"},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			_, err := DescribeTopic(tt.topic)
			if err == nil {
				t.Fatalf("expected error for %q", tt.topic)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestFormatText(t *testing.T) {
	tests := []struct {
		topic    string
		contains []string
	}{
		{"print", []string{"print(...values)", "Arity: 0+", "Category: io"}},
		{"builtins", []string{"Builtin Functions", "Input/Output:", "  len(x)"}},
		{"operators", []string{"Arithmetic:", "Comparison:", "  ==      Equal"}},
		{"types", []string{"Types", "  number  "}},
		{"keywords", []string{"Keywords", "  continue  "}},
		{"for", []string{"Keyword: for", "Example:\n  for x in"}},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			result, err := DescribeTopic(tt.topic)
			if err != nil {
				t.Fatal(err)
			}
			text := FormatText(result, 80)
			for _, want := range tt.contains {
				if !strings.Contains(text, want) {
					t.Errorf("output missing %q:\n%s", want, text)
				}
			}
		})
	}
}

func TestFormatTextWraps(t *testing.T) {
	result, err := DescribeTopic("function")
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(FormatText(result, 20), "\n") {
		if strings.HasPrefix(line, "  ") {
			continue // example
		}
		if len(line) > 20 && strings.Contains(line, " ") {
			t.Errorf("line longer than 20: %q", line)
		}
	}
}

func TestFormatJSON(t *testing.T) {
	result, err := DescribeTopic("split")
	if err != nil {
		t.Fatal(err)
	}
	data, err := FormatJSON(result)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["kind"] != "builtin" || decoded["name"] != "split" {
		t.Errorf("decoded = %v", decoded)
	}
	if decoded["arity"] != "1-2" {
		t.Errorf("arity = %v", decoded["arity"])
	}
}

func TestReferenceHTML(t *testing.T) {
	page, err := ReferenceHTML()
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<h1 id="quill-language-reference">Quill language reference</h1>`,
		"<table>",
		"<code>sqrt(x)</code>",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestTopicsAreDescribable(t *testing.T) {
	for _, topic := range Topics() {
		if _, err := DescribeTopic(topic); err != nil {
			t.Errorf("DescribeTopic(%q) failed: %v", topic, err)
		}
	}
}
