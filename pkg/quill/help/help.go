// Package help provides topic-based documentation for Quill, shared by
// `quill describe`, `quill doc` and the REPL's :help command.
package help

import (
	"fmt"
	"sort"
	"strings"

	perrors "github.com/sambeau/quill/pkg/quill/errors"
	"github.com/sambeau/quill/pkg/quill/evaluator"
	"github.com/sambeau/quill/pkg/quill/lexer"
)

// TopicResult represents the help output for a topic
type TopicResult struct {
	Kind        string                  `json:"kind"`
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Builtins    []evaluator.BuiltinInfo `json:"builtins,omitempty"`
	Operators   []OperatorInfo          `json:"operators,omitempty"`
	Types       []TypeInfo              `json:"types,omitempty"`
	Keywords    []KeywordInfo           `json:"keywords,omitempty"`
	Params      []string                `json:"params,omitempty"`
	Arity       string                  `json:"arity,omitempty"`
	Category    string                  `json:"category,omitempty"`
	Example     string                  `json:"example,omitempty"`
}

// OperatorInfo describes one operator
type OperatorInfo struct {
	Symbol      string `json:"symbol"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// TypeInfo describes one value type
type TypeInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Example     string `json:"example"`
}

// KeywordInfo describes one reserved word
type KeywordInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Example     string `json:"example,omitempty"`
}

var operatorMetadata = []OperatorInfo{
	{"+", "arithmetic", "Add numbers, join strings or lists, or of booleans"},
	{"-", "arithmetic", "Subtract numbers, or remove a suffix from a string"},
	{"*", "arithmetic", "Multiply numbers, or repeat a string or list"},
	{"/", "arithmetic", "Divide; dividing by zero is an error"},
	{"%", "arithmetic", "Remainder; the result takes the sign of the dividend"},
	{"^", "arithmetic", "Raise to a power"},
	{"-x", "arithmetic", "Negate"},
	{"==", "comparison", "Equal; lists compare element by element"},
	{"!=", "comparison", "Not equal"},
	{"<", "comparison", "Less than; strings and lists compare lexicographically"},
	{"<=", "comparison", "Less than or equal"},
	{">", "comparison", "Greater than"},
	{">=", "comparison", "Greater than or equal"},
	{"&&", "logical", "And (also written 'and'); both sides are always evaluated"},
	{"||", "logical", "Or (also written 'or'); both sides are always evaluated"},
	{"!", "logical", "Not (also written 'not')"},
	{"in", "collection", "Whether the left value appears in the string form of the right"},
	{"x[i]", "collection", "Index a string or list; negative indexes count from the end"},
	{"x[a:b]", "collection", "Slice a string or list; either bound may be omitted"},
	{"=", "assignment", "Bind a name, or update it where it already exists"},
	{"+=", "assignment", "Add and assign (likewise -=, *=, /=, %=, ^=)"},
	{"++", "assignment", "Increment a variable; prefix returns the new value, postfix the old"},
	{"--", "assignment", "Decrement a variable"},
}

var typeMetadata = []TypeInfo{
	{"number", "Double-precision floating point. Whole numbers print without a decimal point.", "42, 3.5, 1e9"},
	{"string", "Immutable text. Indexing and len() work on bytes.", `"hello"`},
	{"bool", "true or false. Conditions must be bool or number.", "true"},
	{"list", "Mutable ordered sequence of any values, shared by reference.", `[1, "two", [3]]`},
	{"function", "User function or builtin. Functions capture the variables around them.", "function(x) return x * 2 end function"},
	{"null", "The absence of a value, written nil.", "nil"},
}

var keywordMetadata = map[string]KeywordInfo{
	"if":       {Description: "Conditional expression; the value of the taken branch", Example: "if x > 0 then print(x) else print(0) end if"},
	"then":     {Description: "Starts the body of an if"},
	"else":     {Description: "Starts the alternative branch of an if"},
	"end":      {Description: "Closes a block: end if, end while, end for, end function"},
	"while":    {Description: "Loop while the condition holds", Example: "while i < 10 i++ end while"},
	"for":      {Description: "Loop over the elements of a list", Example: "for x in [1, 2, 3] print(x) end for"},
	"in":       {Description: "Membership test, and the list in a for loop"},
	"break":    {Description: "Leave the innermost loop"},
	"continue": {Description: "Skip to the next iteration of the innermost loop"},
	"function": {Description: "Define a named function or a function value", Example: "function add(a, b) return a + b end function"},
	"return":   {Description: "Return a value from the current function"},
	"true":     {Description: "Boolean true"},
	"false":    {Description: "Boolean false"},
	"nil":      {Description: "The null value"},
	"and":      {Description: "Logical and, same as &&"},
	"or":       {Description: "Logical or, same as ||"},
	"not":      {Description: "Logical not, same as !"},
}

// DescribeTopic returns help information for the given topic.
// Topics can be: builtins, operators, types, keywords, a type name,
// a keyword or a builtin name.
func DescribeTopic(topic string) (*TopicResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("no topic specified (try: builtins, operators, types, keywords, print)")
	}

	switch topic {
	case "builtins":
		return describeBuiltins(), nil
	case "operators":
		return describeOperators(), nil
	case "types":
		return describeTypes(), nil
	case "keywords":
		return describeKeywords(), nil
	}

	if result := describeBuiltinByName(topic); result != nil {
		return result, nil
	}
	if result := describeType(topic); result != nil {
		return result, nil
	}
	if result := describeKeyword(topic); result != nil {
		return result, nil
	}

	return nil, unknownTopicError(topic)
}

// Topics returns every name DescribeTopic accepts, sorted.
func Topics() []string {
	seen := map[string]bool{"builtins": true, "operators": true, "types": true, "keywords": true}
	for _, name := range evaluator.BuiltinNames() {
		seen[name] = true
	}
	for _, t := range typeMetadata {
		seen[t.Name] = true
	}
	for _, k := range lexer.Keywords() {
		seen[k] = true
	}

	topics := make([]string, 0, len(seen))
	for name := range seen {
		topics = append(topics, name)
	}
	sort.Strings(topics)
	return topics
}

// describeBuiltins returns a list of all builtins grouped by category
func describeBuiltins() *TopicResult {
	builtins := evaluator.BuiltinCatalog()

	sort.SliceStable(builtins, func(i, j int) bool {
		return builtins[i].Category < builtins[j].Category
	})

	return &TopicResult{
		Kind:     "builtin-list",
		Name:     "builtins",
		Builtins: builtins,
	}
}

// describeOperators returns every operator in display order
func describeOperators() *TopicResult {
	operators := make([]OperatorInfo, len(operatorMetadata))
	copy(operators, operatorMetadata)

	return &TopicResult{
		Kind:      "operator-list",
		Name:      "operators",
		Operators: operators,
	}
}

func describeTypes() *TopicResult {
	types := make([]TypeInfo, len(typeMetadata))
	copy(types, typeMetadata)

	return &TopicResult{
		Kind:  "type-list",
		Name:  "types",
		Types: types,
	}
}

func describeKeywords() *TopicResult {
	words := lexer.Keywords()
	keywords := make([]KeywordInfo, 0, len(words))
	for _, word := range words {
		info := keywordMetadata[word]
		info.Name = word
		keywords = append(keywords, info)
	}

	return &TopicResult{
		Kind:     "keyword-list",
		Name:     "keywords",
		Keywords: keywords,
	}
}

// describeBuiltinByName returns help for a specific builtin, or nil if not found
func describeBuiltinByName(name string) *TopicResult {
	info, ok := evaluator.LookupBuiltin(name)
	if !ok {
		return nil
	}

	return &TopicResult{
		Kind:        "builtin",
		Name:        info.Name,
		Description: info.Description,
		Params:      info.Params,
		Arity:       info.Arity,
		Category:    info.Category,
	}
}

func describeType(name string) *TopicResult {
	normalized := strings.ToLower(name)
	for _, t := range typeMetadata {
		if t.Name == normalized {
			return &TopicResult{
				Kind:        "type",
				Name:        t.Name,
				Description: t.Description,
				Example:     t.Example,
			}
		}
	}
	return nil
}

func describeKeyword(name string) *TopicResult {
	if !lexer.IsKeyword(name) {
		return nil
	}
	info := keywordMetadata[name]

	return &TopicResult{
		Kind:        "keyword",
		Name:        name,
		Description: info.Description,
		Example:     info.Example,
	}
}

// unknownTopicError generates a helpful error for unknown topics
func unknownTopicError(topic string) error {
	suggestions := findSuggestions(topic)

	if len(suggestions) > 0 {
		return fmt.Errorf("unknown topic: %s\nDid you mean: %s?", topic, strings.Join(suggestions, ", "))
	}

	return fmt.Errorf("unknown topic: %s\nTry: builtins, operators, types, keywords, print", topic)
}

// findSuggestions returns up to three topics close to the unknown one,
// closest first
func findSuggestions(topic string) []string {
	return perrors.FindTopMatches(strings.ToLower(topic), Topics(), 3)
}
