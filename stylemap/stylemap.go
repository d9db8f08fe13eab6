// Package stylemap parses style mappings, the one-line rules that decide
// which HTML a paragraph, run or other document element becomes:
//
//	p[style-name='Warning'] => div.warning > p:fresh
//	r.Code => code
//	b => strong
//
// The left side selects document elements and the right side is the HTML
// path their content is wrapped in. A rule whose right side is empty emits
// the content unwrapped, and "!" drops it.
package stylemap

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tsawler/docxmark/markup"
	"github.com/tsawler/docxmark/parsec"
	"github.com/tsawler/docxmark/result"
)

// Rule maps the subjects From matches to the HTML path To.
type Rule struct {
	From Matcher
	To   markup.Path
}

// ParseError reports a style-map line the parser did not understand.
type ParseError struct {
	Input  string
	Errors []parsec.Error
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	sb.WriteString("Did not understand this style mapping, so ignored it: ")
	sb.WriteString(e.Input)
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "\nError was at character number %d: Expected %s but got %s",
			err.CharacterNumber(), err.Expected, err.Actual)
	}
	return sb.String()
}

func parseString[T any](rule parsec.Rule[T], s string) (T, error) {
	res := parsec.Parse(rule, Tokenise(s))
	if !res.IsSuccess() {
		var zero T
		return zero, &ParseError{Input: s, Errors: res.Errors()}
	}
	return res.Value(), nil
}

// ParseRule parses a single style mapping such as "p.Heading1 => h1:fresh".
func ParseRule(line string) (Rule, error) {
	return parseString(styleRule, line)
}

// ParseDocumentMatcher parses the left side of a style mapping.
func ParseDocumentMatcher(s string) (Matcher, error) {
	return parseString(documentMatcherRule, s)
}

// ParseHTMLPath parses the right side of a style mapping.
func ParseHTMLPath(s string) (markup.Path, error) {
	return parseString(htmlPathRule, s)
}

// ReadLines splits a style map into its rule lines. Lines are trimmed, and
// blank lines and lines starting with # are dropped.
func ReadLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// Parse compiles lines in order. A line that fails to parse is dropped with
// a warning and the remaining lines are still compiled.
func Parse(lines []string) result.Result[[]Rule] {
	rules := make([]Rule, 0, len(lines))
	var messages []result.Message
	for _, line := range lines {
		rule, err := ParseRule(line)
		if err != nil {
			messages = append(messages, result.Warning(err.Error()))
			continue
		}
		rules = append(rules, rule)
	}
	return result.New(rules, messages...)
}

// Find returns the first rule matching s.
func Find(rules []Rule, s Subject) (Rule, bool) {
	for _, rule := range rules {
		if rule.From.Matches(s) {
			return rule, true
		}
	}
	return Rule{}, false
}

// FindPath returns the path of the first rule matching s.
func FindPath(rules []Rule, s Subject) (markup.Path, bool) {
	rule, ok := Find(rules, s)
	return rule.To, ok
}

// DefaultRules returns the compiled default style map. The slice is shared
// and must not be modified.
var DefaultRules = sync.OnceValue(func() []Rule {
	return Parse(DefaultStyleMap()).Value
})
