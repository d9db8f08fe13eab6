package parsec

import (
	"regexp"
	"unicode/utf8"
)

// Token names produced by the tokeniser itself.
const (
	TokenEnd                   = "end"
	TokenUnrecognisedCharacter = "unrecognisedCharacter"
)

// Token is a lexical token. Value is the first capture group of the rule
// that produced it, or empty when the rule has none.
type Token struct {
	Name   string
	Value  string
	Source Range
}

// describe renders a token for error messages.
func (t Token) describe() string {
	return describeToken(t.Name, t.Value)
}

func describeToken(name, value string) string {
	if value != "" {
		return name + ` "` + value + `"`
	}
	return name
}

// Input is an immutable cursor over a token slice.
type Input struct {
	tokens []Token
	index  int
}

// NewInput returns a cursor at the first token.
func NewInput(tokens []Token) Input {
	return Input{tokens: tokens}
}

// Head returns the current token.
func (in Input) Head() (Token, bool) {
	if in.index < len(in.tokens) {
		return in.tokens[in.index], true
	}
	return Token{}, false
}

// Tail returns the cursor advanced by one token.
func (in Input) Tail() Input {
	return Input{tokens: in.tokens, index: in.index + 1}
}

// End returns the last token of the stream.
func (in Input) End() Token {
	if len(in.tokens) == 0 {
		return Token{}
	}
	return in.tokens[len(in.tokens)-1]
}

// Remaining returns the tokens from the cursor on.
func (in Input) Remaining() []Token {
	if in.index >= len(in.tokens) {
		return nil
	}
	return in.tokens[in.index:]
}

// To returns the source range from the current token to the head of end.
func (in Input) To(end Input) Range {
	start, ok := in.Head()
	if !ok {
		start = in.End()
	}
	last, ok := end.Head()
	if !ok {
		last = end.End()
	}
	return start.Source.To(last.Source)
}

// TokenRule is one rule of a RegexTokeniser.
type TokenRule struct {
	Name    string
	pattern *regexp.Regexp
}

// NewTokenRule compiles pattern anchored at the current position. It panics
// if pattern is invalid, like regexp.MustCompile.
func NewTokenRule(name, pattern string) TokenRule {
	return TokenRule{Name: name, pattern: regexp.MustCompile(`^(?:` + pattern + `)`)}
}

// RegexTokeniser splits a string into tokens by trying its rules in order at
// each position. The first rule with a non-empty match wins.
type RegexTokeniser struct {
	rules []TokenRule
}

// NewRegexTokeniser creates a tokeniser. It is safe for concurrent use.
func NewRegexTokeniser(rules ...TokenRule) *RegexTokeniser {
	return &RegexTokeniser{rules: rules}
}

// Tokenise returns the tokens of input, always terminated by an end token.
// A character no rule matches becomes an unrecognisedCharacter token.
func (t *RegexTokeniser) Tokenise(input string) []Token {
	return t.TokeniseWithDescription(input, "")
}

// TokeniseWithDescription is Tokenise with a description that locations
// include when described.
func (t *RegexTokeniser) TokeniseWithDescription(input, description string) []Token {
	var tokens []Token
	index := 0
	for index < len(input) {
		token, end := t.next(input, description, index)
		tokens = append(tokens, token)
		index = end
	}
	return append(tokens, Token{Name: TokenEnd, Source: NewRange(input, description, len(input), len(input))})
}

func (t *RegexTokeniser) next(input, description string, start int) (Token, int) {
	rest := input[start:]
	for _, rule := range t.rules {
		m := rule.pattern.FindStringSubmatchIndex(rest)
		if m == nil || m[1] == 0 {
			continue
		}
		value := ""
		if len(m) >= 4 && m[2] >= 0 {
			value = rest[m[2]:m[3]]
		}
		end := start + m[1]
		return Token{Name: rule.Name, Value: value, Source: NewRange(input, description, start, end)}, end
	}

	_, size := utf8.DecodeRuneInString(rest)
	end := start + size
	return Token{
		Name:   TokenUnrecognisedCharacter,
		Value:  input[start:end],
		Source: NewRange(input, description, start, end),
	}, end
}
