package convert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// TokenKind identifies what a token marks.
type TokenKind string

const (
	TokenInsertion TokenKind = "INS"
	TokenDeletion  TokenKind = "DEL"
	TokenComment   TokenKind = "CMT"
)

const tokenSuffix = "]]"

func startPrefix(kind TokenKind) string { return "[[DOCX_" + string(kind) + "_START:" }
func endPrefix(kind TokenKind) string   { return "[[DOCX_" + string(kind) + "_END:" }

func trackedChangeStartToken(kind TokenKind, payload TrackedChangePayload) (string, error) {
	data, err := marshalJSON(payload)
	if err != nil {
		return "", fmt.Errorf("encoding %s payload for change %s: %w", kind, payload.ID, err)
	}
	return startPrefix(kind) + encodeURIComponent(string(data)) + tokenSuffix, nil
}

// trackedChangeEndToken writes id unencoded.
func trackedChangeEndToken(kind TokenKind, id string) string {
	return endPrefix(kind) + id + tokenSuffix
}

func commentStartToken(payload *CommentPayload) (string, error) {
	data, err := marshalJSON(payload)
	if err != nil {
		return "", fmt.Errorf("encoding payload for comment %s: %w", payload.ID, err)
	}
	return startPrefix(TokenComment) + encodeURIComponent(string(data)) + tokenSuffix, nil
}

func commentEndToken(id string) string {
	return endPrefix(TokenComment) + encodeURIComponent(id) + tokenSuffix
}

// marshalJSON encodes v without escaping <, > and &.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

const upperHex = "0123456789ABCDEF"

// encodeURIComponent percent-encodes every byte of s except ASCII letters,
// digits and - _ . ! ~ * ' ( ).
func encodeURIComponent(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		if unreservedComponent(b) {
			sb.WriteByte(b)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperHex[b>>4])
		sb.WriteByte(upperHex[b&0x0f])
	}
	return sb.String()
}

func unreservedComponent(b byte) bool {
	switch {
	case 'a' <= b && b <= 'z', 'A' <= b && b <= 'Z', '0' <= b && b <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", b) >= 0
}

// Token is a tracked-change or comment marker found in converted output.
type Token struct {
	Kind  TokenKind
	Start bool
	// Value is the decoded JSON payload of a start token, or the id of an
	// end token.
	Value string
	// Offset and Length locate the token text in the scanned string.
	Offset int
	Length int
}

// TrackedChange decodes the payload of an insertion or deletion start token.
func (t Token) TrackedChange() (TrackedChangePayload, error) {
	var p TrackedChangePayload
	if !t.Start || t.Kind == TokenComment {
		return p, fmt.Errorf("token %s is not a tracked change start token", t.Kind)
	}
	err := json.Unmarshal([]byte(t.Value), &p)
	return p, err
}

// Comment decodes the payload of a comment start token.
func (t Token) Comment() (*CommentPayload, error) {
	if !t.Start || t.Kind != TokenComment {
		return nil, fmt.Errorf("token %s is not a comment start token", t.Kind)
	}
	var p CommentPayload
	if err := json.Unmarshal([]byte(t.Value), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

var tokenPattern = regexp.MustCompile(`\[\[DOCX_(INS|DEL|CMT)_(START|END):(.*?)\]\]`)

// ScanTokens finds every token in s, in order, and decodes its value. It
// reads HTML text as well as plain text, since token text contains no
// characters HTML escapes.
func ScanTokens(s string) ([]Token, error) {
	var tokens []Token
	for _, m := range tokenPattern.FindAllStringSubmatchIndex(s, -1) {
		kind := TokenKind(s[m[2]:m[3]])
		start := s[m[4]:m[5]] == "START"
		raw := s[m[6]:m[7]]

		value := raw
		if start || kind == TokenComment {
			decoded, err := url.PathUnescape(raw)
			if err != nil {
				return nil, fmt.Errorf("decoding token at offset %d: %w", m[0], err)
			}
			value = decoded
		}
		tokens = append(tokens, Token{
			Kind:   kind,
			Start:  start,
			Value:  value,
			Offset: m[0],
			Length: m[1] - m[0],
		})
	}
	return tokens, nil
}
