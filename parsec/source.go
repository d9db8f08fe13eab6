package parsec

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Range is a span of a source string, measured in bytes.
type Range struct {
	source      string
	description string
	start       int
	end         int
}

// NewRange returns the range [start, end) of source.
func NewRange(source, description string, start, end int) Range {
	return Range{source: source, description: description, start: start, end: end}
}

// Start returns the byte offset of the start of the range.
func (r Range) Start() int { return r.start }

// End returns the byte offset just past the range.
func (r Range) End() int { return r.end }

// Text returns the covered text.
func (r Range) Text() string {
	if r.start < 0 || r.end > len(r.source) || r.start > r.end {
		return ""
	}
	return r.source[r.start:r.end]
}

// To returns the range from the start of r to the end of other.
func (r Range) To(other Range) Range {
	return Range{source: r.source, description: r.description, start: r.start, end: other.end}
}

// LineNumber returns the 1-based line of the start of the range.
func (r Range) LineNumber() int {
	line, _ := r.position()
	return line
}

// CharacterNumber returns the 1-based column of the start of the range,
// counted in characters.
func (r Range) CharacterNumber() int {
	_, char := r.position()
	return char
}

// Describe returns a human-readable location.
func (r Range) Describe() string {
	line, char := r.position()
	desc := ""
	if r.description != "" {
		desc = r.description + "\n"
	}
	return fmt.Sprintf("%sLine number: %d\nCharacter number: %d", desc, line, char)
}

func (r Range) position() (line, char int) {
	start := min(r.start, len(r.source))
	lineStart := 0
	line = 1
	for {
		i := strings.IndexByte(r.source[lineStart:], '\n')
		if i < 0 || lineStart+i >= start {
			break
		}
		lineStart += i + 1
		line++
	}
	return line, utf8.RuneCountInString(r.source[lineStart:start]) + 1
}
