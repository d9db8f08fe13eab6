package stylemap

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/docxmark/model"
)

// Kind identifies what a Subject describes.
type Kind int

const (
	KindParagraph Kind = iota + 1
	KindRun
	KindTable
	KindBold
	KindItalic
	KindUnderline
	KindStrikethrough
	KindAllCaps
	KindSmallCaps
	KindHighlight
	KindCommentReference
	KindCommentRangeStart
	KindCommentRangeEnd
	KindInserted
	KindDeleted
	KindBreak
)

// Subject is what the converter asks the style map about: a document element
// or a single run property of one.
type Subject struct {
	Kind      Kind
	StyleID   string
	StyleName string
	Numbering *model.NumberingLevel
	// Color is set for KindHighlight.
	Color string
	// BreakType is set for KindBreak.
	BreakType model.BreakType
}

// ParagraphSubject describes a paragraph.
func ParagraphSubject(p *model.Paragraph) Subject {
	return Subject{Kind: KindParagraph, StyleID: p.StyleID, StyleName: p.StyleName, Numbering: p.Numbering}
}

// RunSubject describes a run.
func RunSubject(r *model.Run) Subject {
	return Subject{Kind: KindRun, StyleID: r.StyleID, StyleName: r.StyleName}
}

// TableSubject describes a table.
func TableSubject(t *model.Table) Subject {
	return Subject{Kind: KindTable, StyleID: t.StyleID, StyleName: t.StyleName}
}

// BreakSubject describes a break.
func BreakSubject(b *model.Break) Subject {
	return Subject{Kind: KindBreak, BreakType: b.BreakType}
}

// HighlightSubject describes a run highlighted in color.
func HighlightSubject(color string) Subject {
	return Subject{Kind: KindHighlight, Color: color}
}

// Matcher selects the subjects a rule applies to.
type Matcher interface {
	Matches(s Subject) bool
}

// Operator compares a style name with the operand of a StringMatcher.
type Operator int

const (
	// EqualTo matches names equal to the operand, ignoring case.
	EqualTo Operator = iota
	// StartsWith matches names beginning with the operand, ignoring case.
	StartsWith
)

// StringMatcher tests style names.
type StringMatcher struct {
	Operator Operator
	Operand  string
}

// Matches reports whether name satisfies m.
func (m StringMatcher) Matches(name string) bool {
	operand, value := foldName(m.Operand), foldName(name)
	if m.Operator == StartsWith {
		return strings.HasPrefix(value, operand)
	}
	return value == operand
}

// foldName upper-cases a style name for comparison. Casers keep state, so a
// new one is made per call.
func foldName(s string) string {
	return cases.Upper(language.Und).String(norm.NFC.String(s))
}

// ListLevel restricts a paragraph matcher to one list level.
type ListLevel struct {
	// LevelIndex is zero-based.
	LevelIndex int
	IsOrdered  bool
}

// ElementMatcher matches paragraphs, runs and tables by style and list level.
type ElementMatcher struct {
	Kind Kind
	// StyleID is ignored when empty.
	StyleID   string
	StyleName *StringMatcher
	List      *ListLevel
}

// Matches implements Matcher.
func (m *ElementMatcher) Matches(s Subject) bool {
	if s.Kind != m.Kind {
		return false
	}
	if m.StyleID != "" && s.StyleID != m.StyleID {
		return false
	}
	if m.StyleName != nil && (s.StyleName == "" || !m.StyleName.Matches(s.StyleName)) {
		return false
	}
	if m.List != nil {
		n := s.Numbering
		if n == nil || n.Level != m.List.LevelIndex || n.IsOrdered != m.List.IsOrdered {
			return false
		}
	}
	return true
}

// KindMatcher matches every subject of one kind.
type KindMatcher Kind

// Matches implements Matcher.
func (m KindMatcher) Matches(s Subject) bool {
	return s.Kind == Kind(m)
}

// HighlightMatcher matches highlighted runs, optionally of one color.
type HighlightMatcher struct {
	Color *string
}

// Matches implements Matcher.
func (m HighlightMatcher) Matches(s Subject) bool {
	return s.Kind == KindHighlight && (m.Color == nil || s.Color == *m.Color)
}

// BreakMatcher matches breaks of one type.
type BreakMatcher struct {
	BreakType model.BreakType
}

// Matches implements Matcher.
func (m BreakMatcher) Matches(s Subject) bool {
	return s.Kind == KindBreak && s.BreakType == m.BreakType
}
