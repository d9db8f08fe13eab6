package convert

import (
	"github.com/tsawler/docxmark/markup"
	"github.com/tsawler/docxmark/stylemap"
)

// Options configures a Converter. Start from DefaultOptions; the zero value
// keeps empty paragraphs.
type Options struct {
	// StyleMap is consulted in order and the first matching rule wins.
	StyleMap []stylemap.Rule

	// IDPrefix is prepended to every generated id and fragment link.
	IDPrefix string

	// IgnoreEmptyParagraphs drops paragraphs with no content.
	IgnoreEmptyParagraphs bool

	// TrackedChangeTokens emits insertions and deletions as bracketed
	// tokens. When unset, insertions are inlined and deletions dropped.
	TrackedChangeTokens bool

	// CommentTokens emits comments as bracketed tokens instead of a list
	// of comments after the content.
	CommentTokens bool

	// ImageConverter renders images. Nil means DataURI.
	ImageConverter ImageConverter

	OutputFormat markup.Format
	PrettyPrint  bool
}

// DefaultOptions returns options that ignore empty paragraphs, write HTML
// and use no style map.
func DefaultOptions() Options {
	return Options{
		IgnoreEmptyParagraphs: true,
		OutputFormat:          markup.FormatHTML,
	}
}
