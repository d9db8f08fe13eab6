// Package docxmark provides a fluent API for converting Word documents
// (.docx) to HTML, Markdown and plain text.
//
// Basic usage:
//
//	html, messages, err := docxmark.Open("document.docx").ToHTML(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if len(messages) > 0 {
//	    log.Println("Messages:", docxmark.FormatMessages(messages))
//	}
//
// With options:
//
//	markdown, _, err := docxmark.Open("report.docx").
//	    StyleMap("p[style-name='Aside'] => aside > p:fresh").
//	    IDPrefix("report-").
//	    ToMarkdown(ctx)
//
// Conversion is driven by a style map: a list of rules that map paragraph,
// run, table and break styles to HTML paths. The rules given with StyleMap
// take precedence over a style map embedded in the document, which in turn
// takes precedence over the built-in defaults.
//
// For advanced use cases, the lower-level docx, convert and markup packages
// are also available.
package docxmark

import (
	"github.com/tsawler/docxmark/docx"
	"github.com/tsawler/docxmark/result"
)

// Open returns a Converter for the .docx file at filename. The file is read
// when a terminal operation runs.
//
// Example:
//
//	html, messages, err := docxmark.Open("document.docx").ToHTML(ctx)
func Open(filename string) *Converter {
	return &Converter{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromBytes returns a Converter for a .docx file held in memory.
//
// Example:
//
//	data, _ := os.ReadFile("document.docx")
//	text, _, err := docxmark.FromBytes(data).RawText(ctx)
func FromBytes(data []byte) *Converter {
	c := &Converter{
		data:    data,
		options: defaultOptions(),
	}
	if data == nil {
		c.err = ErrEmptyInput
	}
	return c
}

// FromPackage returns a Converter for an already opened package. This is
// useful when the package is not a zip file on disk, or when several
// conversions share one package.
// Note: EmbedStyleMap writes into pkg.
func FromPackage(pkg docx.Package) *Converter {
	c := &Converter{
		pkg:     pkg,
		options: defaultOptions(),
	}
	if pkg == nil {
		c.err = ErrEmptyInput
	}
	return c
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	data := docxmark.Must(docxmark.Open("in.docx").EmbedStyleMap(ctx, rules))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText is a helper that wraps a call to ToHTML, ToMarkdown or RawText
// and panics if the error is non-nil. It discards messages and returns just
// the value.
//
// Example:
//
//	html := docxmark.MustText(docxmark.Open("document.docx").ToHTML(ctx))
func MustText[T any](val T, _ []result.Message, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
