package docxmark

import (
	"log/slog"

	"github.com/tsawler/docxmark/convert"
	"github.com/tsawler/docxmark/model"
	"github.com/tsawler/docxmark/ocr"
)

// Markdown engines accepted by Converter.MarkdownEngine.
const (
	// MarkdownNative writes Markdown directly from the converted tree.
	MarkdownNative = "native"
	// MarkdownFromHTML renders HTML first and converts it with
	// html-to-markdown.
	MarkdownFromHTML = "html-to-markdown"
)

// options holds configuration for a conversion.
type options struct {
	// Style map text supplied by the caller, one rule per line
	styleMap string

	includeDefaultStyleMap  bool
	includeEmbeddedStyleMap bool

	ignoreEmptyParagraphs bool
	idPrefix              string
	prettyPrint           bool

	trackedChangeTokens bool
	commentTokens       bool

	imageConverter convert.ImageConverter
	ocrAltText     bool
	ocrLanguage    string
	ocrPageSegMode ocr.PageSegMode

	// Applied in order after the document is read
	transforms []func(model.Element) model.Element

	externalFileAccess bool
	markdownEngine     string

	logger *slog.Logger
}

// defaultOptions returns the default conversion options.
func defaultOptions() options {
	return options{
		includeDefaultStyleMap:  true,
		includeEmbeddedStyleMap: true,
		ignoreEmptyParagraphs:   true,
		markdownEngine:          MarkdownNative,
		ocrPageSegMode:          ocr.PSM_AUTO,
	}
}

// clone creates a deep copy of options.
func (o options) clone() options {
	newOpts := o
	if o.transforms != nil {
		newOpts.transforms = make([]func(model.Element) model.Element, len(o.transforms))
		copy(newOpts.transforms, o.transforms)
	}
	return newOpts
}
