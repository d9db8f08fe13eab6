package docxmark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tsawler/docxmark/convert"
	"github.com/tsawler/docxmark/docx"
	"github.com/tsawler/docxmark/format"
	"github.com/tsawler/docxmark/markup"
	"github.com/tsawler/docxmark/model"
	"github.com/tsawler/docxmark/ocr"
	"github.com/tsawler/docxmark/result"
	"github.com/tsawler/docxmark/stylemap"
)

var (
	// ErrEmptyInput is returned when a Converter has no document to read.
	ErrEmptyInput = errors.New("docxmark: no input document")
	// ErrUnsupportedFormat is returned when the input is recognizably not a
	// Word document, such as a workbook or a PDF.
	ErrUnsupportedFormat = errors.New("docxmark: unsupported file format")
	// ErrUnknownMarkdownEngine is returned by terminal operations after
	// MarkdownEngine was given an unknown name.
	ErrUnknownMarkdownEngine = errors.New("docxmark: unknown markdown engine")
	// ErrUnknownPageSegMode is returned by terminal operations after
	// OCRPageSegMode was given an unknown name.
	ErrUnknownPageSegMode = errors.New("docxmark: unknown OCR page segmentation mode")
)

// Converter provides a fluent interface for converting Word documents.
// Each configuration method returns a new Converter instance, making it
// safe for concurrent use and allowing method chaining.
type Converter struct {
	// Input: exactly one of these is set
	filename string
	data     []byte
	pkg      docx.Package

	options options

	// First configuration error, reported by every terminal operation
	err error

	// Conversion id override; empty means a fresh id per operation
	id string
}

// clone creates a shallow copy of the Converter with a deep copy of options.
func (c *Converter) clone() *Converter {
	return &Converter{
		filename: c.filename,
		data:     c.data,
		pkg:      c.pkg,
		options:  c.options.clone(),
		err:      c.err,
		id:       c.id,
	}
}

// ============================================================================
// Configuration Methods (return new Converter instance)
// ============================================================================

// StyleMap adds style-map rules, one per line. Multiple calls are
// cumulative and earlier rules take precedence. The rules given here are
// consulted before any embedded style map and the defaults.
//
// Example:
//
//	docxmark.Open("doc.docx").StyleMap("p[style-name='Quote'] => blockquote:fresh")
func (c *Converter) StyleMap(text string) *Converter {
	n := c.clone()
	if n.options.styleMap == "" {
		n.options.styleMap = text
	} else {
		n.options.styleMap += "\n" + text
	}
	return n
}

// IncludeDefaultStyleMap controls whether the built-in rules for headings,
// lists, notes and comments are used. Enabled by default.
func (c *Converter) IncludeDefaultStyleMap(include bool) *Converter {
	n := c.clone()
	n.options.includeDefaultStyleMap = include
	return n
}

// IncludeEmbeddedStyleMap controls whether a style map embedded in the
// document is used. Enabled by default.
func (c *Converter) IncludeEmbeddedStyleMap(include bool) *Converter {
	n := c.clone()
	n.options.includeEmbeddedStyleMap = include
	return n
}

// IgnoreEmptyParagraphs controls whether paragraphs without content are
// dropped. Enabled by default.
func (c *Converter) IgnoreEmptyParagraphs(ignore bool) *Converter {
	n := c.clone()
	n.options.ignoreEmptyParagraphs = ignore
	return n
}

// IDPrefix sets a prefix for the ids of generated note, comment and
// bookmark anchors, so that several converted documents can share a page.
func (c *Converter) IDPrefix(prefix string) *Converter {
	n := c.clone()
	n.options.idPrefix = prefix
	return n
}

// PrettyPrint indents HTML output. It has no effect on Markdown.
func (c *Converter) PrettyPrint() *Converter {
	n := c.clone()
	n.options.prettyPrint = true
	return n
}

// TrackedChangeTokens emits tracked insertions and deletions as
// [[DOCX_INS_START:...]] and [[DOCX_DEL_START:...]] tokens carrying the
// change author and date. Without it insertions are kept as plain content
// and deletions are dropped.
func (c *Converter) TrackedChangeTokens() *Converter {
	n := c.clone()
	n.options.trackedChangeTokens = true
	return n
}

// CommentTokens emits comments as [[DOCX_CMT_START:...]] tokens around the
// commented range instead of a list of comments after the content. Use
// convert.ScanTokens to read them back.
func (c *Converter) CommentTokens() *Converter {
	n := c.clone()
	n.options.commentTokens = true
	return n
}

// ImageConverter sets the function used to render images. The default
// embeds images as data URIs.
//
// Example:
//
//	docxmark.Open("doc.docx").ImageConverter(convert.ImgElement(
//	    func(ctx context.Context, img *model.Image) (markup.Attributes, error) {
//	        return markup.Attributes{{Name: "src", Value: upload(ctx, img)}}, nil
//	    }))
func (c *Converter) ImageConverter(fn convert.ImageConverter) *Converter {
	n := c.clone()
	n.options.imageConverter = fn
	return n
}

// OCRAltText fills in missing image alt text with text recognized in the
// image. Recognition requires a build with the ocr tag; otherwise images
// keep their alt text unchanged.
func (c *Converter) OCRAltText() *Converter {
	n := c.clone()
	n.options.ocrAltText = true
	return n
}

// OCRLanguage sets the Tesseract language(s) used by OCRAltText, such as
// "eng" or "eng+deu".
func (c *Converter) OCRLanguage(lang string) *Converter {
	n := c.clone()
	n.options.ocrLanguage = lang
	return n
}

// OCRPageSegMode sets the Tesseract page segmentation mode used by
// OCRAltText by name: auto, single-block, single-line, single-word, sparse
// or raw-line.
func (c *Converter) OCRPageSegMode(name string) *Converter {
	n := c.clone()
	mode, ok := ocr.ParsePageSegMode(name)
	if !ok && n.err == nil {
		n.err = fmt.Errorf("%w: %q", ErrUnknownPageSegMode, name)
	}
	n.options.ocrPageSegMode = mode
	return n
}

// TransformDocument adds a function applied to every element of the
// document, children first, before conversion. Multiple calls are applied
// in order.
//
// Example:
//
//	docxmark.Open("doc.docx").TransformDocument(model.TransformParagraphs(
//	    func(p *model.Paragraph) model.Element {
//	        if p.Alignment == "center" && p.StyleID == "" {
//	            p.StyleID, p.StyleName = "Heading2", "Heading 2"
//	        }
//	        return p
//	    }))
func (c *Converter) TransformDocument(fn func(model.Element) model.Element) *Converter {
	n := c.clone()
	if fn == nil {
		if n.err == nil {
			n.err = errors.New("docxmark: nil document transform")
		}
		return n
	}
	n.options.transforms = append(n.options.transforms, fn)
	return n
}

// ExternalFileAccess allows images linked to files outside the package to be
// read from disk, relative to the document. Disabled by default.
func (c *Converter) ExternalFileAccess(allow bool) *Converter {
	n := c.clone()
	n.options.externalFileAccess = allow
	return n
}

// MarkdownEngine selects how ToMarkdown writes Markdown: MarkdownNative
// (the default) or MarkdownFromHTML.
func (c *Converter) MarkdownEngine(name string) *Converter {
	n := c.clone()
	switch name {
	case MarkdownNative, MarkdownFromHTML:
		n.options.markdownEngine = name
	default:
		if n.err == nil {
			n.err = fmt.Errorf("%w: %q", ErrUnknownMarkdownEngine, name)
		}
	}
	return n
}

// Logger sets the logger used for debug output. By default nothing is
// logged.
func (c *Converter) Logger(l *slog.Logger) *Converter {
	n := c.clone()
	n.options.logger = l
	return n
}

// ConversionID sets the id attached to log lines and spans. By default each
// terminal operation generates a new one with NewConversionID.
func (c *Converter) ConversionID(id string) *Converter {
	n := c.clone()
	n.id = id
	return n
}

// ============================================================================
// Terminal Operations
// ============================================================================

// ToHTML converts the document to HTML.
//
// Returns the HTML, the warnings and errors encountered during conversion,
// and an error if the document could not be read. Messages indicate
// degraded output such as an unrecognised style or an unreadable image.
//
// Example:
//
//	html, messages, err := docxmark.Open("document.docx").ToHTML(ctx)
//	if len(messages) > 0 {
//	    log.Println("Messages:", docxmark.FormatMessages(messages))
//	}
func (c *Converter) ToHTML(ctx context.Context) (string, []result.Message, error) {
	return c.render(ctx, "html", markup.FormatHTML, c.options.prettyPrint)
}

// ToMarkdown converts the document to Markdown.
//
// Example:
//
//	markdown, _, err := docxmark.Open("document.docx").ToMarkdown(ctx)
func (c *Converter) ToMarkdown(ctx context.Context) (string, []result.Message, error) {
	if c.err == nil && c.options.markdownEngine == MarkdownFromHTML {
		return c.markdownFromHTML(ctx)
	}
	return c.render(ctx, "markdown", markup.FormatMarkdown, false)
}

func (c *Converter) markdownFromHTML(ctx context.Context) (string, []result.Message, error) {
	html, messages, err := c.render(ctx, "markdown", markup.FormatHTML, false)
	if err != nil {
		return "", messages, err
	}
	markdown, err := md.NewConverter("", true, nil).ConvertString(html)
	if err != nil {
		return "", messages, fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return markdown, messages, nil
}

// RawText extracts the text of the document, ignoring all formatting. Each
// paragraph is followed by a blank line.
//
// Example:
//
//	text, _, err := docxmark.Open("document.docx").RawText(ctx)
func (c *Converter) RawText(ctx context.Context) (string, []result.Message, error) {
	if c.err != nil {
		return "", nil, c.err
	}
	id := c.conversionID()
	doc, _, messages, err := c.read(ctx, id)
	if err == nil {
		c.logger().Debug("extracted raw text", "conversion_id", id)
	}
	recordConversion(ctx, "text", messages, err)
	if err != nil {
		return "", messages, err
	}
	return RawText(doc), messages, nil
}

// Document reads the document and applies any TransformDocument functions,
// returning the tree that would be converted.
func (c *Converter) Document(ctx context.Context) (*model.Document, []result.Message, error) {
	if c.err != nil {
		return nil, nil, c.err
	}
	doc, _, messages, err := c.read(ctx, c.conversionID())
	if err != nil {
		return nil, messages, err
	}
	return doc, messages, nil
}

// EmbeddedStyleMap returns the style map embedded in the document, or ""
// when there is none.
func (c *Converter) EmbeddedStyleMap(ctx context.Context) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	pkg, err := c.openPackage()
	if err != nil {
		return "", err
	}
	text, _, err := docx.ReadStyleMap(pkg)
	if err != nil {
		return "", fmt.Errorf("reading embedded style map: %w", err)
	}
	return text, nil
}

// EmbedStyleMap stores styleMap in the document and returns the updated
// package as .docx bytes. A later conversion of those bytes uses the
// embedded map unless IncludeEmbeddedStyleMap(false) is set.
//
// Example:
//
//	data, err := docxmark.Open("in.docx").EmbedStyleMap(ctx, "p.Aside => aside > p:fresh")
//	err = os.WriteFile("out.docx", data, 0o644)
func (c *Converter) EmbedStyleMap(ctx context.Context, styleMap string) ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	id := c.conversionID()
	ctx, span := startSpan(ctx, "docxmark.write", id)
	data, err := c.embedStyleMap(ctx, styleMap)
	endSpan(span, err)
	recordConversion(ctx, "embed-style-map", nil, err)
	if err == nil {
		c.logger().Debug("embedded style map", "conversion_id", id, "bytes", len(data))
	}
	return data, err
}

func (c *Converter) embedStyleMap(ctx context.Context, styleMap string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pkg, err := c.openPackage()
	if err != nil {
		return nil, err
	}
	if err := docx.WriteStyleMap(pkg, styleMap); err != nil {
		return nil, err
	}
	return pkg.Bytes()
}

// ============================================================================
// Internals
// ============================================================================

func (c *Converter) conversionID() string {
	if c.id != "" {
		return c.id
	}
	return NewConversionID()
}

func (c *Converter) logger() *slog.Logger {
	if c.options.logger != nil {
		return c.options.logger
	}
	return discardLogger
}

var discardLogger = slog.New(slog.DiscardHandler)

// openPackage opens the input as a package. Inputs that are recognizably
// another format are rejected before the zip is read.
func (c *Converter) openPackage() (docx.Package, error) {
	switch {
	case c.pkg != nil:
		return c.pkg, nil
	case c.data != nil:
		if f := format.DetectBytes(c.data); f != format.Unknown && !f.IsWordprocessing() {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
		}
		return docx.OpenBytes(c.data)
	case c.filename != "":
		if f := format.Detect(c.filename); f != format.Unknown && !f.IsWordprocessing() {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
		}
		return docx.OpenFile(c.filename)
	default:
		return nil, ErrEmptyInput
	}
}

// read opens the package and reads the document, applying transforms.
func (c *Converter) read(ctx context.Context, id string) (*model.Document, docx.Package, []result.Message, error) {
	ctx, span := startSpan(ctx, "docxmark.read", id, attribute.String("docxmark.path", c.filename))
	doc, pkg, messages, err := c.readPackage(ctx)
	endSpan(span, err)
	if err != nil {
		c.logger().Debug("read failed", "conversion_id", id, "error", err)
		return nil, nil, messages, err
	}
	c.logger().Debug("read document",
		"conversion_id", id,
		"elements", len(doc.Children),
		"comments", len(doc.Comments),
		"messages", len(messages),
	)
	return doc, pkg, messages, nil
}

func (c *Converter) readPackage(ctx context.Context) (*model.Document, docx.Package, []result.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, err
	}
	pkg, err := c.openPackage()
	if err != nil {
		return nil, nil, nil, err
	}
	res, err := docx.Read(ctx, pkg, docx.ReadOptions{
		ExternalFileAccess: c.options.externalFileAccess,
		Path:               c.filename,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	doc := res.Value
	for _, fn := range c.options.transforms {
		doc = model.TransformDocument(doc, fn)
	}
	return doc, pkg, res.Messages, nil
}

// styleRules compiles the style map: caller rules, then the embedded map,
// then the defaults.
func (c *Converter) styleRules(pkg docx.Package) ([]stylemap.Rule, []result.Message, error) {
	var lines []string
	if c.options.styleMap != "" {
		lines = append(lines, stylemap.ReadLines(c.options.styleMap)...)
	}
	if c.options.includeEmbeddedStyleMap {
		embedded, ok, err := docx.ReadStyleMap(pkg)
		if err != nil {
			return nil, nil, fmt.Errorf("reading embedded style map: %w", err)
		}
		if ok {
			lines = append(lines, stylemap.ReadLines(embedded)...)
		}
	}

	res := stylemap.Parse(lines)
	rules := res.Value
	if c.options.includeDefaultStyleMap {
		rules = append(rules, stylemap.DefaultRules()...)
	}
	return rules, res.Messages, nil
}

// render reads and converts the document to the given output format.
func (c *Converter) render(ctx context.Context, operation string, out markup.Format, pretty bool) (string, []result.Message, error) {
	if c.err != nil {
		return "", nil, c.err
	}
	id := c.conversionID()
	text, messages, err := c.convert(ctx, id, out, pretty)
	recordConversion(ctx, operation, messages, err)
	if err != nil {
		return "", messages, err
	}
	c.logger().Debug("converted document",
		"conversion_id", id,
		"format", string(out),
		"warnings", len(result.Warnings(messages)),
		"errors", len(result.Errors(messages)),
	)
	return text, messages, nil
}

func (c *Converter) convert(ctx context.Context, id string, out markup.Format, pretty bool) (string, []result.Message, error) {
	doc, pkg, readMessages, err := c.read(ctx, id)
	if err != nil {
		return "", readMessages, err
	}
	rules, styleMessages, err := c.styleRules(pkg)
	if err != nil {
		return "", readMessages, err
	}

	images, closeImages := c.imageConverter()
	defer closeImages()

	ctx, span := startSpan(ctx, "docxmark.convert", id, attribute.String("docxmark.format", string(out)))
	res, err := convert.New(convert.Options{
		StyleMap:              rules,
		IDPrefix:              c.options.idPrefix,
		IgnoreEmptyParagraphs: c.options.ignoreEmptyParagraphs,
		TrackedChangeTokens:   c.options.trackedChangeTokens,
		CommentTokens:         c.options.commentTokens,
		ImageConverter:        images,
		OutputFormat:          out,
		PrettyPrint:           pretty,
	}).Convert(ctx, doc)
	endSpan(span, err)

	messages := result.CombineMessages(readMessages, styleMessages, res.Messages)
	if err != nil {
		return "", messages, err
	}
	return res.Value, messages, nil
}

// imageConverter returns the configured image converter, wrapped for OCR
// when requested, and a function releasing the OCR client.
func (c *Converter) imageConverter() (convert.ImageConverter, func()) {
	images := c.options.imageConverter
	if images == nil {
		images = convert.DataURI
	}
	if !c.options.ocrAltText {
		return images, func() {}
	}
	client, err := ocr.New()
	if err != nil {
		if !errors.Is(err, ocr.ErrOCRNotEnabled) {
			c.logger().Warn("OCR unavailable", "error", err)
		}
		return images, func() {}
	}
	if lang := c.options.ocrLanguage; lang != "" {
		if err := client.SetLanguage(lang); err != nil {
			c.logger().Warn("setting OCR language", "language", lang, "error", err)
		}
	}
	if err := client.SetPageSegMode(c.options.ocrPageSegMode); err != nil {
		c.logger().Warn("setting OCR page segmentation mode", "error", err)
	}
	return convert.OCRAltText(images, client), func() { _ = client.Close() }
}
