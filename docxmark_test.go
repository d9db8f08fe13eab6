package docxmark

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/docxmark/docx"
	"github.com/tsawler/docxmark/model"
	"github.com/tsawler/docxmark/result"
)

const testNamespaces = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`

const testContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const testPackageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const testStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles ` + testNamespaces + `>
  <w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/></w:style>
  <w:style w:type="paragraph" w:styleId="Aside"><w:name w:val="Aside"/></w:style>
</w:styles>`

func paragraph(style, text string) string {
	var pPr string
	if style != "" {
		pPr = `<w:pPr><w:pStyle w:val="` + style + `"/></w:pPr>`
	}
	return `<w:p>` + pPr + `<w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}

// createTestDOCX builds .docx bytes whose body holds the given content.
func createTestDOCX(t *testing.T, body string) []byte {
	t.Helper()

	files := map[string]string{
		"[Content_Types].xml": testContentTypes,
		"_rels/.rels":         testPackageRels,
		"word/styles.xml":     testStyles,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document ` + testNamespaces + `><w:body>` + body + `</w:body></w:document>`,
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

func TestOpen(t *testing.T) {
	_, _, err := Open("nonexistent.docx").ToHTML(context.Background())
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.docx")
	if err := os.WriteFile(path, createTestDOCX(t, paragraph("", "From disk")), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	html, _, err := Open(path).ToHTML(context.Background())
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	if html != "<p>From disk</p>" {
		t.Errorf("ToHTML() = %q, want %q", html, "<p>From disk</p>")
	}
}

func TestUnsupportedFormat(t *testing.T) {
	tests := []struct {
		name string
		conv *Converter
	}{
		{"workbook extension", Open("book.xlsx")},
		{"pdf bytes", FromBytes([]byte("%PDF-1.7\n"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.conv.ToHTML(context.Background())
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("ToHTML() error = %v, want ErrUnsupportedFormat", err)
			}
		})
	}
}

func TestEmptyInput(t *testing.T) {
	if _, _, err := FromBytes(nil).ToHTML(context.Background()); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("FromBytes(nil) error = %v, want ErrEmptyInput", err)
	}
	if _, _, err := FromPackage(nil).RawText(context.Background()); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("FromPackage(nil) error = %v, want ErrEmptyInput", err)
	}
}

func TestToHTML(t *testing.T) {
	data := createTestDOCX(t, paragraph("Heading1", "Title")+paragraph("", "Body"))

	html, messages, err := FromBytes(data).ToHTML(context.Background())
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	if want := "<h1>Title</h1><p>Body</p>"; html != want {
		t.Errorf("ToHTML() = %q, want %q", html, want)
	}
	if len(messages) != 0 {
		t.Errorf("expected no messages, got %v", messages)
	}
}

func TestToHTML_UnrecognisedStyle(t *testing.T) {
	data := createTestDOCX(t, paragraph("Aside", "Note"))

	html, messages, err := FromBytes(data).ToHTML(context.Background())
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	if html != "<p>Note</p>" {
		t.Errorf("ToHTML() = %q, want %q", html, "<p>Note</p>")
	}
	want := "Unrecognised paragraph style: 'Aside' (Style ID: Aside)"
	if len(messages) != 1 || messages[0].Message != want {
		t.Errorf("expected one warning %q, got %v", want, messages)
	}
}

func TestToHTML_UndefinedStyle(t *testing.T) {
	data := createTestDOCX(t, paragraph("Missing", "Note"))

	html, messages, err := FromBytes(data).ToHTML(context.Background())
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	if html != "<p>Note</p>" {
		t.Errorf("ToHTML() = %q, want %q", html, "<p>Note</p>")
	}
	want := []string{
		"Paragraph style with ID Missing was referenced but not defined in the document",
		"Unrecognised paragraph style: '' (Style ID: Missing)",
	}
	if len(messages) != len(want) {
		t.Fatalf("expected %d warnings, got %v", len(want), messages)
	}
	for i, w := range want {
		if messages[i].Message != w {
			t.Errorf("messages[%d] = %q, want %q", i, messages[i].Message, w)
		}
	}
}

func TestStyleMap(t *testing.T) {
	data := createTestDOCX(t, paragraph("Heading1", "Title")+paragraph("Aside", "Note"))

	html, messages, err := FromBytes(data).
		StyleMap("p[style-name='heading 1'] => h2:fresh").
		StyleMap("p.Aside => aside > p:fresh").
		ToHTML(context.Background())
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	if want := "<h2>Title</h2><aside><p>Note</p></aside>"; html != want {
		t.Errorf("ToHTML() = %q, want %q", html, want)
	}
	if len(messages) != 0 {
		t.Errorf("expected no messages, got %v", messages)
	}
}

func TestStyleMap_MalformedLine(t *testing.T) {
	data := createTestDOCX(t, paragraph("Aside", "Note"))

	html, messages, err := FromBytes(data).
		StyleMap("!!!\np.Aside => aside:fresh").
		ToHTML(context.Background())
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	if html != "<aside>Note</aside>" {
		t.Errorf("ToHTML() = %q, want %q", html, "<aside>Note</aside>")
	}
	if len(messages) != 1 || !strings.HasPrefix(messages[0].Message,
		"Did not understand this style mapping, so ignored it: !!!") {
		t.Errorf("expected one style map warning, got %v", messages)
	}
}

func TestIncludeDefaultStyleMap(t *testing.T) {
	data := createTestDOCX(t, paragraph("Heading1", "Title"))

	html, messages, err := FromBytes(data).IncludeDefaultStyleMap(false).ToHTML(context.Background())
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	if html != "<p>Title</p>" {
		t.Errorf("ToHTML() = %q, want %q", html, "<p>Title</p>")
	}
	if len(result.Warnings(messages)) != 1 {
		t.Errorf("expected one warning, got %v", messages)
	}
}

func TestEmbedStyleMap(t *testing.T) {
	ctx := context.Background()
	data := createTestDOCX(t, paragraph("Aside", "Note"))

	embedded, err := FromBytes(data).EmbedStyleMap(ctx, "p.Aside => aside:fresh")
	if err != nil {
		t.Fatalf("EmbedStyleMap() error = %v", err)
	}

	styleMap, err := FromBytes(embedded).EmbeddedStyleMap(ctx)
	if err != nil {
		t.Fatalf("EmbeddedStyleMap() error = %v", err)
	}
	if styleMap != "p.Aside => aside:fresh" {
		t.Errorf("EmbeddedStyleMap() = %q", styleMap)
	}

	html, _, err := FromBytes(embedded).ToHTML(ctx)
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	if html != "<aside>Note</aside>" {
		t.Errorf("ToHTML() with embedded map = %q, want %q", html, "<aside>Note</aside>")
	}

	// Caller rules take precedence over the embedded map.
	html, _, err = FromBytes(embedded).StyleMap("p.Aside => blockquote:fresh").ToHTML(ctx)
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	if html != "<blockquote>Note</blockquote>" {
		t.Errorf("ToHTML() with caller map = %q", html)
	}

	html, _, err = FromBytes(embedded).IncludeEmbeddedStyleMap(false).ToHTML(ctx)
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	if html != "<p>Note</p>" {
		t.Errorf("ToHTML() without embedded map = %q, want %q", html, "<p>Note</p>")
	}
}

func TestEmbeddedStyleMap_None(t *testing.T) {
	styleMap, err := FromBytes(createTestDOCX(t, paragraph("", "x"))).EmbeddedStyleMap(context.Background())
	if err != nil {
		t.Fatalf("EmbeddedStyleMap() error = %v", err)
	}
	if styleMap != "" {
		t.Errorf("EmbeddedStyleMap() = %q, want empty", styleMap)
	}
}

func TestToMarkdown(t *testing.T) {
	data := createTestDOCX(t, paragraph("Heading1", "Title")+paragraph("", "Body"))

	markdown, _, err := FromBytes(data).ToMarkdown(context.Background())
	if err != nil {
		t.Fatalf("ToMarkdown() error = %v", err)
	}
	if want := "# Title\n\nBody\n\n"; markdown != want {
		t.Errorf("ToMarkdown() = %q, want %q", markdown, want)
	}
}

func TestToMarkdown_FromHTML(t *testing.T) {
	data := createTestDOCX(t, paragraph("Heading1", "Title")+paragraph("", "Body"))

	markdown, _, err := FromBytes(data).MarkdownEngine(MarkdownFromHTML).ToMarkdown(context.Background())
	if err != nil {
		t.Fatalf("ToMarkdown() error = %v", err)
	}
	if !strings.Contains(markdown, "# Title") || !strings.Contains(markdown, "Body") {
		t.Errorf("ToMarkdown() = %q, want heading and body", markdown)
	}
}

func TestMarkdownEngine_Unknown(t *testing.T) {
	data := createTestDOCX(t, paragraph("", "Body"))

	_, _, err := FromBytes(data).MarkdownEngine("pandoc").ToMarkdown(context.Background())
	if !errors.Is(err, ErrUnknownMarkdownEngine) {
		t.Errorf("ToMarkdown() error = %v, want ErrUnknownMarkdownEngine", err)
	}
}

func TestOCRPageSegMode_Unknown(t *testing.T) {
	data := createTestDOCX(t, paragraph("", "Body"))

	_, _, err := FromBytes(data).OCRAltText().OCRPageSegMode("diagonal").ToHTML(context.Background())
	if !errors.Is(err, ErrUnknownPageSegMode) {
		t.Errorf("ToHTML() error = %v, want ErrUnknownPageSegMode", err)
	}
}

func TestOCRAltText_Options(t *testing.T) {
	data := createTestDOCX(t, paragraph("", "Body"))

	html, _, err := FromBytes(data).
		OCRAltText().
		OCRLanguage("eng").
		OCRPageSegMode("sparse").
		ToHTML(context.Background())
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	if html != "<p>Body</p>" {
		t.Errorf("ToHTML() = %q, want %q", html, "<p>Body</p>")
	}
}

func TestRawText(t *testing.T) {
	body := `<w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc>` + paragraph("", "cell") + `</w:tc></w:tr></w:tbl>`

	text, _, err := FromBytes(createTestDOCX(t, body)).RawText(context.Background())
	if err != nil {
		t.Fatalf("RawText() error = %v", err)
	}
	if want := "a\tb\n\ncell\n\n"; text != want {
		t.Errorf("RawText() = %q, want %q", text, want)
	}
}

func TestIgnoreEmptyParagraphs(t *testing.T) {
	data := createTestDOCX(t, `<w:p/>`+paragraph("", "x"))
	ctx := context.Background()

	html, _, err := FromBytes(data).ToHTML(ctx)
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	if html != "<p>x</p>" {
		t.Errorf("ToHTML() = %q, want %q", html, "<p>x</p>")
	}

	html, _, err = FromBytes(data).IgnoreEmptyParagraphs(false).ToHTML(ctx)
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	if html != "<p></p><p>x</p>" {
		t.Errorf("ToHTML() = %q, want %q", html, "<p></p><p>x</p>")
	}
}

func TestTransformDocument(t *testing.T) {
	data := createTestDOCX(t, paragraph("", "hello"))

	upper := func(e model.Element) model.Element {
		if txt, ok := e.(*model.Text); ok {
			return &model.Text{Value: strings.ToUpper(txt.Value)}
		}
		return e
	}
	toHeading := model.TransformParagraphs(func(p *model.Paragraph) model.Element {
		p.StyleID, p.StyleName = "Heading1", "heading 1"
		return p
	})

	html, _, err := FromBytes(data).TransformDocument(upper).TransformDocument(toHeading).ToHTML(context.Background())
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	if html != "<h1>HELLO</h1>" {
		t.Errorf("ToHTML() = %q, want %q", html, "<h1>HELLO</h1>")
	}
}

func TestDocument(t *testing.T) {
	data := createTestDOCX(t, paragraph("Heading1", "Title"))

	doc, _, err := FromBytes(data).Document(context.Background())
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	if len(doc.Children) != 1 {
		t.Fatalf("expected 1 element, got %d", len(doc.Children))
	}
	p, ok := doc.Children[0].(*model.Paragraph)
	if !ok || p.StyleID != "Heading1" {
		t.Errorf("expected Heading1 paragraph, got %#v", doc.Children[0])
	}
}

func TestFromPackage(t *testing.T) {
	pkg, err := docx.OpenBytes(createTestDOCX(t, paragraph("", "shared")))
	if err != nil {
		t.Fatalf("OpenBytes() error = %v", err)
	}
	text, _, err := FromPackage(pkg).RawText(context.Background())
	if err != nil {
		t.Fatalf("RawText() error = %v", err)
	}
	if text != "shared\n\n" {
		t.Errorf("RawText() = %q, want %q", text, "shared\n\n")
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := FromBytes(createTestDOCX(t, paragraph("", "x"))).ToHTML(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ToHTML() error = %v, want context.Canceled", err)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, _, err := FromBytes(createTestDOCX(t, paragraph("", "x"))).
		Logger(logger).
		ConversionID("conv-1").
		ToHTML(context.Background())
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "conversion_id=conv-1") || !strings.Contains(out, "converted document") {
		t.Errorf("unexpected log output: %s", out)
	}
}

func TestChainImmutability(t *testing.T) {
	base := FromBytes(nil)

	withMap := base.StyleMap("p => p")
	withPrefix := base.IDPrefix("doc-")
	withTransform := base.TransformDocument(func(e model.Element) model.Element { return e })

	if base.options.styleMap != "" || base.options.idPrefix != "" || len(base.options.transforms) != 0 {
		t.Error("base converter should be unchanged")
	}
	if withMap.options.styleMap != "p => p" || withMap.options.idPrefix != "" {
		t.Error("withMap should only have the style map")
	}
	if withPrefix.options.idPrefix != "doc-" || withPrefix.options.styleMap != "" {
		t.Error("withPrefix should only have the prefix")
	}
	if len(withTransform.options.transforms) != 1 {
		t.Error("withTransform should have one transform")
	}
}

func TestNilTransform(t *testing.T) {
	_, _, err := FromBytes(createTestDOCX(t, paragraph("", "x"))).TransformDocument(nil).ToHTML(context.Background())
	if err == nil {
		t.Error("expected error for nil transform")
	}
}

func TestNewConversionID(t *testing.T) {
	a, b := NewConversionID(), NewConversionID()
	if len(a) != 36 || a == b {
		t.Errorf("NewConversionID() = %q, %q; want distinct UUIDs", a, b)
	}
}

func TestFormatMessages(t *testing.T) {
	msgs := []result.Message{
		result.Warning("first"),
		result.Error(errors.New("second")),
	}
	if got, want := FormatMessages(msgs), "warning: first\nerror: second"; got != want {
		t.Errorf("FormatMessages() = %q, want %q", got, want)
	}
	if FormatMessages(nil) != "" {
		t.Error("FormatMessages(nil) should be empty")
	}
	if !HasErrors(msgs) || HasErrors(msgs[:1]) {
		t.Error("HasErrors() gave the wrong answer")
	}
}

func TestMust(t *testing.T) {
	if got := Must("hello", nil); got != "hello" {
		t.Errorf("expected 'hello', got %q", got)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected Must to panic on error")
		}
	}()
	Must("", os.ErrNotExist)
}

func TestMustText(t *testing.T) {
	html := MustText(FromBytes(createTestDOCX(t, paragraph("", "x"))).ToHTML(context.Background()))
	if html != "<p>x</p>" {
		t.Errorf("MustText() = %q, want %q", html, "<p>x</p>")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected MustText to panic on error")
		}
	}()
	MustText(Open("nonexistent.docx").ToHTML(context.Background()))
}
