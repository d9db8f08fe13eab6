package docxmark_test

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/tsawler/docxmark"
	"github.com/tsawler/docxmark/convert"
	"github.com/tsawler/docxmark/markup"
	"github.com/tsawler/docxmark/model"
)

// These examples verify the README code samples compile correctly.
// They are not meant to be run as actual tests since they require files.

func Example_convertToHTML() {
	ctx := context.Background()
	html, messages, err := docxmark.Open("document.docx").ToHTML(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(html)

	for _, m := range messages {
		fmt.Println("Message:", m.Message)
	}
}

func Example_styleMap() {
	ctx := context.Background()
	html, messages, err := docxmark.Open("document.docx").
		StyleMap(`
			p[style-name='Section Title'] => h1:fresh
			p[style-name='Subsection Title'] => h2:fresh
			r[style-name='Code'] => code
		`).
		IDPrefix("doc-").
		ToHTML(ctx)
	_ = html
	_ = messages
	_ = err
}

func Example_convertToMarkdown() {
	ctx := context.Background()
	markdown, messages, err := docxmark.Open("document.docx").ToMarkdown(ctx)
	_ = markdown
	_ = messages
	_ = err

	// Render HTML first and convert it with html-to-markdown
	markdown, messages, err = docxmark.Open("document.docx").
		MarkdownEngine(docxmark.MarkdownFromHTML).
		ToMarkdown(ctx)
	_ = markdown
	_ = messages
	_ = err
}

func Example_rawText() {
	text, _, err := docxmark.Open("document.docx").RawText(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(text)
}

func Example_trackedChangesAndComments() {
	html, _, err := docxmark.Open("review.docx").
		TrackedChangeTokens().
		CommentTokens().
		ToHTML(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	tokens, err := convert.ScanTokens(html)
	if err != nil {
		log.Fatal(err)
	}
	for _, tok := range tokens {
		if tok.Start && tok.Kind == convert.TokenComment {
			comment, _ := tok.Comment()
			fmt.Println("comment", comment.ID, "by", *comment.AuthorName)
		}
	}
}

func Example_imageConverter() {
	html, _, err := docxmark.Open("document.docx").
		ImageConverter(convert.ImgElement(func(ctx context.Context, img *model.Image) (markup.Attributes, error) {
			data, err := img.Read(ctx)
			if err != nil {
				return nil, err
			}
			name := fmt.Sprintf("image-%d.bin", len(data))
			if err := os.WriteFile(name, data, 0o644); err != nil {
				return nil, err
			}
			return markup.Attributes{{Name: "src", Value: name}}, nil
		})).
		ToHTML(context.Background())
	_ = html
	_ = err
}

func Example_transformDocument() {
	html, _, err := docxmark.Open("document.docx").
		TransformDocument(model.TransformParagraphs(func(p *model.Paragraph) model.Element {
			if p.Alignment == "center" && p.StyleID == "" {
				p.StyleID, p.StyleName = "Heading2", "Heading 2"
			}
			return p
		})).
		ToHTML(context.Background())
	_ = html
	_ = err
}

func Example_embedStyleMap() {
	ctx := context.Background()
	data, err := docxmark.Open("document.docx").EmbedStyleMap(ctx, "p[style-name='Aside'] => aside:fresh")
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile("document-with-map.docx", data, 0o644); err != nil {
		log.Fatal(err)
	}

	styleMap, _ := docxmark.FromBytes(data).EmbeddedStyleMap(ctx)
	fmt.Println(styleMap)
}

func Example_errorHandling() {
	ctx := context.Background()

	// Panic on error (for scripts/tests)
	html := docxmark.MustText(docxmark.Open("document.docx").ToHTML(ctx))
	data := docxmark.Must(docxmark.Open("document.docx").EmbedStyleMap(ctx, "p.Aside => aside"))
	_ = html
	_ = data

	// Messages describe degraded output
	_, messages, err := docxmark.Open("document.docx").ToHTML(ctx)
	if err == nil && docxmark.HasErrors(messages) {
		log.Println(docxmark.FormatMessages(messages))
	}
}

func Example_logging() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	html, _, err := docxmark.Open("document.docx").
		Logger(logger).
		ToHTML(context.Background())
	_ = html
	_ = err
}
