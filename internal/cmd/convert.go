package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/docxmark"
	"github.com/tsawler/docxmark/convert"
	"github.com/tsawler/docxmark/markup"
	"github.com/tsawler/docxmark/model"
	"github.com/tsawler/docxmark/result"
)

// ConversionFlags are shared by the html, markdown and text commands.
type ConversionFlags struct {
	File   string `arg:"" help:"Path to the .docx file" type:"existingfile"`
	Output string `short:"o" help:"Write output to this file instead of stdout" type:"path"`

	StyleMap                string `help:"File of style mapping rules, one per line" type:"existingfile" name:"style-map"`
	NoDefaultStyleMap       bool   `help:"Do not append the default style map" name:"no-default-style-map"`
	NoEmbeddedStyleMap      bool   `help:"Ignore a style map stored in the document" name:"no-embedded-style-map"`
	PreserveEmptyParagraphs bool   `help:"Keep paragraphs without content" name:"preserve-empty-paragraphs"`
	IDPrefix                string `help:"Prefix for generated note and comment ids" name:"id-prefix"`
	TrackedChanges          bool   `help:"Mark insertions and deletions with text tokens" name:"tracked-changes"`
	Comments                bool   `help:"Mark comment ranges with text tokens" name:"comments"`
	ImageDir                string `help:"Write images to this directory and reference them by file name" name:"image-dir" type:"path"`
	OCR                     bool   `help:"Use OCR to fill in missing image alt text" name:"ocr"`
	OCRLanguage             string `help:"Tesseract language for --ocr, such as eng or eng+deu" name:"ocr-lang"`
	OCRPageSegMode          string `help:"Tesseract page segmentation mode for --ocr: auto, single-block, single-line, single-word, sparse or raw-line" name:"ocr-psm"`
	ExternalFiles           bool   `help:"Allow images linked from outside the document to be read" name:"external-files"`
}

// converter builds a Converter from the config file and the flags. Rules
// from --style-map take precedence over configured rules.
func (f *ConversionFlags) converter(root *RootFlags) (*docxmark.Converter, error) {
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}

	conv := docxmark.Open(f.File).Logger(slog.Default())
	if f.StyleMap != "" {
		data, err := os.ReadFile(f.StyleMap)
		if err != nil {
			return nil, fmt.Errorf("reading style map: %w", err)
		}
		conv = conv.StyleMap(string(data))
	}
	conv = cfg.Apply(conv)

	if f.NoDefaultStyleMap {
		conv = conv.IncludeDefaultStyleMap(false)
	}
	if f.NoEmbeddedStyleMap {
		conv = conv.IncludeEmbeddedStyleMap(false)
	}
	if f.PreserveEmptyParagraphs {
		conv = conv.IgnoreEmptyParagraphs(false)
	}
	if f.IDPrefix != "" {
		conv = conv.IDPrefix(f.IDPrefix)
	}
	if f.TrackedChanges {
		conv = conv.TrackedChangeTokens()
	}
	if f.Comments {
		conv = conv.CommentTokens()
	}
	if f.ExternalFiles {
		conv = conv.ExternalFileAccess(true)
	}
	if f.ImageDir != "" {
		if err := os.MkdirAll(f.ImageDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating image directory: %w", err)
		}
		conv = conv.ImageConverter(imageFiles(f.ImageDir))
	}
	if f.OCR {
		conv = conv.OCRAltText()
	}
	if f.OCRLanguage != "" {
		conv = conv.OCRLanguage(f.OCRLanguage)
	}
	if f.OCRPageSegMode != "" {
		conv = conv.OCRPageSegMode(f.OCRPageSegMode)
	}
	return conv, nil
}

// imageFiles writes each image to dir as 1.png, 2.jpeg and so on.
func imageFiles(dir string) convert.ImageConverter {
	n := 0
	return convert.ImgElement(func(ctx context.Context, img *model.Image) (markup.Attributes, error) {
		data, err := img.Read(ctx)
		if err != nil {
			return nil, err
		}
		contentType := img.ContentType
		if contentType == "" {
			contentType = convert.SniffContentType(data)
		}
		ext := strings.TrimPrefix(contentType, "image/")
		if ext == contentType || ext == "" {
			ext = "bin"
		}

		n++
		name := fmt.Sprintf("%d.%s", n, ext)
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return nil, fmt.Errorf("writing image: %w", err)
		}
		return markup.Attributes{{Name: "src", Value: name}}, nil
	})
}

// emit writes out to the output file or stdout and prints messages to
// stderr.
func (f *ConversionFlags) emit(std streams, out string, msgs []result.Message) error {
	if len(msgs) > 0 {
		_, _ = fmt.Fprintln(std.Err, docxmark.FormatMessages(msgs))
	}
	if f.Output != "" {
		return os.WriteFile(f.Output, []byte(out), 0o644)
	}
	_, err := fmt.Fprint(std.Out, out)
	return err
}

type HTMLCmd struct {
	ConversionFlags `embed:""`

	Pretty bool `help:"Indent the HTML output" name:"pretty"`
}

func (c *HTMLCmd) Run(ctx context.Context, root *RootFlags, std streams) error {
	conv, err := c.converter(root)
	if err != nil {
		return err
	}
	if c.Pretty {
		conv = conv.PrettyPrint()
	}
	out, msgs, err := conv.ToHTML(ctx)
	if err != nil {
		return err
	}
	return c.emit(std, out, msgs)
}

type MarkdownCmd struct {
	ConversionFlags `embed:""`

	Engine string `help:"Markdown writer: native or html-to-markdown" name:"engine"`
}

func (c *MarkdownCmd) Run(ctx context.Context, root *RootFlags, std streams) error {
	conv, err := c.converter(root)
	if err != nil {
		return err
	}
	if c.Engine != "" {
		conv = conv.MarkdownEngine(c.Engine)
	}
	out, msgs, err := conv.ToMarkdown(ctx)
	if err != nil {
		return err
	}
	return c.emit(std, out, msgs)
}

type TextCmd struct {
	ConversionFlags `embed:""`
}

func (c *TextCmd) Run(ctx context.Context, root *RootFlags, std streams) error {
	conv, err := c.converter(root)
	if err != nil {
		return err
	}
	out, msgs, err := conv.RawText(ctx)
	if err != nil {
		return err
	}
	return c.emit(std, out, msgs)
}
