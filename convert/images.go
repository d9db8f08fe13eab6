package convert

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/docxmark/markup"
	"github.com/tsawler/docxmark/model"
)

// ImageConverter renders an image. It is called once per image, in document
// order, after the rest of the document has been converted. A returned error
// is reported as an error message and the image renders as nothing.
type ImageConverter func(ctx context.Context, img *model.Image) ([]markup.Node, error)

// ImgElement builds an ImageConverter that writes an img element. The alt
// attribute is taken from the image and may be overridden by attributes.
func ImgElement(attributes func(ctx context.Context, img *model.Image) (markup.Attributes, error)) ImageConverter {
	return func(ctx context.Context, img *model.Image) ([]markup.Node, error) {
		extra, err := attributes(ctx, img)
		if err != nil {
			return nil, err
		}
		var a markup.Attributes
		if img.AltText != "" {
			a = a.With("alt", img.AltText)
		}
		return []markup.Node{markup.FreshElement("img", a.Merge(extra))}, nil
	}
}

// DataURI embeds the image bytes in the src attribute as base64.
var DataURI = ImgElement(func(ctx context.Context, img *model.Image) (markup.Attributes, error) {
	data, err := img.Read(ctx)
	if err != nil {
		return nil, err
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = SniffContentType(data)
	}
	return markup.Attributes{{Name: "src", Value: "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)}}, nil
})

// SniffContentType guesses the content type of image data from its header.
// It recognizes GIF, JPEG, PNG, BMP, TIFF and WebP and falls back to
// application/octet-stream.
func SniffContentType(data []byte) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "application/octet-stream"
	}
	return "image/" + format
}

// Recognizer reads text from image data. *ocr.Client implements it.
type Recognizer interface {
	RecognizeImage(data []byte) (string, error)
}

// OCRAltText wraps inner so that images without alt text are given the text
// recognized in them. Recognition failures, including ocr.ErrOCRNotEnabled,
// leave the alt text empty.
func OCRAltText(inner ImageConverter, r Recognizer) ImageConverter {
	return func(ctx context.Context, img *model.Image) ([]markup.Node, error) {
		if strings.TrimSpace(img.AltText) != "" || r == nil {
			return inner(ctx, img)
		}

		data, err := img.Read(ctx)
		if err != nil {
			return nil, err
		}
		withAlt := *img
		withAlt.Read = func(context.Context) ([]byte, error) { return data, nil }
		if text, err := r.RecognizeImage(data); err == nil {
			withAlt.AltText = strings.Join(strings.Fields(text), " ")
		}
		return inner(ctx, &withAlt)
	}
}
