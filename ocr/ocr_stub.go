//go:build !ocr

// Package ocr recognizes text in images embedded in documents, so that
// pictures without a description can still be given alt text.
//
// Without the ocr build tag there is no recognizer: New reports
// ErrOCRNotEnabled and converters leave alt text as the document gave it.
// Building with -tags ocr links Tesseract through gosseract and needs the
// Tesseract libraries installed (tesseract-ocr on Debian, tesseract on
// Homebrew).
package ocr

import "errors"

// ErrOCRNotEnabled reports a binary built without the ocr tag.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Client stands in for the Tesseract client. No usable Client exists in
// this build; its methods report ErrOCRNotEnabled.
type Client struct{}

// New always fails with ErrOCRNotEnabled, so alt text recognition is
// skipped.
func New() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close releases nothing. A nil Client is fine.
func (c *Client) Close() error { return nil }

// RecognizeImage finds no text; the image keeps its alt text.
func (c *Client) RecognizeImage(data []byte) (string, error) {
	return "", ErrOCRNotEnabled
}

func (c *Client) SetLanguage(lang string) error { return ErrOCRNotEnabled }

func (c *Client) SetPageSegMode(mode PageSegMode) error { return ErrOCRNotEnabled }
