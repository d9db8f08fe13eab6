// Package format detects whether a file is a Word document before it is
// handed to the docx reader.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
)

// Format represents a document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// DOCX indicates a Word document (.docx).
	DOCX
	// DOCM indicates a macro-enabled Word document (.docm).
	DOCM
	// DOTX indicates a Word template (.dotx).
	DOTX
	// XLSX indicates an Excel workbook (.xlsx).
	XLSX
	// PPTX indicates a PowerPoint presentation (.pptx).
	PPTX
	// ODT indicates an OpenDocument Text document (.odt).
	ODT
	// PDF indicates a PDF document.
	PDF
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case DOCX:
		return "DOCX"
	case DOCM:
		return "DOCM"
	case DOTX:
		return "DOTX"
	case XLSX:
		return "XLSX"
	case PPTX:
		return "PPTX"
	case ODT:
		return "ODT"
	case PDF:
		return "PDF"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case DOCX:
		return ".docx"
	case DOCM:
		return ".docm"
	case DOTX:
		return ".dotx"
	case XLSX:
		return ".xlsx"
	case PPTX:
		return ".pptx"
	case ODT:
		return ".odt"
	case PDF:
		return ".pdf"
	default:
		return ""
	}
}

// IsWordprocessing reports whether documents of this format can be
// converted.
func (f Format) IsWordprocessing() bool {
	return f == DOCX || f == DOCM || f == DOTX
}

// Detect determines the format from the filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".docx":
		return DOCX
	case ".docm":
		return DOCM
	case ".dotx":
		return DOTX
	case ".xlsx":
		return XLSX
	case ".pptx":
		return PPTX
	case ".odt":
		return ODT
	case ".pdf":
		return PDF
	default:
		return Unknown
	}
}

// Main part content types, keyed to the format they identify.
var mainContentTypes = map[string]Format{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml":   DOCX,
	"application/vnd.ms-word.document.macroEnabled.main+xml":                             DOCM,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.template.main+xml":   DOTX,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml":         XLSX,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml": PPTX,
}

var (
	pdfMagic = []byte("%PDF")
	zipMagic = []byte("PK\x03\x04")
)

// DetectBytes inspects the content of a file to determine its format.
// OOXML packages are told apart by the content type of their main part.
func DetectBytes(data []byte) Format {
	f, _ := DetectFromReader(bytes.NewReader(data), int64(len(data)))
	return f
}

// IsWordprocessing reports whether data holds a Word document package.
func IsWordprocessing(data []byte) bool {
	return DetectBytes(data).IsWordprocessing()
}

// DetectFromReader inspects the content read from r to determine its
// format. An error is returned only when r itself fails or the zip
// directory cannot be read.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 4)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	switch {
	case bytes.Equal(magic, pdfMagic):
		return PDF, nil
	case bytes.Equal(magic, zipMagic):
		return detectZIPFormat(r, size)
	default:
		return Unknown, nil
	}
}

// detectZIPFormat inspects a zip archive to determine which OOXML or
// OpenDocument format it holds.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	var fallback Format
	for _, f := range zr.File {
		switch {
		case f.Name == "mimetype":
			if strings.HasPrefix(readSmall(f), "application/vnd.oasis.opendocument.text") {
				return ODT, nil
			}
		case f.Name == "[Content_Types].xml":
			if format := mainContentType(readSmall(f)); format != Unknown {
				return format, nil
			}
		case fallback == Unknown && strings.HasPrefix(f.Name, "word/"):
			fallback = DOCX
		case fallback == Unknown && strings.HasPrefix(f.Name, "xl/"):
			fallback = XLSX
		case fallback == Unknown && strings.HasPrefix(f.Name, "ppt/"):
			fallback = PPTX
		}
	}
	return fallback, nil
}

// maxManifestSize caps how much of [Content_Types].xml or mimetype is read.
const maxManifestSize = 1 << 20

func readSmall(f *zip.File) string {
	rc, err := f.Open()
	if err != nil {
		return ""
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxManifestSize))
	if err != nil {
		return ""
	}
	return string(data)
}

// mainContentType finds the first Override whose content type names a main
// document part.
func mainContentType(manifest string) Format {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(manifest); err != nil {
		return Unknown
	}
	root := doc.Root()
	if root == nil {
		return Unknown
	}
	for _, el := range root.ChildElements() {
		if el.Tag != "Override" {
			continue
		}
		if format, ok := mainContentTypes[el.SelectAttrValue("ContentType", "")]; ok {
			return format
		}
	}
	return Unknown
}
