package docx

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/docxmark/model"
	"github.com/tsawler/docxmark/result"
	"github.com/tsawler/docxmark/xmldom"
)

// ErrExternalFileAccess is returned when a linked image is read while
// external file access is disabled.
var ErrExternalFileAccess = errors.New("external file access is disabled")

var supportedImageTypes = map[string]bool{
	"image/png":     true,
	"image/gif":     true,
	"image/jpeg":    true,
	"image/svg+xml": true,
	"image/tiff":    true,
}

// ExternalFiles reads files referenced by linked images.
type ExternalFiles struct {
	// Enabled allows reading from the local file system.
	Enabled bool
	// Base is the directory relative paths are resolved against, normally
	// the directory of the input document.
	Base string
}

// Read returns the contents of the file at uri.
func (f *ExternalFiles) Read(ctx context.Context, uri string) ([]byte, error) {
	if !f.Enabled {
		return nil, fmt.Errorf("could not read external image '%s': %w", uri, ErrExternalFileAccess)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := f.resolve(uri)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not find file '%s': %w", uri, err)
	}
	return data, nil
}

func (f *ExternalFiles) resolve(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		u, err := url.Parse(uri)
		if err != nil {
			return "", fmt.Errorf("invalid file URI '%s': %w", uri, err)
		}
		return filepath.FromSlash(u.Path), nil
	}
	p := filepath.FromSlash(uri)
	if filepath.IsAbs(p) {
		return p, nil
	}
	if f.Base == "" {
		return "", fmt.Errorf("could not find external image '%s', path of input document is unknown", uri)
	}
	return filepath.Join(f.Base, p), nil
}

type imageFile struct {
	path string
	read func(ctx context.Context) ([]byte, error)
}

func (r *BodyReader) readDrawingElement(el *xmldom.Element) readResult {
	var blips []*xmldom.Element
	for _, graphic := range el.ElementsByTagName("a:graphic") {
		for _, data := range graphic.ElementsByTagName("a:graphicData") {
			for _, pic := range data.ElementsByTagName("pic:pic") {
				for _, fill := range pic.ElementsByTagName("pic:blipFill") {
					blips = append(blips, fill.ElementsByTagName("a:blip")...)
				}
			}
		}
	}

	results := make([]readResult, 0, len(blips))
	for _, blip := range blips {
		results = append(results, r.readBlip(el, blip))
	}
	return combineResults(results...)
}

func (r *BodyReader) readBlip(el, blip *xmldom.Element) readResult {
	docPr := el.FirstOrEmpty("wp:docPr")
	altText := docPr.AttrOr("descr", "")
	if strings.TrimSpace(altText) == "" {
		altText = docPr.AttrOr("title", "")
	}

	file := r.findBlipImageFile(blip)
	if file == nil {
		return warningResult("Could not find image file for a:blip element")
	}

	res := r.readImage(file, altText)
	if hlink := docPr.First("a:hlinkClick"); hlink != nil {
		if href, ok := r.relationships.FindTargetByID(hlink.AttrOr("r:id", "")); ok {
			return res.withElements(&model.Hyperlink{Children: res.elements, Href: href})
		}
	}
	return res
}

func (r *BodyReader) findBlipImageFile(blip *xmldom.Element) *imageFile {
	if id := blip.AttrOr("r:embed", ""); id != "" {
		return r.findEmbeddedImageFile(id)
	}
	if id := blip.AttrOr("r:link", ""); id != "" {
		target, _ := r.relationships.FindTargetByID(id)
		files := r.files
		return &imageFile{
			path: target,
			read: func(ctx context.Context) ([]byte, error) {
				return files.Read(ctx, target)
			},
		}
	}
	return nil
}

func (r *BodyReader) findEmbeddedImageFile(relationshipID string) *imageFile {
	target, _ := r.relationships.FindTargetByID(relationshipID)
	path := uriToZipEntryName(r.imageBase, target)
	pkg := r.pkg
	return &imageFile{
		path: path,
		read: func(ctx context.Context) ([]byte, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return pkg.Read(path)
		},
	}
}

// uriToZipEntryName resolves an image target: absolute targets are relative
// to the package root, others to base.
func uriToZipEntryName(base, uri string) string {
	if strings.HasPrefix(uri, "/") {
		return uri[1:]
	}
	return base + "/" + uri
}

func (r *BodyReader) readImage(file *imageFile, altText string) readResult {
	contentType := r.contentTypes.FindContentType(file.path)
	image := &model.Image{AltText: altText, ContentType: contentType, Read: file.read}

	res := elementResult(image)
	if !supportedImageTypes[contentType] {
		shown := contentType
		if shown == "" {
			shown = "unknown"
		}
		res.messages = []result.Message{result.Warningf("Image of type %s is unlikely to display in web browsers", shown)}
	}
	return res
}

func (r *BodyReader) readImageData(el *xmldom.Element) readResult {
	relationshipID := el.AttrOr("r:id", "")
	if relationshipID == "" {
		return warningResult("A v:imagedata element without a relationship ID was ignored")
	}
	return r.readImage(r.findEmbeddedImageFile(relationshipID), el.AttrOr("o:title", ""))
}
