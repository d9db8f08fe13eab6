package docx

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/tsawler/docxmark/model"
	"github.com/tsawler/docxmark/result"
	"github.com/tsawler/docxmark/xmldom"
)

// ErrBodyNotFound is returned when the main document has no w:body.
var ErrBodyNotFound = errors.New("Could not find the body element: are you sure this is a docx file?")

// ReadOptions configures Read.
type ReadOptions struct {
	// ExternalFileAccess allows linked images to be read from disk.
	ExternalFileAccess bool
	// Path is the location of the package on disk, used to resolve linked
	// images. It may be empty.
	Path string
}

// reader holds the package-wide tables shared by the per-part body readers.
type reader struct {
	pkg          Package
	contentTypes *ContentTypes
	styles       *Styles
	numbering    *Numbering
	files        *ExternalFiles
}

// Read converts a package into a document. Fatal problems (no main
// document, no body, malformed XML in a part) are returned as errors;
// everything else is reported in the result messages.
func Read(ctx context.Context, pkg Package, opts ReadOptions) (result.Result[*model.Document], error) {
	var none result.Result[*model.Document]

	contentTypes, err := readContentTypes(pkg)
	if err != nil {
		return none, err
	}
	paths, err := FindPartPaths(pkg)
	if err != nil {
		return none, err
	}
	styles, err := readStyles(pkg, paths.Styles)
	if err != nil {
		return none, fmt.Errorf("reading styles: %w", err)
	}
	numbering, err := readNumbering(pkg, paths.Numbering, styles)
	if err != nil {
		return none, fmt.Errorf("reading numbering: %w", err)
	}

	files := &ExternalFiles{Enabled: opts.ExternalFileAccess}
	if opts.Path != "" {
		files.Base = path.Dir(opts.Path)
	}
	rd := &reader{
		pkg:          pkg,
		contentTypes: contentTypes,
		styles:       styles,
		numbering:    numbering,
		files:        files,
	}

	if err := ctx.Err(); err != nil {
		return none, err
	}
	meta, err := rd.readCommentMetadata(paths)
	if err != nil {
		return none, err
	}

	footnotes, err := rd.readNotesPart(paths.Footnotes, "footnote")
	if err != nil {
		return none, fmt.Errorf("reading footnotes: %w", err)
	}
	endnotes, err := rd.readNotesPart(paths.Endnotes, "endnote")
	if err != nil {
		return none, fmt.Errorf("reading endnotes: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return none, err
	}
	comments, err := rd.readCommentsPart(paths.Comments, meta)
	if err != nil {
		return none, fmt.Errorf("reading comments: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return none, err
	}
	body, err := rd.readMainDocument(paths.MainDocument)
	if err != nil {
		return none, err
	}

	doc := &model.Document{
		Children: body.Value,
		Notes:    model.NewNotes(append(footnotes.Value, endnotes.Value...)),
		Comments: comments.Value,
		Metadata: readMetadata(pkg),
	}
	messages := result.CombineMessages(footnotes.Messages, endnotes.Messages, comments.Messages, body.Messages)
	return result.New(doc, messages...), nil
}

// bodyReaderFor creates a body reader with the relationships of partPath.
func (rd *reader) bodyReaderFor(partPath string) (*BodyReader, error) {
	rels, err := readPartRelationships(rd.pkg, partPath)
	if err != nil {
		return nil, err
	}
	base := path.Dir(partPath)
	if base == "." {
		base = ""
	}
	return NewBodyReader(BodyReaderOptions{
		Package:       rd.pkg,
		Relationships: rels,
		ContentTypes:  rd.contentTypes,
		Styles:        rd.styles,
		Numbering:     rd.numbering,
		Files:         rd.files,
		ImageBase:     base,
	}), nil
}

func (rd *reader) readNotesPart(name, noteType string) (result.Result[[]*model.Note], error) {
	root, err := readOptionalXMLPart(rd.pkg, name)
	if err != nil || root == nil {
		return result.Result[[]*model.Note]{}, err
	}
	body, err := rd.bodyReaderFor(name)
	if err != nil {
		return result.Result[[]*model.Note]{}, err
	}
	return readNotes(root, noteType, body), nil
}

func (rd *reader) readCommentsPart(name string, meta commentMetadata) (result.Result[[]*model.Comment], error) {
	root, err := readOptionalXMLPart(rd.pkg, name)
	if err != nil || root == nil {
		return result.Result[[]*model.Comment]{}, err
	}
	body, err := rd.bodyReaderFor(name)
	if err != nil {
		return result.Result[[]*model.Comment]{}, err
	}
	return readComments(root, body, meta), nil
}

func (rd *reader) readCommentMetadata(paths PartPaths) (commentMetadata, error) {
	extended, err := readOptionalXMLPart(rd.pkg, paths.CommentsExtended)
	if err != nil {
		return commentMetadata{}, fmt.Errorf("reading comment extensions: %w", err)
	}
	ids, err := readOptionalXMLPart(rd.pkg, paths.CommentsIDs)
	if err != nil {
		return commentMetadata{}, fmt.Errorf("reading comment ids: %w", err)
	}
	extensible, err := readOptionalXMLPart(rd.pkg, paths.CommentsExtensible)
	if err != nil {
		return commentMetadata{}, fmt.Errorf("reading comment dates: %w", err)
	}
	return commentMetadata{
		parentParaIDs: readCommentsExtended(extended),
		dateUTC:       readCommentDates(ids, extensible),
	}, nil
}

func (rd *reader) readMainDocument(name string) (result.Result[[]model.Element], error) {
	var none result.Result[[]model.Element]
	root, err := readXMLPart(rd.pkg, name)
	if err != nil {
		return none, err
	}
	bodyEl := root.First("w:body")
	if bodyEl == nil {
		return none, ErrBodyNotFound
	}
	body, err := rd.bodyReaderFor(name)
	if err != nil {
		return none, err
	}
	return body.ReadXMLElements(bodyEl.Children), nil
}

// ReadBody reads a standalone body element with no supporting parts. It is
// mainly useful for tests and for callers that already hold parsed XML.
func ReadBody(body *xmldom.Element) result.Result[[]model.Element] {
	return NewBodyReader(BodyReaderOptions{}).ReadXMLElements(body.Children)
}
