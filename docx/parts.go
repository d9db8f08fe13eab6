package docx

import (
	"errors"
	"path"
)

// ErrMainDocumentNotFound is returned when the package has no main document.
var ErrMainDocumentNotFound = errors.New("Could not find main document part. Are you sure this is a valid .docx file?")

// PartPaths holds the package locations of the parts read for conversion.
// Optional parts that could not be located are empty.
type PartPaths struct {
	MainDocument       string
	Comments           string
	CommentsExtended   string
	CommentsIDs        string
	CommentsExtensible string
	Endnotes           string
	Footnotes          string
	Numbering          string
	Styles             string
}

// FindPartPaths locates the main document through the package relationships
// and the supporting parts through the main document's relationships,
// falling back to the conventional word/ locations.
func FindPartPaths(pkg Package) (PartPaths, error) {
	packageRels, err := readRelationships(pkg, "_rels/.rels")
	if err != nil {
		return PartPaths{}, err
	}

	mainDocument := findPartPath(pkg, packageRels, relTypeOfficeDocument, "", "word/document.xml")
	if !pkg.Exists(mainDocument) {
		return PartPaths{}, ErrMainDocumentNotFound
	}

	documentRels, err := readPartRelationships(pkg, mainDocument)
	if err != nil {
		return PartPaths{}, err
	}

	base := path.Dir(mainDocument)
	if base == "." {
		base = ""
	}
	find := func(name string) string {
		return findPartPath(pkg, documentRels, relTypePrefix+name, base, "word/"+name+".xml")
	}

	return PartPaths{
		MainDocument:       mainDocument,
		Comments:           find("comments"),
		CommentsExtended:   findPartPath(pkg, documentRels, relTypeCommentsExtended, base, "word/commentsExtended.xml"),
		CommentsIDs:        findPartPath(pkg, documentRels, relTypeCommentsIDs, base, "word/commentsIds.xml"),
		CommentsExtensible: findPartPath(pkg, documentRels, relTypeCommentsExtensible, base, "word/commentsExtensible.xml"),
		Endnotes:           find("endnotes"),
		Footnotes:          find("footnotes"),
		Numbering:          find("numbering"),
		Styles:             find("styles"),
	}, nil
}

// findPartPath returns the first existing target of relType, or fallback.
func findPartPath(pkg Package, rels *Relationships, relType, base, fallback string) string {
	for _, target := range rels.FindTargetsByType(relType) {
		p := joinTarget(base, target)
		if pkg.Exists(p) {
			return p
		}
	}
	return fallback
}
