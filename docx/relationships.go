package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"strings"
)

// Relationship types used to locate parts.
const (
	relTypeOfficeDocument     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypePrefix             = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
	relTypeCommentsExtended   = "http://schemas.microsoft.com/office/2011/relationships/commentsExtended"
	relTypeCommentsIDs        = "http://schemas.microsoft.com/office/2016/09/relationships/commentsIds"
	relTypeCommentsExtensible = "http://schemas.microsoft.com/office/2018/08/relationships/commentsExtensible"
)

// relationshipsXML represents _rels/*.rels files
type relationshipsXML struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Relationships []relationshipXML `xml:"Relationship"`
}

// relationshipXML represents a single relationship.
type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"` // External or empty (internal)
}

// Relationship links a part to a target.
type Relationship struct {
	ID     string
	Target string
	Type   string
}

// Relationships is the parsed relationships file of one part.
type Relationships struct {
	byID   map[string]Relationship
	byType map[string][]string
}

// NewRelationships indexes rels by id and by type. The first relationship
// with a given id wins.
func NewRelationships(rels []Relationship) *Relationships {
	r := &Relationships{
		byID:   make(map[string]Relationship, len(rels)),
		byType: make(map[string][]string),
	}
	for _, rel := range rels {
		if _, ok := r.byID[rel.ID]; !ok {
			r.byID[rel.ID] = rel
		}
		r.byType[rel.Type] = append(r.byType[rel.Type], rel.Target)
	}
	return r
}

var emptyRelationships = NewRelationships(nil)

// FindTargetByID returns the target of the relationship with the given id.
func (r *Relationships) FindTargetByID(id string) (string, bool) {
	rel, ok := r.byID[id]
	return rel.Target, ok
}

// FindTargetsByType returns all targets with the given relationship type.
func (r *Relationships) FindTargetsByType(relType string) []string {
	return r.byType[relType]
}

// ParseRelationships decodes a relationships part.
func ParseRelationships(data []byte) (*Relationships, error) {
	var x relationshipsXML
	if err := xml.Unmarshal(bytes.TrimPrefix(data, utf8BOM), &x); err != nil {
		return nil, err
	}
	rels := make([]Relationship, 0, len(x.Relationships))
	for _, r := range x.Relationships {
		rels = append(rels, Relationship{ID: r.ID, Target: r.Target, Type: r.Type})
	}
	return NewRelationships(rels), nil
}

// readRelationships reads the relationships file at name, returning an empty
// set when it does not exist.
func readRelationships(pkg Package, name string) (*Relationships, error) {
	if !pkg.Exists(name) {
		return emptyRelationships, nil
	}
	data, err := pkg.Read(name)
	if err != nil {
		return nil, err
	}
	rels, err := ParseRelationships(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return rels, nil
}

// relationshipsPath returns the relationships file for a part:
// "word/document.xml" has "word/_rels/document.xml.rels".
func relationshipsPath(partPath string) string {
	dir, base := path.Split(partPath)
	return dir + "_rels/" + base + ".rels"
}

// readPartRelationships reads the relationships belonging to partPath.
func readPartRelationships(pkg Package, partPath string) (*Relationships, error) {
	return readRelationships(pkg, relationshipsPath(partPath))
}

// joinTarget resolves a relationship target against a base directory. An
// absolute target ("/word/x.xml") is taken relative to the package root.
func joinTarget(base, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	if base == "" {
		return path.Clean(target)
	}
	return path.Clean(path.Join(base, target))
}
