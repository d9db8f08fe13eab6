package docx

import (
	"fmt"
	"strings"

	"github.com/tsawler/docxmark/xmldom"
)

const (
	styleMapPath             = "mammoth/style-map"
	styleMapAbsolutePath     = "/" + styleMapPath
	styleMapRelationshipID   = "rMammothStyleMap"
	styleMapRelationshipType = "http://schemas.zwobble.org/mammoth/style-map"
	styleMapContentType      = "text/prs.mammoth.style-map"
	documentRelsPath         = "word/_rels/document.xml.rels"

	relationshipsNamespace = "http://schemas.openxmlformats.org/package/2006/relationships"
	contentTypesNamespace  = "http://schemas.openxmlformats.org/package/2006/content-types"
)

// WriteStyleMap embeds a style map in the package. The map is stored as its
// own member and registered in the document relationships and the content
// types, replacing any previously embedded map.
func WriteStyleMap(pkg Package, styleMap string) error {
	if err := pkg.Write(styleMapPath, []byte(styleMap)); err != nil {
		return fmt.Errorf("writing style map: %w", err)
	}
	if err := updateRelationships(pkg); err != nil {
		return fmt.Errorf("updating relationships: %w", err)
	}
	if err := updateContentTypes(pkg); err != nil {
		return fmt.Errorf("updating content types: %w", err)
	}
	return nil
}

// ReadStyleMap returns the embedded style map, if any.
func ReadStyleMap(pkg Package) (string, bool, error) {
	if !pkg.Exists(styleMapPath) {
		return "", false, nil
	}
	data, err := pkg.Read(styleMapPath)
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

func updateRelationships(pkg Package) error {
	root, err := readOrCreate(pkg, documentRelsPath, "relationships:Relationships")
	if err != nil {
		return err
	}
	setOrAddChild(root, "relationships:Relationship", "Id", map[string]string{
		"Id":     styleMapRelationshipID,
		"Type":   styleMapRelationshipType,
		"Target": styleMapAbsolutePath,
	})
	return writeXML(pkg, documentRelsPath, root, relationshipsNamespace)
}

func updateContentTypes(pkg Package) error {
	root, err := readOrCreate(pkg, contentTypesPath, "content-types:Types")
	if err != nil {
		return err
	}
	setOrAddChild(root, "content-types:Override", "PartName", map[string]string{
		"PartName":    styleMapAbsolutePath,
		"ContentType": styleMapContentType,
	})
	return writeXML(pkg, contentTypesPath, root, contentTypesNamespace)
}

func readOrCreate(pkg Package, name, rootName string) (*xmldom.Element, error) {
	if !pkg.Exists(name) {
		return xmldom.NewElement(rootName, nil), nil
	}
	return readXMLPart(pkg, name)
}

// setOrAddChild updates the child element whose key attribute matches
// attrs[key], or appends a new one.
func setOrAddChild(root *xmldom.Element, name, key string, attrs map[string]string) {
	for _, child := range root.ElementsByTagName(name) {
		if child.AttrOr(key, "") == attrs[key] {
			for k, v := range attrs {
				child.Attributes[k] = v
			}
			return
		}
	}
	root.Children = append(root.Children, xmldom.NewElement(name, attrs))
}

// writeXML serialises root with uri as the default namespace. Names carry
// the office prefixes, so they are rewritten to the default namespace
// before writing.
func writeXML(pkg Package, name string, root *xmldom.Element, uri string) error {
	out, err := xmldom.Write(toLongNames(root), map[string]string{"": uri})
	if err != nil {
		return err
	}
	return pkg.Write(name, []byte(out))
}

// toLongNames rewrites prefixed element names to "{uri}local" so the writer
// can map them back to the namespaces it declares.
func toLongNames(el *xmldom.Element) *xmldom.Element {
	prefixToURI := map[string]string{
		"relationships": relationshipsNamespace,
		"content-types": contentTypesNamespace,
	}
	var convert func(*xmldom.Element) *xmldom.Element
	convert = func(e *xmldom.Element) *xmldom.Element {
		out := &xmldom.Element{Name: e.Name, Attributes: e.Attributes}
		for prefix, uri := range prefixToURI {
			if local, ok := strings.CutPrefix(e.Name, prefix+":"); ok {
				out.Name = "{" + uri + "}" + local
				break
			}
		}
		for _, c := range e.Children {
			if ce, ok := c.(*xmldom.Element); ok {
				out.Children = append(out.Children, convert(ce))
			} else {
				out.Children = append(out.Children, c)
			}
		}
		return out
	}
	return convert(el)
}
