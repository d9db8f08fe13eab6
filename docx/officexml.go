package docx

import (
	"bytes"
	"fmt"

	"github.com/tsawler/docxmark/xmldom"
)

// namespaces maps the namespace URIs found in word-processing parts to the
// prefixes used when matching element names. Transitional and strict URIs
// map to the same prefix.
var namespaces = map[string]string{
	"http://schemas.openxmlformats.org/wordprocessingml/2006/main":                "w",
	"http://schemas.openxmlformats.org/officeDocument/2006/relationships":         "r",
	"http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing":      "wp",
	"http://schemas.openxmlformats.org/drawingml/2006/main":                       "a",
	"http://schemas.openxmlformats.org/drawingml/2006/picture":                    "pic",
	"http://purl.oclc.org/ooxml/wordprocessingml/main":                            "w",
	"http://purl.oclc.org/ooxml/officeDocument/relationships":                     "r",
	"http://purl.oclc.org/ooxml/drawingml/wordprocessingDrawing":                  "wp",
	"http://purl.oclc.org/ooxml/drawingml/main":                                   "a",
	"http://purl.oclc.org/ooxml/drawingml/picture":                                "pic",
	"http://schemas.openxmlformats.org/package/2006/content-types":                "content-types",
	"http://schemas.openxmlformats.org/package/2006/relationships":                "relationships",
	"http://schemas.openxmlformats.org/markup-compatibility/2006":                 "mc",
	"urn:schemas-microsoft-com:vml":                                               "v",
	"urn:schemas-microsoft-com:office:word":                                       "office-word",
	"urn:schemas-microsoft-com:office:office":                                     "o",
	"http://schemas.microsoft.com/office/word/2010/wordml":                        "wordml",
	"http://schemas.microsoft.com/office/word/2012/wordml":                        "w15",
	"http://schemas.microsoft.com/office/word/2016/wordml/cid":                    "w16cid",
	"http://schemas.microsoft.com/office/word/2018/wordml/cex":                    "w16cex",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readXMLPart parses a package member with the office namespace table.
func readXMLPart(pkg Package, name string) (*xmldom.Element, error) {
	data, err := pkg.Read(name)
	if err != nil {
		return nil, err
	}
	root, err := readOfficeXML(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return root, nil
}

// readOptionalXMLPart is readXMLPart for members that may be absent.
func readOptionalXMLPart(pkg Package, name string) (*xmldom.Element, error) {
	if name == "" || !pkg.Exists(name) {
		return nil, nil
	}
	return readXMLPart(pkg, name)
}

func readOfficeXML(data []byte) (*xmldom.Element, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	root, err := xmldom.Read(data, namespaces)
	if err != nil {
		return nil, err
	}
	children := collapseAlternateContent(root.Children)
	root.Children = children
	return root, nil
}

// collapseAlternateContent replaces every mc:AlternateContent with the
// children of its mc:Fallback.
func collapseAlternateContent(nodes []xmldom.Node) []xmldom.Node {
	out := make([]xmldom.Node, 0, len(nodes))
	for _, n := range nodes {
		el, ok := n.(*xmldom.Element)
		if !ok {
			out = append(out, n)
			continue
		}
		if el.Name == "mc:AlternateContent" {
			out = append(out, collapseAlternateContent(el.FirstOrEmpty("mc:Fallback").Children)...)
			continue
		}
		el.Children = collapseAlternateContent(el.Children)
		out = append(out, el)
	}
	return out
}
