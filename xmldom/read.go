package xmldom

import (
	"errors"

	"github.com/beevik/etree"
)

// ParseError is returned when a document is not well-formed XML.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// Read parses data and returns its root element. namespaceMap maps namespace
// URIs to the prefixes used in the returned names. Namespace declarations
// are dropped from the attributes.
func Read(data []byte, namespaceMap map[string]string) (*Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &ParseError{Err: err}
	}
	root := doc.Root()
	if root == nil {
		return nil, &ParseError{Err: errors.New("document has no root element")}
	}
	return convertElement(root, namespaceMap), nil
}

func convertElement(el *etree.Element, namespaceMap map[string]string) *Element {
	out := &Element{
		Name:       mapName(el.NamespaceURI(), el.Space, el.Tag, namespaceMap),
		Attributes: make(map[string]string, len(el.Attr)),
	}

	for i := range el.Attr {
		a := &el.Attr[i]
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			continue
		}
		if a.Space == "" {
			out.Attributes[a.Key] = a.Value
			continue
		}
		uri := a.NamespaceURI()
		if a.Space == "xml" {
			uri = xmlNamespace
		}
		out.Attributes[mapName(uri, a.Space, a.Key, namespaceMap)] = a.Value
	}

	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			out.Children = append(out.Children, convertElement(t, namespaceMap))
		case *etree.CharData:
			out.Children = append(out.Children, &Text{Value: t.Data})
		}
	}
	return out
}

func mapName(uri, space, local string, namespaceMap map[string]string) string {
	if uri == "" {
		if space != "" {
			return space + ":" + local
		}
		return local
	}
	if prefix, ok := namespaceMap[uri]; ok {
		if prefix == "" {
			return local
		}
		return prefix + ":" + local
	}
	return "{" + uri + "}" + local
}
