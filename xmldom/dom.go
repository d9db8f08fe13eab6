// Package xmldom provides a small XML tree with namespace-prefixed names.
//
// Element names are written as "prefix:local" when the namespace URI is
// known to the caller's namespace map, or "{uri}local" otherwise. This lets
// the rest of the code match names like "w:p" regardless of the prefixes the
// producing application chose.
package xmldom

import "strings"

// Node is either an *Element or a *Text.
type Node interface {
	node()
}

// Element is an XML element with mapped names.
type Element struct {
	Name       string
	Attributes map[string]string
	Children   []Node
}

// Text is a character-data node.
type Text struct {
	Value string
}

func (*Element) node() {}
func (*Text) node()    {}

var emptyElement = &Element{Name: "", Attributes: map[string]string{}}

// EmptyElement returns a shared element with no name, attributes or
// children. It must not be modified.
func EmptyElement() *Element {
	return emptyElement
}

// NewElement creates an element.
func NewElement(name string, attrs map[string]string, children ...Node) *Element {
	if attrs == nil {
		attrs = map[string]string{}
	}
	return &Element{Name: name, Attributes: attrs, Children: children}
}

// NewText creates a text node.
func NewText(value string) *Text {
	return &Text{Value: value}
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	if e == nil {
		return "", false
	}
	v, ok := e.Attributes[name]
	return v, ok
}

// AttrOr returns the named attribute or def when it is absent.
func (e *Element) AttrOr(name, def string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return def
}

// First returns the first direct child element with the given name, or nil.
func (e *Element) First(name string) *Element {
	if e == nil {
		return nil
	}
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok && el.Name == name {
			return el
		}
	}
	return nil
}

// FirstOrEmpty is First but returns EmptyElement instead of nil so lookups
// can be chained.
func (e *Element) FirstOrEmpty(name string) *Element {
	if el := e.First(name); el != nil {
		return el
	}
	return emptyElement
}

// ElementsByTagName returns the direct child elements with the given name.
func (e *Element) ElementsByTagName(name string) []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok && el.Name == name {
			out = append(out, el)
		}
	}
	return out
}

// ChildElements returns all direct child elements.
func (e *Element) ChildElements() []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// Text returns the concatenated direct text children.
func (e *Element) Text() string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	for _, c := range e.Children {
		if t, ok := c.(*Text); ok {
			sb.WriteString(t.Value)
		}
	}
	return sb.String()
}

// IsEmpty reports whether e is nil or the shared empty element.
func (e *Element) IsEmpty() bool {
	return e == nil || e == emptyElement
}
