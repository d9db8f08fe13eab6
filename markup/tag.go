// Package markup holds the HTML tree produced by conversion, the paths that
// style rules wrap content in, and the writers that render the tree as HTML
// or Markdown.
//
// Conversion builds nodes freely and relies on Simplify to drop empty
// elements and merge adjacent non-fresh elements with the same tag, so that
// consecutive runs mapped to <strong> become a single <strong>.
package markup

import "slices"

// Attribute is a single HTML attribute.
type Attribute struct {
	Name  string
	Value string
}

// Attributes is an ordered attribute list. Writers emit attributes in
// insertion order.
type Attributes []Attribute

// Get returns the value of the named attribute.
func (a Attributes) Get(name string) (string, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Value returns the value of the named attribute, or "" when absent.
func (a Attributes) Value(name string) string {
	v, _ := a.Get(name)
	return v
}

// With returns a copy of a with name set to value. An existing attribute
// keeps its position.
func (a Attributes) With(name, value string) Attributes {
	out := slices.Clone(a)
	for i := range out {
		if out[i].Name == name {
			out[i].Value = value
			return out
		}
	}
	return append(out, Attribute{Name: name, Value: value})
}

// Merge returns a copy of a with every attribute of other set on it.
func (a Attributes) Merge(other Attributes) Attributes {
	out := slices.Clone(a)
	for _, attr := range other {
		out = out.With(attr.Name, attr.Value)
	}
	return out
}

// Equal reports whether a and other hold the same attributes, ignoring
// order.
func (a Attributes) Equal(other Attributes) bool {
	if len(a) != len(other) {
		return false
	}
	for _, attr := range a {
		v, ok := other.Get(attr.Name)
		if !ok || v != attr.Value {
			return false
		}
	}
	return true
}

// Tag describes an HTML element to create: its tag name, the alternative tag
// names it may merge with, its attributes, and how it combines with
// neighbouring elements.
type Tag struct {
	// TagName is the name written out.
	TagName string
	// TagNames is the set of names an existing element may have for this tag
	// to merge into it. It always contains TagName.
	TagNames []string
	// Attributes are written in order.
	Attributes Attributes
	// Fresh tags always start a new element.
	Fresh bool
	// Separator is inserted between the children of merged elements.
	Separator string
}

// TagOptions configures NewTag.
type TagOptions struct {
	Fresh     bool
	Separator string
}

// NewTag creates a tag. tagNames holds the written name first, followed by
// the alternatives it can merge with.
func NewTag(tagNames []string, attrs Attributes, opts TagOptions) *Tag {
	return &Tag{
		TagName:    tagNames[0],
		TagNames:   slices.Clone(tagNames),
		Attributes: attrs,
		Fresh:      opts.Fresh,
		Separator:  opts.Separator,
	}
}

// SimpleTag creates a tag with a single name.
func SimpleTag(tagName string, attrs Attributes, fresh bool) *Tag {
	return NewTag([]string{tagName}, attrs, TagOptions{Fresh: fresh})
}

// MatchesElement reports whether an element created from other can absorb
// an element created from t.
func (t *Tag) MatchesElement(other *Tag) bool {
	return slices.Contains(t.TagNames, other.TagName) && t.Attributes.Equal(other.Attributes)
}

// Wrap places nodes inside a new element with this tag.
func (t *Tag) Wrap(nodes []Node) []Node {
	return []Node{ElementWithTag(t, nodes)}
}
