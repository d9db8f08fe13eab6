package markup

import (
	"context"

	"golang.org/x/net/html/atom"
)

// Node is a node of the HTML tree. It is implemented by *ElementNode,
// *TextNode, ForceWriteNode and *Deferred only.
type Node interface {
	isNode()
}

// ElementNode is an HTML element.
type ElementNode struct {
	Tag      *Tag
	Children []Node
}

// TextNode is unescaped text.
type TextNode struct {
	Value string
}

// ForceWriteNode keeps its parent from being removed as empty. It writes
// nothing.
type ForceWriteNode struct{}

// Deferred is content produced after the tree is built, such as an image
// whose bytes are read lazily. Deferred nodes are replaced by ReplaceDeferred
// before the tree is simplified and written.
type Deferred struct {
	ID      int
	Resolve func(ctx context.Context) ([]Node, error)
}

func (*ElementNode) isNode()   {}
func (*TextNode) isNode()      {}
func (ForceWriteNode) isNode() {}
func (*Deferred) isNode()      {}

// ForceWrite is the shared ForceWriteNode value.
var ForceWrite Node = ForceWriteNode{}

// ElementWithTag creates an element from a tag.
func ElementWithTag(tag *Tag, children []Node) *ElementNode {
	if children == nil {
		children = []Node{}
	}
	return &ElementNode{Tag: tag, Children: children}
}

// FreshElement creates an element that never merges with its neighbours.
func FreshElement(tagName string, attrs Attributes, children ...Node) *ElementNode {
	return ElementWithTag(SimpleTag(tagName, attrs, true), children)
}

// NonFreshElement creates an element that merges into a matching previous
// sibling.
func NonFreshElement(tagName string, attrs Attributes, children ...Node) *ElementNode {
	return ElementWithTag(SimpleTag(tagName, attrs, false), children)
}

// Text creates a text node.
func Text(value string) *TextNode {
	return &TextNode{Value: value}
}

var voidTags = map[atom.Atom]bool{
	atom.Br:    true,
	atom.Hr:    true,
	atom.Img:   true,
	atom.Input: true,
}

// IsVoidTag reports whether tagName is written as a self-closing tag.
func IsVoidTag(tagName string) bool {
	return voidTags[atom.Lookup([]byte(tagName))]
}

// IsVoid reports whether e is a childless void element.
func (e *ElementNode) IsVoid() bool {
	return len(e.Children) == 0 && IsVoidTag(e.Tag.TagName)
}

// Walk calls fn for every node in document order, parents before children.
func Walk(nodes []Node, fn func(Node)) {
	for _, n := range nodes {
		fn(n)
		if e, ok := n.(*ElementNode); ok {
			Walk(e.Children, fn)
		}
	}
}

// ReplaceDeferred returns a copy of nodes with each Deferred replaced by the
// nodes stored under its ID. A Deferred without a value is removed.
func ReplaceDeferred(nodes []Node, values map[int][]Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		switch n := n.(type) {
		case *Deferred:
			out = append(out, values[n.ID]...)
		case *ElementNode:
			out = append(out, ElementWithTag(n.Tag, ReplaceDeferred(n.Children, values)))
		default:
			out = append(out, n)
		}
	}
	return out
}
