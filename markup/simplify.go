package markup

// Simplify removes empty elements and then collapses adjacent mergeable
// elements. Applying it twice gives the same tree as applying it once.
func Simplify(nodes []Node) []Node {
	return Collapse(RemoveEmpty(nodes))
}

// RemoveEmpty drops empty text and elements left without children, except
// void elements. ForceWrite and Deferred nodes are never empty.
func RemoveEmpty(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		switch n := n.(type) {
		case *ElementNode:
			children := RemoveEmpty(n.Children)
			if len(children) == 0 && !IsVoidTag(n.Tag.TagName) {
				continue
			}
			out = append(out, ElementWithTag(n.Tag, children))
		case *TextNode:
			if n.Value != "" {
				out = append(out, n)
			}
		default:
			out = append(out, n)
		}
	}
	return out
}

// Collapse merges each non-fresh element into the previous sibling when the
// sibling is an element its tag matches.
func Collapse(nodes []Node) []Node {
	var out []Node
	for _, n := range nodes {
		if e, ok := n.(*ElementNode); ok {
			n = ElementWithTag(e.Tag, Collapse(e.Children))
		}
		out = appendChild(out, n)
	}
	if out == nil {
		out = []Node{}
	}
	return out
}

func appendChild(children []Node, child Node) []Node {
	e, ok := child.(*ElementNode)
	if !ok || e.Tag.Fresh || len(children) == 0 {
		return append(children, child)
	}
	last, ok := children[len(children)-1].(*ElementNode)
	if !ok || !e.Tag.MatchesElement(last.Tag) {
		return append(children, child)
	}

	if e.Tag.Separator != "" {
		last.Children = appendChild(last.Children, Text(e.Tag.Separator))
	}
	for _, grandChild := range e.Children {
		last.Children = appendChild(last.Children, grandChild)
	}
	return children
}
