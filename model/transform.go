package model

// Transform rebuilds e bottom-up: children are transformed first, then f is
// applied to the rebuilt element.
func Transform(e Element, f func(Element) Element) Element {
	if children := Children(e); children != nil {
		out := make([]Element, len(children))
		for i, c := range children {
			out[i] = Transform(c, f)
		}
		e = WithChildren(e, out)
	}
	return f(e)
}

// TransformDocument applies Transform to a document and keeps the result a
// *Document. If f replaces the root with something else the original
// document is returned with transformed children.
func TransformDocument(doc *Document, f func(Element) Element) *Document {
	out := Transform(doc, f)
	if d, ok := out.(*Document); ok {
		return d
	}
	return doc
}

// TransformParagraphs returns a transform that applies f to paragraphs only.
func TransformParagraphs(f func(*Paragraph) Element) func(Element) Element {
	return func(e Element) Element {
		if p, ok := e.(*Paragraph); ok {
			return f(p)
		}
		return e
	}
}

// TransformRuns returns a transform that applies f to runs only.
func TransformRuns(f func(*Run) Element) func(Element) Element {
	return func(e Element) Element {
		if r, ok := e.(*Run); ok {
			return f(r)
		}
		return e
	}
}

// Descendants returns every element below e in document order.
func Descendants(e Element) []Element {
	var out []Element
	var walk func(Element)
	walk = func(el Element) {
		for _, c := range Children(el) {
			out = append(out, c)
			walk(c)
		}
	}
	walk(e)
	return out
}

// DescendantsOfType returns the descendants of e with the given type.
func DescendantsOfType(e Element, t ElementType) []Element {
	var out []Element
	for _, d := range Descendants(e) {
		if d.Type() == t {
			out = append(out, d)
		}
	}
	return out
}
