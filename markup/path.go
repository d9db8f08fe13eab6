package markup

// Path is the HTML a style rule maps document content into.
type Path interface {
	// Wrap generates the children and nests them inside the path.
	Wrap(children func() []Node) []Node
}

// TagPath nests content in its tags, outermost first.
type TagPath []*Tag

// Elements returns the path through tags, outermost first.
func Elements(tags ...*Tag) TagPath {
	return TagPath(tags)
}

// Wrap implements Path.
func (p TagPath) Wrap(children func() []Node) []Node {
	nodes := children()
	for i := len(p) - 1; i >= 0; i-- {
		nodes = p[i].Wrap(nodes)
	}
	return nodes
}

// TopLevelElement is a path of a single fresh element.
func TopLevelElement(tagName string, attrs Attributes) TagPath {
	return Elements(SimpleTag(tagName, attrs, true))
}

type ignorePath struct{}

// Wrap discards the content without generating it.
func (ignorePath) Wrap(func() []Node) []Node { return nil }

var (
	// Empty emits content unwrapped.
	Empty Path = Elements()
	// Ignore drops content entirely.
	Ignore Path = ignorePath{}
)

// IsIgnore reports whether p drops its content.
func IsIgnore(p Path) bool {
	_, ok := p.(ignorePath)
	return ok
}
