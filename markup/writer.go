package markup

import "fmt"

// Writer receives the tree as a stream of open, close and text events.
type Writer interface {
	Open(tagName string, attrs Attributes)
	Close(tagName string)
	Text(value string)
	SelfClosing(tagName string, attrs Attributes)
	String() string
}

// Format selects the output of NewWriter.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// ParseFormat parses an output format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatHTML, "":
		return FormatHTML, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// NewWriter returns a writer for format. prettyPrint applies to HTML only.
func NewWriter(format Format, prettyPrint bool) Writer {
	if format == FormatMarkdown {
		return NewMarkdownWriter()
	}
	if prettyPrint {
		return NewPrettyHTMLWriter()
	}
	return NewHTMLWriter()
}

// Write emits nodes to w. ForceWrite and unresolved Deferred nodes produce
// no output.
func Write(w Writer, nodes []Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *ElementNode:
			if n.IsVoid() {
				w.SelfClosing(n.Tag.TagName, n.Tag.Attributes)
				continue
			}
			w.Open(n.Tag.TagName, n.Tag.Attributes)
			Write(w, n.Children)
			w.Close(n.Tag.TagName)
		case *TextNode:
			w.Text(n.Value)
		case ForceWriteNode, *Deferred:
		}
	}
}

// Render simplifies nodes and writes them in format.
func Render(nodes []Node, format Format, prettyPrint bool) string {
	w := NewWriter(format, prettyPrint)
	Write(w, Simplify(nodes))
	return w.String()
}
