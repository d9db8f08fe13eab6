package markup

import (
	"slices"
	"strings"
)

var (
	textEscaper      = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attributeEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;", "<", "&lt;", ">", "&gt;")
)

// HTMLWriter writes compact HTML.
type HTMLWriter struct {
	sb strings.Builder
}

// NewHTMLWriter creates a compact HTML writer.
func NewHTMLWriter() *HTMLWriter {
	return &HTMLWriter{}
}

func (w *HTMLWriter) Open(tagName string, attrs Attributes) {
	w.sb.WriteString("<" + tagName)
	w.writeAttributes(attrs)
	w.sb.WriteString(">")
}

func (w *HTMLWriter) Close(tagName string) {
	w.sb.WriteString("</" + tagName + ">")
}

func (w *HTMLWriter) SelfClosing(tagName string, attrs Attributes) {
	w.sb.WriteString("<" + tagName)
	w.writeAttributes(attrs)
	w.sb.WriteString(" />")
}

func (w *HTMLWriter) Text(value string) {
	textEscaper.WriteString(&w.sb, value)
}

func (w *HTMLWriter) String() string {
	return w.sb.String()
}

func (w *HTMLWriter) writeAttributes(attrs Attributes) {
	for _, attr := range attrs {
		w.sb.WriteString(" " + attr.Name + `="`)
		attributeEscaper.WriteString(&w.sb, attr.Value)
		w.sb.WriteString(`"`)
	}
}

func (w *HTMLWriter) raw(s string) {
	w.sb.WriteString(s)
}

var indentedTags = map[string]bool{"div": true, "p": true, "ul": true, "li": true}

const indentation = "  "

// PrettyHTMLWriter writes HTML with block elements on their own indented
// lines. Content inside <pre> is left untouched.
type PrettyHTMLWriter struct {
	out     *HTMLWriter
	level   int
	stack   []string
	started bool
	inText  bool
}

// NewPrettyHTMLWriter creates an indenting HTML writer.
func NewPrettyHTMLWriter() *PrettyHTMLWriter {
	return &PrettyHTMLWriter{out: NewHTMLWriter()}
}

func (w *PrettyHTMLWriter) Open(tagName string, attrs Attributes) {
	if indentedTags[tagName] {
		w.indent()
	}
	w.stack = append(w.stack, tagName)
	w.out.Open(tagName, attrs)
	if indentedTags[tagName] {
		w.level++
	}
	w.started = true
}

func (w *PrettyHTMLWriter) Close(tagName string) {
	if indentedTags[tagName] {
		w.level--
		w.indent()
	}
	if len(w.stack) > 0 {
		w.stack = w.stack[:len(w.stack)-1]
	}
	w.out.Close(tagName)
}

func (w *PrettyHTMLWriter) Text(value string) {
	if !w.inText {
		w.indent()
		w.inText = true
	}
	if !w.inPre() {
		value = strings.ReplaceAll(value, "\n", "\n"+strings.Repeat(indentation, w.level))
	}
	w.out.Text(value)
}

func (w *PrettyHTMLWriter) SelfClosing(tagName string, attrs Attributes) {
	w.indent()
	w.out.SelfClosing(tagName, attrs)
}

func (w *PrettyHTMLWriter) String() string {
	return w.out.String()
}

func (w *PrettyHTMLWriter) indent() {
	w.inText = false
	if !w.started || !w.insideIndented() || w.inPre() {
		return
	}
	w.out.raw("\n" + strings.Repeat(indentation, w.level))
}

func (w *PrettyHTMLWriter) insideIndented() bool {
	return len(w.stack) == 0 || indentedTags[w.stack[len(w.stack)-1]]
}

func (w *PrettyHTMLWriter) inPre() bool {
	return slices.Contains(w.stack, "pre")
}
