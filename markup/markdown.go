package markup

import (
	"strconv"
	"strings"
)

type markdownList struct {
	ordered bool
	indent  int
	count   int
}

// markdownListItem is shared by all items so that closing a nested item
// suppresses the newline of the item containing it.
type markdownListItem struct {
	closed bool
}

type markdownElement struct {
	start        string
	end          func() string
	list         *markdownList
	anchorBefore bool
}

type openMarkdownElement struct {
	end  func() string
	list *markdownList
}

func fixedEnd(s string) func() string {
	return func() string { return s }
}

// MarkdownWriter writes Markdown. Elements without a Markdown form
// contribute only their content.
type MarkdownWriter struct {
	sb       strings.Builder
	stack    []openMarkdownElement
	list     *markdownList
	listItem *markdownListItem
}

// NewMarkdownWriter creates a Markdown writer.
func NewMarkdownWriter() *MarkdownWriter {
	return &MarkdownWriter{listItem: &markdownListItem{}}
}

func (w *MarkdownWriter) element(tagName string, attrs Attributes) markdownElement {
	switch tagName {
	case "p":
		return markdownElement{end: fixedEnd("\n\n")}
	case "br":
		return markdownElement{end: fixedEnd("  \n")}
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(tagName[1] - '0')
		return markdownElement{start: strings.Repeat("#", level) + " ", end: fixedEnd("\n\n")}
	case "strong":
		return markdownElement{start: "__", end: fixedEnd("__")}
	case "em":
		return markdownElement{start: "*", end: fixedEnd("*")}
	case "a":
		if href := attrs.Value("href"); href != "" {
			return markdownElement{start: "[", end: fixedEnd("](" + href + ")"), anchorBefore: true}
		}
	case "img":
		src, alt := attrs.Value("src"), attrs.Value("alt")
		if src != "" || alt != "" {
			return markdownElement{start: "![" + alt + "](" + src + ")"}
		}
	case "ul", "ol":
		return w.listElement(tagName == "ol")
	case "li":
		return w.listItemElement()
	}
	return markdownElement{}
}

func (w *MarkdownWriter) listElement(ordered bool) markdownElement {
	list := &markdownList{ordered: ordered}
	if w.list == nil {
		return markdownElement{end: fixedEnd("\n"), list: list}
	}
	list.indent = w.list.indent + 1
	return markdownElement{start: "\n", list: list}
}

func (w *MarkdownWriter) listItemElement() markdownElement {
	list := w.list
	if list == nil {
		list = &markdownList{}
	}
	list.count++
	item := w.listItem
	item.closed = false

	bullet := "-"
	if list.ordered {
		bullet = strconv.Itoa(list.count) + "."
	}
	return markdownElement{
		start: strings.Repeat("\t", list.indent) + bullet + " ",
		end: func() string {
			if item.closed {
				return ""
			}
			item.closed = true
			return "\n"
		},
	}
}

func (w *MarkdownWriter) Open(tagName string, attrs Attributes) {
	el := w.element(tagName, attrs)
	w.stack = append(w.stack, openMarkdownElement{end: el.end, list: w.list})
	if el.list != nil {
		w.list = el.list
	}
	if el.anchorBefore {
		w.writeAnchor(attrs)
	}
	w.sb.WriteString(el.start)
	if !el.anchorBefore {
		w.writeAnchor(attrs)
	}
}

func (w *MarkdownWriter) writeAnchor(attrs Attributes) {
	if id := attrs.Value("id"); id != "" {
		w.sb.WriteString(`<a id="` + id + `"></a>`)
	}
}

func (w *MarkdownWriter) Close(string) {
	if len(w.stack) == 0 {
		return
	}
	el := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	w.list = el.list
	if el.end != nil {
		w.sb.WriteString(el.end())
	}
}

func (w *MarkdownWriter) SelfClosing(tagName string, attrs Attributes) {
	w.Open(tagName, attrs)
	w.Close(tagName)
}

func (w *MarkdownWriter) Text(value string) {
	w.sb.WriteString(EscapeMarkdown(value))
}

func (w *MarkdownWriter) String() string {
	return w.sb.String()
}

var markdownEscaper = func() *strings.Replacer {
	pairs := []string{`\`, `\\`}
	for _, c := range "`*_{}[]()#+-.!" {
		pairs = append(pairs, string(c), `\`+string(c))
	}
	return strings.NewReplacer(pairs...)
}()

// EscapeMarkdown backslash-escapes the characters Markdown treats as syntax.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
