// Package convert renders a document tree as HTML or Markdown.
//
// Conversion runs in two phases. The tree is first converted to markup
// nodes, with images left as deferred placeholders. The placeholders are
// then resolved one at a time in document order, so a failing image read
// becomes an error message and an empty render rather than a failed
// conversion. Finally the tree is simplified and written.
package convert

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tsawler/docxmark/markup"
	"github.com/tsawler/docxmark/model"
	"github.com/tsawler/docxmark/result"
	"github.com/tsawler/docxmark/stylemap"
)

// Converter renders documents. It holds no per-document state and is safe
// for concurrent use.
type Converter struct {
	opts Options
}

// New creates a converter.
func New(opts Options) *Converter {
	if opts.ImageConverter == nil {
		opts.ImageConverter = DataURI
	}
	if opts.OutputFormat == "" {
		opts.OutputFormat = markup.FormatHTML
	}
	return &Converter{opts: opts}
}

// Convert renders doc in the configured output format. The error is non-nil
// only when ctx ends before the images have been resolved.
func (c *Converter) Convert(ctx context.Context, doc *model.Document) (result.Result[string], error) {
	res, err := c.Nodes(ctx, doc)
	if err != nil {
		return result.Result[string]{}, err
	}
	return result.Map(res, func(nodes []markup.Node) string {
		return markup.Render(nodes, c.opts.OutputFormat, c.opts.PrettyPrint)
	}), nil
}

// Nodes converts doc and resolves its images, returning the tree before it
// is simplified and written.
func (c *Converter) Nodes(ctx context.Context, doc *model.Document) (result.Result[[]markup.Node], error) {
	conv := newConversion(c.opts, doc)
	nodes := conv.convertElement(doc, scope{})

	values, err := conv.resolveDeferred(ctx, nodes)
	if err != nil {
		return result.Result[[]markup.Node]{}, err
	}
	return result.New(markup.ReplaceDeferred(nodes, values), conv.messages...), nil
}

// conversion holds the state of converting one document.
type conversion struct {
	opts     Options
	comments map[string]*model.Comment
	// commentOrder lists comments in document order, for reply lookup.
	commentOrder []*model.Comment
	notes        *model.Notes

	noteNumber         int
	changeNumber       int
	deferredNumber     int
	noteReferences     []*model.NoteReference
	referencedComments []referencedComment

	messages []result.Message
}

type referencedComment struct {
	label   string
	comment *model.Comment
}

// scope is passed down the tree.
type scope struct {
	tableHeader bool
}

func newConversion(opts Options, doc *model.Document) *conversion {
	c := &conversion{
		opts:     opts,
		comments: make(map[string]*model.Comment, len(doc.Comments)),
		notes:    doc.Notes,
	}
	for _, comment := range doc.Comments {
		if _, ok := c.comments[comment.CommentID]; !ok {
			c.commentOrder = append(c.commentOrder, comment)
		}
		c.comments[comment.CommentID] = comment
	}
	return c
}

func (c *conversion) warn(format string, args ...any) {
	c.messages = append(c.messages, result.Warningf(format, args...))
}

func (c *conversion) fail(err error) {
	c.messages = append(c.messages, result.Error(err))
}

func (c *conversion) htmlID(suffix string) string {
	return c.opts.IDPrefix + suffix
}

// referentID is the id of the thing a reference points at.
func (c *conversion) referentID(refType, id string) string {
	return c.htmlID(refType + "-" + id)
}

// referenceID is the id of the reference itself, for back links.
func (c *conversion) referenceID(refType, id string) string {
	return c.htmlID(refType + "-ref-" + id)
}

func (c *conversion) findPath(s stylemap.Subject) (markup.Path, bool) {
	return stylemap.FindPath(c.opts.StyleMap, s)
}

func (c *conversion) findPathOr(s stylemap.Subject, fallback markup.Path) markup.Path {
	if path, ok := c.findPath(s); ok {
		return path
	}
	return fallback
}

func (c *conversion) convertElements(elements []model.Element, sc scope) []markup.Node {
	var nodes []markup.Node
	for _, e := range elements {
		nodes = append(nodes, c.convertElement(e, sc)...)
	}
	return nodes
}

func (c *conversion) convertElement(e model.Element, sc scope) []markup.Node {
	switch el := e.(type) {
	case *model.Document:
		return c.convertDocument(el, sc)
	case *model.Paragraph:
		return c.convertParagraph(el, sc)
	case *model.Run:
		return c.convertRun(el, sc)
	case *model.Text:
		return []markup.Node{markup.Text(el.Value)}
	case *model.Tab:
		return []markup.Node{markup.Text("\t")}
	case *model.Hyperlink:
		return c.convertHyperlink(el, sc)
	case *model.Checkbox:
		a := attrs("type", "checkbox")
		if el.Checked {
			a = a.With("checked", "checked")
		}
		return []markup.Node{markup.FreshElement("input", a)}
	case *model.BookmarkStart:
		return []markup.Node{markup.FreshElement("a", attrs("id", c.htmlID(el.Name)), markup.ForceWrite)}
	case *model.NoteReference:
		return c.convertNoteReference(el)
	case *model.Note:
		return c.convertNote(el, sc)
	case *model.Image:
		return c.convertImage(el)
	case *model.CommentReference:
		return c.convertCommentReference(el, sc)
	case *model.Comment:
		return c.convertComment(referencedComment{label: el.AuthorInitials, comment: el}, sc)
	case *model.CommentRangeStart:
		return c.convertCommentRangeStart(el, sc)
	case *model.CommentRangeEnd:
		if !c.opts.CommentTokens {
			return nil
		}
		return []markup.Node{markup.Text(commentEndToken(el.CommentID))}
	case *model.Inserted:
		return c.convertInserted(el, sc)
	case *model.Deleted:
		return c.convertDeleted(el, sc)
	case *model.Table:
		return c.convertTable(el, sc)
	case *model.TableRow:
		children := c.convertElements(el.Children, sc)
		return []markup.Node{markup.FreshElement("tr", nil, prepend(markup.ForceWrite, children)...)}
	case *model.TableCell:
		return c.convertTableCell(el, sc)
	case *model.Break:
		return c.pathForBreak(el).Wrap(func() []markup.Node { return nil })
	default:
		panic(fmt.Sprintf("convert: unhandled element %T", e))
	}
}

func (c *conversion) convertDocument(doc *model.Document, sc scope) []markup.Node {
	children := c.convertElements(doc.Children, sc)

	var notes []markup.Node
	for _, ref := range c.noteReferences {
		note := c.notes.Resolve(ref)
		if note == nil {
			c.warn("Could not find %s with ID %s", ref.NoteType, ref.NoteID)
			continue
		}
		notes = append(notes, c.convertNote(note, sc)...)
	}

	// Comment bodies may reference further comments, so the list can grow
	// while it is converted.
	var comments []markup.Node
	for i := 0; i < len(c.referencedComments); i++ {
		comments = append(comments, c.convertComment(c.referencedComments[i], sc)...)
	}

	return append(children,
		markup.FreshElement("ol", nil, notes...),
		markup.FreshElement("dl", nil, comments...),
	)
}

var defaultParagraphPath = markup.TopLevelElement("p", nil)

func (c *conversion) convertParagraph(p *model.Paragraph, sc scope) []markup.Node {
	path, ok := c.findPath(stylemap.ParagraphSubject(p))
	if !ok {
		if p.StyleID != "" {
			c.warn("Unrecognised paragraph style: '%s' (Style ID: %s)", p.StyleName, p.StyleID)
		}
		path = defaultParagraphPath
	}
	return path.Wrap(func() []markup.Node {
		content := c.convertElements(p.Children, sc)
		if c.opts.IgnoreEmptyParagraphs {
			return content
		}
		return prepend(markup.ForceWrite, content)
	})
}

func (c *conversion) convertRun(r *model.Run, sc scope) []markup.Node {
	var paths []markup.Path
	if r.Highlight != "" {
		if path, ok := c.findPath(stylemap.HighlightSubject(r.Highlight)); ok {
			paths = append(paths, path)
		}
	}
	if r.IsSmallCaps {
		paths = append(paths, c.runPropertyPath(stylemap.KindSmallCaps, ""))
	}
	if r.IsAllCaps {
		paths = append(paths, c.runPropertyPath(stylemap.KindAllCaps, ""))
	}
	if r.IsStrikethrough {
		paths = append(paths, c.runPropertyPath(stylemap.KindStrikethrough, "s"))
	}
	if r.IsUnderline {
		paths = append(paths, c.runPropertyPath(stylemap.KindUnderline, ""))
	}
	switch r.VerticalAlignment {
	case model.VerticalAlignmentSubscript:
		paths = append(paths, nonFreshPath("sub"))
	case model.VerticalAlignmentSuperscript:
		paths = append(paths, nonFreshPath("sup"))
	}
	if r.IsItalic {
		paths = append(paths, c.runPropertyPath(stylemap.KindItalic, "em"))
	}
	if r.IsBold {
		paths = append(paths, c.runPropertyPath(stylemap.KindBold, "strong"))
	}

	stylePath, ok := c.findPath(stylemap.RunSubject(r))
	if !ok {
		if r.StyleID != "" {
			c.warn("Unrecognised run style: '%s' (Style ID: %s)", r.StyleName, r.StyleID)
		}
		stylePath = markup.Empty
	}
	paths = append(paths, stylePath)

	nodes := func() []markup.Node { return c.convertElements(r.Children, sc) }
	for _, path := range paths {
		inner := nodes
		nodes = func() []markup.Node { return path.Wrap(inner) }
	}
	return nodes()
}

func (c *conversion) runPropertyPath(kind stylemap.Kind, defaultTagName string) markup.Path {
	if path, ok := c.findPath(stylemap.Subject{Kind: kind}); ok {
		return path
	}
	if defaultTagName != "" {
		return nonFreshPath(defaultTagName)
	}
	return markup.Empty
}

func nonFreshPath(tagName string) markup.Path {
	return markup.Elements(markup.SimpleTag(tagName, nil, false))
}

func (c *conversion) convertHyperlink(h *model.Hyperlink, sc scope) []markup.Node {
	href := h.Href
	if h.Anchor != "" {
		href = "#" + c.htmlID(h.Anchor)
	}
	a := attrs("href", href)
	if h.TargetFrame != "" {
		a = a.With("target", h.TargetFrame)
	}
	children := c.convertElements(h.Children, sc)
	return []markup.Node{markup.NonFreshElement("a", a, children...)}
}

func (c *conversion) convertNoteReference(ref *model.NoteReference) []markup.Node {
	c.noteReferences = append(c.noteReferences, ref)
	c.noteNumber++
	anchor := markup.FreshElement("a",
		attrs("href", "#"+c.referentID(ref.NoteType, ref.NoteID), "id", c.referenceID(ref.NoteType, ref.NoteID)),
		markup.Text("["+strconv.Itoa(c.noteNumber)+"]"),
	)
	return []markup.Node{markup.FreshElement("sup", nil, anchor)}
}

func (c *conversion) convertNote(note *model.Note, sc scope) []markup.Node {
	body := c.convertElements(note.Body, sc)
	backLink := markup.NonFreshElement("p", nil,
		markup.Text(" "),
		markup.FreshElement("a", attrs("href", "#"+c.referenceID(note.NoteType, note.NoteID)), markup.Text("↑")),
	)
	return []markup.Node{
		markup.FreshElement("li", attrs("id", c.referentID(note.NoteType, note.NoteID)), append(body, backLink)...),
	}
}

var defaultTablePath = markup.TopLevelElement("table", nil)

func (c *conversion) convertTable(t *model.Table, sc scope) []markup.Node {
	return c.findPathOr(stylemap.TableSubject(t), defaultTablePath).Wrap(func() []markup.Node {
		return c.convertTableChildren(t, sc)
	})
}

func (c *conversion) convertTableChildren(t *model.Table, sc scope) []markup.Node {
	bodyIndex := len(t.Children)
	for i, child := range t.Children {
		if row, ok := child.(*model.TableRow); !ok || !row.IsHeader {
			bodyIndex = i
			break
		}
	}

	var children []markup.Node
	if bodyIndex == 0 {
		children = c.convertElements(t.Children, scope{tableHeader: false})
	} else {
		head := c.convertElements(t.Children[:bodyIndex], scope{tableHeader: true})
		body := c.convertElements(t.Children[bodyIndex:], scope{tableHeader: false})
		children = []markup.Node{
			markup.FreshElement("thead", nil, head...),
			markup.FreshElement("tbody", nil, body...),
		}
	}
	return prepend(markup.ForceWrite, children)
}

func (c *conversion) convertTableCell(cell *model.TableCell, sc scope) []markup.Node {
	tagName := "td"
	if sc.tableHeader {
		tagName = "th"
	}
	var a markup.Attributes
	if cell.ColSpan != 1 {
		a = a.With("colspan", strconv.Itoa(cell.ColSpan))
	}
	if cell.RowSpan != 1 {
		a = a.With("rowspan", strconv.Itoa(cell.RowSpan))
	}
	children := c.convertElements(cell.Children, sc)
	return []markup.Node{markup.FreshElement(tagName, a, prepend(markup.ForceWrite, children)...)}
}

var lineBreakPath = markup.TopLevelElement("br", nil)

func (c *conversion) pathForBreak(b *model.Break) markup.Path {
	if path, ok := c.findPath(stylemap.BreakSubject(b)); ok {
		return path
	}
	if b.BreakType == model.BreakTypeLine {
		return lineBreakPath
	}
	return markup.Empty
}

func (c *conversion) convertInserted(ins *model.Inserted, sc scope) []markup.Node {
	children := c.convertElements(ins.Children, sc)
	if !c.opts.TrackedChangeTokens {
		return children
	}
	id := c.changeID(ins.ChangeID, "ins")
	return c.wrapTrackedChange(TokenInsertion, TrackedChangePayload{
		ID:     id,
		Author: nullable(ins.Author),
		Date:   nullable(ins.Date),
	}, children)
}

func (c *conversion) convertDeleted(del *model.Deleted, sc scope) []markup.Node {
	if !c.opts.TrackedChangeTokens {
		return nil
	}
	children := c.convertElements(del.Children, sc)
	id := c.changeID(del.ChangeID, "del")
	return c.wrapTrackedChange(TokenDeletion, TrackedChangePayload{
		ID:     id,
		Author: nullable(del.Author),
		Date:   nullable(del.Date),
	}, children)
}

// changeID returns the change id from the document, or synthesizes one.
// Insertions and deletions share the counter.
func (c *conversion) changeID(id, prefix string) string {
	if id != "" {
		return id
	}
	c.changeNumber++
	return prefix + "-" + strconv.Itoa(c.changeNumber)
}

func (c *conversion) wrapTrackedChange(kind TokenKind, payload TrackedChangePayload, children []markup.Node) []markup.Node {
	start, err := trackedChangeStartToken(kind, payload)
	if err != nil {
		c.fail(err)
		return children
	}
	nodes := make([]markup.Node, 0, len(children)+2)
	nodes = append(nodes, markup.Text(start))
	nodes = append(nodes, children...)
	return append(nodes, markup.Text(trackedChangeEndToken(kind, payload.ID)))
}

func (c *conversion) convertImage(img *model.Image) []markup.Node {
	c.deferredNumber++
	convert := c.opts.ImageConverter
	return []markup.Node{&markup.Deferred{
		ID: c.deferredNumber,
		Resolve: func(ctx context.Context) ([]markup.Node, error) {
			return convert(ctx, img)
		},
	}}
}

// resolveDeferred resolves every deferred node in document order, one at a
// time. A failing node is reported and renders as nothing.
func (c *conversion) resolveDeferred(ctx context.Context, nodes []markup.Node) (map[int][]markup.Node, error) {
	var deferred []*markup.Deferred
	markup.Walk(nodes, func(n markup.Node) {
		if d, ok := n.(*markup.Deferred); ok {
			deferred = append(deferred, d)
		}
	})

	values := make(map[int][]markup.Node, len(deferred))
	for _, d := range deferred {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		value, err := d.Resolve(ctx)
		if err != nil {
			c.fail(err)
			continue
		}
		values[d.ID] = value
	}
	return values, nil
}

func attrs(kv ...string) markup.Attributes {
	a := make(markup.Attributes, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		a = append(a, markup.Attribute{Name: kv[i], Value: kv[i+1]})
	}
	return a
}

func prepend(n markup.Node, nodes []markup.Node) []markup.Node {
	return append([]markup.Node{n}, nodes...)
}
