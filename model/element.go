package model

import "context"

// ElementType identifies the concrete type of an Element.
type ElementType int

const (
	ElementTypeUnknown ElementType = iota
	ElementTypeDocument
	ElementTypeParagraph
	ElementTypeRun
	ElementTypeText
	ElementTypeTab
	ElementTypeCheckbox
	ElementTypeHyperlink
	ElementTypeNoteReference
	ElementTypeNote
	ElementTypeImage
	ElementTypeCommentReference
	ElementTypeCommentRangeStart
	ElementTypeCommentRangeEnd
	ElementTypeComment
	ElementTypeInserted
	ElementTypeDeleted
	ElementTypeTable
	ElementTypeTableRow
	ElementTypeTableCell
	ElementTypeBreak
	ElementTypeBookmarkStart
)

func (et ElementType) String() string {
	switch et {
	case ElementTypeDocument:
		return "document"
	case ElementTypeParagraph:
		return "paragraph"
	case ElementTypeRun:
		return "run"
	case ElementTypeText:
		return "text"
	case ElementTypeTab:
		return "tab"
	case ElementTypeCheckbox:
		return "checkbox"
	case ElementTypeHyperlink:
		return "hyperlink"
	case ElementTypeNoteReference:
		return "noteReference"
	case ElementTypeNote:
		return "note"
	case ElementTypeImage:
		return "image"
	case ElementTypeCommentReference:
		return "commentReference"
	case ElementTypeCommentRangeStart:
		return "commentRangeStart"
	case ElementTypeCommentRangeEnd:
		return "commentRangeEnd"
	case ElementTypeComment:
		return "comment"
	case ElementTypeInserted:
		return "inserted"
	case ElementTypeDeleted:
		return "deleted"
	case ElementTypeTable:
		return "table"
	case ElementTypeTableRow:
		return "tableRow"
	case ElementTypeTableCell:
		return "tableCell"
	case ElementTypeBreak:
		return "break"
	case ElementTypeBookmarkStart:
		return "bookmarkStart"
	default:
		return "unknown"
	}
}

// Element is implemented only by the types in this package.
type Element interface {
	Type() ElementType
	element()
}

// Indent holds paragraph indentation values as written in the document
// (twentieths of a point).
type Indent struct {
	Start     string
	End       string
	FirstLine string
	Hanging   string
}

// NumberingLevel describes the list level a paragraph belongs to.
type NumberingLevel struct {
	Level     int
	IsOrdered bool
}

// VerticalAlignment of a run.
type VerticalAlignment string

const (
	VerticalAlignmentBaseline    VerticalAlignment = "baseline"
	VerticalAlignmentSuperscript VerticalAlignment = "superscript"
	VerticalAlignmentSubscript   VerticalAlignment = "subscript"
)

// BreakType of a Break element.
type BreakType string

const (
	BreakTypeLine   BreakType = "line"
	BreakTypePage   BreakType = "page"
	BreakTypeColumn BreakType = "column"
)

// Paragraph is a block of runs.
type Paragraph struct {
	Children  []Element
	StyleID   string
	StyleName string
	Numbering *NumberingLevel
	Alignment string
	Indent    Indent
	ParaID    string
}

// Run is a span of inline content sharing character formatting.
type Run struct {
	Children          []Element
	StyleID           string
	StyleName         string
	IsBold            bool
	IsItalic          bool
	IsUnderline       bool
	IsStrikethrough   bool
	IsAllCaps         bool
	IsSmallCaps       bool
	VerticalAlignment VerticalAlignment
	Font              string
	// FontSize is in points; zero when unset.
	FontSize  float64
	Highlight string
}

// Text is literal text.
type Text struct {
	Value string
}

// Tab is a tab character.
type Tab struct{}

// Checkbox is a form checkbox.
type Checkbox struct {
	Checked bool
}

// Hyperlink wraps inline content. Exactly one of Href and Anchor is usually
// set; Href wins when both are.
type Hyperlink struct {
	Children    []Element
	Href        string
	Anchor      string
	TargetFrame string
}

// NoteReference points at a footnote or endnote.
type NoteReference struct {
	NoteType string
	NoteID   string
}

// Note is a footnote or endnote body.
type Note struct {
	NoteType string
	NoteID   string
	Body     []Element
}

// Image is an embedded or linked picture. Read is called at conversion time.
type Image struct {
	AltText     string
	ContentType string
	Read        func(ctx context.Context) ([]byte, error)
}

// CommentReference marks where a comment is anchored.
type CommentReference struct {
	CommentID string
}

// CommentRangeStart marks the start of the text a comment applies to.
type CommentRangeStart struct {
	CommentID string
}

// CommentRangeEnd marks the end of the text a comment applies to.
type CommentRangeEnd struct {
	CommentID string
}

// Comment is a comment defined in the comments part. Empty strings mean the
// value is absent.
type Comment struct {
	CommentID      string
	Body           []Element
	AuthorName     string
	AuthorInitials string
	Date           string
	ParaID         string
	ParentParaID   string
}

// Inserted is a tracked insertion.
type Inserted struct {
	Children []Element
	Author   string
	Date     string
	ChangeID string
}

// Deleted is a tracked deletion.
type Deleted struct {
	Children []Element
	Author   string
	Date     string
	ChangeID string
}

// Table is a table of rows.
type Table struct {
	Children  []Element
	StyleID   string
	StyleName string
}

// TableRow is a row of cells.
type TableRow struct {
	Children []Element
	IsHeader bool
}

// TableCell is a table cell. ColSpan and RowSpan are at least 1.
type TableCell struct {
	Children []Element
	ColSpan  int
	RowSpan  int
}

// Break is a line, page or column break.
type Break struct {
	BreakType BreakType
}

// BookmarkStart is a named anchor.
type BookmarkStart struct {
	Name string
}

func (*Document) Type() ElementType          { return ElementTypeDocument }
func (*Paragraph) Type() ElementType         { return ElementTypeParagraph }
func (*Run) Type() ElementType               { return ElementTypeRun }
func (*Text) Type() ElementType              { return ElementTypeText }
func (*Tab) Type() ElementType               { return ElementTypeTab }
func (*Checkbox) Type() ElementType          { return ElementTypeCheckbox }
func (*Hyperlink) Type() ElementType         { return ElementTypeHyperlink }
func (*NoteReference) Type() ElementType     { return ElementTypeNoteReference }
func (*Note) Type() ElementType              { return ElementTypeNote }
func (*Image) Type() ElementType             { return ElementTypeImage }
func (*CommentReference) Type() ElementType  { return ElementTypeCommentReference }
func (*CommentRangeStart) Type() ElementType { return ElementTypeCommentRangeStart }
func (*CommentRangeEnd) Type() ElementType   { return ElementTypeCommentRangeEnd }
func (*Comment) Type() ElementType           { return ElementTypeComment }
func (*Inserted) Type() ElementType          { return ElementTypeInserted }
func (*Deleted) Type() ElementType           { return ElementTypeDeleted }
func (*Table) Type() ElementType             { return ElementTypeTable }
func (*TableRow) Type() ElementType          { return ElementTypeTableRow }
func (*TableCell) Type() ElementType         { return ElementTypeTableCell }
func (*Break) Type() ElementType             { return ElementTypeBreak }
func (*BookmarkStart) Type() ElementType     { return ElementTypeBookmarkStart }

func (*Document) element()          {}
func (*Paragraph) element()         {}
func (*Run) element()               {}
func (*Text) element()              {}
func (*Tab) element()               {}
func (*Checkbox) element()          {}
func (*Hyperlink) element()         {}
func (*NoteReference) element()     {}
func (*Note) element()              {}
func (*Image) element()             {}
func (*CommentReference) element()  {}
func (*CommentRangeStart) element() {}
func (*CommentRangeEnd) element()   {}
func (*Comment) element()           {}
func (*Inserted) element()          {}
func (*Deleted) element()           {}
func (*Table) element()             {}
func (*TableRow) element()          {}
func (*TableCell) element()         {}
func (*Break) element()             {}
func (*BookmarkStart) element()     {}

// Children returns the child elements of container types and nil for leaves.
// Note and Comment bodies are returned as their children.
func Children(e Element) []Element {
	switch el := e.(type) {
	case *Document:
		return el.Children
	case *Paragraph:
		return el.Children
	case *Run:
		return el.Children
	case *Hyperlink:
		return el.Children
	case *Note:
		return el.Body
	case *Comment:
		return el.Body
	case *Inserted:
		return el.Children
	case *Deleted:
		return el.Children
	case *Table:
		return el.Children
	case *TableRow:
		return el.Children
	case *TableCell:
		return el.Children
	default:
		return nil
	}
}

// WithChildren returns a shallow copy of e holding children. Leaves are
// returned unchanged.
func WithChildren(e Element, children []Element) Element {
	switch el := e.(type) {
	case *Document:
		c := *el
		c.Children = children
		return &c
	case *Paragraph:
		c := *el
		c.Children = children
		return &c
	case *Run:
		c := *el
		c.Children = children
		return &c
	case *Hyperlink:
		c := *el
		c.Children = children
		return &c
	case *Note:
		c := *el
		c.Body = children
		return &c
	case *Comment:
		c := *el
		c.Body = children
		return &c
	case *Inserted:
		c := *el
		c.Children = children
		return &c
	case *Deleted:
		c := *el
		c.Children = children
		return &c
	case *Table:
		c := *el
		c.Children = children
		return &c
	case *TableRow:
		c := *el
		c.Children = children
		return &c
	case *TableCell:
		c := *el
		c.Children = children
		return &c
	default:
		return e
	}
}
