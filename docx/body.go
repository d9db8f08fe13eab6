package docx

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tsawler/docxmark/model"
	"github.com/tsawler/docxmark/result"
	"github.com/tsawler/docxmark/xmldom"
)

// ignoredElements produce no output and no warning.
var ignoredElements = map[string]bool{
	"office-word:wrap":        true,
	"v:shadow":                true,
	"v:shapetype":             true,
	"w:annotationRef":         true,
	"w:bookmarkEnd":           true,
	"w:sectPr":                true,
	"w:proofErr":              true,
	"w:lastRenderedPageBreak": true,
	"w:footnoteRef":           true,
	"w:endnoteRef":            true,
	"w:pPr":                   true,
	"w:rPr":                   true,
	"w:tblPr":                 true,
	"w:tblGrid":               true,
	"w:trPr":                  true,
	"w:tcPr":                  true,
}

// BodyReaderOptions configures a BodyReader for one part.
type BodyReaderOptions struct {
	Package       Package
	Relationships *Relationships
	ContentTypes  *ContentTypes
	Styles        *Styles
	Numbering     *Numbering
	Files         *ExternalFiles
	// ImageBase is the directory embedded image targets are relative to.
	ImageBase string
}

// BodyReader converts the XML of a body-like part into model elements.
//
// A BodyReader carries state between sibling elements (open complex
// fields, buffered deleted-paragraph content) and must not be shared
// between parts or goroutines.
type BodyReader struct {
	pkg           Package
	relationships *Relationships
	contentTypes  *ContentTypes
	styles        *Styles
	numbering     *Numbering
	files         *ExternalFiles
	imageBase     string

	complexFieldStack        []complexField
	currentInstrText         []string
	deletedParagraphContents []xmldom.Node
	// vMerge records cells that continue a vertical merge until the
	// enclosing table is finished.
	vMerge map[*model.TableCell]bool
}

// NewBodyReader creates a reader. Nil tables are replaced by empty ones.
func NewBodyReader(opts BodyReaderOptions) *BodyReader {
	r := &BodyReader{
		pkg:           opts.Package,
		relationships: opts.Relationships,
		contentTypes:  opts.ContentTypes,
		styles:        opts.Styles,
		numbering:     opts.Numbering,
		files:         opts.Files,
		imageBase:     opts.ImageBase,
		vMerge:        make(map[*model.TableCell]bool),
	}
	if r.relationships == nil {
		r.relationships = emptyRelationships
	}
	if r.contentTypes == nil {
		r.contentTypes = &ContentTypes{}
	}
	if r.styles == nil {
		r.styles = NewStyles()
	}
	if r.numbering == nil {
		r.numbering = NewNumbering(r.styles)
	}
	if r.files == nil {
		r.files = &ExternalFiles{}
	}
	if r.imageBase == "" {
		r.imageBase = "word"
	}
	return r
}

// ReadXMLElements reads a sequence of sibling nodes. Text nodes are skipped.
func (r *BodyReader) ReadXMLElements(nodes []xmldom.Node) result.Result[[]model.Element] {
	res := r.readNodes(nodes)
	return result.New(res.elements, res.messages...)
}

// ReadXMLElement reads a single element.
func (r *BodyReader) ReadXMLElement(el *xmldom.Element) result.Result[[]model.Element] {
	res := r.readElement(el)
	return result.New(res.elements, res.messages...)
}

// readResult is the outcome of reading one or more elements. extra holds
// content that belongs after the enclosing paragraph.
type readResult struct {
	elements []model.Element
	extra    []model.Element
	messages []result.Message
}

func elementResult(els ...model.Element) readResult {
	return readResult{elements: els}
}

func emptyResult() readResult {
	return readResult{}
}

func warningResult(format string, args ...any) readResult {
	return readResult{messages: []result.Message{result.Warningf(format, args...)}}
}

func combineResults(results ...readResult) readResult {
	var out readResult
	lists := make([][]result.Message, 0, len(results))
	for _, r := range results {
		out.elements = append(out.elements, r.elements...)
		out.extra = append(out.extra, r.extra...)
		lists = append(lists, r.messages)
	}
	out.messages = result.CombineMessages(lists...)
	return out
}

func (r readResult) withElements(els ...model.Element) readResult {
	return readResult{elements: els, extra: r.extra, messages: r.messages}
}

func (r readResult) withMessages(msgs ...result.Message) readResult {
	r.messages = result.CombineMessages(r.messages, msgs)
	return r
}

func (r readResult) toExtra() readResult {
	return readResult{extra: concatElements(r.extra, r.elements), messages: r.messages}
}

func (r readResult) insertExtra() readResult {
	return readResult{elements: concatElements(r.elements, r.extra), messages: r.messages}
}

func concatElements(a, b []model.Element) []model.Element {
	out := make([]model.Element, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}

func (r *BodyReader) readNodes(nodes []xmldom.Node) readResult {
	results := make([]readResult, 0, len(nodes))
	for _, n := range nodes {
		if el, ok := n.(*xmldom.Element); ok {
			results = append(results, r.readElement(el))
		}
	}
	return combineResults(results...)
}

func (r *BodyReader) readChildren(el *xmldom.Element) readResult {
	return r.readNodes(el.Children)
}

func (r *BodyReader) readElement(el *xmldom.Element) readResult {
	switch el.Name {
	case "w:p":
		return r.readParagraph(el)
	case "w:r":
		return r.readRun(el)
	case "w:fldChar":
		return r.readFldChar(el)
	case "w:instrText":
		r.currentInstrText = append(r.currentInstrText, el.Text())
		return emptyResult()
	case "w:t", "w:delText":
		return elementResult(&model.Text{Value: el.Text()})
	case "w:tab":
		return elementResult(&model.Tab{})
	case "w:noBreakHyphen":
		return elementResult(&model.Text{Value: "\u2011"})
	case "w:softHyphen":
		return elementResult(&model.Text{Value: "\u00ad"})
	case "w:sym":
		return r.readSymbol(el)
	case "w:hyperlink":
		return r.readHyperlink(el)
	case "w:tbl":
		return r.readTable(el)
	case "w:tr":
		return r.readTableRow(el)
	case "w:tc":
		return r.readTableCell(el)
	case "w:footnoteReference":
		return elementResult(&model.NoteReference{NoteType: "footnote", NoteID: el.AttrOr("w:id", "")})
	case "w:endnoteReference":
		return elementResult(&model.NoteReference{NoteType: "endnote", NoteID: el.AttrOr("w:id", "")})
	case "w:commentReference":
		return elementResult(&model.CommentReference{CommentID: el.AttrOr("w:id", "")})
	case "w:commentRangeStart":
		return elementResult(&model.CommentRangeStart{CommentID: el.AttrOr("w:id", "")})
	case "w:commentRangeEnd":
		return elementResult(&model.CommentRangeEnd{CommentID: el.AttrOr("w:id", "")})
	case "w:br":
		return readBreak(el)
	case "w:bookmarkStart":
		name := el.AttrOr("w:name", "")
		if name == "_GoBack" {
			return emptyResult()
		}
		return elementResult(&model.BookmarkStart{Name: name})
	case "w:sdt":
		return r.readStructuredDocumentTag(el)
	case "w:ins":
		res := r.readChildren(el)
		return res.withElements(&model.Inserted{
			Children: res.elements,
			Author:   el.AttrOr("w:author", ""),
			Date:     el.AttrOr("w:date", ""),
			ChangeID: el.AttrOr("w:id", ""),
		})
	case "w:del":
		res := r.readChildren(el)
		return res.withElements(&model.Deleted{
			Children: res.elements,
			Author:   el.AttrOr("w:author", ""),
			Date:     el.AttrOr("w:date", ""),
			ChangeID: el.AttrOr("w:id", ""),
		})
	case "w:object", "w:smartTag", "w:drawing", "w:txbxContent",
		"v:group", "v:rect", "v:roundrect", "v:shape", "v:textbox":
		return r.readChildren(el)
	case "w:pict":
		return r.readChildren(el).toExtra()
	case "wp:inline", "wp:anchor":
		return r.readDrawingElement(el)
	case "v:imagedata":
		return r.readImageData(el)
	}

	if ignoredElements[el.Name] {
		return emptyResult()
	}
	return warningResult("An unrecognised element was ignored: %s", el.Name)
}

func (r *BodyReader) readParagraph(el *xmldom.Element) readResult {
	pPr := el.FirstOrEmpty("w:pPr")
	if pPr.FirstOrEmpty("w:rPr").First("w:del") != nil {
		r.deletedParagraphContents = append(r.deletedParagraphContents, el.Children...)
		return emptyResult()
	}

	children := el.Children
	if len(r.deletedParagraphContents) > 0 {
		children = append(append([]xmldom.Node(nil), r.deletedParagraphContents...), children...)
		r.deletedParagraphContents = nil
	}

	props := r.readParagraphProperties(pPr)
	res := r.readNodes(children)

	p := props.paragraph
	p.Children = res.elements
	p.ParaID = el.AttrOr("wordml:paraId", "")

	return res.withElements(p).withMessages(props.messages...).insertExtra()
}

type paragraphProperties struct {
	paragraph *model.Paragraph
	messages  []result.Message
}

func (r *BodyReader) readParagraphProperties(pPr *xmldom.Element) paragraphProperties {
	styleID, styleName, msgs := readStyle(pPr, "w:pStyle", "Paragraph", r.styles.FindParagraphStyleByID)

	p := &model.Paragraph{
		StyleID:   styleID,
		StyleName: styleName,
		Alignment: pPr.FirstOrEmpty("w:jc").AttrOr("w:val", ""),
		Indent:    readParagraphIndent(pPr.FirstOrEmpty("w:ind")),
	}
	if level := r.readNumberingProperties(styleID, pPr.FirstOrEmpty("w:numPr")); level != nil {
		p.Numbering = level.toModel()
	}
	return paragraphProperties{paragraph: p, messages: msgs}
}

func readParagraphIndent(ind *xmldom.Element) model.Indent {
	first := func(names ...string) string {
		for _, n := range names {
			if v, ok := ind.Attr(n); ok && v != "" {
				return v
			}
		}
		return ""
	}
	return model.Indent{
		Start:     first("w:start", "w:left"),
		End:       first("w:end", "w:right"),
		FirstLine: first("w:firstLine"),
		Hanging:   first("w:hanging"),
	}
}

// readNumberingProperties resolves the list level of a paragraph: an
// explicit (numId, ilvl) pair first, then the level bound to the paragraph
// style, then level 0 of the numId alone.
func (r *BodyReader) readNumberingProperties(styleID string, numPr *xmldom.Element) *NumberingLevel {
	level, hasLevel := numPr.FirstOrEmpty("w:ilvl").Attr("w:val")
	numID, hasNumID := numPr.FirstOrEmpty("w:numId").Attr("w:val")

	if hasLevel && hasNumID {
		return r.numbering.FindLevel(numID, level)
	}
	if styleID != "" {
		if l := r.numbering.FindLevelByParagraphStyleID(styleID); l != nil {
			return l
		}
	}
	if hasNumID {
		return r.numbering.FindLevel(numID, "0")
	}
	return nil
}

// readStyle reads a style reference such as w:pStyle. An id that is not
// defined in the styles part keeps its id and produces a warning.
func readStyle(props *xmldom.Element, tag, styleType string, find func(string) *Style) (id, name string, msgs []result.Message) {
	styleEl := props.First(tag)
	if styleEl == nil {
		return "", "", nil
	}
	id = styleEl.AttrOr("w:val", "")
	if id == "" {
		return "", "", nil
	}
	if style := find(id); style != nil {
		return id, style.Name, nil
	}
	return id, "", []result.Message{undefinedStyleWarning(styleType, id)}
}

func undefinedStyleWarning(styleType, id string) result.Message {
	return result.Warningf("%s style with ID %s was referenced but not defined in the document", styleType, id)
}

func (r *BodyReader) readRun(el *xmldom.Element) readResult {
	run, msgs := r.readRunProperties(el.FirstOrEmpty("w:rPr"))
	res := r.readChildren(el)

	children := res.elements
	if link := r.currentHyperlink(); link != nil {
		h := *link
		h.Children = children
		children = []model.Element{&h}
	}
	run.Children = children
	return res.withElements(run).withMessages(msgs...)
}

var fontSizePattern = regexp.MustCompile(`^[0-9]+$`)

func (r *BodyReader) readRunProperties(rPr *xmldom.Element) (*model.Run, []result.Message) {
	styleID, styleName, msgs := readStyle(rPr, "w:rStyle", "Run", r.styles.FindCharacterStyleByID)

	run := &model.Run{
		StyleID:           styleID,
		StyleName:         styleName,
		VerticalAlignment: model.VerticalAlignment(rPr.FirstOrEmpty("w:vertAlign").AttrOr("w:val", "")),
		Font:              rPr.FirstOrEmpty("w:rFonts").AttrOr("w:ascii", ""),
		IsBold:            readBooleanElement(rPr.First("w:b")),
		IsUnderline:       readUnderline(rPr.First("w:u")),
		IsItalic:          readBooleanElement(rPr.First("w:i")),
		IsStrikethrough:   readBooleanElement(rPr.First("w:strike")),
		IsAllCaps:         readBooleanElement(rPr.First("w:caps")),
		IsSmallCaps:       readBooleanElement(rPr.First("w:smallCaps")),
		Highlight:         readHighlight(rPr.FirstOrEmpty("w:highlight").AttrOr("w:val", "")),
	}
	if sz := rPr.FirstOrEmpty("w:sz").AttrOr("w:val", ""); fontSizePattern.MatchString(sz) {
		run.FontSize = parseHalfPoints(sz)
	}
	return run, msgs
}

// parseHalfPoints parses a size in half-points to points.
// Word uses half-points for font sizes (e.g., "24" = 12pt).
func parseHalfPoints(s string) float64 {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return val / 2
}

// readBooleanElement reads toggles like w:b: present means true unless
// w:val says otherwise.
func readBooleanElement(el *xmldom.Element) bool {
	if el == nil {
		return false
	}
	return readBooleanAttributeValue(el.Attr("w:val"))
}

func readBooleanAttributeValue(value string, present bool) bool {
	if !present {
		return true
	}
	return value != "false" && value != "0"
}

func readUnderline(el *xmldom.Element) bool {
	if el == nil {
		return false
	}
	v, ok := el.Attr("w:val")
	return ok && v != "false" && v != "0" && v != "none"
}

func readHighlight(v string) string {
	if v == "none" {
		return ""
	}
	return v
}

func readBreak(el *xmldom.Element) readResult {
	breakType, ok := el.Attr("w:type")
	switch {
	case !ok || breakType == "textWrapping":
		return elementResult(&model.Break{BreakType: model.BreakTypeLine})
	case breakType == "page":
		return elementResult(&model.Break{BreakType: model.BreakTypePage})
	case breakType == "column":
		return elementResult(&model.Break{BreakType: model.BreakTypeColumn})
	default:
		return warningResult("Unsupported break type: %s", breakType)
	}
}

func (r *BodyReader) readHyperlink(el *xmldom.Element) readResult {
	res := r.readChildren(el)
	relationshipID := el.AttrOr("r:id", "")
	anchor := el.AttrOr("w:anchor", "")
	targetFrame := el.AttrOr("w:tgtFrame", "")

	switch {
	case relationshipID != "":
		href, ok := r.relationships.FindTargetByID(relationshipID)
		if !ok {
			return res.withMessages(result.Warningf("Hyperlink relationship with ID %s was not found", relationshipID))
		}
		if anchor != "" {
			href = replaceFragment(href, anchor)
		}
		return res.withElements(&model.Hyperlink{Children: res.elements, Href: href, TargetFrame: targetFrame})
	case anchor != "":
		return res.withElements(&model.Hyperlink{Children: res.elements, Anchor: anchor, TargetFrame: targetFrame})
	default:
		return res
	}
}

func replaceFragment(uri, fragment string) string {
	if i := strings.Index(uri, "#"); i >= 0 {
		uri = uri[:i]
	}
	return uri + "#" + fragment
}

// readSymbol converts w:sym through the dingbat tables. Private-use codes
// of the form F0xx are retried without the F0 prefix.
func (r *BodyReader) readSymbol(el *xmldom.Element) readResult {
	font := el.AttrOr("w:font", "")
	char := el.AttrOr("w:char", "")

	s, ok := dingbatToUnicode(font, char)
	if !ok && len(char) == 4 && strings.HasPrefix(strings.ToUpper(char), "F0") {
		s, ok = dingbatToUnicode(font, char[2:])
	}
	if !ok {
		return warningResult("A w:sym element with an unsupported character was ignored: char %s in font %s", char, font)
	}
	return elementResult(&model.Text{Value: s})
}

func (r *BodyReader) readStructuredDocumentTag(el *xmldom.Element) readResult {
	res := r.readNodes(el.FirstOrEmpty("w:sdtContent").Children)

	checkbox := el.FirstOrEmpty("w:sdtPr").First("wordml:checkbox")
	if checkbox == nil {
		return res
	}

	checkedEl := checkbox.First("wordml:checked")
	checked := false
	if checkedEl != nil {
		checked = readBooleanAttributeValue(checkedEl.Attr("wordml:val"))
	}
	documentCheckbox := &model.Checkbox{Checked: checked}

	replaced := false
	content := make([]model.Element, len(res.elements))
	for i, e := range res.elements {
		content[i] = model.Transform(e, func(e model.Element) model.Element {
			if t, ok := e.(*model.Text); ok && t.Value != "" && !replaced {
				replaced = true
				return documentCheckbox
			}
			return e
		})
	}
	if replaced {
		return res.withElements(content...)
	}
	return res.withElements(documentCheckbox)
}
