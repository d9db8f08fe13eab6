package convert

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"slices"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/tsawler/docxmark/markup"
	"github.com/tsawler/docxmark/model"
	"github.com/tsawler/docxmark/result"
	"github.com/tsawler/docxmark/stylemap"
)

func para(children ...model.Element) *model.Paragraph {
	return &model.Paragraph{Children: children}
}

func run(children ...model.Element) *model.Run {
	return &model.Run{Children: children}
}

func text(s string) *model.Text {
	return &model.Text{Value: s}
}

func rules(t *testing.T, lines ...string) []stylemap.Rule {
	t.Helper()
	res := stylemap.Parse(lines)
	if len(res.Messages) > 0 {
		t.Fatalf("stylemap.Parse() messages = %v", res.Messages)
	}
	return res.Value
}

func convertDoc(t *testing.T, opts Options, doc *model.Document) result.Result[string] {
	t.Helper()
	res, err := New(opts).Convert(context.Background(), doc)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	return res
}

func convertHTML(t *testing.T, opts Options, children ...model.Element) string {
	t.Helper()
	return convertDoc(t, opts, model.NewDocument(children)).Value
}

func TestConvert_Elements(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		name     string
		elements []model.Element
		want     string
	}{
		{
			name:     "paragraph",
			elements: []model.Element{para(run(text("Hello")))},
			want:     "<p>Hello</p>",
		},
		{
			name:     "empty paragraph is dropped",
			elements: []model.Element{para()},
			want:     "",
		},
		{
			name:     "tab",
			elements: []model.Element{para(run(text("a"), &model.Tab{}, text("b")))},
			want:     "<p>a\tb</p>",
		},
		{
			name: "run formatting nests bold outside italic",
			elements: []model.Element{para(&model.Run{
				Children:          []model.Element{text("x")},
				IsBold:            true,
				IsItalic:          true,
				IsStrikethrough:   true,
				VerticalAlignment: model.VerticalAlignmentSuperscript,
			})},
			want: "<p><strong><em><sup><s>x</s></sup></em></strong></p>",
		},
		{
			name: "adjacent bold runs merge",
			elements: []model.Element{para(
				&model.Run{Children: []model.Element{text("a")}, IsBold: true},
				&model.Run{Children: []model.Element{text("b")}, IsBold: true},
			)},
			want: "<p><strong>ab</strong></p>",
		},
		{
			name: "underline and caps have no default",
			elements: []model.Element{para(&model.Run{
				Children:    []model.Element{text("x")},
				IsUnderline: true,
				IsAllCaps:   true,
				IsSmallCaps: true,
			})},
			want: "<p>x</p>",
		},
		{
			name:     "line break",
			elements: []model.Element{para(run(text("a"), &model.Break{BreakType: model.BreakTypeLine}, text("b")))},
			want:     "<p>a<br />b</p>",
		},
		{
			name:     "page break",
			elements: []model.Element{para(run(text("a"), &model.Break{BreakType: model.BreakTypePage}))},
			want:     "<p>a</p>",
		},
		{
			name: "internal hyperlink",
			elements: []model.Element{para(&model.Hyperlink{
				Anchor:   "top",
				Children: []model.Element{run(text("up"))},
			})},
			want: `<p><a href="#top">up</a></p>`,
		},
		{
			name: "external hyperlink with target",
			elements: []model.Element{para(&model.Hyperlink{
				Href:        "https://example.com/?a=1&b=2",
				TargetFrame: "_blank",
				Children:    []model.Element{run(text("site"))},
			})},
			want: `<p><a href="https://example.com/?a=1&amp;b=2" target="_blank">site</a></p>`,
		},
		{
			name:     "checkbox",
			elements: []model.Element{para(&model.Checkbox{Checked: true}, &model.Checkbox{})},
			want:     `<p><input type="checkbox" checked="checked" /><input type="checkbox" /></p>`,
		},
		{
			name:     "bookmark",
			elements: []model.Element{para(&model.BookmarkStart{Name: "_Toc1"}, run(text("a")))},
			want:     `<p><a id="_Toc1"></a>a</p>`,
		},
		{
			name:     "deletion without tokens is dropped",
			elements: []model.Element{para(run(text("a")), &model.Deleted{Children: []model.Element{run(text("gone"))}})},
			want:     "<p>a</p>",
		},
		{
			name:     "insertion without tokens is inlined",
			elements: []model.Element{para(&model.Inserted{ChangeID: "1", Children: []model.Element{run(text("new"))}})},
			want:     "<p>new</p>",
		},
		{
			name:     "comment reference is ignored by default",
			elements: []model.Element{para(run(text("a")), &model.CommentReference{CommentID: "0"})},
			want:     "<p>a</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := convertHTML(t, opts, tt.elements...); got != tt.want {
				t.Errorf("Convert() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConvert_PreserveEmptyParagraphs(t *testing.T) {
	opts := DefaultOptions()
	opts.IgnoreEmptyParagraphs = false
	if got := convertHTML(t, opts, para(), para(run(text("a")))); got != "<p></p><p>a</p>" {
		t.Errorf("Convert() = %q", got)
	}
}

func TestConvert_HeadingStyle(t *testing.T) {
	opts := DefaultOptions()
	opts.StyleMap = stylemap.DefaultRules()

	res := convertDoc(t, opts, model.NewDocument([]model.Element{
		&model.Paragraph{StyleID: "Heading1", StyleName: "heading 1", Children: []model.Element{run(text("Title"))}},
	}))
	if res.Value != "<h1>Title</h1>" {
		t.Errorf("Convert() = %q, want <h1>Title</h1>", res.Value)
	}
	if len(res.Messages) != 0 {
		t.Errorf("Messages = %v, want none", res.Messages)
	}
}

func TestConvert_UnrecognisedStyles(t *testing.T) {
	opts := DefaultOptions()
	opts.StyleMap = stylemap.DefaultRules()

	res := convertDoc(t, opts, model.NewDocument([]model.Element{
		&model.Paragraph{
			StyleID:   "Custom",
			StyleName: "Custom Style",
			Children: []model.Element{
				&model.Run{StyleID: "Fancy", StyleName: "Fancy Char", Children: []model.Element{text("Body")}},
			},
		},
	}))
	if res.Value != "<p>Body</p>" {
		t.Errorf("Convert() = %q, want <p>Body</p>", res.Value)
	}
	want := []result.Message{
		result.Warning("Unrecognised paragraph style: 'Custom Style' (Style ID: Custom)"),
		result.Warning("Unrecognised run style: 'Fancy Char' (Style ID: Fancy)"),
	}
	if !slices.EqualFunc(res.Messages, want, func(a, b result.Message) bool { return a.String() == b.String() }) {
		t.Errorf("Messages = %v, want %v", res.Messages, want)
	}
}

func TestConvert_StyleRules(t *testing.T) {
	opts := DefaultOptions()
	opts.StyleMap = rules(t,
		"r[style-name='Code'] => code",
		"b => b",
		"highlight[color='yellow'] => mark",
		"u => u",
		"p[style-name='Quote'] => blockquote > p:fresh",
		"table[style-name='Grid'] => table.grid",
		"br[type='page'] => hr",
	)

	tests := []struct {
		name     string
		elements []model.Element
		want     string
	}{
		{
			name: "run style is outermost",
			elements: []model.Element{para(&model.Run{
				StyleID:   "CodeChar",
				StyleName: "Code",
				IsBold:    true,
				Children:  []model.Element{text("x")},
			})},
			want: "<p><code><b>x</b></code></p>",
		},
		{
			name: "highlight is innermost",
			elements: []model.Element{para(&model.Run{
				Highlight:   "yellow",
				IsUnderline: true,
				Children:    []model.Element{text("x")},
			})},
			want: "<p><u><mark>x</mark></u></p>",
		},
		{
			name: "unmatched highlight color",
			elements: []model.Element{para(&model.Run{
				Highlight: "green",
				Children:  []model.Element{text("x")},
			})},
			want: "<p>x</p>",
		},
		{
			name: "consecutive quote paragraphs share the blockquote",
			elements: []model.Element{
				&model.Paragraph{StyleName: "Quote", Children: []model.Element{run(text("a"))}},
				&model.Paragraph{StyleName: "Quote", Children: []model.Element{run(text("b"))}},
			},
			want: "<blockquote><p>a</p><p>b</p></blockquote>",
		},
		{
			name: "table style",
			elements: []model.Element{&model.Table{StyleName: "Grid", Children: []model.Element{
				&model.TableRow{Children: []model.Element{&model.TableCell{ColSpan: 1, RowSpan: 1}}},
			}}},
			want: `<table class="grid"><tr><td></td></tr></table>`,
		},
		{
			name:     "page break rule",
			elements: []model.Element{para(run(text("a"))), para(run(&model.Break{BreakType: model.BreakTypePage}))},
			want:     "<p>a</p><p><hr /></p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := convertHTML(t, opts, tt.elements...); got != tt.want {
				t.Errorf("Convert() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConvert_Table(t *testing.T) {
	cell := func(colSpan, rowSpan int, s string) *model.TableCell {
		return &model.TableCell{ColSpan: colSpan, RowSpan: rowSpan, Children: []model.Element{para(run(text(s)))}}
	}
	table := &model.Table{Children: []model.Element{
		&model.TableRow{IsHeader: true, Children: []model.Element{cell(1, 1, "H1"), cell(1, 1, "H2")}},
		&model.TableRow{Children: []model.Element{cell(2, 1, "wide")}},
		&model.TableRow{Children: []model.Element{cell(1, 2, "tall"), cell(1, 1, "")}},
	}}

	want := `<table><thead><tr><th><p>H1</p></th><th><p>H2</p></th></tr></thead>` +
		`<tbody><tr><td colspan="2"><p>wide</p></td></tr>` +
		`<tr><td rowspan="2"><p>tall</p></td><td></td></tr></tbody></table>`
	if got := convertHTML(t, DefaultOptions(), table); got != want {
		t.Errorf("Convert() = %q\nwant %q", got, want)
	}
}

func TestConvert_Notes(t *testing.T) {
	doc := model.NewDocument([]model.Element{
		para(run(text("x")), &model.NoteReference{NoteType: "footnote", NoteID: "1"}),
		para(run(text("y")), &model.NoteReference{NoteType: "endnote", NoteID: "2"}),
	})
	doc.Notes.Add(&model.Note{NoteType: "footnote", NoteID: "1", Body: []model.Element{para(run(text("fn")))}})
	doc.Notes.Add(&model.Note{NoteType: "endnote", NoteID: "2", Body: []model.Element{para(run(text("en")))}})

	opts := DefaultOptions()
	opts.IDPrefix = "doc-"
	res := convertDoc(t, opts, doc)

	want := `<p>x<sup><a href="#doc-footnote-1" id="doc-footnote-ref-1">[1]</a></sup></p>` +
		`<p>y<sup><a href="#doc-endnote-2" id="doc-endnote-ref-2">[2]</a></sup></p>` +
		`<ol><li id="doc-footnote-1"><p>fn <a href="#doc-footnote-ref-1">↑</a></p></li>` +
		`<li id="doc-endnote-2"><p>en <a href="#doc-endnote-ref-2">↑</a></p></li></ol>`
	if res.Value != want {
		t.Errorf("Convert() = %q\nwant %q", res.Value, want)
	}
}

func TestConvert_MissingNote(t *testing.T) {
	res := convertDoc(t, DefaultOptions(), model.NewDocument([]model.Element{
		para(run(text("x")), &model.NoteReference{NoteType: "footnote", NoteID: "9"}),
	}))
	if len(res.Warnings()) != 1 || res.Warnings()[0].Message != "Could not find footnote with ID 9" {
		t.Errorf("Warnings() = %v", res.Warnings())
	}
}

func commentDoc(children ...model.Element) *model.Document {
	doc := model.NewDocument(children)
	doc.Comments = []*model.Comment{{
		CommentID:      "1",
		AuthorName:     "Jane Doe",
		AuthorInitials: "JD",
		Date:           "2024-01-01T10:00:00Z",
		ParaID:         "P1",
		Body:           []model.Element{para(run(text("Looks <good>")))},
	}}
	return doc
}

func TestConvert_CommentList(t *testing.T) {
	opts := DefaultOptions()
	opts.StyleMap = rules(t, "comment-reference => sup")

	res := convertDoc(t, opts, commentDoc(para(run(text("a")), &model.CommentReference{CommentID: "1"})))
	want := `<p>a<sup><a href="#comment-1" id="comment-ref-1">[JD1]</a></sup></p>` +
		`<dl><dt id="comment-1">Comment [JD1]</dt><dd><p>Looks &lt;good&gt; <a href="#comment-ref-1">↑</a></p></dd></dl>`
	if res.Value != want {
		t.Errorf("Convert() = %q\nwant %q", res.Value, want)
	}
}

func TestConvert_CommentTokens(t *testing.T) {
	opts := DefaultOptions()
	opts.CommentTokens = true
	opts.StyleMap = rules(t, "comment-reference =>")

	res := convertDoc(t, opts, commentDoc(para(
		&model.CommentRangeStart{CommentID: "1"},
		run(text("a")),
		&model.CommentRangeEnd{CommentID: "1"},
		&model.CommentReference{CommentID: "1"},
	)))

	tokens, err := ScanTokens(res.Value)
	if err != nil {
		t.Fatalf("ScanTokens() error = %v", err)
	}
	if len(tokens) != 4 {
		t.Fatalf("ScanTokens() = %d tokens, want 4 in %q", len(tokens), res.Value)
	}

	rangeStart, err := tokens[0].Comment()
	if err != nil {
		t.Fatalf("Comment() error = %v", err)
	}
	if rangeStart.ID != "1" || *rangeStart.AuthorName != "Jane Doe" || *rangeStart.AuthorInitials != "JD" {
		t.Errorf("payload = %+v", rangeStart)
	}
	if rangeStart.ParentParaID != nil {
		t.Errorf("ParentParaID = %q, want nil", *rangeStart.ParentParaID)
	}
	if rangeStart.Text == nil || *rangeStart.Text != "Looks <good>\n" {
		t.Errorf("Text = %v, want %q", rangeStart.Text, "Looks <good>\n")
	}
	if !bytes.Contains(rangeStart.Body, []byte(`"type":"element"`)) {
		t.Errorf("Body = %s, want converted elements", rangeStart.Body)
	}
	if rangeStart.IsPoint {
		t.Error("range start payload has isPoint set")
	}

	if tokens[1].Start || tokens[1].Kind != TokenComment || tokens[1].Value != "1" {
		t.Errorf("tokens[1] = %+v, want comment end 1", tokens[1])
	}
	point, err := tokens[2].Comment()
	if err != nil {
		t.Fatalf("Comment() error = %v", err)
	}
	if !point.IsPoint {
		t.Error("point payload missing isPoint")
	}
	if tokens[3].Offset != tokens[2].Offset+tokens[2].Length {
		t.Error("point comment end token does not follow its start token")
	}
	if strings.Contains(res.Value, "<dl>") {
		t.Error("comment list written in token mode")
	}
}

func TestConvert_CommentRangeForMissingComment(t *testing.T) {
	opts := DefaultOptions()
	opts.CommentTokens = true
	res := convertDoc(t, opts, model.NewDocument([]model.Element{
		para(&model.CommentRangeStart{CommentID: "7"}, run(text("a"))),
	}))
	want := "Comment with ID 7 was referenced by a range but not found in the document"
	if len(res.Warnings()) != 1 || res.Warnings()[0].Message != want {
		t.Errorf("Warnings() = %v, want %q", res.Warnings(), want)
	}
}

func TestCommentReplies(t *testing.T) {
	doc := model.NewDocument(nil)
	doc.Comments = []*model.Comment{
		{CommentID: "1", ParaID: "P1", Date: "2024-01-01"},
		{CommentID: "2", ParentParaID: "P1", Date: "2024-03-01"},
		{CommentID: "3", ParentParaID: "P1", Date: "2024-02-01"},
		{CommentID: "4", ParentParaID: "P1", Date: "2024-03-01"},
		{CommentID: "5", ParentParaID: "P9", Date: "2024-01-15"},
	}
	conv := newConversion(DefaultOptions(), doc)

	var ids []string
	for _, c := range conv.replies("P1") {
		ids = append(ids, c.CommentID)
	}
	if !slices.Equal(ids, []string{"3", "2", "4"}) {
		t.Errorf("replies() = %v, want [3 2 4]", ids)
	}
	if got := conv.replies(""); got != nil {
		t.Errorf("replies(\"\") = %v, want nil", got)
	}

	payload := conv.commentPayload(doc.Comments[0], scope{})
	if len(payload.Replies) != 3 || payload.Replies[0].ID != "3" {
		t.Errorf("payload replies = %+v", payload.Replies)
	}
}

func TestCommentReplies_Cycles(t *testing.T) {
	tests := []struct {
		name     string
		comments []*model.Comment
		// reply ids along the first branch of comment 1's payload
		wantChain []string
	}{
		{
			name: "self parented",
			comments: []*model.Comment{
				{CommentID: "1", ParaID: "P1", ParentParaID: "P1"},
			},
			wantChain: nil,
		},
		{
			name: "two comment cycle",
			comments: []*model.Comment{
				{CommentID: "1", ParaID: "P1", ParentParaID: "P2"},
				{CommentID: "2", ParaID: "P2", ParentParaID: "P1"},
			},
			wantChain: []string{"2"},
		},
		{
			name: "three comment cycle",
			comments: []*model.Comment{
				{CommentID: "1", ParaID: "P1", ParentParaID: "P3"},
				{CommentID: "2", ParaID: "P2", ParentParaID: "P1"},
				{CommentID: "3", ParaID: "P3", ParentParaID: "P2"},
			},
			wantChain: []string{"2", "3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := model.NewDocument(nil)
			doc.Comments = tt.comments
			conv := newConversion(DefaultOptions(), doc)

			payload := conv.commentPayload(doc.Comments[0], scope{})
			var chain []string
			for p := payload; len(p.Replies) > 0; p = p.Replies[0] {
				chain = append(chain, p.Replies[0].ID)
			}
			if !slices.Equal(chain, tt.wantChain) {
				t.Errorf("reply chain = %v, want %v", chain, tt.wantChain)
			}
			if len(conv.messages) != 1 || conv.messages[0].Type != result.TypeWarning {
				t.Errorf("messages = %v, want one cycle warning", conv.messages)
			}
		})
	}
}

func TestConvert_SelfParentedCommentTokens(t *testing.T) {
	opts := DefaultOptions()
	opts.CommentTokens = true
	opts.StyleMap = rules(t, "comment-reference =>")

	doc := commentDoc(para(run(text("a")), &model.CommentReference{CommentID: "1"}))
	doc.Comments[0].ParentParaID = "P1"

	res := convertDoc(t, opts, doc)
	tokens, err := ScanTokens(res.Value)
	if err != nil {
		t.Fatalf("ScanTokens() error = %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("ScanTokens() = %d tokens, want 2 in %q", len(tokens), res.Value)
	}
	payload, err := tokens[0].Comment()
	if err != nil {
		t.Fatalf("Comment() error = %v", err)
	}
	if len(payload.Replies) != 0 {
		t.Errorf("Replies = %+v, want none", payload.Replies)
	}
	if len(res.Warnings()) != 1 {
		t.Errorf("Warnings() = %v, want one cycle warning", res.Warnings())
	}
}

func TestConvert_TrackedInsertionRoundTrip(t *testing.T) {
	opts := DefaultOptions()
	opts.TrackedChangeTokens = true

	out := convertHTML(t, opts, para(&model.Inserted{
		ChangeID: "w1",
		Author:   "A",
		Date:     "2024-01-01",
		Children: []model.Element{run(text("new"))},
	}))

	tokens, err := ScanTokens(out)
	if err != nil {
		t.Fatalf("ScanTokens() error = %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("ScanTokens() = %v, want 2 tokens", tokens)
	}
	if tokens[0].Value != `{"id":"w1","author":"A","date":"2024-01-01"}` {
		t.Errorf("payload = %s", tokens[0].Value)
	}
	payload, err := tokens[0].TrackedChange()
	if err != nil {
		t.Fatalf("TrackedChange() error = %v", err)
	}
	if payload.ID != "w1" || *payload.Author != "A" || *payload.Date != "2024-01-01" {
		t.Errorf("TrackedChange() = %+v", payload)
	}
	end := "[[DOCX_INS_END:w1]]"
	if !strings.HasSuffix(out, end+"</p>") || strings.Index(out, "new") > strings.Index(out, end) {
		t.Errorf("Convert() = %q, want content followed by %s", out, end)
	}
}

func TestConvert_SynthesizedChangeIDs(t *testing.T) {
	opts := DefaultOptions()
	opts.TrackedChangeTokens = true

	out := convertHTML(t, opts, para(
		&model.Inserted{Children: []model.Element{run(text("a"))}},
		&model.Inserted{Children: []model.Element{run(text("b"))}},
		&model.Deleted{Author: "B", Children: []model.Element{run(text("c"))}},
	))
	tokens, err := ScanTokens(out)
	if err != nil {
		t.Fatalf("ScanTokens() error = %v", err)
	}

	var ends []string
	for _, tok := range tokens {
		if !tok.Start {
			ends = append(ends, string(tok.Kind)+":"+tok.Value)
			continue
		}
		payload, err := tok.TrackedChange()
		if err != nil {
			t.Fatalf("TrackedChange() error = %v", err)
		}
		if tok.Kind == TokenDeletion && (payload.Author == nil || payload.Date != nil) {
			t.Errorf("deletion payload = %+v, want author and null date", payload)
		}
	}
	if want := []string{"INS:ins-1", "INS:ins-2", "DEL:del-3"}; !slices.Equal(ends, want) {
		t.Errorf("end tokens = %v, want %v", ends, want)
	}
}

func textContent(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		textContent(c, sb)
	}
}

func TestConvert_TokensSurviveHTMLParsing(t *testing.T) {
	opts := DefaultOptions()
	opts.TrackedChangeTokens = true
	opts.CommentTokens = true

	out := convertDoc(t, opts, commentDoc(
		para(
			&model.CommentRangeStart{CommentID: "1"},
			&model.Inserted{ChangeID: "7", Author: "Ana & Bo", Children: []model.Element{run(text("x < y"))}},
			&model.CommentRangeEnd{CommentID: "1"},
		),
	)).Value

	doc, err := html.Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("html.Parse() error = %v", err)
	}
	var sb strings.Builder
	textContent(doc, &sb)

	want, err := ScanTokens(out)
	if err != nil {
		t.Fatalf("ScanTokens(html) error = %v", err)
	}
	got, err := ScanTokens(sb.String())
	if err != nil {
		t.Fatalf("ScanTokens(text) error = %v", err)
	}
	if len(got) != len(want) || len(got) != 4 {
		t.Fatalf("tokens after parsing = %d, before = %d, want 4", len(got), len(want))
	}
	for i := range got {
		if got[i].Kind != want[i].Kind || got[i].Start != want[i].Start || got[i].Value != want[i].Value {
			t.Errorf("token %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	change, err := got[1].TrackedChange()
	if err != nil {
		t.Fatalf("TrackedChange() error = %v", err)
	}
	if *change.Author != "Ana & Bo" {
		t.Errorf("Author = %q", *change.Author)
	}
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func imageOf(data []byte, err error, alt, contentType string) *model.Image {
	return &model.Image{
		AltText:     alt,
		ContentType: contentType,
		Read: func(context.Context) ([]byte, error) {
			return data, err
		},
	}
}

func TestConvert_Images(t *testing.T) {
	data := testPNG(t)
	res := convertDoc(t, DefaultOptions(), model.NewDocument([]model.Element{
		para(run(imageOf(data, nil, "Chart", ""))),
		para(run(text("a"), imageOf(nil, errors.New("boom"), "", "image/png"))),
		para(run(imageOf([]byte("svg"), nil, "", "image/svg+xml"))),
	}))

	if !strings.HasPrefix(res.Value, `<p><img alt="Chart" src="data:image/png;base64,`) {
		t.Errorf("Convert() = %q, want data URI image first", res.Value)
	}
	if !strings.Contains(res.Value, "<p>a</p>") {
		t.Errorf("Convert() = %q, want the failed image to render as nothing", res.Value)
	}
	if !strings.Contains(res.Value, `<img src="data:image/svg+xml;base64,c3Zn" />`) {
		t.Errorf("Convert() = %q, want declared content type kept", res.Value)
	}
	errs := res.Errors()
	if len(errs) != 1 || errs[0].Message != "boom" {
		t.Errorf("Errors() = %v, want [boom]", errs)
	}
}

func TestConvert_ImagesResolvedInDocumentOrder(t *testing.T) {
	var order []string
	opts := DefaultOptions()
	opts.ImageConverter = func(_ context.Context, img *model.Image) ([]markup.Node, error) {
		order = append(order, img.AltText)
		return []markup.Node{markup.Text(img.AltText)}, nil
	}
	out := convertHTML(t, opts,
		para(run(imageOf(nil, nil, "1", ""))),
		&model.Table{Children: []model.Element{&model.TableRow{Children: []model.Element{
			&model.TableCell{ColSpan: 1, RowSpan: 1, Children: []model.Element{para(run(imageOf(nil, nil, "2", "")))}},
		}}}},
		para(run(imageOf(nil, nil, "3", ""))),
	)
	if !slices.Equal(order, []string{"1", "2", "3"}) {
		t.Errorf("resolution order = %v", order)
	}
	if out != "<p>1</p><table><tr><td><p>2</p></td></tr></table><p>3</p>" {
		t.Errorf("Convert() = %q", out)
	}
}

func TestConvert_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc := model.NewDocument([]model.Element{para(run(imageOf(testPNG(t), nil, "", "")))})
	if _, err := New(DefaultOptions()).Convert(ctx, doc); !errors.Is(err, context.Canceled) {
		t.Errorf("Convert() error = %v, want context.Canceled", err)
	}
}

func TestConvert_Markdown(t *testing.T) {
	opts := DefaultOptions()
	opts.StyleMap = stylemap.DefaultRules()
	opts.OutputFormat = markup.FormatMarkdown

	out := convertHTML(t, opts,
		&model.Paragraph{StyleID: "Heading1", Children: []model.Element{run(text("Title"))}},
		para(&model.Run{IsBold: true, Children: []model.Element{text("bold")}}),
	)
	if want := "# Title\n\n__bold__\n\n"; out != want {
		t.Errorf("Convert() = %q, want %q", out, want)
	}
}

type fakeRecognizer struct {
	text string
	err  error
}

func (f fakeRecognizer) RecognizeImage([]byte) (string, error) {
	return f.text, f.err
}

func TestOCRAltText(t *testing.T) {
	data := testPNG(t)
	tests := []struct {
		name       string
		alt        string
		recognizer Recognizer
		wantAlt    string
	}{
		{"fills missing alt", "", fakeRecognizer{text: " Total\n sales "}, "Total sales"},
		{"keeps existing alt", "Logo", fakeRecognizer{text: "ignored"}, "Logo"},
		{"recognition failure", "", fakeRecognizer{err: errors.New("no engine")}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := OCRAltText(DataURI, tt.recognizer)(context.Background(), imageOf(data, nil, tt.alt, "image/png"))
			if err != nil {
				t.Fatalf("OCRAltText() error = %v", err)
			}
			img := nodes[0].(*markup.ElementNode)
			if got := img.Tag.Attributes.Value("alt"); got != tt.wantAlt {
				t.Errorf("alt = %q, want %q", got, tt.wantAlt)
			}
			if !strings.HasPrefix(img.Tag.Attributes.Value("src"), "data:image/png;base64,") {
				t.Errorf("src = %q", img.Tag.Attributes.Value("src"))
			}
		})
	}
}

func TestSniffContentType(t *testing.T) {
	if got := SniffContentType(testPNG(t)); got != "image/png" {
		t.Errorf("SniffContentType(png) = %q", got)
	}
	if got := SniffContentType([]byte("BM")); got != "application/octet-stream" {
		t.Errorf("SniffContentType(truncated) = %q", got)
	}
}

func TestEncodeURIComponent(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"abcXYZ019", "abcXYZ019"},
		{"-_.!~*'()", "-_.!~*'()"},
		{"a b", "a%20b"},
		{`{"a":1}`, "%7B%22a%22%3A1%7D"},
		{"é", "%C3%A9"},
		{"[]/?#&=+", "%5B%5D%2F%3F%23%26%3D%2B"},
	}
	for _, tt := range tests {
		if got := encodeURIComponent(tt.in); got != tt.want {
			t.Errorf("encodeURIComponent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractText(t *testing.T) {
	got := ExtractText([]model.Element{
		para(run(text("one")), &model.Hyperlink{Children: []model.Element{run(text(" two"))}}),
		&model.Table{Children: []model.Element{&model.TableRow{Children: []model.Element{
			&model.TableCell{Children: []model.Element{para(run(text("cell")))}},
		}}}},
	})
	if got != "one two\ncell\n" {
		t.Errorf("ExtractText() = %q", got)
	}
}
