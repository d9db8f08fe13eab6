package stylemap

import (
	"strings"
	"testing"

	"github.com/tsawler/docxmark/markup"
	"github.com/tsawler/docxmark/model"
	"github.com/tsawler/docxmark/result"
)

func render(path markup.Path) string {
	nodes := path.Wrap(func() []markup.Node { return []markup.Node{markup.Text("x")} })
	return markup.Render(nodes, markup.FormatHTML, false)
}

func mustParseRule(t *testing.T, line string) Rule {
	t.Helper()
	rule, err := ParseRule(line)
	if err != nil {
		t.Fatalf("ParseRule(%q) error = %v", line, err)
	}
	return rule
}

func paragraph(styleID, styleName string) Subject {
	return ParagraphSubject(&model.Paragraph{StyleID: styleID, StyleName: styleName})
}

func TestParseRule_StyleID(t *testing.T) {
	rule := mustParseRule(t, "p.Heading1 => h1:fresh")

	if !rule.From.Matches(paragraph("Heading1", "Heading 1")) {
		t.Error("expected rule to match paragraph with style ID Heading1")
	}
	if rule.From.Matches(paragraph("Heading2", "")) {
		t.Error("expected rule not to match another style ID")
	}
	if rule.From.Matches(RunSubject(&model.Run{StyleID: "Heading1"})) {
		t.Error("expected paragraph rule not to match a run")
	}
	if got := render(rule.To); got != "<h1>x</h1>" {
		t.Errorf("got %q", got)
	}
}

func TestParseDocumentMatcher_StyleName(t *testing.T) {
	tests := []struct {
		selector  string
		styleName string
		want      bool
	}{
		{"p[style-name='heading 1']", "Heading 1", true},
		{"p[style-name='Heading 1']", "Heading 10", false},
		{"p[style-name^='Code']", "Code Block", true},
		{"p[style-name^='code']", "CODE", true},
		{"p[style-name^='Code']", "My Code", false},
		{"p[style-name='straße']", "STRASSE", true},
		{"p[style-name='Café']", "café", true},
		{"p[style-name='Normal']", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.selector+"/"+tt.styleName, func(t *testing.T) {
			m, err := ParseDocumentMatcher(tt.selector)
			if err != nil {
				t.Fatalf("ParseDocumentMatcher() error = %v", err)
			}
			if got := m.Matches(paragraph("", tt.styleName)); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.styleName, got, tt.want)
			}
		})
	}
}

func TestParseDocumentMatcher_List(t *testing.T) {
	m, err := ParseDocumentMatcher("p:ordered-list(2)")
	if err != nil {
		t.Fatalf("ParseDocumentMatcher() error = %v", err)
	}

	tests := []struct {
		name      string
		numbering *model.NumberingLevel
		want      bool
	}{
		{"ordered level index 1", &model.NumberingLevel{Level: 1, IsOrdered: true}, true},
		{"unordered", &model.NumberingLevel{Level: 1, IsOrdered: false}, false},
		{"other level", &model.NumberingLevel{Level: 0, IsOrdered: true}, false},
		{"not a list", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ParagraphSubject(&model.Paragraph{Numbering: tt.numbering})
			if got := m.Matches(s); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDocumentMatcher_Combined(t *testing.T) {
	m, err := ParseDocumentMatcher("p.List[style-name='List Paragraph']:unordered-list(1)")
	if err != nil {
		t.Fatalf("ParseDocumentMatcher() error = %v", err)
	}
	s := ParagraphSubject(&model.Paragraph{
		StyleID:   "List",
		StyleName: "List Paragraph",
		Numbering: &model.NumberingLevel{Level: 0},
	})
	if !m.Matches(s) {
		t.Error("expected all suffixes to match")
	}
	s.StyleID = "Other"
	if m.Matches(s) {
		t.Error("expected style ID mismatch to fail")
	}
}

func TestParseDocumentMatcher_EscapedIdentifier(t *testing.T) {
	m, err := ParseDocumentMatcher(`p.Heading\ 1`)
	if err != nil {
		t.Fatalf("ParseDocumentMatcher() error = %v", err)
	}
	if !m.Matches(paragraph("Heading 1", "")) {
		t.Error("expected escaped space in style ID to match")
	}
}

func TestParseDocumentMatcher_Keywords(t *testing.T) {
	tests := []struct {
		selector string
		subject  Subject
		other    Subject
	}{
		{"b", Subject{Kind: KindBold}, Subject{Kind: KindItalic}},
		{"i", Subject{Kind: KindItalic}, Subject{Kind: KindBold}},
		{"u", Subject{Kind: KindUnderline}, Subject{Kind: KindBold}},
		{"strike", Subject{Kind: KindStrikethrough}, Subject{Kind: KindBold}},
		{"all-caps", Subject{Kind: KindAllCaps}, Subject{Kind: KindSmallCaps}},
		{"small-caps", Subject{Kind: KindSmallCaps}, Subject{Kind: KindAllCaps}},
		{"comment-reference", Subject{Kind: KindCommentReference}, Subject{Kind: KindCommentRangeStart}},
		{"comment-range-start", Subject{Kind: KindCommentRangeStart}, Subject{Kind: KindCommentRangeEnd}},
		{"comment-range-end", Subject{Kind: KindCommentRangeEnd}, Subject{Kind: KindCommentReference}},
		{"ins", Subject{Kind: KindInserted}, Subject{Kind: KindDeleted}},
		{"del", Subject{Kind: KindDeleted}, Subject{Kind: KindInserted}},
		{"highlight", HighlightSubject("red"), Subject{Kind: KindBold}},
		{"highlight[color='yellow']", HighlightSubject("yellow"), HighlightSubject("green")},
		{"table.Grid", TableSubject(&model.Table{StyleID: "Grid"}), paragraph("Grid", "")},
		{"table[style-name='Plain']", TableSubject(&model.Table{StyleName: "plain"}), TableSubject(&model.Table{StyleName: "Grid"})},
		{"r.Code", RunSubject(&model.Run{StyleID: "Code"}), paragraph("Code", "")},
		{"br[type='page']", BreakSubject(&model.Break{BreakType: model.BreakTypePage}), BreakSubject(&model.Break{BreakType: model.BreakTypeLine})},
		{"br[type='line']", BreakSubject(&model.Break{BreakType: model.BreakTypeLine}), BreakSubject(&model.Break{BreakType: model.BreakTypeColumn})},
		{"br[type='column']", BreakSubject(&model.Break{BreakType: model.BreakTypeColumn}), BreakSubject(&model.Break{BreakType: model.BreakTypePage})},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			m, err := ParseDocumentMatcher(tt.selector)
			if err != nil {
				t.Fatalf("ParseDocumentMatcher() error = %v", err)
			}
			if !m.Matches(tt.subject) {
				t.Errorf("expected %q to match %+v", tt.selector, tt.subject)
			}
			if m.Matches(tt.other) {
				t.Errorf("expected %q not to match %+v", tt.selector, tt.other)
			}
		})
	}
}

func TestParseHTMLPath(t *testing.T) {
	path, err := ParseHTMLPath(`ul|ol > li.item.first[data-x='1']:fresh:separator('\n')`)
	if err != nil {
		t.Fatalf("ParseHTMLPath() error = %v", err)
	}
	tags, ok := path.(markup.TagPath)
	if !ok || len(tags) != 2 {
		t.Fatalf("expected a path of 2 elements, got %#v", path)
	}

	if tags[0].TagName != "ul" || len(tags[0].TagNames) != 2 || tags[0].TagNames[1] != "ol" || tags[0].Fresh {
		t.Errorf("unexpected first element: %+v", tags[0])
	}
	li := tags[1]
	if li.TagName != "li" || !li.Fresh || li.Separator != "\n" {
		t.Errorf("unexpected second element: %+v", li)
	}
	if li.Attributes.Value("class") != "item first" || li.Attributes.Value("data-x") != "1" {
		t.Errorf("unexpected attributes: %v", li.Attributes)
	}
	if got := render(path); got != `<ul><li class="item first" data-x="1">x</li></ul>` {
		t.Errorf("got %q", got)
	}
}

func TestParseRule_PathForms(t *testing.T) {
	ignore := mustParseRule(t, "r[style-name='Secret'] => !")
	if !markup.IsIgnore(ignore.To) {
		t.Errorf("expected ! to ignore content, got %#v", ignore.To)
	}

	empty := mustParseRule(t, "r[style-name='Hyperlink'] =>")
	if got := render(empty.To); got != "x" {
		t.Errorf("expected empty path to pass content through, got %q", got)
	}

	nested := mustParseRule(t, "p.Warning => div.warning > p:fresh")
	if got := render(nested.To); got != `<div class="warning"><p>x</p></div>` {
		t.Errorf("got %q", got)
	}
}

func TestParseRule_Errors(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{
			line: "p.Heading1 =>h1",
			want: "Did not understand this style mapping, so ignored it: p.Heading1 =>h1\n" +
				`Error was at character number 14: Expected end but got identifier "h1"`,
		},
		{
			line: "p[style-name=Heading] => h1",
			want: "Did not understand this style mapping, so ignored it: p[style-name=Heading] => h1\n" +
				`Error was at character number 14: Expected string but got identifier "Heading"`,
		},
		{
			line: "br[type='foo'] => br",
			want: "Did not understand this style mapping, so ignored it: br[type='foo'] => br\n" +
				`Error was at character number 9: Expected line, page or column but got string "foo"`,
		},
		{
			line: "x => y",
			want: "Did not understand this style mapping, so ignored it: x => y\n" +
				`Error was at character number 1: Expected element type but got identifier "x"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := ParseRule(tt.line)
			if err == nil {
				t.Fatal("expected an error")
			}
			if err.Error() != tt.want {
				t.Errorf("error = %q\nwant    %q", err.Error(), tt.want)
			}
		})
	}
}

func TestParse_SkipsMalformedLines(t *testing.T) {
	tests := []struct {
		name      string
		malformed string
		position  string
	}{
		{"missing space after arrow", "p.B =>h2", "Error was at character number"},
		{"unterminated quote", "p[style-name='open", "Error was at character number 14: Expected string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse([]string{
				"p.A => h1",
				tt.malformed,
				"p.C => h3",
			})

			if len(res.Value) != 2 {
				t.Fatalf("expected 2 rules, got %d", len(res.Value))
			}
			if len(res.Messages) != 1 {
				t.Fatalf("expected 1 warning, got %v", res.Messages)
			}
			msg := res.Messages[0]
			if msg.Type != result.TypeWarning {
				t.Errorf("message type = %s, want warning", msg.Type)
			}
			prefix := "Did not understand this style mapping, so ignored it: " + tt.malformed + "\n"
			if !strings.HasPrefix(msg.Message, prefix) {
				t.Errorf("warning = %q, want prefix %q", msg.Message, prefix)
			}
			if !strings.Contains(msg.Message, tt.position) {
				t.Errorf("warning = %q, want position %q", msg.Message, tt.position)
			}
			if got := render(res.Value[1].To); got != "<h3>x</h3>" {
				t.Errorf("expected the line after the failure to compile, got %q", got)
			}
		})
	}
}

func TestReadLines(t *testing.T) {
	text := "# comment\n\n  p.A => h1  \r\n   \n#p.B => h2\nr.C => code"
	lines := ReadLines(text)

	want := []string{"p.A => h1", "r.C => code"}
	if len(lines) != len(want) {
		t.Fatalf("got %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestFind_FirstMatchWins(t *testing.T) {
	rules := Parse([]string{
		"p => div",
		"p.Special => h1",
	}).Value

	path, ok := FindPath(rules, paragraph("Special", ""))
	if !ok {
		t.Fatal("expected a match")
	}
	if got := render(path); got != "<div>x</div>" {
		t.Errorf("expected the first rule to win, got %q", got)
	}

	if _, ok := Find(rules, RunSubject(&model.Run{})); ok {
		t.Error("expected no rule to match a run")
	}
}

func TestDefaultRules(t *testing.T) {
	res := Parse(DefaultStyleMap())
	if len(res.Messages) != 0 {
		t.Fatalf("default style map has invalid lines: %v", res.Messages)
	}
	if len(res.Value) != len(defaultStyleMap) {
		t.Errorf("expected %d rules, got %d", len(defaultStyleMap), len(res.Value))
	}

	rules := DefaultRules()
	tests := []struct {
		name    string
		subject Subject
		want    string
	}{
		{"heading by id", paragraph("Heading1", ""), "<h1>x</h1>"},
		{"heading by name", paragraph("H", "heading 3"), "<h3>x</h3>"},
		{"strong", RunSubject(&model.Run{StyleName: "Strong"}), "<strong>x</strong>"},
		{"footnote reference", RunSubject(&model.Run{StyleName: "footnote reference"}), "x"},
		{
			"nested bullet",
			ParagraphSubject(&model.Paragraph{Numbering: &model.NumberingLevel{Level: 1}}),
			"<ul><li><ul><li>x</li></ul></li></ul>",
		},
		{"normal", paragraph("Normal", "Normal"), "<p>x</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := FindPath(rules, tt.subject)
			if !ok {
				t.Fatal("expected a default rule to match")
			}
			if got := render(path); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokenise_UnterminatedString(t *testing.T) {
	tokens := Tokenise("p[style-name='open")
	last := tokens[len(tokens)-2]
	if last.Name != tokenUnterminatedString || last.Value != "open" {
		t.Errorf("expected unterminated string token, got %s %q", last.Name, last.Value)
	}
}
