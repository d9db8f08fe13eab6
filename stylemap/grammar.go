package stylemap

import (
	"strconv"

	"github.com/tsawler/docxmark/markup"
	"github.com/tsawler/docxmark/model"
	"github.com/tsawler/docxmark/parsec"
)

var (
	identifierRule = parsec.Then(parsec.TokenOfType(tokenIdentifier), decodeEscapes)
	integerRule    = parsec.TokenOfType(tokenInteger)
	stringRule     = parsec.Then(parsec.TokenOfType(tokenString), decodeEscapes)
)

func keyword(name string) parsec.Rule[string] {
	return parsec.TokenWithValue(tokenIdentifier, name)
}

func tok(name string) parsec.Rule[string] {
	return parsec.TokenOfType(name)
}

func keywordMatcher(name string, m Matcher) parsec.Rule[Matcher] {
	return parsec.Constant(keyword(name), m)
}

// matcherOptions accumulates the suffixes of a paragraph, run or table
// selector.
type matcherOptions struct {
	styleID   string
	styleName *StringMatcher
	list      *ListLevel
}

type matcherSuffix func(*matcherOptions)

func matcherSuffixes(rules ...parsec.Rule[matcherSuffix]) parsec.Rule[matcherOptions] {
	suffix := parsec.FirstOf("matcher suffix", rules...)
	return parsec.Then(parsec.ZeroOrMore(suffix), func(suffixes []matcherSuffix) matcherOptions {
		var opts matcherOptions
		for _, apply := range suffixes {
			apply(&opts)
		}
		return opts
	})
}

func newDocumentMatcherRule() parsec.Rule[Matcher] {
	styleIDRule := parsec.Then(
		parsec.Extract[string]("id", parsec.Skip(tok(tokenDot)), parsec.Cut(), parsec.Capture("id", identifierRule)),
		func(id string) matcherSuffix {
			return func(o *matcherOptions) { o.styleID = id }
		},
	)

	styleNameOperand := func(operator string, op Operator) parsec.Rule[*StringMatcher] {
		return parsec.Then(
			parsec.Extract[string]("name", parsec.Skip(tok(operator)), parsec.Cut(), parsec.Capture("name", stringRule)),
			func(name string) *StringMatcher { return &StringMatcher{Operator: op, Operand: name} },
		)
	}
	styleNameRule := parsec.Then(
		parsec.Extract[*StringMatcher]("matcher",
			parsec.Skip(tok(tokenOpenSquareBracket)),
			parsec.Cut(),
			parsec.Skip(keyword("style-name")),
			parsec.Capture("matcher", parsec.FirstOf("style name matcher",
				styleNameOperand(tokenEquals, EqualTo),
				styleNameOperand(tokenStartsWith, StartsWith),
			)),
			parsec.Skip(tok(tokenCloseSquareBracket)),
		),
		func(m *StringMatcher) matcherSuffix {
			return func(o *matcherOptions) { o.styleName = m }
		},
	)

	listTypeRule := parsec.FirstOf("list type",
		parsec.Constant(keyword("ordered-list"), true),
		parsec.Constant(keyword("unordered-list"), false),
	)
	listRule := parsec.Then(
		parsec.Sequence(
			parsec.Skip(tok(tokenColon)),
			parsec.Capture("ordered", listTypeRule),
			parsec.Cut(),
			parsec.Skip(tok(tokenOpenParen)),
			parsec.Capture("level", integerRule),
			parsec.Skip(tok(tokenCloseParen)),
		),
		func(v *parsec.Values) matcherSuffix {
			level, _ := strconv.Atoi(parsec.Get[string](v, "level"))
			list := &ListLevel{LevelIndex: level - 1, IsOrdered: parsec.Get[bool](v, "ordered")}
			return func(o *matcherOptions) { o.list = list }
		},
	)

	elementKind := parsec.FirstOf("p or r or table",
		parsec.Constant(keyword("p"), KindParagraph),
		parsec.Constant(keyword("r"), KindRun),
	)
	paragraphOrRun := parsec.Then(
		parsec.Sequence(
			parsec.Capture("kind", elementKind),
			parsec.Capture("options", matcherSuffixes(styleIDRule, styleNameRule, listRule)),
		),
		func(v *parsec.Values) Matcher {
			return newElementMatcher(parsec.Get[Kind](v, "kind"), parsec.Get[matcherOptions](v, "options"))
		},
	)
	table := parsec.Then(
		parsec.Extract[matcherOptions]("options",
			parsec.Skip(keyword("table")),
			parsec.Capture("options", matcherSuffixes(styleIDRule, styleNameRule)),
		),
		func(opts matcherOptions) Matcher { return newElementMatcher(KindTable, opts) },
	)

	highlight := parsec.Then(
		parsec.Extract[parsec.Option[string]]("color",
			parsec.Skip(keyword("highlight")),
			parsec.Capture("color", parsec.Optional(parsec.Extract[string]("color",
				parsec.Skip(tok(tokenOpenSquareBracket)),
				parsec.Cut(),
				parsec.Skip(keyword("color")),
				parsec.Skip(tok(tokenEquals)),
				parsec.Capture("color", stringRule),
				parsec.Skip(tok(tokenCloseSquareBracket)),
			))),
		),
		func(color parsec.Option[string]) Matcher {
			if c, ok := color.Get(); ok {
				return HighlightMatcher{Color: &c}
			}
			return HighlightMatcher{}
		},
	)

	breakMatcher := parsec.Then(
		parsec.Extract[model.BreakType]("type",
			parsec.Skip(keyword("br")),
			parsec.Cut(),
			parsec.Skip(tok(tokenOpenSquareBracket)),
			parsec.Skip(keyword("type")),
			parsec.Skip(tok(tokenEquals)),
			parsec.Capture("type", breakTypeRule),
			parsec.Skip(tok(tokenCloseSquareBracket)),
		),
		func(t model.BreakType) Matcher { return BreakMatcher{BreakType: t} },
	)

	return parsec.FirstOf("element type",
		paragraphOrRun,
		table,
		keywordMatcher("b", KindMatcher(KindBold)),
		keywordMatcher("i", KindMatcher(KindItalic)),
		keywordMatcher("u", KindMatcher(KindUnderline)),
		keywordMatcher("strike", KindMatcher(KindStrikethrough)),
		keywordMatcher("all-caps", KindMatcher(KindAllCaps)),
		keywordMatcher("small-caps", KindMatcher(KindSmallCaps)),
		highlight,
		keywordMatcher("comment-reference", KindMatcher(KindCommentReference)),
		keywordMatcher("comment-range-start", KindMatcher(KindCommentRangeStart)),
		keywordMatcher("comment-range-end", KindMatcher(KindCommentRangeEnd)),
		keywordMatcher("ins", KindMatcher(KindInserted)),
		keywordMatcher("del", KindMatcher(KindDeleted)),
		breakMatcher,
	)
}

func newElementMatcher(kind Kind, opts matcherOptions) Matcher {
	return &ElementMatcher{Kind: kind, StyleID: opts.styleID, StyleName: opts.styleName, List: opts.list}
}

// breakTypeRule reads a quoted break type. Unknown types fail at the string.
var breakTypeRule parsec.Rule[model.BreakType] = func(input parsec.Input) parsec.Result[model.BreakType] {
	res := stringRule(input)
	if !res.IsSuccess() {
		return parsec.MapResult(res, func(string, parsec.Range) model.BreakType { return "" })
	}
	switch t := model.BreakType(res.Value()); t {
	case model.BreakTypeLine, model.BreakTypePage, model.BreakTypeColumn:
		return parsec.Success(t, res.Remaining(), res.Source())
	}
	head, _ := input.Head()
	loc := head.Source
	return parsec.Failure[model.BreakType]([]parsec.Error{{
		Expected: "line, page or column",
		Actual:   `string "` + head.Value + `"`,
		Location: &loc,
	}}, input)
}

// attributeSpec is one [name='value'] or .class decoration of an HTML path
// element. Classes append to any class already set.
type attributeSpec struct {
	name   string
	value  string
	append bool
}

func newHTMLPathRule() parsec.Rule[markup.Path] {
	attributeRule := parsec.Then(
		parsec.Sequence(
			parsec.Skip(tok(tokenOpenSquareBracket)),
			parsec.Cut(),
			parsec.Capture("name", identifierRule),
			parsec.Skip(tok(tokenEquals)),
			parsec.Capture("value", stringRule),
			parsec.Skip(tok(tokenCloseSquareBracket)),
		),
		func(v *parsec.Values) attributeSpec {
			return attributeSpec{name: parsec.Get[string](v, "name"), value: parsec.Get[string](v, "value")}
		},
	)
	classRule := parsec.Then(
		parsec.Extract[string]("class", parsec.Skip(tok(tokenDot)), parsec.Cut(), parsec.Capture("class", identifierRule)),
		func(class string) attributeSpec { return attributeSpec{name: "class", value: class, append: true} },
	)

	freshRule := parsec.Then(
		parsec.Optional(parsec.Sequence(parsec.Skip(tok(tokenColon)), parsec.Skip(keyword("fresh")))),
		func(o parsec.Option[*parsec.Values]) bool { return o.IsSome() },
	)
	separatorRule := parsec.Then(
		parsec.Optional(parsec.Extract[string]("separator",
			parsec.Skip(tok(tokenColon)),
			parsec.Skip(keyword("separator")),
			parsec.Skip(tok(tokenOpenParen)),
			parsec.Capture("separator", stringRule),
			parsec.Skip(tok(tokenCloseParen)),
		)),
		func(o parsec.Option[string]) string { return o.ValueOrElse("") },
	)

	elementRule := parsec.Then(
		parsec.Sequence(
			parsec.Capture("tagNames", parsec.OneOrMoreWithSeparator(identifierRule, tok(tokenChoice))),
			parsec.Capture("attributes", parsec.ZeroOrMore(parsec.FirstOf("attribute or class", attributeRule, classRule))),
			parsec.Capture("fresh", freshRule),
			parsec.Capture("separator", separatorRule),
		),
		func(v *parsec.Values) *markup.Tag {
			var attrs markup.Attributes
			for _, spec := range parsec.Get[[]attributeSpec](v, "attributes") {
				if existing, ok := attrs.Get(spec.name); ok && spec.append && existing != "" {
					spec.value = existing + " " + spec.value
				}
				attrs = attrs.With(spec.name, spec.value)
			}
			return markup.NewTag(parsec.Get[[]string](v, "tagNames"), attrs, markup.TagOptions{
				Fresh:     parsec.Get[bool](v, "fresh"),
				Separator: parsec.Get[string](v, "separator"),
			})
		},
	)

	elementSeparator := parsec.Sequence(
		parsec.Skip(tok(tokenWhitespace)),
		parsec.Skip(tok(tokenGreaterThan)),
		parsec.Skip(tok(tokenWhitespace)),
	)
	return parsec.FirstOf("html path",
		parsec.Constant(tok(tokenBang), markup.Ignore),
		parsec.Then(parsec.ZeroOrMoreWithSeparator(elementRule, elementSeparator), func(tags []*markup.Tag) markup.Path {
			return markup.Elements(tags...)
		}),
	)
}

func newStyleRule() parsec.Rule[Rule] {
	return parsec.Then(
		parsec.Sequence(
			parsec.Capture("from", documentMatcherRule),
			parsec.Skip(tok(tokenWhitespace)),
			parsec.Skip(tok(tokenArrow)),
			parsec.Capture("to", parsec.Optional(parsec.Extract[markup.Path]("path",
				parsec.Skip(tok(tokenWhitespace)),
				parsec.Capture("path", htmlPathRule),
			))),
			parsec.Skip(tok(parsec.TokenEnd)),
		),
		func(v *parsec.Values) Rule {
			return Rule{
				From: parsec.Get[Matcher](v, "from"),
				To:   parsec.Get[parsec.Option[markup.Path]](v, "to").ValueOrElse(markup.Empty),
			}
		},
	)
}

var (
	documentMatcherRule = parsec.Lazy(newDocumentMatcherRule)
	htmlPathRule        = parsec.Lazy(newHTMLPathRule)
	styleRule           = parsec.Lazy(newStyleRule)
)
