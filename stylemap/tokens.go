package stylemap

import (
	"regexp"

	"github.com/tsawler/docxmark/parsec"
)

const (
	tokenIdentifier         = "identifier"
	tokenDot                = "dot"
	tokenColon              = "colon"
	tokenGreaterThan        = "gt"
	tokenWhitespace         = "whitespace"
	tokenArrow              = "arrow"
	tokenEquals             = "equals"
	tokenStartsWith         = "startsWith"
	tokenOpenParen          = "open-paren"
	tokenCloseParen         = "close-paren"
	tokenOpenSquareBracket  = "open-square-bracket"
	tokenCloseSquareBracket = "close-square-bracket"
	tokenString             = "string"
	tokenUnterminatedString = "unterminated-string"
	tokenInteger            = "integer"
	tokenChoice             = "choice"
	tokenBang               = "bang"
)

const (
	identifierCharacter = `(?:[a-zA-Z\-_]|\\.)`
	stringPrefix        = `'((?:\\.|[^'])*)`
)

var tokeniser = parsec.NewRegexTokeniser(
	parsec.NewTokenRule(tokenIdentifier, `(`+identifierCharacter+`(?:`+identifierCharacter+`|[0-9])*)`),
	parsec.NewTokenRule(tokenDot, `\.`),
	parsec.NewTokenRule(tokenColon, `:`),
	parsec.NewTokenRule(tokenGreaterThan, `>`),
	parsec.NewTokenRule(tokenWhitespace, `\s+`),
	parsec.NewTokenRule(tokenArrow, `=>`),
	parsec.NewTokenRule(tokenEquals, `=`),
	parsec.NewTokenRule(tokenStartsWith, `\^=`),
	parsec.NewTokenRule(tokenOpenParen, `\(`),
	parsec.NewTokenRule(tokenCloseParen, `\)`),
	parsec.NewTokenRule(tokenOpenSquareBracket, `\[`),
	parsec.NewTokenRule(tokenCloseSquareBracket, `\]`),
	parsec.NewTokenRule(tokenString, stringPrefix+`'`),
	parsec.NewTokenRule(tokenUnterminatedString, stringPrefix),
	parsec.NewTokenRule(tokenInteger, `([0-9]+)`),
	parsec.NewTokenRule(tokenChoice, `\|`),
	parsec.NewTokenRule(tokenBang, `(!)`),
)

// Tokenise splits a style-map line into tokens.
func Tokenise(s string) []parsec.Token {
	return tokeniser.Tokenise(s)
}

var escapeSequence = regexp.MustCompile(`\\(.)`)

// decodeEscapes replaces \n, \r and \t with their characters and any other
// escaped character with itself.
func decodeEscapes(s string) string {
	return escapeSequence.ReplaceAllStringFunc(s, func(m string) string {
		switch m[1:] {
		case "n":
			return "\n"
		case "r":
			return "\r"
		case "t":
			return "\t"
		default:
			return m[1:]
		}
	})
}
