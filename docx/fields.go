package docx

import (
	"regexp"
	"strings"

	"github.com/tsawler/docxmark/model"
	"github.com/tsawler/docxmark/xmldom"
)

type complexFieldKind int

const (
	fieldBegin complexFieldKind = iota
	fieldHyperlink
	fieldCheckbox
	fieldUnknown
)

// complexField is an entry on the field stack. A field starts as
// fieldBegin and is replaced by its parsed form at w:fldChar separate.
type complexField struct {
	kind      complexFieldKind
	fldChar   *xmldom.Element
	hyperlink *model.Hyperlink
	checked   bool
}

var (
	externalLinkPattern = regexp.MustCompile(`\s*HYPERLINK "(.*)"`)
	internalLinkPattern = regexp.MustCompile(`\s*HYPERLINK\s+\\l\s+"(.*)"`)
	checkboxPattern     = regexp.MustCompile(`\s*FORMCHECKBOX\s*`)
)

func (r *BodyReader) readFldChar(el *xmldom.Element) readResult {
	switch el.AttrOr("w:fldCharType", "") {
	case "begin":
		r.complexFieldStack = append(r.complexFieldStack, complexField{kind: fieldBegin, fldChar: el})
		r.currentInstrText = nil
	case "end":
		field, ok := r.popComplexField()
		if !ok {
			return emptyResult()
		}
		if field.kind == fieldBegin {
			field = r.parseCurrentInstrText(field)
		}
		if field.kind == fieldCheckbox {
			return elementResult(&model.Checkbox{Checked: field.checked})
		}
	case "separate":
		field, ok := r.popComplexField()
		if !ok {
			return emptyResult()
		}
		r.complexFieldStack = append(r.complexFieldStack, r.parseCurrentInstrText(field))
	}
	return emptyResult()
}

func (r *BodyReader) popComplexField() (complexField, bool) {
	n := len(r.complexFieldStack)
	if n == 0 {
		return complexField{}, false
	}
	field := r.complexFieldStack[n-1]
	r.complexFieldStack = r.complexFieldStack[:n-1]
	return field, true
}

// currentHyperlink returns the innermost open hyperlink field, or nil.
func (r *BodyReader) currentHyperlink() *model.Hyperlink {
	for i := len(r.complexFieldStack) - 1; i >= 0; i-- {
		if r.complexFieldStack[i].kind == fieldHyperlink {
			return r.complexFieldStack[i].hyperlink
		}
	}
	return nil
}

func (r *BodyReader) parseCurrentInstrText(field complexField) complexField {
	fldChar := xmldom.EmptyElement()
	if field.kind == fieldBegin {
		fldChar = field.fldChar
	}
	return parseInstrText(strings.Join(r.currentInstrText, ""), fldChar)
}

func parseInstrText(instrText string, fldChar *xmldom.Element) complexField {
	if m := externalLinkPattern.FindStringSubmatch(instrText); m != nil {
		return complexField{kind: fieldHyperlink, hyperlink: &model.Hyperlink{Href: m[1]}}
	}
	if m := internalLinkPattern.FindStringSubmatch(instrText); m != nil {
		return complexField{kind: fieldHyperlink, hyperlink: &model.Hyperlink{Anchor: m[1]}}
	}
	if checkboxPattern.MatchString(instrText) {
		checkbox := fldChar.FirstOrEmpty("w:ffData").FirstOrEmpty("w:checkBox")
		checked := checkbox.First("w:checked")
		if checked == nil {
			return complexField{kind: fieldCheckbox, checked: readBooleanElement(checkbox.First("w:default"))}
		}
		return complexField{kind: fieldCheckbox, checked: readBooleanElement(checked)}
	}
	return complexField{kind: fieldUnknown}
}
