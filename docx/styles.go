package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// stylesXML represents the structure of word/styles.xml
type stylesXML struct {
	XMLName xml.Name      `xml:"styles"`
	Styles  []styleDefXML `xml:"style"`
}

// styleDefXML represents a style definition.
type styleDefXML struct {
	Type    string      `xml:"type,attr"` // paragraph, character, table, numbering
	StyleID string      `xml:"styleId,attr"`
	Name    *valXML     `xml:"name"`
	PPr     stylePPrXML `xml:"pPr"`
}

// stylePPrXML holds the paragraph properties of a numbering style.
type stylePPrXML struct {
	NumPr struct {
		NumID *valXML `xml:"numId"`
	} `xml:"numPr"`
}

// valXML is any element carrying a single w:val attribute.
type valXML struct {
	Val string `xml:"val,attr"`
}

// Style is a named style definition.
type Style struct {
	ID   string
	Name string
	// NumID is set on numbering styles that reference a numbering instance.
	NumID string
}

// Styles indexes the style definitions of a package by kind and id.
type Styles struct {
	paragraph map[string]*Style
	character map[string]*Style
	table     map[string]*Style
	numbering map[string]*Style
}

// NewStyles returns an empty style set.
func NewStyles() *Styles {
	return &Styles{
		paragraph: make(map[string]*Style),
		character: make(map[string]*Style),
		table:     make(map[string]*Style),
		numbering: make(map[string]*Style),
	}
}

// ParseStyles decodes word/styles.xml. When a style id is defined twice the
// first definition wins.
func ParseStyles(data []byte) (*Styles, error) {
	var x stylesXML
	if err := xml.Unmarshal(bytes.TrimPrefix(data, utf8BOM), &x); err != nil {
		return nil, err
	}

	s := NewStyles()
	for _, def := range x.Styles {
		var target map[string]*Style
		switch def.Type {
		case "paragraph":
			target = s.paragraph
		case "character":
			target = s.character
		case "table":
			target = s.table
		case "numbering":
			target = s.numbering
		default:
			continue
		}
		if _, exists := target[def.StyleID]; exists {
			continue
		}
		style := &Style{ID: def.StyleID}
		if def.Name != nil {
			style.Name = def.Name.Val
		}
		if def.Type == "numbering" && def.PPr.NumPr.NumID != nil {
			style.NumID = def.PPr.NumPr.NumID.Val
		}
		target[def.StyleID] = style
	}
	return s, nil
}

func readStyles(pkg Package, name string) (*Styles, error) {
	if name == "" || !pkg.Exists(name) {
		return NewStyles(), nil
	}
	data, err := pkg.Read(name)
	if err != nil {
		return nil, err
	}
	s, err := ParseStyles(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return s, nil
}

// FindParagraphStyleByID returns the paragraph style with the given id.
func (s *Styles) FindParagraphStyleByID(id string) *Style { return s.paragraph[id] }

// FindCharacterStyleByID returns the character style with the given id.
func (s *Styles) FindCharacterStyleByID(id string) *Style { return s.character[id] }

// FindTableStyleByID returns the table style with the given id.
func (s *Styles) FindTableStyleByID(id string) *Style { return s.table[id] }

// FindNumberingStyleByID returns the numbering style with the given id.
func (s *Styles) FindNumberingStyleByID(id string) *Style { return s.numbering[id] }
