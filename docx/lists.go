package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/tsawler/docxmark/model"
)

// numberingXML represents word/numbering.xml
type numberingXML struct {
	XMLName      xml.Name         `xml:"numbering"`
	AbstractNums []abstractNumXML `xml:"abstractNum"`
	Nums         []numXML         `xml:"num"`
}

// abstractNumXML represents an abstract numbering definition.
type abstractNumXML struct {
	AbstractNumID string   `xml:"abstractNumId,attr"`
	Levels        []lvlXML `xml:"lvl"`
	NumStyleLink  *valXML  `xml:"numStyleLink"`
}

// lvlXML represents a numbering level.
type lvlXML struct {
	ILvl   *string `xml:"ilvl,attr"`
	NumFmt valXML  `xml:"numFmt"` // decimal, bullet, lowerLetter, ...
	PStyle *valXML `xml:"pStyle"`
}

// numXML represents a numbering instance.
type numXML struct {
	NumID         string `xml:"numId,attr"`
	AbstractNumID valXML `xml:"abstractNumId"`
}

// NumberingLevel is one level of an abstract numbering definition.
type NumberingLevel struct {
	IsOrdered        bool
	Level            string
	ParagraphStyleID string
}

// toModel converts the level to the model form. Level indexes that are not
// integers are treated as 0.
func (l *NumberingLevel) toModel() *model.NumberingLevel {
	level, _ := strconv.Atoi(l.Level)
	return &model.NumberingLevel{Level: level, IsOrdered: l.IsOrdered}
}

type abstractNum struct {
	levels       map[string]*NumberingLevel
	numStyleLink string
}

// Numbering resolves numbering instances to list levels.
type Numbering struct {
	abstractNums  map[string]*abstractNum // abstractNumId -> definition
	nums          map[string]string       // numId -> abstractNumId
	levelsByStyle map[string]*NumberingLevel
	styles        *Styles
}

// NewNumbering returns an empty numbering definition.
func NewNumbering(styles *Styles) *Numbering {
	if styles == nil {
		styles = NewStyles()
	}
	return &Numbering{
		abstractNums:  make(map[string]*abstractNum),
		nums:          make(map[string]string),
		levelsByStyle: make(map[string]*NumberingLevel),
		styles:        styles,
	}
}

// ParseNumbering decodes word/numbering.xml. styles is used to follow
// numStyleLink references.
func ParseNumbering(data []byte, styles *Styles) (*Numbering, error) {
	var x numberingXML
	if err := xml.Unmarshal(bytes.TrimPrefix(data, utf8BOM), &x); err != nil {
		return nil, err
	}

	n := NewNumbering(styles)
	for _, an := range x.AbstractNums {
		def := &abstractNum{levels: make(map[string]*NumberingLevel)}
		for _, lvl := range an.Levels {
			level := &NumberingLevel{IsOrdered: lvl.NumFmt.Val != "bullet"}
			if lvl.PStyle != nil {
				level.ParagraphStyleID = lvl.PStyle.Val
			}
			if lvl.ILvl != nil {
				level.Level = *lvl.ILvl
				def.levels[level.Level] = level
			} else if _, ok := def.levels["0"]; !ok {
				level.Level = "0"
				def.levels["0"] = level
			}
			if level.ParagraphStyleID != "" {
				if _, ok := n.levelsByStyle[level.ParagraphStyleID]; !ok {
					n.levelsByStyle[level.ParagraphStyleID] = level
				}
			}
		}
		if an.NumStyleLink != nil {
			def.numStyleLink = an.NumStyleLink.Val
		}
		n.abstractNums[an.AbstractNumID] = def
	}
	for _, num := range x.Nums {
		n.nums[num.NumID] = num.AbstractNumID.Val
	}
	return n, nil
}

func readNumbering(pkg Package, name string, styles *Styles) (*Numbering, error) {
	if name == "" || !pkg.Exists(name) {
		return NewNumbering(styles), nil
	}
	data, err := pkg.Read(name)
	if err != nil {
		return nil, err
	}
	n, err := ParseNumbering(data, styles)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return n, nil
}

// FindLevel returns the level of numbering instance numID, following a
// numStyleLink through the numbering style's own numId. It returns nil when
// the instance or level is unknown.
func (n *Numbering) FindLevel(numID, level string) *NumberingLevel {
	return n.findLevel(numID, level, 0)
}

func (n *Numbering) findLevel(numID, level string, depth int) *NumberingLevel {
	abstractID, ok := n.nums[numID]
	if !ok {
		return nil
	}
	def, ok := n.abstractNums[abstractID]
	if !ok {
		return nil
	}
	if def.numStyleLink == "" {
		return def.levels[level]
	}
	// A style link pointing back at itself would otherwise loop forever.
	if depth > 8 {
		return nil
	}
	style := n.styles.FindNumberingStyleByID(def.numStyleLink)
	if style == nil || style.NumID == "" {
		return nil
	}
	return n.findLevel(style.NumID, level, depth+1)
}

// FindLevelByParagraphStyleID returns the level a paragraph style is bound
// to, or nil.
func (n *Numbering) FindLevelByParagraphStyleID(styleID string) *NumberingLevel {
	return n.levelsByStyle[styleID]
}
