package docxmark

import (
	"strings"

	"github.com/tsawler/docxmark/model"
)

// RawText returns the text of doc without formatting. Tabs are kept and
// every paragraph is followed by a blank line. Notes and comments, which
// live outside the body, are not included.
func RawText(doc *model.Document) string {
	var sb strings.Builder
	writeRawText(&sb, doc.Children)
	return sb.String()
}

func writeRawText(sb *strings.Builder, elements []model.Element) {
	for _, e := range elements {
		switch el := e.(type) {
		case *model.Text:
			sb.WriteString(el.Value)
		case *model.Tab:
			sb.WriteByte('\t')
		case *model.Paragraph:
			writeRawText(sb, el.Children)
			sb.WriteString("\n\n")
		default:
			writeRawText(sb, model.Children(e))
		}
	}
}
