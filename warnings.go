package docxmark

import (
	"strings"

	"github.com/tsawler/docxmark/result"
)

// FormatMessages formats messages for display, one per line, as
// "warning: ..." or "error: ...".
//
// Example:
//
//	html, messages, _ := docxmark.Open("document.docx").ToHTML(ctx)
//	fmt.Fprintln(os.Stderr, docxmark.FormatMessages(messages))
func FormatMessages(msgs []result.Message) string {
	lines := make([]string, len(msgs))
	for i, m := range msgs {
		lines[i] = m.String()
	}
	return strings.Join(lines, "\n")
}

// HasErrors reports whether msgs contains an error message, meaning some
// part of the document, usually an image, is missing from the output.
func HasErrors(msgs []result.Message) bool {
	return len(result.Errors(msgs)) > 0
}
