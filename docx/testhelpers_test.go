package docx

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/tsawler/docxmark/model"
	"github.com/tsawler/docxmark/result"
	"github.com/tsawler/docxmark/xmldom"
)

const testNamespaces = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing" ` +
	`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture" ` +
	`xmlns:w14="http://schemas.microsoft.com/office/word/2010/wordml" ` +
	`xmlns:w15="http://schemas.microsoft.com/office/word/2012/wordml" ` +
	`xmlns:w16cid="http://schemas.microsoft.com/office/word/2016/wordml/cid" ` +
	`xmlns:w16cex="http://schemas.microsoft.com/office/word/2018/wordml/cex" ` +
	`xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006" ` +
	`xmlns:v="urn:schemas-microsoft-com:vml" ` +
	`xmlns:o="urn:schemas-microsoft-com:office:office"`

const testContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Default Extension="png" ContentType="image/png"/>
  <Default Extension="emf" ContentType="image/x-emf"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const testPackageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// wrapDocument wraps body content in a w:document root.
func wrapDocument(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document ` + testNamespaces + `><w:body>` + body + `</w:body></w:document>`
}

// wrapPart wraps content in a root element carrying the test namespaces.
func wrapPart(root, content string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<` + root + ` ` + testNamespaces + `>` + content + `</` + root + `>`
}

// createTestDOCX builds an in-memory package. The content types and package
// relationships are added unless files overrides them.
func createTestDOCX(t *testing.T, files map[string]string) *ZipPackage {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	all := map[string]string{
		"[Content_Types].xml": testContentTypes,
		"_rels/.rels":         testPackageRels,
	}
	for name, content := range files {
		all[name] = content
	}
	for name, content := range all {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}

	pkg, err := OpenBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("failed to open package: %v", err)
	}
	return pkg
}

// readTestBody parses body content and reads it with a reader built from opts.
func readTestBody(t *testing.T, body string, opts BodyReaderOptions) result.Result[[]model.Element] {
	t.Helper()
	root, err := readOfficeXML([]byte(wrapDocument(body)))
	if err != nil {
		t.Fatalf("failed to parse body: %v", err)
	}
	return NewBodyReader(opts).ReadXMLElements(root.FirstOrEmpty("w:body").Children)
}

// textOf concatenates the text below the given elements.
func textOf(elements ...model.Element) string {
	var buf bytes.Buffer
	for _, e := range elements {
		if txt, ok := e.(*model.Text); ok {
			buf.WriteString(txt.Value)
		}
		for _, d := range model.DescendantsOfType(e, model.ElementTypeText) {
			buf.WriteString(d.(*model.Text).Value)
		}
	}
	return buf.String()
}

func parseTestXML(t *testing.T, content string) *xmldom.Element {
	t.Helper()
	root, err := readOfficeXML([]byte(content))
	if err != nil {
		t.Fatalf("failed to parse XML: %v", err)
	}
	return root
}

func hasMessage(msgs []result.Message, text string) bool {
	for _, m := range msgs {
		if m.Message == text {
			return true
		}
	}
	return false
}
