package docx

import (
	"bytes"
	"encoding/xml"
	"strings"
	"time"

	"github.com/tsawler/docxmark/model"
)

const corePropertiesPath = "docProps/core.xml"

// corePropertiesXML represents docProps/core.xml (Dublin Core metadata)
type corePropertiesXML struct {
	XMLName     xml.Name `xml:"coreProperties"`
	Title       string   `xml:"title"`
	Subject     string   `xml:"subject"`
	Creator     string   `xml:"creator"`
	Keywords    string   `xml:"keywords"`
	Description string   `xml:"description"`
	Created     string   `xml:"created"`
	Modified    string   `xml:"modified"`
}

// readMetadata reads the core properties part. Metadata is optional: a
// missing or malformed part yields empty metadata.
func readMetadata(pkg Package) model.Metadata {
	var md model.Metadata
	if !pkg.Exists(corePropertiesPath) {
		return md
	}
	data, err := pkg.Read(corePropertiesPath)
	if err != nil {
		return md
	}
	var props corePropertiesXML
	if err := xml.Unmarshal(bytes.TrimPrefix(data, utf8BOM), &props); err != nil {
		return md
	}

	md.Title = props.Title
	md.Author = props.Creator
	md.Subject = props.Subject
	md.Description = props.Description
	if props.Keywords != "" {
		for _, kw := range strings.Split(props.Keywords, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				md.Keywords = append(md.Keywords, kw)
			}
		}
	}
	md.Created, _ = time.Parse(time.RFC3339, strings.TrimSpace(props.Created))
	md.Modified, _ = time.Parse(time.RFC3339, strings.TrimSpace(props.Modified))
	return md
}
