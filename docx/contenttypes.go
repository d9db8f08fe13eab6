package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"strings"
)

// contentTypesXML represents [Content_Types].xml
type contentTypesXML struct {
	XMLName   xml.Name             `xml:"Types"`
	Defaults  []contentDefaultXML  `xml:"Default"`
	Overrides []contentOverrideXML `xml:"Override"`
}

type contentDefaultXML struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type contentOverrideXML struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

const contentTypesPath = "[Content_Types].xml"

var fallbackContentTypes = map[string]string{
	"png":  "png",
	"gif":  "gif",
	"jpeg": "jpeg",
	"jpg":  "jpeg",
	"tif":  "tiff",
	"tiff": "tiff",
	"bmp":  "bmp",
}

// ContentTypes resolves the MIME type of package members.
type ContentTypes struct {
	extensionDefaults map[string]string
	overrides         map[string]string
}

// ParseContentTypes decodes [Content_Types].xml.
func ParseContentTypes(data []byte) (*ContentTypes, error) {
	var x contentTypesXML
	if err := xml.Unmarshal(bytes.TrimPrefix(data, utf8BOM), &x); err != nil {
		return nil, err
	}
	ct := &ContentTypes{
		extensionDefaults: make(map[string]string, len(x.Defaults)),
		overrides:         make(map[string]string, len(x.Overrides)),
	}
	for _, d := range x.Defaults {
		ct.extensionDefaults[d.Extension] = d.ContentType
	}
	for _, o := range x.Overrides {
		ct.overrides[strings.TrimPrefix(o.PartName, "/")] = o.ContentType
	}
	return ct, nil
}

func readContentTypes(pkg Package) (*ContentTypes, error) {
	if !pkg.Exists(contentTypesPath) {
		return &ContentTypes{}, nil
	}
	data, err := pkg.Read(contentTypesPath)
	if err != nil {
		return nil, err
	}
	ct, err := ParseContentTypes(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", contentTypesPath, err)
	}
	return ct, nil
}

// FindContentType returns the content type for a member path, or "" when it
// cannot be determined.
func (ct *ContentTypes) FindContentType(name string) string {
	name = strings.TrimPrefix(name, "/")
	if t, ok := ct.overrides[name]; ok {
		return t
	}
	ext := strings.TrimPrefix(path.Ext(name), ".")
	if t, ok := ct.extensionDefaults[ext]; ok {
		return t
	}
	lower := strings.ToLower(ext)
	if t, ok := ct.extensionDefaults[lower]; ok {
		return t
	}
	if t, ok := fallbackContentTypes[lower]; ok {
		return "image/" + t
	}
	return ""
}
