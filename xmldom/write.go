package xmldom

import (
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// Write serialises root with an XML declaration. namespaces maps prefixes
// to URIs; the empty prefix declares the default namespace. Names written in
// "{uri}local" form are rewritten to the matching prefix and every
// declaration is emitted once, on the root element.
func Write(root *Element, namespaces map[string]string) (string, error) {
	uriToPrefix := make(map[string]string, len(namespaces))
	for prefix, uri := range namespaces {
		uriToPrefix[uri] = prefix
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	el := buildElement(root, uriToPrefix)

	prefixes := make([]string, 0, len(namespaces))
	for prefix := range namespaces {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	decls := make([]etree.Attr, 0, len(prefixes))
	for _, prefix := range prefixes {
		if prefix == "" {
			decls = append(decls, etree.Attr{Key: "xmlns", Value: namespaces[prefix]})
		} else {
			decls = append(decls, etree.Attr{Space: "xmlns", Key: prefix, Value: namespaces[prefix]})
		}
	}
	el.Attr = append(decls, el.Attr...)

	doc.SetRoot(el)
	return doc.WriteToString()
}

func buildElement(e *Element, uriToPrefix map[string]string) *etree.Element {
	el := etree.NewElement(unmapName(e.Name, uriToPrefix))

	keys := make([]string, 0, len(e.Attributes))
	for k := range e.Attributes {
		if k == "xmlns" || strings.HasPrefix(k, "xmlns:") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		el.CreateAttr(unmapName(k, uriToPrefix), e.Attributes[k])
	}

	for _, c := range e.Children {
		switch n := c.(type) {
		case *Element:
			el.AddChild(buildElement(n, uriToPrefix))
		case *Text:
			el.CreateText(n.Value)
		}
	}
	return el
}

func unmapName(name string, uriToPrefix map[string]string) string {
	if !strings.HasPrefix(name, "{") {
		return name
	}
	end := strings.Index(name, "}")
	if end < 0 {
		return name
	}
	uri, local := name[1:end], name[end+1:]
	prefix, ok := uriToPrefix[uri]
	if !ok || prefix == "" {
		return local
	}
	return prefix + ":" + local
}
