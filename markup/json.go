package markup

import (
	"bytes"
	"encoding/json"
)

// MarshalJSON writes the attributes as an object in insertion order.
func (a Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, attr := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONPair(&buf, attr.Name, attr.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshal is json.Marshal without HTML escaping, so that markup inside
// values stays readable once decoded by other JSON implementations.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func writeJSONPair(buf *bytes.Buffer, key string, value any) error {
	k, err := marshal(key)
	if err != nil {
		return err
	}
	v, err := marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

type tagJSON struct {
	TagName    string          `json:"tagName"`
	TagNames   json.RawMessage `json:"tagNames"`
	Attributes Attributes      `json:"attributes"`
	Fresh      bool            `json:"fresh"`
	Separator  string          `json:"separator,omitempty"`
}

// MarshalJSON writes the tag with its name set as an object of true values.
func (t *Tag) MarshalJSON() ([]byte, error) {
	var names bytes.Buffer
	names.WriteByte('{')
	for i, name := range t.TagNames {
		if i > 0 {
			names.WriteByte(',')
		}
		if err := writeJSONPair(&names, name, true); err != nil {
			return nil, err
		}
	}
	names.WriteByte('}')

	attrs := t.Attributes
	if attrs == nil {
		attrs = Attributes{}
	}
	return marshal(tagJSON{
		TagName:    t.TagName,
		TagNames:   names.Bytes(),
		Attributes: attrs,
		Fresh:      t.Fresh,
		Separator:  t.Separator,
	})
}

func (e *ElementNode) MarshalJSON() ([]byte, error) {
	children := e.Children
	if children == nil {
		children = []Node{}
	}
	return marshal(struct {
		Type     string `json:"type"`
		Tag      *Tag   `json:"tag"`
		Children []Node `json:"children"`
	}{"element", e.Tag, children})
}

func (t *TextNode) MarshalJSON() ([]byte, error) {
	return marshal(struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{"text", t.Value})
}

func (ForceWriteNode) MarshalJSON() ([]byte, error) {
	return []byte(`{"type":"forceWrite"}`), nil
}

func (d *Deferred) MarshalJSON() ([]byte, error) {
	return marshal(struct {
		Type string `json:"type"`
		ID   int    `json:"id"`
	}{"deferred", d.ID})
}
