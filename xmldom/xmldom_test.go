package xmldom

import (
	"errors"
	"strings"
	"testing"
)

const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

func TestReadMapsNamespaces(t *testing.T) {
	data := []byte(`<?xml version="1.0"?>
<x:document xmlns:x="` + wordNS + `" xmlns:u="urn:unknown"><x:body><x:p x:val="1" plain="2"><u:thing/>hi</x:p></x:body></x:document>`)

	root, err := Read(data, map[string]string{wordNS: "w"})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if root.Name != "w:document" {
		t.Errorf("root.Name = %q, want %q", root.Name, "w:document")
	}
	if _, ok := root.Attr("xmlns:x"); ok {
		t.Error("namespace declarations should be dropped")
	}

	p := root.First("w:body").First("w:p")
	if p == nil {
		t.Fatal("expected w:p element")
	}
	if v, _ := p.Attr("w:val"); v != "1" {
		t.Errorf("w:val = %q, want 1", v)
	}
	if v, _ := p.Attr("plain"); v != "2" {
		t.Errorf("plain = %q, want 2", v)
	}
	if el, ok := p.Children[0].(*Element); !ok || el.Name != "{urn:unknown}thing" {
		t.Errorf("unmapped child = %#v, want {urn:unknown}thing", p.Children[0])
	}
	if p.Text() != "hi" {
		t.Errorf("Text() = %q, want %q", p.Text(), "hi")
	}
}

func TestReadDefaultNamespace(t *testing.T) {
	data := []byte(`<Types xmlns="urn:types"><Default Extension="png"/></Types>`)
	root, err := Read(data, map[string]string{"urn:types": "content-types"})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if root.Name != "content-types:Types" {
		t.Errorf("root.Name = %q", root.Name)
	}
	if len(root.ElementsByTagName("content-types:Default")) != 1 {
		t.Error("expected one Default element")
	}
}

func TestReadMalformed(t *testing.T) {
	_, err := Read([]byte("<a b=></a>"), nil)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Read() error = %v, want *ParseError", err)
	}
}

func TestFirstOrEmptyChains(t *testing.T) {
	root := NewElement("a", nil)
	got := root.FirstOrEmpty("b").FirstOrEmpty("c")
	if !got.IsEmpty() || got.Text() != "" {
		t.Errorf("FirstOrEmpty chain = %#v", got)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	root := NewElement("{urn:rels}Relationships", nil,
		NewElement("{urn:rels}Relationship", map[string]string{
			"Id":     "rId1",
			"Target": "a&b",
			"xmlns":  "ignored",
		}),
	)
	out, err := Write(root, map[string]string{"": "urn:rels"})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`) {
		t.Errorf("missing declaration: %s", out)
	}
	if strings.Count(out, "xmlns=") != 1 {
		t.Errorf("expected a single xmlns declaration: %s", out)
	}

	back, err := Read([]byte(out), map[string]string{"urn:rels": "r"})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	rel := back.First("r:Relationship")
	if rel == nil {
		t.Fatalf("round trip lost the child: %s", out)
	}
	if v, _ := rel.Attr("Target"); v != "a&b" {
		t.Errorf("Target = %q, want %q", v, "a&b")
	}
}
