package model

import "time"

// Document is the root of a converted package.
type Document struct {
	Children []Element
	Notes    *Notes
	Comments []*Comment
	Metadata Metadata
}

// Metadata contains document-level information from docProps/core.xml.
type Metadata struct {
	Title       string
	Author      string
	Subject     string
	Keywords    []string
	Description string
	Created     time.Time
	Modified    time.Time
}

// NewDocument creates a document with an empty notes index.
func NewDocument(children []Element) *Document {
	return &Document{
		Children: children,
		Notes:    NewNotes(nil),
	}
}

// FindComment returns the comment with the given id, or nil.
func (d *Document) FindComment(id string) *Comment {
	for _, c := range d.Comments {
		if c.CommentID == id {
			return c
		}
	}
	return nil
}

type noteKey struct {
	noteType string
	noteID   string
}

// Notes indexes footnotes and endnotes by (type, id).
type Notes struct {
	byKey map[noteKey]*Note
	order []*Note
}

// NewNotes builds an index over notes. Later duplicates are ignored.
func NewNotes(notes []*Note) *Notes {
	n := &Notes{byKey: make(map[noteKey]*Note, len(notes))}
	for _, note := range notes {
		n.Add(note)
	}
	return n
}

// Add indexes note unless a note with the same key already exists.
func (n *Notes) Add(note *Note) {
	key := noteKey{note.NoteType, note.NoteID}
	if _, ok := n.byKey[key]; ok {
		return
	}
	n.byKey[key] = note
	n.order = append(n.order, note)
}

// Find returns the note with the given type and id, or nil.
func (n *Notes) Find(noteType, noteID string) *Note {
	if n == nil {
		return nil
	}
	return n.byKey[noteKey{noteType, noteID}]
}

// Resolve returns the note ref points to, or nil.
func (n *Notes) Resolve(ref *NoteReference) *Note {
	return n.Find(ref.NoteType, ref.NoteID)
}

// All returns the notes in the order they were added.
func (n *Notes) All() []*Note {
	if n == nil {
		return nil
	}
	return n.order
}

// Len returns the number of indexed notes.
func (n *Notes) Len() int {
	if n == nil {
		return 0
	}
	return len(n.order)
}
