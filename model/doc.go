// Package model provides the typed document tree produced by the docx reader
// and consumed by the converter.
//
// # Document Structure
//
// A [Document] holds top-level block elements, the notes index and the
// comments defined in the package:
//
//	doc := &model.Document{Children: []model.Element{
//	    &model.Paragraph{Children: []model.Element{
//	        &model.Run{Children: []model.Element{&model.Text{Value: "Hello"}}},
//	    }},
//	}}
//
// # Elements
//
// [Element] is a closed set. The concrete types are:
//
//   - [Paragraph], [Run], [Text], [Tab], [Break], [Checkbox]
//   - [Hyperlink], [BookmarkStart]
//   - [Table], [TableRow], [TableCell]
//   - [NoteReference], [Note]
//   - [CommentReference], [CommentRangeStart], [CommentRangeEnd], [Comment]
//   - [Inserted], [Deleted] for tracked changes
//   - [Image]
//
// Container elements expose their children through [Children] and can be
// rebuilt with [WithChildren]. [Transform] rewrites a tree bottom-up.
package model
