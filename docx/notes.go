package docx

import (
	"maps"
	"slices"
	"strings"

	"github.com/tsawler/docxmark/model"
	"github.com/tsawler/docxmark/result"
	"github.com/tsawler/docxmark/xmldom"
)

// readNotes reads the w:footnote or w:endnote children of a notes part,
// skipping separator notes.
func readNotes(root *xmldom.Element, noteType string, body *BodyReader) result.Result[[]*model.Note] {
	var notes []*model.Note
	var lists [][]result.Message
	for _, el := range root.ElementsByTagName("w:" + noteType) {
		switch el.AttrOr("w:type", "") {
		case "separator", "continuationSeparator":
			continue
		}
		res := body.ReadXMLElements(el.Children)
		notes = append(notes, &model.Note{
			NoteType: noteType,
			NoteID:   el.AttrOr("w:id", ""),
			Body:     res.Value,
		})
		lists = append(lists, res.Messages)
	}
	return result.New(notes, result.CombineMessages(lists...)...)
}

// commentMetadata holds the lookups built from the comment extension parts.
type commentMetadata struct {
	// parentParaIDs maps a comment paragraph id to its parent's (w15).
	parentParaIDs map[string]string
	// dateUTC maps a comment paragraph id to its UTC date (w16cid + w16cex).
	dateUTC map[string]string
}

// readComments reads the w:comment children of the comments part.
func readComments(root *xmldom.Element, body *BodyReader, meta commentMetadata) result.Result[[]*model.Comment] {
	var comments []*model.Comment
	var lists [][]result.Message
	for _, el := range root.ElementsByTagName("w:comment") {
		res := body.ReadXMLElements(el.Children)

		paraID := ""
		for _, e := range res.Value {
			if p, ok := e.(*model.Paragraph); ok && p.ParaID != "" {
				paraID = p.ParaID
				break
			}
		}

		date := readOptionalAttribute(el, "w:date")
		parentParaID := ""
		if paraID != "" {
			parentParaID = meta.parentParaIDs[paraID]
			if utc := meta.dateUTC[paraID]; utc != "" {
				date = utc
			}
		}

		comments = append(comments, &model.Comment{
			CommentID:      el.AttrOr("w:id", ""),
			Body:           res.Value,
			AuthorName:     readOptionalAttribute(el, "w:author"),
			AuthorInitials: readOptionalAttribute(el, "w:initials"),
			Date:           date,
			ParaID:         paraID,
			ParentParaID:   parentParaID,
		})
		lists = append(lists, res.Messages)
	}
	return result.New(comments, result.CombineMessages(lists...)...)
}

func readOptionalAttribute(el *xmldom.Element, name string) string {
	return strings.TrimSpace(el.AttrOr(name, ""))
}

// readCommentsExtended builds the paraId -> parent paraId map from
// commentsExtended.xml.
func readCommentsExtended(root *xmldom.Element) map[string]string {
	out := make(map[string]string)
	if root == nil {
		return out
	}
	for _, child := range root.ChildElements() {
		if !strings.HasSuffix(child.Name, "commentEx") {
			continue
		}
		paraID := attrByLocalName(child, "paraId")
		parent := attrByLocalName(child, "paraIdParent")
		if paraID != "" && parent != "" {
			out[paraID] = parent
		}
	}
	return out
}

// readCommentDates joins commentsIds.xml (paraId -> durableId) with
// commentsExtensible.xml (durableId -> dateUtc).
func readCommentDates(ids, extensible *xmldom.Element) map[string]string {
	paraToDurable := make(map[string]string)
	if ids != nil {
		for _, c := range ids.ElementsByTagName("w16cid:commentId") {
			pid := c.AttrOr("w16cid:paraId", "")
			did := c.AttrOr("w16cid:durableId", "")
			if pid != "" && did != "" {
				paraToDurable[pid] = did
			}
		}
	}

	durableToDate := make(map[string]string)
	if extensible != nil {
		for _, c := range extensible.ElementsByTagName("w16cex:commentExtensible") {
			did := c.AttrOr("w16cex:durableId", "")
			utc := c.AttrOr("w16cex:dateUtc", "")
			if did != "" && utc != "" {
				durableToDate[did] = utc
			}
		}
	}

	out := make(map[string]string)
	for pid, did := range paraToDurable {
		if utc, ok := durableToDate[did]; ok {
			out[pid] = utc
		}
	}
	return out
}

// attrByLocalName finds an attribute by its local name, preferring the w15
// and wordml prefixes. Other matches are tried in sorted name order.
func attrByLocalName(el *xmldom.Element, local string) string {
	for _, name := range []string{"w15:" + local, "wordml:" + local} {
		if v := el.AttrOr(name, ""); v != "" {
			return v
		}
	}
	for _, name := range slices.Sorted(maps.Keys(el.Attributes)) {
		if strings.HasSuffix(name, ":"+local) || strings.HasSuffix(name, "}"+local) {
			return el.Attributes[name]
		}
	}
	return ""
}
