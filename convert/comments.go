package convert

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tsawler/docxmark/markup"
	"github.com/tsawler/docxmark/model"
	"github.com/tsawler/docxmark/stylemap"
)

func (c *conversion) convertCommentReference(ref *model.CommentReference, sc scope) []markup.Node {
	path := c.findPathOr(stylemap.Subject{Kind: stylemap.KindCommentReference}, markup.Ignore)
	return path.Wrap(func() []markup.Node {
		comment, ok := c.comments[ref.CommentID]
		if !ok {
			return nil
		}

		if c.opts.CommentTokens {
			payload := c.commentPayload(comment, sc)
			payload.IsPoint = true
			start, err := commentStartToken(payload)
			if err != nil {
				c.fail(err)
				return nil
			}
			return []markup.Node{markup.Text(start + commentEndToken(ref.CommentID))}
		}

		label := "[" + comment.AuthorInitials + strconv.Itoa(len(c.referencedComments)+1) + "]"
		c.referencedComments = append(c.referencedComments, referencedComment{label: label, comment: comment})
		return []markup.Node{markup.FreshElement("a",
			attrs(
				"href", "#"+c.referentID("comment", ref.CommentID),
				"id", c.referenceID("comment", ref.CommentID),
			),
			markup.Text(label),
		)}
	})
}

func (c *conversion) convertComment(ref referencedComment, sc scope) []markup.Node {
	comment := ref.comment
	body := c.convertElements(comment.Body, sc)
	body = append(body, markup.NonFreshElement("p", nil,
		markup.Text(" "),
		markup.FreshElement("a", attrs("href", "#"+c.referenceID("comment", comment.CommentID)), markup.Text("↑")),
	))
	return []markup.Node{
		markup.FreshElement("dt", attrs("id", c.referentID("comment", comment.CommentID)), markup.Text("Comment "+ref.label)),
		markup.FreshElement("dd", nil, body...),
	}
}

func (c *conversion) convertCommentRangeStart(start *model.CommentRangeStart, sc scope) []markup.Node {
	if !c.opts.CommentTokens {
		return nil
	}
	comment, ok := c.comments[start.CommentID]
	if !ok {
		c.warn("Comment with ID %s was referenced by a range but not found in the document", start.CommentID)
		return nil
	}
	token, err := commentStartToken(c.commentPayload(comment, sc))
	if err != nil {
		c.fail(err)
		return nil
	}
	return []markup.Node{markup.Text(token)}
}

// commentPayload describes comment and, recursively, its replies.
func (c *conversion) commentPayload(comment *model.Comment, sc scope) *CommentPayload {
	return c.threadPayload(comment, sc, map[string]bool{})
}

// threadPayload builds the payload for comment. path holds the paraIds of
// the comments above it in the thread; a reply already on the path is
// dropped with a warning.
func (c *conversion) threadPayload(comment *model.Comment, sc scope, path map[string]bool) *CommentPayload {
	payload := &CommentPayload{
		ID:             comment.CommentID,
		AuthorName:     nullable(comment.AuthorName),
		AuthorInitials: nullable(comment.AuthorInitials),
		Date:           nullable(comment.Date),
		ParaID:         nullable(comment.ParaID),
		ParentParaID:   nullable(comment.ParentParaID),
	}

	if len(comment.Body) > 0 {
		text := ExtractText(comment.Body)
		payload.Text = &text
		body, err := marshalJSON(markup.Simplify(c.convertElements(comment.Body, sc)))
		if err != nil {
			c.fail(fmt.Errorf("Failed to convert comment body for comment %s: %w", comment.CommentID, err))
		} else {
			payload.Body = body
		}
	}

	if comment.ParaID == "" {
		return payload
	}
	path[comment.ParaID] = true
	defer delete(path, comment.ParaID)
	for _, reply := range c.replies(comment.ParaID) {
		if path[reply.ParaID] {
			c.warn("Comment %s is its own ancestor in a reply thread; the reply was ignored", reply.CommentID)
			continue
		}
		payload.Replies = append(payload.Replies, c.threadPayload(reply, sc, path))
	}
	return payload
}

// replies returns the comments replying to the comment with paraID, oldest
// first. Comments with equal dates keep document order.
func (c *conversion) replies(paraID string) []*model.Comment {
	if paraID == "" {
		return nil
	}
	var replies []*model.Comment
	for _, comment := range c.commentOrder {
		if comment.ParentParaID == paraID {
			replies = append(replies, comment)
		}
	}
	slices.SortStableFunc(replies, func(a, b *model.Comment) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return replies
}

// ExtractText returns the plain text of elements, with a newline after each
// paragraph.
func ExtractText(elements []model.Element) string {
	var sb strings.Builder
	extractText(&sb, elements)
	return sb.String()
}

func extractText(sb *strings.Builder, elements []model.Element) {
	for _, e := range elements {
		switch el := e.(type) {
		case *model.Text:
			sb.WriteString(el.Value)
		case *model.Paragraph:
			extractText(sb, el.Children)
			sb.WriteByte('\n')
		default:
			extractText(sb, model.Children(e))
		}
	}
}

// CommentPayload is the JSON carried by a comment start token. Nil string
// fields are written as null.
type CommentPayload struct {
	ID             string            `json:"id"`
	AuthorName     *string           `json:"authorName"`
	AuthorInitials *string           `json:"authorInitials"`
	Date           *string           `json:"date"`
	ParaID         *string           `json:"paraId"`
	ParentParaID   *string           `json:"parentParaId"`
	Text           *string           `json:"text,omitempty"`
	Body           json.RawMessage   `json:"body,omitempty"`
	Replies        []*CommentPayload `json:"replies,omitempty"`
	IsPoint        bool              `json:"isPoint,omitempty"`
}

// TrackedChangePayload is the JSON carried by an insertion or deletion start
// token.
type TrackedChangePayload struct {
	ID     string  `json:"id"`
	Author *string `json:"author"`
	Date   *string `json:"date"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
