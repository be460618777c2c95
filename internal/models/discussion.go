package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Reply struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type Comment struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	Text       string          `json:"text"`
	Timestamp  time.Time       `json:"timestamp"`
	Resolved   bool            `json:"resolved"`
	ResolvedBy *uuid.UUID      `json:"resolved_by"`
	ResolvedAt *time.Time      `json:"resolved_at"`
	Position   json.RawMessage `json:"position,omitempty"`
	Replies    []Reply         `json:"replies"`
}

func newReply(userID uuid.UUID, text string) (Reply, error) {
	if strings.TrimSpace(text) == "" {
		return Reply{}, ErrEmptyText
	}
	return Reply{ID: uuid.New(), UserID: userID, Text: text, Timestamp: now()}, nil
}

// CommentIDAt maps an array position to the comment's stable id.
func (c *Collaboration) CommentIDAt(index int) (uuid.UUID, error) {
	if index < 0 || index >= len(c.Comments) {
		return uuid.Nil, ErrCommentNotFound
	}
	return c.Comments[index].ID, nil
}

func (c *Collaboration) Comment(commentID uuid.UUID) (*Comment, error) {
	for i := range c.Comments {
		if c.Comments[i].ID == commentID {
			return &c.Comments[i], nil
		}
	}
	return nil, ErrCommentNotFound
}

func (c *Collaboration) AddComment(actorID uuid.UUID, text string, position json.RawMessage) (*Comment, error) {
	if !c.HasPermission(actorID, PermissionComment) {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	c.Comments = append(c.Comments, Comment{
		ID:        uuid.New(),
		UserID:    actorID,
		Text:      text,
		Timestamp: now(),
		Position:  position,
		Replies:   []Reply{},
	})
	comment := &c.Comments[len(c.Comments)-1]
	c.record(ActionCommentAdded, actorID, map[string]any{
		"comment_id": comment.ID.String(),
		"text":       truncate(text, auditTextLimit),
	})
	return comment, nil
}

func (c *Collaboration) AddReply(actorID, commentID uuid.UUID, text string) (*Reply, error) {
	if !c.HasPermission(actorID, PermissionComment) {
		return nil, ErrPermissionDenied
	}
	comment, err := c.Comment(commentID)
	if err != nil {
		return nil, err
	}
	reply, err := newReply(actorID, text)
	if err != nil {
		return nil, err
	}
	comment.Replies = append(comment.Replies, reply)
	c.record(ActionReplyAdded, actorID, map[string]any{
		"comment_id": commentID.String(),
		"text":       truncate(text, auditTextLimit),
	})
	return &comment.Replies[len(comment.Replies)-1], nil
}

// ResolveComment marks a comment resolved. Resolving again overwrites the
// resolver and timestamp.
func (c *Collaboration) ResolveComment(actorID, commentID uuid.UUID) (*Comment, error) {
	if !c.HasPermission(actorID, PermissionComment) {
		return nil, ErrPermissionDenied
	}
	comment, err := c.Comment(commentID)
	if err != nil {
		return nil, err
	}
	ts := now()
	resolver := actorID
	comment.Resolved = true
	comment.ResolvedBy = &resolver
	comment.ResolvedAt = &ts
	c.record(ActionCommentResolved, actorID, map[string]any{
		"comment_id": commentID.String(),
	})
	return comment, nil
}
