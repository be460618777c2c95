package models

import (
	"strconv"

	"github.com/google/uuid"
)

// Routes address comments and tasks either by stable id or by their
// position in the list. Positions are resolved against the loaded aggregate
// and never persisted.
func resolveRef(ref string, notFound error, at func(int) (uuid.UUID, error)) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	index, err := strconv.Atoi(ref)
	if err != nil {
		return uuid.Nil, notFound
	}
	return at(index)
}

func (c *Collaboration) ResolveCommentRef(ref string) (uuid.UUID, error) {
	return resolveRef(ref, ErrCommentNotFound, c.CommentIDAt)
}

func (c *Collaboration) ResolveTaskRef(ref string) (uuid.UUID, error) {
	return resolveRef(ref, ErrTaskNotFound, c.TaskIDAt)
}

func (s *Share) ResolveCommentRef(ref string) (uuid.UUID, error) {
	return resolveRef(ref, ErrCommentNotFound, s.CommentIDAt)
}
