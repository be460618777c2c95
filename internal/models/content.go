package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ContentType string

const (
	ContentTypeCourse       ContentType = "Course"
	ContentTypePresentation ContentType = "Presentation"
	ContentTypeQuiz         ContentType = "Quiz"
	ContentTypeTutorial     ContentType = "Tutorial"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeCourse, ContentTypePresentation, ContentTypeQuiz, ContentTypeTutorial:
		return true
	}
	return false
}

// ContentItem is the authored object a collaboration or share points at.
// Data is kept opaque and copied verbatim into version snapshots.
type ContentItem struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	ContentType ContentType     `json:"content_type"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	Title       string          `json:"title"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Snapshot returns the full state of the item as stored in a version.
func (c *ContentItem) Snapshot() json.RawMessage {
	snapshot, err := json.Marshal(c)
	if err != nil {
		return json.RawMessage("{}")
	}
	return snapshot
}

// now is swapped in tests to pin timestamps.
var now = func() time.Time {
	return time.Now().UTC()
}
