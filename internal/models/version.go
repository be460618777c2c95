package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Version is an append-only full snapshot of the content. Exactly one
// version is current and it always carries the highest number.
type Version struct {
	ID            uuid.UUID       `json:"id"`
	VersionNumber int             `json:"version_number"`
	UserID        uuid.UUID       `json:"user_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Changes       string          `json:"changes"`
	Snapshot      json.RawMessage `json:"snapshot"`
	IsCurrent     bool            `json:"is_current"`
}

func (c *Collaboration) CreateVersion(actorID uuid.UUID, changes string, snapshot json.RawMessage) (*Version, error) {
	if !c.HasPermission(actorID, PermissionEdit) {
		return nil, ErrPermissionDenied
	}
	if snapshot == nil {
		snapshot = json.RawMessage("{}")
	}

	next := 1
	for i := range c.Versions {
		if c.Versions[i].VersionNumber >= next {
			next = c.Versions[i].VersionNumber + 1
		}
		c.Versions[i].IsCurrent = false
	}

	c.Versions = append(c.Versions, Version{
		ID:            uuid.New(),
		VersionNumber: next,
		UserID:        actorID,
		Timestamp:     now(),
		Changes:       changes,
		Snapshot:      snapshot,
		IsCurrent:     true,
	})
	v := &c.Versions[len(c.Versions)-1]
	c.record(ActionVersionCreated, actorID, map[string]any{
		"version_number": next,
		"changes":        truncate(changes, auditTextLimit),
	})
	return v, nil
}

// CurrentVersion returns the version flagged current, or nil before the
// first snapshot.
func (c *Collaboration) CurrentVersion() *Version {
	for i := range c.Versions {
		if c.Versions[i].IsCurrent {
			return &c.Versions[i]
		}
	}
	return nil
}

func (c *Collaboration) Version(number int) (*Version, error) {
	for i := range c.Versions {
		if c.Versions[i].VersionNumber == number {
			return &c.Versions[i], nil
		}
	}
	return nil, ErrVersionNotFound
}
