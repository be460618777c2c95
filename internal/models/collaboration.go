package models

import (
	"time"

	"github.com/google/uuid"
)

type CollaborationStatus string

const (
	CollaborationActive    CollaborationStatus = "active"
	CollaborationPaused    CollaborationStatus = "paused"
	CollaborationCompleted CollaborationStatus = "completed"
)

func (s CollaborationStatus) Valid() bool {
	switch s {
	case CollaborationActive, CollaborationPaused, CollaborationCompleted:
		return true
	}
	return false
}

// CollaborationSettings are stored and returned but not enforced by any
// mutation. RequireApproval and AutoAccept in particular have no effect:
// invitations always wait for an explicit accept or decline.
type CollaborationSettings struct {
	AllowInvites        bool `json:"allow_invites"`
	RequireApproval     bool `json:"require_approval"`
	AutoAccept          bool `json:"auto_accept"`
	NotifyOnChanges     bool `json:"notify_on_changes"`
	AllowComments       bool `json:"allow_comments"`
	AllowVersionHistory bool `json:"allow_version_history"`
}

func DefaultSettings() CollaborationSettings {
	return CollaborationSettings{
		AllowInvites:        true,
		NotifyOnChanges:     true,
		AllowComments:       true,
		AllowVersionHistory: true,
	}
}

// SettingsUpdate patches CollaborationSettings field by field.
type SettingsUpdate struct {
	AllowInvites        *bool `json:"allow_invites,omitempty"`
	RequireApproval     *bool `json:"require_approval,omitempty"`
	AutoAccept          *bool `json:"auto_accept,omitempty"`
	NotifyOnChanges     *bool `json:"notify_on_changes,omitempty"`
	AllowComments       *bool `json:"allow_comments,omitempty"`
	AllowVersionHistory *bool `json:"allow_version_history,omitempty"`
}

// Collaboration is the aggregate binding members, discussion, tasks,
// version history and the audit timeline around one content item. It is
// loaded and saved as a single document; Revision guards the save.
type Collaboration struct {
	ID          uuid.UUID             `json:"id"`
	TenantID    uuid.UUID             `json:"tenant_id"`
	ContentID   uuid.UUID             `json:"content_id"`
	ContentType ContentType           `json:"content_type"`
	OwnerID     uuid.UUID             `json:"owner_id"`
	Status      CollaborationStatus   `json:"status"`
	Settings    CollaborationSettings `json:"settings"`
	Members     []Member              `json:"members"`
	Comments    []Comment             `json:"comments"`
	Tasks       []Task                `json:"tasks"`
	Versions    []Version             `json:"versions"`
	Timeline    []TimelineEntry       `json:"timeline"`
	Revision    int                   `json:"revision"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// NewCollaboration starts an active collaboration owned by ownerID. The
// caller persists it; Revision 0 means never saved.
func NewCollaboration(tenantID, contentID uuid.UUID, contentType ContentType, ownerID uuid.UUID) *Collaboration {
	ts := now()
	c := &Collaboration{
		ID:          uuid.New(),
		TenantID:    tenantID,
		ContentID:   contentID,
		ContentType: contentType,
		OwnerID:     ownerID,
		Status:      CollaborationActive,
		Settings:    DefaultSettings(),
		Members:     []Member{},
		Comments:    []Comment{},
		Tasks:       []Task{},
		Versions:    []Version{},
		Timeline:    []TimelineEntry{},
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	c.record(ActionCollaborationCreated, ownerID, map[string]any{
		"content_id":   contentID.String(),
		"content_type": string(contentType),
	})
	return c
}

func (c *Collaboration) IsOwner(userID uuid.UUID) bool {
	return userID == c.OwnerID
}

// HasPermission resolves a permission for userID. The owner holds every
// permission, even if a stray member entry for them says otherwise. Other
// users need an accepted membership that grants it.
func (c *Collaboration) HasPermission(userID uuid.UUID, perm Permission) bool {
	if c.IsOwner(userID) {
		return true
	}
	m := c.findMember(userID)
	if m == nil || m.Status != MemberAccepted {
		return false
	}
	return m.Permissions.Has(perm)
}

// IsParticipant reports whether userID may read the collaboration.
func (c *Collaboration) IsParticipant(userID uuid.UUID) bool {
	if c.IsOwner(userID) {
		return true
	}
	m := c.findMember(userID)
	return m != nil && m.Status == MemberAccepted
}

func (c *Collaboration) UpdateSettings(actorID uuid.UUID, update SettingsUpdate) error {
	if !c.IsOwner(actorID) {
		return ErrPermissionDenied
	}
	s := &c.Settings
	changed := map[string]any{}
	apply := func(name string, dst *bool, src *bool) {
		if src != nil {
			*dst = *src
			changed[name] = *src
		}
	}
	apply("allow_invites", &s.AllowInvites, update.AllowInvites)
	apply("require_approval", &s.RequireApproval, update.RequireApproval)
	apply("auto_accept", &s.AutoAccept, update.AutoAccept)
	apply("notify_on_changes", &s.NotifyOnChanges, update.NotifyOnChanges)
	apply("allow_comments", &s.AllowComments, update.AllowComments)
	apply("allow_version_history", &s.AllowVersionHistory, update.AllowVersionHistory)

	c.record(ActionSettingsUpdated, actorID, changed)
	return nil
}

func (c *Collaboration) SetStatus(actorID uuid.UUID, status CollaborationStatus) error {
	if !c.IsOwner(actorID) {
		return ErrPermissionDenied
	}
	if !status.Valid() {
		return ErrInvalidStatus
	}
	old := c.Status
	c.Status = status
	c.record(ActionStatusChanged, actorID, map[string]any{
		"old_status": string(old),
		"new_status": string(status),
	})
	return nil
}

// Touch refreshes UpdatedAt. The store calls it right before every write.
func (c *Collaboration) Touch() {
	c.UpdatedAt = now()
}

// LastEntry returns the most recent timeline entry, if any.
func (c *Collaboration) LastEntry() *TimelineEntry {
	if len(c.Timeline) == 0 {
		return nil
	}
	return &c.Timeline[len(c.Timeline)-1]
}
