package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCollaborationCreated = "collaboration_created"
	ActionSettingsUpdated      = "settings_updated"
	ActionStatusChanged        = "status_changed"
	ActionMemberInvited        = "member_invited"
	ActionInvitationAccepted   = "invitation_accepted"
	ActionInvitationDeclined   = "invitation_declined"
	ActionMemberRemoved        = "member_removed"
	ActionCommentAdded         = "comment_added"
	ActionReplyAdded           = "reply_added"
	ActionCommentResolved      = "comment_resolved"
	ActionTaskCreated          = "task_created"
	ActionTaskUpdated          = "task_updated"
	ActionVersionCreated       = "version_created"
)

// auditTextLimit bounds free text copied into timeline details.
const auditTextLimit = 100

// TimelineEntry is immutable once appended.
type TimelineEntry struct {
	Action    string         `json:"action"`
	UserID    uuid.UUID      `json:"user_id"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details"`
}

func (c *Collaboration) record(action string, actorID uuid.UUID, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	c.Timeline = append(c.Timeline, TimelineEntry{
		Action:    action,
		UserID:    actorID,
		Timestamp: now(),
		Details:   details,
	})
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
