package models

import (
	"time"

	"github.com/google/uuid"
)

type MemberStatus string

const (
	MemberInvited  MemberStatus = "invited"
	MemberAccepted MemberStatus = "accepted"
	MemberDeclined MemberStatus = "declined"
)

// Member is embedded in a collaboration and addressed by UserID.
type Member struct {
	UserID                uuid.UUID         `json:"user_id"`
	Role                  MemberRole        `json:"role"`
	Permissions           MemberPermissions `json:"permissions"`
	PermissionsOverridden bool              `json:"permissions_overridden"`
	Status                MemberStatus      `json:"status"`
	InvitedAt             time.Time         `json:"invited_at"`
	RespondedAt           *time.Time        `json:"responded_at"`
}

func (c *Collaboration) findMember(userID uuid.UUID) *Member {
	for i := range c.Members {
		if c.Members[i].UserID == userID {
			return &c.Members[i]
		}
	}
	return nil
}

// Member returns the member entry for userID.
func (c *Collaboration) Member(userID uuid.UUID) (*Member, error) {
	m := c.findMember(userID)
	if m == nil {
		return nil, ErrMemberNotFound
	}
	return m, nil
}

// AddMember invites userID, or re-invites in place when an entry already
// exists: status goes back to invited and permissions are rebuilt from the
// role defaults plus overrides. An empty role means commenter.
func (c *Collaboration) AddMember(actorID, userID uuid.UUID, role MemberRole, overrides *PermissionOverrides) (*Member, error) {
	if !c.IsOwner(actorID) {
		return nil, ErrPermissionDenied
	}
	if role == "" {
		role = RoleCommenter
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if c.IsOwner(userID) {
		return nil, ErrOwnerAsMember
	}

	defaults := DefaultPermissions(role)
	perms := overrides.applyTo(defaults)
	member := Member{
		UserID:                userID,
		Role:                  role,
		Permissions:           perms,
		PermissionsOverridden: perms != defaults,
		Status:                MemberInvited,
		InvitedAt:             now(),
	}

	existing := c.findMember(userID)
	if existing != nil {
		*existing = member
	} else {
		c.Members = append(c.Members, member)
		existing = &c.Members[len(c.Members)-1]
	}

	c.record(ActionMemberInvited, actorID, map[string]any{
		"invited_user_id": userID.String(),
		"role":            string(role),
	})
	return existing, nil
}

// AcceptInvitation is performed by the invitee.
func (c *Collaboration) AcceptInvitation(userID uuid.UUID) error {
	return c.respond(userID, MemberAccepted, ActionInvitationAccepted)
}

// DeclineInvitation is performed by the invitee.
func (c *Collaboration) DeclineInvitation(userID uuid.UUID) error {
	return c.respond(userID, MemberDeclined, ActionInvitationDeclined)
}

func (c *Collaboration) respond(userID uuid.UUID, status MemberStatus, action string) error {
	m := c.findMember(userID)
	if m == nil {
		return ErrMemberNotFound
	}
	if m.Status != MemberInvited {
		return ErrInvitationNotPending
	}
	ts := now()
	m.Status = status
	m.RespondedAt = &ts
	c.record(action, userID, nil)
	return nil
}

// RemoveMember deletes a member entry in any status. The owner may remove
// anyone; a member may remove only themself.
func (c *Collaboration) RemoveMember(actorID, userID uuid.UUID) error {
	if !c.IsOwner(actorID) && actorID != userID {
		return ErrPermissionDenied
	}
	idx := -1
	for i := range c.Members {
		if c.Members[i].UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrMemberNotFound
	}
	c.Members = append(c.Members[:idx], c.Members[idx+1:]...)
	c.record(ActionMemberRemoved, actorID, map[string]any{
		"removed_user_id": userID.String(),
	})
	return nil
}

// PendingInvitation reports whether userID has an unanswered invitation.
func (c *Collaboration) PendingInvitation(userID uuid.UUID) bool {
	m := c.findMember(userID)
	return m != nil && m.Status == MemberInvited
}
