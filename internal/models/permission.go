package models

type Permission string

const (
	PermissionEdit    Permission = "canEdit"
	PermissionComment Permission = "canComment"
	PermissionInvite  Permission = "canInvite"
	PermissionDelete  Permission = "canDelete"
)

type MemberRole string

const (
	RoleEditor    MemberRole = "editor"
	RoleReviewer  MemberRole = "reviewer"
	RoleCommenter MemberRole = "commenter"
)

func (r MemberRole) Valid() bool {
	switch r {
	case RoleEditor, RoleReviewer, RoleCommenter:
		return true
	}
	return false
}

type MemberPermissions struct {
	CanEdit    bool `json:"can_edit"`
	CanComment bool `json:"can_comment"`
	CanInvite  bool `json:"can_invite"`
	CanDelete  bool `json:"can_delete"`
}

// Has reports whether the permission is granted. Unknown permissions are
// never granted.
func (p MemberPermissions) Has(perm Permission) bool {
	switch perm {
	case PermissionEdit:
		return p.CanEdit
	case PermissionComment:
		return p.CanComment
	case PermissionInvite:
		return p.CanInvite
	case PermissionDelete:
		return p.CanDelete
	}
	return false
}

// PermissionOverrides carries the explicitly supplied fields of an
// invitation. Nil fields keep the role default.
type PermissionOverrides struct {
	CanEdit    *bool `json:"can_edit,omitempty"`
	CanComment *bool `json:"can_comment,omitempty"`
	CanInvite  *bool `json:"can_invite,omitempty"`
	CanDelete  *bool `json:"can_delete,omitempty"`
}

func (o *PermissionOverrides) applyTo(p MemberPermissions) MemberPermissions {
	if o == nil {
		return p
	}
	if o.CanEdit != nil {
		p.CanEdit = *o.CanEdit
	}
	if o.CanComment != nil {
		p.CanComment = *o.CanComment
	}
	if o.CanInvite != nil {
		p.CanInvite = *o.CanInvite
	}
	if o.CanDelete != nil {
		p.CanDelete = *o.CanDelete
	}
	return p
}

// DefaultPermissions is the template a role applies at invitation time.
// Nothing reconciles permissions with the role afterwards.
func DefaultPermissions(role MemberRole) MemberPermissions {
	if role == RoleEditor {
		return MemberPermissions{CanEdit: true, CanComment: true, CanInvite: true}
	}
	return MemberPermissions{CanComment: true}
}
