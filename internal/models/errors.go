package models

import (
	"errors"
	"fmt"
)

// Error classes. Specific errors wrap one of these so callers can branch
// with errors.Is on the class alone.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidState     = errors.New("invalid state")
	ErrPermissionDenied = errors.New("permission denied")
	ErrConflict         = errors.New("conflict")
	ErrValidation       = errors.New("validation failed")
)

var (
	ErrCollaborationNotFound = fmt.Errorf("collaboration %w", ErrNotFound)
	ErrMemberNotFound        = fmt.Errorf("member %w", ErrNotFound)
	ErrCommentNotFound       = fmt.Errorf("comment %w", ErrNotFound)
	ErrTaskNotFound          = fmt.Errorf("task %w", ErrNotFound)
	ErrVersionNotFound       = fmt.Errorf("version %w", ErrNotFound)
	ErrContentNotFound       = fmt.Errorf("content %w", ErrNotFound)
	ErrShareNotFound         = fmt.Errorf("share %w", ErrNotFound)

	ErrInvitationNotPending = fmt.Errorf("%w: invitation is not pending", ErrInvalidState)
	ErrShareUnavailable     = fmt.Errorf("%w: share is inactive or expired", ErrInvalidState)

	ErrCollaborationExists = fmt.Errorf("%w: collaboration already exists for this content", ErrConflict)
	ErrRevisionConflict    = fmt.Errorf("%w: collaboration has been modified", ErrConflict)

	ErrOwnerAsMember    = fmt.Errorf("%w: owner cannot be invited as a member", ErrValidation)
	ErrInvalidAssignee  = fmt.Errorf("%w: assignee must be the owner or an accepted member", ErrValidation)
	ErrEmptyText        = fmt.Errorf("%w: text is required", ErrValidation)
	ErrInvalidRole      = fmt.Errorf("%w: unknown member role", ErrValidation)
	ErrInvalidStatus    = fmt.Errorf("%w: unknown status", ErrValidation)
	ErrInvalidPriority  = fmt.Errorf("%w: unknown priority", ErrValidation)
	ErrInvalidShareType = fmt.Errorf("%w: unknown share type", ErrValidation)
	ErrInvalidContent   = fmt.Errorf("%w: unknown content type", ErrValidation)
	ErrLoginRequired    = fmt.Errorf("%w: login required", ErrPermissionDenied)
	ErrWrongPassword    = fmt.Errorf("%w: wrong share password", ErrPermissionDenied)
)

// RevisionConflictError reports the revision a rejected save lost against.
type RevisionConflictError struct {
	Current int
}

func (e *RevisionConflictError) Error() string {
	return fmt.Sprintf("%s (current revision %d)", ErrRevisionConflict, e.Current)
}

func (e *RevisionConflictError) Unwrap() error {
	return ErrRevisionConflict
}
