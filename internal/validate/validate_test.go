package validate

import (
	"testing"

	"github.com/dimitrije/lessonforge-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inviteRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Role   string `json:"role" validate:"omitempty,member_role"`
}

type shareRequest struct {
	ContentType string   `json:"content_type" validate:"required,content_type"`
	ShareType   string   `json:"share_type" validate:"required,share_type"`
	Recipients  []string `json:"recipients" validate:"omitempty,dive,email"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(inviteRequest{UserID: "8f14e45f-ceea-467f-a0e6-3e6b1f2b7f5a", Role: "editor"})
	assert.NoError(t, err)

	err = Struct(inviteRequest{UserID: "8f14e45f-ceea-467f-a0e6-3e6b1f2b7f5a"})
	assert.NoError(t, err, "role is optional")
}

func TestStruct_FieldErrorsUseJSONNames(t *testing.T) {
	err := Struct(inviteRequest{UserID: "nope", Role: "owner"})

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, "user_id must be a valid UUID", verr.Fields["user_id"])
	assert.Equal(t, "role must be one of editor, reviewer, commenter", verr.Fields["role"])
	assert.Equal(t, "role must be one of editor, reviewer, commenter; user_id must be a valid UUID", err.Error())
}

func TestStruct_EnumTags(t *testing.T) {
	err := Struct(shareRequest{ContentType: "Podcast", ShareType: "link"})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "content_type")
	assert.NotContains(t, verr.Fields, "share_type")

	err = Struct(shareRequest{ContentType: "Quiz", ShareType: "link", Recipients: []string{"not-an-email"}})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "recipients[0]")
}
