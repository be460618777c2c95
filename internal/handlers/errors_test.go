package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dimitrije/lessonforge-api/internal/logger"
	"github.com/dimitrije/lessonforge-api/internal/models"
	"github.com/dimitrije/lessonforge-api/internal/validate"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
)

func respondWith(err error, logOut *bytes.Buffer) *httptest.ResponseRecorder {
	log := logger.New(logOut, "debug", false)

	app := drift.New()
	app.Get("/fail", func(c *drift.Context) {
		respondError(c, log, err, "failed to do the thing")
	})

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))
	return rec
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"field validation", &validate.Error{Fields: map[string]string{"text": "text is a required field"}}, http.StatusBadRequest, "text is a required field"},
		{"domain validation", models.ErrInvalidAssignee, http.StatusBadRequest, "assignee must be the owner"},
		{"revision conflict", fmt.Errorf("save: %w", &models.RevisionConflictError{Current: 4}), http.StatusConflict, `"current_revision":4`},
		{"share unavailable", models.ErrShareUnavailable, http.StatusGone, "share is no longer available"},
		{"login required", models.ErrLoginRequired, http.StatusUnauthorized, "login required"},
		{"wrong password", models.ErrWrongPassword, http.StatusForbidden, "wrong share password"},
		{"not found", models.ErrTaskNotFound, http.StatusNotFound, "task not found"},
		{"permission denied", fmt.Errorf("remove: %w", models.ErrPermissionDenied), http.StatusForbidden, "permission denied"},
		{"invalid state", models.ErrInvitationNotPending, http.StatusConflict, "INVALID_STATE"},
		{"conflict", models.ErrCollaborationExists, http.StatusConflict, `"code":"CONFLICT"`},
		{"unknown", errors.New("pq: connection refused"), http.StatusInternalServerError, "failed to do the thing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logOut bytes.Buffer

			rec := respondWith(tt.err, &logOut)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestRespondError_LogsOnlyUnexpected(t *testing.T) {
	var logOut bytes.Buffer
	respondWith(models.ErrCommentNotFound, &logOut)
	assert.Empty(t, logOut.String())

	logOut.Reset()
	rec := respondWith(errors.New("pq: connection refused"), &logOut)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.Contains(t, logOut.String(), "connection refused")
	assert.Contains(t, logOut.String(), `"path":"/fail"`)
}
