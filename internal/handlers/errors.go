package handlers

import (
	"errors"

	"github.com/dimitrije/lessonforge-api/internal/middleware"
	"github.com/dimitrije/lessonforge-api/internal/models"
	"github.com/dimitrije/lessonforge-api/internal/validate"
	"github.com/dimitrije/lessonforge-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/rs/zerolog"
)

// respondError maps domain errors onto HTTP statuses. Anything unknown is
// logged and reported as a 500 with fallback as the message.
func respondError(c *drift.Context, log zerolog.Logger, err error, fallback string) {
	var conflict *models.RevisionConflictError
	var verr *validate.Error

	switch {
	case errors.As(err, &verr):
		c.BadRequest(verr.Error())
	case errors.As(err, &conflict):
		_ = c.JSON(409, dto.RevisionConflictResponse{
			Error:           "collaboration has been modified by another request",
			Code:            "REVISION_CONFLICT",
			CurrentRevision: conflict.Current,
		})
	case errors.Is(err, models.ErrShareUnavailable):
		_ = c.JSON(410, map[string]string{"error": "share is no longer available"})
	case errors.Is(err, models.ErrLoginRequired):
		c.Unauthorized("login required")
	case errors.Is(err, models.ErrWrongPassword):
		c.Forbidden("wrong share password")
	case errors.Is(err, models.ErrNotFound):
		c.NotFound(err.Error())
	case errors.Is(err, models.ErrPermissionDenied):
		c.Forbidden("permission denied")
	case errors.Is(err, models.ErrInvalidState):
		_ = c.JSON(409, map[string]string{"error": err.Error(), "code": "INVALID_STATE"})
	case errors.Is(err, models.ErrConflict):
		_ = c.JSON(409, map[string]string{"error": err.Error(), "code": "CONFLICT"})
	case errors.Is(err, models.ErrValidation):
		c.BadRequest(err.Error())
	default:
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg(fallback)
		c.InternalServerError(fallback)
	}
}

// caller returns the authenticated user and tenant, answering 401 itself
// when either is missing.
func caller(c *drift.Context) (userID, tenantID uuid.UUID, ok bool) {
	userID = middleware.GetUserID(c)
	tenantID = middleware.GetTenantID(c)
	if userID == uuid.Nil || tenantID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, tenantID, true
}

func paramID(c *drift.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.BadRequest("invalid " + label + " id")
		return uuid.Nil, false
	}
	return id, true
}

// bind decodes and validates a JSON body, answering 400 itself on failure.
func bind(c *drift.Context, req any) bool {
	if err := c.BindJSON(req); err != nil {
		c.BadRequest("invalid request body")
		return false
	}
	if err := validate.Struct(req); err != nil {
		c.BadRequest(err.Error())
		return false
	}
	return true
}

func contentTypeParam(c *drift.Context) (models.ContentType, bool) {
	ct := models.ContentType(c.Param("contentType"))
	if !ct.Valid() {
		c.BadRequest(models.ErrInvalidContent.Error())
		return "", false
	}
	return ct, true
}
