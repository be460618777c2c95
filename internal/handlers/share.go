package handlers

import (
	"context"

	"github.com/dimitrije/lessonforge-api/internal/middleware"
	"github.com/dimitrije/lessonforge-api/internal/models"
	"github.com/dimitrije/lessonforge-api/internal/services"
	"github.com/dimitrije/lessonforge-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/rs/zerolog"
)

// SharePasswordHeader carries the password of a protected share.
const SharePasswordHeader = "X-Share-Password"

type ShareHandler struct {
	shares  ShareServiceInterface
	users   UserServiceInterface
	content ContentServiceInterface
	email   EmailServiceInterface
	baseURL string
	log     zerolog.Logger
}

func NewShareHandler(
	shares ShareServiceInterface,
	users UserServiceInterface,
	content ContentServiceInterface,
	email EmailServiceInterface,
	baseURL string,
	log zerolog.Logger,
) *ShareHandler {
	return &ShareHandler{
		shares:  shares,
		users:   users,
		content: content,
		email:   email,
		baseURL: baseURL,
		log:     log,
	}
}

func (h *ShareHandler) Create(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}

	var req dto.CreateShareRequest
	if !bind(c, &req) {
		return
	}

	ctx := c.Request.Context()

	share, err := h.shares.Create(ctx, tenantID, userID, services.NewShare{
		ContentType:    models.ContentType(req.ContentType),
		ContentID:      req.ContentID,
		ShareType:      models.ShareType(req.ShareType),
		Recipients:     req.Recipients,
		Permissions:    req.Permissions,
		RequireLogin:   req.RequireLogin,
		ExpirationDate: req.ExpirationDate,
		AllowComments:  req.AllowComments,
		ShowAnalytics:  req.ShowAnalytics,
		Password:       req.Password,
	})
	if err != nil {
		respondError(c, h.log, err, "failed to create share")
		return
	}

	if share.ShareType == models.ShareEmail {
		h.notifyRecipients(ctx, share)
	}

	_ = c.JSON(201, dto.NewShareResponse(share, h.baseURL))
}

func (h *ShareHandler) ListMine(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}

	shares, err := h.shares.ListMine(c.Request.Context(), tenantID, userID)
	if err != nil {
		respondError(c, h.log, err, "failed to list shares")
		return
	}

	_ = c.JSON(200, h.responses(shares))
}

func (h *ShareHandler) ListByContent(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}
	contentType, ok := contentTypeParam(c)
	if !ok {
		return
	}
	contentID, ok := paramID(c, "contentId", "content")
	if !ok {
		return
	}

	shares, err := h.shares.ListByContent(c.Request.Context(), tenantID, userID, contentType, contentID)
	if err != nil {
		respondError(c, h.log, err, "failed to list shares")
		return
	}

	_ = c.JSON(200, h.responses(shares))
}

func (h *ShareHandler) Get(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "share")
	if !ok {
		return
	}

	share, err := h.shares.Get(c.Request.Context(), tenantID, id, userID)
	if err != nil {
		respondError(c, h.log, err, "failed to get share")
		return
	}

	_ = c.JSON(200, dto.NewShareResponse(share, h.baseURL))
}

func (h *ShareHandler) Update(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "share")
	if !ok {
		return
	}

	var req dto.UpdateShareRequest
	if !bind(c, &req) {
		return
	}

	share, err := h.shares.Update(c.Request.Context(), tenantID, id, userID, services.ShareUpdate{
		Recipients:      req.Recipients,
		Permissions:     req.Permissions,
		RequireLogin:    req.RequireLogin,
		ExpirationDate:  req.ExpirationDate,
		ClearExpiration: req.ClearExpiration,
		AllowComments:   req.AllowComments,
		ShowAnalytics:   req.ShowAnalytics,
		Password:        req.Password,
		IsActive:        req.IsActive,
	})
	if err != nil {
		respondError(c, h.log, err, "failed to update share")
		return
	}

	_ = c.JSON(200, dto.NewShareResponse(share, h.baseURL))
}

func (h *ShareHandler) Delete(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "share")
	if !ok {
		return
	}

	if err := h.shares.Delete(c.Request.Context(), tenantID, id, userID); err != nil {
		respondError(c, h.log, err, "failed to delete share")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "share deleted"})
}

// View opens a share, by id for signed-in viewers or by public token.
func (h *ShareHandler) View(c *drift.Context) {
	share, viewer, ok := h.resolve(c)
	if !ok {
		return
	}

	item, err := h.shares.Access(c.Request.Context(), share, viewer, c.GetHeader(SharePasswordHeader))
	if err != nil {
		respondError(c, h.log, err, "failed to open share")
		return
	}

	_ = c.JSON(200, dto.NewPublicShareResponse(share, item))
}

func (h *ShareHandler) Download(c *drift.Context) {
	share, viewer, ok := h.resolve(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.shares.RecordDownload(ctx, share, viewer, c.GetHeader(SharePasswordHeader)); err != nil {
		respondError(c, h.log, err, "failed to download share")
		return
	}

	item, err := h.content.FindByID(ctx, share.TenantID, share.ContentType, share.ContentID)
	if err != nil {
		respondError(c, h.log, err, "failed to download share")
		return
	}

	_ = c.JSON(200, item)
}

func (h *ShareHandler) AddComment(c *drift.Context) {
	share, viewer, ok := h.resolve(c)
	if !ok {
		return
	}

	var req dto.ShareCommentRequest
	if !bind(c, &req) {
		return
	}

	comment, err := h.shares.AddComment(c.Request.Context(), share, viewer, c.GetHeader(SharePasswordHeader), req.Text)
	if err != nil {
		respondError(c, h.log, err, "failed to add comment")
		return
	}

	_ = c.JSON(201, comment)
}

func (h *ShareHandler) AddReply(c *drift.Context) {
	share, viewer, ok := h.resolve(c)
	if !ok {
		return
	}

	var req dto.ShareCommentRequest
	if !bind(c, &req) {
		return
	}

	reply, err := h.shares.AddReply(c.Request.Context(), share, viewer, c.GetHeader(SharePasswordHeader), c.Param("commentRef"), req.Text)
	if err != nil {
		respondError(c, h.log, err, "failed to add reply")
		return
	}

	_ = c.JSON(201, reply)
}

// resolve finds the share addressed by the route. Token routes accept
// anonymous viewers; a signed-in viewer only counts inside the share's
// tenant.
func (h *ShareHandler) resolve(c *drift.Context) (*models.Share, *uuid.UUID, bool) {
	ctx := c.Request.Context()

	if token := c.Param("token"); token != "" {
		share, err := h.shares.ByToken(ctx, token)
		if err != nil {
			respondError(c, h.log, err, "failed to load share")
			return nil, nil, false
		}
		var viewer *uuid.UUID
		if userID := middleware.GetUserID(c); userID != uuid.Nil && middleware.GetTenantID(c) == share.TenantID {
			viewer = &userID
		}
		return share, viewer, true
	}

	userID, tenantID, ok := caller(c)
	if !ok {
		return nil, nil, false
	}
	id, ok := paramID(c, "id", "share")
	if !ok {
		return nil, nil, false
	}
	share, err := h.shares.GetForViewer(ctx, tenantID, id)
	if err != nil {
		respondError(c, h.log, err, "failed to load share")
		return nil, nil, false
	}
	return share, &userID, true
}

func (h *ShareHandler) responses(shares []models.Share) []dto.ShareResponse {
	out := make([]dto.ShareResponse, len(shares))
	for i := range shares {
		out[i] = dto.NewShareResponse(&shares[i], h.baseURL)
	}
	return out
}

func (h *ShareHandler) notifyRecipients(ctx context.Context, share *models.Share) {
	if !h.email.IsConfigured() || len(share.Recipients) == 0 {
		return
	}

	sharerName := "A colleague"
	if u, err := h.users.GetByID(ctx, share.SharedBy); err == nil {
		sharerName = u.Name
	}
	title := string(share.ContentType)
	if item, err := h.content.FindByID(ctx, share.TenantID, share.ContentType, share.ContentID); err == nil {
		title = item.Title
	}

	shareURL := h.baseURL + "/api/v1/shares/" + share.ID.String() + "/content"
	for _, to := range share.Recipients {
		if err := h.email.SendShareNotification(to, sharerName, title, shareURL); err != nil {
			h.log.Warn().Err(err).Str("share_id", share.ID.String()).Msg("share email failed")
		}
	}
}
