package handlers

import (
	"context"
	"strconv"

	"github.com/dimitrije/lessonforge-api/internal/models"
	"github.com/dimitrije/lessonforge-api/internal/services"
	"github.com/dimitrije/lessonforge-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/rs/zerolog"
)

type CollaborationHandler struct {
	collaborations CollaborationServiceInterface
	users          UserServiceInterface
	content        ContentServiceInterface
	hub            HubInterface
	email          EmailServiceInterface
	baseURL        string
	log            zerolog.Logger
}

func NewCollaborationHandler(
	collaborations CollaborationServiceInterface,
	users UserServiceInterface,
	content ContentServiceInterface,
	hub HubInterface,
	email EmailServiceInterface,
	baseURL string,
	log zerolog.Logger,
) *CollaborationHandler {
	return &CollaborationHandler{
		collaborations: collaborations,
		users:          users,
		content:        content,
		hub:            hub,
		email:          email,
		baseURL:        baseURL,
		log:            log,
	}
}

func (h *CollaborationHandler) Create(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}

	var req dto.CreateCollaborationRequest
	if !bind(c, &req) {
		return
	}

	collab, err := h.collaborations.Create(c.Request.Context(), tenantID, userID, models.ContentType(req.ContentType), req.ContentID, req.Changes)
	if err != nil {
		respondError(c, h.log, err, "failed to create collaboration")
		return
	}

	_ = c.JSON(201, h.decorate(c.Request.Context(), collab))
}

func (h *CollaborationHandler) List(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}

	collabs, err := h.collaborations.ListForUser(c.Request.Context(), tenantID, userID)
	if err != nil {
		respondError(c, h.log, err, "failed to list collaborations")
		return
	}

	response := make([]dto.CollaborationSummary, len(collabs))
	for i, col := range collabs {
		response[i] = dto.NewCollaborationSummary(col)
	}

	_ = c.JSON(200, response)
}

func (h *CollaborationHandler) ListInvitations(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}

	collabs, err := h.collaborations.ListInvitations(c.Request.Context(), tenantID, userID)
	if err != nil {
		respondError(c, h.log, err, "failed to list invitations")
		return
	}

	response := make([]dto.CollaborationSummary, len(collabs))
	for i, col := range collabs {
		response[i] = dto.NewCollaborationSummary(col)
	}

	_ = c.JSON(200, response)
}

func (h *CollaborationHandler) Get(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "collaboration")
	if !ok {
		return
	}

	collab, err := h.collaborations.Get(c.Request.Context(), tenantID, id, userID)
	if err != nil {
		respondError(c, h.log, err, "failed to get collaboration")
		return
	}

	_ = c.JSON(200, h.decorate(c.Request.Context(), collab))
}

func (h *CollaborationHandler) GetByContent(c *drift.Context) {
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

	collab, err := h.collaborations.GetByContent(c.Request.Context(), tenantID, userID, contentType, contentID)
	if err != nil {
		respondError(c, h.log, err, "failed to get collaboration")
		return
	}

	_ = c.JSON(200, h.decorate(c.Request.Context(), collab))
}

func (h *CollaborationHandler) Delete(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "collaboration")
	if !ok {
		return
	}

	if err := h.collaborations.Delete(c.Request.Context(), tenantID, id, userID); err != nil {
		respondError(c, h.log, err, "failed to delete collaboration")
		return
	}

	h.hub.Drop(id, uuid.Nil)

	_ = c.JSON(200, map[string]string{"message": "collaboration deleted"})
}

func (h *CollaborationHandler) UpdateSettings(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "collaboration")
	if !ok {
		return
	}

	var req models.SettingsUpdate
	if !bind(c, &req) {
		return
	}

	collab, err := h.collaborations.UpdateSettings(c.Request.Context(), tenantID, id, userID, req)
	if err != nil {
		respondError(c, h.log, err, "failed to update settings")
		return
	}

	h.notify(collab)
	_ = c.JSON(200, h.decorate(c.Request.Context(), collab))
}

func (h *CollaborationHandler) SetStatus(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "collaboration")
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if !bind(c, &req) {
		return
	}

	collab, err := h.collaborations.SetStatus(c.Request.Context(), tenantID, id, userID, models.CollaborationStatus(req.Status))
	if err != nil {
		respondError(c, h.log, err, "failed to update status")
		return
	}

	h.notify(collab)
	_ = c.JSON(200, h.decorate(c.Request.Context(), collab))
}

func (h *CollaborationHandler) AddMember(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "collaboration")
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if !bind(c, &req) {
		return
	}

	ctx := c.Request.Context()

	collab, member, err := h.collaborations.AddMember(ctx, tenantID, id, userID, req.UserID, models.MemberRole(req.Role), req.Permissions)
	if err != nil {
		respondError(c, h.log, err, "failed to add member")
		return
	}

	// A re-invited member is back to invited and no longer a participant.
	h.hub.Drop(id, member.UserID)
	h.notify(collab)
	h.hub.NotifyInvitation(collab, member, userID)
	h.sendInvite(ctx, collab, member, userID)

	resp := dto.MemberResponse{Member: *member}
	if users, err := h.users.GetByIDs(ctx, tenantID, []uuid.UUID{member.UserID}); err == nil {
		if u, found := users[member.UserID]; found {
			resp.User = dto.NewUserSummary(u)
		}
	}

	_ = c.JSON(201, resp)
}

func (h *CollaborationHandler) RemoveMember(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "collaboration")
	if !ok {
		return
	}
	memberID, ok := paramID(c, "userId", "user")
	if !ok {
		return
	}

	collab, err := h.collaborations.RemoveMember(c.Request.Context(), tenantID, id, userID, memberID)
	if err != nil {
		respondError(c, h.log, err, "failed to remove member")
		return
	}

	h.hub.Drop(id, memberID)
	h.notify(collab)
	_ = c.JSON(200, map[string]string{"message": "member removed"})
}

func (h *CollaborationHandler) AcceptInvitation(c *drift.Context) {
	h.respondToInvitation(c, true)
}

func (h *CollaborationHandler) DeclineInvitation(c *drift.Context) {
	h.respondToInvitation(c, false)
}

func (h *CollaborationHandler) respondToInvitation(c *drift.Context, accept bool) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "collaboration")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var (
		collab *models.Collaboration
		err    error
	)
	if accept {
		collab, err = h.collaborations.AcceptInvitation(ctx, tenantID, id, userID)
	} else {
		collab, err = h.collaborations.DeclineInvitation(ctx, tenantID, id, userID)
	}
	if err != nil {
		respondError(c, h.log, err, "failed to respond to invitation")
		return
	}

	h.notify(collab)
	if !accept {
		_ = c.JSON(200, map[string]string{"message": "invitation declined"})
		return
	}
	_ = c.JSON(200, h.decorate(ctx, collab))
}

func (h *CollaborationHandler) AddComment(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "collaboration")
	if !ok {
		return
	}

	var req dto.AddCommentRequest
	if !bind(c, &req) {
		return
	}

	collab, comment, err := h.collaborations.AddComment(c.Request.Context(), tenantID, id, userID, req.Text, req.Position)
	if err != nil {
		respondError(c, h.log, err, "failed to add comment")
		return
	}

	h.notify(collab)
	_ = c.JSON(201, comment)
}

func (h *CollaborationHandler) AddReply(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "collaboration")
	if !ok {
		return
	}

	var req dto.AddReplyRequest
	if !bind(c, &req) {
		return
	}

	collab, reply, err := h.collaborations.AddReply(c.Request.Context(), tenantID, id, userID, c.Param("commentRef"), req.Text)
	if err != nil {
		respondError(c, h.log, err, "failed to add reply")
		return
	}

	h.notify(collab)
	_ = c.JSON(201, reply)
}

func (h *CollaborationHandler) ResolveComment(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "collaboration")
	if !ok {
		return
	}

	collab, comment, err := h.collaborations.ResolveComment(c.Request.Context(), tenantID, id, userID, c.Param("commentRef"))
	if err != nil {
		respondError(c, h.log, err, "failed to resolve comment")
		return
	}

	h.notify(collab)
	_ = c.JSON(200, comment)
}

func (h *CollaborationHandler) AddTask(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "collaboration")
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if !bind(c, &req) {
		return
	}

	collab, task, err := h.collaborations.AddTask(c.Request.Context(), tenantID, id, userID, services.NewTask{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Priority:    models.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondError(c, h.log, err, "failed to add task")
		return
	}

	h.notify(collab)
	_ = c.JSON(201, task)
}

func (h *CollaborationHandler) UpdateTask(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "collaboration")
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if !bind(c, &req) {
		return
	}
	update, err := req.ToUpdate()
	if err != nil {
		c.BadRequest(err.Error())
		return
	}

	collab, task, err := h.collaborations.UpdateTask(c.Request.Context(), tenantID, id, userID, c.Param("taskRef"), update)
	if err != nil {
		respondError(c, h.log, err, "failed to update task")
		return
	}

	h.notify(collab)
	_ = c.JSON(200, task)
}

func (h *CollaborationHandler) CreateVersion(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "collaboration")
	if !ok {
		return
	}

	var req dto.CreateVersionRequest
	if !bind(c, &req) {
		return
	}

	collab, version, err := h.collaborations.CreateVersion(c.Request.Context(), tenantID, id, userID, req.Changes)
	if err != nil {
		respondError(c, h.log, err, "failed to create version")
		return
	}

	h.notify(collab)
	_ = c.JSON(201, version)
}

func (h *CollaborationHandler) ListVersions(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "collaboration")
	if !ok {
		return
	}

	versions, err := h.collaborations.Versions(c.Request.Context(), tenantID, id, userID)
	if err != nil {
		respondError(c, h.log, err, "failed to list versions")
		return
	}

	_ = c.JSON(200, versions)
}

func (h *CollaborationHandler) GetVersion(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "collaboration")
	if !ok {
		return
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.BadRequest("invalid version number")
		return
	}

	version, err := h.collaborations.GetVersion(c.Request.Context(), tenantID, id, userID, number)
	if err != nil {
		respondError(c, h.log, err, "failed to get version")
		return
	}

	_ = c.JSON(200, version)
}

func (h *CollaborationHandler) Timeline(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "collaboration")
	if !ok {
		return
	}

	entries, err := h.collaborations.Timeline(c.Request.Context(), tenantID, id, userID)
	if err != nil {
		respondError(c, h.log, err, "failed to get timeline")
		return
	}

	_ = c.JSON(200, entries)
}

// notify pushes the latest timeline entry to live subscribers.
func (h *CollaborationHandler) notify(collab *models.Collaboration) {
	if collab.Settings.NotifyOnChanges {
		h.hub.BroadcastTimelineEntry(collab)
	}
}

// decorate attaches directory identities. A directory failure only costs
// the decoration.
func (h *CollaborationHandler) decorate(ctx context.Context, collab *models.Collaboration) dto.CollaborationResponse {
	users, err := h.users.GetByIDs(ctx, collab.TenantID, dto.ParticipantIDs(collab))
	if err != nil {
		h.log.Warn().Err(err).Str("collaboration_id", collab.ID.String()).Msg("user lookup failed")
		users = nil
	}
	return dto.NewCollaborationResponse(collab, users)
}

func (h *CollaborationHandler) sendInvite(ctx context.Context, collab *models.Collaboration, member *models.Member, inviterID uuid.UUID) {
	if !h.email.IsConfigured() {
		return
	}

	users, err := h.users.GetByIDs(ctx, collab.TenantID, []uuid.UUID{member.UserID, inviterID})
	if err != nil {
		h.log.Warn().Err(err).Msg("invite email skipped")
		return
	}
	invitee, ok := users[member.UserID]
	if !ok {
		return
	}
	inviterName := "A colleague"
	if inviter, ok := users[inviterID]; ok {
		inviterName = inviter.Name
	}
	title := string(collab.ContentType)
	if item, err := h.content.FindByID(ctx, collab.TenantID, collab.ContentType, collab.ContentID); err == nil {
		title = item.Title
	}

	inviteURL := h.baseURL + "/api/v1/collaborations/" + collab.ID.String()
	if err := h.email.SendCollaborationInvite(invitee.Email, inviterName, title, string(member.Role), inviteURL); err != nil {
		h.log.Warn().Err(err).Str("collaboration_id", collab.ID.String()).Msg("invite email failed")
	}
}
