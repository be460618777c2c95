package handlers

import (
	"fmt"

	"github.com/dimitrije/lessonforge-api/internal/sse"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/rs/zerolog"
)

type SSEHandler struct {
	hub            HubInterface
	collaborations CollaborationServiceInterface
	log            zerolog.Logger
}

func NewSSEHandler(hub HubInterface, collaborations CollaborationServiceInterface, log zerolog.Logger) *SSEHandler {
	return &SSEHandler{
		hub:            hub,
		collaborations: collaborations,
		log:            log,
	}
}

// Connect opens a user stream. It receives invitations and the timeline
// of every collaboration subscribed to later.
func (h *SSEHandler) Connect(c *drift.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	h.stream(c, userID, nil)
}

// ConnectCollaboration opens a stream already subscribed to one
// collaboration.
func (h *SSEHandler) ConnectCollaboration(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "collaboration")
	if !ok {
		return
	}

	if _, err := h.collaborations.Get(c.Request.Context(), tenantID, id, userID); err != nil {
		respondError(c, h.log, err, "failed to open event stream")
		return
	}

	h.stream(c, userID, map[uuid.UUID]bool{id: true})
}

func (h *SSEHandler) stream(c *drift.Context, userID uuid.UUID, subs map[uuid.UUID]bool) {
	if subs == nil {
		subs = make(map[uuid.UUID]bool)
	}

	sseCtx := c.SSE()

	clientID := uuid.New().String()
	client := &sse.Client{
		ID:             clientID,
		UserID:         userID,
		Collaborations: subs,
		Send:           make(chan []byte, 256),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	if err := sseCtx.SendJSON(map[string]string{
		"type":      "connected",
		"client_id": clientID,
	}, "system", ""); err != nil {
		return
	}

	done := c.Request.Context().Done()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := sseCtx.Send(string(msg), "message", ""); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *SSEHandler) Subscribe(c *drift.Context) {
	userID, tenantID, ok := caller(c)
	if !ok {
		return
	}

	clientID := c.Param("clientId")
	if clientID == "" {
		c.BadRequest("client_id is required")
		return
	}

	id, ok := paramID(c, "id", "collaboration")
	if !ok {
		return
	}

	if _, err := h.collaborations.Get(c.Request.Context(), tenantID, id, userID); err != nil {
		respondError(c, h.log, err, "failed to subscribe")
		return
	}

	if !h.hub.Subscribe(clientID, userID, id) {
		c.NotFound("event stream not found")
		return
	}

	_ = c.JSON(200, map[string]string{
		"message": fmt.Sprintf("subscribed to collaboration %s", id),
	})
}

func (h *SSEHandler) Unsubscribe(c *drift.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}

	clientID := c.Param("clientId")
	if clientID == "" {
		c.BadRequest("client_id is required")
		return
	}

	id, ok := paramID(c, "id", "collaboration")
	if !ok {
		return
	}

	h.hub.Unsubscribe(clientID, userID, id)

	_ = c.JSON(200, map[string]string{
		"message": fmt.Sprintf("unsubscribed from collaboration %s", id),
	})
}
