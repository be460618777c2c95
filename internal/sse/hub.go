package sse

import (
	"encoding/json"
	"sync"

	"github.com/dimitrije/lessonforge-api/internal/models"
	"github.com/google/uuid"
)

type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type TimelineEvent struct {
	CollaborationID uuid.UUID            `json:"collaboration_id"`
	Revision        int                  `json:"revision"`
	Entry           models.TimelineEntry `json:"entry"`
}

type InvitationEvent struct {
	CollaborationID uuid.UUID          `json:"collaboration_id"`
	ContentID       uuid.UUID          `json:"content_id"`
	ContentType     models.ContentType `json:"content_type"`
	InvitedBy       uuid.UUID          `json:"invited_by"`
	Role            models.MemberRole  `json:"role"`
}

type Client struct {
	ID             string
	UserID         uuid.UUID
	Collaborations map[uuid.UUID]bool
	Send           chan []byte
}

type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	mu         sync.RWMutex
}

// Message goes to subscribers of CollaborationID, or to every stream of
// UserID when CollaborationID is Nil.
type Message struct {
	CollaborationID uuid.UUID
	UserID          uuid.UUID
	Event           Event
}

func (m *Message) matches(c *Client) bool {
	if m.CollaborationID != uuid.Nil {
		return c.Collaborations[m.CollaborationID]
	}
	return c.UserID == m.UserID
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Event)
			for _, client := range h.clients {
				if msg.matches(client) {
					select {
					case client.Send <- data:
					default:
						// slow client, drop
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Subscribe only affects clients owned by userID.
func (h *Hub) Subscribe(clientID string, userID, collaborationID uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.clients[clientID]
	if !ok || client.UserID != userID {
		return false
	}
	client.Collaborations[collaborationID] = true
	return true
}

func (h *Hub) Unsubscribe(clientID string, userID, collaborationID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok && client.UserID == userID {
		delete(client.Collaborations, collaborationID)
	}
}

// Drop removes a collaboration from every subscription, e.g. after delete
// or when a member leaves.
func (h *Hub) Drop(collaborationID uuid.UUID, userID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.clients {
		if userID == uuid.Nil || client.UserID == userID {
			delete(client.Collaborations, collaborationID)
		}
	}
}

func (h *Hub) BroadcastTimelineEntry(c *models.Collaboration) {
	entry := c.LastEntry()
	if entry == nil {
		return
	}
	h.broadcast <- &Message{
		CollaborationID: c.ID,
		Event: Event{
			Type: "timeline_entry",
			Data: TimelineEvent{
				CollaborationID: c.ID,
				Revision:        c.Revision,
				Entry:           *entry,
			},
		},
	}
}

func (h *Hub) NotifyInvitation(c *models.Collaboration, m *models.Member, invitedBy uuid.UUID) {
	h.broadcast <- &Message{
		UserID: m.UserID,
		Event: Event{
			Type: "invitation_received",
			Data: InvitationEvent{
				CollaborationID: c.ID,
				ContentID:       c.ContentID,
				ContentType:     c.ContentType,
				InvitedBy:       invitedBy,
				Role:            m.Role,
			},
		},
	}
}
