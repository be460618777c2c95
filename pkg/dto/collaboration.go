package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dimitrije/lessonforge-api/internal/models"
	"github.com/google/uuid"
)

type CreateCollaborationRequest struct {
	ContentID   uuid.UUID `json:"content_id" validate:"required"`
	ContentType string    `json:"content_type" validate:"required,content_type"`
	Changes     string    `json:"changes" validate:"max=500"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,collaboration_status"`
}

type AddMemberRequest struct {
	UserID      uuid.UUID                   `json:"user_id" validate:"required"`
	Role        string                      `json:"role" validate:"omitempty,member_role"`
	Permissions *models.PermissionOverrides `json:"permissions"`
}

type AddCommentRequest struct {
	Text     string          `json:"text" validate:"required,max=10000"`
	Position json.RawMessage `json:"position"`
}

type AddReplyRequest struct {
	Text string `json:"text" validate:"required,max=10000"`
}

type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	AssignedTo  uuid.UUID  `json:"assigned_to" validate:"required"`
	Priority    string     `json:"priority" validate:"omitempty,task_priority"`
	DueDate     *time.Time `json:"due_date"`
}

// UpdateTaskRequest carries exactly one change, selected by Type.
type UpdateTaskRequest struct {
	Type       string     `json:"type" validate:"required,oneof=status priority reschedule reassign"`
	Status     string     `json:"status" validate:"required_if=Type status,omitempty,task_status"`
	Priority   string     `json:"priority" validate:"required_if=Type priority,omitempty,task_priority"`
	DueDate    *time.Time `json:"due_date"`
	AssignedTo *uuid.UUID `json:"assigned_to" validate:"required_if=Type reassign"`
}

// ToUpdate converts the request to its model variant.
func (r UpdateTaskRequest) ToUpdate() (models.TaskUpdate, error) {
	switch r.Type {
	case "status":
		return models.StatusChange{Status: models.TaskStatus(r.Status)}, nil
	case "priority":
		return models.PriorityChange{Priority: models.TaskPriority(r.Priority)}, nil
	case "reschedule":
		return models.Reschedule{DueDate: r.DueDate}, nil
	case "reassign":
		if r.AssignedTo == nil {
			return nil, fmt.Errorf("%w: assigned_to is required", models.ErrValidation)
		}
		return models.Reassign{AssignedTo: *r.AssignedTo}, nil
	}
	return nil, fmt.Errorf("%w: unknown task update type %q", models.ErrValidation, r.Type)
}

type CreateVersionRequest struct {
	Changes string `json:"changes" validate:"max=500"`
}

type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

func NewUserSummary(u models.User) *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, AvatarURL: u.AvatarURL}
}

type MemberResponse struct {
	models.Member
	User *UserSummary `json:"user,omitempty"`
}

type CollaborationResponse struct {
	*models.Collaboration
	Owner   *UserSummary     `json:"owner,omitempty"`
	Members []MemberResponse `json:"members"`
}

// NewCollaborationResponse decorates members with their directory entry.
// Users missing from the directory are returned without one.
func NewCollaborationResponse(c *models.Collaboration, users map[uuid.UUID]models.User) CollaborationResponse {
	resp := CollaborationResponse{
		Collaboration: c,
		Members:       make([]MemberResponse, 0, len(c.Members)),
	}
	if u, ok := users[c.OwnerID]; ok {
		resp.Owner = NewUserSummary(u)
	}
	for _, m := range c.Members {
		mr := MemberResponse{Member: m}
		if u, ok := users[m.UserID]; ok {
			mr.User = NewUserSummary(u)
		}
		resp.Members = append(resp.Members, mr)
	}
	return resp
}

// ParticipantIDs lists the owner and every member, for directory lookups.
func ParticipantIDs(c *models.Collaboration) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Members)+1)
	ids = append(ids, c.OwnerID)
	for _, m := range c.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

type CollaborationSummary struct {
	ID          uuid.UUID                  `json:"id"`
	ContentID   uuid.UUID                  `json:"content_id"`
	ContentType models.ContentType         `json:"content_type"`
	OwnerID     uuid.UUID                  `json:"owner_id"`
	Status      models.CollaborationStatus `json:"status"`
	Members     int                        `json:"members"`
	OpenTasks   int                        `json:"open_tasks"`
	Revision    int                        `json:"revision"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

func NewCollaborationSummary(c models.Collaboration) CollaborationSummary {
	open := 0
	for _, t := range c.Tasks {
		if t.Status != models.TaskCompleted {
			open++
		}
	}
	return CollaborationSummary{
		ID:          c.ID,
		ContentID:   c.ContentID,
		ContentType: c.ContentType,
		OwnerID:     c.OwnerID,
		Status:      c.Status,
		Members:     len(c.Members),
		OpenTasks:   open,
		Revision:    c.Revision,
		UpdatedAt:   c.UpdatedAt,
	}
}

type RevisionConflictResponse struct {
	Error           string `json:"error"`
	Code            string `json:"code"`
	CurrentRevision int    `json:"current_revision"`
}
