package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dimitrije/lessonforge-api/internal/models"
	"github.com/dimitrije/lessonforge-api/internal/services"
	"github.com/dimitrije/lessonforge-api/internal/sse"
	"github.com/google/uuid"
)

// CollaborationServiceInterface defines the methods used by handlers from CollaborationService
type CollaborationServiceInterface interface {
	Create(ctx context.Context, tenantID, actorID uuid.UUID, contentType models.ContentType, contentID uuid.UUID, changes string) (*models.Collaboration, error)
	Get(ctx context.Context, tenantID, id, actorID uuid.UUID) (*models.Collaboration, error)
	GetByContent(ctx context.Context, tenantID, actorID uuid.UUID, contentType models.ContentType, contentID uuid.UUID) (*models.Collaboration, error)
	ListForUser(ctx context.Context, tenantID, userID uuid.UUID) ([]models.Collaboration, error)
	ListInvitations(ctx context.Context, tenantID, userID uuid.UUID) ([]models.Collaboration, error)
	Delete(ctx context.Context, tenantID, id, actorID uuid.UUID) error
	UpdateSettings(ctx context.Context, tenantID, id, actorID uuid.UUID, update models.SettingsUpdate) (*models.Collaboration, error)
	SetStatus(ctx context.Context, tenantID, id, actorID uuid.UUID, status models.CollaborationStatus) (*models.Collaboration, error)
	AddMember(ctx context.Context, tenantID, id, actorID, userID uuid.UUID, role models.MemberRole, overrides *models.PermissionOverrides) (*models.Collaboration, *models.Member, error)
	AcceptInvitation(ctx context.Context, tenantID, id, userID uuid.UUID) (*models.Collaboration, error)
	DeclineInvitation(ctx context.Context, tenantID, id, userID uuid.UUID) (*models.Collaboration, error)
	RemoveMember(ctx context.Context, tenantID, id, actorID, userID uuid.UUID) (*models.Collaboration, error)
	AddComment(ctx context.Context, tenantID, id, actorID uuid.UUID, text string, position json.RawMessage) (*models.Collaboration, *models.Comment, error)
	AddReply(ctx context.Context, tenantID, id, actorID uuid.UUID, commentRef, text string) (*models.Collaboration, *models.Reply, error)
	ResolveComment(ctx context.Context, tenantID, id, actorID uuid.UUID, commentRef string) (*models.Collaboration, *models.Comment, error)
	AddTask(ctx context.Context, tenantID, id, actorID uuid.UUID, task services.NewTask) (*models.Collaboration, *models.Task, error)
	UpdateTask(ctx context.Context, tenantID, id, actorID uuid.UUID, taskRef string, update models.TaskUpdate) (*models.Collaboration, *models.Task, error)
	CreateVersion(ctx context.Context, tenantID, id, actorID uuid.UUID, changes string) (*models.Collaboration, *models.Version, error)
	Timeline(ctx context.Context, tenantID, id, actorID uuid.UUID) ([]models.TimelineEntry, error)
	Versions(ctx context.Context, tenantID, id, actorID uuid.UUID) ([]models.Version, error)
	GetVersion(ctx context.Context, tenantID, id, actorID uuid.UUID, number int) (*models.Version, error)
}

// ShareServiceInterface defines the methods used by handlers from ShareService
type ShareServiceInterface interface {
	Create(ctx context.Context, tenantID, actorID uuid.UUID, in services.NewShare) (*models.Share, error)
	Get(ctx context.Context, tenantID, id, actorID uuid.UUID) (*models.Share, error)
	GetForViewer(ctx context.Context, tenantID, id uuid.UUID) (*models.Share, error)
	ByToken(ctx context.Context, token string) (*models.Share, error)
	ListByContent(ctx context.Context, tenantID, actorID uuid.UUID, contentType models.ContentType, contentID uuid.UUID) ([]models.Share, error)
	ListMine(ctx context.Context, tenantID, actorID uuid.UUID) ([]models.Share, error)
	Update(ctx context.Context, tenantID, id, actorID uuid.UUID, update services.ShareUpdate) (*models.Share, error)
	Delete(ctx context.Context, tenantID, id, actorID uuid.UUID) error
	Access(ctx context.Context, share *models.Share, userID *uuid.UUID, password string) (*models.ContentItem, error)
	RecordDownload(ctx context.Context, share *models.Share, userID *uuid.UUID, password string) error
	AddComment(ctx context.Context, share *models.Share, userID *uuid.UUID, password, text string) (*models.ShareComment, error)
	AddReply(ctx context.Context, share *models.Share, userID *uuid.UUID, password, commentRef, text string) (*models.Reply, error)
}

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}

// ContentServiceInterface defines the methods used by handlers from ContentService
type ContentServiceInterface interface {
	FindByID(ctx context.Context, tenantID uuid.UUID, contentType models.ContentType, id uuid.UUID) (*models.ContentItem, error)
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	Store(ctx context.Context, userID uuid.UUID, refreshToken string, expiresAt time.Time) error
	Rotate(ctx context.Context, userID uuid.UUID, oldToken, newToken string, expiresAt time.Time) error
	Revoke(ctx context.Context, refreshToken string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID, tenantID uuid.UUID, email string) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

// HubInterface defines the methods used by handlers from the SSE hub
type HubInterface interface {
	Register(client *sse.Client)
	Unregister(client *sse.Client)
	Subscribe(clientID string, userID, collaborationID uuid.UUID) bool
	Unsubscribe(clientID string, userID, collaborationID uuid.UUID)
	Drop(collaborationID, userID uuid.UUID)
	BroadcastTimelineEntry(c *models.Collaboration)
	NotifyInvitation(c *models.Collaboration, m *models.Member, invitedBy uuid.UUID)
}

// EmailServiceInterface defines the methods used by handlers from EmailService
type EmailServiceInterface interface {
	IsConfigured() bool
	SendCollaborationInvite(to, inviterName, contentTitle, role, inviteURL string) error
	SendShareNotification(to, sharerName, contentTitle, shareURL string) error
}
