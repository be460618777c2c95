package testutil

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dimitrije/lessonforge-api/internal/models"
	"github.com/dimitrije/lessonforge-api/internal/services"
	"github.com/dimitrije/lessonforge-api/internal/sse"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCollaborationService mocks the CollaborationService
type MockCollaborationService struct {
	mock.Mock
}

func collab(args mock.Arguments) *models.Collaboration {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.Collaboration)
}

func (m *MockCollaborationService) Create(ctx context.Context, tenantID, actorID uuid.UUID, contentType models.ContentType, contentID uuid.UUID, changes string) (*models.Collaboration, error) {
	args := m.Called(ctx, tenantID, actorID, contentType, contentID, changes)
	return collab(args), args.Error(1)
}

func (m *MockCollaborationService) Get(ctx context.Context, tenantID, id, actorID uuid.UUID) (*models.Collaboration, error) {
	args := m.Called(ctx, tenantID, id, actorID)
	return collab(args), args.Error(1)
}

func (m *MockCollaborationService) GetByContent(ctx context.Context, tenantID, actorID uuid.UUID, contentType models.ContentType, contentID uuid.UUID) (*models.Collaboration, error) {
	args := m.Called(ctx, tenantID, actorID, contentType, contentID)
	return collab(args), args.Error(1)
}

func (m *MockCollaborationService) ListForUser(ctx context.Context, tenantID, userID uuid.UUID) ([]models.Collaboration, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Collaboration), args.Error(1)
}

func (m *MockCollaborationService) ListInvitations(ctx context.Context, tenantID, userID uuid.UUID) ([]models.Collaboration, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Collaboration), args.Error(1)
}

func (m *MockCollaborationService) Delete(ctx context.Context, tenantID, id, actorID uuid.UUID) error {
	args := m.Called(ctx, tenantID, id, actorID)
	return args.Error(0)
}

func (m *MockCollaborationService) UpdateSettings(ctx context.Context, tenantID, id, actorID uuid.UUID, update models.SettingsUpdate) (*models.Collaboration, error) {
	args := m.Called(ctx, tenantID, id, actorID, update)
	return collab(args), args.Error(1)
}

func (m *MockCollaborationService) SetStatus(ctx context.Context, tenantID, id, actorID uuid.UUID, status models.CollaborationStatus) (*models.Collaboration, error) {
	args := m.Called(ctx, tenantID, id, actorID, status)
	return collab(args), args.Error(1)
}

func (m *MockCollaborationService) AddMember(ctx context.Context, tenantID, id, actorID, userID uuid.UUID, role models.MemberRole, overrides *models.PermissionOverrides) (*models.Collaboration, *models.Member, error) {
	args := m.Called(ctx, tenantID, id, actorID, userID, role, overrides)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return collab(args), args.Get(1).(*models.Member), args.Error(2)
}

func (m *MockCollaborationService) AcceptInvitation(ctx context.Context, tenantID, id, userID uuid.UUID) (*models.Collaboration, error) {
	args := m.Called(ctx, tenantID, id, userID)
	return collab(args), args.Error(1)
}

func (m *MockCollaborationService) DeclineInvitation(ctx context.Context, tenantID, id, userID uuid.UUID) (*models.Collaboration, error) {
	args := m.Called(ctx, tenantID, id, userID)
	return collab(args), args.Error(1)
}

func (m *MockCollaborationService) RemoveMember(ctx context.Context, tenantID, id, actorID, userID uuid.UUID) (*models.Collaboration, error) {
	args := m.Called(ctx, tenantID, id, actorID, userID)
	return collab(args), args.Error(1)
}

func (m *MockCollaborationService) AddComment(ctx context.Context, tenantID, id, actorID uuid.UUID, text string, position json.RawMessage) (*models.Collaboration, *models.Comment, error) {
	args := m.Called(ctx, tenantID, id, actorID, text, position)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return collab(args), args.Get(1).(*models.Comment), args.Error(2)
}

func (m *MockCollaborationService) AddReply(ctx context.Context, tenantID, id, actorID uuid.UUID, commentRef, text string) (*models.Collaboration, *models.Reply, error) {
	args := m.Called(ctx, tenantID, id, actorID, commentRef, text)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return collab(args), args.Get(1).(*models.Reply), args.Error(2)
}

func (m *MockCollaborationService) ResolveComment(ctx context.Context, tenantID, id, actorID uuid.UUID, commentRef string) (*models.Collaboration, *models.Comment, error) {
	args := m.Called(ctx, tenantID, id, actorID, commentRef)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return collab(args), args.Get(1).(*models.Comment), args.Error(2)
}

func (m *MockCollaborationService) AddTask(ctx context.Context, tenantID, id, actorID uuid.UUID, task services.NewTask) (*models.Collaboration, *models.Task, error) {
	args := m.Called(ctx, tenantID, id, actorID, task)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return collab(args), args.Get(1).(*models.Task), args.Error(2)
}

func (m *MockCollaborationService) UpdateTask(ctx context.Context, tenantID, id, actorID uuid.UUID, taskRef string, update models.TaskUpdate) (*models.Collaboration, *models.Task, error) {
	args := m.Called(ctx, tenantID, id, actorID, taskRef, update)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return collab(args), args.Get(1).(*models.Task), args.Error(2)
}

func (m *MockCollaborationService) CreateVersion(ctx context.Context, tenantID, id, actorID uuid.UUID, changes string) (*models.Collaboration, *models.Version, error) {
	args := m.Called(ctx, tenantID, id, actorID, changes)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return collab(args), args.Get(1).(*models.Version), args.Error(2)
}

func (m *MockCollaborationService) Timeline(ctx context.Context, tenantID, id, actorID uuid.UUID) ([]models.TimelineEntry, error) {
	args := m.Called(ctx, tenantID, id, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TimelineEntry), args.Error(1)
}

func (m *MockCollaborationService) Versions(ctx context.Context, tenantID, id, actorID uuid.UUID) ([]models.Version, error) {
	args := m.Called(ctx, tenantID, id, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Version), args.Error(1)
}

func (m *MockCollaborationService) GetVersion(ctx context.Context, tenantID, id, actorID uuid.UUID, number int) (*models.Version, error) {
	args := m.Called(ctx, tenantID, id, actorID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Version), args.Error(1)
}

// MockShareService mocks the ShareService
type MockShareService struct {
	mock.Mock
}

func share(args mock.Arguments) *models.Share {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.Share)
}

func (m *MockShareService) Create(ctx context.Context, tenantID, actorID uuid.UUID, in services.NewShare) (*models.Share, error) {
	args := m.Called(ctx, tenantID, actorID, in)
	return share(args), args.Error(1)
}

func (m *MockShareService) Get(ctx context.Context, tenantID, id, actorID uuid.UUID) (*models.Share, error) {
	args := m.Called(ctx, tenantID, id, actorID)
	return share(args), args.Error(1)
}

func (m *MockShareService) GetForViewer(ctx context.Context, tenantID, id uuid.UUID) (*models.Share, error) {
	args := m.Called(ctx, tenantID, id)
	return share(args), args.Error(1)
}

func (m *MockShareService) ByToken(ctx context.Context, token string) (*models.Share, error) {
	args := m.Called(ctx, token)
	return share(args), args.Error(1)
}

func (m *MockShareService) ListByContent(ctx context.Context, tenantID, actorID uuid.UUID, contentType models.ContentType, contentID uuid.UUID) ([]models.Share, error) {
	args := m.Called(ctx, tenantID, actorID, contentType, contentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Share), args.Error(1)
}

func (m *MockShareService) ListMine(ctx context.Context, tenantID, actorID uuid.UUID) ([]models.Share, error) {
	args := m.Called(ctx, tenantID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Share), args.Error(1)
}

func (m *MockShareService) Update(ctx context.Context, tenantID, id, actorID uuid.UUID, update services.ShareUpdate) (*models.Share, error) {
	args := m.Called(ctx, tenantID, id, actorID, update)
	return share(args), args.Error(1)
}

func (m *MockShareService) Delete(ctx context.Context, tenantID, id, actorID uuid.UUID) error {
	args := m.Called(ctx, tenantID, id, actorID)
	return args.Error(0)
}

func (m *MockShareService) Access(ctx context.Context, s *models.Share, userID *uuid.UUID, password string) (*models.ContentItem, error) {
	args := m.Called(ctx, s, userID, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContentItem), args.Error(1)
}

func (m *MockShareService) RecordDownload(ctx context.Context, s *models.Share, userID *uuid.UUID, password string) error {
	args := m.Called(ctx, s, userID, password)
	return args.Error(0)
}

func (m *MockShareService) AddComment(ctx context.Context, s *models.Share, userID *uuid.UUID, password, text string) (*models.ShareComment, error) {
	args := m.Called(ctx, s, userID, password, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShareComment), args.Error(1)
}

func (m *MockShareService) AddReply(ctx context.Context, s *models.Share, userID *uuid.UUID, password, commentRef, text string) (*models.Reply, error) {
	args := m.Called(ctx, s, userID, password, commentRef, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reply), args.Error(1)
}

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]models.User), args.Error(1)
}

// MockContentService mocks the ContentService
type MockContentService struct {
	mock.Mock
}

func (m *MockContentService) FindByID(ctx context.Context, tenantID uuid.UUID, contentType models.ContentType, id uuid.UUID) (*models.ContentItem, error) {
	args := m.Called(ctx, tenantID, contentType, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContentItem), args.Error(1)
}

// MockTokenService mocks the TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Store(ctx context.Context, userID uuid.UUID, refreshToken string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, refreshToken, expiresAt)
	return args.Error(0)
}

func (m *MockTokenService) Rotate(ctx context.Context, userID uuid.UUID, oldToken, newToken string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, oldToken, newToken, expiresAt)
	return args.Error(0)
}

func (m *MockTokenService) Revoke(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *MockTokenService) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockJWTService mocks the JWTService
type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateTokenPair(userID, tenantID uuid.UUID, email string) (*services.TokenPair, error) {
	args := m.Called(userID, tenantID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenPair), args.Error(1)
}

func (m *MockJWTService) ValidateRefreshToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockJWTService) RefreshExpiry() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

// MockSSEHub mocks the SSE hub
type MockSSEHub struct {
	mock.Mock
}

func (m *MockSSEHub) Register(client *sse.Client) {
	m.Called(client)
}

func (m *MockSSEHub) Unregister(client *sse.Client) {
	m.Called(client)
}

func (m *MockSSEHub) Subscribe(clientID string, userID, collaborationID uuid.UUID) bool {
	args := m.Called(clientID, userID, collaborationID)
	return args.Bool(0)
}

func (m *MockSSEHub) Unsubscribe(clientID string, userID, collaborationID uuid.UUID) {
	m.Called(clientID, userID, collaborationID)
}

func (m *MockSSEHub) Drop(collaborationID, userID uuid.UUID) {
	m.Called(collaborationID, userID)
}

func (m *MockSSEHub) BroadcastTimelineEntry(c *models.Collaboration) {
	m.Called(c)
}

func (m *MockSSEHub) NotifyInvitation(c *models.Collaboration, member *models.Member, invitedBy uuid.UUID) {
	m.Called(c, member, invitedBy)
}

// MockEmailService mocks the EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) IsConfigured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockEmailService) SendCollaborationInvite(to, inviterName, contentTitle, role, inviteURL string) error {
	args := m.Called(to, inviterName, contentTitle, role, inviteURL)
	return args.Error(0)
}

func (m *MockEmailService) SendShareNotification(to, sharerName, contentTitle, shareURL string) error {
	args := m.Called(to, sharerName, contentTitle, shareURL)
	return args.Error(0)
}
