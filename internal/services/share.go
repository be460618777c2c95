package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/lessonforge-api/internal/database"
	"github.com/dimitrije/lessonforge-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const shareColumns = `id, tenant_id, content_id, content_type, shared_by, share_type, recipients, permissions, settings,
	password_hash, expires_at, comments, comment_count, views, unique_views, downloads, last_accessed,
	is_active, share_token, created_at, updated_at`

// ShareTokenCache remembers which share a public token points at.
type ShareTokenCache interface {
	Get(ctx context.Context, token string) (uuid.UUID, bool, error)
	Set(ctx context.Context, token string, shareID uuid.UUID) error
	Delete(ctx context.Context, token string) error
}

type ShareService struct {
	db      *database.DB
	content *ContentService
	tokens  ShareTokenCache
	log     zerolog.Logger
}

func NewShareService(db *database.DB, content *ContentService, tokens ShareTokenCache, log zerolog.Logger) *ShareService {
	return &ShareService{db: db, content: content, tokens: tokens, log: log}
}

type NewShare struct {
	ContentType    models.ContentType
	ContentID      uuid.UUID
	ShareType      models.ShareType
	Recipients     []string
	Permissions    *models.SharePermissions
	RequireLogin   bool
	ExpirationDate *time.Time
	AllowComments  *bool
	ShowAnalytics  bool
	Password       string
}

// ShareUpdate leaves nil fields untouched. An empty Password removes the
// password; ClearExpiration removes the expiration date.
type ShareUpdate struct {
	Recipients      []string
	Permissions     *models.SharePermissions
	RequireLogin    *bool
	ExpirationDate  *time.Time
	ClearExpiration bool
	AllowComments   *bool
	ShowAnalytics   *bool
	Password        *string
	IsActive        *bool
}

// Create shares a content item owned by actorID. Link shares get their
// public token here.
func (s *ShareService) Create(ctx context.Context, tenantID, actorID uuid.UUID, in NewShare) (*models.Share, error) {
	if !in.ContentType.Valid() {
		return nil, models.ErrInvalidContent
	}
	item, err := s.content.FindByID(ctx, tenantID, in.ContentType, in.ContentID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != actorID {
		return nil, models.ErrPermissionDenied
	}

	share, err := models.NewShare(tenantID, in.ContentID, in.ContentType, actorID, in.ShareType, in.Recipients)
	if err != nil {
		return nil, err
	}
	if in.Permissions != nil {
		share.Permissions = *in.Permissions
	}
	share.Settings.RequireLogin = in.RequireLogin
	share.Settings.ExpirationDate = in.ExpirationDate
	share.Settings.ShowAnalytics = in.ShowAnalytics
	if in.AllowComments != nil {
		share.Settings.AllowComments = *in.AllowComments
	}
	if err := share.SetPassword(in.Password); err != nil {
		return nil, fmt.Errorf("failed to hash share password: %w", err)
	}
	if err := share.EnsureToken(); err != nil {
		return nil, fmt.Errorf("failed to generate share token: %w", err)
	}

	recipients, permissions, settings, err := encodeShare(share)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Pool.Exec(ctx, `
		INSERT INTO shares (id, tenant_id, content_id, content_type, shared_by, share_type, recipients, permissions, settings,
			password_hash, expires_at, comments, is_active, share_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, '[]', TRUE, $12, $13, $13)
	`, share.ID, tenantID, in.ContentID, string(in.ContentType), actorID, string(share.ShareType),
		recipients, permissions, settings, nullableString(share.Settings.PasswordHash),
		share.Settings.ExpirationDate, share.ShareToken, share.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create share: %w", err)
	}

	s.log.Info().
		Str("share_id", share.ID.String()).
		Str("share_type", string(share.ShareType)).
		Str("content_id", in.ContentID.String()).
		Msg("share created")
	return share, nil
}

// Get returns a share with its statistics to the user who created it.
func (s *ShareService) Get(ctx context.Context, tenantID, id, actorID uuid.UUID) (*models.Share, error) {
	share, err := s.GetForViewer(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if share.SharedBy != actorID {
		return nil, models.ErrPermissionDenied
	}
	return share, nil
}

// GetForViewer loads a share for an authenticated viewer inside the tenant.
// Access rules are applied by the viewer operations.
func (s *ShareService) GetForViewer(ctx context.Context, tenantID, id uuid.UUID) (*models.Share, error) {
	row := s.db.Pool.QueryRow(ctx, `SELECT `+shareColumns+` FROM shares WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	share, err := scanShare(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrShareNotFound
	}
	return share, err
}

// ByToken resolves a public link token, consulting the token cache first.
func (s *ShareService) ByToken(ctx context.Context, token string) (*models.Share, error) {
	if id, ok, err := s.tokens.Get(ctx, token); err != nil {
		s.log.Warn().Err(err).Msg("share token cache lookup failed")
	} else if ok {
		row := s.db.Pool.QueryRow(ctx, `SELECT `+shareColumns+` FROM shares WHERE id = $1`, id)
		share, err := scanShare(row)
		if err == nil && share.ShareToken != nil && *share.ShareToken == token {
			return share, nil
		}
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		_ = s.tokens.Delete(ctx, token)
	}

	row := s.db.Pool.QueryRow(ctx, `SELECT `+shareColumns+` FROM shares WHERE share_token = $1`, token)
	share, err := scanShare(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrShareNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Set(ctx, token, share.ID); err != nil {
		s.log.Warn().Err(err).Msg("share token cache write failed")
	}
	return share, nil
}

// ListByContent lists every share of a content item for its owner.
func (s *ShareService) ListByContent(ctx context.Context, tenantID, actorID uuid.UUID, contentType models.ContentType, contentID uuid.UUID) ([]models.Share, error) {
	item, err := s.content.FindByID(ctx, tenantID, contentType, contentID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != actorID {
		return nil, models.ErrPermissionDenied
	}
	return s.list(ctx, `
		SELECT `+shareColumns+`
		FROM shares WHERE tenant_id = $1 AND content_id = $2 AND content_type = $3
		ORDER BY created_at DESC
	`, tenantID, contentID, string(contentType))
}

func (s *ShareService) ListMine(ctx context.Context, tenantID, actorID uuid.UUID) ([]models.Share, error) {
	return s.list(ctx, `
		SELECT `+shareColumns+`
		FROM shares WHERE tenant_id = $1 AND shared_by = $2
		ORDER BY created_at DESC
	`, tenantID, actorID)
}

func (s *ShareService) list(ctx context.Context, query string, args ...any) ([]models.Share, error) {
	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shares := []models.Share{}
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, *share)
	}
	return shares, rows.Err()
}

func (s *ShareService) Update(ctx context.Context, tenantID, id, actorID uuid.UUID, update ShareUpdate) (*models.Share, error) {
	share, err := s.Get(ctx, tenantID, id, actorID)
	if err != nil {
		return nil, err
	}

	if update.Recipients != nil {
		share.Recipients = update.Recipients
	}
	if update.Permissions != nil {
		share.Permissions = *update.Permissions
	}
	if update.RequireLogin != nil {
		share.Settings.RequireLogin = *update.RequireLogin
	}
	if update.ClearExpiration {
		share.Settings.ExpirationDate = nil
	} else if update.ExpirationDate != nil {
		share.Settings.ExpirationDate = update.ExpirationDate
	}
	if update.AllowComments != nil {
		share.Settings.AllowComments = *update.AllowComments
	}
	if update.ShowAnalytics != nil {
		share.Settings.ShowAnalytics = *update.ShowAnalytics
	}
	if update.IsActive != nil {
		share.IsActive = *update.IsActive
	}
	if update.Password != nil {
		if err := share.SetPassword(*update.Password); err != nil {
			return nil, fmt.Errorf("failed to hash share password: %w", err)
		}
	}
	share.UpdatedAt = time.Now().UTC()

	recipients, permissions, settings, err := encodeShare(share)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Pool.Exec(ctx, `
		UPDATE shares
		SET recipients = $1, permissions = $2, settings = $3, password_hash = $4, expires_at = $5,
			is_active = $6, updated_at = $7
		WHERE id = $8 AND tenant_id = $9
	`, recipients, permissions, settings, nullableString(share.Settings.PasswordHash),
		share.Settings.ExpirationDate, share.IsActive, share.UpdatedAt, share.ID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to update share: %w", err)
	}
	return share, nil
}

func (s *ShareService) Delete(ctx context.Context, tenantID, id, actorID uuid.UUID) error {
	share, err := s.Get(ctx, tenantID, id, actorID)
	if err != nil {
		return err
	}
	if _, err := s.db.Pool.Exec(ctx, `DELETE FROM shares WHERE id = $1 AND tenant_id = $2`, id, tenantID); err != nil {
		return err
	}
	if share.ShareToken != nil {
		if err := s.tokens.Delete(ctx, *share.ShareToken); err != nil {
			s.log.Warn().Err(err).Str("share_id", id.String()).Msg("share token cache eviction failed")
		}
	}
	return nil
}

// Access lets a viewer open a share: it checks the access rules, counts the
// view and returns the shared content.
func (s *ShareService) Access(ctx context.Context, share *models.Share, userID *uuid.UUID, password string) (*models.ContentItem, error) {
	if err := authorizeShare(share, userID, password, models.ShareCanView); err != nil {
		return nil, err
	}

	share.RecordView(userID)
	unique := 0
	if userID != nil {
		unique = 1
	}
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE shares
		SET views = views + 1, unique_views = unique_views + $2, last_accessed = $3
		WHERE id = $1
		RETURNING views, unique_views
	`, share.ID, unique, share.Statistics.LastAccessed).Scan(&share.Statistics.Views, &share.Statistics.UniqueViews)
	if err != nil {
		return nil, fmt.Errorf("failed to record share view: %w", err)
	}

	return s.content.FindByID(ctx, share.TenantID, share.ContentType, share.ContentID)
}

func (s *ShareService) RecordDownload(ctx context.Context, share *models.Share, userID *uuid.UUID, password string) error {
	if err := authorizeShare(share, userID, password, models.ShareCanDownload); err != nil {
		return err
	}
	share.RecordDownload()
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE shares SET downloads = downloads + 1 WHERE id = $1 RETURNING downloads
	`, share.ID).Scan(&share.Statistics.Downloads)
	if err != nil {
		return fmt.Errorf("failed to record share download: %w", err)
	}
	return nil
}

// AddComment requires a signed-in viewer.
func (s *ShareService) AddComment(ctx context.Context, share *models.Share, userID *uuid.UUID, password, text string) (*models.ShareComment, error) {
	if userID == nil {
		return nil, models.ErrLoginRequired
	}
	if err := authorizeShare(share, userID, password, models.ShareCanView); err != nil {
		return nil, err
	}
	var comment *models.ShareComment
	err := s.discuss(ctx, share, func(sh *models.Share) error {
		added, err := sh.AddComment(*userID, text)
		comment = added
		return err
	})
	return comment, err
}

func (s *ShareService) AddReply(ctx context.Context, share *models.Share, userID *uuid.UUID, password, commentRef, text string) (*models.Reply, error) {
	if userID == nil {
		return nil, models.ErrLoginRequired
	}
	if err := authorizeShare(share, userID, password, models.ShareCanView); err != nil {
		return nil, err
	}
	var reply *models.Reply
	err := s.discuss(ctx, share, func(sh *models.Share) error {
		commentID, err := sh.ResolveCommentRef(commentRef)
		if err != nil {
			return err
		}
		reply, err = sh.AddReply(commentID, *userID, text)
		return err
	})
	return reply, err
}

// DeactivateExpired switches off every active share past its expiration
// date and reports how many were changed.
func (s *ShareService) DeactivateExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE shares SET is_active = FALSE, updated_at = NOW()
		WHERE is_active AND expires_at IS NOT NULL AND expires_at < NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired shares: %w", err)
	}
	s.log.Info().Int64("count", tag.RowsAffected()).Msg("expired shares deactivated")
	return tag.RowsAffected(), nil
}

// discuss reloads the comment thread under a row lock so concurrent
// comments on one share never overwrite each other.
func (s *ShareService) discuss(ctx context.Context, share *models.Share, fn func(sh *models.Share) error) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var comments []byte
	var count int
	err = tx.QueryRow(ctx, `SELECT comments, comment_count FROM shares WHERE id = $1 FOR UPDATE`, share.ID).Scan(&comments, &count)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrShareNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(comments, &share.Comments); err != nil {
		return fmt.Errorf("failed to decode share comments: %w", err)
	}
	share.Statistics.Comments = count

	if err := fn(share); err != nil {
		return err
	}

	encoded, err := json.Marshal(share.Comments)
	if err != nil {
		return fmt.Errorf("failed to encode share comments: %w", err)
	}
	share.UpdatedAt = time.Now().UTC()
	_, err = tx.Exec(ctx, `
		UPDATE shares SET comments = $1, comment_count = $2, updated_at = $3 WHERE id = $4
	`, encoded, share.Statistics.Comments, share.UpdatedAt, share.ID)
	if err != nil {
		return fmt.Errorf("failed to save share comments: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// authorizeShare applies a share's access rules in a fixed order so callers
// get the most specific reason first.
func authorizeShare(share *models.Share, userID *uuid.UUID, password string, perm models.SharePermission) error {
	if !share.IsActive || share.IsExpired() {
		return models.ErrShareUnavailable
	}
	if share.Settings.RequireLogin && userID == nil {
		return models.ErrLoginRequired
	}
	if !share.CheckPassword(password) {
		return models.ErrWrongPassword
	}
	if !share.HasPermission(perm, userID) {
		return models.ErrPermissionDenied
	}
	return nil
}

func encodeShare(share *models.Share) (recipients, permissions, settings []byte, err error) {
	if recipients, err = json.Marshal(share.Recipients); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode share: %w", err)
	}
	if permissions, err = json.Marshal(share.Permissions); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode share: %w", err)
	}
	if settings, err = json.Marshal(share.Settings); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode share: %w", err)
	}
	return recipients, permissions, settings, nil
}

func scanShare(row pgx.Row) (*models.Share, error) {
	var (
		share                             models.Share
		contentType, shareType            string
		recipients, permissions, settings []byte
		comments                          []byte
		passwordHash                      *string
		expiresAt                         *time.Time
	)
	err := row.Scan(
		&share.ID, &share.TenantID, &share.ContentID, &contentType, &share.SharedBy, &shareType,
		&recipients, &permissions, &settings, &passwordHash, &expiresAt, &comments,
		&share.Statistics.Comments, &share.Statistics.Views, &share.Statistics.UniqueViews,
		&share.Statistics.Downloads, &share.Statistics.LastAccessed,
		&share.IsActive, &share.ShareToken, &share.CreatedAt, &share.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	share.ContentType = models.ContentType(contentType)
	share.ShareType = models.ShareType(shareType)
	if err := json.Unmarshal(recipients, &share.Recipients); err != nil {
		return nil, fmt.Errorf("failed to decode share %s: %w", share.ID, err)
	}
	if err := json.Unmarshal(permissions, &share.Permissions); err != nil {
		return nil, fmt.Errorf("failed to decode share %s: %w", share.ID, err)
	}
	if err := json.Unmarshal(settings, &share.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode share %s: %w", share.ID, err)
	}
	if err := json.Unmarshal(comments, &share.Comments); err != nil {
		return nil, fmt.Errorf("failed to decode share %s: %w", share.ID, err)
	}
	share.Settings.ExpirationDate = expiresAt
	if passwordHash != nil {
		share.Settings.PasswordHash = *passwordHash
	}
	return &share, nil
}
