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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

const collaborationColumns = `id, tenant_id, content_id, content_type, owner_id, status, document, revision, created_at, updated_at`

// CollaborationService loads and saves the collaboration aggregate as one
// JSONB document. Every save is a compare-and-swap on revision.
type CollaborationService struct {
	db      *database.DB
	content *ContentService
	log     zerolog.Logger
}

func NewCollaborationService(db *database.DB, content *ContentService, log zerolog.Logger) *CollaborationService {
	return &CollaborationService{db: db, content: content, log: log}
}

type NewTask struct {
	Title       string
	Description string
	AssignedTo  uuid.UUID
	Priority    models.TaskPriority
	DueDate     *time.Time
}

// Create starts a collaboration on content owned by actorID and stores it
// together with its first version.
func (s *CollaborationService) Create(ctx context.Context, tenantID, actorID uuid.UUID, contentType models.ContentType, contentID uuid.UUID, changes string) (*models.Collaboration, error) {
	if !contentType.Valid() {
		return nil, models.ErrInvalidContent
	}

	item, err := s.content.FindByID(ctx, tenantID, contentType, contentID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != actorID {
		return nil, models.ErrPermissionDenied
	}

	c := models.NewCollaboration(tenantID, contentID, contentType, actorID)
	if changes == "" {
		changes = "Initial version"
	}
	if _, err := c.CreateVersion(actorID, changes, item.Snapshot()); err != nil {
		return nil, err
	}
	c.Revision = 1

	document, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode collaboration: %w", err)
	}

	_, err = s.db.Pool.Exec(ctx, `
		INSERT INTO collaborations (id, tenant_id, content_id, content_type, owner_id, status, document, revision, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8, $8)
	`, c.ID, tenantID, contentID, string(contentType), actorID, string(c.Status), document, c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, models.ErrCollaborationExists
		}
		return nil, fmt.Errorf("failed to create collaboration: %w", err)
	}

	s.log.Info().
		Str("collaboration_id", c.ID.String()).
		Str("tenant_id", tenantID.String()).
		Str("content_id", contentID.String()).
		Msg("collaboration created")
	return c, nil
}

// GetByID loads a collaboration without checking who is asking.
func (s *CollaborationService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Collaboration, error) {
	row := s.db.Pool.QueryRow(ctx, `
		SELECT `+collaborationColumns+`
		FROM collaborations WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	c, err := scanCollaboration(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrCollaborationNotFound
	}
	return c, err
}

// Get returns the collaboration if actorID is the owner or an accepted member.
func (s *CollaborationService) Get(ctx context.Context, tenantID, id, actorID uuid.UUID) (*models.Collaboration, error) {
	c, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !c.IsParticipant(actorID) {
		return nil, models.ErrPermissionDenied
	}
	return c, nil
}

func (s *CollaborationService) GetByContent(ctx context.Context, tenantID, actorID uuid.UUID, contentType models.ContentType, contentID uuid.UUID) (*models.Collaboration, error) {
	row := s.db.Pool.QueryRow(ctx, `
		SELECT `+collaborationColumns+`
		FROM collaborations WHERE content_id = $1 AND content_type = $2 AND tenant_id = $3
	`, contentID, string(contentType), tenantID)
	c, err := scanCollaboration(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrCollaborationNotFound
	}
	if err != nil {
		return nil, err
	}
	if !c.IsParticipant(actorID) {
		return nil, models.ErrPermissionDenied
	}
	return c, nil
}

// ListForUser returns collaborations userID owns or has accepted, most
// recently updated first.
func (s *CollaborationService) ListForUser(ctx context.Context, tenantID, userID uuid.UUID) ([]models.Collaboration, error) {
	filter, err := memberFilter(userID, models.MemberAccepted)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, `
		SELECT `+collaborationColumns+`
		FROM collaborations
		WHERE tenant_id = $1 AND (owner_id = $2 OR document->'members' @> $3::jsonb)
		ORDER BY updated_at DESC
	`, tenantID, userID, filter)
}

// ListInvitations returns collaborations where userID has an invitation
// waiting for an answer.
func (s *CollaborationService) ListInvitations(ctx context.Context, tenantID, userID uuid.UUID) ([]models.Collaboration, error) {
	filter, err := memberFilter(userID, models.MemberInvited)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, `
		SELECT `+collaborationColumns+`
		FROM collaborations
		WHERE tenant_id = $1 AND document->'members' @> $2::jsonb
		ORDER BY updated_at DESC
	`, tenantID, filter)
}

func (s *CollaborationService) list(ctx context.Context, query string, args ...any) ([]models.Collaboration, error) {
	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	collaborations := []models.Collaboration{}
	for rows.Next() {
		c, err := scanCollaboration(rows)
		if err != nil {
			return nil, err
		}
		collaborations = append(collaborations, *c)
	}
	return collaborations, rows.Err()
}

func (s *CollaborationService) Delete(ctx context.Context, tenantID, id, actorID uuid.UUID) error {
	c, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !c.IsOwner(actorID) {
		return models.ErrPermissionDenied
	}
	if _, err := s.db.Pool.Exec(ctx, `DELETE FROM collaborations WHERE id = $1 AND tenant_id = $2`, id, tenantID); err != nil {
		return err
	}
	s.log.Info().Str("collaboration_id", id.String()).Msg("collaboration deleted")
	return nil
}

func (s *CollaborationService) UpdateSettings(ctx context.Context, tenantID, id, actorID uuid.UUID, update models.SettingsUpdate) (*models.Collaboration, error) {
	return s.mutate(ctx, tenantID, id, func(c *models.Collaboration) error {
		return c.UpdateSettings(actorID, update)
	})
}

func (s *CollaborationService) SetStatus(ctx context.Context, tenantID, id, actorID uuid.UUID, status models.CollaborationStatus) (*models.Collaboration, error) {
	return s.mutate(ctx, tenantID, id, func(c *models.Collaboration) error {
		return c.SetStatus(actorID, status)
	})
}

func (s *CollaborationService) AddMember(ctx context.Context, tenantID, id, actorID, userID uuid.UUID, role models.MemberRole, overrides *models.PermissionOverrides) (*models.Collaboration, *models.Member, error) {
	var member *models.Member
	c, err := s.mutate(ctx, tenantID, id, func(c *models.Collaboration) error {
		m, err := c.AddMember(actorID, userID, role, overrides)
		member = m
		return err
	})
	return c, member, err
}

func (s *CollaborationService) AcceptInvitation(ctx context.Context, tenantID, id, userID uuid.UUID) (*models.Collaboration, error) {
	return s.mutate(ctx, tenantID, id, func(c *models.Collaboration) error {
		return c.AcceptInvitation(userID)
	})
}

func (s *CollaborationService) DeclineInvitation(ctx context.Context, tenantID, id, userID uuid.UUID) (*models.Collaboration, error) {
	return s.mutate(ctx, tenantID, id, func(c *models.Collaboration) error {
		return c.DeclineInvitation(userID)
	})
}

func (s *CollaborationService) RemoveMember(ctx context.Context, tenantID, id, actorID, userID uuid.UUID) (*models.Collaboration, error) {
	return s.mutate(ctx, tenantID, id, func(c *models.Collaboration) error {
		return c.RemoveMember(actorID, userID)
	})
}

func (s *CollaborationService) AddComment(ctx context.Context, tenantID, id, actorID uuid.UUID, text string, position json.RawMessage) (*models.Collaboration, *models.Comment, error) {
	var comment *models.Comment
	c, err := s.mutate(ctx, tenantID, id, func(c *models.Collaboration) error {
		added, err := c.AddComment(actorID, text, position)
		comment = added
		return err
	})
	return c, comment, err
}

// AddReply accepts the comment's id or its list position as commentRef.
func (s *CollaborationService) AddReply(ctx context.Context, tenantID, id, actorID uuid.UUID, commentRef, text string) (*models.Collaboration, *models.Reply, error) {
	var reply *models.Reply
	c, err := s.mutate(ctx, tenantID, id, func(c *models.Collaboration) error {
		commentID, err := c.ResolveCommentRef(commentRef)
		if err != nil {
			return err
		}
		reply, err = c.AddReply(actorID, commentID, text)
		return err
	})
	return c, reply, err
}

func (s *CollaborationService) ResolveComment(ctx context.Context, tenantID, id, actorID uuid.UUID, commentRef string) (*models.Collaboration, *models.Comment, error) {
	var comment *models.Comment
	c, err := s.mutate(ctx, tenantID, id, func(c *models.Collaboration) error {
		commentID, err := c.ResolveCommentRef(commentRef)
		if err != nil {
			return err
		}
		comment, err = c.ResolveComment(actorID, commentID)
		return err
	})
	return c, comment, err
}

func (s *CollaborationService) AddTask(ctx context.Context, tenantID, id, actorID uuid.UUID, task NewTask) (*models.Collaboration, *models.Task, error) {
	var added *models.Task
	c, err := s.mutate(ctx, tenantID, id, func(c *models.Collaboration) error {
		t, err := c.AddTask(actorID, task.Title, task.Description, task.AssignedTo, task.Priority, task.DueDate)
		added = t
		return err
	})
	return c, added, err
}

// UpdateTask accepts the task's id or its list position as taskRef.
func (s *CollaborationService) UpdateTask(ctx context.Context, tenantID, id, actorID uuid.UUID, taskRef string, update models.TaskUpdate) (*models.Collaboration, *models.Task, error) {
	var task *models.Task
	c, err := s.mutate(ctx, tenantID, id, func(c *models.Collaboration) error {
		taskID, err := c.ResolveTaskRef(taskRef)
		if err != nil {
			return err
		}
		task, err = c.UpdateTask(actorID, taskID, update)
		return err
	})
	return c, task, err
}

// CreateVersion snapshots the content item as it is now.
func (s *CollaborationService) CreateVersion(ctx context.Context, tenantID, id, actorID uuid.UUID, changes string) (*models.Collaboration, *models.Version, error) {
	c, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, nil, err
	}
	if !c.HasPermission(actorID, models.PermissionEdit) {
		return nil, nil, models.ErrPermissionDenied
	}

	item, err := s.content.FindByID(ctx, tenantID, c.ContentType, c.ContentID)
	if err != nil {
		return nil, nil, err
	}

	version, err := c.CreateVersion(actorID, changes, item.Snapshot())
	if err != nil {
		return nil, nil, err
	}
	if err := s.save(ctx, c); err != nil {
		return nil, nil, err
	}
	return c, version, nil
}

func (s *CollaborationService) Timeline(ctx context.Context, tenantID, id, actorID uuid.UUID) ([]models.TimelineEntry, error) {
	c, err := s.Get(ctx, tenantID, id, actorID)
	if err != nil {
		return nil, err
	}
	return c.Timeline, nil
}

func (s *CollaborationService) Versions(ctx context.Context, tenantID, id, actorID uuid.UUID) ([]models.Version, error) {
	c, err := s.Get(ctx, tenantID, id, actorID)
	if err != nil {
		return nil, err
	}
	return c.Versions, nil
}

func (s *CollaborationService) GetVersion(ctx context.Context, tenantID, id, actorID uuid.UUID, number int) (*models.Version, error) {
	c, err := s.Get(ctx, tenantID, id, actorID)
	if err != nil {
		return nil, err
	}
	return c.Version(number)
}

// mutate runs fn against a freshly loaded aggregate and saves the result.
// Nothing is written when fn fails.
func (s *CollaborationService) mutate(ctx context.Context, tenantID, id uuid.UUID, fn func(c *models.Collaboration) error) (*models.Collaboration, error) {
	c, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CollaborationService) save(ctx context.Context, c *models.Collaboration) error {
	expected := c.Revision
	c.Touch()
	c.Revision = expected + 1

	document, err := json.Marshal(c)
	if err != nil {
		c.Revision = expected
		return fmt.Errorf("failed to encode collaboration: %w", err)
	}

	var revision int
	err = s.db.Pool.QueryRow(ctx, `
		UPDATE collaborations
		SET document = $1, status = $2, revision = revision + 1, updated_at = $3
		WHERE id = $4 AND tenant_id = $5 AND revision = $6
		RETURNING revision
	`, document, string(c.Status), c.UpdatedAt, c.ID, c.TenantID, expected).Scan(&revision)
	if err != nil {
		c.Revision = expected
		return s.checkRevisionConflict(ctx, c.TenantID, c.ID, expected, err)
	}
	c.Revision = revision

	evt := s.log.Debug().
		Str("collaboration_id", c.ID.String()).
		Int("revision", revision)
	if entry := c.LastEntry(); entry != nil {
		evt = evt.Str("action", entry.Action).Str("actor_id", entry.UserID.String())
	}
	evt.Msg("collaboration saved")
	return nil
}

func (s *CollaborationService) checkRevisionConflict(ctx context.Context, tenantID, id uuid.UUID, expected int, originalErr error) error {
	if !errors.Is(originalErr, pgx.ErrNoRows) {
		return fmt.Errorf("failed to save collaboration: %w", originalErr)
	}
	var current int
	err := s.db.Pool.QueryRow(ctx, `SELECT revision FROM collaborations WHERE id = $1 AND tenant_id = $2`, id, tenantID).Scan(&current)
	if err != nil {
		return models.ErrCollaborationNotFound
	}
	if current != expected {
		s.log.Warn().
			Str("collaboration_id", id.String()).
			Int("expected_revision", expected).
			Int("current_revision", current).
			Msg("revision conflict")
		return &models.RevisionConflictError{Current: current}
	}
	return originalErr
}

func scanCollaboration(row pgx.Row) (*models.Collaboration, error) {
	var (
		id, tenantID, contentID, ownerID uuid.UUID
		contentType, status              string
		document                         []byte
		revision                         int
		createdAt, updatedAt             time.Time
	)
	if err := row.Scan(&id, &tenantID, &contentID, &contentType, &ownerID, &status, &document, &revision, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var c models.Collaboration
	if err := json.Unmarshal(document, &c); err != nil {
		return nil, fmt.Errorf("failed to decode collaboration %s: %w", id, err)
	}
	c.ID = id
	c.TenantID = tenantID
	c.ContentID = contentID
	c.ContentType = models.ContentType(contentType)
	c.OwnerID = ownerID
	c.Status = models.CollaborationStatus(status)
	c.Revision = revision
	c.CreatedAt = createdAt
	c.UpdatedAt = updatedAt
	return &c, nil
}

// memberFilter builds the JSONB containment probe for one member state.
func memberFilter(userID uuid.UUID, status models.MemberStatus) (string, error) {
	probe, err := json.Marshal([]map[string]string{{
		"user_id": userID.String(),
		"status":  string(status),
	}})
	if err != nil {
		return "", err
	}
	return string(probe), nil
}
