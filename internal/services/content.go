package services

import (
	"context"
	"errors"

	"github.com/dimitrije/lessonforge-api/internal/database"
	"github.com/dimitrije/lessonforge-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ContentService is the read side of the authored content store. The
// collaboration core only needs ownership and a snapshot to version.
type ContentService struct {
	db *database.DB
}

func NewContentService(db *database.DB) *ContentService {
	return &ContentService{db: db}
}

func (s *ContentService) FindByID(ctx context.Context, tenantID uuid.UUID, contentType models.ContentType, id uuid.UUID) (*models.ContentItem, error) {
	var (
		item  models.ContentItem
		ctype string
		data  []byte
	)
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, tenant_id, content_type, owner_id, title, data, created_at, updated_at
		FROM content_items
		WHERE id = $1 AND tenant_id = $2 AND content_type = $3
	`, id, tenantID, string(contentType)).Scan(
		&item.ID, &item.TenantID, &ctype, &item.OwnerID, &item.Title, &data,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrContentNotFound
	}
	if err != nil {
		return nil, err
	}
	item.ContentType = models.ContentType(ctype)
	item.Data = data
	return &item, nil
}
