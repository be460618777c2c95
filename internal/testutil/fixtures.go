package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/dimitrije/lessonforge-api/internal/database"
	"github.com/dimitrije/lessonforge-api/internal/models"
	"github.com/google/uuid"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db       *database.DB
	TenantID uuid.UUID
	counter  int
}

// NewFixtures creates a fixtures factory bound to a fresh tenant
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db, TenantID: uuid.New()}
}

// CreateUser creates a directory user in the fixture tenant
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		TenantID: f.TenantID,
		Email:    fmt.Sprintf("user%d@example.com", f.counter),
		Name:     fmt.Sprintf("Test User %d", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (tenant_id, email, name, avatar_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, user.TenantID, user.Email, user.Name, user.AvatarURL).Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

// CreateContent creates a content item owned by owner
func (f *Fixtures) CreateContent(t *testing.T, owner *models.User, contentType models.ContentType) *models.ContentItem {
	t.Helper()
	f.counter++

	item := &models.ContentItem{
		TenantID:    f.TenantID,
		ContentType: contentType,
		OwnerID:     owner.ID,
		Title:       fmt.Sprintf("%s %d", contentType, f.counter),
		Data:        json.RawMessage(fmt.Sprintf(`{"slides":%d}`, f.counter)),
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO content_items (tenant_id, content_type, owner_id, title, data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, item.TenantID, string(item.ContentType), item.OwnerID, item.Title, []byte(item.Data)).Scan(
		&item.ID, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create content item: %v", err)
	}

	return item
}
