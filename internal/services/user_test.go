package services

import (
	"context"
	"testing"
	"time"

	"github.com/dimitrije/lessonforge-api/internal/database"
	"github.com/dimitrije/lessonforge-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "tenant_id", "email", "name", "avatar_url", "created_at", "updated_at"}

func setupUserService(t *testing.T) (*UserService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewUserService(db), mock
}

func TestUserService_Create(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	tenantID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows(userColumns).
		AddRow(userID, tenantID, "ana@example.com", "Ana", (*string)(nil), now, now)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(tenantID, "ana@example.com", "Ana", (*string)(nil)).
		WillReturnRows(rows)

	user, err := svc.Create(ctx, tenantID, "ana@example.com", "Ana", "")

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, tenantID, user.TenantID)
	assert.Nil(t, user.AvatarURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetByID(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()
	avatar := "https://example.com/a.png"
	now := time.Now()

	rows := pgxmock.NewRows(userColumns).
		AddRow(userID, uuid.New(), "ana@example.com", "Ana", &avatar, now, now)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(userID).
		WillReturnRows(rows)

	user, err := svc.GetByID(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)
	require.NotNil(t, user.AvatarURL)
	assert.Equal(t, avatar, *user.AvatarURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetByID_NotFound(t *testing.T) {
	svc, mock := setupUserService(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByID(context.Background(), userID)

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetByEmail(t *testing.T) {
	svc, mock := setupUserService(t)
	tenantID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows(userColumns).
		AddRow(uuid.New(), tenantID, "ana@example.com", "Ana", (*string)(nil), now, now)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE tenant_id = .+ AND email`).
		WithArgs(tenantID, "ana@example.com").
		WillReturnRows(rows)

	user, err := svc.GetByEmail(context.Background(), tenantID, "ana@example.com")

	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetByIDs(t *testing.T) {
	svc, mock := setupUserService(t)
	tenantID := uuid.New()
	ana, ben, ghost := uuid.New(), uuid.New(), uuid.New()
	ids := []uuid.UUID{ana, ben, ghost}
	now := time.Now()

	rows := pgxmock.NewRows(userColumns).
		AddRow(ana, tenantID, "ana@example.com", "Ana", (*string)(nil), now, now).
		AddRow(ben, tenantID, "ben@example.com", "Ben", (*string)(nil), now, now)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE tenant_id = .+ AND id = ANY`).
		WithArgs(tenantID, ids).
		WillReturnRows(rows)

	users, err := svc.GetByIDs(context.Background(), tenantID, ids)

	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "Ben", users[ben].Name)
	_, found := users[ghost]
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetByIDs_Empty(t *testing.T) {
	svc, mock := setupUserService(t)

	users, err := svc.GetByIDs(context.Background(), uuid.New(), nil)

	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}
