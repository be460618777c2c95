package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/lessonforge-api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrRefreshTokenRevoked = errors.New("refresh token revoked or expired")

// TokenService tracks issued refresh tokens so they can be rotated and
// revoked. Only SHA-256 hashes are stored.
type TokenService struct {
	db *database.DB
}

func NewTokenService(db *database.DB) *TokenService {
	return &TokenService{db: db}
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *TokenService) Store(ctx context.Context, userID uuid.UUID, refreshToken string, expiresAt time.Time) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, HashToken(refreshToken), expiresAt)
	return err
}

// Rotate swaps a live refresh token for its successor. The old token is
// consumed even if it was already used once, so replays fail.
func (s *TokenService) Rotate(ctx context.Context, userID uuid.UUID, oldToken, newToken string, expiresAt time.Time) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var owner uuid.UUID
	err = tx.QueryRow(ctx, `
		DELETE FROM refresh_tokens
		WHERE token_hash = $1 AND expires_at > NOW()
		RETURNING user_id
	`, HashToken(oldToken)).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRefreshTokenRevoked
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrRefreshTokenRevoked
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, HashToken(newToken), expiresAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, HashToken(refreshToken))
	return err
}

func (s *TokenService) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}

func (s *TokenService) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
