package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const shareTokenPrefix = "lessonforge:share:token:"

// ShareTokens maps public share tokens to share ids so link hits skip the
// unique-index lookup.
type ShareTokens struct {
	client *redis.Client
	ttl    time.Duration
}

func NewShareTokens(client *redis.Client, ttl time.Duration) *ShareTokens {
	return &ShareTokens{client: client, ttl: ttl}
}

// Get reports ok=false on a miss.
func (s *ShareTokens) Get(ctx context.Context, token string) (uuid.UUID, bool, error) {
	raw, err := s.client.Get(ctx, shareTokenPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, nil
	}
	return id, true, nil
}

func (s *ShareTokens) Set(ctx context.Context, token string, shareID uuid.UUID) error {
	return s.client.Set(ctx, shareTokenPrefix+token, shareID.String(), s.ttl).Err()
}

func (s *ShareTokens) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, shareTokenPrefix+token).Err()
}

// NopShareTokens is used when no Redis is configured; every lookup misses.
type NopShareTokens struct{}

func (NopShareTokens) Get(context.Context, string) (uuid.UUID, bool, error) {
	return uuid.Nil, false, nil
}

func (NopShareTokens) Set(context.Context, string, uuid.UUID) error { return nil }

func (NopShareTokens) Delete(context.Context, string) error { return nil }
