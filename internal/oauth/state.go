package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const stateKeyPrefix = "oauth:state:"

// StateStore remembers issued OAuth state values until the callback.
type StateStore interface {
	Save(ctx context.Context, state string) error
	Consume(ctx context.Context, state string) (bool, error)
}

type RedisStateStore struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func NewRedisStateStore(rdb redis.UniversalClient, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{
		rdb: rdb,
		ttl: ttl,
	}
}

func (s *RedisStateStore) Save(ctx context.Context, state string) error {
	if err := s.rdb.Set(ctx, stateKeyPrefix+state, 1, s.ttl).Err(); err != nil {
		return fmt.Errorf("save oauth state failed: %w", err)
	}

	return nil
}

// Consume reports whether state was issued and not used yet. A state can
// be consumed once.
func (s *RedisStateStore) Consume(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}

	_, err := s.rdb.GetDel(ctx, stateKeyPrefix+state).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("consume oauth state failed: %w", err)
	}

	return true, nil
}

func NewState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate oauth state failed: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
