package upgrade

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Key layout, one slot per merchant
const (
	intentKeyPrefix  = "plan-intent:"
	sessionKeyPrefix = "checkout:"
	lockKeyPrefix    = "checkout-lock:"
)

// releaseScript deletes the lock only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore is a Store shared by every API instance
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore on client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// PutIntent implements Store
func (s *RedisStore) PutIntent(ctx context.Context, merchantID string, intent Intent, ttl time.Duration) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to encode intent: %w", err)
	}
	if err := s.client.Set(ctx, intentKeyPrefix+merchantID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store intent: %w", err)
	}
	return nil
}

// TakeIntent implements Store
func (s *RedisStore) TakeIntent(ctx context.Context, merchantID string) (Intent, bool, error) {
	data, err := s.client.GetDel(ctx, intentKeyPrefix+merchantID).Bytes()
	if errors.Is(err, redis.Nil) {
		return Intent{}, false, nil
	}
	if err != nil {
		return Intent{}, false, fmt.Errorf("failed to read intent: %w", err)
	}

	var intent Intent
	if err := json.Unmarshal(data, &intent); err != nil {
		return Intent{}, false, fmt.Errorf("%w: %v", errCorruptIntent, err)
	}
	return intent, true, nil
}

// GetSession implements Store
func (s *RedisStore) GetSession(ctx context.Context, merchantID string) (*Session, bool, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+merchantID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, false, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, true, nil
}

// PutSession implements Store
func (s *RedisStore) PutSession(ctx context.Context, session *Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.MerchantID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// DeleteSession implements Store
func (s *RedisStore) DeleteSession(ctx context.Context, merchantID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+merchantID).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Lock implements Store
func (s *RedisStore) Lock(ctx context.Context, merchantID string, ttl time.Duration) (func(), error) {
	key := lockKeyPrefix + merchantID
	token := uuid.NewString()

	ok, err := s.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire checkout lock: %w", err)
	}
	if !ok {
		return nil, ErrInFlight
	}

	return func() {
		// The caller's context may already be done
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, s.client, []string{key}, token).Err()
	}, nil
}
