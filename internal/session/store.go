package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// Exactly one key holds the active session. Earlier iterations of the
// mobile clients wrote two keys for the same timer and they drifted
// apart, hence the single source of truth here.
const activeSessionKey = "workout::active-session"

// Store persists the single active session across restarts.
type Store interface {
	Get(ctx context.Context) (*Session, error)
	Set(ctx context.Context, s Session) error
	Remove(ctx context.Context) error
}

type RedisStore struct {
	redisClient *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{
		redisClient: redisClient,
	}
}

// Get returns the persisted session, or nil when none is stored.
func (rs *RedisStore) Get(ctx context.Context) (*Session, error) {
	cmd := rs.redisClient.Get(ctx, activeSessionKey)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active session: %w", err)
	}

	var s Session
	if err := json.Unmarshal([]byte(cmd.Val()), &s); err != nil {
		return nil, fmt.Errorf("unmarshal active session: %w", err)
	}
	return &s, nil
}

func (rs *RedisStore) Set(ctx context.Context, s Session) error {
	sessionJson, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal active session: %w", err)
	}
	// no TTL, the session lives until committed or discarded
	if err := rs.redisClient.Set(ctx, activeSessionKey, sessionJson, 0).Err(); err != nil {
		return fmt.Errorf("set active session: %w", err)
	}
	return nil
}

func (rs *RedisStore) Remove(ctx context.Context) error {
	if err := rs.redisClient.Del(ctx, activeSessionKey).Err(); err != nil {
		return fmt.Errorf("remove active session: %w", err)
	}
	return nil
}
