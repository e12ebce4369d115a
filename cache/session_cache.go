// Package cache persists playback session snapshots in Redis so a restart
// (of the server or of the listening client) can pick up where it left off.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"melodex/db"
)

const (
	sessionKeyPrefix = "melodex:session:"
	sessionTTL       = 24 * time.Hour
)

// Session is the durable part of a playback session: which songs were
// queued, where the cursor stood, and the volume. Positions and transient
// URLs are deliberately not saved; tracks are re-resolved on restore.
type Session struct {
	SongIDs []int64 `json:"songIds"`
	Cursor  int     `json:"cursor"`
	Volume  float64 `json:"volume"`
}

// SessionCache stores one Session per user.
type SessionCache struct {
	client *redis.Client
}

// NewSessionCache uses the shared Redis connection.
func NewSessionCache() *SessionCache {
	return &SessionCache{client: db.RedisClient}
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("%s%d", sessionKeyPrefix, userID)
}

// Save writes the user's session snapshot with a sliding 24h TTL.
func (c *SessionCache) Save(ctx context.Context, userID int64, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := c.client.Set(ctx, sessionKey(userID), data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save session for user %d: %w", userID, err)
	}
	return nil
}

// Load returns the user's saved session, or nil if none exists.
func (c *SessionCache) Load(ctx context.Context, userID int64) (*Session, error) {
	data, err := c.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session for user %d: %w", userID, err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session for user %d: %w", userID, err)
	}
	return &s, nil
}

// Clear drops the user's saved session.
func (c *SessionCache) Clear(ctx context.Context, userID int64) error {
	if err := c.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session for user %d: %w", userID, err)
	}
	return nil
}
