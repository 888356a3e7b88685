package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const presenceKeyPrefix = "wegap:presence:"

// Presence mirrors websocket liveness into redis so other services can
// answer "is this user reachable right now" without asking the gateway.
// Keys carry a TTL and are renewed by the gateway heartbeat; a crashed
// node leaks nothing past the TTL.
type Presence struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPresence(rdb *redis.Client, ttl time.Duration) *Presence {
	if ttl <= 0 {
		ttl = 90 * time.Second
	}
	return &Presence{rdb: rdb, ttl: ttl}
}

func presenceKey(userID string) string {
	return presenceKeyPrefix + userID
}

// Online marks the user as reachable through the given gateway node.
func (p *Presence) Online(ctx context.Context, userID, nodeID string) error {
	err := p.rdb.Set(ctx, presenceKey(userID), nodeID, p.ttl).Err()
	return errors.Wrap(err, "presence online")
}

// Renew extends the TTL without touching the value.
func (p *Presence) Renew(ctx context.Context, userID string) error {
	err := p.rdb.Expire(ctx, presenceKey(userID), p.ttl).Err()
	return errors.Wrap(err, "presence renew")
}

// Offline removes the presence record.
func (p *Presence) Offline(ctx context.Context, userID string) error {
	err := p.rdb.Del(ctx, presenceKey(userID)).Err()
	return errors.Wrap(err, "presence offline")
}

// Lookup returns the node id serving the user, or "" if offline.
func (p *Presence) Lookup(ctx context.Context, userID string) (string, error) {
	v, err := p.rdb.Get(ctx, presenceKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, errors.Wrap(err, "presence lookup")
}
