package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ReferenceRegistry implements ports.ReferenceRegistry using Redis SET NX.
type ReferenceRegistry struct {
	client *goredis.Client
	prefix string
}

// NewReferenceRegistry creates a new Redis-backed reference registry.
func NewReferenceRegistry(client *goredis.Client) *ReferenceRegistry {
	return &ReferenceRegistry{
		client: client,
		prefix: keyPrefix + "txnref:",
	}
}

// Reserve atomically claims ref for ttl.
// Returns true if the reference was free, false if another writer holds it.
func (r *ReferenceRegistry) Reserve(ctx context.Context, ref string, ttl time.Duration) (bool, error) {
	result, err := r.client.SetArgs(ctx, r.prefix+ref, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis reserve reference: %w", err)
	}
	return result == "OK", nil
}
