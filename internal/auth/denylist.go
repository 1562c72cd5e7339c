package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records revoked token identifiers until the token would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// DefaultDenylistPrefix namespaces denylist keys in Redis.
const DefaultDenylistPrefix = "taskmanager:revoked:"

// RedisDenylist stores revoked token ids as Redis keys with a TTL equal to
// the token's remaining lifetime.
type RedisDenylist struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisDenylist creates a RedisDenylist. An empty prefix uses DefaultDenylistPrefix.
func NewRedisDenylist(client *redis.Client, prefix string) *RedisDenylist {
	if prefix == "" {
		prefix = DefaultDenylistPrefix
	}
	return &RedisDenylist{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

// Revoke stores tokenID until expiresAt. Already expired tokens are skipped.
func (d *RedisDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, d.prefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("denylist set error: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID is currently denylisted.
func (d *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.prefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("denylist exists error: %w", err)
	}
	return n > 0, nil
}

// Ping checks the Redis connection.
func (d *RedisDenylist) Ping(ctx context.Context) error {
	return d.client.Ping(ctx).Err()
}

// MemoryDenylist is a process-local Denylist. Entries are dropped once their
// expiry passes, either lazily on lookup or by Sweep.
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryDenylist creates an empty MemoryDenylist.
func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke records tokenID until expiresAt.
func (d *MemoryDenylist) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !expiresAt.After(d.now()) {
		return nil
	}
	d.entries[tokenID] = expiresAt
	return nil
}

// IsRevoked reports whether tokenID is denylisted and not yet expired.
func (d *MemoryDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	expiresAt, ok := d.entries[tokenID]
	if !ok {
		return false, nil
	}
	if !expiresAt.After(d.now()) {
		delete(d.entries, tokenID)
		return false, nil
	}
	return true, nil
}

// Sweep removes expired entries and returns how many were removed.
func (d *MemoryDenylist) Sweep() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	removed := 0
	for id, expiresAt := range d.entries {
		if !expiresAt.After(now) {
			delete(d.entries, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (d *MemoryDenylist) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := d.Sweep(); removed > 0 {
				slog.DebugContext(ctx, "swept token denylist", "removed", removed, "remaining", d.Len())
			}
		}
	}
}

// Len returns the number of tracked entries, including expired ones not yet swept.
func (d *MemoryDenylist) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}
