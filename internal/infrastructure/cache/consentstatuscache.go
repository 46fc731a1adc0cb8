// Package cache provides the optional Redis read-through cache for resolved
// consent statuses. The ledger itself is always the source of truth; a cache
// miss or a Redis outage degrades to a database read, never to a wrong
// answer.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"pharos/internal/domain/consent"
)

const (
	consentStatusPrefix = "consent:status:"
	consentStatusTTL    = 5 * time.Minute
)

// ConsentStatusCache stores resolved (subject, channel) statuses. A nil
// *ConsentStatusCache is valid and behaves as a disabled cache, so callers
// never branch on configuration.
type ConsentStatusCache struct {
	client *redis.Client
}

func NewConsentStatusCache(client *redis.Client) *ConsentStatusCache {
	if client == nil {
		return nil
	}
	return &ConsentStatusCache{client: client}
}

func consentStatusKey(subjectID uint, channel consent.Channel) string {
	return consentStatusPrefix + strconv.FormatUint(uint64(subjectID), 10) + ":" + channel.String()
}

// Get returns the cached status and whether the cache held one. Expired
// statuses are never cached, so a hit is always current.
func (c *ConsentStatusCache) Get(ctx context.Context, subjectID uint, channel consent.Channel) (consent.Status, bool) {
	if c == nil {
		return consent.StatusNone, false
	}

	val, err := c.client.Get(ctx, consentStatusKey(subjectID, channel)).Result()
	if err != nil {
		return consent.StatusNone, false
	}

	status := consent.Status(val)
	if status != consent.StatusNone && !status.IsValid() {
		return consent.StatusNone, false
	}
	return status, true
}

// Set stores a resolved status. Statuses with a pending expiry are skipped:
// the TTL cannot observe the expiry boundary, and serving a stale granted
// past it would defeat the gate.
func (c *ConsentStatusCache) Set(ctx context.Context, subjectID uint, channel consent.Channel, status consent.Status, expiresAt *time.Time) error {
	if c == nil {
		return nil
	}
	if expiresAt != nil && time.Until(*expiresAt) < consentStatusTTL {
		return nil
	}

	key := consentStatusKey(subjectID, channel)
	if err := c.client.Set(ctx, key, status.String(), consentStatusTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache consent status: %w", err)
	}
	return nil
}

// Invalidate drops the cached status for one (subject, channel) pair. Called
// whenever a new consent record is appended.
func (c *ConsentStatusCache) Invalidate(ctx context.Context, subjectID uint, channel consent.Channel) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, consentStatusKey(subjectID, channel)).Err()
}

// InvalidateSubject drops every channel's cached status for a subject. Used
// by the erasure engine after anonymization.
func (c *ConsentStatusCache) InvalidateSubject(ctx context.Context, subjectID uint) error {
	if c == nil {
		return nil
	}

	keys := make([]string, 0, len(consent.Channels()))
	for _, channel := range consent.Channels() {
		keys = append(keys, consentStatusKey(subjectID, channel))
	}
	return c.client.Del(ctx, keys...).Err()
}
