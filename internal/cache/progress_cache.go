package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/barterly/pos-sync/internal/models"
)

// progressTTL bounds how long a progress snapshot outlives its run. Long
// enough for a dashboard to read the terminal state, short enough that Redis
// never accumulates stale runs.
const progressTTL = 24 * time.Hour

// ProgressCache keeps the latest SyncProgress snapshot per run in Redis so
// that polling clients do not hit PostgreSQL on every request.
type ProgressCache struct {
	redis *RedisClient
}

// NewProgressCache creates a new ProgressCache.
func NewProgressCache(redis *RedisClient) *ProgressCache {
	return &ProgressCache{redis: redis}
}

func (c *ProgressCache) key(progressID string) string {
	return fmt.Sprintf("pos:sync:progress:%s", progressID)
}

// Put stores a snapshot. Serialization failures are returned so the caller
// can log them; cache writes are always best-effort for sync itself.
func (c *ProgressCache) Put(ctx context.Context, p *models.SyncProgress) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal progress snapshot: %w", err)
	}
	return c.redis.Set(ctx, c.key(p.ID), string(raw), progressTTL)
}

// Get returns the cached snapshot for a run, or an error when absent.
func (c *ProgressCache) Get(ctx context.Context, progressID string) (*models.SyncProgress, error) {
	raw, err := c.redis.Get(ctx, c.key(progressID))
	if err != nil {
		return nil, err
	}
	var p models.SyncProgress
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal progress snapshot: %w", err)
	}
	return &p, nil
}
