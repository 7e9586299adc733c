// Package cache keeps the current batch per (rep, date) in redis so the
// queue endpoint serves a stable order without re-ranking, across processes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"speedrun_backend/internal/speedrun/domain"
)

// batchTTL outlives any rep-local day; stale entries expire on their own.
const batchTTL = 48 * time.Hour

// BatchCache stores the day's surfaced batch.
type BatchCache struct {
	client *redis.Client
}

// New creates the cache on an existing redis client.
func New(client *redis.Client) *BatchCache {
	return &BatchCache{client: client}
}

func batchKey(repID uuid.UUID, date string) string {
	return fmt.Sprintf("speedrun:batch:%s:%s", repID, date)
}

// SetBatch replaces the cached batch for the rep and date.
func (c *BatchCache) SetBatch(ctx context.Context, repID uuid.UUID, date string, batch []domain.ScoredContact) error {
	raw, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	if err := c.client.Set(ctx, batchKey(repID, date), raw, batchTTL).Err(); err != nil {
		return fmt.Errorf("cache batch: %w", err)
	}
	return nil
}

// Batch loads the cached batch. The second return is false on a miss.
func (c *BatchCache) Batch(ctx context.Context, repID uuid.UUID, date string) ([]domain.ScoredContact, bool, error) {
	raw, err := c.client.Get(ctx, batchKey(repID, date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cached batch: %w", err)
	}

	var batch []domain.ScoredContact
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, false, fmt.Errorf("decode cached batch: %w", err)
	}
	return batch, true, nil
}

// Drop removes one contact from the cached batch, preserving order.
func (c *BatchCache) Drop(ctx context.Context, repID uuid.UUID, date string, contactID uuid.UUID) error {
	batch, ok, err := c.Batch(ctx, repID, date)
	if err != nil || !ok {
		return err
	}
	out := batch[:0]
	for _, sc := range batch {
		if sc.ID != contactID {
			out = append(out, sc)
		}
	}
	return c.SetBatch(ctx, repID, date, out)
}

// Invalidate deletes the cached batch.
func (c *BatchCache) Invalidate(ctx context.Context, repID uuid.UUID, date string) error {
	if err := c.client.Del(ctx, batchKey(repID, date)).Err(); err != nil {
		return fmt.Errorf("invalidate batch: %w", err)
	}
	return nil
}
