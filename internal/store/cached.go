package store

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/voyagen/tvdetection/internal/cache"
	"github.com/voyagen/tvdetection/internal/models"
)

// DefaultCacheTTL is used when NewCachedStore gets a non-positive ttl.
const DefaultCacheTTL = 5 * time.Minute

// CachedStore wraps a Store with a Redis caching layer.
// Channel and program lookups are served from cache when possible;
// writes invalidate the affected keys. Cache failures never fail a call.
type CachedStore struct {
	inner Store
	cache *cache.Redis
	ttl   time.Duration
	log   zerolog.Logger
}

var _ Store = (*CachedStore)(nil)

// NewCachedStore creates a CachedStore that wraps inner with Redis caching.
func NewCachedStore(inner Store, c *cache.Redis, ttl time.Duration, log zerolog.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedStore{inner: inner, cache: c, ttl: ttl, log: log.With().Str("component", "cache").Logger()}
}

func channelKey(id int64) string { return fmt.Sprintf("channel:%d", id) }

// channelNameKey maps a name to a channel id. Names are hashed so any
// characters are safe in the key.
func channelNameKey(name string) string {
	h := sha256.Sum256([]byte(name))
	return fmt.Sprintf("channel:name:%x", h[:8])
}

func programKey(id int64) string { return fmt.Sprintf("program:%d", id) }

// --- cached read operations ---

func (c *CachedStore) GetChannel(ctx context.Context, id int64) (*models.Channel, error) {
	key := channelKey(id)
	if v, err := cache.Get[models.Channel](ctx, c.cache, key); err == nil {
		return &v, nil
	}
	ch, err := c.inner.GetChannel(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, ch)
	return ch, nil
}

// GetChannelByName resolves the name through a cached id. A mapping left
// behind by a rename or delete is dropped and the lookup goes to the store.
func (c *CachedStore) GetChannelByName(ctx context.Context, name string) (*models.Channel, error) {
	key := channelNameKey(name)
	if id, err := cache.Get[int64](ctx, c.cache, key); err == nil {
		ch, err := c.GetChannel(ctx, id)
		if err == nil && ch.Name == name {
			return ch, nil
		}
		c.invalidate(ctx, key)
	}
	ch, err := c.inner.GetChannelByName(ctx, name)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, ch.ID)
	c.set(ctx, channelKey(ch.ID), ch)
	return ch, nil
}

func (c *CachedStore) GetProgram(ctx context.Context, id int64) (*models.Program, error) {
	key := programKey(id)
	if v, err := cache.Get[models.Program](ctx, c.cache, key); err == nil {
		return &v, nil
	}
	pr, err := c.inner.GetProgram(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, pr)
	return pr, nil
}

// --- write operations with cache invalidation ---

func (c *CachedStore) CreateChannel(ctx context.Context, ch *models.Channel) error {
	if err := c.inner.CreateChannel(ctx, ch); err != nil {
		return err
	}
	c.invalidate(ctx, channelNameKey(ch.Name))
	return nil
}

func (c *CachedStore) UpdateChannel(ctx context.Context, id int64, fields ChannelUpdate) (*models.Channel, error) {
	ch, err := c.inner.UpdateChannel(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, channelKey(id))
	return ch, nil
}

func (c *CachedStore) DeleteChannel(ctx context.Context, id int64) error {
	if err := c.inner.DeleteChannel(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, channelKey(id))
	return nil
}

func (c *CachedStore) RecordScan(ctx context.Context, scan *models.Scan, status models.ChannelStatus) error {
	if err := c.inner.RecordScan(ctx, scan, status); err != nil {
		return err
	}
	c.invalidate(ctx, channelKey(scan.ChannelID))
	return nil
}

func (c *CachedStore) UpdateProgram(ctx context.Context, p *models.Program) error {
	if err := c.inner.UpdateProgram(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, programKey(p.ID))
	return nil
}

func (c *CachedStore) DeleteProgram(ctx context.Context, id int64) error {
	if err := c.inner.DeleteProgram(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, programKey(id))
	return nil
}

// --- passthrough (no caching) ---

func (c *CachedStore) CreateProgram(ctx context.Context, p *models.Program) error {
	return c.inner.CreateProgram(ctx, p)
}

func (c *CachedStore) CreateSchedule(ctx context.Context, s *models.Schedule) error {
	return c.inner.CreateSchedule(ctx, s)
}

func (c *CachedStore) GetSchedule(ctx context.Context, id int64) (*models.Schedule, error) {
	return c.inner.GetSchedule(ctx, id)
}

func (c *CachedStore) ListSchedules(ctx context.Context, channelID int64, from, to time.Time) ([]models.Schedule, error) {
	return c.inner.ListSchedules(ctx, channelID, from, to)
}

func (c *CachedStore) UpdateSchedule(ctx context.Context, s *models.Schedule) error {
	return c.inner.UpdateSchedule(ctx, s)
}

func (c *CachedStore) DeleteSchedule(ctx context.Context, id int64) error {
	return c.inner.DeleteSchedule(ctx, id)
}

func (c *CachedStore) CreateRecording(ctx context.Context, r *models.Recording) error {
	return c.inner.CreateRecording(ctx, r)
}

func (c *CachedStore) GetRecording(ctx context.Context, id int64) (*models.Recording, error) {
	return c.inner.GetRecording(ctx, id)
}

func (c *CachedStore) GetRecordingBySchedule(ctx context.Context, scheduleID int64) (*models.Recording, error) {
	return c.inner.GetRecordingBySchedule(ctx, scheduleID)
}

func (c *CachedStore) TransitionRecording(ctx context.Context, id int64, t models.RecordingTransition) (*models.Recording, error) {
	return c.inner.TransitionRecording(ctx, id, t)
}

func (c *CachedStore) ListScans(ctx context.Context, channelID int64, limit int) ([]models.Scan, error) {
	return c.inner.ListScans(ctx, channelID, limit)
}

// Purge drops every cached channel and program, e.g. after a schema rollback.
func (c *CachedStore) Purge(ctx context.Context) error {
	for _, pattern := range []string{"channel:*", "program:*"} {
		if err := cache.DelPattern(ctx, c.cache, pattern); err != nil {
			return err
		}
	}
	return nil
}

// --- helpers ---

func (c *CachedStore) set(ctx context.Context, key string, v any) {
	if err := cache.Set(ctx, c.cache, key, v, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// invalidate deletes exact cache keys, logging any errors.
func (c *CachedStore) invalidate(ctx context.Context, keys ...string) {
	if err := cache.Del(ctx, c.cache, keys...); err != nil {
		c.log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidate failed")
	}
}
