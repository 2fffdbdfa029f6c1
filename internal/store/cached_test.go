package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagen/tvdetection/internal/cache"
	"github.com/voyagen/tvdetection/internal/models"
)

// fakeStore serves channels and programs from memory and counts reads.
// Methods not overridden panic through the nil embedded Store.
type fakeStore struct {
	Store
	channels map[int64]*models.Channel
	programs map[int64]*models.Program
	reads    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		channels: map[int64]*models.Channel{
			1: {ID: 1, Name: "KQED", TuningType: models.TuningTypeOTA, TuningDetails: models.TuningDetails{"channel_number": "9.1"}, Status: models.ChannelStatusUnknown},
		},
		programs: map[int64]*models.Program{
			2: {ID: 2, Title: "News at Nine"},
		},
	}
}

func (f *fakeStore) GetChannel(_ context.Context, id int64) (*models.Channel, error) {
	f.reads++
	ch, ok := f.channels[id]
	if !ok {
		return nil, fmt.Errorf("GetChannel %d: %w", id, ErrNotFound)
	}
	cp := *ch
	return &cp, nil
}

func (f *fakeStore) GetChannelByName(_ context.Context, name string) (*models.Channel, error) {
	f.reads++
	for _, ch := range f.channels {
		if ch.Name == name {
			cp := *ch
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("GetChannelByName %q: %w", name, ErrNotFound)
}

func (f *fakeStore) UpdateChannel(_ context.Context, id int64, fields ChannelUpdate) (*models.Channel, error) {
	ch, ok := f.channels[id]
	if !ok {
		return nil, ErrNotFound
	}
	fields.apply(ch)
	cp := *ch
	return &cp, nil
}

func (f *fakeStore) DeleteChannel(_ context.Context, id int64) error {
	delete(f.channels, id)
	return nil
}

func (f *fakeStore) RecordScan(_ context.Context, scan *models.Scan, status models.ChannelStatus) error {
	f.channels[scan.ChannelID].Status = status
	return nil
}

func (f *fakeStore) GetProgram(_ context.Context, id int64) (*models.Program, error) {
	f.reads++
	pr, ok := f.programs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *pr
	return &cp, nil
}

func (f *fakeStore) UpdateProgram(_ context.Context, p *models.Program) error {
	cp := *p
	f.programs[p.ID] = &cp
	return nil
}

func newTestCachedStore(t *testing.T) (*CachedStore, *fakeStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}), "test:")
	t.Cleanup(func() { _ = r.Close() })
	inner := newFakeStore()
	return NewCachedStore(inner, r, time.Minute, zerolog.Nop()), inner, mr
}

func TestCachedGetChannelServesFromCache(t *testing.T) {
	ctx := context.Background()
	cs, inner, mr := newTestCachedStore(t)

	first, err := cs.GetChannel(ctx, 1)
	require.NoError(t, err)
	second, err := cs.GetChannel(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.reads)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, "9.1", second.TuningDetails["channel_number"])
	assert.True(t, mr.Exists("test:channel:1"))
	assert.Equal(t, time.Minute, mr.TTL("test:channel:1"))
}

func TestCachedGetChannelNotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	cs, _, mr := newTestCachedStore(t)

	_, err := cs.GetChannel(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists("test:channel:404"))
}

func TestCachedUpdateChannelInvalidates(t *testing.T) {
	ctx := context.Background()
	cs, inner, _ := newTestCachedStore(t)

	_, err := cs.GetChannel(ctx, 1)
	require.NoError(t, err)

	_, err = cs.UpdateChannel(ctx, 1, ChannelUpdate{GeoBlocked: ptr(true)})
	require.NoError(t, err)

	ch, err := cs.GetChannel(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ch.GeoBlocked)
	assert.Equal(t, 2, inner.reads)
}

func TestCachedRecordScanInvalidatesChannel(t *testing.T) {
	ctx := context.Background()
	cs, _, mr := newTestCachedStore(t)

	_, err := cs.GetChannel(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, cs.RecordScan(ctx, &models.Scan{ChannelID: 1, Success: true}, models.ChannelStatusWorking))
	assert.False(t, mr.Exists("test:channel:1"))

	ch, err := cs.GetChannel(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.ChannelStatusWorking, ch.Status)
}

func TestCachedGetChannelByNameDropsStaleMapping(t *testing.T) {
	ctx := context.Background()
	cs, inner, _ := newTestCachedStore(t)

	ch, err := cs.GetChannelByName(ctx, "KQED")
	require.NoError(t, err)
	assert.Equal(t, int64(1), ch.ID)

	_, err = cs.GetChannelByName(ctx, "KQED")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.reads, "second lookup is served from cache")

	_, err = cs.UpdateChannel(ctx, 1, ChannelUpdate{Name: ptr("KQED HD")})
	require.NoError(t, err)

	_, err = cs.GetChannelByName(ctx, "KQED")
	assert.ErrorIs(t, err, ErrNotFound, "old name no longer resolves")

	renamed, err := cs.GetChannelByName(ctx, "KQED HD")
	require.NoError(t, err)
	assert.Equal(t, int64(1), renamed.ID)
}

func TestCachedDeleteChannelInvalidates(t *testing.T) {
	ctx := context.Background()
	cs, _, _ := newTestCachedStore(t)

	_, err := cs.GetChannel(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, cs.DeleteChannel(ctx, 1))

	_, err = cs.GetChannel(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachedProgram(t *testing.T) {
	ctx := context.Background()
	cs, inner, _ := newTestCachedStore(t)

	_, err := cs.GetProgram(ctx, 2)
	require.NoError(t, err)
	_, err = cs.GetProgram(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.reads)

	require.NoError(t, cs.UpdateProgram(ctx, &models.Program{ID: 2, Title: "Late News"}))
	pr, err := cs.GetProgram(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Late News", pr.Title)
	assert.Equal(t, 2, inner.reads)
}

func TestCachedPurge(t *testing.T) {
	ctx := context.Background()
	cs, _, mr := newTestCachedStore(t)

	_, err := cs.GetChannelByName(ctx, "KQED")
	require.NoError(t, err)
	_, err = cs.GetProgram(ctx, 2)
	require.NoError(t, err)
	require.NotEmpty(t, mr.Keys())

	require.NoError(t, cs.Purge(ctx))
	assert.Empty(t, mr.Keys())
}

func TestCachedStoreSurvivesRedisOutage(t *testing.T) {
	ctx := context.Background()
	cs, inner, mr := newTestCachedStore(t)
	mr.Close()

	ch, err := cs.GetChannel(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "KQED", ch.Name)

	_, err = cs.UpdateChannel(ctx, 1, ChannelUpdate{GeoBlocked: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.reads)
}
