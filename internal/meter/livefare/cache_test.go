package livefare

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	meterdomain "github.com/transpolabs/transpo/internal/meter/domain"
	ratedomain "github.com/transpolabs/transpo/internal/ratecard/domain"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCache(rdb, time.Minute), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	entry := Entry{
		MeterID:   "meter-1",
		Status:    meterdomain.StatusRunning,
		Fare:      ratedomain.NewBreakdown(ratedomain.CTQDefaults().Day, 2.5, 3),
		UpdatedAt: time.Date(2025, 6, 10, 14, 5, 0, 0, time.UTC),
	}
	require.NoError(t, cache.Publish(ctx, entry))

	got, err := cache.Get(ctx, "meter-1")
	require.NoError(t, err)
	assert.Equal(t, entry.Status, got.Status)
	assert.Equal(t, entry.Fare.TotalBeforeTip, got.Fare.TotalBeforeTip)
}

func TestCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t)
	_, err := cache.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestCacheEvict(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Publish(ctx, Entry{MeterID: "meter-1"}))
	require.NoError(t, cache.Evict(ctx, "meter-1"))

	_, err := cache.Get(ctx, "meter-1")
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestCacheTTL(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Publish(ctx, Entry{MeterID: "meter-1"}))
	mr.FastForward(2 * time.Minute)

	_, err := cache.Get(ctx, "meter-1")
	assert.ErrorIs(t, err, ErrNotCached)
}
