// Package livefare caches the newest breakdown of each running meter in
// Redis so rider polling never contends with the GPS writer.
package livefare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	meterdomain "github.com/transpolabs/transpo/internal/meter/domain"
	ratedomain "github.com/transpolabs/transpo/internal/ratecard/domain"
)

var ErrNotCached = errors.New("live_fare_not_cached")

const keyPrefix = "transpo:meter:live:"

type Entry struct {
	MeterID   string                   `json:"meter_id"`
	Status    meterdomain.Status       `json:"status"`
	Fare      ratedomain.FareBreakdown `json:"fare"`
	UpdatedAt time.Time                `json:"updated_at"`
}

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

func (c *Cache) Publish(ctx context.Context, e Entry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyPrefix+e.MeterID, payload, c.ttl).Err()
}

func (c *Cache) Get(ctx context.Context, meterID string) (Entry, error) {
	raw, err := c.rdb.Get(ctx, keyPrefix+meterID).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrNotCached
	}
	if err != nil {
		return Entry{}, fmt.Errorf("live fare lookup: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (c *Cache) Evict(ctx context.Context, meterID string) error {
	return c.rdb.Del(ctx, keyPrefix+meterID).Err()
}
