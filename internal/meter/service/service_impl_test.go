package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/transpolabs/transpo/internal/clock"
	"github.com/transpolabs/transpo/internal/config"
	"github.com/transpolabs/transpo/internal/maps"
	"github.com/transpolabs/transpo/internal/meter/domain"
	"github.com/transpolabs/transpo/internal/meter/livefare"
	"github.com/transpolabs/transpo/internal/meter/store"
	"github.com/transpolabs/transpo/internal/observability"
	ratedomain "github.com/transpolabs/transpo/internal/ratecard/domain"
	rateservice "github.com/transpolabs/transpo/internal/ratecard/service"
)

type fixture struct {
	svc   domain.Service
	store domain.Store
	db    *gorm.DB
	clock *clock.Manual
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&ratedomain.RateCardVersion{},
		&domain.Trip{},
		&domain.FareSnapshot{},
		&domain.ReceiptRecord{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	manual := clock.NewManual(time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	rates := rateservice.NewService(rateservice.ServiceParam{
		DB: db, Log: log, GenID: node, Clock: manual,
	})

	cfg := config.Config{
		Meter: config.MeterConfig{
			Region:                "quebec",
			CommissionRatePercent: 25,
			StaleSessionAfter:     30 * time.Minute,
			LiveFareTTL:           5 * time.Minute,
		},
	}

	mem := store.NewMemory()
	svc := NewService(ServiceParam{
		DB:      db,
		Log:     log,
		Cfg:     cfg,
		Clock:   manual,
		GenID:   node,
		Store:   mem,
		Rates:   rates,
		Maps:    maps.NewMockProvider(),
		Live:    livefare.NewCache(rdb, cfg.Meter.LiveFareTTL),
		Metrics: observability.NewMetricsWith(prometheus.NewRegistry()),
	})

	return &fixture{svc: svc, store: mem, db: db, clock: manual}
}

func (f *fixture) start(t *testing.T) *domain.StartResponse {
	t.Helper()
	resp, err := f.svc.Start(context.Background(), domain.StartRequest{
		DriverID: "driver-1",
		Lat:      45.5017,
		Lng:      -73.5673,
	})
	require.NoError(t, err)
	return resp
}

// drive advances the clock and sends one fix displaced northward.
func (f *fixture) drive(t *testing.T, meterID string, meters float64, elapsed time.Duration) *domain.UpdateResponse {
	t.Helper()
	f.clock.Advance(elapsed)

	last := f.lastFix(t, meterID)
	resp, err := f.svc.Update(context.Background(), domain.UpdateRequest{
		MeterID:   meterID,
		DriverID:  "driver-1",
		Lat:       last.lat + meters/(6371000*math.Pi/180),
		Lng:       last.lng,
		Timestamp: f.clock.Now(),
	})
	require.NoError(t, err)
	return resp
}

type latlng struct{ lat, lng float64 }

func (f *fixture) lastFix(t *testing.T, meterID string) latlng {
	t.Helper()
	for _, s := range f.store.List() {
		if s.ID().String() == meterID {
			fix := s.LastFix()
			return latlng{fix.Latitude, fix.Longitude}
		}
	}
	t.Fatalf("no session %s", meterID)
	return latlng{}
}

func TestMeterLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	started := f.start(t)
	assert.Equal(t, domain.ModeStreetHail, started.Mode)
	assert.Equal(t, 5.15, started.Fare.TotalBeforeTip)
	assert.NotEmpty(t, started.StartLocation.Formatted)

	var trip domain.Trip
	require.NoError(t, f.db.First(&trip, "id = ?", started.MeterID).Error)
	assert.Equal(t, domain.TripRunning, trip.Status)
	assert.Equal(t, "day", trip.RatePeriod)

	// 1 km at 50 km/h.
	var fare float64
	for i := 0; i < 2; i++ {
		resp := f.drive(t, started.MeterID, 500, 36*time.Second)
		fare = resp.Fare.TotalBeforeTip
	}
	assert.InDelta(t, 5.15+2.05, fare, 0.05)

	f.clock.Advance(time.Minute)
	stopped, err := f.svc.Stop(ctx, domain.StopRequest{
		MeterID:    started.MeterID,
		DriverID:   "driver-1",
		TipPercent: 15,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stopped.Status)
	assert.NotEmpty(t, stopped.ReceiptNumber)
	// The minute of silence before stop billed as waiting.
	assert.InDelta(t, 1.0, stopped.Receipt.WaitingMinutes, 0.05)
	assert.Equal(t, stopped.Receipt.TotalFinal,
		ratedomain.Round2(stopped.Receipt.TotalBeforeTip+stopped.Receipt.TipAmount))

	t.Run("session removed from store", func(t *testing.T) {
		assert.Empty(t, f.store.List())
	})

	t.Run("trip and receipt persisted", func(t *testing.T) {
		require.NoError(t, f.db.First(&trip, "id = ?", started.MeterID).Error)
		assert.Equal(t, domain.TripCompleted, trip.Status)
		require.NotNil(t, trip.ReceiptNumber)
		assert.Equal(t, stopped.ReceiptNumber, *trip.ReceiptNumber)

		var rec domain.ReceiptRecord
		require.NoError(t, f.db.First(&rec, "trip_id = ?", started.MeterID).Error)
		assert.Equal(t, stopped.Receipt.TotalFinal, rec.TotalFinal)
		assert.Equal(t, 25.0, rec.CommissionRate)
	})

	t.Run("status served from storage after completion", func(t *testing.T) {
		st, err := f.svc.Status(ctx, started.MeterID)
		require.NoError(t, err)
		assert.Equal(t, domain.TripCompleted, st.Status)
		require.NotNil(t, st.Receipt)
	})

	t.Run("double stop rejected", func(t *testing.T) {
		_, err := f.svc.Stop(ctx, domain.StopRequest{MeterID: started.MeterID, DriverID: "driver-1"})
		assert.ErrorIs(t, err, domain.ErrMeterNotFound)
	})
}

func TestMeterStop_RejectedTipDoesNotWedge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started := f.start(t)
	f.drive(t, started.MeterID, 500, 36*time.Second)

	_, err := f.svc.Stop(ctx, domain.StopRequest{
		MeterID: started.MeterID, DriverID: "driver-1", TipPercent: -5,
	})
	require.ErrorIs(t, err, domain.ErrInvalidTip)
	_, err = f.svc.Stop(ctx, domain.StopRequest{
		MeterID: started.MeterID, DriverID: "driver-1", CustomTip: -1,
	})
	require.ErrorIs(t, err, domain.ErrInvalidTip)

	// The rejected requests touched nothing: the meter is still running.
	st, err := f.svc.Status(ctx, started.MeterID)
	require.NoError(t, err)
	assert.Equal(t, domain.TripRunning, st.Status)

	stopped, err := f.svc.Stop(ctx, domain.StopRequest{
		MeterID: started.MeterID, DriverID: "driver-1", TipPercent: 15,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stopped.Status)
	assert.Empty(t, f.store.List())
}

func TestMeterStop_RetryAfterPersistFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started := f.start(t)
	f.drive(t, started.MeterID, 500, 36*time.Second)

	// Receipt writes fail, so the completing transaction rolls back.
	require.NoError(t, f.db.Migrator().DropTable(&domain.ReceiptRecord{}))
	_, err := f.svc.Stop(ctx, domain.StopRequest{
		MeterID: started.MeterID, DriverID: "driver-1", TipPercent: 15,
	})
	require.Error(t, err)

	// The session is reported stopped, its fare frozen at the stop time.
	st, err := f.svc.Status(ctx, started.MeterID)
	require.NoError(t, err)
	assert.Equal(t, domain.TripStopped, st.Status)
	require.NotNil(t, st.Fare)
	frozen := st.Fare.TotalBeforeTip

	f.clock.Advance(10 * time.Minute)
	st, err = f.svc.Status(ctx, started.MeterID)
	require.NoError(t, err)
	assert.Equal(t, frozen, st.Fare.TotalBeforeTip)

	// Once storage recovers the driver's retry completes the trip.
	require.NoError(t, f.db.AutoMigrate(&domain.ReceiptRecord{}))
	stopped, err := f.svc.Stop(ctx, domain.StopRequest{
		MeterID: started.MeterID, DriverID: "driver-1", TipPercent: 15,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stopped.Status)
	assert.Equal(t, frozen, stopped.Receipt.TotalBeforeTip)
	assert.Empty(t, f.store.List())

	var trip domain.Trip
	require.NoError(t, f.db.First(&trip, "id = ?", started.MeterID).Error)
	assert.Equal(t, domain.TripCompleted, trip.Status)
}

func TestMeterUpdate_Ownership(t *testing.T) {
	f := newFixture(t)
	started := f.start(t)

	_, err := f.svc.Update(context.Background(), domain.UpdateRequest{
		MeterID:  started.MeterID,
		DriverID: "driver-2",
		Lat:      45.5020, Lng: -73.5673,
	})
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	_, err = f.svc.Update(context.Background(), domain.UpdateRequest{
		MeterID:  "3f2a7d1e-0000-0000-0000-000000000000",
		DriverID: "driver-1",
		Lat:      45.5020, Lng: -73.5673,
	})
	assert.ErrorIs(t, err, domain.ErrMeterNotFound)
}

func TestMeterUpdate_StaleFixAbsorbed(t *testing.T) {
	f := newFixture(t)
	started := f.start(t)

	resp := f.drive(t, started.MeterID, 500, 36*time.Second)
	before := resp.Fare.TotalBeforeTip

	// Duplicate timestamp: no error surfaces, fare unchanged.
	dup, err := f.svc.Update(context.Background(), domain.UpdateRequest{
		MeterID:   started.MeterID,
		DriverID:  "driver-1",
		Lat:       45.5100, Lng: -73.5673,
		Timestamp: f.clock.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, before, dup.Fare.TotalBeforeTip)
}

func TestMeterLiveFare(t *testing.T) {
	f := newFixture(t)
	started := f.start(t)
	ctx := context.Background()

	resp := f.drive(t, started.MeterID, 500, 36*time.Second)

	live, err := f.svc.LiveFare(ctx, started.MeterID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, live.Status)
	assert.Equal(t, resp.Fare.TotalBeforeTip, live.Fare.TotalBeforeTip)

	t.Run("unknown meter", func(t *testing.T) {
		_, err := f.svc.LiveFare(ctx, "3f2a7d1e-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, domain.ErrMeterNotFound)
	})
}

func TestMeterHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		started := f.start(t)
		f.drive(t, started.MeterID, 400, 30*time.Second)
		f.clock.Advance(time.Second)
		_, err := f.svc.Stop(ctx, domain.StopRequest{MeterID: started.MeterID, DriverID: "driver-1"})
		require.NoError(t, err)
	}

	trips, err := f.svc.History(ctx, "driver-1", 2)
	require.NoError(t, err)
	assert.Len(t, trips, 2)

	trips, err = f.svc.History(ctx, "driver-1", 0)
	require.NoError(t, err)
	assert.Len(t, trips, 3)
}

func TestReapStale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stale := f.start(t)
	f.clock.Advance(45 * time.Minute)
	fresh := f.start(t)

	n, err := f.svc.ReapStale(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var trip domain.Trip
	require.NoError(t, f.db.First(&trip, "id = ?", stale.MeterID).Error)
	assert.Equal(t, domain.TripExpired, trip.Status)
	require.NotNil(t, trip.EndedAt)
	// The silent window bills as waiting up to the reap.
	assert.InDelta(t, 45.0, trip.WaitingMinutes, 0.1)

	t.Run("fresh session survives", func(t *testing.T) {
		st, err := f.svc.Status(ctx, fresh.MeterID)
		require.NoError(t, err)
		assert.Equal(t, domain.TripRunning, st.Status)
	})

	t.Run("live fare evicted", func(t *testing.T) {
		_, err := f.svc.LiveFare(ctx, stale.MeterID)
		assert.ErrorIs(t, err, domain.ErrMeterNotFound)
	})
}
