package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/transpolabs/transpo/internal/clock"
	"github.com/transpolabs/transpo/internal/ratecard/domain"
)

func newTestService(t *testing.T) (domain.Service, *clock.Manual) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.RateCardVersion{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	manual := clock.NewManual(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: manual,
	})
	return svc, manual
}

func TestService_Create(t *testing.T) {
	svc, manual := newTestService(t)
	ctx := context.Background()

	t.Run("defaults fill missing rates", func(t *testing.T) {
		card, err := svc.Create(ctx, domain.CreateRequest{Name: "Summer 2025"})
		require.NoError(t, err)

		assert.Equal(t, domain.StatusDraft, card.Status)
		assert.Equal(t, "quebec", card.Region)
		assert.Equal(t, "summer-2025", card.Slug)
		assert.Equal(t, 1, card.Version)
		assert.Equal(t, 5.15, card.DayBaseFare)
		assert.Equal(t, 2.35, card.NightPerKm)
		assert.Equal(t, 0.90, card.GovernmentFee)
	})

	t.Run("versions increment per region", func(t *testing.T) {
		card, err := svc.Create(ctx, domain.CreateRequest{Name: "Fall 2025"})
		require.NoError(t, err)
		assert.Equal(t, 2, card.Version)

		other, err := svc.Create(ctx, domain.CreateRequest{Name: "Gatineau", Region: "gatineau"})
		require.NoError(t, err)
		assert.Equal(t, 1, other.Version)
	})

	t.Run("future effective date schedules", func(t *testing.T) {
		eff := manual.Now().Add(48 * time.Hour)
		card, err := svc.Create(ctx, domain.CreateRequest{Name: "Next Year", EffectiveAt: &eff})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusScheduled, card.Status)
	})

	t.Run("negative rate rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, domain.CreateRequest{Name: "Broken", DayPerKm: -1})
		assert.ErrorIs(t, err, domain.ErrInvalidRate)
	})
}

func TestService_Activate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, domain.CreateRequest{Name: "First"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, domain.CreateRequest{Name: "Second", DayBaseFare: 6.00})
	require.NoError(t, err)

	activated, err := svc.Activate(ctx, first.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, activated.Status)
	require.NotNil(t, activated.ActivatedAt)

	t.Run("activation archives the predecessor", func(t *testing.T) {
		_, err := svc.Activate(ctx, second.ID.String())
		require.NoError(t, err)

		old, err := svc.GetByID(ctx, first.ID.String())
		require.NoError(t, err)
		assert.Equal(t, domain.StatusArchived, old.Status)

		tables, err := svc.ActiveTables(ctx, "quebec")
		require.NoError(t, err)
		assert.Equal(t, 6.00, tables.Day.BaseFare)
	})

	t.Run("archived version cannot reactivate", func(t *testing.T) {
		_, err := svc.Activate(ctx, first.ID.String())
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.Activate(ctx, "999999999")
		assert.ErrorIs(t, err, domain.ErrRateCardNotFound)
	})
}

func TestService_Lock(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	card, err := svc.Create(ctx, domain.CreateRequest{Name: "Disputed"})
	require.NoError(t, err)

	locked, err := svc.Lock(ctx, card.ID.String(), "fare dispute #4411")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLocked, locked.Status)
	require.NotNil(t, locked.LockedReason)
	assert.Equal(t, "fare dispute #4411", *locked.LockedReason)

	t.Run("locked card rejects updates", func(t *testing.T) {
		newFare := 9.99
		_, err := svc.Update(ctx, domain.UpdateRequest{ID: card.ID.String(), DayBaseFare: &newFare})
		assert.ErrorIs(t, err, domain.ErrRateCardLocked)
	})

	t.Run("lock is idempotent", func(t *testing.T) {
		again, err := svc.Lock(ctx, card.ID.String(), "another reason")
		require.NoError(t, err)
		assert.Equal(t, "fare dispute #4411", *again.LockedReason)
	})
}

func TestService_ActiveTables_Fallback(t *testing.T) {
	svc, _ := newTestService(t)

	tables, err := svc.ActiveTables(context.Background(), "quebec")
	require.NoError(t, err)
	assert.Equal(t, domain.CTQDefaults(), tables)
}
