package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTablesResolve(t *testing.T) {
	tables := CTQDefaults()

	tests := []struct {
		name string
		at   time.Time
		want Period
	}{
		{"early morning is night", time.Date(2025, 6, 10, 4, 59, 0, 0, time.UTC), PeriodNight},
		{"day starts at 05:00", time.Date(2025, 6, 10, 5, 0, 0, 0, time.UTC), PeriodDay},
		{"midday", time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC), PeriodDay},
		{"last day minute", time.Date(2025, 6, 10, 22, 59, 59, 0, time.UTC), PeriodDay},
		{"night starts at 23:00", time.Date(2025, 6, 10, 23, 0, 0, 0, time.UTC), PeriodNight},
		{"after midnight", time.Date(2025, 6, 11, 1, 15, 0, 0, time.UTC), PeriodNight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tables.Resolve(tt.at).Period)
		})
	}
}

func TestCTQDefaults(t *testing.T) {
	tables := CTQDefaults()

	assert.Equal(t, 5.15, tables.Day.BaseFare)
	assert.Equal(t, 2.05, tables.Day.PerKmRate)
	assert.Equal(t, 0.77, tables.Day.WaitingPerMinute)
	assert.Equal(t, 22.537, tables.Day.SpeedThresholdKmh)

	assert.Equal(t, 5.75, tables.Night.BaseFare)
	assert.Equal(t, 2.35, tables.Night.PerKmRate)
	assert.Equal(t, 0.89, tables.Night.WaitingPerMinute)
	assert.Equal(t, 22.723, tables.Night.SpeedThresholdKmh)

	assert.Equal(t, 0.90, tables.Day.GovernmentFee)
	assert.Equal(t, 0.90, tables.Night.GovernmentFee)
}

func TestNewBreakdown(t *testing.T) {
	rt := CTQDefaults().Day

	t.Run("zero trip is base fare only", func(t *testing.T) {
		b := NewBreakdown(rt, 0, 0)
		assert.Equal(t, 5.15, b.BaseFare)
		assert.Zero(t, b.DistanceCost)
		assert.Zero(t, b.WaitingCost)
		assert.Equal(t, 5.15, b.Subtotal)
		assert.Equal(t, b.Subtotal, b.TotalBeforeTip)
	})

	t.Run("components add up", func(t *testing.T) {
		b := NewBreakdown(rt, 10, 5)
		assert.Equal(t, PeriodDay, b.RatePeriod)
		assert.Equal(t, 10.0, b.DistanceKm)
		assert.Equal(t, 20.5, b.DistanceCost)
		assert.Equal(t, 5.0, b.WaitingMinutes)
		assert.Equal(t, 3.85, b.WaitingCost)
		assert.Equal(t, 29.5, b.Subtotal)
	})

	t.Run("fee is carried not added", func(t *testing.T) {
		b := NewBreakdown(rt, 10, 5)
		assert.Equal(t, 0.90, b.GovernmentFee)
		assert.Equal(t, b.Subtotal, b.TotalBeforeTip)
	})

	t.Run("rounding at presentation", func(t *testing.T) {
		b := NewBreakdown(rt, 3.333, 2.222)
		// 3.333 * 2.05 = 6.83265 -> 6.83
		assert.Equal(t, 6.83, b.DistanceCost)
		// 2.222 * 0.77 = 1.71094 -> 1.71
		assert.Equal(t, 1.71, b.WaitingCost)
		assert.Equal(t, 2.2, b.WaitingMinutes)
	})
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 1.24, Round2(1.236))
	assert.Equal(t, 1.2, Round1(1.24))
	assert.Equal(t, 1.3, Round1(1.25))
}
