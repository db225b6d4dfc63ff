package gps

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ctqDayThreshold = 22.537

// metersToLatDegrees converts a northward displacement to degrees of
// latitude, matching the haversine radius.
func metersToLatDegrees(m float64) float64 {
	return m / (earthRadiusMeters * math.Pi / 180)
}

func fixAt(lat, lng float64, at time.Time) Fix {
	return Fix{Latitude: lat, Longitude: lng, Timestamp: at}
}

func TestHaversineMeters(t *testing.T) {
	// Montreal downtown to Olympic Stadium, roughly 6.6 km.
	d := HaversineMeters(45.5017, -73.5673, 45.5579, -73.5515)
	assert.InDelta(t, 6360, d, 150)

	assert.Zero(t, HaversineMeters(45.5017, -73.5673, 45.5017, -73.5673))
}

func TestClassify(t *testing.T) {
	base := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)
	lat, lng := 45.5017, -73.5673

	tests := []struct {
		name      string
		move      float64 // northward meters
		elapsed   time.Duration
		wantClass Classification
		wantSpeed float64
	}{
		{
			name:      "stationary at red light",
			move:      0,
			elapsed:   60 * time.Second,
			wantClass: Stationary,
			wantSpeed: 0,
		},
		{
			name:      "jitter below movement floor",
			move:      2,
			elapsed:   10 * time.Second,
			wantClass: Stationary,
		},
		{
			name:      "highway speed",
			move:      500,
			elapsed:   36 * time.Second,
			wantClass: Moving,
			wantSpeed: 50,
		},
		{
			name:      "crawling in traffic",
			move:      100,
			elapsed:   36 * time.Second,
			wantClass: WaitingWhileMoving,
			wantSpeed: 10,
		},
		{
			name:      "at threshold speed is moving",
			move:      ctqDayThreshold/3.6*36 + 0.1, // threshold speed held for 36s
			elapsed:   36 * time.Second,
			wantClass: Moving,
			wantSpeed: ctqDayThreshold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := fixAt(lat, lng, base)
			cur := fixAt(lat+metersToLatDegrees(tt.move), lng, base.Add(tt.elapsed))

			iv, class, err := Classify(prev, cur, ctqDayThreshold)
			require.NoError(t, err)
			assert.Equal(t, tt.wantClass, class)
			assert.InDelta(t, tt.move, iv.DistanceMeters, 0.5)
			assert.InDelta(t, tt.elapsed.Seconds(), iv.ElapsedSeconds, 0.001)
			if tt.wantSpeed > 0 {
				assert.InDelta(t, tt.wantSpeed, iv.SpeedKmh, 0.1)
			}
		})
	}
}

func TestClassify_StaleInterval(t *testing.T) {
	base := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)
	prev := fixAt(45.5017, -73.5673, base)

	t.Run("duplicate timestamp", func(t *testing.T) {
		cur := fixAt(45.5020, -73.5673, base)
		iv, _, err := Classify(prev, cur, ctqDayThreshold)
		assert.ErrorIs(t, err, ErrStaleInterval)
		assert.Zero(t, iv)
	})

	t.Run("out of order", func(t *testing.T) {
		cur := fixAt(45.5020, -73.5673, base.Add(-5*time.Second))
		_, _, err := Classify(prev, cur, ctqDayThreshold)
		assert.ErrorIs(t, err, ErrStaleInterval)
	})
}

func TestClassify_MalformedFix(t *testing.T) {
	base := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)
	good := fixAt(45.5017, -73.5673, base)

	bad := []Fix{
		fixAt(math.NaN(), -73.5673, base.Add(time.Second)),
		fixAt(45.5017, math.Inf(1), base.Add(time.Second)),
		fixAt(91, -73.5673, base.Add(time.Second)),
		fixAt(45.5017, -181, base.Add(time.Second)),
	}
	for _, cur := range bad {
		_, _, err := Classify(good, cur, ctqDayThreshold)
		assert.ErrorIs(t, err, ErrMalformedFix)
	}
}

func TestSpeedKmh(t *testing.T) {
	assert.InDelta(t, 50.0, SpeedKmh(500, 36), 0.001)
	assert.Zero(t, SpeedKmh(100, 0))
	assert.Zero(t, SpeedKmh(100, -1))
}
