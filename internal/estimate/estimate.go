// Package estimate prices a trip before it happens, using the same tariff
// tables and fare math as the live meter. Estimates are advisory; the meter
// alone produces the billable fare.
package estimate

import (
	"context"

	ratedomain "github.com/transpolabs/transpo/internal/ratecard/domain"
)

// Traffic assumptions baked into the projection. A road route reports its
// own duration; when only a distance is known the city average applies.
const (
	// waitingFraction is the share of the projected duration assumed to
	// be spent below the speed threshold (lights, congestion).
	waitingFraction = 0.20

	defaultSpeedKmh = 30.0

	rangeLowFactor  = 0.85
	rangeHighFactor = 1.25
)

type Request struct {
	FromLat float64 `json:"from_lat"`
	FromLng float64 `json:"from_lng"`
	ToLat   float64 `json:"to_lat"`
	ToLng   float64 `json:"to_lng"`
}

type Estimate struct {
	RatePeriod ratedomain.Period `json:"rate_period"`

	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes float64 `json:"duration_minutes"`
	WaitingMinutes  float64 `json:"waiting_minutes"`

	BaseFare     float64 `json:"base_fare"`
	DistanceCost float64 `json:"distance_cost"`
	WaitingCost  float64 `json:"waiting_cost"`

	// Expected already includes the government fee through the base fare;
	// nothing is added on top of it.
	Expected  float64 `json:"expected"`
	RangeLow  float64 `json:"range_low"`
	RangeHigh float64 `json:"range_high"`
}

// Compute projects a fare for a road distance and optional route duration.
// durationMinutes <= 0 falls back to the city average speed.
func Compute(rt ratedomain.RateTable, distanceKm, durationMinutes float64) Estimate {
	if durationMinutes <= 0 {
		durationMinutes = distanceKm / defaultSpeedKmh * 60
	}
	waiting := durationMinutes * waitingFraction

	distanceCost := ratedomain.DistanceCost(rt, distanceKm)
	waitingCost := ratedomain.WaitingCost(rt, waiting)
	expected := rt.BaseFare + distanceCost + waitingCost

	return Estimate{
		RatePeriod:      rt.Period,
		DistanceKm:      ratedomain.Round2(distanceKm),
		DurationMinutes: ratedomain.Round1(durationMinutes),
		WaitingMinutes:  ratedomain.Round1(waiting),
		BaseFare:        rt.BaseFare,
		DistanceCost:    ratedomain.Round2(distanceCost),
		WaitingCost:     ratedomain.Round2(waitingCost),
		Expected:        ratedomain.Round2(expected),
		RangeLow:        ratedomain.Round2(expected * rangeLowFactor),
		RangeHigh:       ratedomain.Round2(expected * rangeHighFactor),
	}
}

type Service interface {
	Estimate(ctx context.Context, req Request) (*Estimate, error)
}
