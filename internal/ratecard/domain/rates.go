// Package domain holds the regulated rate tables and the fare math shared
// by the live meter and the pre-trip estimator.
package domain

import (
	"math"
	"time"
)

type Period string

const (
	PeriodDay   Period = "day"
	PeriodNight Period = "night"
)

// Day rates apply from dayStartHour (inclusive) to nightStartHour (exclusive),
// local hour of day. Night covers the remainder.
const (
	dayStartHour   = 5
	nightStartHour = 23
)

// RateTable is the fixed tariff for one period. It is selected once at trip
// start and never re-evaluated mid-trip.
type RateTable struct {
	Period            Period  `json:"period"`
	BaseFare          float64 `json:"base_fare"`
	PerKmRate         float64 `json:"per_km_rate"`
	WaitingPerMinute  float64 `json:"waiting_per_min"`
	SpeedThresholdKmh float64 `json:"speed_threshold_kmh"`

	// GovernmentFee is already embedded in BaseFare per CTQ regulation.
	// It is carried for display only and must never be added on top.
	GovernmentFee float64 `json:"government_fee"`
}

// Tables pairs the two period tariffs of one rate card.
type Tables struct {
	Day   RateTable `json:"day"`
	Night RateTable `json:"night"`
}

// Resolve maps a timestamp to the period tariff in force at that instant.
// Pure; callers lock the result for the trip's duration.
func (t Tables) Resolve(at time.Time) RateTable {
	if h := at.Hour(); h >= dayStartHour && h < nightStartHour {
		return t.Day
	}
	return t.Night
}

// CTQDefaults returns the published Quebec CTQ tariff, used whenever no
// admin-configured rate card is active.
func CTQDefaults() Tables {
	return Tables{
		Day: RateTable{
			Period:            PeriodDay,
			BaseFare:          5.15,
			PerKmRate:         2.05,
			WaitingPerMinute:  0.77,
			SpeedThresholdKmh: 22.537,
			GovernmentFee:     0.90,
		},
		Night: RateTable{
			Period:            PeriodNight,
			BaseFare:          5.75,
			PerKmRate:         2.35,
			WaitingPerMinute:  0.89,
			SpeedThresholdKmh: 22.723,
			GovernmentFee:     0.90,
		},
	}
}

// DistanceCost prices accumulated distance. Unrounded; rounding happens only
// when a FareBreakdown is assembled.
func DistanceCost(rt RateTable, distanceKm float64) float64 {
	return distanceKm * rt.PerKmRate
}

// WaitingCost prices accumulated waiting time.
func WaitingCost(rt RateTable, waitingMinutes float64) float64 {
	return waitingMinutes * rt.WaitingPerMinute
}

// Round2 rounds to cents. Applied only at presentation boundaries so that
// rounding error does not compound across many small GPS intervals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds to one decimal, used for displayed waiting minutes.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
