// Package gps turns raw driver-device fixes into classified trip intervals.
package gps

import (
	"errors"
	"math"
	"time"
)

var (
	// ErrMalformedFix rejects fixes with non-finite or out-of-range
	// coordinates before they can touch any accumulator.
	ErrMalformedFix = errors.New("malformed_gps_fix")

	// ErrStaleInterval marks a non-positive elapsed time between fixes.
	// Out-of-order or duplicate delivery is expected from mobile devices;
	// the interval is discarded, the trip is never aborted.
	ErrStaleInterval = errors.New("stale_gps_interval")
)

const earthRadiusMeters = 6371000

// Fix is a single GPS sample from the driver device.
type Fix struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate fails loudly on missing or non-finite coordinates.
func (f Fix) Validate() error {
	if !isFinite(f.Latitude) || !isFinite(f.Longitude) {
		return ErrMalformedFix
	}
	if f.Latitude < -90 || f.Latitude > 90 || f.Longitude < -180 || f.Longitude > 180 {
		return ErrMalformedFix
	}
	return nil
}

// Interval is the measured displacement between two consecutive fixes.
type Interval struct {
	DistanceMeters float64
	ElapsedSeconds float64
	SpeedKmh       float64
}

// HaversineMeters is the great-circle distance between two coordinates.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// SpeedKmh converts a displacement over time to km/h.
func SpeedKmh(distanceMeters, elapsedSeconds float64) float64 {
	if elapsedSeconds <= 0 {
		return 0
	}
	return (distanceMeters / elapsedSeconds) * 3.6
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
