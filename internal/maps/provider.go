// Package maps abstracts routing and geocoding. The fare engine is
// geocoding-agnostic; only the surrounding service labels locations and
// prices road distance through this interface.
package maps

import (
	"context"
	"errors"
)

var ErrNoRoute = errors.New("no_route_found")

type Route struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes float64 `json:"duration_minutes"`
	Polyline        string  `json:"polyline,omitempty"`
}

type Address struct {
	Formatted  string  `json:"formatted"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Street     string  `json:"street,omitempty"`
	City       string  `json:"city,omitempty"`
	Province   string  `json:"province,omitempty"`
	PostalCode string  `json:"postal_code,omitempty"`
	Country    string  `json:"country,omitempty"`
}

type LatLng struct {
	Lat float64
	Lng float64
}

type Provider interface {
	GetRoute(ctx context.Context, origin, dest LatLng) (Route, error)
	ReverseGeocode(ctx context.Context, point LatLng) (Address, error)
	Geocode(ctx context.Context, address string) (Address, error)
}
