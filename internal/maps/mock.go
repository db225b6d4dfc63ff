package maps

import (
	"context"
	"fmt"
	"strings"

	"github.com/transpolabs/transpo/internal/gps"
)

// Road distance is approximated as straight-line distance times this
// factor; city grids rarely do better.
const roadFactor = 1.4

// Average Montreal city driving speed, km/h.
const avgCitySpeedKmh = 25

// MockProvider serves Montreal-area fixtures without any external calls.
// It is the default provider for development and tests.
type MockProvider struct{}

func NewMockProvider() *MockProvider { return &MockProvider{} }

var mockAddresses = []Address{
	{
		Formatted: "1000 Rue De La Gauchetière O, Montréal, QC H3B 4W5",
		Lat:       45.4987, Lng: -73.5671,
		Street: "1000 Rue De La Gauchetière O",
		City:   "Montréal", Province: "QC", PostalCode: "H3B 4W5", Country: "Canada",
	},
	{
		Formatted: "300 Rue Saint-Paul O, Montréal, QC H2Y 2A3",
		Lat:       45.5045, Lng: -73.5542,
		Street: "300 Rue Saint-Paul O",
		City:   "Montréal", Province: "QC", PostalCode: "H2Y 2A3", Country: "Canada",
	},
	{
		Formatted: "1001 Place Jean-Paul-Riopelle, Montréal, QC H2Z 1H5",
		Lat:       45.5048, Lng: -73.5619,
		Street: "1001 Place Jean-Paul-Riopelle",
		City:   "Montréal", Province: "QC", PostalCode: "H2Z 1H5", Country: "Canada",
	},
	{
		Formatted: "Downtown Montreal, QC",
		Lat:       45.5017, Lng: -73.5673,
		City:      "Montréal", Province: "QC", Country: "Canada",
	},
}

func (p *MockProvider) GetRoute(_ context.Context, origin, dest LatLng) (Route, error) {
	straightKm := gps.HaversineMeters(origin.Lat, origin.Lng, dest.Lat, dest.Lng) / 1000
	roadKm := straightKm * roadFactor
	return Route{
		DistanceKm:      roadKm,
		DurationMinutes: roadKm / avgCitySpeedKmh * 60,
	}, nil
}

// ReverseGeocode returns the nearest known fixture, or a coordinate label
// when nothing is close.
func (p *MockProvider) ReverseGeocode(_ context.Context, point LatLng) (Address, error) {
	best := -1
	bestDist := 0.0
	for i, a := range mockAddresses {
		d := gps.HaversineMeters(point.Lat, point.Lng, a.Lat, a.Lng)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best >= 0 && bestDist < 2000 {
		addr := mockAddresses[best]
		addr.Lat, addr.Lng = point.Lat, point.Lng
		return addr, nil
	}
	return Address{
		Formatted: fmt.Sprintf("%.4f, %.4f (Montréal area)", point.Lat, point.Lng),
		Lat:       point.Lat,
		Lng:       point.Lng,
		City:      "Montréal", Province: "QC", Country: "Canada",
	}, nil
}

func (p *MockProvider) Geocode(_ context.Context, address string) (Address, error) {
	needle := strings.ToLower(strings.TrimSpace(address))
	for _, a := range mockAddresses {
		if strings.Contains(strings.ToLower(a.Formatted), needle) && needle != "" {
			return a, nil
		}
	}
	return Address{}, ErrNoRoute
}
