package maps

import (
	"context"
	"fmt"

	gmaps "googlemaps.github.io/maps"
)

// GoogleProvider backs the Provider interface with the Google Maps APIs.
type GoogleProvider struct {
	client *gmaps.Client
}

func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	client, err := gmaps.NewClient(gmaps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

func (p *GoogleProvider) GetRoute(ctx context.Context, origin, dest LatLng) (Route, error) {
	routes, _, err := p.client.Directions(ctx, &gmaps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", origin.Lat, origin.Lng),
		Destination: fmt.Sprintf("%f,%f", dest.Lat, dest.Lng),
		Mode:        gmaps.TravelModeDriving,
	})
	if err != nil {
		return Route{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return Route{}, ErrNoRoute
	}

	leg := routes[0].Legs[0]
	return Route{
		DistanceKm:      float64(leg.Distance.Meters) / 1000,
		DurationMinutes: leg.Duration.Minutes(),
		Polyline:        routes[0].OverviewPolyline.Points,
	}, nil
}

func (p *GoogleProvider) ReverseGeocode(ctx context.Context, point LatLng) (Address, error) {
	results, err := p.client.ReverseGeocode(ctx, &gmaps.GeocodingRequest{
		LatLng: &gmaps.LatLng{Lat: point.Lat, Lng: point.Lng},
	})
	if err != nil {
		return Address{}, fmt.Errorf("reverse geocode: %w", err)
	}
	if len(results) == 0 {
		return Address{}, ErrNoRoute
	}
	return fromGeocodingResult(results[0]), nil
}

func (p *GoogleProvider) Geocode(ctx context.Context, address string) (Address, error) {
	results, err := p.client.Geocode(ctx, &gmaps.GeocodingRequest{Address: address})
	if err != nil {
		return Address{}, fmt.Errorf("geocode: %w", err)
	}
	if len(results) == 0 {
		return Address{}, ErrNoRoute
	}
	return fromGeocodingResult(results[0]), nil
}

func fromGeocodingResult(r gmaps.GeocodingResult) Address {
	addr := Address{
		Formatted: r.FormattedAddress,
		Lat:       r.Geometry.Location.Lat,
		Lng:       r.Geometry.Location.Lng,
	}
	for _, c := range r.AddressComponents {
		for _, t := range c.Types {
			switch t {
			case "route":
				addr.Street = c.LongName
			case "locality":
				addr.City = c.LongName
			case "administrative_area_level_1":
				addr.Province = c.ShortName
			case "postal_code":
				addr.PostalCode = c.LongName
			case "country":
				addr.Country = c.LongName
			}
		}
	}
	return addr
}
