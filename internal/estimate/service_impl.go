package estimate

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/transpolabs/transpo/internal/clock"
	"github.com/transpolabs/transpo/internal/config"
	"github.com/transpolabs/transpo/internal/maps"
	ratedomain "github.com/transpolabs/transpo/internal/ratecard/domain"
)

type service struct {
	log   *zap.Logger
	cfg   config.MeterConfig
	clock clock.Clock
	rates ratedomain.Service
	maps  maps.Provider
}

type ServiceParam struct {
	fx.In

	Log   *zap.Logger
	Cfg   config.Config
	Clock clock.Clock
	Rates ratedomain.Service
	Maps  maps.Provider
}

func NewService(p ServiceParam) Service {
	return &service{
		log:   p.Log.Named("estimate.service"),
		cfg:   p.Cfg.Meter,
		clock: p.Clock,
		rates: p.Rates,
		maps:  p.Maps,
	}
}

func (s *service) Estimate(ctx context.Context, req Request) (*Estimate, error) {
	tables, err := s.rates.ActiveTables(ctx, s.cfg.Region)
	if err != nil {
		return nil, err
	}
	rt := tables.Resolve(s.clock.Now())

	route, err := s.maps.GetRoute(ctx,
		maps.LatLng{Lat: req.FromLat, Lng: req.FromLng},
		maps.LatLng{Lat: req.ToLat, Lng: req.ToLng})
	if err != nil {
		return nil, err
	}

	est := Compute(rt, route.DistanceKm, route.DurationMinutes)

	s.log.Debug("fare estimated",
		zap.Float64("distance_km", est.DistanceKm),
		zap.String("rate_period", string(est.RatePeriod)),
		zap.Float64("expected", est.Expected))
	return &est, nil
}
