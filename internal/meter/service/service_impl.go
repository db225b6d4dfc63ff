package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/transpolabs/transpo/internal/clock"
	"github.com/transpolabs/transpo/internal/config"
	"github.com/transpolabs/transpo/internal/gps"
	"github.com/transpolabs/transpo/internal/maps"
	"github.com/transpolabs/transpo/internal/meter/domain"
	"github.com/transpolabs/transpo/internal/meter/livefare"
	"github.com/transpolabs/transpo/internal/meter/repository"
	"github.com/transpolabs/transpo/internal/observability"
	ratedomain "github.com/transpolabs/transpo/internal/ratecard/domain"
)

type Service struct {
	log     *zap.Logger
	cfg     config.MeterConfig
	clock   clock.Clock
	genID   *snowflake.Node
	store   domain.Store
	repo    *repository.Repository
	rates   ratedomain.Service
	maps    maps.Provider
	live    *livefare.Cache
	metrics *observability.Metrics
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Cfg     config.Config
	Clock   clock.Clock
	GenID   *snowflake.Node
	Store   domain.Store
	Rates   ratedomain.Service
	Maps    maps.Provider
	Live    *livefare.Cache
	Metrics *observability.Metrics
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:     p.Log.Named("meter.service"),
		cfg:     p.Cfg.Meter,
		clock:   p.Clock,
		genID:   p.GenID,
		store:   p.Store,
		repo:    repository.NewRepository(p.DB),
		rates:   p.Rates,
		maps:    p.Maps,
		live:    p.Live,
		metrics: p.Metrics,
	}
}

func (s *Service) Start(ctx context.Context, req domain.StartRequest) (*domain.StartResponse, error) {
	now := s.clock.Now()

	tables, err := s.rates.ActiveTables(ctx, s.cfg.Region)
	if err != nil {
		return nil, err
	}
	// The tariff is locked here, once, for the whole trip.
	rt := tables.Resolve(now)

	initial := gps.Fix{Latitude: req.Lat, Longitude: req.Lng, Timestamp: now}
	id := uuid.New()
	session, err := domain.StartSession(id, req.DriverID, rt, initial, now)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(session); err != nil {
		return nil, err
	}

	mode := domain.ModeStreetHail
	if req.BookingID != nil && *req.BookingID != "" {
		mode = domain.ModeAppBooking
	}

	startAddr := s.reverseGeocode(ctx, req.Lat, req.Lng)

	trip := &domain.Trip{
		ID:         id.String(),
		DriverID:   req.DriverID,
		BookingID:  req.BookingID,
		Mode:       mode,
		Status:     domain.TripRunning,
		RatePeriod: string(rt.Period),
		Region:     s.cfg.Region,
		StartLat:   req.Lat,
		StartLng:   req.Lng,
		StartAddr:  startAddr.Formatted,
		StartedAt:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.InsertTrip(ctx, trip); err != nil {
		s.store.Remove(id)
		return nil, err
	}

	fare := session.Breakdown(now)
	s.metrics.ActiveSessions.Inc()
	s.publishLive(ctx, id.String(), domain.StatusRunning, fare)

	s.log.Info("meter started",
		zap.String("meter_id", id.String()),
		zap.String("driver_id", req.DriverID),
		zap.String("mode", string(mode)),
		zap.String("rate_period", string(rt.Period)))

	return &domain.StartResponse{
		MeterID:       id.String(),
		Mode:          mode,
		StartLocation: startAddr,
		Fare:          fare,
	}, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.UpdateResponse, error) {
	session, err := s.owned(req.MeterID, req.DriverID)
	if err != nil {
		return nil, err
	}

	ts := req.Timestamp
	if ts.IsZero() {
		ts = s.clock.Now()
	}
	fix := gps.Fix{Latitude: req.Lat, Longitude: req.Lng, Timestamp: ts}

	fare, class, err := session.Update(fix)
	switch {
	case errors.Is(err, gps.ErrStaleInterval):
		// Expected with mobile delivery; drop the interval, keep the trip.
		s.metrics.StaleDropped.Inc()
		s.log.Debug("stale interval dropped",
			zap.String("meter_id", req.MeterID),
			zap.Time("fix_ts", ts))
	case err != nil:
		return nil, err
	default:
		s.metrics.FixesProcessed.WithLabelValues(string(class)).Inc()
		snap := &domain.FareSnapshot{
			ID:             s.genID.Generate(),
			TripID:         req.MeterID,
			Lat:            req.Lat,
			Lng:            req.Lng,
			Classification: string(class),
			TotalBeforeTip: fare.TotalBeforeTip,
			RecordedAt:     ts,
		}
		if err := s.repo.AppendSnapshot(ctx, snap); err != nil {
			s.log.Warn("fare snapshot not recorded",
				zap.String("meter_id", req.MeterID), zap.Error(err))
		}
	}

	s.publishLive(ctx, req.MeterID, domain.StatusRunning, fare)

	return &domain.UpdateResponse{
		MeterID: req.MeterID,
		Status:  domain.StatusRunning,
		Fare:    fare,
	}, nil
}

func (s *Service) Stop(ctx context.Context, req domain.StopRequest) (*domain.StopResponse, error) {
	if req.TipPercent < 0 || req.CustomTip < 0 {
		return nil, domain.ErrInvalidTip
	}

	session, err := s.owned(req.MeterID, req.DriverID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if _, err := session.Stop(now); err != nil {
		// A previous attempt that failed past this point left the session
		// Stopped with its breakdown frozen; re-run from there so the
		// driver's retry can still complete the trip.
		if !errors.Is(err, domain.ErrInvalidState) || session.Status() != domain.StatusStopped {
			return nil, err
		}
	}
	receipt, err := session.Finalize(req.TipPercent, req.CustomTip, s.cfg.CommissionRatePercent)
	if err != nil {
		return nil, err
	}

	trip, err := s.repo.FindTrip(ctx, req.MeterID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, domain.ErrMeterNotFound
	}

	endFix := session.LastFix()
	endAddr := s.reverseGeocode(ctx, endFix.Latitude, endFix.Longitude)

	number := ulid.Make().String()
	method := req.PaymentMethod
	if method == "" {
		method = "cash"
	}

	distanceKm, waitingMinutes := session.Totals()
	trip.Status = domain.TripCompleted
	trip.EndedAt = &now
	trip.EndLat = &endFix.Latitude
	trip.EndLng = &endFix.Longitude
	trip.EndAddr = &endAddr.Formatted
	trip.DistanceKm = receipt.DistanceKm
	trip.WaitingMinutes = receipt.WaitingMinutes
	trip.TotalBeforeTip = receipt.TotalBeforeTip
	trip.PaymentMethod = &method
	trip.ReceiptNumber = &number
	trip.UpdatedAt = now

	rec := &domain.ReceiptRecord{
		Number:   number,
		TripID:   trip.ID,
		DriverID: trip.DriverID,

		RatePeriod:     string(receipt.RatePeriod),
		BaseFare:       receipt.BaseFare,
		DistanceKm:     receipt.DistanceKm,
		DistanceCost:   receipt.DistanceCost,
		WaitingMinutes: receipt.WaitingMinutes,
		WaitingCost:    receipt.WaitingCost,
		Subtotal:       receipt.Subtotal,
		GovernmentFee:  receipt.GovernmentFee,
		TotalBeforeTip: receipt.TotalBeforeTip,

		TipPercent: receipt.TipPercent,
		TipAmount:  receipt.TipAmount,
		TotalFinal: receipt.TotalFinal,

		CommissionRate:       receipt.Commission.Rate,
		CommissionableAmount: receipt.Commission.CommissionableAmount,
		PlatformCommission:   receipt.Commission.PlatformCommission,
		DriverEarnings:       receipt.Commission.DriverEarnings,

		PaymentMethod: method,
		IssuedAt:      now,
	}
	if err := s.repo.CompleteTrip(ctx, trip, rec); err != nil {
		return nil, err
	}

	if err := session.Complete(); err != nil {
		s.log.Warn("session already completed",
			zap.String("meter_id", req.MeterID), zap.Error(err))
	}
	s.store.Remove(session.ID())
	s.metrics.ActiveSessions.Dec()
	s.metrics.ReceiptsIssued.Inc()
	s.publishLive(ctx, req.MeterID, domain.StatusCompleted, receipt.FareBreakdown)

	s.log.Info("meter stopped",
		zap.String("meter_id", req.MeterID),
		zap.String("receipt", number),
		zap.Float64("total_final", receipt.TotalFinal),
		zap.Float64("distance_km", distanceKm),
		zap.Float64("waiting_minutes", waitingMinutes),
		zap.Int("stale_dropped", session.StaleDropped()))

	return &domain.StopResponse{
		MeterID:       req.MeterID,
		Status:        domain.StatusCompleted,
		ReceiptNumber: number,
		Receipt:       receipt,
		StartLocation: maps.Address{Formatted: trip.StartAddr, Lat: trip.StartLat, Lng: trip.StartLng},
		EndLocation:   endAddr,
		StartedAt:     trip.StartedAt,
		EndedAt:       now,
	}, nil
}

func (s *Service) Status(ctx context.Context, meterID string) (*domain.StatusResponse, error) {
	if id, err := uuid.Parse(meterID); err == nil {
		if session := s.store.Get(id); session != nil {
			// Breakdown projects forward only while Running; a stopped
			// session reports its frozen fare.
			fare := session.Breakdown(s.clock.Now())
			st := domain.TripRunning
			if session.Status() == domain.StatusStopped {
				st = domain.TripStopped
			}
			return &domain.StatusResponse{
				MeterID: meterID,
				Status:  st,
				Fare:    &fare,
			}, nil
		}
	}

	trip, err := s.repo.FindTrip(ctx, meterID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, domain.ErrMeterNotFound
	}
	resp := &domain.StatusResponse{
		MeterID: meterID,
		Status:  trip.Status,
		Trip:    trip,
	}
	if rec, err := s.repo.FindReceipt(ctx, meterID); err == nil && rec != nil {
		resp.Receipt = rec
	}
	return resp, nil
}

func (s *Service) LiveFare(ctx context.Context, meterID string) (*domain.UpdateResponse, error) {
	if entry, err := s.live.Get(ctx, meterID); err == nil {
		return &domain.UpdateResponse{MeterID: meterID, Status: entry.Status, Fare: entry.Fare}, nil
	}

	// Cache miss: serve from the session read lock.
	id, err := uuid.Parse(meterID)
	if err != nil {
		return nil, domain.ErrMeterNotFound
	}
	session := s.store.Get(id)
	if session == nil {
		return nil, domain.ErrMeterNotFound
	}
	fare := session.Breakdown(s.clock.Now())
	return &domain.UpdateResponse{MeterID: meterID, Status: session.Status(), Fare: fare}, nil
}

func (s *Service) History(ctx context.Context, driverID string, limit int) ([]domain.Trip, error) {
	return s.repo.ListByDriver(ctx, driverID, limit)
}

func (s *Service) ReapStale(ctx context.Context, olderThan time.Duration) (int, error) {
	now := s.clock.Now()
	reaped := 0

	for _, session := range s.store.List() {
		if session.Status() != domain.StatusRunning {
			continue
		}
		if now.Sub(session.LastFix().Timestamp) < olderThan {
			continue
		}

		fare, err := session.Stop(now)
		if err != nil {
			continue
		}
		distanceKm, waitingMinutes := session.Totals()
		if err := s.repo.ExpireTrip(ctx, session.ID().String(), now, fare.TotalBeforeTip, distanceKm, waitingMinutes); err != nil {
			s.log.Error("expire trip failed",
				zap.String("meter_id", session.ID().String()), zap.Error(err))
		}
		s.store.Remove(session.ID())
		if err := s.live.Evict(ctx, session.ID().String()); err != nil {
			s.log.Warn("live fare evict failed",
				zap.String("meter_id", session.ID().String()), zap.Error(err))
		}
		s.metrics.ActiveSessions.Dec()
		s.metrics.SessionsReaped.Inc()
		reaped++

		s.log.Warn("stale session reaped",
			zap.String("meter_id", session.ID().String()),
			zap.Time("last_fix", session.LastFix().Timestamp))
	}
	return reaped, nil
}

func (s *Service) owned(meterID, driverID string) (*domain.Session, error) {
	id, err := uuid.Parse(meterID)
	if err != nil {
		return nil, domain.ErrMeterNotFound
	}
	session := s.store.Get(id)
	if session == nil {
		return nil, domain.ErrMeterNotFound
	}
	if session.DriverID() != driverID {
		return nil, domain.ErrNotOwner
	}
	return session, nil
}

func (s *Service) reverseGeocode(ctx context.Context, lat, lng float64) maps.Address {
	addr, err := s.maps.ReverseGeocode(ctx, maps.LatLng{Lat: lat, Lng: lng})
	if err != nil {
		s.log.Warn("reverse geocode failed", zap.Error(err))
		return maps.Address{Lat: lat, Lng: lng}
	}
	return addr
}

func (s *Service) publishLive(ctx context.Context, meterID string, status domain.Status, fare ratedomain.FareBreakdown) {
	err := s.live.Publish(ctx, livefare.Entry{
		MeterID:   meterID,
		Status:    status,
		Fare:      fare,
		UpdatedAt: s.clock.Now(),
	})
	if err != nil {
		s.log.Warn("live fare publish failed", zap.String("meter_id", meterID), zap.Error(err))
	}
}
