package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/transpolabs/transpo/internal/clock"
	"github.com/transpolabs/transpo/internal/ratecard/domain"
	"github.com/transpolabs/transpo/internal/ratecard/repository"
)

const defaultRegion = "quebec"

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  *repository.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:   p.Log.Named("ratecard.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  repository.NewRepository(p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.RateCardVersion, error) {
	region := strings.TrimSpace(req.Region)
	if region == "" {
		region = defaultRegion
	}

	v := &domain.RateCardVersion{
		ID:          s.genID.Generate(),
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug.Make(req.Name),
		Description: req.Description,
		Status:      domain.StatusDraft,
		Region:      region,

		DayBaseFare:       req.DayBaseFare,
		DayPerKm:          req.DayPerKm,
		DayWaitingPerMin:  req.DayWaitingPerMin,
		DaySpeedThreshold: req.DaySpeedThreshold,

		NightBaseFare:       req.NightBaseFare,
		NightPerKm:          req.NightPerKm,
		NightWaitingPerMin:  req.NightWaitingPerMin,
		NightSpeedThreshold: req.NightSpeedThreshold,

		GovernmentFee: req.GovernmentFee,
		EffectiveAt:   req.EffectiveAt,
		CreatedAt:     s.clock.Now(),
		UpdatedAt:     s.clock.Now(),
	}
	applyDefaults(v)
	if err := validateRates(v); err != nil {
		return nil, err
	}

	version, err := s.repo.NextVersion(ctx, region)
	if err != nil {
		return nil, err
	}
	v.Version = version

	if req.EffectiveAt != nil && req.EffectiveAt.After(s.clock.Now()) {
		v.Status = domain.StatusScheduled
	}

	if err := s.repo.Insert(ctx, v); err != nil {
		return nil, err
	}
	s.log.Info("rate card created",
		zap.String("id", v.ID.String()),
		zap.String("region", v.Region),
		zap.Int("version", v.Version))
	return v, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.RateCardVersion, error) {
	v, err := s.getExisting(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if v.Status == domain.StatusLocked {
		return nil, domain.ErrRateCardLocked
	}

	if req.Name != nil {
		v.Name = strings.TrimSpace(*req.Name)
		v.Slug = slug.Make(v.Name)
	}
	if req.Description != nil {
		v.Description = *req.Description
	}
	setFloat(&v.DayBaseFare, req.DayBaseFare)
	setFloat(&v.DayPerKm, req.DayPerKm)
	setFloat(&v.DayWaitingPerMin, req.DayWaitingPerMin)
	setFloat(&v.DaySpeedThreshold, req.DaySpeedThreshold)
	setFloat(&v.NightBaseFare, req.NightBaseFare)
	setFloat(&v.NightPerKm, req.NightPerKm)
	setFloat(&v.NightWaitingPerMin, req.NightWaitingPerMin)
	setFloat(&v.NightSpeedThreshold, req.NightSpeedThreshold)
	setFloat(&v.GovernmentFee, req.GovernmentFee)
	if req.EffectiveAt != nil {
		v.EffectiveAt = req.EffectiveAt
	}
	v.UpdatedAt = s.clock.Now()

	if err := validateRates(v); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) List(ctx context.Context, region string) ([]domain.RateCardVersion, error) {
	return s.repo.List(ctx, strings.TrimSpace(region))
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.RateCardVersion, error) {
	return s.getExisting(ctx, id)
}

func (s *Service) Activate(ctx context.Context, id string) (*domain.RateCardVersion, error) {
	v, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	switch v.Status {
	case domain.StatusDraft, domain.StatusScheduled:
	default:
		return nil, domain.ErrInvalidStatus
	}

	if err := s.repo.ArchiveActive(ctx, v.Region); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	v.Status = domain.StatusActive
	v.ActivatedAt = &now
	v.UpdatedAt = now
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	s.log.Info("rate card activated",
		zap.String("id", v.ID.String()),
		zap.String("region", v.Region),
		zap.Int("version", v.Version))
	return v, nil
}

func (s *Service) Lock(ctx context.Context, id, reason string) (*domain.RateCardVersion, error) {
	v, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status == domain.StatusLocked {
		return v, nil
	}

	now := s.clock.Now()
	v.Status = domain.StatusLocked
	v.LockedAt = &now
	v.LockedReason = &reason
	v.UpdatedAt = now
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) ActiveTables(ctx context.Context, region string) (domain.Tables, error) {
	if strings.TrimSpace(region) == "" {
		region = defaultRegion
	}
	active, err := s.repo.FindActive(ctx, region)
	if err != nil {
		return domain.Tables{}, err
	}
	if active == nil {
		return domain.CTQDefaults(), nil
	}
	return active.Tables(), nil
}

func (s *Service) getExisting(ctx context.Context, id string) (*domain.RateCardVersion, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrRateCardNotFound
	}
	v, err := s.repo.FindByID(ctx, parsed)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrRateCardNotFound
	}
	return v, nil
}

// applyDefaults fills zero-valued tariff fields from the CTQ tables so a
// partial create still yields a chargeable card.
func applyDefaults(v *domain.RateCardVersion) {
	d := domain.CTQDefaults()
	setIfZero(&v.DayBaseFare, d.Day.BaseFare)
	setIfZero(&v.DayPerKm, d.Day.PerKmRate)
	setIfZero(&v.DayWaitingPerMin, d.Day.WaitingPerMinute)
	setIfZero(&v.DaySpeedThreshold, d.Day.SpeedThresholdKmh)
	setIfZero(&v.NightBaseFare, d.Night.BaseFare)
	setIfZero(&v.NightPerKm, d.Night.PerKmRate)
	setIfZero(&v.NightWaitingPerMin, d.Night.WaitingPerMinute)
	setIfZero(&v.NightSpeedThreshold, d.Night.SpeedThresholdKmh)
	setIfZero(&v.GovernmentFee, d.Day.GovernmentFee)
}

func validateRates(v *domain.RateCardVersion) error {
	for _, f := range []float64{
		v.DayBaseFare, v.DayPerKm, v.DayWaitingPerMin, v.DaySpeedThreshold,
		v.NightBaseFare, v.NightPerKm, v.NightWaitingPerMin, v.NightSpeedThreshold,
		v.GovernmentFee,
	} {
		if f < 0 {
			return domain.ErrInvalidRate
		}
	}
	return nil
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setIfZero(dst *float64, def float64) {
	if *dst == 0 {
		*dst = def
	}
}
