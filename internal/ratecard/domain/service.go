package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrRateCardNotFound = errors.New("rate_card_not_found")
	ErrRateCardLocked   = errors.New("rate_card_locked")
	ErrInvalidRate      = errors.New("invalid_rate")
	ErrInvalidStatus    = errors.New("invalid_rate_card_status")
)

type CreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Region      string `json:"region"`

	DayBaseFare       float64 `json:"day_base_fare"`
	DayPerKm          float64 `json:"day_per_km"`
	DayWaitingPerMin  float64 `json:"day_waiting_per_min"`
	DaySpeedThreshold float64 `json:"day_speed_threshold_kmh"`

	NightBaseFare       float64 `json:"night_base_fare"`
	NightPerKm          float64 `json:"night_per_km"`
	NightWaitingPerMin  float64 `json:"night_waiting_per_min"`
	NightSpeedThreshold float64 `json:"night_speed_threshold_kmh"`

	GovernmentFee float64    `json:"government_fee"`
	EffectiveAt   *time.Time `json:"effective_at,omitempty"`
}

type UpdateRequest struct {
	ID          string   `json:"-"`
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	DayBaseFare *float64 `json:"day_base_fare,omitempty"`
	DayPerKm    *float64 `json:"day_per_km,omitempty"`

	DayWaitingPerMin  *float64 `json:"day_waiting_per_min,omitempty"`
	DaySpeedThreshold *float64 `json:"day_speed_threshold_kmh,omitempty"`

	NightBaseFare       *float64 `json:"night_base_fare,omitempty"`
	NightPerKm          *float64 `json:"night_per_km,omitempty"`
	NightWaitingPerMin  *float64 `json:"night_waiting_per_min,omitempty"`
	NightSpeedThreshold *float64 `json:"night_speed_threshold_kmh,omitempty"`

	GovernmentFee *float64   `json:"government_fee,omitempty"`
	EffectiveAt   *time.Time `json:"effective_at,omitempty"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*RateCardVersion, error)
	Update(ctx context.Context, req UpdateRequest) (*RateCardVersion, error)
	List(ctx context.Context, region string) ([]RateCardVersion, error)
	GetByID(ctx context.Context, id string) (*RateCardVersion, error)

	// Activate promotes a draft or scheduled version and archives the
	// previously active one for the same region.
	Activate(ctx context.Context, id string) (*RateCardVersion, error)

	// Lock places a version under legal hold. Locked versions reject Update.
	Lock(ctx context.Context, id, reason string) (*RateCardVersion, error)

	// ActiveTables returns the tariff pair in force for a region, falling
	// back to the published CTQ defaults when nothing is configured.
	ActiveTables(ctx context.Context, region string) (Tables, error)
}
