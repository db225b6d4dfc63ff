package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusScheduled Status = "scheduled"
	StatusArchived  Status = "archived"
	// StatusLocked marks a version under legal hold. Locked versions are
	// immutable and survive archival for audit.
	StatusLocked Status = "locked"
)

// RateCardVersion is one versioned tariff configuration. At most one version
// per region is active at a time; the resolver falls back to CTQDefaults when
// none is.
type RateCardVersion struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Version     int          `gorm:"not null" json:"version"`
	Name        string       `gorm:"not null" json:"name"`
	Slug        string       `gorm:"not null;index" json:"slug"`
	Description string       `gorm:"type:text" json:"description,omitempty"`
	Status      Status       `gorm:"not null;index" json:"status"`
	Region      string       `gorm:"not null;index;default:quebec" json:"region"`

	DayBaseFare       float64 `gorm:"not null" json:"day_base_fare"`
	DayPerKm          float64 `gorm:"not null" json:"day_per_km"`
	DayWaitingPerMin  float64 `gorm:"not null" json:"day_waiting_per_min"`
	DaySpeedThreshold float64 `gorm:"not null" json:"day_speed_threshold_kmh"`

	NightBaseFare       float64 `gorm:"not null" json:"night_base_fare"`
	NightPerKm          float64 `gorm:"not null" json:"night_per_km"`
	NightWaitingPerMin  float64 `gorm:"not null" json:"night_waiting_per_min"`
	NightSpeedThreshold float64 `gorm:"not null" json:"night_speed_threshold_kmh"`

	GovernmentFee float64 `gorm:"not null" json:"government_fee"`

	EffectiveAt  *time.Time `json:"effective_at,omitempty"`
	ActivatedAt  *time.Time `json:"activated_at,omitempty"`
	LockedAt     *time.Time `json:"locked_at,omitempty"`
	LockedReason *string    `gorm:"type:text" json:"locked_reason,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (RateCardVersion) TableName() string { return "rate_card_versions" }

// Tables materializes the version into the pair of period tariffs the engine
// consumes.
func (v RateCardVersion) Tables() Tables {
	return Tables{
		Day: RateTable{
			Period:            PeriodDay,
			BaseFare:          v.DayBaseFare,
			PerKmRate:         v.DayPerKm,
			WaitingPerMinute:  v.DayWaitingPerMin,
			SpeedThresholdKmh: v.DaySpeedThreshold,
			GovernmentFee:     v.GovernmentFee,
		},
		Night: RateTable{
			Period:            PeriodNight,
			BaseFare:          v.NightBaseFare,
			PerKmRate:         v.NightPerKm,
			WaitingPerMinute:  v.NightWaitingPerMin,
			SpeedThresholdKmh: v.NightSpeedThreshold,
			GovernmentFee:     v.GovernmentFee,
		},
	}
}
