package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type TripMode string

const (
	// ModeStreetHail: flagged on the street, no prior booking.
	ModeStreetHail TripMode = "street_hail"
	ModeAppBooking TripMode = "app_booking"
)

type TripStatus string

const (
	TripRunning   TripStatus = "running"
	TripCompleted TripStatus = "completed"
	// TripExpired marks sessions force-closed by the staleness reaper.
	TripExpired TripStatus = "expired"
	// TripStopped is never persisted. A status read can observe it on a
	// session whose meter was stopped but whose receipt is not yet stored.
	TripStopped TripStatus = "stopped"
)

// Trip is the durable record of a metered ride, written by the surrounding
// service. The engine itself never touches storage.
type Trip struct {
	ID        string     `gorm:"primaryKey" json:"id"`
	DriverID  string     `gorm:"not null;index" json:"driver_id"`
	BookingID *string    `gorm:"index" json:"booking_id,omitempty"`
	Mode      TripMode   `gorm:"not null" json:"mode"`
	Status    TripStatus `gorm:"not null;index" json:"status"`

	RatePeriod string  `gorm:"not null" json:"rate_period"`
	Region     string  `gorm:"not null;default:quebec" json:"region"`
	StartLat   float64 `gorm:"not null" json:"start_lat"`
	StartLng   float64 `gorm:"not null" json:"start_lng"`
	StartAddr  string  `gorm:"type:text" json:"start_address,omitempty"`

	EndLat  *float64 `json:"end_lat,omitempty"`
	EndLng  *float64 `json:"end_lng,omitempty"`
	EndAddr *string  `gorm:"type:text" json:"end_address,omitempty"`

	StartedAt time.Time  `gorm:"not null;index" json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	DistanceKm     float64 `json:"distance_km"`
	WaitingMinutes float64 `json:"waiting_minutes"`
	TotalBeforeTip float64 `json:"total_before_tip"`

	PaymentMethod *string `json:"payment_method,omitempty"`
	ReceiptNumber *string `gorm:"index" json:"receipt_number,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Trip) TableName() string { return "trips" }

// FareSnapshot is one point of the fare's audit trail, appended on every
// accepted fix.
type FareSnapshot struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	TripID         string       `gorm:"not null;index" json:"trip_id"`
	Lat            float64      `gorm:"not null" json:"lat"`
	Lng            float64      `gorm:"not null" json:"lng"`
	Classification string       `json:"classification,omitempty"`
	TotalBeforeTip float64      `gorm:"not null" json:"total_before_tip"`
	RecordedAt     time.Time    `gorm:"not null;index" json:"recorded_at"`
}

func (FareSnapshot) TableName() string { return "fare_snapshots" }

// ReceiptRecord persists the one-time receipt produced by Finalize.
type ReceiptRecord struct {
	Number   string `gorm:"primaryKey" json:"number"`
	TripID   string `gorm:"not null;uniqueIndex" json:"trip_id"`
	DriverID string `gorm:"not null;index" json:"driver_id"`

	RatePeriod     string  `gorm:"not null" json:"rate_period"`
	BaseFare       float64 `gorm:"not null" json:"base_fare"`
	DistanceKm     float64 `gorm:"not null" json:"distance_km"`
	DistanceCost   float64 `gorm:"not null" json:"distance_cost"`
	WaitingMinutes float64 `gorm:"not null" json:"waiting_minutes"`
	WaitingCost    float64 `gorm:"not null" json:"waiting_cost"`
	Subtotal       float64 `gorm:"not null" json:"subtotal"`
	GovernmentFee  float64 `gorm:"not null" json:"government_fee"`
	TotalBeforeTip float64 `gorm:"not null" json:"total_before_tip"`

	TipPercent float64 `json:"tip_percent"`
	TipAmount  float64 `json:"tip_amount"`
	TotalFinal float64 `gorm:"not null" json:"total_final"`

	CommissionRate       float64 `gorm:"not null" json:"commission_rate"`
	CommissionableAmount float64 `gorm:"not null" json:"commissionable_amount"`
	PlatformCommission   float64 `gorm:"not null" json:"platform_commission"`
	DriverEarnings       float64 `gorm:"not null" json:"driver_earnings"`

	PaymentMethod string    `json:"payment_method"`
	IssuedAt      time.Time `gorm:"not null" json:"issued_at"`
}

func (ReceiptRecord) TableName() string { return "receipts" }
