package domain

import (
	"context"
	"time"

	"github.com/transpolabs/transpo/internal/maps"
	ratedomain "github.com/transpolabs/transpo/internal/ratecard/domain"
)

type StartRequest struct {
	DriverID  string  `json:"-"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	BookingID *string `json:"booking_id,omitempty"`
}

type StartResponse struct {
	MeterID       string                   `json:"meter_id"`
	Mode          TripMode                 `json:"mode"`
	StartLocation maps.Address             `json:"start_location"`
	Fare          ratedomain.FareBreakdown `json:"fare"`
}

type UpdateRequest struct {
	MeterID  string  `json:"-"`
	DriverID string  `json:"-"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`

	// Timestamp is the device sample time. Zero means "now".
	Timestamp time.Time `json:"timestamp,omitempty"`
}

type UpdateResponse struct {
	MeterID string                   `json:"meter_id"`
	Status  Status                   `json:"status"`
	Fare    ratedomain.FareBreakdown `json:"fare"`
}

type StopRequest struct {
	MeterID       string  `json:"-"`
	DriverID      string  `json:"-"`
	TipPercent    float64 `json:"tip_percent"`
	CustomTip     float64 `json:"custom_tip"`
	PaymentMethod string  `json:"payment_method"`
}

type StopResponse struct {
	MeterID       string       `json:"meter_id"`
	Status        Status       `json:"status"`
	ReceiptNumber string       `json:"receipt_number"`
	Receipt       Receipt      `json:"receipt"`
	StartLocation maps.Address `json:"start_location"`
	EndLocation   maps.Address `json:"end_location"`
	StartedAt     time.Time    `json:"started_at"`
	EndedAt       time.Time    `json:"ended_at"`
}

type StatusResponse struct {
	MeterID string                    `json:"meter_id"`
	Status  TripStatus                `json:"status"`
	Fare    *ratedomain.FareBreakdown `json:"fare,omitempty"`
	Receipt *ReceiptRecord            `json:"receipt,omitempty"`
	Trip    *Trip                     `json:"trip,omitempty"`
}

type Service interface {
	Start(ctx context.Context, req StartRequest) (*StartResponse, error)

	// Update applies one GPS fix. Stale intervals are absorbed, not
	// surfaced; malformed fixes are rejected without corrupting the
	// session.
	Update(ctx context.Context, req UpdateRequest) (*UpdateResponse, error)

	// Stop freezes the session, finalizes it into a one-time receipt and
	// durably records the trip.
	Stop(ctx context.Context, req StopRequest) (*StopResponse, error)

	Status(ctx context.Context, meterID string) (*StatusResponse, error)

	// LiveFare serves rider polling from the cache, never taking the
	// session writer lock.
	LiveFare(ctx context.Context, meterID string) (*UpdateResponse, error)

	History(ctx context.Context, driverID string, limit int) ([]Trip, error)

	// ReapStale force-closes running sessions without a fix for the
	// given window. Returns how many were reaped.
	ReapStale(ctx context.Context, olderThan time.Duration) (int, error)
}
