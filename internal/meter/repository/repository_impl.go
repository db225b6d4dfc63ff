package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/transpolabs/transpo/internal/meter/domain"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) InsertTrip(ctx context.Context, t *domain.Trip) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *Repository) FindTrip(ctx context.Context, id string) (*domain.Trip, error) {
	var t domain.Trip
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) ListByDriver(ctx context.Context, driverID string, limit int) ([]domain.Trip, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []domain.Trip
	err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("started_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) AppendSnapshot(ctx context.Context, s *domain.FareSnapshot) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// CompleteTrip records the final numbers and the receipt in one transaction.
func (r *Repository) CompleteTrip(ctx context.Context, t *domain.Trip, rec *domain.ReceiptRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(t).Error; err != nil {
			return err
		}
		return tx.Create(rec).Error
	})
}

// ExpireTrip marks a reaped trip, keeping whatever fare had accumulated.
func (r *Repository) ExpireTrip(ctx context.Context, tripID string, endedAt time.Time, totalBeforeTip, distanceKm, waitingMinutes float64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Trip{}).
		Where("id = ? AND status = ?", tripID, domain.TripRunning).
		Updates(map[string]any{
			"status":           domain.TripExpired,
			"ended_at":         endedAt,
			"total_before_tip": totalBeforeTip,
			"distance_km":      distanceKm,
			"waiting_minutes":  waitingMinutes,
			"updated_at":       endedAt,
		}).Error
}

func (r *Repository) FindReceipt(ctx context.Context, tripID string) (*domain.ReceiptRecord, error) {
	var rec domain.ReceiptRecord
	err := r.db.WithContext(ctx).First(&rec, "trip_id = ?", tripID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
