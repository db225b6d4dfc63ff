package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/transpolabs/transpo/internal/ratecard/domain"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, v *domain.RateCardVersion) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *Repository) Update(ctx context.Context, v *domain.RateCardVersion) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *Repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.RateCardVersion, error) {
	var v domain.RateCardVersion
	err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repository) FindActive(ctx context.Context, region string) (*domain.RateCardVersion, error) {
	var v domain.RateCardVersion
	err := r.db.WithContext(ctx).
		Where("region = ? AND status = ?", region, domain.StatusActive).
		Order("version DESC").
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repository) List(ctx context.Context, region string) ([]domain.RateCardVersion, error) {
	var out []domain.RateCardVersion
	q := r.db.WithContext(ctx).Order("version DESC")
	if region != "" {
		q = q.Where("region = ?", region)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) NextVersion(ctx context.Context, region string) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&domain.RateCardVersion{}).
		Where("region = ?", region).
		Select("COALESCE(MAX(version), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// ArchiveActive demotes the currently active version of a region, if any.
func (r *Repository) ArchiveActive(ctx context.Context, region string) error {
	return r.db.WithContext(ctx).
		Model(&domain.RateCardVersion{}).
		Where("region = ? AND status = ?", region, domain.StatusActive).
		Update("status", domain.StatusArchived).Error
}
