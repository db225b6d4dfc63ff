// Package seed provisions the fixtures a fresh development database needs:
// one driver credential with a known key and the published CTQ tariff as the
// active rate card.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/transpolabs/transpo/internal/driverauth"
	ratedomain "github.com/transpolabs/transpo/internal/ratecard/domain"
)

const (
	defaultDriverID   = "driver-dev"
	defaultDriverName = "Development Driver"
	// DefaultDriverKey is the bearer key seeded for local development.
	// Never seed production databases.
	DefaultDriverKey = "transpo-dev-key"

	defaultCardName = "CTQ Published Tariff"
	defaultRegion   = "quebec"
)

// EnsureDevFixtures is idempotent; reruns leave existing rows untouched.
func EnsureDevFixtures(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureDriverCredential(ctx, tx, node); err != nil {
			return err
		}
		return ensureActiveRateCard(ctx, tx, node)
	})
}

func ensureDriverCredential(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	hash := driverauth.HashKey(DefaultDriverKey)

	var existing driverauth.DriverCredential
	err := tx.WithContext(ctx).Where("key_hash = ?", hash).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return tx.WithContext(ctx).Create(&driverauth.DriverCredential{
		ID:        node.Generate(),
		DriverID:  defaultDriverID,
		Name:      defaultDriverName,
		KeyHash:   hash,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}).Error
}

func ensureActiveRateCard(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	err := tx.WithContext(ctx).
		Model(&ratedomain.RateCardVersion{}).
		Where("region = ?", defaultRegion).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	d := ratedomain.CTQDefaults()
	return tx.WithContext(ctx).Create(&ratedomain.RateCardVersion{
		ID:      node.Generate(),
		Version: 1,
		Name:    defaultCardName,
		Slug:    slug.Make(defaultCardName),
		Status:  ratedomain.StatusActive,
		Region:  defaultRegion,

		DayBaseFare:       d.Day.BaseFare,
		DayPerKm:          d.Day.PerKmRate,
		DayWaitingPerMin:  d.Day.WaitingPerMinute,
		DaySpeedThreshold: d.Day.SpeedThresholdKmh,

		NightBaseFare:       d.Night.BaseFare,
		NightPerKm:          d.Night.PerKmRate,
		NightWaitingPerMin:  d.Night.WaitingPerMinute,
		NightSpeedThreshold: d.Night.SpeedThresholdKmh,

		GovernmentFee: d.Day.GovernmentFee,
		ActivatedAt:   &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}).Error
}
