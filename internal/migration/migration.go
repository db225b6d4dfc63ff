// Package migration applies the schema on startup.
package migration

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/transpolabs/transpo/internal/driverauth"
	meterdomain "github.com/transpolabs/transpo/internal/meter/domain"
	ratedomain "github.com/transpolabs/transpo/internal/ratecard/domain"
)

var Module = fx.Module("migration",
	fx.Invoke(Run),
)

func Run(db *gorm.DB, log *zap.Logger) error {
	models := []any{
		&ratedomain.RateCardVersion{},
		&meterdomain.Trip{},
		&meterdomain.FareSnapshot{},
		&meterdomain.ReceiptRecord{},
		&driverauth.DriverCredential{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return err
	}
	log.Info("schema migrated", zap.Int("models", len(models)))
	return nil
}
