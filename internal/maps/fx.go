package maps

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/transpolabs/transpo/internal/config"
)

var Module = fx.Module("maps",
	fx.Provide(NewProvider),
)

func NewProvider(cfg config.Config, log *zap.Logger) (Provider, error) {
	switch cfg.Maps.Provider {
	case "google":
		p, err := NewGoogleProvider(cfg.Maps.GoogleAPIKey)
		if err != nil {
			return nil, err
		}
		log.Info("maps provider ready", zap.String("provider", "google"))
		return p, nil
	default:
		log.Info("maps provider ready", zap.String("provider", "mock"))
		return NewMockProvider(), nil
	}
}
