package meter

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/transpolabs/transpo/internal/config"
	"github.com/transpolabs/transpo/internal/meter/domain"
	"github.com/transpolabs/transpo/internal/meter/livefare"
	"github.com/transpolabs/transpo/internal/meter/service"
	"github.com/transpolabs/transpo/internal/meter/store"
)

var Module = fx.Module("meter.service",
	fx.Provide(
		func() domain.Store { return store.NewMemory() },
		func(rdb *redis.Client, cfg config.Config) *livefare.Cache {
			return livefare.NewCache(rdb, cfg.Meter.LiveFareTTL)
		},
		service.NewService,
	),
)
