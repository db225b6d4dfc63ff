package ratecard

import (
	"go.uber.org/fx"

	"github.com/transpolabs/transpo/internal/ratecard/service"
)

var Module = fx.Module("ratecard.service",
	fx.Provide(service.NewService),
)
