package estimate

import "go.uber.org/fx"

var Module = fx.Module("estimate.service",
	fx.Provide(NewService),
)
