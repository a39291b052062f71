package farmer

import (
	"github.com/smallbiznis/dairypro/internal/farmer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("farmer.service",
	fx.Provide(service.New),
)
