package advance

import (
	"github.com/smallbiznis/dairypro/internal/advance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("advance.service",
	fx.Provide(service.New),
)
