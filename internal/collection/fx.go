package collection

import (
	"github.com/smallbiznis/dairypro/internal/collection/service"
	"go.uber.org/fx"
)

var Module = fx.Module("collection.service",
	fx.Provide(service.New),
)
