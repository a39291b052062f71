package settlement

import (
	"github.com/smallbiznis/dairypro/internal/settlement/repository"
	"github.com/smallbiznis/dairypro/internal/settlement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settlement",
	fx.Provide(repository.New),
	fx.Provide(service.NewService),
)
