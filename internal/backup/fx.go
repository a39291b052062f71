package backup

import (
	"github.com/smallbiznis/dairypro/internal/backup/service"
	"go.uber.org/fx"
)

var Module = fx.Module("backup.service",
	fx.Provide(service.New),
)
