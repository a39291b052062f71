package pdf

import (
	"context"
	"io"

	settingsdomain "github.com/smallbiznis/dairypro/internal/settings/domain"
	settlementdomain "github.com/smallbiznis/dairypro/internal/settlement/domain"
)

type Provider interface {
	GenerateStatement(ctx context.Context, company settingsdomain.CompanySettings, statement settlementdomain.Statement) (io.Reader, error)
}
