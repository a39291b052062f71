package domain

import (
	"context"
	"time"

	advancedomain "github.com/smallbiznis/dairypro/internal/advance/domain"
	authdomain "github.com/smallbiznis/dairypro/internal/auth/domain"
	collectiondomain "github.com/smallbiznis/dairypro/internal/collection/domain"
	expensedomain "github.com/smallbiznis/dairypro/internal/expense/domain"
	farmerdomain "github.com/smallbiznis/dairypro/internal/farmer/domain"
	productdomain "github.com/smallbiznis/dairypro/internal/product/domain"
	saledomain "github.com/smallbiznis/dairypro/internal/sale/domain"
	settingsdomain "github.com/smallbiznis/dairypro/internal/settings/domain"
)

// Snapshot is a full JSON export of the operational tables. Session and
// credential data is never included.
type Snapshot struct {
	ExportedAt  time.Time                         `json:"exportedAt"`
	Farmers     []farmerdomain.Farmer             `json:"farmers"`
	Collections []collectiondomain.MilkCollection `json:"collections"`
	Advances    []advancedomain.Advance           `json:"advances"`
	Products    []productdomain.Product           `json:"products"`
	Productions []productdomain.Production        `json:"productions"`
	Sales       []saledomain.Sale                 `json:"sales"`
	Expenses    []expensedomain.Expense           `json:"expenses"`
	Settings    *settingsdomain.CompanySettings   `json:"settings,omitempty"`
	Users       []authdomain.User                 `json:"users"`
}

type Service interface {
	Export(ctx context.Context) (*Snapshot, error)
}
