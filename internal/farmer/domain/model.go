package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	settlementdomain "github.com/smallbiznis/dairypro/internal/settlement/domain"
)

// MilkType labels the animal source for dashboard splits.
type MilkType string

const (
	MilkTypeCow     MilkType = "COW"
	MilkTypeBuffalo MilkType = "BUFFALO"
)

func (m MilkType) Valid() bool {
	return m == MilkTypeCow || m == MilkTypeBuffalo
}

type Farmer struct {
	ID        snowflake.ID              `gorm:"primaryKey" json:"id"`
	Code      string                    `gorm:"type:varchar(64);not null;uniqueIndex" json:"code"`
	Name      string                    `gorm:"type:varchar(255);not null" json:"name"`
	Phone     string                    `gorm:"type:varchar(32);not null" json:"phone"`
	Address   string                    `gorm:"type:text;not null" json:"address"`
	MilkType  MilkType                  `gorm:"type:varchar(16);not null;default:COW" json:"milkType"`
	RateType  settlementdomain.RateType `gorm:"type:varchar(16);not null;default:FAT_SNF" json:"rateType"`
	FatRate   float64                   `gorm:"not null;default:0" json:"fatRate"`
	SnfRate   float64                   `gorm:"not null;default:0" json:"snfRate"`
	FixedRate float64                   `gorm:"not null;default:0" json:"fixedRate"`
	CreatedAt time.Time                 `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time                 `gorm:"not null" json:"updatedAt"`
}

func (Farmer) TableName() string { return "farmers" }

// Pricing returns the settlement pricing snapshot for this farmer.
func (f Farmer) Pricing() settlementdomain.FarmerPricing {
	return settlementdomain.FarmerPricing{
		FarmerID:  f.ID,
		Code:      f.Code,
		Name:      f.Name,
		RateType:  f.RateType,
		FatRate:   f.FatRate,
		SnfRate:   f.SnfRate,
		FixedRate: f.FixedRate,
	}
}
