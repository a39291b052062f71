package domain

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

// CompanySettings is a singleton row; SettingsID is its fixed primary key.
const SettingsID int64 = 1

type CompanySettings struct {
	ID          int64             `gorm:"primaryKey" json:"id"`
	CompanyName string            `gorm:"column:company_name;type:varchar(255);not null" json:"companyName"`
	Address     string            `gorm:"type:text;not null" json:"address"`
	Phone       string            `gorm:"type:varchar(32);not null" json:"phone"`
	Metadata    datatypes.JSONMap `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time         `gorm:"not null" json:"updatedAt"`
}

func (CompanySettings) TableName() string { return "company_settings" }

type UpdateSettingsRequest struct {
	CompanyName *string        `json:"companyName"`
	Address     *string        `json:"address"`
	Phone       *string        `json:"phone"`
	Metadata    map[string]any `json:"metadata"`
}

type Service interface {
	Get(ctx context.Context) (CompanySettings, error)
	Update(ctx context.Context, req UpdateSettingsRequest) (CompanySettings, error)
}
