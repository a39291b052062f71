package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Advance is money paid to a farmer ahead of settlement. Advances are
// lifetime debt; the statement deducts their running sum from net pay.
type Advance struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	FarmerID    snowflake.ID `gorm:"column:farmer_id;not null;index" json:"farmerId"`
	Amount      float64      `gorm:"not null;default:0" json:"amount"`
	Date        time.Time    `gorm:"not null" json:"date"`
	Description string       `gorm:"type:text;not null" json:"description"`
	CreatedAt   time.Time    `gorm:"not null" json:"createdAt"`
}

func (Advance) TableName() string { return "advances" }

type CreateAdvanceRequest struct {
	FarmerID    string    `json:"farmerId" binding:"required"`
	Amount      float64   `json:"amount" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
	Description string    `json:"description"`
}

type Service interface {
	Create(ctx context.Context, req CreateAdvanceRequest) (Advance, error)
	ListByFarmer(ctx context.Context, farmerID string) ([]Advance, error)
}

var (
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidAmount  = errors.New("invalid_amount")
	ErrFarmerNotFound = errors.New("farmer_not_found")
)
