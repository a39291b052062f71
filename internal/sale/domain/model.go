package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Sale struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerName string        `gorm:"column:customer_name;type:varchar(255);not null" json:"customerName"`
	ProductID    *snowflake.ID `gorm:"column:product_id" json:"productId,omitempty"`
	Quantity     float64       `gorm:"not null;default:0" json:"quantity"`
	Rate         float64       `gorm:"not null;default:0" json:"rate"`
	TotalAmount  float64       `gorm:"column:total_amount;not null;default:0" json:"totalAmount"`
	Date         time.Time     `gorm:"not null" json:"date"`
	CreatedAt    time.Time     `gorm:"not null" json:"createdAt"`
}

func (Sale) TableName() string { return "sales" }

type CreateSaleRequest struct {
	CustomerName string    `json:"customerName"`
	ProductID    string    `json:"productId"`
	Quantity     float64   `json:"quantity" binding:"required"`
	Rate         float64   `json:"rate"`
	Date         time.Time `json:"date" binding:"required"`
}

type Service interface {
	Create(ctx context.Context, req CreateSaleRequest) (Sale, error)
	List(ctx context.Context) ([]Sale, error)
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrProductNotFound = errors.New("product_not_found")
)
