package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Product struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Unit         string       `gorm:"type:varchar(32);not null" json:"unit"`
	Stock        float64      `gorm:"not null;default:0" json:"stock"`
	SellingPrice float64      `gorm:"column:selling_price;not null;default:0" json:"sellingPrice"`
	CreatedAt    time.Time    `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

// Production is one stock-in event, kept as an append-only log.
type Production struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ProductName string       `gorm:"column:product_name;type:varchar(255);not null" json:"productName"`
	OutputQty   float64      `gorm:"column:output_qty;not null;default:0" json:"outputQty"`
	Date        time.Time    `gorm:"not null" json:"date"`
	Notes       string       `gorm:"type:text;not null" json:"notes"`
	CreatedAt   time.Time    `gorm:"not null" json:"createdAt"`
}

func (Production) TableName() string { return "productions" }

type CreateProductRequest struct {
	Name         string  `json:"name" binding:"required"`
	Unit         string  `json:"unit"`
	Stock        float64 `json:"stock"`
	SellingPrice float64 `json:"sellingPrice"`
}

type UpdateProductRequest struct {
	Name         *string  `json:"name"`
	Unit         *string  `json:"unit"`
	SellingPrice *float64 `json:"sellingPrice"`
}

type AddStockRequest struct {
	ProductID string    `json:"productId" binding:"required"`
	Quantity  float64   `json:"quantity" binding:"required"`
	Date      time.Time `json:"date"`
	Notes     string    `json:"notes"`
}

type Service interface {
	Create(ctx context.Context, req CreateProductRequest) (Product, error)
	List(ctx context.Context) ([]Product, error)
	Update(ctx context.Context, id string, req UpdateProductRequest) (Product, error)
	Delete(ctx context.Context, id string) error
	AddStock(ctx context.Context, req AddStockRequest) (Product, error)
	StockHistory(ctx context.Context) ([]Production, error)
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrNameTaken         = errors.New("product_name_taken")
	ErrNotFound          = errors.New("product_not_found")
	ErrReferencedBySales = errors.New("product_referenced_by_sales")
)
