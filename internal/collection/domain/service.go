package domain

import (
	"context"
	"errors"
	"time"
)

type CreateCollectionRequest struct {
	FarmerID string    `json:"farmerId" binding:"required"`
	Date     time.Time `json:"date" binding:"required"`
	Shift    Shift     `json:"shift"`
	Quantity float64   `json:"quantity" binding:"required"`
	Fat      float64   `json:"fat"`
	Snf      float64   `json:"snf"`
}

type UpdateCollectionRequest struct {
	Date     *time.Time `json:"date"`
	Shift    *Shift     `json:"shift"`
	Quantity *float64   `json:"quantity"`
	Fat      *float64   `json:"fat"`
	Snf      *float64   `json:"snf"`
}

type ListCollectionRequest struct {
	FarmerID string `form:"farmerId"`
	Limit    int    `form:"limit"`
}

type Service interface {
	Create(ctx context.Context, req CreateCollectionRequest) (MilkCollection, error)
	Recent(ctx context.Context, req ListCollectionRequest) ([]MilkCollection, error)
	Update(ctx context.Context, id string, req UpdateCollectionRequest) (MilkCollection, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidShift    = errors.New("invalid_shift")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrFarmerNotFound  = errors.New("farmer_not_found")
	ErrNotFound        = errors.New("collection_not_found")
)
