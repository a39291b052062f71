package domain

import (
	"context"
	"errors"

	settlementdomain "github.com/smallbiznis/dairypro/internal/settlement/domain"
	"github.com/smallbiznis/dairypro/pkg/db/pagination"
)

type CreateFarmerRequest struct {
	Code      string                    `json:"code"`
	Name      string                    `json:"name" binding:"required"`
	Phone     string                    `json:"phone"`
	Address   string                    `json:"address"`
	MilkType  MilkType                  `json:"milkType"`
	RateType  settlementdomain.RateType `json:"rateType"`
	FatRate   float64                   `json:"fatRate"`
	SnfRate   float64                   `json:"snfRate"`
	FixedRate float64                   `json:"fixedRate"`
}

type UpdateFarmerRequest struct {
	Name      *string                    `json:"name"`
	Phone     *string                    `json:"phone"`
	Address   *string                    `json:"address"`
	MilkType  *MilkType                  `json:"milkType"`
	RateType  *settlementdomain.RateType `json:"rateType"`
	FatRate   *float64                   `json:"fatRate"`
	SnfRate   *float64                   `json:"snfRate"`
	FixedRate *float64                   `json:"fixedRate"`
}

type ListFarmerRequest struct {
	pagination.Pagination
	Search string `form:"search"`
}

type Service interface {
	Create(ctx context.Context, req CreateFarmerRequest) (Farmer, error)
	List(ctx context.Context, req ListFarmerRequest) ([]Farmer, error)
	GetByID(ctx context.Context, id string) (Farmer, error)
	Update(ctx context.Context, id string, req UpdateFarmerRequest) (Farmer, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidMilkType = errors.New("invalid_milk_type")
	ErrInvalidRateType = errors.New("invalid_rate_type")
	ErrInvalidID       = errors.New("invalid_id")
	ErrCodeTaken       = errors.New("farmer_code_taken")
	ErrNotFound        = errors.New("farmer_not_found")
)
