package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Expense struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Category    string       `gorm:"type:varchar(64);not null" json:"category"`
	Amount      float64      `gorm:"not null;default:0" json:"amount"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Date        time.Time    `gorm:"not null" json:"date"`
	CreatedAt   time.Time    `gorm:"not null" json:"createdAt"`
}

func (Expense) TableName() string { return "expenses" }

type CreateExpenseRequest struct {
	Category    string    `json:"category" binding:"required"`
	Amount      float64   `json:"amount" binding:"required"`
	Description string    `json:"description"`
	Date        time.Time `json:"date" binding:"required"`
}

type Service interface {
	Create(ctx context.Context, req CreateExpenseRequest) (Expense, error)
	List(ctx context.Context) ([]Expense, error)
}

var (
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidCategory = errors.New("invalid_category")
)
