package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Shift is the collection slot within a day.
type Shift string

const (
	ShiftMorning Shift = "MORNING"
	ShiftEvening Shift = "EVENING"
)

func (s Shift) Valid() bool {
	return s == ShiftMorning || s == ShiftEvening
}

// MilkCollection is one raw intake. Rate and TotalAmount are the
// intake-time preview priced with this record's own fat/snf; the
// settlement statement is the source of truth for payable amounts.
type MilkCollection struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	FarmerID    snowflake.ID `gorm:"column:farmer_id;not null;index" json:"farmerId"`
	Date        time.Time    `gorm:"not null" json:"date"`
	Shift       Shift        `gorm:"type:varchar(16);not null;default:MORNING" json:"shift"`
	Quantity    float64      `gorm:"not null;default:0" json:"quantity"`
	Fat         float64      `gorm:"not null;default:0" json:"fat"`
	Snf         float64      `gorm:"not null;default:0" json:"snf"`
	Rate        float64      `gorm:"not null;default:0" json:"rate"`
	TotalAmount float64      `gorm:"column:total_amount;not null;default:0" json:"totalAmount"`
	CreatedAt   time.Time    `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updatedAt"`
}

func (MilkCollection) TableName() string { return "milk_collections" }
