// Package domain contains the settlement statement types. A statement is
// an idempotent report over a farmer's collections for a period, not a
// ledger commit.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// RateType selects which pricing formula applies to a farmer.
type RateType string

const (
	RateTypeFatSnf  RateType = "FAT_SNF"
	RateTypeFatOnly RateType = "FAT_ONLY"
	RateTypeFixed   RateType = "FIXED"
)

func (r RateType) Valid() bool {
	switch r {
	case RateTypeFatSnf, RateTypeFatOnly, RateTypeFixed:
		return true
	}
	return false
}

// FarmerPricing is the pricing snapshot used for one statement run.
// Exactly one of the rate fields drives the price, selected by RateType;
// the unused fields are ignored.
type FarmerPricing struct {
	FarmerID  snowflake.ID `json:"farmerId"`
	Code      string       `json:"code"`
	Name      string       `json:"name"`
	RateType  RateType     `json:"rateType"`
	FatRate   float64      `json:"fatRate"`
	SnfRate   float64      `json:"snfRate"`
	FixedRate float64      `json:"fixedRate"`
}

// CollectionRecord is one raw milk intake as stored.
type CollectionRecord struct {
	ID       snowflake.ID `json:"id"`
	Date     time.Time    `json:"date"`
	Shift    string       `json:"shift"`
	Quantity float64      `json:"quantity"`
	Fat      float64      `json:"fat"`
	Snf      float64      `json:"snf"`
}

// Transaction is a collection record with its effective quality after
// the back-fill pass.
type Transaction struct {
	CollectionRecord
	EffectiveFat float64 `json:"effectiveFat"`
	EffectiveSnf float64 `json:"effectiveSnf"`
	Backfilled   bool    `json:"backfilled"`
}

// Summary aggregates one statement period. GrossAmount keeps full
// precision; only NetPayable applies rounding.
type Summary struct {
	AvgFat          float64 `json:"avgFat"`
	AvgSnf          float64 `json:"avgSnf"`
	TotalQuantity   float64 `json:"totalQuantity"`
	AppliedRate     float64 `json:"appliedRate"`
	GrossAmount     float64 `json:"grossAmount"`
	AdvanceDeducted float64 `json:"advanceDeducted"`
	NetPayable      float64 `json:"netPayable"`
}

// Statement is the settlement output for one farmer and period.
type Statement struct {
	Farmer       FarmerPricing `json:"farmerConfig"`
	PeriodStart  time.Time     `json:"periodStart"`
	PeriodEnd    time.Time     `json:"periodEnd"`
	Transactions []Transaction `json:"transactions"`
	Summary      Summary       `json:"summary"`
}
