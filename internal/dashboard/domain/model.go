package domain

import (
	"context"
	"errors"
	"time"
)

type StatsRequest struct {
	Range string `form:"range"` // today | week | month
	Date  string `form:"date"`  // YYYY-MM-DD, overrides Range
}

type TrendPoint struct {
	Date   string  `json:"date"`
	Liters float64 `json:"liters"`
}

type Stats struct {
	PeriodStart     time.Time    `json:"periodStart"`
	PeriodEnd       time.Time    `json:"periodEnd"`
	TotalLiters     float64      `json:"totalLiters"`
	MilkCost        float64      `json:"milkCost"`
	CowLiters       float64      `json:"cowLiters"`
	BuffaloLiters   float64      `json:"buffaloLiters"`
	AvgFat          float64      `json:"avgFat"`
	AvgSnf          float64      `json:"avgSnf"`
	Revenue         float64      `json:"revenue"`
	Expenses        float64      `json:"expenses"`
	NetProfit       float64      `json:"netProfit"`
	PendingPayments float64      `json:"pendingPayments"`
	Trend           []TrendPoint `json:"trend"`
}

type LedgerRow struct {
	Date        time.Time `json:"date"`
	Type        string    `json:"type"` // MILK | EXPENSE | SALE
	Description string    `json:"description"`
	Debit       float64   `json:"debit"`
	Credit      float64   `json:"credit"`
}

type Ledger struct {
	Rows        []LedgerRow `json:"rows"`
	TotalDebit  float64     `json:"totalDebit"`
	TotalCredit float64     `json:"totalCredit"`
}

type ReportRow struct {
	Period    string  `json:"period"` // 2025-01 or 2025-01-15
	MilkCost  float64 `json:"milkCost"`
	Expenses  float64 `json:"expenses"`
	Revenue   float64 `json:"revenue"`
	NetProfit float64 `json:"netProfit"`
}

type ReportRequest struct {
	Type  string `form:"type"` // monthly | daily
	Year  int    `form:"year"`
	Month int    `form:"month"` // daily reports only
}

type Service interface {
	Stats(ctx context.Context, req StatsRequest) (Stats, error)
	RefreshStats(ctx context.Context) error
	Ledger(ctx context.Context, from, to time.Time) (Ledger, error)
	Reports(ctx context.Context, req ReportRequest) ([]ReportRow, error)
}

var (
	ErrInvalidRange      = errors.New("invalid_range")
	ErrInvalidPeriod     = errors.New("invalid_period")
	ErrInvalidReportType = errors.New("invalid_report_type")
)
