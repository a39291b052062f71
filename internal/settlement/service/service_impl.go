package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dairypro/internal/settlement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log   *zap.Logger
	store domain.RecordStore
}

type ServiceParam struct {
	fx.In

	Log   *zap.Logger
	Store domain.RecordStore
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:   p.Log.Named("settlement.service"),
		store: p.Store,
	}
}

// Statement computes the settlement for one farmer and period.
//
// The computation runs in five passes: back-fill missing quality
// readings from the farmer's most recent prior record, aggregate
// quantity and quality, price the whole period with one blended rate,
// deduct lifetime advances, and sort the transactions chronologically.
// Pricing is period-level on purpose: the per-record amounts captured at
// intake time are an advisory preview, never the payable source of truth.
func (s *Service) Statement(ctx context.Context, farmerID snowflake.ID, from, to time.Time) (*domain.Statement, error) {
	if to.Before(from) {
		return nil, domain.ErrInvalidPeriod
	}

	pricing, err := s.store.FarmerPricing(ctx, farmerID)
	if err != nil {
		return nil, err
	}
	if pricing == nil {
		return nil, domain.ErrFarmerNotFound
	}
	if !pricing.RateType.Valid() {
		// Misconfigured pricing must surface, never silently fall back
		// to the fixed rate.
		return nil, domain.ErrUnknownRateType
	}

	records, err := s.store.Collections(ctx, farmerID, from, to)
	if err != nil {
		return nil, err
	}

	statement := &domain.Statement{
		Farmer:       *pricing,
		PeriodStart:  from,
		PeriodEnd:    to,
		Transactions: []domain.Transaction{},
	}
	if len(records) == 0 {
		return statement, nil
	}

	transactions, err := s.backfill(ctx, farmerID, records)
	if err != nil {
		return nil, err
	}

	var (
		totalQuantity float64
		fatSum        float64
		snfSum        float64
		measured      int
	)
	for _, tx := range transactions {
		totalQuantity += tx.Quantity
		if tx.EffectiveFat > 0 {
			fatSum += tx.EffectiveFat
			snfSum += tx.EffectiveSnf
			measured++
		}
	}

	var avgFat, avgSnf float64
	if measured > 0 {
		avgFat = fatSum / float64(measured)
		avgSnf = snfSum / float64(measured)
	}

	appliedRate, err := appliedRate(*pricing, avgFat, avgSnf)
	if err != nil {
		return nil, err
	}

	grossAmount := totalQuantity * appliedRate

	advanceDeducted, err := s.store.TotalAdvances(ctx, farmerID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		if transactions[i].Date.Equal(transactions[j].Date) {
			return transactions[i].ID < transactions[j].ID
		}
		return transactions[i].Date.Before(transactions[j].Date)
	})

	statement.Transactions = transactions
	statement.Summary = domain.Summary{
		AvgFat:          avgFat,
		AvgSnf:          avgSnf,
		TotalQuantity:   totalQuantity,
		AppliedRate:     appliedRate,
		GrossAmount:     grossAmount,
		AdvanceDeducted: advanceDeducted,
		NetPayable:      roundMoney(grossAmount) - advanceDeducted,
	}
	return statement, nil
}

// backfill resolves the effective quality per record. Records missing a
// fat reading reuse the farmer's most recent strictly-earlier record
// with fat > 0; per-farmer and chronological, not per-shift.
func (s *Service) backfill(ctx context.Context, farmerID snowflake.ID, records []domain.CollectionRecord) ([]domain.Transaction, error) {
	transactions := make([]domain.Transaction, 0, len(records))
	for _, record := range records {
		record.Quantity = clampNonNegative(record.Quantity)
		record.Fat = clampNonNegative(record.Fat)
		record.Snf = clampNonNegative(record.Snf)

		tx := domain.Transaction{
			CollectionRecord: record,
			EffectiveFat:     record.Fat,
			EffectiveSnf:     record.Snf,
		}
		if record.Fat == 0 {
			prior, err := s.store.LastPositiveFat(ctx, farmerID, record.Date)
			if err != nil {
				return nil, err
			}
			if prior == nil {
				// No usable history: the record carries no effective
				// quality at all, even when snf alone was measured.
				tx.EffectiveSnf = 0
			} else {
				tx.EffectiveFat = prior.Fat
				tx.EffectiveSnf = prior.Snf
				tx.Backfilled = true
			}
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

func appliedRate(pricing domain.FarmerPricing, avgFat, avgSnf float64) (float64, error) {
	switch pricing.RateType {
	case domain.RateTypeFatSnf:
		return avgFat*pricing.FatRate + avgSnf*pricing.SnfRate, nil
	case domain.RateTypeFatOnly:
		return avgFat * pricing.FatRate, nil
	case domain.RateTypeFixed:
		return pricing.FixedRate, nil
	default:
		return 0, domain.ErrUnknownRateType
	}
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// roundMoney rounds to the nearest integer currency unit, halves round
// up. Rates and quantities are clamped non-negative upstream, so the
// gross amount here is never below zero.
func roundMoney(raw float64) float64 {
	return math.Floor(raw + 0.5)
}
