package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dairypro/internal/settlement/domain"
	"gorm.io/gorm"
)

type store struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.RecordStore {
	return &store{db: db}
}

func (s *store) FarmerPricing(ctx context.Context, farmerID snowflake.ID) (*domain.FarmerPricing, error) {
	var row struct {
		ID        snowflake.ID `gorm:"column:id"`
		Code      string       `gorm:"column:code"`
		Name      string       `gorm:"column:name"`
		RateType  string       `gorm:"column:rate_type"`
		FatRate   float64      `gorm:"column:fat_rate"`
		SnfRate   float64      `gorm:"column:snf_rate"`
		FixedRate float64      `gorm:"column:fixed_rate"`
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, code, name, rate_type, fat_rate, snf_rate, fixed_rate
		 FROM farmers
		 WHERE id = ?`,
		farmerID,
	).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &domain.FarmerPricing{
		FarmerID:  row.ID,
		Code:      row.Code,
		Name:      row.Name,
		RateType:  domain.RateType(row.RateType),
		FatRate:   row.FatRate,
		SnfRate:   row.SnfRate,
		FixedRate: row.FixedRate,
	}, nil
}

func (s *store) Collections(ctx context.Context, farmerID snowflake.ID, from, to time.Time) ([]domain.CollectionRecord, error) {
	var rows []collectionRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, date, shift, quantity, fat, snf
		 FROM milk_collections
		 WHERE farmer_id = ? AND date >= ? AND date <= ?
		 ORDER BY date ASC, id ASC`,
		farmerID, from, to,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]domain.CollectionRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

func (s *store) LastPositiveFat(ctx context.Context, farmerID snowflake.ID, before time.Time) (*domain.CollectionRecord, error) {
	var row collectionRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, date, shift, quantity, fat, snf
		 FROM milk_collections
		 WHERE farmer_id = ? AND date < ? AND fat > 0
		 ORDER BY date DESC, id DESC
		 LIMIT 1`,
		farmerID, before,
	).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	record := row.record()
	return &record, nil
}

func (s *store) TotalAdvances(ctx context.Context, farmerID snowflake.ID) (float64, error) {
	var row struct {
		Total float64 `gorm:"column:total"`
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) AS total
		 FROM advances
		 WHERE farmer_id = ?`,
		farmerID,
	).Scan(&row).Error
	return row.Total, err
}

type collectionRow struct {
	ID       snowflake.ID `gorm:"column:id"`
	Date     time.Time    `gorm:"column:date"`
	Shift    string       `gorm:"column:shift"`
	Quantity float64      `gorm:"column:quantity"`
	Fat      float64      `gorm:"column:fat"`
	Snf      float64      `gorm:"column:snf"`
}

func (r collectionRow) record() domain.CollectionRecord {
	return domain.CollectionRecord{
		ID:       r.ID,
		Date:     r.Date,
		Shift:    r.Shift,
		Quantity: r.Quantity,
		Fat:      r.Fat,
		Snf:      r.Snf,
	}
}
