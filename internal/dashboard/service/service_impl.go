package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/smallbiznis/dairypro/internal/cache"
	"github.com/smallbiznis/dairypro/internal/clock"
	"github.com/smallbiznis/dairypro/internal/config"
	"github.com/smallbiznis/dairypro/internal/dashboard/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const statsTTL = 5 * time.Minute

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	DairyCfg *config.DairyConfigHolder
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	dairyCfg *config.DairyConfigHolder
	stats    cache.Cache[string, domain.Stats]
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("dashboard.service"),
		clock:    p.Clock,
		dairyCfg: p.DairyCfg,
		stats:    cache.NewTTLCache[string, domain.Stats](),
	}
}

func (s *Service) Stats(ctx context.Context, req domain.StatsRequest) (domain.Stats, error) {
	from, to, key, err := s.resolvePeriod(req)
	if err != nil {
		return domain.Stats{}, err
	}

	if cached, ok := s.stats.Get(key); ok {
		return cached, nil
	}

	stats, err := s.computeStats(ctx, from, to)
	if err != nil {
		return domain.Stats{}, err
	}

	s.stats.Set(key, stats, statsTTL)
	return stats, nil
}

// RefreshStats recomputes and re-caches the default (today) stats view.
// The background scheduler calls this so the landing dashboard stays warm.
func (s *Service) RefreshStats(ctx context.Context) error {
	from, to, key, err := s.resolvePeriod(domain.StatsRequest{})
	if err != nil {
		return err
	}
	stats, err := s.computeStats(ctx, from, to)
	if err != nil {
		return err
	}
	s.stats.Set(key, stats, statsTTL)
	return nil
}

func (s *Service) computeStats(ctx context.Context, from, to time.Time) (domain.Stats, error) {
	rows, err := s.collectionRows(ctx, &from, &to)
	if err != nil {
		return domain.Stats{}, err
	}

	stats := domain.Stats{
		PeriodStart: from,
		PeriodEnd:   to,
		Trend:       []domain.TrendPoint{},
	}

	var fatSum, snfSum float64
	var measured int
	trend := map[string]float64{}
	for _, row := range rows {
		stats.TotalLiters += row.Quantity
		stats.MilkCost += row.TotalAmount
		switch row.MilkType {
		case "BUFFALO":
			stats.BuffaloLiters += row.Quantity
		default:
			stats.CowLiters += row.Quantity
		}
		if row.Fat > 0 {
			fatSum += row.Fat
			snfSum += row.Snf
			measured++
		}
		day := row.Date.UTC().Format("2006-01-02")
		trend[day] += row.Quantity
	}
	if measured > 0 {
		stats.AvgFat = fatSum / float64(measured)
		stats.AvgSnf = snfSum / float64(measured)
	}

	days := make([]string, 0, len(trend))
	for day := range trend {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		stats.Trend = append(stats.Trend, domain.TrendPoint{Date: day, Liters: trend[day]})
	}

	if stats.Revenue, err = s.sumInRange(ctx, "sales", "total_amount", &from, &to); err != nil {
		return domain.Stats{}, err
	}
	if stats.Expenses, err = s.sumInRange(ctx, "expenses", "amount", &from, &to); err != nil {
		return domain.Stats{}, err
	}
	stats.NetProfit = stats.Revenue - stats.MilkCost - stats.Expenses

	pending, err := s.pendingPayments(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	stats.PendingPayments = pending

	return stats, nil
}

// pendingPayments estimates the lifetime milk value still owed across all
// farmers: every collection priced with the farmer's formula, using the
// configured default fat/snf for records without a reading, minus every
// advance ever paid.
func (s *Service) pendingPayments(ctx context.Context) (float64, error) {
	rows, err := s.collectionRows(ctx, nil, nil)
	if err != nil {
		return 0, err
	}

	defaults := s.dairyCfg.Current()
	var value float64
	for _, row := range rows {
		fat := row.Fat
		snf := row.Snf
		if fat <= 0 {
			fat = defaults.DefaultFat
			snf = defaults.DefaultSnf
		}

		var rate float64
		switch row.RateType {
		case "FAT_ONLY":
			rate = fat * row.FatRate
		case "FIXED":
			rate = row.FixedRate
		default:
			rate = fat*row.FatRate + snf*row.SnfRate
		}
		value += row.Quantity * rate
	}

	var advances float64
	if err := s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) FROM advances`,
	).Scan(&advances).Error; err != nil {
		return 0, err
	}

	return value - advances, nil
}

func (s *Service) Ledger(ctx context.Context, from, to time.Time) (domain.Ledger, error) {
	if to.Before(from) {
		return domain.Ledger{}, domain.ErrInvalidPeriod
	}

	ledger := domain.Ledger{Rows: []domain.LedgerRow{}}

	collections, err := s.collectionRows(ctx, &from, &to)
	if err != nil {
		return domain.Ledger{}, err
	}
	for _, row := range collections {
		ledger.Rows = append(ledger.Rows, domain.LedgerRow{
			Date:        row.Date,
			Type:        "MILK",
			Description: fmt.Sprintf("Milk intake %s (%.1f L)", row.FarmerName, row.Quantity),
			Debit:       math.Floor(row.TotalAmount + 0.5),
		})
	}

	var expenseRows []struct {
		Date        time.Time `gorm:"column:date"`
		Category    string    `gorm:"column:category"`
		Description string    `gorm:"column:description"`
		Amount      float64   `gorm:"column:amount"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT date, category, description, amount
		 FROM expenses WHERE date >= ? AND date <= ?`,
		from, to,
	).Scan(&expenseRows).Error; err != nil {
		return domain.Ledger{}, err
	}
	for _, row := range expenseRows {
		description := row.Category
		if strings.TrimSpace(row.Description) != "" {
			description = fmt.Sprintf("%s: %s", row.Category, row.Description)
		}
		ledger.Rows = append(ledger.Rows, domain.LedgerRow{
			Date:        row.Date,
			Type:        "EXPENSE",
			Description: description,
			Debit:       row.Amount,
		})
	}

	var saleRows []struct {
		Date         time.Time `gorm:"column:date"`
		CustomerName string    `gorm:"column:customer_name"`
		TotalAmount  float64   `gorm:"column:total_amount"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT date, customer_name, total_amount
		 FROM sales WHERE date >= ? AND date <= ?`,
		from, to,
	).Scan(&saleRows).Error; err != nil {
		return domain.Ledger{}, err
	}
	for _, row := range saleRows {
		ledger.Rows = append(ledger.Rows, domain.LedgerRow{
			Date:        row.Date,
			Type:        "SALE",
			Description: fmt.Sprintf("Sale to %s", row.CustomerName),
			Credit:      row.TotalAmount,
		})
	}

	sort.SliceStable(ledger.Rows, func(i, j int) bool {
		return ledger.Rows[i].Date.Before(ledger.Rows[j].Date)
	})
	for _, row := range ledger.Rows {
		ledger.TotalDebit += row.Debit
		ledger.TotalCredit += row.Credit
	}
	return ledger, nil
}

func (s *Service) Reports(ctx context.Context, req domain.ReportRequest) ([]domain.ReportRow, error) {
	now := s.clock.Now()
	year := req.Year
	if year == 0 {
		year = now.Year()
	}

	reportType := strings.ToLower(strings.TrimSpace(req.Type))
	switch reportType {
	case "", "monthly":
		return s.monthlyReport(ctx, year)
	case "daily":
		month := req.Month
		if month < 1 || month > 12 {
			month = int(now.Month())
		}
		return s.dailyReport(ctx, year, month)
	default:
		return nil, domain.ErrInvalidReportType
	}
}

func (s *Service) monthlyReport(ctx context.Context, year int) ([]domain.ReportRow, error) {
	rows := make([]domain.ReportRow, 0, 12)
	for month := 1; month <= 12; month++ {
		from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)

		row, err := s.reportRow(ctx, from.Format("2006-01"), from, to)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Service) dailyReport(ctx context.Context, year, month int) ([]domain.ReportRow, error) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	rows := make([]domain.ReportRow, 0, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		from := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 0, 1).Add(-time.Nanosecond)

		row, err := s.reportRow(ctx, from.Format("2006-01-02"), from, to)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Service) reportRow(ctx context.Context, period string, from, to time.Time) (domain.ReportRow, error) {
	row := domain.ReportRow{Period: period}

	var err error
	if row.MilkCost, err = s.sumInRange(ctx, "milk_collections", "total_amount", &from, &to); err != nil {
		return domain.ReportRow{}, err
	}
	if row.Expenses, err = s.sumInRange(ctx, "expenses", "amount", &from, &to); err != nil {
		return domain.ReportRow{}, err
	}
	if row.Revenue, err = s.sumInRange(ctx, "sales", "total_amount", &from, &to); err != nil {
		return domain.ReportRow{}, err
	}
	row.NetProfit = row.Revenue - row.MilkCost - row.Expenses
	return row, nil
}

type collectionRow struct {
	Date        time.Time `gorm:"column:date"`
	Quantity    float64   `gorm:"column:quantity"`
	Fat         float64   `gorm:"column:fat"`
	Snf         float64   `gorm:"column:snf"`
	TotalAmount float64   `gorm:"column:total_amount"`
	MilkType    string    `gorm:"column:milk_type"`
	RateType    string    `gorm:"column:rate_type"`
	FatRate     float64   `gorm:"column:fat_rate"`
	SnfRate     float64   `gorm:"column:snf_rate"`
	FixedRate   float64   `gorm:"column:fixed_rate"`
	FarmerName  string    `gorm:"column:farmer_name"`
}

func (s *Service) collectionRows(ctx context.Context, from, to *time.Time) ([]collectionRow, error) {
	query := `SELECT c.date, c.quantity, c.fat, c.snf, c.total_amount,
	                 f.milk_type, f.rate_type, f.fat_rate, f.snf_rate, f.fixed_rate,
	                 f.name AS farmer_name
	          FROM milk_collections c
	          JOIN farmers f ON f.id = c.farmer_id`
	args := []any{}
	if from != nil && to != nil {
		query += ` WHERE c.date >= ? AND c.date <= ?`
		args = append(args, *from, *to)
	}

	var rows []collectionRow
	err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error
	return rows, err
}

func (s *Service) sumInRange(ctx context.Context, table, column string, from, to *time.Time) (float64, error) {
	query := fmt.Sprintf(`SELECT COALESCE(SUM(%s), 0) FROM %s WHERE date >= ? AND date <= ?`, column, table)
	var total float64
	err := s.db.WithContext(ctx).Raw(query, *from, *to).Scan(&total).Error
	return total, err
}

func (s *Service) resolvePeriod(req domain.StatsRequest) (time.Time, time.Time, string, error) {
	now := s.clock.Now()

	if date := strings.TrimSpace(req.Date); date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, "", domain.ErrInvalidRange
		}
		from := day
		to := day.AddDate(0, 0, 1).Add(-time.Nanosecond)
		return from, to, "date|" + date, nil
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch strings.ToLower(strings.TrimSpace(req.Range)) {
	case "", "today":
		return startOfDay, startOfDay.AddDate(0, 0, 1).Add(-time.Nanosecond), "range|today|" + startOfDay.Format("2006-01-02"), nil
	case "week":
		from := startOfDay.AddDate(0, 0, -6)
		return from, startOfDay.AddDate(0, 0, 1).Add(-time.Nanosecond), "range|week|" + startOfDay.Format("2006-01-02"), nil
	case "month":
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return from, startOfDay.AddDate(0, 0, 1).Add(-time.Nanosecond), "range|month|" + startOfDay.Format("2006-01-02"), nil
	default:
		return time.Time{}, time.Time{}, "", domain.ErrInvalidRange
	}
}
