package service

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	advancedomain "github.com/smallbiznis/dairypro/internal/advance/domain"
	"github.com/smallbiznis/dairypro/internal/clock"
	collectiondomain "github.com/smallbiznis/dairypro/internal/collection/domain"
	"github.com/smallbiznis/dairypro/internal/config"
	"github.com/smallbiznis/dairypro/internal/dashboard/domain"
	expensedomain "github.com/smallbiznis/dairypro/internal/expense/domain"
	farmerdomain "github.com/smallbiznis/dairypro/internal/farmer/domain"
	saledomain "github.com/smallbiznis/dairypro/internal/sale/domain"
	settlementdomain "github.com/smallbiznis/dairypro/internal/settlement/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testDay = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func setupDashboardService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&farmerdomain.Farmer{},
		&collectiondomain.MilkCollection{},
		&advancedomain.Advance{},
		&saledomain.Sale{},
		&expensedomain.Expense{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	holder, err := config.NewDairyConfigHolder()
	if err != nil {
		t.Fatalf("dairy config: %v", err)
	}

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Clock:    clock.NewFakeClock(testDay),
		DairyCfg: holder,
	})
	return svc, db, node
}

func seedDashFarmer(t *testing.T, db *gorm.DB, node *snowflake.Node, milkType farmerdomain.MilkType, fatRate, snfRate float64) farmerdomain.Farmer {
	t.Helper()
	farmer := farmerdomain.Farmer{
		ID:       node.Generate(),
		Code:     fmt.Sprintf("F-%d", node.Generate()),
		Name:     "Mahesh",
		MilkType: milkType,
		RateType: settlementdomain.RateTypeFatSnf,
		FatRate:  fatRate,
		SnfRate:  snfRate,
	}
	if err := db.Create(&farmer).Error; err != nil {
		t.Fatalf("seed farmer: %v", err)
	}
	return farmer
}

func seedDashCollection(t *testing.T, db *gorm.DB, node *snowflake.Node, farmerID snowflake.ID, date time.Time, quantity, fat, snf, totalAmount float64) {
	t.Helper()
	rec := collectiondomain.MilkCollection{
		ID:          node.Generate(),
		FarmerID:    farmerID,
		Date:        date,
		Shift:       collectiondomain.ShiftMorning,
		Quantity:    quantity,
		Fat:         fat,
		Snf:         snf,
		TotalAmount: totalAmount,
	}
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("seed collection: %v", err)
	}
}

func TestStatsAggregatesDay(t *testing.T) {
	svc, db, node := setupDashboardService(t)
	cow := seedDashFarmer(t, db, node, farmerdomain.MilkTypeCow, 6, 3)
	buffalo := seedDashFarmer(t, db, node, farmerdomain.MilkTypeBuffalo, 7, 3)

	seedDashCollection(t, db, node, cow.ID, testDay, 10, 4, 8, 480)
	seedDashCollection(t, db, node, buffalo.ID, testDay, 6, 0, 0, 200)

	sale := saledomain.Sale{ID: node.Generate(), Quantity: 2, Rate: 100, TotalAmount: 200, Date: testDay}
	if err := db.Create(&sale).Error; err != nil {
		t.Fatalf("seed sale: %v", err)
	}
	expense := expensedomain.Expense{ID: node.Generate(), Category: "Fuel", Amount: 50, Date: testDay}
	if err := db.Create(&expense).Error; err != nil {
		t.Fatalf("seed expense: %v", err)
	}

	stats, err := svc.Stats(context.Background(), domain.StatsRequest{Range: "today"})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.TotalLiters != 16 {
		t.Fatalf("total liters = %v, want 16", stats.TotalLiters)
	}
	if stats.CowLiters != 10 || stats.BuffaloLiters != 6 {
		t.Fatalf("cow/buffalo = %v/%v, want 10/6", stats.CowLiters, stats.BuffaloLiters)
	}
	// Only the measured record enters the averages.
	if stats.AvgFat != 4 || stats.AvgSnf != 8 {
		t.Fatalf("avg fat/snf = %v/%v, want 4/8", stats.AvgFat, stats.AvgSnf)
	}
	if stats.MilkCost != 680 {
		t.Fatalf("milk cost = %v, want 680", stats.MilkCost)
	}
	if stats.NetProfit != 200-680-50 {
		t.Fatalf("net profit = %v, want %v", stats.NetProfit, 200-680-50)
	}
	if len(stats.Trend) != 1 || stats.Trend[0].Liters != 16 {
		t.Fatalf("trend = %+v, want one 16 L point", stats.Trend)
	}
}

func TestStatsServedFromCache(t *testing.T) {
	svc, db, node := setupDashboardService(t)
	farmer := seedDashFarmer(t, db, node, farmerdomain.MilkTypeCow, 6, 3)
	seedDashCollection(t, db, node, farmer.ID, testDay, 10, 4, 8, 480)

	first, err := svc.Stats(context.Background(), domain.StatsRequest{})
	if err != nil {
		t.Fatalf("first stats: %v", err)
	}

	// New data inside the TTL window is invisible until refresh.
	seedDashCollection(t, db, node, farmer.ID, testDay, 5, 4, 8, 240)

	second, err := svc.Stats(context.Background(), domain.StatsRequest{})
	if err != nil {
		t.Fatalf("second stats: %v", err)
	}
	if second.TotalLiters != first.TotalLiters {
		t.Fatal("stats inside the TTL window must come from cache")
	}

	if err := svc.RefreshStats(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	third, err := svc.Stats(context.Background(), domain.StatsRequest{})
	if err != nil {
		t.Fatalf("third stats: %v", err)
	}
	if third.TotalLiters != 15 {
		t.Fatalf("refreshed liters = %v, want 15", third.TotalLiters)
	}
}

func TestPendingPaymentsUsesQualityDefaults(t *testing.T) {
	svc, db, node := setupDashboardService(t)
	farmer := seedDashFarmer(t, db, node, farmerdomain.MilkTypeCow, 6, 3)

	// Unmeasured record priced with the configured defaults (3.5 / 8.5).
	seedDashCollection(t, db, node, farmer.ID, testDay, 10, 0, 0, 0)
	adv := advancedomain.Advance{ID: node.Generate(), FarmerID: farmer.ID, Amount: 65, Date: testDay}
	if err := db.Create(&adv).Error; err != nil {
		t.Fatalf("seed advance: %v", err)
	}

	stats, err := svc.Stats(context.Background(), domain.StatsRequest{Range: "today"})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	want := 10*(3.5*6+8.5*3) - 65
	if math.Abs(stats.PendingPayments-want) > 1e-9 {
		t.Fatalf("pending payments = %v, want %v", stats.PendingPayments, want)
	}
}

func TestLedgerMergesAndTotals(t *testing.T) {
	svc, db, node := setupDashboardService(t)
	farmer := seedDashFarmer(t, db, node, farmerdomain.MilkTypeCow, 6, 3)

	seedDashCollection(t, db, node, farmer.ID, testDay.AddDate(0, 0, 1), 10, 4, 8, 480.4)
	expense := expensedomain.Expense{ID: node.Generate(), Category: "Feed", Description: "cattle feed", Amount: 120, Date: testDay}
	if err := db.Create(&expense).Error; err != nil {
		t.Fatalf("seed expense: %v", err)
	}
	sale := saledomain.Sale{ID: node.Generate(), CustomerName: "Hotel", Quantity: 2, Rate: 100, TotalAmount: 200, Date: testDay.AddDate(0, 0, 2)}
	if err := db.Create(&sale).Error; err != nil {
		t.Fatalf("seed sale: %v", err)
	}

	ledger, err := svc.Ledger(context.Background(), testDay.AddDate(0, 0, -1), testDay.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}

	if len(ledger.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(ledger.Rows))
	}
	if ledger.Rows[0].Type != "EXPENSE" || ledger.Rows[1].Type != "MILK" || ledger.Rows[2].Type != "SALE" {
		t.Fatalf("rows out of date order: %+v", ledger.Rows)
	}
	// Milk debit is rounded for the ledger view.
	if ledger.Rows[1].Debit != 480 {
		t.Fatalf("milk debit = %v, want 480", ledger.Rows[1].Debit)
	}
	if ledger.TotalDebit != 600 || ledger.TotalCredit != 200 {
		t.Fatalf("totals = %v/%v, want 600/200", ledger.TotalDebit, ledger.TotalCredit)
	}
}

func TestLedgerInvalidPeriod(t *testing.T) {
	svc, _, _ := setupDashboardService(t)

	if _, err := svc.Ledger(context.Background(), testDay, testDay.AddDate(0, 0, -1)); err != domain.ErrInvalidPeriod {
		t.Fatalf("err = %v, want ErrInvalidPeriod", err)
	}
}

func TestReportsRejectUnknownType(t *testing.T) {
	svc, _, _ := setupDashboardService(t)

	if _, err := svc.Reports(context.Background(), domain.ReportRequest{Type: "quarterly"}); err != domain.ErrInvalidReportType {
		t.Fatalf("err = %v, want ErrInvalidReportType", err)
	}
}

func TestMonthlyReportRollsUp(t *testing.T) {
	svc, db, node := setupDashboardService(t)
	farmer := seedDashFarmer(t, db, node, farmerdomain.MilkTypeCow, 6, 3)

	seedDashCollection(t, db, node, farmer.ID, testDay, 10, 4, 8, 480)
	sale := saledomain.Sale{ID: node.Generate(), Quantity: 2, Rate: 100, TotalAmount: 200, Date: testDay}
	if err := db.Create(&sale).Error; err != nil {
		t.Fatalf("seed sale: %v", err)
	}

	rows, err := svc.Reports(context.Background(), domain.ReportRequest{Type: "monthly", Year: 2025})
	if err != nil {
		t.Fatalf("reports: %v", err)
	}
	if len(rows) != 12 {
		t.Fatalf("expected 12 rows, got %d", len(rows))
	}

	march := rows[2]
	if march.Period != "2025-03" {
		t.Fatalf("period = %s, want 2025-03", march.Period)
	}
	if march.MilkCost != 480 || march.Revenue != 200 {
		t.Fatalf("march rollup = %+v", march)
	}
	if march.NetProfit != 200-480 {
		t.Fatalf("net profit = %v, want -280", march.NetProfit)
	}
}
