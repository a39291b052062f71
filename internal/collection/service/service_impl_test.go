package service

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/dairypro/internal/clock"
	"github.com/smallbiznis/dairypro/internal/collection/domain"
	"github.com/smallbiznis/dairypro/internal/config"
	farmerdomain "github.com/smallbiznis/dairypro/internal/farmer/domain"
	farmerservice "github.com/smallbiznis/dairypro/internal/farmer/service"
	settlementdomain "github.com/smallbiznis/dairypro/internal/settlement/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var collectionTestNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func setupCollectionService(t *testing.T) (domain.Service, farmerdomain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&farmerdomain.Farmer{}, &domain.MilkCollection{}); err != nil {
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

	farmers := farmerservice.New(farmerservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})
	collections := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clock.NewFakeClock(collectionTestNow),
		DairyCfg: holder,
		Farmers:  farmers,
	})
	return collections, farmers, db
}

func createTestFarmer(t *testing.T, farmers farmerdomain.Service, fatRate, snfRate float64) farmerdomain.Farmer {
	t.Helper()
	farmer, err := farmers.Create(context.Background(), farmerdomain.CreateFarmerRequest{
		Name:     "Suresh",
		MilkType: farmerdomain.MilkTypeCow,
		RateType: settlementdomain.RateTypeFatSnf,
		FatRate:  fatRate,
		SnfRate:  snfRate,
	})
	if err != nil {
		t.Fatalf("create farmer: %v", err)
	}
	return farmer
}

func TestCreatePricesPreviewWithOwnQuality(t *testing.T) {
	collections, farmers, _ := setupCollectionService(t)
	farmer := createTestFarmer(t, farmers, 6, 3)

	rec, err := collections.Create(context.Background(), domain.CreateCollectionRequest{
		FarmerID: farmer.ID.String(),
		Date:     time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC),
		Shift:    domain.ShiftMorning,
		Quantity: 10,
		Fat:      4,
		Snf:      8,
	})
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}

	// Preview is priced from this record's own readings only.
	if math.Abs(rec.Rate-48) > 1e-9 {
		t.Fatalf("preview rate = %v, want 4*6 + 8*3 = 48", rec.Rate)
	}
	if math.Abs(rec.TotalAmount-480) > 1e-9 {
		t.Fatalf("preview amount = %v, want 480", rec.TotalAmount)
	}
	if !rec.CreatedAt.Equal(collectionTestNow) || !rec.UpdatedAt.Equal(collectionTestNow) {
		t.Fatalf("timestamps = %v/%v, want the injected clock's %v", rec.CreatedAt, rec.UpdatedAt, collectionTestNow)
	}
}

func TestCreateRejectsUnknownFarmer(t *testing.T) {
	collections, _, _ := setupCollectionService(t)

	node, _ := snowflake.NewNode(2)
	_, err := collections.Create(context.Background(), domain.CreateCollectionRequest{
		FarmerID: node.Generate().String(),
		Date:     time.Now().UTC(),
		Quantity: 10,
	})
	if err != domain.ErrFarmerNotFound {
		t.Fatalf("err = %v, want ErrFarmerNotFound", err)
	}
}

func TestCreateRejectsZeroQuantity(t *testing.T) {
	collections, farmers, _ := setupCollectionService(t)
	farmer := createTestFarmer(t, farmers, 6, 3)

	_, err := collections.Create(context.Background(), domain.CreateCollectionRequest{
		FarmerID: farmer.ID.String(),
		Date:     time.Now().UTC(),
		Quantity: -3,
	})
	if err != domain.ErrInvalidQuantity {
		t.Fatalf("err = %v, want ErrInvalidQuantity", err)
	}
}

func TestUpdateRepricesPreview(t *testing.T) {
	collections, farmers, _ := setupCollectionService(t)
	farmer := createTestFarmer(t, farmers, 6, 3)

	rec, err := collections.Create(context.Background(), domain.CreateCollectionRequest{
		FarmerID: farmer.ID.String(),
		Date:     time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC),
		Quantity: 10,
		Fat:      4,
		Snf:      8,
	})
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}

	fat := 5.0
	updated, err := collections.Update(context.Background(), rec.ID.String(), domain.UpdateCollectionRequest{
		Fat: &fat,
	})
	if err != nil {
		t.Fatalf("update collection: %v", err)
	}

	if math.Abs(updated.Rate-54) > 1e-9 {
		t.Fatalf("re-priced rate = %v, want 5*6 + 8*3 = 54", updated.Rate)
	}
	if math.Abs(updated.TotalAmount-540) > 1e-9 {
		t.Fatalf("re-priced amount = %v, want 540", updated.TotalAmount)
	}
}

func TestRecentOrdersNewestFirstAndFilters(t *testing.T) {
	collections, farmers, _ := setupCollectionService(t)
	first := createTestFarmer(t, farmers, 6, 3)
	second := createTestFarmer(t, farmers, 6, 3)

	for d := 1; d <= 3; d++ {
		_, err := collections.Create(context.Background(), domain.CreateCollectionRequest{
			FarmerID: first.ID.String(),
			Date:     time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC),
			Quantity: 5,
			Fat:      4,
			Snf:      8,
		})
		if err != nil {
			t.Fatalf("create collection: %v", err)
		}
	}
	if _, err := collections.Create(context.Background(), domain.CreateCollectionRequest{
		FarmerID: second.ID.String(),
		Date:     time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC),
		Quantity: 7,
		Fat:      4,
		Snf:      8,
	}); err != nil {
		t.Fatalf("create collection: %v", err)
	}

	recent, err := collections.Recent(context.Background(), domain.ListCollectionRequest{Limit: 2})
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recent))
	}
	if recent[0].Date.Before(recent[1].Date) {
		t.Fatal("recent records must be newest first")
	}

	filtered, err := collections.Recent(context.Background(), domain.ListCollectionRequest{FarmerID: second.ID.String()})
	if err != nil {
		t.Fatalf("recent filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].FarmerID != second.ID {
		t.Fatalf("expected only the second farmer's record, got %+v", filtered)
	}
}
