package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/dairypro/internal/farmer/domain"
	settlementdomain "github.com/smallbiznis/dairypro/internal/settlement/domain"
	"github.com/smallbiznis/dairypro/pkg/db/pagination"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupFarmerService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Farmer{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})
}

func TestCreateGeneratesUniqueCodes(t *testing.T) {
	svc := setupFarmerService(t)

	first, err := svc.Create(context.Background(), domain.CreateFarmerRequest{Name: "Ramesh Patel"})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if first.Code != "RAMESH-PATEL" {
		t.Fatalf("code = %s, want RAMESH-PATEL", first.Code)
	}
	if first.MilkType != domain.MilkTypeCow || first.RateType != settlementdomain.RateTypeFatSnf {
		t.Fatalf("defaults not applied: %+v", first)
	}

	second, err := svc.Create(context.Background(), domain.CreateFarmerRequest{Name: "Ramesh Patel"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.Code != "RAMESH-PATEL-2" {
		t.Fatalf("code = %s, want RAMESH-PATEL-2", second.Code)
	}
}

func TestCreateRejectsExplicitDuplicateCode(t *testing.T) {
	svc := setupFarmerService(t)

	if _, err := svc.Create(context.Background(), domain.CreateFarmerRequest{Name: "One", Code: "F-1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(context.Background(), domain.CreateFarmerRequest{Name: "Two", Code: "F-1"}); err != domain.ErrCodeTaken {
		t.Fatalf("err = %v, want ErrCodeTaken", err)
	}
}

func TestCreateValidatesEnums(t *testing.T) {
	svc := setupFarmerService(t)

	if _, err := svc.Create(context.Background(), domain.CreateFarmerRequest{
		Name:     "Bad",
		MilkType: domain.MilkType("GOAT"),
	}); err != domain.ErrInvalidMilkType {
		t.Fatalf("err = %v, want ErrInvalidMilkType", err)
	}

	if _, err := svc.Create(context.Background(), domain.CreateFarmerRequest{
		Name:     "Bad",
		RateType: settlementdomain.RateType("PREMIUM"),
	}); err != domain.ErrInvalidRateType {
		t.Fatalf("err = %v, want ErrInvalidRateType", err)
	}
}

func TestRatesClampedNonNegative(t *testing.T) {
	svc := setupFarmerService(t)

	farmer, err := svc.Create(context.Background(), domain.CreateFarmerRequest{
		Name:      "Clamped",
		FatRate:   -6,
		SnfRate:   -3,
		FixedRate: -40,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if farmer.FatRate != 0 || farmer.SnfRate != 0 || farmer.FixedRate != 0 {
		t.Fatalf("rates = %v/%v/%v, want 0/0/0", farmer.FatRate, farmer.SnfRate, farmer.FixedRate)
	}

	snfRate := -1.5
	updated, err := svc.Update(context.Background(), farmer.ID.String(), domain.UpdateFarmerRequest{
		SnfRate: &snfRate,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.SnfRate != 0 {
		t.Fatalf("snf rate = %v, want 0", updated.SnfRate)
	}
}

func TestUpdateMergesOnlyProvidedFields(t *testing.T) {
	svc := setupFarmerService(t)

	farmer, err := svc.Create(context.Background(), domain.CreateFarmerRequest{
		Name:    "Suresh",
		Phone:   "9000000000",
		FatRate: 6,
		SnfRate: 3,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fatRate := 7.5
	updated, err := svc.Update(context.Background(), farmer.ID.String(), domain.UpdateFarmerRequest{
		FatRate: &fatRate,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.FatRate != 7.5 {
		t.Fatalf("fat rate = %v, want 7.5", updated.FatRate)
	}
	if updated.Name != "Suresh" || updated.Phone != "9000000000" || updated.SnfRate != 3 {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
}

func TestListSearchesNameAndCode(t *testing.T) {
	svc := setupFarmerService(t)

	if _, err := svc.Create(context.Background(), domain.CreateFarmerRequest{Name: "Ramesh"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(context.Background(), domain.CreateFarmerRequest{Name: "Suresh"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := svc.List(context.Background(), domain.ListFarmerRequest{
		Pagination: pagination.Pagination{Page: 1, PageSize: 10},
		Search:     "RAM",
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(found) != 1 || found[0].Name != "Ramesh" {
		t.Fatalf("search result = %+v, want only Ramesh", found)
	}
}

func TestDeleteRemovesFarmer(t *testing.T) {
	svc := setupFarmerService(t)

	farmer, err := svc.Create(context.Background(), domain.CreateFarmerRequest{Name: "Gone"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), farmer.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), farmer.ID.String()); err != domain.ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
