package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/dairypro/internal/config"
	"github.com/smallbiznis/dairypro/internal/product/domain"
	saledomain "github.com/smallbiznis/dairypro/internal/sale/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupProductService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Product{}, &domain.Production{}, &saledomain.Sale{}); err != nil {
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
		GenID:    node,
		DairyCfg: holder,
	})
	return svc, db, node
}

func TestAddStockIncrementsAndLogsProduction(t *testing.T) {
	svc, db, _ := setupProductService(t)

	product, err := svc.Create(context.Background(), domain.CreateProductRequest{
		Name:  "Paneer",
		Unit:  "kg",
		Stock: 4,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	updated, err := svc.AddStock(context.Background(), domain.AddStockRequest{
		ProductID: product.ID.String(),
		Quantity:  6,
		Date:      time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC),
		Notes:     "morning batch",
	})
	if err != nil {
		t.Fatalf("add stock: %v", err)
	}
	if updated.Stock != 10 {
		t.Fatalf("stock = %v, want 10", updated.Stock)
	}

	var stored domain.Product
	if err := db.First(&stored, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if stored.Stock != 10 {
		t.Fatalf("stored stock = %v, want 10", stored.Stock)
	}

	history, err := svc.StockHistory(context.Background())
	if err != nil {
		t.Fatalf("stock history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 production row, got %d", len(history))
	}
	if history[0].ProductName != "Paneer" || history[0].OutputQty != 6 {
		t.Fatalf("unexpected production row: %+v", history[0])
	}
}

func TestAddStockRejectsNonPositiveQuantity(t *testing.T) {
	svc, _, _ := setupProductService(t)

	product, err := svc.Create(context.Background(), domain.CreateProductRequest{Name: "Ghee"})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if _, err := svc.AddStock(context.Background(), domain.AddStockRequest{
		ProductID: product.ID.String(),
		Quantity:  0,
	}); err != domain.ErrInvalidQuantity {
		t.Fatalf("err = %v, want ErrInvalidQuantity", err)
	}
}

func TestDeleteBlockedWhenReferencedBySales(t *testing.T) {
	svc, db, node := setupProductService(t)

	product, err := svc.Create(context.Background(), domain.CreateProductRequest{Name: "Curd"})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	productID := product.ID
	sale := saledomain.Sale{
		ID:        node.Generate(),
		ProductID: &productID,
		Quantity:  2,
		Rate:      50,
		Date:      time.Now().UTC(),
	}
	if err := db.Create(&sale).Error; err != nil {
		t.Fatalf("seed sale: %v", err)
	}

	if err := svc.Delete(context.Background(), product.ID.String()); err != domain.ErrReferencedBySales {
		t.Fatalf("err = %v, want ErrReferencedBySales", err)
	}

	var count int64
	if err := db.Model(&domain.Product{}).Count(&count).Error; err != nil {
		t.Fatalf("count products: %v", err)
	}
	if count != 1 {
		t.Fatal("referenced product must survive the delete attempt")
	}
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	svc, _, _ := setupProductService(t)

	if _, err := svc.Create(context.Background(), domain.CreateProductRequest{Name: "Butter"}); err != nil {
		t.Fatalf("create product: %v", err)
	}
	if _, err := svc.Create(context.Background(), domain.CreateProductRequest{Name: "Butter"}); err != domain.ErrNameTaken {
		t.Fatalf("err = %v, want ErrNameTaken", err)
	}
}
