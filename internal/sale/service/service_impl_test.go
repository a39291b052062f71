package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	productdomain "github.com/smallbiznis/dairypro/internal/product/domain"
	"github.com/smallbiznis/dairypro/internal/sale/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupSaleService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&productdomain.Product{}, &domain.Sale{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})
	return svc, db, node
}

func seedProduct(t *testing.T, db *gorm.DB, node *snowflake.Node, name string, stock, price float64) productdomain.Product {
	t.Helper()
	product := productdomain.Product{
		ID:           node.Generate(),
		Name:         name,
		Unit:         "kg",
		Stock:        stock,
		SellingPrice: price,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestCreateSaleDecrementsStock(t *testing.T) {
	svc, db, node := setupSaleService(t)
	product := seedProduct(t, db, node, "Paneer", 10, 80)

	sale, err := svc.Create(context.Background(), domain.CreateSaleRequest{
		CustomerName: "Hotel Annapurna",
		ProductID:    product.ID.String(),
		Quantity:     3,
		Rate:         75,
		Date:         time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if sale.TotalAmount != 225 {
		t.Fatalf("total = %v, want 225", sale.TotalAmount)
	}

	var stored productdomain.Product
	if err := db.First(&stored, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if stored.Stock != 7 {
		t.Fatalf("stock = %v, want 7", stored.Stock)
	}
}

func TestCreateSaleDefaultsRateToSellingPrice(t *testing.T) {
	svc, db, node := setupSaleService(t)
	product := seedProduct(t, db, node, "Ghee", 5, 600)

	sale, err := svc.Create(context.Background(), domain.CreateSaleRequest{
		ProductID: product.ID.String(),
		Quantity:  2,
		Date:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if sale.Rate != 600 || sale.TotalAmount != 1200 {
		t.Fatalf("rate/total = %v/%v, want 600/1200", sale.Rate, sale.TotalAmount)
	}
}

func TestCreateSaleWithoutProduct(t *testing.T) {
	svc, db, _ := setupSaleService(t)

	sale, err := svc.Create(context.Background(), domain.CreateSaleRequest{
		CustomerName: "Walk-in",
		Quantity:     4,
		Rate:         25,
		Date:         time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if sale.ProductID != nil {
		t.Fatal("ad-hoc sale must not reference a product")
	}

	var count int64
	if err := db.Model(&domain.Sale{}).Count(&count).Error; err != nil {
		t.Fatalf("count sales: %v", err)
	}
	if count != 1 {
		t.Fatalf("sales = %d, want 1", count)
	}
}

func TestCreateSaleUnknownProductRollsBack(t *testing.T) {
	svc, db, node := setupSaleService(t)

	_, err := svc.Create(context.Background(), domain.CreateSaleRequest{
		ProductID: node.Generate().String(),
		Quantity:  1,
		Date:      time.Now().UTC(),
	})
	if err != domain.ErrProductNotFound {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}

	var count int64
	if err := db.Model(&domain.Sale{}).Count(&count).Error; err != nil {
		t.Fatalf("count sales: %v", err)
	}
	if count != 0 {
		t.Fatal("failed sale must not be persisted")
	}
}
