package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	productdomain "github.com/smallbiznis/dairypro/internal/product/domain"
	"github.com/smallbiznis/dairypro/internal/sale/domain"
	"github.com/smallbiznis/dairypro/pkg/db/option"
	"github.com/smallbiznis/dairypro/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  repository.Repository[domain.Sale]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("sale.service"),
		genID: p.GenID,
		repo:  repository.ProvideStore[domain.Sale](p.DB),
	}
}

// Create inserts the sale and, when a product is named, decrements its
// stock in the same transaction.
func (s *Service) Create(ctx context.Context, req domain.CreateSaleRequest) (domain.Sale, error) {
	if req.Quantity <= 0 {
		return domain.Sale{}, domain.ErrInvalidQuantity
	}

	rate := req.Rate
	if rate < 0 {
		rate = 0
	}

	sale := domain.Sale{
		ID:           s.genID.Generate(),
		CustomerName: strings.TrimSpace(req.CustomerName),
		Quantity:     req.Quantity,
		Rate:         rate,
		TotalAmount:  req.Quantity * rate,
		Date:         req.Date.UTC(),
		CreatedAt:    time.Now().UTC(),
	}

	var productID *snowflake.ID
	if raw := strings.TrimSpace(req.ProductID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return domain.Sale{}, domain.ErrInvalidID
		}
		productID = &id
	}
	sale.ProductID = productID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if productID != nil {
			var product productdomain.Product
			err := tx.Where("id = ?", *productID).First(&product).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrProductNotFound
			}
			if err != nil {
				return err
			}

			result := tx.Model(&productdomain.Product{}).
				Where("id = ?", *productID).
				Updates(map[string]any{
					"stock":      gorm.Expr("stock - ?", req.Quantity),
					"updated_at": time.Now().UTC(),
				})
			if result.Error != nil {
				return result.Error
			}
			if sale.Rate == 0 {
				sale.Rate = product.SellingPrice
				sale.TotalAmount = sale.Quantity * sale.Rate
			}
		}
		return s.repo.WithTrx(tx).Create(ctx, &sale)
	})
	if err != nil {
		return domain.Sale{}, err
	}

	return sale, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Sale, error) {
	items, err := s.repo.Find(ctx, &domain.Sale{},
		option.WithOrder("date desc, id desc"),
	)
	if err != nil {
		return nil, err
	}

	sales := make([]domain.Sale, 0, len(items))
	for _, item := range items {
		sales = append(sales, *item)
	}
	return sales, nil
}
