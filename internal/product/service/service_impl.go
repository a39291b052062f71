package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dairypro/internal/config"
	"github.com/smallbiznis/dairypro/internal/product/domain"
	"github.com/smallbiznis/dairypro/pkg/db"
	"github.com/smallbiznis/dairypro/pkg/db/option"
	"github.com/smallbiznis/dairypro/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	DairyCfg *config.DairyConfigHolder
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	dairyCfg *config.DairyConfigHolder
	repo     repository.Repository[domain.Product]
	prodRepo repository.Repository[domain.Production]
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("product.service"),
		genID:    p.GenID,
		dairyCfg: p.DairyCfg,
		repo:     repository.ProvideStore[domain.Product](p.DB),
		prodRepo: repository.ProvideStore[domain.Production](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProductRequest) (domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Product{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:           s.genID.Generate(),
		Name:         name,
		Unit:         strings.TrimSpace(req.Unit),
		Stock:        clampNonNegative(req.Stock),
		SellingPrice: clampNonNegative(req.SellingPrice),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, &product); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Product{}, domain.ErrNameTaken
		}
		return domain.Product{}, err
	}
	return product, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	items, err := s.repo.Find(ctx, &domain.Product{}, option.WithOrder("name asc"))
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		products = append(products, *item)
	}
	return products, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateProductRequest) (domain.Product, error) {
	product, err := s.getByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, domain.ErrInvalidName
		}
		product.Name = name
	}
	if req.Unit != nil {
		product.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.SellingPrice != nil {
		product.SellingPrice = clampNonNegative(*req.SellingPrice)
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, product.ID.String(), &product); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Product{}, domain.ErrNameTaken
		}
		return domain.Product{}, err
	}
	return product, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	product, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}

	var referencing int64
	if err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM sales WHERE product_id = ?`, product.ID,
	).Scan(&referencing).Error; err != nil {
		return err
	}
	if referencing > 0 {
		return domain.ErrReferencedBySales
	}

	return s.repo.Delete(ctx, product.ID.String())
}

// AddStock increments the product stock and appends the production log
// row in one transaction.
func (s *Service) AddStock(ctx context.Context, req domain.AddStockRequest) (domain.Product, error) {
	if req.Quantity <= 0 {
		return domain.Product{}, domain.ErrInvalidQuantity
	}

	product, err := s.getByID(ctx, req.ProductID)
	if err != nil {
		return domain.Product{}, err
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	now := time.Now().UTC()
	production := domain.Production{
		ID:          s.genID.Generate(),
		ProductName: product.Name,
		OutputQty:   req.Quantity,
		Date:        date.UTC(),
		Notes:       strings.TrimSpace(req.Notes),
		CreatedAt:   now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Product{}).
			Where("id = ?", product.ID).
			Updates(map[string]any{
				"stock":      gorm.Expr("stock + ?", req.Quantity),
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return s.prodRepo.WithTrx(tx).Create(ctx, &production)
	})
	if err != nil {
		return domain.Product{}, err
	}

	product.Stock += req.Quantity
	product.UpdatedAt = now
	return product, nil
}

func (s *Service) StockHistory(ctx context.Context) ([]domain.Production, error) {
	items, err := s.prodRepo.Find(ctx, &domain.Production{},
		option.WithOrder("date desc, id desc"),
		option.WithLimit(s.dairyCfg.Current().StockHistoryLen),
	)
	if err != nil {
		return nil, err
	}

	history := make([]domain.Production, 0, len(items))
	for _, item := range items {
		history = append(history, *item)
	}
	return history, nil
}

func (s *Service) getByID(ctx context.Context, id string) (domain.Product, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || productID == 0 {
		return domain.Product{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindOne(ctx, &domain.Product{ID: productID})
	if err != nil {
		return domain.Product{}, err
	}
	if item == nil {
		return domain.Product{}, domain.ErrNotFound
	}
	return *item, nil
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
