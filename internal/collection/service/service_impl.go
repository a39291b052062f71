package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dairypro/internal/clock"
	"github.com/smallbiznis/dairypro/internal/collection/domain"
	"github.com/smallbiznis/dairypro/internal/config"
	farmerdomain "github.com/smallbiznis/dairypro/internal/farmer/domain"
	settlementdomain "github.com/smallbiznis/dairypro/internal/settlement/domain"
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
	Clock    clock.Clock
	DairyCfg *config.DairyConfigHolder
	Farmers  farmerdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	dairyCfg *config.DairyConfigHolder
	farmers  farmerdomain.Service
	repo     repository.Repository[domain.MilkCollection]
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("collection.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		dairyCfg: p.DairyCfg,
		farmers:  p.Farmers,
		repo:     repository.ProvideStore[domain.MilkCollection](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCollectionRequest) (domain.MilkCollection, error) {
	farmer, err := s.farmers.GetByID(ctx, req.FarmerID)
	if err != nil {
		if err == farmerdomain.ErrNotFound || err == farmerdomain.ErrInvalidID {
			return domain.MilkCollection{}, domain.ErrFarmerNotFound
		}
		return domain.MilkCollection{}, err
	}

	shift := req.Shift
	if shift == "" {
		shift = domain.ShiftMorning
	}
	if !shift.Valid() {
		return domain.MilkCollection{}, domain.ErrInvalidShift
	}

	quantity := clampNonNegative(req.Quantity)
	if quantity == 0 {
		return domain.MilkCollection{}, domain.ErrInvalidQuantity
	}
	fat := clampNonNegative(req.Fat)
	snf := clampNonNegative(req.Snf)

	rate := previewRate(farmer.Pricing(), fat, snf)

	now := s.clock.Now()
	collection := domain.MilkCollection{
		ID:          s.genID.Generate(),
		FarmerID:    farmer.ID,
		Date:        req.Date.UTC(),
		Shift:       shift,
		Quantity:    quantity,
		Fat:         fat,
		Snf:         snf,
		Rate:        rate,
		TotalAmount: quantity * rate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, &collection); err != nil {
		return domain.MilkCollection{}, err
	}

	return collection, nil
}

func (s *Service) Recent(ctx context.Context, req domain.ListCollectionRequest) ([]domain.MilkCollection, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = s.dairyCfg.Current().RecentIntakeLen
	}

	opts := []option.QueryOption{
		option.WithOrder("date desc, id desc"),
		option.WithLimit(limit),
	}
	filter := &domain.MilkCollection{}
	if farmerID := strings.TrimSpace(req.FarmerID); farmerID != "" {
		id, err := snowflake.ParseString(farmerID)
		if err != nil || id == 0 {
			return nil, domain.ErrInvalidID
		}
		filter.FarmerID = id
	}

	items, err := s.repo.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}

	collections := make([]domain.MilkCollection, 0, len(items))
	for _, item := range items {
		collections = append(collections, *item)
	}
	return collections, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateCollectionRequest) (domain.MilkCollection, error) {
	collectionID, err := parseID(id)
	if err != nil {
		return domain.MilkCollection{}, err
	}

	item, err := s.repo.FindOne(ctx, &domain.MilkCollection{ID: collectionID})
	if err != nil {
		return domain.MilkCollection{}, err
	}
	if item == nil {
		return domain.MilkCollection{}, domain.ErrNotFound
	}
	collection := *item

	if req.Date != nil {
		collection.Date = req.Date.UTC()
	}
	if req.Shift != nil {
		if !req.Shift.Valid() {
			return domain.MilkCollection{}, domain.ErrInvalidShift
		}
		collection.Shift = *req.Shift
	}
	if req.Quantity != nil {
		quantity := clampNonNegative(*req.Quantity)
		if quantity == 0 {
			return domain.MilkCollection{}, domain.ErrInvalidQuantity
		}
		collection.Quantity = quantity
	}
	if req.Fat != nil {
		collection.Fat = clampNonNegative(*req.Fat)
	}
	if req.Snf != nil {
		collection.Snf = clampNonNegative(*req.Snf)
	}

	// A quality correction re-prices the advisory preview.
	farmer, err := s.farmers.GetByID(ctx, collection.FarmerID.String())
	if err != nil {
		return domain.MilkCollection{}, err
	}
	collection.Rate = previewRate(farmer.Pricing(), collection.Fat, collection.Snf)
	collection.TotalAmount = collection.Quantity * collection.Rate
	collection.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, collection.ID.String(), &collection); err != nil {
		return domain.MilkCollection{}, err
	}
	return collection, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	collectionID, err := parseID(id)
	if err != nil {
		return err
	}

	item, err := s.repo.FindOne(ctx, &domain.MilkCollection{ID: collectionID})
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, collectionID.String())
}

// previewRate prices a single record with its own fat/snf. This is the
// on-screen estimate shown at intake time; settlement uses one blended
// period-level rate instead, and the two formulas must stay separate.
func previewRate(pricing settlementdomain.FarmerPricing, fat, snf float64) float64 {
	switch pricing.RateType {
	case settlementdomain.RateTypeFatSnf:
		return fat*pricing.FatRate + snf*pricing.SnfRate
	case settlementdomain.RateTypeFatOnly:
		return fat * pricing.FatRate
	case settlementdomain.RateTypeFixed:
		return pricing.FixedRate
	default:
		return 0
	}
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
