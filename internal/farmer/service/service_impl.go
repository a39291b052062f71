package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/dairypro/internal/farmer/domain"
	settlementdomain "github.com/smallbiznis/dairypro/internal/settlement/domain"
	"github.com/smallbiznis/dairypro/pkg/db"
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
	repo  repository.Repository[domain.Farmer]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("farmer.service"),
		genID: p.GenID,
		repo:  repository.ProvideStore[domain.Farmer](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateFarmerRequest) (domain.Farmer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Farmer{}, domain.ErrInvalidName
	}

	milkType := req.MilkType
	if milkType == "" {
		milkType = domain.MilkTypeCow
	}
	if !milkType.Valid() {
		return domain.Farmer{}, domain.ErrInvalidMilkType
	}

	rateType := req.RateType
	if rateType == "" {
		rateType = settlementdomain.RateTypeFatSnf
	}
	if !rateType.Valid() {
		return domain.Farmer{}, domain.ErrInvalidRateType
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = s.generateCode(ctx, name)
	}

	now := time.Now().UTC()
	farmer := domain.Farmer{
		ID:        s.genID.Generate(),
		Code:      code,
		Name:      name,
		Phone:     strings.TrimSpace(req.Phone),
		Address:   strings.TrimSpace(req.Address),
		MilkType:  milkType,
		RateType:  rateType,
		FatRate:   clampNonNegative(req.FatRate),
		SnfRate:   clampNonNegative(req.SnfRate),
		FixedRate: clampNonNegative(req.FixedRate),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, &farmer); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Farmer{}, domain.ErrCodeTaken
		}
		return domain.Farmer{}, err
	}

	return farmer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListFarmerRequest) ([]domain.Farmer, error) {
	opts := []option.QueryOption{
		option.WithOrder("created_at desc, id desc"),
		option.ApplyPagination(req.Pagination),
	}
	if search := strings.TrimSpace(req.Search); search != "" {
		opts = append(opts, option.WithCondition("name LIKE ? OR code LIKE ?", "%"+search+"%", "%"+search+"%"))
	}

	items, err := s.repo.Find(ctx, &domain.Farmer{}, opts...)
	if err != nil {
		return nil, err
	}

	farmers := make([]domain.Farmer, 0, len(items))
	for _, item := range items {
		farmers = append(farmers, *item)
	}
	return farmers, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Farmer, error) {
	farmerID, err := parseID(id)
	if err != nil {
		return domain.Farmer{}, err
	}

	item, err := s.repo.FindOne(ctx, &domain.Farmer{ID: farmerID})
	if err != nil {
		return domain.Farmer{}, err
	}
	if item == nil {
		return domain.Farmer{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateFarmerRequest) (domain.Farmer, error) {
	farmer, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Farmer{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Farmer{}, domain.ErrInvalidName
		}
		farmer.Name = name
	}
	if req.Phone != nil {
		farmer.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		farmer.Address = strings.TrimSpace(*req.Address)
	}
	if req.MilkType != nil {
		if !req.MilkType.Valid() {
			return domain.Farmer{}, domain.ErrInvalidMilkType
		}
		farmer.MilkType = *req.MilkType
	}
	if req.RateType != nil {
		if !req.RateType.Valid() {
			return domain.Farmer{}, domain.ErrInvalidRateType
		}
		farmer.RateType = *req.RateType
	}
	if req.FatRate != nil {
		farmer.FatRate = clampNonNegative(*req.FatRate)
	}
	if req.SnfRate != nil {
		farmer.SnfRate = clampNonNegative(*req.SnfRate)
	}
	if req.FixedRate != nil {
		farmer.FixedRate = clampNonNegative(*req.FixedRate)
	}
	farmer.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, farmer.ID.String(), &farmer); err != nil {
		return domain.Farmer{}, err
	}
	return farmer, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	farmer, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, farmer.ID.String())
}

// generateCode derives a unique short code from the farmer name,
// suffixing a counter on collision.
func (s *Service) generateCode(ctx context.Context, name string) string {
	base := strings.ToUpper(slug.Make(name))
	code := base
	for i := 2; ; i++ {
		count, err := s.repo.Count(ctx, &domain.Farmer{Code: code})
		if err != nil || count == 0 {
			return code
		}
		code = fmt.Sprintf("%s-%d", base, i)
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
