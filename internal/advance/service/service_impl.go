package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dairypro/internal/advance/domain"
	farmerdomain "github.com/smallbiznis/dairypro/internal/farmer/domain"
	"github.com/smallbiznis/dairypro/pkg/db/option"
	"github.com/smallbiznis/dairypro/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Farmers farmerdomain.Service
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	farmers farmerdomain.Service
	repo    repository.Repository[domain.Advance]
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("advance.service"),
		genID:   p.GenID,
		farmers: p.Farmers,
		repo:    repository.ProvideStore[domain.Advance](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateAdvanceRequest) (domain.Advance, error) {
	if req.Amount <= 0 {
		return domain.Advance{}, domain.ErrInvalidAmount
	}

	farmer, err := s.farmers.GetByID(ctx, req.FarmerID)
	if err != nil {
		if errors.Is(err, farmerdomain.ErrNotFound) || errors.Is(err, farmerdomain.ErrInvalidID) {
			return domain.Advance{}, domain.ErrFarmerNotFound
		}
		return domain.Advance{}, err
	}

	advance := domain.Advance{
		ID:          s.genID.Generate(),
		FarmerID:    farmer.ID,
		Amount:      req.Amount,
		Date:        req.Date.UTC(),
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, &advance); err != nil {
		return domain.Advance{}, err
	}
	return advance, nil
}

func (s *Service) ListByFarmer(ctx context.Context, farmerID string) ([]domain.Advance, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(farmerID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}

	items, err := s.repo.Find(ctx, &domain.Advance{FarmerID: id},
		option.WithOrder("date desc, id desc"),
	)
	if err != nil {
		return nil, err
	}

	advances := make([]domain.Advance, 0, len(items))
	for _, item := range items {
		advances = append(advances, *item)
	}
	return advances, nil
}
