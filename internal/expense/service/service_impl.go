package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dairypro/internal/expense/domain"
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
	repo  repository.Repository[domain.Expense]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("expense.service"),
		genID: p.GenID,
		repo:  repository.ProvideStore[domain.Expense](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateExpenseRequest) (domain.Expense, error) {
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return domain.Expense{}, domain.ErrInvalidCategory
	}
	if req.Amount <= 0 {
		return domain.Expense{}, domain.ErrInvalidAmount
	}

	expense := domain.Expense{
		ID:          s.genID.Generate(),
		Category:    category,
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
		Date:        req.Date.UTC(),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, &expense); err != nil {
		return domain.Expense{}, err
	}
	return expense, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Expense, error) {
	items, err := s.repo.Find(ctx, &domain.Expense{},
		option.WithOrder("date desc, id desc"),
	)
	if err != nil {
		return nil, err
	}

	expenses := make([]domain.Expense, 0, len(items))
	for _, item := range items {
		expenses = append(expenses, *item)
	}
	return expenses, nil
}
