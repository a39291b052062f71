package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smallbiznis/dairypro/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(p Params) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("settings.service"),
	}
}

// Get returns the singleton row, creating the default on first read.
func (s *Service) Get(ctx context.Context) (domain.CompanySettings, error) {
	var settings domain.CompanySettings
	err := s.db.WithContext(ctx).Where("id = ?", domain.SettingsID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.createDefault(ctx)
	}
	if err != nil {
		return domain.CompanySettings{}, err
	}
	return settings, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateSettingsRequest) (domain.CompanySettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return domain.CompanySettings{}, err
	}

	if req.CompanyName != nil {
		settings.CompanyName = strings.TrimSpace(*req.CompanyName)
	}
	if req.Address != nil {
		settings.Address = strings.TrimSpace(*req.Address)
	}
	if req.Phone != nil {
		settings.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Metadata != nil {
		settings.Metadata = datatypes.JSONMap(req.Metadata)
	}
	settings.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(ctx).Save(&settings).Error; err != nil {
		return domain.CompanySettings{}, err
	}
	return settings, nil
}

func (s *Service) createDefault(ctx context.Context) (domain.CompanySettings, error) {
	now := time.Now().UTC()
	settings := domain.CompanySettings{
		ID:          domain.SettingsID,
		CompanyName: "DairyPro",
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.WithContext(ctx).Create(&settings).Error; err != nil {
		return domain.CompanySettings{}, err
	}
	return settings, nil
}
