package service

import (
	"context"
	"errors"

	"github.com/smallbiznis/dairypro/internal/backup/domain"
	"github.com/smallbiznis/dairypro/internal/clock"
	settingsdomain "github.com/smallbiznis/dairypro/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("backup.service"),
		clock: p.Clock,
	}
}

func (s *Service) Export(ctx context.Context) (*domain.Snapshot, error) {
	snapshot := &domain.Snapshot{ExportedAt: s.clock.Now()}

	conn := s.db.WithContext(ctx)
	if err := conn.Order("id asc").Find(&snapshot.Farmers).Error; err != nil {
		return nil, err
	}
	if err := conn.Order("id asc").Find(&snapshot.Collections).Error; err != nil {
		return nil, err
	}
	if err := conn.Order("id asc").Find(&snapshot.Advances).Error; err != nil {
		return nil, err
	}
	if err := conn.Order("id asc").Find(&snapshot.Products).Error; err != nil {
		return nil, err
	}
	if err := conn.Order("id asc").Find(&snapshot.Productions).Error; err != nil {
		return nil, err
	}
	if err := conn.Order("id asc").Find(&snapshot.Sales).Error; err != nil {
		return nil, err
	}
	if err := conn.Order("id asc").Find(&snapshot.Expenses).Error; err != nil {
		return nil, err
	}
	if err := conn.Order("id asc").Find(&snapshot.Users).Error; err != nil {
		return nil, err
	}

	var settings settingsdomain.CompanySettings
	err := conn.Where("id = ?", settingsdomain.SettingsID).First(&settings).Error
	if err == nil {
		snapshot.Settings = &settings
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	s.log.Info("backup exported",
		zap.Int("farmers", len(snapshot.Farmers)),
		zap.Int("collections", len(snapshot.Collections)),
		zap.Time("exported_at", snapshot.ExportedAt),
	)
	return snapshot, nil
}
