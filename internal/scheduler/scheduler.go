package scheduler

import (
	"context"
	"errors"
	"time"

	authdomain "github.com/smallbiznis/dairypro/internal/auth/domain"
	"github.com/smallbiznis/dairypro/internal/clock"
	dashboarddomain "github.com/smallbiznis/dairypro/internal/dashboard/domain"
	"github.com/smallbiznis/dairypro/internal/lock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const lockKey = "dairypro:scheduler"

var ErrInvalidConfig = errors.New("scheduler requires db, logger, clock and dashboard service")

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	DashboardSvc dashboarddomain.Service
	SessionRepo  authdomain.SessionRepository
	Locker       *lock.Locker `optional:"true"`
	Config       Config       `optional:"true"`
}

// Scheduler keeps the dashboard cache warm, prunes expired sessions and
// pings the database on a fixed interval.
type Scheduler struct {
	db           *gorm.DB
	log          *zap.Logger
	cfg          Config
	clock        clock.Clock
	dashboardSvc dashboarddomain.Service
	sessionRepo  authdomain.SessionRepository
	locker       *lock.Locker
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.DashboardSvc == nil || p.SessionRepo == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:           p.DB,
		log:          p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:          p.Config.withDefaults(),
		clock:        p.Clock,
		dashboardSvc: p.DashboardSvc,
		sessionRepo:  p.SessionRepo,
		locker:       p.Locker,
	}, nil
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	if s.locker != nil {
		token, acquired, err := s.locker.TryLock(ctx, lockKey, s.cfg.RunInterval)
		if err != nil {
			s.log.Warn("scheduler lock unavailable", zap.Error(err))
			return nil
		}
		if !acquired {
			// Another replica owns this tick.
			return nil
		}
		defer func() {
			if err := s.locker.Release(ctx, lockKey, token); err != nil {
				s.log.Warn("scheduler lock release failed", zap.Error(err))
			}
		}()
	}

	var firstErr error

	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		s.log.Warn("database ping failed", zap.Error(err))
		firstErr = err
	}

	if err := s.dashboardSvc.RefreshStats(ctx); err != nil {
		s.log.Warn("dashboard stats refresh failed", zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}

	pruned, err := s.sessionRepo.DeleteExpiredSessions(ctx)
	if err != nil {
		s.log.Warn("session prune failed", zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	} else if pruned > 0 {
		s.log.Info("expired sessions pruned", zap.Int64("count", pruned))
	}

	return firstErr
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
