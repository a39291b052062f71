package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	authdomain "github.com/smallbiznis/dairypro/internal/auth/domain"
	"github.com/smallbiznis/dairypro/internal/clock"
	dashboarddomain "github.com/smallbiznis/dairypro/internal/dashboard/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type dashboardStub struct {
	refreshCalls int
	refreshErr   error
}

func (d *dashboardStub) Stats(ctx context.Context, req dashboarddomain.StatsRequest) (dashboarddomain.Stats, error) {
	return dashboarddomain.Stats{}, nil
}

func (d *dashboardStub) RefreshStats(ctx context.Context) error {
	d.refreshCalls++
	return d.refreshErr
}

func (d *dashboardStub) Ledger(ctx context.Context, from, to time.Time) (dashboarddomain.Ledger, error) {
	return dashboarddomain.Ledger{}, nil
}

func (d *dashboardStub) Reports(ctx context.Context, req dashboarddomain.ReportRequest) ([]dashboarddomain.ReportRow, error) {
	return nil, nil
}

type sessionRepoStub struct {
	pruned int64
	err    error
}

func (s *sessionRepoStub) CreateSession(ctx context.Context, session *authdomain.Session) error {
	return nil
}

func (s *sessionRepoStub) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*authdomain.Session, error) {
	return nil, authdomain.ErrSessionNotFound
}

func (s *sessionRepoStub) DeleteSession(ctx context.Context, id snowflake.ID) error {
	return nil
}

func (s *sessionRepoStub) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	return s.pruned, s.err
}

func newTestScheduler(t *testing.T, dashboard *dashboardStub, sessions *sessionRepoStub) *Scheduler {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	sched, err := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		Clock:        clock.NewFakeClock(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)),
		DashboardSvc: dashboard,
		SessionRepo:  sessions,
		Config:       Config{RunInterval: time.Minute, JobTimeout: time.Second},
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return sched
}

func TestRunOnceRefreshesAndPrunes(t *testing.T) {
	dashboard := &dashboardStub{}
	sessions := &sessionRepoStub{pruned: 3}
	sched := newTestScheduler(t, dashboard, sessions)

	if err := sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if dashboard.refreshCalls != 1 {
		t.Fatalf("refresh calls = %d, want 1", dashboard.refreshCalls)
	}
}

func TestRunOnceSurfacesRefreshFailure(t *testing.T) {
	dashboard := &dashboardStub{refreshErr: errors.New("boom")}
	sched := newTestScheduler(t, dashboard, &sessionRepoStub{})

	if err := sched.RunOnce(context.Background()); err == nil {
		t.Fatal("expected the refresh failure to surface")
	}
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	if _, err := New(Params{}); err != ErrInvalidConfig {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}
