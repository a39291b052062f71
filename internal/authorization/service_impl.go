package authorization

import (
	"context"
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	authdomain "github.com/smallbiznis/dairypro/internal/auth/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectFarmer     = "farmer"
	ObjectCollection = "collection"
	ObjectSettlement = "settlement"
	ObjectAdvance    = "advance"
	ObjectProduct    = "product"
	ObjectSale       = "sale"
	ObjectExpense    = "expense"
	ObjectDashboard  = "dashboard"
	ObjectSettings   = "settings"
	ObjectBackup     = "backup"
	ObjectUser       = "user"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Service answers whether a role may perform an action on an object.
type Service interface {
	Authorize(ctx context.Context, role authdomain.Role, object string, action string) error
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, role authdomain.Role, object string, action string) error {
	_ = ctx
	if !role.Valid() {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject := "role:" + strings.ToLower(string(role))
	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("role", string(role)),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

// seedPolicies grants admin everything and staff day-to-day operations.
// Staff may not change company settings, download backups, or manage users.
func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	allActions := []string{ActionView, ActionCreate, ActionUpdate, ActionDelete}

	policies := [][]string{}
	for _, object := range []string{
		ObjectFarmer, ObjectCollection, ObjectSettlement, ObjectAdvance,
		ObjectProduct, ObjectSale, ObjectExpense, ObjectDashboard,
		ObjectSettings, ObjectBackup, ObjectUser,
	} {
		for _, action := range allActions {
			policies = append(policies, []string{"role:admin", object, action})
		}
	}

	for _, object := range []string{
		ObjectFarmer, ObjectCollection, ObjectSettlement, ObjectAdvance,
		ObjectProduct, ObjectSale, ObjectExpense, ObjectDashboard,
	} {
		for _, action := range allActions {
			policies = append(policies, []string{"role:staff", object, action})
		}
	}
	policies = append(policies, []string{"role:staff", ObjectSettings, ActionView})

	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy[0], policy[1], policy[2])
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy[0], policy[1], policy[2]); err != nil {
			return err
		}
	}
	return nil
}
