package authorization

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	authdomain "github.com/smallbiznis/dairypro/internal/auth/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAuthz(t *testing.T) Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	enforcer, err := NewEnforcer(db)
	if err != nil {
		t.Fatalf("new enforcer: %v", err)
	}

	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestAdminAllowedEverywhere(t *testing.T) {
	svc := setupAuthz(t)
	ctx := context.Background()

	for _, object := range []string{ObjectFarmer, ObjectSettings, ObjectBackup, ObjectUser} {
		for _, action := range []string{ActionView, ActionCreate, ActionUpdate, ActionDelete} {
			if err := svc.Authorize(ctx, authdomain.RoleAdmin, object, action); err != nil {
				t.Fatalf("admin denied %s:%s: %v", object, action, err)
			}
		}
	}
}

func TestStaffDayToDayAllowed(t *testing.T) {
	svc := setupAuthz(t)
	ctx := context.Background()

	for _, object := range []string{ObjectFarmer, ObjectCollection, ObjectSettlement, ObjectAdvance, ObjectProduct, ObjectSale, ObjectExpense, ObjectDashboard} {
		if err := svc.Authorize(ctx, authdomain.RoleStaff, object, ActionCreate); err != nil {
			t.Fatalf("staff denied %s:create: %v", object, err)
		}
	}

	if err := svc.Authorize(ctx, authdomain.RoleStaff, ObjectSettings, ActionView); err != nil {
		t.Fatalf("staff denied settings view: %v", err)
	}
}

func TestStaffDeniedRestrictedObjects(t *testing.T) {
	svc := setupAuthz(t)
	ctx := context.Background()

	denied := []struct {
		object string
		action string
	}{
		{ObjectSettings, ActionUpdate},
		{ObjectBackup, ActionView},
		{ObjectUser, ActionCreate},
	}
	for _, tc := range denied {
		if err := svc.Authorize(ctx, authdomain.RoleStaff, tc.object, tc.action); err != ErrForbidden {
			t.Fatalf("staff %s:%s err = %v, want ErrForbidden", tc.object, tc.action, err)
		}
	}
}

func TestAuthorizeValidatesInput(t *testing.T) {
	svc := setupAuthz(t)
	ctx := context.Background()

	if err := svc.Authorize(ctx, authdomain.Role("GUEST"), ObjectFarmer, ActionView); err != ErrInvalidActor {
		t.Fatalf("err = %v, want ErrInvalidActor", err)
	}
	if err := svc.Authorize(ctx, authdomain.RoleAdmin, "", ActionView); err != ErrInvalidObject {
		t.Fatalf("err = %v, want ErrInvalidObject", err)
	}
	if err := svc.Authorize(ctx, authdomain.RoleAdmin, ObjectFarmer, " "); err != ErrInvalidAction {
		t.Fatalf("err = %v, want ErrInvalidAction", err)
	}
}
