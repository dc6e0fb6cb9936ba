package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceRoleWithGrantedPolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("MANAGER", "/vouchers/:id", "PATCH"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}

	allow, err := svc.EnforceRole("MANAGER", "/api/v1/vouchers/42", "patch")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.EnforceRole("MANAGER", "/api/v1/vouchers/42", "DELETE")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}
}

func TestRevokeRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("USER", "/vouchers", "GET"); err != nil {
		t.Fatalf("grant policy failed: %v", err)
	}
	if err := svc.RevokeRolePolicy("USER", "/vouchers", "GET"); err != nil {
		t.Fatalf("revoke policy failed: %v", err)
	}

	allow, err := svc.EnforceRole("USER", "/vouchers", "GET")
	if err != nil {
		t.Fatalf("enforce after revoke failed: %v", err)
	}
	if allow {
		t.Fatalf("expected revoked permission denied")
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/vouchers/:id", want: "/vouchers/:id"},
		{in: "/vouchers/:id", want: "/vouchers/:id"},
		{in: "users/me", want: "/users/me"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	wantRoles := map[string]bool{
		"role:ADMIN":   true,
		"role:MANAGER": true,
		"role:USER":    true,
		"role:GUEST":   true,
	}
	for _, role := range roles {
		delete(wantRoles, role)
	}
	if len(wantRoles) != 0 {
		t.Fatalf("builtin roles missing: %v", wantRoles)
	}

	cases := []struct {
		role  string
		obj   string
		act   string
		allow bool
	}{
		{role: "GUEST", obj: "/vouchers/validate", act: "POST", allow: true},
		{role: "GUEST", obj: "/vouchers", act: "GET", allow: false},
		{role: "USER", obj: "/vouchers/validate", act: "POST", allow: true},
		{role: "USER", obj: "/vouchers/7/use", act: "POST", allow: true},
		{role: "USER", obj: "/vouchers", act: "POST", allow: false},
		{role: "MANAGER", obj: "/vouchers", act: "POST", allow: true},
		{role: "MANAGER", obj: "/vouchers/7/cancel", act: "POST", allow: true},
		{role: "MANAGER", obj: "/users/9", act: "DELETE", allow: false},
		{role: "ADMIN", obj: "/users/9", act: "DELETE", allow: true},
		{role: "ADMIN", obj: "/audit-logs", act: "GET", allow: true},
	}
	for _, item := range cases {
		allow, err := svc.EnforceRole(item.role, item.obj, item.act)
		if err != nil {
			t.Fatalf("enforce %s %s %s failed: %v", item.role, item.act, item.obj, err)
		}
		if allow != item.allow {
			t.Fatalf("enforce %s %s %s want=%v got=%v", item.role, item.act, item.obj, item.allow, allow)
		}
	}
}
