package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵
// GUEST 仅可校验代金券，USER 可核销并访问自身数据（本人校验在 handler 层），
// MANAGER 额外管理代金券，ADMIN 拥有全部权限。
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "GUEST",
			Policies: []Policy{
				{Object: "/vouchers/validate", Action: "POST"},
			},
			Immutable: true,
		},
		{
			Role:     "USER",
			Inherits: []string{"GUEST"},
			Policies: []Policy{
				{Object: "/vouchers", Action: "GET"},
				{Object: "/vouchers/:id", Action: "GET"},
				{Object: "/vouchers/:id/use", Action: "POST"},
				{Object: "/vouchers/my_usages", Action: "GET"},
				{Object: "/users", Action: "GET"},
				{Object: "/users/:id", Action: "GET"},
				{Object: "/users/:id", Action: "PUT"},
				{Object: "/users/change_password", Action: "POST"},
				{Object: "/users/login_logs", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "MANAGER",
			Inherits: []string{"USER"},
			Policies: []Policy{
				{Object: "/vouchers", Action: "POST"},
				{Object: "/vouchers/:id", Action: "PUT"},
				{Object: "/vouchers/:id/cancel", Action: "POST"},
				{Object: "/vouchers/:id/usages", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role: "ADMIN",
			Policies: []Policy{
				{Object: "/*", Action: "*"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	changed := false
	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}

		exists, err := s.enforcer.HasNamedGroupingPolicy("g", role, roleAnchor)
		if err != nil {
			return fmt.Errorf("check builtin role failed: %w", err)
		}
		if !exists {
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor)
			if err != nil {
				return fmt.Errorf("create builtin role failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole)
			if err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			added, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action)
			if err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
			if added {
				changed = true
			}
		}
	}

	if changed {
		return s.saveAndReload()
	}
	return nil
}
