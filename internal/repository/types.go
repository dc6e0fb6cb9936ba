package repository

import "time"

// VoucherListFilter 查询代金券列表的过滤条件
type VoucherListFilter struct {
	Page         int
	PageSize     int
	Status       string
	DiscountType string
	Keyword      string
	CreatedBy    uint
}

// VoucherUsageListFilter 查询代金券使用记录列表的过滤条件
type VoucherUsageListFilter struct {
	Page      int
	PageSize  int
	VoucherID uint
	UserID    uint
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Role        string
	IsActive    *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// UserLoginLogListFilter 查询用户登录日志列表的过滤条件
type UserLoginLogListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Email       string
	Status      string
	FailReason  string
	ClientIP    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// AuditLogListFilter 查询审计日志列表的过滤条件
type AuditLogListFilter struct {
	Page        int
	PageSize    int
	ActorID     uint
	Action      string
	Object      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
