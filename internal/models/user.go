package models

import (
	"strings"
	"time"

	"github.com/voucherhub/internal/constants"

	"gorm.io/gorm"
)

// User 用户表
type User struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                        // 主键
	Email              string         `gorm:"uniqueIndex;not null" json:"email"`           // 邮箱
	Username           string         `gorm:"uniqueIndex;not null" json:"username"`        // 用户名
	PasswordHash       string         `gorm:"not null" json:"-"`                           // 密码哈希（不返回给前端）
	FirstName          string         `gorm:"default:''" json:"first_name"`                // 名
	LastName           string         `gorm:"default:''" json:"last_name"`                 // 姓
	Role               string         `gorm:"index;not null;default:'USER'" json:"role"`   // 角色（ADMIN/MANAGER/USER/GUEST）
	IsActive           bool           `gorm:"not null;default:true" json:"is_active"`      // 是否启用
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`                 // Token 版本（用于全量失效）
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`                              // 该时间点前签发的 Token 失效
	LastLoginAt        *time.Time     `json:"last_login_at"`                               // 最后登录时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                     // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                     // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                              // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// FullName 返回拼接后的完整姓名
func (u User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// IsAdmin 是否管理员
func (u User) IsAdmin() bool {
	return u.Role == constants.UserRoleAdmin
}

// IsManager 是否管理员或运营
func (u User) IsManager() bool {
	return u.Role == constants.UserRoleAdmin || u.Role == constants.UserRoleManager
}
