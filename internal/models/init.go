package models

import (
	"strings"

	"github.com/voucherhub/internal/constants"
	"github.com/voucherhub/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultAdmin 初始化默认管理员账号
func InitDefaultAdmin(email, password string) error {
	var count int64
	DB.Model(&User{}).Where("role = ?", constants.UserRoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	// 创建默认管理员
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		email = "admin@example.com"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	username := email
	if at := strings.Index(email, "@"); at > 0 {
		username = email[:at]
	}
	admin := User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Role:         constants.UserRoleAdmin,
		IsActive:     true,
	}

	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == "admin123" {
		logger.Warnw("default_admin_created_with_default_password", "email", email)
		logger.Warnw("default_admin_password_change_required", "email", email)
	} else {
		logger.Warnw("default_admin_created", "email", email, "password_hidden", true)
	}

	return nil
}
