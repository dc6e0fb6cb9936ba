package admin

import (
	"github.com/voucherhub/internal/models"

	"github.com/gin-gonic/gin"
)

// VoucherView 代金券响应结构
type VoucherView struct {
	models.Voucher
	IsIndefinite bool `json:"is_indefinite"`
}

func voucherView(voucher *models.Voucher) VoucherView {
	if voucher == nil {
		return VoucherView{}
	}
	return VoucherView{
		Voucher:      *voucher,
		IsIndefinite: voucher.IsIndefinite(),
	}
}

func userView(user *models.User) gin.H {
	if user == nil {
		return gin.H{}
	}
	return gin.H{
		"id":            user.ID,
		"email":         user.Email,
		"username":      user.Username,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"full_name":     user.FullName(),
		"role":          user.Role,
		"is_active":     user.IsActive,
		"last_login_at": user.LastLoginAt,
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	}
}

func userViews(users []models.User) []gin.H {
	views := make([]gin.H, 0, len(users))
	for i := range users {
		views = append(views, userView(&users[i]))
	}
	return views
}
