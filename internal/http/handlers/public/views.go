package public

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

func voucherViews(vouchers []models.Voucher) []VoucherView {
	views := make([]VoucherView, 0, len(vouchers))
	for i := range vouchers {
		views = append(views, voucherView(&vouchers[i]))
	}
	return views
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
