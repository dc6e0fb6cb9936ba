package models

import (
	"time"

	"github.com/voucherhub/internal/constants"

	"gorm.io/gorm"
)

// Voucher 代金券
// 说明：单表承载三种折扣变体，discount_type 决定哪些变体字段有效。
type Voucher struct {
	ID                uint           `gorm:"primarykey" json:"id"`                          // 主键
	Code              string         `gorm:"uniqueIndex;not null" json:"code"`              // 券码（大写、去空白）
	Name              string         `gorm:"not null" json:"name"`                          // 名称
	Description       string         `gorm:"type:text" json:"description"`                  // 描述
	DiscountType      string         `gorm:"index;not null" json:"discount_type"`           // 折扣类型（PERCENTAGE/FIXED_AMOUNT/FREE_SHIPPING）
	Percentage        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"percentage"`            // 折扣百分比（PERCENTAGE）
	MaxDiscountAmount *Money         `gorm:"type:decimal(20,2)" json:"max_discount_amount"`                      // 最大优惠金额（PERCENTAGE，可空）
	DiscountAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`       // 固定优惠金额（FIXED_AMOUNT）
	MaxShippingAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"max_shipping_amount"`   // 最高免运费金额（FREE_SHIPPING）
	MinPurchaseAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_purchase_amount"`   // 最低消费门槛
	UsageLimit        *int           `json:"usage_limit"`                                   // 总使用上限（nil 表示不限制）
	UsageCount        int            `gorm:"not null;default:0" json:"usage_count"`         // 已使用次数
	ValidFrom         time.Time      `gorm:"index;not null" json:"valid_from"`              // 生效时间
	ValidUntil        time.Time      `gorm:"index;not null" json:"valid_until"`             // 失效时间
	Status            string         `gorm:"index;not null;default:'ACTIVE'" json:"status"` // 状态（ACTIVE/EXPIRED/USED/CANCELLED）
	CreatedBy         uint           `gorm:"index" json:"created_by"`                       // 创建人用户ID
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                       // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间
}

// TableName 指定表名
func (Voucher) TableName() string {
	return "vouchers"
}

// IsIndefinite 有效期跨度达到长期阈值（仅展示用，不参与校验）
func (v Voucher) IsIndefinite() bool {
	return v.ValidUntil.Sub(v.ValidFrom) >= time.Duration(constants.IndefiniteWindowYears)*365*24*time.Hour
}

// IsTerminal 状态是否为终态
func (v Voucher) IsTerminal() bool {
	switch v.Status {
	case constants.VoucherStatusExpired, constants.VoucherStatusUsed, constants.VoucherStatusCancelled:
		return true
	}
	return false
}

// InWindow 指定时刻是否处于有效期内
func (v Voucher) InWindow(now time.Time) bool {
	return !now.Before(v.ValidFrom) && !now.After(v.ValidUntil)
}

// LimitReached 使用次数是否已达上限
func (v Voucher) LimitReached() bool {
	return v.UsageLimit != nil && v.UsageCount >= *v.UsageLimit
}
