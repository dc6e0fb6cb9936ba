package models

import (
	"time"

	"gorm.io/gorm"
)

// VoucherUsage 代金券使用记录
type VoucherUsage struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                         // 主键
	VoucherID      uint           `gorm:"index;not null" json:"voucher_id"`                             // 代金券ID
	UserID         uint           `gorm:"index;not null" json:"user_id"`                                // 用户ID
	PurchaseAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"purchase_amount"` // 消费金额
	ShippingAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_amount"` // 运费金额
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 实际优惠金额
	UsedAt         time.Time      `gorm:"index;not null" json:"used_at"`                                // 使用时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间
}

// TableName 指定表名
func (VoucherUsage) TableName() string {
	return "voucher_usages"
}
