package repository

import (
	"github.com/voucherhub/internal/models"

	"gorm.io/gorm"
)

// VoucherUsageRepository 代金券使用记录数据访问接口
type VoucherUsageRepository interface {
	Create(usage *models.VoucherUsage) error
	CountByUser(voucherID, userID uint) (int64, error)
	ListByVoucher(filter VoucherUsageListFilter) ([]models.VoucherUsage, int64, error)
	ListByUser(filter VoucherUsageListFilter) ([]models.VoucherUsage, int64, error)
	WithTx(tx *gorm.DB) *GormVoucherUsageRepository
}

// GormVoucherUsageRepository GORM 实现
type GormVoucherUsageRepository struct {
	db *gorm.DB
}

// NewVoucherUsageRepository 创建代金券使用记录仓库
func NewVoucherUsageRepository(db *gorm.DB) *GormVoucherUsageRepository {
	return &GormVoucherUsageRepository{db: db}
}

// WithTx 绑定事务
func (r *GormVoucherUsageRepository) WithTx(tx *gorm.DB) *GormVoucherUsageRepository {
	if tx == nil {
		return r
	}
	return &GormVoucherUsageRepository{db: tx}
}

// Create 创建使用记录
func (r *GormVoucherUsageRepository) Create(usage *models.VoucherUsage) error {
	return r.db.Create(usage).Error
}

// CountByUser 获取用户对某券的使用次数
func (r *GormVoucherUsageRepository) CountByUser(voucherID, userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.VoucherUsage{}).
		Where("voucher_id = ? AND user_id = ?", voucherID, userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListByVoucher 获取某券的使用记录（按时间倒序）
func (r *GormVoucherUsageRepository) ListByVoucher(filter VoucherUsageListFilter) ([]models.VoucherUsage, int64, error) {
	query := r.db.Model(&models.VoucherUsage{}).Where("voucher_id = ?", filter.VoucherID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var usages []models.VoucherUsage
	if err := query.Order("id desc").Find(&usages).Error; err != nil {
		return nil, 0, err
	}
	return usages, total, nil
}

// ListByUser 获取用户的使用记录（按时间倒序）
func (r *GormVoucherUsageRepository) ListByUser(filter VoucherUsageListFilter) ([]models.VoucherUsage, int64, error) {
	query := r.db.Model(&models.VoucherUsage{}).Where("user_id = ?", filter.UserID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var usages []models.VoucherUsage
	if err := query.Order("id desc").Find(&usages).Error; err != nil {
		return nil, 0, err
	}
	return usages, total, nil
}
