package repository

import (
	"errors"
	"time"

	"github.com/voucherhub/internal/constants"
	"github.com/voucherhub/internal/models"

	"gorm.io/gorm"
)

// VoucherRepository 代金券数据访问接口
type VoucherRepository interface {
	GetByID(id uint) (*models.Voucher, error)
	GetByCode(code string) (*models.Voucher, error)
	Create(voucher *models.Voucher) error
	Update(voucher *models.Voucher) error
	Delete(id uint) error
	List(filter VoucherListFilter) ([]models.Voucher, int64, error)
	MarkExpired(id uint) (bool, error)
	RedeemIncrement(id uint) (bool, error)
	ExpireDue(now time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormVoucherRepository
}

// GormVoucherRepository GORM 实现
type GormVoucherRepository struct {
	db *gorm.DB
}

// NewVoucherRepository 创建代金券仓库
func NewVoucherRepository(db *gorm.DB) *GormVoucherRepository {
	return &GormVoucherRepository{db: db}
}

// WithTx 绑定事务
func (r *GormVoucherRepository) WithTx(tx *gorm.DB) *GormVoucherRepository {
	if tx == nil {
		return r
	}
	return &GormVoucherRepository{db: tx}
}

// GetByID 根据ID获取代金券
func (r *GormVoucherRepository) GetByID(id uint) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := r.db.First(&voucher, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &voucher, nil
}

// GetByCode 根据券码获取代金券
func (r *GormVoucherRepository) GetByCode(code string) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := r.db.Where("code = ?", code).First(&voucher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &voucher, nil
}

// Create 创建代金券
func (r *GormVoucherRepository) Create(voucher *models.Voucher) error {
	return r.db.Create(voucher).Error
}

// Update 更新代金券
func (r *GormVoucherRepository) Update(voucher *models.Voucher) error {
	return r.db.Save(voucher).Error
}

// Delete 删除代金券
func (r *GormVoucherRepository) Delete(id uint) error {
	return r.db.Delete(&models.Voucher{}, id).Error
}

// List 获取代金券列表
func (r *GormVoucherRepository) List(filter VoucherListFilter) ([]models.Voucher, int64, error) {
	var vouchers []models.Voucher
	query := r.db.Model(&models.Voucher{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DiscountType != "" {
		query = query.Where("discount_type = ?", filter.DiscountType)
	}
	if filter.CreatedBy > 0 {
		query = query.Where("created_by = ?", filter.CreatedBy)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		condition, argCount := buildLikeCondition(r.db, []string{"code", "name"})
		query = query.Where(condition, repeatLikeArgs(like, argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("id desc").Find(&vouchers).Error; err != nil {
		return nil, 0, err
	}
	return vouchers, total, nil
}

// MarkExpired 将 ACTIVE 状态的代金券标记为过期
// 返回是否实际发生了状态变更。
func (r *GormVoucherRepository) MarkExpired(id uint) (bool, error) {
	result := r.db.Model(&models.Voucher{}).
		Where("id = ? AND status = ?", id, constants.VoucherStatusActive).
		UpdateColumn("status", constants.VoucherStatusExpired)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RedeemIncrement 原子递增使用次数，带上限守卫
// 只有 ACTIVE 且未达上限的券会被更新；当递增后达到上限时同一条 UPDATE 将状态置为 USED。
// 返回是否成功占用一次使用额度。
func (r *GormVoucherRepository) RedeemIncrement(id uint) (bool, error) {
	result := r.db.Model(&models.Voucher{}).
		Where("id = ? AND status = ?", id, constants.VoucherStatusActive).
		Where("usage_limit IS NULL OR usage_count < usage_limit").
		UpdateColumns(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count + 1"),
			"status": gorm.Expr(
				"CASE WHEN usage_limit IS NOT NULL AND usage_count + 1 >= usage_limit THEN ? ELSE status END",
				constants.VoucherStatusUsed,
			),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ExpireDue 批量将过了有效期的 ACTIVE 券置为 EXPIRED
func (r *GormVoucherRepository) ExpireDue(now time.Time) (int64, error) {
	result := r.db.Model(&models.Voucher{}).
		Where("status = ? AND valid_until < ?", constants.VoucherStatusActive, now).
		UpdateColumn("status", constants.VoucherStatusExpired)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
