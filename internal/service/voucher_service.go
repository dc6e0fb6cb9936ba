package service

import (
	"errors"
	"strings"
	"time"

	"github.com/voucherhub/internal/constants"
	"github.com/voucherhub/internal/logger"
	"github.com/voucherhub/internal/models"
	"github.com/voucherhub/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VoucherService 代金券校验与核销服务
type VoucherService struct {
	voucherRepo repository.VoucherRepository
	usageRepo   repository.VoucherUsageRepository
	audit       *AuditService
}

// NewVoucherService 创建代金券服务
func NewVoucherService(voucherRepo repository.VoucherRepository, usageRepo repository.VoucherUsageRepository, audit *AuditService) *VoucherService {
	return &VoucherService{
		voucherRepo: voucherRepo,
		usageRepo:   usageRepo,
		audit:       audit,
	}
}

// ValidationResult 校验结果
type ValidationResult struct {
	Voucher  *models.Voucher `json:"voucher"`
	Discount models.Money    `json:"discount"`
}

// NormalizeVoucherCode 统一券码格式（去空白并大写）
func NormalizeVoucherCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate 校验券码并计算折扣
// 检查顺序固定：不存在、非 ACTIVE、不在有效期、次数耗尽、未达门槛；命中第一个失败即返回。
// ACTIVE 但已过失效时间的券按窗口失败处理，同时惰性落库为 EXPIRED。
func (s *VoucherService) Validate(code string, purchase, shipping models.Money) (*ValidationResult, error) {
	normalized := NormalizeVoucherCode(code)
	if normalized == "" {
		return nil, ErrVoucherNotFound
	}

	voucher, err := s.voucherRepo.GetByCode(normalized)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, ErrVoucherNotFound
	}

	return s.validateLoaded(voucher, purchase, shipping, time.Now())
}

// validateLoaded 对已加载的券执行校验
// 状态检查基于落库状态：已是终态的券报非激活；仍为 ACTIVE 但窗口不满足的券
// 报窗口失败，其中已过失效时间的顺带落库为 EXPIRED。
func (s *VoucherService) validateLoaded(voucher *models.Voucher, purchase, shipping models.Money, now time.Time) (*ValidationResult, error) {
	if voucher.Status != constants.VoucherStatusActive {
		return nil, ErrVoucherInactive
	}
	if !voucher.InWindow(now) {
		s.lazyExpire(voucher, now)
		return nil, ErrVoucherOutOfWindow
	}
	if voucher.LimitReached() {
		return nil, ErrVoucherExhausted
	}
	if purchase.Decimal.LessThan(voucher.MinPurchaseAmount.Decimal) {
		return nil, ErrVoucherBelowMinimum
	}

	discount, err := calculateDiscount(voucher, purchase, shipping)
	if err != nil {
		return nil, err
	}
	return &ValidationResult{Voucher: voucher, Discount: discount}, nil
}

// lazyExpire ACTIVE 且已过失效时间的券落库为 EXPIRED
func (s *VoucherService) lazyExpire(voucher *models.Voucher, now time.Time) {
	if voucher.Status != constants.VoucherStatusActive || !now.After(voucher.ValidUntil) {
		return
	}
	changed, err := s.voucherRepo.MarkExpired(voucher.ID)
	if err != nil {
		logger.Warnw("voucher_lazy_expire_failed", "voucher_id", voucher.ID, "error", err)
		return
	}
	if changed {
		voucher.Status = constants.VoucherStatusExpired
	}
}

// calculateDiscount 按折扣类型计算优惠金额
// 结果不超过消费金额（免运费类型不超过运费），且不为负。
func calculateDiscount(voucher *models.Voucher, purchase, shipping models.Money) (models.Money, error) {
	switch voucher.DiscountType {
	case constants.DiscountTypePercentage:
		if voucher.Percentage.Decimal.LessThanOrEqual(decimal.Zero) {
			return models.Money{}, ErrVoucherInvalid
		}
		raw := purchase.Decimal.Mul(voucher.Percentage.Decimal).Div(decimal.NewFromInt(100))
		if voucher.MaxDiscountAmount != nil && voucher.MaxDiscountAmount.Decimal.IsPositive() && raw.GreaterThan(voucher.MaxDiscountAmount.Decimal) {
			raw = voucher.MaxDiscountAmount.Decimal
		}
		if raw.GreaterThan(purchase.Decimal) {
			raw = purchase.Decimal
		}
		return models.NewMoneyFromDecimal(raw), nil
	case constants.DiscountTypeFixedAmount:
		if voucher.DiscountAmount.Decimal.LessThanOrEqual(decimal.Zero) {
			return models.Money{}, ErrVoucherInvalid
		}
		return models.MinMoney(voucher.DiscountAmount, purchase), nil
	case constants.DiscountTypeFreeShipping:
		if voucher.MaxShippingAmount.Decimal.LessThanOrEqual(decimal.Zero) {
			return models.Money{}, ErrVoucherInvalid
		}
		return models.MinMoney(shipping, voucher.MaxShippingAmount), nil
	default:
		return models.Money{}, ErrVoucherInvalid
	}
}

// RedeemInput 核销输入
type RedeemInput struct {
	VoucherID      uint
	UserID         uint
	PurchaseAmount models.Money
	ShippingAmount models.Money
	RequestID      string
	ActorEmail     string
}

// Redeem 核销代金券
// 先按校验顺序检查，再在单事务内以带上限守卫的原子递增占用使用额度并写入使用记录；
// 并发核销不会突破使用上限，终态券的核销请求不会产生任何状态变化。
func (s *VoucherService) Redeem(input RedeemInput) (*models.VoucherUsage, error) {
	voucher, err := s.voucherRepo.GetByID(input.VoucherID)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, ErrVoucherNotFound
	}

	result, err := s.validateLoaded(voucher, input.PurchaseAmount, input.ShippingAmount, time.Now())
	if err != nil {
		return nil, err
	}

	usage := &models.VoucherUsage{
		VoucherID:      voucher.ID,
		UserID:         input.UserID,
		PurchaseAmount: input.PurchaseAmount,
		ShippingAmount: input.ShippingAmount,
		DiscountAmount: result.Discount,
		UsedAt:         time.Now(),
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		ok, err := s.voucherRepo.WithTx(tx).RedeemIncrement(voucher.ID)
		if err != nil {
			return err
		}
		if !ok {
			// 守卫更新未命中：并发下额度已被占满或状态已变
			return ErrVoucherRedeemRace
		}
		return s.usageRepo.WithTx(tx).Create(usage)
	})
	if err != nil {
		if errors.Is(err, ErrVoucherRedeemRace) {
			return nil, s.resolveRedeemFailure(voucher.ID)
		}
		return nil, err
	}

	if s.audit != nil {
		s.audit.Record(AuditEntry{
			ActorID:    input.UserID,
			ActorEmail: input.ActorEmail,
			Action:     constants.AuditActionVoucherRedeem,
			Object:     voucher.Code,
			RequestID:  input.RequestID,
			Detail: models.JSON{
				"voucher_id": voucher.ID,
				"discount":   result.Discount.String(),
			},
		})
	}

	return usage, nil
}

// resolveRedeemFailure 守卫更新失败后重读状态，给出确定的失败原因
func (s *VoucherService) resolveRedeemFailure(voucherID uint) error {
	current, err := s.voucherRepo.GetByID(voucherID)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrVoucherNotFound
	}
	if current.Status == constants.VoucherStatusUsed || current.LimitReached() {
		return ErrVoucherExhausted
	}
	return ErrVoucherInactive
}

// ListUsagesByVoucher 查询券的使用记录
func (s *VoucherService) ListUsagesByVoucher(filter repository.VoucherUsageListFilter) ([]models.VoucherUsage, int64, error) {
	return s.usageRepo.ListByVoucher(filter)
}

// ListUsagesByUser 查询用户的使用记录
func (s *VoucherService) ListUsagesByUser(filter repository.VoucherUsageListFilter) ([]models.VoucherUsage, int64, error) {
	return s.usageRepo.ListByUser(filter)
}

// ExpireDueVouchers 批量过期已到期的 ACTIVE 券（供后台任务调用）
func (s *VoucherService) ExpireDueVouchers(now time.Time) (int64, error) {
	return s.voucherRepo.ExpireDue(now)
}
