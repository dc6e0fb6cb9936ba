package service

import (
	"time"

	"github.com/voucherhub/internal/constants"
	"github.com/voucherhub/internal/models"
	"github.com/voucherhub/internal/repository"

	"github.com/shopspring/decimal"
)

// VoucherAdminService 代金券管理服务
type VoucherAdminService struct {
	repo  repository.VoucherRepository
	audit *AuditService
}

// NewVoucherAdminService 创建代金券管理服务
func NewVoucherAdminService(repo repository.VoucherRepository, audit *AuditService) *VoucherAdminService {
	return &VoucherAdminService{repo: repo, audit: audit}
}

// CreateVoucherInput 创建代金券输入
type CreateVoucherInput struct {
	Code              string
	Name              string
	Description       string
	DiscountType      string
	Percentage        models.Money
	MaxDiscountAmount *models.Money
	DiscountAmount    models.Money
	MaxShippingAmount models.Money
	MinPurchaseAmount models.Money
	UsageLimit        *int
	ValidFrom         time.Time
	ValidUntil        time.Time
	CreatedBy         uint
	RequestID         string
	ActorEmail        string
}

// UpdateVoucherInput 更新代金券输入
// 折扣类型不可变更，仅允许调整明细字段。
type UpdateVoucherInput struct {
	Name              *string
	Description       *string
	Percentage        *models.Money
	MaxDiscountAmount *models.Money
	DiscountAmount    *models.Money
	MaxShippingAmount *models.Money
	MinPurchaseAmount *models.Money
	UsageLimit        *int
	ValidFrom         *time.Time
	ValidUntil        *time.Time
	RequestID         string
	ActorID           uint
	ActorEmail        string
}

// Create 创建代金券
func (s *VoucherAdminService) Create(input CreateVoucherInput) (*models.Voucher, error) {
	code := NormalizeVoucherCode(input.Code)
	if code == "" || input.Name == "" {
		return nil, ErrVoucherInvalid
	}
	if err := validateVariantFields(input.DiscountType, input.Percentage, input.MaxDiscountAmount, input.DiscountAmount, input.MaxShippingAmount); err != nil {
		return nil, err
	}
	if input.MinPurchaseAmount.Decimal.IsNegative() {
		return nil, ErrVoucherInvalid
	}
	if input.UsageLimit != nil && *input.UsageLimit <= 0 {
		return nil, ErrVoucherInvalid
	}
	if !input.ValidUntil.After(input.ValidFrom) {
		return nil, ErrVoucherInvalid
	}

	exist, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrVoucherCodeExists
	}

	voucher := &models.Voucher{
		Code:              code,
		Name:              input.Name,
		Description:       input.Description,
		DiscountType:      input.DiscountType,
		Percentage:        input.Percentage,
		MaxDiscountAmount: input.MaxDiscountAmount,
		DiscountAmount:    input.DiscountAmount,
		MaxShippingAmount: input.MaxShippingAmount,
		MinPurchaseAmount: input.MinPurchaseAmount,
		UsageLimit:        input.UsageLimit,
		UsageCount:        0,
		ValidFrom:         input.ValidFrom,
		ValidUntil:        input.ValidUntil,
		Status:            constants.VoucherStatusActive,
		CreatedBy:         input.CreatedBy,
	}

	if err := s.repo.Create(voucher); err != nil {
		return nil, err
	}

	s.record(input.CreatedBy, input.ActorEmail, constants.AuditActionVoucherCreate, voucher, input.RequestID)
	return voucher, nil
}

// Update 更新代金券
func (s *VoucherAdminService) Update(id uint, input UpdateVoucherInput) (*models.Voucher, error) {
	if id == 0 {
		return nil, ErrVoucherInvalid
	}
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrVoucherNotFound
	}
	if existing.IsTerminal() {
		return nil, ErrVoucherImmutable
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrVoucherInvalid
		}
		existing.Name = *input.Name
	}
	if input.Description != nil {
		existing.Description = *input.Description
	}
	if input.Percentage != nil {
		existing.Percentage = *input.Percentage
	}
	if input.MaxDiscountAmount != nil {
		existing.MaxDiscountAmount = input.MaxDiscountAmount
	}
	if input.DiscountAmount != nil {
		existing.DiscountAmount = *input.DiscountAmount
	}
	if input.MaxShippingAmount != nil {
		existing.MaxShippingAmount = *input.MaxShippingAmount
	}
	if input.MinPurchaseAmount != nil {
		if input.MinPurchaseAmount.Decimal.IsNegative() {
			return nil, ErrVoucherInvalid
		}
		existing.MinPurchaseAmount = *input.MinPurchaseAmount
	}
	if input.UsageLimit != nil {
		if *input.UsageLimit <= 0 || *input.UsageLimit < existing.UsageCount {
			return nil, ErrVoucherInvalid
		}
		existing.UsageLimit = input.UsageLimit
	}
	if input.ValidFrom != nil {
		existing.ValidFrom = *input.ValidFrom
	}
	if input.ValidUntil != nil {
		existing.ValidUntil = *input.ValidUntil
	}
	if !existing.ValidUntil.After(existing.ValidFrom) {
		return nil, ErrVoucherInvalid
	}

	if err := validateVariantFields(existing.DiscountType, existing.Percentage, existing.MaxDiscountAmount, existing.DiscountAmount, existing.MaxShippingAmount); err != nil {
		return nil, err
	}

	if err := s.repo.Update(existing); err != nil {
		return nil, ErrVoucherUpdateFailed
	}

	s.record(input.ActorID, input.ActorEmail, constants.AuditActionVoucherUpdate, existing, input.RequestID)
	return existing, nil
}

// Cancel 作废代金券（仅 ACTIVE 可作废，作废为终态）
func (s *VoucherAdminService) Cancel(id, actorID uint, actorEmail, requestID string) (*models.Voucher, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrVoucherNotFound
	}
	if existing.Status != constants.VoucherStatusActive {
		return nil, ErrVoucherImmutable
	}

	existing.Status = constants.VoucherStatusCancelled
	if err := s.repo.Update(existing); err != nil {
		return nil, ErrVoucherUpdateFailed
	}

	s.record(actorID, actorEmail, constants.AuditActionVoucherCancel, existing, requestID)
	return existing, nil
}

// Delete 删除代金券
func (s *VoucherAdminService) Delete(id, actorID uint, actorEmail, requestID string) error {
	if id == 0 {
		return ErrVoucherInvalid
	}
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrVoucherNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return ErrVoucherDeleteFailed
	}

	s.record(actorID, actorEmail, constants.AuditActionVoucherDelete, existing, requestID)
	return nil
}

// GetByID 获取代金券
func (s *VoucherAdminService) GetByID(id uint) (*models.Voucher, error) {
	voucher, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, ErrVoucherNotFound
	}
	return voucher, nil
}

// List 获取代金券列表
func (s *VoucherAdminService) List(filter repository.VoucherListFilter) ([]models.Voucher, int64, error) {
	return s.repo.List(filter)
}

func (s *VoucherAdminService) record(actorID uint, actorEmail, action string, voucher *models.Voucher, requestID string) {
	if s.audit == nil || voucher == nil {
		return
	}
	s.audit.Record(AuditEntry{
		ActorID:    actorID,
		ActorEmail: actorEmail,
		Action:     action,
		Object:     voucher.Code,
		RequestID:  requestID,
		Detail: models.JSON{
			"voucher_id":    voucher.ID,
			"discount_type": voucher.DiscountType,
			"status":        voucher.Status,
		},
	})
}

// validateVariantFields 按折扣类型校验变体字段
func validateVariantFields(discountType string, percentage models.Money, maxDiscount *models.Money, discountAmount, maxShipping models.Money) error {
	switch discountType {
	case constants.DiscountTypePercentage:
		if percentage.Decimal.LessThanOrEqual(decimal.Zero) || percentage.Decimal.GreaterThan(decimal.NewFromInt(100)) {
			return ErrVoucherInvalid
		}
		if maxDiscount != nil && maxDiscount.Decimal.LessThanOrEqual(decimal.Zero) {
			return ErrVoucherInvalid
		}
	case constants.DiscountTypeFixedAmount:
		if discountAmount.Decimal.LessThanOrEqual(decimal.Zero) {
			return ErrVoucherInvalid
		}
	case constants.DiscountTypeFreeShipping:
		if maxShipping.Decimal.LessThanOrEqual(decimal.Zero) {
			return ErrVoucherInvalid
		}
	default:
		return ErrVoucherInvalid
	}
	return nil
}
