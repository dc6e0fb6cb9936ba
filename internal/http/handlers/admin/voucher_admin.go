package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/voucherhub/internal/http/response"
	"github.com/voucherhub/internal/models"
	"github.com/voucherhub/internal/repository"
	"github.com/voucherhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateVoucherRequest 创建代金券请求
type CreateVoucherRequest struct {
	Code              string   `json:"code" binding:"required"`
	Name              string   `json:"name" binding:"required"`
	Description       string   `json:"description"`
	DiscountType      string   `json:"discount_type" binding:"required"`
	Percentage        float64  `json:"percentage"`
	MaxDiscountAmount *float64 `json:"max_discount_amount"`
	DiscountAmount    float64  `json:"discount_amount"`
	MaxShippingAmount float64  `json:"max_shipping_amount"`
	MinPurchaseAmount float64  `json:"min_purchase_amount"`
	UsageLimit        *int     `json:"usage_limit"`
	ValidFrom         string   `json:"valid_from"`
	ValidUntil        string   `json:"valid_until"`
}

// CreateVoucher 创建代金券
func (h *Handler) CreateVoucher(c *gin.Context) {
	actorID, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	validFrom, err := parseTimeNullable(req.ValidFrom)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid valid_from", err)
		return
	}
	validUntil, err := parseTimeNullable(req.ValidUntil)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid valid_until", err)
		return
	}

	input := service.CreateVoucherInput{
		Code:              req.Code,
		Name:              req.Name,
		Description:       req.Description,
		DiscountType:      strings.ToUpper(strings.TrimSpace(req.DiscountType)),
		Percentage:        models.NewMoneyFromDecimal(decimal.NewFromFloat(req.Percentage)),
		DiscountAmount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(req.DiscountAmount)),
		MaxShippingAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(req.MaxShippingAmount)),
		MinPurchaseAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(req.MinPurchaseAmount)),
		UsageLimit:        req.UsageLimit,
		CreatedBy:         actorID,
		RequestID:         getRequestID(c),
		ActorEmail:        getUserEmail(c),
	}
	if req.MaxDiscountAmount != nil {
		cap := models.NewMoneyFromDecimal(decimal.NewFromFloat(*req.MaxDiscountAmount))
		input.MaxDiscountAmount = &cap
	}
	if validFrom != nil {
		input.ValidFrom = *validFrom
	}
	if validUntil != nil {
		input.ValidUntil = *validUntil
	}

	voucher, err := h.VoucherAdminService.Create(input)
	if err != nil {
		respondVoucherAdminError(c, err, "voucher create failed")
		return
	}

	response.Created(c, voucherView(voucher))
}

// UpdateVoucherRequest 更新代金券请求
// 折扣类型创建后不可变更。
type UpdateVoucherRequest struct {
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	Percentage        *float64 `json:"percentage"`
	MaxDiscountAmount *float64 `json:"max_discount_amount"`
	DiscountAmount    *float64 `json:"discount_amount"`
	MaxShippingAmount *float64 `json:"max_shipping_amount"`
	MinPurchaseAmount *float64 `json:"min_purchase_amount"`
	UsageLimit        *int     `json:"usage_limit"`
	ValidFrom         *string  `json:"valid_from"`
	ValidUntil        *string  `json:"valid_until"`
}

// UpdateVoucher 更新代金券
func (h *Handler) UpdateVoucher(c *gin.Context) {
	actorID, ok := getUserID(c)
	if !ok {
		return
	}
	voucherID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || voucherID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	var req UpdateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	input := service.UpdateVoucherInput{
		Name:        req.Name,
		Description: req.Description,
		UsageLimit:  req.UsageLimit,
		RequestID:   getRequestID(c),
		ActorID:     actorID,
		ActorEmail:  getUserEmail(c),
	}
	input.Percentage = moneyPtr(req.Percentage)
	input.MaxDiscountAmount = moneyPtr(req.MaxDiscountAmount)
	input.DiscountAmount = moneyPtr(req.DiscountAmount)
	input.MaxShippingAmount = moneyPtr(req.MaxShippingAmount)
	input.MinPurchaseAmount = moneyPtr(req.MinPurchaseAmount)

	if req.ValidFrom != nil {
		parsed, err := parseTimeNullable(*req.ValidFrom)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid valid_from", err)
			return
		}
		input.ValidFrom = parsed
	}
	if req.ValidUntil != nil {
		parsed, err := parseTimeNullable(*req.ValidUntil)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid valid_until", err)
			return
		}
		input.ValidUntil = parsed
	}

	voucher, err := h.VoucherAdminService.Update(uint(voucherID), input)
	if err != nil {
		respondVoucherAdminError(c, err, "voucher update failed")
		return
	}

	response.Success(c, voucherView(voucher))
}

// CancelVoucher 作废代金券
func (h *Handler) CancelVoucher(c *gin.Context) {
	actorID, ok := getUserID(c)
	if !ok {
		return
	}
	voucherID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || voucherID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	voucher, err := h.VoucherAdminService.Cancel(uint(voucherID), actorID, getUserEmail(c), getRequestID(c))
	if err != nil {
		respondVoucherAdminError(c, err, "voucher cancel failed")
		return
	}

	response.Success(c, voucherView(voucher))
}

// DeleteVoucher 删除代金券
func (h *Handler) DeleteVoucher(c *gin.Context) {
	actorID, ok := getUserID(c)
	if !ok {
		return
	}
	voucherID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || voucherID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.VoucherAdminService.Delete(uint(voucherID), actorID, getUserEmail(c), getRequestID(c)); err != nil {
		respondVoucherAdminError(c, err, "voucher delete failed")
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// GetVoucherUsages 获取某代金券的使用记录
func (h *Handler) GetVoucherUsages(c *gin.Context) {
	voucherID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || voucherID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if _, err := h.VoucherAdminService.GetByID(uint(voucherID)); err != nil {
		respondVoucherAdminError(c, err, "voucher fetch failed")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	usages, total, err := h.VoucherService.ListUsagesByVoucher(repository.VoucherUsageListFilter{
		Page:      page,
		PageSize:  pageSize,
		VoucherID: uint(voucherID),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "usage fetch failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, usages, pagination)
}

func respondVoucherAdminError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrVoucherNotFound):
		respondError(c, response.CodeNotFound, "voucher not found", nil)
	case errors.Is(err, service.ErrVoucherCodeExists):
		respondError(c, response.CodeConflict, "voucher code already exists", nil)
	case errors.Is(err, service.ErrVoucherImmutable):
		respondError(c, response.CodeConflict, "voucher is in a terminal status", nil)
	case errors.Is(err, service.ErrVoucherInvalid):
		respondError(c, response.CodeBadRequest, err.Error(), nil)
	default:
		respondError(c, response.CodeInternal, fallback, err)
	}
}

func moneyPtr(value *float64) *models.Money {
	if value == nil {
		return nil
	}
	money := models.NewMoneyFromDecimal(decimal.NewFromFloat(*value))
	return &money
}

// parseTimeNullable 解析 RFC3339 时间，空串视为未设置
func parseTimeNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
