package public

import (
	"errors"
	"strconv"

	"github.com/voucherhub/internal/constants"
	"github.com/voucherhub/internal/http/response"
	"github.com/voucherhub/internal/models"
	"github.com/voucherhub/internal/repository"
	"github.com/voucherhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// GetVouchers 获取代金券列表
func (h *Handler) GetVouchers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	vouchers, total, err := h.VoucherAdminService.List(repository.VoucherListFilter{
		Page:         page,
		PageSize:     pageSize,
		Status:       c.Query("status"),
		DiscountType: c.Query("discount_type"),
		Keyword:      c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "voucher fetch failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, voucherViews(vouchers), pagination)
}

// GetVoucher 获取代金券详情
func (h *Handler) GetVoucher(c *gin.Context) {
	voucherID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || voucherID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	voucher, err := h.VoucherAdminService.GetByID(uint(voucherID))
	if err != nil {
		if errors.Is(err, service.ErrVoucherNotFound) {
			respondError(c, response.CodeNotFound, "voucher not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "voucher fetch failed", err)
		return
	}

	response.Success(c, voucherView(voucher))
}

// ValidateVoucherRequest 校验代金券请求
// 金额字段允许为 0，缺省按 0 处理。
type ValidateVoucherRequest struct {
	Code           string   `json:"code" binding:"required"`
	PurchaseAmount *float64 `json:"purchase_amount"`
	ShippingAmount *float64 `json:"shipping_amount"`
}

// amountToMoney 金额入参转 Money，nil 按 0 处理，负数拒绝
func amountToMoney(amount *float64) (models.Money, bool) {
	if amount == nil {
		return models.Money{}, true
	}
	if *amount < 0 {
		return models.Money{}, false
	}
	return models.NewMoneyFromDecimal(decimal.NewFromFloat(*amount)), true
}

// ValidateVoucher 校验券码并返回折扣
// 校验失败时在响应数据中携带机器可读的 reason。
func (h *Handler) ValidateVoucher(c *gin.Context) {
	var req ValidateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	purchase, ok := amountToMoney(req.PurchaseAmount)
	if !ok {
		respondError(c, response.CodeBadRequest, "purchase_amount must not be negative", nil)
		return
	}
	shipping, ok := amountToMoney(req.ShippingAmount)
	if !ok {
		respondError(c, response.CodeBadRequest, "shipping_amount must not be negative", nil)
		return
	}

	result, err := h.VoucherService.Validate(req.Code, purchase, shipping)
	if err != nil {
		if reason, ok := validateReasonForError(err); ok {
			code := response.CodeBadRequest
			if reason == constants.ValidateReasonNotFound {
				code = response.CodeNotFound
			}
			response.ErrorWithData(c, code, "voucher validation failed", gin.H{
				"valid":  false,
				"reason": reason,
			})
			return
		}
		respondError(c, response.CodeInternal, "voucher validation failed", err)
		return
	}

	response.Success(c, gin.H{
		"valid":           true,
		"voucher":         voucherView(result.Voucher),
		"discount_amount": result.Discount,
	})
}

// validateReasonForError 业务错误到校验失败原因的映射
func validateReasonForError(err error) (string, bool) {
	switch {
	case errors.Is(err, service.ErrVoucherNotFound):
		return constants.ValidateReasonNotFound, true
	case errors.Is(err, service.ErrVoucherInactive):
		return constants.ValidateReasonInactive, true
	case errors.Is(err, service.ErrVoucherOutOfWindow):
		return constants.ValidateReasonOutOfWindow, true
	case errors.Is(err, service.ErrVoucherExhausted):
		return constants.ValidateReasonExhausted, true
	case errors.Is(err, service.ErrVoucherBelowMinimum):
		return constants.ValidateReasonBelowMinimum, true
	}
	return "", false
}

// UseVoucherRequest 核销代金券请求
// 金额字段允许为 0，缺省按 0 处理。
type UseVoucherRequest struct {
	PurchaseAmount *float64 `json:"purchase_amount"`
	ShippingAmount *float64 `json:"shipping_amount"`
}

// UseVoucher 核销代金券
func (h *Handler) UseVoucher(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	voucherID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || voucherID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	var req UseVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	purchase, ok := amountToMoney(req.PurchaseAmount)
	if !ok {
		respondError(c, response.CodeBadRequest, "purchase_amount must not be negative", nil)
		return
	}
	shipping, ok := amountToMoney(req.ShippingAmount)
	if !ok {
		respondError(c, response.CodeBadRequest, "shipping_amount must not be negative", nil)
		return
	}

	usage, err := h.VoucherService.Redeem(service.RedeemInput{
		VoucherID:      uint(voucherID),
		UserID:         userID,
		PurchaseAmount: purchase,
		ShippingAmount: shipping,
		RequestID:      getRequestID(c),
		ActorEmail:     getUserEmail(c),
	})
	if err != nil {
		respondVoucherRedeemError(c, err)
		return
	}

	response.Success(c, usage)
}

// GetMyVoucherUsages 获取当前用户的核销记录
func (h *Handler) GetMyVoucherUsages(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	usages, total, err := h.VoucherService.ListUsagesByUser(repository.VoucherUsageListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
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
