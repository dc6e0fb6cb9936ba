package public

import (
	"errors"

	"github.com/voucherhub/internal/http/response"
	"github.com/voucherhub/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var registerErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, msg: "invalid email"},
	{target: service.ErrEmailExists, code: response.CodeConflict, msg: "email already registered"},
	{target: service.ErrUsernameExists, code: response.CodeConflict, msg: "username already taken"},
}

var voucherRedeemErrorRules = []mappedHandlerError{
	{target: service.ErrVoucherNotFound, code: response.CodeNotFound, msg: "voucher not found"},
	{target: service.ErrVoucherInactive, code: response.CodeBadRequest, msg: "voucher is not active"},
	{target: service.ErrVoucherOutOfWindow, code: response.CodeBadRequest, msg: "voucher is outside its validity window"},
	{target: service.ErrVoucherExhausted, code: response.CodeConflict, msg: "voucher usage limit reached"},
	{target: service.ErrVoucherBelowMinimum, code: response.CodeBadRequest, msg: "purchase amount below voucher minimum"},
	{target: service.ErrVoucherInvalid, code: response.CodeBadRequest, msg: "voucher is invalid"},
}

func respondVoucherRedeemError(c *gin.Context, err error) {
	respondWithMappedError(c, err, voucherRedeemErrorRules, response.CodeInternal, "voucher redeem failed")
}
