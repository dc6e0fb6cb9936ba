package public

import (
	"strings"

	"github.com/voucherhub/internal/service"
)

// CaptchaPayloadRequest 验证码请求载荷
// 未启用验证码时允许空载荷，由 service 层按配置判定。
type CaptchaPayloadRequest struct {
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

func (r CaptchaPayloadRequest) toServicePayload() service.CaptchaVerifyPayload {
	return service.CaptchaVerifyPayload{
		CaptchaID:   strings.TrimSpace(r.CaptchaID),
		CaptchaCode: strings.TrimSpace(r.CaptchaCode),
	}
}
