package public

import "github.com/voucherhub/internal/provider"

// Handler 公开与用户侧接口处理器入口
// 说明：认证、验证码以及用户侧代金券 API。
type Handler struct {
	*provider.Container
}

// New 创建处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
