package admin

import "github.com/voucherhub/internal/provider"

// Handler 管理侧接口处理器入口
// 说明：用户管理、代金券管理与审计日志 API。
type Handler struct {
	*provider.Container
}

// New 创建管理处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
