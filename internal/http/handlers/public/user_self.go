package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/voucherhub/internal/constants"
	"github.com/voucherhub/internal/http/response"
	"github.com/voucherhub/internal/service"

	"github.com/gin-gonic/gin"
)

// ChangePasswordRequest 用户改密请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword 用户登录态修改密码
// 改密成功后旧令牌全部失效，客户端需要重新登录。
func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.UserAuthService.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPassword):
			respondError(c, response.CodeBadRequest, "old password incorrect", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "user not found", nil)
		default:
			respondError(c, response.CodeInternal, "password change failed", err)
		}
		return
	}

	response.Success(c, gin.H{"changed": true})
}

// GetLoginLogs 获取登录日志
// 普通用户仅能查看自己的记录，管理员可通过 user_id 查询任意用户。
func (h *Handler) GetLoginLogs(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	targetID := userID
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			respondError(c, response.CodeBadRequest, "bad request", err)
			return
		}
		if uint(parsed) != userID && getUserRole(c) != constants.UserRoleAdmin {
			respondError(c, response.CodeForbidden, "forbidden", nil)
			return
		}
		targetID = uint(parsed)
	}

	logs, total, err := h.UserLoginLogService.ListByUser(targetID, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "login log fetch failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, logs, pagination)
}
