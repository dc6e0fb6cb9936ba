package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/voucherhub/internal/constants"
	"github.com/voucherhub/internal/http/response"
	"github.com/voucherhub/internal/repository"
	"github.com/voucherhub/internal/service"

	"github.com/gin-gonic/gin"
)

// GetUsers 获取用户列表
// ADMIN/MANAGER 可见全部，普通用户仅能看到自己。
func (h *Handler) GetUsers(c *gin.Context) {
	actorID, ok := getUserID(c)
	if !ok {
		return
	}
	role := getUserRole(c)
	if role != constants.UserRoleAdmin && role != constants.UserRoleManager {
		user, err := h.UserAdminService.GetByID(actorID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				respondError(c, response.CodeNotFound, "user not found", nil)
				return
			}
			respondError(c, response.CodeInternal, "user fetch failed", err)
			return
		}
		pagination := response.Pagination{Page: 1, PageSize: 1, Total: 1, TotalPage: 1}
		response.SuccessWithPage(c, []gin.H{userView(user)}, pagination)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	var isActive *bool
	if raw := c.Query("is_active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "bad request", err)
			return
		}
		isActive = &parsed
	}

	users, total, err := h.UserAdminService.List(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("search")),
		Role:     strings.ToUpper(strings.TrimSpace(c.Query("role"))),
		IsActive: isActive,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "user fetch failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, userViews(users), pagination)
}

// GetUser 获取用户详情（本人或 ADMIN/MANAGER）
func (h *Handler) GetUser(c *gin.Context) {
	actorID, ok := getUserID(c)
	if !ok {
		return
	}
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || targetID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	role := getUserRole(c)
	if uint(targetID) != actorID && role != constants.UserRoleAdmin && role != constants.UserRoleManager {
		respondError(c, response.CodeForbidden, "forbidden", nil)
		return
	}

	user, err := h.UserAdminService.GetByID(uint(targetID))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "user not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "user fetch failed", err)
		return
	}

	response.Success(c, userView(user))
}

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required"`
	Username  string `json:"username"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// CreateUser 创建用户（仅 ADMIN，可指定角色）
func (h *Handler) CreateUser(c *gin.Context) {
	actorID, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	user, err := h.UserAdminService.Create(service.CreateUserInput{
		Email:      req.Email,
		Username:   req.Username,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Role:       req.Role,
		ActorID:    actorID,
		ActorEmail: getUserEmail(c),
		RequestID:  getRequestID(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "invalid email", nil)
		case errors.Is(err, service.ErrInvalidRole):
			respondError(c, response.CodeBadRequest, "invalid role", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrEmailExists):
			respondError(c, response.CodeConflict, "email already registered", nil)
		case errors.Is(err, service.ErrUsernameExists):
			respondError(c, response.CodeConflict, "username already taken", nil)
		default:
			respondError(c, response.CodeInternal, "user create failed", err)
		}
		return
	}

	response.Created(c, userView(user))
}

// UpdateUserRequest 更新用户请求
type UpdateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"is_active"`
}

// UpdateUser 更新用户
// 本人仅可更新资料字段，ADMIN 可额外调整角色与启用状态。
func (h *Handler) UpdateUser(c *gin.Context) {
	actorID, ok := getUserID(c)
	if !ok {
		return
	}
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || targetID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	role := getUserRole(c)
	if role != constants.UserRoleAdmin {
		if uint(targetID) != actorID {
			respondError(c, response.CodeForbidden, "forbidden", nil)
			return
		}
		if req.Role != nil || req.IsActive != nil {
			respondError(c, response.CodeForbidden, "only admins may change role or active state", nil)
			return
		}
		user, err := h.UserAuthService.UpdateProfile(actorID, req.FirstName, req.LastName)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrProfileEmpty):
				respondError(c, response.CodeBadRequest, "no profile fields provided", nil)
			case errors.Is(err, service.ErrNotFound):
				respondError(c, response.CodeNotFound, "user not found", nil)
			default:
				respondError(c, response.CodeInternal, "user update failed", err)
			}
			return
		}
		response.Success(c, userView(user))
		return
	}

	user, err := h.UserAdminService.Update(uint(targetID), service.UpdateUserInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Role:       req.Role,
		IsActive:   req.IsActive,
		ActorID:    actorID,
		ActorEmail: getUserEmail(c),
		RequestID:  getRequestID(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "user not found", nil)
		case errors.Is(err, service.ErrInvalidRole):
			respondError(c, response.CodeBadRequest, "invalid role", nil)
		default:
			respondError(c, response.CodeInternal, "user update failed", err)
		}
		return
	}

	response.Success(c, userView(user))
}

// DeleteUser 删除用户（仅 ADMIN，不允许删除自己）
func (h *Handler) DeleteUser(c *gin.Context) {
	actorID, ok := getUserID(c)
	if !ok {
		return
	}
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || targetID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.UserAdminService.Delete(uint(targetID), actorID, getUserEmail(c), getRequestID(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrCannotDeleteSelf):
			respondError(c, response.CodeBadRequest, "cannot delete yourself", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "user not found", nil)
		default:
			respondError(c, response.CodeInternal, "user delete failed", err)
		}
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// ActivateUser 启用用户（仅 ADMIN）
func (h *Handler) ActivateUser(c *gin.Context) {
	h.setUserActive(c, true)
}

// DeactivateUser 停用用户（仅 ADMIN）
// 停用后该用户已签发的令牌立即失效。
func (h *Handler) DeactivateUser(c *gin.Context) {
	h.setUserActive(c, false)
}

func (h *Handler) setUserActive(c *gin.Context, active bool) {
	actorID, ok := getUserID(c)
	if !ok {
		return
	}
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || targetID == 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	user, err := h.UserAdminService.SetActive(uint(targetID), active, actorID, getUserEmail(c), getRequestID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "user not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "user update failed", err)
		return
	}

	response.Success(c, userView(user))
}
