package public

import (
	"errors"
	"strings"

	"github.com/voucherhub/internal/constants"
	"github.com/voucherhub/internal/http/response"
	"github.com/voucherhub/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email     string `json:"email" binding:"required"`
	Username  string `json:"username"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Register 用户注册
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	user, tokens, err := h.UserAuthService.Register(service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if errors.Is(err, service.ErrWeakPassword) {
			respondError(c, response.CodeBadRequest, err.Error(), nil)
			return
		}
		respondWithMappedError(c, err, registerErrorRules, response.CodeInternal, "register failed")
		return
	}

	response.Created(c, gin.H{
		"tokens": tokens,
		"user":   userView(user),
	})
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email          string                `json:"email" binding:"required"`
	Password       string                `json:"password" binding:"required"`
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

// Login 用户登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.recordUserLogin(c, req.Email, 0, constants.LoginLogStatusFailed, constants.LoginLogFailReasonBadRequest)
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if h.CaptchaService != nil && h.CaptchaService.Enabled() {
		if captchaErr := h.CaptchaService.Verify(req.CaptchaPayload.toServicePayload()); captchaErr != nil {
			h.recordUserLogin(c, req.Email, 0, constants.LoginLogStatusFailed, constants.LoginLogFailReasonCaptchaInvalid)
			respondError(c, response.CodeBadRequest, "captcha invalid", nil)
			return
		}
	}

	user, tokens, err := h.UserAuthService.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			h.recordUserLogin(c, req.Email, 0, constants.LoginLogStatusFailed, constants.LoginLogFailReasonInvalidCredentials)
			respondError(c, response.CodeBadRequest, "invalid email", nil)
		case errors.Is(err, service.ErrInvalidCredentials):
			h.recordUserLogin(c, req.Email, 0, constants.LoginLogStatusFailed, constants.LoginLogFailReasonInvalidCredentials)
			respondError(c, response.CodeUnauthorized, "invalid email or password", nil)
		case errors.Is(err, service.ErrUserDisabled):
			h.recordUserLogin(c, req.Email, 0, constants.LoginLogStatusFailed, constants.LoginLogFailReasonUserDisabled)
			respondError(c, response.CodeUnauthorized, "user is disabled", nil)
		default:
			h.recordUserLogin(c, req.Email, 0, constants.LoginLogStatusFailed, constants.LoginLogFailReasonInternalError)
			respondError(c, response.CodeInternal, "login failed", err)
		}
		return
	}

	h.recordUserLogin(c, user.Email, user.ID, constants.LoginLogStatusSuccess, "")
	response.Success(c, gin.H{
		"tokens": tokens,
		"user":   userView(user),
	})
}

// RefreshRequest 刷新令牌请求
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// Refresh 刷新访问令牌
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	access, expiresAt, _, err := h.AuthService.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshTokenDenied):
			respondError(c, response.CodeUnauthorized, "refresh token revoked", nil)
		case errors.Is(err, service.ErrUserDisabled):
			respondError(c, response.CodeUnauthorized, "user is disabled", nil)
		case errors.Is(err, service.ErrRefreshTokenInvalid):
			respondError(c, response.CodeUnauthorized, "refresh token invalid", nil)
		default:
			respondError(c, response.CodeInternal, "refresh failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"access":     access,
		"expires_at": expiresAt,
	})
}

// Logout 注销刷新令牌
func (h *Handler) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.AuthService.Logout(c.Request.Context(), req.Refresh); err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshTokenInvalid), errors.Is(err, service.ErrRefreshTokenDenied):
			respondError(c, response.CodeBadRequest, "refresh token invalid", nil)
		default:
			respondError(c, response.CodeInternal, "logout failed", err)
		}
		return
	}

	response.Success(c, gin.H{"logged_out": true})
}

func (h *Handler) recordUserLogin(c *gin.Context, email string, userID uint, status, failReason string) {
	if h == nil || h.UserLoginLogService == nil {
		return
	}
	_ = h.UserLoginLogService.Record(service.RecordUserLoginInput{
		UserID:     userID,
		Email:      strings.TrimSpace(email),
		Status:     status,
		FailReason: failReason,
		ClientIP:   c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
		RequestID:  getRequestID(c),
	})
}
