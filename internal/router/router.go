package router

import (
	"fmt"
	"strings"
	"time"

	"github.com/voucherhub/internal/cache"
	"github.com/voucherhub/internal/config"
	adminhandlers "github.com/voucherhub/internal/http/handlers/admin"
	publichandlers "github.com/voucherhub/internal/http/handlers/public"
	"github.com/voucherhub/internal/logger"
	"github.com/voucherhub/internal/models"
	"github.com/voucherhub/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/管理分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "vh"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}
	registerRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:register", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 健康检查
	r.GET("/health", healthHandler)

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		apiV1.GET("/health", healthHandler)

		// 认证接口（无需令牌）
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", RateLimitMiddleware(redisClient, registerRule, KeyByIP), publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
			auth.POST("/refresh", publicHandler.Refresh)
			auth.POST("/logout", publicHandler.Logout)
			auth.GET("/captcha", publicHandler.GetImageCaptcha)
		}

		// 需鉴权的接口，路由级授权矩阵由 Casbin 维护
		authorized := apiV1.Group("")
		authorized.Use(JWTAuthMiddleware(c.AuthService, c.UserRepo), RBACMiddleware(c.AuthzService))
		{
			// 用户管理
			authorized.GET("/users", adminHandler.GetUsers)
			authorized.POST("/users", adminHandler.CreateUser)
			authorized.POST("/users/change_password", publicHandler.ChangePassword)
			authorized.GET("/users/login_logs", publicHandler.GetLoginLogs)
			authorized.GET("/users/:id", adminHandler.GetUser)
			authorized.PUT("/users/:id", adminHandler.UpdateUser)
			authorized.DELETE("/users/:id", adminHandler.DeleteUser)
			authorized.POST("/users/:id/activate", adminHandler.ActivateUser)
			authorized.POST("/users/:id/deactivate", adminHandler.DeactivateUser)

			// 代金券
			authorized.GET("/vouchers", publicHandler.GetVouchers)
			authorized.POST("/vouchers", adminHandler.CreateVoucher)
			authorized.POST("/vouchers/validate", publicHandler.ValidateVoucher)
			authorized.GET("/vouchers/my_usages", publicHandler.GetMyVoucherUsages)
			authorized.GET("/vouchers/:id", publicHandler.GetVoucher)
			authorized.PUT("/vouchers/:id", adminHandler.UpdateVoucher)
			authorized.DELETE("/vouchers/:id", adminHandler.DeleteVoucher)
			authorized.POST("/vouchers/:id/cancel", adminHandler.CancelVoucher)
			authorized.POST("/vouchers/:id/use", publicHandler.UseVoucher)
			authorized.GET("/vouchers/:id/usages", adminHandler.GetVoucherUsages)

			// 审计日志
			authorized.GET("/audit-logs", adminHandler.GetAuditLogs)
		}
	}

	return r
}

// healthHandler 健康检查：依次探测数据库与 Redis
func healthHandler(c *gin.Context) {
	dbStatus := "ok"
	if sqlDB, err := models.DB.DB(); err != nil {
		dbStatus = "down"
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		dbStatus = "down"
	}

	redisStatus := "ok"
	if cache.Client() == nil {
		redisStatus = "disabled"
	} else if err := cache.Ping(c.Request.Context()); err != nil {
		redisStatus = "down"
	}

	status := "ok"
	httpStatus := 200
	if dbStatus == "down" {
		status = "degraded"
		httpStatus = 503
	}

	c.JSON(httpStatus, gin.H{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"components": gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}
