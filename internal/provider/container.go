package provider

import (
	"github.com/voucherhub/internal/authz"
	"github.com/voucherhub/internal/cache"
	"github.com/voucherhub/internal/config"
	"github.com/voucherhub/internal/logger"
	"github.com/voucherhub/internal/models"
	"github.com/voucherhub/internal/queue"
	"github.com/voucherhub/internal/repository"
	"github.com/voucherhub/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo         repository.UserRepository
	VoucherRepo      repository.VoucherRepository
	VoucherUsageRepo repository.VoucherUsageRepository
	UserLoginLogRepo repository.UserLoginLogRepository
	AuditLogRepo     repository.AuditLogRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	UserAuthService     *service.UserAuthService
	UserAdminService    *service.UserAdminService
	VoucherService      *service.VoucherService
	VoucherAdminService *service.VoucherAdminService
	AuditService        *service.AuditService
	UserLoginLogService *service.UserLoginLogService
	CaptchaService      *service.CaptchaService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.VoucherRepo = repository.NewVoucherRepository(db)
	c.VoucherUsageRepo = repository.NewVoucherUsageRepository(db)
	c.UserLoginLogRepo = repository.NewUserLoginLogRepository(db)
	c.AuditLogRepo = repository.NewAuditLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuditService = service.NewAuditService(c.AuditLogRepo, c.Config.Audit.KeepCount)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.UserRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.AuthService)
	c.UserAdminService = service.NewUserAdminService(c.Config, c.UserRepo, c.AuditService)
	c.VoucherService = service.NewVoucherService(c.VoucherRepo, c.VoucherUsageRepo, c.AuditService)
	c.VoucherAdminService = service.NewVoucherAdminService(c.VoucherRepo, c.AuditService)
	c.UserLoginLogService = service.NewUserLoginLogService(c.UserLoginLogRepo)
}
