package worker

import (
	"context"
	"errors"
	"time"

	"github.com/voucherhub/internal/config"
	"github.com/voucherhub/internal/logger"
	"github.com/voucherhub/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	defaultExpireSweepInterval = 5 * time.Minute
	defaultAuditTrimInterval   = 24 * time.Hour
)

// Service 异步队列服务
type Service struct {
	name     string
	cfg      *config.Config
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		cfg:      cfg,
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	go s.runVoucherExpireSweepLoop(ctx)
	go s.runAuditLogTrimLoop(ctx)
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) voucherExpireSweepInterval() time.Duration {
	if s != nil && s.cfg != nil && s.cfg.Voucher.ExpireSweepIntervalMinutes > 0 {
		return time.Duration(s.cfg.Voucher.ExpireSweepIntervalMinutes) * time.Minute
	}
	return defaultExpireSweepInterval
}

func (s *Service) auditLogTrimInterval() time.Duration {
	if s != nil && s.cfg != nil && s.cfg.Audit.TrimIntervalHours > 0 {
		return time.Duration(s.cfg.Audit.TrimIntervalHours) * time.Hour
	}
	return defaultAuditTrimInterval
}

// runVoucherExpireSweepLoop 周期性投递过期扫描任务
func (s *Service) runVoucherExpireSweepLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.QueueClient == nil {
		return
	}
	runOnce := func() {
		payload := queue.VoucherExpireSweepPayload{Deadline: time.Now()}
		if err := s.consumer.QueueClient.EnqueueVoucherExpireSweep(payload); err != nil {
			logger.Warnw("worker_voucher_expire_sweep_enqueue_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.voucherExpireSweepInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

// runAuditLogTrimLoop 周期性投递审计日志裁剪任务
func (s *Service) runAuditLogTrimLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.QueueClient == nil {
		return
	}
	keepCount := 0
	if s.cfg != nil {
		keepCount = s.cfg.Audit.KeepCount
	}
	runOnce := func() {
		payload := queue.AuditLogTrimPayload{KeepCount: keepCount}
		if err := s.consumer.QueueClient.EnqueueAuditLogTrim(payload, 0); err != nil {
			logger.Warnw("worker_audit_log_trim_enqueue_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.auditLogTrimInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
