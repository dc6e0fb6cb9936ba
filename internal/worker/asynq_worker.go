package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/voucherhub/internal/logger"
	"github.com/voucherhub/internal/provider"
	"github.com/voucherhub/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskVoucherExpireSweep, c.handleVoucherExpireSweep)
	mux.HandleFunc(queue.TaskAuditLogTrim, c.handleAuditLogTrim)
}

func (c *Consumer) handleVoucherExpireSweep(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_voucher_expire_sweep_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.VoucherExpireSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_voucher_expire_sweep_unmarshal_failed", "error", err)
		return err
	}
	deadline := payload.Deadline
	if deadline.IsZero() {
		deadline = time.Now()
	}
	if c.VoucherService == nil {
		logger.Warnw("worker_voucher_expire_sweep_skip_service_nil")
		return nil
	}
	expired, err := c.VoucherService.ExpireDueVouchers(deadline)
	if err != nil {
		logger.Warnw("worker_voucher_expire_sweep_failed", "deadline", deadline, "error", err)
		return err
	}
	if expired > 0 {
		logger.Infow("worker_voucher_expire_sweep_done", "expired", expired, "deadline", deadline)
	}
	return nil
}

func (c *Consumer) handleAuditLogTrim(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_audit_log_trim_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.AuditLogTrimPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_audit_log_trim_unmarshal_failed", "error", err)
		return err
	}
	if c.AuditService == nil {
		logger.Warnw("worker_audit_log_trim_skip_service_nil")
		return nil
	}
	trimmed, err := c.AuditService.Trim()
	if err != nil {
		logger.Warnw("worker_audit_log_trim_failed", "error", err)
		return err
	}
	if trimmed > 0 {
		logger.Infow("worker_audit_log_trim_done", "trimmed", trimmed)
	}
	return nil
}
