package queue

import (
	"encoding/json"
	"time"

	"github.com/voucherhub/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskVoucherExpireSweep 代金券到期扫描任务
	TaskVoucherExpireSweep = constants.TaskVoucherExpireSweep
	// TaskAuditLogTrim 审计日志裁剪任务
	TaskAuditLogTrim = constants.TaskAuditLogTrim
)

// VoucherExpireSweepPayload 到期扫描任务载荷
type VoucherExpireSweepPayload struct {
	Deadline time.Time `json:"deadline"`
}

// AuditLogTrimPayload 审计日志裁剪任务载荷
type AuditLogTrimPayload struct {
	KeepCount int `json:"keep_count"`
}

// NewVoucherExpireSweepTask 创建到期扫描任务
func NewVoucherExpireSweepTask(payload VoucherExpireSweepPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVoucherExpireSweep, body), nil
}

// NewAuditLogTrimTask 创建审计日志裁剪任务
func NewAuditLogTrimTask(payload AuditLogTrimPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditLogTrim, body), nil
}
