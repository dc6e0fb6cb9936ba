package service

import (
	"strings"
	"time"

	"github.com/voucherhub/internal/logger"
	"github.com/voucherhub/internal/models"
	"github.com/voucherhub/internal/repository"
)

// AuditEntry 审计记录输入
type AuditEntry struct {
	ActorID    uint
	ActorEmail string
	Action     string
	Object     string
	RequestID  string
	Detail     models.JSON
}

// AuditService 操作审计服务
type AuditService struct {
	repo      repository.AuditLogRepository
	keepCount int
}

// NewAuditService 创建操作审计服务
func NewAuditService(repo repository.AuditLogRepository, keepCount int) *AuditService {
	if keepCount <= 0 {
		keepCount = 1000
	}
	return &AuditService{repo: repo, keepCount: keepCount}
}

// Record 记录审计日志（失败仅告警，不影响主流程）
func (s *AuditService) Record(entry AuditEntry) {
	if s == nil || s.repo == nil {
		return
	}
	if entry.ActorID == 0 || strings.TrimSpace(entry.Action) == "" {
		return
	}

	item := &models.AuditLog{
		ActorID:    entry.ActorID,
		ActorEmail: strings.TrimSpace(entry.ActorEmail),
		Action:     strings.TrimSpace(entry.Action),
		Object:     strings.TrimSpace(entry.Object),
		RequestID:  strings.TrimSpace(entry.RequestID),
		DetailJSON: entry.Detail,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.Create(item); err != nil {
		logger.Warnw("audit_record_failed", "action", item.Action, "error", err)
	}
}

// ListForAdmin 管理端查询审计日志（按时间倒序）
func (s *AuditService) ListForAdmin(filter repository.AuditLogListFilter) ([]models.AuditLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.AuditLog{}, 0, nil
	}
	return s.repo.ListAdmin(filter)
}

// Trim 裁剪超出保留上限的旧日志，返回删除行数
func (s *AuditService) Trim() (int64, error) {
	if s == nil || s.repo == nil {
		return 0, nil
	}
	return s.repo.TrimToNewest(s.keepCount)
}
