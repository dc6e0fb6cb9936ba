package models

import "time"

// AuditLog 操作审计日志
// 说明：记录代金券与用户管理相关的关键操作，仅保留最近若干条（由后台任务裁剪）。
type AuditLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	ActorID    uint      `gorm:"index;not null" json:"actor_id"`
	ActorEmail string    `gorm:"type:varchar(255);index;not null;default:''" json:"actor_email"`
	Action     string    `gorm:"type:varchar(100);index;not null" json:"action"`
	Object     string    `gorm:"type:varchar(255);index;not null;default:''" json:"object"`
	RequestID  string    `gorm:"type:varchar(64);index;not null;default:''" json:"request_id"`
	DetailJSON JSON      `gorm:"type:json" json:"detail"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (AuditLog) TableName() string {
	return "audit_logs"
}
