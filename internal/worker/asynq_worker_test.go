package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/voucherhub/internal/constants"
	"github.com/voucherhub/internal/models"
	"github.com/voucherhub/internal/provider"
	"github.com/voucherhub/internal/queue"
	"github.com/voucherhub/internal/repository"
	"github.com/voucherhub/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupWorkerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Voucher{}, &models.VoucherUsage{}, &models.AuditLog{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	auditRepo := repository.NewAuditLogRepository(db)
	audit := service.NewAuditService(auditRepo, 3)
	voucherRepo := repository.NewVoucherRepository(db)
	usageRepo := repository.NewVoucherUsageRepository(db)

	container := &provider.Container{
		AuditLogRepo:   auditRepo,
		VoucherRepo:    voucherRepo,
		AuditService:   audit,
		VoucherService: service.NewVoucherService(voucherRepo, usageRepo, audit),
	}
	return NewConsumer(container), db
}

func TestHandleVoucherExpireSweep(t *testing.T) {
	consumer, db := setupWorkerTest(t)

	now := time.Now()
	due := models.Voucher{
		Code:         "SWEEP-DUE",
		Name:         "过期券",
		DiscountType: constants.DiscountTypeFixedAmount,
		ValidFrom:    now.Add(-48 * time.Hour),
		ValidUntil:   now.Add(-time.Hour),
		Status:       constants.VoucherStatusActive,
	}
	live := models.Voucher{
		Code:         "SWEEP-LIVE",
		Name:         "有效券",
		DiscountType: constants.DiscountTypeFixedAmount,
		ValidFrom:    now.Add(-time.Hour),
		ValidUntil:   now.Add(24 * time.Hour),
		Status:       constants.VoucherStatusActive,
	}
	if err := db.Create(&due).Error; err != nil {
		t.Fatalf("seed due voucher failed: %v", err)
	}
	if err := db.Create(&live).Error; err != nil {
		t.Fatalf("seed live voucher failed: %v", err)
	}

	payload, err := json.Marshal(queue.VoucherExpireSweepPayload{Deadline: now})
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	task := asynq.NewTask(queue.TaskVoucherExpireSweep, payload)
	if err := consumer.handleVoucherExpireSweep(context.Background(), task); err != nil {
		t.Fatalf("handle expire sweep failed: %v", err)
	}

	var got models.Voucher
	if err := db.First(&got, due.ID).Error; err != nil {
		t.Fatalf("reload due voucher failed: %v", err)
	}
	if got.Status != constants.VoucherStatusExpired {
		t.Fatalf("due voucher status want EXPIRED got %s", got.Status)
	}
	got = models.Voucher{}
	if err := db.First(&got, live.ID).Error; err != nil {
		t.Fatalf("reload live voucher failed: %v", err)
	}
	if got.Status != constants.VoucherStatusActive {
		t.Fatalf("live voucher status want ACTIVE got %s", got.Status)
	}
}

func TestHandleAuditLogTrim(t *testing.T) {
	consumer, db := setupWorkerTest(t)

	for i := 0; i < 5; i++ {
		entry := models.AuditLog{
			ActorID:    1,
			ActorEmail: "admin@example.com",
			Action:     "voucher.create",
			Object:     fmt.Sprintf("voucher:%d", i+1),
			CreatedAt:  time.Now().Add(time.Duration(i) * time.Second),
		}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("seed audit log failed: %v", err)
		}
	}

	payload, err := json.Marshal(queue.AuditLogTrimPayload{KeepCount: 3})
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	task := asynq.NewTask(queue.TaskAuditLogTrim, payload)
	if err := consumer.handleAuditLogTrim(context.Background(), task); err != nil {
		t.Fatalf("handle audit trim failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.AuditLog{}).Count(&count).Error; err != nil {
		t.Fatalf("count audit logs failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("audit log count want 3 got %d", count)
	}
}
