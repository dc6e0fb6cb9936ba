package service

import (
	"errors"
	"testing"
	"time"

	"github.com/voucherhub/internal/constants"
	"github.com/voucherhub/internal/models"
	"github.com/voucherhub/internal/repository"

	"gorm.io/gorm"
)

func setupVoucherAdminTest(t *testing.T) (*VoucherAdminService, *gorm.DB) {
	t.Helper()

	_, db := setupVoucherServiceTest(t)
	repo := repository.NewVoucherRepository(db)
	audit := NewAuditService(repository.NewAuditLogRepository(db), 100)
	return NewVoucherAdminService(repo, audit), db
}

func validCreateInput(t *testing.T, code string) CreateVoucherInput {
	t.Helper()
	now := time.Now()
	return CreateVoucherInput{
		Code:           code,
		Name:           "满减券",
		DiscountType:   constants.DiscountTypeFixedAmount,
		DiscountAmount: money(t, "10"),
		ValidFrom:      now,
		ValidUntil:     now.Add(24 * time.Hour),
		CreatedBy:      1,
		ActorEmail:     "admin@example.com",
	}
}

func TestAdminCreateVoucher(t *testing.T) {
	svc, db := setupVoucherAdminTest(t)

	input := validCreateInput(t, "  save10 ")
	voucher, err := svc.Create(input)
	if err != nil {
		t.Fatalf("create voucher failed: %v", err)
	}
	if voucher.Code != "SAVE10" {
		t.Fatalf("code must be normalized, got %s", voucher.Code)
	}
	if voucher.Status != constants.VoucherStatusActive {
		t.Fatalf("new voucher must be ACTIVE, got %s", voucher.Status)
	}

	if _, err := svc.Create(validCreateInput(t, "SAVE10")); !errors.Is(err, ErrVoucherCodeExists) {
		t.Fatalf("duplicate code want ErrVoucherCodeExists got %v", err)
	}

	var auditCount int64
	if err := db.Model(&models.AuditLog{}).Where("action = ?", constants.AuditActionVoucherCreate).Count(&auditCount).Error; err != nil {
		t.Fatalf("count audit logs failed: %v", err)
	}
	if auditCount != 1 {
		t.Fatalf("audit entries want 1 got %d", auditCount)
	}
}

func TestAdminCreateVoucherValidation(t *testing.T) {
	svc, _ := setupVoucherAdminTest(t)

	blankName := validCreateInput(t, "NONAME")
	blankName.Name = ""

	badWindow := validCreateInput(t, "BADWIN")
	badWindow.ValidUntil = badWindow.ValidFrom

	zeroLimit := 0
	badLimit := validCreateInput(t, "BADLIMIT")
	badLimit.UsageLimit = &zeroLimit

	overPct := validCreateInput(t, "OVERPCT")
	overPct.DiscountType = constants.DiscountTypePercentage
	overPct.Percentage = money(t, "150")

	zeroShip := validCreateInput(t, "ZEROSHIP")
	zeroShip.DiscountType = constants.DiscountTypeFreeShipping
	zeroShip.DiscountAmount = models.Money{}
	zeroShip.MaxShippingAmount = models.Money{}

	unknown := validCreateInput(t, "UNKNOWN")
	unknown.DiscountType = "BOGO"

	for _, input := range []CreateVoucherInput{blankName, badWindow, badLimit, overPct, zeroShip, unknown} {
		if _, err := svc.Create(input); !errors.Is(err, ErrVoucherInvalid) {
			t.Fatalf("code %s want ErrVoucherInvalid got %v", input.Code, err)
		}
	}
}

func TestAdminUpdateVoucher(t *testing.T) {
	svc, _ := setupVoucherAdminTest(t)

	voucher, err := svc.Create(validCreateInput(t, "EDITABLE"))
	if err != nil {
		t.Fatalf("create voucher failed: %v", err)
	}

	name := "改名券"
	amount := money(t, "20")
	updated, err := svc.Update(voucher.ID, UpdateVoucherInput{
		Name:           &name,
		DiscountAmount: &amount,
		ActorID:        1,
	})
	if err != nil {
		t.Fatalf("update voucher failed: %v", err)
	}
	if updated.Name != name || !updated.DiscountAmount.Decimal.Equal(amount.Decimal) {
		t.Fatalf("update not applied: %+v", updated)
	}

	// 上限不得低于已使用次数
	lowLimit := 0
	if _, err := svc.Update(voucher.ID, UpdateVoucherInput{UsageLimit: &lowLimit, ActorID: 1}); !errors.Is(err, ErrVoucherInvalid) {
		t.Fatalf("want ErrVoucherInvalid got %v", err)
	}

	if _, err := svc.Update(9999, UpdateVoucherInput{Name: &name, ActorID: 1}); !errors.Is(err, ErrVoucherNotFound) {
		t.Fatalf("missing voucher want ErrVoucherNotFound got %v", err)
	}
}

func TestAdminUpdateTerminalVoucher(t *testing.T) {
	svc, _ := setupVoucherAdminTest(t)

	voucher, err := svc.Create(validCreateInput(t, "FINAL"))
	if err != nil {
		t.Fatalf("create voucher failed: %v", err)
	}
	if _, err := svc.Cancel(voucher.ID, 1, "admin@example.com", "req-1"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	name := "新名字"
	if _, err := svc.Update(voucher.ID, UpdateVoucherInput{Name: &name, ActorID: 1}); !errors.Is(err, ErrVoucherImmutable) {
		t.Fatalf("terminal update want ErrVoucherImmutable got %v", err)
	}
	// 终态不可再次作废
	if _, err := svc.Cancel(voucher.ID, 1, "admin@example.com", "req-2"); !errors.Is(err, ErrVoucherImmutable) {
		t.Fatalf("repeat cancel want ErrVoucherImmutable got %v", err)
	}
}

func TestAdminDeleteVoucher(t *testing.T) {
	svc, db := setupVoucherAdminTest(t)

	voucher, err := svc.Create(validCreateInput(t, "REMOVABLE"))
	if err != nil {
		t.Fatalf("create voucher failed: %v", err)
	}

	if err := svc.Delete(voucher.ID, 1, "admin@example.com", "req-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.Delete(voucher.ID, 1, "admin@example.com", "req-2"); !errors.Is(err, ErrVoucherNotFound) {
		t.Fatalf("repeat delete want ErrVoucherNotFound got %v", err)
	}

	var count int64
	if err := db.Model(&models.Voucher{}).Where("code = ?", "REMOVABLE").Count(&count).Error; err != nil {
		t.Fatalf("count vouchers failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("deleted voucher must not be visible, got %d rows", count)
	}
}
