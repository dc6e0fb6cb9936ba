package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/voucherhub/internal/constants"
	"github.com/voucherhub/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupVoucherRepoTest(t *testing.T) (*GormVoucherRepository, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Voucher{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewVoucherRepository(db), db
}

func newTestVoucher(code string, limit *int) *models.Voucher {
	now := time.Now()
	return &models.Voucher{
		Code:         code,
		Name:         "测试券",
		DiscountType: constants.DiscountTypeFixedAmount,
		UsageLimit:   limit,
		ValidFrom:    now.Add(-time.Hour),
		ValidUntil:   now.Add(24 * time.Hour),
		Status:       constants.VoucherStatusActive,
	}
}

func TestRedeemIncrementGuard(t *testing.T) {
	repo, db := setupVoucherRepoTest(t)
	limit := 2

	voucher := newTestVoucher("LIMIT2", &limit)
	if err := db.Create(voucher).Error; err != nil {
		t.Fatalf("seed voucher failed: %v", err)
	}

	ok, err := repo.RedeemIncrement(voucher.ID)
	if err != nil || !ok {
		t.Fatalf("first increment want ok got ok=%v err=%v", ok, err)
	}
	var got models.Voucher
	if err := db.First(&got, voucher.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.UsageCount != 1 || got.Status != constants.VoucherStatusActive {
		t.Fatalf("after first increment want count=1 ACTIVE got count=%d status=%s", got.UsageCount, got.Status)
	}

	// 第二次占用触达上限，同一条 UPDATE 置为 USED
	ok, err = repo.RedeemIncrement(voucher.ID)
	if err != nil || !ok {
		t.Fatalf("second increment want ok got ok=%v err=%v", ok, err)
	}
	if err := db.First(&got, voucher.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.UsageCount != 2 || got.Status != constants.VoucherStatusUsed {
		t.Fatalf("after second increment want count=2 USED got count=%d status=%s", got.UsageCount, got.Status)
	}

	ok, err = repo.RedeemIncrement(voucher.ID)
	if err != nil {
		t.Fatalf("third increment error: %v", err)
	}
	if ok {
		t.Fatalf("third increment should not succeed")
	}
	if err := db.First(&got, voucher.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.UsageCount != 2 {
		t.Fatalf("usage_count must stay at limit, got %d", got.UsageCount)
	}
}

func TestRedeemIncrementUnlimited(t *testing.T) {
	repo, db := setupVoucherRepoTest(t)

	voucher := newTestVoucher("NOLIMIT", nil)
	if err := db.Create(voucher).Error; err != nil {
		t.Fatalf("seed voucher failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		ok, err := repo.RedeemIncrement(voucher.ID)
		if err != nil || !ok {
			t.Fatalf("increment %d want ok got ok=%v err=%v", i+1, ok, err)
		}
	}
	var got models.Voucher
	if err := db.First(&got, voucher.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.UsageCount != 3 || got.Status != constants.VoucherStatusActive {
		t.Fatalf("unlimited voucher want count=3 ACTIVE got count=%d status=%s", got.UsageCount, got.Status)
	}
}

func TestMarkExpired(t *testing.T) {
	repo, db := setupVoucherRepoTest(t)

	active := newTestVoucher("ACTIVE", nil)
	cancelled := newTestVoucher("CANCELLED", nil)
	cancelled.Status = constants.VoucherStatusCancelled
	for _, voucher := range []*models.Voucher{active, cancelled} {
		if err := db.Create(voucher).Error; err != nil {
			t.Fatalf("seed voucher failed: %v", err)
		}
	}

	changed, err := repo.MarkExpired(active.ID)
	if err != nil {
		t.Fatalf("mark expired failed: %v", err)
	}
	if !changed {
		t.Fatalf("active voucher should transition to EXPIRED")
	}

	// 非 ACTIVE 状态不动
	changed, err = repo.MarkExpired(cancelled.ID)
	if err != nil {
		t.Fatalf("mark expired failed: %v", err)
	}
	if changed {
		t.Fatalf("cancelled voucher must not transition")
	}
	var got models.Voucher
	if err := db.First(&got, cancelled.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.Status != constants.VoucherStatusCancelled {
		t.Fatalf("status want CANCELLED got %s", got.Status)
	}
}

func TestExpireDue(t *testing.T) {
	repo, db := setupVoucherRepoTest(t)
	now := time.Now()

	due := newTestVoucher("DUE", nil)
	due.ValidUntil = now.Add(-time.Hour)
	live := newTestVoucher("LIVE", nil)
	usedAndDue := newTestVoucher("USED-DUE", nil)
	usedAndDue.ValidUntil = now.Add(-time.Hour)
	usedAndDue.Status = constants.VoucherStatusUsed
	for _, voucher := range []*models.Voucher{due, live, usedAndDue} {
		if err := db.Create(voucher).Error; err != nil {
			t.Fatalf("seed voucher failed: %v", err)
		}
	}

	affected, err := repo.ExpireDue(now)
	if err != nil {
		t.Fatalf("expire due failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected want 1 got %d", affected)
	}

	var got models.Voucher
	if err := db.First(&got, due.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.Status != constants.VoucherStatusExpired {
		t.Fatalf("due voucher want EXPIRED got %s", got.Status)
	}
	if err := db.First(&got, usedAndDue.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.Status != constants.VoucherStatusUsed {
		t.Fatalf("used voucher must keep USED got %s", got.Status)
	}
}

func TestVoucherListFilter(t *testing.T) {
	repo, db := setupVoucherRepoTest(t)

	first := newTestVoucher("SPRING20", nil)
	first.Name = "春季券"
	second := newTestVoucher("WELCOME15", nil)
	second.Status = constants.VoucherStatusCancelled
	for _, voucher := range []*models.Voucher{first, second} {
		if err := db.Create(voucher).Error; err != nil {
			t.Fatalf("seed voucher failed: %v", err)
		}
	}

	items, total, err := repo.List(VoucherListFilter{Page: 1, PageSize: 10, Status: constants.VoucherStatusActive})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Code != "SPRING20" {
		t.Fatalf("status filter want SPRING20 got total=%d items=%d", total, len(items))
	}

	items, total, err = repo.List(VoucherListFilter{Page: 1, PageSize: 10, Keyword: "WELCOME"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Code != "WELCOME15" {
		t.Fatalf("keyword filter want WELCOME15 got total=%d items=%d", total, len(items))
	}
}
