package public

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/voucherhub/internal/constants"
	"github.com/voucherhub/internal/http/response"
	"github.com/voucherhub/internal/models"
	"github.com/voucherhub/internal/provider"
	"github.com/voucherhub/internal/repository"
	"github.com/voucherhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupVoucherHandlerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Voucher{}, &models.VoucherUsage{}, &models.AuditLog{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	voucherRepo := repository.NewVoucherRepository(db)
	usageRepo := repository.NewVoucherUsageRepository(db)
	audit := service.NewAuditService(repository.NewAuditLogRepository(db), 100)
	handler := New(&provider.Container{
		VoucherRepo:         voucherRepo,
		VoucherUsageRepo:    usageRepo,
		AuditService:        audit,
		VoucherService:      service.NewVoucherService(voucherRepo, usageRepo, audit),
		VoucherAdminService: service.NewVoucherAdminService(voucherRepo, audit),
	})

	engine := gin.New()
	engine.POST("/vouchers/validate", handler.ValidateVoucher)
	return engine, db
}

type testEnvelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func postValidate(t *testing.T, engine *gin.Engine, body map[string]interface{}) (int, testEnvelope) {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/vouchers/validate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)

	var envelope testEnvelope
	if err := json.Unmarshal(recorder.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope failed: %v (body %s)", err, recorder.Body.String())
	}
	return recorder.Code, envelope
}

func seedPercentageVoucher(t *testing.T, db *gorm.DB, code string) {
	t.Helper()
	now := time.Now()
	voucher := models.Voucher{
		Code:         code,
		Name:         "折扣券",
		DiscountType: constants.DiscountTypePercentage,
		Percentage:   models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		ValidFrom:    now.Add(-time.Hour),
		ValidUntil:   now.Add(24 * time.Hour),
		Status:       constants.VoucherStatusActive,
	}
	if err := db.Create(&voucher).Error; err != nil {
		t.Fatalf("seed voucher failed: %v", err)
	}
}

func TestValidateVoucherZeroPurchase(t *testing.T) {
	engine, db := setupVoucherHandlerTest(t)
	seedPercentageVoucher(t, db, "PCT20")

	// 消费金额为 0 合法，折扣为 0
	httpStatus, envelope := postValidate(t, engine, map[string]interface{}{
		"code":            "PCT20",
		"purchase_amount": 0,
	})
	if httpStatus != http.StatusOK || envelope.StatusCode != response.CodeOK {
		t.Fatalf("zero purchase want OK got http=%d code=%d msg=%s", httpStatus, envelope.StatusCode, envelope.Msg)
	}
	var data struct {
		Valid          bool   `json:"valid"`
		DiscountAmount string `json:"discount_amount"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		t.Fatalf("unmarshal data failed: %v", err)
	}
	if !data.Valid {
		t.Fatalf("zero purchase must validate")
	}
	if data.DiscountAmount != "0.00" {
		t.Fatalf("discount want 0.00 got %s", data.DiscountAmount)
	}
}

func TestValidateVoucherOmittedAmounts(t *testing.T) {
	engine, db := setupVoucherHandlerTest(t)
	seedPercentageVoucher(t, db, "PCT20")

	// 缺省金额按 0 处理
	httpStatus, envelope := postValidate(t, engine, map[string]interface{}{
		"code": "PCT20",
	})
	if httpStatus != http.StatusOK || envelope.StatusCode != response.CodeOK {
		t.Fatalf("omitted amounts want OK got http=%d code=%d msg=%s", httpStatus, envelope.StatusCode, envelope.Msg)
	}
}

func TestValidateVoucherNegativePurchase(t *testing.T) {
	engine, db := setupVoucherHandlerTest(t)
	seedPercentageVoucher(t, db, "PCT20")

	_, envelope := postValidate(t, engine, map[string]interface{}{
		"code":            "PCT20",
		"purchase_amount": -5,
	})
	if envelope.StatusCode != response.CodeBadRequest {
		t.Fatalf("negative purchase want code %d got %d", response.CodeBadRequest, envelope.StatusCode)
	}
}
