package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/voucherhub/internal/config"
	"github.com/voucherhub/internal/constants"
	"github.com/voucherhub/internal/logger"
	"github.com/voucherhub/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// 演示数据：一组不同角色的用户与三种折扣类型的代金券。
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.InitDefaultAdmin("admin@example.com", "admin-change-me-123"); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	// 演示用户
	demoUsers := []struct {
		Email     string
		Password  string
		FirstName string
		LastName  string
		Role      string
	}{
		{Email: "manager@example.com", Password: "Manager-123456", FirstName: "Mara", LastName: "Keller", Role: constants.UserRoleManager},
		{Email: "user@example.com", Password: "User-123456", FirstName: "Noah", LastName: "Frei", Role: constants.UserRoleUser},
		{Email: "guest@example.com", Password: "Guest-123456", FirstName: "Gil", LastName: "Aron", Role: constants.UserRoleGuest},
	}

	adminID := uint(0)
	var admin models.User
	if err := models.DB.Where("role = ?", constants.UserRoleAdmin).First(&admin).Error; err == nil {
		adminID = admin.ID
	}

	for _, seed := range demoUsers {
		var existing models.User
		if err := models.DB.Where("email = ?", seed.Email).First(&existing).Error; err == nil {
			stdLog.Printf("User already exists: %s", seed.Email)
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Printf("Failed to hash password for %s: %v", seed.Email, err)
			continue
		}
		username := seed.Email
		if at := strings.Index(seed.Email, "@"); at > 0 {
			username = seed.Email[:at]
		}
		user := models.User{
			Email:        seed.Email,
			Username:     username,
			PasswordHash: string(hash),
			FirstName:    seed.FirstName,
			LastName:     seed.LastName,
			Role:         seed.Role,
			IsActive:     true,
		}
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Printf("Failed to create user %s: %v", seed.Email, err)
		} else {
			stdLog.Printf("Created user: %s (%s)", seed.Email, seed.Role)
		}
	}

	// 演示代金券
	now := time.Now()
	usageLimitSmall := 5
	usageLimitLarge := 100
	percentCap := models.NewMoneyFromDecimal(decimal.NewFromInt(50))

	vouchers := []models.Voucher{
		{
			Code:              "SPRING20",
			Name:              "春季满减 8 折券",
			Description:       "满 100 打 8 折，最高优惠 50。",
			DiscountType:      constants.DiscountTypePercentage,
			Percentage:        models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
			MaxDiscountAmount: &percentCap,
			MinPurchaseAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
			UsageLimit:        &usageLimitLarge,
			ValidFrom:         now.Add(-24 * time.Hour),
			ValidUntil:        now.AddDate(0, 2, 0),
			Status:            constants.VoucherStatusActive,
			CreatedBy:         adminID,
		},
		{
			Code:              "WELCOME15",
			Name:              "新客立减 15",
			Description:       "满 60 立减 15。",
			DiscountType:      constants.DiscountTypeFixedAmount,
			DiscountAmount:    models.NewMoneyFromDecimal(decimal.NewFromInt(15)),
			MinPurchaseAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(60)),
			UsageLimit:        &usageLimitSmall,
			ValidFrom:         now.Add(-12 * time.Hour),
			ValidUntil:        now.AddDate(0, 1, 0),
			Status:            constants.VoucherStatusActive,
			CreatedBy:         adminID,
		},
		{
			Code:              "FREESHIP",
			Name:              "免运费券",
			Description:       "免除最高 12 的运费。",
			DiscountType:      constants.DiscountTypeFreeShipping,
			MaxShippingAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(12)),
			ValidFrom:         now.Add(-6 * time.Hour),
			ValidUntil:        now.AddDate(0, 0, 30),
			Status:            constants.VoucherStatusActive,
			CreatedBy:         adminID,
		},
	}

	for _, voucher := range vouchers {
		var existing models.Voucher
		if err := models.DB.Where("code = ?", voucher.Code).First(&existing).Error; err == nil {
			stdLog.Printf("Voucher already exists: %s", voucher.Code)
			continue
		}
		if err := models.DB.Create(&voucher).Error; err != nil {
			stdLog.Printf("Failed to create voucher %s: %v", voucher.Code, err)
		} else {
			stdLog.Printf("Created voucher: %s (%s)", voucher.Code, voucher.DiscountType)
		}
	}

	fmt.Println("\nSeed data created:")
	fmt.Println("- 1 admin + 3 demo users (MANAGER/USER/GUEST)")
	fmt.Println("- 3 vouchers (PERCENTAGE/FIXED_AMOUNT/FREE_SHIPPING)")
}
