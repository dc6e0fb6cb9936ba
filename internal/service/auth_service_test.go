package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/voucherhub/internal/config"
	"github.com/voucherhub/internal/constants"
	"github.com/voucherhub/internal/models"
	"github.com/voucherhub/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			SecretKey:          "unit-test-secret-key-0123456789abcdef",
			AccessExpireHours:  1,
			RefreshExpireHours: 24,
		},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{
				MinLength:     8,
				RequireUpper:  true,
				RequireLower:  true,
				RequireNumber: true,
			},
		},
	}
}

func setupUserTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.AuditLog{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, svc *AuthService, email, password, role string) *models.User {
	t.Helper()

	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	user := &models.User{
		Email:        email,
		Username:     email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s failed: %v", email, err)
	}
	return user
}

func TestTokenPairRoundTrip(t *testing.T) {
	db := setupUserTestDB(t)
	svc := NewAuthService(newTestConfig(), repository.NewUserRepository(db))
	user := seedUser(t, db, svc, "alice@example.com", "Secret-123", constants.UserRoleUser)

	pair, err := svc.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("generate token pair failed: %v", err)
	}

	claims, err := svc.ParseAccessToken(pair.Access)
	if err != nil {
		t.Fatalf("parse access token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email || claims.Role != constants.UserRoleUser {
		t.Fatalf("claims mismatch: %+v", claims)
	}

	refreshClaims, err := svc.ParseRefreshToken(context.Background(), pair.Refresh)
	if err != nil {
		t.Fatalf("parse refresh token failed: %v", err)
	}
	if refreshClaims.TokenType != "refresh" {
		t.Fatalf("token_type want refresh got %s", refreshClaims.TokenType)
	}

	// 访问/刷新令牌不可互换
	if _, err := svc.ParseAccessToken(pair.Refresh); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("refresh token as access want ErrTokenInvalid got %v", err)
	}
	if _, err := svc.ParseRefreshToken(context.Background(), pair.Access); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("access token as refresh want ErrRefreshTokenInvalid got %v", err)
	}
}

func TestParseJWTRejectsTampered(t *testing.T) {
	db := setupUserTestDB(t)
	svc := NewAuthService(newTestConfig(), repository.NewUserRepository(db))
	user := seedUser(t, db, svc, "bob@example.com", "Secret-123", constants.UserRoleUser)

	pair, err := svc.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("generate token pair failed: %v", err)
	}

	otherCfg := newTestConfig()
	otherCfg.JWT.SecretKey = "another-secret-key-0123456789abcdef00"
	other := NewAuthService(otherCfg, repository.NewUserRepository(db))
	if _, err := other.ParseJWT(pair.Access); err == nil {
		t.Fatalf("token signed with different secret must not parse")
	}

	if _, err := svc.ParseJWT(pair.Access + "x"); err == nil {
		t.Fatalf("tampered token must not parse")
	}
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	db := setupUserTestDB(t)
	svc := NewAuthService(newTestConfig(), repository.NewUserRepository(db))
	user := seedUser(t, db, svc, "carol@example.com", "Secret-123", constants.UserRoleManager)

	pair, err := svc.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("generate token pair failed: %v", err)
	}

	access, expiresAt, refreshed, err := svc.Refresh(context.Background(), pair.Refresh)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if access == "" || expiresAt.Before(time.Now()) {
		t.Fatalf("refresh must return a live access token")
	}
	if refreshed.ID != user.ID {
		t.Fatalf("refresh user want %d got %d", user.ID, refreshed.ID)
	}
	if _, err := svc.ParseAccessToken(access); err != nil {
		t.Fatalf("refreshed access token must parse: %v", err)
	}
}

func TestRefreshRejectsStaleTokenVersion(t *testing.T) {
	db := setupUserTestDB(t)
	userRepo := repository.NewUserRepository(db)
	svc := NewAuthService(newTestConfig(), userRepo)
	user := seedUser(t, db, svc, "dave@example.com", "Secret-123", constants.UserRoleUser)

	pair, err := svc.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("generate token pair failed: %v", err)
	}

	// 提升版本后旧刷新令牌立即失效
	user.TokenVersion++
	if err := userRepo.Update(user); err != nil {
		t.Fatalf("bump token version failed: %v", err)
	}

	if _, _, _, err := svc.Refresh(context.Background(), pair.Refresh); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("want ErrRefreshTokenInvalid got %v", err)
	}
}

func TestRefreshRejectsDisabledUser(t *testing.T) {
	db := setupUserTestDB(t)
	userRepo := repository.NewUserRepository(db)
	svc := NewAuthService(newTestConfig(), userRepo)
	user := seedUser(t, db, svc, "erin@example.com", "Secret-123", constants.UserRoleUser)

	pair, err := svc.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("generate token pair failed: %v", err)
	}

	if err := userRepo.SetActive(user.ID, false); err != nil {
		t.Fatalf("disable user failed: %v", err)
	}

	if _, _, _, err := svc.Refresh(context.Background(), pair.Refresh); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("want ErrUserDisabled got %v", err)
	}
}

func TestValidatePasswordPolicy(t *testing.T) {
	db := setupUserTestDB(t)
	svc := NewAuthService(newTestConfig(), repository.NewUserRepository(db))

	if err := svc.ValidatePassword("Secret-123"); err != nil {
		t.Fatalf("conforming password rejected: %v", err)
	}
	for _, weak := range []string{"short", "alllowercase1", "ALLUPPERCASE1", "NoNumbersHere"} {
		if err := svc.ValidatePassword(weak); !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("password %q want ErrWeakPassword got %v", weak, err)
		}
	}
}
