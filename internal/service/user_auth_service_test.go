package service

import (
	"errors"
	"testing"

	"github.com/voucherhub/internal/constants"
	"github.com/voucherhub/internal/repository"
)

func setupUserAuthTest(t *testing.T) (*UserAuthService, *AuthService, repository.UserRepository) {
	t.Helper()

	db := setupUserTestDB(t)
	cfg := newTestConfig()
	userRepo := repository.NewUserRepository(db)
	auth := NewAuthService(cfg, userRepo)
	return NewUserAuthService(cfg, userRepo, auth), auth, userRepo
}

func TestRegisterAssignsUserRole(t *testing.T) {
	svc, auth, _ := setupUserAuthTest(t)

	user, tokens, err := svc.Register(RegisterInput{
		Email:    "New.User@Example.com",
		Password: "Secret-123",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "new.user@example.com" {
		t.Fatalf("email must be normalized, got %s", user.Email)
	}
	if user.Username != "new.user" {
		t.Fatalf("username want new.user got %s", user.Username)
	}
	if user.Role != constants.UserRoleUser {
		t.Fatalf("role want USER got %s", user.Role)
	}
	if tokens == nil || tokens.Access == "" || tokens.Refresh == "" {
		t.Fatalf("register must issue a token pair")
	}
	if _, err := auth.ParseAccessToken(tokens.Access); err != nil {
		t.Fatalf("issued access token must parse: %v", err)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _, _ := setupUserAuthTest(t)

	if _, _, err := svc.Register(RegisterInput{Email: "dup@example.com", Password: "Secret-123"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, _, err := svc.Register(RegisterInput{Email: "dup@example.com", Password: "Secret-123"}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("duplicate email want ErrEmailExists got %v", err)
	}
	if _, _, err := svc.Register(RegisterInput{
		Email:    "other@example.com",
		Username: "dup",
		Password: "Secret-123",
	}); !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("duplicate username want ErrUsernameExists got %v", err)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc, _, _ := setupUserAuthTest(t)

	if _, _, err := svc.Register(RegisterInput{Email: "not-an-email", Password: "Secret-123"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("want ErrInvalidEmail got %v", err)
	}
	if _, _, err := svc.Register(RegisterInput{Email: "weak@example.com", Password: "short"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("want ErrWeakPassword got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _, userRepo := setupUserAuthTest(t)

	registered, _, err := svc.Register(RegisterInput{Email: "login@example.com", Password: "Secret-123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, tokens, err := svc.Login("LOGIN@example.com", "Secret-123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.ID != registered.ID || tokens == nil {
		t.Fatalf("login must return the registered user with tokens")
	}
	if user.LastLoginAt == nil {
		t.Fatalf("login must record last_login_at")
	}

	if _, _, err := svc.Login("login@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad password want ErrInvalidCredentials got %v", err)
	}
	if _, _, err := svc.Login("ghost@example.com", "Secret-123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email want ErrInvalidCredentials got %v", err)
	}

	if err := userRepo.SetActive(registered.ID, false); err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if _, _, err := svc.Login("login@example.com", "Secret-123"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("disabled user want ErrUserDisabled got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _, userRepo := setupUserAuthTest(t)

	user, _, err := svc.Register(RegisterInput{Email: "change@example.com", Password: "Secret-123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.ChangePassword(user.ID, "wrong-old", "NewSecret-456"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("wrong old password want ErrInvalidPassword got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "Secret-123", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("weak new password want ErrWeakPassword got %v", err)
	}

	if err := svc.ChangePassword(user.ID, "Secret-123", "NewSecret-456"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	// 旧密码失效，Token 版本被提升
	if _, _, err := svc.Login("change@example.com", "Secret-123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, _, err := svc.Login("change@example.com", "NewSecret-456"); err != nil {
		t.Fatalf("new password must work: %v", err)
	}
	reloaded, err := userRepo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if reloaded.TokenVersion != user.TokenVersion+1 {
		t.Fatalf("token version want %d got %d", user.TokenVersion+1, reloaded.TokenVersion)
	}
	if reloaded.TokenInvalidBefore == nil {
		t.Fatalf("token_invalid_before must be set")
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := setupUserAuthTest(t)

	user, _, err := svc.Register(RegisterInput{Email: "profile@example.com", Password: "Secret-123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := svc.UpdateProfile(user.ID, nil, nil); !errors.Is(err, ErrProfileEmpty) {
		t.Fatalf("empty update want ErrProfileEmpty got %v", err)
	}

	first := "  Ada "
	updated, err := svc.UpdateProfile(user.ID, &first, nil)
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.FirstName != "Ada" {
		t.Fatalf("first name want Ada got %q", updated.FirstName)
	}
}
