package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/voucherhub/internal/cache"
	"github.com/voucherhub/internal/config"
	"github.com/voucherhub/internal/constants"
	"github.com/voucherhub/internal/models"
	"github.com/voucherhub/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// UserAuthService 用户注册登录服务
type UserAuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	auth     *AuthService
}

// NewUserAuthService 创建用户注册登录服务
func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository, auth *AuthService) *UserAuthService {
	return &UserAuthService{
		cfg:      cfg,
		userRepo: userRepo,
		auth:     auth,
	}
}

// RegisterInput 注册输入
type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// Register 用户注册
// 新用户固定为 USER 角色，注册成功即签发令牌对。
func (s *UserAuthService) Register(input RegisterInput) (*models.User, *TokenPair, error) {
	normalized, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, nil, err
	}
	username := strings.TrimSpace(input.Username)
	if username == "" {
		username = resolveUsernameFromEmail(normalized)
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, nil, err
	}

	exist, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, nil, err
	}
	if exist != nil {
		return nil, nil, ErrEmailExists
	}
	existName, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, nil, err
	}
	if existName != nil {
		return nil, nil, ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	user := &models.User{
		Email:        normalized,
		Username:     username,
		PasswordHash: string(hashedPassword),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         constants.UserRoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, nil, err
	}

	tokens, err := s.auth.GenerateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, nil, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))

	return user, tokens, nil
}

// Login 用户登录
func (s *UserAuthService) Login(email, password string) (*models.User, *TokenPair, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, ErrUserDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.auth.GenerateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, nil, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))

	return user, tokens, nil
}

// ChangePassword 登录态修改密码
// 成功后提升 Token 版本，旧令牌全部失效。
func (s *UserAuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	if userID == 0 {
		return ErrNotFound
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidPassword
	}

	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hashedPassword)
	now := time.Now()
	user.UpdatedAt = now
	user.TokenVersion++
	user.TokenInvalidBefore = &now
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return nil
}

// UpdateProfile 更新个人资料
func (s *UserAuthService) UpdateProfile(userID uint, firstName, lastName *string) (*models.User, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	updated := false
	if firstName != nil {
		user.FirstName = strings.TrimSpace(*firstName)
		updated = true
	}
	if lastName != nil {
		user.LastName = strings.TrimSpace(*lastName)
		updated = true
	}

	if !updated {
		return nil, ErrProfileEmpty
	}

	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID 获取用户信息
func (s *UserAuthService) GetUserByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	return s.userRepo.GetByID(id)
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// NormalizeEmail 统一邮箱格式
func NormalizeEmail(email string) (string, error) {
	return normalizeEmail(email)
}

func resolveUsernameFromEmail(email string) string {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) == 2 && strings.TrimSpace(parts[0]) != "" {
		return strings.TrimSpace(parts[0])
	}
	return email
}
