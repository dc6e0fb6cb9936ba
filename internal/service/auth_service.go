package service

import (
	"context"
	"strings"
	"time"

	"github.com/voucherhub/internal/cache"
	"github.com/voucherhub/internal/config"
	"github.com/voucherhub/internal/models"
	"github.com/voucherhub/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// AuthService 认证服务
// 负责密码哈希与访问/刷新令牌的签发与解析。
type AuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		cfg:      cfg,
		userRepo: userRepo,
	}
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword 校验密码是否符合策略
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

// JWTClaims JWT 声明
type JWTClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenType    string `json:"token_type"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// TokenPair 访问/刷新令牌对
type TokenPair struct {
	Access           string    `json:"access"`
	Refresh          string    `json:"refresh"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// GenerateTokenPair 为用户签发访问/刷新令牌对
func (s *AuthService) GenerateTokenPair(user *models.User) (*TokenPair, error) {
	access, accessExpires, err := s.generateToken(user, tokenTypeAccess, s.accessExpireHours())
	if err != nil {
		return nil, err
	}
	refresh, refreshExpires, err := s.generateToken(user, tokenTypeRefresh, s.refreshExpireHours())
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		Access:           access,
		Refresh:          refresh,
		AccessExpiresAt:  accessExpires,
		RefreshExpiresAt: refreshExpires,
	}, nil
}

// GenerateAccessToken 单独签发访问令牌
func (s *AuthService) GenerateAccessToken(user *models.User) (string, time.Time, error) {
	return s.generateToken(user, tokenTypeAccess, s.accessExpireHours())
}

func (s *AuthService) generateToken(user *models.User, tokenType string, expireHours int) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(expireHours) * time.Hour)
	claims := JWTClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenType:    tokenType,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT 解析 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &JWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrTokenInvalid
}

// ParseAccessToken 解析并校验访问令牌
func (s *AuthService) ParseAccessToken(tokenString string) (*JWTClaims, error) {
	claims, err := s.ParseJWT(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ParseRefreshToken 解析并校验刷新令牌（类型与拒绝名单）
func (s *AuthService) ParseRefreshToken(ctx context.Context, tokenString string) (*JWTClaims, error) {
	claims, err := s.ParseJWT(strings.TrimSpace(tokenString))
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, ErrRefreshTokenInvalid
	}
	denied, err := cache.IsRefreshTokenDenied(ctx, claims.ID)
	if err == nil && denied {
		return nil, ErrRefreshTokenDenied
	}
	return claims, nil
}

// Refresh 使用刷新令牌换取新的访问令牌
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, *models.User, error) {
	claims, err := s.ParseRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", time.Time{}, nil, err
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	if user == nil {
		return "", time.Time{}, nil, ErrRefreshTokenInvalid
	}
	if !user.IsActive {
		return "", time.Time{}, nil, ErrUserDisabled
	}
	if user.TokenVersion != claims.TokenVersion {
		return "", time.Time{}, nil, ErrRefreshTokenInvalid
	}
	if user.TokenInvalidBefore != nil && claims.IssuedAt != nil && claims.IssuedAt.Time.Before(*user.TokenInvalidBefore) {
		return "", time.Time{}, nil, ErrRefreshTokenInvalid
	}

	access, expiresAt, err := s.GenerateAccessToken(user)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return access, expiresAt, user, nil
}

// Logout 注销刷新令牌（加入拒绝名单直至其过期）
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.ParseRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	return cache.DenyRefreshToken(ctx, claims.ID, ttl)
}

func (s *AuthService) accessExpireHours() int {
	if s.cfg == nil || s.cfg.JWT.AccessExpireHours <= 0 {
		return 1
	}
	return s.cfg.JWT.AccessExpireHours
}

func (s *AuthService) refreshExpireHours() int {
	if s.cfg == nil || s.cfg.JWT.RefreshExpireHours <= 0 {
		return 168
	}
	return s.cfg.JWT.RefreshExpireHours
}
