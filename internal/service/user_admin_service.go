package service

import (
	"context"
	"strings"
	"time"

	"github.com/voucherhub/internal/cache"
	"github.com/voucherhub/internal/config"
	"github.com/voucherhub/internal/constants"
	"github.com/voucherhub/internal/models"
	"github.com/voucherhub/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// UserAdminService 用户管理服务
type UserAdminService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	audit    *AuditService
}

// NewUserAdminService 创建用户管理服务
func NewUserAdminService(cfg *config.Config, userRepo repository.UserRepository, audit *AuditService) *UserAdminService {
	return &UserAdminService{
		cfg:      cfg,
		userRepo: userRepo,
		audit:    audit,
	}
}

// CreateUserInput 创建用户输入
type CreateUserInput struct {
	Email      string
	Username   string
	Password   string
	FirstName  string
	LastName   string
	Role       string
	ActorID    uint
	ActorEmail string
	RequestID  string
}

// UpdateUserInput 更新用户输入
type UpdateUserInput struct {
	FirstName  *string
	LastName   *string
	Role       *string
	IsActive   *bool
	ActorID    uint
	ActorEmail string
	RequestID  string
}

// Create 创建用户（管理员操作，可指定角色）
func (s *UserAdminService) Create(input CreateUserInput) (*models.User, error) {
	normalized, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	username := strings.TrimSpace(input.Username)
	if username == "" {
		username = resolveUsernameFromEmail(normalized)
	}
	role := strings.ToUpper(strings.TrimSpace(input.Role))
	if role == "" {
		role = constants.UserRoleUser
	}
	if !isRoleSupported(role) {
		return nil, ErrInvalidRole
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, err
	}

	exist, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrEmailExists
	}
	existName, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existName != nil {
		return nil, ErrUsernameExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		Email:        normalized,
		Username:     username,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.record(input.ActorID, input.ActorEmail, constants.AuditActionUserCreate, user, input.RequestID)
	return user, nil
}

// Update 更新用户（管理员操作）
func (s *UserAdminService) Update(id uint, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Role != nil {
		role := strings.ToUpper(strings.TrimSpace(*input.Role))
		if !isRoleSupported(role) {
			return nil, ErrInvalidRole
		}
		user.Role = role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
		if !*input.IsActive {
			now := time.Now()
			user.TokenVersion++
			user.TokenInvalidBefore = &now
		}
	}

	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))

	s.record(input.ActorID, input.ActorEmail, constants.AuditActionUserUpdate, user, input.RequestID)
	return user, nil
}

// SetActive 启用或停用用户
// 停用同步提升 Token 版本，使已签发的令牌立即失效。
func (s *UserAdminService) SetActive(id uint, active bool, actorID uint, actorEmail, requestID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if err := s.userRepo.SetActive(id, active); err != nil {
		return nil, err
	}
	user, err = s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))

	action := constants.AuditActionUserActivate
	if !active {
		action = constants.AuditActionUserDisable
	}
	s.record(actorID, actorEmail, action, user, requestID)
	return user, nil
}

// Delete 删除用户（不允许删除当前操作者）
func (s *UserAdminService) Delete(id, actorID uint, actorEmail, requestID string) error {
	if id == actorID {
		return ErrCannotDeleteSelf
	}
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if err := s.userRepo.Delete(id); err != nil {
		return err
	}
	_ = cache.DelUserAuthState(context.Background(), id)

	s.record(actorID, actorEmail, constants.AuditActionUserDelete, user, requestID)
	return nil
}

// GetByID 获取用户
func (s *UserAdminService) GetByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// List 用户列表
func (s *UserAdminService) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.userRepo.List(filter)
}

func (s *UserAdminService) record(actorID uint, actorEmail, action string, user *models.User, requestID string) {
	if s.audit == nil || user == nil {
		return
	}
	s.audit.Record(AuditEntry{
		ActorID:    actorID,
		ActorEmail: actorEmail,
		Action:     action,
		Object:     user.Email,
		RequestID:  requestID,
		Detail: models.JSON{
			"user_id": user.ID,
			"role":    user.Role,
		},
	})
}

func isRoleSupported(role string) bool {
	for _, candidate := range constants.UserRoles {
		if candidate == role {
			return true
		}
	}
	return false
}
