package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mistamayor/berrymart-v1/internal/rbac"
	"gorm.io/gorm"
)

// ErrInvalidCredentials 登录名/口令不匹配或账号被停用。
// 对外统一这一种错误，不暴露具体原因。
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service 封装用户领域用例（不依赖 HTTP），便于复用和测试。
type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// CreateUserInput 创建用户的入参。
type CreateUserInput struct {
	Username   string
	Email      string
	Password   string
	Role       string
	FirstName  string
	LastName   string
	Department string
	Phone      string
	ManagerID  *int64
}

// UpdateUserInput 更新用户的入参；Password 为空表示不改口令。
type UpdateUserInput struct {
	Email      string
	Password   string
	Role       string
	IsActive   *bool
	FirstName  string
	LastName   string
	Department string
	Phone      string
	ManagerID  *int64
}

func (s *Service) Create(ctx context.Context, in CreateUserInput) (*User, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, fmt.Errorf("username required")
	}
	if strings.TrimSpace(in.Password) == "" {
		return nil, fmt.Errorf("password required")
	}
	if _, ok := rbac.ParseRole(in.Role); !ok {
		return nil, fmt.Errorf("unknown role: %s", in.Role)
	}

	salt, err := GenerateSaltHex()
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password, salt)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username:     username,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		PasswordSalt: salt,
		Role:         strings.TrimSpace(in.Role),
		IsActive:     true,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Department:   strings.TrimSpace(in.Department),
		Phone:        strings.TrimSpace(in.Phone),
		ManagerID:    in.ManagerID,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateUserInput) (*User, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Role != "" {
		if _, ok := rbac.ParseRole(in.Role); !ok {
			return nil, fmt.Errorf("unknown role: %s", in.Role)
		}
		u.Role = in.Role
	}
	if in.Password != "" {
		salt, err := GenerateSaltHex()
		if err != nil {
			return nil, err
		}
		hash, err := HashPassword(in.Password, salt)
		if err != nil {
			return nil, err
		}
		u.PasswordSalt = salt
		u.PasswordHash = hash
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	u.Email = strings.TrimSpace(in.Email)
	u.FirstName = strings.TrimSpace(in.FirstName)
	u.LastName = strings.TrimSpace(in.LastName)
	u.Department = strings.TrimSpace(in.Department)
	u.Phone = strings.TrimSpace(in.Phone)
	u.ManagerID = in.ManagerID

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("service not initialized")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]User, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, offset, limit)
}

// Authenticate 校验登录名/口令，成功后刷新 last_login。
// 停用账号按凭证错误处理。
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	if !VerifyPassword(password, u.PasswordSalt, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	u.LastLogin = &now
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
