package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"cognify/backend/config"
	"cognify/backend/internal/dto"
	"cognify/backend/internal/model"
	"cognify/backend/internal/repository"
	apperrors "cognify/backend/pkg/errors"
	"cognify/backend/pkg/jwt"
)

// ── 认证模块业务错误 ──

var (
	// ErrInvalidCredentials 登录失败的统一错误，对外不区分具体原因
	ErrInvalidCredentials = fmt.Errorf("Invalid credentials: %w", apperrors.ErrAuth)
	ErrAccountNotFound    = fmt.Errorf("账户不存在: %w", ErrInvalidCredentials)
	ErrAccountInactive    = fmt.Errorf("账户已停用: %w", ErrInvalidCredentials)
	ErrWrongPassword      = fmt.Errorf("密码错误: %w", ErrInvalidCredentials)

	ErrUsernameExists     = errors.New("用户名已存在")
	ErrWeakPassword       = errors.New("密码强度不足")
	ErrRegistrationClosed = errors.New("注册已关闭")
	ErrMasterNotFound     = fmt.Errorf("操作员不存在: %w", apperrors.ErrNotFound)
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt 输入上限（字节）
)

// TokenBlacklist 会话吊销存储
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService 认证业务接口
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.MasterResponse, error)
	// Authenticate 校验用户名与密码，失败时返回的错误均包装 ErrInvalidCredentials
	Authenticate(ctx context.Context, username, password string) (*model.Master, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	ChangePassword(ctx context.Context, masterID string, req *dto.ChangePasswordRequest) error
	Current(ctx context.Context, masterID string) (*dto.MasterResponse, error)
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
	cost      int
	now       func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService 创建 AuthService 实例
// blacklist 为 nil 时登出仅依赖客户端清除 Cookie
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
		cost:      bcrypt.DefaultCost,
		now:       time.Now,
	}
}

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.MasterResponse, error) {
	if !s.cfg.Auth.AllowRegistration {
		return nil, ErrRegistrationClosed
	}

	username := strings.TrimSpace(req.Username)

	var c apperrors.Collector
	validateUsername(&c, username)
	validatePassword(&c, "password", req.Password)
	if err := c.Err(); err != nil {
		return nil, err
	}

	existing, err := s.repo.Master.GetByUsername(ctx, username)
	if err != nil && !isNotFound(err) {
		s.logger.Error("查询操作员失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Invalid(ErrUsernameExists, "username", "a user with that username already exists")
	}

	hash, err := s.ensureHashed(req.Password)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	master := &model.Master{
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.repo.Master.Create(ctx, master); err != nil {
		if verr, ok := mapUniqueViolation(err, masterUniqueFields); ok {
			return nil, verr
		}
		s.logger.Error("创建操作员失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("操作员注册成功", zap.String("master_id", master.MasterID), zap.String("username", username))
	return toMasterResponse(master), nil
}

var masterUniqueFields = map[string]uniqueField{
	repository.ConstraintMasterUsername: {"username", ErrUsernameExists, "a user with that username already exists"},
}

// ────────────────────── Authenticate / Login ──────────────────────

func (s *authService) Authenticate(ctx context.Context, username, password string) (*model.Master, error) {
	master, err := s.repo.Master.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if isNotFound(err) {
			// 未知用户同样执行一次哈希比较，避免通过耗时区分用户是否存在
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return nil, ErrAccountNotFound
		}
		s.logger.Error("查询操作员失败", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(master.PasswordHash), []byte(password)); err != nil {
		return nil, ErrWrongPassword
	}
	if !master.IsActive {
		return nil, ErrAccountInactive
	}
	return master, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	master, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.logger.Info("登录失败", zap.String("username", req.Username), zap.String("reason", err.Error()))
		}
		return nil, err
	}

	now := s.now()
	if err := s.repo.Master.UpdateLastLogin(ctx, master.MasterID, now); err != nil {
		s.logger.Error("更新最后登录时间失败", zap.String("master_id", master.MasterID), zap.Error(err))
		return nil, err
	}
	master.LastLogin = &now

	sess, err := s.jwtMgr.GenerateSessionToken(master.MasterID, master.Username)
	if err != nil {
		s.logger.Error("签发会话失败", zap.Error(err))
		return nil, err
	}

	return &dto.LoginResponse{
		Token:     sess.Token,
		ExpiresAt: dto.FormatTime(sess.ExpiresAt),
		Master:    *toMasterResponse(master),
	}, nil
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, expiresAt.Sub(s.now())); err != nil {
		s.logger.Error("会话加入黑名单失败", zap.String("jti", jti), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ChangePassword ──────────────────────

func (s *authService) ChangePassword(ctx context.Context, masterID string, req *dto.ChangePasswordRequest) error {
	master, err := s.repo.Master.GetByID(ctx, masterID)
	if err != nil {
		if isNotFound(err) {
			return ErrMasterNotFound
		}
		s.logger.Error("查询操作员失败", zap.String("master_id", masterID), zap.Error(err))
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(master.PasswordHash), []byte(req.OldPassword)); err != nil {
		return apperrors.Invalid(ErrWrongPassword, "old_password", "current password is incorrect")
	}

	var c apperrors.Collector
	validatePassword(&c, "new_password", req.NewPassword)
	if err := c.Err(); err != nil {
		return err
	}

	hash, err := s.ensureHashed(req.NewPassword)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return err
	}
	master.PasswordHash = hash

	if err := s.repo.Master.Update(ctx, master); err != nil {
		s.logger.Error("更新密码失败", zap.String("master_id", masterID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Current ──────────────────────

func (s *authService) Current(ctx context.Context, masterID string) (*dto.MasterResponse, error) {
	master, err := s.repo.Master.GetByID(ctx, masterID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrMasterNotFound
		}
		s.logger.Error("查询操作员失败", zap.String("master_id", masterID), zap.Error(err))
		return nil, err
	}
	return toMasterResponse(master), nil
}

// ── 内部方法 ──

// ensureHashed 已是 bcrypt 哈希时原样返回，否则计算哈希
func (s *authService) ensureHashed(password string) (string, error) {
	if isBcryptHash(password) {
		return password, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *authService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("cognify-timing-equalizer"), s.cost)
	})
	return s.dummyHash
}

func isBcryptHash(s string) bool {
	if !strings.HasPrefix(s, "$2a$") && !strings.HasPrefix(s, "$2b$") && !strings.HasPrefix(s, "$2y$") {
		return false
	}
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

func validateUsername(c *apperrors.Collector, username string) {
	checkLength(c, "username", username, 3, 100, nil)
	if !c.Has("username") && !accountNamePattern.MatchString(username) {
		c.Add(ErrInvalidFormat, "username", "may contain only letters, digits and @/./+/-/_")
	}
}

func validatePassword(c *apperrors.Collector, field, password string) {
	switch {
	case len(password) < minPasswordLen:
		c.Add(ErrWeakPassword, field, fmt.Sprintf("must be at least %d characters", minPasswordLen))
	case len(password) > maxPasswordLen:
		c.Add(ErrTooLong, field, fmt.Sprintf("must be at most %d bytes", maxPasswordLen))
	}
}

func toMasterResponse(m *model.Master) *dto.MasterResponse {
	resp := &dto.MasterResponse{
		ID:        m.MasterID,
		Username:  m.Username,
		IsActive:  m.IsActive,
		CreatedAt: dto.FormatTime(m.CreatedAt),
	}
	if m.LastLogin != nil {
		resp.LastLogin = dto.FormatTime(*m.LastLogin)
	}
	return resp
}
