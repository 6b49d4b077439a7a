package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"cognify/backend/config"
)

var (
	ErrTokenExpired = errors.New("会话已过期")
	ErrTokenInvalid = errors.New("会话无效")
)

const issuer = "cognify"

// Claims 会话令牌声明
type Claims struct {
	MasterID string `json:"master_id"`
	Username string `json:"username"`
	jwtv5.RegisteredClaims
}

// Session 新签发的会话
type Session struct {
	Token     string
	ID        string // JTI，用于登出黑名单
	ExpiresAt time.Time
}

// Manager 会话令牌管理器
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager 创建会话令牌管理器
func NewManager(cfg *config.AuthConfig) *Manager {
	return &Manager{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.SessionTTL,
		now:    time.Now,
	}
}

// TTL 会话有效期
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// GenerateSessionToken 为已认证的 Master 签发会话令牌
func (m *Manager) GenerateSessionToken(masterID, username string) (*Session, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	jti := uuid.New().String()

	claims := Claims{
		MasterID: masterID,
		Username: username,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        jti,
			Subject:   masterID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
			Issuer:    issuer,
		},
	}

	token, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ID: jti, ExpiresAt: exp}, nil
}

// ParseToken 解析并验证会话令牌
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, jwtv5.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.MasterID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
