package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cognify/backend/config"
	"cognify/backend/internal/dto"
	"cognify/backend/internal/service"
	"cognify/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
	cfg     *config.AuthConfig
	logger  *zap.Logger
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService, cfg *config.AuthConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, cfg: cfg, logger: logger}
}

// Login 操作员登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, response.CodeBadCredentials, "Invalid credentials")
			return
		}
		writeServiceError(c, h.logger, err)
		return
	}

	h.setSessionCookie(c, result.Token, int(h.sessionTTLSeconds()))
	response.OK(c, result)
}

// Register 注册操作员
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	master, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrRegistrationClosed) {
			response.Forbidden(c, response.CodeValidation, "registration is closed")
			return
		}
		writeServiceError(c, h.logger, err)
		return
	}

	response.Created(c, master)
}

// Logout 登出：吊销当前会话并清除 Cookie
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp := sessionToken(c)
	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	h.setSessionCookie(c, "", -1)
	response.OK(c, nil)
}

// Me 当前操作员
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	masterID, ok := MustGetMasterID(c)
	if !ok {
		return
	}

	master, err := h.authSvc.Current(c.Request.Context(), masterID)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, master)
}

// ChangePassword 修改密码
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	masterID, ok := MustGetMasterID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), masterID, &req); err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, nil)
}

// ── Cookie ──

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(parseSameSite(h.cfg.Cookie.SameSite))
	c.SetCookie(h.cfg.Cookie.Name, value, maxAge, "/", h.cfg.Cookie.Domain, h.cfg.Cookie.Secure, true)
}

func (h *AuthHandler) sessionTTLSeconds() int64 {
	return int64(h.cfg.SessionTTL.Seconds())
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
