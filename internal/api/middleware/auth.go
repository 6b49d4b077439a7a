package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cognify/backend/config"
	"cognify/backend/pkg/jwt"
	"cognify/backend/pkg/response"
)

// 会话信息在 gin.Context 中的键
const (
	CtxMasterID = "master_id"
	CtxUsername = "username"
	CtxTokenJTI = "token_jti"
	CtxTokenExp = "token_exp"
)

// TokenChecker 会话吊销查询
type TokenChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// SessionAuth 会话认证中间件
// 依次从会话 Cookie 与 Authorization: Bearer <token> 中提取令牌。
// 未认证时浏览器请求（Accept: text/html）302 跳转到登录入口，
// API 请求返回 401，并在 Location 头与 details 中给出登录入口。
// checker 为 nil 时不检查黑名单；查询出错时降级放行。
func SessionAuth(jwtMgr *jwt.Manager, checker TokenChecker, cfg *config.AuthConfig, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c, cfg.Cookie.Name)
		if token == "" {
			denySession(c, cfg.LoginPath, "authentication required")
			return
		}

		claims, err := jwtMgr.ParseToken(token)
		if err != nil {
			denySession(c, cfg.LoginPath, "session invalid or expired")
			return
		}

		if checker != nil && claims.ID != "" {
			revoked, err := checker.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil {
				logger.Warn("查询会话黑名单失败，降级放行", zap.String("jti", claims.ID), zap.Error(err))
			} else if revoked {
				denySession(c, cfg.LoginPath, "session has been revoked")
				return
			}
		}

		c.Set(CtxMasterID, claims.MasterID)
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxTokenJTI, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(CtxTokenExp, claims.ExpiresAt.Time)
		} else {
			c.Set(CtxTokenExp, time.Time{})
		}

		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) string {
	if cookieName != "" {
		if v, err := c.Cookie(cookieName); err == nil && v != "" {
			return v
		}
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// denySession 按客户端类型返回跳转或 401
func denySession(c *gin.Context, loginPath, message string) {
	target := loginPath
	if c.Request.Method == http.MethodGet {
		target = loginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
	}

	if wantsHTML(c) {
		c.Redirect(http.StatusFound, target)
		c.Abort()
		return
	}

	c.Header("Location", target)
	response.ErrorWithDetails(c, http.StatusUnauthorized, response.CodeUnauthenticated, message, gin.H{"login_url": target})
	c.Abort()
}

func wantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
