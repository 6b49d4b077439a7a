package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"cognify/backend/internal/api/middleware"
	"cognify/backend/pkg/response"
)

// MustGetMasterID 从 Gin 上下文中安全提取 master_id。
// 会话中间件未注入时写入 401 响应并返回 false，调用方应直接 return。
func MustGetMasterID(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.CtxMasterID)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthenticated, "authentication required")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, response.CodeUnauthenticated, "authentication required")
		return "", false
	}
	return s, true
}

// sessionToken 当前会话的 jti 与过期时间，缺失时返回零值
func sessionToken(c *gin.Context) (string, time.Time) {
	jti := c.GetString(middleware.CtxTokenJTI)
	var exp time.Time
	if v, ok := c.Get(middleware.CtxTokenExp); ok {
		exp, _ = v.(time.Time)
	}
	return jti, exp
}
