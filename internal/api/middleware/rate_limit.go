package middleware

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cognify/backend/pkg/ratelimit"
	"cognify/backend/pkg/response"
)

// LoginRateLimit 登录限流中间件（按客户端地址的固定窗口）
// 每次尝试无论成败都计数；超过阈值返回 429 并设置 Retry-After。
// 计数存储出错时降级放行。
func LoginRateLimit(limiter ratelimit.Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "login:" + c.ClientIP()
		res, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("登录限流计数失败，降级放行", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		if !res.Allowed {
			retry := int(math.Ceil(res.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			response.TooManyRequests(c, "too many login attempts, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
