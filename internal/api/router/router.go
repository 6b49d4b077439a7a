package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cognify/backend/config"
	"cognify/backend/internal/api/handler"
	"cognify/backend/internal/api/middleware"
	"cognify/backend/pkg/jwt"
	"cognify/backend/pkg/ratelimit"
)

// Setup 初始化并返回 Gin 路由引擎
// checker 为 nil 时不检查会话黑名单；db 为 nil 时健康检查不探测数据库
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	jwtMgr *jwt.Manager,
	checker middleware.TokenChecker,
	limiter ratelimit.Limiter,
	db *gorm.DB,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", healthCheck(db))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需会话）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.LoginRateLimit(limiter, logger), h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
		}

		// 需要会话的路由
		authorized := v1.Group("")
		authorized.Use(middleware.SessionAuth(jwtMgr, checker, &cfg.Auth, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 仪表盘与语录
			authorized.GET("/dashboard", h.Dashboard.Dashboard)
			authorized.GET("/quotes", h.Dashboard.ListQuotes)
			authorized.POST("/quotes", h.Dashboard.CreateQuote)

			// 分类模块
			orbits := authorized.Group("/orbits")
			{
				orbits.GET("", h.Orbit.ListOrbits)
				orbits.GET("/search", h.Orbit.SearchOrbits)
				orbits.POST("", h.Orbit.CreateOrbit)
				orbits.GET("/:slug", h.Orbit.GetOrbit)
				orbits.PUT("/:slug", h.Orbit.UpdateOrbit)
				orbits.DELETE("/:slug", h.Orbit.DeleteOrbit)
				orbits.POST("/:slug/activate", h.Orbit.ActivateOrbit)
				orbits.POST("/:slug/deactivate", h.Orbit.DeactivateOrbit)
				orbits.POST("/:slug/archive", h.Orbit.ArchiveOrbit)
			}

			// 参与者模块
			participants := authorized.Group("/participants")
			{
				participants.GET("", h.Participant.ListParticipants)
				participants.GET("/search", h.Participant.SearchParticipants)
				participants.GET("/selectable", h.Participant.Selectable)
				participants.POST("", h.Participant.CreateParticipant)
				participants.GET("/:id", h.Participant.GetParticipant)
				participants.PUT("/:id", h.Participant.UpdateParticipant)
				participants.DELETE("/:id", h.Participant.DeleteParticipant)
				participants.POST("/:id/activate", h.Participant.ActivateParticipant)
				participants.POST("/:id/deactivate", h.Participant.DeactivateParticipant)
			}

			// 主题模块
			topics := authorized.Group("/topics")
			{
				topics.GET("", h.Topic.ListTopics)
				topics.POST("", h.Topic.CreateTopic)
				topics.GET("/:slug", h.Topic.GetTopic)
				topics.PUT("/:slug", h.Topic.UpdateTopic)
				topics.DELETE("/:slug", h.Topic.DeleteTopic)
				topics.POST("/:slug/activate", h.Topic.ActivateTopic)
				topics.POST("/:slug/deactivate", h.Topic.DeactivateTopic)
				topics.GET("/:slug/export", h.Topic.ExportTopic)

				// 问题与答案
				questions := topics.Group("/:slug/questions")
				{
					questions.POST("", h.Question.AddQuestion)
					questions.GET("/:question_id", h.Question.GetQuestion)
					questions.PUT("/:question_id", h.Question.UpdateQuestion)
					questions.DELETE("/:question_id", h.Question.DeleteQuestion)
					questions.POST("/:question_id/answers", h.Question.AddAnswer)
					questions.PUT("/:question_id/answers/:answer_id", h.Question.UpdateAnswer)
					questions.DELETE("/:question_id/answers/:answer_id", h.Question.DeleteAnswer)
					questions.POST("/:question_id/answers/:answer_id/correct", h.Question.MarkCorrect)
				}
			}
		}
	}

	return r
}

func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
