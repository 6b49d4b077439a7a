package handler

import (
	"go.uber.org/zap"

	"cognify/backend/config"
	"cognify/backend/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	Orbit       *OrbitHandler
	Participant *ParticipantHandler
	Topic       *TopicHandler
	Question    *QuestionHandler
	Dashboard   *DashboardHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth, &cfg.Auth, logger),
		Orbit:       NewOrbitHandler(svc.Orbit, logger),
		Participant: NewParticipantHandler(svc.Participant, logger),
		Topic:       NewTopicHandler(svc.Topic, svc.Export, logger),
		Question:    NewQuestionHandler(svc.Question, logger),
		Dashboard:   NewDashboardHandler(svc.Dashboard, logger),
	}
}
