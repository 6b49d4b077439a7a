package service

import (
	"go.uber.org/zap"

	"cognify/backend/config"
	"cognify/backend/internal/repository"
	"cognify/backend/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	Orbit       OrbitService
	Participant ParticipantService
	Topic       TopicService
	Question    QuestionService
	Dashboard   DashboardService
	Export      ExportService
}

// NewService 创建 Service 聚合
// blacklist 可为 nil（未启用 Redis）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:        NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		Orbit:       NewOrbitService(repo, logger),
		Participant: NewParticipantService(repo, logger),
		Topic:       NewTopicService(repo, logger),
		Question:    NewQuestionService(repo, logger),
		Dashboard:   NewDashboardService(repo, logger),
		Export:      NewExportService(repo, logger),
	}
}
