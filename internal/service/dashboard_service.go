package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"cognify/backend/internal/dto"
	"cognify/backend/internal/model"
	"cognify/backend/internal/repository"
	apperrors "cognify/backend/pkg/errors"
)

// dashboardQuoteLimit 仪表盘展示的语录条数
const dashboardQuoteLimit = 10

// DashboardService 仪表盘与语录业务接口
type DashboardService interface {
	Dashboard(ctx context.Context, masterID string) (*dto.DashboardResponse, error)
	// ListQuotes 启用语录，新的在前
	ListQuotes(ctx context.Context) ([]dto.QuoteResponse, error)
	CreateQuote(ctx context.Context, req *dto.CreateQuoteRequest) (*dto.QuoteResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(repo *repository.Repository, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, logger: logger}
}

func (s *dashboardService) Dashboard(ctx context.Context, masterID string) (*dto.DashboardResponse, error) {
	master, err := s.repo.Master.GetByID(ctx, masterID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrMasterNotFound
		}
		s.logger.Error("查询操作员失败", zap.String("master_id", masterID), zap.Error(err))
		return nil, err
	}

	quotes, err := s.repo.Quote.ListActive(ctx, dashboardQuoteLimit)
	if err != nil {
		s.logger.Error("查询语录失败", zap.Error(err))
		return nil, err
	}

	var counts dto.DashboardCounts
	for _, c := range []struct {
		dst   *int64
		count func(context.Context) (int64, error)
	}{
		{&counts.Orbits, s.repo.Orbit.Count},
		{&counts.Participants, s.repo.Participant.Count},
		{&counts.Topics, s.repo.Topic.Count},
		{&counts.Questions, s.repo.Question.Count},
	} {
		n, err := c.count(ctx)
		if err != nil {
			s.logger.Error("统计实体数量失败", zap.Error(err))
			return nil, err
		}
		*c.dst = n
	}

	return &dto.DashboardResponse{
		Username: master.Username,
		Quotes:   toQuoteResponses(quotes),
		Counts:   counts,
	}, nil
}

func (s *dashboardService) ListQuotes(ctx context.Context) ([]dto.QuoteResponse, error) {
	quotes, err := s.repo.Quote.ListActive(ctx, 0)
	if err != nil {
		s.logger.Error("查询语录失败", zap.Error(err))
		return nil, err
	}
	return toQuoteResponses(quotes), nil
}

func (s *dashboardService) CreateQuote(ctx context.Context, req *dto.CreateQuoteRequest) (*dto.QuoteResponse, error) {
	q := &model.Quote{
		Quote:    strings.TrimSpace(req.Quote),
		Author:   strings.TrimSpace(req.Author),
		IsActive: true,
	}
	if q.Quote == "" {
		return nil, apperrors.Invalid(ErrInvalidFormat, "quote", "this field is required")
	}

	if err := s.repo.Quote.Create(ctx, q); err != nil {
		s.logger.Error("创建语录失败", zap.Error(err))
		return nil, err
	}
	return toQuoteResponse(q), nil
}

func toQuoteResponse(q *model.Quote) *dto.QuoteResponse {
	return &dto.QuoteResponse{
		ID:        q.QuoteID,
		Quote:     q.Quote,
		Author:    q.Author,
		CreatedAt: dto.FormatTime(q.CreatedAt),
	}
}

func toQuoteResponses(qs []model.Quote) []dto.QuoteResponse {
	list := make([]dto.QuoteResponse, 0, len(qs))
	for i := range qs {
		list = append(list, *toQuoteResponse(&qs[i]))
	}
	return list
}
