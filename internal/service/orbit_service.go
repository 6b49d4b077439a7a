package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cognify/backend/internal/dto"
	"cognify/backend/internal/model"
	"cognify/backend/internal/repository"
	apperrors "cognify/backend/pkg/errors"
	"cognify/backend/pkg/slug"
)

// ── 分类模块业务错误 ──

var (
	ErrOrbitNotFound   = fmt.Errorf("分类不存在: %w", apperrors.ErrNotFound)
	ErrOrbitNameExists = errors.New("分类名称已存在")
	ErrInvalidColor    = errors.New("颜色格式无效")
	ErrSlugConflict    = errors.New("slug 冲突")
)

const (
	orbitSlugMaxLen  = 110
	orbitSlugDefault = "orbit"
)

// OrbitService 分类业务接口
type OrbitService interface {
	Create(ctx context.Context, req *dto.CreateOrbitRequest) (*dto.OrbitResponse, error)
	Get(ctx context.Context, slug string) (*dto.OrbitResponse, error)
	List(ctx context.Context, req *dto.OrbitListRequest) (*dto.PageResult[dto.OrbitResponse], error)
	// Search 名称或描述的大小写不敏感子串匹配
	Search(ctx context.Context, query string) ([]dto.OrbitResponse, error)
	Update(ctx context.Context, slug string, req *dto.UpdateOrbitRequest) (*dto.OrbitResponse, error)
	Activate(ctx context.Context, slug string) (*dto.OrbitResponse, error)
	Deactivate(ctx context.Context, slug string) (*dto.OrbitResponse, error)
	Archive(ctx context.Context, slug string) (*dto.OrbitResponse, error)
	// Delete 删除分类，其下主题一并删除
	Delete(ctx context.Context, slug string) error
}

type orbitService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewOrbitService 创建 OrbitService 实例
func NewOrbitService(repo *repository.Repository, logger *zap.Logger) OrbitService {
	return &orbitService{repo: repo, logger: logger}
}

var orbitUniqueFields = map[string]uniqueField{
	repository.ConstraintOrbitName: {"name", ErrOrbitNameExists, "an orbit with this name already exists"},
	repository.ConstraintOrbitSlug: {"name", ErrSlugConflict, "an orbit with a similar name was just created, try again"},
}

// ────────────────────── Create ──────────────────────

func (s *orbitService) Create(ctx context.Context, req *dto.CreateOrbitRequest) (*dto.OrbitResponse, error) {
	orbit := &model.Orbit{
		Name:        req.Name,
		Description: req.Description,
		Status:      model.OrbitStatus(req.Status),
		Order:       req.Order,
		Color:       req.Color,
		Icon:        req.Icon,
	}
	normalizeOrbit(orbit)

	if err := s.validate(ctx, orbit); err != nil {
		return nil, err
	}

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		sl, err := slug.Unique(ctx, orbit.Name, orbitSlugDefault, orbitSlugMaxLen, func(ctx context.Context, candidate string) (bool, error) {
			return txRepo.Orbit.SlugExists(ctx, candidate, "")
		})
		if err != nil {
			return err
		}
		orbit.Slug = sl
		return txRepo.Orbit.Create(ctx, orbit)
	})
	if err != nil {
		if verr, ok := mapUniqueViolation(err, orbitUniqueFields); ok {
			return nil, verr
		}
		s.logger.Error("创建分类失败", zap.String("name", orbit.Name), zap.Error(err))
		return nil, err
	}

	return toOrbitResponse(orbit, 0), nil
}

// ────────────────────── Get / List / Search ──────────────────────

func (s *orbitService) Get(ctx context.Context, slug string) (*dto.OrbitResponse, error) {
	orbit, err := s.getBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.withTopicCount(ctx, orbit)
}

func (s *orbitService) List(ctx context.Context, req *dto.OrbitListRequest) (*dto.PageResult[dto.OrbitResponse], error) {
	orbits, total, err := s.repo.Orbit.List(ctx, repository.OrbitFilter{
		Status: req.Status,
		Search: req.Search,
		Page:   repository.Page{Offset: req.GetOffset(), Limit: req.GetPageSize()},
	})
	if err != nil {
		s.logger.Error("查询分类列表失败", zap.Error(err))
		return nil, err
	}

	list, err := s.toOrbitResponses(ctx, orbits)
	if err != nil {
		return nil, err
	}
	return &dto.PageResult[dto.OrbitResponse]{
		List:     list,
		Total:    total,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
	}, nil
}

func (s *orbitService) Search(ctx context.Context, query string) ([]dto.OrbitResponse, error) {
	orbits, _, err := s.repo.Orbit.List(ctx, repository.OrbitFilter{Search: query})
	if err != nil {
		s.logger.Error("搜索分类失败", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	return s.toOrbitResponses(ctx, orbits)
}

// ────────────────────── Update ──────────────────────

func (s *orbitService) Update(ctx context.Context, slugValue string, req *dto.UpdateOrbitRequest) (*dto.OrbitResponse, error) {
	orbit, err := s.getBySlug(ctx, slugValue)
	if err != nil {
		return nil, err
	}
	oldName := orbit.Name

	// 合并后整体校验
	if req.Name != nil {
		orbit.Name = *req.Name
	}
	if req.Description != nil {
		orbit.Description = *req.Description
	}
	if req.Status != nil {
		orbit.Status = model.OrbitStatus(*req.Status)
	}
	if req.Order != nil {
		orbit.Order = *req.Order
	}
	if req.Color != nil {
		orbit.Color = *req.Color
	}
	if req.Icon != nil {
		orbit.Icon = *req.Icon
	}
	normalizeOrbit(orbit)

	if err := s.validate(ctx, orbit); err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if orbit.Name != oldName {
			sl, err := slug.Unique(ctx, orbit.Name, orbitSlugDefault, orbitSlugMaxLen, func(ctx context.Context, candidate string) (bool, error) {
				return txRepo.Orbit.SlugExists(ctx, candidate, orbit.OrbitID)
			})
			if err != nil {
				return err
			}
			orbit.Slug = sl
		}
		return txRepo.Orbit.Update(ctx, orbit)
	})
	if err != nil {
		if verr, ok := mapUniqueViolation(err, orbitUniqueFields); ok {
			return nil, verr
		}
		s.logger.Error("更新分类失败", zap.String("orbit_id", orbit.OrbitID), zap.Error(err))
		return nil, err
	}

	return s.withTopicCount(ctx, orbit)
}

// ────────────────────── Status ──────────────────────

func (s *orbitService) Activate(ctx context.Context, slug string) (*dto.OrbitResponse, error) {
	return s.setStatus(ctx, slug, model.OrbitStatusActive)
}

func (s *orbitService) Deactivate(ctx context.Context, slug string) (*dto.OrbitResponse, error) {
	return s.setStatus(ctx, slug, model.OrbitStatusInactive)
}

func (s *orbitService) Archive(ctx context.Context, slug string) (*dto.OrbitResponse, error) {
	return s.setStatus(ctx, slug, model.OrbitStatusArchived)
}

func (s *orbitService) setStatus(ctx context.Context, slug string, status model.OrbitStatus) (*dto.OrbitResponse, error) {
	orbit, err := s.getBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	orbit.Status = status
	if err := s.repo.Orbit.Update(ctx, orbit); err != nil {
		s.logger.Error("更新分类状态失败", zap.String("orbit_id", orbit.OrbitID), zap.String("status", string(status)), zap.Error(err))
		return nil, err
	}
	return s.withTopicCount(ctx, orbit)
}

// ────────────────────── Delete ──────────────────────

func (s *orbitService) Delete(ctx context.Context, slug string) error {
	orbit, err := s.getBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.repo.Orbit.Delete(ctx, orbit.OrbitID); err != nil {
		s.logger.Error("删除分类失败", zap.String("orbit_id", orbit.OrbitID), zap.Error(err))
		return err
	}
	s.logger.Info("分类已删除", zap.String("orbit_id", orbit.OrbitID), zap.String("slug", orbit.Slug))
	return nil
}

// ── 内部方法 ──

func (s *orbitService) getBySlug(ctx context.Context, slug string) (*model.Orbit, error) {
	orbit, err := s.repo.Orbit.GetBySlug(ctx, slug)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrOrbitNotFound
		}
		s.logger.Error("查询分类失败", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}
	return orbit, nil
}

// validate 校验全部字段，并检查名称唯一性
func (s *orbitService) validate(ctx context.Context, o *model.Orbit) error {
	var c apperrors.Collector

	checkLength(&c, "name", o.Name, 3, 100, nil)
	if !c.Has("name") && !orbitNamePattern.MatchString(o.Name) {
		c.Add(ErrInvalidFormat, "name", "may contain only letters, numbers, spaces, hyphens, underscores and dots")
	}
	if runeLen(o.Description) > 500 {
		c.Add(ErrTooLong, "description", "must be at most 500 characters")
	}
	if !o.Status.Valid() {
		c.Add(ErrInvalidFormat, "status", "must be one of active, inactive, archived, draft")
	}
	if o.Order < 0 {
		c.Add(ErrInvalidFormat, "order", "must be zero or positive")
	}
	if !colorPattern.MatchString(o.Color) {
		c.Add(ErrInvalidColor, "color", "must be a hex color such as #FF0000 or #F00")
	}
	if runeLen(o.Icon) > 50 {
		c.Add(ErrTooLong, "icon", "must be at most 50 characters")
	}

	if !c.Has("name") {
		taken, err := s.repo.Orbit.NameExists(ctx, o.Name, o.OrbitID)
		if err != nil {
			s.logger.Error("检查分类名称失败", zap.Error(err))
			return err
		}
		if taken {
			c.Add(ErrOrbitNameExists, "name", "an orbit with this name already exists")
		}
	}
	return c.Err()
}

func normalizeOrbit(o *model.Orbit) {
	o.Name = strings.TrimSpace(o.Name)
	o.Description = strings.TrimSpace(o.Description)
	o.Icon = strings.TrimSpace(o.Icon)
	o.Color = strings.TrimSpace(o.Color)
	if o.Status == "" {
		o.Status = model.OrbitStatusActive
	}
	if o.Color == "" {
		o.Color = model.DefaultOrbitColor
	}
}

func (s *orbitService) withTopicCount(ctx context.Context, o *model.Orbit) (*dto.OrbitResponse, error) {
	counts, err := s.repo.Orbit.CountTopics(ctx, []string{o.OrbitID})
	if err != nil {
		s.logger.Error("统计分类主题数失败", zap.String("orbit_id", o.OrbitID), zap.Error(err))
		return nil, err
	}
	return toOrbitResponse(o, counts[o.OrbitID]), nil
}

func (s *orbitService) toOrbitResponses(ctx context.Context, orbits []model.Orbit) ([]dto.OrbitResponse, error) {
	ids := make([]string, len(orbits))
	for i := range orbits {
		ids[i] = orbits[i].OrbitID
	}
	counts, err := s.repo.Orbit.CountTopics(ctx, ids)
	if err != nil {
		s.logger.Error("统计分类主题数失败", zap.Error(err))
		return nil, err
	}

	list := make([]dto.OrbitResponse, 0, len(orbits))
	for i := range orbits {
		list = append(list, *toOrbitResponse(&orbits[i], counts[orbits[i].OrbitID]))
	}
	return list, nil
}

func toOrbitResponse(o *model.Orbit, topicCount int64) *dto.OrbitResponse {
	return &dto.OrbitResponse{
		ID:          o.OrbitID,
		Name:        o.Name,
		Slug:        o.Slug,
		Description: o.Description,
		Status:      string(o.Status),
		Order:       o.Order,
		Color:       o.Color,
		Icon:        o.Icon,
		IsActive:    o.IsActive(),
		DisplayName: o.DisplayName(),
		TopicCount:  topicCount,
		CreatedAt:   dto.FormatTime(o.CreatedAt),
		UpdatedAt:   dto.FormatTime(o.UpdatedAt),
	}
}

func toOrbitBrief(o *model.Orbit) *dto.OrbitBrief {
	if o == nil {
		return nil
	}
	return &dto.OrbitBrief{
		ID:          o.OrbitID,
		Name:        o.Name,
		Slug:        o.Slug,
		DisplayName: o.DisplayName(),
	}
}
