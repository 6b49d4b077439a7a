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

// ── 主题模块业务错误 ──

var (
	ErrTopicNotFound         = fmt.Errorf("主题不存在: %w", apperrors.ErrNotFound)
	ErrTitleExistsForSubject = errors.New("该对象下已存在同名主题")
	ErrTitleTooShort         = errors.New("标题过短")
	ErrDescriptionTooShort   = errors.New("描述过短")
	ErrAboutInRoster         = errors.New("主题对象不能出现在学习者或负责人中")
	ErrRosterMemberNotFound  = errors.New("名单中存在未知参与者")
)

const (
	topicSlugMaxLen  = 105
	topicSlugDefault = "topic"
)

// TopicService 主题业务接口
type TopicService interface {
	Create(ctx context.Context, req *dto.CreateTopicRequest) (*dto.TopicResponse, error)
	// Get 主题详情，含有序问题与答案
	Get(ctx context.Context, slug string) (*dto.TopicDetailResponse, error)
	List(ctx context.Context, req *dto.TopicListRequest) (*dto.PageResult[dto.TopicResponse], error)
	Update(ctx context.Context, slug string, req *dto.UpdateTopicRequest) (*dto.TopicResponse, error)
	Activate(ctx context.Context, slug string) (*dto.TopicResponse, error)
	Deactivate(ctx context.Context, slug string) (*dto.TopicResponse, error)
	// Delete 删除主题及其问题与答案
	Delete(ctx context.Context, slug string) error
}

type topicService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTopicService 创建 TopicService 实例
func NewTopicService(repo *repository.Repository, logger *zap.Logger) TopicService {
	return &topicService{repo: repo, logger: logger}
}

var topicUniqueFields = map[string]uniqueField{
	repository.ConstraintTopicAboutTitle: {"title", ErrTitleExistsForSubject, "a topic with this title already exists for this participant"},
	repository.ConstraintTopicSlug:       {"title", ErrSlugConflict, "a topic with a similar title was just created, try again"},
}

// topicDraft 待写入的主题及其名单
type topicDraft struct {
	topic       *model.Topic
	studyingIDs []string
	bossIDs     []string
}

// ────────────────────── Create ──────────────────────

func (s *topicService) Create(ctx context.Context, req *dto.CreateTopicRequest) (*dto.TopicResponse, error) {
	d := &topicDraft{
		topic: &model.Topic{
			AboutID:     strings.TrimSpace(req.AboutID),
			OrbitID:     strings.TrimSpace(req.OrbitID),
			Title:       req.Title,
			Description: req.Description,
			IsActive:    true,
		},
		studyingIDs: dedupe(req.StudyingParticipantIDs),
		bossIDs:     dedupe(req.BossIDs),
	}
	if req.IsActive != nil {
		d.topic.IsActive = *req.IsActive
	}

	if err := s.validate(ctx, d); err != nil {
		return nil, err
	}

	if err := s.write(ctx, d, true); err != nil {
		return nil, err
	}
	return s.reload(ctx, d.topic.TopicID)
}

// ────────────────────── Get / List ──────────────────────

func (s *topicService) Get(ctx context.Context, slug string) (*dto.TopicDetailResponse, error) {
	topic, err := s.getBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	questions, err := s.repo.Question.ListByTopic(ctx, topic.TopicID)
	if err != nil {
		s.logger.Error("查询主题问题失败", zap.String("topic_id", topic.TopicID), zap.Error(err))
		return nil, err
	}

	resp := toTopicResponse(topic)
	resp.QuestionCount = int64(len(questions))
	return &dto.TopicDetailResponse{
		TopicResponse: *resp,
		Questions:     toQuestionResponses(questions),
	}, nil
}

func (s *topicService) List(ctx context.Context, req *dto.TopicListRequest) (*dto.PageResult[dto.TopicResponse], error) {
	f := repository.TopicFilter{
		Search: req.Search,
		Page:   repository.Page{Offset: req.GetOffset(), Limit: req.GetPageSize()},
	}
	switch req.Status {
	case "active":
		f.Active = boolPtr(true)
	case "inactive":
		f.Active = boolPtr(false)
	}
	if req.Orbit != "" {
		orbit, err := s.repo.Orbit.GetBySlug(ctx, req.Orbit)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrOrbitNotFound
			}
			s.logger.Error("查询分类失败", zap.String("slug", req.Orbit), zap.Error(err))
			return nil, err
		}
		f.OrbitID = orbit.OrbitID
	}

	topics, total, err := s.repo.Topic.List(ctx, f)
	if err != nil {
		s.logger.Error("查询主题列表失败", zap.Error(err))
		return nil, err
	}

	list, err := s.toTopicResponses(ctx, topics)
	if err != nil {
		return nil, err
	}
	return &dto.PageResult[dto.TopicResponse]{
		List:     list,
		Total:    total,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
	}, nil
}

// ────────────────────── Update ──────────────────────

func (s *topicService) Update(ctx context.Context, slugValue string, req *dto.UpdateTopicRequest) (*dto.TopicResponse, error) {
	topic, err := s.getBySlug(ctx, slugValue)
	if err != nil {
		return nil, err
	}

	d := &topicDraft{
		topic:       topic,
		studyingIDs: participantIDs(topic.StudyingParticipants),
		bossIDs:     participantIDs(topic.Bosses),
	}
	oldTitle := topic.Title

	if req.AboutID != nil {
		topic.AboutID = strings.TrimSpace(*req.AboutID)
	}
	if req.OrbitID != nil {
		topic.OrbitID = strings.TrimSpace(*req.OrbitID)
	}
	if req.Title != nil {
		topic.Title = *req.Title
	}
	if req.Description != nil {
		topic.Description = *req.Description
	}
	if req.IsActive != nil {
		topic.IsActive = *req.IsActive
	}
	if req.StudyingParticipantIDs != nil {
		d.studyingIDs = dedupe(*req.StudyingParticipantIDs)
	}
	if req.BossIDs != nil {
		d.bossIDs = dedupe(*req.BossIDs)
	}
	// 关联对象以 ID 为准，清除预加载结果避免写入旧值
	topic.About, topic.Orbit = nil, nil
	topic.StudyingParticipants, topic.Bosses = nil, nil

	if err := s.validate(ctx, d); err != nil {
		return nil, err
	}

	if err := s.write(ctx, d, topic.Title != oldTitle); err != nil {
		return nil, err
	}
	return s.reload(ctx, topic.TopicID)
}

// ────────────────────── Activate / Deactivate ──────────────────────

func (s *topicService) Activate(ctx context.Context, slug string) (*dto.TopicResponse, error) {
	return s.setActive(ctx, slug, true)
}

func (s *topicService) Deactivate(ctx context.Context, slug string) (*dto.TopicResponse, error) {
	return s.setActive(ctx, slug, false)
}

func (s *topicService) setActive(ctx context.Context, slug string, active bool) (*dto.TopicResponse, error) {
	topic, err := s.getBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	topic.IsActive = active
	if err := s.repo.Topic.Update(ctx, topic); err != nil {
		s.logger.Error("更新主题状态失败", zap.String("topic_id", topic.TopicID), zap.Error(err))
		return nil, err
	}
	return s.reload(ctx, topic.TopicID)
}

// ────────────────────── Delete ──────────────────────

func (s *topicService) Delete(ctx context.Context, slug string) error {
	topic, err := s.getBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.repo.Topic.Delete(ctx, topic.TopicID); err != nil {
		s.logger.Error("删除主题失败", zap.String("topic_id", topic.TopicID), zap.Error(err))
		return err
	}
	s.logger.Info("主题已删除", zap.String("topic_id", topic.TopicID), zap.String("slug", topic.Slug))
	return nil
}

// ── 内部方法 ──

func (s *topicService) getBySlug(ctx context.Context, slug string) (*model.Topic, error) {
	topic, err := s.repo.Topic.GetBySlug(ctx, slug)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTopicNotFound
		}
		s.logger.Error("查询主题失败", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}
	return topic, nil
}

func (s *topicService) reload(ctx context.Context, id string) (*dto.TopicResponse, error) {
	topic, err := s.repo.Topic.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("查询主题失败", zap.String("topic_id", id), zap.Error(err))
		return nil, err
	}
	list, err := s.toTopicResponses(ctx, []model.Topic{*topic})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

// validate 字段校验 → 引用存在性 → 名单规则 → 标题唯一性
func (s *topicService) validate(ctx context.Context, d *topicDraft) error {
	t := d.topic
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)

	var c apperrors.Collector
	checkLength(&c, "title", t.Title, 5, 100, ErrTitleTooShort)
	checkLength(&c, "description", t.Description, 10, 0, ErrDescriptionTooShort)
	if t.AboutID == "" {
		c.Add(ErrInvalidFormat, "about_id", "this field is required")
	}
	if t.OrbitID == "" {
		c.Add(ErrInvalidFormat, "orbit_id", "this field is required")
	}
	if err := c.Err(); err != nil {
		return err
	}

	if _, err := s.repo.Participant.GetByID(ctx, t.AboutID); err != nil {
		if isNotFound(err) {
			return ErrParticipantNotFound
		}
		s.logger.Error("查询参与者失败", zap.String("participant_id", t.AboutID), zap.Error(err))
		return err
	}
	if _, err := s.repo.Orbit.GetByID(ctx, t.OrbitID); err != nil {
		if isNotFound(err) {
			return ErrOrbitNotFound
		}
		s.logger.Error("查询分类失败", zap.String("orbit_id", t.OrbitID), zap.Error(err))
		return err
	}

	for _, roster := range []struct {
		field string
		ids   []string
	}{{"studying_participant_ids", d.studyingIDs}, {"boss_ids", d.bossIDs}} {
		if contains(roster.ids, t.AboutID) {
			c.Add(ErrAboutInRoster, roster.field, "the topic subject cannot be in this list")
			continue
		}
		found, err := s.repo.Participant.GetByIDs(ctx, roster.ids)
		if err != nil {
			s.logger.Error("查询名单参与者失败", zap.Error(err))
			return err
		}
		if len(found) != len(roster.ids) {
			c.Add(ErrRosterMemberNotFound, roster.field, "contains unknown participants")
		}
	}

	if !c.Has("title") {
		taken, err := s.repo.Topic.TitleExistsForAbout(ctx, t.AboutID, t.Title, t.TopicID)
		if err != nil {
			s.logger.Error("检查主题标题失败", zap.Error(err))
			return err
		}
		if taken {
			c.Add(ErrTitleExistsForSubject, "title", "a topic with this title already exists for this participant")
		}
	}
	return c.Err()
}

// write 在单个事务中写入主题与名单，regenerateSlug 时按标题重新生成 slug
func (s *topicService) write(ctx context.Context, d *topicDraft, regenerateSlug bool) error {
	t := d.topic
	creating := t.TopicID == ""

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if creating || regenerateSlug {
			sl, err := slug.Unique(ctx, t.Title, topicSlugDefault, topicSlugMaxLen, func(ctx context.Context, candidate string) (bool, error) {
				return txRepo.Topic.SlugExists(ctx, candidate, t.TopicID)
			})
			if err != nil {
				return err
			}
			t.Slug = sl
		}

		if creating {
			if err := txRepo.Topic.Create(ctx, t); err != nil {
				return err
			}
		} else if err := txRepo.Topic.Update(ctx, t); err != nil {
			return err
		}
		return txRepo.Topic.ReplaceRoster(ctx, t.TopicID, d.studyingIDs, d.bossIDs)
	})
	if err != nil {
		if verr, ok := mapUniqueViolation(err, topicUniqueFields); ok {
			return verr
		}
		s.logger.Error("写入主题失败", zap.String("title", t.Title), zap.Error(err))
		return err
	}
	return nil
}

func (s *topicService) toTopicResponses(ctx context.Context, topics []model.Topic) ([]dto.TopicResponse, error) {
	ids := make([]string, len(topics))
	for i := range topics {
		ids[i] = topics[i].TopicID
	}

	studying, err := s.repo.Topic.CountStudying(ctx, ids)
	if err != nil {
		s.logger.Error("统计学习者失败", zap.Error(err))
		return nil, err
	}
	bosses, err := s.repo.Topic.CountBosses(ctx, ids)
	if err != nil {
		s.logger.Error("统计负责人失败", zap.Error(err))
		return nil, err
	}
	questions, err := s.repo.Question.CountByTopics(ctx, ids)
	if err != nil {
		s.logger.Error("统计问题数失败", zap.Error(err))
		return nil, err
	}

	list := make([]dto.TopicResponse, 0, len(topics))
	for i := range topics {
		resp := toTopicResponse(&topics[i])
		resp.StudyingParticipantsCount = studying[topics[i].TopicID]
		resp.BossesCount = bosses[topics[i].TopicID]
		resp.QuestionCount = questions[topics[i].TopicID]
		list = append(list, *resp)
	}
	return list, nil
}

func toTopicResponse(t *model.Topic) *dto.TopicResponse {
	return &dto.TopicResponse{
		ID:                        t.TopicID,
		Slug:                      t.Slug,
		Title:                     t.Title,
		Description:               t.Description,
		IsActive:                  t.IsActive,
		About:                     toParticipantBrief(t.About),
		Orbit:                     toOrbitBrief(t.Orbit),
		StudyingParticipants:      toParticipantBriefs(t.StudyingParticipants),
		Bosses:                    toParticipantBriefs(t.Bosses),
		StudyingParticipantsCount: int64(len(t.StudyingParticipants)),
		BossesCount:               int64(len(t.Bosses)),
		CreatedAt:                 dto.FormatTime(t.CreatedAt),
		UpdatedAt:                 dto.FormatTime(t.UpdatedAt),
	}
}

func participantIDs(ps []model.Participant) []string {
	ids := make([]string, 0, len(ps))
	for i := range ps {
		ids = append(ids, ps[i].ParticipantID)
	}
	return ids
}

// dedupe 去除空白与重复 ID，保持原有顺序
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
