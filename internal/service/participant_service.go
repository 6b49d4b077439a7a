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
)

// ── 参与者模块业务错误 ──

var (
	ErrParticipantNotFound = fmt.Errorf("参与者不存在: %w", apperrors.ErrNotFound)
	ErrNicknameExists      = errors.New("昵称已存在")
	ErrEmailExists         = errors.New("邮箱已存在")
	ErrActiveNameExists    = errors.New("同名启用参与者已存在")
)

// ParticipantService 参与者业务接口
type ParticipantService interface {
	Create(ctx context.Context, req *dto.CreateParticipantRequest) (*dto.ParticipantResponse, error)
	Get(ctx context.Context, id string) (*dto.ParticipantResponse, error)
	List(ctx context.Context, req *dto.ParticipantListRequest) (*dto.PageResult[dto.ParticipantResponse], error)
	// Search 在启用参与者中按昵称、名、姓、邮箱搜索
	Search(ctx context.Context, query string) ([]dto.ParticipantResponse, error)
	// Selectable 主题表单候选：启用参与者，排除 excludeID
	Selectable(ctx context.Context, excludeID string) ([]dto.ParticipantBrief, error)
	Update(ctx context.Context, id string, req *dto.UpdateParticipantRequest) (*dto.ParticipantResponse, error)
	Activate(ctx context.Context, id string) (*dto.ParticipantResponse, error)
	Deactivate(ctx context.Context, id string) (*dto.ParticipantResponse, error)
	// Delete 删除参与者：其答案保留并改为管理员录入，以其为对象的主题一并删除
	Delete(ctx context.Context, id string) error
}

type participantService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewParticipantService 创建 ParticipantService 实例
func NewParticipantService(repo *repository.Repository, logger *zap.Logger) ParticipantService {
	return &participantService{repo: repo, logger: logger}
}

var participantUniqueFields = map[string]uniqueField{
	repository.ConstraintParticipantNick:   {"nickname", ErrNicknameExists, "a participant with this nickname already exists"},
	repository.ConstraintParticipantEmail:  {"email", ErrEmailExists, "a participant with this email already exists"},
	repository.ConstraintParticipantActive: {"name", ErrActiveNameExists, "an active participant with this name already exists"},
}

// ────────────────────── Create ──────────────────────

func (s *participantService) Create(ctx context.Context, req *dto.CreateParticipantRequest) (*dto.ParticipantResponse, error) {
	p := &model.Participant{
		Nickname:  req.Nickname,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Position:  model.Position(req.Position),
		Bio:       req.Bio,
		IsActive:  true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	setEmail(p, req.Email)
	normalizeParticipant(p)

	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}

	if err := s.repo.Participant.Create(ctx, p); err != nil {
		if verr, ok := mapUniqueViolation(err, participantUniqueFields); ok {
			return nil, verr
		}
		s.logger.Error("创建参与者失败", zap.String("nickname", p.Nickname), zap.Error(err))
		return nil, err
	}
	return toParticipantResponse(p), nil
}

// ────────────────────── Get / List / Search ──────────────────────

func (s *participantService) Get(ctx context.Context, id string) (*dto.ParticipantResponse, error) {
	p, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toParticipantResponse(p), nil
}

func (s *participantService) List(ctx context.Context, req *dto.ParticipantListRequest) (*dto.PageResult[dto.ParticipantResponse], error) {
	f := repository.ParticipantFilter{
		Position: req.Position,
		Search:   req.Search,
		Page:     repository.Page{Offset: req.GetOffset(), Limit: req.GetPageSize()},
	}
	switch req.Status {
	case "active":
		f.Active = boolPtr(true)
	case "inactive":
		f.Active = boolPtr(false)
	}

	ps, total, err := s.repo.Participant.List(ctx, f)
	if err != nil {
		s.logger.Error("查询参与者列表失败", zap.Error(err))
		return nil, err
	}
	return &dto.PageResult[dto.ParticipantResponse]{
		List:     toParticipantResponses(ps),
		Total:    total,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
	}, nil
}

func (s *participantService) Search(ctx context.Context, query string) ([]dto.ParticipantResponse, error) {
	ps, _, err := s.repo.Participant.List(ctx, repository.ParticipantFilter{
		Active: boolPtr(true),
		Search: query,
	})
	if err != nil {
		s.logger.Error("搜索参与者失败", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	return toParticipantResponses(ps), nil
}

func (s *participantService) Selectable(ctx context.Context, excludeID string) ([]dto.ParticipantBrief, error) {
	ps, err := s.repo.Participant.ListSelectable(ctx, excludeID)
	if err != nil {
		s.logger.Error("查询候选参与者失败", zap.Error(err))
		return nil, err
	}
	return toParticipantBriefs(ps), nil
}

// ────────────────────── Update ──────────────────────

func (s *participantService) Update(ctx context.Context, id string, req *dto.UpdateParticipantRequest) (*dto.ParticipantResponse, error) {
	p, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Nickname != nil {
		p.Nickname = *req.Nickname
	}
	if req.Firstname != nil {
		p.Firstname = *req.Firstname
	}
	if req.Lastname != nil {
		p.Lastname = *req.Lastname
	}
	if req.Position != nil {
		p.Position = model.Position(*req.Position)
	}
	if req.Email != nil {
		setEmail(p, *req.Email)
	}
	if req.Bio != nil {
		p.Bio = *req.Bio
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	normalizeParticipant(p)

	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}

	return s.save(ctx, p)
}

// ────────────────────── Activate / Deactivate ──────────────────────

func (s *participantService) Activate(ctx context.Context, id string) (*dto.ParticipantResponse, error) {
	p, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsActive {
		return toParticipantResponse(p), nil
	}

	taken, err := s.repo.Participant.ActiveNameExists(ctx, p.Firstname, p.Lastname, p.ParticipantID)
	if err != nil {
		s.logger.Error("检查同名参与者失败", zap.Error(err))
		return nil, err
	}
	if taken {
		return nil, apperrors.Invalid(ErrActiveNameExists, "name", "an active participant with this name already exists")
	}

	p.IsActive = true
	return s.save(ctx, p)
}

func (s *participantService) Deactivate(ctx context.Context, id string) (*dto.ParticipantResponse, error) {
	p, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return toParticipantResponse(p), nil
	}
	p.IsActive = false
	return s.save(ctx, p)
}

// ────────────────────── Delete ──────────────────────

func (s *participantService) Delete(ctx context.Context, id string) error {
	p, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Participant.Delete(ctx, p.ParticipantID); err != nil {
		s.logger.Error("删除参与者失败", zap.String("participant_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("参与者已删除", zap.String("participant_id", id), zap.String("nickname", p.Nickname))
	return nil
}

// ── 内部方法 ──

func (s *participantService) getByID(ctx context.Context, id string) (*model.Participant, error) {
	p, err := s.repo.Participant.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrParticipantNotFound
		}
		s.logger.Error("查询参与者失败", zap.String("participant_id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (s *participantService) save(ctx context.Context, p *model.Participant) (*dto.ParticipantResponse, error) {
	if err := s.repo.Participant.Update(ctx, p); err != nil {
		if verr, ok := mapUniqueViolation(err, participantUniqueFields); ok {
			return nil, verr
		}
		s.logger.Error("更新参与者失败", zap.String("participant_id", p.ParticipantID), zap.Error(err))
		return nil, err
	}
	return toParticipantResponse(p), nil
}

// validate 校验字段格式与唯一性（名字在规范化之后比较）
func (s *participantService) validate(ctx context.Context, p *model.Participant) error {
	var c apperrors.Collector

	checkLength(&c, "nickname", p.Nickname, 3, 120, nil)
	if !c.Has("nickname") && !accountNamePattern.MatchString(p.Nickname) {
		c.Add(ErrInvalidFormat, "nickname", "may contain only letters, digits and @/./+/-/_")
	}
	for _, f := range []struct{ field, value string }{{"firstname", p.Firstname}, {"lastname", p.Lastname}} {
		checkLength(&c, f.field, f.value, 2, 120, nil)
		if !c.Has(f.field) && !personNamePattern.MatchString(f.value) {
			c.Add(ErrInvalidFormat, f.field, "may contain only letters, spaces, hyphens, dots and apostrophes")
		}
	}
	if !p.Position.Valid() {
		c.Add(ErrInvalidFormat, "position", "must be one of developer, designer, manager, analyst, researcher, student, professor, other")
	}
	if p.Email != nil && !isEmail(*p.Email) {
		c.Add(ErrInvalidFormat, "email", "enter a valid email address")
	}
	if runeLen(p.Bio) > 500 {
		c.Add(ErrTooLong, "bio", "must be at most 500 characters")
	}

	if !c.Has("nickname") {
		taken, err := s.repo.Participant.NicknameExists(ctx, p.Nickname, p.ParticipantID)
		if err != nil {
			s.logger.Error("检查昵称失败", zap.Error(err))
			return err
		}
		if taken {
			c.Add(ErrNicknameExists, "nickname", "a participant with this nickname already exists")
		}
	}
	if p.Email != nil && !c.Has("email") {
		taken, err := s.repo.Participant.EmailExists(ctx, *p.Email, p.ParticipantID)
		if err != nil {
			s.logger.Error("检查邮箱失败", zap.Error(err))
			return err
		}
		if taken {
			c.Add(ErrEmailExists, "email", "a participant with this email already exists")
		}
	}
	if p.IsActive && !c.Has("firstname") && !c.Has("lastname") {
		taken, err := s.repo.Participant.ActiveNameExists(ctx, p.Firstname, p.Lastname, p.ParticipantID)
		if err != nil {
			s.logger.Error("检查同名参与者失败", zap.Error(err))
			return err
		}
		if taken {
			c.Add(ErrActiveNameExists, "name", "an active participant with this name already exists")
		}
	}
	return c.Err()
}

func normalizeParticipant(p *model.Participant) {
	p.Nickname = strings.TrimSpace(p.Nickname)
	p.Firstname = titleCase(strings.TrimSpace(p.Firstname))
	p.Lastname = titleCase(strings.TrimSpace(p.Lastname))
	p.Bio = strings.TrimSpace(p.Bio)
	if p.Position == "" {
		p.Position = model.PositionOther
	}
}

// setEmail 空邮箱存为 NULL，避免占用唯一约束
func setEmail(p *model.Participant, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		p.Email = nil
		return
	}
	p.Email = &email
}

func boolPtr(b bool) *bool { return &b }

func toParticipantResponse(p *model.Participant) *dto.ParticipantResponse {
	return &dto.ParticipantResponse{
		ID:          p.ParticipantID,
		Nickname:    p.Nickname,
		Firstname:   p.Firstname,
		Lastname:    p.Lastname,
		FullName:    p.FullName(),
		DisplayName: p.DisplayName(),
		Position:    string(p.Position),
		Email:       p.Email,
		IsActive:    p.IsActive,
		Bio:         p.Bio,
		DateJoined:  dto.FormatTime(p.DateJoined),
		LastUpdated: dto.FormatTime(p.LastUpdated),
	}
}

func toParticipantResponses(ps []model.Participant) []dto.ParticipantResponse {
	list := make([]dto.ParticipantResponse, 0, len(ps))
	for i := range ps {
		list = append(list, *toParticipantResponse(&ps[i]))
	}
	return list
}

func toParticipantBrief(p *model.Participant) *dto.ParticipantBrief {
	if p == nil {
		return nil
	}
	return &dto.ParticipantBrief{
		ID:          p.ParticipantID,
		Nickname:    p.Nickname,
		DisplayName: p.DisplayName(),
	}
}

func toParticipantBriefs(ps []model.Participant) []dto.ParticipantBrief {
	list := make([]dto.ParticipantBrief, 0, len(ps))
	for i := range ps {
		list = append(list, *toParticipantBrief(&ps[i]))
	}
	return list
}
