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

// ── 问题与答案业务错误 ──

var (
	ErrQuestionNotFound = fmt.Errorf("问题不存在: %w", apperrors.ErrNotFound)
	ErrAnswerNotFound   = fmt.Errorf("答案不存在: %w", apperrors.ErrNotFound)
	ErrTextTooShort     = errors.New("文本过短")
)

const (
	questionTextMin = 10
	answerTextMin   = 5
)

// QuestionService 问题与答案业务接口
// 问题与答案均挂在主题 slug 下寻址，父级不匹配视为不存在
type QuestionService interface {
	AddQuestion(ctx context.Context, topicSlug string, req *dto.CreateQuestionRequest) (*dto.QuestionResponse, error)
	GetQuestion(ctx context.Context, topicSlug, questionID string) (*dto.QuestionResponse, error)
	UpdateQuestion(ctx context.Context, topicSlug, questionID string, req *dto.UpdateQuestionRequest) (*dto.QuestionResponse, error)
	DeleteQuestion(ctx context.Context, topicSlug, questionID string) error

	// AddAnswer 新增答案；标记为正确时同一事务内清除其余正确标记
	AddAnswer(ctx context.Context, topicSlug, questionID string, req *dto.CreateAnswerRequest) (*dto.AnswerResponse, error)
	UpdateAnswer(ctx context.Context, topicSlug, questionID, answerID string, req *dto.UpdateAnswerRequest) (*dto.AnswerResponse, error)
	MarkCorrect(ctx context.Context, topicSlug, questionID, answerID string) (*dto.AnswerResponse, error)
	DeleteAnswer(ctx context.Context, topicSlug, questionID, answerID string) error
}

type questionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewQuestionService 创建 QuestionService 实例
func NewQuestionService(repo *repository.Repository, logger *zap.Logger) QuestionService {
	return &questionService{repo: repo, logger: logger}
}

// ────────────────────── 问题 ──────────────────────

func (s *questionService) AddQuestion(ctx context.Context, topicSlug string, req *dto.CreateQuestionRequest) (*dto.QuestionResponse, error) {
	topic, err := s.getTopic(ctx, topicSlug)
	if err != nil {
		return nil, err
	}

	q := &model.Question{
		TopicID:      topic.TopicID,
		QuestionText: strings.TrimSpace(req.QuestionText),
		Order:        req.Order,
		IsActive:     true,
	}
	if req.IsActive != nil {
		q.IsActive = *req.IsActive
	}
	if err := validateQuestion(q); err != nil {
		return nil, err
	}

	if err := s.repo.Question.Create(ctx, q); err != nil {
		s.logger.Error("创建问题失败", zap.String("topic_id", topic.TopicID), zap.Error(err))
		return nil, err
	}
	return s.reloadQuestion(ctx, q.QuestionID)
}

func (s *questionService) GetQuestion(ctx context.Context, topicSlug, questionID string) (*dto.QuestionResponse, error) {
	q, err := s.getQuestion(ctx, topicSlug, questionID)
	if err != nil {
		return nil, err
	}
	return toQuestionResponse(q), nil
}

func (s *questionService) UpdateQuestion(ctx context.Context, topicSlug, questionID string, req *dto.UpdateQuestionRequest) (*dto.QuestionResponse, error) {
	q, err := s.getQuestion(ctx, topicSlug, questionID)
	if err != nil {
		return nil, err
	}

	if req.QuestionText != nil {
		q.QuestionText = strings.TrimSpace(*req.QuestionText)
	}
	if req.Order != nil {
		q.Order = *req.Order
	}
	if req.IsActive != nil {
		q.IsActive = *req.IsActive
	}
	if err := validateQuestion(q); err != nil {
		return nil, err
	}

	q.Answers = nil
	if err := s.repo.Question.Update(ctx, q); err != nil {
		s.logger.Error("更新问题失败", zap.String("question_id", q.QuestionID), zap.Error(err))
		return nil, err
	}
	return s.reloadQuestion(ctx, q.QuestionID)
}

func (s *questionService) DeleteQuestion(ctx context.Context, topicSlug, questionID string) error {
	q, err := s.getQuestion(ctx, topicSlug, questionID)
	if err != nil {
		return err
	}
	if err := s.repo.Question.Delete(ctx, q.QuestionID); err != nil {
		s.logger.Error("删除问题失败", zap.String("question_id", q.QuestionID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── 答案 ──────────────────────

func (s *questionService) AddAnswer(ctx context.Context, topicSlug, questionID string, req *dto.CreateAnswerRequest) (*dto.AnswerResponse, error) {
	q, err := s.getQuestion(ctx, topicSlug, questionID)
	if err != nil {
		return nil, err
	}

	a := &model.Answer{
		QuestionID: q.QuestionID,
		AnswerText: strings.TrimSpace(req.AnswerText),
		IsCorrect:  req.IsCorrect,
		Order:      req.Order,
	}
	if req.ParticipantID != nil && strings.TrimSpace(*req.ParticipantID) != "" {
		id := strings.TrimSpace(*req.ParticipantID)
		a.ParticipantID = &id
	}
	if err := s.validateAnswer(ctx, a); err != nil {
		return nil, err
	}

	if err := s.writeAnswer(ctx, a, true); err != nil {
		return nil, err
	}
	return s.reloadAnswer(ctx, a.AnswerID)
}

func (s *questionService) UpdateAnswer(ctx context.Context, topicSlug, questionID, answerID string, req *dto.UpdateAnswerRequest) (*dto.AnswerResponse, error) {
	a, err := s.getAnswer(ctx, topicSlug, questionID, answerID)
	if err != nil {
		return nil, err
	}

	if req.AnswerText != nil {
		a.AnswerText = strings.TrimSpace(*req.AnswerText)
	}
	if req.ParticipantID != nil {
		if id := strings.TrimSpace(*req.ParticipantID); id != "" {
			a.ParticipantID = &id
		} else {
			a.ParticipantID = nil
		}
	}
	if req.IsCorrect != nil {
		a.IsCorrect = *req.IsCorrect
	}
	if req.Order != nil {
		a.Order = *req.Order
	}
	a.Participant = nil
	if err := s.validateAnswer(ctx, a); err != nil {
		return nil, err
	}

	if err := s.writeAnswer(ctx, a, false); err != nil {
		return nil, err
	}
	return s.reloadAnswer(ctx, a.AnswerID)
}

func (s *questionService) MarkCorrect(ctx context.Context, topicSlug, questionID, answerID string) (*dto.AnswerResponse, error) {
	a, err := s.getAnswer(ctx, topicSlug, questionID, answerID)
	if err != nil {
		return nil, err
	}
	a.IsCorrect = true
	a.Participant = nil
	if err := s.writeAnswer(ctx, a, false); err != nil {
		return nil, err
	}
	return s.reloadAnswer(ctx, a.AnswerID)
}

func (s *questionService) DeleteAnswer(ctx context.Context, topicSlug, questionID, answerID string) error {
	a, err := s.getAnswer(ctx, topicSlug, questionID, answerID)
	if err != nil {
		return err
	}
	if err := s.repo.Answer.Delete(ctx, a.AnswerID); err != nil {
		s.logger.Error("删除答案失败", zap.String("answer_id", a.AnswerID), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部方法 ──

// writeAnswer 锁定问题行后写入答案，保证同一问题至多一个正确答案
func (s *questionService) writeAnswer(ctx context.Context, a *model.Answer, creating bool) error {
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if _, err := txRepo.Question.GetForUpdate(ctx, a.QuestionID); err != nil {
			return err
		}
		if a.IsCorrect {
			if err := txRepo.Answer.ClearCorrect(ctx, a.QuestionID, a.AnswerID); err != nil {
				return err
			}
		}
		if creating {
			return txRepo.Answer.Create(ctx, a)
		}
		return txRepo.Answer.Update(ctx, a)
	})
	if err != nil {
		if isNotFound(err) {
			return ErrQuestionNotFound
		}
		s.logger.Error("写入答案失败", zap.String("question_id", a.QuestionID), zap.Error(err))
		return err
	}
	return nil
}

func (s *questionService) getTopic(ctx context.Context, slug string) (*model.Topic, error) {
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

func (s *questionService) getQuestion(ctx context.Context, topicSlug, questionID string) (*model.Question, error) {
	topic, err := s.getTopic(ctx, topicSlug)
	if err != nil {
		return nil, err
	}
	q, err := s.repo.Question.GetByID(ctx, questionID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrQuestionNotFound
		}
		s.logger.Error("查询问题失败", zap.String("question_id", questionID), zap.Error(err))
		return nil, err
	}
	if q.TopicID != topic.TopicID {
		return nil, ErrQuestionNotFound
	}
	return q, nil
}

func (s *questionService) getAnswer(ctx context.Context, topicSlug, questionID, answerID string) (*model.Answer, error) {
	q, err := s.getQuestion(ctx, topicSlug, questionID)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.Answer.GetByID(ctx, answerID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAnswerNotFound
		}
		s.logger.Error("查询答案失败", zap.String("answer_id", answerID), zap.Error(err))
		return nil, err
	}
	if a.QuestionID != q.QuestionID {
		return nil, ErrAnswerNotFound
	}
	return a, nil
}

func (s *questionService) reloadQuestion(ctx context.Context, id string) (*dto.QuestionResponse, error) {
	q, err := s.repo.Question.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("查询问题失败", zap.String("question_id", id), zap.Error(err))
		return nil, err
	}
	return toQuestionResponse(q), nil
}

func (s *questionService) reloadAnswer(ctx context.Context, id string) (*dto.AnswerResponse, error) {
	a, err := s.repo.Answer.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("查询答案失败", zap.String("answer_id", id), zap.Error(err))
		return nil, err
	}
	return toAnswerResponse(a), nil
}

func validateQuestion(q *model.Question) error {
	var c apperrors.Collector
	checkLength(&c, "question_text", q.QuestionText, questionTextMin, 0, ErrTextTooShort)
	if q.Order < 0 {
		c.Add(ErrInvalidFormat, "order", "must be zero or greater")
	}
	return c.Err()
}

func (s *questionService) validateAnswer(ctx context.Context, a *model.Answer) error {
	var c apperrors.Collector
	checkLength(&c, "answer_text", a.AnswerText, answerTextMin, 0, ErrTextTooShort)
	if a.Order < 0 {
		c.Add(ErrInvalidFormat, "order", "must be zero or greater")
	}
	if err := c.Err(); err != nil {
		return err
	}

	if a.ParticipantID != nil {
		if _, err := s.repo.Participant.GetByID(ctx, *a.ParticipantID); err != nil {
			if isNotFound(err) {
				return ErrParticipantNotFound
			}
			s.logger.Error("查询参与者失败", zap.String("participant_id", *a.ParticipantID), zap.Error(err))
			return err
		}
	}
	return nil
}

func toQuestionResponse(q *model.Question) *dto.QuestionResponse {
	answers := make([]dto.AnswerResponse, 0, len(q.Answers))
	for i := range q.Answers {
		answers = append(answers, *toAnswerResponse(&q.Answers[i]))
	}
	return &dto.QuestionResponse{
		ID:           q.QuestionID,
		TopicID:      q.TopicID,
		QuestionText: q.QuestionText,
		ShortText:    model.ShortText(q.QuestionText, 100),
		Order:        q.Order,
		IsActive:     q.IsActive,
		AnswerCount:  len(q.Answers),
		Answers:      answers,
		CreatedAt:    dto.FormatTime(q.CreatedAt),
		UpdatedAt:    dto.FormatTime(q.UpdatedAt),
	}
}

func toQuestionResponses(qs []model.Question) []dto.QuestionResponse {
	list := make([]dto.QuestionResponse, 0, len(qs))
	for i := range qs {
		list = append(list, *toQuestionResponse(&qs[i]))
	}
	return list
}

func toAnswerResponse(a *model.Answer) *dto.AnswerResponse {
	return &dto.AnswerResponse{
		ID:               a.AnswerID,
		QuestionID:       a.QuestionID,
		AnswerText:       a.AnswerText,
		ParticipantID:    a.ParticipantID,
		AnsweredBy:       a.AnsweredBy(),
		IsAdminGenerated: a.IsAdminGenerated(),
		IsCorrect:        a.IsCorrect,
		Order:            a.Order,
		CreatedAt:        dto.FormatTime(a.CreatedAt),
		UpdatedAt:        dto.FormatTime(a.UpdatedAt),
	}
}
