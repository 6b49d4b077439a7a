package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cognify/backend/internal/model"
)

// AnswerRepository 答案数据访问接口
type AnswerRepository interface {
	Create(ctx context.Context, a *model.Answer) error
	GetByID(ctx context.Context, id string) (*model.Answer, error)
	Update(ctx context.Context, a *model.Answer) error
	Delete(ctx context.Context, id string) error
	// ClearCorrect 取消问题下除 exceptID 外所有答案的正确标记
	ClearCorrect(ctx context.Context, questionID, exceptID string) error
}

// answerRepo AnswerRepository 的 GORM 实现
type answerRepo struct {
	db *gorm.DB
}

// NewAnswerRepo 创建 AnswerRepository 实例
func NewAnswerRepo(db *gorm.DB) AnswerRepository {
	return &answerRepo{db: db}
}

func (r *answerRepo) Create(ctx context.Context, a *model.Answer) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error)
}

func (r *answerRepo) GetByID(ctx context.Context, id string) (*model.Answer, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var a model.Answer
	err := r.db.WithContext(ctx).
		Preload("Participant").
		Where("answer_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *answerRepo) Update(ctx context.Context, a *model.Answer) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(a).Error)
}

func (r *answerRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("answer_id = ?", id).
		Delete(&model.Answer{}).Error
}

func (r *answerRepo) ClearCorrect(ctx context.Context, questionID, exceptID string) error {
	q := r.db.WithContext(ctx).
		Model(&model.Answer{}).
		Where("question_id = ? AND is_correct", questionID)
	if exceptID != "" {
		q = q.Where("answer_id <> ?", exceptID)
	}
	return q.Update("is_correct", false).Error
}
