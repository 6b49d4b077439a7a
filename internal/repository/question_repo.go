package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cognify/backend/internal/model"
)

// QuestionRepository 问题数据访问接口
type QuestionRepository interface {
	Create(ctx context.Context, q *model.Question) error
	// GetByID 查询问题及其有序答案
	GetByID(ctx context.Context, id string) (*model.Question, error)
	// GetForUpdate 以 SELECT ... FOR UPDATE 锁定问题行，必须在事务中调用
	GetForUpdate(ctx context.Context, id string) (*model.Question, error)
	ListByTopic(ctx context.Context, topicID string) ([]model.Question, error)
	Update(ctx context.Context, q *model.Question) error
	// Delete 删除问题及其答案
	Delete(ctx context.Context, id string) error
	CountByTopics(ctx context.Context, topicIDs []string) (map[string]int64, error)
	Count(ctx context.Context) (int64, error)
}

// questionRepo QuestionRepository 的 GORM 实现
type questionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo 创建 QuestionRepository 实例
func NewQuestionRepo(db *gorm.DB) QuestionRepository {
	return &questionRepo{db: db}
}

func withAnswers(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Preload("Answers.Participant")
}

func (r *questionRepo) Create(ctx context.Context, q *model.Question) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(q).Error
}

func (r *questionRepo) GetByID(ctx context.Context, id string) (*model.Question, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var q model.Question
	err := withAnswers(r.db.WithContext(ctx)).
		Where("question_id = ?", id).
		First(&q).Error
	if err != nil {
		return nil, translate(err)
	}
	return &q, nil
}

func (r *questionRepo) GetForUpdate(ctx context.Context, id string) (*model.Question, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var q model.Question
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("question_id = ?", id).
		First(&q).Error
	if err != nil {
		return nil, translate(err)
	}
	return &q, nil
}

func (r *questionRepo) ListByTopic(ctx context.Context, topicID string) ([]model.Question, error) {
	var qs []model.Question
	err := withAnswers(r.db.WithContext(ctx)).
		Where("topic_id = ?", topicID).
		Order("sort_order ASC, created_at ASC").
		Find(&qs).Error
	return qs, err
}

func (r *questionRepo) Update(ctx context.Context, q *model.Question) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(q).Error
}

func (r *questionRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&model.Answer{}).Error; err != nil {
			return err
		}
		return tx.Where("question_id = ?", id).Delete(&model.Question{}).Error
	})
}

func (r *questionRepo) CountByTopics(ctx context.Context, topicIDs []string) (map[string]int64, error) {
	return countGrouped(r.db.WithContext(ctx).Model(&model.Question{}), "topic_id", topicIDs)
}

func (r *questionRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Question{}).Count(&n).Error
	return n, err
}
