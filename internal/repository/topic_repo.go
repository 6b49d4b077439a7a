package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cognify/backend/internal/model"
)

// TopicFilter 主题列表筛选条件
type TopicFilter struct {
	OrbitID string
	Active  *bool
	Search  string
	Page
}

// TopicRepository 主题数据访问接口
type TopicRepository interface {
	Create(ctx context.Context, t *model.Topic) error
	GetByID(ctx context.Context, id string) (*model.Topic, error)
	GetBySlug(ctx context.Context, slug string) (*model.Topic, error)
	TitleExistsForAbout(ctx context.Context, aboutID, title, excludeID string) (bool, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	List(ctx context.Context, f TopicFilter) ([]model.Topic, int64, error)
	Update(ctx context.Context, t *model.Topic) error
	// ReplaceRoster 以给定集合整体替换学习者与负责人
	ReplaceRoster(ctx context.Context, topicID string, studyingIDs, bossIDs []string) error
	// Delete 删除主题及其问题、答案和关联行
	Delete(ctx context.Context, id string) error
	CountStudying(ctx context.Context, topicIDs []string) (map[string]int64, error)
	CountBosses(ctx context.Context, topicIDs []string) (map[string]int64, error)
	Count(ctx context.Context) (int64, error)
}

// topicRepo TopicRepository 的 GORM 实现
type topicRepo struct {
	db *gorm.DB
}

// NewTopicRepo 创建 TopicRepository 实例
func NewTopicRepo(db *gorm.DB) TopicRepository {
	return &topicRepo{db: db}
}

func (r *topicRepo) withRelations(q *gorm.DB) *gorm.DB {
	byName := func(db *gorm.DB) *gorm.DB { return db.Order("lastname ASC, firstname ASC") }
	return q.
		Preload("About").
		Preload("Orbit").
		Preload("StudyingParticipants", byName).
		Preload("Bosses", byName)
}

func (r *topicRepo) Create(ctx context.Context, t *model.Topic) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(t).Error)
}

func (r *topicRepo) GetByID(ctx context.Context, id string) (*model.Topic, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var t model.Topic
	err := r.withRelations(r.db.WithContext(ctx)).
		Where("topic_id = ?", id).
		First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *topicRepo) GetBySlug(ctx context.Context, slug string) (*model.Topic, error) {
	var t model.Topic
	err := r.withRelations(r.db.WithContext(ctx)).
		Where("slug = ?", slug).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *topicRepo) TitleExistsForAbout(ctx context.Context, aboutID, title, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Topic{}).Where("about_id = ? AND title = ?", aboutID, title)
	return exists(q, "topic_id", excludeID)
}

func (r *topicRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&model.Topic{}).Where("slug = ?", slug), "topic_id", excludeID)
}

func (r *topicRepo) List(ctx context.Context, f TopicFilter) ([]model.Topic, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Topic{})
	if f.OrbitID != "" {
		q = q.Where("topics.orbit_id = ?", f.OrbitID)
	}
	if f.Active != nil {
		q = q.Where("topics.is_active = ?", *f.Active)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Joins("JOIN participants ON participants.participant_id = topics.about_id").
			Where("topics.title ILIKE ? OR topics.description ILIKE ? OR participants.nickname ILIKE ? OR participants.firstname ILIKE ? OR participants.lastname ILIKE ?",
				p, p, p, p, p)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var topics []model.Topic
	err := f.Page.apply(q.Preload("About").Preload("Orbit").Order("topics.created_at DESC")).
		Find(&topics).Error
	return topics, total, err
}

func (r *topicRepo) Update(ctx context.Context, t *model.Topic) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(t).Error)
}

func (r *topicRepo) ReplaceRoster(ctx context.Context, topicID string, studyingIDs, bossIDs []string) error {
	db := r.db.WithContext(ctx)

	if err := db.Where("topic_id = ?", topicID).Delete(&model.TopicStudyingParticipant{}).Error; err != nil {
		return err
	}
	if err := db.Where("topic_id = ?", topicID).Delete(&model.TopicBoss{}).Error; err != nil {
		return err
	}

	if len(studyingIDs) > 0 {
		rows := make([]model.TopicStudyingParticipant, 0, len(studyingIDs))
		for _, id := range studyingIDs {
			rows = append(rows, model.TopicStudyingParticipant{TopicID: topicID, ParticipantID: id})
		}
		if err := db.Create(&rows).Error; err != nil {
			return err
		}
	}
	if len(bossIDs) > 0 {
		rows := make([]model.TopicBoss, 0, len(bossIDs))
		for _, id := range bossIDs {
			rows = append(rows, model.TopicBoss{TopicID: topicID, ParticipantID: id})
		}
		if err := db.Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *topicRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteTopics(tx, []string{id})
	})
}

func (r *topicRepo) CountStudying(ctx context.Context, topicIDs []string) (map[string]int64, error) {
	return countGrouped(r.db.WithContext(ctx).Model(&model.TopicStudyingParticipant{}), "topic_id", topicIDs)
}

func (r *topicRepo) CountBosses(ctx context.Context, topicIDs []string) (map[string]int64, error) {
	return countGrouped(r.db.WithContext(ctx).Model(&model.TopicBoss{}), "topic_id", topicIDs)
}

func (r *topicRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Topic{}).Count(&n).Error
	return n, err
}
