package repository

import (
	"context"

	"gorm.io/gorm"

	"cognify/backend/internal/model"
)

// OrbitFilter 分类列表筛选条件
type OrbitFilter struct {
	Status string
	Search string
	Page
}

// OrbitRepository 分类数据访问接口
type OrbitRepository interface {
	Create(ctx context.Context, o *model.Orbit) error
	GetByID(ctx context.Context, id string) (*model.Orbit, error)
	GetBySlug(ctx context.Context, slug string) (*model.Orbit, error)
	NameExists(ctx context.Context, name, excludeID string) (bool, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	List(ctx context.Context, f OrbitFilter) ([]model.Orbit, int64, error)
	Update(ctx context.Context, o *model.Orbit) error
	// Delete 删除分类及其下全部主题（含问题、答案、关联）
	Delete(ctx context.Context, id string) error
	CountTopics(ctx context.Context, orbitIDs []string) (map[string]int64, error)
	Count(ctx context.Context) (int64, error)
}

// orbitRepo OrbitRepository 的 GORM 实现
type orbitRepo struct {
	db *gorm.DB
}

// NewOrbitRepo 创建 OrbitRepository 实例
func NewOrbitRepo(db *gorm.DB) OrbitRepository {
	return &orbitRepo{db: db}
}

func (r *orbitRepo) Create(ctx context.Context, o *model.Orbit) error {
	return translate(r.db.WithContext(ctx).Create(o).Error)
}

func (r *orbitRepo) GetByID(ctx context.Context, id string) (*model.Orbit, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var o model.Orbit
	err := r.db.WithContext(ctx).
		Where("orbit_id = ?", id).
		First(&o).Error
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *orbitRepo) GetBySlug(ctx context.Context, slug string) (*model.Orbit, error) {
	var o model.Orbit
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orbitRepo) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&model.Orbit{}).Where("name = ?", name), "orbit_id", excludeID)
}

func (r *orbitRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&model.Orbit{}).Where("slug = ?", slug), "orbit_id", excludeID)
}

func (r *orbitRepo) List(ctx context.Context, f OrbitFilter) ([]model.Orbit, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Orbit{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where("name ILIKE ? OR description ILIKE ?", p, p)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orbits []model.Orbit
	err := f.Page.apply(q.Order("sort_order ASC, name ASC")).Find(&orbits).Error
	return orbits, total, err
}

func (r *orbitRepo) Update(ctx context.Context, o *model.Orbit) error {
	return translate(r.db.WithContext(ctx).Save(o).Error)
}

func (r *orbitRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var topicIDs []string
		if err := tx.Model(&model.Topic{}).Where("orbit_id = ?", id).Pluck("topic_id", &topicIDs).Error; err != nil {
			return err
		}
		if err := deleteTopics(tx, topicIDs); err != nil {
			return err
		}
		return tx.Where("orbit_id = ?", id).Delete(&model.Orbit{}).Error
	})
}

func (r *orbitRepo) CountTopics(ctx context.Context, orbitIDs []string) (map[string]int64, error) {
	return countGrouped(r.db.WithContext(ctx).Model(&model.Topic{}), "orbit_id", orbitIDs)
}

func (r *orbitRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Orbit{}).Count(&n).Error
	return n, err
}

// ── 共享查询辅助 ──

// exists 判断查询是否命中记录，excludeID 非空时排除该主键
func exists(q *gorm.DB, pkColumn, excludeID string) (bool, error) {
	if excludeID != "" {
		q = q.Where(pkColumn+" <> ?", excludeID)
	}
	var n int64
	if err := q.Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

type groupCount struct {
	Key   string
	Total int64
}

// countGrouped 按 column 分组计数
func countGrouped(q *gorm.DB, column string, keys []string) (map[string]int64, error) {
	out := make(map[string]int64, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	var rows []groupCount
	err := q.Select(column+" AS key, COUNT(*) AS total").
		Where(column+" IN ?", keys).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.Key] = row.Total
	}
	return out, nil
}

// deleteTopics 删除指定主题及其问题、答案和关联行，需在事务中调用
func deleteTopics(tx *gorm.DB, topicIDs []string) error {
	if len(topicIDs) == 0 {
		return nil
	}
	var questionIDs []string
	if err := tx.Model(&model.Question{}).Where("topic_id IN ?", topicIDs).Pluck("question_id", &questionIDs).Error; err != nil {
		return err
	}
	if len(questionIDs) > 0 {
		if err := tx.Where("question_id IN ?", questionIDs).Delete(&model.Answer{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("topic_id IN ?", topicIDs).Delete(&model.Question{}).Error; err != nil {
		return err
	}
	if err := tx.Where("topic_id IN ?", topicIDs).Delete(&model.TopicStudyingParticipant{}).Error; err != nil {
		return err
	}
	if err := tx.Where("topic_id IN ?", topicIDs).Delete(&model.TopicBoss{}).Error; err != nil {
		return err
	}
	return tx.Where("topic_id IN ?", topicIDs).Delete(&model.Topic{}).Error
}
