package repository

import (
	"context"

	"gorm.io/gorm"

	"cognify/backend/internal/model"
)

// ParticipantFilter 参与者列表筛选条件
type ParticipantFilter struct {
	Position string
	Active   *bool
	Search   string
	Page
}

// ParticipantRepository 参与者数据访问接口
type ParticipantRepository interface {
	Create(ctx context.Context, p *model.Participant) error
	GetByID(ctx context.Context, id string) (*model.Participant, error)
	GetByIDs(ctx context.Context, ids []string) ([]model.Participant, error)
	NicknameExists(ctx context.Context, nickname, excludeID string) (bool, error)
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)
	// ActiveNameExists 是否存在同名（名+姓）的启用参与者
	ActiveNameExists(ctx context.Context, firstname, lastname, excludeID string) (bool, error)
	List(ctx context.Context, f ParticipantFilter) ([]model.Participant, int64, error)
	// ListSelectable 启用参与者列表，排除 excludeID（主题表单候选）
	ListSelectable(ctx context.Context, excludeID string) ([]model.Participant, error)
	Update(ctx context.Context, p *model.Participant) error
	// Delete 删除参与者：其答案作者置空，以其为对象的主题级联删除
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// participantRepo ParticipantRepository 的 GORM 实现
type participantRepo struct {
	db *gorm.DB
}

// NewParticipantRepo 创建 ParticipantRepository 实例
func NewParticipantRepo(db *gorm.DB) ParticipantRepository {
	return &participantRepo{db: db}
}

func (r *participantRepo) Create(ctx context.Context, p *model.Participant) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *participantRepo) GetByID(ctx context.Context, id string) (*model.Participant, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var p model.Participant
	err := r.db.WithContext(ctx).
		Where("participant_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *participantRepo) GetByIDs(ctx context.Context, ids []string) ([]model.Participant, error) {
	var ps []model.Participant
	ids = validIDs(ids)
	if len(ids) == 0 {
		return ps, nil
	}
	err := r.db.WithContext(ctx).
		Where("participant_id IN ?", ids).
		Order("lastname ASC, firstname ASC").
		Find(&ps).Error
	return ps, err
}

func (r *participantRepo) NicknameExists(ctx context.Context, nickname, excludeID string) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&model.Participant{}).Where("nickname = ?", nickname), "participant_id", excludeID)
}

func (r *participantRepo) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&model.Participant{}).Where("email = ?", email), "participant_id", excludeID)
}

func (r *participantRepo) ActiveNameExists(ctx context.Context, firstname, lastname, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Participant{}).
		Where("firstname = ? AND lastname = ? AND is_active", firstname, lastname)
	return exists(q, "participant_id", excludeID)
}

func (r *participantRepo) List(ctx context.Context, f ParticipantFilter) ([]model.Participant, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Participant{})
	if f.Position != "" {
		q = q.Where("position = ?", f.Position)
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where("nickname ILIKE ? OR firstname ILIKE ? OR lastname ILIKE ? OR email ILIKE ?", p, p, p, p)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ps []model.Participant
	err := f.Page.apply(q.Order("lastname ASC, firstname ASC")).Find(&ps).Error
	return ps, total, err
}

func (r *participantRepo) ListSelectable(ctx context.Context, excludeID string) ([]model.Participant, error) {
	q := r.db.WithContext(ctx).Where("is_active")
	if validID(excludeID) {
		q = q.Where("participant_id <> ?", excludeID)
	}
	var ps []model.Participant
	err := q.Order("lastname ASC, firstname ASC").Find(&ps).Error
	return ps, err
}

func (r *participantRepo) Update(ctx context.Context, p *model.Participant) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

func (r *participantRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Answer{}).
			Where("participant_id = ?", id).
			Update("participant_id", nil).Error; err != nil {
			return err
		}

		var topicIDs []string
		if err := tx.Model(&model.Topic{}).Where("about_id = ?", id).Pluck("topic_id", &topicIDs).Error; err != nil {
			return err
		}
		if err := deleteTopics(tx, topicIDs); err != nil {
			return err
		}

		if err := tx.Where("participant_id = ?", id).Delete(&model.TopicStudyingParticipant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("participant_id = ?", id).Delete(&model.TopicBoss{}).Error; err != nil {
			return err
		}
		return tx.Where("participant_id = ?", id).Delete(&model.Participant{}).Error
	})
}

func (r *participantRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Participant{}).Count(&n).Error
	return n, err
}
