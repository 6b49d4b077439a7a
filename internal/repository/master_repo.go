package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"cognify/backend/internal/model"
)

// MasterRepository 操作员数据访问接口
type MasterRepository interface {
	Create(ctx context.Context, m *model.Master) error
	GetByID(ctx context.Context, id string) (*model.Master, error)
	GetByUsername(ctx context.Context, username string) (*model.Master, error)
	Update(ctx context.Context, m *model.Master) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// masterRepo MasterRepository 的 GORM 实现
type masterRepo struct {
	db *gorm.DB
}

// NewMasterRepo 创建 MasterRepository 实例
func NewMasterRepo(db *gorm.DB) MasterRepository {
	return &masterRepo{db: db}
}

func (r *masterRepo) Create(ctx context.Context, m *model.Master) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r *masterRepo) GetByID(ctx context.Context, id string) (*model.Master, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var m model.Master
	err := r.db.WithContext(ctx).
		Where("master_id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *masterRepo) GetByUsername(ctx context.Context, username string) (*model.Master, error) {
	var m model.Master
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *masterRepo) Update(ctx context.Context, m *model.Master) error {
	return translate(r.db.WithContext(ctx).Save(m).Error)
}

func (r *masterRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Master{}).
		Where("master_id = ?", id).
		Update("last_login", at).Error
}
