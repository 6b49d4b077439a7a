package repository

import (
	"context"

	"gorm.io/gorm"

	"cognify/backend/internal/model"
)

// QuoteRepository 语录数据访问接口
type QuoteRepository interface {
	Create(ctx context.Context, q *model.Quote) error
	ListActive(ctx context.Context, limit int) ([]model.Quote, error)
}

type quoteRepo struct {
	db *gorm.DB
}

// NewQuoteRepo 创建 QuoteRepository 实例
func NewQuoteRepo(db *gorm.DB) QuoteRepository {
	return &quoteRepo{db: db}
}

func (r *quoteRepo) Create(ctx context.Context, q *model.Quote) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *quoteRepo) ListActive(ctx context.Context, limit int) ([]model.Quote, error) {
	var qs []model.Quote
	q := r.db.WithContext(ctx).
		Where("is_active").
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&qs).Error
	return qs, err
}
