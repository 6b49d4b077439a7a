package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Master      MasterRepository
	Orbit       OrbitRepository
	Participant ParticipantRepository
	Topic       TopicRepository
	Question    QuestionRepository
	Answer      AnswerRepository
	Quote       QuoteRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:          db,
		Master:      NewMasterRepo(db),
		Orbit:       NewOrbitRepo(db),
		Participant: NewParticipantRepo(db),
		Topic:       NewTopicRepo(db),
		Question:    NewQuestionRepo(db),
		Answer:      NewAnswerRepo(db),
		Quote:       NewQuoteRepo(db),
	}
}

// BeginTx 开启事务；未绑定数据库时（单元测试中的 mock 聚合）返回 nil
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务连接的 Repository 聚合
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Transaction 在单个事务中执行 fn，fn 返回错误或 panic 时回滚
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) (err error) {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(p)
		}
	}()

	if err := fn(r.WithTx(tx)); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if tx != nil {
		return tx.Commit().Error
	}
	return nil
}

// ── 列表查询 ──

// Page 分页参数，Limit<=0 表示不分页
type Page struct {
	Offset int
	Limit  int
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		q = q.Offset(p.Offset).Limit(p.Limit)
	}
	return q
}

// likePattern 构造大小写不敏感的子串匹配模式，转义 LIKE 通配符
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}
