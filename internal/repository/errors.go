package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// 唯一约束与唯一索引名称（与迁移文件保持一致）
const (
	ConstraintMasterUsername    = "uq_masters_username"
	ConstraintOrbitName         = "uq_orbits_name"
	ConstraintOrbitSlug         = "uq_orbits_slug"
	ConstraintParticipantNick   = "uq_participants_nickname"
	ConstraintParticipantEmail  = "uq_participants_email"
	ConstraintParticipantActive = "uq_participants_active_name"
	ConstraintTopicAboutTitle   = "uq_topics_about_title"
	ConstraintTopicSlug         = "uq_topics_slug"
	ConstraintAnswerCorrect     = "uq_answers_single_correct"
)

const (
	pgUniqueViolation           = "23505"
	pgInvalidTextRepresentation = "22P02"
)

// UniqueViolation 唯一约束冲突
type UniqueViolation struct {
	Constraint string
	Err        error
}

func (e *UniqueViolation) Error() string {
	return fmt.Sprintf("unique violation on %s", e.Constraint)
}

func (e *UniqueViolation) Unwrap() error { return e.Err }

// translate 将 PostgreSQL 唯一约束冲突转换为 *UniqueViolation，
// 非法 UUID 文本（22P02）归为记录不存在，其他错误原样返回
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &UniqueViolation{Constraint: pgErr.ConstraintName, Err: err}
		case pgInvalidTextRepresentation:
			return fmt.Errorf("%w: %v", gorm.ErrRecordNotFound, err)
		}
	}
	return err
}

// validID 主键均为 UUID，格式不合法的 ID 不会命中任何记录
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// validIDs 过滤掉格式不合法的 ID
func validIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			out = append(out, id)
		}
	}
	return out
}

// AsUniqueViolation 提取唯一约束冲突
func AsUniqueViolation(err error) (*UniqueViolation, bool) {
	var uv *UniqueViolation
	if errors.As(err, &uv) {
		return uv, true
	}
	return nil, false
}
