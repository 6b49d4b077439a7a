package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"cognify/backend/internal/repository"
	apperrors "cognify/backend/pkg/errors"
)

// ── 通用字段错误类别 ──

var (
	ErrInvalidFormat = errors.New("格式无效")
	ErrTooShort      = errors.New("长度不足")
	ErrTooLong       = errors.New("长度超限")
)

var (
	accountNamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	orbitNamePattern   = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.]+$`)
	colorPattern       = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)
	personNamePattern  = regexp.MustCompile(`^[a-zA-Z\s\-.']+$`)
)

var validate = validator.New()

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// isEmail 使用 validator 的 email 规则校验邮箱
func isEmail(s string) bool {
	return validate.Var(s, "required,email,max=254") == nil
}

// titleCase 每段连续字母首字母大写，其余小写
// 撇号、点号、连字符均视为分段：o'brien → O'Brien，d.angelo → D.Angelo
func titleCase(s string) string {
	upper, lower := cases.Upper(language.Und), cases.Lower(language.Und)

	var b strings.Builder
	b.Grow(len(s))
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		word := s[start:end]
		_, size := utf8.DecodeRuneInString(word)
		b.WriteString(upper.String(word[:size]))
		b.WriteString(lower.String(word[size:]))
		start = -1
	}
	for i, r := range s {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
		b.WriteRune(r)
	}
	flush(len(s))
	return b.String()
}

// checkLength 校验去空白后的长度区间，max<=0 表示不限上限
func checkLength(c *apperrors.Collector, field, value string, min, max int, tooShort error) {
	n := runeLen(value)
	switch {
	case n < min:
		if tooShort == nil {
			tooShort = ErrTooShort
		}
		c.Add(tooShort, field, lengthMessage(min, max))
	case max > 0 && n > max:
		c.Add(ErrTooLong, field, lengthMessage(min, max))
	}
}

func lengthMessage(min, max int) string {
	if max <= 0 {
		return fmt.Sprintf("must be at least %d characters", min)
	}
	return fmt.Sprintf("must be between %d and %d characters", min, max)
}

// uniqueField 唯一约束名到字段错误的映射
type uniqueField struct {
	field   string
	kind    error
	message string
}

// mapUniqueViolation 将 repository 的唯一约束冲突转换为字段级校验错误
func mapUniqueViolation(err error, fields map[string]uniqueField) (*apperrors.ValidationError, bool) {
	uv, ok := repository.AsUniqueViolation(err)
	if !ok {
		return nil, false
	}
	f, ok := fields[uv.Constraint]
	if !ok {
		return nil, false
	}
	return apperrors.Invalid(f.kind, f.field, f.message), true
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
