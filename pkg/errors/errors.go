package errors

import (
	"errors"
	"fmt"
	"strings"
)

// 跨层共享的错误类别。业务层的具体错误通过 %w 或 FieldError.Kind 归入这些类别，
// Handler 层据此选择 HTTP 状态码。
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrAuth        = errors.New("authentication failed")
	ErrRateLimited = errors.New("too many attempts, please try again later")
)

// FieldError 单个字段的校验错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Kind    error  `json:"-"` // 具体业务错误，如 service.ErrNicknameExists
}

// ValidationError 字段级校验错误集合
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field)
	}
	return fmt.Sprintf("validation: %d errors (%s)", len(e.Errors), strings.Join(parts, ", "))
}

// Unwrap 暴露 ErrValidation 以及每个字段的 Kind，使 errors.Is 可以命中任一具体错误
func (e *ValidationError) Unwrap() []error {
	errs := []error{ErrValidation}
	for _, fe := range e.Errors {
		if fe.Kind != nil {
			errs = append(errs, fe.Kind)
		}
	}
	return errs
}

// Has 判断指定字段是否存在错误
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Invalid 创建单字段校验错误
func Invalid(kind error, field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message, Kind: kind}}}
}

// Collector 按字段累积校验错误，全部校验完成后一次性返回
type Collector struct {
	errs []FieldError
}

// Add 记录一个字段错误
func (c *Collector) Add(kind error, field, message string) {
	c.errs = append(c.errs, FieldError{Field: field, Message: message, Kind: kind})
}

// Has 判断字段是否已有错误（同一字段只报告第一个问题）
func (c *Collector) Has(field string) bool {
	for _, fe := range c.errs {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Err 无错误时返回 nil
func (c *Collector) Err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: c.errs}
}

// AsValidation 提取 ValidationError
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
