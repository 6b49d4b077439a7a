package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"cognify/backend/internal/api/middleware"
	apperrors "cognify/backend/pkg/errors"
	"cognify/backend/pkg/response"
)

// bindJSON 绑定请求体；失败时已写入响应，返回 false
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		writeBindError(c, err)
		return false
	}
	return true
}

// bindQuery 绑定查询参数；失败时已写入响应，返回 false
func bindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		writeBindError(c, err)
		return false
	}
	return true
}

func writeBindError(c *gin.Context, err error) {
	if middleware.IsBodyTooLarge(err) {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "request body too large")
		return
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		var col apperrors.Collector
		for _, fe := range verrs {
			field := jsonFieldName(fe)
			if col.Has(field) {
				continue
			}
			col.Add(nil, field, bindingMessage(fe))
		}
		verr, _ := apperrors.AsValidation(col.Err())
		response.Validation(c, verr)
		return
	}

	response.BadRequest(c, response.CodeValidation, "invalid request body")
}

// jsonFieldName gin 的校验错误只带结构体字段名，这里转为 snake_case
func jsonFieldName(fe validator.FieldError) string {
	name := fe.Field()
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed on %q", fe.Tag())
	}
}

// writeServiceError 按错误类别统一映射 HTTP 响应
func writeServiceError(c *gin.Context, logger *zap.Logger, err error) {
	if verr, ok := apperrors.AsValidation(err); ok {
		response.Validation(c, verr)
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		response.NotFound(c, response.CodeNotFound, notFoundMessage(err))
	case errors.Is(err, apperrors.ErrAuth):
		response.Unauthorized(c, response.CodeBadCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrRateLimited):
		response.TooManyRequests(c, apperrors.ErrRateLimited.Error())
	default:
		logger.Error("请求处理异常",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		response.InternalError(c)
	}
}

// notFoundMessage 去掉 "xxx: not found" 中的类别后缀
func notFoundMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "+apperrors.ErrNotFound.Error()); i > 0 {
		return msg[:i]
	}
	return apperrors.ErrNotFound.Error()
}
