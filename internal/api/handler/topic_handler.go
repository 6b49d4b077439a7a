package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cognify/backend/internal/dto"
	"cognify/backend/internal/service"
	"cognify/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TopicHandler 主题模块 HTTP 处理器
type TopicHandler struct {
	topicSvc  service.TopicService
	exportSvc service.ExportService
	logger    *zap.Logger
}

// NewTopicHandler 创建 TopicHandler
func NewTopicHandler(topicSvc service.TopicService, exportSvc service.ExportService, logger *zap.Logger) *TopicHandler {
	return &TopicHandler{topicSvc: topicSvc, exportSvc: exportSvc, logger: logger}
}

// ListTopics 主题列表（分页，可按分类 slug 过滤）
// GET /api/v1/topics
func (h *TopicHandler) ListTopics(c *gin.Context) {
	var req dto.TopicListRequest
	if !bindQuery(c, &req) {
		return
	}

	page, err := h.topicSvc.List(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OKPage(c, page.List, page.Total, page.Page, page.PageSize)
}

// GetTopic 主题详情（含问题与答案）
// GET /api/v1/topics/:slug
func (h *TopicHandler) GetTopic(c *gin.Context) {
	topic, err := h.topicSvc.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, topic)
}

// CreateTopic 创建主题
// POST /api/v1/topics
func (h *TopicHandler) CreateTopic(c *gin.Context) {
	var req dto.CreateTopicRequest
	if !bindJSON(c, &req) {
		return
	}

	topic, err := h.topicSvc.Create(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.Created(c, topic)
}

// UpdateTopic 更新主题
// PUT /api/v1/topics/:slug
func (h *TopicHandler) UpdateTopic(c *gin.Context) {
	var req dto.UpdateTopicRequest
	if !bindJSON(c, &req) {
		return
	}

	topic, err := h.topicSvc.Update(c.Request.Context(), c.Param("slug"), &req)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, topic)
}

// ActivateTopic 启用主题
// POST /api/v1/topics/:slug/activate
func (h *TopicHandler) ActivateTopic(c *gin.Context) {
	topic, err := h.topicSvc.Activate(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, topic)
}

// DeactivateTopic 停用主题
// POST /api/v1/topics/:slug/deactivate
func (h *TopicHandler) DeactivateTopic(c *gin.Context) {
	topic, err := h.topicSvc.Deactivate(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, topic)
}

// DeleteTopic 删除主题
// DELETE /api/v1/topics/:slug
func (h *TopicHandler) DeleteTopic(c *gin.Context) {
	if err := h.topicSvc.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, nil)
}

// ExportTopic 导出主题问答为 Excel
// GET /api/v1/topics/:slug/export
func (h *TopicHandler) ExportTopic(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportTopic(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *TopicHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoQuestions):
		response.BadRequest(c, response.CodeValidation, "topic has no questions")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		writeServiceError(c, h.logger, err)
	}
}
