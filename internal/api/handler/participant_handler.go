package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cognify/backend/internal/dto"
	"cognify/backend/internal/service"
	"cognify/backend/pkg/response"
)

// ParticipantHandler 参与者模块 HTTP 处理器
type ParticipantHandler struct {
	participantSvc service.ParticipantService
	logger         *zap.Logger
}

// NewParticipantHandler 创建 ParticipantHandler
func NewParticipantHandler(participantSvc service.ParticipantService, logger *zap.Logger) *ParticipantHandler {
	return &ParticipantHandler{participantSvc: participantSvc, logger: logger}
}

// ListParticipants 参与者列表（分页）
// GET /api/v1/participants
func (h *ParticipantHandler) ListParticipants(c *gin.Context) {
	var req dto.ParticipantListRequest
	if !bindQuery(c, &req) {
		return
	}

	page, err := h.participantSvc.List(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OKPage(c, page.List, page.Total, page.Page, page.PageSize)
}

// SearchParticipants 搜索启用参与者
// GET /api/v1/participants/search?q=xxx
func (h *ParticipantHandler) SearchParticipants(c *gin.Context) {
	list, err := h.participantSvc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Selectable 主题表单候选参与者
// GET /api/v1/participants/selectable?exclude=<id>
func (h *ParticipantHandler) Selectable(c *gin.Context) {
	var req dto.SelectableRequest
	if !bindQuery(c, &req) {
		return
	}

	list, err := h.participantSvc.Selectable(c.Request.Context(), req.Exclude)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetParticipant 参与者详情
// GET /api/v1/participants/:id
func (h *ParticipantHandler) GetParticipant(c *gin.Context) {
	p, err := h.participantSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, p)
}

// CreateParticipant 创建参与者
// POST /api/v1/participants
func (h *ParticipantHandler) CreateParticipant(c *gin.Context) {
	var req dto.CreateParticipantRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.participantSvc.Create(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.Created(c, p)
}

// UpdateParticipant 更新参与者
// PUT /api/v1/participants/:id
func (h *ParticipantHandler) UpdateParticipant(c *gin.Context) {
	var req dto.UpdateParticipantRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.participantSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, p)
}

// ActivateParticipant 启用参与者
// POST /api/v1/participants/:id/activate
func (h *ParticipantHandler) ActivateParticipant(c *gin.Context) {
	p, err := h.participantSvc.Activate(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, p)
}

// DeactivateParticipant 停用参与者
// POST /api/v1/participants/:id/deactivate
func (h *ParticipantHandler) DeactivateParticipant(c *gin.Context) {
	p, err := h.participantSvc.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, p)
}

// DeleteParticipant 删除参与者
// DELETE /api/v1/participants/:id
func (h *ParticipantHandler) DeleteParticipant(c *gin.Context) {
	if err := h.participantSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, nil)
}
