package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cognify/backend/internal/dto"
	"cognify/backend/internal/service"
	"cognify/backend/pkg/response"
)

// OrbitHandler 分类模块 HTTP 处理器
type OrbitHandler struct {
	orbitSvc service.OrbitService
	logger   *zap.Logger
}

// NewOrbitHandler 创建 OrbitHandler
func NewOrbitHandler(orbitSvc service.OrbitService, logger *zap.Logger) *OrbitHandler {
	return &OrbitHandler{orbitSvc: orbitSvc, logger: logger}
}

// ListOrbits 分类列表（分页）
// GET /api/v1/orbits
func (h *OrbitHandler) ListOrbits(c *gin.Context) {
	var req dto.OrbitListRequest
	if !bindQuery(c, &req) {
		return
	}

	page, err := h.orbitSvc.List(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OKPage(c, page.List, page.Total, page.Page, page.PageSize)
}

// SearchOrbits 按名称或描述搜索分类
// GET /api/v1/orbits/search?q=xxx
func (h *OrbitHandler) SearchOrbits(c *gin.Context) {
	orbits, err := h.orbitSvc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, gin.H{"list": orbits})
}

// GetOrbit 分类详情
// GET /api/v1/orbits/:slug
func (h *OrbitHandler) GetOrbit(c *gin.Context) {
	orbit, err := h.orbitSvc.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, orbit)
}

// CreateOrbit 创建分类
// POST /api/v1/orbits
func (h *OrbitHandler) CreateOrbit(c *gin.Context) {
	var req dto.CreateOrbitRequest
	if !bindJSON(c, &req) {
		return
	}

	orbit, err := h.orbitSvc.Create(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.Created(c, orbit)
}

// UpdateOrbit 更新分类
// PUT /api/v1/orbits/:slug
func (h *OrbitHandler) UpdateOrbit(c *gin.Context) {
	var req dto.UpdateOrbitRequest
	if !bindJSON(c, &req) {
		return
	}

	orbit, err := h.orbitSvc.Update(c.Request.Context(), c.Param("slug"), &req)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, orbit)
}

// ActivateOrbit 启用分类
// POST /api/v1/orbits/:slug/activate
func (h *OrbitHandler) ActivateOrbit(c *gin.Context) {
	h.transition(c, h.orbitSvc.Activate)
}

// DeactivateOrbit 停用分类
// POST /api/v1/orbits/:slug/deactivate
func (h *OrbitHandler) DeactivateOrbit(c *gin.Context) {
	h.transition(c, h.orbitSvc.Deactivate)
}

// ArchiveOrbit 归档分类
// POST /api/v1/orbits/:slug/archive
func (h *OrbitHandler) ArchiveOrbit(c *gin.Context) {
	h.transition(c, h.orbitSvc.Archive)
}

// DeleteOrbit 删除分类（其下主题一并删除）
// DELETE /api/v1/orbits/:slug
func (h *OrbitHandler) DeleteOrbit(c *gin.Context) {
	if err := h.orbitSvc.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, nil)
}

type orbitTransition func(ctx context.Context, slug string) (*dto.OrbitResponse, error)

func (h *OrbitHandler) transition(c *gin.Context, fn orbitTransition) {
	orbit, err := fn(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, orbit)
}
