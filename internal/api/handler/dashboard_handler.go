package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cognify/backend/internal/dto"
	"cognify/backend/internal/service"
	"cognify/backend/pkg/response"
)

// DashboardHandler 仪表盘与语录 HTTP 处理器
type DashboardHandler struct {
	dashboardSvc service.DashboardService
	logger       *zap.Logger
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc, logger: logger}
}

// Dashboard 首页数据
// GET /api/v1/dashboard
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	masterID, ok := MustGetMasterID(c)
	if !ok {
		return
	}

	data, err := h.dashboardSvc.Dashboard(c.Request.Context(), masterID)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, data)
}

// ListQuotes 启用语录
// GET /api/v1/quotes
func (h *DashboardHandler) ListQuotes(c *gin.Context) {
	quotes, err := h.dashboardSvc.ListQuotes(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, gin.H{"list": quotes})
}

// CreateQuote 新增语录
// POST /api/v1/quotes
func (h *DashboardHandler) CreateQuote(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if !bindJSON(c, &req) {
		return
	}

	quote, err := h.dashboardSvc.CreateQuote(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.Created(c, quote)
}
