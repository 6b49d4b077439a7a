package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cognify/backend/internal/dto"
	"cognify/backend/internal/service"
	"cognify/backend/pkg/response"
)

// QuestionHandler 问题与答案 HTTP 处理器
// 路由均挂在 /topics/:slug/questions 下，父级不匹配按不存在处理
type QuestionHandler struct {
	questionSvc service.QuestionService
	logger      *zap.Logger
}

// NewQuestionHandler 创建 QuestionHandler
func NewQuestionHandler(questionSvc service.QuestionService, logger *zap.Logger) *QuestionHandler {
	return &QuestionHandler{questionSvc: questionSvc, logger: logger}
}

// ────── Question ──────

// AddQuestion 新增问题
// POST /api/v1/topics/:slug/questions
func (h *QuestionHandler) AddQuestion(c *gin.Context) {
	var req dto.CreateQuestionRequest
	if !bindJSON(c, &req) {
		return
	}

	q, err := h.questionSvc.AddQuestion(c.Request.Context(), c.Param("slug"), &req)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.Created(c, q)
}

// GetQuestion 问题详情（含答案）
// GET /api/v1/topics/:slug/questions/:question_id
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	q, err := h.questionSvc.GetQuestion(c.Request.Context(), c.Param("slug"), c.Param("question_id"))
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, q)
}

// UpdateQuestion 更新问题
// PUT /api/v1/topics/:slug/questions/:question_id
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	var req dto.UpdateQuestionRequest
	if !bindJSON(c, &req) {
		return
	}

	q, err := h.questionSvc.UpdateQuestion(c.Request.Context(), c.Param("slug"), c.Param("question_id"), &req)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, q)
}

// DeleteQuestion 删除问题及其答案
// DELETE /api/v1/topics/:slug/questions/:question_id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	if err := h.questionSvc.DeleteQuestion(c.Request.Context(), c.Param("slug"), c.Param("question_id")); err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, nil)
}

// ────── Answer ──────

// AddAnswer 新增答案
// POST /api/v1/topics/:slug/questions/:question_id/answers
func (h *QuestionHandler) AddAnswer(c *gin.Context) {
	var req dto.CreateAnswerRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.questionSvc.AddAnswer(c.Request.Context(), c.Param("slug"), c.Param("question_id"), &req)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.Created(c, a)
}

// UpdateAnswer 更新答案
// PUT /api/v1/topics/:slug/questions/:question_id/answers/:answer_id
func (h *QuestionHandler) UpdateAnswer(c *gin.Context) {
	var req dto.UpdateAnswerRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.questionSvc.UpdateAnswer(c.Request.Context(), c.Param("slug"), c.Param("question_id"), c.Param("answer_id"), &req)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, a)
}

// MarkCorrect 标记为正确答案（同题其余答案取消标记）
// POST /api/v1/topics/:slug/questions/:question_id/answers/:answer_id/correct
func (h *QuestionHandler) MarkCorrect(c *gin.Context) {
	a, err := h.questionSvc.MarkCorrect(c.Request.Context(), c.Param("slug"), c.Param("question_id"), c.Param("answer_id"))
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, a)
}

// DeleteAnswer 删除答案
// DELETE /api/v1/topics/:slug/questions/:question_id/answers/:answer_id
func (h *QuestionHandler) DeleteAnswer(c *gin.Context) {
	if err := h.questionSvc.DeleteAnswer(c.Request.Context(), c.Param("slug"), c.Param("question_id"), c.Param("answer_id")); err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.OK(c, nil)
}
