// Package handler 提供 HTTP 请求处理器
package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	applesson "techtales-ai-api/internal/application/lesson"
	"techtales-ai-api/internal/interfaces/http/dto"
	apperrors "techtales-ai-api/pkg/errors"
	"techtales-ai-api/pkg/logger"
)

// LessonHandler 课程处理器
type LessonHandler struct {
	svc *applesson.Service
}

// NewLessonHandler 创建课程处理器
func NewLessonHandler(svc *applesson.Service) *LessonHandler {
	return &LessonHandler{svc: svc}
}

// Root 欢迎接口
// @Summary 服务标识
// @Tags System
// @Produce json
// @Router /api [get]
func (h *LessonHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "TechTales AI Educational App"})
}

// GenerateLesson 生成完整课程（故事 + 插图 + 测验）
// @Summary 生成课程
// @Tags Lessons
// @Accept json
// @Produce json
// @Param body body dto.GenerateLessonRequest true "课程主题"
// @Success 200 {object} dto.LessonResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/generate-lesson [post]
func (h *LessonHandler) GenerateLesson(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GenerateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		dto.BadRequest(c, "topic must not be blank")
		return
	}

	lesson, err := h.svc.GenerateLesson(ctx, &applesson.GenerateRequest{
		Topic:      strings.TrimSpace(req.Topic),
		AgeGroup:   req.AgeGroup,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		if appErr := apperrors.AsAppError(err); appErr != nil {
			dto.AppError(c, appErr)
			return
		}
		logger.Error(ctx, "failed to generate lesson", err, "topic", req.Topic)
		dto.InternalError(c, "failed to generate lesson")
		return
	}

	c.JSON(http.StatusOK, dto.ToLessonResponse(lesson))
}

// ListLessons 获取课程列表
// @Summary 获取课程列表
// @Tags Lessons
// @Produce json
// @Success 200 {array} dto.LessonResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/lessons [get]
func (h *LessonHandler) ListLessons(c *gin.Context) {
	ctx := c.Request.Context()

	lessons, err := h.svc.ListLessons(ctx)
	if err != nil {
		logger.Error(ctx, "failed to list lessons", err)
		dto.InternalError(c, "failed to list lessons")
		return
	}

	c.JSON(http.StatusOK, dto.ToLessonListResponse(lessons))
}

// GetLesson 获取课程详情
// @Summary 获取课程详情
// @Tags Lessons
// @Produce json
// @Param lesson_id path string true "课程 ID"
// @Success 200 {object} dto.LessonResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/lessons/{lesson_id} [get]
func (h *LessonHandler) GetLesson(c *gin.Context) {
	ctx := c.Request.Context()
	lessonID := c.Param("lesson_id")

	lesson, err := h.svc.GetLesson(ctx, lessonID)
	if err != nil {
		if appErr := apperrors.AsAppError(err); appErr != nil {
			dto.AppError(c, appErr)
			return
		}
		logger.Error(ctx, "failed to get lesson", err, "lesson_id", lessonID)
		dto.InternalError(c, "failed to get lesson")
		return
	}

	c.JSON(http.StatusOK, dto.ToLessonResponse(lesson))
}
