package dto

import (
	"time"

	"techtales-ai-api/internal/domain/entity"
)

// GenerateLessonRequest 课程生成请求体
type GenerateLessonRequest struct {
	Topic      string `json:"topic" binding:"required"`
	AgeGroup   string `json:"age_group" binding:"required"`
	Difficulty string `json:"difficulty" binding:"required"`
}

// QuizQuestionResponse 测验题目
type QuizQuestionResponse struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// LessonResponse 课程响应体
type LessonResponse struct {
	ID         string                 `json:"id"`
	Topic      string                 `json:"topic"`
	AgeGroup   string                 `json:"age_group"`
	Difficulty string                 `json:"difficulty"`
	Story      string                 `json:"story"`
	VisualCues []string               `json:"visual_cues"`
	Images     []string               `json:"images"`
	Quiz       []QuizQuestionResponse `json:"quiz"`
	CreatedAt  time.Time              `json:"created_at"`
}

// ToLessonResponse 实体转响应体
func ToLessonResponse(lesson *entity.Lesson) *LessonResponse {
	quiz := make([]QuizQuestionResponse, 0, len(lesson.Quiz))
	for _, q := range lesson.Quiz {
		quiz = append(quiz, QuizQuestionResponse{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}
	return &LessonResponse{
		ID:         lesson.ID,
		Topic:      lesson.Topic,
		AgeGroup:   lesson.AgeGroup,
		Difficulty: lesson.Difficulty,
		Story:      lesson.Story,
		VisualCues: lesson.VisualCues,
		Images:     lesson.Images,
		Quiz:       quiz,
		CreatedAt:  lesson.CreatedAt,
	}
}

// ToLessonListResponse 实体列表转响应体列表
func ToLessonListResponse(lessons []*entity.Lesson) []*LessonResponse {
	out := make([]*LessonResponse, 0, len(lessons))
	for _, lesson := range lessons {
		out = append(out, ToLessonResponse(lesson))
	}
	return out
}
