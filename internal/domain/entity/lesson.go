// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
)

// AgeGroup 目标受众（文档约定 child/teen/adult，边界处不做枚举校验）
type AgeGroup = string

// Difficulty 难度（文档约定 beginner/intermediate/advanced，边界处不做枚举校验）
type Difficulty = string

// QuizQuestion 测验题目
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// HasValidAnswer 检查正确答案是否出现在选项中
func (q QuizQuestion) HasValidAnswer() bool {
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return true
		}
	}
	return false
}

// Lesson 课程实体：一次生成请求的持久化结果。
// 创建后不可变：无更新路径，无删除路径。
type Lesson struct {
	ID         string         `json:"id" gorm:"type:uuid;primaryKey"`
	Topic      string         `json:"topic" gorm:"type:text;not null"`
	AgeGroup   AgeGroup       `json:"age_group" gorm:"type:varchar(50)"`
	Difficulty Difficulty     `json:"difficulty" gorm:"type:varchar(50)"`
	Story      string         `json:"story" gorm:"type:text;not null"`
	VisualCues []string       `json:"visual_cues" gorm:"type:jsonb;serializer:json"`
	Images     []string       `json:"images" gorm:"type:jsonb;serializer:json"`
	Quiz       []QuizQuestion `json:"quiz" gorm:"type:jsonb;serializer:json"`
	CreatedAt  time.Time      `json:"created_at" gorm:"not null;index"`
}

// TableName 指定表名
func (Lesson) TableName() string {
	return "lessons"
}

// NewLesson 创建课程实体：分配全局唯一 ID 并固定创建时间。
func NewLesson(topic string, ageGroup AgeGroup, difficulty Difficulty, story string, visualCues, images []string, quiz []QuizQuestion) *Lesson {
	if visualCues == nil {
		visualCues = []string{}
	}
	if images == nil {
		images = []string{}
	}
	if quiz == nil {
		quiz = []QuizQuestion{}
	}
	return &Lesson{
		ID:         uuid.New().String(),
		Topic:      topic,
		AgeGroup:   ageGroup,
		Difficulty: difficulty,
		Story:      story,
		VisualCues: visualCues,
		Images:     images,
		Quiz:       quiz,
		CreatedAt:  time.Now().UTC(),
	}
}
