// Package repository 定义仓储接口
package repository

import (
	"context"

	"techtales-ai-api/internal/domain/entity"
)

// LessonRepository 课程仓储接口。
// GetByID 未找到时返回 (nil, nil)，由调用方转换为业务错误。
type LessonRepository interface {
	Create(ctx context.Context, lesson *entity.Lesson) error
	GetByID(ctx context.Context, id string) (*entity.Lesson, error)
	// List 按创建时间倒序返回最多 limit 条记录
	List(ctx context.Context, limit int) ([]*entity.Lesson, error)
}
