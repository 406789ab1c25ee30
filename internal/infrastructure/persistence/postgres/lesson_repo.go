// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"techtales-ai-api/internal/domain/entity"
)

// LessonRepository 课程仓储实现
type LessonRepository struct {
	client *Client
}

// NewLessonRepository 创建课程仓储
func NewLessonRepository(client *Client) *LessonRepository {
	return &LessonRepository{client: client}
}

// Create 创建课程
func (r *LessonRepository) Create(ctx context.Context, lesson *entity.Lesson) error {
	ctx, span := tracer.Start(ctx, "postgres.LessonRepository.Create")
	defer span.End()

	db := r.client.db.WithContext(ctx)
	if err := db.Create(lesson).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取课程
func (r *LessonRepository) GetByID(ctx context.Context, id string) (*entity.Lesson, error) {
	ctx, span := tracer.Start(ctx, "postgres.LessonRepository.GetByID")
	defer span.End()

	db := r.client.db.WithContext(ctx)
	var lesson entity.Lesson
	if err := db.First(&lesson, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return &lesson, nil
}

// List 按创建时间倒序获取课程列表
func (r *LessonRepository) List(ctx context.Context, limit int) ([]*entity.Lesson, error) {
	ctx, span := tracer.Start(ctx, "postgres.LessonRepository.List")
	defer span.End()

	db := r.client.db.WithContext(ctx)
	var lessons []*entity.Lesson
	if err := db.Order("created_at DESC").
		Limit(limit).
		Find(&lessons).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}
