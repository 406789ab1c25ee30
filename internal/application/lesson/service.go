// Package lesson 实现课程生成编排：故事 → 插图 → 测验 → 持久化
package lesson

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"techtales-ai-api/internal/application/lesson/quiz"
	"techtales-ai-api/internal/application/lesson/story"
	"techtales-ai-api/internal/config"
	"techtales-ai-api/internal/domain/entity"
	"techtales-ai-api/internal/domain/repository"
	cachestore "techtales-ai-api/internal/infrastructure/persistence/redis"
	wfmodel "techtales-ai-api/internal/workflow/model"
	apperrors "techtales-ai-api/pkg/errors"
	"techtales-ai-api/pkg/logger"
	"techtales-ai-api/pkg/metrics"
)

var tracer = otel.Tracer("application.lesson")

// StoryGenerator 故事步骤依赖
type StoryGenerator interface {
	Generate(ctx context.Context, in *wfmodel.StoryGenerateInput) (*story.Output, error)
}

// QuizGenerator 测验步骤依赖
type QuizGenerator interface {
	Generate(ctx context.Context, in *wfmodel.QuizGenerateInput) (*quiz.Output, error)
}

// IllustrationGenerator 插图步骤依赖，从不失败
type IllustrationGenerator interface {
	Generate(ctx context.Context, cues []string) []string
}

// Cache 课程点查缓存的最小依赖。
// GetOrLoadSafe 在缓存未命中时回源加载并回填，合并并发的同键请求。
type Cache interface {
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// GenerateRequest 课程生成请求
type GenerateRequest struct {
	Topic      string
	AgeGroup   string
	Difficulty string
}

// Service 课程服务：编排三步流水线并提供查询
type Service struct {
	storyGen        StoryGenerator
	quizGen         QuizGenerator
	illustrationGen IllustrationGenerator
	repo            repository.LessonRepository
	cache           Cache
	cfg             *config.Config
}

func NewService(
	storyGen StoryGenerator,
	quizGen QuizGenerator,
	illustrationGen IllustrationGenerator,
	repo repository.LessonRepository,
	cache Cache,
	cfg *config.Config,
) *Service {
	return &Service{
		storyGen:        storyGen,
		quizGen:         quizGen,
		illustrationGen: illustrationGen,
		repo:            repo,
		cache:           cache,
		cfg:             cfg,
	}
}

// GenerateLesson 执行完整流水线并持久化结果。
// 故事失败或测验失败都会终止流水线且不落库；插图失败只会减少图片数量。
func (s *Service) GenerateLesson(ctx context.Context, req *GenerateRequest) (*entity.Lesson, error) {
	ctx, span := tracer.Start(ctx, "lesson.Generate",
		trace.WithAttributes(attribute.String("lesson.topic", req.Topic)))
	defer span.End()

	ctx = logger.WithContext(ctx, logger.TopicKey, req.Topic)
	start := time.Now()

	logger.Info(ctx, "generating lesson",
		"topic", req.Topic,
		"age_group", req.AgeGroup,
		"difficulty", req.Difficulty,
	)

	// 第一步：故事与视觉提示
	storyOut, err := s.storyGen.Generate(ctx, &wfmodel.StoryGenerateInput{
		Topic:      req.Topic,
		AgeGroup:   req.AgeGroup,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		span.RecordError(err)
		metrics.LessonGenerationTotal.WithLabelValues("story_failed").Inc()
		metrics.LessonGenerationDuration.Observe(time.Since(start).Seconds())
		logger.Error(ctx, "story generation failed", err, "topic", req.Topic)
		return nil, apperrors.Wrap(err, apperrors.CodeStoryGenerationFailed, "story generation failed")
	}

	// 第二步：插图，失败不终止流水线
	images := s.illustrationGen.Generate(ctx, storyOut.VisualCues)

	// 第三步：测验
	quizOut, err := s.quizGen.Generate(ctx, &wfmodel.QuizGenerateInput{
		Topic:      req.Topic,
		AgeGroup:   req.AgeGroup,
		Difficulty: req.Difficulty,
		Story:      storyOut.Story,
	})
	if err != nil {
		span.RecordError(err)
		metrics.LessonGenerationTotal.WithLabelValues("quiz_failed").Inc()
		metrics.LessonGenerationDuration.Observe(time.Since(start).Seconds())
		logger.Error(ctx, "quiz generation failed", err, "topic", req.Topic)
		return nil, apperrors.Wrap(err, apperrors.CodeQuizGenerationFailed, "quiz generation failed")
	}

	lesson := entity.NewLesson(
		req.Topic, req.AgeGroup, req.Difficulty,
		storyOut.Story, storyOut.VisualCues, images, quizOut.Questions,
	)

	if err := s.repo.Create(ctx, lesson); err != nil {
		span.RecordError(err)
		metrics.LessonGenerationTotal.WithLabelValues("persist_failed").Inc()
		metrics.LessonGenerationDuration.Observe(time.Since(start).Seconds())
		return nil, apperrors.Wrap(err, apperrors.CodeLessonPersistFailed, "failed to persist lesson")
	}

	// 课程不可变，生成后直接预热缓存，失败不影响结果
	if s.cache != nil {
		if err := s.cache.Set(ctx, cachestore.BuildLessonKey(lesson.ID), lesson, s.cfg.Lesson.CacheTTL); err != nil {
			logger.Warn(ctx, "failed to warm lesson cache", "lesson_id", lesson.ID, "error", err.Error())
		}
	}

	metrics.LessonGenerationTotal.WithLabelValues("complete").Inc()
	metrics.LessonGenerationDuration.Observe(time.Since(start).Seconds())
	metrics.StoryLength.Observe(float64(len([]rune(lesson.Story))))

	logger.Info(ctx, "lesson generated",
		"lesson_id", lesson.ID,
		"images", len(images),
		"questions", len(lesson.Quiz),
		"story_fallback", storyOut.Fallback,
		"quiz_fallback", quizOut.Fallback,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return lesson, nil
}

// GetLesson 按 ID 查询课程，读穿缓存，未命中时经 singleflight 回源
func (s *Service) GetLesson(ctx context.Context, id string) (*entity.Lesson, error) {
	ctx, span := tracer.Start(ctx, "lesson.Get",
		trace.WithAttributes(attribute.String("lesson.id", id)))
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "lesson id is required")
	}

	if s.cache == nil {
		return s.loadLesson(ctx, id)
	}

	loaded := false
	raw, err := s.cache.GetOrLoadSafe(ctx, cachestore.BuildLessonKey(id), s.cfg.Lesson.CacheTTL, func() (interface{}, error) {
		loaded = true
		return s.loadLesson(ctx, id)
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		// 缓存层故障时直接回源，Redis 不可用只影响延迟
		span.RecordError(err)
		logger.Warn(ctx, "lesson cache unavailable, falling back to database", "lesson_id", id, "error", err.Error())
		return s.loadLesson(ctx, id)
	}

	if loaded {
		metrics.LessonCacheHits.WithLabelValues("miss").Inc()
	} else {
		metrics.LessonCacheHits.WithLabelValues("hit").Inc()
	}

	var lesson entity.Lesson
	if err := json.Unmarshal(raw, &lesson); err != nil {
		logger.Warn(ctx, "corrupt lesson cache entry, falling back to database", "lesson_id", id, "error", err.Error())
		return s.loadLesson(ctx, id)
	}
	return &lesson, nil
}

// loadLesson 从仓储读取课程，不存在时返回 ErrLessonNotFound
func (s *Service) loadLesson(ctx context.Context, id string) (*entity.Lesson, error) {
	lesson, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get lesson")
	}
	if lesson == nil {
		return nil, apperrors.ErrLessonNotFound
	}
	return lesson, nil
}

// ListLessons 按创建时间倒序返回最近的课程
func (s *Service) ListLessons(ctx context.Context) ([]*entity.Lesson, error) {
	ctx, span := tracer.Start(ctx, "lesson.List")
	defer span.End()

	lessons, err := s.repo.List(ctx, s.cfg.Lesson.ListLimit)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list lessons")
	}
	return lessons, nil
}
