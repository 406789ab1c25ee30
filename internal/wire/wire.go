// Package wire 手工组装应用依赖
package wire

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	applesson "techtales-ai-api/internal/application/lesson"
	"techtales-ai-api/internal/application/lesson/illustration"
	"techtales-ai-api/internal/application/lesson/quiz"
	"techtales-ai-api/internal/application/lesson/story"
	"techtales-ai-api/internal/config"
	"techtales-ai-api/internal/infrastructure/llm"
	"techtales-ai-api/internal/infrastructure/persistence/postgres"
	"techtales-ai-api/internal/infrastructure/persistence/redis"
	"techtales-ai-api/internal/interfaces/http/handler"
	"techtales-ai-api/internal/interfaces/http/router"
	"techtales-ai-api/internal/workflow/chain"
)

// App 组装完成的应用
type App struct {
	router *router.Router
}

// Engine 返回 HTTP 引擎
func (a *App) Engine() *gin.Engine {
	return a.router.Engine()
}

// InitializeApp 构建完整应用及其清理函数
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		pgClient.Close()
		return nil, nil, fmt.Errorf("failed to init redis: %w", err)
	}

	cleanup := func() {
		redisClient.Close()
		pgClient.Close()
	}

	// 基础设施
	cache := redis.NewCache(redisClient)
	limiter := redis.NewRateLimiter(redisClient)
	lessonRepo := postgres.NewLessonRepository(pgClient)
	factory := llm.NewEinoFactory(cfg)

	// 工作流与应用层
	storyGen := story.NewGenerator(chain.NewStoryChain(factory))
	quizGen := quiz.NewGenerator(chain.NewQuizChain(factory))
	renderer := illustration.NewRenderer(cfg.Illustration.Width, cfg.Illustration.Height)
	illustrationGen := illustration.NewGenerator(renderer, cfg.Illustration.MaxImages)

	lessonService := applesson.NewService(storyGen, quizGen, illustrationGen, lessonRepo, cache, cfg)

	// 接口层
	lessonHandler := handler.NewLessonHandler(lessonService)
	healthHandler := handler.NewHealthHandler(pgClient, redisClient)

	r := router.New(cfg, lessonHandler, healthHandler, limiter)

	return &App{router: r}, cleanup, nil
}

// InitializePostgresOnly 仅初始化数据层（供 bootstrap 使用）
func InitializePostgresOnly(ctx context.Context, cfg *config.Config) (*postgres.Client, func(), error) {
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init postgres: %w", err)
	}
	cleanup := func() {
		pgClient.Close()
	}
	return pgClient, cleanup, nil
}
