package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"techtales-ai-api/internal/config"
	"techtales-ai-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化数据层（仅 PostgreSQL）
	pgClient, cleanup, err := wire.InitializePostgresOnly(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	// 3. 建表
	fmt.Println("Running schema migration...")
	if err := pgClient.Migrate(); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	// 4. 连通性检查
	if err := pgClient.Ping(ctx); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	fmt.Println("Bootstrap completed successfully.")
}
