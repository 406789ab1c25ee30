// Package quiz 实现课程测验生成步骤
package quiz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"techtales-ai-api/internal/domain/entity"
	wfmodel "techtales-ai-api/internal/workflow/model"
	"techtales-ai-api/pkg/logger"
	"techtales-ai-api/pkg/metrics"
)

// ChainInvoker 测验链的最小依赖
type ChainInvoker interface {
	Invoke(ctx context.Context, in *wfmodel.QuizGenerateInput) (*schema.Message, error)
}

// Output 测验生成结果
type Output struct {
	Questions []entity.QuizQuestion
	Fallback  bool
	Meta      wfmodel.LLMUsageMeta
}

// Generator 测验生成器
type Generator struct {
	chain ChainInvoker
}

func NewGenerator(chain ChainInvoker) *Generator {
	return &Generator{chain: chain}
}

// Generate 基于故事生成测验。
// LLM 调用失败返回错误；输出不可解析不算失败，退化为单个通用题目。
func (g *Generator) Generate(ctx context.Context, in *wfmodel.QuizGenerateInput) (*Output, error) {
	if g == nil || g.chain == nil {
		return nil, fmt.Errorf("quiz chain not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Topic) == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if strings.TrimSpace(in.Story) == "" {
		return nil, fmt.Errorf("story is required")
	}

	outMsg, err := g.chain.Invoke(ctx, in)
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}

	content := strings.TrimSpace(outMsg.Content)
	if content == "" {
		return nil, fmt.Errorf("empty quiz content")
	}

	meta := wfmodel.LLMUsageMeta{
		Provider:    strings.TrimSpace(in.Provider),
		Model:       strings.TrimSpace(in.Model),
		GeneratedAt: time.Now().UTC(),
	}
	if outMsg.ResponseMeta != nil && outMsg.ResponseMeta.Usage != nil {
		meta.PromptTokens = outMsg.ResponseMeta.Usage.PromptTokens
		meta.CompletionTokens = outMsg.ResponseMeta.Usage.CompletionTokens
	}

	draft, err := ParseQuizDraft(content)
	if err != nil {
		logger.Warn(ctx, "quiz draft not parseable, using fallback question",
			"topic", in.Topic,
			"error", err.Error(),
		)
		metrics.DecodeFallbackTotal.WithLabelValues("quiz").Inc()
		return &Output{
			Questions: FallbackQuestions(in.Topic),
			Fallback:  true,
			Meta:      meta,
		}, nil
	}

	return &Output{
		Questions: toEntityQuestions(draft),
		Meta:      meta,
	}, nil
}
