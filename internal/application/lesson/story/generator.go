// Package story 实现课程故事生成步骤
package story

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	wfmodel "techtales-ai-api/internal/workflow/model"
	"techtales-ai-api/pkg/logger"
	"techtales-ai-api/pkg/metrics"
)

// ChainInvoker 故事链的最小依赖
type ChainInvoker interface {
	Invoke(ctx context.Context, in *wfmodel.StoryGenerateInput) (*schema.Message, error)
}

// Output 故事生成结果。
// Fallback 为 true 表示模型输出不是合法 JSON，故事退化为原始文本、
// 视觉提示退化为通用占位。
type Output struct {
	Story      string
	VisualCues []string
	Fallback   bool
	Meta       wfmodel.LLMUsageMeta
}

// Generator 故事生成器
type Generator struct {
	chain ChainInvoker
}

func NewGenerator(chain ChainInvoker) *Generator {
	return &Generator{chain: chain}
}

// Generate 生成故事与视觉提示。
// LLM 调用失败返回错误；输出不可解析不算失败，走兜底路径。
func (g *Generator) Generate(ctx context.Context, in *wfmodel.StoryGenerateInput) (*Output, error) {
	if g == nil || g.chain == nil {
		return nil, fmt.Errorf("story chain not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Topic) == "" {
		return nil, fmt.Errorf("topic is required")
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
		return nil, fmt.Errorf("empty story content")
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

	draft, err := ParseStoryDraft(content)
	if err != nil {
		// 兜底：原始文本作为故事，占位视觉提示
		logger.Warn(ctx, "story draft not parseable, using raw text",
			"topic", in.Topic,
			"error", err.Error(),
		)
		metrics.DecodeFallbackTotal.WithLabelValues("story").Inc()
		return &Output{
			Story:      content,
			VisualCues: FallbackVisualCues(in.Topic),
			Fallback:   true,
			Meta:       meta,
		}, nil
	}

	return &Output{
		Story:      draft.Story,
		VisualCues: draft.VisualCues,
		Meta:       meta,
	}, nil
}
