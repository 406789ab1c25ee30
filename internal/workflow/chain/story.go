package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	wfmodel "techtales-ai-api/internal/workflow/model"
	wfnode "techtales-ai-api/internal/workflow/node"
	workflowport "techtales-ai-api/internal/workflow/port"
	workflowprompt "techtales-ai-api/internal/workflow/prompt"
	"techtales-ai-api/pkg/logger"
	"techtales-ai-api/pkg/metrics"
)

// StoryChain 故事生成链：init → template → llm → finalize
type StoryChain struct {
	factory workflowport.ChatModelFactory

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.StoryGenerateInput, *schema.Message]
	chainErr  error
}

func NewStoryChain(factory workflowport.ChatModelFactory) *StoryChain {
	return &StoryChain{factory: factory}
}

func (c *StoryChain) Invoke(ctx context.Context, in *wfmodel.StoryGenerateInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Topic) == "" {
		return nil, fmt.Errorf("topic is required")
	}

	chain, err := c.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

type storyChainState struct {
	In       *wfmodel.StoryGenerateInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *StoryChain) getChain() (compose.Runnable[*wfmodel.StoryGenerateInput, *schema.Message], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *StoryChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.StoryGenerateInput, *schema.Message], error) {
	chain := compose.NewChain[*wfmodel.StoryGenerateInput, *schema.Message]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.StoryGenerateInput) (*storyChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			return &storyChainState{In: in}, nil
		}),
		compose.WithNodeName("story.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *storyChainState) (*storyChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			msgs, err := formatStoryMessages(ctx, st.In)
			if err != nil {
				return nil, err
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName("story.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *storyChainState) (*storyChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			if c.factory == nil {
				return nil, fmt.Errorf("llm factory not configured")
			}

			chatModel, err := c.factory.Get(ctx, strings.TrimSpace(st.In.Provider))
			if err != nil {
				return nil, err
			}

			start := time.Now()
			outMsg, err := chatModel.Generate(ctx, st.Messages, buildStoryModelOptions(st.In, true)...)
			if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
				logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
					"provider", strings.TrimSpace(st.In.Provider),
					"model", strings.TrimSpace(st.In.Model),
					"error", err.Error(),
				)
				outMsg, err = chatModel.Generate(ctx, st.Messages, buildStoryModelOptions(st.In, false)...)
			}
			recordLLMCall(st.In.Provider, st.In.Model, start, outMsg, err)
			if err != nil {
				return nil, err
			}
			if outMsg == nil {
				return nil, fmt.Errorf("empty llm response")
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName("story.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *storyChainState) (*schema.Message, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return st.OutMsg, nil
		}),
		compose.WithNodeName("story.finalize"),
	)

	return chain.Compile(ctx)
}

var lessonPromptRegistry = workflowprompt.NewRegistry()

func formatStoryMessages(ctx context.Context, in *wfmodel.StoryGenerateInput) ([]*schema.Message, error) {
	tpl, err := lessonPromptRegistry.ChatTemplate(workflowprompt.PromptStoryGenV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"topic":      strings.TrimSpace(in.Topic),
		"age_group":  strings.TrimSpace(in.AgeGroup),
		"difficulty": strings.TrimSpace(in.Difficulty),
	}
	return tpl.Format(ctx, vars)
}

func buildStoryModelOptions(in *wfmodel.StoryGenerateInput, enableSchema bool) []model.Option {
	opts := make([]model.Option, 0, 4)
	if in == nil {
		return opts
	}
	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}

	if enableSchema {
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   "story_draft",
					"strict": false,
					"schema": storyJSONSchema(),
				},
			},
		}))
	}

	return opts
}

func storyJSONSchema() map[string]any {
	// 说明：schema 以“最小可用”为目标，避免过度约束导致模型输出失败。
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"story", "visual_cues"},
		"properties": map[string]any{
			"story": map[string]any{"type": "string"},
			"visual_cues": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
	}
}

// recordLLMCall 记录一次 LLM 调用的指标
func recordLLMCall(provider, modelName string, start time.Time, outMsg *schema.Message, err error) {
	provider = strings.TrimSpace(provider)
	modelName = strings.TrimSpace(modelName)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.LLMCallTotal.WithLabelValues(provider, modelName, status).Inc()
	metrics.LLMCallDuration.WithLabelValues(provider, modelName).Observe(time.Since(start).Seconds())

	if outMsg != nil && outMsg.ResponseMeta != nil && outMsg.ResponseMeta.Usage != nil {
		usage := outMsg.ResponseMeta.Usage
		metrics.LLMTokensUsed.WithLabelValues(provider, modelName, "prompt").Add(float64(usage.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(provider, modelName, "completion").Add(float64(usage.CompletionTokens))
	}
}
