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
)

// QuizChain 测验生成链：init → template → llm → finalize
type QuizChain struct {
	factory workflowport.ChatModelFactory

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.QuizGenerateInput, *schema.Message]
	chainErr  error
}

func NewQuizChain(factory workflowport.ChatModelFactory) *QuizChain {
	return &QuizChain{factory: factory}
}

func (c *QuizChain) Invoke(ctx context.Context, in *wfmodel.QuizGenerateInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
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

	chain, err := c.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

type quizChainState struct {
	In       *wfmodel.QuizGenerateInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *QuizChain) getChain() (compose.Runnable[*wfmodel.QuizGenerateInput, *schema.Message], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *QuizChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.QuizGenerateInput, *schema.Message], error) {
	chain := compose.NewChain[*wfmodel.QuizGenerateInput, *schema.Message]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.QuizGenerateInput) (*quizChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			return &quizChainState{In: in}, nil
		}),
		compose.WithNodeName("quiz.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *quizChainState) (*quizChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			msgs, err := formatQuizMessages(ctx, st.In)
			if err != nil {
				return nil, err
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName("quiz.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *quizChainState) (*quizChainState, error) {
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
			outMsg, err := chatModel.Generate(ctx, st.Messages, buildQuizModelOptions(st.In, true)...)
			if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
				logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
					"provider", strings.TrimSpace(st.In.Provider),
					"model", strings.TrimSpace(st.In.Model),
					"error", err.Error(),
				)
				outMsg, err = chatModel.Generate(ctx, st.Messages, buildQuizModelOptions(st.In, false)...)
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
		compose.WithNodeName("quiz.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *quizChainState) (*schema.Message, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return st.OutMsg, nil
		}),
		compose.WithNodeName("quiz.finalize"),
	)

	return chain.Compile(ctx)
}

func formatQuizMessages(ctx context.Context, in *wfmodel.QuizGenerateInput) ([]*schema.Message, error) {
	tpl, err := lessonPromptRegistry.ChatTemplate(workflowprompt.PromptQuizGenV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"topic":      strings.TrimSpace(in.Topic),
		"age_group":  strings.TrimSpace(in.AgeGroup),
		"difficulty": strings.TrimSpace(in.Difficulty),
		"story":      strings.TrimSpace(in.Story),
	}
	return tpl.Format(ctx, vars)
}

func buildQuizModelOptions(in *wfmodel.QuizGenerateInput, enableSchema bool) []model.Option {
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
					"name":   "quiz_draft",
					"strict": false,
					"schema": quizJSONSchema(),
				},
			},
		}))
	}

	return opts
}

func quizJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"questions"},
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"question", "options", "correct_answer", "explanation"},
					"properties": map[string]any{
						"question":       map[string]any{"type": "string"},
						"options":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"correct_answer": map[string]any{"type": "string"},
						"explanation":    map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}
