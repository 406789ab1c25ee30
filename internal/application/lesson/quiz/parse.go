package quiz

import (
	"encoding/json"
	"fmt"
	"strings"

	"techtales-ai-api/internal/domain/entity"
	wfmodel "techtales-ai-api/internal/workflow/model"
	wfnode "techtales-ai-api/internal/workflow/node"
)

// ParseQuizDraft 解析模型输出为测验草稿
func ParseQuizDraft(raw string) (*wfmodel.QuizDraft, error) {
	clean := wfnode.StripMarkdownFence(raw)
	if clean == "" {
		return nil, fmt.Errorf("empty model output")
	}

	var draft wfmodel.QuizDraft
	if err := json.Unmarshal([]byte(clean), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse quiz draft: %w", err)
	}
	if len(draft.Questions) == 0 {
		return nil, fmt.Errorf("quiz draft has no questions")
	}
	for i, q := range draft.Questions {
		if strings.TrimSpace(q.Question) == "" {
			return nil, fmt.Errorf("question %d is empty", i)
		}
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("question %d has no options", i)
		}
	}
	return &draft, nil
}

// FallbackQuestions 解析失败时的兜底题目
func FallbackQuestions(topic string) []entity.QuizQuestion {
	return []entity.QuizQuestion{
		{
			Question:      fmt.Sprintf("What is the main concept explained in the story about %s?", topic),
			Options:       []string{fmt.Sprintf("%s basics", topic), "Something else", "Not sure", "All of the above"},
			CorrectAnswer: fmt.Sprintf("%s basics", topic),
			Explanation:   fmt.Sprintf("The story explains the fundamental concepts of %s.", topic),
		},
	}
}

func toEntityQuestions(draft *wfmodel.QuizDraft) []entity.QuizQuestion {
	questions := make([]entity.QuizQuestion, 0, len(draft.Questions))
	for _, q := range draft.Questions {
		questions = append(questions, entity.QuizQuestion{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}
	return questions
}
