package story

import (
	"encoding/json"
	"fmt"
	"strings"

	wfmodel "techtales-ai-api/internal/workflow/model"
	wfnode "techtales-ai-api/internal/workflow/node"
)

// ParseStoryDraft 解析模型输出为故事草稿。
// 模型输出可能被 Markdown 围栏包裹，先去围栏再反序列化。
func ParseStoryDraft(raw string) (*wfmodel.StoryDraft, error) {
	clean := wfnode.StripMarkdownFence(raw)
	if clean == "" {
		return nil, fmt.Errorf("empty model output")
	}

	var draft wfmodel.StoryDraft
	if err := json.Unmarshal([]byte(clean), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse story draft: %w", err)
	}
	if strings.TrimSpace(draft.Story) == "" {
		return nil, fmt.Errorf("story draft missing story text")
	}
	return &draft, nil
}

// FallbackVisualCues 解析失败时的兜底视觉提示
func FallbackVisualCues(topic string) []string {
	return []string{
		fmt.Sprintf("Illustration of %s concept", topic),
		fmt.Sprintf("Diagram showing %s components", topic),
		fmt.Sprintf("Visual metaphor for %s", topic),
	}
}
