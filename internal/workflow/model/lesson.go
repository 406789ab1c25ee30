package model

// StoryGenerateInput 故事生成输入
type StoryGenerateInput struct {
	Provider    string
	Model       string
	Temperature *float32
	MaxTokens   *int

	Topic      string
	AgeGroup   string
	Difficulty string
}

// StoryDraft 故事生成的结构化结果
type StoryDraft struct {
	Story      string   `json:"story"`
	VisualCues []string `json:"visual_cues"`
}

// QuizGenerateInput 测验生成输入
type QuizGenerateInput struct {
	Provider    string
	Model       string
	Temperature *float32
	MaxTokens   *int

	Topic      string
	AgeGroup   string
	Difficulty string
	Story      string
}

// QuizDraftQuestion 测验题目草稿
type QuizDraftQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// QuizDraft 测验生成的结构化结果
type QuizDraft struct {
	Questions []QuizDraftQuestion `json:"questions"`
}
