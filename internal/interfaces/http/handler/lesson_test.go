package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	applesson "techtales-ai-api/internal/application/lesson"
	"techtales-ai-api/internal/application/lesson/quiz"
	"techtales-ai-api/internal/application/lesson/story"
	"techtales-ai-api/internal/config"
	"techtales-ai-api/internal/domain/entity"
	"techtales-ai-api/internal/interfaces/http/dto"
	wfmodel "techtales-ai-api/internal/workflow/model"
)

type stubStoryGen struct{}

func (stubStoryGen) Generate(_ context.Context, in *wfmodel.StoryGenerateInput) (*story.Output, error) {
	return &story.Output{
		Story:      "A story about " + in.Topic,
		VisualCues: []string{"a diagram of " + in.Topic},
	}, nil
}

type stubQuizGen struct{}

func (stubQuizGen) Generate(_ context.Context, in *wfmodel.QuizGenerateInput) (*quiz.Output, error) {
	return &quiz.Output{
		Questions: []entity.QuizQuestion{{
			Question:      "What is " + in.Topic + "?",
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: "A",
			Explanation:   "Because.",
		}},
	}, nil
}

type stubIllustrationGen struct{}

func (stubIllustrationGen) Generate(_ context.Context, cues []string) []string {
	return []string{"base64data"}
}

type memRepo struct {
	lessons map[string]*entity.Lesson
}

func (r *memRepo) Create(_ context.Context, lesson *entity.Lesson) error {
	r.lessons[lesson.ID] = lesson
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*entity.Lesson, error) {
	return r.lessons[id], nil
}

func (r *memRepo) List(_ context.Context, limit int) ([]*entity.Lesson, error) {
	out := make([]*entity.Lesson, 0, len(r.lessons))
	for _, l := range r.lessons {
		if len(out) >= limit {
			break
		}
		out = append(out, l)
	}
	return out, nil
}

type failingStoryGen struct{}

func (failingStoryGen) Generate(_ context.Context, _ *wfmodel.StoryGenerateInput) (*story.Output, error) {
	return nil, errors.New("llm unreachable")
}

type failingQuizGen struct{}

func (failingQuizGen) Generate(_ context.Context, _ *wfmodel.QuizGenerateInput) (*quiz.Output, error) {
	return nil, errors.New("llm unreachable")
}

func newTestEngine(repo *memRepo) *gin.Engine {
	return newTestEngineWith(stubStoryGen{}, stubQuizGen{}, repo)
}

func newTestEngineWith(storyGen applesson.StoryGenerator, quizGen applesson.QuizGenerator, repo *memRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Lesson.ListLimit = 100
	cfg.Lesson.CacheTTL = time.Minute
	cfg.Illustration.MaxImages = 3

	svc := applesson.NewService(storyGen, quizGen, stubIllustrationGen{}, repo, nil, cfg)
	h := NewLessonHandler(svc)

	engine := gin.New()
	api := engine.Group("/api")
	api.GET("", h.Root)
	api.POST("/generate-lesson", h.GenerateLesson)
	api.GET("/lessons", h.ListLessons)
	api.GET("/lessons/:lesson_id", h.GetLesson)
	return engine
}

func doRequest(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRoot(t *testing.T) {
	engine := newTestEngine(&memRepo{lessons: map[string]*entity.Lesson{}})
	w := doRequest(engine, http.MethodGet, "/api", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "TechTales AI Educational App") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestGenerateLesson(t *testing.T) {
	repo := &memRepo{lessons: map[string]*entity.Lesson{}}
	engine := newTestEngine(repo)

	w := doRequest(engine, http.MethodPost, "/api/generate-lesson",
		`{"topic":"DNS","age_group":"teen","difficulty":"beginner"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp dto.LessonResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ID == "" {
		t.Error("response should carry lesson id")
	}
	if resp.Story != "A story about DNS" {
		t.Errorf("story = %q", resp.Story)
	}
	if len(resp.Images) != 1 || len(resp.Quiz) != 1 {
		t.Errorf("images = %d, quiz = %d", len(resp.Images), len(resp.Quiz))
	}
	if len(repo.lessons) != 1 {
		t.Error("lesson should be persisted")
	}
}

func TestGenerateLessonValidation(t *testing.T) {
	engine := newTestEngine(&memRepo{lessons: map[string]*entity.Lesson{}})

	cases := []struct {
		name string
		body string
	}{
		{"missing topic", `{"age_group":"teen","difficulty":"beginner"}`},
		{"blank topic", `{"topic":"   ","age_group":"teen","difficulty":"beginner"}`},
		{"not json", `topic=DNS`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(engine, http.MethodPost, "/api/generate-lesson", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestGenerateLessonStoryStepFailure(t *testing.T) {
	repo := &memRepo{lessons: map[string]*entity.Lesson{}}
	engine := newTestEngineWith(failingStoryGen{}, stubQuizGen{}, repo)

	w := doRequest(engine, http.MethodPost, "/api/generate-lesson",
		`{"topic":"DNS","age_group":"teen","difficulty":"beginner"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !strings.Contains(resp.Message, "story generation failed") {
		t.Errorf("message = %q, should name the story step", resp.Message)
	}
	if len(repo.lessons) != 0 {
		t.Error("nothing should be persisted on story failure")
	}
}

func TestGenerateLessonQuizStepFailure(t *testing.T) {
	repo := &memRepo{lessons: map[string]*entity.Lesson{}}
	engine := newTestEngineWith(stubStoryGen{}, failingQuizGen{}, repo)

	w := doRequest(engine, http.MethodPost, "/api/generate-lesson",
		`{"topic":"DNS","age_group":"teen","difficulty":"beginner"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !strings.Contains(resp.Message, "quiz generation failed") {
		t.Errorf("message = %q, should name the quiz step", resp.Message)
	}
	if len(repo.lessons) != 0 {
		t.Error("nothing should be persisted on quiz failure")
	}
}

func TestGetLessonNotFound(t *testing.T) {
	engine := newTestEngine(&memRepo{lessons: map[string]*entity.Lesson{}})
	w := doRequest(engine, http.MethodGet, "/api/lessons/no-such-id", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetLessonRoundTrip(t *testing.T) {
	repo := &memRepo{lessons: map[string]*entity.Lesson{}}
	engine := newTestEngine(repo)

	w := doRequest(engine, http.MethodPost, "/api/generate-lesson",
		`{"topic":"recursion","age_group":"adult","difficulty":"advanced"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("generate status = %d", w.Code)
	}
	var created dto.LessonResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	w = doRequest(engine, http.MethodGet, "/api/lessons/"+created.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var got dto.LessonResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != created.ID || got.Topic != "recursion" {
		t.Errorf("got = %+v", got)
	}
}

func TestListLessons(t *testing.T) {
	repo := &memRepo{lessons: map[string]*entity.Lesson{}}
	engine := newTestEngine(repo)

	for i := 0; i < 2; i++ {
		w := doRequest(engine, http.MethodPost, "/api/generate-lesson",
			`{"topic":"queues","age_group":"child","difficulty":"beginner"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("generate status = %d", w.Code)
		}
	}

	w := doRequest(engine, http.MethodGet, "/api/lessons", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var lessons []dto.LessonResponse
	if err := json.Unmarshal(w.Body.Bytes(), &lessons); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(lessons) != 2 {
		t.Errorf("lessons = %d, want 2", len(lessons))
	}
}
