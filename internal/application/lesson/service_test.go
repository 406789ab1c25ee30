package lesson

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"techtales-ai-api/internal/application/lesson/quiz"
	"techtales-ai-api/internal/application/lesson/story"
	"techtales-ai-api/internal/config"
	"techtales-ai-api/internal/domain/entity"
	wfmodel "techtales-ai-api/internal/workflow/model"
	apperrors "techtales-ai-api/pkg/errors"
)

type fakeStoryGen struct {
	out *story.Output
	err error
}

func (f *fakeStoryGen) Generate(_ context.Context, _ *wfmodel.StoryGenerateInput) (*story.Output, error) {
	return f.out, f.err
}

type fakeQuizGen struct {
	out *quiz.Output
	err error
}

func (f *fakeQuizGen) Generate(_ context.Context, _ *wfmodel.QuizGenerateInput) (*quiz.Output, error) {
	return f.out, f.err
}

type fakeIllustrationGen struct {
	images []string
}

func (f *fakeIllustrationGen) Generate(_ context.Context, _ []string) []string {
	return f.images
}

type fakeRepo struct {
	lessons   map[string]*entity.Lesson
	createErr error
	getErr    error
	listErr   error
	getCalls  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{lessons: make(map[string]*entity.Lesson)}
}

func (r *fakeRepo) Create(_ context.Context, lesson *entity.Lesson) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.lessons[lesson.ID] = lesson
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*entity.Lesson, error) {
	r.getCalls++
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.lessons[id], nil
}

func (r *fakeRepo) List(_ context.Context, limit int) ([]*entity.Lesson, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*entity.Lesson, 0, len(r.lessons))
	for _, l := range r.lessons {
		if len(out) >= limit {
			break
		}
		out = append(out, l)
	}
	return out, nil
}

type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) GetOrLoadSafe(_ context.Context, key string, _ time.Duration, loader func() (interface{}, error)) ([]byte, error) {
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	data, err := loader()
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	c.data[key] = b
	return b, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Lesson.ListLimit = 100
	cfg.Lesson.CacheTTL = time.Minute
	cfg.Illustration.MaxImages = 3
	return cfg
}

func newTestService(storyGen StoryGenerator, quizGen QuizGenerator, repo *fakeRepo, cache Cache) *Service {
	return NewService(storyGen, quizGen, &fakeIllustrationGen{images: []string{"img1", "img2"}}, repo, cache, testConfig())
}

func TestGenerateLesson(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := newTestService(
		&fakeStoryGen{out: &story.Output{Story: "a story", VisualCues: []string{"cue1", "cue2"}}},
		&fakeQuizGen{out: &quiz.Output{Questions: []entity.QuizQuestion{{Question: "q", Options: []string{"a", "b"}, CorrectAnswer: "a"}}}},
		repo, cache,
	)

	lesson, err := svc.GenerateLesson(context.Background(), &GenerateRequest{Topic: "DNS", AgeGroup: "teen", Difficulty: "beginner"})
	if err != nil {
		t.Fatalf("GenerateLesson: %v", err)
	}
	if lesson.ID == "" {
		t.Error("lesson should have an id")
	}
	if lesson.Story != "a story" {
		t.Errorf("story = %q", lesson.Story)
	}
	if len(lesson.Images) != 2 {
		t.Errorf("images = %d", len(lesson.Images))
	}
	if _, ok := repo.lessons[lesson.ID]; !ok {
		t.Error("lesson should be persisted")
	}
	if len(cache.data) != 1 {
		t.Error("lesson cache should be warmed")
	}
}

func TestGenerateLessonStoryFailure(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(
		&fakeStoryGen{err: errors.New("llm unreachable")},
		&fakeQuizGen{},
		repo, newFakeCache(),
	)

	_, err := svc.GenerateLesson(context.Background(), &GenerateRequest{Topic: "DNS"})
	if err == nil {
		t.Fatal("expected error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeStoryGenerationFailed {
		t.Errorf("expected story generation error, got %v", err)
	}
	if len(repo.lessons) != 0 {
		t.Error("nothing should be persisted on story failure")
	}
}

func TestGenerateLessonQuizFailure(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(
		&fakeStoryGen{out: &story.Output{Story: "a story", VisualCues: []string{"cue"}}},
		&fakeQuizGen{err: errors.New("llm unreachable")},
		repo, newFakeCache(),
	)

	_, err := svc.GenerateLesson(context.Background(), &GenerateRequest{Topic: "DNS"})
	if err == nil {
		t.Fatal("expected error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeQuizGenerationFailed {
		t.Errorf("expected quiz generation error, got %v", err)
	}
	if len(repo.lessons) != 0 {
		t.Error("nothing should be persisted on quiz failure")
	}
}

func TestGetLessonNotFound(t *testing.T) {
	svc := newTestService(&fakeStoryGen{}, &fakeQuizGen{}, newFakeRepo(), newFakeCache())

	_, err := svc.GetLesson(context.Background(), "missing-id")
	if err == nil {
		t.Fatal("expected error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeLessonNotFound {
		t.Errorf("expected lesson not found, got %v", err)
	}
}

func TestGetLessonCacheHit(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := newTestService(
		&fakeStoryGen{out: &story.Output{Story: "s", VisualCues: []string{"c"}}},
		&fakeQuizGen{out: &quiz.Output{}},
		repo, cache,
	)

	lesson, err := svc.GenerateLesson(context.Background(), &GenerateRequest{Topic: "DNS"})
	if err != nil {
		t.Fatalf("GenerateLesson: %v", err)
	}

	got, err := svc.GetLesson(context.Background(), lesson.ID)
	if err != nil {
		t.Fatalf("GetLesson: %v", err)
	}
	if got.ID != lesson.ID {
		t.Errorf("id = %q, want %q", got.ID, lesson.ID)
	}
	if repo.getCalls != 0 {
		t.Errorf("repository should not be hit on cache hit, calls = %d", repo.getCalls)
	}
}

func TestGetLessonReadThrough(t *testing.T) {
	repo := newFakeRepo()
	lesson := entity.NewLesson("DNS", "teen", "beginner", "s", nil, nil, nil)
	repo.lessons[lesson.ID] = lesson

	cache := newFakeCache()
	svc := newTestService(&fakeStoryGen{}, &fakeQuizGen{}, repo, cache)

	// 第一次读：缓存未命中，loader 回源并回填
	got, err := svc.GetLesson(context.Background(), lesson.ID)
	if err != nil {
		t.Fatalf("GetLesson: %v", err)
	}
	if got.ID != lesson.ID {
		t.Errorf("id = %q, want %q", got.ID, lesson.ID)
	}
	if repo.getCalls != 1 {
		t.Errorf("repository calls = %d, want 1", repo.getCalls)
	}

	// 第二次读：命中回填的缓存，不再回源
	if _, err := svc.GetLesson(context.Background(), lesson.ID); err != nil {
		t.Fatalf("GetLesson (cached): %v", err)
	}
	if repo.getCalls != 1 {
		t.Errorf("repository calls after cached read = %d, want 1", repo.getCalls)
	}
}

func TestListLessons(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(
		&fakeStoryGen{out: &story.Output{Story: "s", VisualCues: nil}},
		&fakeQuizGen{out: &quiz.Output{}},
		repo, newFakeCache(),
	)

	for i := 0; i < 3; i++ {
		if _, err := svc.GenerateLesson(context.Background(), &GenerateRequest{Topic: "DNS"}); err != nil {
			t.Fatalf("GenerateLesson: %v", err)
		}
	}

	lessons, err := svc.ListLessons(context.Background())
	if err != nil {
		t.Fatalf("ListLessons: %v", err)
	}
	if len(lessons) != 3 {
		t.Errorf("lessons = %d, want 3", len(lessons))
	}
}
