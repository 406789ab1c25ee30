package entity

import (
	"testing"
	"time"
)

func TestNewLesson(t *testing.T) {
	before := time.Now().UTC()
	lesson := NewLesson("recursion", "teen", "beginner", "Once upon a stack...", []string{"cue"}, nil, nil)
	after := time.Now().UTC()

	if lesson.ID == "" {
		t.Fatal("expected non-empty id")
	}
	if lesson.Topic != "recursion" {
		t.Errorf("topic = %q", lesson.Topic)
	}
	if lesson.CreatedAt.Before(before) || lesson.CreatedAt.After(after) {
		t.Errorf("created_at %v outside [%v, %v]", lesson.CreatedAt, before, after)
	}
	if lesson.Images == nil || lesson.Quiz == nil {
		t.Error("nil slices should be normalized to empty")
	}
}

func TestNewLessonUniqueIDs(t *testing.T) {
	a := NewLesson("t", "child", "beginner", "s", nil, nil, nil)
	b := NewLesson("t", "child", "beginner", "s", nil, nil, nil)
	if a.ID == b.ID {
		t.Fatalf("ids should differ, both %q", a.ID)
	}
}

func TestQuizQuestionHasValidAnswer(t *testing.T) {
	q := QuizQuestion{
		Question:      "What is recursion?",
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: "B",
	}
	if !q.HasValidAnswer() {
		t.Error("answer B is present in options")
	}
	q.CorrectAnswer = "E"
	if q.HasValidAnswer() {
		t.Error("answer E is not in options")
	}
}
