package story

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	wfmodel "techtales-ai-api/internal/workflow/model"
)

func TestParseStoryDraft(t *testing.T) {
	raw := "```json\n{\"story\":\"Once upon a time...\",\"visual_cues\":[\"a queue of people\",\"a stack of plates\"]}\n```"
	draft, err := ParseStoryDraft(raw)
	if err != nil {
		t.Fatalf("ParseStoryDraft: %v", err)
	}
	if draft.Story != "Once upon a time..." {
		t.Errorf("story = %q", draft.Story)
	}
	if len(draft.VisualCues) != 2 {
		t.Errorf("visual_cues = %v", draft.VisualCues)
	}
}

func TestParseStoryDraftMalformed(t *testing.T) {
	for _, raw := range []string{
		"just prose, no json",
		"",
		`{"visual_cues":["cue"]}`,
		`{"story":"   "}`,
	} {
		if _, err := ParseStoryDraft(raw); err == nil {
			t.Errorf("ParseStoryDraft(%q) should fail", raw)
		}
	}
}

func TestFallbackVisualCues(t *testing.T) {
	cues := FallbackVisualCues("recursion")
	if len(cues) != 3 {
		t.Fatalf("want 3 cues, got %d", len(cues))
	}
	if cues[0] != "Illustration of recursion concept" {
		t.Errorf("cues[0] = %q", cues[0])
	}
	if cues[1] != "Diagram showing recursion components" {
		t.Errorf("cues[1] = %q", cues[1])
	}
	if cues[2] != "Visual metaphor for recursion" {
		t.Errorf("cues[2] = %q", cues[2])
	}
}

type fakeChain struct {
	msg *schema.Message
	err error
}

func (f *fakeChain) Invoke(_ context.Context, _ *wfmodel.StoryGenerateInput) (*schema.Message, error) {
	return f.msg, f.err
}

func TestGeneratorFallbackOnMalformedOutput(t *testing.T) {
	rawText := "Here is a lovely story about recursion, told without any JSON."
	g := NewGenerator(&fakeChain{msg: schema.AssistantMessage(rawText, nil)})

	out, err := g.Generate(context.Background(), &wfmodel.StoryGenerateInput{Topic: "recursion"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !out.Fallback {
		t.Error("expected fallback output")
	}
	if out.Story != rawText {
		t.Errorf("story should be raw text, got %q", out.Story)
	}
	if len(out.VisualCues) != 3 {
		t.Errorf("expected 3 fallback cues, got %d", len(out.VisualCues))
	}
}

func TestGeneratorParsedOutput(t *testing.T) {
	msg := schema.AssistantMessage(`{"story":"The tale of the sorting hat.","visual_cues":["a hat sorting cards"]}`, nil)
	g := NewGenerator(&fakeChain{msg: msg})

	out, err := g.Generate(context.Background(), &wfmodel.StoryGenerateInput{Topic: "sorting"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.Fallback {
		t.Error("unexpected fallback")
	}
	if !strings.Contains(out.Story, "sorting hat") {
		t.Errorf("story = %q", out.Story)
	}
}

func TestGeneratorRequiresTopic(t *testing.T) {
	g := NewGenerator(&fakeChain{})
	if _, err := g.Generate(context.Background(), &wfmodel.StoryGenerateInput{}); err == nil {
		t.Error("expected error for empty topic")
	}
}
