package illustration

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"testing"
)

func decodePNG(t *testing.T, encoded string) (width, height int) {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("not valid base64: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("not valid png: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestRendererOutputDimensions(t *testing.T) {
	r := NewRenderer(512, 384)
	encoded, err := r.Render("a diagram of the osi layer model", 0)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	w, h := decodePNG(t, encoded)
	if w != 512 || h != 384 {
		t.Errorf("dimensions = %dx%d, want 512x384", w, h)
	}
}

func TestRendererAllMotifs(t *testing.T) {
	r := NewRenderer(512, 384)
	cues := []string{
		"the osi layer model",
		"a network of three nodes",
		"a database storing records",
		"a plain concept box",
	}
	for i, cue := range cues {
		if _, err := r.Render(cue, i); err != nil {
			t.Errorf("Render(%q): %v", cue, err)
		}
	}
}

func TestRendererDeterministic(t *testing.T) {
	r := NewRenderer(512, 384)
	a, err := r.Render("a queue of people at a bakery", 1)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, err := r.Render("a queue of people at a bakery", 1)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if a != b {
		t.Error("same cue and index should render identical output")
	}
}

func TestDetectMotif(t *testing.T) {
	cases := []struct {
		cue  string
		want Motif
	}{
		{"the OSI layer stack", MotifLayers},
		{"seven Layers of networking", MotifLayers},
		{"a network of routers", MotifNetwork},
		{"data flowing through pipes", MotifDatabase},
		{"a database cylinder", MotifDatabase},
		{"a happy robot", MotifGeneric},
	}
	for _, tc := range cases {
		if got := DetectMotif(tc.cue); got != tc.want {
			t.Errorf("DetectMotif(%q) = %q, want %q", tc.cue, got, tc.want)
		}
	}
}

func TestGeneratorCapsImages(t *testing.T) {
	g := NewGenerator(NewRenderer(512, 384), 3)
	cues := []string{"one", "two", "three", "four", "five"}
	images := g.Generate(context.Background(), cues)
	if len(images) != 3 {
		t.Errorf("expected 3 images, got %d", len(images))
	}
}

func TestGeneratorEmptyCues(t *testing.T) {
	g := NewGenerator(NewRenderer(512, 384), 3)
	images := g.Generate(context.Background(), nil)
	if images == nil || len(images) != 0 {
		t.Errorf("expected empty slice, got %v", images)
	}
}
