package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/timmy/memegen/internal/config"
	"github.com/timmy/memegen/internal/domain"
)

func newTestCaptionService(llm TextGenerator) *CaptionService {
	return NewCaptionService(llm, &CaptionConfig{
		BannedFragments: config.DefaultBannedFragments,
		StyleHints:      config.DefaultStyleHints,
		Seed:            42,
	})
}

func TestGenerateClean_StopsAtFirstSuccess(t *testing.T) {
	llm := &scriptedLLM{replies: []interface{}{
		"no labels at all",
		"Top text: You MUST laugh\nBottom text: fine",
		"Top text: When the build passes\nBottom text: On the first try",
		"Top text: never\nBottom text: reached",
	}}
	svc := newTestCaptionService(llm)

	got, err := svc.GenerateClean(context.Background(), "prompt", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.Caption{Top: "When the build passes", Bottom: "On the first try"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if llm.calls() != 3 {
		t.Errorf("expected 3 generator calls, got %d", llm.calls())
	}
	for _, p := range llm.params {
		if p != CaptionSampling {
			t.Errorf("caption calls should use caption sampling, got %+v", p)
		}
	}
}

func TestGenerateClean_Exhausted(t *testing.T) {
	llm := &scriptedLLM{replies: []interface{}{
		errFake,
		"Top text: \nBottom text: only bottom",
		"Top text: Follow the RULES\nBottom text: x",
		"Top text: unused\nBottom text: unused",
	}}
	svc := newTestCaptionService(llm)

	_, err := svc.GenerateClean(context.Background(), "prompt", 3)
	if !errors.Is(err, ErrNoCleanCaption) {
		t.Fatalf("expected ErrNoCleanCaption, got %v", err)
	}
	if llm.calls() != 3 {
		t.Errorf("expected exactly 3 generator calls, got %d", llm.calls())
	}
}

func TestGenerateClean_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := &scriptedLLM{}
	_, err := newTestCaptionService(llm).GenerateClean(ctx, "prompt", 3)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if llm.calls() != 0 {
		t.Errorf("no calls expected after cancellation, got %d", llm.calls())
	}
}

func TestScoreHumor(t *testing.T) {
	llm := &scriptedLLM{replies: []interface{}{"I'd say about an 8 out of 10", errFake, "meh"}}
	svc := newTestCaptionService(llm)
	c := domain.Caption{Top: "a", Bottom: "b"}

	if got := svc.ScoreHumor(context.Background(), c); got != 8 {
		t.Errorf("score = %d, want 8", got)
	}
	if got := svc.ScoreHumor(context.Background(), c); got != 0 {
		t.Errorf("failed scoring call should score 0, got %d", got)
	}
	if got := svc.ScoreHumor(context.Background(), c); got != 0 {
		t.Errorf("unparseable reply should score 0, got %d", got)
	}
	if llm.params[0] != ScoreSampling {
		t.Errorf("scoring should use score sampling, got %+v", llm.params[0])
	}
	if !strings.Contains(llm.prompts[0], "a") || !strings.Contains(llm.prompts[0], "b") {
		t.Error("score prompt should include both lines")
	}
}

func TestBuildPrompt(t *testing.T) {
	svc := newTestCaptionService(&scriptedLLM{})
	prompt := svc.BuildPrompt("cats", "a cat on a laptop", "Distracted Boyfriend")

	for _, want := range []string{"cats", "a cat on a laptop", "Distracted Boyfriend"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	found := false
	for _, hint := range config.DefaultStyleHints {
		if strings.Contains(prompt, hint) {
			found = true
		}
	}
	if !found {
		t.Error("prompt should include one of the style hints")
	}
}

func TestPickStyleHintCoversSet(t *testing.T) {
	svc := newTestCaptionService(&scriptedLLM{})
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		seen[svc.PickStyleHint()] = true
	}
	if len(seen) != len(config.DefaultStyleHints) {
		t.Errorf("expected every hint to be picked, saw %d of %d", len(seen), len(config.DefaultStyleHints))
	}

	empty := NewCaptionService(&scriptedLLM{}, &CaptionConfig{})
	if empty.PickStyleHint() != "" {
		t.Error("no hints configured should yield empty hint")
	}
}

func TestImageDescriber(t *testing.T) {
	tests := []struct {
		name      string
		captioner ImageCaptioner
		replies   []interface{}
		want      string
		wantShort string
	}{
		{
			name:      "both stages succeed",
			captioner: &stubCaptioner{caption: "a dog in a hat"},
			replies:   []interface{}{"  A small dog wears a large hat.  "},
			want:      "A small dog wears a large hat.",
			wantShort: "a dog in a hat",
		},
		{
			name:      "captioner fails",
			captioner: &stubCaptioner{err: errFake},
			replies:   []interface{}{"A person stands in a room."},
			want:      "A person stands in a room.",
			wantShort: FallbackImageCaption,
		},
		{
			name:      "expansion fails",
			captioner: &stubCaptioner{caption: "a dog in a hat"},
			replies:   []interface{}{errFake},
			want:      "a dog in a hat",
			wantShort: "a dog in a hat",
		},
		{
			name:      "both fail",
			captioner: &stubCaptioner{err: errFake},
			replies:   []interface{}{errFake},
			want:      FallbackImageCaption,
			wantShort: FallbackImageCaption,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &scriptedLLM{replies: tt.replies}
			got := NewImageDescriber(tt.captioner, llm).Describe(context.Background(), "https://i.imgflip.com/x.jpg")
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if !strings.Contains(llm.prompts[0], tt.wantShort) {
				t.Errorf("expansion prompt should embed %q", tt.wantShort)
			}
			if llm.params[0] != SceneSampling {
				t.Errorf("expansion should use scene sampling, got %+v", llm.params[0])
			}
		})
	}
}
