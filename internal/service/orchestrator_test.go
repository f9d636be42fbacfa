package service

import (
	"context"
	"errors"
	"testing"

	"github.com/timmy/memegen/internal/domain"
	"github.com/timmy/memegen/internal/source"
)

var testTemplate = domain.Template{ID: "181913649", Name: "Drake Hotline Bling", ImageURL: "https://i.imgflip.com/30b1gx.jpg"}

type orchestratorFixture struct {
	templates *stubTemplates
	captions  *stubCaptions
	renderer  *stubRenderer
	recorder  *memoryRecorder
	archiver  *stubArchiver
}

func newFixture() *orchestratorFixture {
	return &orchestratorFixture{
		templates: &stubTemplates{template: testTemplate},
		captions:  &stubCaptions{},
		renderer:  &stubRenderer{},
		recorder:  &memoryRecorder{},
	}
}

func (f *orchestratorFixture) service(cfg GenerationConfig) *MemeService {
	deps := MemeServiceDeps{
		Templates: f.templates,
		Describer: stubDescriber{},
		Captions:  f.captions,
		Renderer:  f.renderer,
		Recorder:  f.recorder,
	}
	if f.archiver != nil {
		deps.Archiver = f.archiver
	}
	return NewMemeService(deps, cfg)
}

func TestGenerate_AcceptsFirstPassingAttempt(t *testing.T) {
	f := newFixture()
	f.captions.scores = []domain.HumorScore{5, 9, 10}
	svc := f.service(GenerationConfig{RetryLimit: 3, HumorThreshold: 7})

	gen, err := svc.Generate(context.Background(), "drake", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen == nil {
		t.Fatal("expected a generation")
	}
	if gen.AttemptsUsed != 2 {
		t.Errorf("expected acceptance on attempt 2, got %d", gen.AttemptsUsed)
	}
	if gen.Score != 9 || gen.URL != "https://i.imgflip.com/rendered.jpg" {
		t.Errorf("unexpected generation %+v", gen)
	}
	if gen.TemplateID != testTemplate.ID || gen.Keyword != "drake" {
		t.Errorf("unexpected template/keyword %s/%s", gen.TemplateID, gen.Keyword)
	}
	if f.captions.scored != 2 {
		t.Errorf("no attempts should run after acceptance, scored %d", f.captions.scored)
	}
	if f.templates.searches != 2 {
		t.Errorf("template should be re-resolved per attempt, got %d searches", f.templates.searches)
	}
	if len(f.recorder.saved) != 1 || f.recorder.saved[0] != gen {
		t.Errorf("only the accepted generation should be recorded, got %d", len(f.recorder.saved))
	}
}

func TestGenerate_RenderFailsEveryTime(t *testing.T) {
	f := newFixture()
	f.renderer.replies = []renderReply{
		{err: &source.RenderError{Message: "No texts specified"}},
		{url: ""},
		{err: errFake},
		{url: "https://never.example.com"},
	}
	svc := f.service(GenerationConfig{RetryLimit: 3})

	gen, err := svc.Generate(context.Background(), "cats", 3)
	if err != nil {
		t.Fatalf("exhaustion should not be an error, got %v", err)
	}
	if gen != nil {
		t.Fatalf("expected no result, got %+v", gen)
	}
	if f.renderer.calls != 3 {
		t.Errorf("expected exactly 3 render attempts, got %d", f.renderer.calls)
	}
	if f.captions.scored != 0 {
		t.Errorf("failed renders must not be scored, scored %d", f.captions.scored)
	}
	if len(f.recorder.saved) != 0 {
		t.Error("rejected attempts must not be recorded")
	}
}

func TestGenerate_NoCaptionsSkipsRenderAndScore(t *testing.T) {
	f := newFixture()
	f.captions.captions = []error{ErrNoCleanCaption, errFake, nil}
	svc := f.service(GenerationConfig{RetryLimit: 3})

	gen, err := svc.Generate(context.Background(), "cats", 3)
	if err != nil || gen == nil {
		t.Fatalf("expected success on attempt 3, got %v, %v", gen, err)
	}
	if gen.AttemptsUsed != 3 {
		t.Errorf("attempts used = %d, want 3", gen.AttemptsUsed)
	}
	if f.renderer.calls != 1 {
		t.Errorf("render should only run when captions exist, got %d calls", f.renderer.calls)
	}
}

func TestGenerate_BelowThresholdExhausts(t *testing.T) {
	f := newFixture()
	f.captions.scores = []domain.HumorScore{6, 6, 6, 10}
	svc := f.service(GenerationConfig{RetryLimit: 3, HumorThreshold: 7})

	gen, err := svc.Generate(context.Background(), "cats", 0)
	if err != nil || gen != nil {
		t.Fatalf("expected (nil, nil), got %v, %v", gen, err)
	}
	if f.captions.scored != 3 {
		t.Errorf("expected 3 scored attempts, got %d", f.captions.scored)
	}
}

func TestGenerate_ThresholdIsInclusive(t *testing.T) {
	f := newFixture()
	f.captions.scores = []domain.HumorScore{7}
	gen, err := f.service(GenerationConfig{HumorThreshold: 7}).Generate(context.Background(), "cats", 1)
	if err != nil || gen == nil {
		t.Fatalf("score equal to threshold should be accepted, got %v, %v", gen, err)
	}
}

func TestGenerate_ZeroThresholdAcceptsAnyScore(t *testing.T) {
	f := newFixture()
	f.captions.scores = []domain.HumorScore{0}
	gen, err := f.service(GenerationConfig{HumorThreshold: 0}).Generate(context.Background(), "cats", 1)
	if err != nil || gen == nil {
		t.Fatalf("threshold 0 should accept any rendered meme, got %v, %v", gen, err)
	}
}

func TestGenerationConfigDefaults(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-1, defaultHumorThreshold},
		{0, 0},
		{9, 9},
	}
	for _, tt := range tests {
		if got := (GenerationConfig{HumorThreshold: tt.in}).withDefaults().HumorThreshold; got != tt.want {
			t.Errorf("HumorThreshold %d -> %d, want %d", tt.in, got, tt.want)
		}
	}
}

type panickyRenderer struct{ calls int }

func (p *panickyRenderer) Render(ctx context.Context, templateID, top, bottom string) (string, error) {
	p.calls++
	if p.calls == 1 {
		panic("boom")
	}
	return "https://i.imgflip.com/ok.jpg", nil
}

func TestGenerate_PanicIsContainedToAttempt(t *testing.T) {
	f := newFixture()
	renderer := &panickyRenderer{}
	svc := NewMemeService(MemeServiceDeps{
		Templates: f.templates,
		Describer: stubDescriber{},
		Captions:  f.captions,
		Renderer:  renderer,
	}, GenerationConfig{RetryLimit: 2})

	gen, err := svc.Generate(context.Background(), "cats", 2)
	if err != nil || gen == nil {
		t.Fatalf("expected recovery on attempt 2, got %v, %v", gen, err)
	}
	if gen.AttemptsUsed != 2 {
		t.Errorf("attempts used = %d, want 2", gen.AttemptsUsed)
	}
}

func TestGenerate_EmptyKeyword(t *testing.T) {
	_, err := newFixture().service(GenerationConfig{}).Generate(context.Background(), "", 3)
	if !errors.Is(err, ErrEmptyKeyword) {
		t.Fatalf("expected ErrEmptyKeyword, got %v", err)
	}
}

func TestGenerate_CanceledBeforeStart(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen, err := f.service(GenerationConfig{}).Generate(ctx, "cats", 3)
	if !errors.Is(err, context.Canceled) || gen != nil {
		t.Fatalf("expected cancellation, got %v, %v", gen, err)
	}
	if f.templates.searches != 0 {
		t.Error("no attempt should start after cancellation")
	}
}

func TestGenerate_CanceledMidAttemptCommitsNothing(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	f.captions.onScore = cancel
	f.captions.scores = []domain.HumorScore{10}

	gen, err := f.service(GenerationConfig{}).Generate(ctx, "cats", 3)
	if !errors.Is(err, context.Canceled) || gen != nil {
		t.Fatalf("expected cancellation, got %v, %v", gen, err)
	}
	if len(f.recorder.saved) != 0 {
		t.Error("interrupted attempt must not be recorded")
	}
	if f.renderer.calls != 1 {
		t.Errorf("expected one render before interruption, got %d", f.renderer.calls)
	}
}

func TestGenerate_ArchiveEnrichesAcceptedResult(t *testing.T) {
	f := newFixture()
	f.archiver = &stubArchiver{}
	gen, err := f.service(GenerationConfig{}).Generate(context.Background(), "cats", 1)
	if err != nil || gen == nil {
		t.Fatalf("unexpected %v, %v", gen, err)
	}
	if gen.ArchiveKey != "generations/"+gen.ID+".jpg" || gen.Width != 640 {
		t.Errorf("archive details not applied: %+v", gen)
	}
}

func TestGenerate_ArchiveAndRecordFailuresKeepResult(t *testing.T) {
	f := newFixture()
	f.archiver = &stubArchiver{err: errFake}
	f.recorder.err = errFake
	gen, err := f.service(GenerationConfig{}).Generate(context.Background(), "cats", 1)
	if err != nil || gen == nil {
		t.Fatalf("persistence failures must not drop the result, got %v, %v", gen, err)
	}
	if gen.ArchiveKey != "" {
		t.Errorf("failed archive should leave key empty, got %q", gen.ArchiveKey)
	}
}
