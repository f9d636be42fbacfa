package service

import (
	"context"
	"errors"
	"sync"

	"github.com/timmy/memegen/internal/domain"
)

var errFake = errors.New("fake collaborator failure")

// scriptedLLM replays replies in order; an error entry fails that call.
type scriptedLLM struct {
	mu      sync.Mutex
	replies []interface{}
	prompts []string
	params  []SamplingParams
}

func (f *scriptedLLM) Complete(ctx context.Context, prompt string, params SamplingParams) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.params = append(f.params, params)
	if len(f.replies) == 0 {
		return "", errFake
	}
	next := f.replies[0]
	f.replies = f.replies[1:]
	if err, ok := next.(error); ok {
		return "", err
	}
	return next.(string), nil
}

func (f *scriptedLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type stubCaptioner struct {
	caption string
	err     error
}

func (s *stubCaptioner) Caption(ctx context.Context, imageLocator string) (string, error) {
	return s.caption, s.err
}

type stubTemplates struct {
	mu       sync.Mutex
	template domain.Template
	searches int
}

func (s *stubTemplates) Search(ctx context.Context, keyword string) domain.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches++
	return s.template
}

func (s *stubTemplates) ListAll(ctx context.Context) []domain.Template {
	return []domain.Template{s.template}
}

type stubDescriber struct{}

func (stubDescriber) Describe(ctx context.Context, imageLocator string) string {
	return "two panels, a man pointing"
}

// stubCaptions hands out captions and scores from scripted sequences.
type stubCaptions struct {
	mu       sync.Mutex
	captions []error // nil entries yield a clean caption
	scores   []domain.HumorScore
	prompts  int
	scored   int
	onScore  func()
}

func (s *stubCaptions) BuildPrompt(keyword, scene, templateName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts++
	return keyword + "|" + scene + "|" + templateName
}

func (s *stubCaptions) GenerateClean(ctx context.Context, prompt string, maxRetries int) (domain.Caption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.captions) > 0 {
		err := s.captions[0]
		s.captions = s.captions[1:]
		if err != nil {
			return domain.Caption{}, err
		}
	}
	return domain.Caption{Top: "Me at 3am", Bottom: "Still debugging"}, nil
}

func (s *stubCaptions) ScoreHumor(ctx context.Context, c domain.Caption) domain.HumorScore {
	s.mu.Lock()
	s.scored++
	var score domain.HumorScore = 8
	if len(s.scores) > 0 {
		score = s.scores[0]
		s.scores = s.scores[1:]
	}
	hook := s.onScore
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return score
}

type renderReply struct {
	url string
	err error
}

type stubRenderer struct {
	mu      sync.Mutex
	replies []renderReply
	calls   int
}

func (s *stubRenderer) Render(ctx context.Context, templateID, top, bottom string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.replies) == 0 {
		return "https://i.imgflip.com/rendered.jpg", nil
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.url, r.err
}

type memoryRecorder struct {
	mu    sync.Mutex
	saved []*domain.Generation
	err   error
}

func (m *memoryRecorder) Create(ctx context.Context, gen *domain.Generation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, gen)
	return nil
}

type stubArchiver struct {
	err error
}

func (s *stubArchiver) Archive(ctx context.Context, generationID, artifactURL string) (*ArchivedArtifact, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ArchivedArtifact{
		Key:    "generations/" + generationID + ".jpg",
		URL:    "https://cdn.example.com/generations/" + generationID + ".jpg",
		Width:  640,
		Height: 480,
	}, nil
}
