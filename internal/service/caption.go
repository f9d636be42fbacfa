package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"github.com/timmy/memegen/internal/domain"
	"github.com/timmy/memegen/internal/logger"
	"github.com/timmy/memegen/internal/prompts"
)

// ErrNoCleanCaption is returned when every caption retry produced unusable output.
var ErrNoCleanCaption = errors.New("no clean caption after retries")

// CaptionService writes and scores caption pairs with the text model.
type CaptionService struct {
	llm        TextGenerator
	gate       *QualityGate
	styleHints []string

	mu  sync.Mutex
	rng *rand.Rand
}

// CaptionConfig holds configuration for the caption service.
type CaptionConfig struct {
	BannedFragments []string
	StyleHints      []string
	// Seed makes style-hint selection reproducible; zero picks a random seed.
	Seed int64
}

// NewCaptionService creates a new caption service.
func NewCaptionService(llm TextGenerator, cfg *CaptionConfig) *CaptionService {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	return &CaptionService{
		llm:        llm,
		gate:       NewQualityGate(cfg.BannedFragments),
		styleHints: append([]string(nil), cfg.StyleHints...),
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// Gate returns the quality gate used to filter captions.
func (s *CaptionService) Gate() *QualityGate {
	return s.gate
}

// PickStyleHint returns a style hint chosen uniformly at random.
func (s *CaptionService) PickStyleHint() string {
	if len(s.styleHints) == 0 {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.styleHints[s.rng.Intn(len(s.styleHints))]
}

// BuildPrompt builds the caption prompt with a freshly picked style hint.
func (s *CaptionService) BuildPrompt(keyword, scene, templateName string) string {
	return prompts.Caption(s.PickStyleHint(), scene, templateName, keyword)
}

// GenerateClean asks the text model for captions up to maxRetries times and
// returns the first pair that extracts cleanly and passes the quality gate.
// It returns ErrNoCleanCaption when every try is rejected, or the context
// error if ctx is done.
func (s *CaptionService) GenerateClean(ctx context.Context, prompt string, maxRetries int) (domain.Caption, error) {
	log := logger.FromContext(ctx).WithField(logger.FieldComponent, "caption")

	for i := 1; i <= maxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return domain.Caption{}, err
		}

		raw, err := s.llm.Complete(ctx, prompt, CaptionSampling)
		if err != nil {
			if ctx.Err() != nil {
				return domain.Caption{}, ctx.Err()
			}
			log.WithError(err).Warnf("Caption generation failed (try %d/%d)", i, maxRetries)
			continue
		}

		caption, ok := ExtractCaptions(raw)
		if !ok {
			log.Debugf("Caption output missing labels (try %d/%d)", i, maxRetries)
			continue
		}
		if !s.gate.Accepts(caption) {
			log.WithField("top", caption.Top).WithField("bottom", caption.Bottom).
				Debugf("Caption rejected by quality gate (try %d/%d)", i, maxRetries)
			continue
		}
		return caption, nil
	}

	return domain.Caption{}, ErrNoCleanCaption
}

// ScoreHumor rates a caption pair from 0 to 10. Any failure scores 0.
func (s *CaptionService) ScoreHumor(ctx context.Context, c domain.Caption) domain.HumorScore {
	reply, err := s.llm.Complete(ctx, prompts.HumorScore(c.Top, c.Bottom), ScoreSampling)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Humor scoring failed, scoring 0")
		return domain.MinHumorScore
	}
	return ParseHumorScore(reply)
}
