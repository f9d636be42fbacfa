package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/memegen/internal/domain"
	"github.com/timmy/memegen/internal/logger"
	"github.com/timmy/memegen/internal/source"
)

var (
	// ErrEmptyKeyword is returned when generation is requested without a keyword.
	ErrEmptyKeyword = errors.New("keyword is required")
	// ErrNoArtifact is recorded when the renderer reports success but returns no URL.
	ErrNoArtifact = errors.New("renderer returned no artifact")
)

// SceneDescriber turns a template image into a scene description. It never fails.
type SceneDescriber interface {
	Describe(ctx context.Context, imageLocator string) string
}

// CaptionWriter builds caption prompts, generates clean captions and scores them.
type CaptionWriter interface {
	BuildPrompt(keyword, scene, templateName string) string
	GenerateClean(ctx context.Context, prompt string, maxRetries int) (domain.Caption, error)
	ScoreHumor(ctx context.Context, c domain.Caption) domain.HumorScore
}

// GenerationRecorder stores accepted generations.
type GenerationRecorder interface {
	Create(ctx context.Context, gen *domain.Generation) error
}

// GenerationConfig holds the tunables copied into a MemeService at construction.
// Non-positive counts fall back to defaults. HumorThreshold 0 accepts every
// rendered meme; only a negative threshold falls back to the default.
type GenerationConfig struct {
	RetryLimit     int
	HumorThreshold int
	CaptionRetries int
	Workers        int
}

const defaultHumorThreshold = 7

func (c GenerationConfig) withDefaults() GenerationConfig {
	if c.RetryLimit <= 0 {
		c.RetryLimit = 3
	}
	if c.HumorThreshold < 0 {
		c.HumorThreshold = defaultHumorThreshold
	}
	if c.CaptionRetries <= 0 {
		c.CaptionRetries = 3
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return c
}

// MemeService drives generation attempts until one clears every gate.
type MemeService struct {
	templates TemplateLookup
	describer SceneDescriber
	captions  CaptionWriter
	renderer  source.Renderer
	recorder  GenerationRecorder
	archiver  Archiver
	cfg       GenerationConfig
	now       func() time.Time
}

// MemeServiceDeps bundles the collaborators of a MemeService.
// Recorder and Archiver are optional.
type MemeServiceDeps struct {
	Templates TemplateLookup
	Describer SceneDescriber
	Captions  CaptionWriter
	Renderer  source.Renderer
	Recorder  GenerationRecorder
	Archiver  Archiver
}

// NewMemeService creates a new meme service.
func NewMemeService(deps MemeServiceDeps, cfg GenerationConfig) *MemeService {
	return &MemeService{
		templates: deps.Templates,
		describer: deps.Describer,
		captions:  deps.Captions,
		renderer:  deps.Renderer,
		recorder:  deps.Recorder,
		archiver:  deps.Archiver,
		cfg:       cfg.withDefaults(),
		now:       time.Now,
	}
}

// Config returns the effective generation settings.
func (s *MemeService) Config() GenerationConfig {
	return s.cfg
}

// Generate runs up to retryLimit independent attempts for keyword and returns
// the first accepted generation. A non-positive retryLimit uses the configured
// default. When every attempt is rejected it returns (nil, nil). When ctx is
// done it returns ctx.Err() and nothing is committed for the interrupted attempt.
func (s *MemeService) Generate(ctx context.Context, keyword string, retryLimit int) (*domain.Generation, error) {
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}
	if retryLimit <= 0 {
		retryLimit = s.cfg.RetryLimit
	}

	generationID := uuid.NewString()
	ctx = logger.SetGenerationID(ctx, generationID)
	ctx = logger.WithField(ctx, logger.FieldKeyword, keyword)
	start := s.now()

	for attempt := 1; attempt <= retryLimit; attempt++ {
		if err := ctx.Err(); err != nil {
			logger.CtxInfo(ctx, "Generation canceled before attempt %d", attempt)
			return nil, err
		}

		attemptCtx := logger.SetAttempt(ctx, attempt)
		attemptStart := s.now()
		outcome := s.runAttempt(attemptCtx, attempt, keyword)

		entry := logger.With(logger.Fields{}).
			WithTemplate(outcome.Template.ID).
			WithScore(int(outcome.Score)).
			WithDuration(attemptStart).
			WithStatus(outcome.Failure.String())

		switch {
		case outcome.Accepted():
			entry.Info(attemptCtx, "Attempt %d/%d accepted", attempt, retryLimit)
			gen := s.accept(attemptCtx, generationID, keyword, &outcome)
			logger.With(logger.Fields{}).WithAttempts(attempt).WithScore(int(outcome.Score)).
				WithDuration(start).WithStatus("accepted").
				Info(ctx, "Generation succeeded")
			return gen, nil

		case outcome.Failure == domain.FailureCanceled:
			entry.Info(attemptCtx, "Attempt %d/%d interrupted at %s", attempt, retryLimit, outcome.FailedStage)
			return nil, outcome.Err

		case outcome.Failure.Retryable():
			if outcome.Err != nil {
				entry.WithField("error", outcome.Err.Error()).
					Warn(attemptCtx, "Attempt %d/%d rejected at %s", attempt, retryLimit, outcome.FailedStage)
			} else {
				entry.Info(attemptCtx, "Attempt %d/%d rejected at %s", attempt, retryLimit, outcome.FailedStage)
			}

		default:
			return nil, fmt.Errorf("attempt %d ended in unexpected state %s", attempt, outcome.Failure)
		}
	}

	logger.With(logger.Fields{}).WithAttempts(retryLimit).WithDuration(start).WithStatus("exhausted").
		Warn(ctx, "No attempt cleared the humor threshold")
	return nil, nil
}

// runAttempt executes one attempt stage by stage. Panics inside a collaborator
// are contained to the attempt.
func (s *MemeService) runAttempt(ctx context.Context, number int, keyword string) (outcome domain.AttemptOutcome) {
	outcome.Number = number
	stage := domain.StageResolvingTemplate

	defer func() {
		if r := recover(); r != nil {
			outcome.Failure = domain.FailureCollaborator
			outcome.FailedStage = stage
			outcome.Err = fmt.Errorf("panic: %v", r)
		}
	}()

	fail := func(kind domain.FailureKind, err error) domain.AttemptOutcome {
		if ctxErr := ctx.Err(); ctxErr != nil {
			kind, err = domain.FailureCanceled, ctxErr
		}
		outcome.Failure = kind
		outcome.FailedStage = stage
		outcome.Err = err
		return outcome
	}

	outcome.Template = s.templates.Search(logger.SetStage(ctx, string(stage)), keyword)
	if outcome.Template.IsZero() {
		return fail(domain.FailureCollaborator, fmt.Errorf("no template resolved"))
	}
	ctx = logger.WithField(ctx, logger.FieldTemplateID, outcome.Template.ID)

	stage = domain.StageDescribingImage
	outcome.Scene = s.describer.Describe(logger.SetStage(ctx, string(stage)), outcome.Template.ImageURL)
	if err := ctx.Err(); err != nil {
		return fail(domain.FailureCanceled, err)
	}

	stage = domain.StageBuildingPrompt
	prompt := s.captions.BuildPrompt(keyword, outcome.Scene, outcome.Template.Name)

	stage = domain.StageGeneratingCaptions
	caption, err := s.captions.GenerateClean(logger.SetStage(ctx, string(stage)), prompt, s.cfg.CaptionRetries)
	if err != nil {
		if errors.Is(err, ErrNoCleanCaption) {
			return fail(domain.FailureNoCaptions, err)
		}
		return fail(domain.FailureCollaborator, err)
	}
	outcome.Caption = caption

	stage = domain.StageRendering
	url, err := s.renderer.Render(logger.SetStage(ctx, string(stage)), outcome.Template.ID, caption.Top, caption.Bottom)
	if err != nil {
		return fail(domain.FailureRender, err)
	}
	if url == "" {
		return fail(domain.FailureRender, ErrNoArtifact)
	}
	outcome.ArtifactURL = url

	stage = domain.StageScoring
	outcome.Score = s.captions.ScoreHumor(logger.SetStage(ctx, string(stage)), caption)
	if err := ctx.Err(); err != nil {
		return fail(domain.FailureCanceled, err)
	}
	if int(outcome.Score) < s.cfg.HumorThreshold {
		return fail(domain.FailureBelowThreshold, nil)
	}

	outcome.Failure = domain.FailureNone
	return outcome
}

// accept promotes an accepted attempt to a Generation. Archive and history
// are best effort and never undo the acceptance.
func (s *MemeService) accept(ctx context.Context, generationID, keyword string, outcome *domain.AttemptOutcome) *domain.Generation {
	gen := &domain.Generation{
		ID:           generationID,
		Keyword:      keyword,
		TemplateID:   outcome.Template.ID,
		TemplateName: outcome.Template.Name,
		TopText:      outcome.Caption.Top,
		BottomText:   outcome.Caption.Bottom,
		Score:        outcome.Score,
		URL:          outcome.ArtifactURL,
		Width:        outcome.Template.Width,
		Height:       outcome.Template.Height,
		AttemptsUsed: outcome.Number,
		CreatedAt:    s.now(),
	}

	// The artifact already exists; an interrupt should not lose its record.
	persistCtx := context.WithoutCancel(ctx)

	if s.archiver != nil {
		archived, err := s.archiver.Archive(persistCtx, generationID, gen.URL)
		if err != nil {
			logger.FromContext(ctx).WithError(err).Warn("Failed to archive generation")
		} else {
			gen.ArchiveKey = archived.Key
			gen.ArchiveURL = archived.URL
			gen.Width = archived.Width
			gen.Height = archived.Height
		}
	}

	if s.recorder != nil {
		if err := s.recorder.Create(persistCtx, gen); err != nil {
			logger.FromContext(ctx).WithError(err).Warn("Failed to record generation")
		}
	}

	return gen
}
