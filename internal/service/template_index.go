package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/timmy/memegen/internal/domain"
	"github.com/timmy/memegen/internal/logger"
	"github.com/timmy/memegen/internal/repository"
	"github.com/timmy/memegen/internal/source"
)

const indexBatchSize = 64

// TemplateVectorStore persists and searches template embeddings.
type TemplateVectorStore interface {
	EnsureCollection(ctx context.Context) error
	UpsertTemplates(ctx context.Context, templates []domain.Template, vectors [][]float32) error
	SearchTemplates(ctx context.Context, vector []float32, topK int) ([]repository.TemplateHit, error)
}

// TemplateIndex finds templates by meaning rather than by name substring.
type TemplateIndex struct {
	store          TemplateVectorStore
	embedder       Embedder
	src            source.TemplateSource
	scoreThreshold float32

	buildOnce sync.Once
	buildErr  error
}

// NewTemplateIndex creates a new template index.
func NewTemplateIndex(store TemplateVectorStore, embedder Embedder, src source.TemplateSource, scoreThreshold float32) *TemplateIndex {
	return &TemplateIndex{
		store:          store,
		embedder:       embedder,
		src:            src,
		scoreThreshold: scoreThreshold,
	}
}

// Build embeds every catalog template and upserts it. Only the first call
// does any work; later calls return the first call's result.
func (x *TemplateIndex) Build(ctx context.Context) error {
	x.buildOnce.Do(func() {
		x.buildErr = x.build(ctx)
	})
	return x.buildErr
}

func (x *TemplateIndex) build(ctx context.Context) error {
	if err := x.store.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("failed to ensure template collection: %w", err)
	}

	templates, err := x.src.ListTemplates(ctx)
	if err != nil {
		return fmt.Errorf("failed to list templates for indexing: %w", err)
	}

	for start := 0; start < len(templates); start += indexBatchSize {
		end := start + indexBatchSize
		if end > len(templates) {
			end = len(templates)
		}
		batch := templates[start:end]

		texts := make([]string, len(batch))
		for i, t := range batch {
			texts[i] = t.Name
		}
		vectors, err := x.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed templates: %w", err)
		}
		if err := x.store.UpsertTemplates(ctx, batch, vectors); err != nil {
			return err
		}
	}

	logger.FromContext(ctx).WithField(logger.FieldCount, len(templates)).Info("Template index built")
	return nil
}

// Search returns the closest template to keyword. ok is false when nothing
// scores above the threshold.
func (x *TemplateIndex) Search(ctx context.Context, keyword string) (domain.Template, bool, error) {
	if strings.TrimSpace(keyword) == "" {
		return domain.Template{}, false, nil
	}

	vector, err := x.embedder.EmbedQuery(ctx, keyword)
	if err != nil {
		return domain.Template{}, false, fmt.Errorf("failed to embed keyword: %w", err)
	}

	hits, err := x.store.SearchTemplates(ctx, vector, 1)
	if err != nil {
		return domain.Template{}, false, err
	}
	if len(hits) == 0 || hits[0].Score < x.scoreThreshold {
		return domain.Template{}, false, nil
	}
	return hits[0].Template, true, nil
}
