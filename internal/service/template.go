package service

import (
	"context"
	"strings"

	"github.com/timmy/memegen/internal/domain"
	"github.com/timmy/memegen/internal/logger"
	"github.com/timmy/memegen/internal/source"
)

// TemplateLookup maps a keyword to a template. Search never fails.
type TemplateLookup interface {
	Search(ctx context.Context, keyword string) domain.Template
	ListAll(ctx context.Context) []domain.Template
}

// TemplateResolver resolves keywords against a template catalog.
// Nothing is cached: every call reads the catalog from its source.
type TemplateResolver struct {
	src      source.TemplateSource
	fallback domain.Template
	index    *TemplateIndex
}

// NewTemplateResolver creates a resolver over src. fallback is returned when
// the catalog cannot be read or is empty.
func NewTemplateResolver(src source.TemplateSource, fallback domain.Template) *TemplateResolver {
	return &TemplateResolver{src: src, fallback: fallback}
}

// WithIndex enables semantic search ahead of name matching.
func (r *TemplateResolver) WithIndex(index *TemplateIndex) *TemplateResolver {
	r.index = index
	return r
}

// Fallback returns the default template.
func (r *TemplateResolver) Fallback() domain.Template {
	return r.fallback
}

// Search returns the best template for keyword. Semantic hits win when an
// index is configured; otherwise the first template whose name contains the
// keyword (case-insensitive), then the first template in the catalog, then
// the default template.
func (r *TemplateResolver) Search(ctx context.Context, keyword string) domain.Template {
	log := logger.FromContext(ctx).WithField(logger.FieldComponent, "template")

	if r.index != nil {
		t, ok, err := r.index.Search(ctx, keyword)
		switch {
		case err != nil:
			log.WithError(err).Warn("Semantic template search failed, falling back to name match")
		case ok:
			return t
		}
	}

	templates, err := r.src.ListTemplates(ctx)
	if err != nil {
		log.WithError(err).Warnf("Template lookup failed, using default template %s", r.fallback.ID)
		return r.fallback
	}
	if len(templates) == 0 {
		log.Warnf("Template catalog is empty, using default template %s", r.fallback.ID)
		return r.fallback
	}

	if t, ok := matchByName(templates, keyword); ok {
		return t
	}
	return templates[0]
}

// ListAll returns the whole catalog, or nothing if it cannot be read.
func (r *TemplateResolver) ListAll(ctx context.Context) []domain.Template {
	templates, err := r.src.ListTemplates(ctx)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Template listing failed")
		return []domain.Template{}
	}
	return templates
}

func matchByName(templates []domain.Template, keyword string) (domain.Template, bool) {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return domain.Template{}, false
	}
	for _, t := range templates {
		if strings.Contains(strings.ToLower(t.Name), needle) {
			return t, true
		}
	}
	return domain.Template{}, false
}
