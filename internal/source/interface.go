package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/timmy/memegen/internal/domain"
)

// ErrRenderFailed is matched by errors.Is for every provider-reported render failure.
var ErrRenderFailed = errors.New("render failed")

// RenderError is a render failure reported by the provider itself,
// as opposed to a transport failure.
type RenderError struct {
	Message string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed: %s", e.Message)
}

// Unwrap lets errors.Is match ErrRenderFailed.
func (e *RenderError) Unwrap() error {
	return ErrRenderFailed
}

// TemplateSource defines the interface for meme template catalogs.
type TemplateSource interface {
	// GetSourceID returns the unique identifier for this source.
	GetSourceID() string

	// GetDisplayName returns a human-readable name for this source.
	GetDisplayName() string

	// ListTemplates returns every template in the catalog, in catalog order.
	ListTemplates(ctx context.Context) ([]domain.Template, error)
}

// Renderer draws caption text onto a template and returns the artifact URL.
type Renderer interface {
	// Render returns the URL of the rendered image. A provider-side failure is
	// returned as *RenderError; transport failures are returned wrapped.
	Render(ctx context.Context, templateID, top, bottom string) (string, error)
}
