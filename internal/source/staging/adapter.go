package staging

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/timmy/memegen/internal/domain"
)

const (
	// ManifestFileName is the JSONL manifest file name in a staging catalog.
	ManifestFileName = "manifest.jsonl"
	// ImagesDir is the directory name for locally stored template images.
	ImagesDir = "images"
)

// ManifestItem represents one template line in manifest.jsonl.
// Either URL or Filename must be set; Filename wins when the file exists.
type ManifestItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	BoxCount int    `json:"box_count"`
}

// Adapter implements source.TemplateSource over a local template catalog.
// Template IDs are expected to be render-provider IDs so rendering still works.
type Adapter struct {
	basePath string

	mu        sync.Mutex
	templates []domain.Template
	loaded    bool
}

// NewAdapter creates a new staging adapter rooted at basePath.
func NewAdapter(basePath string) *Adapter {
	return &Adapter{basePath: basePath}
}

// GetSourceID returns the unique identifier for this source.
func (a *Adapter) GetSourceID() string {
	return "staging"
}

// GetDisplayName returns a human-readable name for this source.
func (a *Adapter) GetDisplayName() string {
	return fmt.Sprintf("Staging (%s)", a.basePath)
}

// ListTemplates returns the catalog in manifest order. The manifest is read once.
func (a *Adapter) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.loaded {
		templates, err := a.load()
		if err != nil {
			return nil, fmt.Errorf("failed to load staging templates: %w", err)
		}
		a.templates = templates
		a.loaded = true
	}

	out := make([]domain.Template, len(a.templates))
	copy(out, a.templates)
	return out, nil
}

func (a *Adapter) load() ([]domain.Template, error) {
	manifestPath := filepath.Join(a.basePath, ManifestFileName)
	imagesPath := filepath.Join(a.basePath, ImagesDir)

	file, err := os.Open(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	var templates []domain.Template
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var item ManifestItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			// Skip malformed lines
			continue
		}
		if item.ID == "" || item.Name == "" {
			continue
		}

		image := item.URL
		if item.Filename != "" {
			localPath := filepath.Join(imagesPath, item.Filename)
			if _, err := os.Stat(localPath); err == nil {
				image = localPath
			}
		}
		if image == "" {
			continue
		}

		templates = append(templates, domain.Template{
			ID:       item.ID,
			Name:     item.Name,
			ImageURL: image,
			Width:    item.Width,
			Height:   item.Height,
			BoxCount: item.BoxCount,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading manifest: %w", err)
	}

	return templates, nil
}
