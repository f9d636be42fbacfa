package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/memegen/internal/storage"
	_ "golang.org/x/image/webp"
)

const maxArtifactBytes = 20 << 20

// ArchivedArtifact describes a copy of a rendered meme in object storage.
type ArchivedArtifact struct {
	Key    string
	URL    string
	Width  int
	Height int
}

// Archiver copies rendered artifacts somewhere durable.
type Archiver interface {
	Archive(ctx context.Context, generationID, artifactURL string) (*ArchivedArtifact, error)
}

// ArchiveService downloads rendered memes and stores them in object storage.
type ArchiveService struct {
	client *resty.Client
	store  storage.ObjectStorage
	prefix string
}

// NewArchiveService creates a new archive service. Objects land under prefix.
func NewArchiveService(store storage.ObjectStorage, prefix string, timeout time.Duration) *ArchiveService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New()
	client.SetTimeout(timeout)
	return &ArchiveService{
		client: client,
		store:  store,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Archive downloads artifactURL and stores it as <prefix>/<generationID>.<ext>.
// An object already stored under that key is kept as is.
func (s *ArchiveService) Archive(ctx context.Context, generationID, artifactURL string) (*ArchivedArtifact, error) {
	resp, err := s.client.R().SetContext(ctx).Get(artifactURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download artifact: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("failed to download artifact: status %d", resp.StatusCode())
	}
	data := resp.Body()
	if len(data) == 0 {
		return nil, fmt.Errorf("artifact is empty")
	}
	if len(data) > maxArtifactBytes {
		return nil, fmt.Errorf("artifact too large: %d bytes", len(data))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}

	key := path.Join(s.prefix, fmt.Sprintf("%s.%s", generationID, extensionFor(format)))
	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return nil, err
	}
	if !exists {
		err = s.store.Put(ctx, storage.Object{
			Key:         key,
			Body:        data,
			ContentType: "image/" + format,
			Metadata: map[string]string{
				"generation-id": generationID,
				"source-url":    artifactURL,
			},
		})
		if err != nil {
			return nil, err
		}
	}

	return &ArchivedArtifact{
		Key:    key,
		URL:    s.store.URL(key),
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

func extensionFor(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}
