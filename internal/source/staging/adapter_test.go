package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/timmy/memegen/internal/domain"
)

func TestListTemplates(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ImagesDir), 0o755); err != nil {
		t.Fatal(err)
	}
	localImage := filepath.Join(dir, ImagesDir, "drake.jpg")
	if err := os.WriteFile(localImage, []byte("jpg"), 0o644); err != nil {
		t.Fatal(err)
	}

	manifest := `{"id":"181913649","name":"Drake Hotline Bling","filename":"drake.jpg"}
not json
{"id":"87743020","name":"Two Buttons","url":"https://i.imgflip.com/1g8my4.jpg"}

{"id":"","name":"missing id","url":"https://example.com/x.jpg"}
{"id":"1","name":"no image"}
{"id":"2","name":"missing file","filename":"gone.jpg","url":"https://example.com/fallback.jpg"}
`
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	a := NewAdapter(dir)
	templates, err := a.ListTemplates(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.Template{
		{ID: "181913649", Name: "Drake Hotline Bling", ImageURL: localImage},
		{ID: "87743020", Name: "Two Buttons", ImageURL: "https://i.imgflip.com/1g8my4.jpg"},
		{ID: "2", Name: "missing file", ImageURL: "https://example.com/fallback.jpg"},
	}
	if diff := cmp.Diff(want, templates); diff != "" {
		t.Fatalf("templates mismatch (-want +got):\n%s", diff)
	}

	// Mutating the returned slice must not leak into the cache.
	templates[0].Name = "changed"
	again, _ := a.ListTemplates(context.Background())
	if again[0].Name != "Drake Hotline Bling" {
		t.Error("cached templates were mutated through returned slice")
	}
}

func TestListTemplates_MissingManifest(t *testing.T) {
	a := NewAdapter(t.TempDir())
	if _, err := a.ListTemplates(context.Background()); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}
