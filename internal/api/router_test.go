package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/timmy/memegen/internal/api/handler"
	"github.com/timmy/memegen/internal/config"
	"github.com/timmy/memegen/internal/domain"
	"github.com/timmy/memegen/internal/logger"
	"github.com/timmy/memegen/internal/repository"
)

type fakeGenerator struct {
	keyword string
	n       int
	retry   int
	out     []*domain.Generation
	err     error
}

func (f *fakeGenerator) GenerateN(ctx context.Context, keyword string, n, retryLimit int) ([]*domain.Generation, error) {
	f.keyword, f.n, f.retry = keyword, n, retryLimit
	return f.out, f.err
}

type fakeTemplates struct{}

func (fakeTemplates) ListAll(ctx context.Context) []domain.Template {
	return []domain.Template{{ID: "181913649", Name: "Drake Hotline Bling"}}
}

type fakeGenerations struct {
	gens []domain.Generation
}

func (f *fakeGenerations) List(ctx context.Context, keyword string, limit, offset int) ([]domain.Generation, int64, error) {
	return f.gens, int64(len(f.gens)), nil
}

func (f *fakeGenerations) GetByID(ctx context.Context, id string) (*domain.Generation, error) {
	for i := range f.gens {
		if f.gens[i].ID == id {
			return &f.gens[i], nil
		}
	}
	return nil, repository.ErrGenerationNotFound
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

func newTestRouter(gen *fakeGenerator, ping handler.Pinger) http.Handler {
	return SetupRouter(Services{
		Generator:   gen,
		Templates:   fakeTemplates{},
		Generations: &fakeGenerations{gens: []domain.Generation{{ID: "g1", Keyword: "cats", URL: "https://i.imgflip.com/a.jpg"}}},
		DB:          ping,
	}, config.ServerConfig{Mode: "test", CORS: config.CORSConfig{AllowAllOrigins: true}}, logger.GetDefault())
}

func TestGenerateEndpoint(t *testing.T) {
	gen := &fakeGenerator{out: []*domain.Generation{{ID: "g1", URL: "https://i.imgflip.com/a.jpg", Score: 8}}}
	router := newTestRouter(gen, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/memes/generate", strings.NewReader(`{"keyword":"cats","count":3}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp handler.GenerateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Requested != 3 || resp.Generated != 1 || resp.Memes[0].URL != "https://i.imgflip.com/a.jpg" {
		t.Errorf("unexpected response %+v", resp)
	}
	if gen.keyword != "cats" || gen.n != 3 || gen.retry != 0 {
		t.Errorf("generator called with %q/%d/%d", gen.keyword, gen.n, gen.retry)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected request ID header")
	}
}

func TestGenerateEndpoint_Validation(t *testing.T) {
	router := newTestRouter(&fakeGenerator{}, nil)
	for _, body := range []string{`{}`, `{"keyword":"cats","count":50}`, `not json`} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/memes/generate", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestGenerateEndpoint_EmptyResultIsNotAnError(t *testing.T) {
	router := newTestRouter(&fakeGenerator{}, nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/memes/generate", strings.NewReader(`{"keyword":"cats"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"memes":[]`) || !strings.Contains(w.Body.String(), `"generated":0`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestReadEndpoints(t *testing.T) {
	router := newTestRouter(&fakeGenerator{}, nil)

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/health", http.StatusOK, `"ok"`},
		{"/api/v1/templates", http.StatusOK, "Drake Hotline Bling"},
		{"/api/v1/generations?limit=5", http.StatusOK, `"total":1`},
		{"/api/v1/generations/g1", http.StatusOK, `"keyword":"cats"`},
		{"/api/v1/generations/missing", http.StatusNotFound, "not found"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if w.Code != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.path, w.Code, tt.status)
		}
		if !strings.Contains(w.Body.String(), tt.want) {
			t.Errorf("%s: body %s missing %s", tt.path, w.Body.String(), tt.want)
		}
	}
}

func TestHealthDegraded(t *testing.T) {
	router := newTestRouter(&fakeGenerator{}, fakePinger{err: context.DeadlineExceeded})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(&fakeGenerator{}, nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/memes/generate", nil)
	req.Header.Set("Origin", "https://example.com")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("allow origin = %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
}
