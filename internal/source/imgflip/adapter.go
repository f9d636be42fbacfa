package imgflip

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/memegen/internal/domain"
	"github.com/timmy/memegen/internal/source"
)

const (
	defaultBaseURL = "https://api.imgflip.com"
	sourceID       = "imgflip"
)

// Config holds configuration for the imgflip adapter.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// Adapter implements source.TemplateSource and source.Renderer against the imgflip API.
type Adapter struct {
	client   *resty.Client
	username string
	password string
}

// NewAdapter creates a new imgflip adapter.
func NewAdapter(cfg *Config) *Adapter {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)

	return &Adapter{
		client:   client,
		username: cfg.Username,
		password: cfg.Password,
	}
}

// GetSourceID returns the unique identifier for this source.
func (a *Adapter) GetSourceID() string {
	return sourceID
}

// GetDisplayName returns a human-readable name for this source.
func (a *Adapter) GetDisplayName() string {
	return "Imgflip"
}

type memeTemplate struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	BoxCount int    `json:"box_count"`
}

type getMemesResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Memes []memeTemplate `json:"memes"`
	} `json:"data"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type captionImageResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL     string `json:"url"`
		PageURL string `json:"page_url"`
	} `json:"data"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// ListTemplates fetches the imgflip template catalog.
func (a *Adapter) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	var resp getMemesResponse
	httpResp, err := a.client.R().
		SetContext(ctx).
		SetResult(&resp).
		Get("/get_memes")
	if err != nil {
		return nil, fmt.Errorf("failed to call imgflip get_memes: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return nil, fmt.Errorf("imgflip get_memes returned HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
	}

	if !resp.Success {
		msg := resp.ErrorMessage
		if msg == "" {
			msg = "unknown error"
		}
		return nil, fmt.Errorf("imgflip get_memes error: %s", msg)
	}

	templates := make([]domain.Template, 0, len(resp.Data.Memes))
	for _, m := range resp.Data.Memes {
		templates = append(templates, domain.Template{
			ID:       m.ID,
			Name:     m.Name,
			ImageURL: m.URL,
			Width:    m.Width,
			Height:   m.Height,
			BoxCount: m.BoxCount,
		})
	}
	return templates, nil
}

// Render captions a template through imgflip's caption_image endpoint.
func (a *Adapter) Render(ctx context.Context, templateID, top, bottom string) (string, error) {
	var resp captionImageResponse
	httpResp, err := a.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"template_id": templateID,
			"username":    a.username,
			"password":    a.password,
			"text0":       top,
			"text1":       bottom,
		}).
		SetResult(&resp).
		Post("/caption_image")
	if err != nil {
		return "", fmt.Errorf("failed to call imgflip caption_image: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return "", fmt.Errorf("imgflip caption_image returned HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
	}

	if !resp.Success {
		msg := resp.ErrorMessage
		if msg == "" {
			msg = "unknown error"
		}
		return "", &source.RenderError{Message: msg}
	}

	if resp.Data.URL == "" {
		return "", &source.RenderError{Message: "empty url in response"}
	}

	return resp.Data.URL, nil
}
