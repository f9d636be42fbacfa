package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/memegen/internal/prompts"
)

// ImageCaptioner produces a short literal caption for an image.
type ImageCaptioner interface {
	Caption(ctx context.Context, imageLocator string) (string, error)
}

// VLMService handles image captioning using Vision Language Models.
type VLMService struct {
	client   *resty.Client
	model    string
	endpoint string
}

// VLMConfig holds configuration for VLM service.
type VLMConfig struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewVLMService creates a new VLM service.
func NewVLMService(cfg *VLMConfig) *VLMService {
	client, endpoint := newChatClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout)
	return &VLMService{
		client:   client,
		model:    cfg.Model,
		endpoint: endpoint,
	}
}

// GetModel returns the model name being used.
func (s *VLMService) GetModel() string {
	return s.model
}

// Caption returns a short caption for the image at imageLocator.
// The locator is either an http(s) URL or a local file path; local files are
// inlined as a base64 data URL.
func (s *VLMService) Caption(ctx context.Context, imageLocator string) (string, error) {
	imageURL, err := toImageURL(imageLocator)
	if err != nil {
		return "", err
	}

	req := &chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: prompts.ImageCaptionSystemPrompt,
			},
			{
				Role: "user",
				Content: []interface{}{
					chatTextContent{
						Type: "text",
						Text: prompts.ImageCaptionUserPrompt,
					},
					chatImageContent{
						Type: "image_url",
						ImageURL: chatImageURL{
							URL:    imageURL,
							Detail: "low",
						},
					},
				},
			},
		},
		MaxTokens: 60,
	}

	caption, err := postChat(ctx, s.client, s.endpoint, "VLM", req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(caption), nil
}

func toImageURL(locator string) (string, error) {
	if locator == "" {
		return "", fmt.Errorf("empty image locator")
	}
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") || strings.HasPrefix(locator, "data:") {
		return locator, nil
	}

	data, err := os.ReadFile(locator)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(locator)), ".")
	return fmt.Sprintf("data:%s;base64,%s", getMIMEType(format), base64.StdEncoding.EncodeToString(data)), nil
}

func getMIMEType(format string) string {
	switch format {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
