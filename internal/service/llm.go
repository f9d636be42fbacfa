package service

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// SamplingParams controls one text-generation call.
// Zero values fall back to the provider defaults, except MaxTokens which
// falls back to the service's configured budget.
type SamplingParams struct {
	Temperature float32
	TopP        float32
	MaxTokens   int
}

var (
	// CaptionSampling favors variety for caption writing.
	CaptionSampling = SamplingParams{Temperature: 0.95, TopP: 0.95}
	// SceneSampling keeps scene descriptions close to the literal caption.
	SceneSampling = SamplingParams{Temperature: 0.4}
	// ScoreSampling keeps humor ratings stable.
	ScoreSampling = SamplingParams{Temperature: 0.3}
)

// TextGenerator completes a prompt with a text model.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string, params SamplingParams) (string, error)
}

// LLMConfig holds configuration for the text-generation service.
type LLMConfig struct {
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// LLMService handles text generation using an OpenAI-compatible chat model.
type LLMService struct {
	client    *resty.Client
	model     string
	endpoint  string
	maxTokens int
}

// NewLLMService creates a new text-generation service.
func NewLLMService(cfg *LLMConfig) *LLMService {
	client, endpoint := newChatClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout)

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 256
	}

	return &LLMService{
		client:    client,
		model:     cfg.Model,
		endpoint:  endpoint,
		maxTokens: maxTokens,
	}
}

// GetModel returns the model name being used.
func (s *LLMService) GetModel() string {
	return s.model
}

// Complete sends prompt as a single user turn and returns the raw reply.
func (s *LLMService) Complete(ctx context.Context, prompt string, params SamplingParams) (string, error) {
	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.maxTokens
	}

	req := &chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens: maxTokens,
	}
	if params.Temperature > 0 {
		t := params.Temperature
		req.Temperature = &t
	}
	if params.TopP > 0 {
		p := params.TopP
		req.TopP = &p
	}

	return postChat(ctx, s.client, s.endpoint, "LLM", req)
}
