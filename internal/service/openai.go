package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAI-compatible Chat Completion API request/response structures
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float32      `json:"temperature,omitempty"`
	TopP        *float32      `json:"top_p,omitempty"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // string, or []interface{} for user turns with images
}

type chatTextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type chatImageContent struct {
	Type     string       `json:"type"`
	ImageURL chatImageURL `json:"image_url"`
}

type chatImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// newChatClient builds a resty client for an OpenAI-compatible API and
// returns it with the chat completions endpoint.
func newChatClient(apiKey, baseURL string, timeout time.Duration) (*resty.Client, string) {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client.SetTimeout(timeout)

	baseURL = strings.TrimSuffix(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return client, baseURL + "/chat/completions"
}

// postChat sends one chat completion request and returns the first choice's content.
// name prefixes every error so callers can tell the text and vision models apart.
func postChat(ctx context.Context, client *resty.Client, endpoint, name string, req *chatRequest) (string, error) {
	var resp chatResponse
	httpResp, err := client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post(endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to call %s API: %w", name, err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		if resp.Error != nil {
			return "", fmt.Errorf("%s API returned error: HTTP %d: %s", name, httpResp.StatusCode(), resp.Error.Message)
		}
		return "", fmt.Errorf("%s API returned error: HTTP %d: %s", name, httpResp.StatusCode(), string(httpResp.Body()))
	}

	if resp.Error != nil {
		return "", fmt.Errorf("%s API error: %s", name, resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s API: no choices in response (status: %d)", name, httpResp.StatusCode())
	}

	return resp.Choices[0].Message.Content, nil
}
