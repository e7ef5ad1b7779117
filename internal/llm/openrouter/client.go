package openrouter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"apmcoach-backend/internal/llm"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "openai/gpt-4o-mini"
)

// Generator drafts essays through the OpenRouter chat completions API.
type Generator struct {
	client *resty.Client
	apiKey string
	model  string
}

// New builds a Generator. baseURL is overridable for tests.
func New(apiKey, model, baseURL string, timeout time.Duration) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("openrouter api key is required: %w", llm.ErrUnavailable)
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(apiKey)

	return &Generator{client: client, apiKey: apiKey, model: model}, nil
}

func (g *Generator) Name() string { return "openrouter" }

// GenerateEssay posts a chat completion and extracts the first choice.
func (g *Generator) GenerateEssay(ctx context.Context, req llm.Request) (string, error) {
	if g == nil || g.client == nil {
		return "", llm.ErrUnavailable
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", fmt.Errorf("prompt must not be empty")
	}

	messages := make([]map[string]string, 0, 2)
	if sys := strings.TrimSpace(req.SystemInstruction); sys != "" {
		messages = append(messages, map[string]string{"role": "system", "content": sys})
	}
	messages = append(messages, map[string]string{"role": "user", "content": prompt})

	body := map[string]any{
		"model":    g.model,
		"messages": messages,
	}
	if req.Temperature > 0 {
		body["temperature"] = req.Temperature
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openrouter request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("openrouter status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	text := strings.TrimSpace(gjson.Get(resp.String(), "choices.0.message.content").String())
	if text == "" {
		return "", fmt.Errorf("openrouter returned empty completion")
	}

	return text, nil
}

// Model reports the configured model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}
