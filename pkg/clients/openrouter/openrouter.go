// Package openrouter talks to OpenRouter chat completions, or to a local Ollama server when
// the API key is "local".
package openrouter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	OpenRouterURL     = "https://openrouter.ai/api/v1/chat/completions"
	OllamaURL         = "http://localhost:11434/api/chat"
	DefaultModel      = "meta-llama/llama-3.1-8b-instruct:free"
	DefaultLocalModel = "deepseek-r1:1.5b"
	DefaultRateLimit  = 2 // requests per second

	localKey    = "local"
	temperature = 0.3
	maxTokens   = 1000
	appTitle    = "Jobh Imóveis Manager"
	appReferer  = "http://localhost:8080"
)

// ErrEmptyReply is returned when the model answers with no content.
var ErrEmptyReply = errors.New("empty response from ai")

// Client sends a conversation and returns the model's answer.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Message is one chat turn. Role is "system", "user" or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatClient struct {
	httpClient *resty.Client
	limiter    *rate.Limiter
	url        string
	model      string
	local      bool
}

// Option configures the client.
type Option func(*chatClient)

// WithURL overrides the endpoint.
func WithURL(url string) Option {
	return func(c *chatClient) {
		c.url = url
	}
}

// WithRateLimit sets the request rate.
func WithRateLimit(requestsPerSecond int) Option {
	return func(c *chatClient) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a configured client. An empty model selects the provider default.
func NewClient(apiKey, model string, opts ...Option) Client {
	apiKey = strings.TrimSpace(apiKey)
	local := strings.EqualFold(apiKey, localKey)

	c := &chatClient{
		httpClient: resty.New().
			SetHeader("Content-Type", "application/json").
			SetTimeout(60 * time.Second),
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		url:     OpenRouterURL,
		model:   model,
		local:   local,
	}
	if local {
		c.url = OllamaURL
		if c.model == "" {
			c.model = DefaultLocalModel
		}
	} else {
		c.httpClient.
			SetAuthToken(apiKey).
			SetHeader("HTTP-Referer", appReferer).
			SetHeader("X-Title", appTitle)
		if c.model == "" {
			c.model = DefaultModel
		}
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

// chatResponse covers both the OpenAI style "choices" and the Ollama "message" shapes.
type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Message *Message `json:"message"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

func (c *chatClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	var respBody chatResponse
	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: temperature,
			MaxTokens:   maxTokens,
		}).
		SetResult(&respBody).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return "", fmt.Errorf("ai api call: %w", err)
	}
	if resp.IsError() {
		if apiErr.Error.Message != "" {
			return "", fmt.Errorf("ai api error: status=%d, message=%s", resp.StatusCode(), apiErr.Error.Message)
		}
		return "", fmt.Errorf("ai api error: status=%d", resp.StatusCode())
	}

	var content string
	switch {
	case c.local && respBody.Message != nil:
		content = respBody.Message.Content
	case len(respBody.Choices) > 0:
		content = respBody.Choices[0].Message.Content
	}
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyReply
	}
	return content, nil
}
