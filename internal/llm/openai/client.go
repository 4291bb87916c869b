package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"inreader-backend/internal/llm"
	"inreader-backend/internal/shared/telemetry"
)

// DefaultBaseURL is Gemini's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// Config configures the chat completions client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client implements llm.Completer over an OpenAI-compatible chat API.
type Client struct {
	api   *goopenai.Client
	model string
}

// NewClient constructs a new client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required: %w", llm.ErrNotConfigured)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = strings.TrimRight(firstNonEmpty(cfg.BaseURL, DefaultBaseURL), "/")
	apiCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{api: goopenai.NewClientWithConfig(apiCfg), model: cfg.Model}, nil
}

// Complete sends the system framing and the user message and returns the
// first choice.
func (c *Client) Complete(ctx context.Context, prompt, text string) (llm.Result, error) {
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: llm.SystemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: llm.UserMessage(prompt, text)},
		},
	})
	if err != nil {
		return llm.Result{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return llm.Result{}, fmt.Errorf("chat completion: response missing choices")
	}

	result := llm.Result{Text: resp.Choices[0].Message.Content}
	if resp.Usage.TotalTokens > 0 {
		tokens := resp.Usage.TotalTokens
		result.TokensUsed = &tokens
	}
	telemetry.Info("llm.response", map[string]any{
		"model":             c.model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"total_tokens":      resp.Usage.TotalTokens,
	})
	return result, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

var _ llm.Completer = (*Client)(nil)
