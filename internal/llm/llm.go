// Package llm wraps chat-completion providers behind a single-prompt
// interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"mediagent/internal/domain"
	"mediagent/internal/retry"
)

// LLM produces a completion for a single prompt.
type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAIClient answers prompts through the chat completions endpoint at
// temperature 0. Calls are retried with backoff; a final failure surfaces
// as ProviderError.
type OpenAIClient struct {
	client   *openai.Client
	model    string
	attempts int
	backoff  time.Duration
}

type OpenAIConfig struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Attempts  int
}

func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT3Dot5Turbo
	}
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		attempts: cfg.Attempts,
		backoff:  retry.DefaultBackoff,
	}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	var out string
	err := retry.Do(ctx, c.attempts, c.backoff, func() error {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			Temperature: 0,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("no completion returned")
		}
		out = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", &domain.ProviderError{Provider: "openai-chat", Err: err}
	}
	return out, nil
}
