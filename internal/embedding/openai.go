package embedding

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

// OpenAIEmbedder embeds text through the OpenAI embeddings endpoint.
// Calls are retried with backoff; a final failure surfaces as ProviderError.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     openai.EmbeddingModel
	dimension int
	attempts  int
	backoff   time.Duration
}

// OpenAIConfig configures the embedder. APIKeyEnv names the environment
// variable holding the key.
type OpenAIConfig struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Attempts  int
}

func NewOpenAIEmbedder(cfg OpenAIConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3)
	}
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIEmbedder{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    openai.EmbeddingModel(cfg.Model),
		attempts: cfg.Attempts,
		backoff:  retry.DefaultBackoff,
	}, nil
}

func (e *OpenAIEmbedder) Name() string { return "openai" }

// Dimension is 0 until the first successful Embed.
func (e *OpenAIEmbedder) Dimension() int { return e.dimension }

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	var vec []float64
	err := retry.Do(ctx, e.attempts, e.backoff, func() error {
		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: e.model,
		})
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return errors.New("no embedding returned")
		}
		raw := resp.Data[0].Embedding
		vec = make([]float64, len(raw))
		for i, v := range raw {
			vec[i] = float64(v)
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ProviderError{Provider: "openai-embeddings", Err: err}
	}
	if e.dimension == 0 {
		e.dimension = len(vec)
	}
	return vec, nil
}
