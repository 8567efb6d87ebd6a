package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SourceConfig configures the document source adapter.
type SourceConfig struct {
	Type          string `yaml:"type"`
	BaseURL       string `yaml:"base_url"`
	UserAgent     string `yaml:"user_agent"`
	PostsPerQuery int    `yaml:"posts_per_query"`
	TimeoutSecs   int    `yaml:"timeout_secs"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	ChunkSize int `yaml:"chunk_size"`
}

// OpenAIConfig holds shared settings for the OpenAI-compatible endpoints.
type OpenAIConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
	Attempts  int    `yaml:"attempts"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Path   string        `yaml:"path"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// SummarizerConfig configures strategy selection and parse retries.
type SummarizerConfig struct {
	TokenizerModel string `yaml:"tokenizer_model"`
	MaxAttempts    int    `yaml:"max_attempts"`
}

// RetrievalConfig configures question answering.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// SessionConfig configures where the conversation history is flushed.
type SessionConfig struct {
	HistoryPath string `yaml:"history_path"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Source      SourceConfig      `yaml:"source"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	Embedder    OpenAIConfig      `yaml:"embedder"`
	LLM         OpenAIConfig      `yaml:"llm"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Session     SessionConfig     `yaml:"session"`
}

// Load reads a config from an explicitly specified path. A missing file is
// an error; falling back to defaults is LoadDefault's job.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/mediagent/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "mediagent", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Source.Type == "" {
		cfg.Source.Type = "reddit"
	}
	if cfg.Source.PostsPerQuery == 0 {
		cfg.Source.PostsPerQuery = 10
	}
	if cfg.Source.TimeoutSecs == 0 {
		cfg.Source.TimeoutSecs = 30
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 2000
	}
	if cfg.Embedder.APIKeyEnv == "" {
		cfg.Embedder.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "text-embedding-3-small"
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-3.5-turbo"
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if cfg.VectorStore.Path == "" {
		cfg.VectorStore.Path = "db"
	}
	if cfg.Summarizer.TokenizerModel == "" {
		cfg.Summarizer.TokenizerModel = "gpt-3.5-turbo"
	}
	if cfg.Summarizer.MaxAttempts == 0 {
		cfg.Summarizer.MaxAttempts = 3
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 4
	}
	if cfg.Session.HistoryPath == "" {
		cfg.Session.HistoryPath = filepath.Join("outputs", "history.json")
	}
}
