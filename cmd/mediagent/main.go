package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mediagent/internal/agent"
	"mediagent/internal/chunker"
	"mediagent/internal/config"
	"mediagent/internal/embedding"
	"mediagent/internal/index"
	"mediagent/internal/llm"
	"mediagent/internal/prompts"
	"mediagent/internal/qa"
	"mediagent/internal/session"
	"mediagent/internal/source"
	"mediagent/internal/summarize"
	"mediagent/internal/tokens"
	"mediagent/internal/tui"
	"mediagent/internal/vectorstore"
	"mediagent/internal/vectorstore/memory"
	"mediagent/internal/vectorstore/qdrant"
)

func main() {
	var (
		cfgPath    string
		keyword    string
		subreddits []string
		posts      int
		topK       int
	)

	root := &cobra.Command{
		Use:   "mediagent",
		Short: "Ingest reddit posts, summarize them and chat with the corpus",
		Long: `mediagent pulls submissions for a keyword or a list of subreddits,
indexes them for semantic retrieval, prints a structured summary with three
seed questions and then answers free-form questions with citations.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfgPath, keyword, subreddits, posts, topK)
		},
	}
	root.Flags().StringVar(&cfgPath, "config", "", "path to YAML config (default: ./config.yaml, then ~/.config/mediagent/config.yaml)")
	root.Flags().StringVarP(&keyword, "keyword", "k", "", "free-text keyword to search for")
	root.Flags().StringSliceVarP(&subreddits, "subreddit", "r", nil, "subreddits to pull hot posts from (repeatable)")
	root.Flags().IntVarP(&posts, "posts", "n", 0, "posts to fetch per search or subreddit")
	root.Flags().IntVar(&topK, "top-k", 0, "chunks retrieved per question")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfgPath, keyword string, subreddits []string, posts, topK int) error {
	_ = godotenv.Load()
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if posts > 0 {
		cfg.Source.PostsPerQuery = posts
	}
	if topK > 0 {
		cfg.Retrieval.TopK = topK
	}

	query, err := source.NewQuery(keyword, subreddits)
	if err != nil {
		return err
	}
	log.Info("starting session", "mode", string(query.Mode()), "query", query.Label())
	src, err := newDocumentSource(cfg, query)
	if err != nil {
		return err
	}

	emb, err := embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
		BaseURL:   cfg.Embedder.BaseURL,
		APIKeyEnv: cfg.Embedder.APIKeyEnv,
		Model:     cfg.Embedder.Model,
		Attempts:  cfg.Embedder.Attempts,
	})
	if err != nil {
		return fmt.Errorf("embedder init: %w", err)
	}

	model, err := llm.NewOpenAIClient(llm.OpenAIConfig{
		BaseURL:   cfg.LLM.BaseURL,
		APIKeyEnv: cfg.LLM.APIKeyEnv,
		Model:     cfg.LLM.Model,
		Attempts:  cfg.LLM.Attempts,
	})
	if err != nil {
		return fmt.Errorf("llm init: %w", err)
	}

	var store vectorstore.Storage
	switch cfg.VectorStore.Type {
	case "memory", "":
		store = memory.NewStorage(cfg.VectorStore.Path)
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			return fmt.Errorf("qdrant config missing")
		}
		store = qdrant.NewStorage(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		return fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	encoder, err := tokens.NewTiktokenEncoder(cfg.Summarizer.TokenizerModel)
	if err != nil {
		return fmt.Errorf("tokenizer init: %w", err)
	}

	ctx := context.Background()
	idx := index.New(emb, store, log)
	ch := chunker.NewWindowChunker(cfg.Chunker.ChunkSize)

	documents, err := agent.Ingest(ctx, src, ch, idx, log)
	if err != nil {
		return err
	}

	gen := prompts.NewRedditGenerator()
	qaEngine := qa.NewEngine(model, idx, cfg.Retrieval.TopK, log)
	summarizer := summarize.NewEngine(model, tokens.NewEstimator(encoder), gen, qaEngine, cfg.Summarizer.MaxAttempts, log)

	sess := session.New(gen.Source(), src.SearchParams(), len(documents))
	histStore := session.NewStore(cfg.Session.HistoryPath, log)

	// The history must land on disk on every exit path, including a signal
	// arriving mid-answer. Flush is write-once, so the deferred call and
	// the handler cannot double-write.
	defer func() {
		if err := histStore.Flush(sess); err != nil {
			log.Error("history flush failed", "err", err)
		}
	}()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		if err := histStore.Flush(sess); err != nil {
			log.Error("history flush failed", "err", err)
		}
		os.Exit(1)
	}()

	summary, err := summarizer.Summarize(ctx, documents)
	if err != nil {
		return err
	}
	sess.SetSummary(summary)

	a := agent.New(qaEngine, idx, sess, summary, log)
	final, err := tea.NewProgram(tui.New(ctx, a)).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(tui.Model); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}

func newDocumentSource(cfg *config.AppConfig, query source.Query) (source.DocumentSource, error) {
	switch cfg.Source.Type {
	case "reddit", "":
		return source.NewRedditSource(query, source.RedditConfig{
			BaseURL:   cfg.Source.BaseURL,
			UserAgent: cfg.Source.UserAgent,
			NumPosts:  cfg.Source.PostsPerQuery,
			Timeout:   time.Duration(cfg.Source.TimeoutSecs) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unknown source: %s", cfg.Source.Type)
	}
}
