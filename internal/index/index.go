// Package index builds and queries the embedding-backed chunk collection.
package index

import (
	"context"
	"fmt"
	"log/slog"

	"mediagent/internal/domain"
	"mediagent/internal/embedding"
	"mediagent/internal/vectorstore"
)

// DefaultTopK is the number of chunks retrieved when the caller does not
// ask for a specific k.
const DefaultTopK = 4

// Index owns the vector store. Build embeds every chunk before anything is
// upserted, so a failed embedding never leaves a partial collection behind.
type Index struct {
	embedder embedding.Embedder
	store    vectorstore.Storage
	log      *slog.Logger
	built    bool
}

func New(embedder embedding.Embedder, store vectorstore.Storage, log *slog.Logger) *Index {
	return &Index{embedder: embedder, store: store, log: log}
}

// Build embeds chunks one at a time and replaces the store contents with the
// result. Any embedding failure aborts the build.
func (x *Index) Build(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks to index")
	}
	vectors := make([][]float64, len(chunks))
	for i, ch := range chunks {
		vec, err := x.embedder.Embed(ctx, ch.Content)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", i, err)
		}
		vectors[i] = vec
	}
	// Clear before Init: remote backends drop and recreate the collection.
	if err := x.store.Clear(); err != nil {
		return err
	}
	if err := x.store.Init(x.embedder.Dimension()); err != nil {
		return err
	}
	if err := x.store.Upsert(chunks, vectors); err != nil {
		return err
	}
	x.built = true
	x.log.Info("index built", "chunks", len(chunks), "dimension", x.embedder.Dimension(), "embedder", x.embedder.Name())
	return nil
}

// Persist writes the collection to its durable location.
func (x *Index) Persist() error {
	return x.store.Persist()
}

// Query returns the k nearest chunks to text. k <= 0 uses DefaultTopK.
func (x *Index) Query(ctx context.Context, text string, k int) ([]domain.Chunk, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	vec, err := x.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	results, err := x.store.Search(vec, k)
	if err != nil {
		return nil, err
	}
	chunks := make([]domain.Chunk, len(results))
	for i, r := range results {
		chunks[i] = r.Chunk
	}
	return chunks, nil
}

// GetBySourceIDs resolves citation ids in input order. Unknown ids resolve
// to nothing rather than an error.
func (x *Index) GetBySourceIDs(ids []string) ([]domain.SourceRecord, error) {
	return x.store.GetBySourceIDs(ids)
}
