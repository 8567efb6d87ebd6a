package agent

import (
	"context"
	"log/slog"

	"mediagent/internal/chunker"
	"mediagent/internal/domain"
	"mediagent/internal/index"
	"mediagent/internal/source"
)

// Ingest loads the source, chunks the documents, builds the index and
// persists it. Zero loaded documents is an EmptyResultError telling the
// user to broaden the query.
func Ingest(ctx context.Context, src source.DocumentSource, ch *chunker.WindowChunker, idx *index.Index, log *slog.Logger) ([]domain.Document, error) {
	documents, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(documents) == 0 {
		label := ""
		if v, ok := src.SearchParams()["input_query"].(string); ok {
			label = v
		}
		return nil, &domain.EmptyResultError{Query: label}
	}
	log.Info("documents loaded", "count", len(documents))

	chunks := ch.Split(documents)
	if err := idx.Build(ctx, chunks); err != nil {
		return nil, err
	}
	if err := idx.Persist(); err != nil {
		return nil, err
	}
	return documents, nil
}
