package vectorstore

import "mediagent/internal/domain"

// Storage persists chunk vectors and supports similarity search plus
// exact-match citation lookup by source id.
type Storage interface {
	Init(dimension int) error
	Upsert(chunks []domain.Chunk, vectors [][]float64) error
	Search(vector []float64, topK int) ([]domain.SearchResult, error)
	// GetBySourceIDs resolves citations in input order. Ids with no match
	// contribute nothing; an empty result is not an error.
	GetBySourceIDs(ids []string) ([]domain.SourceRecord, error)
	// Persist writes the collection to its durable location. Idempotent.
	Persist() error
	Clear() error
}
