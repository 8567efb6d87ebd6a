package embedding

import "context"

// Embedder converts free text into a numeric vector representation.
// Dimension is fixed per provider and may be learned lazily on first embed.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}
