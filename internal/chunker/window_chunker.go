package chunker

import (
	"mediagent/internal/domain"
)

// WindowChunker splits document content into non-overlapping windows of at
// most chunkSize runes. Word and sentence boundaries are not respected;
// every chunk carries a copy of the parent document's metadata.
type WindowChunker struct {
	chunkSize int
}

func NewWindowChunker(chunkSize int) *WindowChunker {
	if chunkSize <= 0 {
		chunkSize = 2000
	}
	return &WindowChunker{chunkSize: chunkSize}
}

// Split chunks every document in order. Deterministic: the same input always
// yields the same chunk sequence, and a document's chunk contents
// concatenate back to its content.
func (c *WindowChunker) Split(documents []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range documents {
		runes := []rune(doc.Content)
		for start := 0; start < len(runes); start += c.chunkSize {
			end := start + c.chunkSize
			if end > len(runes) {
				end = len(runes)
			}
			chunks = append(chunks, domain.Chunk{
				Content:  string(runes[start:end]),
				Metadata: doc.Metadata,
			})
		}
	}
	return chunks
}
