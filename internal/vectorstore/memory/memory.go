package memory

import (
	"encoding/gob"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"mediagent/internal/domain"
)

const collectionFile = "collection.gob"

// Storage is an in-memory vector store using brute-force cosine similarity.
// Persist snapshots the collection into a directory; repeated calls
// overwrite the same file.
type Storage struct {
	mu        sync.RWMutex
	dir       string
	dimension int
	vectors   [][]float64
	chunks    []domain.Chunk
}

// NewStorage creates a store persisting under dir. An empty dir disables
// persistence.
func NewStorage(dir string) *Storage { return &Storage{dir: dir} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.chunks = nil
	return nil
}

func (s *Storage) Upsert(chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

func (s *Storage) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 4
	}
	idxs := make([]int, len(s.vectors))
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		idxs[i] = i
		scores[i] = dot(s.vectors[i], vector)
	}
	// Stable sort keeps insertion order among equal scores.
	sort.SliceStable(idxs, func(a, b int) bool { return scores[idxs[a]] > scores[idxs[b]] })
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.SearchResult, 0, topK)
	for _, j := range idxs[:topK] {
		results = append(results, domain.SearchResult{Chunk: s.chunks[j], Score: scores[j]})
	}
	return results, nil
}

func (s *Storage) GetBySourceIDs(ids []string) ([]domain.SourceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []domain.SourceRecord
	for _, id := range ids {
		for _, ch := range s.chunks {
			if ch.Metadata.SourceID == id {
				records = append(records, domain.SourceRecord{Content: ch.Content, Metadata: ch.Metadata})
			}
		}
	}
	return records, nil
}

type snapshot struct {
	Dimension int
	Chunks    []domain.Chunk
	Vectors   [][]float64
}

func (s *Storage) Persist() error {
	if s.dir == "" {
		return nil
	}
	s.mu.RLock()
	snap := snapshot{Dimension: s.dimension, Chunks: s.chunks, Vectors: s.vectors}
	s.mu.RUnlock()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(s.dir, collectionFile))
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(snap)
}

// Restore loads a previously persisted collection, replacing any current
// contents.
func (s *Storage) Restore() error {
	f, err := os.Open(filepath.Join(s.dir, collectionFile))
	if err != nil {
		return err
	}
	defer f.Close()
	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = snap.Dimension
	s.chunks = snap.Chunks
	s.vectors = snap.Vectors
	return nil
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.chunks = nil
	return nil
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
