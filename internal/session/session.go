// Package session records one run's exchanges and flushes them to disk
// exactly once, on every exit path.
package session

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"mediagent/internal/domain"
)

// Session is the durable record of one run: the search parameters, the
// generated summary and the append-only question/answer history.
type Session struct {
	ID              string                   `json:"id"`
	SearchParams    map[string]any           `json:"search_params"`
	NumDocuments    int                      `json:"num_documents"`
	Source          string                   `json:"source"`
	SummaryMetadata domain.StructuredSummary `json:"summary_metadata"`
	History         []domain.HistoryEntry    `json:"history"`
}

func New(source string, searchParams map[string]any, numDocuments int) *Session {
	return &Session{
		ID:           uuid.NewString(),
		SearchParams: searchParams,
		NumDocuments: numDocuments,
		Source:       source,
		History:      []domain.HistoryEntry{},
	}
}

// SetSummary attaches the structured summary produced once per session.
func (s *Session) SetSummary(summary domain.StructuredSummary) {
	s.SummaryMetadata = summary
}

// Append records one exchange.
func (s *Session) Append(entry domain.HistoryEntry) {
	s.History = append(s.History, entry)
}

// Store flushes a session to a JSON file. The first Flush wins; later calls
// are no-ops, so a deferred flush and a signal-handler flush can coexist.
type Store struct {
	path    string
	log     *slog.Logger
	mu      sync.Mutex
	flushed bool
}

func NewStore(path string, log *slog.Logger) *Store {
	return &Store{path: path, log: log}
}

func (st *Store) Flush(s *Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.flushed {
		return nil
	}
	st.flushed = true
	st.log.Info("saving conversation history with sources and metadata", "path", st.path, "entries", len(s.History))
	if err := os.MkdirAll(filepath.Dir(st.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(st.path, data, 0o644)
}
