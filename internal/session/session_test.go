package session

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediagent/internal/domain"
)

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestFlushWritesSessionJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outputs", "history.json")
	store := NewStore(path, testLogger())

	sess := New("reddit", map[string]any{"search_type": "keyword", "input_query": "go"}, 3)
	sess.SetSummary(domain.StructuredSummary{Summary: "S", Q1: "A", Q2: "B", Q3: "C"})
	sess.Append(domain.HistoryEntry{
		Question: "what changed?",
		Answer:   "generics",
		Sources: []domain.SourceRecord{
			{Content: "text", Metadata: domain.Metadata{SourceID: "d1"}},
		},
	})

	require.NoError(t, store.Flush(sess))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"search_params", "num_documents", "source", "summary_metadata", "history"} {
		assert.Contains(t, raw, key)
	}
	assert.Equal(t, "reddit", raw["source"])
	assert.Equal(t, float64(3), raw["num_documents"])

	history := raw["history"].([]any)
	require.Len(t, history, 1)
	entry := history[0].(map[string]any)
	assert.Equal(t, "what changed?", entry["question"])
	assert.Equal(t, "generics", entry["answer"])
	require.Len(t, entry["sources"].([]any), 1)
}

func TestFlushIsWriteOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	store := NewStore(path, testLogger())
	sess := New("reddit", nil, 0)

	require.NoError(t, store.Flush(sess))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	// Later mutations must not reach disk through a second flush.
	sess.Append(domain.HistoryEntry{Question: "late", Answer: "late"})
	require.NoError(t, store.Flush(sess))
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestNewSessionHasIDAndEmptyHistory(t *testing.T) {
	sess := New("reddit", nil, 2)
	assert.NotEmpty(t, sess.ID)
	assert.NotNil(t, sess.History)
	assert.Empty(t, sess.History)
}
