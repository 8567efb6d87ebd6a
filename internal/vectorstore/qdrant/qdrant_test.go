package qdrant

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediagent/internal/domain"
)

func newTestStorage(url string) *Storage {
	return NewStorage(Config{URL: url, Collection: "posts"})
}

func TestClearToleratesAbsentCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/collections/posts", r.URL.Path)
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	assert.NoError(t, newTestStorage(srv.URL).Clear())
}

func TestClearSurfacesServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "broken", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestStorage(srv.URL).Clear()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "posts")
}

func TestUpsertRoundTripsMetadataPayload(t *testing.T) {
	var gotPoints []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/collections/posts/points" {
			var body struct {
				Points []map[string]any `json:"points"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			gotPoints = body.Points
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := newTestStorage(srv.URL)
	require.NoError(t, s.Init(2))
	chunk := domain.Chunk{
		Content:  "post body",
		Metadata: domain.Metadata{SourceID: "d1", Title: "t", Score: 9},
	}
	require.NoError(t, s.Upsert([]domain.Chunk{chunk}, [][]float64{{1, 0}}))

	require.Len(t, gotPoints, 1)
	payload := gotPoints[0]["payload"].(map[string]any)
	assert.Equal(t, "post body", payload["content"])
	assert.Equal(t, "d1", payload["source_id"])
	assert.Equal(t, float64(9), payload["score"])
}

func TestGetBySourceIDsScrollsPerIDInOrder(t *testing.T) {
	var filteredIDs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/posts/points/scroll", r.URL.Path)
		var body struct {
			Filter struct {
				Must []struct {
					Match struct {
						Value string `json:"value"`
					} `json:"match"`
				} `json:"must"`
			} `json:"filter"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		id := body.Filter.Must[0].Match.Value
		filteredIDs = append(filteredIDs, id)
		if id == "z" {
			w.Write([]byte(`{"result":{"points":[]}}`))
			return
		}
		resp := map[string]any{"result": map[string]any{"points": []map[string]any{
			{"payload": map[string]any{"content": "c-" + id, "source_id": id}},
		}}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	records, err := newTestStorage(srv.URL).GetBySourceIDs([]string{"a", "z", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "z", "b"}, filteredIDs)

	// The unmatched id contributes nothing, without erroring.
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].Metadata.SourceID)
	assert.Equal(t, "b", records[1].Metadata.SourceID)
}
