package qdrant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"mediagent/internal/domain"
)

// Storage is a minimal REST client to Qdrant. It assumes cosine distance
// and creates the collection if missing. Durability is handled by the
// Qdrant server, so Persist is a no-op.
type Storage struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	nextID     int
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return s.putJSON(fmt.Sprintf("%s/collections/%s", s.url, s.collection), body)
}

func (s *Storage) Upsert(chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	points := make([]map[string]any, len(chunks))
	for i := range chunks {
		points[i] = map[string]any{
			"id":      s.nextID + i,
			"vector":  vectors[i],
			"payload": payloadFromChunk(chunks[i]),
		}
	}
	s.nextID += len(chunks)
	body := map[string]any{"points": points}
	return s.putJSON(fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body)
}

func (s *Storage) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 4
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.SearchResult{Chunk: chunkFromPayload(r.Payload), Score: r.Score})
	}
	return results, nil
}

// GetBySourceIDs scrolls the collection once per id so results come back in
// input order. Unknown ids contribute nothing.
func (s *Storage) GetBySourceIDs(ids []string) ([]domain.SourceRecord, error) {
	var records []domain.SourceRecord
	for _, id := range ids {
		req := map[string]any{
			"filter": map[string]any{
				"must": []map[string]any{
					{"key": "source_id", "match": map[string]any{"value": id}},
				},
			},
			"with_payload": true,
			"limit":        100,
		}
		var resp struct {
			Result struct {
				Points []struct {
					Payload map[string]any `json:"payload"`
				} `json:"points"`
			} `json:"result"`
		}
		if err := s.postJSON(fmt.Sprintf("%s/collections/%s/points/scroll", s.url, s.collection), req, &resp); err != nil {
			return nil, err
		}
		for _, p := range resp.Result.Points {
			ch := chunkFromPayload(p.Payload)
			records = append(records, domain.SourceRecord{Content: ch.Content, Metadata: ch.Metadata})
		}
	}
	return records, nil
}

func (s *Storage) Persist() error { return nil }

// Clear drops the collection. An absent collection is fine; any other
// failure is reported so a stale index never masquerades as a fresh one.
func (s *Storage) Clear() error {
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil)
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("qdrant DELETE collection %s failed: %s", s.collection, resp.Status)
	}
	s.nextID = 0
	return nil
}

func payloadFromChunk(ch domain.Chunk) map[string]any {
	return map[string]any{
		"content":    ch.Content,
		"source_id":  ch.Metadata.SourceID,
		"title":      ch.Metadata.Title,
		"author":     ch.Metadata.Author,
		"score":      ch.Metadata.Score,
		"url":        ch.Metadata.URL,
		"subreddit":  ch.Metadata.Subreddit,
		"category":   ch.Metadata.Category,
		"created_at": ch.Metadata.CreatedAt,
	}
}

func chunkFromPayload(payload map[string]any) domain.Chunk {
	ch := domain.Chunk{}
	if v, ok := payload["content"].(string); ok {
		ch.Content = v
	}
	if v, ok := payload["source_id"].(string); ok {
		ch.Metadata.SourceID = v
	}
	if v, ok := payload["title"].(string); ok {
		ch.Metadata.Title = v
	}
	if v, ok := payload["author"].(string); ok {
		ch.Metadata.Author = v
	}
	if v, ok := payload["score"].(float64); ok {
		ch.Metadata.Score = int(v)
	}
	if v, ok := payload["url"].(string); ok {
		ch.Metadata.URL = v
	}
	if v, ok := payload["subreddit"].(string); ok {
		ch.Metadata.Subreddit = v
	}
	if v, ok := payload["category"].(string); ok {
		ch.Metadata.Category = v
	}
	if v, ok := payload["created_at"].(float64); ok {
		ch.Metadata.CreatedAt = int64(v)
	}
	return ch
}

func (s *Storage) putJSON(url string, body any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (s *Storage) postJSON(url string, body any, out any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
