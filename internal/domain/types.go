package domain

// Metadata describes where a piece of text came from. SourceID is the only
// mandatory field; citation lookups join on it.
type Metadata struct {
	SourceID  string `json:"source_id"`
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	Score     int    `json:"score,omitempty"`
	URL       string `json:"url,omitempty"`
	Subreddit string `json:"subreddit,omitempty"`
	Category  string `json:"category,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

// Document is a single raw text produced by a document source.
type Document struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Chunk is a bounded-size slice of a document carrying the parent's metadata.
// Multiple chunks of the same document share one SourceID.
type Chunk struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// SearchResult is a matching chunk with a similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// SourceRecord is a resolved citation: the cited chunk's text and metadata.
type SourceRecord struct {
	Content  string   `json:"document"`
	Metadata Metadata `json:"metadata"`
}

// StructuredSummary is the four-field output of the summarization step.
// All four fields are present on success; a missing field is a parse failure.
type StructuredSummary struct {
	Summary string `json:"summary"`
	Q1      string `json:"q1"`
	Q2      string `json:"q2"`
	Q3      string `json:"q3"`
}

// Suggested returns the seed question behind a reserved key (q1, q2, q3),
// or "" if the key is not one of them.
func (s StructuredSummary) Suggested(key string) string {
	switch key {
	case "q1":
		return s.Q1
	case "q2":
		return s.Q2
	case "q3":
		return s.Q3
	}
	return ""
}

// HistoryEntry is one question/answer/citation exchange.
type HistoryEntry struct {
	Question string         `json:"question"`
	Answer   string         `json:"answer"`
	Sources  []SourceRecord `json:"sources"`
}
