package source

import (
	"context"
	"strings"

	"mediagent/internal/domain"
)

// Mode names the two legal ways of pulling documents.
type Mode string

const (
	ModeKeyword    Mode = "keyword"
	ModeSubreddits Mode = "subreddits"
)

// Query is a validated search request: exactly one of a free-text keyword or
// an explicit subreddit list. Construct it through NewQuery so the
// "both or neither" state cannot occur.
type Query struct {
	mode       Mode
	keyword    string
	subreddits []string
}

// NewQuery builds a Query from the raw flag values. Setting both a keyword
// and subreddits, or neither, is a ConfigurationError.
func NewQuery(keyword string, subreddits []string) (Query, error) {
	keyword = strings.TrimSpace(keyword)
	trimmed := subreddits[:0:0]
	for _, s := range subreddits {
		if s = strings.TrimSpace(s); s != "" {
			trimmed = append(trimmed, s)
		}
	}
	hasKeyword := keyword != ""
	hasSubreddits := len(trimmed) > 0
	switch {
	case hasKeyword && hasSubreddits:
		return Query{}, &domain.ConfigurationError{Reason: "set a keyword or a subreddit list, not both"}
	case !hasKeyword && !hasSubreddits:
		return Query{}, &domain.ConfigurationError{Reason: "set a keyword or a subreddit list"}
	case hasKeyword:
		return Query{mode: ModeKeyword, keyword: keyword}, nil
	default:
		return Query{mode: ModeSubreddits, subreddits: trimmed}, nil
	}
}

// Mode reports which variant this query carries.
func (q Query) Mode() Mode { return q.mode }

// Keyword returns the free-text keyword; "" unless Mode is ModeKeyword.
func (q Query) Keyword() string { return q.keyword }

// Subreddits returns the subreddit list; nil unless Mode is ModeSubreddits.
func (q Query) Subreddits() []string { return q.subreddits }

// Label is a short human-readable description of the query.
func (q Query) Label() string {
	if q.mode == ModeKeyword {
		return q.keyword
	}
	return strings.Join(q.subreddits, ",")
}

// DocumentSource produces a finite batch of documents plus the parameters
// used to produce them. Implementations are thin adapters over an external
// API; the pipeline never depends on a concrete one.
type DocumentSource interface {
	Load(ctx context.Context) ([]domain.Document, error)
	SearchParams() map[string]any
}
