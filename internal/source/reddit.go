package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mediagent/internal/domain"
	"mediagent/internal/retry"
)

// RedditSource loads submissions from the public reddit JSON listing
// endpoints. Keyword mode searches site-wide; subreddit mode pulls the hot
// listing of each named subreddit. Fetches are retried with backoff; a
// final failure surfaces as ProviderError.
type RedditSource struct {
	query     Query
	baseURL   string
	userAgent string
	numPosts  int
	attempts  int
	backoff   time.Duration
	client    *http.Client
}

// RedditConfig holds connection details for the reddit listing API.
type RedditConfig struct {
	BaseURL   string
	UserAgent string
	NumPosts  int
	Timeout   time.Duration
	Attempts  int
	Backoff   time.Duration
}

func NewRedditSource(query Query, cfg RedditConfig) *RedditSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.reddit.com"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "mediagent/1.0"
	}
	if cfg.NumPosts <= 0 {
		cfg.NumPosts = 10
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Backoff == 0 {
		cfg.Backoff = retry.DefaultBackoff
	}
	return &RedditSource{
		query:     query,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		numPosts:  cfg.NumPosts,
		attempts:  cfg.Attempts,
		backoff:   cfg.Backoff,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

// Load fetches submissions for the configured query. Posts with an empty
// body are skipped; the remaining ones become documents whose content is
// the title followed by the body.
func (s *RedditSource) Load(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	switch s.query.Mode() {
	case ModeKeyword:
		posts, err := s.search(ctx, s.query.Keyword())
		if err != nil {
			return nil, err
		}
		docs = appendDocuments(docs, posts, "relevance")
	case ModeSubreddits:
		for _, name := range s.query.Subreddits() {
			posts, err := s.hot(ctx, name)
			if err != nil {
				return nil, err
			}
			docs = appendDocuments(docs, posts, "hot")
		}
	}
	return docs, nil
}

// SearchParams reports the parameters this source was constructed with,
// recorded verbatim into the session.
func (s *RedditSource) SearchParams() map[string]any {
	params := map[string]any{
		"search_type":      string(s.query.Mode()),
		"posts_per_source": s.numPosts,
	}
	if s.query.Mode() == ModeKeyword {
		params["input_query"] = s.query.Keyword()
	} else {
		params["input_query"] = s.query.Subreddits()
	}
	return params
}

type redditPost struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	SelfText   string  `json:"selftext"`
	Score      int     `json:"score"`
	Author     string  `json:"author"`
	Subreddit  string  `json:"subreddit"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (s *RedditSource) search(ctx context.Context, keyword string) ([]redditPost, error) {
	u := fmt.Sprintf("%s/search.json?q=%s&limit=%d&sort=relevance", s.baseURL, url.QueryEscape(keyword), s.numPosts)
	return s.fetch(ctx, u)
}

func (s *RedditSource) hot(ctx context.Context, subreddit string) ([]redditPost, error) {
	u := fmt.Sprintf("%s/r/%s/hot.json?limit=%d", s.baseURL, url.PathEscape(subreddit), s.numPosts)
	return s.fetch(ctx, u)
}

func (s *RedditSource) fetch(ctx context.Context, u string) ([]redditPost, error) {
	var listing redditListing
	err := retry.Do(ctx, s.attempts, s.backoff, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", s.userAgent)
		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			return fmt.Errorf("GET %s: %s", u, resp.Status)
		}
		listing = redditListing{}
		return json.NewDecoder(resp.Body).Decode(&listing)
	})
	if err != nil {
		return nil, &domain.ProviderError{Provider: "reddit", Err: err}
	}
	posts := make([]redditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

func appendDocuments(docs []domain.Document, posts []redditPost, category string) []domain.Document {
	for _, p := range posts {
		body := strings.TrimSpace(p.SelfText)
		if body == "" {
			continue
		}
		docs = append(docs, domain.Document{
			Content: p.Title + "\n" + body,
			Metadata: domain.Metadata{
				SourceID:  p.ID,
				Title:     p.Title,
				Author:    p.Author,
				Score:     p.Score,
				URL:       p.Permalink,
				Subreddit: p.Subreddit,
				Category:  category,
				CreatedAt: int64(p.CreatedUTC),
			},
		})
	}
	return docs
}
