// Package summarize produces the structured corpus summary with its three
// seed questions.
package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mediagent/internal/domain"
	"mediagent/internal/llm"
	"mediagent/internal/prompts"
	"mediagent/internal/qa"
	"mediagent/internal/tokens"
)

// maxStuffTokens is the model context size minus safety margin; a stuff
// prompt at or under this fits in one call.
const maxStuffTokens = 4097

// defaultAttempts bounds how often a malformed summary is re-asked before
// giving up with a ParseError.
const defaultAttempts = 3

// Strategy names the two summarization paths.
type Strategy string

const (
	StrategyStuff     Strategy = "stuff"
	StrategyRetrieval Strategy = "retrieval"
)

// Answerer is the QA-engine subset used by the retrieval strategy.
type Answerer interface {
	Answer(ctx context.Context, question string) (qa.Result, error)
}

// Engine picks a strategy by token budget and parses the model output into
// the four-key structured summary.
type Engine struct {
	llm       llm.LLM
	estimator *tokens.Estimator
	gen       prompts.Generator
	answerer  Answerer
	attempts  int
	log       *slog.Logger
}

func NewEngine(model llm.LLM, estimator *tokens.Estimator, gen prompts.Generator, answerer Answerer, attempts int, log *slog.Logger) *Engine {
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	return &Engine{llm: model, estimator: estimator, gen: gen, answerer: answerer, attempts: attempts, log: log}
}

// Summarize runs the stuff strategy when the full-corpus prompt fits the
// budget, otherwise issues the summarization instructions as a retrieval
// query against the index. Malformed JSON is re-asked a bounded number of
// times; the last failure is fatal.
func (e *Engine) Summarize(ctx context.Context, documents []domain.Document) (domain.StructuredSummary, error) {
	corpus := concatContents(documents)
	strategy := e.chooseStrategy(corpus)
	e.log.Info("summarizing corpus", "strategy", string(strategy), "documents", len(documents))

	var lastErr error
	for i := 0; i < e.attempts; i++ {
		raw, err := e.generate(ctx, strategy, corpus)
		if err != nil {
			return domain.StructuredSummary{}, err
		}
		summary, err := ParseStructuredSummary(raw)
		if err == nil {
			return summary, nil
		}
		lastErr = err
		e.log.Warn("summary output malformed, re-asking", "attempt", i+1, "err", err)
	}
	return domain.StructuredSummary{}, lastErr
}

func (e *Engine) chooseStrategy(corpus string) Strategy {
	if e.estimator.Estimate(corpus, e.gen.StuffTemplate()) <= maxStuffTokens {
		return StrategyStuff
	}
	return StrategyRetrieval
}

func (e *Engine) generate(ctx context.Context, strategy Strategy, corpus string) (string, error) {
	if strategy == StrategyStuff {
		return e.llm.Complete(ctx, fmt.Sprintf(e.gen.StuffTemplate(), corpus))
	}
	res, err := e.answerer.Answer(ctx, e.gen.RetrievalQuestion())
	if err != nil {
		return "", err
	}
	return res.Answer, nil
}

// ParseStructuredSummary parses raw model output as the strict four-key
// summary schema. A missing or empty key is a ParseError, not a partial
// result.
func ParseStructuredSummary(raw string) (domain.StructuredSummary, error) {
	var summary domain.StructuredSummary
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &summary); err != nil {
		return domain.StructuredSummary{}, &domain.ParseError{What: "structured summary", Err: err}
	}
	for key, val := range map[string]string{
		"summary": summary.Summary,
		"q1":      summary.Q1,
		"q2":      summary.Q2,
		"q3":      summary.Q3,
	} {
		if val == "" {
			return domain.StructuredSummary{}, &domain.ParseError{
				What: "structured summary",
				Err:  errors.New("missing key " + key),
			}
		}
	}
	return summary, nil
}

func concatContents(documents []domain.Document) string {
	contents := make([]string, len(documents))
	for i, d := range documents {
		contents[i] = d.Content
	}
	return strings.Join(contents, "\n")
}
