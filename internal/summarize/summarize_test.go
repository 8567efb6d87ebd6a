package summarize

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediagent/internal/domain"
	"mediagent/internal/prompts"
	"mediagent/internal/qa"
	"mediagent/internal/tokens"
)

const validSummary = `{"summary":"S","q1":"A","q2":"B","q3":"C"}`

// fixedEncoder makes the token estimate a constant so the strategy cutoff
// can be pinned exactly.
type fixedEncoder struct{ n int }

func (e fixedEncoder) Count(string) int { return e.n }

type fakeLLM struct {
	replies []string
	calls   int
}

func (f *fakeLLM) Complete(context.Context, string) (string, error) {
	if f.calls >= len(f.replies) {
		return "", errors.New("unexpected call")
	}
	reply := f.replies[f.calls]
	f.calls++
	return reply, nil
}

type fakeAnswerer struct {
	answer string
	calls  int
}

func (f *fakeAnswerer) Answer(context.Context, string) (qa.Result, error) {
	f.calls++
	return qa.Result{Answer: f.answer}, nil
}

func newEngine(encoderTokens int, model *fakeLLM, answerer *fakeAnswerer) *Engine {
	return NewEngine(
		model,
		tokens.NewEstimator(fixedEncoder{n: encoderTokens}),
		prompts.NewRedditGenerator(),
		answerer,
		3,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func docs() []domain.Document {
	return []domain.Document{{Content: "post one"}, {Content: "post two"}}
}

func TestStuffStrategyAtExactBudget(t *testing.T) {
	model := &fakeLLM{replies: []string{validSummary}}
	answerer := &fakeAnswerer{}
	engine := newEngine(4097, model, answerer)

	summary, err := engine.Summarize(context.Background(), docs())
	require.NoError(t, err)
	assert.Equal(t, domain.StructuredSummary{Summary: "S", Q1: "A", Q2: "B", Q3: "C"}, summary)
	assert.Equal(t, 1, model.calls)
	assert.Zero(t, answerer.calls, "retrieval path must not run under budget")
}

func TestRetrievalStrategyOneOverBudget(t *testing.T) {
	model := &fakeLLM{}
	answerer := &fakeAnswerer{answer: validSummary}
	engine := newEngine(4098, model, answerer)

	summary, err := engine.Summarize(context.Background(), docs())
	require.NoError(t, err)
	assert.Equal(t, "S", summary.Summary)
	assert.Equal(t, 1, answerer.calls)
	assert.Zero(t, model.calls, "stuff path must not run over budget")
}

func TestMalformedOutputIsReAskedThenFatal(t *testing.T) {
	model := &fakeLLM{replies: []string{"not json", `{"summary":"S"}`, "{"}}
	engine := newEngine(1, model, &fakeAnswerer{})

	_, err := engine.Summarize(context.Background(), docs())
	var parseErr *domain.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 3, model.calls)
}

func TestMalformedThenValidRecovers(t *testing.T) {
	model := &fakeLLM{replies: []string{"oops", validSummary}}
	engine := newEngine(1, model, &fakeAnswerer{})

	summary, err := engine.Summarize(context.Background(), docs())
	require.NoError(t, err)
	assert.Equal(t, "C", summary.Q3)
	assert.Equal(t, 2, model.calls)
}

func TestParseStructuredSummary(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		got, err := ParseStructuredSummary(`{"summary":"S","q1":"A","q2":"B","q3":"C"}`)
		require.NoError(t, err)
		assert.Equal(t, domain.StructuredSummary{Summary: "S", Q1: "A", Q2: "B", Q3: "C"}, got)
	})

	t.Run("surrounding whitespace tolerated", func(t *testing.T) {
		_, err := ParseStructuredSummary("\n  " + validSummary + "  \n")
		assert.NoError(t, err)
	})

	var parseErr *domain.ParseError
	t.Run("invalid json", func(t *testing.T) {
		_, err := ParseStructuredSummary("summary: S")
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := ParseStructuredSummary(`{"summary":"S","q1":"A","q2":"B"}`)
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("empty value counts as missing", func(t *testing.T) {
		_, err := ParseStructuredSummary(`{"summary":"S","q1":"","q2":"B","q3":"C"}`)
		assert.ErrorAs(t, err, &parseErr)
	})
}
