// Package qa answers questions against the indexed corpus with citations.
package qa

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mediagent/internal/domain"
	"mediagent/internal/index"
	"mediagent/internal/llm"
)

// Result is an answer plus the source ids the model claims to have used,
// in the order the model listed them.
type Result struct {
	Answer    string
	SourceIDs []string
}

// Retriever is the index subset the engine needs.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]domain.Chunk, error)
}

// Engine retrieves the top-k chunks for a question and asks the model to
// answer strictly from them, listing the source ids it used.
type Engine struct {
	llm       llm.LLM
	retriever Retriever
	topK      int
	log       *slog.Logger
}

func NewEngine(model llm.LLM, retriever Retriever, topK int, log *slog.Logger) *Engine {
	if topK <= 0 {
		topK = index.DefaultTopK
	}
	return &Engine{llm: model, retriever: retriever, topK: topK, log: log}
}

// Answer runs one retrieve-then-read round trip. Ids returned by the model
// are passed through verbatim; nothing checks that they were actually
// retrieved. The citation lookup tolerates unknown ids by design.
func (e *Engine) Answer(ctx context.Context, question string) (Result, error) {
	chunks, err := e.retriever.Query(ctx, question, e.topK)
	if err != nil {
		return Result{}, err
	}
	prompt := buildPrompt(question, chunks)
	raw, err := e.llm.Complete(ctx, prompt)
	if err != nil {
		return Result{}, err
	}
	answer, ids := splitAnswerAndSources(raw)
	e.log.Debug("question answered", "retrieved", len(chunks), "cited", len(ids))
	return Result{Answer: answer, SourceIDs: ids}, nil
}

func buildPrompt(question string, chunks []domain.Chunk) string {
	var sb strings.Builder
	sb.WriteString("Answer the question using only the extracted parts of documents below. ")
	sb.WriteString("If the answer is not contained in them, say that you don't know.\n")
	sb.WriteString("After the answer, write a final line of the form \"SOURCES: <id>, <id>\" ")
	sb.WriteString("listing the source ids of the parts you actually used, comma-separated.\n\n")
	for _, ch := range chunks {
		fmt.Fprintf(&sb, "Content: %s\nSource: %s\n\n", ch.Content, ch.Metadata.SourceID)
	}
	fmt.Fprintf(&sb, "Question: %s\n", question)
	return sb.String()
}

// splitAnswerAndSources separates the answer body from the trailing SOURCES
// line. A missing line yields the full text as answer and no ids.
func splitAnswerAndSources(raw string) (string, []string) {
	marker := strings.LastIndex(raw, "SOURCES:")
	if marker < 0 {
		return strings.TrimSpace(raw), nil
	}
	answer := strings.TrimSpace(raw[:marker])
	var ids []string
	for _, part := range strings.Split(raw[marker+len("SOURCES:"):], ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return answer, ids
}
