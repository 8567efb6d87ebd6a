package qa

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediagent/internal/domain"
)

type fakeRetriever struct {
	chunks  []domain.Chunk
	gotText string
	gotK    int
}

func (f *fakeRetriever) Query(_ context.Context, text string, k int) ([]domain.Chunk, error) {
	f.gotText = text
	f.gotK = k
	return f.chunks, nil
}

type fakeLLM struct {
	reply     string
	err       error
	gotPrompt string
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.gotPrompt = prompt
	return f.reply, f.err
}

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func retrievedChunks() []domain.Chunk {
	return []domain.Chunk{
		{Content: "go shipped generics", Metadata: domain.Metadata{SourceID: "d1"}},
		{Content: "rust has traits", Metadata: domain.Metadata{SourceID: "d3"}},
	}
}

func TestAnswerSplitsCommaSeparatedSources(t *testing.T) {
	retriever := &fakeRetriever{chunks: retrievedChunks()}
	model := &fakeLLM{reply: "Generics shipped in Go 1.18.\nSOURCES: d1, d3"}
	engine := NewEngine(model, retriever, 2, testLogger())

	res, err := engine.Answer(context.Background(), "when did go get generics?")
	require.NoError(t, err)
	assert.Equal(t, "Generics shipped in Go 1.18.", res.Answer)
	assert.Equal(t, []string{"d1", "d3"}, res.SourceIDs)
	assert.Equal(t, "when did go get generics?", retriever.gotText)
	assert.Equal(t, 2, retriever.gotK)
}

func TestAnswerPromptCarriesContextAndIDs(t *testing.T) {
	retriever := &fakeRetriever{chunks: retrievedChunks()}
	model := &fakeLLM{reply: "whatever\nSOURCES: d1"}
	engine := NewEngine(model, retriever, 0, testLogger())

	_, err := engine.Answer(context.Background(), "anything")
	require.NoError(t, err)
	assert.Contains(t, model.gotPrompt, "go shipped generics")
	assert.Contains(t, model.gotPrompt, "Source: d1")
	assert.Contains(t, model.gotPrompt, "Source: d3")
	assert.Contains(t, model.gotPrompt, "Question: anything")
}

func TestAnswerWithoutSourcesLine(t *testing.T) {
	engine := NewEngine(&fakeLLM{reply: "I don't know."}, &fakeRetriever{}, 0, testLogger())
	res, err := engine.Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "I don't know.", res.Answer)
	assert.Empty(t, res.SourceIDs)
}

func TestAnswerTrimsAndDropsEmptySources(t *testing.T) {
	engine := NewEngine(&fakeLLM{reply: "a\nSOURCES:  d1 ,, d2 , "}, &fakeRetriever{}, 0, testLogger())
	res, err := engine.Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d2"}, res.SourceIDs)
}

// Hallucinated ids are passed through verbatim; resolution to nothing is
// the citation step's concern.
func TestAnswerDoesNotValidateIDs(t *testing.T) {
	retriever := &fakeRetriever{chunks: retrievedChunks()}
	engine := NewEngine(&fakeLLM{reply: "a\nSOURCES: nonexistent"}, retriever, 0, testLogger())
	res, err := engine.Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []string{"nonexistent"}, res.SourceIDs)
}

func TestAnswerPropagatesLLMError(t *testing.T) {
	wantErr := &domain.ProviderError{Provider: "openai-chat", Err: errors.New("rate limited")}
	engine := NewEngine(&fakeLLM{err: wantErr}, &fakeRetriever{}, 0, testLogger())
	_, err := engine.Answer(context.Background(), "q")
	var provErr *domain.ProviderError
	assert.ErrorAs(t, err, &provErr)
}
