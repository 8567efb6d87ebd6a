// Package tokens measures prompt cost against a model context window.
package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Encoder counts tokens in a text under a fixed model tokenizer.
type Encoder interface {
	Count(text string) int
}

// TiktokenEncoder counts tokens with the BPE encoding of a model family.
type TiktokenEncoder struct {
	enc *tiktoken.Tiktoken
}

func NewTiktokenEncoder(model string) (*TiktokenEncoder, error) {
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("tokenizer for %s: %w", model, err)
	}
	return &TiktokenEncoder{enc: enc}, nil
}

func (e *TiktokenEncoder) Count(text string) int {
	return len(e.enc.Encode(text, nil, nil))
}

// Estimator measures the token cost of a prompt template filled with the
// full corpus text. Pure; used solely to pick a summarization strategy.
type Estimator struct {
	enc Encoder
}

func NewEstimator(enc Encoder) *Estimator { return &Estimator{enc: enc} }

// Estimate formats template with corpus substituted and counts the result.
// The template carries a single %s verb for the corpus.
func (e *Estimator) Estimate(corpus, template string) int {
	return e.enc.Count(fmt.Sprintf(template, corpus))
}
