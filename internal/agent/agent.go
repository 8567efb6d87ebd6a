// Package agent drives the read-question / answer / cite / record cycle.
package agent

import (
	"context"
	"log/slog"
	"strings"

	"mediagent/internal/domain"
	"mediagent/internal/qa"
	"mediagent/internal/session"
)

// QuitSentinel ends the conversation, case-insensitively.
const QuitSentinel = "q"

// State is the conversation loop position. Ask moves through the
// intermediate states synchronously and lands back on StateAwaitingInput,
// or on StateClosed after the quit sentinel or an unrecoverable error.
type State string

const (
	StateAwaitingInput     State = "awaiting_input"
	StateResolvingQuestion State = "resolving_question"
	StateAnswering         State = "answering"
	StateCiting            State = "citing"
	StateRecorded          State = "recorded"
	StateClosed            State = "closed"
)

// Answerer is the QA-engine subset the agent needs.
type Answerer interface {
	Answer(ctx context.Context, question string) (qa.Result, error)
}

// Citer resolves claimed source ids to records.
type Citer interface {
	GetBySourceIDs(ids []string) ([]domain.SourceRecord, error)
}

// Exchange is the outcome of one answered question. Sources may be empty:
// zero citation matches is valid and rendered as "no supporting data".
type Exchange struct {
	Question    string
	Substituted bool
	Answer      string
	SourceIDs   []string
	Sources     []domain.SourceRecord
}

// Agent holds the per-session conversation state.
type Agent struct {
	answerer Answerer
	citer    Citer
	sess     *session.Session
	summary  domain.StructuredSummary
	state    State
	log      *slog.Logger
}

func New(answerer Answerer, citer Citer, sess *session.Session, summary domain.StructuredSummary, log *slog.Logger) *Agent {
	return &Agent{
		answerer: answerer,
		citer:    citer,
		sess:     sess,
		summary:  summary,
		state:    StateAwaitingInput,
		log:      log,
	}
}

func (a *Agent) State() State { return a.state }

// Summary returns the structured summary shown before the loop starts.
func (a *Agent) Summary() domain.StructuredSummary { return a.summary }

// Ask processes one line of user input. The quit sentinel returns
// (nil, nil) and closes the agent. Input exactly matching q1, q2 or q3 is
// substituted with the corresponding suggested question before answering.
// Errors close the agent; the caller still owes the session a flush.
func (a *Agent) Ask(ctx context.Context, input string) (*Exchange, error) {
	if a.state == StateClosed {
		return nil, nil
	}
	input = strings.TrimSpace(input)
	if strings.EqualFold(input, QuitSentinel) {
		a.state = StateClosed
		return nil, nil
	}

	a.state = StateResolvingQuestion
	question := input
	substituted := false
	if suggested := a.summary.Suggested(input); suggested != "" {
		question = suggested
		substituted = true
	}

	a.state = StateAnswering
	result, err := a.answerer.Answer(ctx, question)
	if err != nil {
		a.state = StateClosed
		return nil, err
	}

	a.state = StateCiting
	sources, err := a.citer.GetBySourceIDs(result.SourceIDs)
	if err != nil {
		a.state = StateClosed
		return nil, err
	}

	a.state = StateRecorded
	a.sess.Append(domain.HistoryEntry{
		Question: question,
		Answer:   result.Answer,
		Sources:  sources,
	})
	a.log.Debug("exchange recorded", "cited", len(result.SourceIDs), "resolved", len(sources))

	a.state = StateAwaitingInput
	return &Exchange{
		Question:    question,
		Substituted: substituted,
		Answer:      result.Answer,
		SourceIDs:   result.SourceIDs,
		Sources:     sources,
	}, nil
}
