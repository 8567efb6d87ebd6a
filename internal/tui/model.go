package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mediagent/internal/agent"
	"mediagent/internal/domain"
)

// Model is the Bubble Tea model for the conversation surface. It renders
// the structured summary with its seed questions, then a transcript of
// answered questions with their resolved citations.
type Model struct {
	agent     *agent.Agent
	ctx       context.Context
	input     textinput.Model
	viewport  viewport.Model
	exchanges []agent.Exchange
	status    string
	ready     bool
	err       error
}

// New creates a new TUI model over a bootstrapped agent.
func New(ctx context.Context, a *agent.Agent) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask the db (q to quit, q1/q2/q3 for suggested questions)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		agent:    a,
		ctx:      ctx,
		input:    ti,
		viewport: vp,
		status:   "Corpus indexed. Ask away.",
	}
}

// Err reports the error that ended the session, if any.
func (m Model) Err() error { return m.err }

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, qh := queryBoxStyle.GetFrameSize()
		_, th := transcriptStyle.GetFrameSize()
		reserved := summaryHeight(m.agent.Summary()) + qh + 2
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width)
		m.viewport.Height = maxInt(3, vh-th)
		m.viewport.SetContent(m.renderTranscript())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			m.input.SetValue("")
			exchange, err := m.agent.Ask(m.ctx, line)
			if err != nil {
				m.err = err
				m.status = "Error: " + err.Error()
				return m, tea.Quit
			}
			if exchange == nil {
				m.status = "Bye."
				return m, tea.Quit
			}
			m.exchanges = append(m.exchanges, *exchange)
			m.status = fmt.Sprintf("Answered with %d supporting sources", len(exchange.Sources))
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := renderSummary(m.agent.Summary())
	transcript := transcriptStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.exchanges) == 0 {
		return "No questions asked yet."
	}
	var sb strings.Builder
	for i, ex := range m.exchanges {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		question := ex.Question
		if ex.Substituted {
			question += " (suggested)"
		}
		sb.WriteString(questionStyle.Render("Q: "+question) + "\n")
		sb.WriteString(answerStyle.Render(ex.Answer) + "\n")
		sb.WriteString(renderSources(ex.Sources))
	}
	return sb.String()
}

func renderSources(sources []domain.SourceRecord) string {
	if len(sources) == 0 {
		return sourceHeadStyle.Render("No supporting data for this answer.")
	}
	var sb strings.Builder
	sb.WriteString(sourceHeadStyle.Render("These are sources I used to create my answer:"))
	for i, src := range sources {
		meta := fmt.Sprintf("[%s] %s (score %d, by %s)",
			src.Metadata.SourceID, src.Metadata.Title, src.Metadata.Score, src.Metadata.Author)
		sb.WriteString(fmt.Sprintf("\n  %d. %s\n     %s", i+1, meta, truncate(src.Content, 200)))
	}
	return sb.String()
}

func renderSummary(s domain.StructuredSummary) string {
	title := titleStyle.Render("Summary")
	body := summaryStyle.Render(s.Summary)
	questions := summaryStyle.Render(fmt.Sprintf("q1: %s\nq2: %s\nq3: %s", s.Q1, s.Q2, s.Q3))
	return title + "\n" + body + "\n" + questionsTitle.Render("Questions to start the chat") + "\n" + questions
}

func summaryHeight(s domain.StructuredSummary) int {
	return strings.Count(renderSummary(s), "\n") + 1
}

func truncate(s string, n int) string {
	runes := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "…"
}

var (
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle      = lipgloss.NewStyle().Bold(true)
	questionsTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	summaryStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	questionStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	answerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	sourceHeadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
