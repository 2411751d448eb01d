package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fdv-chatbot-platform/models"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Asker is the TUI-facing subset of the assistant.
type Asker interface {
	Ask(ctx context.Context, req models.AskRequest) (models.AskResponse, error)
}

type turn struct {
	question string
	answer   string
	sources  []string
	err      error
}

type answerMsg struct {
	question string
	resp     models.AskResponse
	err      error
}

// Model is the Bubble Tea model for the terminal chat.
type Model struct {
	asker     Asker
	vendor    string
	role      string
	sessionID string
	timeout   time.Duration

	input    textinput.Model
	viewport viewport.Model
	turns    []turn
	status   string
	waiting  bool
	ready    bool
}

// New creates a chat model bound to one vendor. sessionID may be empty.
func New(asker Asker, vendor, role, sessionID string, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Still et spørsmål og trykk Enter"
	ti.Focus()
	ti.CharLimit = 2000
	vp := viewport.New(0, 0)
	return Model{
		asker:     asker,
		vendor:    vendor,
		role:      role,
		sessionID: sessionID,
		timeout:   timeout,
		input:     ti,
		viewport:  vp,
		status:    "Klar. Ctrl+C avslutter.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

// SessionID is the conversation the model continues.
func (m Model) SessionID() string { return m.sessionID }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, vh := transcriptStyle.GetFrameSize()
		_, ih := inputStyle.GetFrameSize()
		reserved := 3 + ih + vh // header, status and input lines plus borders
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved)
		m.refresh()
		return m, nil

	case answerMsg:
		m.waiting = false
		t := turn{question: msg.question, err: msg.err}
		if msg.err != nil {
			m.status = "Feil: " + msg.err.Error()
		} else {
			t.answer = msg.resp.Answer
			t.sources = msg.resp.Sources
			m.sessionID = msg.resp.SessionID
			m.status = fmt.Sprintf("Svar på %d ms", msg.resp.LatencyMs)
		}
		m.turns = append(m.turns, t)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.waiting {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			m.status = "Tenker..."
			return m, m.ask(q)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	vpModel, vpCmd := m.viewport.Update(msg)
	m.viewport = vpModel
	return m, tea.Batch(cmd, vpCmd)
}

func (m Model) ask(question string) tea.Cmd {
	req := models.AskRequest{
		Question:  question,
		Role:      m.role,
		Vendor:    m.vendor,
		SessionID: m.sessionID,
	}
	asker, timeout := m.asker, m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		resp, err := asker.Ask(ctx, req)
		return answerMsg{question: question, resp: resp, err: err}
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Laster..."
	}
	header := headerStyle.Render("FDV-assistent · " + m.vendor)
	transcript := transcriptStyle.Render(m.viewport.View())
	input := inputStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	if len(m.turns) == 0 {
		return "Ingen spørsmål ennå."
	}
	var b strings.Builder
	for i, t := range m.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("Du: " + t.question))
		b.WriteString("\n")
		if t.err != nil {
			b.WriteString(errorStyle.Render(t.err.Error()))
			continue
		}
		b.WriteString(lipgloss.NewStyle().Width(max(20, m.viewport.Width-2)).Render(t.answer))
		if len(t.sources) > 0 {
			b.WriteString("\n")
			b.WriteString(sourceStyle.Render("Kilder: " + strings.Join(t.sources, ", ")))
		}
	}
	return b.String()
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	questionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	sourceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
