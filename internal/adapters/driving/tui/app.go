// Package tui provides the interactive chat terminal UI.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

var (
	chatBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	citationStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// answerMsg carries a completed answer back into the update loop.
type answerMsg struct {
	question string
	result   *domain.AnswerResult
}

// answerErrMsg carries a failed answer back into the update loop.
type answerErrMsg struct {
	err error
}

// Model is the Bubble Tea model for the chat UI. One model drives one thread.
type Model struct {
	chat      driving.ChatService
	sessionID string
	threadID  string

	input    textinput.Model
	viewport viewport.Model
	lines    []string
	status   string
	waiting  bool
	ready    bool
}

// New creates a chat model for the given session and thread. Any existing
// thread history is rendered into the transcript.
func New(chat driving.ChatService, sessionID, threadID string, history []domain.Message) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)

	m := Model{
		chat:      chat,
		sessionID: sessionID,
		threadID:  threadID,
		input:     ti,
		viewport:  vp,
		status:    "Ready. Type a question.",
	}
	for _, msg := range history {
		m.lines = append(m.lines, renderMessage(msg.Role, msg.Content, msg.CitedChunkIDs))
	}
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window, and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, spacer, input frame, status
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-4)
		m.viewport.Height = vh
		m.viewport.SetContent(m.transcript())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.String() == "esc" {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.waiting {
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.lines = append(m.lines, renderMessage(domain.RoleUser, question, nil))
			m.viewport.SetContent(m.transcript())
			m.viewport.GotoBottom()
			m.input.Reset()
			m.waiting = true
			m.status = "Thinking..."
			return m, m.ask(question)
		}

	case answerMsg:
		m.waiting = false
		m.status = "Ready."
		if msg.result.Refused {
			m.status = "Question refused."
		}
		m.lines = append(m.lines, renderMessage(domain.RoleAssistant, msg.result.Text, msg.result.CitedChunkIDs))
		m.viewport.SetContent(m.transcript())
		m.viewport.GotoBottom()
		return m, nil

	case answerErrMsg:
		m.waiting = false
		m.status = errorStyle.Render("Error: " + msg.err.Error())
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("docchat")
	transcript := chatBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

// ask runs the answer pipeline off the update loop.
func (m Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.chat.Answer(context.Background(), m.sessionID, m.threadID, question)
		if err != nil {
			return answerErrMsg{err: err}
		}
		return answerMsg{question: question, result: result}
	}
}

func (m Model) transcript() string {
	if len(m.lines) == 0 {
		return "No messages yet."
	}
	return strings.Join(m.lines, "\n\n")
}

func renderMessage(role domain.Role, content string, citations []string) string {
	label := assistantStyle.Render("docchat")
	if role == domain.RoleUser {
		label = userStyle.Render("you")
	}
	out := label + ": " + content
	if len(citations) > 0 {
		out += "\n" + citationStyle.Render(fmt.Sprintf("cited: %s", strings.Join(citations, ", ")))
	}
	return out
}
