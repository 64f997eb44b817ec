package tui

import (
	"context"
	"fmt"
	"strings"

	"mindease-be/internal/constant"
	"mindease-be/internal/dto"
	"mindease-be/internal/pkg/logger"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ChatPort is the TUI-facing subset of the chatbot service.
type ChatPort interface {
	UpdateConfig(ctx context.Context, sessionId string, request *dto.UpdateSessionConfigRequest) (*dto.SessionResponse, error)
	SendChat(ctx context.Context, sessionId string, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	ResetSession(ctx context.Context, sessionId string) (*dto.SessionResponse, error)
	ListModels(ctx context.Context) *dto.ModelsResponse
	ListDocuments(ctx context.Context) (*dto.DocumentsResponse, error)
}

type page int

const (
	pageChat page = iota
	pageHome
)

type (
	documentsMsg struct {
		docs []string
		err  error
	}
	replyMsg struct {
		res *dto.SendChatResponse
		err error
	}
	sessionMsg struct {
		session *dto.SessionResponse
		err     error
	}
)

// Model is the Bubble Tea model of the chat client.
type Model struct {
	service ChatPort
	logger  logger.ILogger

	input    textinput.Model
	viewport viewport.Model
	page     page
	ready    bool

	session   *dto.SessionResponse
	models    []string
	documents []string
	last      *dto.SendChatResponse
	pending   string
	busy      bool
	status    string
}

// New builds the client around an already created session.
func New(service ChatPort, session *dto.SessionResponse, log logger.ILogger) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "What is your question?"
	ti.Focus()
	ti.CharLimit = 4000

	m := Model{
		service:  service,
		logger:   log,
		input:    ti,
		viewport: viewport.New(0, 0),
		session:  session,
		status:   "Ready.",
	}
	if models := service.ListModels(context.Background()); models != nil {
		m.models = models.Models
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadDocuments())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, bh := transcriptBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 4 + ih + bh // title, documents, settings, status
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved)
		m.refresh()
		return m, nil

	case documentsMsg:
		if msg.err != nil {
			m.logger.Warn("TUI", "Failed to list documents", map[string]interface{}{"error": msg.err.Error()})
			m.status = "Could not list documents: " + msg.err.Error()
			return m, nil
		}
		m.documents = msg.docs
		return m, nil

	case replyMsg:
		m.busy = false
		m.pending = ""
		if msg.err != nil {
			m.logger.Error("TUI", "Chat request failed", map[string]interface{}{"error": msg.err.Error()})
			m.status = "Error: " + msg.err.Error()
		} else {
			m.last = msg.res
			m.session.Transcript = msg.res.Transcript
			m.status = "Ready."
			if msg.res.Failed {
				m.status = "The last question could not be answered."
			}
		}
		m.refresh()
		return m, nil

	case sessionMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		if len(msg.session.Transcript) == 0 {
			m.last = nil
		}
		m.session = msg.session
		m.status = "Ready."
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey reports false for keys that belong to the text input
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "tab":
		if m.page == pageChat {
			m.page = pageHome
		} else {
			m.page = pageChat
		}
		m.refresh()
		return nil, true
	case "enter", "ctrl+n", "ctrl+t", "ctrl+g", "ctrl+r":
	default:
		return nil, false
	}

	if m.busy {
		m.status = "Still answering the previous question..."
		return nil, true
	}

	switch msg.String() {
	case "enter":
		q := strings.TrimSpace(m.input.Value())
		if q == "" || m.page != pageChat {
			return nil, true
		}
		m.input.Reset()
		m.busy = true
		m.pending = q
		m.status = "Thinking..."
		m.refresh()
		return m.send(q), true
	case "ctrl+n":
		next := nextModel(m.models, m.session.Config.Model)
		return m.updateConfig(&dto.UpdateSessionConfigRequest{Model: &next}), true
	case "ctrl+t":
		v := !m.session.Config.UseHistory
		return m.updateConfig(&dto.UpdateSessionConfigRequest{UseHistory: &v}), true
	case "ctrl+g":
		v := !m.session.Config.Debug
		return m.updateConfig(&dto.UpdateSessionConfigRequest{Debug: &v}), true
	case "ctrl+r":
		m.busy = true
		svc, id := m.service, m.session.Id
		return func() tea.Msg {
			s, err := svc.ResetSession(context.Background(), id)
			return sessionMsg{session: s, err: err}
		}, true
	}
	return nil, false
}

func (m *Model) send(question string) tea.Cmd {
	svc, id := m.service, m.session.Id
	return func() tea.Msg {
		res, err := svc.SendChat(context.Background(), id, &dto.SendChatRequest{Question: question})
		return replyMsg{res: res, err: err}
	}
}

func (m *Model) updateConfig(req *dto.UpdateSessionConfigRequest) tea.Cmd {
	m.busy = true
	svc, id := m.service, m.session.Id
	return func() tea.Msg {
		s, err := svc.UpdateConfig(context.Background(), id, req)
		return sessionMsg{session: s, err: err}
	}
}

func (m Model) loadDocuments() tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		res, err := svc.ListDocuments(context.Background())
		if err != nil {
			return documentsMsg{err: err}
		}
		return documentsMsg{docs: res.Documents}
	}
}

func (m *Model) refresh() {
	if m.page == pageHome {
		m.viewport.SetContent(renderHome(m.viewport.Width))
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.page == pageHome {
		return titleStyle.Render(constant.InfoTitle) + "\n" +
			transcriptBoxStyle.Render(m.viewport.View()) + "\n" +
			mutedStyle.Render("tab: back to chat")
	}

	docs := mutedStyle.Render(constant.ChatSubtitle + " " + strings.Join(m.documents, ", "))
	return titleStyle.Render(constant.ChatTitle) + "\n" +
		docs + "\n" +
		transcriptBoxStyle.Render(m.viewport.View()) + "\n" +
		inputBoxStyle.Render(m.input.View()) + "\n" +
		m.renderSettings() + "\n" +
		statusStyle.Render(m.status)
}

func (m Model) renderSettings() string {
	cfg := m.session.Config
	return mutedStyle.Render(fmt.Sprintf(
		"model: %s (ctrl+n)  history: %s (ctrl+t)  debug: %s (ctrl+g)  ctrl+r: start over  tab: home",
		cfg.Model, onOff(cfg.UseHistory), onOff(cfg.Debug),
	))
}

func (m Model) renderTranscript() string {
	var b strings.Builder
	for _, t := range m.session.Transcript {
		switch {
		case t.Role == "user":
			b.WriteString(userStyle.Render("You: ") + t.Content)
		case t.IsError:
			b.WriteString(errorStyle.Render("MindEase: " + t.Content))
		default:
			b.WriteString(assistantStyle.Render("MindEase: ") + t.Content)
		}
		b.WriteString("\n\n")
	}
	if m.pending != "" {
		b.WriteString(userStyle.Render("You: ") + m.pending + "\n\n")
		b.WriteString(mutedStyle.Render("MindEase is thinking..."))
	}

	if m.session.Config.Debug && m.last != nil && m.pending == "" {
		b.WriteString(renderDebug(m.last))
	}
	if b.Len() == 0 {
		return mutedStyle.Render("Ask a question to get started.")
	}
	return b.String()
}

func renderDebug(res *dto.SendChatResponse) string {
	var b strings.Builder
	if res.Summary != "" {
		b.WriteString(debugStyle.Render("Summary used to search:") + "\n" + res.Summary + "\n\n")
	}
	for i, c := range res.Chunks {
		b.WriteString(debugStyle.Render(fmt.Sprintf("Chunk %d  %s  similarity=%.3f", i+1, c.SourcePath, c.Similarity)))
		b.WriteString("\n" + c.ChunkText + "\n\n")
	}
	return b.String()
}

func renderHome(width int) string {
	body := lipgloss.NewStyle().Width(max(20, width-4))
	var b strings.Builder
	for _, s := range constant.InfoSections {
		if s.Heading != "" {
			b.WriteString(headingStyle.Render(s.Heading) + "\n")
		}
		b.WriteString(body.Render(s.Body) + "\n\n")
	}
	return b.String()
}

// nextModel cycles through ids; an unknown current id maps to the first entry
func nextModel(ids []string, current string) string {
	if len(ids) == 0 {
		return current
	}
	for i, id := range ids {
		if id == current {
			return ids[(i+1)%len(ids)]
		}
	}
	return ids[0]
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle         = lipgloss.NewStyle().Bold(true)
	headingStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle          = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	assistantStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	debugStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)
