package tui

import (
	"context"
	"errors"
	"testing"

	"mindease-be/internal/dto"
	"mindease-be/internal/pkg/logger"
	"mindease-be/pkg/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePort struct {
	sent    []string
	sendErr error
	config  store.SessionConfig
	resets  int
}

func (f *fakePort) UpdateConfig(ctx context.Context, sessionId string, request *dto.UpdateSessionConfigRequest) (*dto.SessionResponse, error) {
	if request.Model != nil {
		f.config.Model = *request.Model
	}
	if request.UseHistory != nil {
		f.config.UseHistory = *request.UseHistory
	}
	if request.Debug != nil {
		f.config.Debug = *request.Debug
	}
	return &dto.SessionResponse{Id: sessionId, Config: f.config}, nil
}

func (f *fakePort) SendChat(ctx context.Context, sessionId string, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	f.sent = append(f.sent, request.Question)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &dto.SendChatResponse{
		SessionId: sessionId,
		Reply:     "X is a thing.",
		Transcript: []dto.TurnDTO{
			{Role: "user", Content: request.Question},
			{Role: "assistant", Content: "X is a thing."},
		},
		Summary: "what is x",
		Chunks:  []dto.ChunkDTO{{SourcePath: "x.md", ChunkText: "X is a thing.", Similarity: 0.9}},
	}, nil
}

func (f *fakePort) ResetSession(ctx context.Context, sessionId string) (*dto.SessionResponse, error) {
	f.resets++
	return &dto.SessionResponse{Id: sessionId, Config: f.config, Transcript: []dto.TurnDTO{}}, nil
}

func (f *fakePort) ListModels(ctx context.Context) *dto.ModelsResponse {
	return &dto.ModelsResponse{Models: []string{"mistral-7b", "gemma-7b"}, Default: "mistral-7b"}
}

func (f *fakePort) ListDocuments(ctx context.Context) (*dto.DocumentsResponse, error) {
	return &dto.DocumentsResponse{Documents: []string{"x.md"}}, nil
}

func newTestModel(port *fakePort) Model {
	port.config = store.SessionConfig{Model: "mistral-7b", UseHistory: true}
	m := New(port, &dto.SessionResponse{Id: "s-1", Config: port.config}, logger.NewNopLogger())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

// press feeds a key and runs the resulting command once, feeding its message back
func press(t *testing.T, m Model, key tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(key)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	msg := cmd()
	next, _ = m.Update(msg)
	return next.(Model)
}

func TestModel_SendQuestion(t *testing.T) {
	port := &fakePort{}
	m := newTestModel(port)
	m.input.SetValue("What is X?")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Equal(t, "What is X?", m.pending)
	assert.Empty(t, m.input.Value())

	// a second question while the first is in flight is refused
	m.input.SetValue("again")
	next, second := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	assert.Nil(t, second)

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.False(t, m.busy)
	assert.Equal(t, []string{"What is X?"}, port.sent)
	require.Len(t, m.session.Transcript, 2)
	assert.Contains(t, m.renderTranscript(), "X is a thing.")
}

func TestModel_SendError(t *testing.T) {
	port := &fakePort{sendErr: errors.New("session not found")}
	m := newTestModel(port)
	m.input.SetValue("hello")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.busy)
	assert.Contains(t, m.status, "session not found")
}

func TestModel_EmptyInputIsIgnored(t *testing.T) {
	port := &fakePort{}
	m := newTestModel(port)
	m.input.SetValue("   ")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, port.sent)
	assert.False(t, m.busy)
}

func TestModel_SettingsKeys(t *testing.T) {
	port := &fakePort{}
	m := newTestModel(port)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Equal(t, "gemma-7b", m.session.Config.Model)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Equal(t, "mistral-7b", m.session.Config.Model)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.False(t, m.session.Config.UseHistory)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	assert.True(t, m.session.Config.Debug)
}

func TestModel_DebugShowsSummaryAndChunks(t *testing.T) {
	port := &fakePort{}
	m := newTestModel(port)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})

	m.input.SetValue("What is X?")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	out := m.renderTranscript()
	assert.Contains(t, out, "what is x")
	assert.Contains(t, out, "x.md")
}

func TestModel_ResetClearsTranscript(t *testing.T) {
	port := &fakePort{}
	m := newTestModel(port)
	m.input.SetValue("What is X?")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotEmpty(t, m.session.Transcript)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, 1, port.resets)
	assert.Empty(t, m.session.Transcript)
	assert.Nil(t, m.last)
}

func TestModel_TabSwitchesToHome(t *testing.T) {
	m := newTestModel(&fakePort{})

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, pageHome, m.page)
	assert.Contains(t, m.View(), "Welcome to MindEase!")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, pageChat, m.page)
}

func TestModel_DocumentsLoaded(t *testing.T) {
	m := newTestModel(&fakePort{})
	msg := m.loadDocuments()()

	next, _ := m.Update(msg)
	m = next.(Model)
	assert.Equal(t, []string{"x.md"}, m.documents)
}

func TestNextModel(t *testing.T) {
	ids := []string{"a", "b", "c"}
	assert.Equal(t, "b", nextModel(ids, "a"))
	assert.Equal(t, "a", nextModel(ids, "c"))
	assert.Equal(t, "a", nextModel(ids, "zzz"))
	assert.Equal(t, "x", nextModel(nil, "x"))
}
