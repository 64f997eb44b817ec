package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"mindease-be/internal/pkg/logger"
	"mindease-be/pkg/rag/ragerr"
	"mindease-be/pkg/rag/retriever"
	"mindease-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetriever struct {
	text      string
	err       error
	lastQuery string
	lastK     int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, k int) (retriever.Result, error) {
	f.lastQuery, f.lastK = query, k
	if f.err != nil {
		return retriever.Result{}, f.err
	}
	return retriever.Result{
		Text:   f.text,
		Chunks: []store.RetrievedChunk{{SourcePath: "x.md", ChunkText: f.text, Similarity: 0.9}},
	}, nil
}

type fakeSummarizer struct {
	reply   string
	err     error
	calls   int
	history []store.Turn
}

func (f *fakeSummarizer) Summarize(ctx context.Context, model string, history []store.Turn, question string) (string, error) {
	f.calls++
	f.history = history
	return f.reply, f.err
}

type fakeCompleter struct {
	reply      string
	err        error
	lastModel  string
	lastPrompt string
}

func (f *fakeCompleter) Complete(ctx context.Context, model, prompt string) (string, error) {
	f.lastModel, f.lastPrompt = model, prompt
	return f.reply, f.err
}

func newSession(useHistory, debug bool, turns int) *store.Session {
	s := &store.Session{
		ID:     "s-1",
		Config: store.SessionConfig{Model: "mistral-7b", UseHistory: useHistory, Debug: debug},
		State:  store.StateIdle,
	}
	for i := 0; i < turns; i++ {
		role := store.RoleUser
		if i%2 == 1 {
			role = store.RoleAssistant
		}
		s.Transcript = s.Transcript.Append(store.Turn{Role: role, Content: fmt.Sprintf("turn-%d", i)})
	}
	return s
}

func newExecutor(r *fakeRetriever, s *fakeSummarizer, c *fakeCompleter) *TurnExecutor {
	return NewTurnExecutor(r, s, c, Options{NumChunks: 4, SlideWindow: 7}, logger.NewNopLogger())
}

func TestHandleTurn_FirstQuestion(t *testing.T) {
	r := &fakeRetriever{text: "X is a thing."}
	sm := &fakeSummarizer{}
	c := &fakeCompleter{reply: "X is a thing."}

	session := newSession(true, false, 0)
	out, render := newExecutor(r, sm, c).HandleTurn(context.Background(), session, "What is X?")

	require.NoError(t, render.Err)
	require.Equal(t, 2, out.Transcript.Len())
	assert.Equal(t, store.Turn{Role: store.RoleUser, Content: "What is X?"}, withoutTime(out.Transcript[0]))
	assert.Equal(t, store.Turn{Role: store.RoleAssistant, Content: "X is a thing."}, withoutTime(out.Transcript[1]))
	assert.Equal(t, store.StateIdle, out.State)

	assert.Equal(t, 0, sm.calls, "no history, no summarization")
	assert.Equal(t, "What is X?", r.lastQuery)
	assert.Equal(t, 4, r.lastK)
	assert.Equal(t, "mistral-7b", c.lastModel)
	assert.Contains(t, c.lastPrompt, "<chat_history>\n</chat_history>")
	assert.Contains(t, c.lastPrompt, "<context>\nX is a thing.\n</context>")
	assert.Contains(t, c.lastPrompt, "<question>\nWhat is X?\n</question>")

	assert.Equal(t, 0, session.Transcript.Len(), "input session is not mutated")
	assert.Empty(t, render.Summary)
	assert.Empty(t, render.Chunks)
}

func TestHandleTurn_WithHistorySummarizes(t *testing.T) {
	r := &fakeRetriever{text: "ctx"}
	sm := &fakeSummarizer{reply: "How is depression treated?"}
	c := &fakeCompleter{reply: "Therapy and medication."}

	out, render := newExecutor(r, sm, c).HandleTurn(context.Background(), newSession(true, true, 10), "How is it treated?")

	require.NoError(t, render.Err)
	assert.Equal(t, 1, sm.calls)
	require.Len(t, sm.history, 6)
	assert.Equal(t, "turn-4", sm.history[0].Content)
	assert.Equal(t, "turn-9", sm.history[len(sm.history)-1].Content)
	assert.Equal(t, "How is depression treated?", r.lastQuery)
	assert.Equal(t, "How is depression treated?", out.LastSummary)
	assert.Contains(t, c.lastPrompt, "turn-9")
	assert.Contains(t, c.lastPrompt, "<question>\nHow is it treated?\n</question>")

	assert.Equal(t, "How is depression treated?", render.Summary)
	assert.Len(t, render.Chunks, 1)
	assert.NotEmpty(t, render.Prompt)
}

func TestHandleTurn_HistoryDisabled(t *testing.T) {
	r := &fakeRetriever{text: "ctx"}
	sm := &fakeSummarizer{reply: "unused"}
	c := &fakeCompleter{reply: "answer"}

	out, render := newExecutor(r, sm, c).HandleTurn(context.Background(), newSession(false, false, 6), "Next?")

	require.NoError(t, render.Err)
	assert.Equal(t, 0, sm.calls)
	assert.Equal(t, "Next?", r.lastQuery)
	assert.Contains(t, c.lastPrompt, "<chat_history>\n</chat_history>")
	assert.NotContains(t, c.lastPrompt, "turn-0")
	assert.Equal(t, 8, out.Transcript.Len())
}

func TestHandleTurn_CompletionFailure(t *testing.T) {
	r := &fakeRetriever{text: "ctx"}
	c := &fakeCompleter{err: ragerr.Remote("complete", errors.New("503 service unavailable at http://llm.internal:11434"))}

	session := newSession(true, false, 2)
	out, render := newExecutor(r, &fakeSummarizer{reply: "q"}, c).HandleTurn(context.Background(), session, "What is X?")

	require.Error(t, render.Err)
	assert.ErrorIs(t, render.Err, ragerr.ErrRemoteQuery)
	require.Equal(t, 4, out.Transcript.Len())
	assert.Equal(t, session.Transcript[0], out.Transcript[0])
	assert.Equal(t, session.Transcript[1], out.Transcript[1])
	assert.Equal(t, "What is X?", out.Transcript[2].Content)

	last := out.Transcript[3]
	assert.Equal(t, store.RoleAssistant, last.Role)
	assert.True(t, last.IsError)
	assert.Contains(t, last.Content, "could not answer")
	assert.NotContains(t, last.Content, "503")
	assert.NotContains(t, last.Content, "llm.internal")
	assert.Equal(t, store.StateIdle, out.State)
}

func TestHandleTurn_ErrorTurnsStayOutOfHistory(t *testing.T) {
	r := &fakeRetriever{text: "ctx"}
	sm := &fakeSummarizer{reply: "Does CBT work?"}
	c := &fakeCompleter{reply: "Yes."}

	session := newSession(true, false, 0)
	session.Transcript = session.Transcript.
		Append(store.Turn{Role: store.RoleUser, Content: "What is CBT?"}).
		Append(store.Turn{Role: store.RoleAssistant, Content: "Sorry, I could not answer that question.", IsError: true}).
		Append(store.Turn{Role: store.RoleUser, Content: "What is CBT?"}).
		Append(store.Turn{Role: store.RoleAssistant, Content: "A talking therapy."})

	_, render := newExecutor(r, sm, c).HandleTurn(context.Background(), session, "Does it work?")
	require.NoError(t, render.Err)

	require.Len(t, sm.history, 3)
	for _, turn := range sm.history {
		assert.False(t, turn.IsError)
	}
	assert.NotContains(t, c.lastPrompt, "could not answer")
	assert.Contains(t, c.lastPrompt, "A talking therapy.")
}

func TestHandleTurn_FailureStages(t *testing.T) {
	timeout := ragerr.Remote("complete", context.DeadlineExceeded)

	tests := []struct {
		name   string
		r      *fakeRetriever
		sm     *fakeSummarizer
		c      *fakeCompleter
		target error
		text   string
	}{
		{"summarize", &fakeRetriever{}, &fakeSummarizer{err: ragerr.Remote("summarize", errors.New("x"))}, &fakeCompleter{reply: "a"}, ragerr.ErrRemoteQuery, "could not answer"},
		{"retrieve", &fakeRetriever{err: ragerr.Remote("similarity", errors.New("x"))}, &fakeSummarizer{reply: "q"}, &fakeCompleter{reply: "a"}, ragerr.ErrRemoteQuery, "could not answer"},
		{"timeout", &fakeRetriever{}, &fakeSummarizer{reply: "q"}, &fakeCompleter{err: timeout}, ragerr.ErrRemoteTimeout, "too long"},
		{"model", &fakeRetriever{}, &fakeSummarizer{reply: "q"}, &fakeCompleter{err: fmt.Errorf("%w: gpt-9", ragerr.ErrUnsupportedModel)}, ragerr.ErrUnsupportedModel, "not available"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, render := newExecutor(tt.r, tt.sm, tt.c).HandleTurn(context.Background(), newSession(true, false, 2), "q")
			assert.ErrorIs(t, render.Err, tt.target)
			last := out.Transcript[out.Transcript.Len()-1]
			assert.True(t, last.IsError)
			assert.Contains(t, last.Content, tt.text)
			assert.Equal(t, store.StateIdle, out.State)
		})
	}
}

func TestHandleTurn_EmptyQuestion(t *testing.T) {
	c := &fakeCompleter{reply: "a"}
	out, render := newExecutor(&fakeRetriever{}, &fakeSummarizer{}, c).HandleTurn(context.Background(), newSession(true, false, 2), "   ")

	assert.ErrorIs(t, render.Err, ErrEmptyQuestion)
	assert.Equal(t, 2, out.Transcript.Len())
	assert.Empty(t, c.lastPrompt)
}

func TestHandleTurn_StripsQuotes(t *testing.T) {
	c := &fakeCompleter{reply: "It's fine, don't worry."}
	out, render := newExecutor(&fakeRetriever{}, &fakeSummarizer{}, c).HandleTurn(context.Background(), newSession(true, false, 0), "What's anxiety?")

	require.NoError(t, render.Err)
	assert.Equal(t, "Whats anxiety?", out.Transcript[0].Content)
	assert.Equal(t, "Its fine, dont worry.", render.Reply)
	assert.False(t, strings.Contains(c.lastPrompt, "What's"))
}

func TestHandleTurn_AlternatesRoles(t *testing.T) {
	e := newExecutor(&fakeRetriever{}, &fakeSummarizer{reply: "q"}, &fakeCompleter{reply: "a"})
	s := newSession(true, false, 0)
	for i := 0; i < 5; i++ {
		s, _ = e.HandleTurn(context.Background(), s, fmt.Sprintf("question %d", i))
	}

	require.Equal(t, 10, s.Transcript.Len())
	for i, turn := range s.Transcript {
		want := store.RoleUser
		if i%2 == 1 {
			want = store.RoleAssistant
		}
		assert.Equal(t, want, turn.Role)
	}
}

func withoutTime(t store.Turn) store.Turn {
	t.CreatedAt = time.Time{}
	return t
}
