package memory

import (
	"testing"
	"time"

	"mindease-be/pkg/rag/ragerr"
	"mindease-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() store.SessionConfig {
	return store.SessionConfig{Model: "mistral-7b", UseHistory: true}
}

func TestSessionRepository_CreateGet(t *testing.T) {
	repo := NewSessionRepository(time.Minute)

	s := repo.Create(defaultConfig())
	require.NotEmpty(t, s.ID)
	assert.Equal(t, store.StateIdle, s.State)
	assert.Equal(t, 0, s.Transcript.Len())

	got, ok := repo.Get(s.ID)
	require.True(t, ok)
	assert.Equal(t, defaultConfig(), got.Config)

	_, ok = repo.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, repo.Count())
}

func TestSessionRepository_GetReturnsIsolatedCopy(t *testing.T) {
	repo := NewSessionRepository(time.Minute)
	s := repo.Create(defaultConfig())

	s.Transcript = s.Transcript.Append(store.Turn{Role: store.RoleUser, Content: "not saved"})

	got, _ := repo.Get(s.ID)
	assert.Equal(t, 0, got.Transcript.Len())

	_, err := repo.SaveTurn(s, s.Generation)
	require.NoError(t, err)
	got, _ = repo.Get(s.ID)
	require.Equal(t, 1, got.Transcript.Len())

	got.Transcript[0].Content = "mutated"
	again, _ := repo.Get(s.ID)
	assert.Equal(t, "not saved", again.Transcript[0].Content)
}

func TestSessionRepository_Reset(t *testing.T) {
	tests := []struct {
		name  string
		turns int
	}{
		{"empty transcript", 0},
		{"one exchange", 2},
		{"long conversation", 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewSessionRepository(time.Minute)
			cfg := store.SessionConfig{Model: "llama3-70b", UseHistory: false, Debug: true}
			s := repo.Create(cfg)
			for i := 0; i < tt.turns; i++ {
				role := store.RoleUser
				if i%2 == 1 {
					role = store.RoleAssistant
				}
				s.Transcript = s.Transcript.Append(store.Turn{Role: role, Content: "turn"})
			}
			s.LastSummary = "summary"
			_, err := repo.SaveTurn(s, s.Generation)
			require.NoError(t, err)

			reset, err := repo.Reset(s.ID)
			require.NoError(t, err)
			assert.Equal(t, s.Generation+1, reset.Generation)
			assert.Equal(t, 0, reset.Transcript.Len())
			assert.Empty(t, reset.LastSummary)
			assert.Equal(t, store.StateIdle, reset.State)
			assert.Equal(t, cfg, reset.Config)

			stored, _ := repo.Get(s.ID)
			assert.Equal(t, 0, stored.Transcript.Len())
		})
	}
}

func TestSessionRepository_ResetMissing(t *testing.T) {
	repo := NewSessionRepository(time.Minute)
	_, err := repo.Reset("nope")
	assert.ErrorIs(t, err, ragerr.ErrSessionNotFound)
}

func TestSessionRepository_Delete(t *testing.T) {
	repo := NewSessionRepository(time.Minute)
	s := repo.Create(defaultConfig())
	assert.True(t, repo.Delete(s.ID))
	_, ok := repo.Get(s.ID)
	assert.False(t, ok)
	assert.False(t, repo.Delete(s.ID))
}

func TestSessionRepository_SaveTurnAfterReset(t *testing.T) {
	tests := []struct {
		name      string
		reset     bool
		wantErr   error
		wantTurns int
	}{
		{"no reset", false, nil, 2},
		{"reset on empty transcript", true, ErrStaleSession, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewSessionRepository(time.Minute)
			read := repo.Create(defaultConfig())

			if tt.reset {
				_, err := repo.Reset(read.ID)
				require.NoError(t, err)
			}

			answered := read.Clone()
			answered.Transcript = answered.Transcript.
				Append(store.Turn{Role: store.RoleUser, Content: "q"}).
				Append(store.Turn{Role: store.RoleAssistant, Content: "a"})

			_, err := repo.SaveTurn(answered, read.Generation)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			stored, _ := repo.Get(read.ID)
			assert.Equal(t, tt.wantTurns, stored.Transcript.Len())
		})
	}
}

func TestSessionRepository_SaveTurnKeepsNewerConfig(t *testing.T) {
	repo := NewSessionRepository(time.Minute)
	read := repo.Create(defaultConfig())

	_, err := repo.UpdateConfig(read.ID, func(cfg *store.SessionConfig) error {
		cfg.Debug = true
		return nil
	})
	require.NoError(t, err)

	answered := read.Clone()
	answered.Transcript = answered.Transcript.Append(store.Turn{Role: store.RoleUser, Content: "q"})
	saved, err := repo.SaveTurn(answered, read.Generation)
	require.NoError(t, err)
	assert.True(t, saved.Config.Debug)
	assert.Equal(t, 1, saved.Transcript.Len())
}

func TestSessionRepository_UpdateConfigKeepsTranscript(t *testing.T) {
	repo := NewSessionRepository(time.Minute)
	s := repo.Create(defaultConfig())
	s.Transcript = s.Transcript.Append(store.Turn{Role: store.RoleUser, Content: "q"})
	_, err := repo.SaveTurn(s, s.Generation)
	require.NoError(t, err)

	updated, err := repo.UpdateConfig(s.ID, func(cfg *store.SessionConfig) error {
		cfg.Model = "llama3-70b"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "llama3-70b", updated.Config.Model)
	assert.Equal(t, 1, updated.Transcript.Len())

	_, err = repo.UpdateConfig("missing", func(cfg *store.SessionConfig) error { return nil })
	assert.ErrorIs(t, err, ragerr.ErrSessionNotFound)
}
