package store

import "time"

// Roles a turn can carry
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn states of the conversation loop
const (
	StateIdle          = "IDLE"
	StateAwaitingInput = "AWAITING_INPUT"
	StateRetrieving    = "RETRIEVING"
	StateCompleting    = "COMPLETING"
)

// Turn is one message of the conversation. Never mutated after it is appended.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	IsError   bool      `json:"is_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Transcript is the ordered conversation of a session
type Transcript []Turn

// Len returns the number of turns
func (t Transcript) Len() int {
	return len(t)
}

// Append returns a new transcript with turn added at the end.
// The receiver's backing array is never written to.
func (t Transcript) Append(turn Turn) Transcript {
	out := make(Transcript, len(t), len(t)+1)
	copy(out, t)
	return append(out, turn)
}

// Clone copies the transcript
func (t Transcript) Clone() Transcript {
	if t == nil {
		return nil
	}
	out := make(Transcript, len(t))
	copy(out, t)
	return out
}

// SessionConfig holds the user-selected options of a chat session
type SessionConfig struct {
	Model      string `json:"model"`
	UseHistory bool   `json:"use_history"`
	Debug      bool   `json:"debug"`
}

// RetrievedChunk is one row returned by the similarity query
type RetrievedChunk struct {
	SourcePath string  `json:"source_path"`
	ChunkText  string  `json:"chunk_text"`
	Similarity float64 `json:"similarity"`
}

// PromptContext is everything the final prompt is built from
type PromptContext struct {
	History       []Turn
	RetrievedText string
	Question      string
}

// Session represents the active chat session state in memory
type Session struct {
	ID         string        `json:"id"`
	Config     SessionConfig `json:"config"`
	Transcript Transcript    `json:"transcript"`
	State      string        `json:"state"`

	// Rewritten retrieval query of the last turn, kept for the debug view
	LastSummary string `json:"last_summary,omitempty"`

	// Generation is bumped on every reset
	Generation uint64 `json:"generation"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a copy that shares no mutable state with s
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Transcript = s.Transcript.Clone()
	return &c
}

// Reset clears the transcript and returns the session to idle. Config is kept.
func (s *Session) Reset(now time.Time) {
	s.Generation++
	s.Transcript = Transcript{}
	s.LastSummary = ""
	s.State = StateIdle
	s.UpdatedAt = now
}
