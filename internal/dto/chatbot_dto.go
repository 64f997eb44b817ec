package dto

import (
	"time"

	"mindease-be/pkg/store"
)

// CreateSessionRequest fields are optional; nil means "use the server default"
type CreateSessionRequest struct {
	Model      *string `json:"model,omitempty"`
	UseHistory *bool   `json:"use_history,omitempty"`
	Debug      *bool   `json:"debug,omitempty"`
}

type UpdateSessionConfigRequest struct {
	Model      *string `json:"model,omitempty" validate:"omitempty,min=1"`
	UseHistory *bool   `json:"use_history,omitempty"`
	Debug      *bool   `json:"debug,omitempty"`
}

type SendChatRequest struct {
	Question string `json:"question" validate:"required,min=1,max=4000"`
}

type TurnDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	IsError   bool      `json:"is_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionResponse struct {
	Id          string              `json:"id"`
	Config      store.SessionConfig `json:"config"`
	State       string              `json:"state"`
	Transcript  []TurnDTO           `json:"transcript"`
	LastSummary string              `json:"last_summary,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type ChunkDTO struct {
	SourcePath string  `json:"source_path"`
	ChunkText  string  `json:"chunk_text"`
	Similarity float64 `json:"similarity"`
}

type SendChatResponse struct {
	SessionId  string     `json:"session_id"`
	Reply      string     `json:"reply"`
	Failed     bool       `json:"failed"`
	Transcript []TurnDTO  `json:"transcript"`
	Summary    string     `json:"summary,omitempty"`
	Chunks     []ChunkDTO `json:"chunks,omitempty"`
	Prompt     string     `json:"prompt,omitempty"`
}

type ModelsResponse struct {
	Models  []string `json:"models"`
	Default string   `json:"default"`
}

type DocumentsResponse struct {
	Documents []string `json:"documents"`
}

type InfoSection struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

type InfoResponse struct {
	Title    string        `json:"title"`
	Sections []InfoSection `json:"sections"`
}
