package executor

import (
	"context"
	"errors"
	"strings"
	"time"

	"mindease-be/internal/pkg/logger"
	"mindease-be/pkg/rag/history"
	"mindease-be/pkg/rag/prompt"
	"mindease-be/pkg/rag/ragerr"
	"mindease-be/pkg/rag/retriever"
	"mindease-be/pkg/store"
	"mindease-be/pkg/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("mindease-be/pkg/rag/executor")

var ErrEmptyQuestion = errors.New("question is empty")

type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) (retriever.Result, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, model string, history []store.Turn, question string) (string, error)
}

type Completer interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// RenderModel is what a front end needs to draw after a turn.
// Summary, Chunks and Prompt are only filled when the session has debug enabled.
type RenderModel struct {
	Transcript store.Transcript       `json:"transcript"`
	Reply      string                 `json:"reply"`
	Summary    string                 `json:"summary,omitempty"`
	Chunks     []store.RetrievedChunk `json:"chunks,omitempty"`
	Prompt     string                 `json:"prompt,omitempty"`
	Err        error                  `json:"-"`
}

type Options struct {
	NumChunks   int
	SlideWindow int
}

// TurnExecutor runs one question through summarize, retrieve and complete
type TurnExecutor struct {
	retriever  Retriever
	summarizer Summarizer
	completer  Completer
	opts       Options
	logger     logger.ILogger
	now        func() time.Time
}

func NewTurnExecutor(r Retriever, s Summarizer, c Completer, opts Options, log logger.ILogger) *TurnExecutor {
	return &TurnExecutor{
		retriever:  r,
		summarizer: s,
		completer:  c,
		opts:       opts,
		logger:     log,
		now:        time.Now,
	}
}

// HandleTurn never mutates session; the returned copy carries the new turns.
// Remote failures become an assistant error turn and the session goes back to idle.
func (e *TurnExecutor) HandleTurn(ctx context.Context, session *store.Session, input string) (*store.Session, RenderModel) {
	ctx, span := tracer.Start(ctx, "HandleTurn", trace.WithAttributes(
		attribute.String("session.id", session.ID),
		attribute.String("llm.model", session.Config.Model),
		attribute.Bool("rag.use_history", session.Config.UseHistory),
	))
	defer span.End()

	s := session.Clone()
	s.State = store.StateAwaitingInput

	question := utils.StripQuotes(strings.TrimSpace(input))
	if question == "" {
		s.State = store.StateIdle
		return s, RenderModel{Transcript: s.Transcript.Clone(), Err: ErrEmptyQuestion}
	}

	s.Transcript = s.Transcript.Append(e.turn(store.RoleUser, question, false))
	cfg := s.Config

	var window []store.Turn
	if cfg.UseHistory {
		window = history.Window(s.Transcript, e.opts.SlideWindow)
	}

	s.State = store.StateRetrieving
	query := question
	s.LastSummary = ""
	if len(window) > 0 {
		summary, err := e.summarizer.Summarize(ctx, cfg.Model, window, question)
		if err != nil {
			return e.fail(span, s, err)
		}
		if summary != "" {
			query = summary
		}
		s.LastSummary = summary
	}

	res, err := e.retriever.Retrieve(ctx, query, e.opts.NumChunks)
	if err != nil {
		return e.fail(span, s, err)
	}
	span.SetAttributes(attribute.Int("rag.chunks", len(res.Chunks)))

	s.State = store.StateCompleting
	finalPrompt := prompt.BuildFromContext(store.PromptContext{
		History:       window,
		RetrievedText: res.Text,
		Question:      question,
	})

	answer, err := e.completer.Complete(ctx, cfg.Model, finalPrompt)
	if err != nil {
		return e.fail(span, s, err)
	}
	answer = utils.StripQuotes(answer)

	s.Transcript = s.Transcript.Append(e.turn(store.RoleAssistant, answer, false))
	s.State = store.StateIdle
	s.UpdatedAt = e.now()

	e.logger.Info("EXECUTOR", "Turn completed", map[string]interface{}{
		"session_id":   s.ID,
		"model":        cfg.Model,
		"use_history":  cfg.UseHistory,
		"window_turns": len(window),
		"chunks":       len(res.Chunks),
	})

	render := RenderModel{Transcript: s.Transcript.Clone(), Reply: answer}
	if cfg.Debug {
		render.Summary = s.LastSummary
		render.Chunks = res.Chunks
		render.Prompt = finalPrompt
	}
	return s, render
}

func (e *TurnExecutor) fail(span trace.Span, s *store.Session, err error) (*store.Session, RenderModel) {
	span.RecordError(err)
	span.SetStatus(codes.Error, s.State)

	e.logger.Error("EXECUTOR", "Turn failed", map[string]interface{}{
		"session_id": s.ID,
		"state":      s.State,
		"error":      err.Error(),
	})

	msg := ErrorMessage(err)
	s.Transcript = s.Transcript.Append(e.turn(store.RoleAssistant, msg, true))
	s.State = store.StateIdle
	s.UpdatedAt = e.now()

	render := RenderModel{Transcript: s.Transcript.Clone(), Reply: msg, Err: err}
	if s.Config.Debug {
		render.Summary = s.LastSummary
	}
	return s, render
}

func (e *TurnExecutor) turn(role, content string, isError bool) store.Turn {
	return store.Turn{Role: role, Content: content, IsError: isError, CreatedAt: e.now()}
}

// ErrorMessage is the user-facing text of a failed turn
func ErrorMessage(err error) string {
	switch {
	case ragerr.IsTimeout(err):
		return "The model took too long to answer. Please try again."
	case errors.Is(err, ragerr.ErrUnsupportedModel):
		return "The selected model is not available. Please choose another one."
	default:
		return "Sorry, I could not answer that question. Please try again."
	}
}
