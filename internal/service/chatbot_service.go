package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mindease-be/internal/constant"
	"mindease-be/internal/dto"
	"mindease-be/internal/pkg/logger"
	"mindease-be/internal/repository/memory"
	"mindease-be/pkg/events"
	"mindease-be/pkg/llm"
	"mindease-be/pkg/rag/executor"
	"mindease-be/pkg/rag/ragerr"
	"mindease-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// ErrSessionBusy is returned when a question arrives while the previous one is still being answered
var ErrSessionBusy = errors.New("session is busy answering a previous question")

type IChatbotService interface {
	CreateSession(ctx context.Context, request *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	GetSession(ctx context.Context, sessionId string) (*dto.SessionResponse, error)
	UpdateConfig(ctx context.Context, sessionId string, request *dto.UpdateSessionConfigRequest) (*dto.SessionResponse, error)
	SendChat(ctx context.Context, sessionId string, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	ResetSession(ctx context.Context, sessionId string) (*dto.SessionResponse, error)
	DeleteSession(ctx context.Context, sessionId string) error
	ListModels(ctx context.Context) *dto.ModelsResponse
	ListDocuments(ctx context.Context) (*dto.DocumentsResponse, error)
	InvalidateDocuments()
}

type TurnHandler interface {
	HandleTurn(ctx context.Context, session *store.Session, input string) (*store.Session, executor.RenderModel)
}

type DocumentLister interface {
	ListDocuments(ctx context.Context) ([]string, error)
}

type chatbotService struct {
	sessions  *memory.SessionRepository
	executor  TurnHandler
	catalogue *llm.Catalogue
	documents DocumentLister
	docCache  *cache.Cache
	publisher events.Publisher
	defaults  store.SessionConfig
	logger    logger.ILogger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewChatbotService(
	sessions *memory.SessionRepository,
	executor TurnHandler,
	catalogue *llm.Catalogue,
	documents DocumentLister,
	publisher events.Publisher,
	defaults store.SessionConfig,
	log logger.ILogger,
) IChatbotService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &chatbotService{
		sessions:  sessions,
		executor:  executor,
		catalogue: catalogue,
		documents: documents,
		docCache:  cache.New(5*time.Minute, 10*time.Minute),
		publisher: publisher,
		defaults:  defaults,
		logger:    log,
		inFlight:  make(map[string]struct{}),
	}
}

func (cs *chatbotService) CreateSession(ctx context.Context, request *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	cfg := cs.defaults
	if request != nil {
		if request.Model != nil {
			cfg.Model = *request.Model
		}
		if request.UseHistory != nil {
			cfg.UseHistory = *request.UseHistory
		}
		if request.Debug != nil {
			cfg.Debug = *request.Debug
		}
	}
	if err := cs.checkModel(cfg.Model); err != nil {
		return nil, err
	}

	session := cs.sessions.Create(cfg)
	cs.logger.Info("CHATBOT", "Session created", map[string]interface{}{
		"session_id": session.ID,
		"model":      cfg.Model,
	})
	return toSessionResponse(session), nil
}

func (cs *chatbotService) GetSession(ctx context.Context, sessionId string) (*dto.SessionResponse, error) {
	session, ok := cs.sessions.Get(sessionId)
	if !ok {
		return nil, ragerr.ErrSessionNotFound
	}
	return toSessionResponse(session), nil
}

func (cs *chatbotService) UpdateConfig(ctx context.Context, sessionId string, request *dto.UpdateSessionConfigRequest) (*dto.SessionResponse, error) {
	if request.Model != nil {
		if err := cs.checkModel(*request.Model); err != nil {
			return nil, err
		}
	}

	session, err := cs.sessions.UpdateConfig(sessionId, func(cfg *store.SessionConfig) error {
		if request.Model != nil {
			cfg.Model = *request.Model
		}
		if request.UseHistory != nil {
			cfg.UseHistory = *request.UseHistory
		}
		if request.Debug != nil {
			cfg.Debug = *request.Debug
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSessionResponse(session), nil
}

func (cs *chatbotService) SendChat(ctx context.Context, sessionId string, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	if !cs.acquire(sessionId) {
		return nil, ErrSessionBusy
	}
	defer cs.release(sessionId)

	session, ok := cs.sessions.Get(sessionId)
	if !ok {
		return nil, ragerr.ErrSessionNotFound
	}

	updated, render := cs.executor.HandleTurn(ctx, session, request.Question)
	if errors.Is(render.Err, executor.ErrEmptyQuestion) {
		return nil, render.Err
	}

	// A reset or delete that raced with this turn wins
	updated, err := cs.sessions.SaveTurn(updated, session.Generation)
	if errors.Is(err, memory.ErrStaleSession) {
		cs.logger.Info("CHATBOT", "Turn discarded after reset", map[string]interface{}{"session_id": sessionId})
		return nil, fmt.Errorf("%w: reset while answering", ErrSessionBusy)
	}
	if err != nil {
		return nil, err
	}

	failed := render.Err != nil
	if err := cs.publisher.Publish(ctx, events.NewTurnCompleted(sessionId, updated.Config.Model, failed, len(render.Chunks), time.Now())); err != nil {
		cs.logger.Warn("CHATBOT", "Failed to publish turn event", map[string]interface{}{"error": err.Error()})
	}

	res := &dto.SendChatResponse{
		SessionId:  sessionId,
		Reply:      render.Reply,
		Failed:     failed,
		Transcript: toTurnDTOs(render.Transcript),
		Summary:    render.Summary,
		Prompt:     render.Prompt,
	}
	for _, c := range render.Chunks {
		res.Chunks = append(res.Chunks, dto.ChunkDTO{
			SourcePath: c.SourcePath,
			ChunkText:  c.ChunkText,
			Similarity: c.Similarity,
		})
	}
	return res, nil
}

func (cs *chatbotService) ResetSession(ctx context.Context, sessionId string) (*dto.SessionResponse, error) {
	session, err := cs.sessions.Reset(sessionId)
	if err != nil {
		return nil, err
	}

	if err := cs.publisher.Publish(ctx, events.NewSessionReset(sessionId, time.Now())); err != nil {
		cs.logger.Warn("CHATBOT", "Failed to publish reset event", map[string]interface{}{"error": err.Error()})
	}
	return toSessionResponse(session), nil
}

func (cs *chatbotService) DeleteSession(ctx context.Context, sessionId string) error {
	if !cs.sessions.Delete(sessionId) {
		return ragerr.ErrSessionNotFound
	}
	return nil
}

func (cs *chatbotService) ListModels(ctx context.Context) *dto.ModelsResponse {
	return &dto.ModelsResponse{
		Models:  cs.catalogue.IDs(),
		Default: cs.defaults.Model,
	}
}

func (cs *chatbotService) ListDocuments(ctx context.Context) (*dto.DocumentsResponse, error) {
	if x, found := cs.docCache.Get(constant.DocumentsCacheKey); found {
		return &dto.DocumentsResponse{Documents: x.([]string)}, nil
	}

	docs, err := cs.documents.ListDocuments(ctx)
	if err != nil {
		return nil, ragerr.Remote("list_documents", err)
	}
	if docs == nil {
		docs = []string{}
	}
	cs.docCache.Set(constant.DocumentsCacheKey, docs, cache.DefaultExpiration)
	return &dto.DocumentsResponse{Documents: docs}, nil
}

// InvalidateDocuments drops the cached listing; called when new chunks are ingested
func (cs *chatbotService) InvalidateDocuments() {
	cs.docCache.Delete(constant.DocumentsCacheKey)
}

func (cs *chatbotService) checkModel(model string) error {
	if !cs.catalogue.Supports(model) {
		return fmt.Errorf("%w: %s", ragerr.ErrUnsupportedModel, model)
	}
	return nil
}

func (cs *chatbotService) acquire(sessionId string) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, busy := cs.inFlight[sessionId]; busy {
		return false
	}
	cs.inFlight[sessionId] = struct{}{}
	return true
}

func (cs *chatbotService) release(sessionId string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.inFlight, sessionId)
}

func toSessionResponse(s *store.Session) *dto.SessionResponse {
	return &dto.SessionResponse{
		Id:          s.ID,
		Config:      s.Config,
		State:       s.State,
		Transcript:  toTurnDTOs(s.Transcript),
		LastSummary: s.LastSummary,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toTurnDTOs(t store.Transcript) []dto.TurnDTO {
	out := make([]dto.TurnDTO, len(t))
	for i, turn := range t {
		out[i] = dto.TurnDTO{
			Role:      turn.Role,
			Content:   turn.Content,
			IsError:   turn.IsError,
			CreatedAt: turn.CreatedAt,
		}
	}
	return out
}
