package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mindease-be/internal/dto"
	"mindease-be/internal/entity"
	"mindease-be/internal/pkg/logger"
	"mindease-be/internal/repository/unitofwork"
	"mindease-be/pkg/embedding"
	"mindease-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const IngestTopic = "docs.ingest"

type IIngestService interface {
	// Consume starts the background worker; results are reported on Results()
	Consume(ctx context.Context) error
	Publish(ctx context.Context, doc dto.IngestDocumentMessage) error
	Results() <-chan dto.IngestResult
}

type ingestService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	embedder   embedding.EmbeddingProvider
	chunkSize  int
	overlap    int
	results    chan dto.IngestResult
	logger     logger.ILogger
}

func NewIngestService(
	pubSub *gochannel.GoChannel,
	uowFactory unitofwork.RepositoryFactory,
	embedder embedding.EmbeddingProvider,
	chunkSize, overlap int,
	log logger.ILogger,
) IIngestService {
	return &ingestService{
		pubSub:     pubSub,
		topicName:  IngestTopic,
		uowFactory: uowFactory,
		embedder:   embedder,
		chunkSize:  chunkSize,
		overlap:    overlap,
		results:    make(chan dto.IngestResult, 16),
		logger:     log,
	}
}

func NewPubSub() *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
}

func (s *ingestService) Results() <-chan dto.IngestResult {
	return s.results
}

func (s *ingestService) Publish(ctx context.Context, doc dto.IngestDocumentMessage) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return s.pubSub.Publish(s.topicName, msg)
}

func (s *ingestService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.results <- s.processMessage(ctx, msg)
		}
		close(s.results)
	}()

	return nil
}

// processMessage always acks: a document that fails is reported, not redelivered
func (s *ingestService) processMessage(ctx context.Context, msg *message.Message) dto.IngestResult {
	defer msg.Ack()

	var payload dto.IngestDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("INGEST", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		return dto.IngestResult{Err: fmt.Errorf("decode message %s: %w", msg.UUID, err)}
	}

	n, err := s.ingest(ctx, payload)
	if err != nil {
		s.logger.Error("INGEST", "Failed to ingest document", map[string]interface{}{
			"relative_path": payload.RelativePath,
			"error":         err.Error(),
		})
		return dto.IngestResult{RelativePath: payload.RelativePath, Err: err}
	}

	s.logger.Info("INGEST", "Document ingested", map[string]interface{}{
		"relative_path": payload.RelativePath,
		"chunks":        n,
	})
	return dto.IngestResult{RelativePath: payload.RelativePath, Chunks: n}
}

func (s *ingestService) ingest(ctx context.Context, doc dto.IngestDocumentMessage) (int, error) {
	pieces := utils.SplitText(doc.Content, s.chunkSize, s.overlap)
	if len(pieces) == 0 {
		return 0, fmt.Errorf("document %s has no text", doc.RelativePath)
	}

	ingestedAt := time.Now().UTC().Format(time.RFC3339)
	chunks := make([]*entity.DocChunk, 0, len(pieces))
	for i, piece := range pieces {
		res, err := s.embedder.Generate(ctx, piece, embedding.TaskRetrievalDocument)
		if err != nil {
			return 0, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		chunks = append(chunks, &entity.DocChunk{
			RelativePath: doc.RelativePath,
			Chunk:        piece,
			ChunkVec:     res.Embedding.Values,
			ChunkIndex:   i,
			Metadata: map[string]interface{}{
				"chunk_count": len(pieces),
				"ingested_at": ingestedAt,
			},
		})
	}

	// Replacing a document's chunks is all or nothing
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.DocChunkRepository().DeleteByPath(ctx, doc.RelativePath); err != nil {
		return 0, fmt.Errorf("delete previous chunks: %w", err)
	}
	if err := uow.DocChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("commit chunks: %w", err)
	}
	return len(chunks), nil
}
