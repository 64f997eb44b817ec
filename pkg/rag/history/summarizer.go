package history

import (
	"context"
	"strings"

	"mindease-be/internal/pkg/logger"
	"mindease-be/pkg/rag/prompt"
	"mindease-be/pkg/store"
	"mindease-be/pkg/utils"
)

type Completer interface {
	Summarize(ctx context.Context, model, prompt string) (string, error)
}

// Summarizer rewrites a follow-up question into a standalone retrieval query
type Summarizer struct {
	completer Completer
	logger    logger.ILogger
}

func NewSummarizer(completer Completer, log logger.ILogger) *Summarizer {
	return &Summarizer{completer: completer, logger: log}
}

// Summarize returns the rewritten query with single quotes removed
func (s *Summarizer) Summarize(ctx context.Context, model string, history []store.Turn, question string) (string, error) {
	p := prompt.BuildSummaryPrompt(history, question)

	raw, err := s.completer.Summarize(ctx, model, p)
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(utils.StripQuotes(raw))
	s.logger.Debug("SUMMARIZER", "Question rewritten", map[string]interface{}{
		"history_turns": len(history),
		"question":      question,
		"summary":       summary,
	})
	return summary, nil
}
