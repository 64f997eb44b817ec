package completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mindease-be/internal/pkg/logger"
	"mindease-be/pkg/llm"
	"mindease-be/pkg/rag/ragerr"
)

var errEmptyCompletion = errors.New("empty completion")

// Client sends prompts to the hosted model selected for a session
type Client struct {
	provider  llm.LLMProvider
	catalogue *llm.Catalogue
	timeout   time.Duration
	logger    logger.ILogger
}

// NewClient returns a client; timeout <= 0 disables the per-call deadline
func NewClient(provider llm.LLMProvider, catalogue *llm.Catalogue, timeout time.Duration, log logger.ILogger) *Client {
	return &Client{
		provider:  provider,
		catalogue: catalogue,
		timeout:   timeout,
		logger:    log,
	}
}

func (c *Client) Complete(ctx context.Context, model, prompt string) (string, error) {
	return c.call(ctx, "complete", model, prompt)
}

// Summarize is Complete tagged with its own op name so failures say which step broke
func (c *Client) Summarize(ctx context.Context, model, prompt string) (string, error) {
	return c.call(ctx, "summarize", model, prompt)
}

func (c *Client) call(ctx context.Context, op, model, prompt string) (string, error) {
	providerModel, err := c.catalogue.Resolve(model)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ragerr.ErrUnsupportedModel, err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.provider.Generate(ctx, prompt, llm.WithModel(providerModel))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		c.logger.Error("COMPLETION", "Remote call failed", map[string]interface{}{
			"op":    op,
			"model": model,
			"error": err.Error(),
		})
		return "", ragerr.Remote(op, err)
	}
	if text == "" {
		return "", ragerr.Remote(op, errEmptyCompletion)
	}

	c.logger.Debug("COMPLETION", "Remote call finished", map[string]interface{}{
		"op":          op,
		"model":       model,
		"prompt_len":  len(prompt),
		"answer_len":  len(text),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return text, nil
}
