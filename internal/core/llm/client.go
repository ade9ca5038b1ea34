package llm

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Client layers model fallback and retry on top of a Provider. The first
// candidate model that answers a probe call is memoized and reused for the
// lifetime of the client, so each tenant agent probes at most once.
type Client struct {
	provider Provider
	models   []string

	mu       sync.Mutex
	resolved string

	maxAttempts    int
	backoffBase    time.Duration
	attemptTimeout time.Duration
}

func NewClient(provider Provider, models []string) *Client {
	return &Client{
		provider:       provider,
		models:         models,
		maxAttempts:    3,
		backoffBase:    2 * time.Second,
		attemptTimeout: 30 * time.Second,
	}
}

// ResolveModel probes the candidate list with a trivial call and memoizes
// the first model that answers. Not-found models are skipped outright; any
// other probe failure also moves on to the next candidate.
func (c *Client) ResolveModel(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resolved != "" {
		return c.resolved, nil
	}

	for _, model := range c.models {
		probeCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		_, err := c.provider.GenerateContent(probeCtx, model, "Hello")
		cancel()

		if err == nil {
			c.resolved = model
			log.Info().Str("model", model).Str("provider", c.provider.GetProviderName()).Msg("✅ Resolved working model")
			return model, nil
		}

		if errors.Is(err, ErrModelNotFound) {
			log.Debug().Str("model", model).Msg("Model not available, skipping")
			continue
		}

		log.Warn().Err(err).Str("model", model).Msg("Model probe failed, trying next")
	}

	return "", ErrAllModelsFailed
}

// Generate issues a single call against the memoized model.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	model, err := c.ResolveModel(ctx)
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	return c.provider.GenerateContent(callCtx, model, prompt)
}

// GenerateWithRetry retries transient failures (rate limits, 5xx) up to
// maxAttempts with linear backoff plus jitter. Any other error is returned
// immediately; exhausting the attempts returns the last observed error.
func (c *Client) GenerateWithRetry(ctx context.Context, prompt string) (string, error) {
	model, err := c.ResolveModel(ctx)
	if err != nil {
		return "", err
	}

	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		text, err := c.provider.GenerateContent(callCtx, model, prompt)
		cancel()

		if err == nil {
			return text, nil
		}

		if !IsTransient(err) {
			return "", err
		}

		lastErr = err

		if attempt < c.maxAttempts {
			sleep := time.Duration(attempt)*c.backoffBase +
				time.Duration(rand.Int63n(int64(c.backoffBase/2)+1))
			log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", sleep).Msg("⚠️ Transient model error, retrying")

			select {
			case <-time.After(sleep):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}

	return "", lastErr
}
