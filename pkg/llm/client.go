// Package llm talks to an OpenAI-compatible chat-completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/noah-isme/campus2career-api/pkg/config"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"

	maxTemperature = 0.2
	maxBodyBytes   = 4 << 20
)

// Message is one role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Observer receives one callback per completion attempt.
type Observer interface {
	ObserveCompletion(outcome string, duration time.Duration)
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client sends single, non-retried completion requests.
type Client struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	timeout     time.Duration
	httpClient  *http.Client
	limiter     *rate.Limiter
	observer    Observer
	logger      *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithObserver registers a metrics observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient builds a client from configuration. Temperatures above 0.2 are
// pinned back to keep extraction output close to deterministic.
func NewClient(cfg config.LLMConfig, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	temperature := cfg.Temperature
	if temperature < 0 || temperature > maxTemperature {
		temperature = 0.1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		endpoint:    cfg.BaseURL + "/chat/completions",
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: temperature,
		timeout:     timeout,
		httpClient:  &http.Client{},
		limiter:     rate.NewLimiter(limit, burst),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete returns the text of the first choice. The call is bounded by the
// configured timeout and by ctx.
func (c *Client) Complete(ctx context.Context, messages []Message) (content string, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			if errors.Is(err, context.DeadlineExceeded) {
				outcome = "timeout"
			}
		}
		if c.observer != nil {
			c.observer.ObserveCompletion(outcome, time.Since(start))
		}
		if err != nil {
			c.logger.Warn("completion failed", zap.String("model", c.model), zap.Duration("took", time.Since(start)), zap.Error(err))
		}
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", c.fail(fmt.Errorf("rate limiter: %w", err))
	}

	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages, Temperature: c.temperature})
	if err != nil {
		return "", c.fail(fmt.Errorf("marshal completion request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", c.fail(fmt.Errorf("create completion request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.fail(fmt.Errorf("completion request: %w", err))
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", c.fail(fmt.Errorf("read completion response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return "", c.fail(fmt.Errorf("completion service returned status %d: %s", resp.StatusCode, truncate(string(raw), 256)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", c.fail(fmt.Errorf("decode completion response: %w", err))
	}
	if parsed.Error != nil {
		return "", c.fail(fmt.Errorf("completion service error: %s", parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 {
		return "", c.fail(fmt.Errorf("completion service returned no choices"))
	}
	return parsed.Choices[0].Message.Content, nil
}

func (c *Client) fail(err error) error {
	return appErrors.Wrap(err, appErrors.ErrCompletionFailed.Code, appErrors.ErrCompletionFailed.Status, appErrors.ErrCompletionFailed.Message)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
