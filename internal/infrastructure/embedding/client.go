package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pricewatch/backend/internal/domain/shared"
	"github.com/pricewatch/backend/internal/infrastructure/config"
)

// ErrEmbeddingUnavailable is returned when the embedding API cannot be
// reached or keeps failing after retries.
var ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

// Embedder generates embedding vectors for text inputs. Results are
// positionally aligned with the inputs.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([]shared.Vector, error)
}

// Client is an OpenAI-compatible embeddings API client
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxRetries int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new embeddings client from configuration
func NewClient(cfg config.EmbeddingConfig, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("embedding API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("embedding"),
	}, nil
}

type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("embedding api http %d: %s", e.StatusCode, e.Body)
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// Embed generates one vector per input string
func (c *Client) Embed(ctx context.Context, inputs []string) ([]shared.Vector, error) {
	if len(inputs) == 0 {
		return []shared.Vector{}, nil
	}

	clean := make([]string, len(inputs))
	for i := range inputs {
		s := strings.TrimSpace(inputs[i])
		if s == "" {
			s = " "
		}
		clean[i] = s
	}

	req := embeddingsRequest{Model: c.model, Input: clean}

	var resp embeddingsResponse
	if err := c.do(ctx, "POST", "/v1/embeddings", req, &resp); err != nil {
		return nil, err
	}

	out := make([]shared.Vector, len(clean))
	for _, d := range resp.Data {
		if d.Index >= 0 && d.Index < len(out) {
			out[d.Index] = shared.Vector(d.Embedding)
		}
	}

	for i := range out {
		if len(out[i]) == 0 {
			return nil, fmt.Errorf("embedding response missing index %d: requested=%d returned=%d model=%s",
				i, len(clean), len(resp.Data), c.model)
		}
	}

	return out, nil
}

func (c *Client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &httpError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	backoff := time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("embedding api decode error: %w", uErr)
			}
			return nil
		}

		if !isRetryable(err) {
			return err
		}
		if attempt == c.maxRetries {
			return fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
		}

		sleepFor := retryAfter(resp, backoff, 10*time.Second)

		c.logger.Warn("embedding request retrying",
			zap.String("path", path),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", c.maxRetries),
			zap.Duration("sleep", sleepFor),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleepFor):
		}
		backoff *= 2
	}

	return fmt.Errorf("%w: retry loop exhausted", ErrEmbeddingUnavailable)
}

// isRetryable reports whether the request should be retried. Network
// failures, rate limits, and server errors are retryable; client errors
// are not.
func isRetryable(err error) bool {
	var he *httpError
	if errors.As(err, &he) {
		return he.StatusCode == http.StatusTooManyRequests || he.StatusCode >= 500
	}
	return true
}

// retryAfter honors a Retry-After header when present, otherwise returns
// the backoff capped at max.
func retryAfter(resp *http.Response, backoff, max time.Duration) time.Duration {
	if resp != nil {
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
				d := time.Duration(secs) * time.Second
				if d > max {
					return max
				}
				return d
			}
		}
	}
	if backoff > max {
		return max
	}
	return backoff
}

// Ensure Client implements Embedder
var _ Embedder = (*Client)(nil)
