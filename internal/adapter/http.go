package adapter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/KXX-Hub/kxx-digital-album/internal/logger"
)

// maxResponseBody limits how much of a response body is read
const maxResponseBody = 64 << 10

// HTTPClient defines an interface for HTTP client operations to enable mocking
//
//go:generate mockgen -source=http.go -destination=../mocks/http.go -package=mocks -mock_names=HTTPClient=MockHTTPClient
type HTTPClient interface {
	// Post performs a POST request with the given headers and returns the response body.
	// Network errors, 429 and 5xx responses are retried with exponential backoff.
	Post(ctx context.Context, url string, headers map[string]string, body []byte) ([]byte, error)
}

// StatusError is returned for a non-2xx response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
}

// RealHTTPClient implements HTTPClient using the standard http package
type RealHTTPClient struct {
	client         *http.Client
	maxElapsedTime time.Duration
	initialBackoff time.Duration
}

// NewHTTPClient creates a new real HTTP client. maxElapsedTime bounds the total
// time spent retrying a request (0 disables retries).
func NewHTTPClient(timeout time.Duration, maxElapsedTime time.Duration) HTTPClient {
	return &RealHTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		maxElapsedTime: maxElapsedTime,
		initialBackoff: 500 * time.Millisecond,
	}
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// Post performs a POST request with retry
func (c *RealHTTPClient) Post(ctx context.Context, url string, headers map[string]string, body []byte) ([]byte, error) {
	var respBody []byte

	operation := func() error {
		// the request is rebuilt per attempt since its body reader is consumed
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			// Network errors are retryable
			return fmt.Errorf("failed to perform request: %w", err)
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				logger.WarnCtx(ctx, "failed to close response body", zap.Error(err), zap.String("url", url))
			}
		}()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
			if retryableStatus(resp.StatusCode) {
				logger.WarnCtx(ctx, "request failed, retrying with backoff",
					zap.String("url", url),
					zap.Int("status", resp.StatusCode))
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}

		respBody = data
		return nil
	}

	var b backoff.BackOff = &backoff.StopBackOff{}
	if c.maxElapsedTime > 0 {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = c.initialBackoff
		eb.MaxInterval = 10 * time.Second
		eb.MaxElapsedTime = c.maxElapsedTime
		eb.Multiplier = 2.0
		eb.RandomizationFactor = 0.5 // Add jitter to prevent thundering herd
		b = eb
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("request failed after retries: %w", err)
	}

	return respBody, nil
}
