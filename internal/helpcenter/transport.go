package helpcenter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"kbsync/internal/config"
	"kbsync/internal/logger"
)

// Transport errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrUnauthorized         = errors.New("help center rejected credentials")
	ErrResponseTooLarge     = errors.New("response exceeds buffer limit")
)

const userAgent = "kbsync/1.0"

// noRetry marks an attempt failure that must not be retried.
const noRetry = time.Duration(-1)

// transport performs authenticated GET requests with config-driven retry logic.
type transport struct {
	client      *http.Client
	log         *logger.Logger
	retryPolicy config.RetryPolicy
	username    string
	password    string
	limit       int64
}

func newTransport(cfg config.SourceConfig, bufferSizeKb int, log *logger.Logger) *transport {
	return &transport{
		client: &http.Client{
			Timeout: cfg.Retry.GetTimeout(),
		},
		log:         log,
		retryPolicy: cfg.Retry,
		// API tokens authenticate as "<email>/token".
		username: cfg.Email + "/token",
		password: cfg.Token,
		limit:    int64(bufferSizeKb) * 1024,
	}
}

// get fetches url, retrying transport failures and temporary statuses with
// exponential backoff. A Retry-After header overrides the computed delay.
func (t *transport) get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	maxAttempts := max(t.retryPolicy.MaxAttempts, 1)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, wait, err := t.attempt(ctx, url)
		if err == nil {
			return body, nil
		}

		lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt, maxAttempts, err)

		if wait == noRetry || attempt == maxAttempts {
			break
		}

		if wait == 0 {
			wait = t.retryPolicy.GetRetryDelay(attempt)
		}

		t.log.Warn("retrying request", "url", url, "attempt", attempt, "delay", wait, "error", err)

		if sleepErr := sleep(ctx, wait); sleepErr != nil {
			return nil, sleepErr
		}
	}

	return nil, lastErr
}

// attempt performs one request. The returned duration is noRetry for permanent
// failures, a server-requested delay, or zero to use the backoff policy.
func (t *transport) attempt(ctx context.Context, url string) ([]byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, noRetry, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(t.username, t.password)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, noRetry, ctx.Err()
		}

		return nil, 0, err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, noRetry, fmt.Errorf("%w: %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		err := fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
		if !isRetryableStatus(resp.StatusCode) {
			return nil, noRetry, err
		}

		return nil, retryAfter(resp), err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.limit+1))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}

	if int64(len(body)) > t.limit {
		return nil, noRetry, fmt.Errorf("%w: %d bytes", ErrResponseTooLarge, t.limit)
	}

	return body, 0, nil
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}

	return false
}

// retryAfter reads a Retry-After header given in seconds. Zero means absent.
func retryAfter(resp *http.Response) time.Duration {
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}

	return time.Duration(secs) * time.Second
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
