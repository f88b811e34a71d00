package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultMaxAttempts bounds the retry loop: one initial try plus two
	// retries.
	DefaultMaxAttempts = 3
	// baseBackoff is the first retry delay; it doubles per attempt.
	baseBackoff = 250 * time.Millisecond
	// maxBackoff caps the exponential growth.
	maxBackoff = 2 * time.Second
)

// HTTPDoer executes requests with bounded retry and capped exponential
// backoff. Transport failures (including timeouts), 5xx and 429 are
// retried; any other 4xx surfaces immediately with the upstream status
// preserved. Clients embed one HTTPDoer per provider.
type HTTPDoer struct {
	Client      *http.Client
	Provider    string
	MaxAttempts int
}

// NewHTTPDoer builds an executor with a dedicated transport and timeout.
func NewHTTPDoer(provider string, timeout time.Duration, maxAttempts int) *HTTPDoer {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &HTTPDoer{
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		Provider:    provider,
		MaxAttempts: maxAttempts,
	}
}

// DoJSON executes the request built by newReq, decodes a 2xx JSON body into
// out (when out is non-nil) and returns the response body bytes. newReq is
// a factory so each attempt gets a fresh request with a fresh body.
func (d *HTTPDoer) DoJSON(ctx context.Context, op string, newReq func(ctx context.Context) (*http.Request, error), out interface{}) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= d.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepBackoff(ctx, attempt-1); err != nil {
				return nil, &ProviderError{Provider: d.Provider, Op: op, Retryable: true, Err: err}
			}
		}

		req, err := newReq(ctx)
		if err != nil {
			return nil, &ProviderError{Provider: d.Provider, Op: op, Err: fmt.Errorf("build request: %w", err)}
		}

		resp, err := d.Client.Do(req)
		if err != nil {
			// Timeouts and connection failures are transport errors,
			// subject to the retry budget.
			lastErr = &ProviderError{Provider: d.Provider, Op: op, Retryable: true, Err: err}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = &ProviderError{Provider: d.Provider, Op: op, Retryable: true, Err: readErr}
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if out != nil {
				if err := json.Unmarshal(body, out); err != nil {
					return nil, &ProviderError{Provider: d.Provider, Op: op, Err: fmt.Errorf("decode response: %w", err)}
				}
			}
			return body, nil

		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			lastErr = &ProviderError{
				Provider:   d.Provider,
				Op:         op,
				StatusCode: resp.StatusCode,
				Retryable:  true,
				Err:        fmt.Errorf("upstream error: %s", truncate(body, 200)),
			}
			continue

		default:
			// 4xx is a client error: not retried, upstream message kept.
			return nil, &ProviderError{
				Provider:   d.Provider,
				Op:         op,
				StatusCode: resp.StatusCode,
				Err:        fmt.Errorf("upstream rejected request: %s", truncate(body, 200)),
			}
		}
	}

	return nil, lastErr
}

// JSONBody wraps a payload so request factories can re-serialize it per
// attempt.
func JSONBody(payload interface{}) (io.Reader, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(buf), nil
}

// sleepBackoff waits for the capped exponential delay of the given retry
// number, aborting early if the context is cancelled.
func sleepBackoff(ctx context.Context, retry int) error {
	delay := baseBackoff << (retry - 1)
	if delay > maxBackoff {
		delay = maxBackoff
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
