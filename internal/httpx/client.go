package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is the bounded-time HTTP primitive shared by every outbound
// integration: per-request deadline, bounded retries on transient failures
// (network errors, 429, 5xx) with capped backoff.
type Client struct {
	httpClient *http.Client
	baseDelay  time.Duration
	maxDelay   time.Duration
}

type Options struct {
	HTTPClient *http.Client
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// Request describes one outbound call. Body is JSON-encoded when set; Form
// takes precedence for form-encoded token exchanges.
type Request struct {
	Method     string
	URL        string
	Headers    map[string]string
	Body       any
	Form       url.Values
	Timeout    time.Duration
	MaxRetries int
}

type Response struct {
	StatusCode int
	Body       []byte
}

// StatusError is returned for non-2xx responses, carrying the provider's
// status code and body text.
type StatusError struct {
	StatusCode int
	Body       string
	URL        string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 512 {
		body = body[:512]
	}
	return fmt.Sprintf("%s returned status %d: %s", e.URL, e.StatusCode, body)
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	baseDelay := opts.BaseDelay
	if baseDelay <= 0 {
		baseDelay = 200 * time.Millisecond
	}

	maxDelay := opts.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 3 * time.Second
	}

	return &Client{
		httpClient: httpClient,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
	}
}

// Do executes the request, retrying transient failures up to req.MaxRetries
// times. Non-2xx responses after exhausting retries surface as *StatusError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	var payload []byte
	contentType := ""

	switch {
	case req.Form != nil:
		payload = []byte(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.Body != nil:
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = encoded
		contentType = "application/json"
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	var lastErr error

	for attempt := 0; attempt <= req.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, c.retryDelay(attempt)); err != nil {
				return nil, err
			}
		}

		resp, err := c.attempt(ctx, req, payload, contentType, timeout)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			return resp, nil
		}

		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(resp.Body), URL: req.URL}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = statusErr
			continue
		}

		return nil, statusErr
	}

	return nil, lastErr
}

// DoJSON executes the request and decodes a 2xx body into out when out is
// non-nil.
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}

	if out == nil || len(resp.Body) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", req.URL, err)
	}

	return nil
}

func (c *Client) attempt(ctx context.Context, req Request, payload []byte, contentType string, timeout time.Duration) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}

func (c *Client) retryDelay(attempt int) time.Duration {
	delay := c.baseDelay * time.Duration(1<<(attempt-1))
	if delay > c.maxDelay {
		delay = c.maxDelay
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
