package emailgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/signalhound-dev/signalhound/internal/httpx"
)

// HTTPClient is the consumer side of the email-generation endpoint, used by
// the generate_email automation action. It rides the internal API key so rule
// executions don't need a user session.
type HTTPClient struct {
	baseURL     string
	internalKey string
	api         *httpx.Client
}

type HTTPClientOptions struct {
	BaseURL     string
	InternalKey string
	HTTP        *httpx.Client
}

func NewHTTPClient(opts HTTPClientOptions) *HTTPClient {
	api := opts.HTTP
	if api == nil {
		api = httpx.New(httpx.Options{})
	}

	return &HTTPClient{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		internalKey: opts.InternalKey,
		api:         api,
	}
}

type generateResponse struct {
	ID uint `json:"id"`
}

func (c *HTTPClient) GenerateEmail(ctx context.Context, signalID uint, tone string) (uint, error) {
	var resp generateResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        fmt.Sprintf("%s/api/signals/%d/email", c.baseURL, signalID),
		Headers:    map[string]string{"X-Internal-Api-Key": c.internalKey},
		Body:       map[string]string{"tone": tone},
		Timeout:    generateTimeout,
		MaxRetries: generateRetries,
	}, &resp)
	if err != nil {
		return 0, err
	}

	return resp.ID, nil
}
