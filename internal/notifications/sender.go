package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/signalhound-dev/signalhound/internal/httpx"
	"github.com/signalhound-dev/signalhound/internal/models"
)

const (
	sendTimeout = 15 * time.Second
	sendRetries = 2
)

// Sender calls the internal send-notification endpoint, authenticated with
// the server-to-server secret header.
type Sender struct {
	baseURL     string
	internalKey string
	api         *httpx.Client
}

type SenderOptions struct {
	BaseURL     string
	InternalKey string
	HTTP        *httpx.Client
}

func NewSender(opts SenderOptions) *Sender {
	api := opts.HTTP
	if api == nil {
		api = httpx.New(httpx.Options{})
	}

	return &Sender{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		internalKey: opts.InternalKey,
		api:         api,
	}
}

func (s *Sender) headers() map[string]string {
	return map[string]string{"X-Internal-Api-Key": s.internalKey}
}

type sendResponse struct {
	ID string `json:"id"`
}

// SendSignalAlert delivers the notify-action email for a signal; the
// receiving endpoint resolves the owning user itself.
func (s *Sender) SendSignalAlert(ctx context.Context, signal *models.Signal) error {
	return s.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        s.baseURL + "/api/send-notification",
		Headers:    s.headers(),
		Body:       map[string]any{"signal": signal},
		Timeout:    sendTimeout,
		MaxRetries: sendRetries,
	}, nil)
}

// SendUserAlert delivers the notification-gate email addressed to a specific
// user and returns the sent notification's identifier.
func (s *Sender) SendUserAlert(ctx context.Context, email, userName string, signal *models.Signal) (string, error) {
	var resp sendResponse
	err := s.api.DoJSON(ctx, httpx.Request{
		Method:  "POST",
		URL:     s.baseURL + "/api/send-notification",
		Headers: s.headers(),
		Body: map[string]any{
			"email":    email,
			"userName": userName,
			"signal":   signal,
		},
		Timeout:    sendTimeout,
		MaxRetries: sendRetries,
	}, &resp)
	if err != nil {
		return "", err
	}

	return resp.ID, nil
}
