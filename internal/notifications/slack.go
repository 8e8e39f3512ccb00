package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/signalhound-dev/signalhound/internal/httpx"
	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/types"
)

const (
	slackTimeout = 10 * time.Second
	slackRetries = 2
)

type SlackBlock struct {
	Type   string      `json:"type"`
	Text   *SlackText  `json:"text,omitempty"`
	Fields []SlackText `json:"fields,omitempty"`
}

type SlackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type SlackMessageRequest struct {
	Channel string       `json:"channel"`
	Text    string       `json:"text"`
	Blocks  []SlackBlock `json:"blocks,omitempty"`
}

type slackMessageResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// SlackClient posts signal alerts via the Slack Web API using each user's
// stored bot token.
type SlackClient struct {
	baseURL string
	api     *httpx.Client
}

type SlackOptions struct {
	BaseURL string
	HTTP    *httpx.Client
}

func NewSlackClient(opts SlackOptions) *SlackClient {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://slack.com/api"
	}

	api := opts.HTTP
	if api == nil {
		api = httpx.New(httpx.Options{})
	}

	return &SlackClient{baseURL: baseURL, api: api}
}

func (c *SlackClient) PostSignalAlert(ctx context.Context, token, channel string, signal *models.Signal) error {
	payload := SlackMessageRequest{
		Channel: channel,
		Text:    fmt.Sprintf("🔔 New %s signal: %s", types.SignalTypeLabel(signal.SignalType), signal.CompanyName),
		Blocks: []SlackBlock{
			{
				Type: "header",
				Text: &SlackText{Type: "plain_text", Text: fmt.Sprintf("🔔 %s: %s", signal.CompanyName, types.SignalTypeLabel(signal.SignalType))},
			},
			{
				Type: "section",
				Text: &SlackText{Type: "mrkdwn", Text: fmt.Sprintf("*%s*\n%s", signal.Title, signal.Summary)},
			},
			{
				Type: "section",
				Fields: []SlackText{
					{Type: "mrkdwn", Text: "*Priority:* " + strings.ToUpper(signal.Priority)},
					{Type: "mrkdwn", Text: "*Source:* " + signal.SourceName},
					{Type: "mrkdwn", Text: "*Detected:* " + signal.DetectedAt.Format("2006-01-02 15:04 UTC")},
					{Type: "mrkdwn", Text: "*Status:* " + signal.Status},
				},
			},
		},
	}

	var resp slackMessageResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.baseURL + "/chat.postMessage",
		Headers:    map[string]string{"Authorization": "Bearer " + token},
		Body:       payload,
		Timeout:    slackTimeout,
		MaxRetries: slackRetries,
	}, &resp)
	if err != nil {
		return err
	}

	if !resp.OK {
		return fmt.Errorf("slack API error: %s", resp.Error)
	}

	return nil
}
