package emailgen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/signalhound-dev/signalhound/internal/httpx"
	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/types"
	"gorm.io/gorm"
)

// AI generation is slow; allow a long deadline and a single retry since the
// call is not idempotent.
const (
	generateTimeout = 45 * time.Second
	generateRetries = 1
)

// Generator drafts outreach emails from signals via an OpenAI-compatible
// chat-completions endpoint (OpenRouter by default) and persists the drafts.
type Generator struct {
	db       *gorm.DB
	endpoint string
	model    string
	apiKey   string
	api      *httpx.Client
}

type Options struct {
	Endpoint string
	Model    string
	APIKey   string
	HTTP     *httpx.Client
}

func NewGenerator(db *gorm.DB, opts Options) *Generator {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = "https://openrouter.ai/api/v1/chat/completions"
	}

	model := opts.Model
	if model == "" {
		model = "openai/gpt-4o-mini"
	}

	api := opts.HTTP
	if api == nil {
		api = httpx.New(httpx.Options{})
	}

	return &Generator{
		db:       db,
		endpoint: endpoint,
		model:    model,
		apiKey:   opts.APIKey,
		api:      api,
	}
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate produces and stores an outreach email draft for the signal.
func (g *Generator) Generate(ctx context.Context, signal *models.Signal, tone string) (*models.GeneratedEmail, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("emailgen: no API key configured")
	}

	if tone == "" {
		tone = "professional"
	}

	payload := map[string]any{
		"model": g.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt(tone)},
			{"role": "user", "content": signalPrompt(signal)},
		},
	}

	var resp chatCompletionResponse
	err := g.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        g.endpoint,
		Headers:    map[string]string{"Authorization": "Bearer " + g.apiKey},
		Body:       payload,
		Timeout:    generateTimeout,
		MaxRetries: generateRetries,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("emailgen: model returned no choices")
	}

	subject, body := splitDraft(resp.Choices[0].Message.Content)
	if body == "" {
		return nil, fmt.Errorf("emailgen: model returned an empty draft")
	}

	email := &models.GeneratedEmail{
		SignalID: signal.ID,
		UserID:   signal.UserID,
		Subject:  subject,
		Body:     body,
		Tone:     tone,
	}

	if err := g.db.WithContext(ctx).Create(email).Error; err != nil {
		return nil, fmt.Errorf("emailgen: store draft: %w", err)
	}

	return email, nil
}

func systemPrompt(tone string) string {
	return fmt.Sprintf(
		"You are a sales development representative writing a short outreach email in a %s tone. "+
			"Open with the buying signal, keep it under 150 words, and end with a soft call to action. "+
			"Start your reply with 'Subject: <subject line>' followed by a blank line and the email body.",
		tone,
	)
}

func signalPrompt(signal *models.Signal) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Company: %s\n", signal.CompanyName)
	if signal.CompanyDomain != "" {
		fmt.Fprintf(&b, "Website: %s\n", signal.CompanyDomain)
	}
	fmt.Fprintf(&b, "Signal: %s (%s priority)\n", types.SignalTypeLabel(signal.SignalType), signal.Priority)
	fmt.Fprintf(&b, "Headline: %s\n", signal.Title)
	if signal.Summary != "" {
		fmt.Fprintf(&b, "Details: %s\n", signal.Summary)
	}

	return b.String()
}

// splitDraft separates the "Subject: ..." first line from the email body,
// tolerating drafts that skip the subject convention.
func splitDraft(content string) (subject, body string) {
	content = strings.TrimSpace(content)

	lines := strings.SplitN(content, "\n", 2)
	first := strings.TrimSpace(lines[0])

	if rest, ok := strings.CutPrefix(first, "Subject:"); ok {
		subject = strings.TrimSpace(rest)
		if len(lines) > 1 {
			body = strings.TrimSpace(lines[1])
		}
		return subject, body
	}

	return "Quick note", content
}
