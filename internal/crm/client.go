package crm

import (
	"context"
	"log"
	"time"

	"github.com/signalhound-dev/signalhound/internal/models"
)

// Default discipline for provider API calls.
const (
	callTimeout = 15 * time.Second
	callRetries = 2
)

// Client is the uniform capability set every CRM provider implements.
// Individual methods may return errors; SyncSignal never does — it converts
// every failure into the result.
type Client interface {
	Provider() string
	RefreshToken(ctx context.Context) (*TokenBundle, error)
	CreateCompany(ctx context.Context, company CompanyInput) (string, error)
	// FindCompanyByDomain returns "" when no company matches.
	FindCompanyByDomain(ctx context.Context, domain string) (string, error)
	UpdateCompany(ctx context.Context, id string, company CompanyInput) error
	CreateContact(ctx context.Context, contact ContactInput) (string, error)
	FindContactByEmail(ctx context.Context, email string) (string, error)
	CreateDeal(ctx context.Context, deal DealInput) (string, error)
	CreateNote(ctx context.Context, note NoteInput) (string, error)
	SyncSignal(ctx context.Context, signal *models.Signal, mapping FieldMapping) SyncResult
}

type TokenBundle struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

type CompanyInput struct {
	Name        string
	Domain      string
	Website     string
	Industry    string
	Description string
	// Extra carries integration field-mapping overrides: provider property
	// name -> value.
	Extra map[string]string
}

type ContactInput struct {
	FirstName string
	LastName  string
	Email     string
	Title     string
	CompanyID string
}

type DealInput struct {
	Name      string
	Amount    float64
	CompanyID string
}

type NoteInput struct {
	CompanyID string
	Title     string
	Body      string
}

// FieldMapping translates signal field names to provider property names.
type FieldMapping map[string]string

type SyncResult struct {
	Success   bool   `json:"success"`
	CompanyID string `json:"company_id,omitempty"`
	NoteID    string `json:"note_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// syncThroughClient is the shared find-or-create-then-note flow behind every
// provider's SyncSignal. A failed domain lookup degrades to company creation,
// which can duplicate records when the provider search is down.
func syncThroughClient(ctx context.Context, client Client, signal *models.Signal, mapping FieldMapping) SyncResult {
	companyID := ""

	if signal.CompanyDomain != "" {
		id, err := client.FindCompanyByDomain(ctx, signal.CompanyDomain)
		if err != nil {
			log.Printf("%s: company lookup failed for %s: %v", client.Provider(), signal.CompanyDomain, err)
		} else {
			companyID = id
		}
	}

	if companyID == "" {
		company := CompanyInput{
			Name:        signal.CompanyName,
			Domain:      signal.CompanyDomain,
			Website:     websiteFromDomain(signal.CompanyDomain),
			Industry:    metadataString(signal, "industry"),
			Description: signal.Summary,
			Extra:       applyFieldMapping(signal, mapping),
		}

		id, err := client.CreateCompany(ctx, company)
		if err != nil {
			return SyncResult{Error: err.Error()}
		}
		companyID = id
	}

	noteID, err := client.CreateNote(ctx, NoteInput{
		CompanyID: companyID,
		Title:     noteTitle(signal),
		Body:      FormatSignalNote(signal),
	})
	if err != nil {
		return SyncResult{Error: err.Error()}
	}

	return SyncResult{Success: true, CompanyID: companyID, NoteID: noteID}
}

func websiteFromDomain(domain string) string {
	if domain == "" {
		return ""
	}
	return "https://" + domain
}

func metadataString(signal *models.Signal, key string) string {
	meta := signal.MetadataMap()
	if meta == nil {
		return ""
	}

	if value, ok := meta[key].(string); ok {
		return value
	}

	return ""
}

// applyFieldMapping builds provider property overrides from the integration's
// field translation table.
func applyFieldMapping(signal *models.Signal, mapping FieldMapping) map[string]string {
	if len(mapping) == 0 {
		return nil
	}

	source := map[string]string{
		"company_name":   signal.CompanyName,
		"company_domain": signal.CompanyDomain,
		"signal_type":    signal.SignalType,
		"priority":       signal.Priority,
		"title":          signal.Title,
		"summary":        signal.Summary,
		"source_name":    signal.SourceName,
		"source_url":     signal.SourceURL,
	}

	extra := make(map[string]string, len(mapping))
	for field, property := range mapping {
		if value, ok := source[field]; ok && value != "" {
			extra[property] = value
		}
	}

	if len(extra) == 0 {
		return nil
	}

	return extra
}
