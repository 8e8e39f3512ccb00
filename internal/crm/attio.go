package crm

import (
	"context"
	"fmt"

	"github.com/signalhound-dev/signalhound/internal/httpx"
	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/types"
)

// AttioClient talks to the Attio v2 API with a bearer API key.
type AttioClient struct {
	apiKey  string
	baseURL string
	api     *httpx.Client
}

type AttioOptions struct {
	APIKey  string
	BaseURL string
	HTTP    *httpx.Client
}

func NewAttioClient(opts AttioOptions) *AttioClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.attio.com/v2"
	}

	api := opts.HTTP
	if api == nil {
		api = httpx.New(httpx.Options{})
	}

	return &AttioClient{apiKey: opts.APIKey, baseURL: baseURL, api: api}
}

func (c *AttioClient) Provider() string { return types.ProviderAttio }

func (c *AttioClient) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.apiKey}
}

// RefreshToken is a no-op: Attio API keys have no expiry or rotation.
func (c *AttioClient) RefreshToken(ctx context.Context) (*TokenBundle, error) {
	return &TokenBundle{AccessToken: c.apiKey}, nil
}

type attioRecordResponse struct {
	Data struct {
		ID struct {
			RecordID string `json:"record_id"`
		} `json:"id"`
	} `json:"data"`
}

type attioQueryResponse struct {
	Data []struct {
		ID struct {
			RecordID string `json:"record_id"`
		} `json:"id"`
	} `json:"data"`
}

func (c *AttioClient) CreateCompany(ctx context.Context, company CompanyInput) (string, error) {
	values := map[string]any{
		"name": []map[string]any{{"value": company.Name}},
	}
	if company.Domain != "" {
		values["domains"] = []map[string]any{{"domain": company.Domain}}
	}
	if company.Description != "" {
		values["description"] = []map[string]any{{"value": company.Description}}
	}
	for property, value := range company.Extra {
		values[property] = []map[string]any{{"value": value}}
	}

	var created attioRecordResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.baseURL + "/objects/companies/records",
		Headers:    c.headers(),
		Body:       map[string]any{"data": map[string]any{"values": values}},
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &created)
	if err != nil {
		return "", err
	}

	return created.Data.ID.RecordID, nil
}

func (c *AttioClient) FindCompanyByDomain(ctx context.Context, domain string) (string, error) {
	body := map[string]any{
		"filter": map[string]any{
			"domains": map[string]any{
				"domain": map[string]any{"$eq": domain},
			},
		},
		"limit": 1,
	}

	var result attioQueryResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.baseURL + "/objects/companies/records/query",
		Headers:    c.headers(),
		Body:       body,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &result)
	if err != nil {
		return "", err
	}

	if len(result.Data) == 0 {
		return "", nil
	}

	return result.Data[0].ID.RecordID, nil
}

func (c *AttioClient) UpdateCompany(ctx context.Context, id string, company CompanyInput) error {
	values := map[string]any{}
	if company.Name != "" {
		values["name"] = []map[string]any{{"value": company.Name}}
	}
	if company.Description != "" {
		values["description"] = []map[string]any{{"value": company.Description}}
	}
	for property, value := range company.Extra {
		values[property] = []map[string]any{{"value": value}}
	}

	return c.api.DoJSON(ctx, httpx.Request{
		Method:     "PATCH",
		URL:        c.baseURL + "/objects/companies/records/" + id,
		Headers:    c.headers(),
		Body:       map[string]any{"data": map[string]any{"values": values}},
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, nil)
}

func (c *AttioClient) CreateContact(ctx context.Context, contact ContactInput) (string, error) {
	values := map[string]any{
		"email_addresses": []map[string]any{{"email_address": contact.Email}},
	}
	name := contact.FirstName
	if contact.LastName != "" {
		if name != "" {
			name += " "
		}
		name += contact.LastName
	}
	if name != "" {
		values["name"] = []map[string]any{{
			"first_name": contact.FirstName,
			"last_name":  contact.LastName,
			"full_name":  name,
		}}
	}
	if contact.Title != "" {
		values["job_title"] = []map[string]any{{"value": contact.Title}}
	}

	var created attioRecordResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.baseURL + "/objects/people/records",
		Headers:    c.headers(),
		Body:       map[string]any{"data": map[string]any{"values": values}},
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &created)
	if err != nil {
		return "", err
	}

	return created.Data.ID.RecordID, nil
}

func (c *AttioClient) FindContactByEmail(ctx context.Context, email string) (string, error) {
	body := map[string]any{
		"filter": map[string]any{
			"email_addresses": map[string]any{
				"email_address": map[string]any{"$eq": email},
			},
		},
		"limit": 1,
	}

	var result attioQueryResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.baseURL + "/objects/people/records/query",
		Headers:    c.headers(),
		Body:       body,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &result)
	if err != nil {
		return "", err
	}

	if len(result.Data) == 0 {
		return "", nil
	}

	return result.Data[0].ID.RecordID, nil
}

func (c *AttioClient) CreateDeal(ctx context.Context, deal DealInput) (string, error) {
	values := map[string]any{
		"name": []map[string]any{{"value": deal.Name}},
	}
	if deal.Amount > 0 {
		values["value"] = []map[string]any{{"value": fmt.Sprintf("%.2f", deal.Amount)}}
	}
	if deal.CompanyID != "" {
		values["associated_company"] = []map[string]any{{
			"target_object":    "companies",
			"target_record_id": deal.CompanyID,
		}}
	}

	var created attioRecordResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.baseURL + "/objects/deals/records",
		Headers:    c.headers(),
		Body:       map[string]any{"data": map[string]any{"values": values}},
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &created)
	if err != nil {
		return "", err
	}

	return created.Data.ID.RecordID, nil
}

func (c *AttioClient) CreateNote(ctx context.Context, note NoteInput) (string, error) {
	payload := map[string]any{
		"data": map[string]any{
			"parent_object":    "companies",
			"parent_record_id": note.CompanyID,
			"title":            note.Title,
			"format":           "plaintext",
			"content":          note.Body,
		},
	}

	var created struct {
		Data struct {
			ID struct {
				NoteID string `json:"note_id"`
			} `json:"id"`
		} `json:"data"`
	}
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.baseURL + "/notes",
		Headers:    c.headers(),
		Body:       payload,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &created)
	if err != nil {
		return "", err
	}

	return created.Data.ID.NoteID, nil
}

func (c *AttioClient) SyncSignal(ctx context.Context, signal *models.Signal, mapping FieldMapping) SyncResult {
	return syncThroughClient(ctx, c, signal, mapping)
}
