package crm

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/signalhound-dev/signalhound/internal/httpx"
	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/types"
)

// HubSpotClient talks to the HubSpot CRM v3 API using an OAuth2 bearer token.
type HubSpotClient struct {
	accessToken  string
	refreshToken string
	clientID     string
	clientSecret string
	baseURL      string
	tokenURL     string
	api          *httpx.Client
}

type HubSpotOptions struct {
	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
	HTTP         *httpx.Client
}

func NewHubSpotClient(opts HubSpotOptions) *HubSpotClient {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.hubapi.com"
	}

	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = baseURL + "/oauth/v1/token"
	}

	api := opts.HTTP
	if api == nil {
		api = httpx.New(httpx.Options{})
	}

	return &HubSpotClient{
		accessToken:  opts.AccessToken,
		refreshToken: opts.RefreshToken,
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		baseURL:      baseURL,
		tokenURL:     tokenURL,
		api:          api,
	}
}

func (c *HubSpotClient) Provider() string { return types.ProviderHubSpot }

func (c *HubSpotClient) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.accessToken}
}

type hubspotObject struct {
	ID string `json:"id"`
}

type hubspotSearchResponse struct {
	Total   int             `json:"total"`
	Results []hubspotObject `json:"results"`
}

func (c *HubSpotClient) RefreshToken(ctx context.Context) (*TokenBundle, error) {
	if c.refreshToken == "" {
		return nil, fmt.Errorf("hubspot: no refresh token stored")
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("refresh_token", c.refreshToken)

	var bundle TokenBundle
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.tokenURL,
		Form:       form,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &bundle)
	if err != nil {
		return nil, err
	}

	c.accessToken = bundle.AccessToken
	if bundle.RefreshToken != "" {
		c.refreshToken = bundle.RefreshToken
	}

	return &bundle, nil
}

func (c *HubSpotClient) CreateCompany(ctx context.Context, company CompanyInput) (string, error) {
	properties := map[string]string{"name": company.Name}
	if company.Domain != "" {
		properties["domain"] = company.Domain
	}
	if company.Website != "" {
		properties["website"] = company.Website
	}
	if company.Industry != "" {
		properties["industry"] = company.Industry
	}
	if company.Description != "" {
		properties["description"] = company.Description
	}
	for property, value := range company.Extra {
		properties[property] = value
	}

	var created hubspotObject
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.baseURL + "/crm/v3/objects/companies",
		Headers:    c.headers(),
		Body:       map[string]any{"properties": properties},
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &created)
	if err != nil {
		return "", err
	}

	return created.ID, nil
}

func (c *HubSpotClient) FindCompanyByDomain(ctx context.Context, domain string) (string, error) {
	body := map[string]any{
		"filterGroups": []any{
			map[string]any{
				"filters": []any{
					map[string]any{"propertyName": "domain", "operator": "EQ", "value": domain},
				},
			},
		},
		"limit": 1,
	}

	var result hubspotSearchResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.baseURL + "/crm/v3/objects/companies/search",
		Headers:    c.headers(),
		Body:       body,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &result)
	if err != nil {
		return "", err
	}

	if len(result.Results) == 0 {
		return "", nil
	}

	return result.Results[0].ID, nil
}

func (c *HubSpotClient) UpdateCompany(ctx context.Context, id string, company CompanyInput) error {
	properties := map[string]string{}
	if company.Name != "" {
		properties["name"] = company.Name
	}
	if company.Domain != "" {
		properties["domain"] = company.Domain
	}
	if company.Industry != "" {
		properties["industry"] = company.Industry
	}
	if company.Description != "" {
		properties["description"] = company.Description
	}
	for property, value := range company.Extra {
		properties[property] = value
	}

	return c.api.DoJSON(ctx, httpx.Request{
		Method:     "PATCH",
		URL:        c.baseURL + "/crm/v3/objects/companies/" + id,
		Headers:    c.headers(),
		Body:       map[string]any{"properties": properties},
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, nil)
}

func (c *HubSpotClient) CreateContact(ctx context.Context, contact ContactInput) (string, error) {
	properties := map[string]string{"email": contact.Email}
	if contact.FirstName != "" {
		properties["firstname"] = contact.FirstName
	}
	if contact.LastName != "" {
		properties["lastname"] = contact.LastName
	}
	if contact.Title != "" {
		properties["jobtitle"] = contact.Title
	}

	payload := map[string]any{"properties": properties}
	if contact.CompanyID != "" {
		payload["associations"] = []any{
			map[string]any{
				"to": map[string]any{"id": contact.CompanyID},
				"types": []any{
					map[string]any{"associationCategory": "HUBSPOT_DEFINED", "associationTypeId": 1},
				},
			},
		}
	}

	var created hubspotObject
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.baseURL + "/crm/v3/objects/contacts",
		Headers:    c.headers(),
		Body:       payload,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &created)
	if err != nil {
		return "", err
	}

	return created.ID, nil
}

func (c *HubSpotClient) FindContactByEmail(ctx context.Context, email string) (string, error) {
	body := map[string]any{
		"filterGroups": []any{
			map[string]any{
				"filters": []any{
					map[string]any{"propertyName": "email", "operator": "EQ", "value": email},
				},
			},
		},
		"limit": 1,
	}

	var result hubspotSearchResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.baseURL + "/crm/v3/objects/contacts/search",
		Headers:    c.headers(),
		Body:       body,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &result)
	if err != nil {
		return "", err
	}

	if len(result.Results) == 0 {
		return "", nil
	}

	return result.Results[0].ID, nil
}

func (c *HubSpotClient) CreateDeal(ctx context.Context, deal DealInput) (string, error) {
	properties := map[string]string{
		"dealname":  deal.Name,
		"dealstage": "appointmentscheduled",
	}
	if deal.Amount > 0 {
		properties["amount"] = fmt.Sprintf("%.2f", deal.Amount)
	}

	payload := map[string]any{"properties": properties}
	if deal.CompanyID != "" {
		payload["associations"] = []any{
			map[string]any{
				"to": map[string]any{"id": deal.CompanyID},
				"types": []any{
					map[string]any{"associationCategory": "HUBSPOT_DEFINED", "associationTypeId": 5},
				},
			},
		}
	}

	var created hubspotObject
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.baseURL + "/crm/v3/objects/deals",
		Headers:    c.headers(),
		Body:       payload,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &created)
	if err != nil {
		return "", err
	}

	return created.ID, nil
}

func (c *HubSpotClient) CreateNote(ctx context.Context, note NoteInput) (string, error) {
	payload := map[string]any{
		"properties": map[string]string{
			"hs_note_body": note.Body,
			"hs_timestamp": fmt.Sprintf("%d", time.Now().UnixMilli()),
		},
	}
	if note.CompanyID != "" {
		payload["associations"] = []any{
			map[string]any{
				"to": map[string]any{"id": note.CompanyID},
				"types": []any{
					// 190 = note-to-company
					map[string]any{"associationCategory": "HUBSPOT_DEFINED", "associationTypeId": 190},
				},
			},
		}
	}

	var created hubspotObject
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.baseURL + "/crm/v3/objects/notes",
		Headers:    c.headers(),
		Body:       payload,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &created)
	if err != nil {
		return "", err
	}

	return created.ID, nil
}

func (c *HubSpotClient) SyncSignal(ctx context.Context, signal *models.Signal, mapping FieldMapping) SyncResult {
	return syncThroughClient(ctx, c, signal, mapping)
}
