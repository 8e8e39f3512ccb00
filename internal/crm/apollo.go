package crm

import (
	"context"

	"github.com/signalhound-dev/signalhound/internal/httpx"
	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/types"
)

// ApolloClient talks to the Apollo.io v1 API with raw API-key auth. Beyond
// the uniform client surface it exposes Apollo's enrichment and people-search
// capabilities.
type ApolloClient struct {
	apiKey  string
	baseURL string
	api     *httpx.Client
}

type ApolloOptions struct {
	APIKey  string
	BaseURL string
	HTTP    *httpx.Client
}

func NewApolloClient(opts ApolloOptions) *ApolloClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.apollo.io/v1"
	}

	api := opts.HTTP
	if api == nil {
		api = httpx.New(httpx.Options{})
	}

	return &ApolloClient{apiKey: opts.APIKey, baseURL: baseURL, api: api}
}

func (c *ApolloClient) Provider() string { return types.ProviderApollo }

func (c *ApolloClient) headers() map[string]string {
	return map[string]string{"X-Api-Key": c.apiKey}
}

// RefreshToken is a no-op: Apollo API keys have no expiry or rotation.
func (c *ApolloClient) RefreshToken(ctx context.Context) (*TokenBundle, error) {
	return &TokenBundle{AccessToken: c.apiKey}, nil
}

type apolloAccountResponse struct {
	Account struct {
		ID string `json:"id"`
	} `json:"account"`
}

type apolloAccountSearchResponse struct {
	Accounts []struct {
		ID string `json:"id"`
	} `json:"accounts"`
}

func (c *ApolloClient) CreateCompany(ctx context.Context, company CompanyInput) (string, error) {
	payload := map[string]any{"name": company.Name}
	if company.Domain != "" {
		payload["domain"] = company.Domain
	}
	for property, value := range company.Extra {
		payload[property] = value
	}

	var created apolloAccountResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.baseURL + "/accounts",
		Headers:    c.headers(),
		Body:       payload,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &created)
	if err != nil {
		return "", err
	}

	return created.Account.ID, nil
}

func (c *ApolloClient) FindCompanyByDomain(ctx context.Context, domain string) (string, error) {
	var result apolloAccountSearchResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:  "POST",
		URL:     c.baseURL + "/accounts/search",
		Headers: c.headers(),
		Body: map[string]any{
			"q_organization_domains": domain,
			"per_page":               1,
		},
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &result)
	if err != nil {
		return "", err
	}

	if len(result.Accounts) == 0 {
		return "", nil
	}

	return result.Accounts[0].ID, nil
}

func (c *ApolloClient) UpdateCompany(ctx context.Context, id string, company CompanyInput) error {
	payload := map[string]any{}
	if company.Name != "" {
		payload["name"] = company.Name
	}
	if company.Domain != "" {
		payload["domain"] = company.Domain
	}
	for property, value := range company.Extra {
		payload[property] = value
	}

	return c.api.DoJSON(ctx, httpx.Request{
		Method:     "PUT",
		URL:        c.baseURL + "/accounts/" + id,
		Headers:    c.headers(),
		Body:       payload,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, nil)
}

func (c *ApolloClient) CreateContact(ctx context.Context, contact ContactInput) (string, error) {
	payload := map[string]any{"email": contact.Email}
	if contact.FirstName != "" {
		payload["first_name"] = contact.FirstName
	}
	if contact.LastName != "" {
		payload["last_name"] = contact.LastName
	}
	if contact.Title != "" {
		payload["title"] = contact.Title
	}
	if contact.CompanyID != "" {
		payload["account_id"] = contact.CompanyID
	}

	var created struct {
		Contact struct {
			ID string `json:"id"`
		} `json:"contact"`
	}
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.baseURL + "/contacts",
		Headers:    c.headers(),
		Body:       payload,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &created)
	if err != nil {
		return "", err
	}

	return created.Contact.ID, nil
}

func (c *ApolloClient) FindContactByEmail(ctx context.Context, email string) (string, error) {
	var result struct {
		Contacts []struct {
			ID string `json:"id"`
		} `json:"contacts"`
	}
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:  "POST",
		URL:     c.baseURL + "/contacts/search",
		Headers: c.headers(),
		Body: map[string]any{
			"q_keywords": email,
			"per_page":   1,
		},
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &result)
	if err != nil {
		return "", err
	}

	if len(result.Contacts) == 0 {
		return "", nil
	}

	return result.Contacts[0].ID, nil
}

func (c *ApolloClient) CreateDeal(ctx context.Context, deal DealInput) (string, error) {
	payload := map[string]any{"name": deal.Name}
	if deal.Amount > 0 {
		payload["amount"] = deal.Amount
	}
	if deal.CompanyID != "" {
		payload["account_id"] = deal.CompanyID
	}

	var created struct {
		Opportunity struct {
			ID string `json:"id"`
		} `json:"opportunity"`
	}
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.baseURL + "/opportunities",
		Headers:    c.headers(),
		Body:       payload,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &created)
	if err != nil {
		return "", err
	}

	return created.Opportunity.ID, nil
}

func (c *ApolloClient) CreateNote(ctx context.Context, note NoteInput) (string, error) {
	payload := map[string]any{"content": note.Body}
	if note.CompanyID != "" {
		payload["account_id"] = note.CompanyID
	}

	var created struct {
		Note struct {
			ID string `json:"id"`
		} `json:"note"`
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

	return created.Note.ID, nil
}

func (c *ApolloClient) SyncSignal(ctx context.Context, signal *models.Signal, mapping FieldMapping) SyncResult {
	return syncThroughClient(ctx, c, signal, mapping)
}

// EnrichCompany returns Apollo's firmographic profile for a domain. Not part
// of the uniform client surface.
func (c *ApolloClient) EnrichCompany(ctx context.Context, domain string) (map[string]any, error) {
	var result struct {
		Organization map[string]any `json:"organization"`
	}
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.baseURL + "/organizations/enrich",
		Headers:    c.headers(),
		Body:       map[string]any{"domain": domain},
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &result)
	if err != nil {
		return nil, err
	}

	return result.Organization, nil
}

// FindContactsAtCompany searches Apollo's people index for prospects at a
// domain, optionally narrowed by title. Not part of the uniform client
// surface.
func (c *ApolloClient) FindContactsAtCompany(ctx context.Context, domain string, titles []string) ([]map[string]any, error) {
	payload := map[string]any{
		"q_organization_domains": domain,
		"per_page":               10,
	}
	if len(titles) > 0 {
		payload["person_titles"] = titles
	}

	var result struct {
		People []map[string]any `json:"people"`
	}
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.baseURL + "/mixed_people/search",
		Headers:    c.headers(),
		Body:       payload,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &result)
	if err != nil {
		return nil, err
	}

	return result.People, nil
}
