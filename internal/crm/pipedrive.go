package crm

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/signalhound-dev/signalhound/internal/httpx"
	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/types"
)

// PipedriveClient talks to the Pipedrive v1 API. OAuth bearer tokens and raw
// api_token credentials are both supported; api_token rides as a query
// parameter. Organizations have no native domain field, so domain lookup
// degrades to a name/term search.
type PipedriveClient struct {
	accessToken  string
	refreshToken string
	apiToken     string
	clientID     string
	clientSecret string
	baseURL      string
	tokenURL     string
	api          *httpx.Client
}

type PipedriveOptions struct {
	AccessToken  string
	RefreshToken string
	// APIToken enables the api_token fallback auth; when set it takes
	// precedence over the bearer token.
	APIToken     string
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
	HTTP         *httpx.Client
}

func NewPipedriveClient(opts PipedriveOptions) *PipedriveClient {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.pipedrive.com/api/v1"
	}

	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = "https://oauth.pipedrive.com/oauth/token"
	}

	api := opts.HTTP
	if api == nil {
		api = httpx.New(httpx.Options{})
	}

	return &PipedriveClient{
		accessToken:  opts.AccessToken,
		refreshToken: opts.RefreshToken,
		apiToken:     opts.APIToken,
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		baseURL:      baseURL,
		tokenURL:     tokenURL,
		api:          api,
	}
}

func (c *PipedriveClient) Provider() string { return types.ProviderPipedrive }

func (c *PipedriveClient) endpoint(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	if c.apiToken != "" {
		query.Set("api_token", c.apiToken)
	}

	full := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		full += "?" + encoded
	}

	return full
}

func (c *PipedriveClient) headers() map[string]string {
	if c.apiToken != "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + c.accessToken}
}

type pipedriveItemResponse struct {
	Success bool `json:"success"`
	Data    struct {
		ID int `json:"id"`
	} `json:"data"`
}

type pipedriveSearchResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Items []struct {
			Item struct {
				ID int `json:"id"`
			} `json:"item"`
		} `json:"items"`
	} `json:"data"`
}

func (c *PipedriveClient) RefreshToken(ctx context.Context) (*TokenBundle, error) {
	if c.apiToken != "" {
		// api_token credentials never expire; nothing to rotate.
		return &TokenBundle{AccessToken: c.apiToken}, nil
	}

	if c.refreshToken == "" {
		return nil, fmt.Errorf("pipedrive: no refresh token stored")
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

func (c *PipedriveClient) CreateCompany(ctx context.Context, company CompanyInput) (string, error) {
	payload := map[string]any{"name": company.Name}
	for property, value := range company.Extra {
		payload[property] = value
	}

	var created pipedriveItemResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.endpoint("/organizations", nil),
		Headers:    c.headers(),
		Body:       payload,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &created)
	if err != nil {
		return "", err
	}

	return strconv.Itoa(created.Data.ID), nil
}

func (c *PipedriveClient) FindCompanyByDomain(ctx context.Context, domain string) (string, error) {
	query := url.Values{}
	query.Set("term", domain)
	query.Set("limit", "1")

	var result pipedriveSearchResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "GET",
		URL:        c.endpoint("/organizations/search", query),
		Headers:    c.headers(),
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &result)
	if err != nil {
		return "", err
	}

	if len(result.Data.Items) == 0 {
		return "", nil
	}

	return strconv.Itoa(result.Data.Items[0].Item.ID), nil
}

func (c *PipedriveClient) UpdateCompany(ctx context.Context, id string, company CompanyInput) error {
	payload := map[string]any{}
	if company.Name != "" {
		payload["name"] = company.Name
	}
	for property, value := range company.Extra {
		payload[property] = value
	}

	return c.api.DoJSON(ctx, httpx.Request{
		Method:     "PUT",
		URL:        c.endpoint("/organizations/"+id, nil),
		Headers:    c.headers(),
		Body:       payload,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, nil)
}

func (c *PipedriveClient) CreateContact(ctx context.Context, contact ContactInput) (string, error) {
	name := strings.TrimSpace(contact.FirstName + " " + contact.LastName)
	if name == "" {
		name = contact.Email
	}

	payload := map[string]any{
		"name":  name,
		"email": []string{contact.Email},
	}
	if contact.CompanyID != "" {
		if orgID, err := strconv.Atoi(contact.CompanyID); err == nil {
			payload["org_id"] = orgID
		}
	}

	var created pipedriveItemResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.endpoint("/persons", nil),
		Headers:    c.headers(),
		Body:       payload,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &created)
	if err != nil {
		return "", err
	}

	return strconv.Itoa(created.Data.ID), nil
}

func (c *PipedriveClient) FindContactByEmail(ctx context.Context, email string) (string, error) {
	query := url.Values{}
	query.Set("term", email)
	query.Set("fields", "email")
	query.Set("limit", "1")

	var result pipedriveSearchResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "GET",
		URL:        c.endpoint("/persons/search", query),
		Headers:    c.headers(),
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &result)
	if err != nil {
		return "", err
	}

	if len(result.Data.Items) == 0 {
		return "", nil
	}

	return strconv.Itoa(result.Data.Items[0].Item.ID), nil
}

func (c *PipedriveClient) CreateDeal(ctx context.Context, deal DealInput) (string, error) {
	payload := map[string]any{"title": deal.Name}
	if deal.Amount > 0 {
		payload["value"] = deal.Amount
	}
	if deal.CompanyID != "" {
		if orgID, err := strconv.Atoi(deal.CompanyID); err == nil {
			payload["org_id"] = orgID
		}
	}

	var created pipedriveItemResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.endpoint("/deals", nil),
		Headers:    c.headers(),
		Body:       payload,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &created)
	if err != nil {
		return "", err
	}

	return strconv.Itoa(created.Data.ID), nil
}

func (c *PipedriveClient) CreateNote(ctx context.Context, note NoteInput) (string, error) {
	payload := map[string]any{"content": note.Body}
	if note.CompanyID != "" {
		if orgID, err := strconv.Atoi(note.CompanyID); err == nil {
			payload["org_id"] = orgID
		}
	}

	var created pipedriveItemResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.endpoint("/notes", nil),
		Headers:    c.headers(),
		Body:       payload,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &created)
	if err != nil {
		return "", err
	}

	return strconv.Itoa(created.Data.ID), nil
}

func (c *PipedriveClient) SyncSignal(ctx context.Context, signal *models.Signal, mapping FieldMapping) SyncResult {
	return syncThroughClient(ctx, c, signal, mapping)
}
