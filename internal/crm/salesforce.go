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

// SalesforceClient talks to the Salesforce REST API (v59.0) at the
// integration's instance URL. Salesforce has no Note object in this flow:
// signal notes are logged as completed Tasks linked via WhatId.
type SalesforceClient struct {
	accessToken  string
	refreshToken string
	clientID     string
	clientSecret string
	instanceURL  string
	tokenURL     string
	api          *httpx.Client
}

type SalesforceOptions struct {
	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string
	InstanceURL  string
	TokenURL     string
	HTTP         *httpx.Client
}

func NewSalesforceClient(opts SalesforceOptions) *SalesforceClient {
	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = "https://login.salesforce.com/services/oauth2/token"
	}

	api := opts.HTTP
	if api == nil {
		api = httpx.New(httpx.Options{})
	}

	return &SalesforceClient{
		accessToken:  opts.AccessToken,
		refreshToken: opts.RefreshToken,
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		instanceURL:  strings.TrimRight(opts.InstanceURL, "/"),
		tokenURL:     tokenURL,
		api:          api,
	}
}

func (c *SalesforceClient) Provider() string { return types.ProviderSalesforce }

func (c *SalesforceClient) dataURL(path string) string {
	return c.instanceURL + "/services/data/v59.0" + path
}

func (c *SalesforceClient) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.accessToken}
}

type salesforceCreateResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}

type salesforceQueryResponse struct {
	TotalSize int `json:"totalSize"`
	Records   []struct {
		ID string `json:"Id"`
	} `json:"records"`
}

// RefreshToken exchanges the stored refresh token for a new access token.
// Salesforce does not rotate refresh tokens on this grant, so the prior value
// is carried forward in the returned bundle.
func (c *SalesforceClient) RefreshToken(ctx context.Context) (*TokenBundle, error) {
	if c.refreshToken == "" {
		return nil, fmt.Errorf("salesforce: no refresh token stored")
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
	bundle.RefreshToken = c.refreshToken

	return &bundle, nil
}

func (c *SalesforceClient) CreateCompany(ctx context.Context, company CompanyInput) (string, error) {
	record := map[string]any{"Name": company.Name}
	if company.Website != "" {
		record["Website"] = company.Website
	}
	if company.Industry != "" {
		record["Industry"] = company.Industry
	}
	if company.Description != "" {
		record["Description"] = company.Description
	}
	for property, value := range company.Extra {
		record[property] = value
	}

	var created salesforceCreateResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.dataURL("/sobjects/Account"),
		Headers:    c.headers(),
		Body:       record,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &created)
	if err != nil {
		return "", err
	}

	return created.ID, nil
}

func (c *SalesforceClient) FindCompanyByDomain(ctx context.Context, domain string) (string, error) {
	soql := fmt.Sprintf("SELECT Id FROM Account WHERE Website LIKE '%%%s%%' LIMIT 1", soqlEscape(domain))

	var result salesforceQueryResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "GET",
		URL:        c.dataURL("/query?q=" + url.QueryEscape(soql)),
		Headers:    c.headers(),
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &result)
	if err != nil {
		return "", err
	}

	if len(result.Records) == 0 {
		return "", nil
	}

	return result.Records[0].ID, nil
}

func (c *SalesforceClient) UpdateCompany(ctx context.Context, id string, company CompanyInput) error {
	record := map[string]any{}
	if company.Name != "" {
		record["Name"] = company.Name
	}
	if company.Website != "" {
		record["Website"] = company.Website
	}
	if company.Industry != "" {
		record["Industry"] = company.Industry
	}
	if company.Description != "" {
		record["Description"] = company.Description
	}
	for property, value := range company.Extra {
		record[property] = value
	}

	return c.api.DoJSON(ctx, httpx.Request{
		Method:     "PATCH",
		URL:        c.dataURL("/sobjects/Account/" + id),
		Headers:    c.headers(),
		Body:       record,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, nil)
}

func (c *SalesforceClient) CreateContact(ctx context.Context, contact ContactInput) (string, error) {
	record := map[string]any{
		"LastName": contact.LastName,
		"Email":    contact.Email,
	}
	if record["LastName"] == "" {
		record["LastName"] = "Unknown"
	}
	if contact.FirstName != "" {
		record["FirstName"] = contact.FirstName
	}
	if contact.Title != "" {
		record["Title"] = contact.Title
	}
	if contact.CompanyID != "" {
		record["AccountId"] = contact.CompanyID
	}

	var created salesforceCreateResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.dataURL("/sobjects/Contact"),
		Headers:    c.headers(),
		Body:       record,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &created)
	if err != nil {
		return "", err
	}

	return created.ID, nil
}

func (c *SalesforceClient) FindContactByEmail(ctx context.Context, email string) (string, error) {
	soql := fmt.Sprintf("SELECT Id FROM Contact WHERE Email = '%s' LIMIT 1", soqlEscape(email))

	var result salesforceQueryResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "GET",
		URL:        c.dataURL("/query?q=" + url.QueryEscape(soql)),
		Headers:    c.headers(),
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &result)
	if err != nil {
		return "", err
	}

	if len(result.Records) == 0 {
		return "", nil
	}

	return result.Records[0].ID, nil
}

func (c *SalesforceClient) CreateDeal(ctx context.Context, deal DealInput) (string, error) {
	record := map[string]any{
		"Name":      deal.Name,
		"StageName": "Prospecting",
		"CloseDate": time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
	}
	if deal.Amount > 0 {
		record["Amount"] = deal.Amount
	}
	if deal.CompanyID != "" {
		record["AccountId"] = deal.CompanyID
	}

	var created salesforceCreateResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.dataURL("/sobjects/Opportunity"),
		Headers:    c.headers(),
		Body:       record,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &created)
	if err != nil {
		return "", err
	}

	return created.ID, nil
}

func (c *SalesforceClient) CreateNote(ctx context.Context, note NoteInput) (string, error) {
	record := map[string]any{
		"Subject":     note.Title,
		"Description": note.Body,
		"Priority":    "Normal",
		"Status":      "Completed",
	}
	if note.CompanyID != "" {
		record["WhatId"] = note.CompanyID
	}

	var created salesforceCreateResponse
	err := c.api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        c.dataURL("/sobjects/Task"),
		Headers:    c.headers(),
		Body:       record,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &created)
	if err != nil {
		return "", err
	}

	return created.ID, nil
}

func (c *SalesforceClient) SyncSignal(ctx context.Context, signal *models.Signal, mapping FieldMapping) SyncResult {
	return syncThroughClient(ctx, c, signal, mapping)
}

func soqlEscape(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, "'", `\'`)
}
