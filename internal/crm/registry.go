package crm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/signalhound-dev/signalhound/internal/httpx"
	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/types"
)

// ErrNotImplemented is returned for providers that exist in the enumeration
// but have no working client.
var ErrNotImplemented = errors.New("crm: provider not implemented")

type OAuthCredentials struct {
	ClientID     string
	ClientSecret string
}

// Config carries the per-provider OAuth app credentials and the shared HTTP
// client, threaded into every constructed client.
type Config struct {
	HubSpot     OAuthCredentials
	Salesforce  OAuthCredentials
	Pipedrive   OAuthCredentials
	RedirectURL string
	HTTP        *httpx.Client
}

func ConfigFromEnv() Config {
	return Config{
		HubSpot: OAuthCredentials{
			ClientID:     os.Getenv("HUBSPOT_CLIENT_ID"),
			ClientSecret: os.Getenv("HUBSPOT_CLIENT_SECRET"),
		},
		Salesforce: OAuthCredentials{
			ClientID:     os.Getenv("SALESFORCE_CLIENT_ID"),
			ClientSecret: os.Getenv("SALESFORCE_CLIENT_SECRET"),
		},
		Pipedrive: OAuthCredentials{
			ClientID:     os.Getenv("PIPEDRIVE_CLIENT_ID"),
			ClientSecret: os.Getenv("PIPEDRIVE_CLIENT_SECRET"),
		},
		RedirectURL: os.Getenv("CRM_OAUTH_REDIRECT_URL"),
		HTTP:        httpx.New(httpx.Options{}),
	}
}

// NewClient constructs the provider client for an integration. Adding a
// provider means one case here plus a client type.
func NewClient(integration models.CRMIntegration, cfg Config) (Client, error) {
	switch integration.Provider {
	case types.ProviderHubSpot:
		return NewHubSpotClient(HubSpotOptions{
			AccessToken:  integration.AccessToken,
			RefreshToken: integration.RefreshToken,
			ClientID:     cfg.HubSpot.ClientID,
			ClientSecret: cfg.HubSpot.ClientSecret,
			HTTP:         cfg.HTTP,
		}), nil
	case types.ProviderSalesforce:
		if integration.InstanceURL == "" {
			return nil, fmt.Errorf("crm: salesforce integration %d has no instance URL", integration.ID)
		}
		return NewSalesforceClient(SalesforceOptions{
			AccessToken:  integration.AccessToken,
			RefreshToken: integration.RefreshToken,
			ClientID:     cfg.Salesforce.ClientID,
			ClientSecret: cfg.Salesforce.ClientSecret,
			InstanceURL:  integration.InstanceURL,
			HTTP:         cfg.HTTP,
		}), nil
	case types.ProviderPipedrive:
		opts := PipedriveOptions{
			AccessToken:  integration.AccessToken,
			RefreshToken: integration.RefreshToken,
			ClientID:     cfg.Pipedrive.ClientID,
			ClientSecret: cfg.Pipedrive.ClientSecret,
			HTTP:         cfg.HTTP,
		}
		// Integrations connected with a raw api_token have no refresh token.
		if integration.RefreshToken == "" {
			opts.APIToken = integration.AccessToken
		}
		return NewPipedriveClient(opts), nil
	case types.ProviderApollo:
		return NewApolloClient(ApolloOptions{
			APIKey: integration.AccessToken,
			HTTP:   cfg.HTTP,
		}), nil
	case types.ProviderAttio:
		return NewAttioClient(AttioOptions{
			APIKey: integration.AccessToken,
			HTTP:   cfg.HTTP,
		}), nil
	case types.ProviderZoho:
		return nil, fmt.Errorf("%w: zoho", ErrNotImplemented)
	default:
		return nil, fmt.Errorf("crm: unknown provider %q", integration.Provider)
	}
}

// AuthURL builds the provider's OAuth authorization URL. API-key providers
// have no OAuth flow.
func AuthURL(provider string, cfg Config, state string) (string, error) {
	switch provider {
	case types.ProviderHubSpot:
		query := url.Values{}
		query.Set("client_id", cfg.HubSpot.ClientID)
		query.Set("redirect_uri", cfg.RedirectURL)
		query.Set("scope", "crm.objects.companies.write crm.objects.companies.read crm.objects.contacts.write crm.objects.contacts.read crm.objects.deals.write")
		query.Set("state", state)
		return "https://app.hubspot.com/oauth/authorize?" + query.Encode(), nil
	case types.ProviderSalesforce:
		query := url.Values{}
		query.Set("response_type", "code")
		query.Set("client_id", cfg.Salesforce.ClientID)
		query.Set("redirect_uri", cfg.RedirectURL)
		query.Set("state", state)
		return "https://login.salesforce.com/services/oauth2/authorize?" + query.Encode(), nil
	case types.ProviderPipedrive:
		query := url.Values{}
		query.Set("client_id", cfg.Pipedrive.ClientID)
		query.Set("redirect_uri", cfg.RedirectURL)
		query.Set("state", state)
		return "https://oauth.pipedrive.com/oauth/authorize?" + query.Encode(), nil
	case types.ProviderApollo, types.ProviderAttio:
		return "", fmt.Errorf("crm: %s uses API-key auth, no OAuth flow", provider)
	case types.ProviderZoho:
		return "", fmt.Errorf("%w: zoho", ErrNotImplemented)
	default:
		return "", fmt.Errorf("crm: unknown provider %q", provider)
	}
}

type exchangeResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	InstanceURL  string `json:"instance_url"`
	APIDomain    string `json:"api_domain"`
}

// ExchangeResult is the outcome of an authorization-code exchange, including
// provider-specific connection metadata.
type ExchangeResult struct {
	TokenBundle
	InstanceURL string
}

// ExchangeCode swaps an OAuth authorization code for tokens.
func ExchangeCode(ctx context.Context, provider string, cfg Config, code string) (*ExchangeResult, error) {
	var tokenURL string
	var creds OAuthCredentials

	switch provider {
	case types.ProviderHubSpot:
		tokenURL = "https://api.hubapi.com/oauth/v1/token"
		creds = cfg.HubSpot
	case types.ProviderSalesforce:
		tokenURL = "https://login.salesforce.com/services/oauth2/token"
		creds = cfg.Salesforce
	case types.ProviderPipedrive:
		tokenURL = "https://oauth.pipedrive.com/oauth/token"
		creds = cfg.Pipedrive
	case types.ProviderApollo, types.ProviderAttio:
		return nil, fmt.Errorf("crm: %s uses API-key auth, no OAuth flow", provider)
	case types.ProviderZoho:
		return nil, fmt.Errorf("%w: zoho", ErrNotImplemented)
	default:
		return nil, fmt.Errorf("crm: unknown provider %q", provider)
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", creds.ClientID)
	form.Set("client_secret", creds.ClientSecret)
	form.Set("redirect_uri", cfg.RedirectURL)
	form.Set("code", code)

	api := cfg.HTTP
	if api == nil {
		api = httpx.New(httpx.Options{})
	}

	var resp exchangeResponse
	err := api.DoJSON(ctx, httpx.Request{
		Method:     "POST",
		URL:        tokenURL,
		Form:       form,
		Timeout:    callTimeout,
		MaxRetries: callRetries,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &ExchangeResult{
		TokenBundle: TokenBundle{
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
			ExpiresIn:    resp.ExpiresIn,
		},
		InstanceURL: resp.InstanceURL,
	}, nil
}

// SyncSignalToCRM applies the integration's sync policy before delegating to
// the provider client. Policy rejections return a failed result without any
// provider call.
func SyncSignalToCRM(ctx context.Context, integration models.CRMIntegration, signal *models.Signal, cfg Config) SyncResult {
	if !integration.AutoSyncEnabled {
		return SyncResult{Error: "auto-sync is disabled for this integration"}
	}

	if allowed := integration.SignalTypeFilter(); len(allowed) > 0 && !contains(allowed, signal.SignalType) {
		return SyncResult{Error: fmt.Sprintf("signal type %q is not in the integration's sync filter", signal.SignalType)}
	}

	if allowed := integration.PriorityFilter(); len(allowed) > 0 && !contains(allowed, signal.Priority) {
		return SyncResult{Error: fmt.Sprintf("priority %q is not in the integration's sync filter", signal.Priority)}
	}

	client, err := NewClient(integration, cfg)
	if err != nil {
		return SyncResult{Error: err.Error()}
	}

	return client.SyncSignal(ctx, signal, integration.FieldMappingMap())
}

func contains(list []string, value string) bool {
	for _, entry := range list {
		if entry == value {
			return true
		}
	}
	return false
}
