package crm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/types"
)

func TestNewClientPerProvider(t *testing.T) {
	t.Parallel()

	cfg := Config{HTTP: fastHTTP()}

	cases := []struct {
		integration models.CRMIntegration
		wantErr     bool
	}{
		{models.CRMIntegration{Provider: types.ProviderHubSpot, AccessToken: "t"}, false},
		{models.CRMIntegration{Provider: types.ProviderSalesforce, AccessToken: "t", InstanceURL: "https://x.my.salesforce.com"}, false},
		{models.CRMIntegration{Provider: types.ProviderSalesforce, AccessToken: "t"}, true},
		{models.CRMIntegration{Provider: types.ProviderPipedrive, AccessToken: "t"}, false},
		{models.CRMIntegration{Provider: types.ProviderApollo, AccessToken: "t"}, false},
		{models.CRMIntegration{Provider: types.ProviderAttio, AccessToken: "t"}, false},
		{models.CRMIntegration{Provider: "dynamics"}, true},
	}

	for _, tc := range cases {
		client, err := NewClient(tc.integration, cfg)
		if tc.wantErr {
			if err == nil {
				t.Errorf("NewClient(%s): expected error", tc.integration.Provider)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewClient(%s): %v", tc.integration.Provider, err)
			continue
		}
		if client.Provider() != tc.integration.Provider {
			t.Errorf("Provider() = %q, want %q", client.Provider(), tc.integration.Provider)
		}
	}
}

func TestNewClientZohoNotImplemented(t *testing.T) {
	t.Parallel()

	_, err := NewClient(models.CRMIntegration{Provider: types.ProviderZoho, AccessToken: "t"}, Config{})
	if !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("err = %v, want ErrNotImplemented", err)
	}
}

func TestAuthURLAPIKeyProviders(t *testing.T) {
	t.Parallel()

	for _, provider := range []string{types.ProviderApollo, types.ProviderAttio} {
		if _, err := AuthURL(provider, Config{}, "state"); err == nil {
			t.Errorf("AuthURL(%s): expected error for API-key provider", provider)
		}
	}
}

func TestAuthURLHubSpot(t *testing.T) {
	t.Parallel()

	cfg := Config{
		HubSpot:     OAuthCredentials{ClientID: "hub-client"},
		RedirectURL: "https://app.example.com/oauth/callback",
	}

	got, err := AuthURL(types.ProviderHubSpot, cfg, "state-1")
	if err != nil {
		t.Fatalf("AuthURL: %v", err)
	}

	if !strings.HasPrefix(got, "https://app.hubspot.com/oauth/authorize?") {
		t.Errorf("url = %q", got)
	}
	if !strings.Contains(got, "client_id=hub-client") || !strings.Contains(got, "state=state-1") {
		t.Errorf("url missing parameters: %q", got)
	}
}

func policyIntegration(t *testing.T, signalTypes, priorities []string) models.CRMIntegration {
	t.Helper()

	integration := models.CRMIntegration{
		Provider:        types.ProviderHubSpot,
		AccessToken:     "t",
		AutoSyncEnabled: true,
	}

	if signalTypes != nil {
		data, err := json.Marshal(signalTypes)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		integration.SyncOnSignalTypes = data
	}

	if priorities != nil {
		data, err := json.Marshal(priorities)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		integration.SyncOnPriorities = data
	}

	return integration
}

func TestSyncSignalToCRMPolicyGate(t *testing.T) {
	t.Parallel()

	signal := noteSignal(t, nil)

	disabled := policyIntegration(t, nil, nil)
	disabled.AutoSyncEnabled = false

	result := SyncSignalToCRM(context.Background(), disabled, signal, Config{})
	if result.Success || result.Error != "auto-sync is disabled for this integration" {
		t.Errorf("disabled integration result = %+v", result)
	}

	wrongType := policyIntegration(t, []string{types.SignalHiring}, nil)
	result = SyncSignalToCRM(context.Background(), wrongType, signal, Config{})
	if result.Success || !strings.Contains(result.Error, "not in the integration's sync filter") {
		t.Errorf("type filter result = %+v", result)
	}

	wrongPriority := policyIntegration(t, nil, []string{types.PriorityLow})
	result = SyncSignalToCRM(context.Background(), wrongPriority, signal, Config{})
	if result.Success || !strings.Contains(result.Error, "not in the integration's sync filter") {
		t.Errorf("priority filter result = %+v", result)
	}
}

func TestSyncSignalToCRMZohoFailsClosed(t *testing.T) {
	t.Parallel()

	integration := models.CRMIntegration{
		Provider:        types.ProviderZoho,
		AccessToken:     "t",
		AutoSyncEnabled: true,
	}

	result := SyncSignalToCRM(context.Background(), integration, noteSignal(t, nil), Config{})
	if result.Success {
		t.Fatal("zoho sync must not succeed")
	}
	if !strings.Contains(result.Error, "not implemented") {
		t.Errorf("Error = %q", result.Error)
	}
}
