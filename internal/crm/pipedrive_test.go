package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPipedriveAPITokenRidesQueryString(t *testing.T) {
	t.Parallel()

	var sawToken string
	var sawAuthHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawToken = r.URL.Query().Get("api_token")
		sawAuthHeader = r.Header.Get("Authorization")

		switch r.URL.Path {
		case "/organizations/search":
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"items": []any{}}})
		case "/organizations":
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"id": 7}})
		case "/notes":
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"id": 9}})
		}
	}))
	defer server.Close()

	client := NewPipedriveClient(PipedriveOptions{
		APIToken: "pd-token",
		BaseURL:  server.URL,
		HTTP:     fastHTTP(),
	})

	result := client.SyncSignal(context.Background(), noteSignal(t, nil), nil)

	if !result.Success {
		t.Fatalf("sync failed: %+v", result)
	}
	if result.CompanyID != "7" || result.NoteID != "9" {
		t.Errorf("result = %+v", result)
	}
	if sawToken != "pd-token" {
		t.Errorf("api_token = %q", sawToken)
	}
	if sawAuthHeader != "" {
		t.Errorf("bearer header should be absent with api_token auth, got %q", sawAuthHeader)
	}
}

func TestPipedriveFindCompanyUsesTermSearch(t *testing.T) {
	t.Parallel()

	var term string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/organizations/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		term = r.URL.Query().Get("term")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"items": []any{map[string]any{"item": map[string]any{"id": 42}}},
			},
		})
	}))
	defer server.Close()

	client := NewPipedriveClient(PipedriveOptions{AccessToken: "bearer-token", BaseURL: server.URL, HTTP: fastHTTP()})

	id, err := client.FindCompanyByDomain(context.Background(), "northwindrobotics.com")
	if err != nil {
		t.Fatalf("FindCompanyByDomain: %v", err)
	}

	if id != "42" {
		t.Errorf("id = %q", id)
	}
	if term != "northwindrobotics.com" {
		t.Errorf("term = %q", term)
	}
}

func TestPipedriveRefreshTokenWithAPIToken(t *testing.T) {
	t.Parallel()

	client := NewPipedriveClient(PipedriveOptions{APIToken: "pd-token"})

	bundle, err := client.RefreshToken(context.Background())
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if bundle.AccessToken != "pd-token" {
		t.Errorf("AccessToken = %q", bundle.AccessToken)
	}
}
