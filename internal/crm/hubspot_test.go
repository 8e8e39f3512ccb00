package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/signalhound-dev/signalhound/internal/httpx"
)

type hubspotFixture struct {
	mu        sync.Mutex
	companies map[string]string
	created   int
	notes     int
}

func newHubSpotServer(t *testing.T) (*httptest.Server, *hubspotFixture) {
	t.Helper()

	fixture := &hubspotFixture{companies: map[string]string{}}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fixture.mu.Lock()
		defer fixture.mu.Unlock()

		switch r.URL.Path {
		case "/crm/v3/objects/companies/search":
			var body struct {
				FilterGroups []struct {
					Filters []struct {
						PropertyName string `json:"propertyName"`
						Value        string `json:"value"`
					} `json:"filters"`
				} `json:"filterGroups"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode search: %v", err)
			}

			domain := body.FilterGroups[0].Filters[0].Value
			if id, ok := fixture.companies[domain]; ok {
				json.NewEncoder(w).Encode(map[string]any{"total": 1, "results": []map[string]string{{"id": id}}})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"total": 0, "results": []any{}})
		case "/crm/v3/objects/companies":
			var body struct {
				Properties map[string]string `json:"properties"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode company: %v", err)
			}

			fixture.created++
			id := body.Properties["domain"] + "-id"
			fixture.companies[body.Properties["domain"]] = id
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"id": id})
		case "/crm/v3/objects/notes":
			fixture.notes++
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"id": "note-1"})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	return server, fixture
}

func fastHTTP() *httpx.Client {
	return httpx.New(httpx.Options{BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond})
}

func TestHubSpotSyncSignalCreatesThenReuses(t *testing.T) {
	t.Parallel()

	server, fixture := newHubSpotServer(t)
	defer server.Close()

	client := NewHubSpotClient(HubSpotOptions{
		AccessToken: "token",
		BaseURL:     server.URL,
		HTTP:        fastHTTP(),
	})

	signal := noteSignal(t, nil)

	result := client.SyncSignal(context.Background(), signal, nil)
	if !result.Success {
		t.Fatalf("first sync failed: %+v", result)
	}
	if result.CompanyID != "northwindrobotics.com-id" {
		t.Errorf("CompanyID = %q", result.CompanyID)
	}
	if result.NoteID != "note-1" {
		t.Errorf("NoteID = %q", result.NoteID)
	}

	// Second sync finds the existing company instead of creating another.
	result = client.SyncSignal(context.Background(), signal, nil)
	if !result.Success {
		t.Fatalf("second sync failed: %+v", result)
	}
	if fixture.created != 1 {
		t.Errorf("companies created = %d, want 1", fixture.created)
	}
	if fixture.notes != 2 {
		t.Errorf("notes created = %d, want 2", fixture.notes)
	}
}

func TestHubSpotSyncSignalNeverThrows(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"status":"error"}`))
	}))
	defer server.Close()

	client := NewHubSpotClient(HubSpotOptions{
		AccessToken: "token",
		BaseURL:     server.URL,
		HTTP:        fastHTTP(),
	})

	result := client.SyncSignal(context.Background(), noteSignal(t, nil), nil)

	if result.Success {
		t.Fatal("sync against a dead provider must not succeed")
	}
	if result.Error == "" {
		t.Fatal("failure must carry an error message")
	}
}

func TestHubSpotFieldMappingReachesProperties(t *testing.T) {
	t.Parallel()

	var companyProperties map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/crm/v3/objects/companies/search":
			json.NewEncoder(w).Encode(map[string]any{"total": 0, "results": []any{}})
		case "/crm/v3/objects/companies":
			var body struct {
				Properties map[string]string `json:"properties"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			companyProperties = body.Properties
			json.NewEncoder(w).Encode(map[string]string{"id": "c-1"})
		case "/crm/v3/objects/notes":
			json.NewEncoder(w).Encode(map[string]string{"id": "n-1"})
		}
	}))
	defer server.Close()

	client := NewHubSpotClient(HubSpotOptions{AccessToken: "token", BaseURL: server.URL, HTTP: fastHTTP()})

	result := client.SyncSignal(context.Background(), noteSignal(t, nil), FieldMapping{"priority": "lead_priority"})
	if !result.Success {
		t.Fatalf("sync failed: %+v", result)
	}

	if companyProperties["lead_priority"] != "high" {
		t.Errorf("lead_priority = %q", companyProperties["lead_priority"])
	}
	if companyProperties["name"] != "Northwind Robotics" {
		t.Errorf("name = %q", companyProperties["name"])
	}
}

func TestHubSpotRefreshTokenUpdatesClient(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("grant_type") != "refresh_token" {
			t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "new-access",
			"refresh_token": "new-refresh",
			"expires_in":    1800,
		})
	}))
	defer server.Close()

	client := NewHubSpotClient(HubSpotOptions{
		AccessToken:  "old-access",
		RefreshToken: "old-refresh",
		TokenURL:     server.URL,
		HTTP:         fastHTTP(),
	})

	bundle, err := client.RefreshToken(context.Background())
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}

	if bundle.AccessToken != "new-access" {
		t.Errorf("AccessToken = %q", bundle.AccessToken)
	}
	if client.accessToken != "new-access" || client.refreshToken != "new-refresh" {
		t.Errorf("client tokens = %q / %q", client.accessToken, client.refreshToken)
	}
}
