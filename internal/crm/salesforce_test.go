package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSalesforceRefreshTokenKeepsRefreshToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("refresh_token") != "stable-refresh" {
			t.Errorf("refresh_token = %q", r.PostForm.Get("refresh_token"))
		}
		// Salesforce omits refresh_token from the refresh grant response.
		json.NewEncoder(w).Encode(map[string]any{"access_token": "new-access"})
	}))
	defer server.Close()

	client := NewSalesforceClient(SalesforceOptions{
		AccessToken:  "old-access",
		RefreshToken: "stable-refresh",
		InstanceURL:  "https://example.my.salesforce.com",
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
	if bundle.RefreshToken != "stable-refresh" {
		t.Errorf("RefreshToken = %q, want carried-forward value", bundle.RefreshToken)
	}
}

func TestSalesforceSyncSignalCreatesTask(t *testing.T) {
	t.Parallel()

	var taskRecord map[string]any
	var soql string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/services/data/v59.0/query"):
			soql = r.URL.Query().Get("q")
			json.NewEncoder(w).Encode(map[string]any{"totalSize": 0, "records": []any{}})
		case r.URL.Path == "/services/data/v59.0/sobjects/Account":
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{"id": "001ABC", "success": true})
		case r.URL.Path == "/services/data/v59.0/sobjects/Task":
			if err := json.NewDecoder(r.Body).Decode(&taskRecord); err != nil {
				t.Errorf("decode task: %v", err)
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{"id": "00TXYZ", "success": true})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewSalesforceClient(SalesforceOptions{
		AccessToken: "token",
		InstanceURL: server.URL,
		HTTP:        fastHTTP(),
	})

	result := client.SyncSignal(context.Background(), noteSignal(t, nil), nil)

	if !result.Success {
		t.Fatalf("sync failed: %+v", result)
	}
	if result.CompanyID != "001ABC" || result.NoteID != "00TXYZ" {
		t.Errorf("result = %+v", result)
	}

	if !strings.Contains(soql, "Website LIKE '%northwindrobotics.com%'") {
		t.Errorf("soql = %q", soql)
	}

	if taskRecord["WhatId"] != "001ABC" {
		t.Errorf("WhatId = %v", taskRecord["WhatId"])
	}
	if taskRecord["Status"] != "Completed" {
		t.Errorf("Status = %v", taskRecord["Status"])
	}
	if taskRecord["Subject"] != "[Funding Round] Northwind Robotics" {
		t.Errorf("Subject = %v", taskRecord["Subject"])
	}
}

func TestSoqlEscape(t *testing.T) {
	t.Parallel()

	if got := soqlEscape(`o'brien\inc`); got != `o\'brien\\inc` {
		t.Errorf("soqlEscape = %q", got)
	}
}
