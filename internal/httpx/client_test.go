package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func fastClient() *Client {
	return New(Options{BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond})
}

func TestDoRetriesServerError(t *testing.T) {
	t.Parallel()

	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	resp, err := fastClient().Do(context.Background(), Request{
		Method:     "GET",
		URL:        server.URL,
		MaxRetries: 2,
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", resp.StatusCode)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestDoRetriesRateLimit(t *testing.T) {
	t.Parallel()

	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := fastClient().Do(context.Background(), Request{Method: "GET", URL: server.URL, MaxRetries: 1})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestDoDoesNotRetryClientError(t *testing.T) {
	t.Parallel()

	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"missing"}`))
	}))
	defer server.Close()

	_, err := fastClient().Do(context.Background(), Request{Method: "GET", URL: server.URL, MaxRetries: 3})
	if err == nil {
		t.Fatal("expected error for 404")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %T, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d", statusErr.StatusCode)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoExhaustedRetriesReturnsLastStatus(t *testing.T) {
	t.Parallel()

	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := fastClient().Do(context.Background(), Request{Method: "GET", URL: server.URL, MaxRetries: 2})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d", statusErr.StatusCode)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoJSONEncodesBodyAndDecodesResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}

		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode: %v", err)
		}
		if in["name"] != "northwind" {
			t.Errorf("name = %q", in["name"])
		}

		json.NewEncoder(w).Encode(map[string]string{"id": "c-1"})
	}))
	defer server.Close()

	var out struct {
		ID string `json:"id"`
	}

	err := fastClient().DoJSON(context.Background(), Request{
		Method: "POST",
		URL:    server.URL,
		Body:   map[string]string{"name": "northwind"},
	}, &out)
	if err != nil {
		t.Fatalf("DoJSON: %v", err)
	}
	if out.ID != "c-1" {
		t.Errorf("ID = %q", out.ID)
	}
}

func TestDoFormTakesPrecedence(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("grant_type") != "refresh_token" {
			t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	form := url.Values{}
	form.Set("grant_type", "refresh_token")

	_, err := fastClient().Do(context.Background(), Request{
		Method: "POST",
		URL:    server.URL,
		Body:   map[string]string{"ignored": "yes"},
		Form:   form,
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
}

func TestDoContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{BaseDelay: time.Second}).Do(ctx, Request{Method: "GET", URL: server.URL, MaxRetries: 2})
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
