package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/podpod/api/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*SupabaseClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewSupabaseClient(&config.SupabaseConfig{
		URL:        srv.URL,
		ServiceKey: "service-key",
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c, srv
}

func TestNewSupabaseClient_RequiresConfig(t *testing.T) {
	_, err := NewSupabaseClient(&config.SupabaseConfig{URL: "https://x.supabase.co"})
	if err == nil {
		t.Error("expected error without service key")
	}
	_, err = NewSupabaseClient(&config.SupabaseConfig{ServiceKey: "key"})
	if err == nil {
		t.Error("expected error without URL")
	}
}

func TestUpdateCompletion(t *testing.T) {
	var captured struct {
		method string
		path   string
		query  string
		auth   string
		prefer string
		update map[string]interface{}
	}

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.query = r.URL.RawQuery
		captured.auth = r.Header.Get("Authorization")
		captured.prefer = r.Header.Get("Prefer")
		json.NewDecoder(r.Body).Decode(&captured.update)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": "abc"}]`))
	})

	updated, err := c.UpdateCompletion(context.Background(), "abc",
		"https://cdn.example.com/abc/audio.mp3", "125", "audio/mpeg", "2048000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated {
		t.Error("expected updated=true when a row matched")
	}

	if captured.method != http.MethodPatch {
		t.Errorf("expected PATCH, got %s", captured.method)
	}
	if captured.path != "/rest/v1/podcasts" {
		t.Errorf("unexpected path: %s", captured.path)
	}
	if captured.query != "id=eq.abc" {
		t.Errorf("unexpected query: %s", captured.query)
	}
	if captured.auth != "Bearer service-key" {
		t.Errorf("unexpected auth header: %s", captured.auth)
	}
	if captured.prefer != "return=representation" {
		t.Errorf("unexpected prefer header: %s", captured.prefer)
	}
	if captured.update["status"] != StatusCompleted {
		t.Errorf("expected completed status, got %v", captured.update["status"])
	}
	if captured.update["audio_length"] != "125" || captured.update["audio_file_size"] != "2048000" {
		t.Errorf("metadata not sent: %v", captured.update)
	}
}

func TestUpdateCompletion_NoRowMatched(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})

	updated, err := c.UpdateCompletion(context.Background(), "missing", "url", "", "audio/mpeg", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated {
		t.Error("expected updated=false when no rows matched")
	}
}

func TestUpdateStatus_FailedReason(t *testing.T) {
	var update map[string]interface{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Decode into a fresh map each request; decoding into a reused map
		// merges keys from previous requests.
		body := map[string]interface{}{}
		json.NewDecoder(r.Body).Decode(&body)
		update = body
		w.Write([]byte(`[{"id": "abc"}]`))
	})

	if _, err := c.UpdateStatus(context.Background(), "abc", StatusFailed, "engine exploded"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if update["failed_reason"] != "engine exploded" {
		t.Errorf("expected failed_reason recorded, got %v", update)
	}

	if _, err := c.UpdateStatus(context.Background(), "abc", StatusPaused, "ignored"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := update["failed_reason"]; ok {
		t.Error("failed_reason must only be recorded for the failed status")
	}
}

func TestUpdateStatus_ServerError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "permission denied", http.StatusForbidden)
	})

	if _, err := c.UpdateStatus(context.Background(), "abc", StatusFailed, "x"); err == nil {
		t.Error("expected error on non-2xx response")
	}
}

func TestGetPodcast(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "eq.abc" {
			http.Error(w, "bad filter", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`[{"id": "abc", "status": "completed"}]`))
	})

	row, err := c.GetPodcast(context.Background(), "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row["status"] != "completed" {
		t.Errorf("unexpected row: %v", row)
	}
}

func TestGetPodcast_NotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	row, err := c.GetPodcast(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row != nil {
		t.Errorf("expected nil for missing podcast, got %v", row)
	}
}

func TestCheckConnection(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	ok, status := c.CheckConnection(context.Background())
	if !ok || status != "connected" {
		t.Errorf("expected connected, got %v %s", ok, status)
	}
}

func TestCheckConnection_Down(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c, err := NewSupabaseClient(&config.SupabaseConfig{URL: srv.URL, ServiceKey: "k"})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	srv.Close()

	ok, status := c.CheckConnection(context.Background())
	if ok {
		t.Error("expected failed connection check")
	}
	if status == "connected" {
		t.Errorf("expected error status, got %s", status)
	}
}
