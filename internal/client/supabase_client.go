package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/podpod/api/internal/config"
)

// Podcast statuses tracked in the status store.
const (
	StatusPending            = "pending"
	StatusScraping           = "scraping"
	StatusConvertingText     = "converting_text"
	StatusGeneratingMetadata = "generating_metadata"
	StatusGeneratingAudio    = "generating_audio"
	StatusFailed             = "failed"
	StatusCompleted          = "completed"
	StatusPaused             = "paused"
)

// StatusStore defines the interface for podcast status tracking.
type StatusStore interface {
	// UpdateCompletion marks a podcast completed and records audio metadata.
	// Returns false when no row matched the ID.
	UpdateCompletion(ctx context.Context, podcastID, audioURL, audioLength, audioContentType, audioFileSize string) (bool, error)
	// UpdateStatus sets the podcast status. The failed reason is recorded only
	// for the failed status.
	UpdateStatus(ctx context.Context, podcastID, status, failedReason string) (bool, error)
	// GetPodcast fetches a podcast record by ID, or nil when not found.
	GetPodcast(ctx context.Context, podcastID string) (map[string]interface{}, error)
	// CheckConnection probes the store and returns a status string for /health.
	CheckConnection(ctx context.Context) (bool, string)
}

// SupabaseClient implements StatusStore against the Supabase PostgREST API.
type SupabaseClient struct {
	httpClient *http.Client
	baseURL    string
	serviceKey string
}

// NewSupabaseClient creates a status-store client using the service role key.
func NewSupabaseClient(cfg *config.SupabaseConfig) (*SupabaseClient, error) {
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("supabase configuration incomplete: SUPABASE_URL and SUPABASE_KEY are required")
	}

	return &SupabaseClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:    cfg.URL,
		serviceKey: cfg.ServiceKey,
	}, nil
}

// UpdateCompletion marks the podcast completed with its audio metadata.
func (c *SupabaseClient) UpdateCompletion(ctx context.Context, podcastID, audioURL, audioLength, audioContentType, audioFileSize string) (bool, error) {
	update := map[string]interface{}{
		"status":             StatusCompleted,
		"audio_url":          audioURL,
		"audio_length":       audioLength,
		"audio_content_type": audioContentType,
		"audio_file_size":    audioFileSize,
	}
	return c.updatePodcast(ctx, podcastID, update)
}

// UpdateStatus sets the podcast status, recording the failure reason when the
// status is failed.
func (c *SupabaseClient) UpdateStatus(ctx context.Context, podcastID, status, failedReason string) (bool, error) {
	update := map[string]interface{}{"status": status}
	if failedReason != "" && status == StatusFailed {
		update["failed_reason"] = failedReason
	}
	return c.updatePodcast(ctx, podcastID, update)
}

// GetPodcast fetches a podcast record by ID.
func (c *SupabaseClient) GetPodcast(ctx context.Context, podcastID string) (map[string]interface{}, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/podcasts?id=eq.%s&select=*", c.baseURL, url.QueryEscape(podcastID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	rows, err := c.doRows(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get podcast %s: %w", podcastID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// CheckConnection probes the podcasts table with a minimal select.
func (c *SupabaseClient) CheckConnection(ctx context.Context) (bool, string) {
	endpoint := fmt.Sprintf("%s/rest/v1/podcasts?select=id&limit=1", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Sprintf("error: %v", err)
	}
	c.setHeaders(req)

	if _, err := c.doRows(req); err != nil {
		return false, fmt.Sprintf("error: %v", err)
	}
	return true, "connected"
}

// updatePodcast issues a PATCH against the podcasts table and reports whether
// any row was updated.
func (c *SupabaseClient) updatePodcast(ctx context.Context, podcastID string, update map[string]interface{}) (bool, error) {
	body, err := json.Marshal(update)
	if err != nil {
		return false, fmt.Errorf("failed to marshal update: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/podcasts?id=eq.%s", c.baseURL, url.QueryEscape(podcastID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	rows, err := c.doRows(req)
	if err != nil {
		return false, fmt.Errorf("failed to update podcast %s: %w", podcastID, err)
	}
	return len(rows) > 0, nil
}

func (c *SupabaseClient) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
}

func (c *SupabaseClient) doRows(req *http.Request) ([]map[string]interface{}, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("supabase API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(respBody, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return rows, nil
}
