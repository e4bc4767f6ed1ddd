package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/podpod/api/internal/config"
)

// GenerationParams carries the inputs for one podcast generation.
type GenerationParams struct {
	URLs               []string               `json:"urls,omitempty"`
	Text               string                 `json:"text,omitempty"`
	ConversationConfig map[string]interface{} `json:"conversation_config"`
	TTSModel           string                 `json:"tts_model"`
	Longform           bool                   `json:"longform"`
}

// Artifact is the structured result shape: an object exposing the path of the
// generated audio file.
type Artifact struct {
	AudioPath string `json:"audio_path"`
}

// Generator defines the interface to the podcast generation engine. The result
// is either a bare file path (string) or an *Artifact; the disposition layer
// resolves the two shapes and rejects anything else.
type Generator interface {
	Generate(ctx context.Context, params *GenerationParams) (interface{}, error)
}

// EngineClient implements Generator against the podcast engine service.
type EngineClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewEngineClient creates a generation client. Generation is the longest
// request in the system, so the timeout comes from config rather than a
// package constant.
func NewEngineClient(cfg *config.EngineConfig) *EngineClient {
	return &EngineClient{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		baseURL: cfg.ServiceURL,
	}
}

// Generate runs one podcast generation. Depending on the engine version the
// response is either JSON with an audio_path field or a plain-text file path;
// both shapes are passed through untouched.
func (c *EngineClient) Generate(ctx context.Context, params *GenerationParams) (interface{}, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call engine: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read engine response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("engine error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var artifact Artifact
		if err := json.Unmarshal(respBody, &artifact); err != nil {
			return nil, fmt.Errorf("failed to decode engine response: %w", err)
		}
		return &artifact, nil
	}

	return strings.TrimSpace(string(respBody)), nil
}
