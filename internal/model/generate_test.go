package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestTextInput_Scalar(t *testing.T) {
	var req GenerateRequest
	if err := json.Unmarshal([]byte(`{"text": "Hello world"}`), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.Text.Join("\n\n---------\n\n"); got != "Hello world" {
		t.Errorf("scalar text must pass through unchanged, got %q", got)
	}
}

func TestTextInput_ListJoin(t *testing.T) {
	var req GenerateRequest
	if err := json.Unmarshal([]byte(`{"text": ["a", "", "b"]}`), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "a\n\n---------\n\nb"
	if got := req.Text.Join("\n\n---------\n\n"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestTextInput_EmptyEntriesDropped(t *testing.T) {
	var req GenerateRequest
	if err := json.Unmarshal([]byte(`{"text": ["", "", ""]}`), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.Text.Join("-"); got != "" {
		t.Errorf("all-empty list must join to empty string, got %q", got)
	}
}

func TestTextInput_InvalidShape(t *testing.T) {
	for name, body := range map[string]string{
		"number": `{"podcast_id": "abc", "text": 42}`,
		"object": `{"podcast_id": "abc", "text": {"a": 1}}`,
	} {
		var req GenerateRequest
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			t.Fatalf("%s: decode must not fail on a bad text shape: %v", name, err)
		}
		if !errors.Is(req.Text.Validate(), ErrInvalidTextInput) {
			t.Errorf("%s: expected ErrInvalidTextInput, got %v", name, req.Text.Validate())
		}
		if req.PodcastID != "abc" {
			t.Errorf("%s: podcast_id must survive a bad text shape, got %q", name, req.PodcastID)
		}
	}
}

func TestTextInput_ValidShapesValidate(t *testing.T) {
	for name, body := range map[string]string{
		"absent": `{}`,
		"null":   `{"text": null}`,
		"string": `{"text": "hi"}`,
		"list":   `{"text": ["a", "b"]}`,
	} {
		var req GenerateRequest
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if err := req.Text.Validate(); err != nil {
			t.Errorf("%s: expected valid shape, got %v", name, err)
		}
	}
}

func TestTextInput_AbsentAndNull(t *testing.T) {
	var req GenerateRequest
	if err := json.Unmarshal([]byte(`{}`), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Text.IsSet() {
		t.Error("absent text must not be set")
	}

	if err := json.Unmarshal([]byte(`{"text": null}`), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Text.IsSet() {
		t.Error("null text must not be set")
	}
}

func TestGenerateRequest_Decode(t *testing.T) {
	body := `{
		"podcast_id": "abc",
		"urls": ["https://example.com/article"],
		"tts_model": "openai",
		"voices": {"question": "echo", "answer": "shimmer"},
		"creativity": 0.9,
		"is_long_form": true
	}`
	var req GenerateRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.PodcastID != "abc" || req.TTSModel != "openai" || !req.IsLongForm {
		t.Errorf("request fields not decoded: %+v", req)
	}
	if req.Voices.Question != "echo" || req.Voices.Answer != "shimmer" {
		t.Errorf("voices not decoded: %+v", req.Voices)
	}
	if req.Creativity == nil || *req.Creativity != 0.9 {
		t.Errorf("creativity not decoded: %v", req.Creativity)
	}
}
