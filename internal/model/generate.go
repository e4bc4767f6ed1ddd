package model

import (
	"encoding/json"
	"errors"
)

// ErrInvalidTextInput is returned when the text field is neither a string nor
// an array of strings.
var ErrInvalidTextInput = errors.New("text input must be a string or array of strings")

// TextInput accepts either a single string or an array of strings, mirroring
// the wire contract of the generate endpoint.
type TextInput struct {
	values  []string
	isList  bool
	set     bool
	invalid bool
}

// UnmarshalJSON records an unusable shape instead of failing the decode, so
// the rest of the request (podcast_id included) still parses and the pipeline
// can report the rejection against that ID.
func (t *TextInput) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		t.values = []string{single}
		t.set = true
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		t.values = list
		t.isList = true
		t.set = true
		return nil
	}

	t.invalid = true
	return nil
}

func (t TextInput) MarshalJSON() ([]byte, error) {
	if !t.set {
		return []byte("null"), nil
	}
	if t.isList {
		return json.Marshal(t.values)
	}
	if len(t.values) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(t.values[0])
}

// Validate surfaces the shape error recorded during decoding.
func (t TextInput) Validate() error {
	if t.invalid {
		return ErrInvalidTextInput
	}
	return nil
}

// IsSet reports whether the field was present and non-null in the request.
func (t TextInput) IsSet() bool { return t.set }

// Join flattens the input into the single text document passed to the
// generation engine. List entries are filtered for emptiness and joined with
// the section separator.
func (t TextInput) Join(separator string) string {
	if !t.set {
		return ""
	}
	if !t.isList {
		return t.values[0]
	}
	joined := ""
	for _, v := range t.values {
		if v == "" {
			continue
		}
		if joined != "" {
			joined += separator
		}
		joined += v
	}
	return joined
}

// Count returns how many entries the input carries, for logging.
func (t TextInput) Count() int { return len(t.values) }

// Voices selects per-speaker TTS voices.
type Voices struct {
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
}

// GenerateRequest is the body of POST /generate. Absent fields fall back to
// the base conversation config.
type GenerateRequest struct {
	PodcastID            string    `json:"podcast_id,omitempty"`
	URLs                 []string  `json:"urls,omitempty"`
	Text                 TextInput `json:"text,omitempty"`
	TTSModel             string    `json:"tts_model,omitempty"`
	Voices               Voices    `json:"voices,omitempty"`
	Creativity           *float64  `json:"creativity,omitempty" validate:"omitempty,gte=0,lte=2"`
	ConversationStyle    []string  `json:"conversation_style,omitempty"`
	RolesPerson1         string    `json:"roles_person1,omitempty"`
	RolesPerson2         string    `json:"roles_person2,omitempty"`
	DialogueStructure    []string  `json:"dialogue_structure,omitempty"`
	Name                 string    `json:"name,omitempty"`
	Tagline              string    `json:"tagline,omitempty"`
	OutputLanguage       string    `json:"output_language,omitempty"`
	UserInstructions     string    `json:"user_instructions,omitempty"`
	EngagementTechniques []string  `json:"engagement_techniques,omitempty"`
	IsLongForm           bool      `json:"is_long_form,omitempty"`
}

// GenerateResponse is the JSON body returned on the upload path.
type GenerateResponse struct {
	AudioURL string `json:"audio_url"`
}

// AudioMetadata describes a generated audio file. Lengths and sizes are
// stringified for the status store; empty strings mean probing failed.
type AudioMetadata struct {
	Length      string
	FileSize    string
	ContentType string
}
