package service

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/podpod/api/internal/model"
)

// TextSeparator joins multiple text inputs into one document for the engine.
const TextSeparator = "\n\n---------\n\n"

const defaultTTSModel = "openai"

// ConversationService builds the effective conversation config for a request
// from the file-backed base config and the request overrides.
type ConversationService struct {
	baseConfigPath string
}

func NewConversationService(baseConfigPath string) *ConversationService {
	return &ConversationService{baseConfigPath: baseConfigPath}
}

// LoadBaseConfig reads the base conversation config. The file is re-read on
// every call so edits take effect without a restart. Read or parse failures
// degrade to an empty config with a warning.
func (s *ConversationService) LoadBaseConfig() map[string]interface{} {
	data, err := os.ReadFile(s.baseConfigPath)
	if err != nil {
		log.Printf("Warning: Could not load base config: %v", err)
		return map[string]interface{}{}
	}

	var cfg map[string]interface{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Printf("Warning: Could not parse base config: %v", err)
		return map[string]interface{}{}
	}
	if cfg == nil {
		return map[string]interface{}{}
	}
	return cfg
}

// MergeConfigs merges the user overrides onto the base config, preferring user
// values. The text_to_speech sub-map is merged key-by-key; every other
// top-level key is replaced wholesale when the override value is non-nil.
func MergeConfigs(base, user map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(user))
	for k, v := range base {
		merged[k] = v
	}

	// The TTS sub-document merges key-by-key instead of being replaced
	// wholesale; a missing base block counts as empty.
	baseTTS, _ := subMap(base, "text_to_speech")
	userTTS, userHasTTS := subMap(user, "text_to_speech")
	if userHasTTS {
		tts := make(map[string]interface{}, len(baseTTS)+len(userTTS))
		for k, v := range baseTTS {
			tts[k] = v
		}
		for k, v := range userTTS {
			tts[k] = v
		}
		merged["text_to_speech"] = tts
	}

	for k, v := range user {
		if k == "text_to_speech" {
			continue
		}
		if v != nil {
			merged[k] = v
		}
	}

	return merged
}

// ResolvedConfig is the per-request outcome of config resolution: the merged
// conversation config plus the TTS model the engine should use.
type ResolvedConfig struct {
	TTSModel           string
	ConversationConfig map[string]interface{}
}

// Resolve builds the effective conversation config for a request. The TTS
// model comes from the request, falling back to the base config default; the
// voices come from the request, falling back to the model's default voices.
func (s *ConversationService) Resolve(req *model.GenerateRequest) *ResolvedConfig {
	base := s.LoadBaseConfig()

	ttsModel := req.TTSModel
	if ttsModel == "" {
		ttsModel = stringAt(base, defaultTTSModel, "text_to_speech", "default_tts_model")
	}

	ttsBase, _ := subMap(base, "text_to_speech", ttsModel)
	defaultVoices, _ := subMap(ttsBase, "default_voices")

	question := req.Voices.Question
	if question == "" {
		question = stringAt(defaultVoices, "", "question")
	}
	answer := req.Voices.Answer
	if answer == "" {
		answer = stringAt(defaultVoices, "", "answer")
	}
	log.Printf("Using TTS model: %s", ttsModel)
	log.Printf("Voices - Question: %s, Answer: %s", question, answer)

	creativity := 0.7
	if base["creativity"] != nil {
		if f, ok := toFloat(base["creativity"]); ok {
			creativity = f
		}
	}
	if req.Creativity != nil {
		creativity = *req.Creativity
	}

	user := map[string]interface{}{
		"creativity":            creativity,
		"conversation_style":    orDefault(req.ConversationStyle, base["conversation_style"], []interface{}{}),
		"roles_person1":         orDefaultString(req.RolesPerson1, base["roles_person1"]),
		"roles_person2":         orDefaultString(req.RolesPerson2, base["roles_person2"]),
		"dialogue_structure":    orDefault(req.DialogueStructure, base["dialogue_structure"], []interface{}{}),
		"podcast_name":          orDefaultString(req.Name, base["podcast_name"]),
		"podcast_tagline":       orDefaultString(req.Tagline, base["podcast_tagline"]),
		"output_language":       orDefault(nonEmpty(req.OutputLanguage), base["output_language"], "English"),
		"user_instructions":     orDefault(nonEmpty(req.UserInstructions), base["user_instructions"], ""),
		"engagement_techniques": orDefault(req.EngagementTechniques, base["engagement_techniques"], []interface{}{}),
		"text_to_speech": map[string]interface{}{
			"default_tts_model": ttsModel,
			"model":             ttsBase["model"],
			"default_voices": map[string]interface{}{
				"question": question,
				"answer":   answer,
			},
		},
	}

	return &ResolvedConfig{
		TTSModel:           ttsModel,
		ConversationConfig: MergeConfigs(base, user),
	}
}

// subMap descends through nested string-keyed maps.
func subMap(m map[string]interface{}, keys ...string) (map[string]interface{}, bool) {
	current := m
	for _, key := range keys {
		if current == nil {
			return nil, false
		}
		next, ok := current[key].(map[string]interface{})
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, current != nil
}

func stringAt(m map[string]interface{}, fallback string, keys ...string) string {
	if len(keys) > 1 {
		parent, ok := subMap(m, keys[:len(keys)-1]...)
		if !ok {
			return fallback
		}
		m = parent
	}
	if m == nil {
		return fallback
	}
	if s, ok := m[keys[len(keys)-1]].(string); ok && s != "" {
		return s
	}
	return fallback
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// orDefault prefers the request value, then the base value, then the fallback.
// Slices count as absent only when nil: an explicitly supplied empty list is
// an override, not an omission.
func orDefault(reqValue interface{}, baseValue, fallback interface{}) interface{} {
	switch v := reqValue.(type) {
	case nil:
	case []string:
		if v != nil {
			return v
		}
	case string:
		if v != "" {
			return v
		}
	default:
		return v
	}
	if baseValue != nil {
		return baseValue
	}
	return fallback
}

func orDefaultString(reqValue string, baseValue interface{}) interface{} {
	if reqValue != "" {
		return reqValue
	}
	return baseValue
}

// nonEmpty boxes a string so orDefault treats "" as absent.
func nonEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
