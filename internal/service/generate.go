package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/podpod/api/internal/client"
	"github.com/podpod/api/internal/model"
)

// ErrInvalidResultFormat is returned when the generation engine produces a
// result that is neither an existing file path nor an artifact with one.
var ErrInvalidResultFormat = errors.New("invalid result format")

// GenerateOutcome is the disposition result: exactly one of AudioURL (upload
// path) or Audio (inline path) is set.
type GenerateOutcome struct {
	AudioURL string
	Audio    []byte
}

// GenerateService orchestrates one podcast generation: config resolution,
// the engine call, audio post-processing, and result disposition.
type GenerateService struct {
	conversation *ConversationService
	audio        *AudioService
	generator    client.Generator
	storage      client.StorageClient
	reporter     *StatusReporter
	validate     *validator.Validate
}

// NewGenerateService wires the generation pipeline. The storage client may be
// nil when object storage is not configured; requests carrying a podcast_id
// then fail at disposition.
func NewGenerateService(
	conversation *ConversationService,
	audio *AudioService,
	generator client.Generator,
	storage client.StorageClient,
	reporter *StatusReporter,
	validate *validator.Validate,
) *GenerateService {
	return &GenerateService{
		conversation: conversation,
		audio:        audio,
		generator:    generator,
		storage:      storage,
		reporter:     reporter,
		validate:     validate,
	}
}

// Generate runs the full request pipeline. On failure with a podcast_id, the
// failure is reported to the status store best-effort before returning.
func (s *GenerateService) Generate(ctx context.Context, req *model.GenerateRequest) (*GenerateOutcome, error) {
	outcome, err := s.run(ctx, req)
	if err != nil && req.PodcastID != "" {
		s.reporter.ReportFailure(ctx, req.PodcastID, err.Error())
	}
	return outcome, err
}

func (s *GenerateService) run(ctx context.Context, req *model.GenerateRequest) (*GenerateOutcome, error) {
	// Input rejection happens inside the pipeline so a supplied podcast_id
	// still gets its failure report.
	if err := req.Text.Validate(); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	resolved := s.conversation.Resolve(req)

	text := req.Text.Join(TextSeparator)
	switch {
	case req.Text.IsSet() && req.Text.Count() > 1:
		log.Printf("Processing %d text inputs", req.Text.Count())
	case text != "" && len(req.URLs) > 0:
		log.Println("Processing both URLs and text content")
	case text != "":
		log.Println("Processing text content only")
	case len(req.URLs) > 0:
		log.Printf("Processing %d URLs", len(req.URLs))
	default:
		log.Println("Warning: No URLs or text content provided")
	}

	result, err := s.generator.Generate(ctx, &client.GenerationParams{
		URLs:               req.URLs,
		Text:               text,
		ConversationConfig: resolved.ConversationConfig,
		TTSModel:           resolved.TTSModel,
		Longform:           req.IsLongForm,
	})
	if err != nil {
		return nil, err
	}

	return s.dispose(ctx, result, req.PodcastID)
}

// dispose normalizes the engine result and either uploads the audio under the
// podcast ID or returns the raw bytes inline. The temp file behind the result
// is removed exactly once on every exit path.
func (s *GenerateService) dispose(ctx context.Context, result interface{}, podcastID string) (*GenerateOutcome, error) {
	audioPath, err := resolveAudioPath(result)
	if err != nil {
		return nil, err
	}

	if podcastID == "" {
		return s.disposeInline(audioPath)
	}
	return s.disposeUpload(ctx, audioPath, podcastID)
}

func (s *GenerateService) disposeInline(audioPath string) (*GenerateOutcome, error) {
	defer removeTempFile(audioPath)

	data, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read generated audio: %w", err)
	}
	return &GenerateOutcome{Audio: data}, nil
}

func (s *GenerateService) disposeUpload(ctx context.Context, audioPath, podcastID string) (*GenerateOutcome, error) {
	finalPath := s.audio.AddIntro(ctx, audioPath)
	// AddIntro removed the original when it produced a new file, so finalPath
	// is the single remaining temp file whichever branch was taken.
	defer removeTempFile(finalPath)

	meta := s.audio.Metadata(ctx, finalPath)

	if s.storage == nil {
		return nil, errors.New("object storage not configured")
	}
	audioURL, err := s.storage.UploadFile(ctx, finalPath, podcastID)
	if err != nil {
		return nil, err
	}

	s.reporter.ReportCompletion(ctx, podcastID, audioURL, meta)

	return &GenerateOutcome{AudioURL: audioURL}, nil
}

// resolveAudioPath reduces the engine's two result shapes to one audio file
// path. A bare string must point at an existing file; anything else is an
// invalid result.
func resolveAudioPath(result interface{}) (string, error) {
	switch r := result.(type) {
	case string:
		if info, err := os.Stat(r); err == nil && !info.IsDir() {
			return r, nil
		}
	case *client.Artifact:
		if r != nil && r.AudioPath != "" {
			return r.AudioPath, nil
		}
	}
	return "", ErrInvalidResultFormat
}

func removeTempFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to remove temp file %s: %v", path, err)
	}
}
