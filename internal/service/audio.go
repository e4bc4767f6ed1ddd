package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/podpod/api/internal/model"
)

const defaultContentType = "audio/mpeg"

// contentTypes maps audio file extensions to MIME types.
var contentTypes = map[string]string{
	".mp3": "audio/mpeg",
	".wav": "audio/wav",
	".m4a": "audio/mp4",
	".aac": "audio/aac",
	".ogg": "audio/ogg",
}

// AudioService post-processes generated audio: intro concatenation and
// metadata extraction, both via ffmpeg/ffprobe.
type AudioService struct {
	tempDir   string
	introPath string
}

func NewAudioService(tempDir, introPath string) *AudioService {
	return &AudioService{
		tempDir:   tempDir,
		introPath: introPath,
	}
}

// AddIntro prepends the intro clip to the audio file and returns the path of
// the combined file, removing the original. A missing intro or any transcode
// failure degrades to the original path; this function never fails a request.
func (s *AudioService) AddIntro(ctx context.Context, audioPath string) string {
	if _, err := os.Stat(s.introPath); err != nil {
		log.Printf("Warning: Intro file not found at %s, returning original audio", s.introPath)
		return audioPath
	}

	combinedPath := filepath.Join(s.tempDir, uuid.New().String()+".mp3")

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", s.introPath,
		"-i", audioPath,
		"-filter_complex", "[0:a][1:a]concat=n=2:v=0:a=1[out]",
		"-map", "[out]",
		"-codec:a", "libmp3lame",
		"-q:a", "2",
		"-y", combinedPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		log.Printf("Failed to add intro to audio: %v: %s", err, string(out))
		// ffmpeg may leave a partial output behind
		os.Remove(combinedPath)
		return audioPath
	}

	log.Printf("Successfully added intro to audio. Original: %s, Combined: %s", audioPath, combinedPath)

	if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to remove original audio %s: %v", audioPath, err)
	}
	return combinedPath
}

// Metadata probes the audio file for duration and size and maps the file
// extension to a MIME type. Probe failures degrade to empty length and size
// with the default content type; this function never fails a request.
func (s *AudioService) Metadata(ctx context.Context, audioPath string) model.AudioMetadata {
	meta := model.AudioMetadata{ContentType: defaultContentType}

	info, err := os.Stat(audioPath)
	if err != nil {
		log.Printf("Failed to get audio metadata: %v", err)
		return meta
	}

	seconds, err := probeDuration(ctx, audioPath)
	if err != nil {
		log.Printf("Failed to get audio metadata: %v", err)
		return meta
	}

	meta.Length = strconv.Itoa(int(math.Trunc(seconds)))
	meta.FileSize = strconv.FormatInt(info.Size(), 10)
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(audioPath))]; ok {
		meta.ContentType = ct
	}

	log.Printf("Audio metadata - Length: %ss, Size: %s bytes, Type: %s", meta.Length, meta.FileSize, meta.ContentType)
	return meta
}

func probeDuration(ctx context.Context, audioPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", audioPath, err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected ffprobe output for %s: %w", audioPath, err)
	}
	return seconds, nil
}
