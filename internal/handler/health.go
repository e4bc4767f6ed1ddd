package handler

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gofiber/fiber/v2"

	"github.com/podpod/api/internal/client"
	"github.com/podpod/api/pkg/response"
)

// healthEnvVars are reported by presence only; values are never disclosed.
var healthEnvVars = []string{
	"OPENAI_API_KEY",
	"GEMINI_API_KEY",
	"S3_PODCAST_REGION",
	"S3_PODCAST_ENDPOINT",
	"S3_PODCAST_ACCESS_KEY",
	"S3_PODCAST_SECRET_KEY",
	"S3_PODCAST_BUCKET",
	"S3_PODCAST_PUBLIC_URL",
	"SUPABASE_URL",
	"SUPABASE_ANON_KEY",
	"SUPABASE_KEY",
}

// HealthHandler exposes GET /health. The check is live: it writes to the temp
// directory and probes both external stores on every call.
type HealthHandler struct {
	tempDir string
	storage client.StorageClient
	status  client.StatusStore
}

func NewHealthHandler(tempDir string, storage client.StorageClient, status client.StatusStore) *HealthHandler {
	return &HealthHandler{
		tempDir: tempDir,
		storage: storage,
		status:  status,
	}
}

// Check handles GET /health. A failed temp-directory probe returns 500; store
// connectivity problems are reported in the body without failing the check.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	log.Println("/health endpoint called")

	if err := h.probeTempDir(); err != nil {
		log.Printf("Health check failed: %v", err)
		return response.ServiceError(c, err.Error())
	}

	s3Status := "not_configured"
	if h.storage != nil {
		_, s3Status = h.storage.CheckConnection(c.Context())
	}

	supabaseStatus := "not_configured"
	if h.status != nil {
		_, supabaseStatus = h.status.CheckConnection(c.Context())
	}

	wd, _ := os.Getwd()

	envPresent := make(fiber.Map, len(healthEnvVars))
	for _, name := range healthEnvVars {
		envPresent[name] = os.Getenv(name) != ""
	}

	return response.OK(c, fiber.Map{
		"status":            "healthy",
		"temp_dir":          h.tempDir,
		"temp_dir_writable": true,
		"s3_status":         s3Status,
		"supabase_status":   supabaseStatus,
		"environment": fiber.Map{
			"runtime_version":       runtime.Version(),
			"working_directory":     wd,
			"environment_variables": envPresent,
		},
	})
}

// probeTempDir exercises a real write and delete against the temp directory.
func (h *HealthHandler) probeTempDir() error {
	if err := os.MkdirAll(h.tempDir, 0o755); err != nil {
		return fmt.Errorf("temp dir not available: %w", err)
	}

	testFile := filepath.Join(h.tempDir, "health_check.txt")
	if err := os.WriteFile(testFile, []byte("health check"), 0o644); err != nil {
		return fmt.Errorf("temp dir not writable: %w", err)
	}
	if err := os.Remove(testFile); err != nil {
		return fmt.Errorf("temp dir cleanup failed: %w", err)
	}
	return nil
}
