package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/podpod/api/internal/client"
	"github.com/podpod/api/internal/config"
	"github.com/podpod/api/internal/handler"
	"github.com/podpod/api/internal/middleware"
	"github.com/podpod/api/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := os.MkdirAll(cfg.Audio.TempDir, 0o755); err != nil {
		log.Fatalf("Failed to create temp dir %s: %v", cfg.Audio.TempDir, err)
	}

	// Initialize validator
	validate := validator.New()

	// Initialize S3 client (optional - continues if not configured)
	var storageClient client.StorageClient
	logStorageEnv(&cfg.S3)
	if cfg.S3.IsConfigured() {
		s3Client, err := client.NewS3Client(&cfg.S3)
		if err != nil {
			log.Printf("Warning: S3 client not initialized: %v", err)
		} else {
			storageClient = s3Client
			log.Println("Successfully initialized S3 client")
		}
	} else {
		log.Printf("Warning: S3 storage not configured, missing: %s", strings.Join(cfg.S3.MissingVars(), ", "))
	}

	// Initialize Supabase client (optional - continues if not configured)
	var statusStore client.StatusStore
	if cfg.Supabase.IsConfigured() {
		supabaseClient, err := client.NewSupabaseClient(&cfg.Supabase)
		if err != nil {
			log.Printf("Warning: Supabase client not initialized: %v", err)
		} else {
			statusStore = supabaseClient
			log.Println("Successfully initialized Supabase client")
		}
	} else {
		log.Println("Warning: Supabase not configured, status updates disabled")
	}

	// Initialize generation engine client
	engineClient := client.NewEngineClient(&cfg.Engine)

	// Initialize services
	conversationService := service.NewConversationService(cfg.Audio.BaseConfigPath)
	audioService := service.NewAudioService(cfg.Audio.TempDir, cfg.Audio.IntroPath)
	statusReporter := service.NewStatusReporter(statusStore)
	generateService := service.NewGenerateService(conversationService, audioService, engineClient, storageClient, statusReporter, validate)

	// Initialize handlers
	generateHandler := handler.NewGenerateHandler(generateService)
	healthHandler := handler.NewHealthHandler(cfg.Audio.TempDir, storageClient, statusStore)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    10 * 1024 * 1024, // 10MB
	})

	// Global middleware
	app.Use(recover.New())
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if strings.EqualFold(cfg.Server.LogLevel, "debug") {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${body}\n"
		log.Println("Debug logging enabled")
	}
	app.Use(logger.New(logger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept," + middleware.HeaderAccessToken,
	}))

	// Static access token on everything except /health
	app.Use(middleware.AccessToken(cfg.Server.AccessToken))

	// Routes
	app.Get("/health", healthHandler.Check)
	app.Post("/generate", generateHandler.Generate)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Received termination signal, shutting down gracefully.")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// logStorageEnv reports which storage variables are set, never their values.
func logStorageEnv(cfg *config.S3Config) {
	missing := make(map[string]bool)
	for _, name := range cfg.MissingVars() {
		missing[name] = true
	}
	log.Println("Checking S3 environment variables:")
	for _, name := range []string{
		"S3_PODCAST_REGION", "S3_PODCAST_ENDPOINT", "S3_PODCAST_ACCESS_KEY",
		"S3_PODCAST_SECRET_KEY", "S3_PODCAST_BUCKET", "S3_PODCAST_PUBLIC_URL",
	} {
		state := "set"
		if missing[name] {
			state = "not set"
		}
		log.Printf("  %s: %s", name, state)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"detail": message,
	})
}
