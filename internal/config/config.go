package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server   ServerConfig
	S3       S3Config
	Supabase SupabaseConfig
	Engine   EngineConfig
	Audio    AudioConfig
}

type ServerConfig struct {
	Host        string
	Port        string
	LogLevel    string
	AccessToken string
}

type S3Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
}

// IsConfigured reports whether every variable the storage backend needs is set.
func (c *S3Config) IsConfigured() bool {
	return len(c.MissingVars()) == 0
}

// MissingVars lists the unset storage environment variables, for error
// messages and startup logging. Values are never included.
func (c *S3Config) MissingVars() []string {
	required := []struct {
		name  string
		value string
	}{
		{"S3_PODCAST_REGION", c.Region},
		{"S3_PODCAST_ENDPOINT", c.Endpoint},
		{"S3_PODCAST_ACCESS_KEY", c.AccessKey},
		{"S3_PODCAST_SECRET_KEY", c.SecretKey},
		{"S3_PODCAST_BUCKET", c.Bucket},
		{"S3_PODCAST_PUBLIC_URL", c.PublicURL},
	}
	var missing []string
	for _, v := range required {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	return missing
}

type SupabaseConfig struct {
	URL     string
	AnonKey string
	// ServiceKey is the service role key used for server-side updates.
	ServiceKey string
}

func (c *SupabaseConfig) IsConfigured() bool {
	return c.URL != "" && c.ServiceKey != ""
}

type EngineConfig struct {
	ServiceURL string
	Timeout    int // seconds
}

type AudioConfig struct {
	TempDir        string
	IntroPath      string
	BaseConfigPath string
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("PODPOD_API_ACCESS_TOKEN")
	readSecret("S3_PODCAST_ACCESS_KEY")
	readSecret("S3_PODCAST_SECRET_KEY")
	readSecret("SUPABASE_KEY")
	readSecret("SUPABASE_ANON_KEY")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.host", "HOST")
	_ = viper.BindEnv("server.port", "PORT")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("server.access_token", "PODPOD_API_ACCESS_TOKEN")
	_ = viper.BindEnv("s3.region", "S3_PODCAST_REGION")
	_ = viper.BindEnv("s3.endpoint", "S3_PODCAST_ENDPOINT")
	_ = viper.BindEnv("s3.access_key", "S3_PODCAST_ACCESS_KEY")
	_ = viper.BindEnv("s3.secret_key", "S3_PODCAST_SECRET_KEY")
	_ = viper.BindEnv("s3.bucket", "S3_PODCAST_BUCKET")
	_ = viper.BindEnv("s3.public_url", "S3_PODCAST_PUBLIC_URL")
	_ = viper.BindEnv("supabase.url", "SUPABASE_URL")
	_ = viper.BindEnv("supabase.anon_key", "SUPABASE_ANON_KEY")
	_ = viper.BindEnv("supabase.service_key", "SUPABASE_KEY")
	_ = viper.BindEnv("engine.service_url", "ENGINE_SERVICE_URL")
	_ = viper.BindEnv("engine.timeout", "ENGINE_TIMEOUT")
	_ = viper.BindEnv("audio.temp_dir", "TEMP_DIR")
	_ = viper.BindEnv("audio.intro_path", "INTRO_AUDIO_PATH")
	_ = viper.BindEnv("audio.base_config_path", "CONVERSATION_CONFIG_PATH")

	// Defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.log_level", "info")

	// Engine defaults
	viper.SetDefault("engine.service_url", "http://localhost:8001")
	viper.SetDefault("engine.timeout", 600)

	// Audio defaults
	viper.SetDefault("audio.temp_dir", "./temp_audio")
	viper.SetDefault("audio.intro_path", "./intro.wav")
	viper.SetDefault("audio.base_config_path", "./conversation_config.yaml")

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Host:        viper.GetString("server.host"),
			Port:        viper.GetString("server.port"),
			LogLevel:    viper.GetString("server.log_level"),
			AccessToken: viper.GetString("server.access_token"),
		},
		S3: S3Config{
			Region:    viper.GetString("s3.region"),
			Endpoint:  viper.GetString("s3.endpoint"),
			AccessKey: viper.GetString("s3.access_key"),
			SecretKey: viper.GetString("s3.secret_key"),
			Bucket:    viper.GetString("s3.bucket"),
			PublicURL: viper.GetString("s3.public_url"),
		},
		Supabase: SupabaseConfig{
			URL:        viper.GetString("supabase.url"),
			AnonKey:    viper.GetString("supabase.anon_key"),
			ServiceKey: viper.GetString("supabase.service_key"),
		},
		Engine: EngineConfig{
			ServiceURL: viper.GetString("engine.service_url"),
			Timeout:    viper.GetInt("engine.timeout"),
		},
		Audio: AudioConfig{
			TempDir:        viper.GetString("audio.temp_dir"),
			IntroPath:      viper.GetString("audio.intro_path"),
			BaseConfigPath: viper.GetString("audio.base_config_path"),
		},
	}

	return cfg, nil
}
