package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	App           AppConfig
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Geolocation   GeolocationConfig
	LLM           LLMConfig
	Media         MediaConfig
	Transcription TranscriptionConfig
	Timeouts      TimeoutConfig
	Auth          AuthConfig
	OTEL          OTELConfig
}

// AppConfig holds process-wide settings
type AppConfig struct {
	Env      string
	LogLevel string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// DatabaseConfig holds marker store configuration
type DatabaseConfig struct {
	Driver     string
	SQLitePath string
	Host       string
	Port       int
	User       string
	Password   string
	Database   string
	SSLMode    string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// GeolocationConfig holds place search provider configuration
type GeolocationConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
}

// LLMConfig selects and configures the text generation backend used for place extraction
type LLMConfig struct {
	Provider           string
	OllamaURL          string
	OllamaModel        string
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIRateLimitRPM int
}

// MediaConfig holds the download and transcode tool settings
type MediaConfig struct {
	YTDLPPath   string
	FFmpegPath  string
	CookiesFile string
	TempDir     string
}

// TranscriptionConfig holds speech-to-text settings
type TranscriptionConfig struct {
	Provider    string
	PythonPath  string
	ScriptPath  string
	Model       string
	Device      string
	ComputeType string
	OpenAIModel string
}

// TimeoutConfig bounds each external call made by the ingestion pipeline
type TimeoutConfig struct {
	Download   time.Duration
	Transcode  time.Duration
	Transcribe time.Duration
	Extract    time.Duration
	Geocode    time.Duration
}

// AuthConfig holds bearer token settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 3001),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			SQLitePath: getEnv("SQLITE_PATH", "data/app.db"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvAsInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", ""),
			Database:   getEnv("DB_NAME", "reelspot"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Geolocation: GeolocationConfig{
			Provider: strings.ToLower(getEnv("GEOLOCATION_PROVIDER", "google")),
			APIKey:   getEnv("GOOGLE_PLACES_API_KEY", ""),
			BaseURL:  getEnv("GOOGLE_PLACES_BASE_URL", "https://maps.googleapis.com/maps/api"),
		},
		LLM: LLMConfig{
			Provider:           strings.ToLower(getEnv("LLM_PROVIDER", "ollama")),
			OllamaURL:          strings.TrimRight(getEnv("OLLAMA_URL", "http://localhost:11434"), "/"),
			OllamaModel:        getEnv("OLLAMA_MODEL", "qwen2.5"),
			OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIRateLimitRPM: getEnvAsInt("OPENAI_RATE_LIMIT_RPM", 60),
		},
		Media: MediaConfig{
			YTDLPPath:   getEnv("YTDLP_PATH", "yt-dlp"),
			FFmpegPath:  getEnv("FFMPEG_PATH", "ffmpeg"),
			CookiesFile: getEnv("YTDLP_COOKIES", ""),
			TempDir:     getEnv("MEDIA_TMP_DIR", os.TempDir()),
		},
		Transcription: TranscriptionConfig{
			Provider:    strings.ToLower(getEnv("STT_PROVIDER", "faster-whisper")),
			PythonPath:  getEnv("PYTHON_PATH", "python3"),
			ScriptPath:  getEnv("WHISPER_SCRIPT", "scripts/transcribe.py"),
			Model:       getEnv("WHISPER_MODEL", "base"),
			Device:      getEnv("WHISPER_DEVICE", "cpu"),
			ComputeType: getEnv("WHISPER_COMPUTE_TYPE", "int8"),
			OpenAIModel: getEnv("OPENAI_TRANSCRIBE_MODEL", "whisper-1"),
		},
		Timeouts: TimeoutConfig{
			Download:   getEnvAsDuration("DOWNLOAD_TIMEOUT", 5*time.Minute),
			Transcode:  getEnvAsDuration("TRANSCODE_TIMEOUT", 2*time.Minute),
			Transcribe: getEnvAsDuration("TRANSCRIBE_TIMEOUT", 5*time.Minute),
			Extract:    getEnvAsDuration("EXTRACT_TIMEOUT", 90*time.Second),
			Geocode:    getEnvAsDuration("GEOCODE_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvAsDuration("JWT_TTL", 7*24*time.Hour),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "reelspot-api"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.LLM.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLM.Provider)
	}
	switch c.Transcription.Provider {
	case "faster-whisper", "openai":
	default:
		return fmt.Errorf("unsupported STT_PROVIDER %q", c.Transcription.Provider)
	}
	return nil
}

// Address returns the listen address for the HTTP server
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
