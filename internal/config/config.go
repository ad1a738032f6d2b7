package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LLM providers accepted in LLM_PROVIDER.
const (
	ProviderNone   = "none"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// CORS
	CORSAllowedOrigins []string

	// Refinement
	LLMProvider     string
	AnthropicAPIKey string
	AnthropicModel  string
	GeminiAPIKey    string
	GeminiModel     string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Keywords and job postings
	KeywordCount    int
	JobFetchTimeout time.Duration

	// Pathstore connection; empty URL disables persistence.
	PathstoreURL    string
	PathstoreAPIKey string

	// Rendered artifacts in S3; empty bucket disables uploads.
	S3Bucket     string
	AWSRegion    string
	AWSAccessKey string
	AWSSecretKey string

	// Job events; empty URL disables publishing.
	RabbitMQURL      string
	RabbitMQExchange string
}

// Load reads a .env file if one exists, then the process environment.
// Variables already set in the environment win over the file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("CVGEST_API_KEY"),

		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		LLMProvider:     strings.ToLower(os.Getenv("LLM_PROVIDER")),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     envOr("GEMINI_MODEL", "gemini-1.5-flash"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		KeywordCount:    envInt("KEYWORD_COUNT", 15),
		JobFetchTimeout: envDuration("JOB_FETCH_TIMEOUT", 10*time.Second),

		PathstoreURL:    os.Getenv("PATHSTORE_URL"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),

		S3Bucket:     os.Getenv("S3_BUCKET"),
		AWSRegion:    envOr("AWS_REGION", "us-east-2"),
		AWSAccessKey: os.Getenv("AWS_ACCESS_KEY"),
		AWSSecretKey: os.Getenv("AWS_SECRET_KEY"),

		RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
		RabbitMQExchange: envOr("RABBITMQ_EXCHANGE", "cvgest.jobs"),
	}

	if cfg.LLMProvider == "" {
		switch {
		case cfg.AnthropicAPIKey != "":
			cfg.LLMProvider = ProviderClaude
		case cfg.GeminiAPIKey != "":
			cfg.LLMProvider = ProviderGemini
		default:
			cfg.LLMProvider = ProviderNone
		}
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.KeywordCount <= 0 {
		cfg.KeywordCount = 15
	}
	if cfg.JobFetchTimeout <= 0 {
		cfg.JobFetchTimeout = 10 * time.Second
	}

	return cfg
}

// Validate checks settings the HTTP server cannot run without.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("CVGEST_API_KEY is required")
	}
	if c.PathstoreURL != "" && c.PathstoreAPIKey == "" {
		return fmt.Errorf("PATHSTORE_API_KEY is required when PATHSTORE_URL is set")
	}
	return c.ValidateLLM()
}

// ValidateLLM checks that the selected LLM provider has credentials.
func (c Config) ValidateLLM() error {
	switch c.LLMProvider {
	case ProviderNone:
	case ProviderClaude:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER=claude")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma-separated variable, dropping empty items.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
