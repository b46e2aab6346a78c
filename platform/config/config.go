// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetAIRequestsPerMinute() int
}

// MinIOConfig provides settings for MinIO object storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinIOPublicBaseURL() string
	IsMinIOEnabled() bool
}

// StorageBucketsConfig names the buckets used by the marketplace.
type StorageBucketsConfig interface {
	GetMinioBucketProductImages() string
}

// SchedulerConfig provides settings for the asynq job queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// GeminiConfig provides settings for the Gemini / Vertex AI adapter.
type GeminiConfig interface {
	GetGeminiAPIKey() string
	GetGeminiBackend() string
	GetGeminiProject() string
	GetGeminiLocation() string
	GetGeminiImageModel() string
	GetGeminiTextModel() string
	IsGeminiEnabled() bool
}

// GroqConfig provides settings for the Groq chat adapter.
type GroqConfig interface {
	GetGroqAPIKey() string
	GetGroqBaseURL() string
	GetGroqModel() string
	IsGroqEnabled() bool
}

// MoonshotConfig provides settings for the Moonshot chat adapter.
type MoonshotConfig interface {
	GetMoonshotAPIKey() string
	GetMoonshotBaseURL() string
	GetMoonshotModel() string
	IsMoonshotEnabled() bool
}

// ReplicateConfig provides settings for the Replicate image adapter.
type ReplicateConfig interface {
	GetReplicateAPIToken() string
	GetReplicateModel() string
	GetReplicateImageInputKey() string
	IsReplicateEnabled() bool
}

// PipelineConfig provides the tuning knobs of the AI generation pipeline.
type PipelineConfig interface {
	GetAIMaxAttempts() int
	GetAIRetryBaseDelay() time.Duration
	GetAIRetryBackoff() string
	GetAIImageInterval() time.Duration
	GetAIRateLimitCooldown() time.Duration
	GetAIImageProvider() string
	GetAISuggestionsProvider() string
	GetAICaptionsProvider() string
	GetAIInflightTTL() time.Duration
	GetAIAutoEnhanceOnCreate() bool
}

// ImageTransformConfig provides settings for the parametric fallback transform.
type ImageTransformConfig interface {
	GetCloudinaryCloudName() string
	GetCloudinaryTransform() string
}

// =============================================================================
// Main Config Struct (implements all interfaces)
// =============================================================================

type Config struct {
	Env            string
	HTTPAddr       string
	DatabaseURL    string
	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool

	AIRequestsPerMinute int

	MinIOEndpoint            string
	MinIOAccessKey           string
	MinIOSecretKey           string
	MinIOUseSSL              bool
	MinIOMaxFileSize         int64
	MinIOPublicBaseURL       string
	MinioBucketProductImages string

	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int

	GeminiAPIKey     string
	GeminiBackend    string
	GeminiProject    string
	GeminiLocation   string
	GeminiImageModel string
	GeminiTextModel  string

	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string

	MoonshotAPIKey  string
	MoonshotBaseURL string
	MoonshotModel   string

	ReplicateAPIToken      string
	ReplicateModel         string
	ReplicateImageInputKey string

	AIMaxAttempts         int
	AIRetryBaseDelay      time.Duration
	AIRetryBackoff        string
	AIImageInterval       time.Duration
	AIRateLimitCooldown   time.Duration
	AIImageProvider       string
	AISuggestionsProvider string
	AICaptionsProvider    string
	AIInflightTTL         time.Duration
	AIAutoEnhanceOnCreate bool

	CloudinaryCloudName string
	CloudinaryTransform string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig
func (c *Config) GetHTTPAddr() string         { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool       { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string    { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool     { return c.CORSAllowCreds }
func (c *Config) GetAIRequestsPerMinute() int { return c.AIRequestsPerMinute }

// MinIOConfig
func (c *Config) GetMinIOEndpoint() string      { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string     { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string     { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool          { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64    { return c.MinIOMaxFileSize }
func (c *Config) GetMinIOPublicBaseURL() string { return c.MinIOPublicBaseURL }
func (c *Config) IsMinIOEnabled() bool {
	return c.MinIOEndpoint != "" && c.MinIOAccessKey != "" && c.MinIOSecretKey != ""
}

// StorageBucketsConfig
func (c *Config) GetMinioBucketProductImages() string { return c.MinioBucketProductImages }

// SchedulerConfig
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// GeminiConfig
func (c *Config) GetGeminiAPIKey() string     { return c.GeminiAPIKey }
func (c *Config) GetGeminiBackend() string    { return c.GeminiBackend }
func (c *Config) GetGeminiProject() string    { return c.GeminiProject }
func (c *Config) GetGeminiLocation() string   { return c.GeminiLocation }
func (c *Config) GetGeminiImageModel() string { return c.GeminiImageModel }
func (c *Config) GetGeminiTextModel() string  { return c.GeminiTextModel }
func (c *Config) IsGeminiEnabled() bool {
	if strings.EqualFold(c.GeminiBackend, "vertex") {
		return c.GeminiProject != ""
	}
	return c.GeminiAPIKey != ""
}

// GroqConfig
func (c *Config) GetGroqAPIKey() string  { return c.GroqAPIKey }
func (c *Config) GetGroqBaseURL() string { return c.GroqBaseURL }
func (c *Config) GetGroqModel() string   { return c.GroqModel }
func (c *Config) IsGroqEnabled() bool    { return c.GroqAPIKey != "" }

// MoonshotConfig
func (c *Config) GetMoonshotAPIKey() string  { return c.MoonshotAPIKey }
func (c *Config) GetMoonshotBaseURL() string { return c.MoonshotBaseURL }
func (c *Config) GetMoonshotModel() string   { return c.MoonshotModel }
func (c *Config) IsMoonshotEnabled() bool    { return c.MoonshotAPIKey != "" }

// ReplicateConfig
func (c *Config) GetReplicateAPIToken() string      { return c.ReplicateAPIToken }
func (c *Config) GetReplicateModel() string         { return c.ReplicateModel }
func (c *Config) GetReplicateImageInputKey() string { return c.ReplicateImageInputKey }
func (c *Config) IsReplicateEnabled() bool          { return c.ReplicateAPIToken != "" }

// PipelineConfig
func (c *Config) GetAIMaxAttempts() int                 { return c.AIMaxAttempts }
func (c *Config) GetAIRetryBaseDelay() time.Duration    { return c.AIRetryBaseDelay }
func (c *Config) GetAIRetryBackoff() string             { return c.AIRetryBackoff }
func (c *Config) GetAIImageInterval() time.Duration     { return c.AIImageInterval }
func (c *Config) GetAIRateLimitCooldown() time.Duration { return c.AIRateLimitCooldown }
func (c *Config) GetAIImageProvider() string            { return c.AIImageProvider }
func (c *Config) GetAISuggestionsProvider() string      { return c.AISuggestionsProvider }
func (c *Config) GetAICaptionsProvider() string         { return c.AICaptionsProvider }
func (c *Config) GetAIInflightTTL() time.Duration       { return c.AIInflightTTL }
func (c *Config) GetAIAutoEnhanceOnCreate() bool        { return c.AIAutoEnhanceOnCreate }

// ImageTransformConfig
func (c *Config) GetCloudinaryCloudName() string { return c.CloudinaryCloudName }
func (c *Config) GetCloudinaryTransform() string { return c.CloudinaryTransform }

// =============================================================================
// Config Loading
// =============================================================================

func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:            getEnv("APP_ENV", "development"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		CORSAllowAll:   corsAllowAll,
		CORSOrigins:    corsOrigins,
		CORSAllowCreds: strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),

		AIRequestsPerMinute: mustInt(getEnv("AI_REQUESTS_PER_MINUTE", "10")),

		MinIOEndpoint:            getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:           getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:           getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:              strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:         mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "10485760")),
		MinIOPublicBaseURL:       strings.TrimRight(getEnv("MINIO_PUBLIC_BASE_URL", ""), "/"),
		MinioBucketProductImages: getEnv("MINIO_BUCKET_PRODUCT_IMAGES", "product-images"),

		RedisURL:         getEnv("REDIS_URL", ""),
		RedisTLSInsecure: strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "ai"),
		AsynqConcurrency: mustInt(getEnv("ASYNQ_CONCURRENCY", "2")),

		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiBackend:    getEnv("GEMINI_BACKEND", "gemini"),
		GeminiProject:    getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GeminiLocation:   getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),
		GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		GeminiTextModel:  getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),

		GroqAPIKey:  getEnv("GROQ_API_KEY", ""),
		GroqBaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:   getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),

		MoonshotAPIKey:  getEnv("MOONSHOT_API_KEY", ""),
		MoonshotBaseURL: getEnv("MOONSHOT_BASE_URL", "https://api.moonshot.ai/v1"),
		MoonshotModel:   getEnv("MOONSHOT_MODEL", "kimi-k2-0905-preview"),

		ReplicateAPIToken:      getEnv("REPLICATE_API_TOKEN", ""),
		ReplicateModel:         getEnv("REPLICATE_MODEL", "black-forest-labs/flux-kontext-pro"),
		ReplicateImageInputKey: getEnv("REPLICATE_IMAGE_INPUT_KEY", "input_image"),

		AIMaxAttempts:         mustInt(getEnv("AI_MAX_ATTEMPTS", "3")),
		AIRetryBaseDelay:      mustDuration(getEnv("AI_RETRY_BASE_DELAY", "2s")),
		AIRetryBackoff:        strings.ToLower(getEnv("AI_RETRY_BACKOFF", "exponential")),
		AIImageInterval:       mustDuration(getEnv("AI_IMAGE_INTERVAL", "1500ms")),
		AIRateLimitCooldown:   mustDuration(getEnv("AI_RATE_LIMIT_COOLDOWN", "10s")),
		AIImageProvider:       strings.ToLower(getEnv("AI_IMAGE_PROVIDER", "gemini")),
		AISuggestionsProvider: strings.ToLower(getEnv("AI_SUGGESTIONS_PROVIDER", "gemini")),
		AICaptionsProvider:    strings.ToLower(getEnv("AI_CAPTIONS_PROVIDER", "groq")),
		AIInflightTTL:         mustDuration(getEnv("AI_INFLIGHT_TTL", "5m")),
		AIAutoEnhanceOnCreate: strings.EqualFold(getEnv("AI_AUTO_ENHANCE_ON_CREATE", "false"), "true"),

		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryTransform: getEnv("CLOUDINARY_TRANSFORM", "e_improve,e_sharpen,b_black"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.AIMaxAttempts < 1 {
		return nil, fmt.Errorf("AI_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.AIRetryBackoff != "fixed" && cfg.AIRetryBackoff != "exponential" {
		return nil, fmt.Errorf("AI_RETRY_BACKOFF must be fixed or exponential")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
