package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	Port        string
	GinMode     string
	LogLevel    string
	LogFormat   string
	CORSOrigins []string

	// Document collections and persisted indexes
	DocumentsDir      string
	IndexDir          string
	MaxFileSize       int64
	IndexCacheEnabled bool
	PolicyFile        string
	Retrieval         RetrievalPolicy

	// Session store
	SessionBackend    string // "memory" or "redis"
	SessionTTL        time.Duration
	SessionMaxEntries int

	// Redis Configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	RateLimitReqs   int
	RateLimitWindow int

	// Gemini
	GeminiAPIKey string
	GeminiModel  string
	GeminiTier   string
	AITimeout    time.Duration

	// Admin access
	AdminUsername     string
	AdminPasswordHash string
	JWTSecret         string
	JWTExpiresIn      string
	BcryptCost        int

	// Rebuild scheduling
	AsyncRebuild      bool
	RebuildCron       string
	WorkerConcurrency int

	// Transcripts (optional)
	MongoURI string
	DBName   string

	// Telemetry
	OTelEnabled      bool
	OTelEndpoint     string
	TraceSampleRatio float64
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "fdv-chatbot-platform"),
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		LogLevel:    getEnv("LOG_LEVEL", ""),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		DocumentsDir:      getEnv("DOCUMENTS_DIR", "./data/documents"),
		IndexDir:          getEnv("INDEX_DIR", "./data/index"),
		MaxFileSize:       getEnvInt64("MAX_FILE_SIZE", 52428800), // 50MB
		IndexCacheEnabled: getEnvBool("INDEX_CACHE_ENABLED", true),
		PolicyFile:        getEnv("RETRIEVAL_POLICY_FILE", ""),
		Retrieval: RetrievalPolicy{
			ChunkSize:         getEnvInt("CHUNK_SIZE", 1000),
			ChunkOverlap:      getEnvInt("CHUNK_OVERLAP", 200),
			MaxHits:           getEnvInt("MAX_HITS", 4),
			ChunksPerSource:   getEnvInt("CHUNKS_PER_SOURCE", 4),
			ContextBudget:     getEnvInt("CONTEXT_BUDGET", 8000),
			FollowUpMaxTokens: getEnvInt("FOLLOWUP_MAX_TOKENS", 6),
		},

		SessionBackend:    getEnv("SESSION_BACKEND", "memory"),
		SessionTTL:        getEnvDuration("SESSION_TTL", 24*time.Hour),
		SessionMaxEntries: getEnvInt("SESSION_MAX_ENTRIES", 10000),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTier:   getEnv("GEMINI_TIER", "free"),
		AITimeout:    getEnvDuration("AI_TIMEOUT", 60*time.Second),

		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTExpiresIn:      getEnv("JWT_EXPIRES_IN", "24h"),
		BcryptCost:        getEnvInt("BCRYPT_COST", 12),

		AsyncRebuild:      getEnvBool("ASYNC_REBUILD", false),
		RebuildCron:       getEnv("REBUILD_CRON", ""),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 4),

		MongoURI: getEnv("MONGO_URI", ""),
		DBName:   getEnv("DB_NAME", "fdv_chatbot"),

		OTelEnabled:      getEnvBool("OTEL_ENABLED", false),
		OTelEndpoint:     getEnv("OTEL_ENDPOINT", "localhost:4317"),
		TraceSampleRatio: getEnvFloat64("OTEL_SAMPLE_RATIO", 0.1),
	}

	if cfg.PolicyFile != "" {
		policy, err := LoadPolicy(cfg.PolicyFile, cfg.Retrieval)
		if err != nil {
			return nil, err
		}
		cfg.Retrieval = policy
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail deep inside a request.
func (c *Config) Validate() error {
	if err := c.Retrieval.Validate(); err != nil {
		return err
	}
	switch c.SessionBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("SESSION_BACKEND must be memory or redis, got %q", c.SessionBackend)
	}
	if c.AdminPasswordHash != "" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ADMIN_PASSWORD_HASH is set")
	}
	return nil
}

// AdminEnabled reports whether the admin routes can authenticate anyone.
func (c *Config) AdminEnabled() bool {
	return c.AdminPasswordHash != "" && c.JWTSecret != ""
}

// JWTExpiry parses JWTExpiresIn, falling back to 24h.
func (c *Config) JWTExpiry() time.Duration {
	d, err := time.ParseDuration(c.JWTExpiresIn)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
