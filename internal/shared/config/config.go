package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvDev        = "dev"
	EnvLocal      = "local"
	EnvStaging    = "staging"
	EnvProduction = "production"

	defaultJWTSecret = "randomPass"
)

// Config holds application configuration.
type Config struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Env             string   `envconfig:"ENV" default:"dev"`
	CORSAllowOrigin []string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:5173"`
	DatabaseURL     string   `envconfig:"DATABASE_URL"`
	LogLevel        string   `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string   `envconfig:"LOG_FORMAT" default:"json"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	MaxUploadBytes  int64         `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`

	JWT     JWTConfig
	LLM     LLMConfig
	Storage StorageConfig
	OCR     OCRConfig
	Redis   RedisConfig
}

// JWTConfig configures access token issuance.
type JWTConfig struct {
	Secret    string        `envconfig:"JWT_SECRET"`
	ExpiresIn time.Duration `envconfig:"JWT_EXPIRES_IN" default:"24h"`
}

// LLMConfig configures the completion engine.
type LLMConfig struct {
	APIKey  string        `envconfig:"GEMINI_API_KEY"`
	BaseURL string        `envconfig:"LLM_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	Model   string        `envconfig:"LLM_MODEL" default:"gemini-1.5-flash"`
	Timeout time.Duration `envconfig:"LLM_TIMEOUT" default:"120s"`
}

// StorageConfig configures the blob store.
type StorageConfig struct {
	Type            string `envconfig:"OBJECT_STORE" default:"local"`
	LocalDir        string `envconfig:"LOCAL_STORE_DIR" default:"./data"`
	SupabaseURL     string `envconfig:"SUPABASE_URL"`
	SupabaseKey     string `envconfig:"SUPABASE_SERVICE_KEY"`
	Bucket          string `envconfig:"SUPABASE_BUCKET" default:"inreader-dev"`
	Endpoint        string `envconfig:"S3_ENDPOINT"`
	Region          string `envconfig:"S3_REGION" default:"us-east-1"`
	AccessKeyID     string `envconfig:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
}

// OCRConfig configures the OCR engine.
type OCRConfig struct {
	Provider        string `envconfig:"OCR_PROVIDER" default:"vision"`
	Language        string `envconfig:"OCR_LANGUAGE" default:"pt"`
	CredentialsJSON string `envconfig:"GOOGLE_CREDENTIALS"`
	CredentialsFile string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
}

// RedisConfig enables cross-process notification fan-out.
type RedisConfig struct {
	URL     string `envconfig:"REDIS_URL"`
	Channel string `envconfig:"REDIS_CHANNEL" default:"inreader:transcription-updates"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings that are unsafe outside development.
func (c Config) Validate() error {
	if c.Env == EnvProduction {
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required in production")
		}
		if c.JWT.Secret == "" || c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
	}
	if c.Storage.Type == "s3" && strings.TrimSpace(c.Storage.Bucket) == "" {
		return fmt.Errorf("OBJECT_STORE=s3 requires SUPABASE_BUCKET")
	}
	return nil
}

// IsDevLike reports whether in-memory fallbacks are acceptable.
func (c Config) IsDevLike() bool {
	return c.Env == EnvDev || c.Env == EnvLocal
}

// S3Endpoint resolves the S3-compatible endpoint, deriving Supabase Storage's
// S3 gateway from SUPABASE_URL when no explicit endpoint is set.
func (s StorageConfig) S3Endpoint() string {
	if ep := strings.TrimSpace(s.Endpoint); ep != "" {
		return ep
	}
	if base := strings.TrimRight(strings.TrimSpace(s.SupabaseURL), "/"); base != "" {
		return base + "/storage/v1/s3"
	}
	return ""
}

func (c *Config) normalize() {
	c.Env = normalizeEnv(c.Env)
	c.Storage.Type = normalizeStoreType(c.Storage.Type)
	c.CORSAllowOrigin = splitAndTrim(c.CORSAllowOrigin)
	if c.JWT.Secret == "" && c.Env != EnvProduction {
		c.JWT.Secret = defaultJWTSecret
	}
	if c.JWT.ExpiresIn <= 0 {
		c.JWT.ExpiresIn = 24 * time.Hour
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 10 << 20
	}
	c.OCR.Provider = strings.ToLower(strings.TrimSpace(c.OCR.Provider))
}

func splitAndTrim(raw []string) []string {
	var out []string
	for _, p := range raw {
		for _, part := range strings.Split(p, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return EnvProduction
	case "staging":
		return EnvStaging
	case "local":
		return EnvLocal
	default:
		return EnvDev
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3", "supabase":
		return "s3"
	default:
		return "local"
	}
}
