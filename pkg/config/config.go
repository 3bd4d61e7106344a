package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig   `envconfig:"SERVER"`
	Database DatabaseConfig `envconfig:"DB"`
	Redis    RedisConfig    `envconfig:"REDIS"`
	Storage  StorageConfig  `envconfig:"STORAGE"`
	JWT      JWTConfig      `envconfig:"JWT"`
	Temporal TemporalConfig `envconfig:"TEMPORAL"`
	LLM      LLMConfig      `envconfig:"LLM"`
	Webhook  WebhookConfig  `envconfig:"WEBHOOK"`
	Scoring  ScoringConfig  `envconfig:"SCORING"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string        `split_words:"true" default:"8080"`
	Host            string        `split_words:"true" default:"0.0.0.0"`
	Environment     string        `split_words:"true" default:"development"`
	AllowedOrigins  []string      `split_words:"true" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string `split_words:"true" default:"localhost"`
	Port        string `split_words:"true" default:"5432"`
	User        string `split_words:"true" default:"postgres"`
	Password    string `split_words:"true" default:"postgres"`
	Name        string `split_words:"true" default:"practice_scoring"`
	SSLMode     string `split_words:"true" default:"disable"`
	MaxConns    int    `split_words:"true" default:"25"`
	MinConns    int    `split_words:"true" default:"5"`
	AutoMigrate bool   `split_words:"true" default:"false"`
}

// RedisConfig holds Redis configuration. An empty Addr disables Redis and
// the webhook delivery ledger falls back to process memory.
type RedisConfig struct {
	Addr     string `split_words:"true"`
	Password string `split_words:"true"`
	DB       int    `split_words:"true" default:"0"`
}

// StorageConfig holds the raw webhook payload archive settings
type StorageConfig struct {
	Enabled         bool   `split_words:"true" default:"false"`
	Endpoint        string `split_words:"true" default:"localhost:9000"`
	AccessKeyID     string `split_words:"true" default:"minioadmin"`
	SecretAccessKey string `split_words:"true" default:"minioadmin"`
	BucketName      string `split_words:"true" default:"practice-webhooks"`
	UseSSL          bool   `split_words:"true" default:"false"`
}

// JWTConfig holds access token validation settings. Tokens are issued by the
// hosted auth provider; this service only verifies them.
type JWTConfig struct {
	Secret   string `split_words:"true"`
	Audience string `split_words:"true" default:"authenticated"`
	Issuer   string `split_words:"true"`
}

// TemporalConfig holds workflow substrate settings. An empty Address runs
// scoring on the in-process runner instead.
type TemporalConfig struct {
	Address        string `split_words:"true"`
	Namespace      string `split_words:"true" default:"default"`
	TaskQueue      string `split_words:"true" default:"practice-scoring"`
	EmbeddedWorker bool   `split_words:"true" default:"true"`

	// AutoRegisterNamespace creates the namespace on self-hosted clusters
	AutoRegisterNamespace bool          `split_words:"true" default:"false"`
	NamespaceRetention    time.Duration `split_words:"true" default:"168h"`
	DialTimeout           time.Duration `split_words:"true" default:"60s"`
}

// LLMConfig selects and configures the structured-output grader
type LLMConfig struct {
	Provider      string        `split_words:"true" default:"openai"`
	OpenAIAPIKey  string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel   string        `envconfig:"OPENAI_MODEL" default:"gpt-5.2"`
	OpenAIBaseURL string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com"`
	GeminiAPIKey  string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel   string        `envconfig:"GEMINI_MODEL" default:"gemini-1.5-pro"`
	Timeout       time.Duration `split_words:"true" default:"90s"`
}

// WebhookConfig holds voice provider webhook settings
type WebhookConfig struct {
	ElevenLabsSecret string        `envconfig:"ELEVENLABS_SECRET"`
	MatchWindow      time.Duration `split_words:"true" default:"5m"`
	DedupeTTL        time.Duration `split_words:"true" default:"24h"`
}

// ScoringConfig holds orchestrator settings
type ScoringConfig struct {
	RubricLabel string `split_words:"true" default:"scorecard_rubric"`
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	config, err := Read()
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Read loads configuration without cross-field validation. Tools that never
// serve requests or call the model (migrate, backfill) use it.
func Read() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "openai":
		if c.LLM.OpenAIAPIKey == "" {
			return fmt.Errorf("LLM_OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
	case "gemini":
		if c.LLM.GeminiAPIKey == "" {
			return fmt.Errorf("LLM_GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLM.Provider)
	}
	if c.Webhook.MatchWindow <= 0 {
		return fmt.Errorf("WEBHOOK_MATCH_WINDOW must be positive")
	}
	return nil
}

// IsDevelopment reports whether the service runs with development defaults
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetServerAddr returns the HTTP listen address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
