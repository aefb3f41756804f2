package config

import (
	"fmt"
	"net/url"
	"slices"
)

// Store backends.
const (
	StoreDynamoDB = "dynamodb"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

// Ledger append strategies.
const (
	LedgerOverwrite  = "overwrite"
	LedgerOptimistic = "optimistic"
)

// Rating providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds all configuration for proposal-relay.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// SecretKey signs installation and feedback tokens (HS256).
	// Server will fail to start if this is not set.
	SecretKey string `yaml:"-" env:"SECRET_KEY"`

	Store    StoreConfig    `yaml:"store"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Rating   RatingConfig   `yaml:"rating"`
	Trello   TrelloConfig   `yaml:"trello"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// StoreConfig selects the keyed store holding installations and feedback.
type StoreConfig struct {
	Backend string `yaml:"backend" env:"STORE_BACKEND" env-default:"dynamodb"`
}

// DynamoDBConfig holds DynamoDB table and client settings.
type DynamoDBConfig struct {
	Region string `yaml:"region" env:"DYNAMODB_REGION_NAME" env-default:"us-east-1"`
	// Endpoint overrides the AWS endpoint (DynamoDB Local, LocalStack).
	Endpoint           string `yaml:"endpoint" env:"DYNAMODB_ENDPOINT" env-default:""`
	InstallationsTable string `yaml:"installations_table" env:"DYNAMODB_TABLE_NAME" env-default:"trello_webhooks"`
	FeedbacksTable     string `yaml:"feedbacks_table" env:"DYNAMODB_TABLE_FEEDBACKS" env-default:"trello_feedbacks"`
	// Static credentials. When empty the default AWS credential chain is used.
	AccessKeyID     string `yaml:"-" env:"DYNAMODB_AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"-" env:"DYNAMODB_AWS_SECRET_ACCESS_KEY"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"relay"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"proposal_relay"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Host      string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port      int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password  string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB        int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	KeyPrefix string `yaml:"key_prefix" env:"REDIS_KEY_PREFIX" env-default:"proposal-relay"`
}

// RatingConfig selects the language model used to rate proposals.
type RatingConfig struct {
	Provider string `yaml:"provider" env:"RATING_PROVIDER" env-default:"openai"`
	Endpoint string `yaml:"endpoint" env:"RATING_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model    string `yaml:"model" env:"RATING_MODEL" env-default:"gpt-3.5-turbo-0125"`
	// MaxTokens caps Anthropic responses; the Messages API requires it.
	MaxTokens       int    `yaml:"max_tokens" env:"RATING_MAX_TOKENS" env-default:"1024"`
	OpenAIAPIKey    string `yaml:"-" env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"`
}

// TrelloConfig holds the Trello REST API location.
type TrelloConfig struct {
	BaseURL string `yaml:"base_url" env:"TRELLO_BASE_URL" env-default:"https://api.trello.com"`
}

// LedgerConfig controls how feedback entries are appended.
type LedgerConfig struct {
	// Strategy is "overwrite" (plain read-modify-write) or "optimistic"
	// (compare-and-swap, repeated while concurrent writers conflict).
	Strategy    string `yaml:"strategy" env:"LEDGER_STRATEGY" env-default:"overwrite"`
	MaxAttempts int    `yaml:"max_attempts" env:"LEDGER_MAX_ATTEMPTS" env-default:"5"`
}

// NotifyConfig controls the optional chat notification after a rating is saved.
type NotifyConfig struct {
	TelegramEnabled bool   `yaml:"telegram_enabled" env:"NOTIFY_TELEGRAM_ENABLED" env-default:"false"`
	TelegramBaseURL string `yaml:"telegram_base_url" env:"NOTIFY_TELEGRAM_BASE_URL" env-default:"https://api.telegram.org"`
}

// ListenAddr returns the address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return c.BindAddr + ":" + c.Port
}

// ConnectionString returns a PostgreSQL URL usable by both pgx and golang-migrate.
func (c *DatabaseConfig) ConnectionString() string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", ResolveHostForDocker(c.Host), c.Port),
		Path:   "/" + c.Database,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis host:port address.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", ResolveHostForDocker(c.Host), c.Port)
}

// validate checks enumerated settings and required secrets.
func (c *Config) validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY must be set")
	}

	if !slices.Contains([]string{StoreDynamoDB, StorePostgres, StoreRedis, StoreMemory}, c.Store.Backend) {
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	if !slices.Contains([]string{LedgerOverwrite, LedgerOptimistic}, c.Ledger.Strategy) {
		return fmt.Errorf("unknown ledger strategy %q", c.Ledger.Strategy)
	}
	if c.Ledger.MaxAttempts < 1 {
		return fmt.Errorf("ledger max_attempts must be at least 1")
	}

	switch c.Rating.Provider {
	case ProviderOpenAI:
		if c.Rating.Endpoint == "" {
			return fmt.Errorf("rating endpoint is required for provider %q", c.Rating.Provider)
		}
	case ProviderAnthropic:
		if c.Rating.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY must be set for provider %q", c.Rating.Provider)
		}
	default:
		return fmt.Errorf("unknown rating provider %q", c.Rating.Provider)
	}

	if c.Rating.Model == "" {
		return fmt.Errorf("rating model is required")
	}

	return nil
}
