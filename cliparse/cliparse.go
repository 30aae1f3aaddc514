package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port         int    `envconfig:"PORT" default:"3318"`
	DatabaseURL  string `envconfig:"DATABASE_URL"`
	DatabaseType string `envconfig:"DATABASE_TYPE" default:"postgres"`

	// Secrets
	AdminKey   string `envconfig:"ADMIN_KEY"`
	IPHashSalt string `envconfig:"IP_HASH_SALT"`

	ResultsCacheTTL time.Duration `envconfig:"RESULTS_CACHE_TTL" default:"30s"`

	// Nomination documents
	DocumentBucket   string        `envconfig:"DOCUMENT_BUCKET"`
	DocumentPrefix   string        `envconfig:"DOCUMENT_PREFIX" default:"nominations"`
	AWSRegion        string        `envconfig:"AWS_REGION"`
	PresignTTL       time.Duration `envconfig:"PRESIGN_TTL" default:"15m"`
	MaxDocumentSize  string        `envconfig:"MAX_DOCUMENT_SIZE" default:"10MB"`
	MaxDocumentBytes int64         `ignored:"true"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"auto"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadEnv reads configuration from the environment only. Nothing is
// required at this stage.
func LoadEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid environment: %w", err)
	}
	return cfg, nil
}

// ParseFlags loads the environment, then lets CLI flags override it
func ParseFlags(args []string) (Config, error) {
	cfg, err := LoadEnv()
	if err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("samaj-vote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKey, "admin-key", cfg.AdminKey, "Admin API key (prefer env)")
	fs.StringVar(&cfg.IPHashSalt, "ip-salt", cfg.IPHashSalt, "Salt for ballot IP hashing (prefer env)")

	fs.DurationVar(&cfg.ResultsCacheTTL, "results-ttl", cfg.ResultsCacheTTL, "Results cache TTL (0 disables)")
	fs.StringVar(&cfg.DocumentBucket, "bucket", cfg.DocumentBucket, "S3 bucket for nomination documents")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required settings and derives computed fields
func (cfg *Config) Validate() error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return errors.New("invalid port")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.DatabaseType != "postgres" && cfg.DatabaseType != "sqlite" {
		return fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.AdminKey == "" {
		return errors.New("ADMIN_KEY required")
	}
	if cfg.IPHashSalt == "" {
		return errors.New("IP_HASH_SALT required")
	}

	if cfg.ResultsCacheTTL < 0 {
		return errors.New("RESULTS_CACHE_TTL must not be negative")
	}

	size, err := humanize.ParseBytes(cfg.MaxDocumentSize)
	if err != nil {
		return fmt.Errorf("invalid MAX_DOCUMENT_SIZE: %w", err)
	}
	if size == 0 {
		return errors.New("MAX_DOCUMENT_SIZE must be positive")
	}
	cfg.MaxDocumentBytes = int64(size)

	return nil
}
