package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"strideflow"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"strideflow"`

	NSQLookupd string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	NSQDHost   string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQDHTTP   string `envconfig:"NSQD_HTTP" default:"nsqd:4151"`

	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Extraction service
	OpenAIAPIKey      string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL     string `envconfig:"OPENAI_BASE_URL"`
	OpenAIModel       string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	ExtractionTimeout int    `envconfig:"EXTRACTION_TIMEOUT_SECONDS" default:"60"`

	// Pipeline policy
	AgentSecretKey       string  `envconfig:"AGENT_SECRET_KEY"`
	DefaultOrgID         string  `envconfig:"DEFAULT_ORG_ID"`
	DefaultOwnerID       string  `envconfig:"DEFAULT_OWNER_ID"`
	OwnMailDomain        string  `envconfig:"OWN_MAIL_DOMAIN"`
	DuplicateThreshold   float64 `envconfig:"DUPLICATE_THRESHOLD" default:"0.8"`
	NearDupThreshold     float64 `envconfig:"NEAR_DUP_THRESHOLD" default:"0.6"`
	DedupWindowDays      int     `envconfig:"DEDUP_WINDOW_DAYS" default:"30"`
	TeamSize             int     `envconfig:"TEAM_SIZE" default:"3"`
	InboxFallback        bool    `envconfig:"INBOX_FALLBACK" default:"false"`
	ActionableOnly       bool    `envconfig:"ACTIONABLE_ONLY" default:"false"`
	PipelineConcurrency  int     `envconfig:"PIPELINE_CONCURRENCY" default:"4"`

	// Server
	ServerPort int `envconfig:"SERVER_PORT" default:"8081"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Try loading .env from current dir and repo root
	// Ignore errors, as env vars might be set in the shell
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	rootEnv := filepath.Join(cwd, "../../.env")
	_ = godotenv.Load(rootEnv)

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBUser == "" {
		return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.DuplicateThreshold < c.NearDupThreshold {
		return fmt.Errorf("%w: DUPLICATE_THRESHOLD must be >= NEAR_DUP_THRESHOLD", ErrMissingRequired)
	}
	return nil
}
