package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/umputun/feedpost/pkg/domain"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Feeds []Feed `yaml:"feeds" json:"feeds" jsonschema:"required,description=List of feeds to poll"`

	Delivery DeliveryConfig `yaml:"delivery" json:"delivery" jsonschema:"description=Delivery retry and pacing configuration"`

	Telegram TelegramConfig `yaml:"telegram" json:"telegram" jsonschema:"description=Telegram channel configuration"`

	Summary SummaryConfig `yaml:"summary" json:"summary" jsonschema:"description=LLM summarization configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:feedpost.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Schedule struct {
		UpdateInterval int           `yaml:"update_interval" json:"update_interval" jsonschema:"default=30,description=Feed poll interval in minutes"`
		FetchTimeout   time.Duration `yaml:"fetch_timeout" json:"fetch_timeout" jsonschema:"default=30s,description=Per-feed fetch request timeout"`
		MaxWorkers     int           `yaml:"max_workers" json:"max_workers" jsonschema:"default=5,description=Maximum concurrent feed pipelines"`
	} `yaml:"schedule" json:"schedule" jsonschema:"description=Scheduler configuration"`

	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=Status server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Status server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Status server configuration"`
}

// Feed describes one feed in the configuration
type Feed struct {
	Name       string `yaml:"name" json:"name" jsonschema:"required,description=Unique feed name used as the cursor key"`
	URL        string `yaml:"url" json:"url" jsonschema:"required,description=Feed URL"`
	FetchLimit int    `yaml:"fetch_limit" json:"fetch_limit" jsonschema:"default=30,description=Maximum entries taken from one fetch"`
}

// DeliveryConfig holds retry and pacing settings
type DeliveryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts" json:"max_attempts" jsonschema:"default=4,minimum=1,description=Total send attempts per entry"`
	InitialBackoff time.Duration `yaml:"initial_backoff" json:"initial_backoff" jsonschema:"default=2s,description=Initial retry backoff, doubled after each failed attempt"`
	MaxBackoff     time.Duration `yaml:"max_backoff" json:"max_backoff" jsonschema:"default=1m,description=Upper bound on the retry backoff"`
	MessageDelay   time.Duration `yaml:"message_delay" json:"message_delay" jsonschema:"default=2s,description=Pause between consecutive messages to the sink"`
	OnCursorGap    string        `yaml:"on_cursor_gap" json:"on_cursor_gap" jsonschema:"default=redeliver,enum=redeliver,enum=skip,description=Policy when the cursor id is missing from the fetched window"`
}

// TelegramConfig holds Telegram delivery settings
type TelegramConfig struct {
	Token             string        `yaml:"token" json:"token" jsonschema:"required,description=Bot token (can use environment variable)"`
	ChatID            string        `yaml:"chat_id" json:"chat_id" jsonschema:"required,description=Target channel or chat id"`
	API               string        `yaml:"api" json:"api" jsonschema:"default=https://api.telegram.org,description=Bot API base URL"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=10s,description=Request timeout"`
	DisableWebPreview bool          `yaml:"disable_web_preview" json:"disable_web_preview" jsonschema:"default=false,description=Disable link previews in messages"`
}

// SummaryConfig holds LLM summarization settings
type SummaryConfig struct {
	Enabled      bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Enable LLM summarization"`
	Endpoint     string        `yaml:"endpoint" json:"endpoint" jsonschema:"description=OpenAI-compatible API endpoint"`
	APIKey       string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	Model        string        `yaml:"model" json:"model" jsonschema:"description=Model name (e.g. mistral-tiny or gpt-4o-mini)"`
	Temperature  float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.3,description=Temperature for response generation"`
	MaxTokens    int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=512,description=Maximum tokens in the summary"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Request timeout"`
	SystemPrompt string        `yaml:"system_prompt" json:"system_prompt" jsonschema:"description=System prompt for the LLM (optional)"`
}

// cursor gap policies
const (
	GapRedeliver = "redeliver"
	GapSkip      = "skip"
)

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// set defaults for feeds
	for i := range cfg.Feeds {
		if cfg.Feeds[i].FetchLimit == 0 {
			cfg.Feeds[i].FetchLimit = 30
		}
	}

	// set defaults for delivery
	if cfg.Delivery.MaxAttempts == 0 {
		cfg.Delivery.MaxAttempts = 4
	}
	if cfg.Delivery.InitialBackoff == 0 {
		cfg.Delivery.InitialBackoff = 2 * time.Second
	}
	if cfg.Delivery.MaxBackoff == 0 {
		cfg.Delivery.MaxBackoff = time.Minute
	}
	if cfg.Delivery.MessageDelay == 0 {
		cfg.Delivery.MessageDelay = 2 * time.Second
	}
	if cfg.Delivery.OnCursorGap == "" {
		cfg.Delivery.OnCursorGap = GapRedeliver
	}

	// set defaults for telegram
	if cfg.Telegram.API == "" {
		cfg.Telegram.API = "https://api.telegram.org"
	}
	if cfg.Telegram.Timeout == 0 {
		cfg.Telegram.Timeout = 10 * time.Second
	}

	// set defaults for summary
	if cfg.Summary.Temperature == 0 {
		cfg.Summary.Temperature = 0.3
	}
	if cfg.Summary.MaxTokens == 0 {
		cfg.Summary.MaxTokens = 512
	}
	if cfg.Summary.Timeout == 0 {
		cfg.Summary.Timeout = 30 * time.Second
	}

	// set defaults for database
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:feedpost.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	// set defaults for schedule
	if cfg.Schedule.UpdateInterval == 0 {
		cfg.Schedule.UpdateInterval = 30
	}
	if cfg.Schedule.FetchTimeout == 0 {
		cfg.Schedule.FetchTimeout = 30 * time.Second
	}
	if cfg.Schedule.MaxWorkers == 0 {
		cfg.Schedule.MaxWorkers = 5
	}

	// set defaults for server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if len(cfg.Feeds) == 0 {
		return fmt.Errorf("at least one feed is required")
	}
	seen := make(map[string]bool, len(cfg.Feeds))
	for _, f := range cfg.Feeds {
		if f.Name == "" {
			return fmt.Errorf("feed name is required")
		}
		if f.URL == "" {
			return fmt.Errorf("feed %q: url is required", f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate feed name %q", f.Name)
		}
		seen[f.Name] = true
	}

	// validate delivery config
	if cfg.Delivery.MaxAttempts < 1 {
		return fmt.Errorf("delivery.max_attempts must be at least 1")
	}
	if cfg.Delivery.InitialBackoff < 0 || cfg.Delivery.MessageDelay < 0 {
		return fmt.Errorf("delivery backoff and delay must be non-negative")
	}
	if cfg.Delivery.OnCursorGap != GapRedeliver && cfg.Delivery.OnCursorGap != GapSkip {
		return fmt.Errorf("delivery.on_cursor_gap must be %q or %q", GapRedeliver, GapSkip)
	}

	// validate telegram config
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}
	if cfg.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}

	// validate summary config
	if cfg.Summary.Enabled {
		if cfg.Summary.Endpoint == "" {
			return fmt.Errorf("summary.endpoint is required when summary is enabled")
		}
		if cfg.Summary.Model == "" {
			return fmt.Errorf("summary.model is required when summary is enabled")
		}
		if cfg.Summary.Temperature < 0 || cfg.Summary.Temperature > 2 {
			return fmt.Errorf("summary.temperature must be between 0 and 2")
		}
	}

	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	return nil
}

// GetFeeds returns configured feeds as domain values
func (c *Config) GetFeeds() []domain.Feed {
	feeds := make([]domain.Feed, len(c.Feeds))
	for i, f := range c.Feeds {
		feeds[i] = domain.Feed{Name: f.Name, URL: f.URL, FetchLimit: f.FetchLimit}
	}
	return feeds
}

// GetServerConfig returns status server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetDeliveryConfig returns delivery configuration
func (c *Config) GetDeliveryConfig() DeliveryConfig {
	return c.Delivery
}

// GetTelegramConfig returns telegram configuration
func (c *Config) GetTelegramConfig() TelegramConfig {
	return c.Telegram
}

// GetSummaryConfig returns summarization configuration
func (c *Config) GetSummaryConfig() SummaryConfig {
	return c.Summary
}
