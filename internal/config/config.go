package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Fetcher  FetcherConfig  `yaml:"fetcher"`
	Discover DiscoverConfig `yaml:"discovery"`
	Index    IndexConfig    `yaml:"index"`
	Sync     SyncConfig     `yaml:"sync"`
	LogLevel string         `yaml:"log_level"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

type FetcherConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	Retry     RetryConfig   `yaml:"retry"`
}

type DiscoverConfig struct {
	BaseURL  string        `yaml:"base_url"`
	PageSize int           `yaml:"page_size"`
	Timeout  time.Duration `yaml:"timeout"`
}

type IndexConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

type SyncConfig struct {
	Sources                 []string      `yaml:"sources"`
	AllowedHosts            []string      `yaml:"allowed_hosts"`
	BatchSize               int           `yaml:"batch_size"`
	RequestDelay            time.Duration `yaml:"request_delay"`
	BatchDelay              time.Duration `yaml:"batch_delay"`
	IncrementalBatchDelay   time.Duration `yaml:"incremental_batch_delay"`
	FullSyncInterval        time.Duration `yaml:"full_sync_interval"`
	IncrementalSyncInterval time.Duration `yaml:"incremental_sync_interval"`
	CheckInterval           time.Duration `yaml:"check_interval"`
	HistoryRetention        time.Duration `yaml:"history_retention"`
	HistoryLimit            int           `yaml:"history_limit"`
	StateContainer          string        `yaml:"state_container"`
	SystemContainer         string        `yaml:"system_container"`
	ContentContainer        string        `yaml:"content_container"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "docsync"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "changes"
	}
	if c.RabbitMQ.QueueName == "" {
		c.RabbitMQ.QueueName = "content_changes"
	}
	if c.Fetcher.Timeout == 0 {
		c.Fetcher.Timeout = 30 * time.Second
	}
	if c.Fetcher.UserAgent == "" {
		c.Fetcher.UserAgent = "DocSync/1.0"
	}
	if c.Fetcher.Retry.MaxAttempts == 0 {
		c.Fetcher.Retry.MaxAttempts = 3
	}
	if c.Fetcher.Retry.InitialBackoff == 0 {
		c.Fetcher.Retry.InitialBackoff = 1 * time.Second
	}
	if c.Fetcher.Retry.MaxBackoff == 0 {
		c.Fetcher.Retry.MaxBackoff = 30 * time.Second
	}
	if c.Discover.PageSize == 0 {
		c.Discover.PageSize = 100
	}
	if c.Discover.Timeout == 0 {
		c.Discover.Timeout = 30 * time.Second
	}
	if c.Index.Timeout == 0 {
		c.Index.Timeout = 15 * time.Second
	}
	if len(c.Sync.Sources) == 0 {
		c.Sync.Sources = []string{"personal", "management"}
	}
	if c.Sync.BatchSize == 0 {
		c.Sync.BatchSize = 20
	}
	if c.Sync.RequestDelay == 0 {
		c.Sync.RequestDelay = 1 * time.Second
	}
	if c.Sync.BatchDelay == 0 {
		c.Sync.BatchDelay = 1 * time.Second
	}
	if c.Sync.IncrementalBatchDelay == 0 {
		c.Sync.IncrementalBatchDelay = 500 * time.Millisecond
	}
	if c.Sync.FullSyncInterval == 0 {
		c.Sync.FullSyncInterval = 168 * time.Hour
	}
	if c.Sync.IncrementalSyncInterval == 0 {
		c.Sync.IncrementalSyncInterval = 6 * time.Hour
	}
	if c.Sync.CheckInterval == 0 {
		c.Sync.CheckInterval = 5 * time.Minute
	}
	if c.Sync.HistoryRetention == 0 {
		c.Sync.HistoryRetention = 90 * 24 * time.Hour
	}
	if c.Sync.HistoryLimit == 0 {
		c.Sync.HistoryLimit = 50
	}
	if c.Sync.StateContainer == "" {
		c.Sync.StateContainer = "change-detection"
	}
	if c.Sync.SystemContainer == "" {
		c.Sync.SystemContainer = "system-state"
	}
	if c.Sync.ContentContainer == "" {
		c.Sync.ContentContainer = "scraped-content"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
