package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Scraper    ScraperConfig
	Matcher    MatcherConfig
	Alerts     AlertsConfig
	Embedding  EmbeddingConfig
	CatalogAPI CatalogAPIConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings for the embedding cache.
// An empty host disables Redis and falls back to the in-memory cache.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	CORSAllowOrigins  []string
	TrustedProxies    []string
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// ScraperConfig holds competitor scraping settings
type ScraperConfig struct {
	MaxRetries     int           // retry ceiling per collection fetch
	BackoffBase    time.Duration // first retry delay, doubled per attempt
	RequestTimeout time.Duration // per-request HTTP timeout
	JobTimeout     time.Duration // wall-clock ceiling for a whole scrape run
	UserAgent      string
}

// MatcherConfig holds product-matching settings. Weights and thresholds
// are configuration rather than constants so tiers can be tuned per
// deployment without a code change.
type MatcherConfig struct {
	WeightEmbedding float64
	WeightVendor    float64
	WeightTitle     float64
	WeightCategory  float64
	WeightPrice     float64
	WeightSKU       float64

	ThresholdHigh   float64
	ThresholdMedium float64
	ThresholdLow    float64

	CandidatePoolSize int // max listings scored per catalog product
}

// AlertsConfig holds MAP-violation settings
type AlertsConfig struct {
	SeverePct       float64
	ModeratePct     float64
	MinorPct        float64
	EstimatedVolume int // placeholder sales-volume heuristic for impact math
}

// EmbeddingConfig holds embedding API settings
type EmbeddingConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	Timeout        time.Duration
	MaxRetries     int
	BatchSize      int           // products embedded per backfill batch
	BatchDelay     time.Duration // delay between backfill batches
	CacheTTL       time.Duration
	MaxInputLength int // truncation bound for embedding input text
}

// CatalogAPIConfig holds the external first-party catalog API settings
type CatalogAPIConfig struct {
	BaseURL  string
	APIKey   string
	PageSize int
	Timeout  time.Duration
}

// Load loads configuration from a TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with PRICEWATCH_ prefix (e.g., PRICEWATCH_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("PRICEWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
		},
		Scraper: ScraperConfig{
			MaxRetries:     v.GetInt("scraper.max_retries"),
			BackoffBase:    v.GetDuration("scraper.backoff_base"),
			RequestTimeout: v.GetDuration("scraper.request_timeout"),
			JobTimeout:     v.GetDuration("scraper.job_timeout"),
			UserAgent:      v.GetString("scraper.user_agent"),
		},
		Matcher: MatcherConfig{
			WeightEmbedding:   v.GetFloat64("matcher.weight_embedding"),
			WeightVendor:      v.GetFloat64("matcher.weight_vendor"),
			WeightTitle:       v.GetFloat64("matcher.weight_title"),
			WeightCategory:    v.GetFloat64("matcher.weight_category"),
			WeightPrice:       v.GetFloat64("matcher.weight_price"),
			WeightSKU:         v.GetFloat64("matcher.weight_sku"),
			ThresholdHigh:     v.GetFloat64("matcher.threshold_high"),
			ThresholdMedium:   v.GetFloat64("matcher.threshold_medium"),
			ThresholdLow:      v.GetFloat64("matcher.threshold_low"),
			CandidatePoolSize: v.GetInt("matcher.candidate_pool_size"),
		},
		Alerts: AlertsConfig{
			SeverePct:       v.GetFloat64("alerts.severe_pct"),
			ModeratePct:     v.GetFloat64("alerts.moderate_pct"),
			MinorPct:        v.GetFloat64("alerts.minor_pct"),
			EstimatedVolume: v.GetInt("alerts.estimated_volume"),
		},
		Embedding: EmbeddingConfig{
			BaseURL:        v.GetString("embedding.base_url"),
			APIKey:         v.GetString("embedding.api_key"),
			Model:          v.GetString("embedding.model"),
			Timeout:        v.GetDuration("embedding.timeout"),
			MaxRetries:     v.GetInt("embedding.max_retries"),
			BatchSize:      v.GetInt("embedding.batch_size"),
			BatchDelay:     v.GetDuration("embedding.batch_delay"),
			CacheTTL:       v.GetDuration("embedding.cache_ttl"),
			MaxInputLength: v.GetInt("embedding.max_input_length"),
		},
		CatalogAPI: CatalogAPIConfig{
			BaseURL:  v.GetString("catalog_api.base_url"),
			APIKey:   v.GetString("catalog_api.api_key"),
			PageSize: v.GetInt("catalog_api.page_size"),
			Timeout:  v.GetDuration("catalog_api.timeout"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "pricewatch-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "pricewatch"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.Scraper.MaxRetries == 0 {
		cfg.Scraper.MaxRetries = 3
	}
	if cfg.Scraper.BackoffBase == 0 {
		cfg.Scraper.BackoffBase = 5 * time.Second
	}
	if cfg.Scraper.RequestTimeout == 0 {
		cfg.Scraper.RequestTimeout = 30 * time.Second
	}
	if cfg.Scraper.JobTimeout == 0 {
		cfg.Scraper.JobTimeout = 30 * time.Minute
	}
	if cfg.Scraper.UserAgent == "" {
		cfg.Scraper.UserAgent = "Mozilla/5.0 (compatible; PriceWatchBot/1.0)"
	}
	if cfg.Matcher.WeightEmbedding == 0 && cfg.Matcher.WeightVendor == 0 &&
		cfg.Matcher.WeightTitle == 0 && cfg.Matcher.WeightCategory == 0 &&
		cfg.Matcher.WeightPrice == 0 {
		cfg.Matcher.WeightEmbedding = 0.40
		cfg.Matcher.WeightVendor = 0.24
		cfg.Matcher.WeightTitle = 0.18
		cfg.Matcher.WeightCategory = 0.12
		cfg.Matcher.WeightPrice = 0.06
		cfg.Matcher.WeightSKU = 0
	}
	if cfg.Matcher.ThresholdHigh == 0 {
		cfg.Matcher.ThresholdHigh = 0.80
	}
	if cfg.Matcher.ThresholdMedium == 0 {
		cfg.Matcher.ThresholdMedium = 0.70
	}
	if cfg.Matcher.ThresholdLow == 0 {
		cfg.Matcher.ThresholdLow = 0.60
	}
	if cfg.Matcher.CandidatePoolSize == 0 {
		cfg.Matcher.CandidatePoolSize = 100
	}
	if cfg.Alerts.SeverePct == 0 {
		cfg.Alerts.SeverePct = 0.20
	}
	if cfg.Alerts.ModeratePct == 0 {
		cfg.Alerts.ModeratePct = 0.10
	}
	if cfg.Alerts.MinorPct == 0 {
		cfg.Alerts.MinorPct = 0.05
	}
	if cfg.Alerts.EstimatedVolume == 0 {
		cfg.Alerts.EstimatedVolume = 10
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "https://api.openai.com"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = 60 * time.Second
	}
	if cfg.Embedding.MaxRetries == 0 {
		cfg.Embedding.MaxRetries = 3
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 10
	}
	if cfg.Embedding.BatchDelay == 0 {
		cfg.Embedding.BatchDelay = time.Second
	}
	if cfg.Embedding.CacheTTL == 0 {
		cfg.Embedding.CacheTTL = 24 * time.Hour
	}
	if cfg.Embedding.MaxInputLength == 0 {
		cfg.Embedding.MaxInputLength = 800
	}
	if cfg.CatalogAPI.PageSize == 0 {
		cfg.CatalogAPI.PageSize = 250
	}
	if cfg.CatalogAPI.Timeout == 0 {
		cfg.CatalogAPI.Timeout = 30 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	weightSum := c.Matcher.WeightEmbedding + c.Matcher.WeightVendor + c.Matcher.WeightTitle +
		c.Matcher.WeightCategory + c.Matcher.WeightPrice + c.Matcher.WeightSKU
	if weightSum < 1.0-1e-9 || weightSum > 1.0+1e-9 {
		return fmt.Errorf("matcher weights must sum to 1.0, got %f", weightSum)
	}
	if !(c.Matcher.ThresholdLow > 0 && c.Matcher.ThresholdLow < c.Matcher.ThresholdMedium &&
		c.Matcher.ThresholdMedium < c.Matcher.ThresholdHigh && c.Matcher.ThresholdHigh <= 1) {
		return fmt.Errorf("matcher thresholds must satisfy 0 < low < medium < high <= 1")
	}
	if !(c.Alerts.MinorPct > 0 && c.Alerts.MinorPct < c.Alerts.ModeratePct &&
		c.Alerts.ModeratePct < c.Alerts.SeverePct && c.Alerts.SeverePct < 1) {
		return fmt.Errorf("alert severity thresholds must satisfy 0 < minor < moderate < severe < 1")
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("embedding.api_key is required in production")
		}
		if c.CatalogAPI.BaseURL == "" {
			return fmt.Errorf("catalog_api.base_url is required in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis address, or empty when Redis is not configured
func (r *RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
