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
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Log          LogConfig
	HTTP         HTTPConfig
	Swagger      SwaggerConfig
	Telemetry    TelemetryConfig
	Stripe       StripeConfig
	Sendcloud    SendcloudConfig
	Search       SearchConfig
	Notification NotificationConfig
	Mailchimp    MailchimpConfig
	Storage      StorageConfig
	Printing     PrintingConfig
	Admin        AdminConfig
	Store        StoreConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// IsProduction reports whether the app runs in production
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
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
	MigrationsPath  string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                string
	AccessTokenExpiration time.Duration
	Issuer                string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout           time.Duration
	WriteTimeout          time.Duration
	IdleTimeout           time.Duration
	ShutdownTimeout       time.Duration
	MaxHeaderBytes        int
	MaxBodySize           int64
	WebhookMaxBodySize    int64
	RateLimitEnabled      bool
	RateLimitRequests     int
	RateLimitWindow       time.Duration
	AuthRateLimitEnabled  bool          // Stricter limit on token endpoints
	AuthRateLimitRequests int           // Max auth attempts (default: 5)
	AuthRateLimitWindow   time.Duration // Auth rate limit window (default: 1 minute)
	CORSAllowOrigins      []string
	CORSAllowMethods      []string
	CORSAllowHeaders      []string
	TrustedProxies        []string
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled     bool     // Whether to enable Swagger endpoint
	RequireAuth bool     // Require authentication to access Swagger
	AllowedIPs  []string // IP whitelist (empty = allow all)
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool
	// Database tracing options
	DBTraceEnabled    bool          // Enable database query tracing (otelgorm)
	DBLogFullSQL      bool          // Log full SQL statements (dev only)
	DBSlowQueryThresh time.Duration // Slow query threshold for warnings (default: 200ms)
	// Continuous profiling
	ProfilingEnabled  bool
	ProfilingEndpoint string // Pyroscope server address
}

// StripeConfig holds Stripe credentials
type StripeConfig struct {
	SecretKey      string
	PublishableKey string
	WebhookSecret  string
	// AutomaticPaymentMethods lets Stripe pick the methods enabled in the dashboard
	AutomaticPaymentMethods bool
	// IdempotencyTTL is how long processed webhook events are remembered
	IdempotencyTTL time.Duration
}

// Enabled reports whether Stripe is configured
func (s StripeConfig) Enabled() bool {
	return s.SecretKey != ""
}

// SendcloudConfig holds Sendcloud API settings
type SendcloudConfig struct {
	Enabled   bool
	BaseURL   string
	PublicKey string
	SecretKey string
	Timeout   time.Duration
	// RateLimit is the max outbound requests per second
	RateLimit float64
	// SenderAddressID is the Sendcloud sender address used for parcels
	SenderAddressID int
	// FromCountry is the origin country for shipping method lookups
	FromCountry string
	// FlatRates maps a shipping method id to a fixed price shown at checkout
	FlatRates map[string]string
	// OptionsCacheTTL bounds how long shipping method lookups are cached
	OptionsCacheTTL time.Duration
}

// SearchConfig holds MeiliSearch settings
type SearchConfig struct {
	Enabled            bool
	Host               string
	APIKey             string
	IndexName          string
	ReindexBatchSize   int
	ReindexConcurrency int
	Timeout            time.Duration
}

// Notification provider names
const (
	NotificationProviderResend    = "resend"
	NotificationProviderSendGrid  = "sendgrid"
	NotificationProviderMailchimp = "mailchimp"
	NotificationProviderLog       = "log"
)

// NotificationConfig holds transactional email settings
type NotificationConfig struct {
	Provider       string
	FromEmail      string
	FromName       string
	ResendAPIKey   string
	SendGridAPIKey string
	// MailchimpKey mirrors mailchimp.transactional_key for provider detection
	MailchimpKey string
}

// ResolveProvider returns the explicit provider or the first one with credentials
func (n NotificationConfig) ResolveProvider() string {
	if n.Provider != "" {
		return strings.ToLower(n.Provider)
	}
	switch {
	case n.ResendAPIKey != "":
		return NotificationProviderResend
	case n.SendGridAPIKey != "":
		return NotificationProviderSendGrid
	case n.MailchimpKey != "":
		return NotificationProviderMailchimp
	}
	return NotificationProviderLog
}

// MailchimpConfig holds Mailchimp marketing and transactional settings
type MailchimpConfig struct {
	APIKey           string
	ListID           string
	TransactionalKey string
	Timeout          time.Duration
	// ResyncInterval is how often pending_sync subscriptions are retried. Negative disables it.
	ResyncInterval time.Duration
}

// MarketingEnabled reports whether newsletter sync is configured
func (m MailchimpConfig) MarketingEnabled() bool {
	return m.APIKey != "" && m.ListID != ""
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Enabled           bool
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
}

// PrintingConfig holds invoice rendering settings
type PrintingConfig struct {
	Enabled    bool
	ChromePath string
	Timeout    time.Duration
}

// AdminConfig holds the first admin account created on an empty database
type AdminConfig struct {
	BootstrapEmail    string
	BootstrapPassword string
}

// StoreConfig holds storefront-wide settings
type StoreConfig struct {
	Name     string
	Currency string
	URL      string
	Locale   string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with STORE_ prefix (e.g., STORE_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("STORE")
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
			MigrationsPath:  v.GetString("database.migrations_path"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
			Issuer:                v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:           v.GetDuration("http.read_timeout"),
			WriteTimeout:          v.GetDuration("http.write_timeout"),
			IdleTimeout:           v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:       v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:        v.GetInt("http.max_header_bytes"),
			MaxBodySize:           v.GetInt64("http.max_body_size"),
			WebhookMaxBodySize:    v.GetInt64("http.webhook_max_body_size"),
			RateLimitEnabled:      v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests:     v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:       v.GetDuration("http.rate_limit_window"),
			AuthRateLimitEnabled:  v.GetBool("http.auth_rate_limit_enabled"),
			AuthRateLimitRequests: v.GetInt("http.auth_rate_limit_requests"),
			AuthRateLimitWindow:   v.GetDuration("http.auth_rate_limit_window"),
			CORSAllowOrigins:      v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:      v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:      v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:        v.GetStringSlice("http.trusted_proxies"),
		},
		Swagger: SwaggerConfig{
			Enabled:     v.GetBool("swagger.enabled"),
			RequireAuth: v.GetBool("swagger.require_auth"),
			AllowedIPs:  v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			ProfilingEndpoint: v.GetString("telemetry.profiling_endpoint"),
		},
		Stripe: StripeConfig{
			SecretKey:               v.GetString("stripe.secret_key"),
			PublishableKey:          v.GetString("stripe.publishable_key"),
			WebhookSecret:           v.GetString("stripe.webhook_secret"),
			AutomaticPaymentMethods: !v.IsSet("stripe.automatic_payment_methods") || v.GetBool("stripe.automatic_payment_methods"),
			IdempotencyTTL:          v.GetDuration("stripe.idempotency_ttl"),
		},
		Sendcloud: SendcloudConfig{
			Enabled:         v.GetBool("sendcloud.enabled"),
			BaseURL:         v.GetString("sendcloud.base_url"),
			PublicKey:       v.GetString("sendcloud.public_key"),
			SecretKey:       v.GetString("sendcloud.secret_key"),
			Timeout:         v.GetDuration("sendcloud.timeout"),
			RateLimit:       v.GetFloat64("sendcloud.rate_limit"),
			SenderAddressID: v.GetInt("sendcloud.sender_address_id"),
			FromCountry:     v.GetString("sendcloud.from_country"),
			FlatRates:       v.GetStringMapString("sendcloud.flat_rates"),
			OptionsCacheTTL: v.GetDuration("sendcloud.options_cache_ttl"),
		},
		Search: SearchConfig{
			Enabled:            v.GetBool("search.enabled"),
			Host:               v.GetString("search.host"),
			APIKey:             v.GetString("search.api_key"),
			IndexName:          v.GetString("search.index_name"),
			ReindexBatchSize:   v.GetInt("search.reindex_batch_size"),
			ReindexConcurrency: v.GetInt("search.reindex_concurrency"),
			Timeout:            v.GetDuration("search.timeout"),
		},
		Notification: NotificationConfig{
			Provider:       v.GetString("notification.provider"),
			FromEmail:      v.GetString("notification.from_email"),
			FromName:       v.GetString("notification.from_name"),
			ResendAPIKey:   v.GetString("notification.resend_api_key"),
			SendGridAPIKey: v.GetString("notification.sendgrid_api_key"),
		},
		Mailchimp: MailchimpConfig{
			APIKey:           v.GetString("mailchimp.api_key"),
			ListID:           v.GetString("mailchimp.list_id"),
			TransactionalKey: v.GetString("mailchimp.transactional_key"),
			Timeout:          v.GetDuration("mailchimp.timeout"),
			ResyncInterval:   v.GetDuration("mailchimp.resync_interval"),
		},
		Storage: StorageConfig{
			Enabled:           v.GetBool("storage.enabled"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
		},
		Printing: PrintingConfig{
			Enabled:    v.GetBool("printing.enabled"),
			ChromePath: v.GetString("printing.chrome_path"),
			Timeout:    v.GetDuration("printing.timeout"),
		},
		Admin: AdminConfig{
			BootstrapEmail:    v.GetString("admin.bootstrap_email"),
			BootstrapPassword: v.GetString("admin.bootstrap_password"),
		},
		Store: StoreConfig{
			Name:     v.GetString("store.name"),
			Currency: v.GetString("store.currency"),
			URL:      v.GetString("store.url"),
			Locale:   v.GetString("store.locale"),
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
		cfg.App.Name = "storefront-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "9000"
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
		cfg.Database.DBName = "storefront"
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
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = "migrations"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 24 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "storefront-backend"
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
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.WebhookMaxBodySize == 0 {
		cfg.HTTP.WebhookMaxBodySize = 64 << 10 // 64KB, Stripe's documented maximum
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.HTTP.AuthRateLimitRequests == 0 {
		cfg.HTTP.AuthRateLimitRequests = 5
	}
	if cfg.HTTP.AuthRateLimitWindow == 0 {
		cfg.HTTP.AuthRateLimitWindow = time.Minute
	}
	// No default origins: cross-origin requests are refused until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "storefront-backend"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Telemetry.ProfilingEndpoint == "" {
		cfg.Telemetry.ProfilingEndpoint = "http://localhost:4040"
	}
	if cfg.Stripe.IdempotencyTTL == 0 {
		cfg.Stripe.IdempotencyTTL = 72 * time.Hour
	}
	if cfg.Sendcloud.BaseURL == "" {
		cfg.Sendcloud.BaseURL = "https://panel.sendcloud.sc/api/v2"
	}
	if cfg.Sendcloud.Timeout == 0 {
		cfg.Sendcloud.Timeout = 20 * time.Second
	}
	if cfg.Sendcloud.RateLimit == 0 {
		cfg.Sendcloud.RateLimit = 5
	}
	if cfg.Sendcloud.FromCountry == "" {
		cfg.Sendcloud.FromCountry = "DE"
	}
	if cfg.Sendcloud.OptionsCacheTTL == 0 {
		cfg.Sendcloud.OptionsCacheTTL = 10 * time.Minute
	}
	if cfg.Search.Host == "" {
		cfg.Search.Host = "http://localhost:7700"
	}
	if cfg.Search.IndexName == "" {
		cfg.Search.IndexName = "products"
	}
	if cfg.Search.ReindexBatchSize == 0 {
		cfg.Search.ReindexBatchSize = 200
	}
	if cfg.Search.ReindexConcurrency == 0 {
		cfg.Search.ReindexConcurrency = 4
	}
	if cfg.Search.Timeout == 0 {
		cfg.Search.Timeout = 5 * time.Second
	}
	if cfg.Mailchimp.Timeout == 0 {
		cfg.Mailchimp.Timeout = 10 * time.Second
	}
	if cfg.Mailchimp.ResyncInterval == 0 {
		cfg.Mailchimp.ResyncInterval = 15 * time.Minute
	}
	cfg.Notification.MailchimpKey = cfg.Mailchimp.TransactionalKey
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "storefront-documents"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}
	if cfg.Printing.Timeout == 0 {
		cfg.Printing.Timeout = 30 * time.Second
	}
	if cfg.Store.Name == "" {
		cfg.Store.Name = "Storefront"
	}
	if cfg.Notification.FromName == "" {
		cfg.Notification.FromName = cfg.Store.Name
	}
	if cfg.Store.Currency == "" {
		cfg.Store.Currency = "eur"
	}
	cfg.Store.Currency = strings.ToLower(cfg.Store.Currency)
	if cfg.Store.URL == "" {
		cfg.Store.URL = "http://localhost:8000"
	}
	if cfg.Store.Locale == "" {
		cfg.Store.Locale = "de-DE"
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

	switch c.Notification.ResolveProvider() {
	case NotificationProviderResend, NotificationProviderSendGrid, NotificationProviderMailchimp, NotificationProviderLog:
	default:
		return fmt.Errorf("notification.provider %q is not supported", c.Notification.Provider)
	}

	if c.Sendcloud.Enabled && (c.Sendcloud.PublicKey == "" || c.Sendcloud.SecretKey == "") {
		return fmt.Errorf("sendcloud.public_key and sendcloud.secret_key are required when sendcloud is enabled")
	}
	if c.Storage.Enabled && (c.Storage.AccessKey == "" || c.Storage.SecretKey == "") {
		return fmt.Errorf("storage.access_key and storage.secret_key are required when storage is enabled")
	}

	if c.App.IsProduction() {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Stripe.Enabled() && c.Stripe.WebhookSecret == "" {
			return fmt.Errorf("stripe.webhook_secret is required in production when stripe is enabled")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Swagger.Enabled {
			if !c.Swagger.RequireAuth && len(c.Swagger.AllowedIPs) == 0 {
				return fmt.Errorf("swagger endpoint must be disabled, require authentication, or have IP restriction in production")
			}
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
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
