package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "residence-gate-dev-secret-change-me"

// Config holds all application configuration
type Config struct {
	App           AppConfig      `mapstructure:"app"`
	Server        ServerConfig   `mapstructure:"server"`
	Redis         RedisConfig    `mapstructure:"redis"`
	Kafka         KafkaConfig    `mapstructure:"kafka"`
	AuditDatabase DatabaseConfig `mapstructure:"audit_database"`
	JWT           JWTConfig      `mapstructure:"jwt"`
	OTel          OTelConfig     `mapstructure:"otel"`
	Visitor       VisitorConfig  `mapstructure:"visitor"`
	Booking       BookingConfig  `mapstructure:"booking"`
	Payment       PaymentConfig  `mapstructure:"payment"`
	Worker        WorkerConfig   `mapstructure:"worker"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development, staging, production
	LogLevel    string `mapstructure:"log_level"`
	Version     string `mapstructure:"version"`
	SeedDemo    bool   `mapstructure:"seed_demo"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// Addr returns the listen address
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Password       string        `mapstructure:"password"`
	DB             int           `mapstructure:"db"`
	PoolSize       int           `mapstructure:"pool_size"`
	MinIdleConns   int           `mapstructure:"min_idle_conns"`
	DialTimeout    time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`
}

// Addr returns the Redis address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// KafkaConfig holds Kafka/Redpanda connection settings
type KafkaConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Brokers  []string `mapstructure:"brokers"`
	ClientID string   `mapstructure:"client_id"`
	Topic    string   `mapstructure:"topic"`

	// Events are delivered by a background worker; a full queue drops new events
	PublishQueueSize int           `mapstructure:"publish_queue_size"`
	PublishTimeout   time.Duration `mapstructure:"publish_timeout"`
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret         string        `mapstructure:"secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	Issuer         string        `mapstructure:"issuer"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	ServiceName   string  `mapstructure:"service_name"`
	CollectorAddr string  `mapstructure:"collector_addr"`
	SampleRatio   float64 `mapstructure:"sample_ratio"`
}

// VisitorConfig holds visitor pass settings
type VisitorConfig struct {
	PassValidity   time.Duration `mapstructure:"pass_validity"`
	MaxImportBytes int64         `mapstructure:"max_import_bytes"`
}

// BookingConfig holds the daily booking window
type BookingConfig struct {
	OpenTime  string `mapstructure:"open_time"`
	CloseTime string `mapstructure:"close_time"`
}

// PaymentConfig holds the in-process payment gateway settings
type PaymentConfig struct {
	Currency        string        `mapstructure:"currency"`
	MockSuccessRate float64       `mapstructure:"mock_success_rate"`
	MockDelay       time.Duration `mapstructure:"mock_delay"`
}

// WorkerConfig holds background worker settings
type WorkerConfig struct {
	ExpiryEnabled bool          `mapstructure:"expiry_enabled"`
	ScanInterval  time.Duration `mapstructure:"scan_interval"`
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// A missing .env is fine; environment variables still apply
	_ = v.ReadInConfig()

	return load(v)
}

// LoadWithPath loads configuration from a specific path
func LoadWithPath(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{}
	bindConfig(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("APP_NAME", "residence-gate")
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("APP_LOG_LEVEL", "info")
	v.SetDefault("APP_VERSION", "1.0.0")
	v.SetDefault("APP_SEED_DEMO", true)

	// Server defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "60s")
	v.SetDefault("SERVER_CORS_ORIGINS", "*")

	// Redis defaults
	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 20)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 2)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")
	v.SetDefault("REDIS_IDEMPOTENCY_TTL", "24h")

	// Kafka defaults
	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_CLIENT_ID", "residence-gate")
	v.SetDefault("KAFKA_TOPIC", "residence-events")
	v.SetDefault("KAFKA_PUBLISH_QUEUE_SIZE", 1024)
	v.SetDefault("KAFKA_PUBLISH_TIMEOUT", "30s")

	// Audit database defaults
	v.SetDefault("AUDIT_DATABASE_ENABLED", false)
	v.SetDefault("AUDIT_DATABASE_HOST", "localhost")
	v.SetDefault("AUDIT_DATABASE_PORT", 5432)
	v.SetDefault("AUDIT_DATABASE_USER", "postgres")
	v.SetDefault("AUDIT_DATABASE_PASSWORD", "postgres")
	v.SetDefault("AUDIT_DATABASE_DBNAME", "residence_audit")
	v.SetDefault("AUDIT_DATABASE_SSLMODE", "disable")
	v.SetDefault("AUDIT_DATABASE_MAX_CONNS", 10)
	v.SetDefault("AUDIT_DATABASE_MIN_CONNS", 1)
	v.SetDefault("AUDIT_DATABASE_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("AUDIT_DATABASE_CONN_MAX_IDLE_TIME", "30m")

	// JWT defaults
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", "12h")
	v.SetDefault("JWT_ISSUER", "residence-gate")

	// OTel defaults
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "residence-gate")
	v.SetDefault("OTEL_COLLECTOR_ADDR", "localhost:4317")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)

	// Domain defaults
	v.SetDefault("VISITOR_PASS_VALIDITY", "24h")
	v.SetDefault("VISITOR_MAX_IMPORT_BYTES", 5<<20)
	v.SetDefault("BOOKING_OPEN_TIME", "06:00")
	v.SetDefault("BOOKING_CLOSE_TIME", "22:00")
	v.SetDefault("PAYMENT_CURRENCY", "USD")
	v.SetDefault("PAYMENT_MOCK_SUCCESS_RATE", 1.0)
	v.SetDefault("PAYMENT_MOCK_DELAY", "0s")
	v.SetDefault("WORKER_EXPIRY_ENABLED", true)
	v.SetDefault("WORKER_SCAN_INTERVAL", "1m")
}

func bindConfig(v *viper.Viper, cfg *Config) {
	// App
	cfg.App.Name = v.GetString("APP_NAME")
	cfg.App.Environment = v.GetString("APP_ENVIRONMENT")
	cfg.App.LogLevel = v.GetString("APP_LOG_LEVEL")
	cfg.App.Version = v.GetString("APP_VERSION")
	cfg.App.SeedDemo = v.GetBool("APP_SEED_DEMO")

	// Server
	cfg.Server.Host = v.GetString("SERVER_HOST")
	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.ReadTimeout = v.GetDuration("SERVER_READ_TIMEOUT")
	cfg.Server.WriteTimeout = v.GetDuration("SERVER_WRITE_TIMEOUT")
	cfg.Server.IdleTimeout = v.GetDuration("SERVER_IDLE_TIMEOUT")
	cfg.Server.CORSOrigins = splitList(v.GetString("SERVER_CORS_ORIGINS"))

	// Redis
	cfg.Redis.Enabled = v.GetBool("REDIS_ENABLED")
	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetInt("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	cfg.Redis.MinIdleConns = v.GetInt("REDIS_MIN_IDLE_CONNS")
	cfg.Redis.DialTimeout = v.GetDuration("REDIS_DIAL_TIMEOUT")
	cfg.Redis.ReadTimeout = v.GetDuration("REDIS_READ_TIMEOUT")
	cfg.Redis.WriteTimeout = v.GetDuration("REDIS_WRITE_TIMEOUT")
	cfg.Redis.IdempotencyTTL = v.GetDuration("REDIS_IDEMPOTENCY_TTL")

	// Kafka
	cfg.Kafka.Enabled = v.GetBool("KAFKA_ENABLED")
	cfg.Kafka.Brokers = splitList(v.GetString("KAFKA_BROKERS"))
	cfg.Kafka.ClientID = v.GetString("KAFKA_CLIENT_ID")
	cfg.Kafka.Topic = v.GetString("KAFKA_TOPIC")
	cfg.Kafka.PublishQueueSize = v.GetInt("KAFKA_PUBLISH_QUEUE_SIZE")
	cfg.Kafka.PublishTimeout = v.GetDuration("KAFKA_PUBLISH_TIMEOUT")

	// Audit database
	cfg.AuditDatabase.Enabled = v.GetBool("AUDIT_DATABASE_ENABLED")
	cfg.AuditDatabase.Host = v.GetString("AUDIT_DATABASE_HOST")
	cfg.AuditDatabase.Port = v.GetInt("AUDIT_DATABASE_PORT")
	cfg.AuditDatabase.User = v.GetString("AUDIT_DATABASE_USER")
	cfg.AuditDatabase.Password = v.GetString("AUDIT_DATABASE_PASSWORD")
	cfg.AuditDatabase.DBName = v.GetString("AUDIT_DATABASE_DBNAME")
	cfg.AuditDatabase.SSLMode = v.GetString("AUDIT_DATABASE_SSLMODE")
	cfg.AuditDatabase.MaxConns = v.GetInt32("AUDIT_DATABASE_MAX_CONNS")
	cfg.AuditDatabase.MinConns = v.GetInt32("AUDIT_DATABASE_MIN_CONNS")
	cfg.AuditDatabase.ConnMaxLifetime = v.GetDuration("AUDIT_DATABASE_CONN_MAX_LIFETIME")
	cfg.AuditDatabase.ConnMaxIdleTime = v.GetDuration("AUDIT_DATABASE_CONN_MAX_IDLE_TIME")

	// JWT
	cfg.JWT.Secret = v.GetString("JWT_SECRET")
	cfg.JWT.AccessTokenTTL = v.GetDuration("JWT_ACCESS_TOKEN_TTL")
	cfg.JWT.Issuer = v.GetString("JWT_ISSUER")

	// OTel
	cfg.OTel.Enabled = v.GetBool("OTEL_ENABLED")
	cfg.OTel.ServiceName = v.GetString("OTEL_SERVICE_NAME")
	cfg.OTel.CollectorAddr = v.GetString("OTEL_COLLECTOR_ADDR")
	cfg.OTel.SampleRatio = v.GetFloat64("OTEL_SAMPLE_RATIO")

	// Domain
	cfg.Visitor.PassValidity = v.GetDuration("VISITOR_PASS_VALIDITY")
	cfg.Visitor.MaxImportBytes = v.GetInt64("VISITOR_MAX_IMPORT_BYTES")
	cfg.Booking.OpenTime = v.GetString("BOOKING_OPEN_TIME")
	cfg.Booking.CloseTime = v.GetString("BOOKING_CLOSE_TIME")
	cfg.Payment.Currency = v.GetString("PAYMENT_CURRENCY")
	cfg.Payment.MockSuccessRate = v.GetFloat64("PAYMENT_MOCK_SUCCESS_RATE")
	cfg.Payment.MockDelay = v.GetDuration("PAYMENT_MOCK_DELAY")
	cfg.Worker.ExpiryEnabled = v.GetBool("WORKER_EXPIRY_ENABLED")
	cfg.Worker.ScanInterval = v.GetDuration("WORKER_SCAN_INTERVAL")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.IsProduction() && c.JWT.Secret == defaultJWTSecret {
		return fmt.Errorf("JWT secret must be changed in production")
	}

	if c.Visitor.PassValidity <= 0 {
		return fmt.Errorf("visitor pass validity must be positive")
	}

	open, err := time.Parse("15:04", c.Booking.OpenTime)
	if err != nil {
		return fmt.Errorf("invalid booking open time %q", c.Booking.OpenTime)
	}
	closing, err := time.Parse("15:04", c.Booking.CloseTime)
	if err != nil {
		return fmt.Errorf("invalid booking close time %q", c.Booking.CloseTime)
	}
	if !closing.After(open) {
		return fmt.Errorf("booking close time must be after open time")
	}

	if c.Payment.MockSuccessRate < 0 || c.Payment.MockSuccessRate > 1 {
		return fmt.Errorf("payment mock success rate must be between 0 and 1")
	}

	if c.Worker.ExpiryEnabled && c.Worker.ScanInterval <= 0 {
		return fmt.Errorf("worker scan interval must be positive")
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when Kafka is enabled")
	}

	if c.AuditDatabase.Enabled {
		if c.AuditDatabase.Host == "" {
			return fmt.Errorf("AUDIT_DATABASE_HOST is required")
		}
		if c.AuditDatabase.DBName == "" {
			return fmt.Errorf("AUDIT_DATABASE_DBNAME is required")
		}
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
