package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadWithPath_Defaults(t *testing.T) {
	cfg, err := LoadWithPath(writeEnvFile(t, "APP_NAME=residence-gate\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 24*time.Hour, cfg.Visitor.PassValidity)
	assert.Equal(t, int64(5<<20), cfg.Visitor.MaxImportBytes)
	assert.Equal(t, "06:00", cfg.Booking.OpenTime)
	assert.Equal(t, "22:00", cfg.Booking.CloseTime)
	assert.Equal(t, "residence-events", cfg.Kafka.Topic)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 1024, cfg.Kafka.PublishQueueSize)
	assert.Equal(t, 30*time.Second, cfg.Kafka.PublishTimeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
	assert.False(t, cfg.AuditDatabase.Enabled)
	assert.Equal(t, "USD", cfg.Payment.Currency)
	assert.Equal(t, 1.0, cfg.Payment.MockSuccessRate)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadWithPath_FileValues(t *testing.T) {
	path := writeEnvFile(t, `SERVER_PORT=9090
VISITOR_PASS_VALIDITY=48h
KAFKA_ENABLED=true
KAFKA_BROKERS=k1:9092, k2:9092
BOOKING_OPEN_TIME=07:30
`)
	cfg, err := LoadWithPath(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, 48*time.Hour, cfg.Visitor.PassValidity)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "07:30", cfg.Booking.OpenTime)
}

func TestLoadWithPath_EnvOverridesFile(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	cfg, err := LoadWithPath(writeEnvFile(t, "SERVER_PORT=9090\n"))
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadWithPath_MissingFile(t *testing.T) {
	_, err := LoadWithPath(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:     AppConfig{Name: "residence-gate", Environment: "development"},
			Server:  ServerConfig{Port: 8080},
			JWT:     JWTConfig{Secret: "s3cret"},
			Visitor: VisitorConfig{PassValidity: time.Hour},
			Booking: BookingConfig{OpenTime: "06:00", CloseTime: "22:00"},
			Worker:  WorkerConfig{ExpiryEnabled: true, ScanInterval: time.Minute},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing name", func(c *Config) { c.App.Name = "" }, true},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }, true},
		{"default secret in production", func(c *Config) {
			c.App.Environment = "production"
			c.JWT.Secret = defaultJWTSecret
		}, true},
		{"zero pass validity", func(c *Config) { c.Visitor.PassValidity = 0 }, true},
		{"close before open", func(c *Config) { c.Booking.CloseTime = "05:00" }, true},
		{"malformed open time", func(c *Config) { c.Booking.OpenTime = "6am" }, true},
		{"zero scan interval", func(c *Config) { c.Worker.ScanInterval = 0 }, true},
		{"zero scan interval with worker off", func(c *Config) {
			c.Worker.ExpiryEnabled = false
			c.Worker.ScanInterval = 0
		}, false},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true }, true},
		{"success rate above one", func(c *Config) { c.Payment.MockSuccessRate = 1.5 }, true},
		{"audit db without host", func(c *Config) {
			c.AuditDatabase = DatabaseConfig{Enabled: true, DBName: "audit"}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "audit", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=audit sslmode=disable", d.DSN())
}
