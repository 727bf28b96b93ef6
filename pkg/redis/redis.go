package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prohmpiriya/residence-gate/pkg/retry"
)

// Nil is returned by Get when the key does not exist
var Nil = redis.Nil

// Config holds Redis connection configuration
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Connect is the retry policy for the initial ping
	Connect retry.Config
}

// DefaultConfig returns default Redis configuration
func DefaultConfig() *Config {
	return &Config{
		Host:         "localhost",
		Port:         6379,
		PoolSize:     20,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		Connect:      retry.Config{MaxAttempts: 3, InitialInterval: 500 * time.Millisecond, MaxInterval: 2 * time.Second, Multiplier: 2},
	}
}

// Addr returns the Redis address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Client wraps redis.Client with a named Lua script registry
type Client struct {
	client  *redis.Client
	scripts sync.Map // name -> *redis.Script
}

// NewClient connects and pings, retrying transient dial failures
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	err := retry.Do(ctx, cfg.Connect, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr(), err)
	}

	return Wrap(client), nil
}

// Wrap adopts an existing go-redis client
func Wrap(client *redis.Client) *Client {
	return &Client{client: client}
}

// Raw returns the underlying redis.Client
func (c *Client) Raw() *redis.Client {
	return c.client
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck pings with a short timeout
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// RegisterScript remembers a Lua script under a name and returns it
func (c *Client) RegisterScript(name, src string) *redis.Script {
	s, _ := c.scripts.LoadOrStore(name, redis.NewScript(src))
	return s.(*redis.Script)
}

// LoadScripts pre-loads every registered script into the server cache
func (c *Client) LoadScripts(ctx context.Context) error {
	var firstErr error
	c.scripts.Range(func(key, value any) bool {
		if err := value.(*redis.Script).Load(ctx, c.client).Err(); err != nil {
			firstErr = fmt.Errorf("failed to load script %s: %w", key, err)
			return false
		}
		return true
	})
	return firstErr
}

// Run executes a registered script by name; EVALSHA falls back to EVAL on NOSCRIPT
func (c *Client) Run(ctx context.Context, name string, keys []string, args ...interface{}) *redis.Cmd {
	s, ok := c.scripts.Load(name)
	if !ok {
		cmd := redis.NewCmd(ctx)
		cmd.SetErr(fmt.Errorf("script %s not registered", name))
		return cmd
	}
	return s.(*redis.Script).Run(ctx, c.client, keys, args...)
}

// Get gets a value by key
func (c *Client) Get(ctx context.Context, key string) *redis.StringCmd {
	return c.client.Get(ctx, key)
}

// Set sets a value with expiration
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	return c.client.Set(ctx, key, value, expiration)
}

// SetNX sets a value only if the key does not exist
func (c *Client) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	return c.client.SetNX(ctx, key, value, expiration)
}

// Del deletes keys
func (c *Client) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	return c.client.Del(ctx, keys...)
}

