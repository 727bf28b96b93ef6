package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ErrExhausted is returned when every attempt failed
var ErrExhausted = errors.New("retry attempts exhausted")

// Config controls exponential backoff
type Config struct {
	// MaxAttempts counts the first call; 1 means no retries
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	// JitterFactor spreads each wait by ±factor
	JitterFactor float64
	// OnRetry is called before each wait
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultConfig suits calls to Redis, Kafka and Postgres: 100ms, 200ms, 400ms
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     4,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

func (c Config) normalized() Config {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = 100 * time.Millisecond
	}
	if c.MaxInterval < c.InitialInterval {
		c.MaxInterval = c.InitialInterval
	}
	if c.Multiplier < 1 {
		c.Multiplier = 2.0
	}
	c.JitterFactor = math.Max(0, math.Min(1, c.JitterFactor))
	return c
}

// Backoff returns the wait after the given zero-based failed attempt
func (c Config) Backoff(attempt int) time.Duration {
	c = c.normalized()
	d := float64(c.InitialInterval) * math.Pow(c.Multiplier, float64(attempt))
	if c.JitterFactor > 0 {
		d += (rand.Float64()*2 - 1) * d * c.JitterFactor
	}
	if d > float64(c.MaxInterval) {
		d = float64(c.MaxInterval)
	}
	if d <= 0 {
		d = float64(c.InitialInterval)
	}
	return time.Duration(d)
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent stops retrying and returns err unchanged to the caller of Do
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Do runs op until it succeeds, returns a permanent error, the context ends
// or MaxAttempts is reached. Exhaustion wraps both ErrExhausted and the last error.
func Do(ctx context.Context, cfg Config, op func(ctx context.Context) error) error {
	cfg = cfg.normalized()

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return fmt.Errorf("%w (last error: %v)", err, lastErr)
			}
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		var p *permanentError
		if errors.As(err, &p) {
			return p.err
		}
		lastErr = err

		if attempt == cfg.MaxAttempts-1 {
			break
		}

		wait := cfg.Backoff(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr)
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, cfg.MaxAttempts, lastErr)
}
