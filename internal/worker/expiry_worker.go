package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/prohmpiriya/residence-gate/pkg/logger"
)

// VisitorExpirer promotes past-validity visitor passes to expired
type VisitorExpirer interface {
	ExpireStale(ctx context.Context) (int, error)
}

// ExpiryWorkerConfig contains configuration for the expiry worker
type ExpiryWorkerConfig struct {
	// ScanInterval is the interval between sweeps for stale passes
	ScanInterval time.Duration
}

// DefaultExpiryWorkerConfig returns default configuration
func DefaultExpiryWorkerConfig() *ExpiryWorkerConfig {
	return &ExpiryWorkerConfig{
		ScanInterval: time.Minute,
	}
}

// ExpiryWorker periodically expires stale visitor passes. Reads already
// expire lazily; the sweep keeps listings and occupancy current between reads.
type ExpiryWorker struct {
	visitors VisitorExpirer
	config   *ExpiryWorkerConfig
	log      *logger.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool

	// Stats
	totalExpired     int64
	totalFailures    int64
	lastScanTime     time.Time
	lastExpiredCount int
}

// NewExpiryWorker creates a new expiry worker
func NewExpiryWorker(visitors VisitorExpirer, config *ExpiryWorkerConfig) *ExpiryWorker {
	if config == nil || config.ScanInterval <= 0 {
		config = DefaultExpiryWorkerConfig()
	}
	return &ExpiryWorker{
		visitors: visitors,
		config:   config,
		log:      logger.Get().Named("expiry-worker"),
		stopCh:   make(chan struct{}),
	}
}

// Start starts the expiry worker
func (w *ExpiryWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("expiry worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting expiry worker", zap.Duration("scan_interval", w.config.ScanInterval))

	w.wg.Add(1)
	go w.run(ctx)
	return nil
}

// Stop stops the expiry worker and waits for an in-flight sweep
func (w *ExpiryWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping expiry worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Expiry worker stopped")
}

func (w *ExpiryWorker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.ScanInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	n, err := w.visitors.ExpireStale(ctx)

	w.mu.Lock()
	w.lastScanTime = time.Now()
	if err != nil {
		w.totalFailures++
	} else {
		w.lastExpiredCount = n
		w.totalExpired += int64(n)
	}
	w.mu.Unlock()

	if err != nil {
		w.log.Error("Failed to expire stale visitor passes", zap.Error(err))
		return
	}
	if n > 0 {
		w.log.Info("Expired stale visitor passes", zap.Int("count", n))
	}
}

// GetStats returns worker statistics
func (w *ExpiryWorker) GetStats() *ExpiryWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &ExpiryWorkerStats{
		IsRunning:        w.running,
		TotalExpired:     w.totalExpired,
		TotalFailures:    w.totalFailures,
		LastScanTime:     w.lastScanTime,
		LastExpiredCount: w.lastExpiredCount,
	}
}

// ExpiryWorkerStats contains worker statistics
type ExpiryWorkerStats struct {
	IsRunning        bool      `json:"is_running"`
	TotalExpired     int64     `json:"total_expired"`
	TotalFailures    int64     `json:"total_failures"`
	LastScanTime     time.Time `json:"last_scan_time"`
	LastExpiredCount int       `json:"last_expired_count"`
}
