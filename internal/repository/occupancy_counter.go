package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/prohmpiriya/residence-gate/internal/domain"
)

// MemoryOccupancyCounter keeps headcounts in process memory
type MemoryOccupancyCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMemoryOccupancyCounter creates an empty counter
func NewMemoryOccupancyCounter() *MemoryOccupancyCounter {
	return &MemoryOccupancyCounter{counts: make(map[string]int)}
}

func (c *MemoryOccupancyCounter) Increment(ctx context.Context, amenityID string, capacity int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.counts[amenityID]
	if n >= capacity {
		return n, fmt.Errorf("%w: %d/%d", domain.ErrCapacityExceeded, n, capacity)
	}
	c.counts[amenityID] = n + 1
	return n + 1, nil
}

func (c *MemoryOccupancyCounter) Decrement(ctx context.Context, amenityID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts[amenityID] > 0 {
		c.counts[amenityID]--
	}
	return c.counts[amenityID], nil
}

func (c *MemoryOccupancyCounter) Set(ctx context.Context, amenityID string, value int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value < 0 {
		value = 0
	}
	c.counts[amenityID] = value
	return nil
}

func (c *MemoryOccupancyCounter) SetIfAbsent(ctx context.Context, amenityID string, value int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.counts[amenityID]; ok {
		return false, nil
	}
	if value < 0 {
		value = 0
	}
	c.counts[amenityID] = value
	return true, nil
}

func (c *MemoryOccupancyCounter) Get(ctx context.Context, amenityID string) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.counts[amenityID]
	return n, ok, nil
}
