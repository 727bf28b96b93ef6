package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prohmpiriya/residence-gate/internal/domain"
	pkgredis "github.com/prohmpiriya/residence-gate/pkg/redis"
	"github.com/prohmpiriya/residence-gate/pkg/telemetry"
)

//go:embed scripts/occupancy_increment.lua
var occupancyIncrementScript string

//go:embed scripts/occupancy_decrement.lua
var occupancyDecrementScript string

// Script names for caching
const (
	scriptOccupancyIncrement = "occupancy_increment"
	scriptOccupancyDecrement = "occupancy_decrement"
)

// RedisOccupancyCounter shares headcounts across instances through Lua scripts
type RedisOccupancyCounter struct {
	client *pkgredis.Client
}

// NewRedisOccupancyCounter registers the counter scripts on the client
func NewRedisOccupancyCounter(client *pkgredis.Client) *RedisOccupancyCounter {
	client.RegisterScript(scriptOccupancyIncrement, occupancyIncrementScript)
	client.RegisterScript(scriptOccupancyDecrement, occupancyDecrementScript)
	return &RedisOccupancyCounter{client: client}
}

func occupancyKey(amenityID string) string {
	return fmt.Sprintf("amenity:occupancy:%s", amenityID)
}

// Increment atomically adds one unless the amenity is full
func (r *RedisOccupancyCounter) Increment(ctx context.Context, amenityID string, capacity int) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.occupancy.increment")
	defer span.End()
	span.SetAttributes(attribute.String("amenity_id", amenityID), attribute.Int("capacity", capacity))

	values, err := r.client.Run(ctx, scriptOccupancyIncrement, []string{occupancyKey(amenityID)}, capacity).Slice()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to execute occupancy_increment script: %w", err)
	}
	if len(values) < 2 {
		span.SetStatus(codes.Error, "unexpected result length")
		return 0, fmt.Errorf("unexpected script result length: %d", len(values))
	}

	ok, _ := toInt64(values[0])
	count, _ := toInt64(values[1])
	if ok != 1 {
		span.SetStatus(codes.Error, "capacity exceeded")
		return int(count), fmt.Errorf("%w: %d/%d", domain.ErrCapacityExceeded, count, capacity)
	}
	span.SetStatus(codes.Ok, "")
	return int(count), nil
}

// Decrement atomically removes one, flooring at zero
func (r *RedisOccupancyCounter) Decrement(ctx context.Context, amenityID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.occupancy.decrement")
	defer span.End()
	span.SetAttributes(attribute.String("amenity_id", amenityID))

	n, err := r.client.Run(ctx, scriptOccupancyDecrement, []string{occupancyKey(amenityID)}).Int64()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to execute occupancy_decrement script: %w", err)
	}
	span.SetStatus(codes.Ok, "")
	return int(n), nil
}

// Set overwrites the shared count
func (r *RedisOccupancyCounter) Set(ctx context.Context, amenityID string, value int) error {
	if value < 0 {
		value = 0
	}
	if err := r.client.Set(ctx, occupancyKey(amenityID), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set occupancy: %w", err)
	}
	return nil
}

// SetIfAbsent writes the count with SETNX so live headcounts survive restarts
func (r *RedisOccupancyCounter) SetIfAbsent(ctx context.Context, amenityID string, value int) (bool, error) {
	if value < 0 {
		value = 0
	}
	ok, err := r.client.SetNX(ctx, occupancyKey(amenityID), value, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to initialise occupancy: %w", err)
	}
	return ok, nil
}

// Get reads the shared count
func (r *RedisOccupancyCounter) Get(ctx context.Context, amenityID string) (int, bool, error) {
	n, err := r.client.Get(ctx, occupancyKey(amenityID)).Int()
	if errors.Is(err, pkgredis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read occupancy: %w", err)
	}
	return n, true, nil
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case string:
		var out int64
		_, err := fmt.Sscan(n, &out)
		return out, err == nil
	}
	return 0, false
}
