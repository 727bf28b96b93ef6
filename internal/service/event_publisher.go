package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/prohmpiriya/residence-gate/internal/domain"
	"github.com/prohmpiriya/residence-gate/internal/metrics"
	"github.com/prohmpiriya/residence-gate/internal/repository"
	"github.com/prohmpiriya/residence-gate/pkg/kafka"
	"github.com/prohmpiriya/residence-gate/pkg/logger"
	"github.com/prohmpiriya/residence-gate/pkg/telemetry"
)

// EventPublisher delivers domain events to downstream consumers
type EventPublisher interface {
	// Publish sends one event
	Publish(ctx context.Context, event *domain.DomainEvent) error

	// Close releases the publisher's resources
	Close() error
}

// MessageProducer is the subset of kafka.Producer used by KafkaEventPublisher
type MessageProducer interface {
	Produce(ctx context.Context, msg *kafka.Message) error
	Close()
}

// EventPublisherConfig contains configuration for the Kafka event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    MessageProducer
	topic       string
	serviceName string
}

// NewKafkaEventPublisher connects a producer and wraps it
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "residence-gate-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:        cfg.Brokers,
		ClientID:       clientID,
		ProduceTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewKafkaEventPublisherWithProducer(producer, cfg.Topic, cfg.ServiceName), nil
}

// NewKafkaEventPublisherWithProducer wraps an existing producer
func NewKafkaEventPublisherWithProducer(producer MessageProducer, topic, serviceName string) *KafkaEventPublisher {
	if topic == "" {
		topic = "residence-events"
	}
	if serviceName == "" {
		serviceName = "residence-gate"
	}
	return &KafkaEventPublisher{producer: producer, topic: topic, serviceName: serviceName}
}

// Publish sends the event keyed by aggregate so one record's events stay ordered
func (p *KafkaEventPublisher) Publish(ctx context.Context, event *domain.DomainEvent) error {
	ctx, span := telemetry.StartSpan(ctx, "kafka.publish")
	defer span.End()

	value, err := json.Marshal(event)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	headers := telemetry.InjectHeaders(ctx)
	headers["event_type"] = string(event.EventType)
	headers["event_id"] = event.EventID
	headers["source"] = p.serviceName
	headers["content_type"] = "application/json"

	msg := &kafka.Message{
		Topic:     p.topic,
		Key:       []byte(event.Key()),
		Value:     value,
		Headers:   headers,
		Timestamp: event.OccurredAt,
	}
	if err := p.producer.Produce(ctx, msg); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to publish %s event: %w", event.EventType, err)
	}
	return nil
}

// Close closes the producer
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// AuditEventPublisher writes events to the audit trail
type AuditEventPublisher struct {
	repo repository.AuditRepository
}

// NewAuditEventPublisher creates a publisher backed by the audit repository
func NewAuditEventPublisher(repo repository.AuditRepository) *AuditEventPublisher {
	return &AuditEventPublisher{repo: repo}
}

// Publish appends the event
func (p *AuditEventPublisher) Publish(ctx context.Context, event *domain.DomainEvent) error {
	return p.repo.Append(ctx, event)
}

// Close is a no-op; the pool is owned by the caller
func (p *AuditEventPublisher) Close() error {
	return nil
}

// MultiEventPublisher fans each event out to every publisher
type MultiEventPublisher struct {
	publishers []EventPublisher
}

// NewMultiEventPublisher combines publishers; nil entries are skipped
func NewMultiEventPublisher(publishers ...EventPublisher) *MultiEventPublisher {
	m := &MultiEventPublisher{}
	for _, p := range publishers {
		if p != nil {
			m.publishers = append(m.publishers, p)
		}
	}
	return m
}

// Publish delivers to all publishers even when one fails
func (m *MultiEventPublisher) Publish(ctx context.Context, event *domain.DomainEvent) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every publisher
func (m *MultiEventPublisher) Close() error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NoOpEventPublisher is a no-op implementation of EventPublisher
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// Publish is a no-op
func (p *NoOpEventPublisher) Publish(ctx context.Context, event *domain.DomainEvent) error {
	return nil
}

// Close is a no-op
func (p *NoOpEventPublisher) Close() error {
	return nil
}

// Async publisher errors
var (
	ErrPublishQueueFull = errors.New("event publish queue is full")
	ErrPublisherClosed  = errors.New("event publisher is closed")
)

// AsyncEventPublisherConfig bounds the background delivery queue
type AsyncEventPublisherConfig struct {
	QueueSize      int
	PublishTimeout time.Duration
}

// DefaultAsyncEventPublisherConfig returns default queue settings
func DefaultAsyncEventPublisherConfig() *AsyncEventPublisherConfig {
	return &AsyncEventPublisherConfig{
		QueueSize:      1024,
		PublishTimeout: 30 * time.Second,
	}
}

type queuedEvent struct {
	ctx   context.Context
	event *domain.DomainEvent
}

// AsyncEventPublisher hands events to one background worker so a slow broker
// never holds up the request that produced them. Events are dropped when the
// queue is full.
type AsyncEventPublisher struct {
	next    EventPublisher
	timeout time.Duration
	queue   chan queuedEvent
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAsyncEventPublisher starts the delivery worker
func NewAsyncEventPublisher(next EventPublisher, cfg *AsyncEventPublisherConfig) *AsyncEventPublisher {
	defaults := DefaultAsyncEventPublisherConfig()
	if cfg == nil {
		cfg = defaults
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = defaults.QueueSize
	}
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = defaults.PublishTimeout
	}

	p := &AsyncEventPublisher{
		next:    next,
		timeout: timeout,
		queue:   make(chan queuedEvent, size),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish enqueues the event without waiting for delivery
func (p *AsyncEventPublisher) Publish(ctx context.Context, event *domain.DomainEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	// keep trace values but outlive the request
	q := queuedEvent{ctx: context.WithoutCancel(ctx), event: event}
	select {
	case p.queue <- q:
		return nil
	default:
		metrics.RecordError(ctx, "event_dropped", string(event.EventType))
		return fmt.Errorf("%w: dropped %s", ErrPublishQueueFull, event.EventType)
	}
}

func (p *AsyncEventPublisher) run() {
	defer close(p.done)
	for q := range p.queue {
		ctx, cancel := context.WithTimeout(q.ctx, p.timeout)
		err := p.next.Publish(ctx, q.event)
		cancel()
		if err != nil {
			logPublishFailure(q.event, err)
		}
	}
}

// Close stops accepting events, drains the queue, then closes the wrapped publisher
func (p *AsyncEventPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.next.Close()
}

// publish is called after a mutation has committed, so delivery failures are logged, not returned
func publish(ctx context.Context, publisher EventPublisher, event *domain.DomainEvent) {
	if err := publisher.Publish(ctx, event); err != nil {
		logPublishFailure(event, err)
	}
}

func logPublishFailure(event *domain.DomainEvent, err error) {
	logger.Get().Warn("failed to publish domain event",
		zap.String("event_type", string(event.EventType)),
		zap.String("aggregate_id", event.AggregateID),
		zap.Error(err),
	)
}
