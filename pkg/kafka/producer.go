package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/prohmpiriya/residence-gate/pkg/retry"
)

// ProducerConfig holds producer settings
type ProducerConfig struct {
	Brokers  []string
	ClientID string
	// ProduceTimeout bounds one synchronous produce
	ProduceTimeout time.Duration
	// Retry covers broker errors surfaced by a produce
	Retry retry.Config
}

// Message is one record to publish
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Producer publishes records synchronously so callers learn about failures
type Producer struct {
	client  *kgo.Client
	timeout time.Duration
	retry   retry.Config
}

// NewProducer creates a client and verifies at least one broker answers
func NewProducer(ctx context.Context, cfg *ProducerConfig) (*Producer, error) {
	if cfg == nil || len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(5*time.Millisecond),
		kgo.RecordRetries(3),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka: failed to create client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka: brokers unreachable: %w", err)
	}

	timeout := cfg.ProduceTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rc := cfg.Retry
	if rc.MaxAttempts == 0 {
		rc = retry.DefaultConfig()
	}

	return &Producer{client: client, timeout: timeout, retry: rc}, nil
}

// Produce publishes one message and waits for the broker ack
func (p *Producer) Produce(ctx context.Context, msg *Message) error {
	record := toRecord(msg)
	return retry.Do(ctx, p.retry, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		err := p.client.ProduceSync(ctx, record).FirstErr()
		if errors.Is(err, kgo.ErrClientClosed) {
			return retry.Permanent(err)
		}
		return err
	})
}

// Close flushes buffered records and closes the client
func (p *Producer) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = p.client.Flush(ctx)
	p.client.Close()
}

func toRecord(msg *Message) *kgo.Record {
	r := &kgo.Record{
		Topic:     msg.Topic,
		Key:       msg.Key,
		Value:     msg.Value,
		Timestamp: msg.Timestamp,
	}
	for k, v := range msg.Headers {
		r.Headers = append(r.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	return r
}
