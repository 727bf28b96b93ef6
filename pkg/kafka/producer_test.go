package kafka

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRecord(t *testing.T) {
	ts := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	r := toRecord(&Message{
		Topic:     "residence-events",
		Key:       []byte("visitor:v-1"),
		Value:     []byte(`{"id":"v-1"}`),
		Headers:   map[string]string{"event_type": "visitor.registered"},
		Timestamp: ts,
	})

	assert.Equal(t, "residence-events", r.Topic)
	assert.Equal(t, "visitor:v-1", string(r.Key))
	assert.Equal(t, ts, r.Timestamp)
	require.Len(t, r.Headers, 1)
	assert.Equal(t, "event_type", r.Headers[0].Key)
	assert.Equal(t, "visitor.registered", string(r.Headers[0].Value))
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(context.Background(), &ProducerConfig{})
	assert.Error(t, err)

	_, err = NewProducer(context.Background(), nil)
	assert.Error(t, err)
}

func TestProduce_Integration(t *testing.T) {
	brokers := os.Getenv("TEST_KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("TEST_KAFKA_BROKERS not set")
	}

	p, err := NewProducer(context.Background(), &ProducerConfig{
		Brokers:  strings.Split(brokers, ","),
		ClientID: "residence-gate-test",
	})
	require.NoError(t, err)
	defer p.Close()

	err = p.Produce(context.Background(), &Message{
		Topic:     "residence-events-test",
		Key:       []byte("k"),
		Value:     []byte(`{"hello":"world"}`),
		Timestamp: time.Now(),
	})
	assert.NoError(t, err)
}
