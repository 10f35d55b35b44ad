package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/fanvault/user-service/pkg/retry"
)

// ProducerConfig contains Kafka producer configuration
type ProducerConfig struct {
	// Brokers is the list of Kafka broker addresses
	Brokers []string
	// ClientID identifies this producer to the brokers
	ClientID string
	// MaxRetries is the number of connection retries at startup
	MaxRetries int
	// RetryInterval is the initial backoff between connection retries
	RetryInterval time.Duration
	// BatchSize is the maximum number of buffered records
	BatchSize int
	// LingerMs is how long to wait for batching before sending
	LingerMs int
}

// Message is a single record to produce
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Producer wraps a franz-go client for producing messages
type Producer struct {
	client *kgo.Client
}

// NewProducer creates a Kafka producer and verifies broker connectivity.
// Connection is retried with exponential backoff up to MaxRetries.
func NewProducer(ctx context.Context, cfg *ProducerConfig) (*Producer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("producer config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}
	if cfg.BatchSize > 0 {
		opts = append(opts, kgo.MaxBufferedRecords(cfg.BatchSize))
	}
	if cfg.LingerMs > 0 {
		opts = append(opts, kgo.ProducerLinger(time.Duration(cfg.LingerMs)*time.Millisecond))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	result := retry.Do(ctx, &retry.Config{
		MaxRetries:      cfg.MaxRetries,
		InitialInterval: cfg.RetryInterval,
	}, func(ctx context.Context) error {
		return client.Ping(ctx)
	})
	if result.Err != nil {
		client.Close()
		if result.LastError != nil {
			return nil, fmt.Errorf("failed to connect to kafka after %d attempts: %w", result.Attempts, result.LastError)
		}
		return nil, fmt.Errorf("failed to connect to kafka: %w", result.Err)
	}

	return &Producer{client: client}, nil
}

// Produce sends a message and waits for broker acknowledgment
func (p *Producer) Produce(ctx context.Context, msg *Message) error {
	if msg == nil {
		return fmt.Errorf("message is required")
	}

	record := &kgo.Record{
		Topic:     msg.Topic,
		Key:       msg.Key,
		Value:     msg.Value,
		Timestamp: msg.Timestamp,
	}
	for k, v := range msg.Headers {
		record.Headers = append(record.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce to %s: %w", msg.Topic, err)
	}
	return nil
}

// Close flushes buffered records and closes the client
func (p *Producer) Close() {
	if p.client != nil {
		p.client.Close()
	}
}
