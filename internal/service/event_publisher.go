package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fanvault/user-service/internal/domain"
	"github.com/fanvault/user-service/pkg/kafka"
)

// EventPublisher defines the interface for publishing user account events
type EventPublisher interface {
	// PublishUserRegistered publishes a user registered event
	PublishUserRegistered(ctx context.Context, user *domain.User) error

	// PublishUserLoggedIn publishes a successful login event
	PublishUserLoggedIn(ctx context.Context, user *domain.User, device domain.DeviceInfo) error

	// PublishAccountLocked publishes a brute-force lockout event
	PublishAccountLocked(ctx context.Context, user *domain.User, device domain.DeviceInfo) error

	// PublishPasswordChanged publishes a password changed event
	PublishPasswordChanged(ctx context.Context, user *domain.User) error

	// PublishAccountStatusChanged publishes a deactivation, reactivation,
	// deletion, or email verification event
	PublishAccountStatusChanged(ctx context.Context, eventType domain.UserEventType, user *domain.User) error

	// Close closes the event publisher
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "user-events"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "user-service"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "user-service-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		BatchSize:     100,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishUserRegistered publishes a user registered event
func (p *KafkaEventPublisher) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	return p.publishEvent(ctx, domain.UserEventRegistered, user, domain.DeviceInfo{})
}

// PublishUserLoggedIn publishes a successful login event
func (p *KafkaEventPublisher) PublishUserLoggedIn(ctx context.Context, user *domain.User, device domain.DeviceInfo) error {
	return p.publishEvent(ctx, domain.UserEventLoggedIn, user, device)
}

// PublishAccountLocked publishes a brute-force lockout event
func (p *KafkaEventPublisher) PublishAccountLocked(ctx context.Context, user *domain.User, device domain.DeviceInfo) error {
	return p.publishEvent(ctx, domain.UserEventLockedOut, user, device)
}

// PublishPasswordChanged publishes a password changed event
func (p *KafkaEventPublisher) PublishPasswordChanged(ctx context.Context, user *domain.User) error {
	return p.publishEvent(ctx, domain.UserEventPasswordChanged, user, domain.DeviceInfo{})
}

// PublishAccountStatusChanged publishes an account lifecycle event
func (p *KafkaEventPublisher) PublishAccountStatusChanged(ctx context.Context, eventType domain.UserEventType, user *domain.User) error {
	return p.publishEvent(ctx, eventType, user, domain.DeviceInfo{})
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// publishEvent publishes a user event to Kafka
func (p *KafkaEventPublisher) publishEvent(ctx context.Context, eventType domain.UserEventType, user *domain.User, device domain.DeviceInfo) error {
	eventID := uuid.New().String()
	event := domain.NewUserEvent(eventType, user, eventID)
	event.UserData.IPAddress = device.IPAddress
	event.UserData.UserAgent = device.UserAgent

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	headers := map[string]string{
		"event_type":   string(eventType),
		"event_id":     eventID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}

	msg := &kafka.Message{
		Topic:     p.topic,
		Key:       []byte(event.Key()),
		Value:     value,
		Headers:   headers,
		Timestamp: time.Now(),
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	return nil
}

// NoOpEventPublisher is a no-op implementation of EventPublisher for testing
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// PublishUserRegistered is a no-op
func (p *NoOpEventPublisher) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	return nil
}

// PublishUserLoggedIn is a no-op
func (p *NoOpEventPublisher) PublishUserLoggedIn(ctx context.Context, user *domain.User, device domain.DeviceInfo) error {
	return nil
}

// PublishAccountLocked is a no-op
func (p *NoOpEventPublisher) PublishAccountLocked(ctx context.Context, user *domain.User, device domain.DeviceInfo) error {
	return nil
}

// PublishPasswordChanged is a no-op
func (p *NoOpEventPublisher) PublishPasswordChanged(ctx context.Context, user *domain.User) error {
	return nil
}

// PublishAccountStatusChanged is a no-op
func (p *NoOpEventPublisher) PublishAccountStatusChanged(ctx context.Context, eventType domain.UserEventType, user *domain.User) error {
	return nil
}

// Close is a no-op
func (p *NoOpEventPublisher) Close() error {
	return nil
}
