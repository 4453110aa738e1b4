package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/config"
)

const ExchangeType = "topic"

const (
	breakerFailureThreshold = 5
	breakerOpenTimeout      = 30 * time.Second
)

// Publisher handles publishing events to RabbitMQ
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string

	mu       sync.Mutex
	breaker  *gobreaker.CircuitBreaker[struct{}]
	recorder PublishRecorder
	log      *zap.Logger
}

// NewPublisher dials the broker and declares the durable topic exchange.
// recorder may be nil.
func NewPublisher(cfg config.RabbitMQConfig, recorder PublishRecorder, log *zap.Logger) (*Publisher, error) {
	log.Info("connecting to RabbitMQ", zap.String("url", maskPassword(cfg.URL)))

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		cfg.Exchange, // name
		ExchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.Info("connected to RabbitMQ", zap.String("exchange", cfg.Exchange))

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: cfg.Exchange,
		breaker:  newBreaker(log),
		recorder: recorder,
		log:      log,
	}, nil
}

func newBreaker(log *zap.Logger) *gobreaker.CircuitBreaker[struct{}] {
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "rabbitmq-publish",
		MaxRequests: 1,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// Publish publishes an event with the given routing key. A nil or unconnected
// publisher drops the event. While the breaker is open, publishes fail fast
// with gobreaker.ErrOpenState.
func (p *Publisher) Publish(ctx context.Context, routingKey string, eventData interface{}) error {
	if p == nil || p.channel == nil {
		return nil
	}

	body, err := json.Marshal(eventData)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	_, err = p.breaker.Execute(func() (struct{}, error) {
		p.mu.Lock()
		defer p.mu.Unlock()

		return struct{}{}, p.channel.PublishWithContext(
			ctx,
			p.exchange,
			routingKey,
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				Body:         body,
				DeliveryMode: amqp.Persistent,
				Timestamp:    time.Now().UTC(),
				MessageId:    uuid.NewString(),
				AppId:        ServiceName,
			},
		)
	})

	if p.recorder != nil {
		p.recorder.RecordEventPublished(routingKey, err)
	}

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return fmt.Errorf("broker circuit open, dropped %s: %w", routingKey, err)
		}
		return fmt.Errorf("failed to publish event to %s: %w", routingKey, err)
	}

	p.log.Debug("published event", zap.String("routing_key", routingKey))
	return nil
}

// Close closes the RabbitMQ channel and connection
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.log.Warn("error closing RabbitMQ channel", zap.Error(err))
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// maskPassword hides credentials in the broker URL for logging
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "amqp://***@..."
	}
	return u.Redacted()
}
