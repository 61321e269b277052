package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/velozpay/ledger/internal/domain"
)

const routingKey = "operation.created"

// RabbitMQPublisher publishes operation events to a durable topic exchange.
// The connection is established lazily on first publish and recreated on the
// next publish after a failure, so a broker restart costs one failed attempt
// that the RetryPublisher absorbs.
type RabbitMQPublisher struct {
	url      string
	exchange string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
}

func NewRabbitMQPublisher(url, exchange string) *RabbitMQPublisher {
	return &RabbitMQPublisher{url: url, exchange: exchange}
}

// Publish sends the event as a persistent JSON message. The operation id
// rides along as a header so consumers can dedupe without decoding the body.
func (p *RabbitMQPublisher) Publish(ctx context.Context, event domain.OperationEvent) error {
	channel, err := p.ensureChannel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	err = channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Headers:      amqp.Table{"operation-id": event.OperationID.String()},
		Body:         body,
	})
	if err != nil {
		p.reset()
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (p *RabbitMQPublisher) ensureChannel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, fmt.Errorf("publisher is closed")
	}
	if p.channel != nil && !p.channel.IsClosed() {
		return p.channel, nil
	}

	p.teardownLocked()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := channel.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	p.conn = conn
	p.channel = channel
	return channel, nil
}

func (p *RabbitMQPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.teardownLocked()
}

func (p *RabbitMQPublisher) teardownLocked() {
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close tears down the connection; subsequent publishes fail.
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.teardownLocked()
	return nil
}
