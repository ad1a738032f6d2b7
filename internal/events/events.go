// Package events publishes job status changes to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// JobEvent is one status transition of a processing job.
type JobEvent struct {
	JobID  string    `json:"job_id"`
	DocID  string    `json:"doc_id"`
	UserID string    `json:"user_id"`
	Status string    `json:"status"`
	Phase  string    `json:"phase"`
	Error  string    `json:"error,omitempty"`
	Time   time.Time `json:"time"`
}

// RoutingKey is the topic key subscribers bind to, e.g. "job.*".
func (e JobEvent) RoutingKey() string {
	return "job." + e.JobID
}

// Publisher delivers job events.
type Publisher interface {
	Publish(ctx context.Context, e JobEvent) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, JobEvent) error { return nil }
func (NopPublisher) Close() error                            { return nil }

// AMQPPublisher publishes to a durable topic exchange.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewAMQPPublisher dials url and declares the exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Publish sends e with routing key job.<id>. Channels are not safe for
// concurrent publishing, so calls are serialized.
func (p *AMQPPublisher) Publish(ctx context.Context, e JobEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := message(e)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Publish(p.exchange, e.RoutingKey(), false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", e.RoutingKey(), err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ch.Close()
	return p.conn.Close()
}

func message(e JobEvent) (amqp.Publishing, error) {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   e.Time,
		Type:        "job." + e.Status,
		Body:        body,
	}, nil
}
