// Package amqp carries booking events over RabbitMQ as an alternative to Kafka.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher keeps one connection and channel open. The topic argument of
// Publish is the queue name; queues are declared durable on first use.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	declared map[string]bool
	log      hclog.Logger
}

func NewPublisher(url string, log hclog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, declared: make(map[string]bool), log: log}, nil
}

func (p *Publisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event: %w", err)
	}

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared[topic] {
		if _, err := p.ch.QueueDeclare(topic, true, false, false, false, nil); err != nil {
			return fmt.Errorf("rabbitmq: declare %s: %w", topic, err)
		}
		p.declared[topic] = true
	}

	err = p.ch.PublishWithContext(ctx, "", topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    key,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}
	p.log.Debug("published", "queue", topic, "key", key)
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
