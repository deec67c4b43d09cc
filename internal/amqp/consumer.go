package amqp

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Consumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewConsumer(url, queue string) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: declare %s: %w", queue, err)
	}
	return &Consumer{conn: conn, ch: ch, queue: queue}, nil
}

// Consume acks each delivery after handler succeeds; a failing handler
// nacks the message back onto the queue and stops consumption.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, []byte) error) error {
	deliveries, err := c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq: consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq: delivery channel closed")
			}
			if err := handler(ctx, d.Body); err != nil {
				_ = d.Nack(false, true)
				return err
			}
			if err := d.Ack(false); err != nil {
				return fmt.Errorf("rabbitmq: ack: %w", err)
			}
		}
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	_ = c.ch.Close()
	return c.conn.Close()
}
