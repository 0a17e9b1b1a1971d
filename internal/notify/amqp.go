package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7/pkg/notification"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer reads MinIO AMQP-target notifications from a durable RabbitMQ queue.
type Consumer struct {
	url     string
	queue   string
	tag     string
	handler BatchHandler
	logger  *slog.Logger
}

// NewConsumer creates a Consumer; call Run to start it.
func NewConsumer(url, queue string, h BatchHandler, logger *slog.Logger) *Consumer {
	return &Consumer{
		url:     url,
		queue:   queue,
		tag:     "upload-reactor",
		handler: h,
		logger:  logger.With(slog.String("queue", queue)),
	}
}

// Run connects, declares the queue and processes deliveries until ctx is cancelled
// or the broker closes the channel.
func (c *Consumer) Run(ctx context.Context) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(
		c.queue, // name
		true,    // durable
		false,   // auto-delete
		false,   // exclusive
		false,   // no-wait
		nil,     // arguments
	); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	deliveries, err := ch.Consume(
		c.queue, // queue
		c.tag,   // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	c.logger.InfoContext(ctx, "consuming upload notifications")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.process(ctx, d)
		}
	}
}

// process handles one delivery. The delivery is acked once the batch has run, whatever
// its per-entry outcome; undecodable payloads are dropped.
func (c *Consumer) process(ctx context.Context, d amqp.Delivery) {
	var info notification.Info
	if err := json.Unmarshal(d.Body, &info); err != nil {
		c.logger.ErrorContext(ctx, "discarding malformed notification",
			slog.Uint64("delivery_tag", d.DeliveryTag), slog.Any("error", err))
		if err := d.Nack(false, false); err != nil {
			c.logger.ErrorContext(ctx, "nack failed", slog.Any("error", err))
		}
		return
	}

	c.handler.HandleBatch(ctx, FromNotification(info))

	if err := d.Ack(false); err != nil {
		c.logger.ErrorContext(ctx, "ack failed", slog.Uint64("delivery_tag", d.DeliveryTag), slog.Any("error", err))
	}
}
