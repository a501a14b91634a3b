// Package amqp publishes and consumes the transaction sync queue that feeds
// the spreadsheet export worker.
package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

// SyncHandler processes a transaction sync message.
type SyncHandler func(ctx context.Context, msg *TransactionSyncMessage) error

// DeleteHandler processes a transaction delete message.
type DeleteHandler func(ctx context.Context, msg *TransactionDeleteMessage) error

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key matches the queue name on a direct exchange
	err = c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishTransactionSync publishes a sync message for the transaction.
func (c *Client) PublishTransactionSync(ctx context.Context, id, version int64) error {
	msg := NewTransactionSyncMessage(id, version)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal sync message: %w", err)
	}

	if err := c.publish(ctx, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published transaction sync message",
		"id", id,
		"version", version,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// PublishTransactionDelete publishes a delete message for the transaction.
func (c *Client) PublishTransactionDelete(ctx context.Context, id int64) error {
	msg := NewTransactionDeleteMessage(id)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal delete message: %w", err)
	}

	if err := c.publish(ctx, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published transaction delete message",
		"id", id,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

func (c *Client) publish(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// ConsumeMessages consumes the queue until ctx is cancelled, routing each
// delivery by its kind discriminator. Handler failures nack with requeue;
// malformed payloads are rejected without requeue.
func (c *Client) ConsumeMessages(ctx context.Context, onSync SyncHandler, onDelete DeleteHandler) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming transaction messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			c.dispatch(ctx, delivery, onSync, onDelete)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, delivery amqp091.Delivery, onSync SyncHandler, onDelete DeleteHandler) {
	kind, err := messageKind(delivery.Body)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to unmarshal message", "error", err)
		_ = delivery.Nack(false, false)
		return
	}

	switch kind {
	case KindSync:
		msg, err := TransactionSyncMessageFromJSON(delivery.Body)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to unmarshal sync message", "error", err)
			_ = delivery.Nack(false, false)
			return
		}
		if err := onSync(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to handle sync message", "error", err, "id", msg.ID)
			_ = delivery.Nack(false, true)
			return
		}
	case KindDelete:
		msg, err := TransactionDeleteMessageFromJSON(delivery.Body)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to unmarshal delete message", "error", err)
			_ = delivery.Nack(false, false)
			return
		}
		if err := onDelete(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to handle delete message", "error", err, "id", msg.ID)
			_ = delivery.Nack(false, true)
			return
		}
	default:
		slog.WarnContext(ctx, "Unknown message kind", "kind", kind)
		_ = delivery.Nack(false, false)
		return
	}

	_ = delivery.Ack(false)
}

// exponentialBackoff returns the wait before reconnect attempt n, capped at
// 30 seconds.
func exponentialBackoff(attempt int) time.Duration {
	d := time.Second << uint(attempt)
	if d > 30*time.Second || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// isConnectionError reports whether the error looks like a lost broker
// connection worth a reconnect rather than a permanent failure.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	for _, marker := range []string{"connection refused", "connection closed", "EOF", "channel/connection is not open"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// ConsumeWithReconnect runs ConsumeMessages and re-dials the broker with
// exponential backoff when the connection drops.
func (c *Client) ConsumeWithReconnect(ctx context.Context, url string, onSync SyncHandler, onDelete DeleteHandler) error {
	attempt := 0
	for {
		err := c.ConsumeMessages(ctx, onSync, onDelete)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isConnectionError(err) {
			return err
		}

		wait := exponentialBackoff(attempt)
		attempt++
		slog.WarnContext(ctx, "AMQP connection lost, reconnecting",
			"error", err, "attempt", attempt, "wait", wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		fresh, err := NewClient(url, c.exchangeName, c.queueName)
		if err != nil {
			slog.ErrorContext(ctx, "AMQP reconnect failed", "error", err, "attempt", attempt)
			continue
		}
		c.Close()
		c.conn = fresh.conn
		c.channel = fresh.channel
		attempt = 0
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
