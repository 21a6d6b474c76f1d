// README: RabbitMQ connection with startup retry and a topic exchange for lifecycle events.
package infra

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	mqConnectAttempts = 5
	mqPublishTimeout  = 5 * time.Second
)

var ErrChannelClosed = errors.New("rabbitmq channel not available")

type RabbitMQ struct {
	mu       sync.RWMutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	closed   bool
}

// NewRabbitMQ dials url, retrying with a growing delay, and declares exchange as a
// durable topic exchange.
func NewRabbitMQ(ctx context.Context, url, exchange string) (*RabbitMQ, error) {
	delay := time.Second
	var lastErr error
	for attempt := 1; attempt <= mqConnectAttempts; attempt++ {
		mq, err := dialRabbitMQ(url, exchange)
		if err == nil {
			log.Printf("rabbitmq: connected (attempt %d)", attempt)
			return mq, nil
		}
		lastErr = err
		log.Printf("rabbitmq: connect attempt %d/%d failed: %v", attempt, mqConnectAttempts, err)
		if attempt == mqConnectAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
			delay = delay * 3 / 2
		}
	}
	return nil, fmt.Errorf("connect rabbitmq after %d attempts: %w", mqConnectAttempts, lastErr)
}

func dialRabbitMQ(url, exchange string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &RabbitMQ{conn: conn, ch: ch, exchange: exchange}, nil
}

// Publish sends a persistent JSON message to the configured exchange.
func (mq *RabbitMQ) Publish(ctx context.Context, routingKey string, body []byte) error {
	mq.mu.RLock()
	ch, closed := mq.ch, mq.closed
	mq.mu.RUnlock()
	if ch == nil || closed {
		return ErrChannelClosed
	}

	publishCtx, cancel := context.WithTimeout(ctx, mqPublishTimeout)
	defer cancel()
	return ch.PublishWithContext(publishCtx, mq.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
}

func (mq *RabbitMQ) Close() {
	mq.mu.Lock()
	defer mq.mu.Unlock()
	if mq.closed {
		return
	}
	mq.closed = true
	if mq.ch != nil {
		_ = mq.ch.Close()
	}
	if mq.conn != nil {
		_ = mq.conn.Close()
	}
}
