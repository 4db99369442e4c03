package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/filedrop/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitSender publishes to a durable RabbitMQ queue through the default exchange.
type RabbitSender struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
}

// NewRabbitSender connects, opens a channel and declares queueName.
func NewRabbitSender(rabbitURL, queueName string, maxRetries int, delay time.Duration) (*RabbitSender, error) {
	conn, err := connectWithRetry(rabbitURL, maxRetries, delay)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	logger.Log.Info().Str("queue", queueName).Msg("connected to RabbitMQ")

	return &RabbitSender{
		conn:      conn,
		channel:   channel,
		queueName: queueName,
	}, nil
}

func connectWithRetry(url string, maxRetries int, delay time.Duration) (*amqp.Connection, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var (
		conn *amqp.Connection
		err  error
	)
	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}

		logger.Log.Warn().Err(err).Int("attempt", i+1).Int("max", maxRetries).Msg("rabbitmq connect failed")
		if i < maxRetries-1 {
			time.Sleep(delay)
		}
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", maxRetries, err)
}

// Send publishes body as a persistent plain-text message.
func (s *RabbitSender) Send(ctx context.Context, body string) error {
	err := s.channel.PublishWithContext(ctx,
		"",          // exchange
		s.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "text/plain",
			Body:         []byte(body),
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Close closes the channel and connection.
func (s *RabbitSender) Close() error {
	if s.channel != nil {
		s.channel.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

var _ Sender = (*RabbitSender)(nil)
