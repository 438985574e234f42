// internal/events/amqp.go
package events

import (
	"context"
	"fmt"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// amqpChannel is the subset of *amqp.Channel used by the sink.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPSink forwards bus events as JSON to a topic exchange. The routing key is the event type.
type AMQPSink struct {
	conn     *amqp.Connection
	ch       amqpChannel
	exchange string
	logger   *zap.Logger
}

// DialAMQP connects to the broker and declares the exchange.
func DialAMQP(uri, exchange string, logger *zap.Logger) (*AMQPSink, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	sink, err := newAMQPSink(ch, exchange, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	sink.conn = conn
	return sink, nil
}

func newAMQPSink(ch amqpChannel, exchange string, logger *zap.Logger) (*AMQPSink, error) {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPSink{
		ch:       ch,
		exchange: exchange,
		logger:   logger.Named("amqp-sink"),
	}, nil
}

// Handle implements Handler.
func (s *AMQPSink) Handle(_ context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := amqp.Publishing{
		Headers:     amqp.Table{"x-event-type": string(event.Type())},
		ContentType: "application/json",
		Timestamp:   event.Timestamp(),
		Body:        body,
	}
	if err := s.ch.Publish(s.exchange, string(event.Type()), false, false, msg); err != nil {
		s.logger.Error("Failed to publish event",
			zap.String("event_type", string(event.Type())),
			zap.Error(err))
		return err
	}
	return nil
}

// Close closes the channel and the connection.
func (s *AMQPSink) Close() error {
	err := s.ch.Close()
	if s.conn != nil {
		if cerr := s.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
