// internal/events/sink.go
package events

import (
	"context"

	"go.uber.org/zap"
)

// Handler получает события транзакций от Bus.
// Доставка идёт из одной горутины шины, Handle не должен блокироваться надолго.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// LogSink пишет каждое событие транзакции одной строкой.
type LogSink struct {
	logger *zap.Logger
}

var _ Handler = (*LogSink)(nil)

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Handle(_ context.Context, event Event) error {
	fields := txFields(event)
	switch e := event.(type) {
	case TxSubmittedEvent:
		fields = append(fields, zap.String("label", e.Label), zap.Int("attempt", e.Attempt))
	case TxConfirmedEvent:
		fields = append(fields, zap.String("status", e.Status), zap.Int("attempts", e.Attempts), zap.Duration("duration", e.Duration))
	case TxExpiredEvent:
		fields = append(fields, zap.Int("attempt", e.Attempt))
	case TxFailedEvent:
		fields = append(fields, zap.String("label", e.Label), zap.String("error", e.Error), zap.Int("attempts", e.Attempts))
	}
	s.logger.Info("Transaction event", fields...)
	return nil
}

// txFields - общие поля события: тип, correlation id и подпись, если есть.
func txFields(event Event) []zap.Field {
	fields := []zap.Field{zap.String("event_type", string(event.Type()))}
	var id, sig string
	switch e := event.(type) {
	case TxSubmittedEvent:
		id, sig = e.CorrelationID, e.Signature
	case TxConfirmedEvent:
		id, sig = e.CorrelationID, e.Signature
	case TxExpiredEvent:
		id, sig = e.CorrelationID, e.Signature
	case TxFailedEvent:
		id = e.CorrelationID
	}
	if id != "" {
		fields = append(fields, zap.String("correlation_id", id))
	}
	if sig != "" {
		fields = append(fields, zap.String("signature", sig))
	}
	return fields
}
