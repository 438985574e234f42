// internal/events/bus.go
package events

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	ErrBusClosed   = errors.New("event bus is shutting down")
	ErrChannelFull = errors.New("event channel full")
)

// Publisher accepts events for asynchronous delivery.
type Publisher interface {
	Publish(event Event) error
}

// Bus is an in-memory event bus implementation.
type Bus struct {
	mu        sync.RWMutex
	handlers  map[EventType]map[string]Handler
	logger    *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	eventChan chan Event
	dropped   uint64
}

var _ Publisher = (*Bus)(nil)

// Stats describes the current state of the bus.
type Stats struct {
	BufferSize      int
	PendingEvents   int
	Dropped         uint64
	HandlersPerType map[EventType]int
}

// NewBus creates a new event bus.
func NewBus(logger *zap.Logger, bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	bus := &Bus{
		handlers:  make(map[EventType]map[string]Handler),
		logger:    logger.Named("event-bus"),
		ctx:       ctx,
		cancel:    cancel,
		eventChan: make(chan Event, bufferSize),
	}

	bus.wg.Add(1)
	go bus.processEvents()

	return bus
}

// Subscription - регистрация одного Handler на набор типов событий.
type Subscription struct {
	id    string
	bus   *Bus
	types []EventType
}

// Unsubscribe снимает handler со всех типов подписки. Повторный вызов ничего не делает.
func (s *Subscription) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	for _, t := range s.types {
		if handlers, ok := s.bus.handlers[t]; ok {
			delete(handlers, s.id)
			if len(handlers) == 0 {
				delete(s.bus.handlers, t)
			}
		}
	}
}

// Subscribe регистрирует handler на перечисленные типы, без типов - на AllTxEvents.
func (b *Bus) Subscribe(handler Handler, types ...EventType) *Subscription {
	if len(types) == 0 {
		types = AllTxEvents
	}
	sub := &Subscription{
		id:    uuid.New().String(),
		bus:   b,
		types: append([]EventType(nil), types...),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range sub.types {
		if b.handlers[t] == nil {
			b.handlers[t] = make(map[string]Handler)
		}
		b.handlers[t][sub.id] = handler
	}

	b.logger.Debug("Handler subscribed",
		zap.Int("event_types", len(sub.types)),
		zap.String("subscription_id", sub.id))
	return sub
}

// Publish queues an event; it never blocks and drops the event when the buffer is full.
func (b *Bus) Publish(event Event) error {
	select {
	case <-b.ctx.Done():
		return ErrBusClosed
	default:
	}

	select {
	case b.eventChan <- event:
		return nil
	default:
		b.mu.Lock()
		b.dropped++
		b.mu.Unlock()
		b.logger.Warn("Event channel full, dropping event",
			zap.String("event_type", string(event.Type())))
		return ErrChannelFull
	}
}

// PublishSync delivers an event to all registered handlers in the caller's goroutine.
func (b *Bus) PublishSync(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := make(map[string]Handler, len(b.handlers[event.Type()]))
	for id, h := range b.handlers[event.Type()] {
		handlers[id] = h
	}
	b.mu.RUnlock()

	var errs error
	for id, handler := range handlers {
		if err := handler.Handle(ctx, event); err != nil {
			fields := append(txFields(event), zap.String("subscription_id", id), zap.Error(err))
			b.logger.Error("Handler error", fields...)
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (b *Bus) processEvents() {
	defer b.wg.Done()

	for {
		select {
		case <-b.ctx.Done():
			// drain what is already queued
			for {
				select {
				case event := <-b.eventChan:
					_ = b.PublishSync(context.Background(), event)
				default:
					return
				}
			}
		case event := <-b.eventChan:
			_ = b.PublishSync(b.ctx, event)
		}
	}
}

// Shutdown stops accepting events, drains the queue and waits for delivery.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.cancel()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Debug("Event bus shutdown complete")
		return nil
	case <-ctx.Done():
		b.logger.Warn("Event bus shutdown timeout")
		return ctx.Err()
	}
}

// Stats returns statistics about the event bus.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	counts := make(map[EventType]int, len(b.handlers))
	for t, handlers := range b.handlers {
		counts[t] = len(handlers)
	}
	return Stats{
		BufferSize:      cap(b.eventChan),
		PendingEvents:   len(b.eventChan),
		Dropped:         b.dropped,
		HandlersPerType: counts,
	}
}
