// internal/app/shutdown.go
package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const DefaultShutdownTimeout = 15 * time.Second

// CloseFunc позволяет зарегистрировать функцию как io.Closer
type CloseFunc func() error

func (f CloseFunc) Close() error {
	return f()
}

type namedCloser struct {
	name   string
	closer io.Closer
}

// ShutdownHandler закрывает зарегистрированные ресурсы в обратном порядке (LIFO).
// Каждый уровень закрывается только после того, как закрыт следующий за ним.
type ShutdownHandler struct {
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	closers []namedCloser
	done    bool
}

func NewShutdownHandler(logger *zap.Logger, timeout time.Duration) *ShutdownHandler {
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	return &ShutdownHandler{
		logger:  logger.Named("shutdown"),
		timeout: timeout,
	}
}

// Add регистрирует ресурс. nil игнорируется.
func (s *ShutdownHandler) Add(name string, closer io.Closer) {
	if closer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closers = append(s.closers, namedCloser{name: name, closer: closer})
	s.logger.Debug("Registered for shutdown", zap.String("service", name))
}

func (s *ShutdownHandler) AddFunc(name string, fn func() error) {
	s.Add(name, CloseFunc(fn))
}

// Run закрывает всё зарегистрированное. Повторный вызов ничего не делает.
// Ресурс, не уложившийся в таймаут, считается ошибкой; его Close продолжает
// работать в фоне.
func (s *ShutdownHandler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return nil
	}
	s.done = true
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.logger.Info("Starting graceful shutdown", zap.Int("services", len(closers)))

	var errs error
	for i := len(closers) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, s.close(ctx, closers[i]))
	}

	if errs != nil {
		s.logger.Error("Shutdown completed with errors",
			zap.Int("errorCount", len(multierr.Errors(errs))),
			zap.Error(errs))
		return errs
	}
	s.logger.Info("Graceful shutdown completed")
	return nil
}

func (s *ShutdownHandler) close(ctx context.Context, c namedCloser) error {
	done := make(chan error, 1)
	go func() {
		done <- c.closer.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			s.logger.Error("Failed to shutdown service", zap.String("service", c.name), zap.Error(err))
			return fmt.Errorf("%s: %w", c.name, err)
		}
		s.logger.Debug("Service shutdown complete", zap.String("service", c.name))
		return nil
	case <-ctx.Done():
		s.logger.Error("Shutdown timeout for service", zap.String("service", c.name))
		return fmt.Errorf("%s: shutdown timeout: %w", c.name, ctx.Err())
	}
}
