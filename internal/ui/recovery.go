package ui

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

var ErrTooManyRestarts = errors.New("UI crashed too many times")

// RecoveryHandler перезапускает UI после паники, не больше maxRestarts раз.
type RecoveryHandler struct {
	logger       *zap.Logger
	restartDelay time.Duration
	maxRestarts  int
	restartCount int
	createUI     func() (tea.Model, []tea.ProgramOption)
}

func NewRecoveryHandler(logger *zap.Logger, createUI func() (tea.Model, []tea.ProgramOption)) *RecoveryHandler {
	return &RecoveryHandler{
		logger:       logger,
		restartDelay: 2 * time.Second,
		maxRestarts:  3,
		createUI:     createUI,
	}
}

// RunWithRecovery runs the UI with panic recovery.
// Обычные ошибки программы (в том числе отмена контекста) не перезапускают UI.
func (rh *RecoveryHandler) RunWithRecovery() error {
	for {
		err := rh.runUI()
		var pe *panicError
		if !errors.As(err, &pe) {
			return err
		}

		rh.restartCount++
		if rh.restartCount > rh.maxRestarts {
			return fmt.Errorf("%w (%d): %v", ErrTooManyRestarts, rh.maxRestarts, err)
		}

		rh.logger.Error("UI crashed, will restart",
			zap.Error(err),
			zap.Int("restart_count", rh.restartCount),
			zap.Duration("delay", rh.restartDelay))
		time.Sleep(rh.restartDelay)
	}
}

type panicError struct {
	value interface{}
}

func (e *panicError) Error() string {
	return fmt.Sprintf("UI panic: %v", e.value)
}

func (rh *RecoveryHandler) runUI() (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			err = &panicError{value: r}
			rh.logger.Error("UI panic recovered",
				zap.Any("panic", r),
				zap.ByteString("stack", stack))
		}
	}()

	model, opts := rh.createUI()
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("UI error: %w", err)
	}
	return nil
}

// RestartCount returns the number of restarts
func (rh *RecoveryHandler) RestartCount() int {
	return rh.restartCount
}
