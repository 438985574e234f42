// internal/blockchain/solbc/transaction/engine.go
package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cryptothud/solana-next-typescript-starter/internal/blockchain"
	"github.com/cryptothud/solana-next-typescript-starter/internal/events"
)

// Engine проводит транзакцию через отправку, ожидание подтверждения и повторы.
// Каждая попытка получает свежий blockhash и заново подписывается.
type Engine struct {
	client    blockchain.Client
	logger    *zap.Logger
	config    Config
	monitor   *monitor
	metrics   *Metrics
	publisher events.Publisher
	recorder  Recorder
}

type Option func(*Engine)

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

func NewEngine(client blockchain.Client, logger *zap.Logger, config Config, opts ...Option) *Engine {
	config = config.withDefaults()
	logger = logger.Named("tx-engine")
	e := &Engine{
		client: client,
		logger: logger,
		config: config,
		monitor: &monitor{
			client: client,
			logger: logger,
			config: config,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config возвращает итоговую конфигурацию движка.
func (e *Engine) Config() Config {
	return e.config
}

// Submit выполняет не более MaxAttempts попыток. Ошибка nil только при подтверждении.
// После исчерпания попыток возвращается ErrAttemptsExhausted и сетевых вызовов больше нет.
func (e *Engine) Submit(ctx context.Context, req Request) (*Result, error) {
	payer, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := &Result{
		CorrelationID: uuid.New().String(),
		Label:         req.Label,
		FeePayer:      payer,
		Status:        StatusPending,
	}
	log := e.logger.With(
		zap.String("correlation_id", result.CorrelationID),
		zap.String("label", req.Label),
		zap.String("fee_payer", payer.String()))

	for n := 1; n <= e.config.MaxAttempts; n++ {
		attempt, err := e.attempt(ctx, log, req, payer, result.CorrelationID, n)
		result.Attempts = append(result.Attempts, attempt)
		e.metrics.observeAttempt(attempt.Status)

		if err == nil {
			result.Signature = attempt.Signature
			result.Status = attempt.Status
			log.Info("Transaction confirmed",
				zap.String("signature", attempt.Signature.String()),
				zap.String("status", string(attempt.Status)),
				zap.Int("attempt", n))
			return e.finish(ctx, result, start, nil)
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			log.Error("Transaction aborted", zap.Int("attempt", n), zap.Error(perm.err))
			result.Signature = attempt.Signature
			result.Status = StatusFailed
			return e.finish(ctx, result, start, perm.err)
		}

		if attempt.Status == StatusBlockhashExpired {
			e.publish(events.TxExpiredEvent{
				BaseEvent:     events.NewBase(events.TxExpired),
				CorrelationID: result.CorrelationID,
				Signature:     attempt.Signature.String(),
				Attempt:       n,
			})
		}
		log.Warn("Attempt failed",
			zap.Int("attempt", n),
			zap.Int("max_attempts", e.config.MaxAttempts),
			zap.String("status", string(attempt.Status)),
			zap.Error(err))
	}

	result.Status = StatusFailed
	last := result.Attempts[len(result.Attempts)-1].Err
	return e.finish(ctx, result, start, fmt.Errorf("%w (%d): %v", ErrAttemptsExhausted, e.config.MaxAttempts, last))
}

func (e *Engine) attempt(ctx context.Context, log *zap.Logger, req Request, payer solana.PublicKey, correlationID string, n int) (Attempt, error) {
	a := Attempt{Number: n, Status: StatusPending}
	fail := func(status Status, err error) (Attempt, error) {
		a.Status = status
		a.Err = err
		return a, err
	}

	if err := ctx.Err(); err != nil {
		return fail(StatusPending, permanent(err))
	}

	bh, err := e.client.GetLatestBlockhash(ctx, e.config.BlockhashCommitment)
	if err != nil {
		return fail(StatusFailed, fmt.Errorf("get latest blockhash: %w", err))
	}
	a.Blockhash = *bh

	tx, err := e.build(req.Instructions, payer, bh.Blockhash)
	if err != nil {
		return fail(StatusFailed, permanent(fmt.Errorf("build transaction: %w", err)))
	}
	if err := req.Signer.SignTransaction(ctx, tx); err != nil {
		return fail(StatusFailed, permanent(fmt.Errorf("sign transaction: %w", err)))
	}
	raw, err := tx.MarshalBinary()
	if err != nil {
		return fail(StatusFailed, permanent(fmt.Errorf("serialize transaction: %w", err)))
	}

	sig, err := e.client.SendRawTransaction(ctx, raw, blockchain.TransactionOptions{
		SkipPreflight:       e.config.SkipPreflight,
		PreflightCommitment: e.config.BlockhashCommitment,
	})
	if err != nil {
		return fail(StatusFailed, fmt.Errorf("send transaction: %w", err))
	}
	a.Signature = sig

	log.Info("Transaction sent",
		zap.String("signature", sig.String()),
		zap.Int("attempt", n),
		zap.Uint64("last_valid_block_height", bh.LastValidBlockHeight))
	e.publish(events.TxSubmittedEvent{
		BaseEvent:     events.NewBase(events.TxSubmitted),
		CorrelationID: correlationID,
		Label:         req.Label,
		FeePayer:      payer.String(),
		Signature:     sig.String(),
		Attempt:       n,
	})

	status, err := e.monitor.await(ctx, sig, *bh)
	if err != nil {
		return fail(status, err)
	}
	a.Status = status
	return a, nil
}

func (e *Engine) build(ixs []solana.Instruction, payer solana.PublicKey, blockhash solana.Hash) (*solana.Transaction, error) {
	tx, err := solana.NewTransaction(ixs, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, err
	}
	if e.config.Format == FormatV0 {
		tx.Message.SetVersion(solana.MessageVersionV0)
	}
	return tx, nil
}

func (e *Engine) finish(ctx context.Context, result *Result, start time.Time, err error) (*Result, error) {
	result.Duration = time.Since(start)
	result.Err = err
	e.metrics.observeResult(result, start)

	if result.Confirmed() {
		e.publish(events.TxConfirmedEvent{
			BaseEvent:     events.NewBase(events.TxConfirmed),
			CorrelationID: result.CorrelationID,
			Label:         result.Label,
			FeePayer:      result.FeePayer.String(),
			Signature:     result.Signature.String(),
			Status:        string(result.Status),
			Attempts:      len(result.Attempts),
			Duration:      result.Duration,
		})
	} else {
		msg := ""
		if err != nil {
			msg = err.Error()
		}
		e.publish(events.TxFailedEvent{
			BaseEvent:     events.NewBase(events.TxFailed),
			CorrelationID: result.CorrelationID,
			Label:         result.Label,
			FeePayer:      result.FeePayer.String(),
			Attempts:      len(result.Attempts),
			Error:         msg,
		})
	}

	if e.recorder != nil {
		if rerr := e.recorder.Record(context.WithoutCancel(ctx), result); rerr != nil {
			e.logger.Warn("Failed to record transaction",
				zap.String("correlation_id", result.CorrelationID),
				zap.Error(rerr))
		}
	}
	return result, err
}

func (e *Engine) publish(event events.Event) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(event); err != nil {
		e.logger.Debug("Event not published",
			zap.String("event_type", string(event.Type())),
			zap.Error(err))
	}
}
