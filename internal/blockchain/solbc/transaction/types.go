// internal/blockchain/solbc/transaction/types.go
package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/cryptothud/solana-next-typescript-starter/internal/blockchain"
)

var (
	ErrBlockhashExpired  = errors.New("blockhash expired before confirmation")
	ErrAttemptsExhausted = errors.New("transaction not confirmed after all attempts")
	ErrTransactionFailed = errors.New("transaction failed on-chain")
	ErrNoInstructions    = errors.New("transaction has no instructions")
	ErrNoSigner          = errors.New("transaction has no signer")
	ErrFeePayerMismatch  = errors.New("fee payer does not match signer")
)

// Signer - единая абстракция подписи: локальный ключ или внешний кошелёк.
type Signer interface {
	PublicKey() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
}

// Recorder получает итог каждой отправки (журнал транзакций).
type Recorder interface {
	Record(ctx context.Context, result *Result) error
}

// Format - формат сообщения транзакции.
type Format string

const (
	FormatLegacy Format = "legacy"
	FormatV0     Format = "v0"
)

// Status - статус подтверждения попытки или всей отправки.
type Status string

const (
	StatusPending          Status = "pending"
	StatusConfirmed        Status = "confirmed"
	StatusFinalized        Status = "finalized"
	StatusBlockhashExpired Status = "blockhash-expired"
	StatusFailed           Status = "failed"
)

const (
	DefaultPollInterval = 2500 * time.Millisecond
	DefaultMaxAttempts  = 5
	DefaultExpiryMargin = 150
)

type Config struct {
	PollInterval time.Duration
	MaxAttempts  int
	// ExpiryMargin вычитается из lastValidBlockHeight при каждой проверке истечения.
	// 0 означает DefaultExpiryMargin.
	ExpiryMargin        uint64
	BlockhashCommitment rpc.CommitmentType
	HeightCommitment    rpc.CommitmentType
	Format              Format
	SkipPreflight       bool
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() Config {
	return Config{
		PollInterval:        DefaultPollInterval,
		MaxAttempts:         DefaultMaxAttempts,
		ExpiryMargin:        DefaultExpiryMargin,
		BlockhashCommitment: rpc.CommitmentFinalized,
		HeightCommitment:    rpc.CommitmentFinalized,
		Format:              FormatLegacy,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.ExpiryMargin == 0 {
		c.ExpiryMargin = d.ExpiryMargin
	}
	if c.BlockhashCommitment == "" {
		c.BlockhashCommitment = d.BlockhashCommitment
	}
	if c.HeightCommitment == "" {
		c.HeightCommitment = d.HeightCommitment
	}
	if c.Format == "" {
		c.Format = d.Format
	}
	return c
}

// Request - одно логическое действие пользователя.
type Request struct {
	Instructions []solana.Instruction
	// FeePayer по умолчанию - ключ подписанта.
	FeePayer solana.PublicKey
	Signer   Signer
	// Label описывает действие в логах и журнале ("send-sol", "transfer-nft").
	Label string
}

// Attempt - одна попытка: свой blockhash, своя подпись.
type Attempt struct {
	Number    int
	Blockhash blockchain.BlockhashContext
	Signature solana.Signature
	Status    Status
	Err       error
}

// Result - итог отправки.
type Result struct {
	CorrelationID string
	Label         string
	FeePayer      solana.PublicKey
	Signature     solana.Signature
	Status        Status
	Attempts      []Attempt
	Duration      time.Duration
	Err           error
}

// Confirmed - единственный исход, который видит UI.
func (r *Result) Confirmed() bool {
	return r != nil && (r.Status == StatusConfirmed || r.Status == StatusFinalized)
}

// permanentError помечает ошибку, при которой повтор попытки бессмысленен.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return &permanentError{err: err}
}
