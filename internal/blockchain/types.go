// internal/blockchain/types.go
package blockchain

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ErrAccountNotFound возвращается, когда аккаунт отсутствует в сети.
var ErrAccountNotFound = errors.New("account not found")

// BlockhashContext связывает blockhash с последней высотой блока, на которой он валиден.
type BlockhashContext struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
}

// TransactionOptions определяет опции для отправки транзакций.
type TransactionOptions struct {
	SkipPreflight       bool
	PreflightCommitment rpc.CommitmentType
}

// TokenHolding описывает SPL токен-аккаунт владельца (jsonParsed).
type TokenHolding struct {
	Account  solana.PublicKey
	Mint     solana.PublicKey
	Owner    solana.PublicKey
	Amount   string
	Decimals uint8
}

// Client определяет общий интерфейс для взаимодействия с блокчейном.
type Client interface {
	// Получить последний blockhash вместе с lastValidBlockHeight.
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*BlockhashContext, error)
	// Отправить подписанную сериализованную транзакцию.
	SendRawTransaction(ctx context.Context, raw []byte, opts TransactionOptions) (solana.Signature, error)
	// Получить статус подписи. nil, если узел ещё не видел транзакцию.
	GetSignatureStatus(ctx context.Context, sig solana.Signature) (*rpc.SignatureStatusesResult, error)
	// Получить текущую высоту блока.
	GetBlockHeight(ctx context.Context, commitment rpc.CommitmentType) (uint64, error)
	// Получить supply токена (содержит decimals).
	GetTokenSupply(ctx context.Context, mint solana.PublicKey) (*rpc.UiTokenAmount, error)
	// Получить информацию об аккаунте. ErrAccountNotFound, если его нет.
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	// Получить SPL токен-аккаунты владельца.
	GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]TokenHolding, error)
	// Получить баланс аккаунта в лампортах.
	GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error)
}
