// internal/wallet/adapter.go
package wallet

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Adapter моделирует внешний кошелёк, который подписывает по запросу пользователя.
type Adapter interface {
	Connected() bool
	PublicKey() solana.PublicKey
	// SignTransaction возвращает подписанную копию или nil, если пользователь отказал.
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)
}

// AdapterSigner приводит Adapter к интерфейсу подписанта движка.
type AdapterSigner struct {
	adapter Adapter
}

// NewAdapterSigner оборачивает внешний кошелёк.
func NewAdapterSigner(adapter Adapter) *AdapterSigner {
	return &AdapterSigner{adapter: adapter}
}

// PublicKey возвращает ключ кошелька, либо нулевой ключ без подключения.
func (s *AdapterSigner) PublicKey() solana.PublicKey {
	if s.adapter == nil || !s.adapter.Connected() {
		return solana.PublicKey{}
	}
	return s.adapter.PublicKey()
}

// SignTransaction запрашивает подпись у кошелька и переносит подписи в tx.
func (s *AdapterSigner) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	if s.adapter == nil || !s.adapter.Connected() {
		return ErrWalletNotConnected
	}

	signed, err := s.adapter.SignTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSigningDeclined, err)
	}
	if signed == nil || len(signed.Signatures) == 0 {
		return ErrSigningDeclined
	}

	want, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	got, err := signed.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal signed message: %w", err)
	}
	if !bytes.Equal(want, got) {
		return ErrSignedMessageMismatch
	}

	tx.Signatures = append(tx.Signatures[:0], signed.Signatures...)
	return nil
}
