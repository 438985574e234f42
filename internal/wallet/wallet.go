// ==================================
// File: internal/wallet/wallet.go
// ==================================
package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

var (
	// ErrInvalidPrivateKey возникает при некорректном ключе.
	ErrInvalidPrivateKey = errors.New("invalid private key")
	// ErrWalletNotConnected возникает, когда кошелёк не подключен.
	ErrWalletNotConnected = errors.New("wallet not connected")
	// ErrSigningDeclined возникает, когда подпись не получена (пользователь отклонил).
	ErrSigningDeclined = errors.New("signing declined")
	// ErrSignedMessageMismatch возникает, если кошелёк подписал другое сообщение.
	ErrSignedMessageMismatch = errors.New("signed message does not match request")
)

// Keypair - локальный ключ для автономной подписи без участия пользователя.
type Keypair struct {
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
}

// NewKeypair создаёт ключ из base58-encoded 64-байтного секрета.
func NewKeypair(privateKeyBase58 string) (*Keypair, error) {
	privateKeyBytes, err := base58.Decode(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	if len(privateKeyBytes) != 64 {
		return nil, fmt.Errorf("%w: expected 64 bytes, got %d", ErrInvalidPrivateKey, len(privateKeyBytes))
	}
	privateKey := solana.PrivateKey(privateKeyBytes)
	return &Keypair{
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
	}, nil
}

// NewRandomKeypair генерирует новый ключ.
func NewRandomKeypair() *Keypair {
	w := solana.NewWallet()
	return &Keypair{privateKey: w.PrivateKey, publicKey: w.PublicKey()}
}

// PublicKey возвращает публичный ключ.
func (k *Keypair) PublicKey() solana.PublicKey {
	return k.publicKey
}

// SignTransaction подписывает транзакцию с помощью приватного ключа.
func (k *Keypair) SignTransaction(_ context.Context, tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(k.publicKey) {
			return &k.privateKey
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("keypair sign: %w", err)
	}
	return nil
}

// String возвращает строковое представление кошелька (его публичный ключ).
func (k *Keypair) String() string {
	return k.publicKey.String()
}
