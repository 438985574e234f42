// internal/blockchain/solbc/transaction/validator.go
package transaction

import (
	"github.com/gagliardetto/solana-go"

	"github.com/cryptothud/solana-next-typescript-starter/internal/wallet"
)

// validateRequest проверяет запрос и возвращает итоговый fee payer.
func validateRequest(req Request) (solana.PublicKey, error) {
	if len(req.Instructions) == 0 {
		return solana.PublicKey{}, ErrNoInstructions
	}
	for _, ix := range req.Instructions {
		if ix == nil {
			return solana.PublicKey{}, ErrNoInstructions
		}
	}
	if req.Signer == nil {
		return solana.PublicKey{}, ErrNoSigner
	}

	signerKey := req.Signer.PublicKey()
	if signerKey.IsZero() {
		// кошелёк без подключения не имеет ключа
		return solana.PublicKey{}, wallet.ErrWalletNotConnected
	}

	payer := req.FeePayer
	if payer.IsZero() {
		payer = signerKey
	}
	if !payer.Equals(signerKey) {
		return solana.PublicKey{}, ErrFeePayerMismatch
	}
	return payer, nil
}
