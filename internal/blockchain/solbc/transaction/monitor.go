// internal/blockchain/solbc/transaction/monitor.go
package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/cryptothud/solana-next-typescript-starter/internal/blockchain"
)

// monitor опрашивает статус подписи до подтверждения или истечения blockhash.
type monitor struct {
	client blockchain.Client
	logger *zap.Logger
	config Config
}

// expiryHeight - высота, после которой попытка считается истекшей.
func expiryHeight(lastValid, margin uint64) uint64 {
	if lastValid <= margin {
		return 0
	}
	return lastValid - margin
}

// await возвращает StatusConfirmed/StatusFinalized при успехе,
// StatusBlockhashExpired с ErrBlockhashExpired при истечении,
// StatusFailed с ошибкой RPC или permanent(ErrTransactionFailed).
func (m *monitor) await(ctx context.Context, sig solana.Signature, bh blockchain.BlockhashContext) (Status, error) {
	limit := expiryHeight(bh.LastValidBlockHeight, m.config.ExpiryMargin)

	// первый запрос сразу после отправки, PollInterval только между проверками
	for {
		if err := ctx.Err(); err != nil {
			return StatusPending, permanent(err)
		}

		done, st, err := m.check(ctx, sig, limit)
		if done {
			return st, err
		}

		timer := time.NewTimer(m.config.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return StatusPending, permanent(ctx.Err())
		case <-timer.C:
		}
	}
}

// check - одна проверка статуса и высоты. done=false: продолжать опрос.
func (m *monitor) check(ctx context.Context, sig solana.Signature, limit uint64) (bool, Status, error) {
	status, err := m.client.GetSignatureStatus(ctx, sig)
	if err != nil {
		return true, StatusFailed, fmt.Errorf("get signature status: %w", err)
	}
	if status != nil {
		if status.Err != nil {
			return true, StatusFailed, permanent(fmt.Errorf("%w: %v", ErrTransactionFailed, status.Err))
		}
		switch status.ConfirmationStatus {
		case rpc.ConfirmationStatusConfirmed:
			return true, StatusConfirmed, nil
		case rpc.ConfirmationStatusFinalized:
			return true, StatusFinalized, nil
		}
	}

	height, err := m.client.GetBlockHeight(ctx, m.config.HeightCommitment)
	if err != nil {
		return true, StatusFailed, fmt.Errorf("get block height: %w", err)
	}
	if height > limit {
		m.logger.Debug("Blockhash expired",
			zap.String("signature", sig.String()),
			zap.Uint64("block_height", height),
			zap.Uint64("expiry_height", limit))
		return true, StatusBlockhashExpired, ErrBlockhashExpired
	}
	return false, StatusPending, nil
}
