// internal/storage/recorder.go
package storage

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/cryptothud/solana-next-typescript-starter/internal/blockchain/solbc/transaction"
	"github.com/cryptothud/solana-next-typescript-starter/internal/storage/models"
)

// JournalRecorder записывает итоги движка в журнал.
type JournalRecorder struct {
	journal Journal
}

var _ transaction.Recorder = (*JournalRecorder)(nil)

func NewJournalRecorder(journal Journal) *JournalRecorder {
	return &JournalRecorder{journal: journal}
}

func (r *JournalRecorder) Record(ctx context.Context, result *transaction.Result) error {
	return r.journal.Record(ctx, FromResult(result))
}

// FromResult переводит итог отправки в запись журнала.
func FromResult(result *transaction.Result) *models.Transaction {
	tx := &models.Transaction{
		CorrelationID: result.CorrelationID,
		WalletAddress: result.FeePayer.String(),
		Label:         result.Label,
		Status:        string(result.Status),
		Attempts:      len(result.Attempts),
		ExecutionTime: result.Duration.Seconds(),
	}
	if result.Signature != (solana.Signature{}) {
		tx.Signature = result.Signature.String()
	}
	if result.Err != nil {
		tx.ErrorMessage = result.Err.Error()
	}
	return tx
}
