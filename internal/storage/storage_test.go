package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptothud/solana-next-typescript-starter/internal/blockchain/solbc/transaction"
	"github.com/cryptothud/solana-next-typescript-starter/internal/storage"
	"github.com/cryptothud/solana-next-typescript-starter/internal/storage/memory"
	"github.com/cryptothud/solana-next-typescript-starter/internal/storage/models"
)

func TestMemoryXPStore(t *testing.T) {
	s := memory.NewXPStore(map[string]float64{"w1": 120})
	xp, err := s.GetXP(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, 120.0, xp)

	_, err = s.GetXP(context.Background(), "w2")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMemoryJournal_ListNewestFirst(t *testing.T) {
	j := memory.NewJournal()
	ctx := context.Background()
	base := time.Now().UTC()
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, j.Record(ctx, &models.Transaction{
			BaseModel:     models.BaseModel{CreatedAt: base.Add(time.Duration(i) * time.Second)},
			CorrelationID: id,
			WalletAddress: "w1",
		}))
	}
	require.NoError(t, j.Record(ctx, &models.Transaction{CorrelationID: "x", WalletAddress: "w2"}))

	txs, err := j.List(ctx, "w1", 2, 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "c", txs[0].CorrelationID)
	assert.Equal(t, "b", txs[1].CorrelationID)

	txs, err = j.List(ctx, "w1", 2, 2)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "a", txs[0].CorrelationID)

	n, err := j.Count(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = j.Get(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestJournalRecorder(t *testing.T) {
	j := memory.NewJournal()
	payer := solana.NewWallet().PublicKey()
	sig := solana.Signature{1, 2, 3}

	r := storage.NewJournalRecorder(j)
	require.NoError(t, r.Record(context.Background(), &transaction.Result{
		CorrelationID: "corr-1",
		Label:         "send-sol",
		FeePayer:      payer,
		Signature:     sig,
		Status:        transaction.StatusConfirmed,
		Attempts:      make([]transaction.Attempt, 2),
		Duration:      1500 * time.Millisecond,
	}))
	require.NoError(t, r.Record(context.Background(), &transaction.Result{
		CorrelationID: "corr-2",
		FeePayer:      payer,
		Status:        transaction.StatusFailed,
		Err:           errors.New("declined"),
	}))

	tx, err := j.Get(context.Background(), "corr-1")
	require.NoError(t, err)
	assert.Equal(t, sig.String(), tx.Signature)
	assert.Equal(t, payer.String(), tx.WalletAddress)
	assert.Equal(t, "confirmed", tx.Status)
	assert.Equal(t, 2, tx.Attempts)
	assert.InDelta(t, 1.5, tx.ExecutionTime, 1e-9)

	failed, err := j.Get(context.Background(), "corr-2")
	require.NoError(t, err)
	assert.Empty(t, failed.Signature)
	assert.Equal(t, "declined", failed.ErrorMessage)
}
