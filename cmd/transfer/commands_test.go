package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cryptothud/solana-next-typescript-starter/internal/blockchain/blockchaintest"
	"github.com/cryptothud/solana-next-typescript-starter/internal/blockchain/solbc/transaction"
	"github.com/cryptothud/solana-next-typescript-starter/internal/export"
	"github.com/cryptothud/solana-next-typescript-starter/internal/storage/memory"
	"github.com/cryptothud/solana-next-typescript-starter/internal/storage/models"
	"github.com/cryptothud/solana-next-typescript-starter/internal/transfer"
	"github.com/cryptothud/solana-next-typescript-starter/internal/wallet"
)

type fakeSubmitter struct {
	req    transaction.Request
	result *transaction.Result
	err    error
}

func (f *fakeSubmitter) Submit(_ context.Context, req transaction.Request) (*transaction.Result, error) {
	f.req = req
	return f.result, f.err
}

func testEnv(engine submitter) *env {
	return &env{
		signer:  wallet.NewRandomKeypair(),
		builder: transfer.NewBuilder(&blockchaintest.MockClient{}, zap.NewNop()),
		engine:  engine,
	}
}

func TestSubmit_NativeTransfer(t *testing.T) {
	sig := solana.Signature{1, 2, 3}
	engine := &fakeSubmitter{result: &transaction.Result{
		Signature: sig,
		Status:    transaction.StatusConfirmed,
		Attempts:  []transaction.Attempt{{Number: 1}, {Number: 2}},
		Duration:  1500 * time.Millisecond,
	}}
	e := testEnv(engine)
	to := solana.NewWallet().PublicKey()

	var out bytes.Buffer
	err := submit(context.Background(), e, "send-sol", func(ctx context.Context, e *env) ([]solana.Instruction, error) {
		return e.builder.Native(e.signer.PublicKey(), to, 0.5)
	}, &out)
	require.NoError(t, err)

	assert.Equal(t, "send-sol", engine.req.Label)
	assert.Equal(t, e.signer, engine.req.Signer)
	require.Len(t, engine.req.Instructions, 1)
	assert.Equal(t, system.ProgramID, engine.req.Instructions[0].ProgramID())
	assert.Contains(t, out.String(), "Transaction confirmed: "+sig.String())
	assert.Contains(t, out.String(), "2 attempt(s), 1.5s")
}

func TestSubmit_Errors(t *testing.T) {
	buildErr := errors.New("asset not found")
	e := testEnv(&fakeSubmitter{})
	err := submit(context.Background(), e, "transfer-nft", func(context.Context, *env) ([]solana.Instruction, error) {
		return nil, buildErr
	}, &bytes.Buffer{})
	assert.ErrorIs(t, err, buildErr)

	engine := &fakeSubmitter{
		result: &transaction.Result{Attempts: make([]transaction.Attempt, 5)},
		err:    transaction.ErrAttemptsExhausted,
	}
	e = testEnv(engine)
	var out bytes.Buffer
	err = submit(context.Background(), e, "send-sol", func(ctx context.Context, e *env) ([]solana.Instruction, error) {
		return e.builder.Native(e.signer.PublicKey(), solana.NewWallet().PublicKey(), 1)
	}, &out)
	assert.ErrorIs(t, err, transaction.ErrAttemptsExhausted)
	assert.Contains(t, out.String(), "not confirmed after 5 attempt(s)")
}

func TestRootCmd_ValidatesArgsBeforeSetup(t *testing.T) {
	tests := map[string][]string{
		"missing amount":  {"sol", "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"},
		"bad recipient":   {"sol", "not-a-key", "1"},
		"negative amount": {"sol", "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", "-1"},
		"bad mint":        {"nft", "0OIl", "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"},
		"spl arity":       {"spl", "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", "1"},
		"history format":  {"history", "--format", "xml"},
		"history limit":   {"history", "--limit", "0"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			root := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
			root.SetArgs(append(args, "--config", "/nonexistent/config.yaml"))
			err := root.Execute()
			require.Error(t, err)
			assert.NotContains(t, err.Error(), "load config")
		})
	}
}

func TestParseAmount(t *testing.T) {
	amount, err := parseAmount("0.25")
	require.NoError(t, err)
	assert.Equal(t, 0.25, amount)

	_, err = parseAmount("0")
	assert.ErrorIs(t, err, transfer.ErrInvalidAmount)

	_, err = parseAmount("abc")
	assert.Error(t, err)
}

func seededJournal(t *testing.T, owner solana.PublicKey) *memory.Journal {
	t.Helper()
	j := memory.NewJournal()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, status := range []string{"confirmed", "failed", "finalized"} {
		tx := &models.Transaction{
			CorrelationID: string(rune('a' + i)),
			WalletAddress: owner.String(),
			Label:         "send-sol",
			Status:        status,
			Attempts:      i + 1,
		}
		tx.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, j.Record(context.Background(), tx))
	}
	return j
}

func TestHistory_Table(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	j := seededJournal(t, owner)

	var out bytes.Buffer
	err := history(context.Background(), j, owner, "", &historyFlags{limit: 10, status: "failed"}, zap.NewNop(), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "2024-05-01 12:01:00")
	assert.Contains(t, out.String(), "2 attempt(s)")
	assert.NotContains(t, out.String(), "finalized")

	out.Reset()
	err = history(context.Background(), j, solana.NewWallet().PublicKey(), "", &historyFlags{limit: 10}, zap.NewNop(), &out)
	require.NoError(t, err)
	assert.Equal(t, "No transactions recorded\n", out.String())
}

func TestHistory_ExportCSV(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	j := seededJournal(t, owner)

	var out bytes.Buffer
	err := history(context.Background(), j, owner, export.FormatCSV, &historyFlags{limit: 2}, zap.NewNop(), &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "created_at,"))
	// limit берёт две новых записи, выгрузка идёт от старых
	assert.Contains(t, lines[1], ",b,")
	assert.Contains(t, lines[2], ",c,")

	out.Reset()
	err = history(context.Background(), j, owner, export.FormatJSON,
		&historyFlags{limit: 10, output: t.TempDir()}, zap.NewNop(), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Exported to ")
}
