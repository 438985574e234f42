package wallet

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestTx(t *testing.T, payer solana.PublicKey) *solana.Transaction {
	t.Helper()
	ix := system.NewTransferInstruction(1000, payer, solana.NewWallet().PublicKey()).Build()
	tx, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{1}, solana.TransactionPayer(payer))
	require.NoError(t, err)
	return tx
}

func TestNewKeypair(t *testing.T) {
	w := solana.NewWallet()
	kp, err := NewKeypair(base58.Encode(w.PrivateKey))
	require.NoError(t, err)
	assert.Equal(t, w.PublicKey(), kp.PublicKey())

	_, err = NewKeypair(base58.Encode([]byte{1, 2, 3}))
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)

	_, err = NewKeypair("0OIl")
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)
}

func TestKeypair_SignTransaction(t *testing.T) {
	kp := NewRandomKeypair()
	tx := newTestTx(t, kp.PublicKey())

	require.NoError(t, kp.SignTransaction(context.Background(), tx))
	require.Len(t, tx.Signatures, 1)
	assert.NoError(t, tx.VerifySignatures())
}

// MockAdapter для тестирования
type MockAdapter struct {
	mock.Mock
}

func (m *MockAdapter) Connected() bool {
	return m.Called().Bool(0)
}

func (m *MockAdapter) PublicKey() solana.PublicKey {
	return m.Called().Get(0).(solana.PublicKey)
}

func (m *MockAdapter) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	args := m.Called(ctx, tx)
	signed, _ := args.Get(0).(*solana.Transaction)
	return signed, args.Error(1)
}

func TestAdapterSigner_NotConnected(t *testing.T) {
	adapter := new(MockAdapter)
	adapter.On("Connected").Return(false)

	signer := NewAdapterSigner(adapter)
	err := signer.SignTransaction(context.Background(), newTestTx(t, solana.NewWallet().PublicKey()))
	assert.ErrorIs(t, err, ErrWalletNotConnected)
	adapter.AssertNotCalled(t, "SignTransaction", mock.Anything, mock.Anything)
	assert.True(t, signer.PublicKey().IsZero())
}

func TestAdapterSigner_Declined(t *testing.T) {
	adapter := new(MockAdapter)
	adapter.On("Connected").Return(true)
	adapter.On("SignTransaction", mock.Anything, mock.Anything).Return(nil, nil).Once()
	adapter.On("SignTransaction", mock.Anything, mock.Anything).Return(nil, errors.New("user rejected")).Once()

	signer := NewAdapterSigner(adapter)
	tx := newTestTx(t, solana.NewWallet().PublicKey())

	assert.ErrorIs(t, signer.SignTransaction(context.Background(), tx), ErrSigningDeclined)
	assert.ErrorIs(t, signer.SignTransaction(context.Background(), tx), ErrSigningDeclined)
}

func TestAdapterSigner_CopiesSignatures(t *testing.T) {
	kp := NewRandomKeypair()
	tx := newTestTx(t, kp.PublicKey())

	signed := *tx
	signed.Signatures = nil
	require.NoError(t, kp.SignTransaction(context.Background(), &signed))

	adapter := new(MockAdapter)
	adapter.On("Connected").Return(true)
	adapter.On("SignTransaction", mock.Anything, tx).Return(&signed, nil)

	require.NoError(t, NewAdapterSigner(adapter).SignTransaction(context.Background(), tx))
	assert.NoError(t, tx.VerifySignatures())
}

func TestAdapterSigner_MessageMismatch(t *testing.T) {
	kp := NewRandomKeypair()
	tx := newTestTx(t, kp.PublicKey())
	other := newTestTx(t, kp.PublicKey())
	require.NoError(t, kp.SignTransaction(context.Background(), other))

	adapter := new(MockAdapter)
	adapter.On("Connected").Return(true)
	adapter.On("SignTransaction", mock.Anything, tx).Return(other, nil)

	err := NewAdapterSigner(adapter).SignTransaction(context.Background(), tx)
	assert.ErrorIs(t, err, ErrSignedMessageMismatch)
}

func TestPromptAdapter(t *testing.T) {
	kp := NewRandomKeypair()

	var out bytes.Buffer
	approve := NewAdapterSigner(NewPromptAdapter(kp, strings.NewReader("y\n"), &out))
	tx := newTestTx(t, kp.PublicKey())
	require.NoError(t, approve.SignTransaction(context.Background(), tx))
	assert.NoError(t, tx.VerifySignatures())
	assert.Contains(t, out.String(), "Approve transaction?")

	decline := NewAdapterSigner(NewPromptAdapter(kp, strings.NewReader("n\n"), &out))
	err := decline.SignTransaction(context.Background(), newTestTx(t, kp.PublicKey()))
	assert.ErrorIs(t, err, ErrSigningDeclined)
}

func TestLoadWallets(t *testing.T) {
	w := solana.NewWallet()
	path := filepath.Join(t.TempDir(), "wallets.yaml")
	content := "wallets:\n  - name: main\n    private_key: " + base58.Encode(w.PrivateKey) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	wallets, err := LoadWallets(path)
	require.NoError(t, err)
	require.Contains(t, wallets, "main")
	assert.Equal(t, w.PublicKey(), wallets["main"].PublicKey())

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("wallets: []\n"), 0o600))
	_, err = LoadWallets(empty)
	assert.Error(t, err)
}
