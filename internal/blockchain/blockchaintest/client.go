// Package blockchaintest содержит тестовые двойники для blockchain.Client.
package blockchaintest

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/mock"

	"github.com/cryptothud/solana-next-typescript-starter/internal/blockchain"
)

// MockClient - testify mock для blockchain.Client.
type MockClient struct {
	mock.Mock
}

var _ blockchain.Client = (*MockClient)(nil)

func (m *MockClient) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*blockchain.BlockhashContext, error) {
	args := m.Called(ctx, commitment)
	bh, _ := args.Get(0).(*blockchain.BlockhashContext)
	return bh, args.Error(1)
}

func (m *MockClient) SendRawTransaction(ctx context.Context, raw []byte, opts blockchain.TransactionOptions) (solana.Signature, error) {
	args := m.Called(ctx, raw, opts)
	sig, _ := args.Get(0).(solana.Signature)
	return sig, args.Error(1)
}

func (m *MockClient) GetSignatureStatus(ctx context.Context, sig solana.Signature) (*rpc.SignatureStatusesResult, error) {
	args := m.Called(ctx, sig)
	status, _ := args.Get(0).(*rpc.SignatureStatusesResult)
	return status, args.Error(1)
}

func (m *MockClient) GetBlockHeight(ctx context.Context, commitment rpc.CommitmentType) (uint64, error) {
	args := m.Called(ctx, commitment)
	height, _ := args.Get(0).(uint64)
	return height, args.Error(1)
}

func (m *MockClient) GetTokenSupply(ctx context.Context, mint solana.PublicKey) (*rpc.UiTokenAmount, error) {
	args := m.Called(ctx, mint)
	supply, _ := args.Get(0).(*rpc.UiTokenAmount)
	return supply, args.Error(1)
}

func (m *MockClient) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	args := m.Called(ctx, pubkey)
	info, _ := args.Get(0).(*rpc.GetAccountInfoResult)
	return info, args.Error(1)
}

func (m *MockClient) GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]blockchain.TokenHolding, error) {
	args := m.Called(ctx, owner)
	holdings, _ := args.Get(0).([]blockchain.TokenHolding)
	return holdings, args.Error(1)
}

func (m *MockClient) GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	args := m.Called(ctx, pubkey, commitment)
	balance, _ := args.Get(0).(uint64)
	return balance, args.Error(1)
}

// AccountWithData оборачивает сырые данные в ответ getAccountInfo.
func AccountWithData(data []byte) *rpc.GetAccountInfoResult {
	return &rpc.GetAccountInfoResult{
		Value: &rpc.Account{
			Data: rpc.DataBytesOrJSONFromBytes(data),
		},
	}
}
