package solbc

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cryptothud/solana-next-typescript-starter/internal/blockchain"
)

func newTestClient(t *testing.T) (*fakeRPC, *Client) {
	t.Helper()
	fake, srv := newFakeRPC(t)
	pool, err := NewPool([]string{srv.URL}, PoolOptions{}, zap.NewNop())
	require.NoError(t, err)
	return fake, NewClient(pool, zap.NewNop())
}

func TestClient_GetLatestBlockhash(t *testing.T) {
	fake, client := newTestClient(t)
	hash := solana.HashFromBytes(make([]byte, 32))
	hash[0] = 7
	fake.on("getLatestBlockhash", `{"context":{"slot":10},"value":{"blockhash":"`+hash.String()+`","lastValidBlockHeight":1200}}`)

	bh, err := client.GetLatestBlockhash(context.Background(), rpc.CommitmentFinalized)
	require.NoError(t, err)
	assert.Equal(t, hash, bh.Blockhash)
	assert.Equal(t, uint64(1200), bh.LastValidBlockHeight)
}

func TestClient_RPCErrorWrapping(t *testing.T) {
	fake, client := newTestClient(t)
	fake.fail("getBlockHeight", "node is behind")

	_, err := client.GetBlockHeight(context.Background(), rpc.CommitmentConfirmed)
	require.Error(t, err)

	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, "getBlockHeight", rpcErr.Method)
	assert.NotContains(t, rpcErr.Endpoint, "?")
	assert.True(t, IsRPCError(err))
	assert.Equal(t, 1, fake.count("getBlockHeight"))
}

func TestClient_GetAccountInfoNotFound(t *testing.T) {
	fake, client := newTestClient(t)
	fake.on("getAccountInfo", `{"context":{"slot":10},"value":null}`)

	_, err := client.GetAccountInfo(context.Background(), solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, blockchain.ErrAccountNotFound)
}

func TestClient_GetSignatureStatus(t *testing.T) {
	fake, client := newTestClient(t)

	fake.on("getSignatureStatuses", `{"context":{"slot":10},"value":[null]}`)
	status, err := client.GetSignatureStatus(context.Background(), solana.Signature{})
	require.NoError(t, err)
	assert.Nil(t, status)

	fake.on("getSignatureStatuses", `{"context":{"slot":10},"value":[{"slot":9,"confirmations":null,"err":null,"confirmationStatus":"finalized"}]}`)
	status, err = client.GetSignatureStatus(context.Background(), solana.Signature{})
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, rpc.ConfirmationStatusFinalized, status.ConfirmationStatus)
}

func TestClient_GetTokenAccountsByOwner(t *testing.T) {
	fake, client := newTestClient(t)
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	account := solana.NewWallet().PublicKey()

	fake.on("getTokenAccountsByOwner", `{"context":{"slot":10},"value":[{"pubkey":"`+account.String()+`","account":{"data":{"program":"spl-token","parsed":{"info":{"isNative":false,"mint":"`+mint.String()+`","owner":"`+owner.String()+`","state":"initialized","tokenAmount":{"amount":"1","decimals":0,"uiAmount":1.0,"uiAmountString":"1"}},"type":"account"},"space":165},"executable":false,"lamports":2039280,"owner":"`+solana.TokenProgramID.String()+`","rentEpoch":0}}]}`)

	holdings, err := client.GetTokenAccountsByOwner(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, account, holdings[0].Account)
	assert.Equal(t, mint, holdings[0].Mint)
	assert.Equal(t, owner, holdings[0].Owner)
	assert.Equal(t, "1", holdings[0].Amount)
	assert.Equal(t, uint8(0), holdings[0].Decimals)
}

func TestClient_GetTokenSupply(t *testing.T) {
	fake, client := newTestClient(t)
	fake.on("getTokenSupply", `{"context":{"slot":10},"value":{"amount":"1000000000","decimals":6,"uiAmount":1000.0,"uiAmountString":"1000"}}`)

	supply, err := client.GetTokenSupply(context.Background(), solana.NewWallet().PublicKey())
	require.NoError(t, err)
	assert.Equal(t, uint8(6), supply.Decimals)
}

func TestClient_GetBalance(t *testing.T) {
	fake, client := newTestClient(t)
	fake.on("getBalance", `{"context":{"slot":10},"value":2500000000}`)

	lamports, err := client.GetBalance(context.Background(), solana.NewWallet().PublicKey(), rpc.CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_500_000_000), lamports)
}
