// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/cryptothud/solana-next-typescript-starter/internal/blockchain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client – тонкий адаптер для взаимодействия с блокчейном Solana через solana-go.
// Каждый вызов выполняется на одном узле пула; повторов на уровне запроса нет.
type Client struct {
	pool   *Pool
	logger *zap.Logger
}

var _ blockchain.Client = (*Client)(nil)

// NewClient создаёт новый клиент, принимая пул узлов и логгер через dependency injection.
func NewClient(pool *Pool, logger *zap.Logger) *Client {
	return &Client{
		pool:   pool,
		logger: logger.Named("solbc-client"),
	}
}

func (c *Client) fail(ep *Endpoint, method string, err error) error {
	c.logger.Debug(method+" error",
		zap.String("endpoint", MaskURL(ep.URL)),
		zap.Error(err))
	return NewRPCError(err, ep.URL, method)
}

// GetLatestBlockhash получает последний blockhash и lastValidBlockHeight.
func (c *Client) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*blockchain.BlockhashContext, error) {
	ep := c.pool.Pick()
	result, err := ep.rpc.GetLatestBlockhash(ctx, commitment)
	if err != nil {
		return nil, c.fail(ep, "getLatestBlockhash", err)
	}
	if result == nil || result.Value == nil {
		return nil, c.fail(ep, "getLatestBlockhash", errors.New("empty response"))
	}
	return &blockchain.BlockhashContext{
		Blockhash:            result.Value.Blockhash,
		LastValidBlockHeight: result.Value.LastValidBlockHeight,
	}, nil
}

// SendRawTransaction отправляет сериализованную подписанную транзакцию.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte, opts blockchain.TransactionOptions) (solana.Signature, error) {
	ep := c.pool.Pick()
	sig, err := ep.rpc.SendRawTransactionWithOpts(ctx, raw, rpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: opts.PreflightCommitment,
	})
	if err != nil {
		return solana.Signature{}, c.fail(ep, "sendTransaction", err)
	}
	return sig, nil
}

// GetSignatureStatus получает статус одной подписи.
func (c *Client) GetSignatureStatus(ctx context.Context, sig solana.Signature) (*rpc.SignatureStatusesResult, error) {
	ep := c.pool.Pick()
	result, err := ep.rpc.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		return nil, c.fail(ep, "getSignatureStatuses", err)
	}
	if result == nil || len(result.Value) == 0 {
		return nil, nil
	}
	return result.Value[0], nil
}

// GetBlockHeight получает текущую высоту блока.
func (c *Client) GetBlockHeight(ctx context.Context, commitment rpc.CommitmentType) (uint64, error) {
	ep := c.pool.Pick()
	height, err := ep.rpc.GetBlockHeight(ctx, commitment)
	if err != nil {
		return 0, c.fail(ep, "getBlockHeight", err)
	}
	return height, nil
}

// GetTokenSupply получает supply токена.
func (c *Client) GetTokenSupply(ctx context.Context, mint solana.PublicKey) (*rpc.UiTokenAmount, error) {
	ep := c.pool.Pick()
	result, err := ep.rpc.GetTokenSupply(ctx, mint, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, c.fail(ep, "getTokenSupply", err)
	}
	if result == nil || result.Value == nil {
		return nil, c.fail(ep, "getTokenSupply", errors.New("empty response"))
	}
	return result.Value, nil
}

// GetAccountInfo получает информацию об аккаунте.
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	ep := c.pool.Pick()
	result, err := ep.rpc.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	})
	if errors.Is(err, rpc.ErrNotFound) || (err == nil && (result == nil || result.Value == nil)) {
		return nil, blockchain.ErrAccountNotFound
	}
	if err != nil {
		return nil, c.fail(ep, "getAccountInfo", err)
	}
	return result, nil
}

type parsedTokenAccount struct {
	Parsed struct {
		Info struct {
			Mint        string `json:"mint"`
			Owner       string `json:"owner"`
			TokenAmount struct {
				Amount   string `json:"amount"`
				Decimals uint8  `json:"decimals"`
			} `json:"tokenAmount"`
		} `json:"info"`
	} `json:"parsed"`
}

// GetTokenAccountsByOwner получает SPL токен-аккаунты владельца в jsonParsed виде.
func (c *Client) GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]blockchain.TokenHolding, error) {
	programID := solana.TokenProgramID
	ep := c.pool.Pick()
	result, err := ep.rpc.GetTokenAccountsByOwner(ctx, owner,
		&rpc.GetTokenAccountsConfig{ProgramId: &programID},
		&rpc.GetTokenAccountsOpts{Encoding: solana.EncodingJSONParsed},
	)
	if err != nil {
		return nil, c.fail(ep, "getTokenAccountsByOwner", err)
	}

	holdings := make([]blockchain.TokenHolding, 0, len(result.Value))
	for _, acc := range result.Value {
		if acc == nil || acc.Account.Data == nil {
			continue
		}
		holding, err := decodeParsedTokenAccount(acc.Pubkey, acc.Account.Data.GetRawJSON())
		if err != nil {
			c.logger.Debug("Skipping unparsable token account",
				zap.String("account", acc.Pubkey.String()),
				zap.Error(err))
			continue
		}
		holdings = append(holdings, holding)
	}
	return holdings, nil
}

func decodeParsedTokenAccount(account solana.PublicKey, raw []byte) (blockchain.TokenHolding, error) {
	var parsed parsedTokenAccount
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return blockchain.TokenHolding{}, fmt.Errorf("decode token account: %w", err)
	}
	info := parsed.Parsed.Info
	mint, err := solana.PublicKeyFromBase58(info.Mint)
	if err != nil {
		return blockchain.TokenHolding{}, fmt.Errorf("invalid mint: %w", err)
	}
	owner, err := solana.PublicKeyFromBase58(info.Owner)
	if err != nil {
		return blockchain.TokenHolding{}, fmt.Errorf("invalid owner: %w", err)
	}
	return blockchain.TokenHolding{
		Account:  account,
		Mint:     mint,
		Owner:    owner,
		Amount:   info.TokenAmount.Amount,
		Decimals: info.TokenAmount.Decimals,
	}, nil
}

// GetBalance получает баланс аккаунта в лампортах.
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	ep := c.pool.Pick()
	result, err := ep.rpc.GetBalance(ctx, pubkey, commitment)
	if err != nil {
		return 0, c.fail(ep, "getBalance", err)
	}
	return result.Value, nil
}
