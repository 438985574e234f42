// internal/nft/collector.go
package nft

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cryptothud/solana-next-typescript-starter/internal/blockchain"
	"github.com/cryptothud/solana-next-typescript-starter/internal/blockchain/metaplex"
	"github.com/cryptothud/solana-next-typescript-starter/internal/utils"
)

const defaultConcurrency = 8

// Collector собирает NFT кошелька: токен-аккаунты, on-chain и off-chain метаданные.
type Collector struct {
	client      blockchain.Client
	fetcher     MetadataFetcher
	logger      *zap.Logger
	hashlist    map[solana.PublicKey]struct{}
	proxyBase   string
	concurrency int
}

type Option func(*Collector)

// WithHashlist оставляет только mint-ы коллекции проекта.
func WithHashlist(mints []solana.PublicKey) Option {
	return func(c *Collector) {
		if len(mints) == 0 {
			return
		}
		c.hashlist = make(map[solana.PublicKey]struct{}, len(mints))
		for _, m := range mints {
			c.hashlist[m] = struct{}{}
		}
	}
}

func WithProxyBase(base string) Option {
	return func(c *Collector) { c.proxyBase = base }
}

func WithConcurrency(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func NewCollector(client blockchain.Client, fetcher MetadataFetcher, logger *zap.Logger, opts ...Option) *Collector {
	c := &Collector{
		client:      client,
		fetcher:     fetcher,
		logger:      logger.Named("nft-collector"),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Owned возвращает аккаунты с ровно одним неделимым токеном.
func (c *Collector) Owned(ctx context.Context, owner solana.PublicKey) ([]Holding, error) {
	accounts, err := c.client.GetTokenAccountsByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("get token accounts: %w", err)
	}

	holdings := make([]Holding, 0, len(accounts))
	for _, acc := range accounts {
		if acc.Amount != "1" || acc.Decimals != 0 {
			continue
		}
		if c.hashlist != nil {
			if _, ok := c.hashlist[acc.Mint]; !ok {
				continue
			}
		}
		holdings = append(holdings, Holding{Account: acc.Account, Mint: acc.Mint})
	}
	return holdings, nil
}

// Load загружает метаданные параллельно. Ошибка по одному mint исключает только его.
func (c *Collector) Load(ctx context.Context, holdings []Holding) []NFT {
	slots := make([]*NFT, len(holdings))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, h := range holdings {
		i, h := i, h
		g.Go(func() error {
			item, err := c.load(gCtx, h.Mint)
			if err != nil {
				c.logger.Debug("failed to pull metadata for token",
					zap.String("mint", h.Mint.String()),
					zap.Error(err))
				return nil
			}
			slots[i] = item
			return nil
		})
	}
	_ = g.Wait()

	nfts := make([]NFT, 0, len(holdings))
	for _, item := range slots {
		if item != nil {
			nfts = append(nfts, *item)
		}
	}
	return nfts
}

// Collect = Owned + Load.
func (c *Collector) Collect(ctx context.Context, owner solana.PublicKey) ([]NFT, error) {
	holdings, err := c.Owned(ctx, owner)
	if err != nil {
		return nil, err
	}
	nfts := c.Load(ctx, holdings)
	c.logger.Info("NFTs loaded",
		zap.String("owner", utils.ShortenAddress(owner.String())),
		zap.Int("holdings", len(holdings)),
		zap.Int("loaded", len(nfts)))
	return nfts, nil
}

func (c *Collector) load(ctx context.Context, mint solana.PublicKey) (*NFT, error) {
	addr, err := metaplex.MetadataAddress(mint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}
	info, err := c.client.GetAccountInfo(ctx, addr)
	if err != nil {
		if errors.Is(err, blockchain.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: no metadata account", ErrMetadataUnavailable)
		}
		return nil, fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}
	if info.Value == nil || info.Value.Data == nil {
		return nil, fmt.Errorf("%w: empty metadata account", ErrMetadataUnavailable)
	}
	onchain, err := metaplex.DecodeMetadata(info.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}

	external, err := c.fetcher.Fetch(ctx, onchain.URI)
	if err != nil {
		return nil, err
	}

	return &NFT{
		Mint:     mint,
		Onchain:  onchain,
		External: external,
		ImageURL: NormalizeURI(external.Image, c.proxyBase),
	}, nil
}

// SOLBalance возвращает баланс кошелька в SOL.
func SOLBalance(ctx context.Context, client blockchain.Client, owner solana.PublicKey) (float64, error) {
	lamports, err := client.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return utils.LamportsToSOL(lamports), nil
}
