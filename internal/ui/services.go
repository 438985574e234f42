package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/cryptothud/solana-next-typescript-starter/internal/blockchain"
	"github.com/cryptothud/solana-next-typescript-starter/internal/logger"
	"github.com/cryptothud/solana-next-typescript-starter/internal/nft"
)

const requestTimeout = 30 * time.Second

// NFTSource - то, что умеет собирать NFT кошелька. Реализуется nft.Collector.
type NFTSource interface {
	Collect(ctx context.Context, owner solana.PublicKey) ([]nft.NFT, error)
}

// Services - зависимости экранов. Все поля, кроме Logs, обязательны.
type Services struct {
	Ctx    context.Context
	Client blockchain.Client
	NFTs   NFTSource
	Owner  solana.PublicKey
	Logs   *logger.LogBuffer
	Logger *zap.Logger
}

func (s *Services) context() (context.Context, context.CancelFunc) {
	ctx := s.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, requestTimeout)
}

// LoadBalanceCmd запрашивает баланс владельца.
func (s *Services) LoadBalanceCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := s.context()
		defer cancel()
		lamports, err := s.Client.GetBalance(ctx, s.Owner, rpc.CommitmentConfirmed)
		if err != nil {
			s.Logger.Warn("balance request failed", zap.Error(err))
		}
		return BalanceLoadedMsg{Lamports: lamports, Err: err}
	}
}

// LoadNFTsCmd собирает NFT владельца.
func (s *Services) LoadNFTsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := s.context()
		defer cancel()
		nfts, err := s.NFTs.Collect(ctx, s.Owner)
		if err != nil {
			s.Logger.Warn("nft collection failed", zap.Error(err))
		}
		return NFTsLoadedMsg{NFTs: nfts, Err: err}
	}
}

// LogsTickCmd планирует следующее обновление экрана логов.
func LogsTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return LogsTickMsg{}
	})
}
