package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/cryptothud/solana-next-typescript-starter/internal/app"
	"github.com/cryptothud/solana-next-typescript-starter/internal/config"
	"github.com/cryptothud/solana-next-typescript-starter/internal/logger"
	"github.com/cryptothud/solana-next-typescript-starter/internal/ui"
	"github.com/cryptothud/solana-next-typescript-starter/internal/ui/router"
	"github.com/cryptothud/solana-next-typescript-starter/internal/ui/screen"
)

const logBufferSize = 1000

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	ownerFlag := flag.String("owner", "", "Wallet address to view (default: first wallet from wallets file)")
	walletName := flag.String("wallet", "", "Wallet name from wallets file")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// консоль занята TUI, логи идут в буфер и файл
	buffer := logger.NewLogBuffer(logBufferSize)
	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Debug = cfg.DebugLogging
	logCfg.Buffer = buffer
	appLogger := logger.New(logCfg)
	defer func() {
		_ = appLogger.Sync()
	}()

	owner, err := resolveOwner(*ownerFlag, cfg.WalletsFile, *walletName)
	if err != nil {
		log.Fatalf("Failed to resolve wallet: %v", err)
	}

	a, err := app.New(cfg, appLogger.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
		}
	}()

	collector, err := a.NewCollector()
	if err != nil {
		log.Fatalf("Failed to initialize NFT collector: %v", err)
	}

	services := &ui.Services{
		Ctx:    rootCtx,
		Client: a.Client,
		NFTs:   collector,
		Owner:  owner,
		Logs:   buffer,
		Logger: appLogger.Named("tui"),
	}

	appLogger.Info("Starting TUI", zap.String("owner", owner.String()))

	recovery := ui.NewRecoveryHandler(appLogger.Logger, func() (tea.Model, []tea.ProgramOption) {
		return router.New(ui.RouteMenu, screen.NewResolver(services)),
			[]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(rootCtx)}
	})
	if err := recovery.RunWithRecovery(); err != nil && rootCtx.Err() == nil {
		appLogger.Error("TUI application failed", zap.Error(err))
	}
}

func resolveOwner(owner, walletsFile, walletName string) (solana.PublicKey, error) {
	if owner != "" {
		return solana.PublicKeyFromBase58(owner)
	}
	_, kp, err := app.SelectWallet(walletsFile, walletName)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return kp.PublicKey(), nil
}
