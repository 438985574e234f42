package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cryptothud/solana-next-typescript-starter/internal/api"
	"github.com/cryptothud/solana-next-typescript-starter/internal/app"
	"github.com/cryptothud/solana-next-typescript-starter/internal/config"
	"github.com/cryptothud/solana-next-typescript-starter/internal/logger"
	"github.com/cryptothud/solana-next-typescript-starter/internal/ratelimit"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Debug = cfg.DebugLogging
	logCfg.Pretty = true
	appLogger := logger.New(logCfg)
	defer func() {
		_ = appLogger.Sync()
	}()

	a, err := app.New(cfg, appLogger.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			appLogger.Error("Shutdown failed", zap.Error(err))
		}
	}()

	xp, err := a.OpenXPStore(ctx)
	if err != nil {
		return fmt.Errorf("xp store: %w", err)
	}
	journal, err := a.OpenJournal(ctx)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}

	limiter := ratelimit.NewLimiter(ratelimit.Options{
		Limit:      cfg.RateLimit.Limit,
		Window:     cfg.RateLimit.Window(),
		DelayAfter: cfg.RateLimit.DelayAfter,
		Delay:      cfg.RateLimit.Delay(),
		MaxDelay:   cfg.RateLimitMaxDelay(),
	}, appLogger.Logger)

	server := api.NewServer(api.Config{
		Listen:       cfg.Server.Listen,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
	}, xp, appLogger.Logger,
		api.WithJournal(journal),
		api.WithLimiter(limiter),
		api.WithMetrics(a.Registry),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.DefaultShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
