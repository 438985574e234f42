// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/cryptothud/solana-next-typescript-starter/internal/blockchain/computebudget"
	"github.com/cryptothud/solana-next-typescript-starter/internal/blockchain/solbc"
	"github.com/cryptothud/solana-next-typescript-starter/internal/blockchain/solbc/transaction"
	"github.com/cryptothud/solana-next-typescript-starter/internal/config"
	"github.com/cryptothud/solana-next-typescript-starter/internal/events"
	"github.com/cryptothud/solana-next-typescript-starter/internal/nft"
	"github.com/cryptothud/solana-next-typescript-starter/internal/storage"
	"github.com/cryptothud/solana-next-typescript-starter/internal/storage/memory"
	"github.com/cryptothud/solana-next-typescript-starter/internal/storage/mongo"
	"github.com/cryptothud/solana-next-typescript-starter/internal/storage/postgres"
)

const (
	eventBufferSize = 256
	healthCheckTime = 10 * time.Second
)

// App собирает общие для всех бинарников зависимости из конфигурации.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Shutdown *ShutdownHandler
	Registry *prometheus.Registry

	Pool   *solbc.Pool
	Client *solbc.Client
	Bus    *events.Bus
}

// New создает пул RPC, клиент и шину событий. Ресурсы регистрируются в Shutdown.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	strategy, err := solbc.ParseStrategy(cfg.EndpointStrategy)
	if err != nil {
		return nil, err
	}
	pool, err := solbc.NewPool(cfg.RPCList, solbc.PoolOptions{
		Strategy:          strategy,
		RequestsPerSecond: cfg.RPCRateLimit,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("rpc pool: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Shutdown: NewShutdownHandler(logger, DefaultShutdownTimeout),
		Registry: registry,
		Pool:     pool,
		Client:   solbc.NewClient(pool, logger),
		Bus:      events.NewBus(logger, eventBufferSize),
	}
	a.Bus.Subscribe(events.NewLogSink(logger.Named("events")))
	return a, nil
}

// CheckEndpoints опрашивает узлы пула. Ни одного живого узла - ошибка.
func (a *App) CheckEndpoints(ctx context.Context) error {
	healthy := a.Pool.Check(ctx, healthCheckTime)
	if healthy == 0 {
		return fmt.Errorf("no healthy RPC endpoints out of %d", a.Pool.Size())
	}
	a.Logger.Info("RPC endpoints checked", zap.Int("healthy", healthy), zap.Int("total", a.Pool.Size()))
	return nil
}

// ConnectAMQP подписывает AMQP sink на события транзакций, если брокер настроен.
func (a *App) ConnectAMQP() error {
	if a.Config.AMQP.URL == "" {
		return nil
	}
	sink, err := events.DialAMQP(a.Config.AMQP.URL, a.Config.AMQP.Exchange, a.Logger)
	if err != nil {
		return err
	}
	a.Bus.Subscribe(sink)
	a.Shutdown.Add("amqp-sink", sink)
	return nil
}

// EngineConfig переводит конфигурацию в параметры движка.
func (a *App) EngineConfig() transaction.Config {
	format := transaction.FormatLegacy
	if a.Config.TxFormat == string(transaction.FormatV0) {
		format = transaction.FormatV0
	}
	return transaction.Config{
		PollInterval:        a.Config.PollInterval(),
		MaxAttempts:         a.Config.MaxAttempts,
		ExpiryMargin:        a.Config.ExpiryMargin,
		BlockhashCommitment: rpc.CommitmentFinalized,
		HeightCommitment:    rpc.CommitmentType(a.Config.Commitment),
		Format:              format,
		SkipPreflight:       a.Config.SkipPreflight,
	}
}

func (a *App) ComputeBudget() computebudget.Config {
	return computebudget.Config{
		Units:         a.Config.ComputeUnits,
		MicroLamports: a.Config.PriorityFeeMicroLamports,
	}
}

// NewEngine создает движок с метриками, шиной и журналом.
func (a *App) NewEngine(journal storage.Journal) *transaction.Engine {
	opts := []transaction.Option{
		transaction.WithMetrics(transaction.NewMetrics(a.Registry)),
		transaction.WithPublisher(a.Bus),
	}
	if journal != nil {
		opts = append(opts, transaction.WithRecorder(storage.NewJournalRecorder(journal)))
	}
	return transaction.NewEngine(a.Client, a.Logger, a.EngineConfig(), opts...)
}

// NewCollector создает сборщик NFT с настройками metadata.*.
func (a *App) NewCollector() (*nft.Collector, error) {
	hashlist, err := ParseKeys(a.Config.Metadata.Hashlist)
	if err != nil {
		return nil, fmt.Errorf("metadata.hashlist: %w", err)
	}
	fetcher := nft.NewFetcher(nft.FetcherOptions{
		RequestsPerSecond: a.Config.Metadata.RequestsPerSecond,
	}, a.Logger)
	return nft.NewCollector(a.Client, fetcher, a.Logger,
		nft.WithHashlist(hashlist),
		nft.WithProxyBase(a.Config.Metadata.ProxyBase),
		nft.WithConcurrency(a.Config.Metadata.Concurrency),
	), nil
}

// ParseKeys разбирает список base58 адресов.
func ParseKeys(list []string) ([]solana.PublicKey, error) {
	keys := make([]solana.PublicKey, 0, len(list))
	for _, s := range list {
		key, err := solana.PublicKeyFromBase58(s)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", s, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// OpenJournal - Postgres при заданном postgres_url, иначе журнал в памяти.
func (a *App) OpenJournal(ctx context.Context) (storage.Journal, error) {
	if a.Config.PostgresURL == "" {
		a.Logger.Info("Using in-memory transaction journal")
		return memory.NewJournal(), nil
	}
	journal, err := postgres.Open(a.Config.PostgresURL, a.Logger, a.Config.DebugLogging)
	if err != nil {
		return nil, err
	}
	if err := journal.RunMigrations(ctx); err != nil {
		_ = journal.Close()
		return nil, err
	}
	a.Shutdown.Add("postgres", journal)
	return journal, nil
}

// OpenXPStore - MongoDB при заданном mongo.uri, иначе пустое хранилище в памяти.
func (a *App) OpenXPStore(ctx context.Context) (storage.XPStore, error) {
	if a.Config.Mongo.URI == "" {
		a.Logger.Warn("mongo.uri is not set, using in-memory XP store")
		return memory.NewXPStore(nil), nil
	}
	store, err := mongo.Connect(ctx, a.Config.Mongo.URI, a.Config.Mongo.Database, a.Logger)
	if err != nil {
		return nil, err
	}
	a.Shutdown.Add("mongo", store)
	return store, nil
}

// Close закрывает ресурсы в обратном порядке регистрации.
// Шина закрывается первой, чтобы доставить накопленные события в sink.
func (a *App) Close(ctx context.Context) error {
	a.Shutdown.Add("event-bus", CloseFunc(func() error {
		return a.Bus.Shutdown(ctx)
	}))
	return a.Shutdown.Run(ctx)
}
