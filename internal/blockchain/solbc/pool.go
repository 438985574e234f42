// internal/blockchain/solbc/pool.go
package solbc

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// Strategy определяет способ выбора RPC узла из пула.
type Strategy string

const (
	StrategyRandom     Strategy = "random"
	StrategyRoundRobin Strategy = "round_robin"
)

// ParseStrategy разбирает строковое значение из конфигурации.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyRandom:
		return StrategyRandom, nil
	case StrategyRoundRobin:
		return StrategyRoundRobin, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// Endpoint представляет отдельный RPC узел
type Endpoint struct {
	URL     string
	rpc     *rpc.Client
	limiter ratelimit.Limiter
}

// PoolOptions настраивает пул узлов.
type PoolOptions struct {
	Strategy Strategy
	// RequestsPerSecond ограничивает частоту запросов к каждому узлу. 0 - без ограничений.
	RequestsPerSecond int
	// Seed для стратегии random. 0 - текущее время.
	Seed int64
}

// Pool представляет пул равноценных RPC узлов
type Pool struct {
	endpoints []*Endpoint
	strategy  Strategy
	logger    *zap.Logger

	mu   sync.Mutex
	next int
	rnd  *rand.Rand
}

// NewPool создает пул из списка адресов.
func NewPool(urls []string, opts PoolOptions, logger *zap.Logger) (*Pool, error) {
	if len(urls) == 0 {
		return nil, ErrNoEndpoints
	}
	strategy, err := ParseStrategy(string(opts.Strategy))
	if err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	endpoints := make([]*Endpoint, 0, len(urls))
	for _, u := range urls {
		limiter := ratelimit.NewUnlimited()
		if opts.RequestsPerSecond > 0 {
			limiter = ratelimit.New(opts.RequestsPerSecond)
		}
		endpoints = append(endpoints, &Endpoint{
			URL:     u,
			rpc:     rpc.New(u),
			limiter: limiter,
		})
	}

	pool := &Pool{
		endpoints: endpoints,
		strategy:  strategy,
		logger:    logger.Named("rpc-pool"),
		rnd:       rand.New(rand.NewSource(seed)),
	}

	masked := make([]string, len(urls))
	for i, u := range urls {
		masked[i] = MaskURL(u)
	}
	pool.logger.Info("RPC pool initialized",
		zap.Strings("endpoints", masked),
		zap.String("strategy", string(strategy)))

	return pool, nil
}

// Size возвращает количество узлов.
func (p *Pool) Size() int {
	return len(p.endpoints)
}

// Pick возвращает узел согласно стратегии и ждёт своей очереди в лимитере узла.
func (p *Pool) Pick() *Endpoint {
	ep := p.choose()
	ep.limiter.Take()
	return ep
}

func (p *Pool) choose() *Endpoint {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.endpoints) == 1 {
		return p.endpoints[0]
	}

	switch p.strategy {
	case StrategyRoundRobin:
		ep := p.endpoints[p.next]
		p.next = (p.next + 1) % len(p.endpoints)
		return ep
	default:
		return p.endpoints[p.rnd.Intn(len(p.endpoints))]
	}
}

// Check опрашивает getHealth каждого узла с экспоненциальной задержкой.
// Нездоровые узлы только логируются: повтор попыток движка покрывает их отказы.
func (p *Pool) Check(ctx context.Context, maxElapsed time.Duration) int {
	healthy := 0
	for _, ep := range p.endpoints {
		ep := ep
		_, err := backoff.Retry(ctx, func() (string, error) {
			res, err := ep.rpc.GetHealth(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return "", backoff.Permanent(ctx.Err())
				}
				return "", err
			}
			return res, nil
		},
			backoff.WithBackOff(backoff.NewExponentialBackOff()),
			backoff.WithMaxElapsedTime(maxElapsed),
		)
		if err != nil {
			p.logger.Warn("RPC endpoint unhealthy",
				zap.String("endpoint", MaskURL(ep.URL)),
				zap.Error(err))
			continue
		}
		healthy++
	}
	return healthy
}

// MaskURL оставляет в адресе только схему и хост, скрывая API ключи.
func MaskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "invalid-url"
	}
	return u.Scheme + "://" + u.Host
}
