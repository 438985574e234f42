// internal/nft/fetcher.go
package nft

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultMetadataTTL = 5 * time.Minute
	defaultHTTPTimeout = 5 * time.Second
	defaultMaxTries    = 3
)

// MetadataFetcher загружает off-chain JSON по uri.
type MetadataFetcher interface {
	Fetch(ctx context.Context, uri string) (*ExternalMetadata, error)
}

type FetcherOptions struct {
	// RequestsPerSecond ограничивает исходящие запросы. 0 - без ограничений.
	RequestsPerSecond float64
	Burst             int
	TTL               time.Duration
	Timeout           time.Duration
	MaxTries          uint
}

type cachedMetadata struct {
	metadata  *ExternalMetadata
	fetchedAt time.Time
}

// Fetcher - HTTP загрузчик с кэшем и ограничением частоты.
type Fetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	ttl        time.Duration
	maxTries   uint
	cache      sync.Map
}

var _ MetadataFetcher = (*Fetcher)(nil)

func NewFetcher(opts FetcherOptions, logger *zap.Logger) *Fetcher {
	if opts.TTL <= 0 {
		opts.TTL = defaultMetadataTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultHTTPTimeout
	}
	if opts.MaxTries == 0 {
		opts.MaxTries = defaultMaxTries
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    limiter,
		logger:     logger.Named("metadata-fetcher"),
		ttl:        opts.TTL,
		maxTries:   opts.MaxTries,
	}
}

// Fetch получает метаданные с кэшированием
func (f *Fetcher) Fetch(ctx context.Context, uri string) (*ExternalMetadata, error) {
	if md, ok := f.getFromCache(uri); ok {
		return md, nil
	}

	md, err := backoff.Retry(ctx, func() (*ExternalMetadata, error) {
		return f.fetchOnce(ctx, uri)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(f.maxTries),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMetadataUnavailable, uri, err)
	}

	f.cache.Store(uri, &cachedMetadata{metadata: md, fetchedAt: time.Now()})
	f.logger.Debug("metadata fetched",
		zap.String("uri", uri),
		zap.String("name", md.Name))
	return md, nil
}

func (f *Fetcher) getFromCache(uri string) (*ExternalMetadata, bool) {
	if value, ok := f.cache.Load(uri); ok {
		entry := value.(*cachedMetadata)
		if time.Since(entry.fetchedAt) < f.ttl {
			return entry.metadata, true
		}
		f.cache.Delete(uri)
	}
	return nil, false
}

func (f *Fetcher) fetchOnce(ctx context.Context, uri string) (*ExternalMetadata, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("metadata host returned status code: %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("metadata host returned status code: %d", resp.StatusCode))
	}

	var md ExternalMetadata
	if err := json.NewDecoder(resp.Body).Decode(&md); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to decode metadata: %w", err))
	}
	return &md, nil
}
