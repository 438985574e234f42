// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"
)

const (
	DefaultLimit      = 200
	DefaultWindow     = 60 * time.Second
	DefaultDelayAfter = 5
	DefaultDelay      = 500 * time.Millisecond
)

// Options - квота и замедление на одно окно.
type Options struct {
	// Limit - максимум запросов за окно, следующие получают 429.
	Limit  int
	Window time.Duration
	// DelayAfter - сколько запросов проходит без задержки. 0 отключает замедление.
	DelayAfter int
	// Delay добавляется за каждый запрос сверх DelayAfter.
	Delay time.Duration
	// MaxDelay ограничивает задержку сверху, 0 - без ограничения.
	// Должно быть меньше WriteTimeout сервера, иначе соединение рвётся до ответа.
	MaxDelay time.Duration
}

func DefaultOptions() Options {
	return Options{
		Limit:      DefaultLimit,
		Window:     DefaultWindow,
		DelayAfter: DefaultDelayAfter,
		Delay:      DefaultDelay,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Limit <= 0 {
		o.Limit = d.Limit
	}
	if o.Window <= 0 {
		o.Window = d.Window
	}
	if o.DelayAfter < 0 {
		o.DelayAfter = 0
	}
	if o.Delay < 0 {
		o.Delay = 0
	}
	if o.MaxDelay < 0 {
		o.MaxDelay = 0
	}
	return o
}

// Decision - результат учёта одного запроса.
type Decision struct {
	// Count - номер запроса в текущем окне. После исчерпания квоты это Limit+1.
	Count     int
	Allowed   bool
	Remaining int
	// Wait - задержка перед обработкой.
	Wait    time.Duration
	ResetAt time.Time
}

// Limiter считает запросы по ключу в фиксированных окнах.
// Замедление и квота используют один счётчик.
type Limiter struct {
	opts     Options
	logger   *zap.Logger
	instance *limiter.Limiter
	now      func() time.Time
}

// NewLimiter хранит окна в памяти процесса, истекшие ключи чистит store.
func NewLimiter(opts Options, logger *zap.Logger) *Limiter {
	opts = opts.withDefaults()
	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "solstarter",
		CleanUpInterval: opts.Window,
	})
	rate := limiter.Rate{Period: opts.Window, Limit: int64(opts.Limit)}

	return &Limiter{
		opts:     opts,
		logger:   logger.Named("ratelimit"),
		instance: limiter.New(store, rate, limiter.WithTrustForwardHeader(true)),
		now:      time.Now,
	}
}

func (l *Limiter) Options() Options {
	return l.opts
}

// Hit учитывает запрос от key.
func (l *Limiter) Hit(ctx context.Context, key string) (Decision, error) {
	lctx, err := l.instance.Get(ctx, key)
	if err != nil {
		return Decision{Allowed: true}, fmt.Errorf("rate limit store: %w", err)
	}
	return l.decide(lctx), nil
}

func (l *Limiter) decide(lctx limiter.Context) Decision {
	d := Decision{
		Allowed:   !lctx.Reached,
		Remaining: int(lctx.Remaining),
		ResetAt:   time.Unix(lctx.Reset, 0),
	}
	if lctx.Reached {
		d.Count = l.opts.Limit + 1
		return d
	}

	d.Count = int(lctx.Limit - lctx.Remaining)
	if l.opts.DelayAfter > 0 && d.Count > l.opts.DelayAfter {
		d.Wait = time.Duration(d.Count-l.opts.DelayAfter) * l.opts.Delay
		if l.opts.MaxDelay > 0 && d.Wait > l.opts.MaxDelay {
			d.Wait = l.opts.MaxDelay
		}
	}
	return d
}

// Reset сбрасывает счётчик ключа.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	_, err := l.instance.Reset(ctx, key)
	return err
}

// Key - ключ клиента для запроса: адрес из прокси-заголовков или RemoteAddr.
func (l *Limiter) Key(r *http.Request) string {
	return l.instance.GetIPKey(r)
}
