// internal/ratelimit/middleware.go
package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TooManyRequests - тело ответа 429.
const TooManyRequests = "Too many requests"

// Middleware применяет замедление и квоту к каждому запросу.
// Лишний запрос получает 429 сразу, без ожидания и без повтора на сервере.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := l.Key(r)
		d, err := l.Hit(r.Context(), ip)
		if err != nil {
			// без счётчика пропускаем запрос
			l.logger.Error("rate limit check failed", zap.String("ip", ip), zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		now := l.now()
		h := w.Header()
		h.Set("RateLimit-Limit", strconv.Itoa(l.opts.Limit))
		h.Set("RateLimit-Remaining", strconv.Itoa(d.Remaining))
		h.Set("RateLimit-Reset", strconv.Itoa(secondsUntil(d.ResetAt, now)))

		if !d.Allowed {
			l.logger.Warn("rate limit exceeded",
				zap.String("ip", ip),
				zap.String("path", r.URL.Path))
			h.Set("Retry-After", strconv.Itoa(secondsUntil(d.ResetAt, now)))
			h.Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": TooManyRequests})
			return
		}

		if d.Wait > 0 {
			timer := time.NewTimer(d.Wait)
			select {
			case <-r.Context().Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		next.ServeHTTP(w, r)
	})
}

func secondsUntil(t, now time.Time) int {
	s := int(math.Ceil(t.Sub(now).Seconds()))
	if s < 0 {
		return 0
	}
	return s
}

// ipResolver только извлекает адрес, store ему не нужен.
var ipResolver = limiter.New(nil, limiter.Rate{}, limiter.WithTrustForwardHeader(true))

// ClientIP: первый адрес X-Forwarded-For, затем X-Real-IP, затем RemoteAddr.
func ClientIP(r *http.Request) string {
	return ipResolver.GetIP(r).String()
}
