// internal/api/server.go
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cryptothud/solana-next-typescript-starter/internal/ratelimit"
	"github.com/cryptothud/solana-next-typescript-starter/internal/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	Listen       string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

func (c Config) withDefaults() Config {
	if c.Listen == "" {
		c.Listen = ":3000"
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 15 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 60 * time.Second
	}
	return c
}

// Server обслуживает /api и служебные маршруты.
type Server struct {
	config   Config
	xp       storage.XPStore
	journal  storage.Journal
	limiter  *ratelimit.Limiter
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	router   *mux.Router
	http     *http.Server
}

type Option func(*Server)

// WithJournal включает GET /api/transactions.
func WithJournal(j storage.Journal) Option {
	return func(s *Server) { s.journal = j }
}

func WithLimiter(l *ratelimit.Limiter) Option {
	return func(s *Server) { s.limiter = l }
}

// WithMetrics публикует g на /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

func NewServer(config Config, xp storage.XPStore, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		config: config.withDefaults(),
		xp:     xp,
		logger: logger.Named("api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:         s.config.Listen,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/check", s.checkHandler).Methods(http.MethodGet)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	a := r.PathPrefix("/api").Subrouter()
	if s.limiter != nil {
		a.Use(s.limiter.Middleware)
	}
	a.HandleFunc("/hello", s.helloHandler).Methods(http.MethodGet)
	a.HandleFunc("/read", s.readHandler).Methods(http.MethodPost)
	if s.journal != nil {
		a.HandleFunc("/transactions", s.transactionsHandler).Methods(http.MethodGet)
	}
	r.Use(s.logRequests)
	return r
}

// Handler нужен для тестов через httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve блокируется до Shutdown. http.ErrServerClosed не считается ошибкой.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("Listening to API http requests", zap.String("addr", l.Addr().String()))
	if err := s.http.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Listen, err)
	}
	return s.Serve(l)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("httpreq",
			zap.String("method", r.Method),
			zap.String("uri", r.RequestURI),
			zap.String("ip", ratelimit.ClientIP(r)),
			zap.Duration("elapsed", time.Since(start)))
	})
}
