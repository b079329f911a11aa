// Package server exposes the stake service over HTTP with gin.
//
// The caller identity comes from the X-Stake-Caller header, which an
// upstream authentication gateway sets after verifying the request. This
// package trusts it as given.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roach88/stakeledger/internal/ledger"
	"github.com/roach88/stakeledger/internal/service"
	"github.com/roach88/stakeledger/internal/store"
)

// Header names.
const (
	HeaderCaller    = "X-Stake-Caller"
	HeaderRequestID = "X-Request-ID"
)

const shutdownTimeout = 10 * time.Second

// Ledger is the subset of *service.Service the handlers call.
type Ledger interface {
	Open(ctx context.Context, caller, owner ledger.Identity) (service.Receipt, error)
	Deposit(ctx context.Context, caller, owner ledger.Identity, amount uint64) (service.Receipt, error)
	Withdraw(ctx context.Context, caller, owner ledger.Identity, amount uint64) (service.Receipt, error)
	Claim(ctx context.Context, caller, owner ledger.Identity) (service.Receipt, error)
	Points(ctx context.Context, caller, owner ledger.Identity) (service.Receipt, error)
	Projection(ctx context.Context, owner ledger.Identity) (ledger.Result, error)
	Get(ctx context.Context, owner ledger.Identity) (ledger.Record, error)
	History(ctx context.Context, owner ledger.Identity) ([]store.Entry, error)
	PendingClaims(ctx context.Context) ([]store.Claim, error)
	MarkIssued(ctx context.Context, opID string) (int64, error)
}

// Server holds the HTTP handlers.
type Server struct {
	ledger  Ledger
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithLogger sets the request logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a Server over l.
func New(l Ledger, opts ...Option) *Server {
	s := &Server{
		ledger: l,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine with every route mounted.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), s.logRequests(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics))
	}

	stakes := r.Group("/v1/stakes/:owner", ownerParam())
	stakes.POST("", requireCaller(), s.open)
	stakes.GET("", s.get)
	stakes.GET("/history", s.history)
	stakes.GET("/points", s.points)
	stakes.POST("/deposit", requireCaller(), s.deposit)
	stakes.POST("/withdraw", requireCaller(), s.withdraw)
	stakes.POST("/claim", requireCaller(), s.claim)

	claims := r.Group("/v1/claims")
	claims.GET("", s.pendingClaims)
	claims.POST("/:op_id/issued", requireCaller(), s.markIssued)

	r.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
