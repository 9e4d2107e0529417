// Command stub-backend serves the in-memory demo marketplace so the gateway
// can run without the real backend.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"shopnest-bff/internal/config"
	"shopnest-bff/internal/demo"
	"shopnest-bff/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Bootstrap().Fatal("Failed to load config", zap.Error(err))
	}
	log := logger.ForEnvironment(cfg.Env, logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	srv := &http.Server{
		Handler:      demo.New(cfg.JWTSecret, log).Handler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	ln, err := net.Listen("tcp", cfg.StubAddr)
	if err != nil {
		log.Fatal("Failed to listen", zap.String("addr", cfg.StubAddr), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Stub backend listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("admin", demo.AdminEmail),
		zap.String("seller", demo.SellerEmail),
		zap.String("buyer", demo.BuyerEmail),
	)
	if err := serve(ctx, srv, ln, cfg.HTTP.ShutdownTimeout); err != nil {
		log.Fatal("Stub backend failed", zap.Error(err))
	}
	log.Info("Stub backend stopped")
}

// serve runs srv on ln until ctx is done and returns once in-flight requests
// have finished or shutdownTimeout has passed.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if serveErr := <-errCh; !errors.Is(serveErr, http.ErrServerClosed) && err == nil {
		err = serveErr
	}
	return err
}
