package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"shopnest-bff/internal/api"
	"shopnest-bff/internal/auth"
	"shopnest-bff/internal/cache"
	"shopnest-bff/internal/cart"
	"shopnest-bff/internal/checkout"
	"shopnest-bff/internal/config"
	"shopnest-bff/internal/keepalive"
	"shopnest-bff/internal/logger"
	"shopnest-bff/internal/recent"
	"shopnest-bff/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Bootstrap().Fatal("Failed to load config", zap.Error(err))
	}

	log := logger.ForEnvironment(cfg.Env, logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	log.Info("Starting API Gateway", zap.String("port", cfg.HTTPPort), zap.String("env", cfg.Env))

	redisClient, err := cache.NewClient(cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))

	serviceClient := services.NewServiceClient(cfg, log)
	carts := cart.NewService(cart.NewRedisStore(redisClient.Raw()), serviceClient, cfg.Cart.GuestTTL, cfg.Cart.UserTTL, log)
	sessions := auth.NewSessionStore(redisClient, cfg.Session.TTL)
	blacklist := auth.NewBlacklist(redisClient)
	monitor := keepalive.New(serviceClient, cfg.KeepAlive.Interval, cfg.KeepAlive.Timeout, cfg.KeepAlive.MaxFailures, log)

	handler := api.NewHandler(api.Deps{
		Config:    cfg,
		Services:  serviceClient,
		Redis:     redisClient,
		Pages:     cache.NewTiered(redisClient, cfg.Cache.CatalogTTL, cfg.Cache.LocalTTL, log),
		Carts:     carts,
		Recent:    recent.NewRedisStore(redisClient.Raw(), cfg.Cart.UserTTL),
		Checkout:  checkout.NewService(carts, serviceClient, log),
		Sessions:  sessions,
		Blacklist: blacklist,
		KeepAlive: monitor,
		Logger:    log,
	})
	authMiddleware := auth.NewMiddleware(cfg.JWTSecret, sessions, blacklist, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.KeepAlive.Enabled {
		go monitor.Run(ctx)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      api.NewRouter(handler, authMiddleware),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Error("Server error", zap.Error(err))
		os.Exit(1)
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err), zap.Duration("timeout", cfg.HTTP.ShutdownTimeout))
	}
}
