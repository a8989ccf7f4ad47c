package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zhouzirui/kairn/backend/internal/app"
	"github.com/zhouzirui/kairn/backend/internal/config"
	"github.com/zhouzirui/kairn/backend/internal/handler"
	"github.com/zhouzirui/kairn/backend/internal/idgen"
	"github.com/zhouzirui/kairn/backend/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is optional; a missing file is reported once logging is up
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(logging.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON, File: cfg.Log.File})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if envErr != nil {
		log.Debug("no .env file loaded, using system environment only", zap.Error(envErr))
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	persister, err := app.OpenPersister(cfg.Store, log)
	if err != nil {
		return fmt.Errorf("open identity store: %w", err)
	}
	log.Info("identity store ready", zap.String("driver", cfg.Store.Driver), zap.String("path", cfg.Store.Path))

	a := app.New(ctx, persister, cfg.Chat, idgen.UUID{}, log)
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("close identity store", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dispatcherDone := make(chan error, 1)
	go func() {
		dispatcherDone <- a.Run(ctx)
	}()

	router := handler.NewRouter(a.Dispatcher, a.Broker, log)
	serverErr := startServer(ctx, cfg.Server, router, log)

	// The dispatcher must be idle before the store is closed.
	cancel()
	return errors.Join(serverErr, <-dispatcherDone)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, log *zap.Logger) error {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info("Kairn backend listening", zap.String("addr", addr))
	return runServer(ctx, srv)
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
