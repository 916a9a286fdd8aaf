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

	"github.com/bwmarrin/snowflake"
	"github.com/mcclellann/telecare/pkg/answer"
	"github.com/mcclellann/telecare/pkg/billing"
	"github.com/mcclellann/telecare/pkg/clock"
	"github.com/mcclellann/telecare/pkg/config"
	"github.com/mcclellann/telecare/pkg/store"
	"github.com/sirupsen/logrus"
)

const (
	paymentNode     = 1
	watchDebounce   = 500 * time.Millisecond
	shutdownTimeout = 10 * time.Second
)

func newLogger(cfg config.LogConfig) (*logrus.Logger, error) {
	l := logrus.StandardLogger()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	l.SetLevel(level)
	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l, nil
}

func openStorage(cfg config.Config, clk clock.Clock) (store.Storage, error) {
	if cfg.StoreDriver == config.DriverSQLite {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("could not create data dir: %w", err)
		}
		return store.NewSQLiteStore(cfg.SQLitePath, clk)
	}
	return store.NewJSONStore(cfg.DataDir, clk)
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	clk := clock.SystemClock{}
	storage, err := openStorage(cfg, clk)
	if err != nil {
		return fmt.Errorf("failed to initialize %s store: %w", cfg.StoreDriver, err)
	}
	defer storage.Close()

	node, err := snowflake.NewNode(paymentNode)
	if err != nil {
		return fmt.Errorf("failed to create id node: %w", err)
	}

	composer := answer.NewComposer(answer.Options{
		DocsDir:       cfg.DocsDir,
		DefaultAPIKey: cfg.Generation.APIKey,
	}, answer.NewChatGenerator(cfg.Generation.BaseURL, cfg.Generation.Model, cfg.Generation.Timeout), log)
	if err := composer.Reload(); err != nil {
		log.WithError(err).Warn("could not load documents")
	}
	if err := composer.Watch(ctx, watchDebounce); err != nil {
		log.WithError(err).Warn("document watcher disabled")
	}

	server := NewServer(storage, billing.NewService(storage, clk, node, log), composer, log)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).WithField("store", cfg.StoreDriver).Info("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}
