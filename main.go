package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"StructFlow/internal/config"
	"StructFlow/internal/logging"
	"StructFlow/internal/notify"
	"StructFlow/internal/repo"
	"StructFlow/internal/server"
)

var wg sync.WaitGroup

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	store, err := repo.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer store.Close()

	var pub notify.Publisher = notify.Nop{}
	if cfg.NATS.URL != "" {
		n, err := notify.Connect(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			logger.Fatal("connect nats", zap.Error(err))
		}
		pub = n
		logger.Info("publishing results", zap.String("subject", cfg.NATS.Subject))
	}
	defer pub.Close()

	handler := server.NewRouter(server.Deps{
		Log:          logger,
		Repo:         store,
		Publisher:    pub,
		TokenKey:     []byte(cfg.Auth.TokenKey),
		RatePerSec:   cfg.Auth.RatePerSec,
		Burst:        cfg.Auth.Burst,
		CORSOrigin:   cfg.Server.CORSOrigin,
		SecureCookie: cfg.TLSEnabled(),
	})
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", zap.String("addr", cfg.Server.Addr), zap.Bool("tls", cfg.TLSEnabled()))
		var err error
		if cfg.TLSEnabled() {
			err = srv.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received, closing active connections")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	wg.Wait()
	logger.Info("server stopped")
}
