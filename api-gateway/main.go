package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodbox/api-gateway/internal/gateway"
	"foodbox/config"

	"github.com/rs/cors"
	"go.uber.org/zap"
)

const (
	serviceName = "api-gateway"
	defaultPort = "8080"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := config.NewLogger(serviceName, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api gateway stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := config.InitTracer(serviceName, cfg.OtelEnabled)
	if err != nil {
		return err
	}
	defer shutdownTracer(context.Background())

	srv := &http.Server{
		Addr:              cfg.Addr(defaultPort),
		Handler:           newHandler(cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api gateway starting", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func newHandler(cfg *config.Config, logger *zap.Logger) http.Handler {
	gw := gateway.NewGateway(gateway.Config{
		MenuSvcURL:  cfg.MenuSvcURL,
		OrderSvcURL: cfg.OrderSvcURL,
		FrontendDir: cfg.FrontendDir,
	}, &http.Client{Timeout: 30 * time.Second}, logger)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Idempotency-Key", "X-Admin-Key"},
	})
	return config.Instrument(serviceName, c.Handler(gw.SetupRoutes()))
}
