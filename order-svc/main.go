package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodbox/config"
	httpapi "foodbox/order-svc/internal/api/http"
	"foodbox/order-svc/internal/auth"
	"foodbox/order-svc/internal/notify"
	"foodbox/order-svc/internal/service"
	"foodbox/order-svc/internal/storage"

	"go.uber.org/zap"
)

const (
	serviceName        = "order-svc"
	defaultPort        = "8082"
	checkoutMarkerTTL  = 24 * time.Hour
	checkoutPendingTTL = time.Minute
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
		logger.Fatal("order service stopped", zap.Error(err))
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

	db := config.MustInitPostgres(cfg, logger)
	defer db.Close()

	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	rdb := config.MustInitRedis(cfg, logger)
	defer rdb.Close()

	writer := config.NewKafkaWriter(cfg, cfg.OrderTopic)
	defer writer.Close()

	jwtManager, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}

	cartSvc := service.NewCartService(repo, repo, logger)
	orderSvc := service.NewOrderService(
		repo,
		repo,
		repo,
		storage.NewCheckoutStore(rdb, checkoutMarkerTTL, checkoutPendingTTL),
		storage.NewKafkaPublisher(writer),
		service.ReceiptQRGenerator{BaseURL: cfg.PublicBaseURL},
		logger,
	)
	accountSvc := service.NewAccountService(repo, storage.NewResetCodeStore(rdb), jwtManager, newNotifier(cfg, logger), logger)

	handler := httpapi.NewHandler(cartSvc, orderSvc, accountSvc, jwtManager, cfg.AdminKey, logger)
	router := config.Instrument(serviceName, httpapi.NewRouter(handler))

	return httpapi.StartServer(ctx, cfg.Addr(defaultPort), router, logger)
}

func newNotifier(cfg *config.Config, logger *zap.Logger) service.Notifier {
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP_HOST not set, emails are only logged")
		return notify.NewLogSender(logger)
	}
	return notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom, logger)
}
