package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/md-rashed-zaman/golfbay/libs/config"
	"github.com/md-rashed-zaman/golfbay/libs/db"
	"github.com/md-rashed-zaman/golfbay/libs/httpx"
	"github.com/md-rashed-zaman/golfbay/libs/kafkax"
	"github.com/md-rashed-zaman/golfbay/libs/mailx"
	otelx "github.com/md-rashed-zaman/golfbay/libs/otel"
	"github.com/md-rashed-zaman/golfbay/libs/runtime"
	"github.com/md-rashed-zaman/golfbay/services/notification-service/internal/confirm"
	"github.com/md-rashed-zaman/golfbay/services/notification-service/internal/consumer"
	"github.com/md-rashed-zaman/golfbay/services/notification-service/internal/inbox"
	"github.com/md-rashed-zaman/golfbay/services/notification-service/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := config.LoadDotenv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := runtime.NewLogger(cfg.ServiceName)

	if err := run(cfg, logger); err != nil {
		logger.Error("notification service failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg serviceConfig, logger *slog.Logger) error {
	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(cfg.ServiceName))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL, db.Options{})
	if err != nil {
		return fmt.Errorf("db connection failed: %w", err)
	}
	defer pool.Close()

	notifications := storage.NewRepository(pool)
	if cfg.MigrateOnStart {
		if err := notifications.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("schema applied")
	}

	var sender mailx.Sender
	if cfg.EmailMode == emailLog {
		sender = mailx.NewLogSender(logger)
	} else {
		sender = mailx.NewSMTPSender(cfg.SMTP)
	}
	handler := confirm.NewHandler(sender, notifications, cfg.SiteName, logger)

	eventConsumer := consumer.New(logger, inbox.NewRepository(pool), consumer.Config{
		Brokers:     cfg.KafkaBrokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		MaxAttempts: cfg.MaxAttempts,
		Backoff:     cfg.RetryBackoff,
	}, handler.Handle)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(cfg.KafkaBrokers)},
	)
	httpHandler := httpx.Chain(mux,
		httpx.WithRecover(logger),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "notification")
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// A failed listener cancels the group context so the consumer stops too.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		eventConsumer.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return runtime.Serve(gctx, srv, logger, 10*time.Second)
	})
	return g.Wait()
}
