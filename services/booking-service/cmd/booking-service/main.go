package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/md-rashed-zaman/golfbay/libs/bizcal"
	"github.com/md-rashed-zaman/golfbay/libs/config"
	"github.com/md-rashed-zaman/golfbay/libs/db"
	"github.com/md-rashed-zaman/golfbay/libs/httpx"
	"github.com/md-rashed-zaman/golfbay/libs/kafkax"
	"github.com/md-rashed-zaman/golfbay/libs/mailx"
	otelx "github.com/md-rashed-zaman/golfbay/libs/otel"
	"github.com/md-rashed-zaman/golfbay/libs/runtime"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/adminauth"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/catalog"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/handlers"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/metrics"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/notify"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/seed"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
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
		logger.Error("booking service failed", "err", err)
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

	cal, err := bizcal.New(cfg.BusinessTZ)
	if err != nil {
		return err
	}

	var readyChecks []runtime.ReadyCheck
	var store storage.Store
	switch cfg.Store {
	case storeMemory:
		logger.Warn("using in-memory store; bookings are lost on restart")
		store = storage.NewMemory()
	default:
		pool, err := db.Open(ctx, cfg.DatabaseURL, db.Options{})
		if err != nil {
			return fmt.Errorf("db connection failed: %w", err)
		}
		defer pool.Close()
		pg := storage.NewPostgres(pool)
		if cfg.MigrateOnStart {
			if err := pg.Migrate(ctx); err != nil {
				return err
			}
			logger.Info("schema applied")
		}
		store = pg
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)})
	}
	if cfg.SeedOnStart {
		res, err := seed.Apply(ctx, store)
		if err != nil {
			return err
		}
		logger.Info("reference data seeded", "services", len(res.Services), "bays", len(res.Bays))
	}

	notifier, closeNotifier, err := buildNotifier(cfg, logger)
	if err != nil {
		return err
	}
	defer closeNotifier()
	if cfg.NotifyMode == notifyKafka {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(cfg.KafkaBrokers)})
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	svc := booking.NewService(store, catalog.New(store, cfg.CatalogCacheTTL), notifier, logger, m, booking.Config{
		Calendar:      cal,
		OpenHour:      cfg.OpenHour,
		CloseHour:     cfg.CloseHour,
		NotifyTimeout: cfg.NotifyTimeout,
	})

	gate, err := adminauth.NewGate(cfg.AdminTokenBcrypt)
	if err != nil {
		return err
	}
	if !gate.Enabled() {
		logger.Warn("ADMIN_TOKEN_BCRYPT not set; admin routes disabled")
	}

	writeRate, closeLimiter, check, err := buildWriteLimiter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()
	if check != nil {
		readyChecks = append(readyChecks, *check)
	}

	mux := runtime.NewBaseMuxWithReady(readyChecks...)
	mux.Handle("GET /metrics", promhttp.Handler())
	handlers.NewBookingHandler(svc, logger, cal.Location().String()).Register(mux, handlers.RouteOptions{
		Admin:     gate.Require,
		WriteRate: writeRate,
	})

	httpHandler := httpx.Chain(mux,
		httpx.WithRecover(logger),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.DefaultCORSPolicy(cfg.CORSOrigins)),
		httpx.WithBodyLimit(64<<10),
		httpx.WithTimeout(cfg.RequestTimeout),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	err = runtime.Serve(ctx, srv, logger, 10*time.Second)
	svc.WaitNotifications()
	return err
}

func buildNotifier(cfg serviceConfig, logger *slog.Logger) (booking.Notifier, func(), error) {
	switch cfg.NotifyMode {
	case notifyKafka:
		w, err := kafkax.NewWriter(cfg.KafkaBrokers)
		if err != nil {
			return nil, nil, err
		}
		closeWriter := func() {
			if err := w.Close(); err != nil {
				logger.Error("kafka writer close failed", "err", err)
			}
		}
		return notify.NewKafkaPublisher(w, cfg.BookingTopic), closeWriter, nil
	case notifyEmail:
		sender := mailx.NewSMTPSender(mailx.SMTPConfig{
			Host:        cfg.SMTP.Host,
			Port:        cfg.SMTP.Port,
			Username:    cfg.SMTP.Username,
			Password:    cfg.SMTP.Password,
			From:        cfg.SMTP.From,
			FromName:    cfg.SiteName,
			InsecureTLS: cfg.SMTP.InsecureTLS,
		})
		return notify.NewEmailNotifier(sender, cfg.SiteName), func() {}, nil
	default:
		return notify.NewLogNotifier(logger, cfg.SiteName), func() {}, nil
	}
}

// buildWriteLimiter prefers the shared Redis window when REDIS_URL is set so
// every replica counts against the same budget.
func buildWriteLimiter(ctx context.Context, cfg serviceConfig, logger *slog.Logger) (httpx.Middleware, func(), *runtime.ReadyCheck, error) {
	if cfg.RateLimitPerMinute <= 0 {
		return nil, func() {}, nil, nil
	}
	if cfg.RedisURL == "" {
		return httpx.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute).Middleware(), func() {}, nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not reachable at startup; rate limiter fails open", "err", err)
	}
	limiter := httpx.NewRedisRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute, "golfbay:ratelimit:book")
	check := &runtime.ReadyCheck{Name: "redis", Check: httpx.RedisReadyCheck(rdb)}
	closeClient := func() {
		if err := rdb.Close(); err != nil {
			logger.Error("redis close failed", "err", err)
		}
	}
	return limiter.Middleware(logger, true), closeClient, check, nil
}
