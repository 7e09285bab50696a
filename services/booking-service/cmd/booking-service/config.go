package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/md-rashed-zaman/golfbay/libs/config"
)

const (
	storePostgres = "postgres"
	storeMemory   = "memory"

	notifyLog   = "log"
	notifyEmail = "email"
	notifyKafka = "kafka"
)

type smtpConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	InsecureTLS bool
}

type serviceConfig struct {
	ServiceName    string
	Port           string
	Store          string
	DatabaseURL    string
	MigrateOnStart bool
	SeedOnStart    bool

	BusinessTZ string
	OpenHour   int
	CloseHour  int

	NotifyMode    string
	NotifyTimeout time.Duration
	KafkaBrokers  string
	BookingTopic  string
	SMTP          smtpConfig
	SiteName      string

	RedisURL           string
	RateLimitPerMinute int
	AdminTokenBcrypt   string
	CatalogCacheTTL    time.Duration
	CORSOrigins        []string
	RequestTimeout     time.Duration
}

func loadConfig() (serviceConfig, error) {
	var cfg serviceConfig
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	cfg.ServiceName = config.String("SERVICE_NAME", "booking-service")
	cfg.Port, err = config.Port("PORT", "8083")
	collect(err)

	cfg.Store = strings.ToLower(config.String("STORE", storePostgres))
	switch cfg.Store {
	case storePostgres:
		cfg.DatabaseURL, err = config.RequiredString("DATABASE_URL")
		collect(err)
	case storeMemory:
	default:
		collect(fmt.Errorf("STORE must be %s or %s (got %q)", storePostgres, storeMemory, cfg.Store))
	}
	cfg.MigrateOnStart, err = config.Bool("MIGRATE_ON_START", false)
	collect(err)
	// The memory store starts empty, so it is seeded unless told otherwise.
	cfg.SeedOnStart, err = config.Bool("SEED_ON_START", cfg.Store == storeMemory)
	collect(err)

	cfg.BusinessTZ = config.String("BUSINESS_TZ", "America/Toronto")
	cfg.OpenHour, err = config.Int("OPEN_HOUR", 9)
	collect(err)
	cfg.CloseHour, err = config.Int("CLOSE_HOUR", 17)
	collect(err)
	if cfg.OpenHour < 0 || cfg.CloseHour > 24 || cfg.OpenHour >= cfg.CloseHour {
		collect(fmt.Errorf("OPEN_HOUR and CLOSE_HOUR must satisfy 0 <= open < close <= 24 (got %d, %d)", cfg.OpenHour, cfg.CloseHour))
	}

	cfg.NotifyMode = strings.ToLower(config.String("NOTIFY_MODE", notifyLog))
	cfg.NotifyTimeout, err = config.Duration("NOTIFY_TIMEOUT", 10*time.Second)
	collect(err)
	cfg.KafkaBrokers = config.String("KAFKA_BROKERS", "")
	cfg.BookingTopic = config.String("KAFKA_BOOKING_TOPIC", "booking.confirmed.v1")
	cfg.SiteName = config.String("SITE_NAME", "Golf Center")
	cfg.SMTP.Host = config.String("SMTP_HOST", "")
	cfg.SMTP.Port, err = config.Int("SMTP_PORT", 1025)
	collect(err)
	cfg.SMTP.Username = config.String("SMTP_USER", "")
	cfg.SMTP.Password = config.String("SMTP_PASS", "")
	cfg.SMTP.From = config.String("SMTP_FROM", "no-reply@golfbay.local")
	cfg.SMTP.InsecureTLS, err = config.Bool("SMTP_INSECURE_TLS", false)
	collect(err)
	switch cfg.NotifyMode {
	case notifyLog:
	case notifyEmail:
		if cfg.SMTP.Host == "" {
			collect(errors.New("SMTP_HOST is required when NOTIFY_MODE=email"))
		}
	case notifyKafka:
		if cfg.KafkaBrokers == "" {
			collect(errors.New("KAFKA_BROKERS is required when NOTIFY_MODE=kafka"))
		}
	default:
		collect(fmt.Errorf("NOTIFY_MODE must be log, email or kafka (got %q)", cfg.NotifyMode))
	}

	cfg.RedisURL = config.String("REDIS_URL", "")
	cfg.RateLimitPerMinute, err = config.Int("RATE_LIMIT_PER_MINUTE", 30)
	collect(err)
	cfg.AdminTokenBcrypt = config.String("ADMIN_TOKEN_BCRYPT", "")
	cfg.CatalogCacheTTL, err = config.Duration("CATALOG_CACHE_TTL", time.Minute)
	collect(err)
	cfg.RequestTimeout, err = config.Duration("REQUEST_TIMEOUT", 15*time.Second)
	collect(err)
	cfg.CORSOrigins = config.List("CORS_ALLOWED_ORIGINS")

	if len(errs) > 0 {
		return serviceConfig{}, errors.Join(errs...)
	}
	return cfg, nil
}
