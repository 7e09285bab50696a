package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/md-rashed-zaman/golfbay/libs/bookingevents"
	"github.com/md-rashed-zaman/golfbay/libs/config"
	"github.com/md-rashed-zaman/golfbay/libs/mailx"
)

const (
	emailSMTP = "smtp"
	emailLog  = "log"
)

type serviceConfig struct {
	ServiceName    string
	Port           string
	DatabaseURL    string
	MigrateOnStart bool

	KafkaBrokers string
	GroupID      string
	Topic        string
	MaxAttempts  int
	RetryBackoff time.Duration

	EmailMode string
	SMTP      mailx.SMTPConfig
	SiteName  string
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
	cfg.ServiceName = config.String("SERVICE_NAME", "notification-service")
	cfg.Port, err = config.Port("PORT", "8085")
	collect(err)
	cfg.DatabaseURL, err = config.RequiredString("DATABASE_URL")
	collect(err)
	cfg.MigrateOnStart, err = config.Bool("MIGRATE_ON_START", false)
	collect(err)

	cfg.KafkaBrokers, err = config.RequiredString("KAFKA_BROKERS")
	collect(err)
	cfg.GroupID = config.String("KAFKA_GROUP_ID", "notification-service")
	cfg.Topic = config.String("KAFKA_CONSUME_TOPIC", bookingevents.TopicBookingConfirmed)
	cfg.MaxAttempts, err = config.Int("HANDLER_MAX_ATTEMPTS", 3)
	collect(err)
	cfg.RetryBackoff, err = config.Duration("HANDLER_RETRY_BACKOFF", time.Second)
	collect(err)

	cfg.SiteName = config.String("SITE_NAME", "Golf Center")
	cfg.EmailMode = strings.ToLower(config.String("EMAIL_MODE", emailSMTP))
	cfg.SMTP.Host = config.String("SMTP_HOST", "mailpit")
	cfg.SMTP.Port, err = config.Int("SMTP_PORT", 1025)
	collect(err)
	cfg.SMTP.Username = config.String("SMTP_USER", "")
	cfg.SMTP.Password = config.String("SMTP_PASS", "")
	cfg.SMTP.From = config.String("SMTP_FROM", "no-reply@golfbay.local")
	cfg.SMTP.FromName = cfg.SiteName
	cfg.SMTP.InsecureTLS, err = config.Bool("SMTP_INSECURE_TLS", false)
	collect(err)
	if cfg.EmailMode != emailSMTP && cfg.EmailMode != emailLog {
		collect(fmt.Errorf("EMAIL_MODE must be %s or %s (got %q)", emailSMTP, emailLog, cfg.EmailMode))
	}

	if len(errs) > 0 {
		return serviceConfig{}, errors.Join(errs...)
	}
	return cfg, nil
}
