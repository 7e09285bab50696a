package mailx

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"
)

// Message is a single outbound email. HTML is optional; Text is always sent
// as the plain alternative.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
	ProviderID() string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	// InsecureTLS accepts self-signed certificates when the relay offers STARTTLS.
	InsecureTLS bool
}

// SMTPSender delivers through an SMTP relay using gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	name   string
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		from = "no-reply@golfbay.local"
	}
	if cfg.Port <= 0 {
		cfg.Port = 1025
	}
	d := gomail.NewDialer(strings.TrimSpace(cfg.Host), cfg.Port, cfg.Username, cfg.Password)
	if cfg.InsecureTLS {
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true, ServerName: d.Host}
	}
	return &SMTPSender{dialer: d, from: from, name: strings.TrimSpace(cfg.FromName)}
}

func (s *SMTPSender) ProviderID() string {
	return "smtp"
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := s.build(msg)
	if err != nil {
		return err
	}
	return s.dialer.DialAndSend(m)
}

func (s *SMTPSender) build(msg Message) (*gomail.Message, error) {
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return nil, errors.New("mailx: recipient is required")
	}
	m := gomail.NewMessage()
	if s.name != "" {
		m.SetAddressHeader("From", s.from, s.name)
	} else {
		m.SetHeader("From", s.from)
	}
	m.SetHeader("To", to)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}
	return m, nil
}

// LogSender writes the message to the logger instead of sending it.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) ProviderID() string {
	return "log"
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("mailx: recipient is required")
	}
	s.logger.InfoContext(ctx, "email simulated",
		"to", msg.To,
		"subject", msg.Subject,
		"text", msg.Text,
	)
	return nil
}
