package consumer

import (
	"context"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/golfbay/libs/kafkax"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/codes"
)

type Handler func(ctx context.Context, msg kafka.Message) error

// Reader is the subset of *kafka.Reader the consumer uses.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Inbox records processed event ids. Record reports false for a duplicate.
type Inbox interface {
	Record(ctx context.Context, eventID, eventType string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type Consumer struct {
	reader      Reader
	logger      *slog.Logger
	inbox       Inbox
	handler     Handler
	maxAttempts int
	backoff     time.Duration
}

type Config struct {
	Brokers     string
	GroupID     string
	Topic       string
	MaxAttempts int
	Backoff     time.Duration
}

func New(logger *slog.Logger, inboxRepo Inbox, cfg Config, handler Handler) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  kafkax.SplitBrokers(cfg.Brokers),
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return NewWithReader(logger, reader, inboxRepo, cfg, handler)
}

func NewWithReader(logger *slog.Logger, reader Reader, inboxRepo Inbox, cfg Config, handler Handler) *Consumer {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	return &Consumer{
		reader:      reader,
		logger:      logger,
		inbox:       inboxRepo,
		handler:     handler,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
	}
}

// Run consumes until ctx is done. Offsets are committed after a message is
// handled or given up on, so a crash mid-message redelivers it.
func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("kafka read error", "err", err)
			if !sleep(ctx, c.backoff) {
				return
			}
			continue
		}

		c.process(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("kafka commit failed", "err", err, "offset", msg.Offset)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	ctxSpan, span := kafkax.StartConsumerSpan(ctx, msg)
	defer span.End()

	meta := kafkax.ExtractEventMeta(msg)

	ok, err := c.inbox.Record(ctxSpan, meta.EventID, meta.EventType)
	if err != nil {
		c.logger.Error("inbox record failed", "err", err)
		span.RecordError(err)
		return
	}
	if !ok {
		c.logger.Info("duplicate event ignored", "event_id", meta.EventID, "event_type", meta.EventType)
		return
	}

	for attempt := 1; ; attempt++ {
		err = c.handler(ctxSpan, msg)
		if err == nil {
			return
		}
		c.logger.Error("handler error", "err", err, "event_id", meta.EventID, "attempt", attempt)
		span.RecordError(err)
		if attempt >= c.maxAttempts || !sleep(ctx, c.backoff*time.Duration(attempt)) {
			break
		}
	}

	span.SetStatus(codes.Error, "handler failed")
	// Let a replay of the same event be processed again.
	if err := c.inbox.Forget(context.WithoutCancel(ctxSpan), meta.EventID); err != nil {
		c.logger.Error("inbox forget failed", "err", err, "event_id", meta.EventID)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
