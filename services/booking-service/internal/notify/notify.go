// Package notify delivers booking confirmations, either directly by email or
// as events for the notification service.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/md-rashed-zaman/golfbay/libs/bookingevents"
	"github.com/md-rashed-zaman/golfbay/libs/kafkax"
	"github.com/md-rashed-zaman/golfbay/libs/mailx"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/booking"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/codes"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher emits booking.confirmed.v1 keyed by booking id.
type KafkaPublisher struct {
	writer MessageWriter
	topic  string
}

func NewKafkaPublisher(w MessageWriter, topic string) *KafkaPublisher {
	if topic == "" {
		topic = bookingevents.TopicBookingConfirmed
	}
	return &KafkaPublisher{writer: w, topic: topic}
}

func (p *KafkaPublisher) BookingConfirmed(ctx context.Context, c booking.Confirmed) error {
	ctx, span := kafkax.StartProducerSpan(ctx, p.topic)
	defer span.End()

	evt := c.Event()
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode booking event: %w", err)
	}
	// event_type stays the contract name even when the topic is overridden.
	msg := kafkax.NewEventMessage(ctx, bookingevents.TopicBookingConfirmed, evt.BookingID, payload)
	msg.Topic = p.topic
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		return fmt.Errorf("publish booking event: %w", err)
	}
	return nil
}

// EmailNotifier renders the confirmation and hands it to a mailx.Sender.
type EmailNotifier struct {
	sender mailx.Sender
	site   string
}

func NewEmailNotifier(sender mailx.Sender, site string) *EmailNotifier {
	return &EmailNotifier{sender: sender, site: site}
}

// NewLogNotifier renders confirmations and logs them without sending.
func NewLogNotifier(logger *slog.Logger, site string) *EmailNotifier {
	return NewEmailNotifier(mailx.NewLogSender(logger), site)
}

func (n *EmailNotifier) BookingConfirmed(ctx context.Context, c booking.Confirmed) error {
	email, err := bookingevents.RenderConfirmation(c.Event(), n.site)
	if err != nil {
		return err
	}
	if err := n.sender.Send(ctx, mailx.Message{
		To:      c.Customer.Email,
		Subject: email.Subject,
		Text:    email.Text,
		HTML:    email.HTML,
	}); err != nil {
		return fmt.Errorf("send confirmation via %s: %w", n.sender.ProviderID(), err)
	}
	return nil
}
