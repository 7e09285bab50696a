// Package confirm turns booking.confirmed events into confirmation emails.
package confirm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/md-rashed-zaman/golfbay/libs/bookingevents"
	"github.com/md-rashed-zaman/golfbay/libs/kafkax"
	"github.com/md-rashed-zaman/golfbay/libs/mailx"
	"github.com/md-rashed-zaman/golfbay/services/notification-service/internal/storage"
	"github.com/segmentio/kafka-go"
)

type Recorder interface {
	Insert(ctx context.Context, n storage.Notification) error
}

type Handler struct {
	sender   mailx.Sender
	recorder Recorder
	site     string
	logger   *slog.Logger
}

func NewHandler(sender mailx.Sender, recorder Recorder, site string, logger *slog.Logger) *Handler {
	return &Handler{sender: sender, recorder: recorder, site: site, logger: logger}
}

// Handle sends one confirmation. Malformed events are logged and dropped;
// only a failure to record the outcome is returned, so the consumer retries it.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	meta := kafkax.ExtractEventMeta(msg)

	var evt bookingevents.BookingConfirmedV1
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		h.logger.Error("invalid booking payload", "err", err, "event_id", meta.EventID)
		return nil
	}
	email, err := bookingevents.RenderConfirmation(evt, h.site)
	if err != nil {
		h.logger.Error("booking event rejected", "err", err, "event_id", meta.EventID)
		return nil
	}

	n := storage.Notification{
		BookingID:  evt.BookingID,
		EventID:    meta.EventID,
		Channel:    "email",
		Recipient:  evt.CustomerEmail,
		Subject:    email.Subject,
		Status:     storage.StatusSent,
		ProviderID: h.sender.ProviderID(),
		Payload:    msg.Value,
	}
	if err := h.sender.Send(ctx, mailx.Message{
		To:      evt.CustomerEmail,
		Subject: email.Subject,
		Text:    email.Text,
		HTML:    email.HTML,
	}); err != nil {
		h.logger.Error("confirmation email failed", "err", err, "booking_id", evt.BookingID)
		n.Status = storage.StatusFailed
		n.ErrorReason = err.Error()
	}

	if err := h.recorder.Insert(ctx, n); err != nil {
		return fmt.Errorf("record notification: %w", err)
	}
	h.logger.Info("confirmation processed", "booking_id", evt.BookingID, "status", n.Status)
	return nil
}
