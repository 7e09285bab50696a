package confirm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/md-rashed-zaman/golfbay/libs/bookingevents"
	"github.com/md-rashed-zaman/golfbay/libs/kafkax"
	"github.com/md-rashed-zaman/golfbay/libs/mailx"
	"github.com/md-rashed-zaman/golfbay/services/notification-service/internal/storage"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []mailx.Message
	err  error
}

func (s *fakeSender) Send(_ context.Context, msg mailx.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *fakeSender) ProviderID() string { return "fake" }

type fakeRecorder struct {
	rows []storage.Notification
	err  error
}

func (r *fakeRecorder) Insert(_ context.Context, n storage.Notification) error {
	if r.err != nil {
		return r.err
	}
	r.rows = append(r.rows, n)
	return nil
}

func confirmedMessage(t *testing.T) kafka.Message {
	t.Helper()
	payload, err := json.Marshal(bookingevents.BookingConfirmedV1{
		BookingID:        "b-1",
		ConfirmationCode: "A1B2C3D4E5",
		CustomerName:     "Ada Lovelace",
		CustomerEmail:    "ada@example.com",
		BayID:            "bay-1",
		BayName:          "Bay 1",
		ServiceID:        "svc-1",
		ServiceName:      "60 Minute Session",
		StartTime:        "2026-03-10T13:00:00Z",
		EndTime:          "2026-03-10T14:00:00Z",
		TimeZone:         "America/Toronto",
	})
	require.NoError(t, err)
	return kafkax.NewEventMessage(context.Background(), bookingevents.TopicBookingConfirmed, "b-1", payload)
}

func newTestHandler(sender *fakeSender, rec *fakeRecorder) *Handler {
	return NewHandler(sender, rec, "Test Range", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleSendsAndRecords(t *testing.T) {
	sender := &fakeSender{}
	rec := &fakeRecorder{}
	msg := confirmedMessage(t)

	require.NoError(t, newTestHandler(sender, rec).Handle(context.Background(), msg))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ada@example.com", sender.sent[0].To)
	assert.Equal(t, "Your Booking Confirmation", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].Text, "A1B2C3D4E5")

	require.Len(t, rec.rows, 1)
	row := rec.rows[0]
	assert.Equal(t, storage.StatusSent, row.Status)
	assert.Equal(t, "b-1", row.BookingID)
	assert.Equal(t, "fake", row.ProviderID)
	assert.Equal(t, kafkax.ExtractEventMeta(msg).EventID, row.EventID)
	assert.Empty(t, row.ErrorReason)
}

func TestHandleRecordsSendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("relay down")}
	rec := &fakeRecorder{}

	require.NoError(t, newTestHandler(sender, rec).Handle(context.Background(), confirmedMessage(t)))

	require.Len(t, rec.rows, 1)
	assert.Equal(t, storage.StatusFailed, rec.rows[0].Status)
	assert.Equal(t, "relay down", rec.rows[0].ErrorReason)
}

func TestHandleDropsMalformedEvents(t *testing.T) {
	cases := map[string][]byte{
		"not json":      []byte("{"),
		"missing email": []byte(`{"booking_id":"b-1","confirmation_code":"X","start_time":"2026-03-10T13:00:00Z","end_time":"2026-03-10T14:00:00Z"}`),
		"bad time":      []byte(`{"booking_id":"b-1","confirmation_code":"X","customer_email":"a@b.c","start_time":"soon","end_time":"later"}`),
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			sender := &fakeSender{}
			rec := &fakeRecorder{}
			err := newTestHandler(sender, rec).Handle(context.Background(), kafka.Message{Topic: bookingevents.TopicBookingConfirmed, Value: value})
			require.NoError(t, err)
			assert.Empty(t, sender.sent)
			assert.Empty(t, rec.rows)
		})
	}
}

func TestHandleReturnsRecorderError(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("db gone")}
	err := newTestHandler(&fakeSender{}, rec).Handle(context.Background(), confirmedMessage(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db gone")
}
