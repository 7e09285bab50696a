package storage

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/md-rashed-zaman/golfbay/libs/db"
)

//go:embed schema.sql
var schemaSQL string

const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

type Notification struct {
	BookingID   string
	EventID     string
	Channel     string
	Recipient   string
	Subject     string
	Status      string
	ProviderID  string
	ErrorReason string
	// Payload is stored as jsonb.
	Payload []byte
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (r *Repository) Insert(ctx context.Context, n Notification) error {
	payload := n.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications
			(booking_id, event_id, channel, recipient, subject, status, provider_id, error_reason, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb)
	`, n.BookingID, n.EventID, n.Channel, n.Recipient, n.Subject, n.Status, n.ProviderID, n.ErrorReason, string(payload))
	return err
}
