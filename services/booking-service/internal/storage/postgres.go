package storage

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/md-rashed-zaman/golfbay/libs/db"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/model"
)

//go:embed schema.sql
var schemaSQL string

type Postgres struct {
	pool *db.Pool
}

func NewPostgres(pool *db.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

// mapErr turns driver errors into the package sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if IsConflict(err) {
		return ErrConflict
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "22P02", "23503":
			return ErrNotFound
		}
	}
	return err
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (p *Postgres) ListServices(ctx context.Context) ([]model.Service, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id::text, name, slug, duration_minutes, price_cents
		FROM services
		ORDER BY duration_minutes ASC, name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Service
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.DurationMinutes, &s.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) ListBays(ctx context.Context) ([]model.Bay, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id::text, name, bay_type, capacity
		FROM bays
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Bay
	for rows.Next() {
		var b model.Bay
		var bayType string
		if err := rows.Scan(&b.ID, &b.Name, &bayType, &b.Capacity); err != nil {
			return nil, err
		}
		b.Type = model.BayType(bayType)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (p *Postgres) GetService(ctx context.Context, id string) (model.Service, error) {
	if !validID(id) {
		return model.Service{}, ErrNotFound
	}
	var s model.Service
	err := p.pool.QueryRow(ctx, `
		SELECT id::text, name, slug, duration_minutes, price_cents
		FROM services
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.Slug, &s.DurationMinutes, &s.PriceCents)
	if err != nil {
		return model.Service{}, mapErr(err)
	}
	return s, nil
}

func (p *Postgres) GetBay(ctx context.Context, id string) (model.Bay, error) {
	if !validID(id) {
		return model.Bay{}, ErrNotFound
	}
	var b model.Bay
	var bayType string
	err := p.pool.QueryRow(ctx, `
		SELECT id::text, name, bay_type, capacity
		FROM bays
		WHERE id = $1
	`, id).Scan(&b.ID, &b.Name, &bayType, &b.Capacity)
	if err != nil {
		return model.Bay{}, mapErr(err)
	}
	b.Type = model.BayType(bayType)
	return b, nil
}

func (p *Postgres) UpsertService(ctx context.Context, svc model.Service) (model.Service, error) {
	err := p.pool.QueryRow(ctx, `
		INSERT INTO services (name, slug, duration_minutes, price_cents)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slug)
		DO UPDATE SET name = EXCLUDED.name,
		              duration_minutes = EXCLUDED.duration_minutes,
		              price_cents = EXCLUDED.price_cents
		RETURNING id::text
	`, svc.Name, svc.Slug, svc.DurationMinutes, svc.PriceCents).Scan(&svc.ID)
	if err != nil {
		return model.Service{}, err
	}
	return svc, nil
}

func (p *Postgres) UpsertBay(ctx context.Context, bay model.Bay) (model.Bay, error) {
	err := p.pool.QueryRow(ctx, `
		INSERT INTO bays (name, bay_type, capacity)
		VALUES ($1, $2, $3)
		ON CONFLICT (name)
		DO UPDATE SET bay_type = EXCLUDED.bay_type,
		              capacity = EXCLUDED.capacity
		RETURNING id::text
	`, bay.Name, string(bay.Type), bay.Capacity).Scan(&bay.ID)
	if err != nil {
		return model.Bay{}, err
	}
	return bay, nil
}

func (p *Postgres) ConfirmedBookings(ctx context.Context, bayID string, from, to time.Time) ([]model.Booking, error) {
	if !validID(bayID) {
		return nil, nil
	}
	rows, err := p.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings b
		WHERE b.bay_id = $1
			AND b.status = 'CONFIRMED'
			AND b.start_time < $3
			AND b.end_time > $2
		ORDER BY b.start_time ASC
	`, bayID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (p *Postgres) CreateBooking(ctx context.Context, customer model.Customer, b model.Booking) (model.Booking, error) {
	if !validID(b.BayID) || !validID(b.ServiceID) {
		return model.Booking{}, ErrNotFound
	}
	if b.Status == "" {
		b.Status = model.StatusConfirmed
	}

	err := p.pool.WithTx(ctx, func(tx pgx.Tx) error {
		var customerID string
		if err := tx.QueryRow(ctx, `
			INSERT INTO customers (full_name, email, phone)
			VALUES ($1, $2, $3)
			ON CONFLICT (email)
			DO UPDATE SET full_name = EXCLUDED.full_name,
			              phone = COALESCE(NULLIF(EXCLUDED.phone, ''), customers.phone),
			              updated_at = now()
			RETURNING id::text
		`, customer.FullName, model.NormalizeEmail(customer.Email), customer.Phone).Scan(&customerID); err != nil {
			return err
		}
		b.CustomerID = customerID

		return tx.QueryRow(ctx, `
			INSERT INTO bookings (bay_id, service_id, customer_id, start_time, end_time, status, confirmation_code)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id::text, created_at
		`, b.BayID, b.ServiceID, customerID, b.StartTime.UTC(), b.EndTime.UTC(), string(b.Status), b.ConfirmationCode).
			Scan(&b.ID, &b.CreatedAt)
	})
	if err != nil {
		return model.Booking{}, mapErr(err)
	}
	b.StartTime = b.StartTime.UTC()
	b.EndTime = b.EndTime.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	return b, nil
}

func (p *Postgres) GetBooking(ctx context.Context, id string) (model.Booking, error) {
	if !validID(id) {
		return model.Booking{}, ErrNotFound
	}
	b, err := scanBooking(p.pool.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings b
		WHERE b.id = $1
	`, id))
	if err != nil {
		return model.Booking{}, mapErr(err)
	}
	return b, nil
}

func (p *Postgres) UpdateBooking(ctx context.Context, id string, fn func(*model.Booking) error) (model.Booking, error) {
	if !validID(id) {
		return model.Booking{}, ErrNotFound
	}
	var out model.Booking
	err := p.pool.WithTx(ctx, func(tx pgx.Tx) error {
		b, err := scanBooking(tx.QueryRow(ctx, `
			SELECT `+bookingColumns+`
			FROM bookings b
			WHERE b.id = $1
			FOR UPDATE
		`, id))
		if err != nil {
			return mapErr(err)
		}
		if err := fn(&b); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE bookings
			SET status = $2,
				checked_in = $3,
				cancel_reason = $4,
				canceled_at = $5
			WHERE id = $1
		`, id, string(b.Status), b.CheckedIn, b.CancelReason, b.CanceledAt); err != nil {
			return mapErr(err)
		}
		out = b
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	return out, nil
}

func (p *Postgres) ListBetween(ctx context.Context, from, to time.Time) ([]model.BookingDetail, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+detailColumns+`
		FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		JOIN bays y ON y.id = b.bay_id
		JOIN services s ON s.id = b.service_id
		WHERE b.start_time >= $1 AND b.start_time < $2
		ORDER BY b.start_time ASC, y.name ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	return collectDetails(rows)
}

func (p *Postgres) ListByEmail(ctx context.Context, email string, limit int) ([]model.BookingDetail, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := p.pool.Query(ctx, `
		SELECT `+detailColumns+`
		FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		JOIN bays y ON y.id = b.bay_id
		JOIN services s ON s.id = b.service_id
		WHERE c.email = $1
		ORDER BY b.start_time DESC
		LIMIT $2
	`, model.NormalizeEmail(email), limit)
	if err != nil {
		return nil, err
	}
	return collectDetails(rows)
}

const bookingColumns = `b.id::text, b.bay_id::text, b.service_id::text, b.customer_id::text,
	b.start_time, b.end_time, b.status, b.confirmation_code, b.checked_in,
	b.cancel_reason, b.canceled_at, b.created_at`

const detailColumns = bookingColumns + `,
	c.full_name, c.email, c.phone, y.name, s.name, s.duration_minutes`

func bookingDest(b *model.Booking, status *string) []any {
	return []any{
		&b.ID, &b.BayID, &b.ServiceID, &b.CustomerID,
		&b.StartTime, &b.EndTime, status, &b.ConfirmationCode, &b.CheckedIn,
		&b.CancelReason, &b.CanceledAt, &b.CreatedAt,
	}
}

func normalizeTimes(b *model.Booking) {
	b.StartTime = b.StartTime.UTC()
	b.EndTime = b.EndTime.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	if b.CanceledAt != nil {
		t := b.CanceledAt.UTC()
		b.CanceledAt = &t
	}
}

func scanBooking(row pgx.Row) (model.Booking, error) {
	var b model.Booking
	var status string
	if err := row.Scan(bookingDest(&b, &status)...); err != nil {
		return model.Booking{}, err
	}
	b.Status = model.Status(status)
	normalizeTimes(&b)
	return b, nil
}

func collectDetails(rows pgx.Rows) ([]model.BookingDetail, error) {
	defer rows.Close()
	var out []model.BookingDetail
	for rows.Next() {
		var d model.BookingDetail
		var status string
		dest := append(bookingDest(&d.Booking, &status),
			&d.CustomerName, &d.CustomerEmail, &d.CustomerPhone, &d.BayName, &d.ServiceName, &d.DurationMinutes)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		d.Status = model.Status(status)
		normalizeTimes(&d.Booking)
		out = append(out, d)
	}
	return out, rows.Err()
}

var (
	_ Store = (*Postgres)(nil)
	_ Store = (*Memory)(nil)
)
