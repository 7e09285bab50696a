// Package storage persists reference data and bookings. Both stores enforce
// per-bay non-overlap of CONFIRMED bookings at write time and report a losing
// write as ErrConflict.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/model"
)

var (
	ErrConflict = errors.New("storage: booking overlaps a confirmed booking")
	ErrNotFound = errors.New("storage: not found")
)

// Store is the persistence contract shared by Postgres and Memory.
type Store interface {
	ListServices(ctx context.Context) ([]model.Service, error)
	ListBays(ctx context.Context) ([]model.Bay, error)
	GetService(ctx context.Context, id string) (model.Service, error)
	GetBay(ctx context.Context, id string) (model.Bay, error)
	UpsertService(ctx context.Context, svc model.Service) (model.Service, error)
	UpsertBay(ctx context.Context, bay model.Bay) (model.Bay, error)

	// ConfirmedBookings returns CONFIRMED bookings on bayID intersecting [from, to).
	ConfirmedBookings(ctx context.Context, bayID string, from, to time.Time) ([]model.Booking, error)
	// CreateBooking upserts the customer by email and inserts the booking
	// atomically. On ErrConflict neither write is kept.
	CreateBooking(ctx context.Context, customer model.Customer, b model.Booking) (model.Booking, error)
	GetBooking(ctx context.Context, id string) (model.Booking, error)
	// UpdateBooking applies fn to the locked row and persists the result. An
	// error from fn aborts the update and is returned as is.
	UpdateBooking(ctx context.Context, id string, fn func(*model.Booking) error) (model.Booking, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]model.BookingDetail, error)
	ListByEmail(ctx context.Context, email string, limit int) ([]model.BookingDetail, error)
}

const DefaultListLimit = 100
