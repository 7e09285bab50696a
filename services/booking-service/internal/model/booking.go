package model

import (
	"errors"
	"strings"
	"time"
)

type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusCanceled  Status = "CANCELED"
)

type BayType string

const (
	BayPrime    BayType = "PRIME"
	BayStandard BayType = "STANDARD"
)

var ErrInvalidTransition = errors.New("invalid booking transition")

type Service struct {
	ID              string
	Name            string
	Slug            string
	DurationMinutes int
	PriceCents      int
}

func (s Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

type Bay struct {
	ID       string
	Name     string
	Type     BayType
	Capacity int
}

// Customer is keyed by email; see NormalizeEmail.
type Customer struct {
	ID       string
	FullName string
	Email    string
	Phone    string
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type Booking struct {
	ID               string
	BayID            string
	ServiceID        string
	CustomerID       string
	StartTime        time.Time
	EndTime          time.Time
	Status           Status
	ConfirmationCode string
	CheckedIn        bool
	CancelReason     string
	CanceledAt       *time.Time
	CreatedAt        time.Time
}

// Overlaps reports whether [start, end) intersects the booking's interval.
// Touching endpoints do not overlap.
func (b Booking) Overlaps(start, end time.Time) bool {
	return start.Before(b.EndTime) && end.After(b.StartTime)
}

func (b Booking) Blocking() bool {
	return b.Status == StatusConfirmed
}

// Cancel moves a confirmed booking to CANCELED. It returns false when the
// booking was already canceled and nothing changed.
func (b *Booking) Cancel(reason string, at time.Time) bool {
	if b.Status == StatusCanceled {
		return false
	}
	b.Status = StatusCanceled
	b.CancelReason = strings.TrimSpace(reason)
	at = at.UTC()
	b.CanceledAt = &at
	return true
}

func (b *Booking) CheckIn() (bool, error) {
	if b.Status != StatusConfirmed {
		return false, ErrInvalidTransition
	}
	if b.CheckedIn {
		return false, nil
	}
	b.CheckedIn = true
	return true, nil
}

// BookingDetail is a booking joined with the names shown in admin and
// customer listings.
type BookingDetail struct {
	Booking
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	BayName         string
	ServiceName     string
	DurationMinutes int
}
