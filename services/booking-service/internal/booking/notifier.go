package booking

import (
	"context"
	"time"

	"github.com/md-rashed-zaman/golfbay/libs/bookingevents"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/model"
)

// Notifier is told about every committed booking after the transaction has
// closed. Its outcome never changes the booking.
type Notifier interface {
	BookingConfirmed(ctx context.Context, c Confirmed) error
}

type Confirmed struct {
	Booking  model.Booking
	Customer model.Customer
	Service  model.Service
	Bay      model.Bay
	TimeZone string
}

func (c Confirmed) Event() bookingevents.BookingConfirmedV1 {
	return bookingevents.BookingConfirmedV1{
		BookingID:        c.Booking.ID,
		ConfirmationCode: c.Booking.ConfirmationCode,
		CustomerName:     c.Customer.FullName,
		CustomerEmail:    c.Customer.Email,
		CustomerPhone:    c.Customer.Phone,
		BayID:            c.Bay.ID,
		BayName:          c.Bay.Name,
		ServiceID:        c.Service.ID,
		ServiceName:      c.Service.Name,
		StartTime:        c.Booking.StartTime.UTC().Format(time.RFC3339),
		EndTime:          c.Booking.EndTime.UTC().Format(time.RFC3339),
		TimeZone:         c.TimeZone,
	}
}
