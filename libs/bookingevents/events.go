// Package bookingevents is the contract between the booking service and its
// notification consumers.
package bookingevents

import (
	"errors"
	"strings"
	"time"
)

const TopicBookingConfirmed = "booking.confirmed.v1"

// BookingConfirmedV1 is published once per committed booking. Times are RFC 3339 UTC.
type BookingConfirmedV1 struct {
	BookingID        string `json:"booking_id"`
	ConfirmationCode string `json:"confirmation_code"`
	CustomerName     string `json:"customer_name"`
	CustomerEmail    string `json:"customer_email"`
	CustomerPhone    string `json:"customer_phone,omitempty"`
	BayID            string `json:"bay_id"`
	BayName          string `json:"bay_name"`
	ServiceID        string `json:"service_id"`
	ServiceName      string `json:"service_name"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	TimeZone         string `json:"time_zone,omitempty"`
}

var ErrInvalidEvent = errors.New("bookingevents: invalid event")

func (e BookingConfirmedV1) Validate() error {
	var missing []string
	if strings.TrimSpace(e.BookingID) == "" {
		missing = append(missing, "booking_id")
	}
	if strings.TrimSpace(e.ConfirmationCode) == "" {
		missing = append(missing, "confirmation_code")
	}
	if strings.TrimSpace(e.CustomerEmail) == "" {
		missing = append(missing, "customer_email")
	}
	if len(missing) > 0 {
		return errors.Join(ErrInvalidEvent, errors.New("missing "+strings.Join(missing, ", ")))
	}
	if _, err := time.Parse(time.RFC3339, e.StartTime); err != nil {
		return errors.Join(ErrInvalidEvent, errors.New("invalid start_time"))
	}
	if _, err := time.Parse(time.RFC3339, e.EndTime); err != nil {
		return errors.Join(ErrInvalidEvent, errors.New("invalid end_time"))
	}
	return nil
}
