// Package booking computes availability and commits, cancels and checks in
// bookings. The store is the only serialization point: concurrent commits
// for an overlapping interval race on its constraint and all but one fail
// with ConflictError.
package booking

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/md-rashed-zaman/golfbay/libs/bizcal"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/catalog"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/metrics"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	codeAlphabet = "0123456789ABCDEF"
	codeLength   = 10
)

var errCodeMismatch = errors.New("confirmation code mismatch")

type Config struct {
	Calendar      *bizcal.Calendar
	OpenHour      int
	CloseHour     int
	NotifyTimeout time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.Calendar == nil {
		c.Calendar = bizcal.Fixed(time.UTC)
	}
	if c.OpenHour == 0 && c.CloseHour == 0 {
		c.OpenHour, c.CloseHour = 9, 17
	}
	if c.NotifyTimeout <= 0 {
		c.NotifyTimeout = 10 * time.Second
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

type Service struct {
	store    storage.Store
	catalog  *catalog.Catalog
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
	cfg      Config
	validate *validator.Validate
	tracer   trace.Tracer
	pending  sync.WaitGroup
}

// NewService wires the core. A nil notifier disables notifications and a nil
// catalog reads reference data straight from the store.
func NewService(store storage.Store, cat *catalog.Catalog, notifier Notifier, logger *slog.Logger, m *metrics.Metrics, cfg Config) *Service {
	if cat == nil {
		cat = catalog.New(store, 0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("name"); name != "" {
			return name
		}
		return f.Name
	})
	return &Service{
		store:    store,
		catalog:  cat,
		notifier: notifier,
		logger:   logger,
		metrics:  m,
		cfg:      cfg.withDefaults(),
		validate: v,
		tracer:   otel.Tracer("booking"),
	}
}

// AvailabilityQuery names a service, a bay and a business-local date (YYYY-MM-DD).
type AvailabilityQuery struct {
	ServiceID string
	BayID     string
	Date      string
}

type AvailabilityResult struct {
	Date    bizcal.Date
	Service model.Service
	Bay     model.Bay
	Slots   []availability.Slot
}

// Availability lists the day's slots for the service length on the bay.
// Unknown service or bay ids give an empty list, not an error.
func (s *Service) Availability(ctx context.Context, q AvailabilityQuery) (AvailabilityResult, error) {
	ctx, span := s.tracer.Start(ctx, "booking.availability", trace.WithAttributes(
		attribute.String("booking.service_id", q.ServiceID),
		attribute.String("booking.bay_id", q.BayID),
		attribute.String("booking.date", q.Date),
	))
	defer span.End()

	q.ServiceID = strings.TrimSpace(q.ServiceID)
	q.BayID = strings.TrimSpace(q.BayID)
	if q.ServiceID == "" {
		s.metrics.ObserveAvailability("invalid")
		return AvailabilityResult{}, &ValidationError{Field: "service_id", Reason: "is required"}
	}
	if q.BayID == "" {
		s.metrics.ObserveAvailability("invalid")
		return AvailabilityResult{}, &ValidationError{Field: "bay_id", Reason: "is required"}
	}
	date, err := bizcal.ParseDate(strings.TrimSpace(q.Date))
	if err != nil {
		s.metrics.ObserveAvailability("invalid")
		return AvailabilityResult{}, &ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	result := AvailabilityResult{Date: date}

	svc, err := s.catalog.Service(ctx, q.ServiceID)
	if errors.Is(err, storage.ErrNotFound) {
		s.metrics.ObserveAvailability("unknown")
		return result, nil
	}
	if err != nil {
		return s.availabilityFailed(span, result, "load service", err)
	}
	bay, err := s.catalog.Bay(ctx, q.BayID)
	if errors.Is(err, storage.ErrNotFound) {
		s.metrics.ObserveAvailability("unknown")
		return result, nil
	}
	if err != nil {
		return s.availabilityFailed(span, result, "load bay", err)
	}
	result.Service, result.Bay = svc, bay

	open, closing := s.cfg.Calendar.Window(date, s.cfg.OpenHour, s.cfg.CloseHour)
	booked, err := s.store.ConfirmedBookings(ctx, bay.ID, open, closing)
	if err != nil {
		return s.availabilityFailed(span, result, "load bookings", err)
	}
	busy := make([]availability.Interval, 0, len(booked))
	for _, b := range booked {
		busy = append(busy, availability.Interval{Start: b.StartTime, End: b.EndTime})
	}

	var cutoff time.Time
	now := s.cfg.Now()
	if date.Equal(s.cfg.Calendar.Today(now)) {
		cutoff = now
	}

	result.Slots = availability.Slots(open, closing, svc.Duration(), busy, cutoff)
	span.SetAttributes(attribute.Int("booking.slots", len(result.Slots)))
	s.metrics.ObserveAvailability("ok")
	return result, nil
}

func (s *Service) availabilityFailed(span trace.Span, result AvailabilityResult, op string, err error) (AvailabilityResult, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, op)
	s.metrics.ObserveAvailability("error")
	return result, &ServerError{Op: op, Err: err}
}

// CommitRequest is a customer's booking attempt. Start is an absolute instant.
type CommitRequest struct {
	FullName  string `name:"full_name" validate:"required,max=200"`
	Email     string `name:"email" validate:"required,email,max=320"`
	Phone     string `name:"phone" validate:"max=40"`
	ServiceID string `name:"service_id" validate:"required"`
	BayID     string `name:"bay_id" validate:"required"`
	Start     time.Time
}

type Confirmation struct {
	BookingID string
	Code      string
	Start     time.Time
	End       time.Time
}

func (s *Service) Commit(ctx context.Context, req CommitRequest) (Confirmation, error) {
	started := time.Now()
	ctx, span := s.tracer.Start(ctx, "booking.commit", trace.WithAttributes(
		attribute.String("booking.service_id", req.ServiceID),
		attribute.String("booking.bay_id", req.BayID),
	))
	defer span.End()

	conf, outcome, err := s.commit(ctx, req)
	s.metrics.ObserveCommit(outcome, started)
	span.SetAttributes(attribute.String("booking.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		if outcome == metrics.OutcomeError {
			span.SetStatus(codes.Error, "commit failed")
		}
		return Confirmation{}, err
	}
	span.SetAttributes(attribute.String("booking.id", conf.BookingID))
	return conf, nil
}

func (s *Service) commit(ctx context.Context, req CommitRequest) (Confirmation, string, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = model.NormalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.BayID = strings.TrimSpace(req.BayID)

	if err := s.validate.Struct(req); err != nil {
		return Confirmation{}, metrics.OutcomeInvalid, toValidationError(err)
	}
	if req.Start.IsZero() {
		return Confirmation{}, metrics.OutcomeInvalid, &ValidationError{Field: "start_time", Reason: "is required"}
	}

	svc, err := s.catalog.Service(ctx, req.ServiceID)
	if errors.Is(err, storage.ErrNotFound) {
		return Confirmation{}, metrics.OutcomeInvalid, &ValidationError{Field: "service_id", Reason: "unknown service"}
	}
	if err != nil {
		return Confirmation{}, metrics.OutcomeError, &ServerError{Op: "load service", Err: err}
	}
	bay, err := s.catalog.Bay(ctx, req.BayID)
	if errors.Is(err, storage.ErrNotFound) {
		return Confirmation{}, metrics.OutcomeInvalid, &ValidationError{Field: "bay_id", Reason: "unknown bay"}
	}
	if err != nil {
		return Confirmation{}, metrics.OutcomeError, &ServerError{Op: "load bay", Err: err}
	}

	start := req.Start.UTC()
	end := start.Add(svc.Duration())
	open, closing := s.cfg.Calendar.Window(s.cfg.Calendar.DateOf(start), s.cfg.OpenHour, s.cfg.CloseHour)
	if start.Before(open) || end.After(closing) {
		return Confirmation{}, metrics.OutcomeInvalid, &ValidationError{Field: "start_time", Reason: "outside opening hours"}
	}
	if !start.After(s.cfg.Now()) {
		return Confirmation{}, metrics.OutcomeInvalid, &ValidationError{Field: "start_time", Reason: "must be in the future"}
	}

	code, err := gonanoid.Generate(codeAlphabet, codeLength)
	if err != nil {
		return Confirmation{}, metrics.OutcomeError, &ServerError{Op: "generate confirmation code", Err: err}
	}

	customer := model.Customer{FullName: req.FullName, Email: req.Email, Phone: req.Phone}
	created, err := s.store.CreateBooking(ctx, customer, model.Booking{
		BayID:            bay.ID,
		ServiceID:        svc.ID,
		StartTime:        start,
		EndTime:          end,
		Status:           model.StatusConfirmed,
		ConfirmationCode: code,
	})
	switch {
	case errors.Is(err, storage.ErrConflict):
		return Confirmation{}, metrics.OutcomeConflict, &ConflictError{BayID: bay.ID, Start: start, End: end}
	case errors.Is(err, storage.ErrNotFound):
		return Confirmation{}, metrics.OutcomeInvalid, &ValidationError{Reason: "service or bay no longer exists"}
	case err != nil:
		return Confirmation{}, metrics.OutcomeError, &ServerError{Op: "create booking", Err: err}
	}
	customer.ID = created.CustomerID

	s.logger.Info("booking confirmed",
		"booking_id", created.ID,
		"bay_id", bay.ID,
		"service_id", svc.ID,
		"start_time", start.Format(time.RFC3339),
	)

	s.notify(ctx, Confirmed{
		Booking:  created,
		Customer: customer,
		Service:  svc,
		Bay:      bay,
		TimeZone: s.cfg.Calendar.Location().String(),
	})

	return Confirmation{BookingID: created.ID, Code: created.ConfirmationCode, Start: start, End: end}, metrics.OutcomeConfirmed, nil
}

// notify runs the notifier on a context detached from the request so a
// client disconnect cannot cut it short.
func (s *Service) notify(ctx context.Context, c Confirmed) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.NotifyTimeout)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer cancel()
		if err := s.notifier.BookingConfirmed(ctx, c); err != nil {
			s.metrics.ObserveNotificationFailure(fmt.Sprintf("%T", s.notifier))
			s.logger.Error("booking notification failed", "err", err, "booking_id", c.Booking.ID)
		}
	}()
}

// WaitNotifications blocks until in-flight notifications finish.
func (s *Service) WaitNotifications() {
	s.pending.Wait()
}

// Cancel is the admin cancellation. Canceling twice is a no-op.
func (s *Service) Cancel(ctx context.Context, id, reason string) (model.Booking, error) {
	return s.transition(ctx, "cancel", id, func(b *model.Booking) error {
		b.Cancel(reason, s.cfg.Now())
		return nil
	})
}

// CancelByCustomer requires the booking's confirmation code. A wrong code is
// reported as not found so ids cannot be probed.
func (s *Service) CancelByCustomer(ctx context.Context, id, code string) (model.Booking, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return model.Booking{}, &ValidationError{Field: "confirmation_code", Reason: "is required"}
	}
	return s.transition(ctx, "customer_cancel", id, func(b *model.Booking) error {
		if subtle.ConstantTimeCompare([]byte(code), []byte(b.ConfirmationCode)) != 1 {
			return errCodeMismatch
		}
		b.Cancel("canceled by customer", s.cfg.Now())
		return nil
	})
}

func (s *Service) CheckIn(ctx context.Context, id string) (model.Booking, error) {
	return s.transition(ctx, "checkin", id, func(b *model.Booking) error {
		_, err := b.CheckIn()
		return err
	})
}

func (s *Service) transition(ctx context.Context, action, id string, fn func(*model.Booking) error) (model.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Booking{}, &ValidationError{Field: "id", Reason: "is required"}
	}
	b, err := s.store.UpdateBooking(ctx, id, fn)
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, errCodeMismatch):
		return model.Booking{}, &NotFoundError{Resource: "booking", ID: id}
	case errors.Is(err, model.ErrInvalidTransition):
		return model.Booking{}, &TransitionError{BookingID: id, Err: err}
	case err != nil:
		return model.Booking{}, &ServerError{Op: action, Err: err}
	}
	s.metrics.ObserveTransition(action)
	s.logger.Info("booking updated", "booking_id", id, "action", action, "status", string(b.Status))
	return b, nil
}

// ListDay returns every booking starting on the business-local date.
func (s *Service) ListDay(ctx context.Context, date string) ([]model.BookingDetail, error) {
	d, err := bizcal.ParseDate(strings.TrimSpace(date))
	if err != nil {
		return nil, &ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	from, to := s.cfg.Calendar.DayBounds(d)
	list, err := s.store.ListBetween(ctx, from, to)
	if err != nil {
		return nil, &ServerError{Op: "list bookings", Err: err}
	}
	return list, nil
}

func (s *Service) ListForCustomer(ctx context.Context, email string, limit int) ([]model.BookingDetail, error) {
	email = model.NormalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}
	list, err := s.store.ListByEmail(ctx, email, limit)
	if err != nil {
		return nil, &ServerError{Op: "list customer bookings", Err: err}
	}
	return list, nil
}

type Catalog struct {
	Services []model.Service
	Bays     []model.Bay
}

func (s *Service) Catalog(ctx context.Context) (Catalog, error) {
	services, err := s.catalog.Services(ctx)
	if err != nil {
		return Catalog{}, &ServerError{Op: "list services", Err: err}
	}
	bays, err := s.catalog.Bays(ctx)
	if err != nil {
		return Catalog{}, &ServerError{Op: "list bays", Err: err}
	}
	return Catalog{Services: services, Bays: bays}, nil
}

func toValidationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return &ValidationError{Reason: err.Error()}
	}
	fe := errs[0]
	reason := "is invalid"
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "email":
		reason = "must be a valid email address"
	case "max":
		reason = "is too long"
	}
	return &ValidationError{Field: fe.Field(), Reason: reason}
}
