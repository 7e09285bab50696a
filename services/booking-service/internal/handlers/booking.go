package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/golfbay/libs/httpx"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/model"
)

// Bookings is the part of booking.Service the HTTP layer drives.
type Bookings interface {
	Availability(ctx context.Context, q booking.AvailabilityQuery) (booking.AvailabilityResult, error)
	Commit(ctx context.Context, req booking.CommitRequest) (booking.Confirmation, error)
	CancelByCustomer(ctx context.Context, id, code string) (model.Booking, error)
	Cancel(ctx context.Context, id, reason string) (model.Booking, error)
	CheckIn(ctx context.Context, id string) (model.Booking, error)
	ListDay(ctx context.Context, date string) ([]model.BookingDetail, error)
	ListForCustomer(ctx context.Context, email string, limit int) ([]model.BookingDetail, error)
	Catalog(ctx context.Context) (booking.Catalog, error)
}

type BookingHandler struct {
	bookings Bookings
	logger   *slog.Logger
	timeZone string
}

func NewBookingHandler(bookings Bookings, logger *slog.Logger, timeZone string) *BookingHandler {
	return &BookingHandler{bookings: bookings, logger: logger, timeZone: timeZone}
}

// RouteOptions carries the middleware applied to specific route groups. Nil
// entries are skipped.
type RouteOptions struct {
	Admin     httpx.Middleware
	WriteRate httpx.Middleware
}

func (h *BookingHandler) Register(mux *http.ServeMux, opts RouteOptions) {
	write := func(fn http.HandlerFunc) http.Handler {
		if opts.WriteRate == nil {
			return fn
		}
		return opts.WriteRate(fn)
	}
	admin := func(fn http.HandlerFunc) http.Handler {
		if opts.Admin == nil {
			return fn
		}
		return opts.Admin(fn)
	}

	mux.HandleFunc("GET /api/v1/catalog", h.Catalog)
	mux.HandleFunc("GET /api/v1/availability", h.Availability)
	mux.Handle("POST /api/v1/book", write(h.Book))
	mux.Handle("POST /api/v1/bookings/{id}/cancel", write(h.CustomerCancel))

	mux.Handle("GET /api/v1/admin/bookings", admin(h.AdminDay))
	mux.Handle("GET /api/v1/admin/customers/bookings", admin(h.AdminCustomer))
	mux.Handle("POST /api/v1/admin/bookings/{id}/action", admin(h.AdminAction))
}

type serviceItem struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int    `json:"price_cents"`
}

type bayItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Capacity int    `json:"capacity"`
}

type catalogResponse struct {
	TimeZone string        `json:"time_zone"`
	Services []serviceItem `json:"services"`
	Bays     []bayItem     `json:"bays"`
}

type slotItem struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}

type availabilityResponse struct {
	Date      string     `json:"date"`
	ServiceID string     `json:"service_id"`
	BayID     string     `json:"bay_id"`
	TimeZone  string     `json:"time_zone"`
	Slots     []slotItem `json:"slots"`
}

type bookRequest struct {
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	ServiceID string `json:"service_id"`
	BayID     string `json:"bay_id"`
	StartTime string `json:"start_time"`
}

type bookResponse struct {
	BookingID        string `json:"booking_id"`
	ConfirmationCode string `json:"confirmation_code"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
}

type customerCancelRequest struct {
	ConfirmationCode string `json:"confirmation_code"`
}

type bookingStatusResponse struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
	CheckedIn bool   `json:"checked_in"`
}

func (h *BookingHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	cat, err := h.bookings.Catalog(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := catalogResponse{
		TimeZone: h.timeZone,
		Services: make([]serviceItem, 0, len(cat.Services)),
		Bays:     make([]bayItem, 0, len(cat.Bays)),
	}
	for _, s := range cat.Services {
		resp.Services = append(resp.Services, serviceItem{
			ID:              s.ID,
			Name:            s.Name,
			Slug:            s.Slug,
			DurationMinutes: s.DurationMinutes,
			PriceCents:      s.PriceCents,
		})
	}
	for _, b := range cat.Bays {
		resp.Bays = append(resp.Bays, bayItem{ID: b.ID, Name: b.Name, Type: string(b.Type), Capacity: b.Capacity})
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	q := booking.AvailabilityQuery{
		ServiceID: strings.TrimSpace(r.URL.Query().Get("service_id")),
		BayID:     strings.TrimSpace(r.URL.Query().Get("bay_id")),
		Date:      strings.TrimSpace(r.URL.Query().Get("date")),
	}
	res, err := h.bookings.Availability(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := availabilityResponse{
		Date:      q.Date,
		ServiceID: q.ServiceID,
		BayID:     q.BayID,
		TimeZone:  h.timeZone,
		Slots:     make([]slotItem, 0, len(res.Slots)),
	}
	for _, s := range res.Slots {
		resp.Slots = append(resp.Slots, slotItem{
			StartTime: s.Start.UTC().Format(time.RFC3339),
			EndTime:   s.End.UTC().Format(time.RFC3339),
			Available: s.Available,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartTime))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid start_time")
		return
	}

	conf, err := h.bookings.Commit(r.Context(), booking.CommitRequest{
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		ServiceID: req.ServiceID,
		BayID:     req.BayID,
		Start:     start,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, bookResponse{
		BookingID:        conf.BookingID,
		ConfirmationCode: conf.Code,
		StartTime:        conf.Start.UTC().Format(time.RFC3339),
		EndTime:          conf.End.UTC().Format(time.RFC3339),
	})
}

func (h *BookingHandler) CustomerCancel(w http.ResponseWriter, r *http.Request) {
	var req customerCancelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	b, err := h.bookings.CancelByCustomer(r.Context(), r.PathValue("id"), req.ConfirmationCode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, statusOf(b))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.WriteError(w, http.StatusRequestEntityTooLarge, "invalid_request", "request body too large")
			return false
		}
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid json body")
		return false
	}
	return true
}

func statusOf(b model.Booking) bookingStatusResponse {
	return bookingStatusResponse{BookingID: b.ID, Status: string(b.Status), CheckedIn: b.CheckedIn}
}

// writeError maps the booking error types onto status codes. Anything
// untyped is logged and reported as a bare 500.
func (h *BookingHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid    *booking.ValidationError
		notFound   *booking.NotFoundError
		conflict   *booking.ConflictError
		transition *booking.TransitionError
	)
	switch {
	case errors.As(err, &invalid):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", invalid.Error())
	case errors.As(err, &notFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", notFound.Error())
	case errors.As(err, &conflict):
		httpx.WriteError(w, http.StatusConflict, "slot_taken", "That time was just booked. Pick another slot.")
	case errors.As(err, &transition):
		httpx.WriteError(w, http.StatusConflict, "invalid_transition", transition.Error())
	default:
		h.logger.Error("request failed",
			"err", err,
			"request_id", httpx.RequestIDFromContext(r.Context()),
			"path", r.URL.Path,
		)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Server error")
	}
}
