package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/md-rashed-zaman/golfbay/libs/httpx"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/model"
)

type adminBookingItem struct {
	BookingID        string `json:"booking_id"`
	ConfirmationCode string `json:"confirmation_code"`
	Status           string `json:"status"`
	CheckedIn        bool   `json:"checked_in"`
	CancelReason     string `json:"cancel_reason,omitempty"`
	CanceledAt       string `json:"canceled_at,omitempty"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	BayID            string `json:"bay_id"`
	BayName          string `json:"bay_name"`
	ServiceID        string `json:"service_id"`
	ServiceName      string `json:"service_name"`
	DurationMinutes  int    `json:"duration_minutes"`
	CustomerName     string `json:"customer_name"`
	CustomerEmail    string `json:"customer_email"`
	CustomerPhone    string `json:"customer_phone,omitempty"`
	CreatedAt        string `json:"created_at"`
}

type adminListResponse struct {
	Bookings []adminBookingItem `json:"bookings"`
}

type adminActionRequest struct {
	Action  string `json:"action"`
	Comment string `json:"comment"`
}

func (h *BookingHandler) AdminDay(w http.ResponseWriter, r *http.Request) {
	list, err := h.bookings.ListDay(r.Context(), strings.TrimSpace(r.URL.Query().Get("date")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAdminList(list))
}

func (h *BookingHandler) AdminCustomer(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
			return
		}
		limit = n
	}
	list, err := h.bookings.ListForCustomer(r.Context(), r.URL.Query().Get("email"), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAdminList(list))
}

func (h *BookingHandler) AdminAction(w http.ResponseWriter, r *http.Request) {
	var req adminActionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := r.PathValue("id")

	var (
		b   model.Booking
		err error
	)
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "checkin":
		b, err = h.bookings.CheckIn(r.Context(), id)
	case "cancel":
		b, err = h.bookings.Cancel(r.Context(), id, req.Comment)
	default:
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unknown action")
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("admin action applied", "booking_id", b.ID, "action", req.Action)
	httpx.WriteJSON(w, http.StatusOK, statusOf(b))
}

func toAdminList(list []model.BookingDetail) adminListResponse {
	resp := adminListResponse{Bookings: make([]adminBookingItem, 0, len(list))}
	for _, d := range list {
		item := adminBookingItem{
			BookingID:        d.ID,
			ConfirmationCode: d.ConfirmationCode,
			Status:           string(d.Status),
			CheckedIn:        d.CheckedIn,
			CancelReason:     d.CancelReason,
			StartTime:        d.StartTime.UTC().Format(time.RFC3339),
			EndTime:          d.EndTime.UTC().Format(time.RFC3339),
			BayID:            d.BayID,
			BayName:          d.BayName,
			ServiceID:        d.ServiceID,
			ServiceName:      d.ServiceName,
			DurationMinutes:  d.DurationMinutes,
			CustomerName:     d.CustomerName,
			CustomerEmail:    d.CustomerEmail,
			CustomerPhone:    d.CustomerPhone,
			CreatedAt:        d.CreatedAt.UTC().Format(time.RFC3339),
		}
		if d.CanceledAt != nil {
			item.CanceledAt = d.CanceledAt.UTC().Format(time.RFC3339)
		}
		resp.Bookings = append(resp.Bookings, item)
	}
	return resp
}
