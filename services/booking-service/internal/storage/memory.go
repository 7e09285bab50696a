package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/model"
)

// Memory is an in-process Store for tests and STORE=memory. One mutex guards
// every check-then-write, which is what makes concurrent overlapping inserts
// resolve to exactly one winner.
type Memory struct {
	mu        sync.Mutex
	now       func() time.Time
	services  map[string]model.Service
	bays      map[string]model.Bay
	customers map[string]model.Customer // by normalized email
	bookings  map[string]model.Booking
}

func NewMemory() *Memory {
	return &Memory{
		now:       time.Now,
		services:  map[string]model.Service{},
		bays:      map[string]model.Bay{},
		customers: map[string]model.Customer{},
		bookings:  map[string]model.Booking{},
	}
}

func (m *Memory) ListServices(ctx context.Context) ([]model.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Service, 0, len(m.services))
	for _, s := range m.services {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DurationMinutes != out[j].DurationMinutes {
			return out[i].DurationMinutes < out[j].DurationMinutes
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *Memory) ListBays(ctx context.Context) ([]model.Bay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Bay, 0, len(m.bays))
	for _, b := range m.bays {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) GetService(ctx context.Context, id string) (model.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.services[id]
	if !ok {
		return model.Service{}, ErrNotFound
	}
	return s, nil
}

func (m *Memory) GetBay(ctx context.Context, id string) (model.Bay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bays[id]
	if !ok {
		return model.Bay{}, ErrNotFound
	}
	return b, nil
}

// UpsertService matches on slug.
func (m *Memory) UpsertService(ctx context.Context, svc model.Service) (model.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.services {
		if existing.Slug == svc.Slug {
			svc.ID = id
			m.services[id] = svc
			return svc, nil
		}
	}
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	m.services[svc.ID] = svc
	return svc, nil
}

// UpsertBay matches on name.
func (m *Memory) UpsertBay(ctx context.Context, bay model.Bay) (model.Bay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.bays {
		if existing.Name == bay.Name {
			bay.ID = id
			m.bays[id] = bay
			return bay, nil
		}
	}
	if bay.ID == "" {
		bay.ID = uuid.NewString()
	}
	m.bays[bay.ID] = bay
	return bay, nil
}

func (m *Memory) ConfirmedBookings(ctx context.Context, bayID string, from, to time.Time) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Booking
	for _, b := range m.bookings {
		if b.BayID == bayID && b.Blocking() && b.Overlaps(from, to) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (m *Memory) CreateBooking(ctx context.Context, customer model.Customer, b model.Booking) (model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return model.Booking{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bays[b.BayID]; !ok {
		return model.Booking{}, ErrNotFound
	}
	if _, ok := m.services[b.ServiceID]; !ok {
		return model.Booking{}, ErrNotFound
	}
	if b.Status == "" {
		b.Status = model.StatusConfirmed
	}
	if b.Blocking() {
		for _, existing := range m.bookings {
			if existing.BayID == b.BayID && existing.Blocking() && existing.Overlaps(b.StartTime, b.EndTime) {
				return model.Booking{}, ErrConflict
			}
		}
	}

	email := model.NormalizeEmail(customer.Email)
	existing, ok := m.customers[email]
	if ok {
		existing.FullName = customer.FullName
		if customer.Phone != "" {
			existing.Phone = customer.Phone
		}
	} else {
		existing = customer
		existing.ID = uuid.NewString()
		existing.Email = email
	}
	m.customers[email] = existing

	b.ID = uuid.NewString()
	b.CustomerID = existing.ID
	b.StartTime = b.StartTime.UTC()
	b.EndTime = b.EndTime.UTC()
	b.CreatedAt = m.now().UTC()
	m.bookings[b.ID] = b
	return b, nil
}

func (m *Memory) GetBooking(ctx context.Context, id string) (model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return model.Booking{}, ErrNotFound
	}
	return b, nil
}

func (m *Memory) UpdateBooking(ctx context.Context, id string, fn func(*model.Booking) error) (model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return model.Booking{}, ErrNotFound
	}
	if err := fn(&b); err != nil {
		return model.Booking{}, err
	}
	m.bookings[id] = b
	return b, nil
}

func (m *Memory) ListBetween(ctx context.Context, from, to time.Time) ([]model.BookingDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.BookingDetail
	for _, b := range m.bookings {
		if !b.StartTime.Before(from) && b.StartTime.Before(to) {
			out = append(out, m.detailLocked(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (m *Memory) ListByEmail(ctx context.Context, email string, limit int) ([]model.BookingDetail, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[model.NormalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	var out []model.BookingDetail
	for _, b := range m.bookings {
		if b.CustomerID == c.ID {
			out = append(out, m.detailLocked(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) detailLocked(b model.Booking) model.BookingDetail {
	d := model.BookingDetail{Booking: b}
	for _, c := range m.customers {
		if c.ID == b.CustomerID {
			d.CustomerName, d.CustomerEmail, d.CustomerPhone = c.FullName, c.Email, c.Phone
			break
		}
	}
	if bay, ok := m.bays[b.BayID]; ok {
		d.BayName = bay.Name
	}
	if svc, ok := m.services[b.ServiceID]; ok {
		d.ServiceName = svc.Name
		d.DurationMinutes = svc.DurationMinutes
	}
	return d
}
