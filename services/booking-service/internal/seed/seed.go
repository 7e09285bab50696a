// Package seed loads the default golf services and bays.
package seed

import (
	"context"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/model"
)

type Upserter interface {
	UpsertService(ctx context.Context, svc model.Service) (model.Service, error)
	UpsertBay(ctx context.Context, bay model.Bay) (model.Bay, error)
}

func DefaultServices() []model.Service {
	return []model.Service{
		service("Golf 1 Hour", 60, 4000),
		service("Golf 2 Hours", 120, 7500),
		service("Golf 4 Hours", 240, 14000),
		service("Golf 2.5 Hours", 150, 9500),
	}
}

func DefaultBays() []model.Bay {
	return []model.Bay{
		{Name: "Prime A", Type: model.BayPrime, Capacity: 10},
		{Name: "Prime B", Type: model.BayPrime, Capacity: 10},
		{Name: "Bay 1", Type: model.BayStandard, Capacity: 4},
		{Name: "Bay 2", Type: model.BayStandard, Capacity: 4},
		{Name: "Bay 3", Type: model.BayStandard, Capacity: 4},
		{Name: "Bay 4", Type: model.BayStandard, Capacity: 4},
	}
}

func service(name string, minutes, cents int) model.Service {
	return model.Service{Name: name, Slug: slug.Make(name), DurationMinutes: minutes, PriceCents: cents}
}

type Result struct {
	Services []model.Service
	Bays     []model.Bay
}

// Apply upserts the defaults. Re-running it updates rows in place.
func Apply(ctx context.Context, store Upserter) (Result, error) {
	var res Result
	for _, s := range DefaultServices() {
		saved, err := store.UpsertService(ctx, s)
		if err != nil {
			return res, fmt.Errorf("seed service %q: %w", s.Name, err)
		}
		res.Services = append(res.Services, saved)
	}
	for _, b := range DefaultBays() {
		saved, err := store.UpsertBay(ctx, b)
		if err != nil {
			return res, fmt.Errorf("seed bay %q: %w", b.Name, err)
		}
		res.Bays = append(res.Bays, saved)
	}
	return res, nil
}
