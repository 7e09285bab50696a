// Package catalog caches the service and bay reference data in process.
// Slots and bookings are never cached.
package catalog

import (
	"context"
	"time"

	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/model"
	"github.com/patrickmn/go-cache"
)

// Source is the slice of the store the catalog reads from.
type Source interface {
	ListServices(ctx context.Context) ([]model.Service, error)
	ListBays(ctx context.Context) ([]model.Bay, error)
	GetService(ctx context.Context, id string) (model.Service, error)
	GetBay(ctx context.Context, id string) (model.Bay, error)
}

type Catalog struct {
	src   Source
	cache *cache.Cache
	ttl   time.Duration
}

// New wraps src. A ttl <= 0 disables caching and every call reaches src.
func New(src Source, ttl time.Duration) *Catalog {
	c := &Catalog{src: src, ttl: ttl}
	if ttl > 0 {
		c.cache = cache.New(ttl, 2*ttl)
	}
	return c
}

func (c *Catalog) Service(ctx context.Context, id string) (model.Service, error) {
	if v, ok := c.get("service:" + id); ok {
		return v.(model.Service), nil
	}
	svc, err := c.src.GetService(ctx, id)
	if err != nil {
		return model.Service{}, err
	}
	c.set("service:"+id, svc)
	return svc, nil
}

func (c *Catalog) Bay(ctx context.Context, id string) (model.Bay, error) {
	if v, ok := c.get("bay:" + id); ok {
		return v.(model.Bay), nil
	}
	bay, err := c.src.GetBay(ctx, id)
	if err != nil {
		return model.Bay{}, err
	}
	c.set("bay:"+id, bay)
	return bay, nil
}

func (c *Catalog) Services(ctx context.Context) ([]model.Service, error) {
	if v, ok := c.get("services"); ok {
		return cloneSlice(v.([]model.Service)), nil
	}
	list, err := c.src.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	c.set("services", cloneSlice(list))
	return list, nil
}

func (c *Catalog) Bays(ctx context.Context) ([]model.Bay, error) {
	if v, ok := c.get("bays"); ok {
		return cloneSlice(v.([]model.Bay)), nil
	}
	list, err := c.src.ListBays(ctx)
	if err != nil {
		return nil, err
	}
	c.set("bays", cloneSlice(list))
	return list, nil
}

// Invalidate drops every cached entry, e.g. after reseeding.
func (c *Catalog) Invalidate() {
	if c.cache != nil {
		c.cache.Flush()
	}
}

func (c *Catalog) get(key string) (any, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *Catalog) set(key string, v any) {
	if c.cache != nil {
		c.cache.Set(key, v, cache.DefaultExpiration)
	}
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
