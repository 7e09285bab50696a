package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("missing")

type countingSource struct {
	calls    int
	services map[string]model.Service
}

func (s *countingSource) ListServices(ctx context.Context) ([]model.Service, error) {
	s.calls++
	var out []model.Service
	for _, svc := range s.services {
		out = append(out, svc)
	}
	return out, nil
}

func (s *countingSource) ListBays(ctx context.Context) ([]model.Bay, error) {
	s.calls++
	return []model.Bay{{ID: "b1", Name: "Bay 1"}}, nil
}

func (s *countingSource) GetService(ctx context.Context, id string) (model.Service, error) {
	s.calls++
	svc, ok := s.services[id]
	if !ok {
		return model.Service{}, errMissing
	}
	return svc, nil
}

func (s *countingSource) GetBay(ctx context.Context, id string) (model.Bay, error) {
	s.calls++
	return model.Bay{ID: id, Name: "Bay 1"}, nil
}

func TestCatalogCachesLookups(t *testing.T) {
	src := &countingSource{services: map[string]model.Service{"s1": {ID: "s1", DurationMinutes: 60}}}
	c := New(src, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		svc, err := c.Service(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 60, svc.DurationMinutes)
	}
	assert.Equal(t, 1, src.calls)

	_, err := c.Bays(ctx)
	require.NoError(t, err)
	bays, err := c.Bays(ctx)
	require.NoError(t, err)
	require.Len(t, bays, 1)
	assert.Equal(t, 2, src.calls)

	c.Invalidate()
	_, err = c.Service(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, src.calls)
}

func TestCatalogDoesNotCacheMisses(t *testing.T) {
	src := &countingSource{services: map[string]model.Service{}}
	c := New(src, time.Minute)
	ctx := context.Background()

	_, err := c.Service(ctx, "s1")
	require.ErrorIs(t, err, errMissing)

	src.services["s1"] = model.Service{ID: "s1", DurationMinutes: 90}
	svc, err := c.Service(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 90, svc.DurationMinutes)
}

func TestCatalogDisabled(t *testing.T) {
	src := &countingSource{services: map[string]model.Service{"s1": {ID: "s1"}}}
	c := New(src, 0)
	ctx := context.Background()
	_, _ = c.Service(ctx, "s1")
	_, _ = c.Service(ctx, "s1")
	assert.Equal(t, 2, src.calls)
}
