package routing

import (
	"context"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/ports"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverPrefersRoutingService(t *testing.T) {
	provider := NewMockRouteProvider([]MockPair{
		{From: hotel, To: museum, Meters: 2000, Seconds: 420},
	})
	r := NewResolver(provider, nil)

	res := r.ResolveSegment(context.Background(), hotel, museum)
	assert.Equal(t, ports.SegmentResult{DistanceMeters: 2000, DurationSeconds: 420, Source: ports.SourceRoutingService}, res)
}

func TestResolverFallsBackOnProviderError(t *testing.T) {
	r := NewResolver(NewMockRouteProvider(nil), nil)

	res := r.ResolveSegment(context.Background(), hotel, museum)
	want := NewFallbackEstimator(nil).Estimate(hotel, museum)
	assert.Equal(t, want, res)
	assert.Equal(t, ports.SourceFallback, res.Source)
}

func TestResolverFallsBackWhenServiceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p, err := NewOSRMRouteProvider(OSRMConfig{BaseURL: url})
	require.NoError(t, err)
	r := NewResolver(p, NewFallbackEstimator(DefaultSpeedTiers()))

	res := r.ResolveSegment(context.Background(), hotel, museum)
	assert.Equal(t, NewFallbackEstimator(DefaultSpeedTiers()).Estimate(hotel, museum), res)
}

func TestResolverWithoutPrimaryUsesEstimate(t *testing.T) {
	r := NewResolver(nil, nil)
	res := r.ResolveSegment(context.Background(), hotel, museum)
	assert.Equal(t, ports.SourceFallback, res.Source)
	assert.InDelta(t, domain.HaversineDistance(hotel.Lat, hotel.Lon, museum.Lat, museum.Lon), res.DistanceMeters, 1e-9)
}
