package routing

import (
	"context"
	"errors"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/ports"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	hotel  = domain.Coordinates{Lat: 48.8566, Lon: 2.3522}
	museum = domain.Coordinates{Lat: 48.8606, Lon: 2.3376}
)

func newTestProvider(t *testing.T, srv *httptest.Server) *OSRMRouteProvider {
	t.Helper()
	p, err := NewOSRMRouteProvider(OSRMConfig{
		BaseURL:    srv.URL,
		Timeout:    time.Second,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return p
}

func TestOSRMRouteSuccess(t *testing.T) {
	var gotPath, gotOverview string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotOverview = r.URL.Query().Get("overview")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"distance":1534.2,"duration":301.7},{"distance":9,"duration":9}]}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv)
	res, err := p.Route(context.Background(), hotel, museum)
	require.NoError(t, err)

	assert.Equal(t, "/route/v1/driving/2.352200,48.856600;2.337600,48.860600", gotPath)
	assert.Equal(t, "false", gotOverview)
	assert.Equal(t, 1534.2, res.DistanceMeters)
	assert.Equal(t, 301.7, res.DurationSeconds)
	assert.Equal(t, ports.SourceRoutingService, res.Source)
}

func TestOSRMRouteFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		checkFn func(t *testing.T, err error)
	}{
		{
			name:   "non-2xx status",
			status: http.StatusServiceUnavailable,
			body:   "overloaded",
			checkFn: func(t *testing.T, err error) {
				var he *httpStatusError
				require.True(t, errors.As(err, &he))
				assert.Equal(t, http.StatusServiceUnavailable, he.Code)
			},
		},
		{
			name:   "empty routes",
			status: http.StatusOK,
			body:   `{"code":"NoRoute","routes":[]}`,
			checkFn: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNoRoute)
			},
		},
		{
			name:   "missing routes field",
			status: http.StatusOK,
			body:   `{"code":"Ok"}`,
			checkFn: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNoRoute)
			},
		},
		{
			name:   "malformed json",
			status: http.StatusOK,
			body:   `{"routes":[`,
			checkFn: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "decode route response")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestProvider(t, srv).Route(context.Background(), hotel, museum)
			require.Error(t, err)
			tt.checkFn(t, err)
		})
	}
}

func TestOSRMRouteTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	p, err := NewOSRMRouteProvider(OSRMConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	start := time.Now()
	_, err = p.Route(context.Background(), hotel, museum)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewOSRMRouteProviderRequiresBaseURL(t *testing.T) {
	_, err := NewOSRMRouteProvider(OSRMConfig{BaseURL: "  "})
	require.Error(t, err)
}
