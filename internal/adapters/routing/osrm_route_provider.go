package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrNoRoute is returned when the routing service answers without any route.
var ErrNoRoute = errors.New("routing service returned no route")

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// OSRMRouteProvider implements RouteProvider against an OSRM-compatible
// /route/v1 endpoint. It is stateless apart from its rate limiter and is
// safe for concurrent use.
type OSRMRouteProvider struct {
	session   *http.Client
	baseURL   string
	profile   string
	userAgent string
	timeout   time.Duration
	limiter   *rate.Limiter
}

type OSRMConfig struct {
	BaseURL string
	Profile string
	// Per-request timeout; the fallback exists so one slow call cannot stall a build.
	Timeout time.Duration
	// Outbound request budget. RatePerSecond <= 0 disables limiting.
	RatePerSecond float64
	Burst         int
	UserAgent     string
	HTTPClient    *http.Client
}

func NewOSRMRouteProvider(cfg OSRMConfig) (*OSRMRouteProvider, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("OSRM base url is empty")
	}

	profile := cfg.Profile
	if profile == "" {
		profile = "driving"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &OSRMRouteProvider{
		session:   client,
		baseURL:   base,
		profile:   profile,
		userAgent: cfg.UserAgent,
		timeout:   timeout,
		limiter:   limiter,
	}, nil
}

// Route asks the routing service for the fastest road route from -> to and
// returns the first route's total distance and duration.
func (o *OSRMRouteProvider) Route(
	ctx context.Context,
	from domain.Coordinates,
	to domain.Coordinates,
) (_ ports.SegmentResult, err error) {
	defer obs.Time(ctx, "osrm.Route")(&err)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return ports.SegmentResult{}, fmt.Errorf("osrm rate limit wait: %w", err)
		}
	}

	endpoint := fmt.Sprintf(
		"%s/route/v1/%s/%.6f,%.6f;%.6f,%.6f",
		o.baseURL, o.profile, from.Lon, from.Lat, to.Lon, to.Lat,
	)

	req, err := o.newRequest(ctx, http.MethodGet, endpoint)
	if err != nil {
		return ports.SegmentResult{}, err
	}
	q := req.URL.Query()
	q.Set("overview", "false")
	req.URL.RawQuery = q.Encode()

	resp, err := o.do(req)
	if err != nil {
		return ports.SegmentResult{}, fmt.Errorf("execute route request: %w", err)
	}
	defer resp.Body.Close()

	var decoded routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.SegmentResult{}, fmt.Errorf("decode route response: %w", err)
	}

	if len(decoded.Routes) == 0 {
		return ports.SegmentResult{}, fmt.Errorf("route %s -> %s (code=%q): %w", from.Key(), to.Key(), decoded.Code, ErrNoRoute)
	}

	first := decoded.Routes[0]
	if first.Distance < 0 || first.Duration < 0 {
		return ports.SegmentResult{}, fmt.Errorf("route %s -> %s: negative metrics", from.Key(), to.Key())
	}

	return ports.SegmentResult{
		DistanceMeters:  first.Distance,
		DurationSeconds: first.Duration,
		Source:          ports.SourceRoutingService,
	}, nil
}
