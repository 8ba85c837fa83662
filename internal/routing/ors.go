package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	orsBaseURL     = "https://api.openrouteservice.org/v2/directions/driving-car"
	requestTimeout = 5 * time.Second
	cacheTTL       = 6 * time.Hour
)

// ORSRouter resolves driving distances through the OpenRouteService
// directions API. Without an API key, or whenever a request fails, it
// falls back to the straight-line distance. An optional redis client
// caches resolved leg distances.
type ORSRouter struct {
	apiKey string
	client *http.Client
	cache  *redis.Client
	logger *logrus.Logger
}

// NewORSRouter creates a router. apiKey may be empty (fallback only)
// and cache may be nil (no caching).
func NewORSRouter(apiKey string, cache *redis.Client, logger *logrus.Logger) *ORSRouter {
	return &ORSRouter{
		apiKey: apiKey,
		client: &http.Client{Timeout: requestTimeout},
		cache:  cache,
		logger: logger,
	}
}

// DistanceKm returns the driving distance of the leg, or the
// straight-line distance when routing data cannot be fetched.
func (r *ORSRouter) DistanceKm(ctx context.Context, from, to Coordinate) float64 {
	if r.apiKey == "" {
		return HaversineKm(from, to)
	}

	key := fmt.Sprintf("route:%.5f,%.5f:%.5f,%.5f", from.Lat, from.Lon, to.Lat, to.Lon)
	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, key).Float64(); err == nil {
			return cached
		}
	}

	dist, err := r.fetchDistance(ctx, from, to)
	if err != nil {
		r.logger.WithError(err).Warn("Routing request failed, using straight-line distance")
		return HaversineKm(from, to)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, dist, cacheTTL).Err(); err != nil {
			r.logger.WithError(err).Debug("Failed to cache route distance")
		}
	}
	return dist
}

type orsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"` // meters
		} `json:"summary"`
	} `json:"routes"`
}

func (r *ORSRouter) fetchDistance(ctx context.Context, from, to Coordinate) (float64, error) {
	// ORS takes lon,lat ordering.
	q := url.Values{}
	q.Set("api_key", r.apiKey)
	q.Set("start", fmt.Sprintf("%f,%f", from.Lon, from.Lat))
	q.Set("end", fmt.Sprintf("%f,%f", to.Lon, to.Lat))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, orsBaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build routing request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("routing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("routing API returned status %d", resp.StatusCode)
	}

	var body orsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to decode routing response: %w", err)
	}
	if len(body.Routes) == 0 {
		return 0, fmt.Errorf("routing API returned no routes")
	}
	return body.Routes[0].Summary.Distance / 1000, nil
}
