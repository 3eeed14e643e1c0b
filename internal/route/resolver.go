// Package route resolves drivable paths between two coordinates through an
// OSRM-compatible road service. Resolution never fails: any network error,
// timeout, or malformed response degrades to a straight two-point segment.
package route

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"foodchain/internal/logging"
	"foodchain/internal/types"
)

// DefaultBaseURL is the public OSRM demo instance used when no router is
// configured.
const DefaultBaseURL = "https://router.project-osrm.org"

// Resolver fetches road geometry from an OSRM-shaped routing service.
type Resolver struct {
	baseURL    string
	httpClient *http.Client
}

// NewResolver creates a resolver against the given OSRM base URL.
func NewResolver(baseURL string, timeout time.Duration) *Resolver {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// osrmResponse is the subset of the OSRM route response we consume.
// Coordinates arrive in the provider's native [lng, lat] order.
type osrmResponse struct {
	Routes []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Resolve returns the road polyline from origin to destination in (lat,lng)
// order. It never returns an error: every failure path yields the straight
// segment [origin, destination]. Callers racing selections must key the
// result by destination and drop it if the selection has moved on.
func (r *Resolver) Resolve(ctx context.Context, origin, dest types.LatLng) []types.LatLng {
	log := logging.Get(logging.CategoryRoute)

	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=geojson",
		r.baseURL, origin.Lng, origin.Lat, dest.Lng, dest.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Warn("route request build failed: %v", err)
		return fallback(origin, dest)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		log.Warn("route fetch failed, straight-line fallback: %v", err)
		return fallback(origin, dest)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("route service returned status %d", resp.StatusCode)
		return fallback(origin, dest)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("route response read failed: %v", err)
		return fallback(origin, dest)
	}

	var parsed osrmResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		log.Warn("route response malformed: %v", err)
		return fallback(origin, dest)
	}
	if len(parsed.Routes) == 0 || len(parsed.Routes[0].Geometry.Coordinates) == 0 {
		log.Warn("route response empty")
		return fallback(origin, dest)
	}

	coords := parsed.Routes[0].Geometry.Coordinates
	out := make([]types.LatLng, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			return fallback(origin, dest)
		}
		// OSRM emits [lng, lat]; consumers want (lat, lng).
		out = append(out, types.LatLng{Lat: c[1], Lng: c[0]})
	}
	log.Debug("route resolved: %d points", len(out))
	return out
}

func fallback(origin, dest types.LatLng) []types.LatLng {
	return []types.LatLng{origin, dest}
}
