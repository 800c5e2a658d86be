package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// geocodeClient reverse-geocodes coordinates via a Nominatim-compatible
// provider. Failures degrade to a coordinate string instead of blocking
// the disposal workflow.
type geocodeClient struct {
	baseURL    string
	httpClient *http.Client
}

func newGeocodeClient(baseURL string) *geocodeClient {
	return &geocodeClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// fallbackAddress is the best-effort address when the provider is
// unreachable or returns garbage. The address field must never be left
// empty once a coordinate is chosen.
func fallbackAddress(lat, lng float64) string {
	return fmt.Sprintf("Location: %.4f, %.4f", lat, lng)
}

// Reverse converts a coordinate pair to a human-readable address. It never
// returns an error to the caller: any provider failure yields the fallback
// coordinate string.
func (g *geocodeClient) Reverse(ctx context.Context, lat, lng float64) string {
	reqURL := fmt.Sprintf("%s/reverse?format=jsonv2&lat=%s&lon=%s",
		g.baseURL,
		url.QueryEscape(strconv.FormatFloat(lat, 'f', -1, 64)),
		url.QueryEscape(strconv.FormatFloat(lng, 'f', -1, 64)))

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fallbackAddress(lat, lng)
	}
	req.Header.Set("User-Agent", "ewms/1.0")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fallbackAddress(lat, lng)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fallbackAddress(lat, lng)
	}

	var nr nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return fallbackAddress(lat, lng)
	}
	if nr.Error != "" || nr.DisplayName == "" {
		return fallbackAddress(lat, lng)
	}
	return nr.DisplayName
}

// Global geocoder, rebound in main once config is loaded.
var geocoder = newGeocodeClient(defaultConfig().NominatimURL)

// handleReverseGeocode handles GET /api/geocode/reverse?lat=&lng=.
func handleReverseGeocode(w http.ResponseWriter, r *http.Request) {
	latStr := r.URL.Query().Get("lat")
	lngStr := r.URL.Query().Get("lng")
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil {
		jsonErr(w, "lat and lng must be numeric", 400)
		return
	}

	address := geocoder.Reverse(r.Context(), lat, lng)
	jsonResp(w, map[string]interface{}{
		"latitude":  lat,
		"longitude": lng,
		"address":   address,
	})
}
