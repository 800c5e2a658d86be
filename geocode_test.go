package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("lat") == "" || r.URL.Query().Get("lon") == "" {
			http.Error(w, "missing coords", 400)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"display_name": "Connaught Place, New Delhi, India"})
	}))
	defer srv.Close()

	g := newGeocodeClient(srv.URL)
	addr := g.Reverse(context.Background(), 28.6139, 77.2090)
	if addr != "Connaught Place, New Delhi, India" {
		t.Errorf("address = %q", addr)
	}
}

func TestReverseGeocodeProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", 429)
	}))
	defer srv.Close()

	g := newGeocodeClient(srv.URL)
	addr := g.Reverse(context.Background(), 28.6139, 77.209)
	if addr != "Location: 28.6139, 77.2090" {
		t.Errorf("expected fallback, got %q", addr)
	}
}

func TestReverseGeocodeUnreachable(t *testing.T) {
	// Closed server: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	g := newGeocodeClient(srv.URL)
	addr := g.Reverse(context.Background(), -12.5, 130.8)
	if addr != "Location: -12.5000, 130.8000" {
		t.Errorf("expected fallback, got %q", addr)
	}
}

func TestReverseGeocodeErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "Unable to geocode"})
	}))
	defer srv.Close()

	g := newGeocodeClient(srv.URL)
	addr := g.Reverse(context.Background(), 0, 0)
	if addr != "Location: 0.0000, 0.0000" {
		t.Errorf("expected fallback, got %q", addr)
	}
}

func TestHandleReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"display_name": "Somewhere"})
	}))
	defer srv.Close()
	oldGeocoder := geocoder
	geocoder = newGeocodeClient(srv.URL)
	defer func() { geocoder = oldGeocoder }()

	req := httptest.NewRequest("GET", "/api/geocode/reverse?lat=28.6139&lng=77.2090", nil)
	w := httptest.NewRecorder()
	handleReverseGeocode(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Address string `json:"address"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Address != "Somewhere" {
		t.Errorf("address = %q", resp.Data.Address)
	}

	// Non-numeric coordinates are rejected.
	req = httptest.NewRequest("GET", "/api/geocode/reverse?lat=abc&lng=1", nil)
	w = httptest.NewRecorder()
	handleReverseGeocode(w, req)
	if w.Code != 400 {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
