package main

import (
	"encoding/json"
	"math"
	"net/http/httptest"
	"testing"
)

func TestWasteSummary(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	insertTestRequest(t, "DR-2026-001", "IT", "pending", "2026-08-01 09:00:00", 5)
	insertTestRequest(t, "DR-2026-002", "Finance", "completed", "2026-08-02 09:00:00", 12)
	insertTestRequest(t, "DR-2026-003", "IT", "completed", "2026-08-03 09:00:00", 3)

	req := authedRequest("GET", "/api/analytics/summary", "", nil)
	w := httptest.NewRecorder()
	handleWasteSummary(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Data struct {
			Summary WasteSummary `json:"summary"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	s := resp.Data.Summary
	if s.TotalRequests != 3 {
		t.Errorf("total_requests = %d", s.TotalRequests)
	}
	if s.TotalWeightKG != 20 {
		t.Errorf("total_weight_kg = %f", s.TotalWeightKG)
	}
	if s.ByStatus["completed"] != 2 || s.ByStatus["pending"] != 1 {
		t.Errorf("by_status = %v", s.ByStatus)
	}
}

func TestWasteForecastLinearData(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	// Perfectly linear daily totals: 10, 20, 30.
	insertTestRequest(t, "DR-2026-001", "IT", "completed", "2026-08-01 09:00:00", 10)
	insertTestRequest(t, "DR-2026-002", "IT", "completed", "2026-08-02 09:00:00", 20)
	insertTestRequest(t, "DR-2026-003", "IT", "completed", "2026-08-03 09:00:00", 30)

	req := authedRequest("GET", "/api/analytics/forecast", "", nil)
	w := httptest.NewRecorder()
	handleWasteForecast(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Forecast WasteForecast `json:"forecast"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	f := resp.Data.Forecast
	if math.Abs(f.Slope-10) > 1e-9 || math.Abs(f.Intercept-10) > 1e-9 {
		t.Errorf("fit = %f x + %f, want 10x + 10", f.Slope, f.Intercept)
	}
	if math.Abs(f.PredictedKG-40) > 1e-9 {
		t.Errorf("predicted_kg = %f, want 40", f.PredictedKG)
	}
	if f.MSE > 1e-9 {
		t.Errorf("mse = %f, want 0 for linear data", f.MSE)
	}
	if f.SampleDays != 3 {
		t.Errorf("sample_days = %d", f.SampleDays)
	}
}

func TestWasteForecastInsufficientData(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	insertTestRequest(t, "DR-2026-001", "IT", "completed", "2026-08-01 09:00:00", 10)

	req := authedRequest("GET", "/api/analytics/forecast", "", nil)
	w := httptest.NewRecorder()
	handleWasteForecast(w, req)
	if w.Code != 400 {
		t.Errorf("expected 400 with a single sample day, got %d", w.Code)
	}
}

func TestFitLine(t *testing.T) {
	slope, intercept := fitLine([]float64{2, 4, 6, 8})
	if math.Abs(slope-2) > 1e-9 || math.Abs(intercept-2) > 1e-9 {
		t.Errorf("fit = %f x + %f", slope, intercept)
	}

	// Constant series: zero slope.
	slope, intercept = fitLine([]float64{5, 5, 5})
	if math.Abs(slope) > 1e-9 || math.Abs(intercept-5) > 1e-9 {
		t.Errorf("fit = %f x + %f", slope, intercept)
	}
}
