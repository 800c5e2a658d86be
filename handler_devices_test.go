package main

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func decodeDevices(t *testing.T, body []byte) []Device {
	t.Helper()
	var resp struct {
		Data struct {
			Devices []Device `json:"devices"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatal(err)
	}
	return resp.Data.Devices
}

func TestListDevices(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	req := authedRequest("GET", "/api/devices?department=IT", "", nil)
	w := httptest.NewRecorder()
	handleListDevices(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	devices := decodeDevices(t, w.Body.Bytes())
	if len(devices) != 3 {
		t.Fatalf("expected 3 seed devices, got %d", len(devices))
	}
	if devices[0].QRToken == "" || devices[0].QRData == "" {
		t.Error("seed devices must carry QR token and data")
	}
}

func TestListDevicesSearch(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	req := authedRequest("GET", "/api/devices?department=IT&search=laser", "", nil)
	w := httptest.NewRecorder()
	handleListDevices(w, req)

	devices := decodeDevices(t, w.Body.Bytes())
	if len(devices) != 1 || devices[0].Name != "LaserJet Pro" {
		t.Errorf("search result = %+v", devices)
	}

	// Unknown term yields an empty list, not null.
	req = authedRequest("GET", "/api/devices?department=IT&search=zzz", "", nil)
	w = httptest.NewRecorder()
	handleListDevices(w, req)
	devices = decodeDevices(t, w.Body.Bytes())
	if devices == nil || len(devices) != 0 {
		t.Errorf("expected empty list, got %v", devices)
	}
}

func TestCreateDevice(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	body := `{"name":"Galaxy Tab S7","type":"Tablet","brand":"Samsung","condition":"fair","department":"Finance"}`
	req := authedRequest("POST", "/api/devices", body, nil)
	w := httptest.NewRecorder()
	handleCreateDevice(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var id, token string
	err := db.QueryRow("SELECT id, qr_token FROM devices WHERE name='Galaxy Tab S7'").Scan(&id, &token)
	if err != nil {
		t.Fatal(err)
	}
	if id != "DEV-004" {
		t.Errorf("id = %q, want DEV-004", id)
	}
	if token == "" {
		t.Error("expected generated QR token")
	}
}

func TestCreateDeviceValidation(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	body := `{"name":"","type":"","condition":"mint"}`
	req := authedRequest("POST", "/api/devices", body, nil)
	w := httptest.NewRecorder()
	handleCreateDevice(w, req)
	if w.Code != 400 {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	for _, field := range []string{"name", "type", "condition"} {
		if resp.Errors[field] == "" {
			t.Errorf("expected error for %q", field)
		}
	}
}

func TestDeviceByQR(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	var token string
	if err := db.QueryRow("SELECT qr_token FROM devices WHERE id='DEV-001'").Scan(&token); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/api/devices/qr/"+token, nil)
	w := httptest.NewRecorder()
	handleDeviceByQR(w, req, token)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handleDeviceByQR(w, req, "no-such-token")
	if w.Code != 404 {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
