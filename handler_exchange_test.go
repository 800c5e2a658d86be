package main

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func createTestListing(t *testing.T, owner string) string {
	t.Helper()
	id := nextID("EX", "exchange_listings", 3)
	_, err := db.Exec("INSERT INTO exchange_listings (id,owner,device_name,device_type,condition,status) VALUES (?,?,'Spare Monitor','Monitor','good','open')", id, owner)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestCreateExchangeListing(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	body := `{"device_name":"Spare Monitor","device_type":"Monitor","condition":"good","description":"24 inch, works fine"}`
	req := authedRequest("POST", "/api/exchange/listings", body, nil)
	w := httptest.NewRecorder()
	handleCreateExchangeListing(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var status string
	db.QueryRow("SELECT status FROM exchange_listings WHERE device_name='Spare Monitor'").Scan(&status)
	if status != "open" {
		t.Errorf("new listing status = %q, want open", status)
	}
}

func TestCreateExchangeListingValidation(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	body := `{"device_name":"","condition":"mint"}`
	req := authedRequest("POST", "/api/exchange/listings", body, nil)
	w := httptest.NewRecorder()
	handleCreateExchangeListing(w, req)
	if w.Code != 400 {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestClaimExchangeListing(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	id := createTestListing(t, "alice")

	req := authedRequest("PUT", "/api/exchange/listings/"+id+"/claim", "", nil)
	w := httptest.NewRecorder()
	handleClaimExchangeListing(w, req, id)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var status, claimedBy string
	db.QueryRow("SELECT status, claimed_by FROM exchange_listings WHERE id=?", id).Scan(&status, &claimedBy)
	if status != "claimed" || claimedBy != "system" {
		t.Errorf("status=%q claimed_by=%q", status, claimedBy)
	}

	// A claimed listing cannot be claimed again.
	w = httptest.NewRecorder()
	handleClaimExchangeListing(w, req, id)
	if w.Code != 409 {
		t.Errorf("expected 409 on double claim, got %d", w.Code)
	}
}

func TestClaimOwnListing(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	// Anonymous handler calls act as "system"; an own listing cannot be
	// claimed.
	id := createTestListing(t, "system")

	req := authedRequest("PUT", "/api/exchange/listings/"+id+"/claim", "", nil)
	w := httptest.NewRecorder()
	handleClaimExchangeListing(w, req, id)
	if w.Code != 400 {
		t.Errorf("expected 400 claiming own listing, got %d", w.Code)
	}
}

func TestCloseExchangeListing(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	id := createTestListing(t, "alice")

	req := authedRequest("PUT", "/api/exchange/listings/"+id+"/close", "", nil)
	w := httptest.NewRecorder()
	handleCloseExchangeListing(w, req, id)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var status string
	db.QueryRow("SELECT status FROM exchange_listings WHERE id=?", id).Scan(&status)
	if status != "closed" {
		t.Errorf("status = %q, want closed", status)
	}
}

func TestListExchangeListingsStatusFilter(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	open := createTestListing(t, "alice")
	closed := createTestListing(t, "bob")
	db.Exec("UPDATE exchange_listings SET status='closed' WHERE id=?", closed)

	req := authedRequest("GET", "/api/exchange/listings?status=open", "", nil)
	w := httptest.NewRecorder()
	handleListExchangeListings(w, req)

	var resp struct {
		Data struct {
			Listings []ExchangeListing `json:"listings"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data.Listings) != 1 || resp.Data.Listings[0].ID != open {
		t.Errorf("listings = %+v", resp.Data.Listings)
	}
}
