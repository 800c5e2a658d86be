package main

import (
	"net/http"
	"time"
)

const listingColumns = "id,COALESCE(owner,''),device_name,COALESCE(device_type,''),COALESCE(condition,'good'),COALESCE(description,''),status,COALESCE(claimed_by,''),created_at,updated_at"

func scanListing(scan func(...interface{}) error) (ExchangeListing, error) {
	var l ExchangeListing
	err := scan(&l.ID, &l.Owner, &l.DeviceName, &l.DeviceType, &l.Condition, &l.Description,
		&l.Status, &l.ClaimedBy, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func handleListExchangeListings(w http.ResponseWriter, r *http.Request) {
	query := "SELECT " + listingColumns + " FROM exchange_listings"
	args := []interface{}{}
	if status := r.URL.Query().Get("status"); status != "" {
		ve := &ValidationErrors{}
		validateEnum(ve, "status", status, validListingStatuses)
		if ve.HasErrors() {
			jsonFieldErrs(w, ve)
			return
		}
		query += " WHERE status=?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := db.Query(query, args...)
	if err != nil {
		jsonErr(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	listings := []ExchangeListing{}
	for rows.Next() {
		l, err := scanListing(rows.Scan)
		if err != nil {
			continue
		}
		listings = append(listings, l)
	}
	jsonResp(w, map[string]interface{}{"listings": listings})
}

func handleGetExchangeListing(w http.ResponseWriter, r *http.Request, id string) {
	l, err := scanListing(db.QueryRow("SELECT "+listingColumns+" FROM exchange_listings WHERE id=?", id).Scan)
	if err != nil {
		jsonErr(w, "not found", 404)
		return
	}
	jsonResp(w, map[string]interface{}{"listing": l})
}

func handleCreateExchangeListing(w http.ResponseWriter, r *http.Request) {
	var l ExchangeListing
	if err := decodeBody(r, &l); err != nil {
		jsonErr(w, "invalid body", 400)
		return
	}

	ve := &ValidationErrors{}
	requireField(ve, "device_name", l.DeviceName)
	if l.Condition != "" {
		validateEnum(ve, "condition", l.Condition, validConditions)
	}
	validateMaxLength(ve, "description", l.Description, 2000)
	if ve.HasErrors() {
		jsonFieldErrs(w, ve)
		return
	}

	if l.Condition == "" {
		l.Condition = "good"
	}
	l.ID = nextID("EX", "exchange_listings", 3)
	l.Owner = getUsername(r)
	l.Status = "open"
	now := time.Now().Format("2006-01-02 15:04:05")
	l.CreatedAt = now
	l.UpdatedAt = now

	_, err := db.Exec("INSERT INTO exchange_listings (id,owner,device_name,device_type,condition,description,status,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?)",
		l.ID, l.Owner, l.DeviceName, l.DeviceType, l.Condition, l.Description, l.Status, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		jsonErr(w, err.Error(), 500)
		return
	}

	logAudit(l.Owner, "CREATE", "exchange_listing", l.ID, "Listed "+l.DeviceName)
	broadcast("exchange_listing", "create", l.ID)
	jsonResp(w, map[string]interface{}{"listing": l})
}

// handleClaimExchangeListing handles PUT /api/exchange/listings/{id}/claim.
// Only an open listing can be claimed; claiming your own listing is
// rejected.
func handleClaimExchangeListing(w http.ResponseWriter, r *http.Request, id string) {
	l, err := scanListing(db.QueryRow("SELECT "+listingColumns+" FROM exchange_listings WHERE id=?", id).Scan)
	if err != nil {
		jsonErr(w, "not found", 404)
		return
	}
	if l.Status != "open" {
		jsonErr(w, "listing is not open", 409)
		return
	}
	username := getUsername(r)
	if username == l.Owner {
		jsonErr(w, "cannot claim your own listing", 400)
		return
	}

	now := time.Now().Format("2006-01-02 15:04:05")
	// Guard against a concurrent claim: the status predicate makes the
	// first writer win.
	res, err := db.Exec("UPDATE exchange_listings SET status='claimed',claimed_by=?,updated_at=? WHERE id=? AND status='open'",
		username, now, id)
	if err != nil {
		jsonErr(w, err.Error(), 500)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		jsonErr(w, "listing is not open", 409)
		return
	}

	logAudit(username, "UPDATE", "exchange_listing", id, "Claimed listing")
	notify("exchange_listing", "info", "Listing claimed", l.DeviceName+" claimed by "+username, id)
	broadcast("exchange_listing", "update", id)
	handleGetExchangeListing(w, r, id)
}

func handleCloseExchangeListing(w http.ResponseWriter, r *http.Request, id string) {
	var status string
	if err := db.QueryRow("SELECT status FROM exchange_listings WHERE id=?", id).Scan(&status); err != nil {
		jsonErr(w, "not found", 404)
		return
	}
	if status == "closed" {
		handleGetExchangeListing(w, r, id)
		return
	}

	username := getUsername(r)
	now := time.Now().Format("2006-01-02 15:04:05")
	_, err := db.Exec("UPDATE exchange_listings SET status='closed',updated_at=? WHERE id=?", now, id)
	if err != nil {
		jsonErr(w, err.Error(), 500)
		return
	}

	logAudit(username, "UPDATE", "exchange_listing", id, "Closed listing")
	broadcast("exchange_listing", "update", id)
	handleGetExchangeListing(w, r, id)
}
