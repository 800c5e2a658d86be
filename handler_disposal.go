package main

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"ewms/internal/disposal"
)

const requestColumns = "id,COALESCE(department,''),COALESCE(contact_name,''),contact_phone,COALESCE(contact_email,''),pickup_address,latitude,longitude,COALESCE(e_waste_description,''),weight_kg,estimated_value,item_count,preferred_date,preferred_time_slot,COALESCE(additional_notes,''),status,COALESCE(vendor_notes,''),created_at,updated_at,completed_at"

func scanRequest(scan func(...interface{}) error) (DisposalRequest, error) {
	var dr DisposalRequest
	var weight, value sql.NullFloat64
	var completed sql.NullString
	err := scan(&dr.ID, &dr.Department, &dr.ContactName, &dr.ContactPhone, &dr.ContactEmail,
		&dr.PickupAddress, &dr.Latitude, &dr.Longitude, &dr.EWasteDescription,
		&weight, &value, &dr.ItemCount, &dr.PreferredDate, &dr.PreferredTimeSlot,
		&dr.AdditionalNotes, &dr.Status, &dr.VendorNotes, &dr.CreatedAt, &dr.UpdatedAt, &completed)
	dr.WeightKG = fp(weight)
	dr.EstimatedValue = fp(value)
	dr.CompletedAt = sp(completed)
	return dr, err
}

// handleCreateDisposalRequest handles POST /api/disposal/request. The body
// is a draft; the server validates it as a whole, resolves a missing
// address from coordinates, normalizes the selection into the request
// payload, and persists it with status pending.
func handleCreateDisposalRequest(w http.ResponseWriter, r *http.Request) {
	var draft disposal.Draft
	if err := decodeBody(r, &draft); err != nil {
		jsonErr(w, "invalid body", 400)
		return
	}

	// Address resolution before validation: a chosen coordinate must never
	// leave the address empty, even when the geocoding provider is down.
	if draft.PickupAddress == "" && draft.Latitude != nil && draft.Longitude != nil {
		draft.PickupAddress = geocoder.Reverse(r.Context(), *draft.Latitude, *draft.Longitude)
	}

	if errs := draft.Validate(); len(errs) > 0 {
		jsonFieldMap(w, errs)
		return
	}

	name, email, department := userProfile(r)
	in := draft.Normalize(disposal.Profile{Name: name, Email: email, Department: department})

	id := nextID("DR", "disposal_requests", 3)
	now := time.Now().Format("2006-01-02 15:04:05")

	tx, err := db.Begin()
	if err != nil {
		jsonErr(w, err.Error(), 500)
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO disposal_requests
		(id,department,contact_name,contact_phone,contact_email,pickup_address,latitude,longitude,
		 e_waste_description,weight_kg,estimated_value,item_count,preferred_date,preferred_time_slot,
		 additional_notes,status,created_at,updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,'pending',?,?)`,
		id, in.Department, in.ContactName, in.ContactPhone, in.ContactEmail, in.PickupAddress,
		in.Latitude, in.Longitude, in.EWasteDescription, nf(in.WeightKG), nf(in.EstimatedValue),
		in.ItemCount, in.PreferredDate, in.PreferredTimeSlot, in.AdditionalNotes, now, now)
	if err != nil {
		jsonErr(w, err.Error(), 500)
		return
	}

	for _, sd := range draft.SelectedDevices {
		_, err = tx.Exec(`INSERT INTO request_devices (request_id,device_id,name,type,brand,serial_number,condition,qr_data)
			VALUES (?,?,?,?,?,?,?,?)`,
			id, sd.DeviceID, sd.Name, sd.Type, sd.Brand, sd.SerialNumber, sd.Condition, sd.QRData)
		if err != nil {
			jsonErr(w, err.Error(), 500)
			return
		}
	}

	username := getUsername(r)
	_, err = tx.Exec("INSERT INTO request_activity (request_id,from_status,to_status,notes,changed_by,created_at) VALUES (?,'','pending','Request submitted',?,?)",
		id, username, now)
	if err != nil {
		jsonErr(w, err.Error(), 500)
		return
	}

	if err := tx.Commit(); err != nil {
		jsonErr(w, err.Error(), 500)
		return
	}

	logAudit(username, "CREATE", "disposal_request", id, "Submitted disposal request with "+strconv.Itoa(in.ItemCount)+" device(s)")
	notify("disposal_request", "info", "New disposal request", id+" submitted by "+in.ContactName, id)
	broadcast("disposal_request", "create", id)

	handleGetDisposalRequest(w, r, id)
}

// requestListRow adds the list-view derivations to a request record.
type requestListRow struct {
	DisposalRequest
	DescriptionPreview string `json:"description_preview"`
	StatusColor        string `json:"status_color"`
	Terminal           bool   `json:"terminal"`
}

// handleListDisposalRequests handles GET /api/disposal/requests. The full
// result set is fetched once; status filter, search, sort and pagination
// run as an in-memory pipeline described by the query parameters.
func handleListDisposalRequests(w http.ResponseWriter, r *http.Request) {
	rows, err := db.Query("SELECT " + requestColumns + " FROM disposal_requests ORDER BY created_at DESC")
	if err != nil {
		jsonErr(w, err.Error(), 500)
		return
	}
	defer rows.Close()
	var all []DisposalRequest
	for rows.Next() {
		dr, err := scanRequest(rows.Scan)
		if err != nil {
			continue
		}
		all = append(all, dr)
	}

	q := disposal.Query{
		Status:   r.URL.Query().Get("status"),
		Search:   r.URL.Query().Get("search"),
		SortBy:   r.URL.Query().Get("sort_by"),
		SortDir:  r.URL.Query().Get("sort_dir"),
		Page:     atoi(r.URL.Query().Get("page"), 0),
		PageSize: atoi(r.URL.Query().Get("page_size"), 10),
	}
	if !validPageSizeParam(q.PageSize) {
		q.PageSize = 10
	}
	if q.Page < 0 {
		q.Page = 0
	}
	page, total := q.Apply(all)

	items := make([]requestListRow, 0, len(page))
	for _, dr := range page {
		items = append(items, requestListRow{
			DisposalRequest:    dr,
			DescriptionPreview: disposal.TruncateDescription(dr.EWasteDescription, 50),
			StatusColor:        disposal.StatusColor(dr.Status),
			Terminal:           disposal.IsTerminal(dr.Status),
		})
	}

	jsonRespMeta(w, items, total, q.Page, q.PageSize)
}

func validPageSizeParam(n int) bool {
	for _, s := range disposal.PageSizes {
		if n == s {
			return true
		}
	}
	return false
}

// handleGetDisposalRequest handles GET /api/disposal/requests/{id},
// including the frozen device snapshots and the status history.
func handleGetDisposalRequest(w http.ResponseWriter, r *http.Request, id string) {
	dr, err := scanRequest(db.QueryRow("SELECT "+requestColumns+" FROM disposal_requests WHERE id=?", id).Scan)
	if err != nil {
		jsonErr(w, "not found", 404)
		return
	}

	actRows, err := db.Query("SELECT id,request_id,from_status,to_status,COALESCE(notes,''),COALESCE(changed_by,''),created_at FROM request_activity WHERE request_id=? ORDER BY created_at, id", id)
	if err == nil {
		defer actRows.Close()
		for actRows.Next() {
			var a Activity
			actRows.Scan(&a.ID, &a.RequestID, &a.FromState, &a.ToState, &a.Notes, &a.ChangedBy, &a.CreatedAt)
			dr.Activity = append(dr.Activity, a)
		}
	}

	devRows, err := db.Query("SELECT device_id,name,type,brand,serial_number,COALESCE(condition,''),COALESCE(qr_data,'') FROM request_devices WHERE request_id=? ORDER BY id", id)
	if err == nil {
		defer devRows.Close()
		var devices []disposal.SelectedDevice
		for devRows.Next() {
			var sd disposal.SelectedDevice
			devRows.Scan(&sd.DeviceID, &sd.Name, &sd.Type, &sd.Brand, &sd.SerialNumber, &sd.Condition, &sd.QRData)
			devices = append(devices, sd)
		}
		jsonResp(w, map[string]interface{}{"request": dr, "devices": devices})
		return
	}

	jsonResp(w, map[string]interface{}{"request": dr})
}

// handleUpdateDisposalStatus handles PUT /api/disposal/requests/{id}/status.
// Only status and vendor_notes are mutable; an invalid status changes
// nothing so the caller's typed notes survive the retry.
func handleUpdateDisposalStatus(w http.ResponseWriter, r *http.Request, id string) {
	var upd StatusUpdate
	if err := decodeBody(r, &upd); err != nil {
		jsonErr(w, "invalid body", 400)
		return
	}

	ve := &ValidationErrors{}
	requireField(ve, "status", upd.Status)
	validateEnum(ve, "status", upd.Status, validRequestStatuses)
	validateMaxLength(ve, "vendor_notes", upd.VendorNotes, 2000)
	if ve.HasErrors() {
		jsonFieldErrs(w, ve)
		return
	}

	var oldStatus string
	if err := db.QueryRow("SELECT status FROM disposal_requests WHERE id=?", id).Scan(&oldStatus); err != nil {
		jsonErr(w, "not found", 404)
		return
	}

	now := time.Now().Format("2006-01-02 15:04:05")
	var completedAt interface{}
	if upd.Status == "completed" {
		completedAt = now
	}
	_, err := db.Exec("UPDATE disposal_requests SET status=?,vendor_notes=?,updated_at=?,completed_at=COALESCE(?,completed_at) WHERE id=?",
		upd.Status, upd.VendorNotes, now, completedAt, id)
	if err != nil {
		jsonErr(w, err.Error(), 500)
		return
	}

	username := getUsername(r)
	db.Exec("INSERT INTO request_activity (request_id,from_status,to_status,notes,changed_by,created_at) VALUES (?,?,?,?,?,?)",
		id, oldStatus, upd.Status, upd.VendorNotes, username, now)

	logAudit(username, "STATUS_CHANGE", "disposal_request", id, oldStatus+" -> "+upd.Status)
	notify("disposal_request", "info", "Request "+upd.Status, id+" moved to "+upd.Status, id)
	broadcast("disposal_request", "update", id)

	handleGetDisposalRequest(w, r, id)
}
