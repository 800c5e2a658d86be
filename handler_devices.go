package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"ewms/internal/disposal"
)

const deviceColumns = "id,name,type,COALESCE(brand,''),COALESCE(model,''),COALESCE(serial_number,''),condition,COALESCE(location,''),COALESCE(department,''),qr_token,COALESCE(qr_data,''),created_at,updated_at"

func scanDevice(scan func(...interface{}) error) (Device, error) {
	var d Device
	err := scan(&d.ID, &d.Name, &d.Type, &d.Brand, &d.Model, &d.SerialNumber,
		&d.Condition, &d.Location, &d.Department, &d.QRToken, &d.QRData, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// deviceQRData builds the opaque payload embedded in a device's QR code.
// It is a frozen JSON snapshot; the public profile view decodes it without
// a catalog lookup.
func deviceQRData(id, name, typ, token string) string {
	data, _ := json.Marshal(map[string]string{
		"id":    id,
		"name":  name,
		"type":  typ,
		"token": token,
	})
	return string(data)
}

// handleListDevices handles GET /api/devices. The catalog is scoped to the
// caller's department unless an explicit department filter is given; an
// optional search term narrows by name/type/brand/id in memory.
func handleListDevices(w http.ResponseWriter, r *http.Request) {
	department := r.URL.Query().Get("department")
	if department == "" {
		_, _, department = userProfile(r)
	}

	query := "SELECT " + deviceColumns + " FROM devices"
	var args []interface{}
	if department != "" {
		query += " WHERE department = ?"
		args = append(args, department)
	}
	query += " ORDER BY id"

	rows, err := db.Query(query, args...)
	if err != nil {
		jsonErr(w, err.Error(), 500)
		return
	}
	defer rows.Close()
	var devices []Device
	for rows.Next() {
		d, err := scanDevice(rows.Scan)
		if err != nil {
			continue
		}
		devices = append(devices, d)
	}
	if devices == nil {
		devices = []Device{}
	}

	if term := r.URL.Query().Get("search"); term != "" {
		devices = disposal.FilterDevices(devices, term)
		if devices == nil {
			devices = []Device{}
		}
	}

	jsonResp(w, map[string]interface{}{"devices": devices})
}

func handleGetDevice(w http.ResponseWriter, r *http.Request, id string) {
	d, err := scanDevice(db.QueryRow("SELECT "+deviceColumns+" FROM devices WHERE id=?", id).Scan)
	if err != nil {
		jsonErr(w, "not found", 404)
		return
	}
	jsonResp(w, d)
}

// handleDeviceByQR handles GET /api/devices/qr/{token}, the public profile
// deep link behind each device's QR code. No auth required.
func handleDeviceByQR(w http.ResponseWriter, r *http.Request, token string) {
	d, err := scanDevice(db.QueryRow("SELECT "+deviceColumns+" FROM devices WHERE qr_token=?", token).Scan)
	if err != nil {
		jsonErr(w, "not found", 404)
		return
	}
	jsonResp(w, d)
}

// handleCreateDevice handles POST /api/devices (device registration).
func handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var d Device
	if err := decodeBody(r, &d); err != nil {
		jsonErr(w, "invalid body", 400)
		return
	}

	ve := &ValidationErrors{}
	requireField(ve, "name", d.Name)
	requireField(ve, "type", d.Type)
	validateMaxLength(ve, "name", d.Name, 255)
	validateMaxLength(ve, "serial_number", d.SerialNumber, 100)
	if d.Condition != "" {
		validateEnum(ve, "condition", d.Condition, validConditions)
	}
	if ve.HasErrors() {
		jsonFieldErrs(w, ve)
		return
	}

	if d.Condition == "" {
		d.Condition = "good"
	}
	if d.Department == "" {
		_, _, d.Department = userProfile(r)
	}

	d.ID = nextDeviceID()
	d.QRToken = uuid.NewString()
	d.QRData = deviceQRData(d.ID, d.Name, d.Type, d.QRToken)
	now := time.Now().Format("2006-01-02 15:04:05")
	d.CreatedAt, d.UpdatedAt = now, now

	_, err := db.Exec(`INSERT INTO devices (id,name,type,brand,model,serial_number,condition,location,department,qr_token,qr_data,created_at,updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		d.ID, d.Name, d.Type, d.Brand, d.Model, d.SerialNumber, d.Condition, d.Location, d.Department, d.QRToken, d.QRData, now, now)
	if err != nil {
		jsonErr(w, err.Error(), 500)
		return
	}

	logAudit(getUsername(r), "CREATE", "device", d.ID, "Registered "+d.Type+" "+d.Name)
	broadcast("device", "create", d.ID)
	jsonResp(w, d)
}

func nextDeviceID() string {
	var maxID sql.NullString
	db.QueryRow("SELECT id FROM devices ORDER BY id DESC LIMIT 1").Scan(&maxID)
	next := 1
	if maxID.Valid {
		if n, err := strconv.Atoi(strings.TrimPrefix(maxID.String, "DEV-")); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("DEV-%03d", next)
}
