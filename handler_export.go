package main

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// handleExportDisposalRequests exports the disposal request list to CSV
// or Excel, honoring the same status filter as the list endpoint.
func handleExportDisposalRequests(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	status := r.URL.Query().Get("status")
	query := "SELECT id,COALESCE(department,''),COALESCE(contact_name,''),contact_phone,pickup_address,COALESCE(e_waste_description,''),COALESCE(weight_kg,0),item_count,preferred_date,preferred_time_slot,status,created_at FROM disposal_requests"
	var args []interface{}
	if status != "" {
		query += " WHERE status=?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.Query(query, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	headers := []string{"ID", "Department", "Contact Name", "Contact Phone", "Pickup Address", "Description", "Weight KG", "Item Count", "Preferred Date", "Time Slot", "Status", "Created At"}
	var data [][]string

	for rows.Next() {
		var id, department, contactName, contactPhone, address, description, preferredDate, timeSlot, st, createdAt string
		var weight float64
		var itemCount int
		rows.Scan(&id, &department, &contactName, &contactPhone, &address, &description, &weight, &itemCount, &preferredDate, &timeSlot, &st, &createdAt)
		data = append(data, []string{id, department, contactName, contactPhone, address, description, fmt.Sprintf("%.2f", weight), strconv.Itoa(itemCount), preferredDate, timeSlot, st, createdAt})
	}

	logAudit(getUsername(r), "EXPORT", "disposal_request", "", fmt.Sprintf("Exported %d request(s) as %s", len(data), format))

	if format == "xlsx" {
		exportExcel(w, "DisposalRequests", headers, data)
	} else {
		exportCSV(w, "disposal_requests.csv", headers, data)
	}
}

// handleExportDevices exports the device catalog to CSV or Excel.
func handleExportDevices(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	query := "SELECT id,name,type,COALESCE(brand,''),COALESCE(model,''),COALESCE(serial_number,''),COALESCE(condition,''),COALESCE(department,''),created_at FROM devices"
	var args []interface{}
	if department := r.URL.Query().Get("department"); department != "" {
		query += " WHERE department=?"
		args = append(args, department)
	}
	query += " ORDER BY id"

	rows, err := db.Query(query, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	headers := []string{"ID", "Name", "Type", "Brand", "Model", "Serial Number", "Condition", "Department", "Created At"}
	var data [][]string

	for rows.Next() {
		var id, name, typ, brand, model, serial, condition, department, createdAt string
		rows.Scan(&id, &name, &typ, &brand, &model, &serial, &condition, &department, &createdAt)
		data = append(data, []string{id, name, typ, brand, model, serial, condition, department, createdAt})
	}

	logAudit(getUsername(r), "EXPORT", "device", "", fmt.Sprintf("Exported %d device(s) as %s", len(data), format))

	if format == "xlsx" {
		exportExcel(w, "Devices", headers, data)
	} else {
		exportCSV(w, "devices.csv", headers, data)
	}
}

// exportCSV writes data to CSV format.
func exportCSV(w http.ResponseWriter, filename string, headers []string, data [][]string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(headers); err != nil {
		http.Error(w, "Failed to write CSV headers", 500)
		return
	}

	for _, row := range data {
		if err := writer.Write(row); err != nil {
			http.Error(w, "Failed to write CSV row", 500)
			return
		}
	}
}

// exportExcel writes data to Excel format.
func exportExcel(w http.ResponseWriter, sheetName string, headers []string, data [][]string) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		http.Error(w, "Failed to create Excel sheet", 500)
		return
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		http.Error(w, "Failed to create header style", 500)
		return
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+i)))
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range data {
		for colIdx, value := range row {
			cell := fmt.Sprintf("%s%d", string(rune('A'+colIdx)), rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range headers {
		col := string(rune('A' + i))
		f.SetColWidth(sheetName, col, col, 15)
	}

	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", strings.ToLower(sheetName)))

	if err := f.Write(w); err != nil {
		http.Error(w, "Failed to write Excel file", 500)
		return
	}
}
