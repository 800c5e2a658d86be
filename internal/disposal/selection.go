package disposal

import (
	"strings"

	"ewms/internal/models"
)

// SelectedDevice is a device attached to a draft, with a value copy of its
// QR-relevant fields frozen at selection time. Later edits to the catalog
// device do not change an in-flight draft.
type SelectedDevice struct {
	DeviceID     string `json:"device_id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Brand        string `json:"brand"`
	SerialNumber string `json:"serial_number"`
	Condition    string `json:"condition"`
	QRData       string `json:"qr_data"`
}

// snapshot captures the QR-relevant fields of a device by value.
func snapshot(d models.Device) SelectedDevice {
	return SelectedDevice{
		DeviceID:     d.ID,
		Name:         d.Name,
		Type:         d.Type,
		Brand:        d.Brand,
		SerialNumber: d.SerialNumber,
		Condition:    d.Condition,
		QRData:       d.QRData,
	}
}

// Selection tracks the devices attached to a draft. Set semantics keyed by
// device id; iteration order is insertion order.
type Selection struct {
	entries []SelectedDevice
}

// Toggle removes the device if it is already selected, otherwise appends a
// fresh snapshot. Re-selecting after a removal captures the device's current
// fields, not the old snapshot.
func (s *Selection) Toggle(d models.Device) {
	for i, e := range s.entries {
		if e.DeviceID == d.ID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
	s.entries = append(s.entries, snapshot(d))
}

// Contains reports whether a device id is in the selection.
func (s *Selection) Contains(id string) bool {
	for _, e := range s.entries {
		if e.DeviceID == id {
			return true
		}
	}
	return false
}

// Entries returns the selected devices in insertion order.
func (s *Selection) Entries() []SelectedDevice {
	out := make([]SelectedDevice, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of selected devices.
func (s *Selection) Len() int { return len(s.entries) }

// FilterDevices returns the catalog devices whose name, type, brand or id
// contains term (case-insensitive). An empty term matches everything. Pure
// function; does not touch any selection.
func FilterDevices(catalog []models.Device, term string) []models.Device {
	if strings.TrimSpace(term) == "" {
		return catalog
	}
	t := strings.ToLower(term)
	var out []models.Device
	for _, d := range catalog {
		if strings.Contains(strings.ToLower(d.Name), t) ||
			strings.Contains(strings.ToLower(d.Type), t) ||
			strings.Contains(strings.ToLower(d.Brand), t) ||
			strings.Contains(strings.ToLower(d.ID), t) {
			out = append(out, d)
		}
	}
	return out
}
