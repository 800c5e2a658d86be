package disposal

import "strings"

// Request lifecycle statuses. These MUST match the DB CHECK constraint
// on disposal_requests.status.
var ValidStatuses = []string{
	"pending", "approved", "in_progress", "pickup_scheduled",
	"out_for_pickup", "pickup_completed", "completed", "rejected", "cancelled",
}

// TimeSlots are the four pickup windows a request may choose from.
var TimeSlots = []string{
	"9:00 AM - 11:00 AM",
	"11:00 AM - 1:00 PM",
	"2:00 PM - 4:00 PM",
	"4:00 PM - 6:00 PM",
}

// DeviceConditions are the accepted condition values for a registered device.
var DeviceConditions = []string{"excellent", "good", "fair", "poor", "damaged"}

// statusColors is the fixed chip color per lifecycle status.
var statusColors = map[string]string{
	"pending":          "#ff9800",
	"approved":         "#2196f3",
	"in_progress":      "#3f51b5",
	"pickup_scheduled": "#00bcd4",
	"out_for_pickup":   "#009688",
	"pickup_completed": "#8bc34a",
	"completed":        "#4caf50",
	"rejected":         "#f44336",
	"cancelled":        "#9e9e9e",
}

// StatusColor returns the chip color for a status, gray for unknown values.
func StatusColor(status string) string {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return "#9e9e9e"
}

// IsValidStatus reports whether s is a known lifecycle status.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status ends the lifecycle.
func IsTerminal(s string) bool {
	return s == "completed" || s == "rejected" || s == "cancelled"
}

// TruncateDescription shortens a description for list rows.
func TruncateDescription(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max]) + "..."
}
