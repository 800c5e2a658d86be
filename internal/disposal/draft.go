package disposal

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// Draft is a client-local disposal request being composed. It is mutated
// field by field and validated as a whole on submit.
type Draft struct {
	SelectedDevices     []SelectedDevice `json:"selected_devices"`
	ContactPhone        string           `json:"contact_phone"`
	PickupAddress       string           `json:"pickup_address"`
	Latitude            *float64         `json:"latitude"`
	Longitude           *float64         `json:"longitude"`
	PreferredDate       string           `json:"preferred_date"`
	PreferredTimeSlot   string           `json:"preferred_time_slot"`
	SpecialInstructions string           `json:"special_instructions"`
	WeightKG            *float64         `json:"weight_kg"`
	EstimatedValue      *float64         `json:"estimated_value"`
}

// Profile supplies the contact defaults a draft does not collect itself.
type Profile struct {
	Name       string
	Email      string
	Department string
}

// RequestInput is the normalized payload shape the disposal_requests table
// accepts. This is the canonical (full-variant) shape; weight and estimated
// value stay nil when not entered.
type RequestInput struct {
	Department        string   `json:"department"`
	ContactName       string   `json:"contact_name"`
	ContactPhone      string   `json:"contact_phone"`
	ContactEmail      string   `json:"contact_email"`
	PickupAddress     string   `json:"pickup_address"`
	Latitude          float64  `json:"latitude"`
	Longitude         float64  `json:"longitude"`
	EWasteDescription string   `json:"e_waste_description"`
	WeightKG          *float64 `json:"weight_kg"`
	EstimatedValue    *float64 `json:"estimated_value"`
	ItemCount         int      `json:"item_count"`
	PreferredDate     string   `json:"preferred_date"`
	PreferredTimeSlot string   `json:"preferred_time_slot"`
	AdditionalNotes   string   `json:"additional_notes"`
}

// Validate checks every submit requirement and returns a field→message map.
// An empty map means the draft is submittable. Validation is local; callers
// must not touch the network when the map is non-empty.
func (d *Draft) Validate() map[string]string {
	errs := map[string]string{}

	if len(d.SelectedDevices) == 0 {
		errs["devices"] = "select at least one device"
	}
	if strings.TrimSpace(d.PickupAddress) == "" {
		errs["address"] = "pickup address is required"
	}
	if !phonePattern.MatchString(d.ContactPhone) {
		errs["contact_phone"] = "phone number must be exactly 10 digits"
	}
	if d.Latitude == nil || d.Longitude == nil {
		errs["coordinates"] = "pickup location coordinates are required"
	}
	if strings.TrimSpace(d.PreferredDate) == "" {
		errs["preferred_date"] = "preferred date is required"
	} else if _, err := time.Parse("2006-01-02", d.PreferredDate); err != nil {
		errs["preferred_date"] = "preferred date must be a valid date (YYYY-MM-DD)"
	} else if d.PreferredDate < time.Now().Format("2006-01-02") {
		errs["preferred_date"] = "preferred date must be today or later"
	}
	if !isTimeSlot(d.PreferredTimeSlot) {
		errs["preferred_time_slot"] = fmt.Sprintf("time slot must be one of: %s", strings.Join(TimeSlots, ", "))
	}

	return errs
}

func isTimeSlot(s string) bool {
	for _, slot := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// Normalize converts a validated draft into the request payload, deriving
// the description and item count from the selection and filling contact
// defaults from the caller's profile.
func (d *Draft) Normalize(p Profile) RequestInput {
	parts := make([]string, 0, len(d.SelectedDevices))
	for _, sd := range d.SelectedDevices {
		desc := sd.Type + " - " + sd.Name
		if sd.Brand != "" {
			desc += " (" + sd.Brand + ")"
		}
		parts = append(parts, desc)
	}

	lat, lng := 0.0, 0.0
	if d.Latitude != nil {
		lat = *d.Latitude
	}
	if d.Longitude != nil {
		lng = *d.Longitude
	}

	return RequestInput{
		Department:        p.Department,
		ContactName:       p.Name,
		ContactPhone:      d.ContactPhone,
		ContactEmail:      p.Email,
		PickupAddress:     strings.TrimSpace(d.PickupAddress),
		Latitude:          lat,
		Longitude:         lng,
		EWasteDescription: strings.Join(parts, "; "),
		WeightKG:          d.WeightKG,
		EstimatedValue:    d.EstimatedValue,
		ItemCount:         len(d.SelectedDevices),
		PreferredDate:     d.PreferredDate,
		PreferredTimeSlot: d.PreferredTimeSlot,
		AdditionalNotes:   strings.TrimSpace(d.SpecialInstructions),
	}
}
