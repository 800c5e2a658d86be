package models

// APIResponse is the standard JSON envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta contains pagination metadata for list responses.
type Meta struct {
	Total int `json:"total,omitempty"`
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
}

// Device is a registered physical asset. The disposal workflow reads
// devices but never mutates them.
type Device struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number"`
	Condition    string `json:"condition"`
	Location     string `json:"location"`
	Department   string `json:"department"`
	QRToken      string `json:"qr_token"`
	QRData       string `json:"qr_data"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// DisposalRequest is a persisted pickup request. Only status and
// vendor_notes are mutable after creation.
type DisposalRequest struct {
	ID                string     `json:"id"`
	Department        string     `json:"department"`
	ContactName       string     `json:"contact_name"`
	ContactPhone      string     `json:"contact_phone"`
	ContactEmail      string     `json:"contact_email"`
	PickupAddress     string     `json:"pickup_address"`
	Latitude          float64    `json:"latitude"`
	Longitude         float64    `json:"longitude"`
	EWasteDescription string     `json:"e_waste_description"`
	WeightKG          *float64   `json:"weight_kg"`
	EstimatedValue    *float64   `json:"estimated_value"`
	ItemCount         int        `json:"item_count"`
	PreferredDate     string     `json:"preferred_date"`
	PreferredTimeSlot string     `json:"preferred_time_slot"`
	AdditionalNotes   string     `json:"additional_notes"`
	Status            string     `json:"status"`
	VendorNotes       string     `json:"vendor_notes"`
	CreatedAt         string     `json:"created_at"`
	UpdatedAt         string     `json:"updated_at"`
	CompletedAt       *string    `json:"completed_at"`
	Activity          []Activity `json:"activity,omitempty"`
}

// Activity is one entry in a request's status history.
type Activity struct {
	ID        int    `json:"id"`
	RequestID string `json:"request_id"`
	FromState string `json:"from_status"`
	ToState   string `json:"to_status"`
	Notes     string `json:"notes"`
	ChangedBy string `json:"changed_by"`
	CreatedAt string `json:"created_at"`
}

// StatusUpdate is the body of PUT /api/disposal/requests/{id}/status.
type StatusUpdate struct {
	Status      string `json:"status"`
	VendorNotes string `json:"vendor_notes"`
}

// CommunityPost is a feed entry on the community board.
type CommunityPost struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

// ExchangeListing is a peer-to-peer resource exchange offer.
type ExchangeListing struct {
	ID          string `json:"id"`
	Owner       string `json:"owner"`
	DeviceName  string `json:"device_name"`
	DeviceType  string `json:"device_type"`
	Condition   string `json:"condition"`
	Description string `json:"description"`
	Status      string `json:"status"`
	ClaimedBy   string `json:"claimed_by"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Notification is an in-app alert row.
type Notification struct {
	ID        int     `json:"id"`
	Type      string  `json:"type"`
	Severity  string  `json:"severity"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	RecordID  string  `json:"record_id"`
	Module    string  `json:"module"`
	ReadAt    *string `json:"read_at"`
	CreatedAt string  `json:"created_at"`
}

// WasteSummary aggregates disposal requests for the analytics view.
type WasteSummary struct {
	TotalRequests int            `json:"total_requests"`
	TotalWeightKG float64        `json:"total_weight_kg"`
	TotalItems    int            `json:"total_items"`
	ByStatus      map[string]int `json:"by_status"`
}

// WasteForecast is a next-day collected-weight estimate.
type WasteForecast struct {
	PredictedKG float64 `json:"predicted_kg"`
	MSE         float64 `json:"mse"`
	Slope       float64 `json:"slope"`
	Intercept   float64 `json:"intercept"`
	SampleDays  int     `json:"sample_days"`
}
