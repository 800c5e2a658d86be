package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
)

var companyName string
var companyEmail string

func main() {
	port := flag.Int("port", 9000, "HTTP port")
	dbPath := flag.String("db", "ewms.db", "SQLite database path")
	configPath := flag.String("config", "ewms.yaml", "Config file path")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal("Config load failed:", err)
	}

	// Explicit flags win over config file values.
	flagsSet := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { flagsSet[f.Name] = true })
	if !flagsSet["port"] && cfg.Port != 0 {
		*port = cfg.Port
	}
	if !flagsSet["db"] && cfg.DBPath != "" {
		*dbPath = cfg.DBPath
	}

	companyName = os.Getenv("EWMS_COMPANY_NAME")
	if companyName == "" {
		companyName = cfg.CompanyName
	}
	companyEmail = os.Getenv("EWMS_COMPANY_EMAIL")
	if companyEmail == "" {
		companyEmail = cfg.CompanyEmail
	}

	geocoder = newGeocodeClient(cfg.NominatimURL)

	if err := initDB(*dbPath); err != nil {
		log.Fatal("DB init failed:", err)
	}
	seedDB()

	mux := http.NewServeMux()

	// Auth routes
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" {
			handleLogin(w, r)
		} else {
			http.Error(w, "Method not allowed", 405)
		}
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" {
			handleLogout(w, r)
		} else {
			http.Error(w, "Method not allowed", 405)
		}
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		handleMe(w, r)
	})

	mux.HandleFunc("/ws", handleWebSocket)

	// API routes - using a simple router
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		path := strings.TrimPrefix(r.URL.Path, "/api/")
		path = strings.TrimSuffix(path, "/")
		parts := strings.Split(path, "/")

		switch {
		case path == "health" && r.Method == "GET":
			handleHealth(w, r)
		case path == "config" && r.Method == "GET":
			handleConfig(w, r, cfg)

		// Devices
		case path == "devices/export" && r.Method == "GET":
			handleExportDevices(w, r)
		case parts[0] == "devices" && len(parts) == 3 && parts[1] == "qr" && r.Method == "GET":
			handleDeviceByQR(w, r, parts[2])
		case parts[0] == "devices" && len(parts) == 1 && r.Method == "GET":
			handleListDevices(w, r)
		case parts[0] == "devices" && len(parts) == 1 && r.Method == "POST":
			handleCreateDevice(w, r)
		case parts[0] == "devices" && len(parts) == 2 && r.Method == "GET":
			handleGetDevice(w, r, parts[1])

		// Disposal workflow
		case path == "disposal/request" && r.Method == "POST":
			handleCreateDisposalRequest(w, r)
		case path == "disposal/requests/export" && r.Method == "GET":
			handleExportDisposalRequests(w, r)
		case path == "disposal/requests" && r.Method == "GET":
			handleListDisposalRequests(w, r)
		case parts[0] == "disposal" && len(parts) == 3 && parts[1] == "requests" && r.Method == "GET":
			handleGetDisposalRequest(w, r, parts[2])
		case parts[0] == "disposal" && len(parts) == 4 && parts[1] == "requests" && parts[3] == "status" && r.Method == "PUT":
			handleUpdateDisposalStatus(w, r, parts[2])

		// Geocoding
		case path == "geocode/reverse" && r.Method == "GET":
			handleReverseGeocode(w, r)

		// Community board
		case path == "community/posts" && r.Method == "GET":
			handleListCommunityPosts(w, r)
		case path == "community/posts" && r.Method == "POST":
			handleCreateCommunityPost(w, r)
		case parts[0] == "community" && len(parts) == 3 && parts[1] == "posts" && r.Method == "GET":
			handleGetCommunityPost(w, r, parts[2])

		// Exchange board
		case path == "exchange/listings" && r.Method == "GET":
			handleListExchangeListings(w, r)
		case path == "exchange/listings" && r.Method == "POST":
			handleCreateExchangeListing(w, r)
		case parts[0] == "exchange" && len(parts) == 3 && parts[1] == "listings" && r.Method == "GET":
			handleGetExchangeListing(w, r, parts[2])
		case parts[0] == "exchange" && len(parts) == 4 && parts[1] == "listings" && parts[3] == "claim" && r.Method == "PUT":
			handleClaimExchangeListing(w, r, parts[2])
		case parts[0] == "exchange" && len(parts) == 4 && parts[1] == "listings" && parts[3] == "close" && r.Method == "PUT":
			handleCloseExchangeListing(w, r, parts[2])

		// Notifications
		case path == "notifications" && r.Method == "GET":
			handleListNotifications(w, r)
		case path == "notifications/read-all" && r.Method == "POST":
			handleMarkAllNotificationsRead(w, r)
		case parts[0] == "notifications" && len(parts) == 3 && parts[2] == "read" && r.Method == "POST":
			handleMarkNotificationRead(w, r, parts[1])

		// Analytics
		case path == "analytics/summary" && r.Method == "GET":
			handleWasteSummary(w, r)
		case path == "analytics/forecast" && r.Method == "GET":
			handleWasteForecast(w, r)

		// Audit
		case parts[0] == "audit" && len(parts) == 1 && r.Method == "GET":
			handleAuditLog(w, r)

		default:
			jsonErr(w, "not found", 404)
		}
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("EWMS server starting on http://localhost%s", addr)
	log.Fatal(http.ListenAndServe(addr, logging(requireAuth(mux))))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, map[string]string{"status": "ok"})
}

func handleConfig(w http.ResponseWriter, r *http.Request, cfg Config) {
	jsonResp(w, map[string]interface{}{
		"company_name":      companyName,
		"company_email":     companyEmail,
		"default_latitude":  cfg.DefaultLatitude,
		"default_longitude": cfg.DefaultLongitude,
		"time_slots":        validTimeSlots,
		"request_statuses":  validRequestStatuses,
	})
}

func jsonResp(w http.ResponseWriter, data interface{}) {
	json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data})
}

func jsonRespMeta(w http.ResponseWriter, data interface{}, total, page, limit int) {
	json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data, Meta: &Meta{Total: total, Page: page, Limit: limit}})
}

func jsonErr(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": msg})
}

// jsonFieldMap writes a 400 with a field-to-message map so every invalid
// field can be reported at once.
func jsonFieldMap(w http.ResponseWriter, fields map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(400)
	json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "validation failed", "errors": fields})
}

func jsonFieldErrs(w http.ResponseWriter, ve *ValidationErrors) {
	jsonFieldMap(w, ve.FieldMap())
}

func decodeBody(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// atoi parses an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
