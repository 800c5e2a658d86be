package main

import (
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

var db *sql.DB

func initDB(path string) error {
	// Close previous connection if any (prevents goroutine leaks in tests)
	if db != nil {
		db.Close()
	}
	var err error
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err = sql.Open("sqlite", path+sep+"_journal_mode=WAL&_busy_timeout=10000&_foreign_keys=1")
	if err != nil {
		return err
	}

	// SQLite handles 1 writer + multiple readers with WAL mode
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000"); err != nil {
		return fmt.Errorf("set busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	return runMigrations()
}

func runMigrations() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			display_name TEXT,
			email TEXT DEFAULT '',
			department TEXT DEFAULT '',
			role TEXT DEFAULT 'user',
			active INTEGER DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			last_login DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			expires_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS devices (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			brand TEXT DEFAULT '',
			model TEXT DEFAULT '',
			serial_number TEXT DEFAULT '',
			condition TEXT DEFAULT 'good' CHECK(condition IN ('excellent','good','fair','poor','damaged')),
			location TEXT DEFAULT '',
			department TEXT DEFAULT '',
			qr_token TEXT UNIQUE NOT NULL,
			qr_data TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS disposal_requests (
			id TEXT PRIMARY KEY,
			department TEXT DEFAULT '',
			contact_name TEXT DEFAULT '',
			contact_phone TEXT NOT NULL,
			contact_email TEXT DEFAULT '',
			pickup_address TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			e_waste_description TEXT DEFAULT '',
			weight_kg REAL,
			estimated_value REAL,
			item_count INTEGER DEFAULT 0 CHECK(item_count >= 0),
			preferred_date TEXT NOT NULL,
			preferred_time_slot TEXT NOT NULL,
			additional_notes TEXT DEFAULT '',
			status TEXT DEFAULT 'pending' CHECK(status IN ('pending','approved','in_progress','pickup_scheduled','out_for_pickup','pickup_completed','completed','rejected','cancelled')),
			vendor_notes TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			completed_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS request_devices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL,
			device_id TEXT NOT NULL,
			name TEXT DEFAULT '',
			type TEXT DEFAULT '',
			brand TEXT DEFAULT '',
			serial_number TEXT DEFAULT '',
			condition TEXT DEFAULT '',
			qr_data TEXT DEFAULT '',
			UNIQUE(request_id, device_id),
			FOREIGN KEY (request_id) REFERENCES disposal_requests(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS request_activity (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL,
			from_status TEXT DEFAULT '',
			to_status TEXT NOT NULL,
			notes TEXT DEFAULT '',
			changed_by TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (request_id) REFERENCES disposal_requests(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS community_posts (
			id TEXT PRIMARY KEY,
			author TEXT DEFAULT '',
			title TEXT NOT NULL,
			body TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS exchange_listings (
			id TEXT PRIMARY KEY,
			owner TEXT DEFAULT '',
			device_name TEXT NOT NULL,
			device_type TEXT DEFAULT '',
			condition TEXT DEFAULT 'good',
			description TEXT DEFAULT '',
			status TEXT DEFAULT 'open' CHECK(status IN ('open','claimed','closed')),
			claimed_by TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			severity TEXT DEFAULT 'info',
			title TEXT NOT NULL,
			message TEXT,
			record_id TEXT,
			module TEXT,
			read_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT DEFAULT 'system',
			action TEXT NOT NULL,
			module TEXT NOT NULL,
			record_id TEXT NOT NULL,
			summary TEXT,
			ip_address TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, t := range tables {
		if _, err := db.Exec(t); err != nil {
			return fmt.Errorf("migration error: %w\nSQL: %s", err, t)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_devices_department ON devices(department)",
		"CREATE INDEX IF NOT EXISTS idx_devices_type ON devices(type)",
		"CREATE INDEX IF NOT EXISTS idx_disposal_requests_status ON disposal_requests(status)",
		"CREATE INDEX IF NOT EXISTS idx_disposal_requests_department ON disposal_requests(department)",
		"CREATE INDEX IF NOT EXISTS idx_disposal_requests_created_at ON disposal_requests(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_request_devices_request_id ON request_devices(request_id)",
		"CREATE INDEX IF NOT EXISTS idx_request_activity_request_id ON request_activity(request_id)",
		"CREATE INDEX IF NOT EXISTS idx_exchange_listings_status ON exchange_listings(status)",
		"CREATE INDEX IF NOT EXISTS idx_notifications_read_at ON notifications(read_at)",
		"CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)",
		"CREATE INDEX IF NOT EXISTS idx_audit_log_module ON audit_log(module)",
		"CREATE INDEX IF NOT EXISTS idx_audit_log_created_at ON audit_log(created_at)",
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("index creation: %w\nSQL: %s", err, idx)
		}
	}

	return nil
}

func seedDB() {
	// Always ensure admin user exists
	var userCount int
	db.QueryRow("SELECT COUNT(*) FROM users WHERE username = 'admin'").Scan(&userCount)
	if userCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Failed to hash admin password: %v", err)
		} else {
			db.Exec("INSERT INTO users (username, password_hash, display_name, email, department, role) VALUES (?, ?, ?, ?, ?, ?)",
				"admin", string(hash), "Administrator", companyEmail, "Administration", "admin")
		}
	}

	// Check if already seeded
	var count int
	db.QueryRow("SELECT COUNT(*) FROM devices").Scan(&count)
	if count > 0 {
		return
	}

	now := time.Now().Format("2006-01-02 15:04:05")
	seedDevices := []struct {
		name, typ, brand, model, serial, condition, location string
	}{
		{"ThinkPad X1", "Laptop", "Lenovo", "X1 Carbon G9", "LX1-4471", "good", "IT Store Room"},
		{"LaserJet Pro", "Printer", "HP", "M404dn", "HPL-0032", "fair", "2nd Floor Copy Room"},
		{"OptiPlex 7090", "Desktop", "Dell", "7090 MT", "DOP-9018", "poor", "Basement Storage"},
	}
	for i, d := range seedDevices {
		id := fmt.Sprintf("DEV-%03d", i+1)
		token := uuid.NewString()
		db.Exec(`INSERT INTO devices (id,name,type,brand,model,serial_number,condition,location,department,qr_token,qr_data,created_at,updated_at)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			id, d.name, d.typ, d.brand, d.model, d.serial, d.condition, d.location, "IT",
			token, deviceQRData(id, d.name, d.typ, token), now, now)
	}
}

// ID generation helpers
func nextID(prefix string, table string, digits int) string {
	year := time.Now().Format("2006")
	pattern := prefix + "-" + year + "-%"
	var maxID sql.NullString
	db.QueryRow("SELECT id FROM "+table+" WHERE id LIKE ? ORDER BY id DESC LIMIT 1", pattern).Scan(&maxID)

	next := 1
	if maxID.Valid {
		parts := strings.Split(maxID.String, "-")
		if len(parts) >= 3 {
			if n, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
				next = n + 1
			}
		}
	}
	return fmt.Sprintf("%s-%s-%0*d", prefix, year, digits, next)
}

func nf(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func fp(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	return &nf.Float64
}

func sp(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
