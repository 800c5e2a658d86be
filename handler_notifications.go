package main

import (
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"time"
)

// notify inserts an in-app notification row and pushes it over the
// websocket hub. Failures are logged, never surfaced to the caller.
func notify(module, severity, title, message, recordID string) {
	res, err := db.Exec("INSERT INTO notifications (type,severity,title,message,record_id,module) VALUES (?,?,?,?,?,?)",
		module, severity, title, message, recordID, module)
	if err != nil {
		log.Printf("notify: %v", err)
		return
	}
	if id, err := res.LastInsertId(); err == nil {
		broadcast("notification", "create", strconv.FormatInt(id, 10))
	}
}

func handleListNotifications(w http.ResponseWriter, r *http.Request) {
	query := "SELECT id,type,COALESCE(severity,'info'),title,COALESCE(message,''),COALESCE(record_id,''),COALESCE(module,''),read_at,created_at FROM notifications"
	args := []interface{}{}
	if r.URL.Query().Get("unread") == "true" {
		query += " WHERE read_at IS NULL"
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT 100"

	rows, err := db.Query(query, args...)
	if err != nil {
		jsonErr(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	notifications := []Notification{}
	for rows.Next() {
		var n Notification
		var readAt sql.NullString
		if err := rows.Scan(&n.ID, &n.Type, &n.Severity, &n.Title, &n.Message, &n.RecordID, &n.Module, &readAt, &n.CreatedAt); err != nil {
			continue
		}
		n.ReadAt = sp(readAt)
		notifications = append(notifications, n)
	}
	jsonResp(w, map[string]interface{}{"notifications": notifications})
}

func handleMarkNotificationRead(w http.ResponseWriter, r *http.Request, id string) {
	now := time.Now().Format("2006-01-02 15:04:05")
	res, err := db.Exec("UPDATE notifications SET read_at=? WHERE id=? AND read_at IS NULL", now, id)
	if err != nil {
		jsonErr(w, err.Error(), 500)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := db.QueryRow("SELECT 1 FROM notifications WHERE id=?", id).Scan(&exists); err != nil {
			jsonErr(w, "not found", 404)
			return
		}
	}
	jsonResp(w, map[string]interface{}{"read": true})
}

func handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	now := time.Now().Format("2006-01-02 15:04:05")
	res, err := db.Exec("UPDATE notifications SET read_at=? WHERE read_at IS NULL", now)
	if err != nil {
		jsonErr(w, err.Error(), 500)
		return
	}
	n, _ := res.RowsAffected()
	jsonResp(w, map[string]interface{}{"marked": n})
}
