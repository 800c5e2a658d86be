package main

import (
	"net/http"

	"ewms/internal/audit"
)

type AuditEntry = audit.Entry

// Wrapper functions delegating to internal/audit, injecting global db and wsHub.
func logAudit(username, action, module, recordID, summary string) {
	audit.Log(db, wsHub, username, action, module, recordID, summary)
}

func getUsername(r *http.Request) string {
	if id, ok := r.Context().Value(ctxUserID).(int); ok {
		var u string
		if err := db.QueryRow("SELECT username FROM users WHERE id = ?", id).Scan(&u); err == nil {
			return u
		}
	}
	return audit.Username(db, r)
}

func handleAuditLog(w http.ResponseWriter, r *http.Request) {
	query := "SELECT id,username,action,module,record_id,COALESCE(summary,''),COALESCE(ip_address,''),created_at FROM audit_log"
	var args []interface{}
	if module := r.URL.Query().Get("module"); module != "" {
		query += " WHERE module=?"
		args = append(args, module)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT 200"

	rows, err := db.Query(query, args...)
	if err != nil {
		jsonErr(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	entries := []AuditEntry{}
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.Username, &e.Action, &e.Module, &e.RecordID, &e.Summary, &e.IPAddress, &e.CreatedAt); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	jsonResp(w, map[string]interface{}{"entries": entries})
}
