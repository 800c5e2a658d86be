package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"ewms/internal/audit"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Department  string `json:"department"`
	Role        string `json:"role"`
}

func generateToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, "Invalid request body", 400)
		return
	}

	var id int
	var passwordHash, displayName, email, department, role string
	var active int
	err := db.QueryRow("SELECT id, password_hash, display_name, COALESCE(email,''), COALESCE(department,''), role, active FROM users WHERE username = ?", req.Username).
		Scan(&id, &passwordHash, &displayName, &email, &department, &role, &active)
	if err != nil {
		jsonErr(w, "Invalid username or password", 401)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		jsonErr(w, "Invalid username or password", 401)
		return
	}

	if active == 0 {
		jsonErr(w, "Account deactivated", 403)
		return
	}

	// Clean expired sessions
	db.Exec("DELETE FROM sessions WHERE expires_at < CURRENT_TIMESTAMP")

	// Create session with retry
	var token string
	expires := time.Now().Add(24 * time.Hour)
	for i := 0; i < 3; i++ {
		token = generateToken()
		_, err = db.Exec("INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)",
			token, id, expires.Format("2006-01-02 15:04:05"))
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err != nil {
		jsonErr(w, "Failed to create session", 500)
		return
	}

	db.Exec("UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = ?", id)
	audit.Log(db, wsHub, req.Username, audit.ActionLogin, "auth", req.Username, "User logged in")

	http.SetCookie(w, &http.Cookie{
		Name:     "ewms_session",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    UserResponse{ID: id, Username: req.Username, DisplayName: displayName, Email: email, Department: department, Role: role},
	})
}

func handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("ewms_session"); err == nil {
		db.Exec("DELETE FROM sessions WHERE token = ?", cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "ewms_session",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleMe returns the authenticated user's profile. The disposal form
// fills contact name/email/department defaults from this payload.
func handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(ctxUserID).(int)
	if !ok {
		unauthorized(w)
		return
	}

	var u UserResponse
	err := db.QueryRow("SELECT id, username, display_name, COALESCE(email,''), COALESCE(department,''), role FROM users WHERE id = ?", userID).
		Scan(&u.ID, &u.Username, &u.DisplayName, &u.Email, &u.Department, &u.Role)
	if err != nil {
		unauthorized(w)
		return
	}
	jsonResp(w, map[string]interface{}{"user": u})
}

// userProfile loads the acting user's contact defaults for normalization.
func userProfile(r *http.Request) (name, email, department string) {
	userID, ok := r.Context().Value(ctxUserID).(int)
	if !ok {
		return "", "", ""
	}
	db.QueryRow("SELECT display_name, COALESCE(email,''), COALESCE(department,'') FROM users WHERE id = ?", userID).
		Scan(&name, &email, &department)
	return name, email, department
}
