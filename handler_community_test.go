package main

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestCreateAndListCommunityPosts(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	body := `{"title":"Battery recycling drive","body":"Drop off old batteries at reception this Friday."}`
	req := authedRequest("POST", "/api/community/posts", body, nil)
	w := httptest.NewRecorder()
	handleCreateCommunityPost(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	req = authedRequest("GET", "/api/community/posts", "", nil)
	w = httptest.NewRecorder()
	handleListCommunityPosts(w, req)

	var resp struct {
		Data struct {
			Posts []CommunityPost `json:"posts"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data.Posts) != 1 || resp.Data.Posts[0].Title != "Battery recycling drive" {
		t.Errorf("posts = %+v", resp.Data.Posts)
	}
}

func TestCreateCommunityPostValidation(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	req := authedRequest("POST", "/api/community/posts", `{"title":""}`, nil)
	w := httptest.NewRecorder()
	handleCreateCommunityPost(w, req)
	if w.Code != 400 {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestNotificationsReadFlow(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	notify("disposal_request", "info", "New disposal request", "DR-2026-001 submitted", "DR-2026-001")
	notify("exchange_listing", "info", "Listing claimed", "EX-2026-001 claimed", "EX-2026-001")

	req := authedRequest("GET", "/api/notifications?unread=true", "", nil)
	w := httptest.NewRecorder()
	handleListNotifications(w, req)

	var resp struct {
		Data struct {
			Notifications []Notification `json:"notifications"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data.Notifications) != 2 {
		t.Fatalf("expected 2 unread, got %d", len(resp.Data.Notifications))
	}

	req = authedRequest("POST", "/api/notifications/read-all", "", nil)
	w = httptest.NewRecorder()
	handleMarkAllNotificationsRead(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var unread int
	db.QueryRow("SELECT COUNT(*) FROM notifications WHERE read_at IS NULL").Scan(&unread)
	if unread != 0 {
		t.Errorf("expected 0 unread after read-all, got %d", unread)
	}
}
