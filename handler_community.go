package main

import (
	"net/http"
	"time"
)

func scanPost(scan func(...interface{}) error) (CommunityPost, error) {
	var p CommunityPost
	err := scan(&p.ID, &p.Author, &p.Title, &p.Body, &p.CreatedAt)
	return p, err
}

func handleListCommunityPosts(w http.ResponseWriter, r *http.Request) {
	rows, err := db.Query("SELECT id,COALESCE(author,''),title,COALESCE(body,''),created_at FROM community_posts ORDER BY created_at DESC, id DESC LIMIT 200")
	if err != nil {
		jsonErr(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	posts := []CommunityPost{}
	for rows.Next() {
		p, err := scanPost(rows.Scan)
		if err != nil {
			continue
		}
		posts = append(posts, p)
	}
	jsonResp(w, map[string]interface{}{"posts": posts})
}

func handleGetCommunityPost(w http.ResponseWriter, r *http.Request, id string) {
	p, err := scanPost(db.QueryRow("SELECT id,COALESCE(author,''),title,COALESCE(body,''),created_at FROM community_posts WHERE id=?", id).Scan)
	if err != nil {
		jsonErr(w, "not found", 404)
		return
	}
	jsonResp(w, map[string]interface{}{"post": p})
}

func handleCreateCommunityPost(w http.ResponseWriter, r *http.Request) {
	var p CommunityPost
	if err := decodeBody(r, &p); err != nil {
		jsonErr(w, "invalid body", 400)
		return
	}

	ve := &ValidationErrors{}
	requireField(ve, "title", p.Title)
	validateMaxLength(ve, "title", p.Title, 200)
	validateMaxLength(ve, "body", p.Body, 5000)
	if ve.HasErrors() {
		jsonFieldErrs(w, ve)
		return
	}

	p.ID = nextID("CP", "community_posts", 3)
	p.Author = getUsername(r)
	p.CreatedAt = time.Now().Format("2006-01-02 15:04:05")

	_, err := db.Exec("INSERT INTO community_posts (id,author,title,body,created_at) VALUES (?,?,?,?,?)",
		p.ID, p.Author, p.Title, p.Body, p.CreatedAt)
	if err != nil {
		jsonErr(w, err.Error(), 500)
		return
	}

	logAudit(p.Author, "CREATE", "community_post", p.ID, "Posted: "+p.Title)
	broadcast("community_post", "create", p.ID)
	jsonResp(w, map[string]interface{}{"post": p})
}
