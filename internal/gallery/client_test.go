package gallery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIClientRoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/admin/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status_code":0,"msg":"success","data":{"token":"tok-1"}}`))
	})
	mux.HandleFunc("/api/v1/admin/posts", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			_, _ = w.Write([]byte(`{"status_code":401,"msg":"unauthorized","data":null}`))
			return
		}
		_, _ = w.Write([]byte(`{"status_code":0,"msg":"success","data":[{"id":"p1","title":"T","isUsed":false}]}`))
	})
	mux.HandleFunc("/api/v1/admin/posts/missing", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status_code":404,"msg":"not found","data":null}`))
	})
	mux.HandleFunc("/api/v1/admin/posts/p1/used", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			IsUsed bool `json:"isUsed"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if r.Method != http.MethodPatch || !body.IsUsed {
			_, _ = w.Write([]byte(`{"status_code":400,"msg":"bad request","data":null}`))
			return
		}
		_, _ = w.Write([]byte(`{"status_code":0,"msg":"success","data":{"id":"p1","isUsed":true,"usedAt":"2026-05-01T00:00:00Z"}}`))
	})
	mux.HandleFunc("/api/download", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("url") == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Missing url parameter"}`))
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("bytes"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewAPIClient(server.URL, "", nil)
	ctx := context.Background()
	if err := client.Login(ctx, "editor", "pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	posts, err := client.ListPosts(ctx)
	if err != nil || len(posts) != 1 || posts[0].ID != "p1" {
		t.Fatalf("unexpected list: %+v err=%v", posts, err)
	}
	post, err := client.GetPost(ctx, "missing")
	if err != nil || post != nil {
		t.Fatalf("missing post should be nil, nil: %+v %v", post, err)
	}
	used, err := client.SetUsed(ctx, "p1", true)
	if err != nil || !used.IsUsed || used.UsedAt == nil {
		t.Fatalf("unexpected toggle result: %+v err=%v", used, err)
	}

	file, err := client.Download(ctx, "https://media.example.com/a.mp4", "a.mp4")
	if err != nil || string(file.Data) != "bytes" || file.ContentType != "video/mp4" || file.Name != "a.mp4" {
		t.Fatalf("unexpected download: %+v err=%v", file, err)
	}
	if _, err := client.Download(ctx, "", ""); err == nil || err.Error() != "Missing url parameter" {
		t.Fatalf("expected proxy error message, got %v", err)
	}
}
