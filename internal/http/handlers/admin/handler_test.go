package admin

import (
	"bytes"
	"context"
	"errors"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/ibheros/studio/internal/config"
	"github.com/ibheros/studio/internal/models"
	"github.com/ibheros/studio/internal/provider"
	"github.com/ibheros/studio/internal/repository"
	"github.com/ibheros/studio/internal/service"
	"github.com/ibheros/studio/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type failingMediaStore struct{ err error }

func (s failingMediaStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	return s.err
}

func (s failingMediaStore) PublicURL(key string) string { return "/uploads/" + key }

func setupAdminRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return setupAdminRouterWithMedia(t, storage.NewLocalStore(t.TempDir(), "/uploads"))
}

func setupAdminRouterWithMedia(t *testing.T, media storage.MediaStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:admin_handler_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Media.MaxImageBytes = 1 << 20
	cfg.Media.MaxVideoBytes = 1 << 20
	posts := service.NewPostService(repository.NewPostRepository(db), time.Minute)
	h := New(&provider.Container{
		Config:      cfg,
		PostService: posts,
		PostForms: service.NewPostFormStore(service.PostFormDeps{
			Writer:        posts,
			Media:         media,
			MaxImageBytes: cfg.Media.MaxImageBytes,
			MaxVideoBytes: cfg.Media.MaxVideoBytes,
		}, posts, time.Hour),
	})

	r := gin.New()
	r.GET("/posts", h.ListPosts)
	r.GET("/posts/:id", h.GetPost)
	r.POST("/posts", h.CreatePost)
	r.PUT("/posts/:id", h.UpdatePost)
	r.PATCH("/posts/:id/used", h.SetPostUsed)
	r.POST("/forms", h.OpenForm)
	r.GET("/forms/:id", h.GetForm)
	r.PUT("/forms/:id", h.UpdateFormFields)
	r.DELETE("/forms/:id", h.CloseForm)
	r.PUT("/forms/:id/video", h.PutFormVideo)
	r.POST("/forms/:id/submit", h.SubmitForm)
	r.GET("/previews/:ref", h.GetPreview)
	return r
}

type filePart struct {
	field, name, contentType string
	data                     []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...filePart) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	for _, f := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		header.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(header)
		if err != nil {
			t.Fatalf("create part failed: %v", err)
		}
		_, _ = part.Write(f.data)
	}
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

func doRequest(t *testing.T, r http.Handler, req *http.Request) envelope {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected http status %d: %s", w.Code, w.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope failed: %v body=%s", err, w.Body.String())
	}
	return env
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCreatePostUploadsMediaAndRedirects(t *testing.T) {
	r := setupAdminRouter(t)
	body, contentType := multipartBody(t,
		map[string]string{"title": "Chain rule", "content": "derivatives", "hashtags": "calculus"},
		filePart{field: "coverImage", name: "cover.png", contentType: "image/png", data: []byte("png")},
		filePart{field: "video", name: "lesson.mp4", contentType: "video/mp4", data: []byte("mp4")},
	)
	req := httptest.NewRequest(http.MethodPost, "/posts?lang=en", body)
	req.Header.Set("Content-Type", contentType)

	env := doRequest(t, r, req)
	if env.StatusCode != 0 || env.Msg != "Post saved" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	var result struct {
		Post     models.Post `json:"post"`
		Redirect string      `json:"redirect"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode result failed: %v", err)
	}
	if result.Redirect != "/en/upload/videos" {
		t.Fatalf("unexpected redirect: %s", result.Redirect)
	}
	if !strings.HasPrefix(result.Post.CoverImageURL, "/uploads/posts/images/") || !strings.HasPrefix(result.Post.VideoURL, "/uploads/posts/videos/") {
		t.Fatalf("media should be persisted: %+v", result.Post)
	}

	list := doRequest(t, r, httptest.NewRequest(http.MethodGet, "/posts", nil))
	var posts []models.Post
	if err := json.Unmarshal(list.Data, &posts); err != nil || len(posts) != 1 {
		t.Fatalf("expected one listed post, got %s err=%v", string(list.Data), err)
	}
}

func TestCreatePostUploadFailureCarriesDetails(t *testing.T) {
	r := setupAdminRouterWithMedia(t, failingMediaStore{err: errors.New("bucket quota exceeded")})
	body, contentType := multipartBody(t,
		map[string]string{"title": "Chain rule", "content": "derivatives"},
		filePart{field: "coverImage", name: "cover.png", contentType: "image/png", data: []byte("png")},
	)
	req := httptest.NewRequest(http.MethodPost, "/posts?lang=en", body)
	req.Header.Set("Content-Type", contentType)

	env := doRequest(t, r, req)
	if env.StatusCode != 500 || env.Msg != "Error uploading media" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	var data struct {
		Details string `json:"details"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data failed: %v", err)
	}
	if !strings.Contains(data.Details, "bucket quota exceeded") {
		t.Fatalf("details should carry the upload error: %q", data.Details)
	}

	list := doRequest(t, r, httptest.NewRequest(http.MethodGet, "/posts", nil))
	var posts []models.Post
	if err := json.Unmarshal(list.Data, &posts); err != nil || len(posts) != 0 {
		t.Fatalf("failed upload must not write a post: %s err=%v", string(list.Data), err)
	}
}

func TestCreatePostValidationMessages(t *testing.T) {
	r := setupAdminRouter(t)
	body, contentType := multipartBody(t, map[string]string{"content": "no title"})
	req := httptest.NewRequest(http.MethodPost, "/posts?lang=en", body)
	req.Header.Set("Content-Type", contentType)

	env := doRequest(t, r, req)
	if env.StatusCode != 400 || env.Msg != "Title is required" {
		t.Fatalf("unexpected envelope: %+v", env)
	}

	body, contentType = multipartBody(t,
		map[string]string{"title": "t", "content": "c"},
		filePart{field: "video", name: "notes.txt", contentType: "text/plain", data: []byte("x")},
	)
	req = httptest.NewRequest(http.MethodPost, "/posts?lang=en", body)
	req.Header.Set("Content-Type", contentType)
	env = doRequest(t, r, req)
	if env.StatusCode != 400 || env.Msg != "Please select a video file" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestUpdateMissingPostReturnsNotFound(t *testing.T) {
	r := setupAdminRouter(t)
	body, contentType := multipartBody(t, map[string]string{"title": "t", "content": "c"})
	req := httptest.NewRequest(http.MethodPut, "/posts/missing?lang=en", body)
	req.Header.Set("Content-Type", contentType)

	env := doRequest(t, r, req)
	if env.StatusCode != 404 || env.Msg != "Video not found." {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestSetPostUsed(t *testing.T) {
	r := setupAdminRouter(t)
	body, contentType := multipartBody(t, map[string]string{"title": "t", "content": "c"})
	req := httptest.NewRequest(http.MethodPost, "/posts", body)
	req.Header.Set("Content-Type", contentType)
	var created struct {
		Post models.Post `json:"post"`
	}
	if err := json.Unmarshal(doRequest(t, r, req).Data, &created); err != nil {
		t.Fatalf("decode created failed: %v", err)
	}

	env := doRequest(t, r, jsonRequest(http.MethodPatch, "/posts/"+created.Post.ID+"/used", `{"isUsed":true}`))
	var updated models.Post
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("decode updated failed: %v", err)
	}
	if !updated.IsUsed || updated.UsedAt == nil {
		t.Fatalf("expected used post with usedAt: %+v", updated)
	}

	env = doRequest(t, r, jsonRequest(http.MethodPatch, "/posts/"+created.Post.ID+"/used", `{}`))
	if env.StatusCode != 400 {
		t.Fatalf("missing isUsed should be rejected: %+v", env)
	}
}

func TestFormSessionFlow(t *testing.T) {
	r := setupAdminRouter(t)

	env := doRequest(t, r, jsonRequest(http.MethodPost, "/forms", `{}`))
	var state service.PostFormState
	if err := json.Unmarshal(env.Data, &state); err != nil || state.ID == "" {
		t.Fatalf("open form failed: %s err=%v", string(env.Data), err)
	}

	body, contentType := multipartBody(t, nil, filePart{field: "file", name: "clip.mp4", contentType: "video/mp4", data: []byte("clip")})
	req := httptest.NewRequest(http.MethodPut, "/forms/"+state.ID+"/video", body)
	req.Header.Set("Content-Type", contentType)
	env = doRequest(t, r, req)
	if err := json.Unmarshal(env.Data, &state); err != nil {
		t.Fatalf("decode state failed: %v", err)
	}
	if !strings.HasPrefix(state.VideoPreview, "blob:") || state.VideoName != "clip.mp4" {
		t.Fatalf("expected temporary video preview: %+v", state)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/previews/"+state.VideoPreview, nil))
	if w.Body.String() != "clip" || w.Header().Get("Content-Type") != "video/mp4" {
		t.Fatalf("unexpected preview response: %q %s", w.Body.String(), w.Header().Get("Content-Type"))
	}

	env = doRequest(t, r, httptest.NewRequest(http.MethodPost, "/forms/"+state.ID+"/submit?lang=en", nil))
	if env.StatusCode != 400 || env.Msg != "Title is required" {
		t.Fatalf("submit without title should fail validation: %+v", env)
	}

	doRequest(t, r, jsonRequest(http.MethodPut, "/forms/"+state.ID, `{"title":"Integrals","content":"area"}`))
	env = doRequest(t, r, httptest.NewRequest(http.MethodPost, "/forms/"+state.ID+"/submit", nil))
	var result struct {
		Post models.Post `json:"post"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode submit failed: %v", err)
	}
	if env.StatusCode != 0 || result.Post.Title != "Integrals" || !strings.HasPrefix(result.Post.VideoURL, "/uploads/") {
		t.Fatalf("unexpected submit result: %+v %+v", env, result.Post)
	}

	doRequest(t, r, httptest.NewRequest(http.MethodDelete, "/forms/"+state.ID, nil))
	env = doRequest(t, r, httptest.NewRequest(http.MethodGet, "/forms/"+state.ID, nil))
	if env.StatusCode != 404 {
		t.Fatalf("closed form should be gone: %+v", env)
	}
}
