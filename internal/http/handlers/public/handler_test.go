package public

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ibheros/studio/internal/config"
	"github.com/ibheros/studio/internal/models"
	"github.com/ibheros/studio/internal/provider"
	"github.com/ibheros/studio/internal/repository"
	"github.com/ibheros/studio/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestHandler(t *testing.T) (*Handler, repository.PostRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:public_handler_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	cfg := &config.Config{}
	cfg.Site.PublicBaseURL = "https://ibheros.example/"
	repo := repository.NewPostRepository(db)
	return New(&provider.Container{
		Config:                  cfg,
		PostService:             service.NewPostService(repo, time.Minute),
		DownloadService:         service.NewDownloadService(config.DownloadConfig{TimeoutSeconds: 5, AllowPrivate: true}),
		CaptchaService:          service.NewCaptchaService(config.CaptchaConfig{}),
		TutorApplicationService: service.NewTutorApplicationService(config.ApplicationConfig{Recipient: "hr@ibheros.example"}, service.NewEmailService(&config.EmailConfig{}), nil),
	}), repo
}

func newTestEngine(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/download", h.DownloadProxy)
	r.GET("/api/v1/public/captcha/image", h.GetImageCaptcha)
	r.POST("/api/v1/public/tutor-applications", h.SubmitTutorApplication)
	r.GET("/:lang/videos/:id", h.VideoPage)
	return r
}

func TestDownloadProxyMissingURL(t *testing.T) {
	h, _ := newTestHandler(t)
	w := httptest.NewRecorder()
	newTestEngine(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/download?filename=a.mp4", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"error":"Missing url parameter"}` {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestDownloadProxyStreamsAttachment(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("mp4-bytes"))
	}))
	defer upstream.Close()

	h, _ := newTestHandler(t)
	w := httptest.NewRecorder()
	target := "/api/download?url=" + upstream.URL + "/lesson.mp4&filename=Lesson%201.mp4"
	newTestEngine(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	if w.Body.String() != "mp4-bytes" {
		t.Fatalf("unexpected body: %q", w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "video/mp4" {
		t.Fatalf("unexpected content type: %s", got)
	}
	if got := w.Header().Get("Content-Length"); got != "9" {
		t.Fatalf("unexpected content length: %s", got)
	}
	if got := w.Header().Get("Content-Disposition"); got != service.ContentDisposition("Lesson 1.mp4") {
		t.Fatalf("unexpected disposition: %s", got)
	}
}

func TestDownloadProxyDefaultsFilename(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer upstream.Close()

	h, _ := newTestHandler(t)
	w := httptest.NewRecorder()
	newTestEngine(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/download?url="+upstream.URL, nil))

	if got := w.Header().Get("Content-Disposition"); got != service.ContentDisposition("download") {
		t.Fatalf("unexpected disposition: %s", got)
	}
}

func TestDownloadProxyUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	defer upstream.Close()

	h, _ := newTestHandler(t)
	w := httptest.NewRecorder()
	newTestEngine(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/download?url="+upstream.URL+"/gone.mp4", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	if body["error"] != "Failed to download file" || body["details"] != "Failed to fetch file: Not Found" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestVideoPageRendersPost(t *testing.T) {
	h, repo := newTestHandler(t)
	post := &models.Post{
		Title:     "Limits <1>",
		Content:   "epsilon-delta",
		Hashtags:  "math #calculus",
		VideoURL:  "https://cdn.example/v.mp4",
		CreatedAt: time.Date(2026, 3, 7, 8, 0, 0, 0, time.UTC),
	}
	if err := repo.Create(post); err != nil {
		t.Fatalf("create post failed: %v", err)
	}

	w := httptest.NewRecorder()
	newTestEngine(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/zh/videos/"+post.ID, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	html := w.Body.String()
	for _, want := range []string{
		"Limits &lt;1&gt;",
		"2026年3月7日",
		"#math",
		"#calculus",
		"https://ibheros.example/zh/videos/" + post.ID,
		`src="https://cdn.example/v.mp4"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("page missing %q:\n%s", want, html)
		}
	}
}

func TestVideoPageMissingPost(t *testing.T) {
	h, _ := newTestHandler(t)
	w := httptest.NewRecorder()
	newTestEngine(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/en/videos/missing", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Video not found.") {
		t.Fatalf("unexpected page: %s", w.Body.String())
	}
}

func TestGetImageCaptcha(t *testing.T) {
	h, _ := newTestHandler(t)
	w := httptest.NewRecorder()
	newTestEngine(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/public/captcha/image", nil))

	var body struct {
		StatusCode int `json:"status_code"`
		Data       struct {
			CaptchaID   string `json:"captcha_id"`
			ImageBase64 string `json:"image_base64"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	if body.StatusCode != 0 || body.Data.CaptchaID == "" || body.Data.ImageBase64 == "" {
		t.Fatalf("unexpected captcha response: %s", w.Body.String())
	}
}

func postTutorForm(t *testing.T, r http.Handler, fields map[string]string, withFiles bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if withFiles {
		part, _ := mw.CreateFormFile("photo", "me.jpg")
		_, _ = part.Write([]byte("jpg"))
		part, _ = mw.CreateFormFile("transcripts", "grades.pdf")
		_, _ = part.Write([]byte("pdf"))
	}
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/tutor-applications?lang=en", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) (int, string) {
	t.Helper()
	var body struct {
		StatusCode int    `json:"status_code"`
		Msg        string `json:"msg"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	return body.StatusCode, body.Msg
}

func TestSubmitTutorApplicationMissingFields(t *testing.T) {
	h, _ := newTestHandler(t)
	w := postTutorForm(t, newTestEngine(h), map[string]string{"firstName": "Ada"}, true)

	code, msg := decodeEnvelope(t, w)
	if code != 400 || msg != "Missing required fields" {
		t.Fatalf("unexpected response: code=%d msg=%s", code, msg)
	}
}

func TestSubmitTutorApplicationSendFailure(t *testing.T) {
	h, _ := newTestHandler(t)
	fields := map[string]string{
		"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com",
		"countryCity": "London", "intro": "hi", "subjects": "Math",
		"university": "Cambridge", "teachingExp": "3 years", "strengths": "proofs",
		"achievements": "engine",
	}
	w := postTutorForm(t, newTestEngine(h), fields, true)

	code, msg := decodeEnvelope(t, w)
	if code != 500 || msg != "Failed to send application" {
		t.Fatalf("disabled relay should fail the submission: code=%d msg=%s", code, msg)
	}
}

func TestSubmitTutorApplicationRequiresCaptcha(t *testing.T) {
	h, _ := newTestHandler(t)
	h.Config.Application.RequireCaptcha = true
	w := postTutorForm(t, newTestEngine(h), map[string]string{"firstName": "Ada"}, false)

	code, msg := decodeEnvelope(t, w)
	if code != 400 || msg != "Please enter the captcha" {
		t.Fatalf("unexpected response: code=%d msg=%s", code, msg)
	}
}
