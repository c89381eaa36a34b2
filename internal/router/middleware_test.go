package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ibheros/studio/internal/config"
	"github.com/ibheros/studio/internal/logger"
	"github.com/ibheros/studio/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if strings.TrimSpace(w2.Header().Get(requestIDHeader)) == "" {
		t.Fatalf("generated request id should not be empty")
	}
}

func TestLoggerMiddlewareInjectsScopedLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware(), LoggerMiddleware(zap.NewNop()))
	var scoped *zap.SugaredLogger
	r.GET("/ping", func(c *gin.Context) {
		scoped = logger.FromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	if scoped == nil || scoped == logger.S() {
		t.Fatalf("expected request scoped logger in context")
	}
}

func TestLocaleRedirectMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(LocaleRedirectMiddleware("zh"))
	r.NoRoute(func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := []struct {
		path     string
		status   int
		location string
	}{
		{path: "/", status: http.StatusTemporaryRedirect, location: "/zh"},
		{path: "/videos/abc?x=1", status: http.StatusTemporaryRedirect, location: "/zh/videos/abc?x=1"},
		{path: "/en/videos/abc", status: http.StatusOK},
		{path: "/zh", status: http.StatusOK},
		{path: "/api/download", status: http.StatusOK},
		{path: "/uploads/posts/a.png", status: http.StatusOK},
		{path: "/health", status: http.StatusOK},
		{path: "/favicon.ico", status: http.StatusOK},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if w.Code != tc.status {
			t.Fatalf("%s: status want %d got %d", tc.path, tc.status, w.Code)
		}
		if tc.location != "" && w.Header().Get("Location") != tc.location {
			t.Fatalf("%s: location want %s got %s", tc.path, tc.location, w.Header().Get("Location"))
		}
	}
}

func TestAdminAuthMiddlewareRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	auth := service.NewAuthService(config.JWTConfig{SecretKey: "secret"}, nil)
	r := gin.New()
	r.Use(AdminAuthMiddleware(auth))
	r.GET("/admin/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for _, header := range []string{"", "Token abc", "Bearer not-a-jwt"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)

		var resp struct {
			StatusCode int `json:"status_code"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response failed: %v", err)
		}
		if resp.StatusCode != 401 {
			t.Fatalf("header %q: status_code want 401 got %d", header, resp.StatusCode)
		}
	}
}

func TestCORSMiddlewareAllowsConfiguredOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{AllowedOrigins: []string{"https://ibheros.example"}}))
	r.GET("/api/v1/public/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/ping", nil)
	req.Header.Set("Origin", "https://ibheros.example")
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "https://ibheros.example" {
		t.Fatalf("unexpected allow origin: %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
}
