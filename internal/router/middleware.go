package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/ibheros/studio/internal/config"
	"github.com/ibheros/studio/internal/http/response"
	"github.com/ibheros/studio/internal/i18n"
	"github.com/ibheros/studio/internal/logger"
	"github.com/ibheros/studio/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

// 不做语言重定向的路径前缀
var localeExemptPrefixes = []string{"/api/", "/uploads/", "/health", "/hero.png", "/favicon.ico"}

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", requestIDHeader},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           time.Duration(cfg.MaxAge) * time.Second,
	}
	if len(corsCfg.AllowMethods) == 0 {
		corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(corsCfg.AllowHeaders) == 0 {
		corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Content-Length", "Authorization", "X-Requested-With", "X-Locale", requestIDHeader}
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 || containsWildcard(origins) {
		if cfg.AllowCredentials {
			corsCfg.AllowOriginFunc = func(string) bool { return true }
		} else {
			corsCfg.AllowAllOrigins = true
		}
	} else {
		corsCfg.AllowOrigins = origins
	}
	return cors.New(corsCfg)
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if strings.TrimSpace(origin) == "*" {
			return true
		}
	}
	return false
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件，并把带 request_id 的日志放入请求上下文
func LoggerMiddleware(base *zap.Logger) gin.HandlerFunc {
	if base == nil {
		base = zap.L()
	}
	sugar := base.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		scoped := sugar.With("request_id", getRequestID(c))
		c.Request = c.Request.WithContext(logger.IntoContext(c.Request.Context(), scoped))
		c.Next()

		log := scoped.With(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// LocaleRedirectMiddleware 未带语言前缀的页面路径 307 到默认语言
func LocaleRedirectMiddleware(defaultLocale string) gin.HandlerFunc {
	if defaultLocale = i18n.Normalize(defaultLocale); defaultLocale == "" {
		defaultLocale = i18n.LocaleZH
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !needsLocaleRedirect(path) {
			c.Next()
			return
		}
		target := "/" + defaultLocale
		if path != "/" {
			target += path
		}
		if raw := c.Request.URL.RawQuery; raw != "" {
			target += "?" + raw
		}
		c.Redirect(http.StatusTemporaryRedirect, target)
		c.Abort()
	}
}

func needsLocaleRedirect(path string) bool {
	for _, prefix := range localeExemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	segment := strings.TrimPrefix(path, "/")
	if idx := strings.Index(segment, "/"); idx >= 0 {
		segment = segment[:idx]
	}
	return !i18n.IsSupported(segment)
}

// AdminAuthMiddleware 管理端 JWT 鉴权中间件
func AdminAuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		locale := i18n.ResolveLocale(c)
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, response.CodeUnauthorized, i18n.T(locale, "error.unauthorized"))
			c.Abort()
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			response.Error(c, response.CodeUnauthorized, i18n.T(locale, "error.auth_header_invalid"))
			c.Abort()
			return
		}

		claims, err := authService.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			response.Error(c, response.CodeUnauthorized, i18n.T(locale, "error.token_invalid"))
			c.Abort()
			return
		}
		c.Set("admin_id", claims.AdminID)
		c.Set("username", claims.Username)
		c.Next()
	}
}
