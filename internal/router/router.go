package router

import (
	"fmt"
	"strings"

	"github.com/ibheros/studio/internal/cache"
	"github.com/ibheros/studio/internal/config"
	adminhandlers "github.com/ibheros/studio/internal/http/handlers/admin"
	publichandlers "github.com/ibheros/studio/internal/http/handlers/public"
	"github.com/ibheros/studio/internal/logger"
	"github.com/ibheros/studio/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "studio"
	}
	redisClient := cache.Client()
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
	}
	downloadRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:download", redisPrefix),
		WindowSeconds: cfg.Download.RateLimit.WindowSeconds,
		MaxRequests:   cfg.Download.RateLimit.MaxRequests,
		Respond:       RespondRawLimited,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	r.Use(LocaleRedirectMiddleware(cfg.Site.DefaultLocale))

	// 本地媒体存储的静态文件
	mediaDir := strings.TrimSpace(cfg.Media.Local.Dir)
	if mediaDir == "" {
		mediaDir = "./uploads"
	}
	r.Static("/uploads", mediaDir)

	// 同源下载代理
	r.GET("/api/download", RateLimitMiddleware(redisClient, downloadRule, KeyByIP), publicHandler.DownloadProxy)

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
			public.POST("/tutor-applications", publicHandler.SubmitTutorApplication)
		}

		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)

			authorized := admin.Group("")
			authorized.Use(AdminAuthMiddleware(c.AuthService))
			{
				authorized.GET("/profile", adminHandler.GetAdminProfile)

				// 视频内容
				authorized.GET("/posts", adminHandler.ListPosts)
				authorized.GET("/posts/:id", adminHandler.GetPost)
				authorized.POST("/posts", adminHandler.CreatePost)
				authorized.PUT("/posts/:id", adminHandler.UpdatePost)
				authorized.PATCH("/posts/:id/used", adminHandler.SetPostUsed)

				// 上传/编辑表单会话
				authorized.POST("/forms", adminHandler.OpenForm)
				authorized.GET("/forms/:id", adminHandler.GetForm)
				authorized.PUT("/forms/:id", adminHandler.UpdateFormFields)
				authorized.DELETE("/forms/:id", adminHandler.CloseForm)
				authorized.PUT("/forms/:id/image", adminHandler.PutFormImage)
				authorized.DELETE("/forms/:id/image", adminHandler.DeleteFormImage)
				authorized.PUT("/forms/:id/video", adminHandler.PutFormVideo)
				authorized.DELETE("/forms/:id/video", adminHandler.DeleteFormVideo)
				authorized.POST("/forms/:id/submit", adminHandler.SubmitForm)
				authorized.GET("/previews/:ref", adminHandler.GetPreview)
			}
		}
	}

	// 分享链接落地页
	r.GET("/:lang/videos/:id", publicHandler.VideoPage)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
