package provider

import (
	"time"

	"github.com/ibheros/studio/internal/cache"
	"github.com/ibheros/studio/internal/config"
	"github.com/ibheros/studio/internal/logger"
	"github.com/ibheros/studio/internal/models"
	"github.com/ibheros/studio/internal/queue"
	"github.com/ibheros/studio/internal/repository"
	"github.com/ibheros/studio/internal/service"
	"github.com/ibheros/studio/internal/storage"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	MediaStore  storage.MediaStore

	// Repositories
	AdminRepo repository.AdminRepository
	PostRepo  repository.PostRepository

	// Services
	AuthService             *service.AuthService
	PostService             *service.PostService
	PostForms               *service.PostFormStore
	DownloadService         *service.DownloadService
	EmailService            *service.EmailService
	CaptchaService          *service.CaptchaService
	TutorApplicationService *service.TutorApplicationService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
	}

	mediaStore, err := storage.New(cfg.Media)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		MediaStore:  mediaStore,
	}
	c.initRepositories(models.DB)
	c.initServices()
	return c, nil
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.AdminRepo = repository.NewAdminRepository(db)
	c.PostRepo = repository.NewPostRepository(db)
}

func (c *Container) initServices() {
	cfg := c.Config
	c.AuthService = service.NewAuthService(cfg.JWT, c.AdminRepo)
	c.PostService = service.NewPostService(c.PostRepo, time.Duration(cfg.Site.DetailCacheTTLSeconds)*time.Second)
	c.PostForms = service.NewPostFormStore(service.PostFormDeps{
		Writer:        c.PostService,
		Media:         c.MediaStore,
		MaxImageBytes: cfg.Media.MaxImageBytes,
		MaxVideoBytes: cfg.Media.MaxVideoBytes,
	}, c.PostService, time.Duration(cfg.Form.SessionTTLMinutes)*time.Minute)
	c.DownloadService = service.NewDownloadService(cfg.Download,
		service.HostOf(cfg.Site.PublicBaseURL),
		service.HostOf(cfg.Media.Local.BaseURL),
		service.HostOf(cfg.Media.MinIO.PublicBaseURL),
	)
	c.EmailService = service.NewEmailService(&cfg.Email)
	c.CaptchaService = service.NewCaptchaService(cfg.Captcha)
	c.TutorApplicationService = service.NewTutorApplicationService(cfg.Application, c.EmailService, c.QueueClient)
}

// Close 释放容器持有的连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	c.PostForms.CloseAll()
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
}
