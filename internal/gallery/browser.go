// Package gallery 管理端视频图库：列表、详情、使用标记与下载分享动作
package gallery

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ibheros/studio/internal/constants"
	"github.com/ibheros/studio/internal/logger"
	"github.com/ibheros/studio/internal/models"
)

// CopiedFeedback 复制提示的持续时间
const CopiedFeedback = 2000 * time.Millisecond

// ErrShareAborted 用户取消了系统分享
var ErrShareAborted = errors.New("share aborted")

// ErrNoSelection 当前没有打开的详情
var ErrNoSelection = errors.New("no post selected")

// PostSource 视频记录来源
type PostSource interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	// GetPost 记录不存在时返回 nil, nil
	GetPost(ctx context.Context, id string) (*models.Post, error)
	SetUsed(ctx context.Context, id string, isUsed bool) (*models.Post, error)
}

// Downloader 通过同源下载代理取回媒体
type Downloader interface {
	Download(ctx context.Context, url, filename string) (*File, error)
}

// File 取回的媒体文件
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Clipboard 系统剪贴板
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Prompter 阻塞式展示文本，保证用户总能拿到分享链接
type Prompter interface {
	Prompt(message, value string)
}

// FileSharer 系统分享
type FileSharer interface {
	CanShare(file *File) bool
	Share(ctx context.Context, file *File) error
}

// FileSaver 直接保存文件
type FileSaver interface {
	Save(ctx context.Context, file *File) error
}

// Navigator 页面跳转
type Navigator interface {
	Navigate(path string)
}

// Deps 图库依赖
type Deps struct {
	Source     PostSource
	Downloader Downloader
	Clipboard  Clipboard
	Prompter   Prompter
	Sharer     FileSharer
	Saver      FileSaver
	Navigator  Navigator
	Origin     string
	Now        func() time.Time
}

// Browser 图库状态机
type Browser struct {
	mu   sync.Mutex
	deps Deps

	posts     []models.Post
	loading   bool
	viewMode  string
	selected  *models.Post
	notFound  bool
	selectSeq uint64
	media     *Media
	copiedAt  map[string]time.Time

	toggleMu sync.Mutex
}

// New 创建图库
func New(deps Deps) *Browser {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Browser{
		deps:     deps,
		viewMode: constants.ViewModeGrid,
		copiedAt: make(map[string]time.Time),
	}
}

// Load 拉取全部视频；失败时记录日志并展示空列表
func (b *Browser) Load(ctx context.Context) {
	b.mu.Lock()
	b.loading = true
	b.mu.Unlock()

	posts, err := b.deps.Source.ListPosts(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = false
	if err != nil {
		logger.FromContext(ctx).Warnw("gallery_load_failed", "error", err)
		b.posts = nil
		return
	}
	b.posts = posts
}

// Posts 当前列表副本
func (b *Browser) Posts() []models.Post {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Post, len(b.posts))
	copy(out, b.posts)
	return out
}

// Loading 是否正在加载
func (b *Browser) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

// SetViewMode 切换网格或列表视图，未知模式忽略
func (b *Browser) SetViewMode(mode string) {
	if mode != constants.ViewModeGrid && mode != constants.ViewModeList {
		return
	}
	b.mu.Lock()
	b.viewMode = mode
	b.mu.Unlock()
}

// ViewMode 当前视图模式
func (b *Browser) ViewMode() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewMode
}
