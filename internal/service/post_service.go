package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ibheros/studio/internal/cache"
	"github.com/ibheros/studio/internal/constants"
	"github.com/ibheros/studio/internal/logger"
	"github.com/ibheros/studio/internal/models"
	"github.com/ibheros/studio/internal/repository"
)

// PostService 视频内容服务
type PostService struct {
	repo      repository.PostRepository
	detailTTL time.Duration
	now       func() time.Time
}

// NewPostService 创建视频内容服务
func NewPostService(repo repository.PostRepository, detailTTL time.Duration) *PostService {
	return &PostService{
		repo:      repo,
		detailTTL: detailTTL,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// PostInput 新建/编辑保存的内容字段
type PostInput struct {
	Title         string
	Content       string
	Hashtags      string
	CoverImageURL string
	VideoURL      string
	ManimCode     string
	ReferenceLink string
}

// List 按创建时间倒序返回全部视频
func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	return s.repo.List()
}

// Get 获取视频详情，优先读缓存
func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	if post, hit, err := cache.GetPost(ctx, id); err != nil {
		logger.FromContext(ctx).Warnw("post_cache_read_failed", "post_id", id, "error", err)
	} else if hit {
		return post, nil
	}

	post, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	if err := cache.SetPost(ctx, post, s.detailTTL); err != nil {
		logger.FromContext(ctx).Warnw("post_cache_write_failed", "post_id", id, "error", err)
	}
	return post, nil
}

// Create 新增视频记录，createdAt 由服务端时钟赋值
func (s *PostService) Create(ctx context.Context, input PostInput) (*models.Post, error) {
	if err := validatePostInput(input); err != nil {
		return nil, err
	}
	post := &models.Post{
		Title:         input.Title,
		Content:       input.Content,
		Hashtags:      input.Hashtags,
		CoverImageURL: input.CoverImageURL,
		VideoURL:      input.VideoURL,
		ManimCode:     input.ManimCode,
		ReferenceLink: input.ReferenceLink,
		CreatedAt:     s.now(),
	}
	if err := s.repo.Create(post); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Infow("post_created", "post_id", post.ID)
	return post, nil
}

// Update 整体覆盖内容字段并刷新 updatedAt，使用状态保持不变
func (s *PostService) Update(ctx context.Context, id string, input PostInput) (*models.Post, error) {
	if err := validatePostInput(input); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	now := s.now()
	existing.Title = input.Title
	existing.Content = input.Content
	existing.Hashtags = input.Hashtags
	existing.CoverImageURL = input.CoverImageURL
	existing.VideoURL = input.VideoURL
	existing.ManimCode = input.ManimCode
	existing.ReferenceLink = input.ReferenceLink
	existing.UpdatedAt = &now
	if err := s.repo.Update(existing); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.invalidate(ctx, id)
	logger.FromContext(ctx).Infow("post_updated", "post_id", id)
	return existing, nil
}

// SetUsed 写入使用状态，usedAt 仅在 isUsed 为真时存在
func (s *PostService) SetUsed(ctx context.Context, id string, isUsed bool) (*models.Post, error) {
	var usedAt *time.Time
	if isUsed {
		now := s.now()
		usedAt = &now
	}
	if err := s.repo.UpdateUsage(id, isUsed, usedAt); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.invalidate(ctx, id)

	post, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	logger.FromContext(ctx).Infow("post_usage_updated", "post_id", id, "is_used", isUsed)
	return post, nil
}

func (s *PostService) invalidate(ctx context.Context, id string) {
	if err := cache.DelPost(ctx, id); err != nil {
		logger.FromContext(ctx).Warnw("post_cache_invalidate_failed", "post_id", id, "error", err)
	}
}

func validatePostInput(input PostInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return ErrTitleRequired
	}
	if isPreviewReference(input.CoverImageURL) || isPreviewReference(input.VideoURL) {
		return ErrInvalidMediaURL
	}
	return nil
}

func isPreviewReference(url string) bool {
	trimmed := strings.TrimSpace(url)
	return strings.HasPrefix(trimmed, constants.PreviewRefPrefix) || strings.HasPrefix(trimmed, constants.DataURLPrefix)
}
