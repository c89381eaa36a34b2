package cache

import (
	"context"
	"time"

	"github.com/ibheros/studio/internal/models"
)

const defaultPostDetailTTL = 5 * time.Minute

func postDetailKey(id string) string {
	return "post:detail:" + id
}

// GetPost 读取视频详情缓存
func GetPost(ctx context.Context, id string) (*models.Post, bool, error) {
	if id == "" {
		return nil, false, nil
	}
	var post models.Post
	hit, err := GetJSON(ctx, postDetailKey(id), &post)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &post, true, nil
}

// SetPost 写入视频详情缓存
func SetPost(ctx context.Context, post *models.Post, ttl time.Duration) error {
	if post == nil || post.ID == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultPostDetailTTL
	}
	return SetJSON(ctx, postDetailKey(post.ID), post, ttl)
}

// DelPost 删除视频详情缓存
func DelPost(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return Del(ctx, postDetailKey(id))
}
