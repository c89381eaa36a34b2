package gallery

import (
	"context"

	"github.com/ibheros/studio/internal/logger"
	"github.com/ibheros/studio/internal/models"
)

// Select 打开详情；记录不存在时进入 not found 状态并返回 false
func (b *Browser) Select(ctx context.Context, id string) (bool, error) {
	b.mu.Lock()
	b.selectSeq++
	seq := b.selectSeq
	b.selected = nil
	b.notFound = false
	b.mu.Unlock()

	post, err := b.deps.Source.GetPost(ctx, id)

	b.mu.Lock()
	defer b.mu.Unlock()
	if seq != b.selectSeq {
		return false, nil
	}
	if err != nil {
		logger.FromContext(ctx).Warnw("gallery_detail_failed", "post_id", id, "error", err)
		return false, err
	}
	if post == nil {
		b.notFound = true
		return false, nil
	}
	b.selected = post
	return true, nil
}

// CloseDetail 关闭详情，进行中的请求结果将被丢弃
func (b *Browser) CloseDetail() {
	b.mu.Lock()
	b.selectSeq++
	b.selected = nil
	b.notFound = false
	b.media = nil
	b.mu.Unlock()
}

// Selected 当前详情副本
func (b *Browser) Selected() (models.Post, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.selected == nil {
		return models.Post{}, false
	}
	return *b.selected, true
}

// NotFound 最近一次打开的详情是否不存在
func (b *Browser) NotFound() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.notFound
}

// ToggleUsed 翻转当前详情的使用状态；写入确认后同步到列表缓存，
// 详情仅在选中项未切换时更新。失败时不修改任何本地状态
func (b *Browser) ToggleUsed(ctx context.Context) (*models.Post, error) {
	b.toggleMu.Lock()
	defer b.toggleMu.Unlock()

	b.mu.Lock()
	if b.selected == nil {
		b.mu.Unlock()
		return nil, ErrNoSelection
	}
	seq := b.selectSeq
	id := b.selected.ID
	target := !b.selected.IsUsed
	b.mu.Unlock()

	updated, err := b.deps.Source.SetUsed(ctx, id, target)
	if err != nil {
		logger.FromContext(ctx).Warnw("gallery_toggle_used_failed", "post_id", id, "error", err)
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if updated == nil {
		updated = b.mirrorLocked(id, target)
	}
	for i := range b.posts {
		if b.posts[i].ID == id {
			b.posts[i].IsUsed = updated.IsUsed
			b.posts[i].UsedAt = updated.UsedAt
			break
		}
	}
	if seq == b.selectSeq && b.selected != nil && b.selected.ID == id {
		b.selected.IsUsed = updated.IsUsed
		b.selected.UsedAt = updated.UsedAt
	}
	return updated, nil
}

// mirrorLocked 来源未返回记录时按请求值构造
func (b *Browser) mirrorLocked(id string, isUsed bool) *models.Post {
	post := models.Post{ID: id, IsUsed: isUsed}
	if b.selected != nil && b.selected.ID == id {
		post = *b.selected
		post.IsUsed = isUsed
		post.UsedAt = nil
	}
	if isUsed {
		now := b.deps.Now()
		post.UsedAt = &now
	}
	return &post
}
