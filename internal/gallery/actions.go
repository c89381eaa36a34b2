package gallery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ibheros/studio/internal/constants"
	"github.com/ibheros/studio/internal/logger"
)

// Copy 尽力写入剪贴板，失败只记录日志；提示状态总会亮起
func (b *Browser) Copy(ctx context.Context, field, text string) {
	b.mu.Lock()
	b.copiedAt[field] = b.deps.Now()
	b.mu.Unlock()

	if b.deps.Clipboard == nil {
		return
	}
	if err := b.deps.Clipboard.WriteText(ctx, text); err != nil {
		logger.FromContext(ctx).Debugw("gallery_clipboard_failed", "field", field, "error", err)
	}
}

// Copied 字段的复制提示是否仍在展示
func (b *Browser) Copied(field string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	at, ok := b.copiedAt[field]
	if !ok {
		return false
	}
	return b.deps.Now().Sub(at) < CopiedFeedback
}

// ShareLink 构造 <origin>/<lang>/videos/<id>
func ShareLink(origin, lang, id string) string {
	return strings.TrimRight(origin, "/") + "/" + lang + constants.VideoPathPart + id
}

// Share 复制当前详情的公开链接，并始终通过提示框展示
func (b *Browser) Share(ctx context.Context, lang string) (string, error) {
	post, ok := b.Selected()
	if !ok {
		return "", ErrNoSelection
	}
	link := ShareLink(b.deps.Origin, lang, post.ID)
	b.Copy(ctx, constants.CopyFieldShareLink, link)
	if b.deps.Prompter != nil {
		b.deps.Prompter.Prompt("Share link", link)
	}
	return link, nil
}

// Edit 跳转到当前详情的编辑页
func (b *Browser) Edit(lang string) error {
	post, ok := b.Selected()
	if !ok {
		return ErrNoSelection
	}
	if b.deps.Navigator != nil {
		b.deps.Navigator.Navigate("/" + lang + constants.EditPathPrefix + post.ID)
	}
	return nil
}

// Download 经下载代理取回文件，优先系统分享，取消视为成功，其它情况回退为直接保存
func (b *Browser) Download(ctx context.Context, url, filename string) error {
	log := logger.FromContext(ctx)
	file, err := b.deps.Downloader.Download(ctx, url, filename)
	if err != nil {
		log.Warnw("gallery_download_failed", "url", url, "error", err)
		return fmt.Errorf("download failed: %w", err)
	}
	if file.Name == "" {
		file.Name = filename
	}

	if b.deps.Sharer != nil && b.deps.Sharer.CanShare(file) {
		err := b.deps.Sharer.Share(ctx, file)
		if err == nil || errors.Is(err, ErrShareAborted) {
			return nil
		}
		log.Infow("gallery_share_fallback", "filename", file.Name, "error", err)
	}
	if b.deps.Saver == nil {
		return errors.New("download failed: no file saver")
	}
	if err := b.deps.Saver.Save(ctx, file); err != nil {
		log.Warnw("gallery_save_failed", "filename", file.Name, "error", err)
		return fmt.Errorf("download failed: %w", err)
	}
	return nil
}
