// Package storage 媒体对象存储，本地磁盘与 S3 兼容实现可互换
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/ibheros/studio/internal/config"
	"github.com/ibheros/studio/internal/constants"
)

// ErrUnsupportedDriver 未知存储驱动
var ErrUnsupportedDriver = errors.New("unsupported media driver")

// MediaStore 媒体对象存储接口
type MediaStore interface {
	// Upload 将数据写入 key
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// PublicURL 返回 key 对应的可访问地址
	PublicURL(key string) string
}

// Put 上传对象并返回其公开地址
func Put(ctx context.Context, store MediaStore, key string, reader io.Reader, size int64, contentType string) (string, error) {
	if store == nil {
		return "", errors.New("media store is nil")
	}
	if err := store.Upload(ctx, key, reader, size, contentType); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return store.PublicURL(key), nil
}

// New 按配置创建媒体存储
func New(cfg config.MediaConfig) (MediaStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", constants.MediaDriverLocal:
		return NewLocalStore(cfg.Local.Dir, cfg.Local.BaseURL), nil
	case constants.MediaDriverMinIO:
		return NewMinIOStore(cfg.MinIO)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, cfg.Driver)
	}
}

// BuildKey 生成 <prefix>/<毫秒时间戳>_<随机串>_<文件名>
func BuildKey(prefix, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%d_%s_%s", strings.TrimSuffix(prefix, "/"), now.UnixMilli(), randomHex(4), SanitizeFilename(filename))
}

// SanitizeFilename 只保留字母、数字与 ._- 字符
func SanitizeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}
	var b strings.Builder
	count := 0
	for _, r := range base {
		if count >= 100 {
			break
		}
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
		count++
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}

func joinURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%x", time.Now().UnixNano())[:n*2]
	}
	return hex.EncodeToString(buf)
}
