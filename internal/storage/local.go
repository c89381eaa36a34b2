package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore 本地磁盘存储，由路由以静态目录方式对外提供
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore 创建本地存储
func NewLocalStore(dir, baseURL string) *LocalStore {
	if strings.TrimSpace(dir) == "" {
		dir = "./uploads"
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "/uploads"
	}
	return &LocalStore{dir: dir, baseURL: baseURL}
}

// Dir 返回存储根目录
func (s *LocalStore) Dir() string {
	return s.dir
}

// BaseURL 返回对外访问前缀
func (s *LocalStore) BaseURL() string {
	return s.baseURL
}

// Upload 写入临时文件后原子改名
func (s *LocalStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	written, copyErr := io.Copy(tmp, readerWithContext(ctx, reader))
	closeErr := tmp.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr == nil && size >= 0 && written != size {
		copyErr = fmt.Errorf("short write: wrote %d of %d bytes", written, size)
	}
	if copyErr != nil {
		_ = os.Remove(tmpName)
		return copyErr
	}
	return os.Rename(tmpName, target)
}

// PublicURL 返回对外访问地址
func (s *LocalStore) PublicURL(key string) string {
	return joinURL(s.baseURL, key)
}

func (s *LocalStore) resolve(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(key, "/")))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("invalid media key: %s", key)
	}
	return filepath.Join(s.dir, cleaned), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}
