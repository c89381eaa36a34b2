package gallery

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ibheros/studio/internal/storage"
)

// OSC52Clipboard 通过终端 OSC 52 序列写剪贴板
type OSC52Clipboard struct {
	Out io.Writer
}

// WriteText 写入剪贴板
func (c OSC52Clipboard) WriteText(ctx context.Context, text string) error {
	if c.Out == nil {
		return errors.New("clipboard output not configured")
	}
	_, err := fmt.Fprintf(c.Out, "\x1b]52;c;%s\a", base64.StdEncoding.EncodeToString([]byte(text)))
	return err
}

// WriterPrompter 把文本直接打印出来
type WriterPrompter struct {
	Out io.Writer
}

// Prompt 打印提示与值
func (p WriterPrompter) Prompt(message, value string) {
	if p.Out == nil {
		return
	}
	fmt.Fprintf(p.Out, "%s: %s\n", message, value)
}

// NoShare 终端没有系统分享
type NoShare struct{}

// CanShare 总是 false
func (NoShare) CanShare(*File) bool { return false }

// Share 不支持
func (NoShare) Share(context.Context, *File) error { return errors.New("share unsupported") }

// DirSaver 保存到本地目录
type DirSaver struct {
	Dir string
}

// Save 写入 Dir/<清洗后的文件名>
func (s DirSaver) Save(ctx context.Context, file *File) error {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, storage.SanitizeFilename(file.Name)), file.Data, 0o644)
}

// WriterNavigator 打印目标路径
type WriterNavigator struct {
	Out    io.Writer
	Origin string
}

// Navigate 打印跳转地址
func (n WriterNavigator) Navigate(path string) {
	if n.Out == nil {
		return
	}
	fmt.Fprintln(n.Out, n.Origin+path)
}
