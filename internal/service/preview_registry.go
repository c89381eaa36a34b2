package service

import (
	"sync"

	"github.com/ibheros/studio/internal/constants"

	"github.com/google/uuid"
)

// StagedFile 已选择但尚未上传的本地文件
type StagedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size 文件字节数
func (f *StagedFile) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Data))
}

// PreviewRegistry 临时预览引用登记表，引用释放后不可再读取
type PreviewRegistry struct {
	mu      sync.RWMutex
	entries map[string]*StagedFile
}

// NewPreviewRegistry 创建预览登记表
func NewPreviewRegistry() *PreviewRegistry {
	return &PreviewRegistry{entries: make(map[string]*StagedFile)}
}

// Acquire 为文件登记一个 blob: 引用
func (r *PreviewRegistry) Acquire(file *StagedFile) string {
	ref := constants.PreviewRefPrefix + uuid.NewString()
	r.mu.Lock()
	r.entries[ref] = file
	r.mu.Unlock()
	return ref
}

// Open 读取仍有效的引用
func (r *PreviewRegistry) Open(ref string) (*StagedFile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	file, ok := r.entries[ref]
	return file, ok
}

// Release 释放引用，重复释放无副作用
func (r *PreviewRegistry) Release(ref string) {
	if ref == "" {
		return
	}
	r.mu.Lock()
	delete(r.entries, ref)
	r.mu.Unlock()
}

// Len 当前存活的引用数
func (r *PreviewRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
