package service

import (
	"context"
	"sync"
	"time"

	"github.com/ibheros/studio/internal/logger"
	"github.com/ibheros/studio/internal/models"
)

// PostReader 编辑模式加载已有记录
type PostReader interface {
	Get(ctx context.Context, id string) (*models.Post, error)
}

type formEntry struct {
	form      *PostForm
	expiresAt time.Time
}

// PostFormStore 服务端表单会话，过期后由清理循环释放临时引用
type PostFormStore struct {
	mu     sync.Mutex
	forms  map[string]*formEntry
	deps   PostFormDeps
	reader PostReader
	ttl    time.Duration
	now    func() time.Time
}

// NewPostFormStore 创建表单会话仓库
func NewPostFormStore(deps PostFormDeps, reader PostReader, ttl time.Duration) *PostFormStore {
	if deps.Previews == nil {
		deps.Previews = NewPreviewRegistry()
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &PostFormStore{
		forms:  make(map[string]*formEntry),
		deps:   deps,
		reader: reader,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Previews 返回共享的预览登记表
func (s *PostFormStore) Previews() *PreviewRegistry {
	return s.deps.Previews
}

// NewForm 创建不登记的一次性表单
func (s *PostFormStore) NewForm(ctx context.Context, editingID string) (*PostForm, error) {
	var initial *models.Post
	if editingID != "" {
		post, err := s.reader.Get(ctx, editingID)
		if err != nil {
			return nil, err
		}
		initial = post
	}
	return NewPostForm(s.deps, initial), nil
}

// Open 创建并登记表单会话，editingID 非空时为编辑模式
func (s *PostFormStore) Open(ctx context.Context, editingID string) (*PostForm, error) {
	form, err := s.NewForm(ctx, editingID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.forms[form.ID()] = &formEntry{form: form, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	logger.FromContext(ctx).Infow("post_form_opened", "form_id", form.ID(), "editing_id", editingID)
	return form, nil
}

// Get 获取会话并续期
func (s *PostFormStore) Get(id string) (*PostForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.forms[id]
	if !ok || !s.now().Before(entry.expiresAt) {
		return nil, ErrFormNotFound
	}
	entry.expiresAt = s.now().Add(s.ttl)
	return entry.form, nil
}

// Close 关闭并移除会话
func (s *PostFormStore) Close(id string) error {
	s.mu.Lock()
	entry, ok := s.forms[id]
	delete(s.forms, id)
	s.mu.Unlock()
	if !ok {
		return ErrFormNotFound
	}
	entry.form.Close()
	return nil
}

// Sweep 清理过期会话，返回清理数量
func (s *PostFormStore) Sweep() int {
	now := s.now()
	expired := make([]*PostForm, 0)
	s.mu.Lock()
	for id, entry := range s.forms {
		if !now.Before(entry.expiresAt) {
			expired = append(expired, entry.form)
			delete(s.forms, id)
		}
	}
	s.mu.Unlock()
	for _, form := range expired {
		form.Close()
	}
	return len(expired)
}

// CloseAll 关闭全部会话
func (s *PostFormStore) CloseAll() {
	s.mu.Lock()
	forms := s.forms
	s.forms = make(map[string]*formEntry)
	s.mu.Unlock()
	for _, entry := range forms {
		entry.form.Close()
	}
}

// Run 周期清理过期会话，ctx 结束时关闭全部会话
func (s *PostFormStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.CloseAll()
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logger.Infow("post_form_sessions_expired", "count", n)
			}
		}
	}
}
