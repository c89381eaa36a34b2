package app

import (
	"context"
	"errors"
	"time"

	"github.com/ibheros/studio/internal/service"
)

// FormJanitorService 周期清理过期的上传表单会话
type FormJanitorService struct {
	forms    *service.PostFormStore
	interval time.Duration
}

// NewFormJanitorService 创建表单清理服务
func NewFormJanitorService(forms *service.PostFormStore, interval time.Duration) *FormJanitorService {
	return &FormJanitorService{forms: forms, interval: interval}
}

// Name 服务名称
func (s *FormJanitorService) Name() string {
	return "form_janitor"
}

// Start 阻塞运行清理循环
func (s *FormJanitorService) Start(ctx context.Context) error {
	if s == nil || s.forms == nil {
		return errors.New("form store not initialized")
	}
	s.forms.Run(ctx, s.interval)
	return nil
}

// Stop 关闭残留会话并释放预览
func (s *FormJanitorService) Stop(ctx context.Context) error {
	if s == nil || s.forms == nil {
		return nil
	}
	s.forms.CloseAll()
	return nil
}
