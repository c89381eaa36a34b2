package public

import "github.com/ibheros/studio/internal/provider"

// Handler 前台/公开接口处理器入口
// 说明：该处理器用于分享页、下载代理与导师申请等公开接口。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
