package gallery

// Media 全屏展示中的媒体
type Media struct {
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

// OpenMedia 打开全屏展示
func (b *Browser) OpenMedia(kind, url string) {
	if url == "" {
		return
	}
	b.mu.Lock()
	b.media = &Media{Kind: kind, URL: url}
	b.mu.Unlock()
}

// ExpandedMedia 当前全屏媒体
func (b *Browser) ExpandedMedia() (Media, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.media == nil {
		return Media{}, false
	}
	return *b.media, true
}

// ClickBackdrop 点击遮罩关闭
func (b *Browser) ClickBackdrop() {
	b.CloseMedia()
}

// ClickMedia 点击媒体本身不关闭
func (b *Browser) ClickMedia() {}

// CloseMedia 关闭全屏展示
func (b *Browser) CloseMedia() {
	b.mu.Lock()
	b.media = nil
	b.mu.Unlock()
}
