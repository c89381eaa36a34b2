package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ibheros/studio/internal/constants"
	"github.com/ibheros/studio/internal/logger"
	"github.com/ibheros/studio/internal/models"
	"github.com/ibheros/studio/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PostWriter 表单提交时的写入端
type PostWriter interface {
	Create(ctx context.Context, input PostInput) (*models.Post, error)
	Update(ctx context.Context, id string, input PostInput) (*models.Post, error)
}

// PostFields 表单文本字段
type PostFields struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	Hashtags      string `json:"hashtags"`
	ManimCode     string `json:"manimCode"`
	ReferenceLink string `json:"referenceLink"`
}

// PostFormDeps 表单依赖
type PostFormDeps struct {
	Writer        PostWriter
	Media         storage.MediaStore
	Previews      *PreviewRegistry
	MaxImageBytes int64
	MaxVideoBytes int64
	Now           func() time.Time
}

// PostFormState 表单快照
type PostFormState struct {
	ID             string     `json:"id"`
	EditingID      string     `json:"editingId,omitempty"`
	Fields         PostFields `json:"fields"`
	CoverImageName string     `json:"coverImageName,omitempty"`
	ImagePreview   string     `json:"imagePreview"`
	VideoName      string     `json:"videoName,omitempty"`
	VideoPreview   string     `json:"videoPreview"`
	IsSubmitting   bool       `json:"isSubmitting"`
}

// PostForm 上传/编辑表单控制器
type PostForm struct {
	mu   sync.Mutex
	deps PostFormDeps
	id   string

	editingID    string
	fields       PostFields
	coverImage   *StagedFile
	imagePreview string
	videoFile    *StagedFile
	videoPreview string
	submitting   bool
	closed       bool
}

// NewPostForm 创建表单，initial 非空时进入编辑模式并以已存储地址作为预览
func NewPostForm(deps PostFormDeps, initial *models.Post) *PostForm {
	if deps.Previews == nil {
		deps.Previews = NewPreviewRegistry()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	form := &PostForm{deps: deps, id: uuid.NewString()}
	if initial != nil {
		form.editingID = initial.ID
		form.fields = PostFields{
			Title:         initial.Title,
			Content:       initial.Content,
			Hashtags:      initial.Hashtags,
			ManimCode:     initial.ManimCode,
			ReferenceLink: initial.ReferenceLink,
		}
		form.imagePreview = initial.CoverImageURL
		form.videoPreview = initial.VideoURL
	}
	return form
}

// ID 表单会话 ID
func (f *PostForm) ID() string {
	return f.id
}

// State 返回当前快照
func (f *PostForm) State() PostFormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	state := PostFormState{
		ID:           f.id,
		EditingID:    f.editingID,
		Fields:       f.fields,
		ImagePreview: f.imagePreview,
		VideoPreview: f.videoPreview,
		IsSubmitting: f.submitting,
	}
	if f.coverImage != nil {
		state.CoverImageName = f.coverImage.Name
	}
	if f.videoFile != nil {
		state.VideoName = f.videoFile.Name
	}
	return state
}

// SetFields 覆盖文本字段
func (f *PostForm) SetFields(fields PostFields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutableLocked(); err != nil {
		return err
	}
	f.fields = fields
	return nil
}

// SelectImage 暂存封面图，非 image/* 类型不改变任何状态
func (f *PostForm) SelectImage(file *StagedFile) error {
	if file == nil || !strings.HasPrefix(strings.ToLower(file.ContentType), "image/") {
		return ErrFormNotImage
	}
	if f.deps.MaxImageBytes > 0 && file.Size() > f.deps.MaxImageBytes {
		return ErrMediaTooLarge
	}
	preview := dataURL(file)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutableLocked(); err != nil {
		return err
	}
	f.coverImage = file
	f.imagePreview = preview
	return nil
}

// SelectVideo 暂存视频，替换时释放旧的临时引用
func (f *PostForm) SelectVideo(file *StagedFile) error {
	if file == nil || !strings.HasPrefix(strings.ToLower(file.ContentType), "video/") {
		return ErrFormNotVideo
	}
	if f.deps.MaxVideoBytes > 0 && file.Size() > f.deps.MaxVideoBytes {
		return ErrMediaTooLarge
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutableLocked(); err != nil {
		return err
	}
	f.releaseVideoPreviewLocked()
	f.videoFile = file
	f.videoPreview = f.deps.Previews.Acquire(file)
	return nil
}

// RemoveImage 清除暂存图片与预览，已存储的地址也不再随保存写入
func (f *PostForm) RemoveImage() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutableLocked(); err != nil {
		return err
	}
	f.coverImage = nil
	f.imagePreview = ""
	return nil
}

// RemoveVideo 清除暂存视频并释放临时引用
func (f *PostForm) RemoveVideo() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutableLocked(); err != nil {
		return err
	}
	f.releaseVideoPreviewLocked()
	f.videoFile = nil
	f.videoPreview = ""
	return nil
}

// Close 释放表单持有的临时引用
func (f *PostForm) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.releaseVideoPreviewLocked()
	f.closed = true
}

// Submit 校验后并发上传暂存媒体，两者都成功后才写入记录；失败时保留全部暂存状态
func (f *PostForm) Submit(ctx context.Context) (*models.Post, error) {
	f.mu.Lock()
	if err := f.mutableLocked(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if strings.TrimSpace(f.fields.Title) == "" {
		f.mu.Unlock()
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(f.fields.Content) == "" {
		f.mu.Unlock()
		return nil, ErrContentRequired
	}
	f.submitting = true
	fields := f.fields
	editingID := f.editingID
	image, video := f.coverImage, f.videoFile
	coverURL := persistedURL(f.imagePreview, image)
	videoURL := persistedURL(f.videoPreview, video)
	f.mu.Unlock()

	log := logger.FromContext(ctx).With("form_id", f.id)
	post, err := f.submit(ctx, fields, editingID, image, video, coverURL, videoURL)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		log.Warnw("post_form_submit_failed", "editing_id", editingID, "error", err)
		return nil, err
	}
	f.editingID = post.ID
	f.coverImage = nil
	f.imagePreview = post.CoverImageURL
	f.releaseVideoPreviewLocked()
	f.videoFile = nil
	f.videoPreview = post.VideoURL
	log.Infow("post_form_submitted", "post_id", post.ID)
	return post, nil
}

func (f *PostForm) submit(ctx context.Context, fields PostFields, editingID string, image, video *StagedFile, coverURL, videoURL string) (*models.Post, error) {
	g, gctx := errgroup.WithContext(ctx)
	if image != nil {
		g.Go(func() error {
			url, err := f.upload(gctx, constants.MediaPrefixPostImages, image)
			if err != nil {
				return err
			}
			coverURL = url
			return nil
		})
	}
	if video != nil {
		g.Go(func() error {
			url, err := f.upload(gctx, constants.MediaPrefixPostVideos, video)
			if err != nil {
				return err
			}
			videoURL = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMediaUploadFailed, err)
	}

	input := PostInput{
		Title:         fields.Title,
		Content:       fields.Content,
		Hashtags:      fields.Hashtags,
		CoverImageURL: coverURL,
		VideoURL:      videoURL,
		ManimCode:     fields.ManimCode,
		ReferenceLink: fields.ReferenceLink,
	}
	if editingID != "" {
		return f.deps.Writer.Update(ctx, editingID, input)
	}
	return f.deps.Writer.Create(ctx, input)
}

func (f *PostForm) upload(ctx context.Context, prefix string, file *StagedFile) (string, error) {
	key := storage.BuildKey(prefix, file.Name, f.deps.Now())
	return storage.Put(ctx, f.deps.Media, key, bytes.NewReader(file.Data), file.Size(), file.ContentType)
}

func (f *PostForm) mutableLocked() error {
	if f.closed {
		return ErrFormClosed
	}
	if f.submitting {
		return ErrFormSubmitting
	}
	return nil
}

func (f *PostForm) releaseVideoPreviewLocked() {
	if strings.HasPrefix(f.videoPreview, constants.PreviewRefPrefix) {
		f.deps.Previews.Release(f.videoPreview)
	}
}

// persistedURL 没有暂存文件时沿用已存储地址，临时预览不会被写入记录
func persistedURL(preview string, staged *StagedFile) string {
	if staged != nil || isPreviewReference(preview) {
		return ""
	}
	return preview
}

func dataURL(file *StagedFile) string {
	return constants.DataURLPrefix + file.ContentType + ";base64," + base64.StdEncoding.EncodeToString(file.Data)
}
