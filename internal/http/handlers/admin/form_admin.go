package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ibheros/studio/internal/http/handlers/shared"
	"github.com/ibheros/studio/internal/http/response"
	"github.com/ibheros/studio/internal/i18n"
	"github.com/ibheros/studio/internal/service"

	"github.com/gin-gonic/gin"
)

const fieldFile = "file"

// OpenFormRequest 创建表单会话请求
type OpenFormRequest struct {
	EditingID string `json:"editingId"`
}

// OpenForm 创建表单会话，editingId 为空时为新建模式
func (h *Handler) OpenForm(c *gin.Context) {
	var req OpenFormRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
	}
	form, err := h.PostForms.Open(c.Request.Context(), req.EditingID)
	if err != nil {
		respondPostError(c, err, "error.server_error")
		return
	}
	response.Success(c, form.State())
}

// GetForm 表单会话快照
func (h *Handler) GetForm(c *gin.Context) {
	form, ok := h.loadForm(c)
	if !ok {
		return
	}
	response.Success(c, form.State())
}

// UpdateFormFields 覆盖文本字段
func (h *Handler) UpdateFormFields(c *gin.Context) {
	form, ok := h.loadForm(c)
	if !ok {
		return
	}
	var fields service.PostFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := form.SetFields(fields); err != nil {
		respondPostError(c, err, "error.server_error")
		return
	}
	response.Success(c, form.State())
}

// CloseForm 关闭表单会话并释放预览
func (h *Handler) CloseForm(c *gin.Context) {
	if err := h.PostForms.Close(c.Param("id")); err != nil {
		respondPostError(c, err, "error.server_error")
		return
	}
	response.Success(c, nil)
}

// PutFormImage 暂存封面图
func (h *Handler) PutFormImage(c *gin.Context) {
	h.stageFile(c, h.Config.Media.MaxImageBytes, (*service.PostForm).SelectImage, service.ErrFormNotImage)
}

// PutFormVideo 暂存视频
func (h *Handler) PutFormVideo(c *gin.Context) {
	h.stageFile(c, h.Config.Media.MaxVideoBytes, (*service.PostForm).SelectVideo, service.ErrFormNotVideo)
}

// DeleteFormImage 移除封面图
func (h *Handler) DeleteFormImage(c *gin.Context) {
	h.mutateForm(c, (*service.PostForm).RemoveImage)
}

// DeleteFormVideo 移除视频
func (h *Handler) DeleteFormVideo(c *gin.Context) {
	h.mutateForm(c, (*service.PostForm).RemoveVideo)
}

// SubmitForm 上传暂存媒体并保存记录
func (h *Handler) SubmitForm(c *gin.Context) {
	form, ok := h.loadForm(c)
	if !ok {
		return
	}
	post, err := form.Submit(c.Request.Context())
	if err != nil {
		respondPostError(c, err, "error.post_save_failed")
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.post_saved"), SubmitResult{
		Post:     post,
		Redirect: galleryPath(c),
	})
}

// GetPreview 读取仍有效的临时预览
func (h *Handler) GetPreview(c *gin.Context) {
	file, ok := h.PostForms.Previews().Open(c.Param("ref"))
	if !ok {
		respondPostError(c, service.ErrPreviewNotFound, "error.server_error")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Length", strconv.Itoa(len(file.Data)))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func (h *Handler) loadForm(c *gin.Context) (*service.PostForm, bool) {
	form, err := h.PostForms.Get(c.Param("id"))
	if err != nil {
		respondPostError(c, err, "error.server_error")
		return nil, false
	}
	return form, true
}

func (h *Handler) stageFile(c *gin.Context, maxBytes int64, selectFn func(*service.PostForm, *service.StagedFile) error, missingErr error) {
	form, ok := h.loadForm(c)
	if !ok {
		return
	}
	file, err := shared.ReadStagedFile(c, fieldFile, maxBytes)
	if errors.Is(err, shared.ErrFileTooLarge) {
		respondPostError(c, err, "error.bad_request")
		return
	}
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if file == nil {
		respondPostError(c, missingErr, "error.bad_request")
		return
	}
	if err := selectFn(form, file); err != nil {
		respondPostError(c, err, "error.server_error")
		return
	}
	response.Success(c, form.State())
}

func (h *Handler) mutateForm(c *gin.Context, fn func(*service.PostForm) error) {
	form, ok := h.loadForm(c)
	if !ok {
		return
	}
	if err := fn(form); err != nil {
		respondPostError(c, err, "error.server_error")
		return
	}
	response.Success(c, form.State())
}
