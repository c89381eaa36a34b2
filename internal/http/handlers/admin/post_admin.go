package admin

import (
	"strconv"
	"strings"

	"github.com/ibheros/studio/internal/constants"
	"github.com/ibheros/studio/internal/http/handlers/shared"
	"github.com/ibheros/studio/internal/http/response"
	"github.com/ibheros/studio/internal/i18n"
	"github.com/ibheros/studio/internal/models"
	"github.com/ibheros/studio/internal/service"

	"github.com/gin-gonic/gin"
)

// 表单字段名
const (
	fieldCoverImage       = "coverImage"
	fieldVideo            = "video"
	fieldRemoveCoverImage = "removeCoverImage"
	fieldRemoveVideo      = "removeVideo"
)

// SetUsedRequest 使用状态请求
type SetUsedRequest struct {
	IsUsed *bool `json:"isUsed" binding:"required"`
}

// SubmitResult 保存结果
type SubmitResult struct {
	Post     *models.Post `json:"post"`
	Redirect string       `json:"redirect"`
}

// ListPosts 视频列表，按创建时间倒序
func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.PostService.List(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.post_list_failed", err)
		return
	}
	response.Success(c, posts)
}

// GetPost 视频详情
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.PostService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondPostError(c, err, "error.server_error")
		return
	}
	response.Success(c, post)
}

// CreatePost 一次性提交新建表单（multipart）
func (h *Handler) CreatePost(c *gin.Context) {
	h.submitMultipart(c, "")
}

// UpdatePost 一次性提交编辑表单（multipart），未上传的媒体沿用已存储地址
func (h *Handler) UpdatePost(c *gin.Context) {
	h.submitMultipart(c, c.Param("id"))
}

func (h *Handler) submitMultipart(c *gin.Context, editingID string) {
	ctx := c.Request.Context()
	form, err := h.PostForms.NewForm(ctx, editingID)
	if err != nil {
		respondPostError(c, err, "error.post_save_failed")
		return
	}
	defer form.Close()

	if err := form.SetFields(fieldsFromForm(c)); err != nil {
		respondPostError(c, err, "error.post_save_failed")
		return
	}
	if err := h.stageMultipartMedia(c, form); err != nil {
		respondPostError(c, err, "error.post_save_failed")
		return
	}

	post, err := form.Submit(ctx)
	if err != nil {
		respondPostError(c, err, "error.post_save_failed")
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.post_saved"), SubmitResult{
		Post:     post,
		Redirect: galleryPath(c),
	})
}

func (h *Handler) stageMultipartMedia(c *gin.Context, form *service.PostForm) error {
	if formBool(c, fieldRemoveCoverImage) {
		if err := form.RemoveImage(); err != nil {
			return err
		}
	}
	if formBool(c, fieldRemoveVideo) {
		if err := form.RemoveVideo(); err != nil {
			return err
		}
	}
	image, err := shared.ReadStagedFile(c, fieldCoverImage, h.Config.Media.MaxImageBytes)
	if err != nil {
		return err
	}
	if image != nil {
		if err := form.SelectImage(image); err != nil {
			return err
		}
	}
	video, err := shared.ReadStagedFile(c, fieldVideo, h.Config.Media.MaxVideoBytes)
	if err != nil {
		return err
	}
	if video != nil {
		if err := form.SelectVideo(video); err != nil {
			return err
		}
	}
	return nil
}

// SetPostUsed 写入使用状态，仅更新 isUsed 与 usedAt
func (h *Handler) SetPostUsed(c *gin.Context) {
	var req SetUsedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	post, err := h.PostService.SetUsed(c.Request.Context(), c.Param("id"), *req.IsUsed)
	if err != nil {
		respondPostError(c, err, "error.post_update_failed")
		return
	}
	response.Success(c, post)
}

func fieldsFromForm(c *gin.Context) service.PostFields {
	return service.PostFields{
		Title:         c.PostForm("title"),
		Content:       c.PostForm("content"),
		Hashtags:      c.PostForm("hashtags"),
		ManimCode:     c.PostForm("manimCode"),
		ReferenceLink: c.PostForm("referenceLink"),
	}
}

func formBool(c *gin.Context, field string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(c.PostForm(field)))
	return err == nil && value
}

func galleryPath(c *gin.Context) string {
	return "/" + i18n.ResolveLocale(c) + constants.GalleryPath
}
