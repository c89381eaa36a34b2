package shared

import (
	"errors"

	"github.com/ibheros/studio/internal/http/response"
	"github.com/ibheros/studio/internal/service"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	target  error
	code    int
	key     string
	details bool // 响应 data.details 附带底层错误
}

// 内容与表单错误映射，按顺序匹配
var postErrorMappings = []errorMapping{
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.post_not_found"},
	{target: service.ErrTitleRequired, code: response.CodeBadRequest, key: "error.title_required"},
	{target: service.ErrContentRequired, code: response.CodeBadRequest, key: "error.content_required"},
	{target: service.ErrInvalidMediaURL, code: response.CodeBadRequest, key: "error.invalid_media_url"},
	{target: service.ErrFormNotImage, code: response.CodeBadRequest, key: "error.not_image"},
	{target: service.ErrFormNotVideo, code: response.CodeBadRequest, key: "error.not_video"},
	{target: service.ErrMediaTooLarge, code: response.CodePayloadTooLarge, key: "error.media_too_large"},
	{target: ErrFileTooLarge, code: response.CodePayloadTooLarge, key: "error.media_too_large"},
	{target: service.ErrMediaUploadFailed, code: response.CodeInternal, key: "error.media_upload_failed", details: true},
	{target: service.ErrFormSubmitting, code: response.CodeConflict, key: "error.form_submitting"},
	{target: service.ErrFormClosed, code: response.CodeConflict, key: "error.form_closed"},
	{target: service.ErrFormNotFound, code: response.CodeNotFound, key: "error.form_not_found"},
	{target: service.ErrPreviewNotFound, code: response.CodeNotFound, key: "error.preview_not_found"},
}

// RespondPostError 把内容相关错误映射为统一响应，未识别的错误使用 fallbackKey 并附带底层错误。
func RespondPostError(c *gin.Context, err error, fallbackKey string) {
	for _, m := range postErrorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		if m.details {
			RespondErrorWithDetails(c, m.code, m.key, err)
		} else {
			RespondError(c, m.code, m.key, err)
		}
		return
	}
	RespondErrorWithDetails(c, response.CodeInternal, fallbackKey, err)
}
